// Package mock provides test doubles for the llm.Generator and llm.Analyzer
// interfaces.
//
// Use Generator in unit tests to verify the requests the interview engine
// builds and to feed controlled utterances without a live LLM backend. All
// fields are safe to set before calling any method.
//
// Example:
//
//	g := &mock.Generator{Responses: []string{
//	    "Welcome, Alex! Tell me about your background.",
//	    "Thank you for your time today. Best of luck!",
//	}}
package mock

import (
	"context"
	"sync"

	"github.com/intervo/intervo/pkg/provider/llm"
)

// GenerateCall records a single invocation of Generate.
type GenerateCall struct {
	// Req is the Request passed to Generate.
	Req llm.Request
}

// Generator is a mock implementation of llm.Generator.
// Zero values cause Generate to return "" and a nil error.
type Generator struct {
	mu sync.Mutex

	// Response is returned by Generate. If Responses is non-empty it takes
	// precedence: each call consumes the next element, and the last element
	// is repeated once the slice is exhausted.
	Response  string
	Responses []string

	// Err, if non-nil, is returned as the error from Generate.
	Err error

	// Calls records every invocation of Generate in order.
	Calls []GenerateCall
}

// Generate implements llm.Generator.
func (g *Generator) Generate(_ context.Context, req llm.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Calls = append(g.Calls, GenerateCall{Req: req})

	if g.Err != nil {
		return "", g.Err
	}
	if len(g.Responses) > 0 {
		i := len(g.Calls) - 1
		if i >= len(g.Responses) {
			i = len(g.Responses) - 1
		}
		return g.Responses[i], nil
	}
	return g.Response, nil
}

// CallCount returns the number of recorded Generate invocations.
func (g *Generator) CallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Calls)
}

// LastCall returns the most recent GenerateCall. It panics if no call has
// been recorded; tests should check CallCount first.
func (g *Generator) LastCall() GenerateCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Calls[len(g.Calls)-1]
}

// AnalyzeCall records a single invocation of Analyze.
type AnalyzeCall struct {
	// Req is the AnalysisRequest passed to Analyze.
	Req llm.AnalysisRequest
}

// Analyzer is a mock implementation of llm.Analyzer.
type Analyzer struct {
	mu sync.Mutex

	// Assessment is returned by Analyze. May be nil (returns nil, nil).
	Assessment *llm.Assessment

	// Err, if non-nil, is returned as the error from Analyze.
	Err error

	// Calls records every invocation of Analyze in order.
	Calls []AnalyzeCall
}

// Analyze implements llm.Analyzer.
func (a *Analyzer) Analyze(_ context.Context, req llm.AnalysisRequest) (*llm.Assessment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.Calls = append(a.Calls, AnalyzeCall{Req: req})

	if a.Err != nil {
		return nil, a.Err
	}
	return a.Assessment, nil
}
