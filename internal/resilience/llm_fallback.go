package resilience

import (
	"context"
	"errors"
	"fmt"

	"github.com/intervo/intervo/pkg/provider/llm"
)

// LLMFallback implements [llm.Provider] with automatic failover across multiple
// LLM backends. Each backend has its own circuit breaker; when the primary fails
// or its breaker is open, the next healthy fallback is tried.
type LLMFallback struct {
	group *FallbackGroup[llm.Provider]
}

// Compile-time interface assertion.
var _ llm.Provider = (*LLMFallback)(nil)

// NewLLMFallback creates an [LLMFallback] with primary as the preferred backend.
func NewLLMFallback(primary llm.Provider, primaryName string, cfg FallbackConfig) *LLMFallback {
	return &LLMFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional LLM provider as a fallback.
func (f *LLMFallback) AddFallback(name string, provider llm.Provider) {
	f.group.AddFallback(name, provider)
}

// Generate sends the request to the first healthy provider and returns its
// response. If the primary fails, subsequent fallbacks are tried. When every
// provider is exhausted the error carries [llm.ErrUnavailable].
func (f *LLMFallback) Generate(ctx context.Context, req llm.Request) (string, error) {
	text, err := ExecuteWithResult(f.group, func(p llm.Provider) (string, error) {
		return p.Generate(ctx, req)
	})
	if err != nil {
		return "", ensureUnavailable(err)
	}
	return text, nil
}

// Analyze evaluates the transcript against the first healthy provider. A
// fallback may rate differently than the primary; the assessment still
// follows the same fixed schema. When every provider is exhausted the error
// carries [llm.ErrUnavailable].
func (f *LLMFallback) Analyze(ctx context.Context, req llm.AnalysisRequest) (*llm.Assessment, error) {
	assessment, err := ExecuteWithResult(f.group, func(p llm.Provider) (*llm.Assessment, error) {
		return p.Analyze(ctx, req)
	})
	if err != nil {
		return nil, ensureUnavailable(err)
	}
	return assessment, nil
}

// ensureUnavailable guarantees [llm.ErrUnavailable] is in the chain, so a
// breaker-open exhaustion maps the same way as a backend failure.
func ensureUnavailable(err error) error {
	if errors.Is(err, llm.ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", llm.ErrUnavailable, err)
}
