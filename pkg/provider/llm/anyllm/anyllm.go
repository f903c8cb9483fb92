// Package anyllm provides a universal LLM generation and analysis provider
// backed by github.com/mozilla-ai/any-llm-go, a unified multi-provider
// interface that supports Groq, OpenAI, Anthropic, Gemini, Ollama, and more.
//
// Usage:
//
//	g, err := anyllm.New("groq", "llama-3.3-70b-versatile", anyllmlib.WithAPIKey("gsk-..."))
//	g, err := anyllm.NewGroq("llama-3.3-70b-versatile")
package anyllm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/groq"
	"github.com/mozilla-ai/any-llm-go/providers/mistral"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/intervo/intervo/pkg/provider/llm"
)

// Compile-time assertions that Provider implements both capabilities.
var (
	_ llm.Generator = (*Provider)(nil)
	_ llm.Analyzer  = (*Provider)(nil)
)

// Provider implements llm.Generator and llm.Analyzer by wrapping
// github.com/mozilla-ai/any-llm-go.
type Provider struct {
	backend anyllmlib.Provider
	model   string
}

// New creates a new Provider backed by the given LLM provider name.
//
// providerName is one of: "groq", "openai", "anthropic", "mistral", "ollama".
// model is the specific model to use (e.g., "llama-3.3-70b-versatile").
//
// opts are any-llm-go configuration options (e.g., anyllmlib.WithAPIKey,
// anyllmlib.WithBaseURL). If no API key option is provided, the backend falls
// back to the relevant environment variable (e.g., GROQ_API_KEY).
func New(providerName string, model string, opts ...anyllmlib.Option) (*Provider, error) {
	if providerName == "" {
		return nil, fmt.Errorf("anyllm: providerName must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("anyllm: model must not be empty")
	}

	backend, err := createBackend(providerName, opts...)
	if err != nil {
		return nil, fmt.Errorf("anyllm: create %q backend: %w", providerName, err)
	}

	return &Provider{backend: backend, model: model}, nil
}

// NewGroq creates a Provider backed by Groq.
// Without options, it reads the GROQ_API_KEY environment variable.
func NewGroq(model string, opts ...anyllmlib.Option) (*Provider, error) {
	return New("groq", model, opts...)
}

// NewOpenAI creates a Provider backed by OpenAI.
// Without options, it reads the OPENAI_API_KEY environment variable.
func NewOpenAI(model string, opts ...anyllmlib.Option) (*Provider, error) {
	return New("openai", model, opts...)
}

// NewOllama creates a Provider backed by Ollama (local inference).
// Without options, it connects to http://localhost:11434.
func NewOllama(model string, opts ...anyllmlib.Option) (*Provider, error) {
	return New("ollama", model, opts...)
}

// createBackend creates the underlying any-llm-go provider for the given name.
func createBackend(providerName string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch strings.ToLower(providerName) {
	case "groq":
		return groq.New(opts...)
	case "openai":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "mistral":
		return mistral.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q; supported: groq, openai, anthropic, mistral, ollama", providerName)
	}
}

// Generate implements llm.Generator.
func (p *Provider) Generate(ctx context.Context, req llm.Request) (string, error) {
	params := p.buildParams(req)

	resp, err := p.backend.Completion(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anyllm: completion: %w: %w", llm.ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("anyllm: empty choices in response: %w", llm.ErrUnavailable)
	}

	return strings.TrimSpace(resp.Choices[0].Message.ContentString()), nil
}

// analysisTemperature keeps assessments close to deterministic.
const analysisTemperature = 0.3

// analysisMaxTokens bounds the assessment completion length.
const analysisMaxTokens = 1500

// Analyze implements llm.Analyzer. It sends the transcript with a fixed
// JSON-schema instruction and decodes the response strictly; a response that
// is not the expected JSON object is a backend failure, not something to
// recover with fallback parsing.
func (p *Provider) Analyze(ctx context.Context, req llm.AnalysisRequest) (*llm.Assessment, error) {
	prompt := buildAnalysisPrompt(req)

	temp := analysisTemperature
	maxTokens := analysisMaxTokens
	params := anyllmlib.CompletionParams{
		Model: p.model,
		Messages: []anyllmlib.Message{
			{Role: llm.RoleUser, Content: prompt},
		},
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	}

	resp, err := p.backend.Completion(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anyllm: analyze: %w: %w", llm.ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("anyllm: analyze: empty choices in response: %w", llm.ErrUnavailable)
	}

	return decodeAssessment(resp.Choices[0].Message.ContentString())
}

// decodeAssessment parses the model output as a single JSON object in the
// fixed Assessment schema.
func decodeAssessment(raw string) (*llm.Assessment, error) {
	var a llm.Assessment
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &a); err != nil {
		return nil, fmt.Errorf("anyllm: analyze: decode assessment: %w: %w", llm.ErrUnavailable, err)
	}
	if a.Recommendation == "" {
		return nil, fmt.Errorf("anyllm: analyze: assessment missing recommendation: %w", llm.ErrUnavailable)
	}
	return &a, nil
}

// buildAnalysisPrompt renders the fixed assessment instruction for the given
// transcript.
func buildAnalysisPrompt(req llm.AnalysisRequest) string {
	var b strings.Builder
	b.WriteString("Analyze this interview transcript and provide a comprehensive assessment.\n\n")
	fmt.Fprintf(&b, "CANDIDATE: %s\nROLE: %s\n\nTRANSCRIPT:\n", req.CandidateName, req.RoleTitle)
	for _, line := range req.Transcript {
		b.WriteString(line)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, `
Provide your analysis in this exact JSON format:
{
    "overall_score": <number 0-100>,
    "recommendation": "<strong_hire|hire|maybe|no_hire>",
    "suitability": "<detailed 2-3 sentence assessment of whether this candidate is suited for the %s position>",
    "summary": "<2-3 sentence overall summary of the interview>",
    "strengths": ["<strength 1>", "<strength 2>", "<strength 3>"],
    "improvements": ["<area 1>", "<area 2>", "<area 3>"],
    "skills": {
        "communication": <number 0-100>,
        "technical": <number 0-100>,
        "problem_solving": <number 0-100>,
        "confidence": <number 0-100>
    },
    "detailed_feedback": "<paragraph with specific examples from the interview and actionable advice>",
    "hiring_rationale": "<clear explanation of why this candidate should or should not be hired for this specific role>"
}

Be specific, reference actual responses from the interview, and provide constructive feedback.
Return ONLY the JSON object, no other text.`, req.RoleTitle)
	return b.String()
}

// buildParams converts our Request into anyllm CompletionParams.
func (p *Provider) buildParams(req llm.Request) anyllmlib.CompletionParams {
	var messages []anyllmlib.Message

	if req.SystemPrompt != "" {
		messages = append(messages, anyllmlib.Message{
			Role:    anyllmlib.RoleSystem,
			Content: req.SystemPrompt,
		})
	}

	for _, m := range req.Messages {
		messages = append(messages, anyllmlib.Message{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	if req.Instruction != "" {
		messages = append(messages, anyllmlib.Message{
			Role:    llm.RoleUser,
			Content: req.Instruction,
		})
	}

	params := anyllmlib.CompletionParams{
		Model:    p.model,
		Messages: messages,
	}

	if req.Temperature != 0 {
		t := req.Temperature
		params.Temperature = &t
	}
	if req.MaxTokens > 0 {
		mt := req.MaxTokens
		params.MaxTokens = &mt
	}

	return params
}
