// Package llm defines the Generator and Analyzer interfaces for Large
// Language Model backends.
//
// A Generator wraps a chat-completion API (e.g., Groq's hosted Llama models,
// OpenAI, or a local Ollama instance) and produces the interviewer's next
// spoken utterance as plain text. No structured data is ever parsed out of
// conversational output — structured results are obtained through the
// separate Analyzer capability, which has its own fixed response schema.
//
// Implementations must be safe for concurrent use and must propagate context
// cancellation promptly.
package llm

import (
	"context"
	"errors"
)

// ErrUnavailable is returned (wrapped) when the generation backend fails or
// cannot be reached. The core never retries; retry policy belongs to the
// hosting layer.
var ErrUnavailable = errors.New("llm: generation unavailable")

// Conversation roles. Role values follow the OpenAI-style convention used by
// every backend the anyllm provider supports.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role-tagged utterance in a conversation history.
type Message struct {
	// Role is "user" (candidate) or "assistant" (interviewer).
	Role string

	// Content is the utterance text.
	Content string
}

// Request carries everything the Generator needs to produce the next
// interviewer utterance.
type Request struct {
	// SystemPrompt is the high-priority framing instruction injected before
	// the conversation history (the interviewer persona).
	SystemPrompt string

	// Messages is the ordered conversation history. It may be arbitrarily
	// long; the provider must not truncate it.
	Messages []Message

	// Instruction is an optional one-off directive appended as the final
	// user-role context element (e.g., "start the interview", or the
	// state-conditioned steering instruction). It is transient: callers do
	// not retain it in Messages.
	Instruction string

	// Temperature controls output randomness. Zero means the provider
	// default.
	Temperature float64

	// MaxTokens caps the completion length. Zero means the provider default.
	MaxTokens int
}

// Generator is the abstraction over any text-generation backend.
//
// Implementations must be safe for concurrent use.
type Generator interface {
	// Generate sends the request to the model and returns the full response
	// text, trimmed of surrounding whitespace. The response is plain
	// conversational text only.
	//
	// Backend failures wrap [ErrUnavailable]. The method returns promptly
	// when ctx is cancelled.
	Generate(ctx context.Context, req Request) (string, error)
}

// SkillScores holds the per-dimension 0–100 ratings in an Assessment.
type SkillScores struct {
	Communication  int `json:"communication"`
	Technical      int `json:"technical"`
	ProblemSolving int `json:"problem_solving"`
	Confidence     int `json:"confidence"`
}

// Assessment is the fixed-schema structured evaluation of a completed (or
// in-progress) interview transcript.
type Assessment struct {
	// OverallScore is a 0–100 rating of the interview as a whole.
	OverallScore int `json:"overall_score"`

	// Recommendation is one of "strong_hire", "hire", "maybe", "no_hire".
	Recommendation string `json:"recommendation"`

	// Suitability assesses fit for the specific role.
	Suitability string `json:"suitability"`

	// Summary is a short overall account of the interview.
	Summary string `json:"summary"`

	// Strengths lists observed candidate strengths.
	Strengths []string `json:"strengths"`

	// Improvements lists areas the candidate should work on.
	Improvements []string `json:"improvements"`

	// Skills holds the per-dimension ratings.
	Skills SkillScores `json:"skills"`

	// DetailedFeedback references specific answers with actionable advice.
	DetailedFeedback string `json:"detailed_feedback"`

	// HiringRationale explains the recommendation.
	HiringRationale string `json:"hiring_rationale"`
}

// AnalysisRequest carries the transcript to evaluate.
type AnalysisRequest struct {
	// CandidateName is the interviewee's name.
	CandidateName string

	// RoleTitle is the position interviewed for.
	RoleTitle string

	// Transcript is the full ordered conversation, one element per
	// utterance, already formatted as "ROLE: text" lines by the caller.
	Transcript []string
}

// Analyzer produces a structured Assessment from an interview transcript.
// It is a separate, explicitly-typed capability: assessments are never
// extracted from conversational Generate output.
type Analyzer interface {
	// Analyze evaluates the transcript and returns a fully-populated
	// Assessment. A backend failure or a response that does not decode into
	// the fixed schema wraps [ErrUnavailable].
	Analyze(ctx context.Context, req AnalysisRequest) (*Assessment, error)
}

// Provider combines turn generation and post-interview analysis, which a
// single chat-completion backend serves with different prompts.
type Provider interface {
	Generator
	Analyzer
}
