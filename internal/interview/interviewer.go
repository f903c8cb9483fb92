// Package interview implements the per-session interview state machine: turn
// counting, topic escalation, and completion detection driven by a pluggable
// classifier over the generated interviewer utterances.
package interview

import (
	"context"
	"fmt"

	"github.com/intervo/intervo/pkg/provider/llm"
)

// Satisfaction tracks how far the interview has progressed toward a natural
// conclusion. It only ever moves forward.
type Satisfaction string

const (
	SatisfactionGathering       Satisfaction = "gathering_info"
	SatisfactionAlmostSatisfied Satisfaction = "almost_satisfied"
	SatisfactionSatisfied       Satisfaction = "satisfied"
)

// Progress thresholds over the topics-opened counter: at or past
// midTopicThreshold the interviewer is told to follow up or change topic, at
// wrapUpTopicThreshold it is given permission to conclude.
const (
	midTopicThreshold    = 2
	wrapUpTopicThreshold = 4
	almostSatisfiedAt    = 3
)

// Generation tuning for conversational turns.
const (
	turnTemperature = 0.7
	turnMaxTokens   = 500
)

// State is an observable snapshot of an interview. All counters are
// monotonically non-decreasing; Complete never reverts to false.
type State struct {
	// TurnCount is the number of candidate replies processed so far.
	TurnCount int `json:"turn_count"`

	// TopicsOpened counts interviewer utterances classified as opening a new
	// main subject, including the opening question.
	TopicsOpened int `json:"topics_opened"`

	Satisfaction Satisfaction `json:"satisfaction_level"`

	// CanWrapUp reports that enough topics have been covered for the
	// interview to conclude gracefully on request.
	CanWrapUp bool `json:"can_wrap_up"`

	// Complete is set permanently once a generated utterance closes the
	// interview.
	Complete bool `json:"is_complete"`
}

// Option configures an [Interviewer].
type Option func(*Interviewer)

// WithClassifier replaces the default phrase-based utterance classifier.
func WithClassifier(c Classifier) Option {
	return func(iv *Interviewer) { iv.classifier = c }
}

// WithTemperature overrides the generation temperature for turns.
func WithTemperature(t float64) Option {
	return func(iv *Interviewer) { iv.temperature = t }
}

// WithMaxTokens overrides the per-turn generation token cap.
func WithMaxTokens(n int) Option {
	return func(iv *Interviewer) { iv.maxTokens = n }
}

// Interviewer drives one interview conversation. It owns the conversational
// history passed to the generation engine and the progress counters derived
// from the generated utterances.
//
// An Interviewer is not safe for concurrent use; the session layer guarantees
// at most one in-flight turn.
type Interviewer struct {
	gen        llm.Generator
	classifier Classifier

	temperature float64
	maxTokens   int

	history []llm.Message
	state   State
}

// New returns an Interviewer generating with gen. Call [Interviewer.Begin]
// before the first [Interviewer.Advance].
func New(gen llm.Generator, opts ...Option) *Interviewer {
	iv := &Interviewer{
		gen:         gen,
		classifier:  NewPhraseClassifier(),
		temperature: turnTemperature,
		maxTokens:   turnMaxTokens,
		state:       State{Satisfaction: SatisfactionGathering},
	}
	for _, opt := range opts {
		opt(iv)
	}
	return iv
}

// Begin resets all state and generates the opening utterance. The opening
// counts as the first topic. The start directive rides on the generation
// request only; the history afterwards holds just the opening utterance.
func (iv *Interviewer) Begin(ctx context.Context, candidateName, roleTitle string) (string, error) {
	iv.history = nil
	iv.state = State{Satisfaction: SatisfactionGathering}

	opening, err := iv.generate(ctx, startDirective(candidateName, roleTitle))
	if err != nil {
		return "", fmt.Errorf("interview: begin: %w", err)
	}

	iv.history = append(iv.history, llm.Message{Role: llm.RoleAssistant, Content: opening})
	iv.state.TopicsOpened = 1
	return opening, nil
}

// Advance processes one candidate utterance and returns the interviewer's
// reply. It selects a progress-conditioned directive, generates, then
// reclassifies the reply for topic escalation and closure.
//
// Calling Advance on a completed interview is a programming error and
// panics. A failed generation leaves history and counters untouched, so the
// turn can be resubmitted.
func (iv *Interviewer) Advance(ctx context.Context, candidateUtterance string) (string, error) {
	if iv.state.Complete {
		panic("interview: Advance called on a completed interview")
	}

	candidate := llm.Message{Role: llm.RoleUser, Content: candidateUtterance}
	iv.history = append(iv.history, candidate)

	reply, err := iv.generate(ctx, iv.directive())
	if err != nil {
		iv.history = iv.history[:len(iv.history)-1]
		return "", fmt.Errorf("interview: advance: %w", err)
	}

	iv.history = append(iv.history, llm.Message{Role: llm.RoleAssistant, Content: reply})
	iv.state.TurnCount++

	verdict := iv.classifier.Classify(reply)
	if verdict.OpensTopic {
		iv.state.TopicsOpened++
	}
	switch {
	case verdict.ClosesInterview:
		iv.state.Satisfaction = SatisfactionSatisfied
		iv.state.Complete = true
	case iv.state.TopicsOpened >= almostSatisfiedAt:
		iv.state.Satisfaction = SatisfactionAlmostSatisfied
	}

	return reply, nil
}

// Snapshot returns a copy of the current interview state.
func (iv *Interviewer) Snapshot() State {
	s := iv.state
	s.CanWrapUp = s.TopicsOpened >= almostSatisfiedAt
	return s
}

// History returns a copy of the conversational history: the opening
// utterance followed by alternating candidate and interviewer utterances.
func (iv *Interviewer) History() []llm.Message {
	out := make([]llm.Message, len(iv.history))
	copy(out, iv.history)
	return out
}

func (iv *Interviewer) directive() string {
	switch {
	case iv.state.TopicsOpened >= wrapUpTopicThreshold:
		return wrapUpDirective
	case iv.state.TopicsOpened >= midTopicThreshold:
		return midDirective
	default:
		return earlyDirective
	}
}

func (iv *Interviewer) generate(ctx context.Context, directive string) (string, error) {
	return iv.gen.Generate(ctx, llm.Request{
		SystemPrompt: systemPrompt,
		Messages:     iv.history,
		Instruction:  directive,
		Temperature:  iv.temperature,
		MaxTokens:    iv.maxTokens,
	})
}
