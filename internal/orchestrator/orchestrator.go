// Package orchestrator ties the capture, transcription, state-machine,
// generation, and synthesis stages together into interview turns. It exposes
// the same step logic in two modes: a stateless request/response mode for
// transport layers, and an interactive loop that owns the capture step.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/intervo/intervo/internal/interview"
	"github.com/intervo/intervo/internal/observe"
	"github.com/intervo/intervo/internal/session"
	"github.com/intervo/intervo/pkg/provider/llm"
	"github.com/intervo/intervo/pkg/provider/stt"
	"github.com/intervo/intervo/pkg/provider/tts"
)

// ErrEmptyCapture signals that no speech was captured or transcribed for a
// turn. It is a distinct non-success outcome, not a failure: interactive
// mode recovers by re-prompting, stateless callers decide whether to
// re-request.
var ErrEmptyCapture = errors.New("orchestrator: no speech captured")

// ErrInterviewComplete signals a turn submitted for an interview that has
// already concluded.
var ErrInterviewComplete = errors.New("orchestrator: interview already complete")

// Spoken fillers outside the state machine proper.
const (
	repeatPrompt    = "I didn't catch that. Could you please repeat?"
	farewellMessage = "Thank you for your time. The interview is now concluded."
)

// exitPhrases force-end the interactive loop when the candidate says them,
// independent of the state machine's own closure detection.
var exitPhrases = []string{
	"exit",
	"quit",
	"stop interview",
	"end interview",
}

// Orchestrator drives interview turns against injected capability providers.
// It holds no per-session state; all methods are safe for concurrent use
// across distinct sessions.
type Orchestrator struct {
	stt      stt.Transcriber
	gen      llm.Generator
	tts      tts.Synthesizer
	analyzer llm.Analyzer

	metrics *observe.Metrics
	ivOpts  []interview.Option
}

// Option configures an [Orchestrator].
type Option func(*Orchestrator)

// WithAnalyzer enables post-interview assessment via the given analyzer.
func WithAnalyzer(a llm.Analyzer) Option {
	return func(o *Orchestrator) { o.analyzer = a }
}

// WithMetrics replaces the default metrics instance, mainly for tests.
func WithMetrics(m *observe.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithInterviewerOptions forwards options to every interviewer the
// orchestrator creates.
func WithInterviewerOptions(opts ...interview.Option) Option {
	return func(o *Orchestrator) { o.ivOpts = opts }
}

// New returns an Orchestrator using the given capability providers.
func New(transcriber stt.Transcriber, gen llm.Generator, synthesizer tts.Synthesizer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		stt: transcriber,
		gen: gen,
		tts: synthesizer,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.metrics == nil {
		o.metrics = observe.DefaultMetrics()
	}
	return o
}

// StartRequest describes a new interview.
type StartRequest struct {
	CandidateName string
	RoleTitle     string
	Voice         string
}

// StartResult is the outcome of starting an interview: the registered
// session, the opening utterance, and its synthesized audio.
type StartResult struct {
	Session      *session.Session
	OpeningText  string
	OpeningAudio []byte
	State        interview.State
}

// Start begins a new interview: it validates the voice, generates and
// synthesizes the opening utterance, and registers a session in reg. Nothing
// is registered if any step fails.
func (o *Orchestrator) Start(ctx context.Context, reg *session.Registry, req StartRequest) (*StartResult, error) {
	if req.CandidateName == "" {
		req.CandidateName = "Candidate"
	}
	if req.RoleTitle == "" {
		req.RoleTitle = "Software Engineer"
	}
	if err := o.validateVoice(req.Voice); err != nil {
		return nil, err
	}

	iv := interview.New(o.gen, o.ivOpts...)

	start := time.Now()
	opening, err := iv.Begin(ctx, req.CandidateName, req.RoleTitle)
	o.metrics.RecordStage(ctx, o.metrics.LLMDuration, "llm", "generate", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: start: %w", err)
	}

	openingAudio, err := o.synthesize(ctx, opening, req.Voice)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: start: %w", err)
	}

	sess := reg.Create(req.CandidateName, req.RoleTitle, req.Voice, iv)
	sess.Append(session.RoleInterviewer, opening)

	o.metrics.ActiveSessions.Add(ctx, 1)
	o.metrics.RecordInterview(ctx, "started")

	return &StartResult{
		Session:      sess,
		OpeningText:  opening,
		OpeningAudio: openingAudio,
		State:        iv.Snapshot(),
	}, nil
}

// TurnResult is the outcome of one processed turn.
type TurnResult struct {
	CandidateText   string
	InterviewerText string
	Audio           []byte
	State           interview.State
}

// RunTurn processes one already-captured audio payload for sess: claim the
// turn slot, transcribe, advance the state machine, synthesize the reply.
//
// An empty payload or an empty transcription returns [ErrEmptyCapture]. A
// concurrent turn for the same session returns [session.ErrTurnInProgress].
// Capability failures propagate unwrapped of any retry policy.
func (o *Orchestrator) RunTurn(ctx context.Context, sess *session.Session, payload []byte, format stt.Format) (*TurnResult, error) {
	if err := sess.BeginTurn(); err != nil {
		return nil, err
	}
	defer sess.EndTurn()

	if sess.Interviewer.Snapshot().Complete {
		return nil, ErrInterviewComplete
	}

	start := time.Now()

	text, err := o.transcribe(ctx, payload, format)
	if err != nil {
		o.metrics.RecordTurn(ctx, "error", time.Since(start))
		return nil, err
	}
	if text == "" {
		o.metrics.RecordTurn(ctx, "empty", time.Since(start))
		return nil, ErrEmptyCapture
	}

	result, err := o.advanceAndSpeak(ctx, sess, text)
	if err != nil {
		o.metrics.RecordTurn(ctx, "error", time.Since(start))
		return nil, err
	}

	o.metrics.RecordTurn(ctx, "ok", time.Since(start))
	if result.State.Complete {
		o.metrics.RecordInterview(ctx, "completed")
	}
	return result, nil
}

// End disposes of sess in reg and returns its final transcript and state.
func (o *Orchestrator) End(ctx context.Context, reg *session.Registry, sess *session.Session) ([]session.TranscriptEntry, interview.State) {
	transcript := sess.Transcript()
	state := sess.Interviewer.Snapshot()
	if err := reg.Dispose(sess.ID); err == nil {
		o.metrics.ActiveSessions.Add(ctx, -1)
	}
	return transcript, state
}

// Analyze produces a structured assessment of the session's transcript so
// far. It requires an analyzer to have been configured via [WithAnalyzer].
func (o *Orchestrator) Analyze(ctx context.Context, sess *session.Session) (*llm.Assessment, error) {
	if o.analyzer == nil {
		return nil, fmt.Errorf("orchestrator: analyze: %w", llm.ErrUnavailable)
	}

	transcript := sess.Transcript()
	lines := make([]string, len(transcript))
	for i, e := range transcript {
		lines[i] = fmt.Sprintf("%s: %s", strings.ToUpper(string(e.Role)), e.Content)
	}

	start := time.Now()
	assessment, err := o.analyzer.Analyze(ctx, llm.AnalysisRequest{
		CandidateName: sess.CandidateName,
		RoleTitle:     sess.RoleTitle,
		Transcript:    lines,
	})
	o.metrics.RecordStage(ctx, o.metrics.LLMDuration, "llm", "analyze", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: analyze: %w", err)
	}
	return assessment, nil
}

// Voices returns the synthesizer's voice catalogue.
func (o *Orchestrator) Voices() []tts.Voice {
	return o.tts.Voices()
}

// advanceAndSpeak runs steps shared by both turn modes: advance the state
// machine, append both transcript entries, synthesize the reply. The
// transcript entries stay even if synthesis fails afterwards; already-spoken
// turns are never dropped.
func (o *Orchestrator) advanceAndSpeak(ctx context.Context, sess *session.Session, candidateText string) (*TurnResult, error) {
	start := time.Now()
	reply, err := sess.Interviewer.Advance(ctx, candidateText)
	o.metrics.RecordStage(ctx, o.metrics.LLMDuration, "llm", "generate", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: turn: %w", err)
	}

	sess.Append(session.RoleCandidate, candidateText)
	sess.Append(session.RoleInterviewer, reply)

	replyAudio, err := o.synthesize(ctx, reply, sess.Voice)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: turn: %w", err)
	}

	return &TurnResult{
		CandidateText:   candidateText,
		InterviewerText: reply,
		Audio:           replyAudio,
		State:           sess.Interviewer.Snapshot(),
	}, nil
}

func (o *Orchestrator) transcribe(ctx context.Context, payload []byte, format stt.Format) (string, error) {
	if len(payload) == 0 {
		return "", nil
	}
	start := time.Now()
	text, err := o.stt.Transcribe(ctx, payload, format)
	o.metrics.RecordStage(ctx, o.metrics.STTDuration, "stt", "transcribe", time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("orchestrator: turn: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (o *Orchestrator) synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	start := time.Now()
	audio, err := o.tts.Synthesize(ctx, text, voice)
	o.metrics.RecordStage(ctx, o.metrics.TTSDuration, "tts", "synthesize", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return audio, nil
}

func (o *Orchestrator) validateVoice(voice string) error {
	for _, v := range o.tts.Voices() {
		if v.Name == voice {
			return nil
		}
	}
	return fmt.Errorf("orchestrator: %w: %q", tts.ErrInvalidVoice, voice)
}

func containsExitPhrase(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range exitPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
