package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/intervo/intervo/internal/session"
	"github.com/intervo/intervo/pkg/audio"
	"github.com/intervo/intervo/pkg/provider/stt"
)

// Sink receives the conversation as an interactive loop progresses.
type Sink interface {
	// Say delivers one interviewer utterance and its synthesized audio.
	Say(ctx context.Context, text string, speech []byte) error

	// Heard reports the transcription of the candidate's latest utterance.
	Heard(ctx context.Context, text string)
}

// Loop runs the interactive interview loop for a session that has already
// been started: capture, transcribe, advance, speak, until the interview
// completes, the candidate says an exit phrase, or ctx is cancelled.
//
// Empty captures are recovered locally with a spoken re-prompt and advance
// nothing. Any capability failure ends the loop with an error; the
// transcript accumulated so far stays intact on the session.
func (o *Orchestrator) Loop(ctx context.Context, sess *session.Session, rec *audio.Recorder, capture audio.CaptureConfig, sink Sink) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if sess.Interviewer.Snapshot().Complete {
			return nil
		}

		wav, err := rec.Capture(ctx, capture)
		if err != nil {
			return fmt.Errorf("orchestrator: loop: %w", err)
		}
		o.recordCapture(ctx, wav, rec.SampleRate())

		start := time.Now()

		if len(wav) == 0 {
			o.metrics.RecordTurn(ctx, "empty", time.Since(start))
			if err := o.reprompt(ctx, sess, sink); err != nil {
				return err
			}
			continue
		}

		text, err := o.transcribe(ctx, wav, stt.FormatWAV)
		if err != nil {
			o.metrics.RecordTurn(ctx, "error", time.Since(start))
			return err
		}
		if text == "" {
			o.metrics.RecordTurn(ctx, "empty", time.Since(start))
			if err := o.reprompt(ctx, sess, sink); err != nil {
				return err
			}
			continue
		}
		sink.Heard(ctx, text)

		if containsExitPhrase(text) {
			return o.farewell(ctx, sess, text, sink)
		}

		if err := sess.BeginTurn(); err != nil {
			return err
		}
		result, err := o.advanceAndSpeak(ctx, sess, text)
		sess.EndTurn()
		if err != nil {
			o.metrics.RecordTurn(ctx, "error", time.Since(start))
			return err
		}
		o.metrics.RecordTurn(ctx, "ok", time.Since(start))

		if err := sink.Say(ctx, result.InterviewerText, result.Audio); err != nil {
			return fmt.Errorf("orchestrator: loop: %w", err)
		}
		if result.State.Complete {
			o.metrics.RecordInterview(ctx, "completed")
			return nil
		}
	}
}

// reprompt asks the candidate to repeat without advancing any state. The
// prompt is not part of the transcript.
func (o *Orchestrator) reprompt(ctx context.Context, sess *session.Session, sink Sink) error {
	speech, err := o.synthesize(ctx, repeatPrompt, sess.Voice)
	if err != nil {
		return fmt.Errorf("orchestrator: loop: %w", err)
	}
	return sink.Say(ctx, repeatPrompt, speech)
}

// farewell concludes the interview after an explicit exit phrase, outside
// the state machine's own closure detection. Both the exit utterance and the
// farewell are part of the transcript.
func (o *Orchestrator) farewell(ctx context.Context, sess *session.Session, exitText string, sink Sink) error {
	sess.Append(session.RoleCandidate, exitText)

	speech, err := o.synthesize(ctx, farewellMessage, sess.Voice)
	if err != nil {
		return fmt.Errorf("orchestrator: loop: %w", err)
	}
	sess.Append(session.RoleInterviewer, farewellMessage)
	return sink.Say(ctx, farewellMessage, speech)
}

func (o *Orchestrator) recordCapture(ctx context.Context, wav []byte, sampleRate int) {
	if len(wav) <= 44 || sampleRate <= 0 {
		return
	}
	seconds := float64(len(wav)-44) / 2 / float64(sampleRate)
	o.metrics.CaptureDuration.Record(ctx, seconds)
}
