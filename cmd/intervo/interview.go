package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/intervo/intervo/internal/app"
	"github.com/intervo/intervo/internal/config"
	"github.com/intervo/intervo/internal/orchestrator"
	"github.com/intervo/intervo/internal/session"
	"github.com/intervo/intervo/pkg/audio"
	"github.com/intervo/intervo/pkg/provider/llm"
)

// transcriptFile is where the console mode saves the finished interview.
const transcriptFile = "interview_transcript.txt"

// runConsoleInterview runs a single interview on stdin: raw 16-bit PCM goes
// in, the conversation is printed as it happens, and the transcript plus a
// candidate assessment come out at the end.
func runConsoleInterview(ctx context.Context, application *app.App, cfg *config.Config) error {
	orch := application.Orchestrator()

	voice := cfg.Interview.Voice
	if voice == "" {
		catalogue := orch.Voices()
		if len(catalogue) == 0 {
			return fmt.Errorf("no voices available")
		}
		voice = catalogue[0].Name
	}

	res, err := orch.Start(ctx, application.Sessions(), orchestrator.StartRequest{
		CandidateName: cfg.Interview.CandidateName,
		RoleTitle:     cfg.Interview.RoleTitle,
		Voice:         voice,
	})
	if err != nil {
		return err
	}
	sess := res.Session

	fmt.Printf("\nInterviewer: %s\n", res.OpeningText)

	stream := newPCMStream(os.Stdin, cfg.Capture.SampleRate, cfg.Capture.Channels)
	rec := audio.NewRecorder(stream, audio.DefaultSampleRate)

	loopErr := orch.Loop(ctx, sess, rec, captureConfig(cfg.Capture), &consoleSink{w: os.Stdout})

	if loopErr == nil {
		if assessment, err := orch.Analyze(ctx, sess); err != nil {
			slog.Warn("assessment failed", "err", err)
		} else if assessment != nil {
			printAssessment(assessment)
		}
	}

	transcript, state := orch.End(ctx, application.Sessions(), sess)
	if err := exportTranscript(transcriptFile, transcript); err != nil {
		slog.Warn("failed to save transcript", "err", err)
	} else {
		fmt.Printf("\nTranscript saved to %s\n", transcriptFile)
	}
	fmt.Printf("Interview finished: %d turns, %d topics covered.\n", state.TurnCount, state.TopicsOpened)

	return loopErr
}

// ── Console sink ──────────────────────────────────────────────────────────────

// consoleSink prints the conversation as plain text. The synthesized audio is
// discarded; console mode has no playback device.
type consoleSink struct {
	w io.Writer
}

func (s *consoleSink) Say(_ context.Context, text string, _ []byte) error {
	_, err := fmt.Fprintf(s.w, "\nInterviewer: %s\n", text)
	return err
}

func (s *consoleSink) Heard(_ context.Context, text string) {
	fmt.Fprintf(s.w, "You: %s\n", text)
}

// ── Stdin PCM stream ──────────────────────────────────────────────────────────

// pcmStream adapts raw little-endian 16-bit PCM from a reader into the
// recorder's native format: mono chunks at 16 kHz. Stereo input is downmixed
// and other sample rates are resampled per chunk.
type pcmStream struct {
	r        *bufio.Reader
	srcRate  int
	channels int
	buf      []byte
}

// newPCMStream reads 100ms chunks of srcRate/channels PCM from r.
func newPCMStream(r io.Reader, srcRate, channels int) *pcmStream {
	if srcRate <= 0 {
		srcRate = audio.DefaultSampleRate
	}
	if channels <= 0 {
		channels = 1
	}
	frames := srcRate / 10
	return &pcmStream{
		r:        bufio.NewReader(r),
		srcRate:  srcRate,
		channels: channels,
		buf:      make([]byte, frames*channels*2),
	}
}

func (s *pcmStream) ReadChunk(ctx context.Context) ([]int16, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, err := io.ReadFull(s.r, s.buf)
	if err == io.ErrUnexpectedEOF {
		// Trailing partial chunk: keep whole frames, drop the rest.
		n -= n % (2 * s.channels)
		if n == 0 {
			return nil, io.EOF
		}
	} else if err != nil {
		return nil, err
	}

	samples := audio.BytesToSamples(s.buf[:n])
	if s.channels == 2 {
		samples = audio.StereoToMono(samples)
	}
	if s.srcRate != audio.DefaultSampleRate {
		samples = audio.ResampleMono(samples, s.srcRate, audio.DefaultSampleRate)
	}
	return samples, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// captureConfig maps the YAML capture tuning onto the recorder's config,
// keeping the recorder defaults for anything left unset.
func captureConfig(c config.CaptureConfig) audio.CaptureConfig {
	cfg := audio.DefaultCaptureConfig()
	if c.SilenceThreshold > 0 {
		cfg.SilenceThreshold = c.SilenceThreshold
	}
	if d := c.RequiredSilence.Std(); d > 0 {
		cfg.RequiredSilence = d
	}
	if d := c.MinDuration.Std(); d > 0 {
		cfg.MinDuration = d
	}
	if d := c.MaxDuration.Std(); d > 0 {
		cfg.MaxDuration = d
	}
	return cfg
}

// exportTranscript writes the transcript in a readable "ROLE: text" format.
func exportTranscript(path string, transcript []session.TranscriptEntry) error {
	var b strings.Builder
	for _, entry := range transcript {
		fmt.Fprintf(&b, "%s: %s\n\n", strings.ToUpper(string(entry.Role)), entry.Content)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func printAssessment(a *llm.Assessment) {
	fmt.Println("\n── Assessment ──")
	fmt.Printf("Overall score : %d/100\n", a.OverallScore)
	fmt.Printf("Recommendation: %s\n", a.Recommendation)
	if a.Summary != "" {
		fmt.Printf("Summary       : %s\n", a.Summary)
	}
	for _, s := range a.Strengths {
		fmt.Printf("  + %s\n", s)
	}
	for _, s := range a.Improvements {
		fmt.Printf("  - %s\n", s)
	}
}
