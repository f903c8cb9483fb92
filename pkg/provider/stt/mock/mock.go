// Package mock provides a test double for the stt.Transcriber interface.
//
// Use Transcriber in unit tests to feed controlled transcription results
// without a live STT backend. All fields are safe to set before calling any
// method; mutating them during a concurrent call is the caller's
// responsibility.
//
// Example:
//
//	tr := &mock.Transcriber{Text: "I led the migration to Kubernetes."}
//	text, err := tr.Transcribe(ctx, audio, stt.FormatWAV)
package mock

import (
	"context"
	"sync"

	"github.com/intervo/intervo/pkg/provider/stt"
)

// TranscribeCall records a single invocation of Transcribe.
type TranscribeCall struct {
	// Audio is a copy of the audio payload passed to Transcribe.
	Audio []byte
	// Format is the audio format passed to Transcribe.
	Format stt.Format
}

// Transcriber is a mock implementation of stt.Transcriber.
// Zero values cause Transcribe to return "" and a nil error.
type Transcriber struct {
	mu sync.Mutex

	// Text is returned by Transcribe. If Texts is non-empty it takes
	// precedence: each call consumes the next element, and the last element
	// is repeated once the slice is exhausted.
	Text  string
	Texts []string

	// Err, if non-nil, is returned as the error from Transcribe.
	Err error

	// Calls records every invocation of Transcribe in order.
	Calls []TranscribeCall
}

// Transcribe implements stt.Transcriber.
func (t *Transcriber) Transcribe(_ context.Context, audio []byte, format stt.Format) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cp := make([]byte, len(audio))
	copy(cp, audio)
	t.Calls = append(t.Calls, TranscribeCall{Audio: cp, Format: format})

	if t.Err != nil {
		return "", t.Err
	}
	if len(t.Texts) > 0 {
		i := len(t.Calls) - 1
		if i >= len(t.Texts) {
			i = len(t.Texts) - 1
		}
		return t.Texts[i], nil
	}
	return t.Text, nil
}

// CallCount returns the number of recorded Transcribe invocations.
func (t *Transcriber) CallCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.Calls)
}
