// Package stt defines the Transcriber interface for Speech-to-Text backends.
//
// A Transcriber wraps a batch transcription service (e.g., Groq's hosted
// Whisper models) and converts one complete audio payload into text. The
// interview core records a candidate utterance as a self-contained audio
// container and hands it across this boundary; streaming recognition is a
// provider concern and deliberately not part of the contract.
//
// Implementations must be safe for concurrent use. Multiple interview
// sessions may transcribe simultaneously.
package stt

import (
	"context"
	"errors"
)

// ErrUnavailable is returned (wrapped) when the transcription backend cannot
// be reached or cannot decode the supplied audio. Callers must not retry
// inside the core; retry policy belongs to the hosting layer.
var ErrUnavailable = errors.New("stt: transcription unavailable")

// Format identifies the container format of an audio payload handed to
// Transcribe.
type Format string

const (
	// FormatWAV is a RIFF/WAV container with 16-bit signed PCM samples,
	// as produced by the audio recorder.
	FormatWAV Format = "wav"

	// FormatWebM is a compressed WebM/Opus container, the format browsers
	// produce when recording via MediaRecorder.
	FormatWebM Format = "webm"
)

// IsValid reports whether f is a recognised audio format.
func (f Format) IsValid() bool {
	return f == FormatWAV || f == FormatWebM
}

// Transcriber is the abstraction over any batch STT backend.
//
// Implementations must be safe for concurrent use.
type Transcriber interface {
	// Transcribe converts a complete audio payload into text. The audio
	// slice must be a self-describing container matching format; raw PCM
	// without a header is not accepted.
	//
	// An empty (but successful) transcription returns "" and a nil error —
	// callers treat that as "no speech detected", not as a failure.
	// Backend or decode failures wrap [ErrUnavailable].
	Transcribe(ctx context.Context, audio []byte, format Format) (string, error)
}
