// Package tts defines the Synthesizer interface for Text-to-Speech backends.
//
// A Synthesizer wraps a speech synthesis service (e.g., Deepgram Aura) and
// converts one interviewer utterance into a complete audio payload. Voice
// selectors are validated locally against the provider's known catalogue
// before any network call so that an unknown voice surfaces as a precondition
// failure, never as a backend error.
//
// Implementations must be safe for concurrent use.
package tts

import (
	"context"
	"errors"
)

// ErrUnavailable is returned (wrapped) when the synthesis backend fails or
// cannot be reached.
var ErrUnavailable = errors.New("tts: synthesis unavailable")

// ErrInvalidVoice is returned (wrapped) when a voice selector is not in the
// provider's catalogue. It is a local precondition failure: no network call
// has been made.
var ErrInvalidVoice = errors.New("tts: invalid voice")

// Voice describes one selectable synthesis voice.
type Voice struct {
	// Name is the selector callers use (e.g., "asteria").
	Name string

	// Model is the provider-specific model identifier behind the selector
	// (e.g., "aura-asteria-en").
	Model string

	// Description is a short human-readable characterisation.
	Description string
}

// Synthesizer is the abstraction over any TTS backend.
//
// Implementations must be safe for concurrent use. Multiple synthesis
// requests may run in parallel (one per concurrent interview session).
type Synthesizer interface {
	// Synthesize converts text into a complete audio payload using the
	// voice selected by name. The encoding and sample rate are provider
	// configuration; the payload is suitable for direct playback or
	// base64 delivery to a browser.
	//
	// An unknown voice wraps [ErrInvalidVoice] before any network call.
	// Backend failures wrap [ErrUnavailable].
	Synthesize(ctx context.Context, text string, voice string) ([]byte, error)

	// Voices returns the provider's selectable voice catalogue. The result
	// is a copy; callers may modify it freely.
	Voices() []Voice
}
