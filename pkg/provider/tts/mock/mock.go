// Package mock provides a TTS synthesizer for testing that records calls
// and returns configurable audio.
package mock

import (
	"context"
	"sync"

	"github.com/intervo/intervo/pkg/provider/tts"
)

// SynthesizeCall records the arguments of a single Synthesize invocation.
type SynthesizeCall struct {
	Text  string
	Voice string
}

// Synthesizer implements tts.Synthesizer with canned responses.
type Synthesizer struct {
	mu sync.Mutex

	// Audio is returned by every Synthesize call when Err is nil.
	Audio []byte
	// Err, when set, is returned by every Synthesize call.
	Err error
	// VoiceList overrides the default single-voice catalogue.
	VoiceList []tts.Voice

	Calls []SynthesizeCall
}

func (s *Synthesizer) Synthesize(_ context.Context, text, voice string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, SynthesizeCall{Text: text, Voice: voice})
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Audio, nil
}

func (s *Synthesizer) Voices() []tts.Voice {
	if len(s.VoiceList) > 0 {
		return s.VoiceList
	}
	return []tts.Voice{{Name: "mock", Model: "mock-en", Description: "Test voice"}}
}

// CallCount returns the number of Synthesize invocations so far.
func (s *Synthesizer) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}
