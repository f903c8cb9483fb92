package resilience

import (
	"context"
	"errors"
	"fmt"

	"github.com/intervo/intervo/pkg/provider/tts"
)

// TTSFallback implements [tts.Synthesizer] with automatic failover across
// multiple synthesis backends. Each backend has its own circuit breaker.
//
// Fallback backends must carry the same voice catalogue as the primary, or a
// superset of it; voice validation runs against the primary's catalogue only.
type TTSFallback struct {
	group *FallbackGroup[tts.Synthesizer]
}

// Compile-time interface assertion.
var _ tts.Synthesizer = (*TTSFallback)(nil)

// NewTTSFallback creates a [TTSFallback] with primary as the preferred backend.
func NewTTSFallback(primary tts.Synthesizer, primaryName string, cfg FallbackConfig) *TTSFallback {
	return &TTSFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional synthesizer as a fallback.
func (f *TTSFallback) AddFallback(name string, s tts.Synthesizer) {
	f.group.AddFallback(name, s)
}

// Synthesize renders the text with the first healthy backend. If the primary
// fails, subsequent fallbacks are tried in order. When every backend is
// exhausted the error carries [tts.ErrUnavailable].
func (f *TTSFallback) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	audio, err := ExecuteWithResult(f.group, func(s tts.Synthesizer) ([]byte, error) {
		return s.Synthesize(ctx, text, voice)
	})
	if err != nil {
		if !errors.Is(err, tts.ErrUnavailable) {
			err = fmt.Errorf("%w: %w", tts.ErrUnavailable, err)
		}
		return nil, err
	}
	return audio, nil
}

// Voices returns the primary's voice catalogue. Catalogue lookup does not
// participate in failover because it is static metadata.
func (f *TTSFallback) Voices() []tts.Voice {
	if len(f.group.entries) > 0 {
		return f.group.entries[0].value.Voices()
	}
	return nil
}
