package resilience

import (
	"context"
	"errors"
	"fmt"

	"github.com/intervo/intervo/pkg/provider/stt"
)

// STTFallback implements [stt.Transcriber] with automatic failover across
// multiple transcription backends. Each backend has its own circuit breaker.
type STTFallback struct {
	group *FallbackGroup[stt.Transcriber]
}

// Compile-time interface assertion.
var _ stt.Transcriber = (*STTFallback)(nil)

// NewSTTFallback creates an [STTFallback] with primary as the preferred backend.
func NewSTTFallback(primary stt.Transcriber, primaryName string, cfg FallbackConfig) *STTFallback {
	return &STTFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional transcriber as a fallback.
func (f *STTFallback) AddFallback(name string, t stt.Transcriber) {
	f.group.AddFallback(name, t)
}

// Transcribe sends the audio to the first healthy backend. If the primary
// fails or its breaker is open, subsequent fallbacks are tried in order. When
// every backend is exhausted the error carries [stt.ErrUnavailable] so callers
// map it like any other transcription outage.
func (f *STTFallback) Transcribe(ctx context.Context, audio []byte, format stt.Format) (string, error) {
	text, err := ExecuteWithResult(f.group, func(t stt.Transcriber) (string, error) {
		return t.Transcribe(ctx, audio, format)
	})
	if err != nil {
		if !errors.Is(err, stt.ErrUnavailable) {
			err = fmt.Errorf("%w: %w", stt.ErrUnavailable, err)
		}
		return "", err
	}
	return text, nil
}
