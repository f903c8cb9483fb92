package resilience

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/intervo/intervo/pkg/provider/tts"
	ttsmock "github.com/intervo/intervo/pkg/provider/tts/mock"
)

func TestTTSFallback_Synthesize_PrimarySuccess(t *testing.T) {
	primary := &ttsmock.Synthesizer{Audio: []byte("primary-audio")}
	secondary := &ttsmock.Synthesizer{Audio: []byte("secondary-audio")}

	fb := NewTTSFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("secondary", secondary)

	audio, err := fb.Synthesize(context.Background(), "hello", "mock")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(audio, []byte("primary-audio")) {
		t.Fatalf("audio = %q, want primary-audio", audio)
	}
	if secondary.CallCount() != 0 {
		t.Fatalf("secondary called %d times, want 0", secondary.CallCount())
	}
}

func TestTTSFallback_Synthesize_Failover(t *testing.T) {
	primary := &ttsmock.Synthesizer{Err: tts.ErrUnavailable}
	secondary := &ttsmock.Synthesizer{Audio: []byte("secondary-audio")}

	fb := NewTTSFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("secondary", secondary)

	audio, err := fb.Synthesize(context.Background(), "hello", "mock")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(audio, []byte("secondary-audio")) {
		t.Fatalf("audio = %q, want secondary-audio", audio)
	}
	if got := secondary.Calls[0].Voice; got != "mock" {
		t.Fatalf("voice = %q, want 'mock'", got)
	}
}

func TestTTSFallback_Synthesize_AllFail(t *testing.T) {
	primary := &ttsmock.Synthesizer{Err: tts.ErrUnavailable}

	fb := NewTTSFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})

	_, err := fb.Synthesize(context.Background(), "hello", "mock")
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
	if !errors.Is(err, tts.ErrUnavailable) {
		t.Fatalf("err = %v, want tts.ErrUnavailable in the chain", err)
	}
}

func TestTTSFallback_Voices_ReturnsPrimaryCatalogue(t *testing.T) {
	primary := &ttsmock.Synthesizer{
		Err: tts.ErrUnavailable,
		VoiceList: []tts.Voice{
			{Name: "aura-asteria", Model: "aura-asteria-en"},
		},
	}
	secondary := &ttsmock.Synthesizer{Audio: []byte("ok")}

	fb := NewTTSFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 1},
	})
	fb.AddFallback("secondary", secondary)

	// Trip the primary's breaker; the catalogue must still come from it.
	_, _ = fb.Synthesize(context.Background(), "hello", "aura-asteria")

	voices := fb.Voices()
	if len(voices) != 1 || voices[0].Name != "aura-asteria" {
		t.Fatalf("voices = %+v, want the primary's catalogue", voices)
	}
}
