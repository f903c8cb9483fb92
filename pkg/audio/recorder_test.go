package audio_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/intervo/intervo/pkg/audio"
	"github.com/intervo/intervo/pkg/audio/mock"
)

// capturedSamples strips the 44-byte WAV header and returns the PCM samples.
func capturedSamples(t *testing.T, wav []byte) []int16 {
	t.Helper()
	if len(wav) < 44 {
		t.Fatalf("capture returned %d bytes, want at least a WAV header", len(wav))
	}
	return audio.BytesToSamples(wav[44:])
}

func TestCapture_SilentFromStart_TerminatesAtMaxDuration(t *testing.T) {
	// 1024-sample chunks at 16kHz are 64ms each. With MinDuration 1s the
	// silence rule cannot fire before 2.5s of audio, so the 2s cap wins.
	stream := &mock.Stream{Chunks: mock.Silence(60, 1024)}
	rec := audio.NewRecorder(stream, 16000)

	wav, err := rec.Capture(context.Background(), audio.CaptureConfig{
		MaxDuration:      2 * time.Second,
		SilenceThreshold: 0.01,
		RequiredSilence:  1500 * time.Millisecond,
		MinDuration:      time.Second,
	})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}

	samples := capturedSamples(t, wav)
	// 32 chunks push elapsed time past the 2s cap.
	if got, want := len(samples), 32*1024; got != want {
		t.Errorf("captured %d samples, want %d (max-duration cutoff)", got, want)
	}
}

func TestCapture_SilenceAfterSpeech_TerminatesAfterHangover(t *testing.T) {
	// 800-sample chunks at 16kHz are 50ms each: 40 loud chunks are exactly
	// 2s of speech, and 1.5s of required silence is 30 quiet chunks.
	chunks := mock.Tone(40, 800, 8000)
	chunks = append(chunks, mock.Silence(200, 800)...)
	stream := &mock.Stream{Chunks: chunks}
	rec := audio.NewRecorder(stream, 16000)

	wav, err := rec.Capture(context.Background(), audio.CaptureConfig{
		MaxDuration:      30 * time.Second,
		SilenceThreshold: 0.01,
		RequiredSilence:  1500 * time.Millisecond,
		MinDuration:      time.Second,
	})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}

	samples := capturedSamples(t, wav)
	if got, want := len(samples), 70*800; got != want {
		t.Errorf("captured %d samples, want %d (2s speech + 1.5s hangover)", got, want)
	}
}

func TestCapture_SpeechResetsQuietCounter(t *testing.T) {
	// 1s silence is not enough to terminate; the speech burst in the middle
	// must reset the counter so capture runs until the stream ends.
	chunks := mock.Tone(30, 800, 8000)
	chunks = append(chunks, mock.Silence(20, 800)...) // 1s quiet, below hangover
	chunks = append(chunks, mock.Tone(10, 800, 8000)...)
	stream := &mock.Stream{Chunks: chunks}
	rec := audio.NewRecorder(stream, 16000)

	wav, err := rec.Capture(context.Background(), audio.DefaultCaptureConfig())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}

	samples := capturedSamples(t, wav)
	if got, want := len(samples), 60*800; got != want {
		t.Errorf("captured %d samples, want %d (entire stream)", got, want)
	}
}

func TestCapture_EmptyStream_ReturnsEmptyWithoutError(t *testing.T) {
	rec := audio.NewRecorder(&mock.Stream{}, 16000)

	wav, err := rec.Capture(context.Background(), audio.DefaultCaptureConfig())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if len(wav) != 0 {
		t.Errorf("capture of empty stream returned %d bytes, want empty", len(wav))
	}
}

func TestCapture_StreamFailure_ReturnsError(t *testing.T) {
	streamErr := errors.New("device gone")
	stream := &mock.Stream{Chunks: mock.Tone(2, 1024, 8000), Err: streamErr}
	rec := audio.NewRecorder(stream, 16000)

	_, err := rec.Capture(context.Background(), audio.DefaultCaptureConfig())
	if !errors.Is(err, streamErr) {
		t.Fatalf("err = %v, want wrapped stream failure", err)
	}
}

func TestCapture_CancelledContext_ReturnsContextError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := audio.NewRecorder(&mock.Stream{Chunks: mock.Silence(10, 1024)}, 16000)

	_, err := rec.Capture(ctx, audio.DefaultCaptureConfig())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestCaptureFixed_ReadsRequestedDuration(t *testing.T) {
	stream := &mock.Stream{Chunks: mock.Tone(100, 800, 8000)}
	rec := audio.NewRecorder(stream, 16000)

	wav, err := rec.CaptureFixed(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("CaptureFixed: %v", err)
	}

	samples := capturedSamples(t, wav)
	if got, want := len(samples), 20*800; got != want {
		t.Errorf("captured %d samples, want %d (exactly 1s)", got, want)
	}
}

func TestCaptureFixed_ShortStream_ReturnsWhatWasBuffered(t *testing.T) {
	stream := &mock.Stream{Chunks: mock.Tone(5, 800, 8000)}
	rec := audio.NewRecorder(stream, 16000)

	wav, err := rec.CaptureFixed(context.Background(), 10*time.Second)
	if err != nil {
		t.Fatalf("CaptureFixed: %v", err)
	}

	samples := capturedSamples(t, wav)
	if got, want := len(samples), 5*800; got != want {
		t.Errorf("captured %d samples, want %d", got, want)
	}
}
