// Package audio implements silence-terminated capture of mono 16-bit PCM
// streams and the WAV packaging used to hand captures to transcription.
//
// A [Stream] delivers samples in fixed-size chunks; the [Recorder] buffers
// chunks and decides, chunk by chunk, when the speaker has stopped. Captured
// audio is returned as a self-describing WAV container so downstream
// transcription can treat it as a complete file regardless of transport.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Stream delivers mono 16-bit PCM audio in fixed-size chunks.
//
// ReadChunk blocks until a full chunk is available, returns io.EOF when the
// stream ends, or ctx's error when the context is cancelled. A chunk is one
// quantum of samples (typically 1024); the final chunk of a stream may be
// shorter.
type Stream interface {
	ReadChunk(ctx context.Context) ([]int16, error)
}

// Default capture parameters, matching a conversational turn: stop after
// 1.5s of continuous quiet once at least a second of audio is buffered,
// never record longer than 30s.
const (
	DefaultSampleRate = 16000

	DefaultMaxDuration      = 30 * time.Second
	DefaultSilenceThreshold = 0.01
	DefaultRequiredSilence  = 1500 * time.Millisecond
	DefaultMinDuration      = time.Second
)

// CaptureConfig tunes the silence-termination rule of [Recorder.Capture].
type CaptureConfig struct {
	// MaxDuration is the hard cap on a single capture. When reached, the
	// buffered audio is returned even if no silence was detected.
	MaxDuration time.Duration

	// SilenceThreshold is the normalized RMS energy (0..1 over int16 full
	// scale) below which a chunk counts as quiet.
	SilenceThreshold float64

	// RequiredSilence is how long the stream must stay continuously quiet
	// before the capture is judged finished.
	RequiredSilence time.Duration

	// MinDuration is the amount of audio that must be buffered before quiet
	// chunks are counted at all. This keeps a capture from terminating
	// immediately on the startup noise floor.
	MinDuration time.Duration
}

// DefaultCaptureConfig returns the standard conversational-turn tuning.
func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		MaxDuration:      DefaultMaxDuration,
		SilenceThreshold: DefaultSilenceThreshold,
		RequiredSilence:  DefaultRequiredSilence,
		MinDuration:      DefaultMinDuration,
	}
}

// Recorder captures audio from a single [Stream]. A Recorder is not safe for
// concurrent use; create one per capture source.
type Recorder struct {
	stream     Stream
	sampleRate int
}

// NewRecorder returns a Recorder reading mono 16-bit samples from stream at
// the given sample rate. A non-positive sampleRate falls back to
// [DefaultSampleRate].
func NewRecorder(stream Stream, sampleRate int) *Recorder {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Recorder{stream: stream, sampleRate: sampleRate}
}

// SampleRate returns the recorder's sample rate in Hz.
func (r *Recorder) SampleRate() int { return r.sampleRate }

// Capture records until the stream has been continuously quiet for
// cfg.RequiredSilence, until cfg.MaxDuration elapses, or until the stream
// ends, whichever comes first. Quiet chunks are only counted once at least
// cfg.MinDuration of audio is buffered.
//
// The buffered audio is returned as a mono 16-bit WAV container. A capture
// that buffered nothing returns (nil, nil): callers must treat an empty
// result as "no speech captured", not as a failure.
func (r *Recorder) Capture(ctx context.Context, cfg CaptureConfig) ([]byte, error) {
	var (
		buf     []int16
		elapsed time.Duration
		quiet   time.Duration
	)
	for {
		chunk, err := r.stream.ReadChunk(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("audio: read chunk: %w", err)
		}
		if len(chunk) == 0 {
			continue
		}

		buf = append(buf, chunk...)
		chunkDur := r.chunkDuration(len(chunk))
		elapsed += chunkDur

		if RMS(chunk) < cfg.SilenceThreshold && elapsed >= cfg.MinDuration {
			quiet += chunkDur
		} else {
			quiet = 0
		}

		if quiet >= cfg.RequiredSilence || elapsed >= cfg.MaxDuration {
			break
		}
	}
	return r.encode(buf), nil
}

// CaptureFixed records for exactly duration with no early termination. Like
// [Recorder.Capture], a capture that buffered nothing returns (nil, nil).
func (r *Recorder) CaptureFixed(ctx context.Context, duration time.Duration) ([]byte, error) {
	var (
		buf     []int16
		elapsed time.Duration
	)
	for elapsed < duration {
		chunk, err := r.stream.ReadChunk(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("audio: read chunk: %w", err)
		}
		if len(chunk) == 0 {
			continue
		}
		buf = append(buf, chunk...)
		elapsed += r.chunkDuration(len(chunk))
	}
	return r.encode(buf), nil
}

func (r *Recorder) chunkDuration(samples int) time.Duration {
	return time.Duration(samples) * time.Second / time.Duration(r.sampleRate)
}

func (r *Recorder) encode(buf []int16) []byte {
	if len(buf) == 0 {
		return nil
	}
	return EncodeWAV(SamplesToBytes(buf), r.sampleRate, 1)
}
