// Package groq provides a Groq-backed STT transcriber using Groq's hosted
// Whisper models via the OpenAI-compatible audio transcription API. It
// implements the stt.Transcriber interface.
package groq

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/intervo/intervo/pkg/provider/stt"
)

const (
	// defaultBaseURL is Groq's OpenAI-compatible API root.
	defaultBaseURL = "https://api.groq.com/openai/v1"

	// defaultModel is Groq's fast hosted Whisper variant.
	defaultModel = "whisper-large-v3-turbo"

	defaultLanguage = "en"
	defaultTimeout  = 30 * time.Second
)

// Compile-time assertion that Transcriber implements stt.Transcriber.
var _ stt.Transcriber = (*Transcriber)(nil)

// Option is a functional option for configuring the Groq Transcriber.
type Option func(*Transcriber)

// WithModel sets the Whisper model identifier (e.g., "whisper-large-v3-turbo").
func WithModel(model string) Option {
	return func(t *Transcriber) {
		t.model = model
	}
}

// WithLanguage sets the ISO 639-1 language hint for recognition (e.g., "en").
// An empty value lets the backend auto-detect.
func WithLanguage(language string) Option {
	return func(t *Transcriber) {
		t.language = language
	}
}

// WithBaseURL overrides the API endpoint. Useful for tests and for pointing
// at any other OpenAI-compatible transcription server.
func WithBaseURL(url string) Option {
	return func(t *Transcriber) {
		t.baseURL = url
	}
}

// WithTimeout sets the per-request HTTP timeout. Defaults to 30 s.
func WithTimeout(d time.Duration) Option {
	return func(t *Transcriber) {
		t.timeout = d
	}
}

// Transcriber implements stt.Transcriber backed by Groq's transcription API.
type Transcriber struct {
	client   oai.Client
	model    string
	language string
	baseURL  string
	timeout  time.Duration
}

// New creates a new Groq Transcriber. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Transcriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("groq: apiKey must not be empty")
	}
	t := &Transcriber{
		model:    defaultModel,
		language: defaultLanguage,
		baseURL:  defaultBaseURL,
		timeout:  defaultTimeout,
	}
	for _, o := range opts {
		o(t)
	}

	t.client = oai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(t.baseURL),
		option.WithHTTPClient(&http.Client{Timeout: t.timeout}),
	)
	return t, nil
}

// Transcribe uploads the audio container to Groq and returns the recognised
// text, trimmed of surrounding whitespace. Backend failures wrap
// [stt.ErrUnavailable] so callers can classify them without inspecting
// provider-specific error types.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, format stt.Format) (string, error) {
	if len(audio) == 0 {
		return "", nil
	}
	if !format.IsValid() {
		return "", fmt.Errorf("groq: unsupported audio format %q", format)
	}

	params := oai.AudioTranscriptionNewParams{
		File:  oai.File(bytes.NewReader(audio), "audio."+string(format), contentType(format)),
		Model: oai.AudioModel(t.model),
	}
	if t.language != "" {
		params.Language = oai.String(t.language)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("groq: transcribe: %w: %w", stt.ErrUnavailable, err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// contentType maps an stt.Format to its MIME type for the multipart upload.
func contentType(format stt.Format) string {
	switch format {
	case stt.FormatWebM:
		return "audio/webm"
	default:
		return "audio/wav"
	}
}
