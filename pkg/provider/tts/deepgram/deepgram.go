// Package deepgram provides a Deepgram-backed TTS synthesizer using the
// Deepgram Aura speak API. It implements the tts.Synthesizer interface.
package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/intervo/intervo/pkg/provider/tts"
)

const (
	speakEndpoint = "https://api.deepgram.com/v1/speak"

	// defaultEncoding is 16-bit signed little-endian PCM, the format the
	// audio player and browser decoder both consume directly.
	defaultEncoding = "linear16"

	defaultSampleRate = 24000
	defaultVoice      = "asteria"
	defaultTimeout    = 30 * time.Second
)

// auraVoices maps voice selectors to Deepgram Aura model identifiers.
var auraVoices = map[string]tts.Voice{
	"asteria": {Name: "asteria", Model: "aura-asteria-en", Description: "Female, American, warm"},
	"luna":    {Name: "luna", Model: "aura-luna-en", Description: "Female, American, soft"},
	"stella":  {Name: "stella", Model: "aura-stella-en", Description: "Female, American, professional"},
	"athena":  {Name: "athena", Model: "aura-athena-en", Description: "Female, British, refined"},
	"hera":    {Name: "hera", Model: "aura-hera-en", Description: "Female, American, mature"},
	"orion":   {Name: "orion", Model: "aura-orion-en", Description: "Male, American, deep"},
	"arcas":   {Name: "arcas", Model: "aura-arcas-en", Description: "Male, American, conversational"},
	"perseus": {Name: "perseus", Model: "aura-perseus-en", Description: "Male, American, confident"},
	"angus":   {Name: "angus", Model: "aura-angus-en", Description: "Male, Irish, friendly"},
	"orpheus": {Name: "orpheus", Model: "aura-orpheus-en", Description: "Male, American, warm"},
	"helios":  {Name: "helios", Model: "aura-helios-en", Description: "Male, British, authoritative"},
	"zeus":    {Name: "zeus", Model: "aura-zeus-en", Description: "Male, American, powerful"},
}

// Compile-time assertion that Synthesizer implements tts.Synthesizer.
var _ tts.Synthesizer = (*Synthesizer)(nil)

// Option is a functional option for configuring the Deepgram Synthesizer.
type Option func(*Synthesizer)

// WithEncoding sets the audio encoding (e.g., "linear16", "mp3", "opus").
func WithEncoding(encoding string) Option {
	return func(s *Synthesizer) {
		s.encoding = encoding
	}
}

// WithSampleRate sets the output sample rate in Hz. Defaults to 24000.
func WithSampleRate(rate int) Option {
	return func(s *Synthesizer) {
		s.sampleRate = rate
	}
}

// WithBaseURL overrides the speak endpoint. Useful for tests.
func WithBaseURL(u string) Option {
	return func(s *Synthesizer) {
		s.endpoint = u
	}
}

// WithTimeout sets the per-request HTTP timeout. Defaults to 30 s.
func WithTimeout(d time.Duration) Option {
	return func(s *Synthesizer) {
		s.httpClient.Timeout = d
	}
}

// Synthesizer implements tts.Synthesizer backed by the Deepgram Aura API.
type Synthesizer struct {
	apiKey     string
	encoding   string
	sampleRate int
	endpoint   string
	httpClient *http.Client
}

// New creates a new Deepgram Synthesizer. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Synthesizer, error) {
	if apiKey == "" {
		return nil, errors.New("deepgram: apiKey must not be empty")
	}
	s := &Synthesizer{
		apiKey:     apiKey,
		encoding:   defaultEncoding,
		sampleRate: defaultSampleRate,
		endpoint:   speakEndpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// DefaultVoice is the voice selector used when a session does not specify one.
const DefaultVoice = defaultVoice

// Synthesize converts text to speech using the Aura model behind the given
// voice selector. The selector is validated against the catalogue before any
// network call; an unknown selector wraps [tts.ErrInvalidVoice].
func (s *Synthesizer) Synthesize(ctx context.Context, text string, voice string) ([]byte, error) {
	v, ok := auraVoices[voice]
	if !ok {
		return nil, fmt.Errorf("deepgram: voice %q: %w", voice, tts.ErrInvalidVoice)
	}

	q := url.Values{}
	q.Set("model", v.Model)
	q.Set("encoding", s.encoding)
	q.Set("sample_rate", strconv.Itoa(s.sampleRate))

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("deepgram: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"?"+q.Encode(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("deepgram: create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deepgram: speak request: %w: %w", tts.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("deepgram: server returned HTTP %d: %w", resp.StatusCode, tts.ErrUnavailable)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("deepgram: read audio body: %w: %w", tts.ErrUnavailable, err)
	}
	return audio, nil
}

// Voices returns the Aura catalogue sorted by selector name.
func (s *Synthesizer) Voices() []tts.Voice {
	voices := make([]tts.Voice, 0, len(auraVoices))
	for _, v := range auraVoices {
		voices = append(voices, v)
	}
	sort.Slice(voices, func(i, j int) bool { return voices[i].Name < voices[j].Name })
	return voices
}

// SampleRate returns the configured output sample rate in Hz.
func (s *Synthesizer) SampleRate() int { return s.sampleRate }
