// Package config provides the configuration schema, loader, and provider
// registry for the Intervo interview server.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// LogLevel controls log verbosity for the Intervo server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Duration wraps [time.Duration] so YAML values can be written in the
// human-readable form accepted by [time.ParseDuration] (e.g. "30m", "1.5s").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns d as a standard [time.Duration].
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the root configuration structure for Intervo.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Interview InterviewConfig `yaml:"interview"`
	Capture   CaptureConfig   `yaml:"capture"`
	Session   SessionConfig   `yaml:"session"`
}

// ServerConfig holds network and logging settings for the Intervo server.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// TLS configures TLS for the server. When nil, the server runs plain HTTP.
	TLS *TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS certificate paths for enabling HTTPS.
type TLSConfig struct {
	// CertFile is the path to the PEM-encoded TLS certificate.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded TLS private key.
	KeyFile string `yaml:"key_file"`
}

// ProvidersConfig declares which provider implementation to use for each
// pipeline stage. Each field selects a named provider registered in the [Registry].
type ProvidersConfig struct {
	STT ProviderEntry `yaml:"stt"`
	LLM ProviderEntry `yaml:"llm"`
	TTS ProviderEntry `yaml:"tts"`
}

// ProviderEntry is the common configuration block shared by all provider types.
// The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "groq", "deepgram").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API. When empty,
	// the constructor falls back to the provider's conventional environment
	// variable (e.g. GROQ_API_KEY, DEEPGRAM_API_KEY).
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider
	// (e.g., "whisper-large-v3", "llama-3.3-70b-versatile").
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by the
	// standard fields above. Values may be strings, numbers, booleans, or nested maps.
	Options map[string]any `yaml:"options"`

	// Fallbacks lists alternative providers tried in order when this one
	// fails or its circuit breaker is open. Fallback entries may not nest
	// further fallbacks.
	Fallbacks []ProviderEntry `yaml:"fallbacks"`
}

// InterviewConfig holds defaults applied when a start request leaves the
// corresponding field empty, plus the interactive-mode candidate settings.
type InterviewConfig struct {
	// CandidateName is the default candidate name.
	CandidateName string `yaml:"candidate_name"`

	// RoleTitle is the default position being interviewed for.
	RoleTitle string `yaml:"role_title"`

	// Voice is the default TTS voice name (e.g., "asteria").
	Voice string `yaml:"voice"`
}

// CaptureConfig tunes the silence-terminated microphone recorder used in
// interactive mode.
type CaptureConfig struct {
	// SampleRate is the PCM sample rate of the input stream in Hz. Input at
	// a rate other than the recorder's native 16 kHz is resampled.
	SampleRate int `yaml:"sample_rate"`

	// Channels is the channel count of the input stream, 1 or 2. Stereo
	// input is downmixed to mono before capture.
	Channels int `yaml:"channels"`

	// SilenceThreshold is the normalised RMS level below which a chunk
	// counts as silence, in the range (0, 1).
	SilenceThreshold float64 `yaml:"silence_threshold"`

	// RequiredSilence is how long the input must stay quiet before a
	// capture is considered finished.
	RequiredSilence Duration `yaml:"required_silence"`

	// MinDuration is the minimum capture length before silence detection
	// starts counting.
	MinDuration Duration `yaml:"min_duration"`

	// MaxDuration caps a single capture regardless of silence.
	MaxDuration Duration `yaml:"max_duration"`
}

// SessionConfig tunes the in-memory session registry.
type SessionConfig struct {
	// IdleTTL is how long a session may sit without activity before the
	// janitor evicts it.
	IdleTTL Duration `yaml:"idle_ttl"`

	// SweepInterval is how often the janitor scans for idle sessions.
	SweepInterval Duration `yaml:"sweep_interval"`
}
