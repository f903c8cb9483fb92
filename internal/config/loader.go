package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists the provider names with registered factories, per
// provider kind. Used by [Validate] to warn about unrecognised names.
var ValidProviderNames = map[string][]string{
	"stt": {"groq"},
	"llm": {"groq", "openai", "anthropic", "mistral", "ollama"},
	"tts": {"deepgram"},
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.TLS != nil {
		if cfg.Server.TLS.CertFile == "" {
			errs = append(errs, errors.New("server.tls.cert_file is required when tls is set"))
		}
		if cfg.Server.TLS.KeyFile == "" {
			errs = append(errs, errors.New("server.tls.key_file is required when tls is set"))
		}
	}

	// Provider name validation — warn for unknown provider names.
	validateProviderName("stt", cfg.Providers.STT.Name)
	validateProviderName("llm", cfg.Providers.LLM.Name)
	validateProviderName("tts", cfg.Providers.TTS.Name)

	// An interview cannot run without all three pipeline stages.
	if cfg.Providers.STT.Name == "" {
		errs = append(errs, errors.New("providers.stt.name is required"))
	}
	if cfg.Providers.LLM.Name == "" {
		errs = append(errs, errors.New("providers.llm.name is required"))
	}
	if cfg.Providers.TTS.Name == "" {
		errs = append(errs, errors.New("providers.tts.name is required"))
	}

	errs = append(errs, validateFallbacks("stt", cfg.Providers.STT)...)
	errs = append(errs, validateFallbacks("llm", cfg.Providers.LLM)...)
	errs = append(errs, validateFallbacks("tts", cfg.Providers.TTS)...)

	// Capture tuning
	if cfg.Capture.SampleRate < 0 {
		errs = append(errs, fmt.Errorf("capture.sample_rate %d must not be negative", cfg.Capture.SampleRate))
	}
	if c := cfg.Capture.Channels; c != 0 && c != 1 && c != 2 {
		errs = append(errs, fmt.Errorf("capture.channels %d is invalid; valid values: 1, 2", c))
	}
	if cfg.Capture.SilenceThreshold < 0 || cfg.Capture.SilenceThreshold >= 1 {
		errs = append(errs, fmt.Errorf("capture.silence_threshold %.3f is out of range [0, 1)", cfg.Capture.SilenceThreshold))
	}
	if cfg.Capture.RequiredSilence < 0 {
		errs = append(errs, errors.New("capture.required_silence must not be negative"))
	}
	if cfg.Capture.MinDuration < 0 {
		errs = append(errs, errors.New("capture.min_duration must not be negative"))
	}
	if cfg.Capture.MaxDuration < 0 {
		errs = append(errs, errors.New("capture.max_duration must not be negative"))
	}
	if cfg.Capture.MaxDuration > 0 && cfg.Capture.MinDuration > cfg.Capture.MaxDuration {
		errs = append(errs, fmt.Errorf("capture.min_duration %s exceeds capture.max_duration %s",
			cfg.Capture.MinDuration.Std(), cfg.Capture.MaxDuration.Std()))
	}

	// Session tuning
	if cfg.Session.IdleTTL < 0 {
		errs = append(errs, errors.New("session.idle_ttl must not be negative"))
	}
	if cfg.Session.SweepInterval < 0 {
		errs = append(errs, errors.New("session.sweep_interval must not be negative"))
	}

	return errors.Join(errs...)
}

// validateFallbacks checks each fallback entry under a provider block.
func validateFallbacks(kind string, entry ProviderEntry) []error {
	var errs []error
	for i, fb := range entry.Fallbacks {
		if fb.Name == "" {
			errs = append(errs, fmt.Errorf("providers.%s.fallbacks[%d].name is required", kind, i))
			continue
		}
		if len(fb.Fallbacks) > 0 {
			errs = append(errs, fmt.Errorf("providers.%s.fallbacks[%d] (%s) must not nest further fallbacks", kind, i, fb.Name))
		}
		validateProviderName(kind, fb.Name)
	}
	return errs
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
