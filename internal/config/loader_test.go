package config_test

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/intervo/intervo/internal/config"
)

const validYAML = `
server:
  listen_addr: ":8080"
  log_level: info
providers:
  stt:
    name: groq
    model: whisper-large-v3
  llm:
    name: groq
    model: llama-3.3-70b-versatile
  tts:
    name: deepgram
interview:
  candidate_name: Alex
  role_title: Backend Engineer
  voice: asteria
capture:
  sample_rate: 16000
  silence_threshold: 0.01
  required_silence: 1500ms
  min_duration: 1s
  max_duration: 30s
session:
  idle_ttl: 30m
  sweep_interval: 1m
`

func TestLoadFromReader_FullConfig(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("listen_addr = %q", cfg.Server.ListenAddr)
	}
	if cfg.Providers.STT.Model != "whisper-large-v3" {
		t.Errorf("stt model = %q", cfg.Providers.STT.Model)
	}
	if cfg.Interview.Voice != "asteria" {
		t.Errorf("voice = %q", cfg.Interview.Voice)
	}
	if got := cfg.Capture.RequiredSilence.Std(); got != 1500*time.Millisecond {
		t.Errorf("required_silence = %s, want 1.5s", got)
	}
	if got := cfg.Session.IdleTTL.Std(); got != 30*time.Minute {
		t.Errorf("idle_ttl = %s, want 30m", got)
	}
}

func TestLoadFromReader_UnknownFieldIsRejected(t *testing.T) {
	t.Parallel()
	yaml := validYAML + `
recorder:
  gain: 2
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unknown top-level field, got nil")
	}
}

func TestLoadFromReader_InvalidDuration(t *testing.T) {
	t.Parallel()
	yaml := strings.Replace(validYAML, "idle_ttl: 30m", "idle_ttl: soon", 1)
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unparseable duration, got nil")
	}
	if !strings.Contains(err.Error(), "soon") {
		t.Errorf("error should name the bad value, got: %v", err)
	}
}

func TestValidate_MissingProvidersAreErrors(t *testing.T) {
	t.Parallel()
	_, err := config.LoadFromReader(strings.NewReader("server:\n  listen_addr: \":8080\"\n"))
	if err == nil {
		t.Fatal("expected errors for missing providers, got nil")
	}
	for _, want := range []string{"providers.stt.name", "providers.llm.name", "providers.tts.name"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s, got: %v", want, err)
		}
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	t.Parallel()
	yaml := strings.Replace(validYAML, "log_level: info", "log_level: chatty", 1)
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for invalid log level, got nil")
	}
	if !strings.Contains(err.Error(), "server.log_level") {
		t.Errorf("error should mention server.log_level, got: %v", err)
	}
}

func TestValidate_SilenceThresholdOutOfRange(t *testing.T) {
	t.Parallel()
	yaml := strings.Replace(validYAML, "silence_threshold: 0.01", "silence_threshold: 1.5", 1)
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for silence threshold >= 1, got nil")
	}
}

func TestValidate_InvalidChannelCount(t *testing.T) {
	t.Parallel()
	yaml := strings.Replace(validYAML, "sample_rate: 16000", "sample_rate: 16000\n  channels: 6", 1)
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for channels outside 1..2, got nil")
	}
}

func TestValidate_MinDurationExceedingMax(t *testing.T) {
	t.Parallel()
	yaml := strings.Replace(validYAML, "min_duration: 1s", "min_duration: 45s", 1)
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for min_duration > max_duration, got nil")
	}
	if !strings.Contains(err.Error(), "max_duration") {
		t.Errorf("error should mention max_duration, got: %v", err)
	}
}

func TestValidate_TLSRequiresBothFiles(t *testing.T) {
	t.Parallel()
	yaml := strings.Replace(validYAML, "log_level: info", "log_level: info\n  tls:\n    cert_file: cert.pem", 1)
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for tls without key_file, got nil")
	}
	if !strings.Contains(err.Error(), "key_file") {
		t.Errorf("error should mention key_file, got: %v", err)
	}
}

func TestValidate_MultipleErrorsAreJoined(t *testing.T) {
	t.Parallel()
	yaml := strings.NewReplacer(
		"log_level: info", "log_level: chatty",
		"silence_threshold: 0.01", "silence_threshold: -1",
	).Replace(validYAML)
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected errors, got nil")
	}
	if !strings.Contains(err.Error(), "log_level") || !strings.Contains(err.Error(), "silence_threshold") {
		t.Errorf("joined error should mention both failures, got: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := config.Load("testdata/does-not-exist.yaml")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error should wrap fs.ErrNotExist, got: %v", err)
	}
}

func TestValidate_FallbackEntries(t *testing.T) {
	t.Parallel()
	yaml := strings.Replace(validYAML,
		"  llm:\n    name: groq",
		"  llm:\n    name: groq\n    fallbacks:\n      - name: ollama\n        base_url: http://localhost:11434",
		1)
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Providers.LLM.Fallbacks) != 1 {
		t.Fatalf("llm fallbacks = %d, want 1", len(cfg.Providers.LLM.Fallbacks))
	}
	if got := cfg.Providers.LLM.Fallbacks[0].Name; got != "ollama" {
		t.Errorf("fallback name = %q, want ollama", got)
	}
}

func TestValidate_FallbackRequiresName(t *testing.T) {
	t.Parallel()
	yaml := strings.Replace(validYAML,
		"  tts:\n    name: deepgram",
		"  tts:\n    name: deepgram\n    fallbacks:\n      - model: aura-luna-en",
		1)
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unnamed fallback, got nil")
	}
	if !strings.Contains(err.Error(), "providers.tts.fallbacks[0].name") {
		t.Errorf("error should name the fallback field, got: %v", err)
	}
}

func TestValidate_FallbackMustNotNest(t *testing.T) {
	t.Parallel()
	yaml := strings.Replace(validYAML,
		"  llm:\n    name: groq",
		"  llm:\n    name: groq\n    fallbacks:\n      - name: ollama\n        fallbacks:\n          - name: openai",
		1)
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for nested fallbacks, got nil")
	}
	if !strings.Contains(err.Error(), "must not nest") {
		t.Errorf("error should mention nesting, got: %v", err)
	}
}

func TestValidProviderNames(t *testing.T) {
	t.Parallel()
	if len(config.ValidProviderNames) == 0 {
		t.Fatal("ValidProviderNames should not be empty")
	}
	// Every listed name must have a factory registered in cmd; names without
	// one would pass validation and then fail at provider creation.
	want := map[string][]string{
		"stt": {"groq"},
		"llm": {"groq", "openai", "anthropic", "mistral", "ollama"},
		"tts": {"deepgram"},
	}
	for kind, names := range want {
		got := config.ValidProviderNames[kind]
		if len(got) != len(names) {
			t.Errorf("ValidProviderNames[%q] = %v, want %v", kind, got, names)
			continue
		}
		for i, n := range names {
			if got[i] != n {
				t.Errorf("ValidProviderNames[%q][%d] = %q, want %q", kind, i, got[i], n)
			}
		}
	}
}
