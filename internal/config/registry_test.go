package config_test

import (
	"errors"
	"testing"

	"github.com/intervo/intervo/internal/config"
	"github.com/intervo/intervo/pkg/provider/stt"
	sttmock "github.com/intervo/intervo/pkg/provider/stt/mock"
	"github.com/intervo/intervo/pkg/provider/tts"
	ttsmock "github.com/intervo/intervo/pkg/provider/tts/mock"
)

func TestRegistry_CreateSTT_UsesRegisteredFactory(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()

	var gotEntry config.ProviderEntry
	reg.RegisterSTT("groq", func(entry config.ProviderEntry) (stt.Transcriber, error) {
		gotEntry = entry
		return &sttmock.Transcriber{}, nil
	})

	tr, err := reg.CreateSTT(config.ProviderEntry{Name: "groq", Model: "whisper-large-v3"})
	if err != nil {
		t.Fatalf("CreateSTT: %v", err)
	}
	if tr == nil {
		t.Fatal("CreateSTT returned nil transcriber")
	}
	if gotEntry.Model != "whisper-large-v3" {
		t.Errorf("factory received model %q, want whisper-large-v3", gotEntry.Model)
	}
}

func TestRegistry_CreateTTS_UnregisteredName(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()

	_, err := reg.CreateTTS(config.ProviderEntry{Name: "polly"})
	if !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Fatalf("error = %v, want ErrProviderNotRegistered", err)
	}
}

func TestRegistry_CreateLLM_UnregisteredName(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()

	_, err := reg.CreateLLM(config.ProviderEntry{Name: "groq"})
	if !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Fatalf("error = %v, want ErrProviderNotRegistered", err)
	}
}

func TestRegistry_RegisterOverwritesPrevious(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()

	first := &ttsmock.Synthesizer{}
	second := &ttsmock.Synthesizer{}
	reg.RegisterTTS("deepgram", func(config.ProviderEntry) (tts.Synthesizer, error) {
		return first, nil
	})
	reg.RegisterTTS("deepgram", func(config.ProviderEntry) (tts.Synthesizer, error) {
		return second, nil
	})

	syn, err := reg.CreateTTS(config.ProviderEntry{Name: "deepgram"})
	if err != nil {
		t.Fatalf("CreateTTS: %v", err)
	}
	if syn != second {
		t.Error("later registration should win")
	}
}

func TestRegistry_FactoryErrorIsPropagated(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()

	wantErr := errors.New("missing api key")
	reg.RegisterSTT("groq", func(config.ProviderEntry) (stt.Transcriber, error) {
		return nil, wantErr
	})

	_, err := reg.CreateSTT(config.ProviderEntry{Name: "groq"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want factory error", err)
	}
}
