package deepgram_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/intervo/intervo/pkg/provider/tts"
	"github.com/intervo/intervo/pkg/provider/tts/deepgram"
)

// newMockServer creates a test server that returns fixed audio bytes for any
// POST and records the last request's query values and body text.
func newMockServer(t *testing.T, audio []byte, lastModel *atomic.Value, lastText *atomic.Value) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if lastModel != nil {
			lastModel.Store(r.URL.Query().Get("model"))
		}
		if lastText != nil {
			body, _ := io.ReadAll(r.Body)
			var payload map[string]string
			_ = json.Unmarshal(body, &payload)
			lastText.Store(payload["text"])
		}
		w.Header().Set("Content-Type", "audio/l16")
		_, _ = w.Write(audio)
	}))
}

func TestNew_EmptyAPIKey_ReturnsError(t *testing.T) {
	_, err := deepgram.New("")
	if err == nil {
		t.Fatal("expected error for empty apiKey, got nil")
	}
}

func TestSynthesize_SendsModelAndText(t *testing.T) {
	var gotModel, gotText atomic.Value
	srv := newMockServer(t, []byte{0x01, 0x02, 0x03}, &gotModel, &gotText)
	defer srv.Close()

	s, err := deepgram.New("dg-test", deepgram.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	audio, err := s.Synthesize(context.Background(), "Welcome to the interview.", "orion")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(audio) != 3 {
		t.Errorf("audio length = %d, want 3", len(audio))
	}
	if gotModel.Load() != "aura-orion-en" {
		t.Errorf("model = %v, want aura-orion-en", gotModel.Load())
	}
	if gotText.Load() != "Welcome to the interview." {
		t.Errorf("text = %v, want the utterance", gotText.Load())
	}
}

func TestSynthesize_UnknownVoice_WrapsErrInvalidVoice(t *testing.T) {
	var calls atomic.Value
	srv := newMockServer(t, nil, &calls, nil)
	defer srv.Close()

	s, err := deepgram.New("dg-test", deepgram.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = s.Synthesize(context.Background(), "hello", "hal9000")
	if !errors.Is(err, tts.ErrInvalidVoice) {
		t.Fatalf("err = %v, want wrapped tts.ErrInvalidVoice", err)
	}
	if calls.Load() != nil {
		t.Error("unknown voice must be rejected before any network call")
	}
}

func TestSynthesize_BackendFailure_WrapsErrUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s, err := deepgram.New("dg-test", deepgram.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = s.Synthesize(context.Background(), "hello", "asteria")
	if !errors.Is(err, tts.ErrUnavailable) {
		t.Fatalf("err = %v, want wrapped tts.ErrUnavailable", err)
	}
}

func TestVoices_ReturnsSortedCatalogue(t *testing.T) {
	s, err := deepgram.New("dg-test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	voices := s.Voices()
	if len(voices) != 12 {
		t.Fatalf("catalogue size = %d, want 12", len(voices))
	}
	for i := 1; i < len(voices); i++ {
		if voices[i-1].Name >= voices[i].Name {
			t.Fatalf("catalogue not sorted: %q before %q", voices[i-1].Name, voices[i].Name)
		}
	}
	if voices[0].Name != "angus" {
		t.Errorf("first voice = %q, want angus", voices[0].Name)
	}
}
