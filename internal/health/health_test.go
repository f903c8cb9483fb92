package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/intervo/intervo/internal/health"
)

type probeBody struct {
	Status string `json:"status"`
	Checks map[string]struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	} `json:"checks"`
}

func probe(t *testing.T, h *health.Handler, path string) (int, probeBody) {
	t.Helper()

	mux := http.NewServeMux()
	h.Register(mux)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var body probeBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode %s response: %v", path, err)
	}
	return rec.Code, body
}

func TestHealthz_AlwaysOK(t *testing.T) {
	h := health.New(health.Checker{
		Name:  "broken",
		Check: func(context.Context) error { return errors.New("down") },
	})

	code, body := probe(t, h, "/healthz")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body.Status != "ok" {
		t.Fatalf("body status = %q, want ok", body.Status)
	}
}

func TestReadyz_NoCheckers(t *testing.T) {
	code, body := probe(t, health.New(), "/readyz")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body.Status != "ok" {
		t.Fatalf("body status = %q, want ok", body.Status)
	}
}

func TestReadyz_AllCheckersPass(t *testing.T) {
	h := health.New(
		health.Checker{Name: "one", Check: func(context.Context) error { return nil }},
		health.Checker{Name: "two", Check: func(context.Context) error { return nil }},
	)

	code, body := probe(t, h, "/readyz")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	for name, check := range body.Checks {
		if check.Status != "ok" {
			t.Errorf("check %q status = %q, want ok", name, check.Status)
		}
	}
}

func TestReadyz_FailingCheckerReports503(t *testing.T) {
	h := health.New(
		health.Checker{Name: "good", Check: func(context.Context) error { return nil }},
		health.Checker{Name: "bad", Check: func(context.Context) error { return errors.New("no voices") }},
	)

	code, body := probe(t, h, "/readyz")
	if code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", code)
	}
	if body.Status != "fail" {
		t.Fatalf("body status = %q, want fail", body.Status)
	}
	if got := body.Checks["bad"].Error; got != "no voices" {
		t.Errorf("bad check error = %q, want 'no voices'", got)
	}
	if got := body.Checks["good"].Status; got != "ok" {
		t.Errorf("good check status = %q, want ok", got)
	}
}

func TestReadyz_CheckReceivesCancellableContext(t *testing.T) {
	h := health.New(health.Checker{
		Name: "ctx",
		Check: func(ctx context.Context) error {
			if ctx.Done() == nil {
				return errors.New("context has no deadline")
			}
			return nil
		},
	})

	code, _ := probe(t, h, "/readyz")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
}
