// Package app wires all Intervo subsystems into a running server.
//
// The App struct owns the full lifecycle: New connects providers, session
// registry, pipeline orchestrator, and HTTP surface; Run serves until the
// context is cancelled, then drains in-flight requests and returns.
//
// For testing, inject an isolated metrics instance via [WithMetrics] and mock
// providers via the [Providers] struct.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/intervo/intervo/internal/config"
	"github.com/intervo/intervo/internal/health"
	"github.com/intervo/intervo/internal/httpapi"
	"github.com/intervo/intervo/internal/observe"
	"github.com/intervo/intervo/internal/orchestrator"
	"github.com/intervo/intervo/internal/session"
	"github.com/intervo/intervo/pkg/provider/llm"
	"github.com/intervo/intervo/pkg/provider/stt"
	"github.com/intervo/intervo/pkg/provider/tts"
)

// shutdownTimeout bounds how long in-flight requests may run after the stop
// signal before the server gives up on them.
const shutdownTimeout = 15 * time.Second

// defaultListenAddr is used when server.listen_addr is not configured.
const defaultListenAddr = ":8080"

// Providers holds one interface value per pipeline stage. All three are
// required; an interview cannot run with a stage missing. Populated by
// main.go via the config registry.
type Providers struct {
	STT stt.Transcriber
	LLM llm.Provider
	TTS tts.Synthesizer
}

// App owns the Intervo server: session registry, turn orchestrator, and the
// HTTP surface with health and metrics endpoints.
type App struct {
	cfg      *config.Config
	sessions *session.Registry
	orch     *orchestrator.Orchestrator
	server   *http.Server

	metrics *observe.Metrics
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithMetrics injects a metrics instance instead of using the process-wide
// default. Tests use this with an isolated meter provider.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// New creates an App by wiring all subsystems together. The providers struct
// comes from main.go (populated via the config registry).
func New(cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	if providers == nil || providers.STT == nil || providers.LLM == nil || providers.TTS == nil {
		return nil, errors.New("app: stt, llm, and tts providers are all required")
	}

	a := &App{cfg: cfg}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	a.sessions = session.NewRegistry(session.RegistryConfig{
		IdleTTL:       cfg.Session.IdleTTL.Std(),
		SweepInterval: cfg.Session.SweepInterval.Std(),
		// The orchestrator raises the gauge on Start and lowers it on End;
		// janitor evictions bypass End, so the gauge must drop here.
		OnEvict: func(string) {
			a.metrics.ActiveSessions.Add(context.Background(), -1)
		},
	})

	a.orch = orchestrator.New(providers.STT, providers.LLM, providers.TTS,
		orchestrator.WithAnalyzer(providers.LLM),
		orchestrator.WithMetrics(a.metrics),
	)

	mux := http.NewServeMux()

	var apiOpts []httpapi.Option
	if cfg.Interview.Voice != "" {
		apiOpts = append(apiOpts, httpapi.WithDefaultVoice(cfg.Interview.Voice))
	}
	httpapi.New(a.orch, a.sessions, apiOpts...).Register(mux)

	health.New(health.Checker{
		Name: "tts_catalogue",
		Check: func(context.Context) error {
			if len(a.orch.Voices()) == 0 {
				return errors.New("no voices available")
			}
			return nil
		},
	}).Register(mux)

	mux.Handle("GET /metrics", promhttp.Handler())

	addr := cfg.Server.ListenAddr
	if addr == "" {
		addr = defaultListenAddr
	}
	a.server = &http.Server{
		Addr:              addr,
		Handler:           observe.Middleware(a.metrics)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// Orchestrator exposes the turn pipeline, used by the interactive console mode.
func (a *App) Orchestrator() *orchestrator.Orchestrator { return a.orch }

// Sessions exposes the session registry.
func (a *App) Sessions() *session.Registry { return a.sessions }

// Addr returns the address the HTTP server binds to.
func (a *App) Addr() string { return a.server.Addr }

// Run starts the idle-session janitor and the HTTP server, then blocks until
// ctx is cancelled. In-flight requests get [shutdownTimeout] to finish before
// the server closes their connections.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.sessions.Start(gctx)
		return nil
	})

	g.Go(func() error {
		slog.Info("http server listening", "addr", a.server.Addr, "tls", a.cfg.Server.TLS != nil)
		var err error
		if tls := a.cfg.Server.TLS; tls != nil {
			err = a.server.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
		} else {
			err = a.server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("app: serve: %w", err)
	})

	g.Go(func() error {
		<-gctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shCtx); err != nil {
			return fmt.Errorf("app: shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()
	slog.Info("server stopped", "sessions_remaining", a.sessions.Len())
	return err
}
