package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/intervo/intervo/internal/interview"
)

// ErrNotFound signals a lookup for an unknown or already-disposed session.
// Callers must treat it as terminal for the current request, not retryable.
var ErrNotFound = errors.New("session: not found")

// Default eviction policy for long-running deployments.
const (
	DefaultIdleTTL       = 30 * time.Minute
	DefaultSweepInterval = time.Minute
)

// RegistryConfig tunes the registry's idle-eviction policy.
type RegistryConfig struct {
	// IdleTTL is how long a session may go without activity before the
	// janitor evicts it. Zero disables eviction.
	IdleTTL time.Duration

	// SweepInterval is how often the janitor scans for idle sessions.
	SweepInterval time.Duration

	// OnEvict, when set, is called with the session ID after the janitor
	// evicts an idle session. Explicit Dispose calls do not trigger it.
	// The callback runs outside the registry lock.
	OnEvict func(id string)
}

// Registry creates, looks up, and disposes of interview sessions. All
// methods are safe for concurrent use; distinct sessions are fully
// independent.
type Registry struct {
	cfg RegistryConfig

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry returns an empty registry. Call [Registry.Start] to enable
// idle eviction.
func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.IdleTTL > 0 && cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	return &Registry{
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

// Create registers a new session around iv and returns it. The session ID is
// a fresh UUID.
func (r *Registry) Create(candidateName, roleTitle, voice string, iv *interview.Interviewer) *Session {
	s := &Session{
		ID:            uuid.NewString(),
		CandidateName: candidateName,
		RoleTitle:     roleTitle,
		Voice:         voice,
		Interviewer:   iv,
		lastActive:    time.Now(),
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	slog.Info("session created",
		"session_id", s.ID,
		"candidate", candidateName,
		"role", roleTitle,
		"voice", voice,
	)
	return s
}

// Get returns the session with the given id, or ErrNotFound.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Dispose removes the session with the given id. Subsequent Get calls for
// the id return ErrNotFound.
func (r *Registry) Dispose(id string) error {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	slog.Info("session disposed", "session_id", id)
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Start runs the idle-eviction janitor until ctx is cancelled. It returns
// immediately if eviction is disabled.
func (r *Registry) Start(ctx context.Context) {
	if r.cfg.IdleTTL <= 0 {
		return
	}
	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

// sweep evicts sessions idle longer than IdleTTL. Sessions with a turn in
// flight are never evicted, whatever their idle time says.
func (r *Registry) sweep() {
	cutoff := time.Now().Add(-r.cfg.IdleTTL)

	var evicted []string
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.LastActive().After(cutoff) {
			continue
		}
		if !s.turn.TryLock() {
			continue
		}
		s.turn.Unlock()
		delete(r.sessions, id)
		evicted = append(evicted, id)
		slog.Info("session evicted after idle timeout",
			"session_id", id,
			"idle_ttl", r.cfg.IdleTTL,
		)
	}
	r.mu.Unlock()

	if r.cfg.OnEvict != nil {
		for _, id := range evicted {
			r.cfg.OnEvict(id)
		}
	}
}
