// Package session owns the lifecycle of interview sessions: creation,
// lookup, disposal, and idle eviction. Each session holds an independent
// interview state machine and transcript; sessions share no state beyond the
// registry's own map.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/intervo/intervo/internal/interview"
)

var (
	// ErrTurnInProgress signals that a second turn was submitted while one
	// is still in flight for the same session.
	ErrTurnInProgress = errors.New("session: turn already in progress")
)

// Role tags a transcript entry with its speaker.
type Role string

const (
	RoleInterviewer Role = "interviewer"
	RoleCandidate   Role = "candidate"
)

// TranscriptEntry is one utterance in a session's transcript. Entries are
// immutable once appended; Sequence ordering is the ground truth of the
// conversation.
type TranscriptEntry struct {
	Role     Role   `json:"role"`
	Content  string `json:"content"`
	Sequence int    `json:"sequence"`
}

// Session is one interview attempt. It owns its interviewer and transcript
// exclusively; concurrent turn submissions are rejected, never interleaved.
type Session struct {
	ID            string
	CandidateName string
	RoleTitle     string
	Voice         string

	Interviewer *interview.Interviewer

	// turn serializes turn processing. Held for the full duration of a turn,
	// including the blocking provider calls.
	turn sync.Mutex

	mu         sync.Mutex
	transcript []TranscriptEntry
	lastActive time.Time
}

// BeginTurn claims the session's single turn slot. It returns
// ErrTurnInProgress if another turn is in flight. Callers must pair a
// successful BeginTurn with EndTurn.
func (s *Session) BeginTurn() error {
	if !s.turn.TryLock() {
		return ErrTurnInProgress
	}
	s.touch()
	return nil
}

// EndTurn releases the turn slot claimed by BeginTurn.
func (s *Session) EndTurn() {
	s.touch()
	s.turn.Unlock()
}

// Append adds one utterance to the transcript, assigning the next sequence
// number.
func (s *Session) Append(role Role, content string) TranscriptEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := TranscriptEntry{
		Role:     role,
		Content:  content,
		Sequence: len(s.transcript),
	}
	s.transcript = append(s.transcript, entry)
	s.lastActive = time.Now()
	return entry
}

// Transcript returns a copy of the transcript so far. Safe to call while a
// turn is in flight; the copy reflects entries appended up to that point.
func (s *Session) Transcript() []TranscriptEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TranscriptEntry, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// LastActive returns the time of the session's most recent activity.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}
