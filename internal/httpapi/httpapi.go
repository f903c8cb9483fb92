// Package httpapi exposes the interview core over a JSON/HTTP surface.
// Audio crosses the boundary base64-encoded; every error is a JSON envelope
// with a stable machine-readable code.
package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/intervo/intervo/internal/interview"
	"github.com/intervo/intervo/internal/orchestrator"
	"github.com/intervo/intervo/internal/session"
	"github.com/intervo/intervo/pkg/provider/llm"
	"github.com/intervo/intervo/pkg/provider/stt"
	"github.com/intervo/intervo/pkg/provider/tts"
)

// Server maps the HTTP surface onto the orchestrator and session registry.
type Server struct {
	orch         *orchestrator.Orchestrator
	reg          *session.Registry
	defaultVoice string
}

// Option configures a [Server].
type Option func(*Server)

// WithDefaultVoice sets the voice used when a start request names none.
func WithDefaultVoice(voice string) Option {
	return func(s *Server) { s.defaultVoice = voice }
}

// New creates a Server around the given orchestrator and registry.
func New(orch *orchestrator.Orchestrator, reg *session.Registry, opts ...Option) *Server {
	s := &Server{orch: orch, reg: reg, defaultVoice: "asteria"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds all interview routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/interview/start", s.handleStart)
	mux.HandleFunc("GET /api/interview/{id}/state", s.handleState)
	mux.HandleFunc("POST /api/interview/{id}/respond", s.handleRespond)
	mux.HandleFunc("POST /api/interview/{id}/end", s.handleEnd)
	mux.HandleFunc("POST /api/interview/{id}/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/voices", s.handleVoices)
}

// ─── Wire types ───────────────────────────────────────────────────────────────

type startRequest struct {
	CandidateName string `json:"candidate_name"`
	Role          string `json:"role"`
	Voice         string `json:"voice"`
}

type startResponse struct {
	SessionID    string          `json:"session_id"`
	OpeningText  string          `json:"opening_message"`
	OpeningAudio string          `json:"opening_audio_base64"`
	State        interview.State `json:"state"`
}

type stateResponse struct {
	State      interview.State           `json:"state"`
	Transcript []session.TranscriptEntry `json:"transcript"`
}

type respondRequest struct {
	// Audio is the base64-encoded captured payload.
	Audio string `json:"audio"`

	// Format is "wav" or "webm"; defaults to "webm", matching browser
	// MediaRecorder captures.
	Format string `json:"format"`
}

type respondResponse struct {
	CandidateText   string          `json:"candidate_transcript"`
	InterviewerText string          `json:"interviewer_response"`
	Audio           string          `json:"audio"`
	State           interview.State `json:"state"`
}

type endResponse struct {
	Message    string                    `json:"message"`
	Transcript []session.TranscriptEntry `json:"transcript"`
	State      interview.State           `json:"state"`
}

type analyzeResponse struct {
	Analysis *llm.Assessment `json:"analysis"`
}

type voicesResponse struct {
	Voices []string `json:"voices"`
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Voice == "" {
		req.Voice = s.defaultVoice
	}

	res, err := s.orch.Start(r.Context(), s.reg, orchestrator.StartRequest{
		CandidateName: req.CandidateName,
		RoleTitle:     req.Role,
		Voice:         req.Voice,
	})
	if err != nil {
		s.writeMappedError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, startResponse{
		SessionID:    res.Session.ID,
		OpeningText:  res.OpeningText,
		OpeningAudio: base64.StdEncoding.EncodeToString(res.OpeningAudio),
		State:        res.State,
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{
		State:      sess.Interviewer.Snapshot(),
		Transcript: sess.Transcript(),
	})
}

func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	payload, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "audio is not valid base64")
		return
	}
	format := stt.Format(req.Format)
	if req.Format == "" {
		format = stt.FormatWebM
	}
	if !format.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid_request", "unknown audio format "+req.Format)
		return
	}

	result, err := s.orch.RunTurn(r.Context(), sess, payload, format)
	if err != nil {
		s.writeMappedError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, respondResponse{
		CandidateText:   result.CandidateText,
		InterviewerText: result.InterviewerText,
		Audio:           base64.StdEncoding.EncodeToString(result.Audio),
		State:           result.State,
	})
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	transcript, state := s.orch.End(r.Context(), s.reg, sess)
	writeJSON(w, http.StatusOK, endResponse{
		Message:    "Interview ended",
		Transcript: transcript,
		State:      state,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	assessment, err := s.orch.Analyze(r.Context(), sess)
	if err != nil {
		s.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{Analysis: assessment})
}

func (s *Server) handleVoices(w http.ResponseWriter, _ *http.Request) {
	catalogue := s.orch.Voices()
	names := make([]string, len(catalogue))
	for i, v := range catalogue {
		names[i] = v.Name
	}
	writeJSON(w, http.StatusOK, voicesResponse{Voices: names})
}

// session resolves the {id} path segment, writing the not-found envelope on
// failure.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.reg.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session_not_found", "no session with id "+r.PathValue("id"))
		return nil, false
	}
	return sess, true
}

// ─── Error envelope ───────────────────────────────────────────────────────────

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// writeMappedError translates core error taxonomy into HTTP status codes and
// stable envelope codes.
func (s *Server) writeMappedError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, tts.ErrInvalidVoice):
		writeError(w, http.StatusBadRequest, "invalid_voice", err.Error())
	case errors.Is(err, session.ErrTurnInProgress):
		writeError(w, http.StatusConflict, "turn_in_progress", "a turn is already being processed for this session")
	case errors.Is(err, orchestrator.ErrInterviewComplete):
		writeError(w, http.StatusConflict, "interview_complete", "the interview has already concluded")
	case errors.Is(err, orchestrator.ErrEmptyCapture):
		writeError(w, http.StatusUnprocessableEntity, "empty_capture", "no speech detected in the submitted audio")
	case errors.Is(err, stt.ErrUnavailable):
		writeError(w, http.StatusBadGateway, "transcription_unavailable", err.Error())
	case errors.Is(err, llm.ErrUnavailable):
		writeError(w, http.StatusBadGateway, "generation_unavailable", err.Error())
	case errors.Is(err, tts.ErrUnavailable):
		writeError(w, http.StatusBadGateway, "synthesis_unavailable", err.Error())
	default:
		slog.Error("unhandled API error", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encoding failed", "error", err)
	}
}
