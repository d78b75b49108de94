// Package httpapi exposes the comparison and arena core over HTTP.
//
// Routes:
//
//	GET  /api/models                     → merged model catalog
//	POST /api/models/respond             → single model call
//	POST /api/compare                    → concurrent multi-model comparison
//	POST /api/compare/retry              → re-run one model from a comparison
//	POST /api/sessions                   → start a debate/battle session
//	GET  /api/sessions/{id}              → session state and transcript
//	POST /api/sessions/{id}/turns        → advance one turn
//	POST /api/sessions/{id}/cancel       → cancel the session
//	POST /api/sessions/{id}/finish       → finish the session
//	DELETE /api/sessions/{id}            → cancel and remove the session
//	GET  /healthz, GET /readyz           → probes
//	GET  /metrics                        → Prometheus scrape endpoint
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrWong99/modelarena/internal/arena"
	"github.com/MrWong99/modelarena/internal/health"
	"github.com/MrWong99/modelarena/internal/observe"
	"github.com/MrWong99/modelarena/internal/orchestrate"
	"github.com/MrWong99/modelarena/pkg/provider/chat"
	"github.com/MrWong99/modelarena/pkg/types"
)

// Server bundles the HTTP handlers around the registry, comparator, and
// session manager.
type Server struct {
	registry   *chat.Registry
	comparator *orchestrate.Comparator
	sessions   *arena.Manager
	metrics    *observe.Metrics
	health     *health.Handler

	// defaults applied to arena sessions created over HTTP
	turnTimeout time.Duration
	maxTurns    int
	callOpts    types.CallOptions
}

// Config holds the server's collaborators.
type Config struct {
	Registry   *chat.Registry
	Comparator *orchestrate.Comparator
	Sessions   *arena.Manager
	Metrics    *observe.Metrics

	// TurnTimeout bounds each arena turn's provider call.
	TurnTimeout time.Duration

	// MaxTurns, when positive, caps the transcript length of sessions
	// created over HTTP. The engine itself enforces no round limit.
	MaxTurns int

	// DefaultMaxTokens, when positive, caps generation for requests that do
	// not specify their own limit.
	DefaultMaxTokens int
}

// New builds a Server. Metrics may be nil.
func New(cfg Config) *Server {
	s := &Server{
		registry:    cfg.Registry,
		comparator:  cfg.Comparator,
		sessions:    cfg.Sessions,
		metrics:     cfg.Metrics,
		turnTimeout: cfg.TurnTimeout,
		maxTurns:    cfg.MaxTurns,
	}
	if cfg.DefaultMaxTokens > 0 {
		s.callOpts.MaxTokens = cfg.DefaultMaxTokens
	}
	s.health = health.New(health.ProvidersChecker(cfg.Registry))
	return s
}

// Handler returns the fully-routed HTTP handler, with the observability
// middleware applied to the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/models", s.handleListModels)
	mux.HandleFunc("POST /api/models/respond", s.handleRespond)
	mux.HandleFunc("POST /api/compare", s.handleCompare)
	mux.HandleFunc("POST /api/compare/retry", s.handleRetry)

	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("POST /api/sessions/{id}/turns", s.handleAdvanceTurn)
	mux.HandleFunc("POST /api/sessions/{id}/cancel", s.handleCancelSession)
	mux.HandleFunc("POST /api/sessions/{id}/finish", s.handleFinishSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)

	s.health.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	if s.metrics != nil {
		return observe.Middleware(s.metrics)(mux)
	}
	return mux
}

// ── Catalog & single calls ────────────────────────────────────────────────────

func (s *Server) handleListModels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.ListModels())
}

type respondRequest struct {
	ModelID     string   `json:"modelId"`
	Prompt      string   `json:"prompt"`
	System      string   `json:"system,omitempty"`
	Context     string   `json:"context,omitempty"`
	MaxTokens   int      `json:"maxTokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ModelID == "" || req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "modelId and prompt are required")
		return
	}

	resp, err := s.registry.Call(r.Context(), req.ModelID, req.messages(), s.options(req.MaxTokens, req.Temperature))
	if err != nil {
		writeCallError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// messages converts the request's prompt fields into the shared contract.
func (req respondRequest) messages() []types.Message {
	var msgs []types.Message
	if req.System != "" {
		msgs = append(msgs, types.Message{Role: types.RoleSystem, Content: req.System})
	}
	if req.Context != "" {
		msgs = append(msgs, types.Message{Role: types.RoleContext, Content: req.Context})
	}
	msgs = append(msgs, types.Message{Role: types.RoleUser, Content: req.Prompt})
	return msgs
}

// ── Comparison ────────────────────────────────────────────────────────────────

type compareRequest struct {
	Prompt         string   `json:"prompt"`
	SelectedModels []string `json:"selectedModels"`
	System         string   `json:"system,omitempty"`
	Context        string   `json:"context,omitempty"`
	MaxTokens      int      `json:"maxTokens,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	msgs := respondRequest{Prompt: req.Prompt, System: req.System, Context: req.Context}.messages()
	res, err := s.comparator.Compare(r.Context(), req.SelectedModels, msgs, s.options(req.MaxTokens, req.Temperature))
	if err != nil {
		if errors.Is(err, orchestrate.ErrNoModels) {
			writeError(w, http.StatusBadRequest, "selectedModels must name at least one model")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type retryRequest struct {
	ModelID     string   `json:"modelId"`
	Prompt      string   `json:"prompt"`
	System      string   `json:"system,omitempty"`
	Context     string   `json:"context,omitempty"`
	MaxTokens   int      `json:"maxTokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	var req retryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ModelID == "" || req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "modelId and prompt are required")
		return
	}

	msgs := respondRequest{Prompt: req.Prompt, System: req.System, Context: req.Context}.messages()
	out := s.comparator.Retry(r.Context(), req.ModelID, msgs, s.options(req.MaxTokens, req.Temperature))
	writeJSON(w, http.StatusOK, map[string]orchestrate.Outcome{req.ModelID: out})
}

// ── Arena sessions ────────────────────────────────────────────────────────────

type createSessionRequest struct {
	Mode      arena.Mode   `json:"mode"`
	Topic     string       `json:"topic"`
	Intensity int          `json:"intensity"`
	Seats     []arena.Seat `json:"seats"`
}

type sessionView struct {
	ID    string       `json:"id"`
	Mode  arena.Mode   `json:"mode"`
	Topic string       `json:"topic"`
	State arena.State  `json:"state"`
	Seats []arena.Seat `json:"seats"`
	Turns []arena.Turn `json:"turns"`
}

func viewOf(s *arena.Session) sessionView {
	return sessionView{
		ID:    s.ID(),
		Mode:  s.Mode(),
		Topic: s.Topic(),
		State: s.State(),
		Seats: s.Seats(),
		Turns: s.Transcript(),
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := s.sessions.Create(r.Context(), arena.SessionConfig{
		Mode:        req.Mode,
		Topic:       req.Topic,
		Intensity:   req.Intensity,
		Seats:       req.Seats,
		TurnTimeout: s.turnTimeout,
		Options:     s.callOpts,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

type advanceTurnRequest struct {
	SeatID      string `json:"seatId"`
	RebutTurnID string `json:"rebutTurnId,omitempty"`
	Prompt      string `json:"prompt,omitempty"`
}

func (s *Server) handleAdvanceTurn(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	var req advanceTurnRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.maxTurns > 0 && len(sess.Transcript()) >= s.maxTurns {
		writeError(w, http.StatusConflict, fmt.Sprintf("session reached the turn limit of %d", s.maxTurns))
		return
	}

	turn, err := sess.AdvanceTurn(r.Context(), arena.TurnRequest{
		SeatID:      req.SeatID,
		RebutTurnID: req.RebutTurnID,
		Prompt:      req.Prompt,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, turn)
	case errors.Is(err, arena.ErrTurnInFlight):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, arena.ErrSessionClosed):
		writeError(w, http.StatusGone, err.Error())
	case errors.Is(err, arena.ErrUnknownSeat),
		errors.Is(err, arena.ErrNotYourTurn),
		errors.Is(err, arena.ErrUnknownTurn):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeCallError(w, err)
	}
}

func (s *Server) handleCancelSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	sess.Cancel()
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	if err := sess.Finish(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Delete(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*arena.Session, bool) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return sess, true
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// options merges per-request overrides onto the server defaults.
func (s *Server) options(maxTokens int, temperature *float64) types.CallOptions {
	opts := s.callOpts
	if maxTokens > 0 {
		opts.MaxTokens = maxTokens
	}
	if temperature != nil {
		opts.Temperature = temperature
	}
	return opts
}

const maxBodyBytes = 1 << 20 // 1 MiB

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON body: " + err.Error())
	}
	return nil
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeCallError maps the error taxonomy onto HTTP status codes: a
// configuration mistake is the caller's fault, a transient vendor failure is
// an upstream problem, and a malformed response is reported as such.
func writeCallError(w http.ResponseWriter, err error) {
	kind := chat.KindOf(err)
	status := http.StatusBadGateway
	if kind == chat.KindConfiguration {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Kind: string(kind)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
