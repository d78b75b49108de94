// Package arena implements turn-based multi-model conversation sessions:
// debates, battles, and creative-writing duels. A session advances one model
// at a time under strict turn discipline; the caller decides who speaks next.
package arena

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/xid"
	"go.opentelemetry.io/otel/metric"

	"github.com/MrWong99/modelarena/internal/observe"
	"github.com/MrWong99/modelarena/pkg/types"
)

// State is the lifecycle phase of a session.
type State string

const (
	// StateIdle is the zero value before a session is started.
	StateIdle State = "idle"

	// StateAwaitingOpening means the session is started but no seat has
	// spoken yet.
	StateAwaitingOpening State = "awaiting_opening"

	// StateAwaitingNextTurn means at least one turn exists and the session is
	// waiting for the caller to advance.
	StateAwaitingNextTurn State = "awaiting_next_turn"

	// StateStreamingTurn means exactly one provider call is in flight.
	StateStreamingTurn State = "streaming_turn"

	// StateFinished is the terminal state reached via [Session.Finish].
	StateFinished State = "finished"

	// StateCancelled is the terminal state reached via [Session.Cancel].
	StateCancelled State = "cancelled"
)

// TurnType labels how a turn's prompt was constructed.
type TurnType string

const (
	// TurnInitial is a seat's opening statement.
	TurnInitial TurnType = "initial"

	// TurnRebuttal is a turn built from a prior turn's content.
	TurnRebuttal TurnType = "rebuttal"

	// TurnPromptResponse is a direct answer to a caller-supplied prompt,
	// outside the opening/rebuttal structure.
	TurnPromptResponse TurnType = "prompt_response"
)

// Seat is a participant slot in a session.
type Seat struct {
	// ID identifies the seat within its session (e.g. "affirmative", "seat-2").
	ID string `json:"id"`

	// ModelID is the model occupying the seat.
	ModelID string `json:"model_id"`

	// Role is the persona label used when building prompts. Defaults to ID.
	Role string `json:"role"`
}

// Turn is one completed model response within a session transcript.
type Turn struct {
	ID           string            `json:"id"`
	SeatID       string            `json:"seat_id"`
	ModelID      string            `json:"model_id"`
	Round        int               `json:"round"`
	Type         TurnType          `json:"type"`
	Content      string            `json:"content"`
	Reasoning    string            `json:"reasoning,omitempty"`
	ResponseTime time.Duration     `json:"response_time"`
	TokenUsage   *types.TokenUsage `json:"token_usage,omitempty"`
	Cost         *types.Cost       `json:"cost,omitempty"`
}

// Caller dispatches one model call. *chat.Registry satisfies it.
type Caller interface {
	Call(ctx context.Context, modelID string, messages []types.Message, opts types.CallOptions) (*types.ModelResponse, error)
}

// Errors returned by [Session.AdvanceTurn] and friends.
var (
	ErrTurnInFlight  = errors.New("a turn is already in flight")
	ErrSessionClosed = errors.New("session is finished or cancelled")
	ErrUnknownSeat   = errors.New("unknown seat")
	ErrNotYourTurn   = errors.New("seat is out of turn order")
	ErrUnknownTurn   = errors.New("unknown rebuttal target turn")
)

// SessionConfig describes a new session.
type SessionConfig struct {
	Mode      Mode
	Topic     string
	Intensity int
	Seats     []Seat

	// TurnTimeout bounds each turn's provider call. Zero means no deadline
	// beyond the caller's context.
	TurnTimeout time.Duration

	// Options are the generation options applied to every turn.
	Options types.CallOptions
}

// Session is a single turn-based conversation. All methods are safe for
// concurrent use, but the session enforces at most one in-flight provider
// call at a time: concurrent AdvanceTurn calls beyond the first fail with
// [ErrTurnInFlight].
type Session struct {
	id      string
	mode    Mode
	topic   string
	intense int
	seats   []Seat
	caller  Caller
	metrics *observe.Metrics
	timeout time.Duration
	opts    types.CallOptions
	created time.Time

	mu         sync.Mutex
	state      State
	turns      []Turn
	round      int
	nextSeat   int // debate alternation cursor
	generation uint64
	cancelCall context.CancelFunc
	lastActive time.Time
}

// NewSession validates cfg and returns a started session in
// [StateAwaitingOpening].
func NewSession(caller Caller, m *observe.Metrics, cfg SessionConfig) (*Session, error) {
	if !cfg.Mode.IsValid() {
		return nil, fmt.Errorf("mode %q is invalid; valid values: debate, battle, creative-combat", cfg.Mode)
	}
	if cfg.Topic == "" {
		return nil, errors.New("topic is required")
	}
	if cfg.Intensity < MinIntensity || cfg.Intensity > MaxIntensity {
		return nil, fmt.Errorf("intensity %d is out of range [%d, %d]", cfg.Intensity, MinIntensity, MaxIntensity)
	}
	if cfg.Mode == ModeDebate {
		if len(cfg.Seats) != 2 {
			return nil, fmt.Errorf("debate requires exactly 2 seats, got %d", len(cfg.Seats))
		}
	} else if len(cfg.Seats) < 2 {
		return nil, fmt.Errorf("%s requires at least 2 seats, got %d", cfg.Mode, len(cfg.Seats))
	}

	seats := make([]Seat, len(cfg.Seats))
	copy(seats, cfg.Seats)
	seen := make(map[string]struct{}, len(seats))
	for i := range seats {
		if seats[i].ID == "" {
			return nil, fmt.Errorf("seats[%d].id is required", i)
		}
		if seats[i].ModelID == "" {
			return nil, fmt.Errorf("seats[%d].model_id is required", i)
		}
		if _, dup := seen[seats[i].ID]; dup {
			return nil, fmt.Errorf("seats[%d].id %q is a duplicate", i, seats[i].ID)
		}
		seen[seats[i].ID] = struct{}{}
		if seats[i].Role == "" {
			seats[i].Role = seats[i].ID
		}
	}
	// Debate seats carry fixed stances, first seat affirmative.
	if cfg.Mode == ModeDebate {
		seats[0].Role = RoleAffirmative
		seats[1].Role = RoleNegative
	}

	now := time.Now()
	return &Session{
		id:         xid.New().String(),
		mode:       cfg.Mode,
		topic:      cfg.Topic,
		intense:    cfg.Intensity,
		seats:      seats,
		caller:     caller,
		metrics:    m,
		timeout:    cfg.TurnTimeout,
		opts:       cfg.Options,
		created:    now,
		state:      StateAwaitingOpening,
		lastActive: now,
	}, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Mode returns the session's conversation format.
func (s *Session) Mode() Mode { return s.mode }

// Topic returns the session topic.
func (s *Session) Topic() string { return s.topic }

// Seats returns a copy of the seat list.
func (s *Session) Seats() []Seat {
	out := make([]Seat, len(s.seats))
	copy(out, s.seats)
	return out
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transcript returns a copy of the turns recorded so far, in initiation
// order.
func (s *Session) Transcript() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// LastActive reports when the session last started or completed a turn.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// TurnRequest describes the next turn to run.
//
// In debate mode SeatID may be empty to mean "whoever is due"; a non-empty
// SeatID must match the strict alternation order. In battle and
// creative-combat modes the caller picks any seat, and RebutTurnID may name
// any prior turn to rebut; when empty, the latest turn by another seat is
// used. Prompt, when set, overrides rebut targeting: the seat answers the
// caller's question directly, in character.
type TurnRequest struct {
	SeatID      string
	RebutTurnID string
	Prompt      string
}

// AdvanceTurn runs the next turn for the requested seat and appends the
// result to the transcript. It blocks until the provider call settles.
//
// A turn is never started while another is in flight, and never after
// [Session.Finish] or [Session.Cancel].
func (s *Session) AdvanceTurn(ctx context.Context, req TurnRequest) (*Turn, error) {
	s.mu.Lock()
	switch s.state {
	case StateFinished, StateCancelled:
		s.mu.Unlock()
		return nil, ErrSessionClosed
	case StateStreamingTurn:
		s.mu.Unlock()
		return nil, ErrTurnInFlight
	}

	seat, err := s.resolveSeat(req.SeatID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	messages, turnType, err := s.buildTurnPrompt(seat, req)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	round := s.round + 1
	gen := s.generation

	callCtx := ctx
	var cancel context.CancelFunc
	if s.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
	} else {
		callCtx, cancel = context.WithCancel(ctx)
	}
	s.cancelCall = cancel
	s.state = StateStreamingTurn
	s.lastActive = time.Now()
	s.mu.Unlock()

	start := time.Now()
	resp, callErr := s.caller.Call(callCtx, seat.ModelID, messages, s.opts)
	elapsed := time.Since(start)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Discard-if-cancelled guard: a response that arrives after Cancel must
	// not mutate the transcript.
	if s.generation != gen || s.state == StateCancelled {
		return nil, ErrSessionClosed
	}

	s.cancelCall = nil
	s.state = StateAwaitingNextTurn
	s.lastActive = time.Now()

	if callErr != nil {
		return nil, callErr
	}

	turn := Turn{
		ID:           xid.New().String(),
		SeatID:       seat.ID,
		ModelID:      seat.ModelID,
		Round:        round,
		Type:         turnType,
		Content:      resp.Content,
		Reasoning:    resp.Reasoning,
		ResponseTime: elapsed,
		TokenUsage:   resp.TokenUsage,
		Cost:         resp.Cost,
	}
	s.turns = append(s.turns, turn)
	s.round = round
	s.advanceCursor(seat)

	if s.metrics != nil {
		s.metrics.RecordTurn(ctx, string(s.mode))
		s.metrics.TurnDuration.Record(ctx, elapsed.Seconds(),
			metric.WithAttributes(
				observe.Attr("mode", string(s.mode)),
				observe.Attr("model", seat.ModelID),
			),
		)
	}
	return &turn, nil
}

// Cancel terminates the session. An in-flight provider call is cancelled and
// its eventual response discarded. Idempotent.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateFinished || s.state == StateCancelled {
		return
	}
	s.generation++
	if s.cancelCall != nil {
		s.cancelCall()
		s.cancelCall = nil
	}
	s.state = StateCancelled
	s.lastActive = time.Now()
}

// Finish marks the session complete. It fails while a turn is in flight.
func (s *Session) Finish() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateStreamingTurn:
		return ErrTurnInFlight
	case StateCancelled:
		return ErrSessionClosed
	case StateFinished:
		return nil
	}
	s.state = StateFinished
	s.lastActive = time.Now()
	return nil
}

// resolveSeat maps seatID to a seat, enforcing debate alternation. Must be
// called with s.mu held.
func (s *Session) resolveSeat(seatID string) (Seat, error) {
	if s.mode == ModeDebate {
		due := s.seats[s.nextSeat]
		if seatID == "" || seatID == due.ID {
			return due, nil
		}
		for _, seat := range s.seats {
			if seat.ID == seatID {
				return Seat{}, fmt.Errorf("%w: %q is due, not %q", ErrNotYourTurn, due.ID, seatID)
			}
		}
		return Seat{}, fmt.Errorf("%w: %q", ErrUnknownSeat, seatID)
	}

	if seatID == "" {
		return Seat{}, fmt.Errorf("%w: %s mode requires an explicit seat", ErrUnknownSeat, s.mode)
	}
	for _, seat := range s.seats {
		if seat.ID == seatID {
			return seat, nil
		}
	}
	return Seat{}, fmt.Errorf("%w: %q", ErrUnknownSeat, seatID)
}

// buildTurnPrompt constructs the messages for the seat's next turn. Must be
// called with s.mu held.
func (s *Session) buildTurnPrompt(seat Seat, req TurnRequest) ([]types.Message, TurnType, error) {
	if req.Prompt != "" {
		return directPrompt(s.mode, seat.Role, s.topic, req.Prompt, s.intense), TurnPromptResponse, nil
	}
	target, err := s.rebutTarget(seat, req.RebutTurnID)
	if err != nil {
		return nil, "", err
	}
	if target == nil {
		return openingPrompt(s.mode, seat.Role, s.topic, s.intense), TurnInitial, nil
	}
	return rebuttalPrompt(s.mode, seat.Role, s.topic, target.Content, s.intense), TurnRebuttal, nil
}

// rebutTarget picks the prior turn the seat should answer, or nil for an
// opening turn. Must be called with s.mu held.
func (s *Session) rebutTarget(seat Seat, rebutTurnID string) (*Turn, error) {
	if rebutTurnID != "" {
		for i := range s.turns {
			if s.turns[i].ID == rebutTurnID {
				return &s.turns[i], nil
			}
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownTurn, rebutTurnID)
	}
	// Default: the latest turn by another seat; none means this is an opening.
	for i := len(s.turns) - 1; i >= 0; i-- {
		if s.turns[i].SeatID != seat.ID {
			return &s.turns[i], nil
		}
	}
	return nil, nil
}

// advanceCursor moves the debate alternation pointer. Must be called with
// s.mu held.
func (s *Session) advanceCursor(justSpoke Seat) {
	if s.mode != ModeDebate {
		return
	}
	for i, seat := range s.seats {
		if seat.ID == justSpoke.ID {
			s.nextSeat = (i + 1) % len(s.seats)
			return
		}
	}
}
