package arena

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrWong99/modelarena/internal/observe"
)

// ErrSessionNotFound is returned by [Manager.Get] for unknown session ids.
var ErrSessionNotFound = errors.New("session not found")

// Manager owns the live sessions of one server process. Sessions are held in
// memory only; a finished or idle session is evicted after its TTL.
type Manager struct {
	caller  Caller
	metrics *observe.Metrics
	ttl     time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a Manager. ttl controls how long inactive sessions are
// retained by [Manager.Sweep]; zero disables eviction.
func NewManager(caller Caller, m *observe.Metrics, ttl time.Duration) *Manager {
	return &Manager{
		caller:   caller,
		metrics:  m,
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session from cfg and registers it.
func (mgr *Manager) Create(ctx context.Context, cfg SessionConfig) (*Session, error) {
	s, err := NewSession(mgr.caller, mgr.metrics, cfg)
	if err != nil {
		return nil, err
	}

	mgr.mu.Lock()
	mgr.sessions[s.ID()] = s
	mgr.mu.Unlock()

	if mgr.metrics != nil {
		mgr.metrics.ActiveSessions.Add(ctx, 1)
	}
	observe.Logger(ctx).Info("session created",
		"session_id", s.ID(),
		"mode", string(s.Mode()),
		"seats", len(s.Seats()),
	)
	return s, nil
}

// Get returns the session with the given id.
func (mgr *Manager) Get(id string) (*Session, error) {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	s, ok := mgr.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete cancels the session and removes it from the manager. Deleting an
// unknown id is a no-op.
func (mgr *Manager) Delete(ctx context.Context, id string) {
	mgr.mu.Lock()
	s, ok := mgr.sessions[id]
	if ok {
		delete(mgr.sessions, id)
	}
	mgr.mu.Unlock()

	if !ok {
		return
	}
	s.Cancel()
	if mgr.metrics != nil {
		mgr.metrics.ActiveSessions.Add(ctx, -1)
	}
}

// Len reports the number of registered sessions.
func (mgr *Manager) Len() int {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	return len(mgr.sessions)
}

// Sweep evicts sessions whose last activity is older than the TTL, and any
// session already finished or cancelled for longer than the TTL. It returns
// the number of evicted sessions.
func (mgr *Manager) Sweep(ctx context.Context) int {
	if mgr.ttl <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-mgr.ttl)

	mgr.mu.Lock()
	var stale []*Session
	for id, s := range mgr.sessions {
		if s.LastActive().Before(cutoff) {
			delete(mgr.sessions, id)
			stale = append(stale, s)
		}
	}
	mgr.mu.Unlock()

	for _, s := range stale {
		s.Cancel()
		if mgr.metrics != nil {
			mgr.metrics.ActiveSessions.Add(ctx, -1)
		}
	}
	if len(stale) > 0 {
		observe.Logger(ctx).Info("evicted stale sessions", "count", len(stale))
	}
	return len(stale)
}

// Run sweeps periodically until ctx is cancelled. Intended to be launched as
// a goroutine from main.
func (mgr *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mgr.Sweep(ctx)
		}
	}
}
