// Package session binds client-facing session identifiers to tasks, tracks
// last activity, and expires idle sessions via a background sweeper.
package session

import (
	"context"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roomodes/roomodes/pkg/models"
)

// Defaults for the idle timeout and the sweep interval.
const (
	DefaultTimeout         = time.Hour
	DefaultCleanupInterval = 5 * time.Minute
)

// Lookup errors. Expired is distinct from unknown so the dispatcher can
// report SESSION_EXPIRED vs TASK_NOT_FOUND.
var (
	ErrNotFound = errors.New("session not found")
	ErrExpired  = errors.New("session expired")
)

// Session is the client-visible handle owning exactly one task. A session
// is reachable if and only if it is present in the manager's table.
type Session struct {
	ID           string
	Task         *models.Task
	CreatedAt    time.Time
	LastActivity time.Time
}

// Age returns the time since the session was created.
func (s *Session) Age(now time.Time) time.Duration {
	return now.Sub(s.CreatedAt)
}

// Idle returns the time since the session was last touched.
func (s *Session) Idle(now time.Time) time.Duration {
	return now.Sub(s.LastActivity)
}

// NewSessionID returns an opaque session identifier with 96 bits of entropy.
func NewSessionID() string {
	u := uuid.New()
	// Skip bytes 6-9, which carry the fixed UUID version and variant bits.
	return "ses_" + hex.EncodeToString(append(u[:6:6], u[10:]...))
}

// Manager owns the session table plus a task-id secondary index, both
// maintained in lock-step under one mutex. The sweeper takes the same lock
// as request handlers, so it can never remove a session mid-request.
type Manager struct {
	timeout  time.Duration
	interval time.Duration
	log      zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	byTask   map[string]string

	// now is replaceable in tests.
	now func() time.Time

	// onDestroy is invoked (outside the lock) for each removed session.
	onDestroy func(*Session)
}

// Stats is a point-in-time summary of the session table.
type Stats struct {
	Sessions   int
	OldestAge  time.Duration
	MaxIdle    time.Duration
	Timeout    time.Duration
	SweepEvery time.Duration
}

// NewManager creates a session manager. Non-positive timeout or interval
// fall back to the defaults.
func NewManager(timeout, interval time.Duration, log zerolog.Logger) *Manager {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	return &Manager{
		timeout:  timeout,
		interval: interval,
		log:      log.With().Str("component", "sessions").Logger(),
		sessions: make(map[string]*Session),
		byTask:   make(map[string]string),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source. Test hook.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// SetDestroyHook registers a callback run after a session is removed.
func (m *Manager) SetDestroyHook(fn func(*Session)) {
	m.onDestroy = fn
}

// Create installs a new session owning the given task.
func (m *Manager) Create(task *models.Task) *Session {
	now := m.now()
	s := &Session{
		ID:           NewSessionID(),
		Task:         task,
		CreatedAt:    now,
		LastActivity: now,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.byTask[task.ID] = s.ID
	m.mu.Unlock()

	m.log.Info().
		Str("session_id", s.ID).
		Str("task_id", task.ID).
		Str("mode", task.ModeSlug).
		Msg("session created")
	return s
}

// Get resolves a session id, expiring it on the spot when its idle time
// has passed the timeout. On a hit the session is touched.
func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if !ok {
		m.mu.Unlock()
		return nil, ErrNotFound
	}

	now := m.now()
	if now.Sub(s.LastActivity) > m.timeout {
		m.removeLocked(s)
		m.mu.Unlock()
		m.notifyDestroy(s)
		m.log.Info().Str("session_id", sessionID).Msg("session expired on lookup")
		return nil, ErrExpired
	}

	s.LastActivity = now
	m.mu.Unlock()
	return s, nil
}

// GetByTask resolves the session owning a task, through the secondary
// index. Expiry and touch behave exactly like Get.
func (m *Manager) GetByTask(taskID string) (*Session, error) {
	m.mu.Lock()
	sessionID, ok := m.byTask[taskID]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return m.Get(sessionID)
}

// Destroy removes a session explicitly. Returns false when the id is not
// in the table.
func (m *Manager) Destroy(sessionID string) bool {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if ok {
		m.removeLocked(s)
	}
	m.mu.Unlock()

	if ok {
		m.notifyDestroy(s)
		m.log.Info().Str("session_id", sessionID).Msg("session destroyed")
	}
	return ok
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Stats summarizes the session table for diagnostics.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Stats{
		Sessions:   len(m.sessions),
		Timeout:    m.timeout,
		SweepEvery: m.interval,
	}
	now := m.now()
	for _, s := range m.sessions {
		if age := s.Age(now); age > st.OldestAge {
			st.OldestAge = age
		}
		if idle := s.Idle(now); idle > st.MaxIdle {
			st.MaxIdle = idle
		}
	}
	return st
}

// Run sweeps expired sessions every interval until the context is
// cancelled. Intended to be started as a background goroutine.
func (m *Manager) Run(ctx context.Context) {
	m.log.Info().
		Dur("interval", m.interval).
		Dur("timeout", m.timeout).
		Msg("session sweeper started")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("session sweeper stopped")
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Sweep removes every session whose idle time exceeds the timeout and
// returns how many were removed.
func (m *Manager) Sweep() int {
	now := m.now()

	m.mu.Lock()
	var expired []*Session
	for _, s := range m.sessions {
		if now.Sub(s.LastActivity) > m.timeout {
			expired = append(expired, s)
		}
	}
	for _, s := range expired {
		m.removeLocked(s)
	}
	m.mu.Unlock()

	for _, s := range expired {
		m.notifyDestroy(s)
	}
	if len(expired) > 0 {
		m.log.Info().Int("count", len(expired)).Msg("swept expired sessions")
	}
	return len(expired)
}

// DestroyAll removes every session, for shutdown.
func (m *Manager) DestroyAll() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	for _, s := range all {
		m.removeLocked(s)
	}
	m.mu.Unlock()

	for _, s := range all {
		m.notifyDestroy(s)
	}
	if len(all) > 0 {
		m.log.Info().Int("count", len(all)).Msg("destroyed all sessions")
	}
}

func (m *Manager) removeLocked(s *Session) {
	delete(m.sessions, s.ID)
	delete(m.byTask, s.Task.ID)
}

func (m *Manager) notifyDestroy(s *Session) {
	if m.onDestroy != nil {
		m.onDestroy(s)
	}
}
