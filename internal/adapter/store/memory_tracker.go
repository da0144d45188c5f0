package store

import (
	"context"
	"sync"
	"time"

	"mflix/internal/domain/repository"
)

type trackedSession struct {
	token   int64
	touched time.Time
}

// MemoryTracker is the single-process SubmissionTracker used when no Redis
// address is configured. Sessions idle longer than ttl are forgotten, the
// same way RedisTracker lets its keys expire.
type MemoryTracker struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	sessions  map[string]trackedSession
	lastSweep time.Time
}

var _ repository.SubmissionTracker = (*MemoryTracker)(nil)

// NewMemoryTracker creates a tracker. A ttl of zero or less keeps sessions
// forever.
func NewMemoryTracker(ttl time.Duration) *MemoryTracker {
	return &MemoryTracker{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]trackedSession),
	}
}

func (m *MemoryTracker) Next(_ context.Context, session string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)
	s := m.live(session, now)
	s.token++
	s.touched = now
	m.sessions[session] = s
	return s.token, nil
}

func (m *MemoryTracker) IsLatest(_ context.Context, session string, token int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return token >= m.live(session, m.now()).token, nil
}

// Len returns the number of sessions currently retained.
func (m *MemoryTracker) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// live returns the session entry, or the zero entry if it has expired.
func (m *MemoryTracker) live(session string, now time.Time) trackedSession {
	s, ok := m.sessions[session]
	if !ok || m.expired(s, now) {
		return trackedSession{}
	}
	return s
}

func (m *MemoryTracker) expired(s trackedSession, now time.Time) bool {
	return m.ttl > 0 && now.Sub(s.touched) > m.ttl
}

// sweep drops expired sessions at most once per ttl.
func (m *MemoryTracker) sweep(now time.Time) {
	if m.ttl <= 0 || now.Sub(m.lastSweep) < m.ttl {
		return
	}
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
		}
	}
	m.lastSweep = now
}
