package cooldown

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Memory is a process-local Limiter. Use Redis when running more than one
// replica.
type Memory struct {
	window time.Duration
	now    func() time.Time

	mu          sync.Mutex
	entries     map[string]*entry
	lastCleanup time.Time
}

func NewMemory(window time.Duration) *Memory {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Memory{
		window:  window,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

func (m *Memory) Allow(_ context.Context, key Key) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.maybeCleanup(now)

	k := key.String()
	e, ok := m.entries[k]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rate.Every(m.window), 1)}
		m.entries[k] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1), nil
}

// maybeCleanup drops keys idle for longer than the window, at most once per
// window. Must be called with mu held.
func (m *Memory) maybeCleanup(now time.Time) {
	if now.Sub(m.lastCleanup) < m.window {
		return
	}
	m.lastCleanup = now
	for k, e := range m.entries {
		if now.Sub(e.lastSeen) > m.window {
			delete(m.entries, k)
		}
	}
}
