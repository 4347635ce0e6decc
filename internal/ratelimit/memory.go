package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Memory is the single-process limiter used when no Redis is configured.
type Memory struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   map[string][]time.Time
	now    func() time.Time
	// última varredura das chaves inativas
	swept time.Time
}

func NewMemory(limit int, window time.Duration) *Memory {
	return &Memory{
		limit:  limit,
		window: window,
		hits:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

func (m *Memory) Allow(_ context.Context, key string, cost int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	cutoff := now.Add(-m.window)
	m.sweep(now, cutoff)

	kept := m.hits[key][:0]
	for _, t := range m.hits[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept)+cost > m.limit {
		if len(kept) == 0 {
			delete(m.hits, key)
		} else {
			m.hits[key] = kept
		}
		return false, nil
	}

	for i := 0; i < cost; i++ {
		kept = append(kept, now)
	}
	m.hits[key] = kept
	return true, nil
}

// sweep drops keys with no hit inside the window, at most once per window.
func (m *Memory) sweep(now, cutoff time.Time) {
	if now.Sub(m.swept) < m.window {
		return
	}
	m.swept = now
	for key, ts := range m.hits {
		if len(ts) == 0 || !ts[len(ts)-1].After(cutoff) {
			delete(m.hits, key)
		}
	}
}
