package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Window(t *testing.T) {
	now := time.Date(2026, 11, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory(10, 10*time.Minute)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := m.Allow(ctx, "reservations:user:1", 4)
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(5 * time.Minute)
	ok, _ = m.Allow(ctx, "reservations:user:1", 6)
	assert.True(t, ok)

	ok, _ = m.Allow(ctx, "reservations:user:1", 1)
	assert.False(t, ok, "window is full")

	ok, _ = m.Allow(ctx, "reservations:user:2", 1)
	assert.True(t, ok, "keys are independent")

	// os 4 primeiros expiram
	now = now.Add(5*time.Minute + time.Second)
	ok, _ = m.Allow(ctx, "reservations:user:1", 4)
	assert.True(t, ok)
	ok, _ = m.Allow(ctx, "reservations:user:1", 1)
	assert.False(t, ok)
}

func TestMemory_RejectedCostConsumesNothing(t *testing.T) {
	m := NewMemory(3, time.Minute)
	ctx := context.Background()

	ok, _ := m.Allow(ctx, "k", 4)
	assert.False(t, ok)

	ok, _ = m.Allow(ctx, "k", 3)
	assert.True(t, ok)
}

func (m *Memory) keys() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hits)
}

func TestMemory_IdleKeysAreDropped(t *testing.T) {
	now := time.Date(2026, 11, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory(5, time.Minute)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		ok, _ := m.Allow(ctx, k, 1)
		require.True(t, ok)
	}
	assert.Equal(t, 3, m.keys())

	ok, _ := m.Allow(ctx, "d", 6)
	assert.False(t, ok)
	assert.Equal(t, 3, m.keys(), "rejected key with no hits is not stored")

	now = now.Add(2 * time.Minute)
	ok, _ = m.Allow(ctx, "e", 1)
	assert.True(t, ok)
	assert.Equal(t, 1, m.keys())
}

func TestRedis_CostAboveLimit(t *testing.T) {
	r := NewRedis(nil, 2, time.Minute)
	ok, err := r.Allow(context.Background(), "k", 3)
	require.NoError(t, err)
	assert.False(t, ok)
}
