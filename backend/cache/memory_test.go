package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestMemory(maxEntries int) (*Memory, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)}
	return NewMemory(maxEntries, WithClock(clock.Now)), clock
}

func TestMemoryExpiresEntries(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestMemory(10)

	require.NoError(t, m.Set(ctx, "user:1:stats", []byte("a"), time.Minute))

	got, ok, err := m.Get(ctx, "user:1:stats")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("a"), got)

	clock.Advance(59 * time.Second)
	_, ok, _ = m.Get(ctx, "user:1:stats")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok, _ = m.Get(ctx, "user:1:stats")
	assert.False(t, ok)
	assert.Zero(t, m.Len())
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMemory(10)

	value := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", value, time.Minute))
	value[0] = 'x'

	got, _, _ := m.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), got)
	got[1] = 'y'

	again, _, _ := m.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryInvalidatePattern(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMemory(10)

	for _, key := range []string{"user:1:stats", "user:1:activity:30", "user:12:stats", "user:2:stats"} {
		require.NoError(t, m.Set(ctx, key, []byte("v"), time.Minute))
	}

	require.NoError(t, m.InvalidatePattern(ctx, "^user:1:"))

	for key, want := range map[string]bool{
		"user:1:stats":       false,
		"user:1:activity:30": false,
		"user:12:stats":      true,
		"user:2:stats":       true,
	} {
		_, ok, _ := m.Get(ctx, key)
		assert.Equal(t, want, ok, key)
	}

	assert.Error(t, m.InvalidatePattern(ctx, "("))

	require.NoError(t, m.Invalidate(ctx, "user:2:stats"))
	_, ok, _ := m.Get(ctx, "user:2:stats")
	assert.False(t, ok)
}

func TestMemorySweepsExpiredPastCapacity(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestMemory(3)

	for i := 0; i < 3; i++ {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("old:%d", i), []byte("v"), time.Second))
	}
	clock.Advance(2 * time.Second)

	// expired entries linger until capacity is crossed
	assert.Equal(t, 3, m.Len())

	require.NoError(t, m.Set(ctx, "fresh", []byte("v"), time.Minute))
	assert.Equal(t, 1, m.Len())
	_, ok, _ := m.Get(ctx, "fresh")
	assert.True(t, ok)
}

func TestGetOrLoad(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestMemory(10)

	type payload struct {
		Total int            `json:"total"`
		ByKey map[string]int `json:"by_key"`
	}

	calls := 0
	producer := func(context.Context) (payload, error) {
		calls++
		return payload{Total: calls, ByKey: map[string]int{"css": calls}}, nil
	}

	first, err := GetOrLoad(ctx, m, "user:1:stats", time.Minute, producer)
	require.NoError(t, err)
	second, err := GetOrLoad(ctx, m, "user:1:stats", time.Minute, producer)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	clock.Advance(time.Minute)
	third, err := GetOrLoad(ctx, m, "user:1:stats", time.Minute, producer)
	require.NoError(t, err)
	assert.Equal(t, 2, third.Total)
}

func TestGetOrLoadDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMemory(10)
	boom := errors.New("store down")

	_, err := GetOrLoad(ctx, m, "k", time.Minute, func(context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, m.Len())

	v, err := GetOrLoad(ctx, m, "k", time.Minute, func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestGetOrLoadWithoutCache(t *testing.T) {
	calls := 0
	for i := 0; i < 2; i++ {
		v, err := GetOrLoad(context.Background(), nil, "k", time.Minute, func(context.Context) (string, error) {
			calls++
			return "fresh", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "fresh", v)
	}
	assert.Equal(t, 2, calls)
}
