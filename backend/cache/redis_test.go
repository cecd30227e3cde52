package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"devprep/backend/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real server only when TEST_REDIS_ADDR is set.
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	prefix := "devprep-test:" + uuid.NewString() + ":"
	r, err := NewRedis(addr, prefix, utils.NewNopLogger())
	require.NoError(t, err)
	defer r.Close()

	_, ok, err := r.Get(ctx, "user:1:stats")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Set(ctx, "user:1:stats", []byte(`{"total":1}`), time.Minute))
	require.NoError(t, r.Set(ctx, "user:1:activity:30", []byte(`[]`), time.Minute))
	require.NoError(t, r.Set(ctx, "user:10:stats", []byte(`{}`), time.Minute))

	got, ok, err := r.Get(ctx, "user:1:stats")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"total":1}`, string(got))

	require.NoError(t, r.InvalidatePattern(ctx, "^user:1:"))

	_, ok, _ = r.Get(ctx, "user:1:stats")
	assert.False(t, ok)
	_, ok, _ = r.Get(ctx, "user:1:activity:30")
	assert.False(t, ok)
	_, ok, _ = r.Get(ctx, "user:10:stats")
	assert.True(t, ok)

	require.NoError(t, r.Invalidate(ctx, "user:10:stats"))
}

func TestNewRedisRequiresAddress(t *testing.T) {
	_, err := NewRedis(" ", "p:", utils.NewNopLogger())
	assert.Error(t, err)
}
