package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestTokenBucketAllow(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)}
	tb := newTokenBucket(60, 2, clock.now) // 每秒一个令牌

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
	assert.Equal(t, time.Second, tb.RetryAfter())

	clock.t = clock.t.Add(500 * time.Millisecond)
	assert.False(t, tb.Allow())

	clock.t = clock.t.Add(500 * time.Millisecond)
	assert.True(t, tb.Allow())

	// 补充不超过容量
	clock.t = clock.t.Add(time.Hour)
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
}

func TestNewTokenBucketDefaults(t *testing.T) {
	tb := NewTokenBucket(120, 0)
	assert.Equal(t, 60.0, tb.capacity)
	assert.Equal(t, 2.0, tb.rate)

	tb = NewTokenBucket(1, 0)
	assert.Equal(t, 1.0, tb.capacity)
}

func TestTokenBucketWaitCanceled(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	tb := newTokenBucket(1, 1, clock.now)
	require.True(t, tb.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, tb.Wait(ctx), context.Canceled)
}
