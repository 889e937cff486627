package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomDelay_StaysInRange(t *testing.T) {
	d := NewRandomDelay(5*time.Millisecond, 10*time.Millisecond).(*randomDelay)

	for i := 0; i < 1000; i++ {
		got := d.next()
		assert.GreaterOrEqual(t, got, 5*time.Millisecond)
		assert.LessOrEqual(t, got, 10*time.Millisecond)
	}
}

func TestRandomDelay_ZeroRangeReturnsImmediately(t *testing.T) {
	d := NewRandomDelay(0, 0)

	start := time.Now()
	require.NoError(t, d.Wait(context.Background()))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestRandomDelay_Cancelled(t *testing.T) {
	d := NewRandomDelay(time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRateLimiter(t *testing.T) {
	ctx := context.Background()

	unlimited := NewRateLimiter(0)
	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, unlimited.Wait(ctx))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	limited := NewRateLimiter(1)
	require.NoError(t, limited.Wait(ctx))

	// The bucket is empty now, so a short deadline cannot be met
	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.Error(t, limited.Wait(short))
}
