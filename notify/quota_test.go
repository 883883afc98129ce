package notify

import (
	"context"
	"testing"
	"time"

	"github.com/dealstreak/dealstreak"
	"github.com/stretchr/testify/assert"
)

func TestTokenBucket(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	q := NewTokenBucket(2, time.Hour)
	assert.Equal(2, q.Limit())

	release, err := q.Acquire(ctx)
	if !assert.NoError(err) {
		return
	}
	_, err = q.Acquire(ctx)
	if !assert.NoError(err) {
		return
	}
	_, err = q.Acquire(ctx)
	assert.ErrorIs(err, dealstreak.ErrQuotaExceeded)
	assert.Equal(0, q.Remaining())

	release()
	release()
	assert.Equal(1, q.Remaining())

	_, err = q.Acquire(ctx)
	assert.NoError(err)
	_, err = q.Acquire(ctx)
	assert.ErrorIs(err, dealstreak.ErrQuotaExceeded)
}

func TestTokenBucketZeroLimit(t *testing.T) {
	assert := assert.New(t)

	q := NewTokenBucket(0, 0)
	_, err := q.Acquire(context.Background())
	assert.ErrorIs(err, dealstreak.ErrQuotaExceeded)
	assert.Equal(0, q.Remaining())
}

func TestTokenBucketCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTokenBucket(10, time.Hour).Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
