package notify

import (
	"context"
	"sync"
	"time"

	"github.com/dealstreak/dealstreak"
	"golang.org/x/time/rate"
)

// Quota bounds the number of outbound messages.
type Quota interface {
	// Acquire reserves one message or fails with dealstreak.ErrQuotaExceeded.
	// Calling release gives the reservation back, e.g. when the send failed.
	Acquire(ctx context.Context) (release func(), err error)
}

// TokenBucket is a process local Quota allowing Limit messages per Interval,
// refilled continuously. Released reservations are kept as credits and spent
// before new tokens.
type TokenBucket struct {
	limiter *rate.Limiter
	limit   int

	mutex   sync.Mutex
	credits int
}

var _ Quota = (*TokenBucket)(nil)

// NewTokenBucket creates a bucket of limit messages per interval. Interval
// defaults to a day.
func NewTokenBucket(limit int, interval time.Duration) *TokenBucket {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	every := rate.Every(interval)
	if limit > 0 {
		every = rate.Every(interval / time.Duration(limit))
	} else {
		limit = 0
	}
	return &TokenBucket{
		limiter: rate.NewLimiter(every, limit),
		limit:   limit,
	}
}

func (q *TokenBucket) Acquire(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.credits > 0 {
		q.credits--
	} else if !q.limiter.Allow() {
		return nil, dealstreak.ErrQuotaExceeded
	}
	var once sync.Once
	return func() { once.Do(q.refund) }, nil
}

func (q *TokenBucket) refund() {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.credits < q.limit {
		q.credits++
	}
}

// Remaining returns the number of messages that can be sent right now.
func (q *TokenBucket) Remaining() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	tokens := int(q.limiter.Tokens())
	if tokens < 0 {
		tokens = 0
	}
	return tokens + q.credits
}

func (q *TokenBucket) Limit() int {
	return q.limit
}
