package persistent

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dealstreak/dealstreak"
	"github.com/dealstreak/dealstreak/notify"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/buntdb"
)

// QuotaWindow allows Limit messages per fixed Interval window. The counter
// lives in buntdb so it survives restarts when the database is file backed,
// each window key expires with its window.
type QuotaWindow struct {
	Buntdb   *buntdb.DB
	Limit    int
	Interval time.Duration
	Now      func() time.Time
}

var _ notify.Quota = (*QuotaWindow)(nil)

func (q *QuotaWindow) now() time.Time {
	if q.Now != nil {
		return q.Now()
	}
	return time.Now()
}

func (q *QuotaWindow) interval() time.Duration {
	if q.Interval <= 0 {
		return 24 * time.Hour
	}
	return q.Interval
}

func (q *QuotaWindow) window() (key string, ttl time.Duration) {
	now := q.now()
	start := now.Truncate(q.interval())
	return "quota:" + strconv.FormatInt(start.Unix(), 10), start.Add(q.interval()).Sub(now)
}

func (q *QuotaWindow) Acquire(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, ttl := q.window()
	err := q.Buntdb.Update(func(tx *buntdb.Tx) error {
		used, err := usedIn(tx, key)
		if err != nil {
			return err
		}
		if used >= q.Limit {
			return dealstreak.ErrQuotaExceeded
		}
		_, _, err = tx.Set(key, strconv.Itoa(used+1), &buntdb.SetOptions{Expires: true, TTL: ttl})
		return err
	})
	if errors.Is(err, dealstreak.ErrQuotaExceeded) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("bunt update: %w", err)
	}

	var once sync.Once
	return func() { once.Do(func() { q.release(key) }) }, nil
}

func (q *QuotaWindow) release(key string) {
	err := q.Buntdb.Update(func(tx *buntdb.Tx) error {
		used, err := usedIn(tx, key)
		if err != nil || used == 0 {
			return err
		}
		ttl, err := tx.TTL(key)
		if err != nil {
			return err
		}
		opts := &buntdb.SetOptions{Expires: ttl > 0, TTL: ttl}
		_, _, err = tx.Set(key, strconv.Itoa(used-1), opts)
		return err
	})
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warningln("Could not release quota unit.")
	}
}

// Remaining returns the number of messages left in the current window.
func (q *QuotaWindow) Remaining() (int, error) {
	key, _ := q.window()
	var used int
	err := q.Buntdb.View(func(tx *buntdb.Tx) error {
		var err error
		used, err = usedIn(tx, key)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("bunt view: %w", err)
	}
	if used >= q.Limit {
		return 0, nil
	}
	return q.Limit - used, nil
}

func usedIn(tx *buntdb.Tx, key string) (int, error) {
	value, err := tx.Get(key)
	if errors.Is(err, buntdb.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	used, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parse quota counter: %w", err)
	}
	return used, nil
}
