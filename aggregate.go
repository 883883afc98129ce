package dealstreak

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// AggregateMutator is the only writer of User points and streaks.
type AggregateMutator interface {
	// ApplyActivity adds points of an activity created at given time and advances the streak.
	ApplyActivity(ctx context.Context, userId UserId, points int, at time.Time) (User, error)

	// AdjustPoints adds delta to the total without touching streaks.
	AdjustPoints(ctx context.Context, userId UserId, delta int) (User, error)

	// Reconcile rebuilds the aggregate from the activity ledger.
	Reconcile(ctx context.Context, userId UserId) (User, error)

	// Lock serializes a ledger write and its aggregate step against
	// reconciliation of the same user. It returns the unlock func.
	Lock(userId UserId) func()
}

type Aggregator struct {
	Users      UserStore
	Activities ActivityStore
	// Reporting timezone of streak days, UTC when nil.
	Location *time.Location

	mutex sync.Mutex

	usersMutex sync.Mutex
	userLocks  map[UserId]*sync.Mutex
}

var _ AggregateMutator = (*Aggregator)(nil)

// Lock is not reentrant, Reconcile takes it for its user.
func (a *Aggregator) Lock(userId UserId) func() {
	a.usersMutex.Lock()
	if a.userLocks == nil {
		a.userLocks = make(map[UserId]*sync.Mutex)
	}
	l, ok := a.userLocks[userId]
	if !ok {
		l = &sync.Mutex{}
		a.userLocks[userId] = l
	}
	a.usersMutex.Unlock()

	l.Lock()
	return l.Unlock
}

func (a *Aggregator) ApplyActivity(ctx context.Context, userId UserId, points int, at time.Time) (User, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	user, err := a.Users.ById(ctx, userId)
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	day := DayOf(at, a.Location)
	user.TotalPoints += points
	user.CurrentStreak = NextStreak(user.LastActivityDate, day, user.CurrentStreak)
	if user.LastActivityDate == "" || day > user.LastActivityDate {
		user.LastActivityDate = day
	}
	if user.CurrentStreak > user.LongestStreak {
		user.LongestStreak = user.CurrentStreak
	}
	if err := a.Users.Update(ctx, user); err != nil {
		return User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (a *Aggregator) AdjustPoints(ctx context.Context, userId UserId, delta int) (User, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	user, err := a.Users.ById(ctx, userId)
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	if delta == 0 {
		return user, nil
	}
	user.TotalPoints += delta
	if err := a.Users.Update(ctx, user); err != nil {
		return User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Reconcile rebuilds TotalPoints from the ledger. Streaks are only moved
// forward: a ledger day past LastActivityDate advances them, deleted or
// edited older activities never shorten them.
func (a *Aggregator) Reconcile(ctx context.Context, userId UserId) (User, error) {
	unlock := a.Lock(userId)
	defer unlock()
	a.mutex.Lock()
	defer a.mutex.Unlock()

	user, err := a.Users.ById(ctx, userId)
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	activities, err := a.Activities.ByUserId(ctx, userId)
	if err != nil {
		return User{}, fmt.Errorf("get user activities: %w", err)
	}

	total := 0
	seen := make(map[string]struct{}, len(activities))
	days := make([]string, 0, len(activities))
	for _, activity := range activities {
		total += activity.Points
		day := DayOf(activity.CreatedAt, a.Location)
		if _, ok := seen[day]; !ok {
			seen[day] = struct{}{}
			days = append(days, day)
		}
	}
	sort.Strings(days)

	user.TotalPoints = total
	if len(days) > 0 {
		current, longest := streakRuns(days)
		lastDay := days[len(days)-1]
		switch {
		case user.LastActivityDate == "" || lastDay > user.LastActivityDate:
			advanced := NextStreak(user.LastActivityDate, lastDay, user.CurrentStreak)
			if advanced > current {
				current = advanced
			}
			user.LastActivityDate = lastDay
			user.CurrentStreak = current
		case lastDay == user.LastActivityDate && current > user.CurrentStreak:
			user.CurrentStreak = current
		}
		if longest > user.LongestStreak {
			user.LongestStreak = longest
		}
	}
	if user.CurrentStreak < 0 {
		user.CurrentStreak = 0
	}
	if user.CurrentStreak > user.LongestStreak {
		user.LongestStreak = user.CurrentStreak
	}
	if err := a.Users.Update(ctx, user); err != nil {
		return User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}
