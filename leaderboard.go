package dealstreak

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	default:
		return false
	}
}

// windowStart returns the first instant included in the period ending at now.
func (p Period) windowStart(now time.Time, loc *time.Location) time.Time {
	switch p {
	case PeriodDaily:
		y, m, d := now.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	case PeriodWeekly:
		return now.AddDate(0, 0, -7)
	default:
		return now.AddDate(0, -1, 0)
	}
}

// previousStart returns the start of the window preceding the one starting at start.
func (p Period) previousStart(start time.Time) time.Time {
	switch p {
	case PeriodDaily:
		return start.AddDate(0, 0, -1)
	case PeriodWeekly:
		return start.AddDate(0, 0, -7)
	default:
		return start.AddDate(0, -1, 0)
	}
}

type LeaderboardEntry struct {
	UserId      UserId
	DisplayName string
	Points      int
	Activities  int
	Rank        int
	// Rank delta against the previous window, positive when the user climbed.
	// Zero when no snapshot of the previous window is known.
	Change int
}

type TeamTotal struct {
	Points      int
	Activities  int
	ActiveUsers int
}

type TeamStats struct {
	Period      Period
	StartDate   time.Time
	EndDate     time.Time
	Leaderboard []LeaderboardEntry
	TeamTotal   TeamTotal
}

// RankStore keeps rank snapshots of computed leaderboards keyed by period and
// window start day.
type RankStore interface {
	SaveRanks(ctx context.Context, period Period, windowDay string, ranks map[UserId]int) error

	// Returns an empty map when no snapshot was saved for the window.
	Ranks(ctx context.Context, period Period, windowDay string) (map[UserId]int, error)
}

type Leaderboard struct {
	Activities ActivityStore
	Users      UserStore
	// Optional, without it Change is always zero.
	Ranks    RankStore
	Location *time.Location
	Now      func() time.Time
}

func (b *Leaderboard) location() *time.Location {
	if b.Location == nil {
		return time.UTC
	}
	return b.Location
}

func (b *Leaderboard) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b *Leaderboard) TeamStats(ctx context.Context, period Period) (TeamStats, error) {
	if !period.Valid() {
		return TeamStats{}, fmt.Errorf("%w: unknown period %q", ErrValidation, period)
	}
	loc := b.location()
	now := b.now()
	start := period.windowStart(now, loc)

	activities, err := b.Activities.CreatedBetween(ctx, start, now)
	if err != nil {
		return TeamStats{}, fmt.Errorf("get window activities: %w", err)
	}

	type tally struct {
		entry LeaderboardEntry
		first time.Time
	}
	tallies := make([]*tally, 0)
	byUser := make(map[UserId]*tally)
	for _, activity := range activities {
		t, ok := byUser[activity.OwnerId]
		if !ok {
			t = &tally{entry: LeaderboardEntry{UserId: activity.OwnerId}, first: activity.CreatedAt}
			byUser[activity.OwnerId] = t
			tallies = append(tallies, t)
		}
		t.entry.Points += activity.Points
		t.entry.Activities++
		if activity.CreatedAt.Before(t.first) {
			t.first = activity.CreatedAt
		}
	}

	for _, t := range tallies {
		user, err := b.Users.ById(ctx, t.entry.UserId)
		switch {
		case err == nil:
			t.entry.DisplayName = user.DisplayName
		case errors.Is(err, ErrNotFound):
			t.entry.DisplayName = string(t.entry.UserId)
		default:
			return TeamStats{}, fmt.Errorf("get user %s: %w", t.entry.UserId, err)
		}
		if t.entry.DisplayName == "" {
			t.entry.DisplayName = string(t.entry.UserId)
		}
	}

	sort.SliceStable(tallies, func(i, j int) bool {
		x, y := tallies[i], tallies[j]
		if x.entry.Points != y.entry.Points {
			return x.entry.Points > y.entry.Points
		}
		if !x.first.Equal(y.first) {
			return x.first.Before(y.first)
		}
		return x.entry.UserId < y.entry.UserId
	})

	previous := b.previousRanks(ctx, period, start, loc)
	stats := TeamStats{
		Period:      period,
		StartDate:   start,
		EndDate:     now,
		Leaderboard: make([]LeaderboardEntry, len(tallies)),
	}
	ranks := make(map[UserId]int, len(tallies))
	for i, t := range tallies {
		entry := t.entry
		entry.Rank = i + 1
		if prev, ok := previous[entry.UserId]; ok {
			entry.Change = prev - entry.Rank
		}
		ranks[entry.UserId] = entry.Rank
		stats.Leaderboard[i] = entry
		stats.TeamTotal.Points += entry.Points
		stats.TeamTotal.Activities += entry.Activities
	}
	stats.TeamTotal.ActiveUsers = len(stats.Leaderboard)

	if b.Ranks != nil {
		if err := b.Ranks.SaveRanks(ctx, period, DayOf(start, loc), ranks); err != nil {
			logrus.WithError(err).WithField("period", period).Warningln("Could not save rank snapshot.")
		}
	}
	return stats, nil
}

func (b *Leaderboard) previousRanks(ctx context.Context, period Period, start time.Time, loc *time.Location) map[UserId]int {
	if b.Ranks == nil {
		return nil
	}
	ranks, err := b.Ranks.Ranks(ctx, period, DayOf(period.previousStart(start), loc))
	if err != nil {
		logrus.WithError(err).WithField("period", period).Warningln("Could not load previous rank snapshot.")
		return nil
	}
	return ranks
}
