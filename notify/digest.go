package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/dealstreak/dealstreak"
	"github.com/sirupsen/logrus"
)

type StatsProvider interface {
	TeamStats(ctx context.Context, period dealstreak.Period) (dealstreak.TeamStats, error)
}

// Digest pushes the daily leaderboard to groups with dailyLeaderboard enabled
// once a day at Hour in Location.
type Digest struct {
	Stats    StatsProvider
	Groups   GroupLister
	Notifier Pusher
	Location *time.Location
	Hour     int
	TopN     int
	Link     string
	Now      func() time.Time
}

func (d *Digest) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Digest) Run(ctx context.Context) {
	for {
		next := nextDigestAt(d.now(), d.Location, d.Hour)
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			groups, err := d.Send(ctx)
			if err != nil {
				logrus.WithError(err).Warningln("Could not send daily leaderboard.")
				continue
			}
			logrus.WithField("groups", groups).Infoln("Daily leaderboard sent.")
		}
	}
}

// Send pushes the current daily leaderboard and returns the number of groups reached.
func (d *Digest) Send(ctx context.Context) (int, error) {
	stats, err := d.Stats.TeamStats(ctx, dealstreak.PeriodDaily)
	if err != nil {
		return 0, fmt.Errorf("daily team stats: %w", err)
	}
	groups, err := d.Groups.ListActive(ctx, dealstreak.NotifyDailyLeaderboard)
	if err != nil {
		return 0, fmt.Errorf("list digest groups: %w", err)
	}
	card := LeaderboardCard(stats, d.TopN, d.Link)
	if err := pushAll(ctx, d.Notifier, groups, card); err != nil {
		return 0, err
	}
	return len(groups), nil
}

func nextDigestAt(now time.Time, loc *time.Location, hour int) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
