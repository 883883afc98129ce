package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dealstreak/dealstreak"
	"github.com/dealstreak/dealstreak/line"
	"github.com/dealstreak/dealstreak/mock"
	"github.com/stretchr/testify/assert"
)

type statsFunc func(ctx context.Context, period dealstreak.Period) (dealstreak.TeamStats, error)

func (f statsFunc) TeamStats(ctx context.Context, period dealstreak.Period) (dealstreak.TeamStats, error) {
	return f(ctx, period)
}

func TestNextDigestAt(t *testing.T) {
	assert := assert.New(t)

	loc := time.FixedZone("UTC+7", 7*60*60)
	now := time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC) // 08:00 local
	assert.Equal(time.Date(2026, 3, 10, 18, 0, 0, 0, loc), nextDigestAt(now, loc, 18))
	assert.Equal(time.Date(2026, 3, 11, 8, 0, 0, 0, loc), nextDigestAt(now, loc, 8))
	assert.Equal(time.Date(2026, 3, 11, 6, 0, 0, 0, loc), nextDigestAt(now, loc, 6))

	assert.Equal(time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC), nextDigestAt(now, nil, 18))
}

func TestDigestSend(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	var requested dealstreak.Period
	messenger := &mock.Messenger{}
	digest := Digest{
		Stats: statsFunc(func(ctx context.Context, period dealstreak.Period) (dealstreak.TeamStats, error) {
			requested = period
			return dealstreak.TeamStats{
				Period:      period,
				Leaderboard: []dealstreak.LeaderboardEntry{{UserId: "u1", DisplayName: "Alice", Points: 10, Rank: 1}},
				TeamTotal:   dealstreak.TeamTotal{Points: 10, Activities: 1, ActiveUsers: 1},
			}, nil
		}),
		Groups:   groupsByKind{dealstreak.NotifyDailyLeaderboard: {"g1", "g2"}},
		Notifier: &Gateway{Messenger: messenger, Quota: NewTokenBucket(10, time.Hour)},
		TopN:     5,
	}

	groups, err := digest.Send(ctx)
	if !assert.NoError(err) {
		return
	}
	assert.Equal(2, groups)
	assert.Equal(dealstreak.PeriodDaily, requested)

	sent := messenger.Sent()
	if !assert.Len(sent, 2) {
		return
	}
	card, ok := sent[0].Messages[0].(line.FlexMessage)
	if assert.True(ok) {
		assert.Equal("Today's leaderboard", card.AltText)
	}
}

func TestDigestSendStatsError(t *testing.T) {
	assert := assert.New(t)

	messenger := &mock.Messenger{}
	digest := Digest{
		Stats: statsFunc(func(ctx context.Context, period dealstreak.Period) (dealstreak.TeamStats, error) {
			return dealstreak.TeamStats{}, errors.New("db down")
		}),
		Groups:   groupsByKind{dealstreak.NotifyDailyLeaderboard: {"g1"}},
		Notifier: &Gateway{Messenger: messenger, Quota: NewTokenBucket(10, time.Hour)},
	}

	_, err := digest.Send(context.Background())
	assert.Error(err)
	assert.Empty(messenger.Sent())
}
