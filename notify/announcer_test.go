package notify

import (
	"context"
	"testing"
	"time"

	"github.com/dealstreak/dealstreak"
	"github.com/dealstreak/dealstreak/inmem"
	"github.com/dealstreak/dealstreak/line"
	"github.com/dealstreak/dealstreak/mock"
	"github.com/stretchr/testify/assert"
)

type groupsByKind map[dealstreak.NotificationKind][]string

func (g groupsByKind) ListActive(ctx context.Context, kind dealstreak.NotificationKind) ([]string, error) {
	return g[kind], nil
}

func TestCrossedMilestone(t *testing.T) {
	assert := assert.New(t)

	milestone, ok := crossedMilestone(105, 10, 100)
	assert.True(ok)
	assert.Equal(100, milestone)

	_, ok = crossedMilestone(95, 10, 100)
	assert.False(ok)

	milestone, ok = crossedMilestone(250, 160, 100)
	assert.True(ok)
	assert.Equal(200, milestone)

	_, ok = crossedMilestone(100, 10, 0)
	assert.False(ok)
	_, ok = crossedMilestone(100, -10, 100)
	assert.False(ok)
}

func TestAnnouncerAnnounce(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	users := inmem.NewUserStore()
	if !assert.NoError(users.Insert(ctx, dealstreak.User{Id: "u1", DisplayName: "Alice", TotalPoints: 105})) {
		return
	}
	messenger := &mock.Messenger{}
	announcer := Announcer{
		Users: users,
		Groups: groupsByKind{
			dealstreak.NotifyAchievements: {"g1"},
			dealstreak.NotifyMilestones:   {"g1", "g2"},
		},
		Notifier:      &Gateway{Messenger: messenger, Quota: NewTokenBucket(10, time.Hour)},
		MilestoneStep: 100,
	}

	err := announcer.Announce(ctx, dealstreak.Activity{
		Id: "a1", OwnerId: "u1", Type: dealstreak.ActivityCall, Points: 10,
	})
	if !assert.NoError(err) {
		return
	}

	sent := messenger.Sent()
	if !assert.Len(sent, 3) {
		return
	}
	assert.Equal([]string{"g1"}, sent[0].To)
	assert.IsType(line.FlexMessage{}, sent[0].Messages[0])
	assert.Equal([]string{"g1"}, sent[1].To)
	assert.Equal([]string{"g2"}, sent[2].To)
	assert.IsType(line.TextMessage{}, sent[2].Messages[0])
}

func TestAnnouncerStopsOnQuota(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	users := inmem.NewUserStore()
	if !assert.NoError(users.Insert(ctx, dealstreak.User{Id: "u1", TotalPoints: 10})) {
		return
	}
	messenger := &mock.Messenger{}
	announcer := Announcer{
		Users:    users,
		Groups:   groupsByKind{dealstreak.NotifyAchievements: {"g1", "g2", "g3"}},
		Notifier: &Gateway{Messenger: messenger, Quota: NewTokenBucket(1, time.Hour)},
	}

	err := announcer.Announce(ctx, dealstreak.Activity{OwnerId: "u1", Type: dealstreak.ActivityCall, Points: 10})
	assert.ErrorIs(err, dealstreak.ErrQuotaExceeded)
	assert.Len(messenger.Sent(), 1)
}

func TestAnnouncerRun(t *testing.T) {
	assert := assert.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	users := inmem.NewUserStore()
	if !assert.NoError(users.Insert(ctx, dealstreak.User{Id: "u1", TotalPoints: 10})) {
		return
	}
	messenger := &mock.Messenger{}
	announcer := Announcer{
		Users:    users,
		Groups:   groupsByKind{dealstreak.NotifyAchievements: {"g1"}},
		Notifier: &Gateway{Messenger: messenger, Quota: NewTokenBucket(10, time.Hour)},
	}

	events := make(chan dealstreak.Event, 2)
	events <- dealstreak.Event{Name: dealstreak.EventActivityDeleted, Activity: dealstreak.Activity{OwnerId: "u1"}}
	events <- dealstreak.Event{Name: dealstreak.EventActivityCreated, Activity: dealstreak.Activity{OwnerId: "u1", Points: 10}}
	close(events)

	announcer.Run(ctx, events)
	assert.Len(messenger.Sent(), 1)
}
