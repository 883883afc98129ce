package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/dealstreak/dealstreak"
	"github.com/dealstreak/dealstreak/line"
	"github.com/sirupsen/logrus"
)

type GroupLister interface {
	ListActive(ctx context.Context, kind dealstreak.NotificationKind) ([]string, error)
}

type Pusher interface {
	Push(ctx context.Context, to string, messages ...line.Message) error
}

// Announcer pushes created activities to groups with achievements enabled and
// milestone messages to groups with milestones enabled.
type Announcer struct {
	Users    dealstreak.UserStore
	Groups   GroupLister
	Notifier Pusher
	// Milestones are multiples of MilestoneStep points, disabled when not positive.
	MilestoneStep int
}

// Run consumes events until ctx is done or events is closed.
func (a *Announcer) Run(ctx context.Context, events <-chan dealstreak.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event.Name != dealstreak.EventActivityCreated {
				continue
			}
			if err := a.Announce(ctx, event.Activity); err != nil {
				logrus.WithError(err).
					WithField("activity_id", event.Activity.Id).
					Warningln("Could not announce activity.")
			}
		}
	}
}

func (a *Announcer) Announce(ctx context.Context, activity dealstreak.Activity) error {
	user, err := a.Users.ById(ctx, activity.OwnerId)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	groups, err := a.Groups.ListActive(ctx, dealstreak.NotifyAchievements)
	if err != nil {
		return fmt.Errorf("list achievement groups: %w", err)
	}
	if err := pushAll(ctx, a.Notifier, groups, ActivityCard(user, activity)); err != nil {
		return err
	}

	milestone, ok := crossedMilestone(user.TotalPoints, activity.Points, a.MilestoneStep)
	if !ok {
		return nil
	}
	groups, err = a.Groups.ListActive(ctx, dealstreak.NotifyMilestones)
	if err != nil {
		return fmt.Errorf("list milestone groups: %w", err)
	}
	return pushAll(ctx, a.Notifier, groups, MilestoneMessage(user, milestone))
}

// crossedMilestone reports the highest multiple of step passed by adding
// points to reach total.
func crossedMilestone(total int, points int, step int) (int, bool) {
	if step <= 0 || points <= 0 || total <= 0 {
		return 0, false
	}
	before := total - points
	if before < 0 {
		before = 0
	}
	if before/step == total/step {
		return 0, false
	}
	return (total / step) * step, true
}

// pushAll pushes messages to every target. It stops at the first quota
// rejection, other failures are logged and skipped.
func pushAll(ctx context.Context, notifier Pusher, targets []string, messages ...line.Message) error {
	for _, target := range targets {
		err := notifier.Push(ctx, target, messages...)
		switch {
		case err == nil:
		case errors.Is(err, dealstreak.ErrQuotaExceeded):
			return fmt.Errorf("push %s: %w", target, err)
		default:
			logrus.WithError(err).WithField("group_id", target).Warningln("Could not push notification.")
		}
	}
	return nil
}
