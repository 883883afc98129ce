package dealstreak

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EventPublisher receives ledger mutations after they are persisted.
type EventPublisher interface {
	Publish(name EventName, activity Activity)
}

// Ledger owns activity records and drives every change of the user aggregates.
//
// Create treats the aggregate step as best effort: the activity is the source
// of truth and drift is repaired by ReconcileAll. Update and Delete compensate
// their own writes when the aggregate step fails. Every write holds the
// owner's aggregate lock so reconciliation never sees half of it.
type Ledger struct {
	Activities ActivityStore
	Users      UserStore
	Aggregates AggregateMutator
	Events     EventPublisher
	Stats      *Leaderboard
	Now        func() time.Time
}

func (l *Ledger) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *Ledger) publish(name EventName, activity Activity) {
	if l.Events != nil {
		l.Events.Publish(name, activity)
	}
}

func (l *Ledger) Create(ctx context.Context, ownerId UserId, na NewActivity) (Activity, error) {
	if ownerId == "" {
		return Activity{}, fmt.Errorf("%w: missing owner", ErrValidation)
	}
	if err := na.validate(); err != nil {
		return Activity{}, err
	}
	if _, err := l.Users.ById(ctx, ownerId); err != nil {
		return Activity{}, fmt.Errorf("get owner: %w", err)
	}

	status := na.Status
	if status == "" {
		status = StatusCompleted
	}
	unlock := l.Aggregates.Lock(ownerId)
	defer unlock()

	now := l.now().UTC()
	activity := Activity{
		Id:          ActivityId(uuid.New().String()),
		OwnerId:     ownerId,
		Type:        na.Type,
		Description: na.Description,
		Points:      na.Type.Points(),
		Status:      status,
		Metadata:    na.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := l.Activities.Insert(ctx, activity); err != nil {
		return Activity{}, fmt.Errorf("insert activity: %w", err)
	}

	if _, err := l.Aggregates.ApplyActivity(ctx, ownerId, activity.Points, activity.CreatedAt); err != nil {
		aggregateFailures.WithLabelValues("create").Inc()
		logrus.WithError(err).
			WithField("activity_id", activity.Id).
			WithField("user_id", ownerId).
			Warningln("Could not update user aggregate, left for reconciliation.")
	}
	l.publish(EventActivityCreated, activity)
	return activity, nil
}

func (l *Ledger) Update(ctx context.Context, id ActivityId, ownerId UserId, patch ActivityPatch) (Activity, error) {
	if err := patch.validate(); err != nil {
		return Activity{}, err
	}
	unlock := l.Aggregates.Lock(ownerId)
	defer unlock()

	current, err := l.ownedActivity(ctx, id, ownerId)
	if err != nil {
		return Activity{}, err
	}

	updated := current
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	if patch.Status != nil {
		updated.Status = *patch.Status
	}
	if patch.Metadata != nil {
		updated.Metadata = patch.Metadata
	}
	delta := 0
	if patch.Type != nil && *patch.Type != current.Type {
		updated.Type = *patch.Type
		updated.Points = updated.Type.Points()
		delta = updated.Points - current.Points
	}
	updated.UpdatedAt = l.now().UTC()

	if err := l.Activities.Update(ctx, updated); err != nil {
		return Activity{}, fmt.Errorf("update activity: %w", err)
	}
	if delta != 0 {
		if _, err := l.Aggregates.AdjustPoints(ctx, ownerId, delta); err != nil {
			if rerr := l.Activities.Update(ctx, current); rerr != nil {
				aggregateFailures.WithLabelValues("update").Inc()
				logrus.WithError(rerr).
					WithField("activity_id", id).
					Errorln("Could not restore activity after failed points adjustment.")
			}
			return Activity{}, fmt.Errorf("adjust user points: %w", err)
		}
	}
	l.publish(EventActivityUpdated, updated)
	return updated, nil
}

func (l *Ledger) Delete(ctx context.Context, id ActivityId, ownerId UserId) error {
	unlock := l.Aggregates.Lock(ownerId)
	defer unlock()

	current, err := l.ownedActivity(ctx, id, ownerId)
	if err != nil {
		return err
	}
	if _, err := l.Aggregates.AdjustPoints(ctx, ownerId, -current.Points); err != nil {
		return fmt.Errorf("reverse user points: %w", err)
	}
	if err := l.Activities.Delete(ctx, id); err != nil {
		if _, rerr := l.Aggregates.AdjustPoints(ctx, ownerId, current.Points); rerr != nil {
			aggregateFailures.WithLabelValues("delete").Inc()
			logrus.WithError(rerr).
				WithField("activity_id", id).
				WithField("user_id", ownerId).
				Errorln("Could not restore user points after failed activity removal.")
		}
		return fmt.Errorf("delete activity: %w", err)
	}
	l.publish(EventActivityDeleted, current)
	return nil
}

func (l *Ledger) ownedActivity(ctx context.Context, id ActivityId, ownerId UserId) (Activity, error) {
	activity, err := l.Activities.ById(ctx, id)
	if err != nil {
		return Activity{}, fmt.Errorf("get activity: %w", err)
	}
	if activity.OwnerId != ownerId {
		return Activity{}, ErrNotActivityOwner
	}
	return activity, nil
}

func (l *Ledger) FindById(ctx context.Context, id ActivityId) (Activity, error) {
	activity, err := l.Activities.ById(ctx, id)
	if err != nil {
		return Activity{}, fmt.Errorf("get activity: %w", err)
	}
	return activity, nil
}

func (l *Ledger) FindByUser(ctx context.Context, ownerId UserId) ([]Activity, error) {
	activities, err := l.Activities.ByUserId(ctx, ownerId)
	if err != nil {
		return nil, fmt.Errorf("get user activities: %w", err)
	}
	return activities, nil
}

func (l *Ledger) TeamStats(ctx context.Context, period Period) (TeamStats, error) {
	if l.Stats == nil {
		return TeamStats{}, errors.New("leaderboard not configured")
	}
	return l.Stats.TeamStats(ctx, period)
}

// ReconcileAll rebuilds every user aggregate from the ledger and returns the
// number of users rebuilt. A failing user does not stop the pass.
func (l *Ledger) ReconcileAll(ctx context.Context) (int, error) {
	users, err := l.Users.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}
	reconciled := 0
	for _, user := range users {
		if err := ctx.Err(); err != nil {
			return reconciled, err
		}
		if _, err := l.Aggregates.Reconcile(ctx, user.Id); err != nil {
			logrus.WithError(err).WithField("user_id", user.Id).Warningln("Could not reconcile user aggregate.")
			continue
		}
		reconciled++
		reconciledUsers.Inc()
	}
	return reconciled, nil
}

// RunReconciler calls ReconcileAll every interval until ctx is done. A non
// positive interval disables reconciliation.
func (l *Ledger) RunReconciler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := l.ReconcileAll(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				logrus.WithError(err).Warningln("Reconciliation pass failed.")
				continue
			}
			logrus.WithField("users", n).Debugln("Reconciliation pass done.")
		}
	}
}
