package mock

import (
	"context"
	"time"

	"github.com/dealstreak/dealstreak"
)

type ActivityStore struct {
	InsertFn func(ctx context.Context, activity dealstreak.Activity) error

	ByIdFn func(ctx context.Context, id dealstreak.ActivityId) (dealstreak.Activity, error)

	ByUserIdFn func(ctx context.Context, userId dealstreak.UserId) ([]dealstreak.Activity, error)

	CreatedBetweenFn func(ctx context.Context, from time.Time, to time.Time) ([]dealstreak.Activity, error)

	UpdateFn func(ctx context.Context, activity dealstreak.Activity) error

	DeleteFn func(ctx context.Context, id dealstreak.ActivityId) error
}

func (s ActivityStore) Insert(ctx context.Context, activity dealstreak.Activity) error {
	return s.InsertFn(ctx, activity)
}

func (s ActivityStore) ById(ctx context.Context, id dealstreak.ActivityId) (dealstreak.Activity, error) {
	return s.ByIdFn(ctx, id)
}

func (s ActivityStore) ByUserId(ctx context.Context, userId dealstreak.UserId) ([]dealstreak.Activity, error) {
	return s.ByUserIdFn(ctx, userId)
}

func (s ActivityStore) CreatedBetween(ctx context.Context, from time.Time, to time.Time) ([]dealstreak.Activity, error) {
	return s.CreatedBetweenFn(ctx, from, to)
}

func (s ActivityStore) Update(ctx context.Context, activity dealstreak.Activity) error {
	return s.UpdateFn(ctx, activity)
}

func (s ActivityStore) Delete(ctx context.Context, id dealstreak.ActivityId) error {
	return s.DeleteFn(ctx, id)
}
