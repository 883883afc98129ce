package mock

import (
	"context"

	"github.com/dealstreak/dealstreak"
)

type UserStore struct {
	ByIdFn func(ctx context.Context, userId dealstreak.UserId) (dealstreak.User, error)

	InsertFn func(ctx context.Context, user dealstreak.User) error

	UpdateFn func(ctx context.Context, user dealstreak.User) error

	AllFn func(ctx context.Context) ([]dealstreak.User, error)
}

func (s UserStore) ById(ctx context.Context, userId dealstreak.UserId) (dealstreak.User, error) {
	return s.ByIdFn(ctx, userId)
}

func (s UserStore) Insert(ctx context.Context, user dealstreak.User) error {
	return s.InsertFn(ctx, user)
}

func (s UserStore) Update(ctx context.Context, user dealstreak.User) error {
	return s.UpdateFn(ctx, user)
}

func (s UserStore) All(ctx context.Context) ([]dealstreak.User, error) {
	return s.AllFn(ctx)
}
