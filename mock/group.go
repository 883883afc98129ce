package mock

import (
	"context"

	"github.com/dealstreak/dealstreak"
)

type GroupStore struct {
	ByIdFn func(ctx context.Context, groupId string) (dealstreak.GroupRegistration, error)

	SaveFn func(ctx context.Context, reg dealstreak.GroupRegistration) error

	AllFn func(ctx context.Context) ([]dealstreak.GroupRegistration, error)
}

func (s GroupStore) ById(ctx context.Context, groupId string) (dealstreak.GroupRegistration, error) {
	return s.ByIdFn(ctx, groupId)
}

func (s GroupStore) Save(ctx context.Context, reg dealstreak.GroupRegistration) error {
	return s.SaveFn(ctx, reg)
}

func (s GroupStore) All(ctx context.Context) ([]dealstreak.GroupRegistration, error) {
	return s.AllFn(ctx)
}
