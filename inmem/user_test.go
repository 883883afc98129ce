package inmem

import (
	"context"
	"errors"
	"testing"

	"github.com/dealstreak/dealstreak"
	"github.com/stretchr/testify/assert"
)

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	assert := assert.New(t)

	s := NewUserStore()
	_, err := s.ById(ctx, "U1")
	assert.Equal(dealstreak.ErrUserNotFound, err)
	assert.True(errors.Is(s.Update(ctx, dealstreak.User{Id: "U1"}), dealstreak.ErrNotFound))

	u := dealstreak.User{Id: "U1", DisplayName: "Nok"}
	if !assert.NoError(s.Insert(ctx, u)) {
		return
	}
	assert.True(errors.Is(s.Insert(ctx, u), dealstreak.ErrConflict))

	u.TotalPoints = 40
	u.CurrentStreak = 2
	u.LastActivityDate = "2024-03-02"
	if !assert.NoError(s.Update(ctx, u)) {
		return
	}

	ufound, err := s.ById(ctx, u.Id)
	if !assert.NoError(err) {
		return
	}
	assert.Equal(u, ufound)

	assert.NoError(s.Insert(ctx, dealstreak.User{Id: "U0"}))
	users, err := s.All(ctx)
	if assert.NoError(err) && assert.Equal(2, len(users)) {
		assert.Equal(dealstreak.UserId("U0"), users[0].Id)
		assert.Equal(dealstreak.UserId("U1"), users[1].Id)
	}
}
