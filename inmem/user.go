package inmem

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dealstreak/dealstreak"
)

type UserStore struct {
	users map[dealstreak.UserId]dealstreak.User
	mutex sync.RWMutex
}

var _ dealstreak.UserStore = (*UserStore)(nil)

func NewUserStore() *UserStore {
	return &UserStore{
		users: map[dealstreak.UserId]dealstreak.User{},
	}
}

func (s *UserStore) ById(ctx context.Context, userId dealstreak.UserId) (dealstreak.User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	u, ok := s.users[userId]
	if !ok {
		return u, dealstreak.ErrUserNotFound
	}
	return u, nil
}

func (s *UserStore) Insert(ctx context.Context, user dealstreak.User) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.users[user.Id]; ok {
		return fmt.Errorf("%w: user %s exists", dealstreak.ErrConflict, user.Id)
	}
	s.users[user.Id] = user
	return nil
}

func (s *UserStore) Update(ctx context.Context, user dealstreak.User) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.users[user.Id]; !ok {
		return dealstreak.ErrUserNotFound
	}
	s.users[user.Id] = user
	return nil
}

func (s *UserStore) All(ctx context.Context) ([]dealstreak.User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	users := make([]dealstreak.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].Id < users[j].Id
	})
	return users, nil
}
