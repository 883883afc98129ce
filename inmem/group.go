package inmem

import (
	"context"
	"sort"
	"sync"

	"github.com/dealstreak/dealstreak"
)

type GroupStore struct {
	groups map[string]dealstreak.GroupRegistration
	mutex  sync.RWMutex
}

var _ dealstreak.GroupStore = (*GroupStore)(nil)

func NewGroupStore() *GroupStore {
	return &GroupStore{
		groups: make(map[string]dealstreak.GroupRegistration),
	}
}

func (s *GroupStore) ById(ctx context.Context, groupId string) (dealstreak.GroupRegistration, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	reg, ok := s.groups[groupId]
	if !ok {
		return reg, dealstreak.ErrGroupNotFound
	}
	reg.Settings = copySettings(reg.Settings)
	return reg, nil
}

func (s *GroupStore) Save(ctx context.Context, reg dealstreak.GroupRegistration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	reg.Settings = copySettings(reg.Settings)
	s.groups[reg.GroupId] = reg
	return nil
}

func (s *GroupStore) All(ctx context.Context) ([]dealstreak.GroupRegistration, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	regs := make([]dealstreak.GroupRegistration, 0, len(s.groups))
	for _, reg := range s.groups {
		reg.Settings = copySettings(reg.Settings)
		regs = append(regs, reg)
	}
	sort.Slice(regs, func(i, j int) bool {
		return regs[i].RegisteredAt.Before(regs[j].RegisteredAt)
	})
	return regs, nil
}

func copySettings(settings dealstreak.NotificationSettings) dealstreak.NotificationSettings {
	copied := make(dealstreak.NotificationSettings, len(settings))
	for k, v := range settings {
		copied[k] = v
	}
	return copied
}
