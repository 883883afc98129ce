package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dealstreak/dealstreak"
)

type ActivityStore struct {
	activities map[dealstreak.ActivityId]dealstreak.Activity
	mutex      sync.RWMutex
}

var _ dealstreak.ActivityStore = (*ActivityStore)(nil)

func NewActivityStore() *ActivityStore {
	return &ActivityStore{
		activities: make(map[dealstreak.ActivityId]dealstreak.Activity),
	}
}

func (s *ActivityStore) Insert(ctx context.Context, activity dealstreak.Activity) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.activities[activity.Id] = activity
	return nil
}

func (s *ActivityStore) ById(ctx context.Context, id dealstreak.ActivityId) (dealstreak.Activity, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	activity, ok := s.activities[id]
	if !ok {
		return activity, dealstreak.ErrActivityNotFound
	}
	return activity, nil
}

func (s *ActivityStore) ByUserId(ctx context.Context, userId dealstreak.UserId) ([]dealstreak.Activity, error) {
	activities := s.filter(func(a dealstreak.Activity) bool {
		return a.OwnerId == userId
	})
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].CreatedAt.After(activities[j].CreatedAt)
	})
	return activities, nil
}

func (s *ActivityStore) CreatedBetween(ctx context.Context, from time.Time, to time.Time) ([]dealstreak.Activity, error) {
	activities := s.filter(func(a dealstreak.Activity) bool {
		return !a.CreatedAt.Before(from) && !a.CreatedAt.After(to)
	})
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].CreatedAt.Before(activities[j].CreatedAt)
	})
	return activities, nil
}

func (s *ActivityStore) Update(ctx context.Context, activity dealstreak.Activity) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.activities[activity.Id]; !ok {
		return dealstreak.ErrActivityNotFound
	}
	s.activities[activity.Id] = activity
	return nil
}

func (s *ActivityStore) Delete(ctx context.Context, id dealstreak.ActivityId) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.activities[id]; !ok {
		return dealstreak.ErrActivityNotFound
	}
	delete(s.activities, id)
	return nil
}

func (s *ActivityStore) filter(keep func(dealstreak.Activity) bool) []dealstreak.Activity {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	activities := make([]dealstreak.Activity, 0)
	for _, a := range s.activities {
		if keep(a) {
			activities = append(activities, a)
		}
	}
	return activities
}
