package inmem

import (
	"context"
	"sync"

	"github.com/dealstreak/dealstreak"
)

type RankStore struct {
	snapshots map[string]map[dealstreak.UserId]int
	mutex     sync.RWMutex
}

var _ dealstreak.RankStore = (*RankStore)(nil)

func NewRankStore() *RankStore {
	return &RankStore{snapshots: make(map[string]map[dealstreak.UserId]int)}
}

func (s *RankStore) SaveRanks(ctx context.Context, period dealstreak.Period, windowDay string,
	ranks map[dealstreak.UserId]int) error {
	snapshot := make(map[dealstreak.UserId]int, len(ranks))
	for id, rank := range ranks {
		snapshot[id] = rank
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.snapshots[string(period)+":"+windowDay] = snapshot
	return nil
}

func (s *RankStore) Ranks(ctx context.Context, period dealstreak.Period, windowDay string) (map[dealstreak.UserId]int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	snapshot := s.snapshots[string(period)+":"+windowDay]
	ranks := make(map[dealstreak.UserId]int, len(snapshot))
	for id, rank := range snapshot {
		ranks[id] = rank
	}
	return ranks, nil
}
