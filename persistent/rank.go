package persistent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dealstreak/dealstreak"
	"github.com/tidwall/buntdb"
)

// Snapshots outlive the longest window they are compared against.
const rankTTL = 100 * 24 * time.Hour

// RankStore keeps leaderboard rank snapshots in buntdb.
type RankStore struct {
	Buntdb *buntdb.DB
}

var _ dealstreak.RankStore = (*RankStore)(nil)

func rankKey(period dealstreak.Period, windowDay string) string {
	return "rank:" + string(period) + ":" + windowDay
}

func (s *RankStore) SaveRanks(ctx context.Context, period dealstreak.Period, windowDay string,
	ranks map[dealstreak.UserId]int) error {
	serialized, err := json.Marshal(ranks)
	if err != nil {
		return fmt.Errorf("serialize ranks: %w", err)
	}
	err = s.Buntdb.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(rankKey(period, windowDay), string(serialized),
			&buntdb.SetOptions{Expires: true, TTL: rankTTL})
		return err
	})
	if err != nil {
		return fmt.Errorf("bunt update: %w", err)
	}
	return nil
}

func (s *RankStore) Ranks(ctx context.Context, period dealstreak.Period, windowDay string) (map[dealstreak.UserId]int, error) {
	ranks := make(map[dealstreak.UserId]int)
	err := s.Buntdb.View(func(tx *buntdb.Tx) error {
		serialized, err := tx.Get(rankKey(period, windowDay))
		if err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(serialized), &ranks); err != nil {
			return fmt.Errorf("deserialize ranks: %w", err)
		}
		return nil
	})
	switch {
	case err == nil:
		return ranks, nil
	case errors.Is(err, buntdb.ErrNotFound):
		return map[dealstreak.UserId]int{}, nil
	default:
		return nil, fmt.Errorf("bunt view: %w", err)
	}
}
