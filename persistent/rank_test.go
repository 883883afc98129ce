package persistent

import (
	"context"
	"testing"

	"github.com/dealstreak/dealstreak"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/buntdb"
)

func openBunt(t *testing.T) *buntdb.DB {
	bdb, err := buntdb.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	return bdb
}

func TestRankStore(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	bdb := openBunt(t)
	defer bdb.Close()

	store := &RankStore{Buntdb: bdb}

	ranks, err := store.Ranks(ctx, dealstreak.PeriodWeekly, "2026-03-09")
	if !assert.NoError(err) {
		return
	}
	assert.Empty(ranks)

	saved := map[dealstreak.UserId]int{"u1": 1, "u2": 2}
	if !assert.NoError(store.SaveRanks(ctx, dealstreak.PeriodWeekly, "2026-03-09", saved)) {
		return
	}

	ranks, err = store.Ranks(ctx, dealstreak.PeriodWeekly, "2026-03-09")
	if assert.NoError(err) {
		assert.Equal(saved, ranks)
	}
	ranks, err = store.Ranks(ctx, dealstreak.PeriodDaily, "2026-03-09")
	if assert.NoError(err) {
		assert.Empty(ranks)
	}
}
