package dealstreak_test

import (
	"testing"
	"time"

	"github.com/dealstreak/dealstreak"
	"github.com/stretchr/testify/assert"
)

func TestNextStreak(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		last    string
		today   string
		current int
		want    int
	}{
		{last: "", today: "2026-03-10", current: 0, want: 1},
		{last: "garbage", today: "2026-03-10", current: 4, want: 1},
		{last: "2026-03-10", today: "2026-03-10", current: 3, want: 3},
		{last: "2026-03-09", today: "2026-03-10", current: 3, want: 4},
		{last: "2026-02-28", today: "2026-03-01", current: 1, want: 2},
		{last: "2026-03-08", today: "2026-03-10", current: 3, want: 1},
		{last: "2026-01-01", today: "2026-03-10", current: 30, want: 1},
		{last: "2026-03-10", today: "2026-03-09", current: 5, want: 5},
		{last: "2026-03-10", today: "2026-03-10", current: -2, want: 0},
	}
	for _, c := range cases {
		assert.Equal(c.want, dealstreak.NextStreak(c.last, c.today, c.current), "%+v", c)
	}
}

func TestDayOf(t *testing.T) {
	assert := assert.New(t)

	at := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	assert.Equal("2026-03-10", dealstreak.DayOf(at, nil))
	assert.Equal("2026-03-11", dealstreak.DayOf(at, time.FixedZone("UTC+7", 7*60*60)))
	assert.Equal("2026-03-10", dealstreak.DayOf(at, time.FixedZone("UTC-5", -5*60*60)))
}
