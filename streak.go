package dealstreak

import "time"

// DayLayout is the layout of every date-only value.
const DayLayout = "2006-01-02"

// DayOf renders t as a date in loc.
func DayOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DayLayout)
}

// NextStreak computes the streak after an activity on today given the last
// recorded activity date. An unparsable or empty lastDay counts as no prior
// activity.
func NextStreak(lastDay string, today string, currentStreak int) int {
	if currentStreak < 0 {
		currentStreak = 0
	}
	last, err := time.Parse(DayLayout, lastDay)
	if err != nil {
		return 1
	}
	now, err := time.Parse(DayLayout, today)
	if err != nil {
		return currentStreak
	}

	switch days := daysBetween(last, now); {
	case days == 0:
		return currentStreak
	case days == 1:
		return currentStreak + 1
	case days < 0:
		// activity older than the last recorded one never rewrites the streak
		return currentStreak
	default:
		return 1
	}
}

func daysBetween(from time.Time, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// streakRuns returns the run ending on the latest day and the longest run
// for a set of distinct days sorted ascending.
func streakRuns(days []string) (current int, longest int) {
	var prev time.Time
	started := false
	for _, d := range days {
		day, err := time.Parse(DayLayout, d)
		if err != nil {
			continue
		}
		switch {
		case !started:
			current = 1
		case daysBetween(prev, day) == 1:
			current++
		case daysBetween(prev, day) > 1:
			current = 1
		}
		if current > longest {
			longest = current
		}
		prev = day
		started = true
	}
	return current, longest
}
