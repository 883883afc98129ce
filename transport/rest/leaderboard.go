package rest

import (
	"context"
	"fmt"

	"github.com/dealstreak/dealstreak"
	"github.com/gofiber/fiber/v2"
)

type StatsProvider interface {
	TeamStats(ctx context.Context, period dealstreak.Period) (dealstreak.TeamStats, error)
}

type LeaderboardController struct {
	Stats StatsProvider
}

func (c *LeaderboardController) InstallTo(requestAuthorizer fiber.Handler, router fiber.Router) {
	router.Get("/leaderboard", combineHandlers(requestAuthorizer, c.serveLeaderboard))
}

func (c *LeaderboardController) serveLeaderboard(ctx *fiber.Ctx) error {
	period := dealstreak.Period(ctx.Query("period", string(dealstreak.PeriodDaily)))
	stats, err := c.Stats.TeamStats(ctx.Context(), period)
	if err != nil {
		return fmt.Errorf("team stats: %w", err)
	}

	type Entry struct {
		UserId      string `json:"userId"`
		DisplayName string `json:"displayName"`
		Points      int    `json:"points"`
		Activities  int    `json:"activities"`
		Rank        int    `json:"rank"`
		Change      int    `json:"change"`
	}
	type Total struct {
		Points      int `json:"points"`
		Activities  int `json:"activities"`
		ActiveUsers int `json:"activeUsers"`
	}
	entries := make([]Entry, len(stats.Leaderboard))
	for i, e := range stats.Leaderboard {
		entries[i] = Entry{
			UserId:      string(e.UserId),
			DisplayName: e.DisplayName,
			Points:      e.Points,
			Activities:  e.Activities,
			Rank:        e.Rank,
			Change:      e.Change,
		}
	}
	return ctx.JSON(map[string]interface{}{
		"period":      stats.Period,
		"startDate":   stats.StartDate.Unix(),
		"endDate":     stats.EndDate.Unix(),
		"leaderboard": entries,
		"teamTotal": Total{
			Points:      stats.TeamTotal.Points,
			Activities:  stats.TeamTotal.Activities,
			ActiveUsers: stats.TeamTotal.ActiveUsers,
		},
	})
}
