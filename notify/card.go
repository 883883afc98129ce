package notify

import (
	"fmt"
	"strconv"

	"github.com/dealstreak/dealstreak"
	"github.com/dealstreak/dealstreak/line"
)

const (
	colorMuted  = "#8C8C8C"
	colorAccent = "#06C755"
)

var periodTitles = map[dealstreak.Period]string{
	dealstreak.PeriodDaily:   "Today's leaderboard",
	dealstreak.PeriodWeekly:  "This week's leaderboard",
	dealstreak.PeriodMonthly: "This month's leaderboard",
}

var activityLabels = map[dealstreak.ActivityType]string{
	dealstreak.ActivityCall:             "Call",
	dealstreak.ActivityMeeting:          "Meeting",
	dealstreak.ActivityFollowUp:         "Follow-up",
	dealstreak.ActivityContractSent:     "Contract sent",
	dealstreak.ActivityMeetingScheduled: "Meeting scheduled",
	dealstreak.ActivityProjectBooked:    "Project booked",
	dealstreak.ActivityOther:            "Other",
}

func ActivityLabel(t dealstreak.ActivityType) string {
	if label, ok := activityLabels[t]; ok {
		return label
	}
	return string(t)
}

// LeaderboardCard summarises top entries of stats with the team total. The
// footer links to link when it is not empty.
func LeaderboardCard(stats dealstreak.TeamStats, topN int, link string) line.FlexMessage {
	title := periodTitles[stats.Period]
	if title == "" {
		title = "Leaderboard"
	}

	rows := make([]line.Component, 0, topN+3)
	entries := stats.Leaderboard
	if topN > 0 && len(entries) > topN {
		entries = entries[:topN]
	}
	if len(entries) == 0 {
		rows = append(rows, line.NewText("No activities yet. Be the first!").WithColor(colorMuted).Wrapped())
	}
	for _, e := range entries {
		rows = append(rows, line.NewBox("horizontal",
			line.NewText(rankLabel(e.Rank)).WithFlex(1),
			line.NewText(e.DisplayName).WithFlex(4),
			line.NewText(fmt.Sprintf("%d pts", e.Points)).WithFlex(2).WithAlign("end"),
		))
	}
	rows = append(rows,
		line.NewSeparator("md"),
		line.NewBox("horizontal",
			line.NewText("Team").Bold().WithFlex(5),
			line.NewText(fmt.Sprintf("%d pts", stats.TeamTotal.Points)).Bold().WithFlex(2).WithAlign("end"),
		),
		line.NewText(fmt.Sprintf("%d activities by %d people",
			stats.TeamTotal.Activities, stats.TeamTotal.ActiveUsers)).WithSize("xs").WithColor(colorMuted),
	)

	var footer *line.Box
	if link != "" {
		footer = line.NewBox("vertical", line.NewURIButton("Open leaderboard", link))
	}
	body := line.NewBox("vertical", rows...)
	body.Spacing = "sm"
	return line.NewFlexMessage(title,
		line.NewBubble(
			line.NewBox("vertical", line.NewText(title).Bold().WithSize("lg").WithColor(colorAccent)),
			body,
			footer,
		))
}

// ActivityCard announces a freshly logged activity of user.
func ActivityCard(user dealstreak.User, activity dealstreak.Activity) line.FlexMessage {
	name := user.DisplayName
	if name == "" {
		name = string(user.Id)
	}
	label := ActivityLabel(activity.Type)
	alt := fmt.Sprintf("%s logged %s (+%d)", name, label, activity.Points)

	body := line.NewBox("vertical",
		line.NewText(name).Bold().WithSize("md"),
		line.NewText(activity.Description).Wrapped().WithColor(colorMuted),
		line.NewBox("horizontal",
			line.NewText(label).WithFlex(3),
			line.NewText("+"+strconv.Itoa(activity.Points)+" pts").Bold().WithColor(colorAccent).WithFlex(2).WithAlign("end"),
		),
	)
	body.Spacing = "sm"
	if user.CurrentStreak > 1 {
		body.Contents = append(body.Contents,
			line.NewText(fmt.Sprintf("%d day streak", user.CurrentStreak)).WithSize("xs").WithColor(colorMuted))
	}
	return line.NewFlexMessage(alt,
		line.NewBubble(line.NewBox("vertical", line.NewText("New activity").Bold().WithColor(colorAccent)), body, nil))
}

// MilestoneMessage congratulates user for reaching milestone points.
func MilestoneMessage(user dealstreak.User, milestone int) line.TextMessage {
	name := user.DisplayName
	if name == "" {
		name = string(user.Id)
	}
	return line.NewTextMessage(fmt.Sprintf("🎉 %s just passed %d points! (%d total)", name, milestone, user.TotalPoints))
}

func rankLabel(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return strconv.Itoa(rank) + "."
	}
}
