package webhook

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dealstreak/dealstreak"
	"github.com/dealstreak/dealstreak/line"
	"github.com/dealstreak/dealstreak/notify"
	"github.com/sirupsen/logrus"
)

type command struct {
	// Group commands are refused outside of group chats.
	group  bool
	handle func(r *Router, ctx context.Context, event Event, args []string) ([]line.Message, error)
}

var commands = map[string]command{
	"/register":   {group: true, handle: (*Router).register},
	"/unregister": {group: true, handle: (*Router).unregister},
	"/settings":   {group: true, handle: (*Router).settings},
	"/stats":      {handle: (*Router).stats},
	"/help":       {handle: (*Router).help},
}

const helpText = "Commands:\n" +
	"/register - send leaderboard updates to this group\n" +
	"/unregister - stop updates in this group\n" +
	"/stats - today's leaderboard\n" +
	"/settings <dailyLeaderboard|achievements|milestones> <on|off> - toggle a notification\n" +
	"/help - this message"

const groupOnlyText = "This command only works in a group chat. Add me to your team group and try again there."

const settingsUsageText = "Usage: /settings <dailyLeaderboard|achievements|milestones> <on|off>"

func (r *Router) command(ctx context.Context, event Event, text string) {
	fields := strings.Fields(text)
	name := strings.ToLower(fields[0])
	log := logrus.WithField("command", name).
		WithField("source", event.Source.Key())

	var messages []line.Message
	cmd, ok := commands[name]
	switch {
	case !ok:
		commandCounter.WithLabelValues("unknown", "handled").Inc()
		messages = []line.Message{line.NewTextMessage(
			fmt.Sprintf("Unknown command %s. Type /help to see what I can do.", fields[0]))}
	case cmd.group && !event.Source.IsGroup():
		commandCounter.WithLabelValues(name, "refused").Inc()
		messages = []line.Message{line.NewTextMessage(groupOnlyText)}
	default:
		var err error
		messages, err = cmd.handle(r, ctx, event, fields[1:])
		if err != nil {
			commandCounter.WithLabelValues(name, "error").Inc()
			log.WithError(err).Warningln("Command failed.")
			if errors.Is(err, dealstreak.ErrQuotaExceeded) {
				return
			}
			messages = []line.Message{line.NewTextMessage(errorText(err))}
		} else {
			commandCounter.WithLabelValues(name, "handled").Inc()
		}
	}

	if err := r.respond(ctx, event, messages...); err != nil {
		log.WithError(err).Warningln("Could not answer command.")
	}
}

func errorText(err error) string {
	switch {
	case errors.Is(err, dealstreak.ErrValidation):
		return "That didn't work: " + err.Error()
	case errors.Is(err, dealstreak.ErrNotFound):
		return "Not found. Is this group registered? Type /register first."
	default:
		return "Sorry, something went wrong. Please try again later."
	}
}

func (r *Router) register(ctx context.Context, event Event, args []string) ([]line.Message, error) {
	groupName := ""
	if r.Summaries != nil {
		summary, err := r.Summaries.GroupSummary(ctx, event.Source.GroupId)
		if err != nil {
			logrus.WithError(err).
				WithField("group_id", event.Source.GroupId).
				Debugln("Could not fetch group summary.")
		} else {
			groupName = summary.GroupName
		}
	}

	_, err := r.Groups.Register(ctx, event.Source.GroupId, event.Source.UserId, groupName)
	if errors.Is(err, dealstreak.ErrConflict) {
		return []line.Message{line.NewTextMessage("This group is already registered.")}, nil
	}
	if err != nil {
		return nil, err
	}
	return []line.Message{line.NewTextMessage(
		"✅ Group registered! You'll get the daily leaderboard, achievements and milestones here. " +
			"Use /settings to turn them off.")}, nil
}

func (r *Router) unregister(ctx context.Context, event Event, args []string) ([]line.Message, error) {
	err := r.Groups.Unregister(ctx, event.Source.GroupId)
	if errors.Is(err, dealstreak.ErrNotFound) {
		return []line.Message{line.NewTextMessage("This group is not registered.")}, nil
	}
	if err != nil {
		return nil, err
	}
	return []line.Message{line.NewTextMessage("Group unregistered. Type /register to resume updates.")}, nil
}

func (r *Router) settings(ctx context.Context, event Event, args []string) ([]line.Message, error) {
	if len(args) != 2 {
		return []line.Message{line.NewTextMessage(settingsUsageText)}, nil
	}
	var kind dealstreak.NotificationKind
	for _, k := range dealstreak.NotificationKinds {
		if strings.EqualFold(string(k), args[0]) {
			kind = k
		}
	}
	var enabled bool
	switch strings.ToLower(args[1]) {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		kind = ""
	}
	if kind == "" {
		return []line.Message{line.NewTextMessage(settingsUsageText)}, nil
	}

	_, err := r.Groups.UpdateSettings(ctx, event.Source.GroupId, kind, enabled)
	if errors.Is(err, dealstreak.ErrNotFound) {
		return []line.Message{line.NewTextMessage("This group is not registered. Type /register first.")}, nil
	}
	if err != nil {
		return nil, err
	}
	state := "off"
	if enabled {
		state = "on"
	}
	return []line.Message{line.NewTextMessage(fmt.Sprintf("%s notifications turned %s.", kind, state))}, nil
}

func (r *Router) stats(ctx context.Context, event Event, args []string) ([]line.Message, error) {
	stats, err := r.Stats.TeamStats(ctx, dealstreak.PeriodDaily)
	if err != nil {
		return nil, err
	}
	return []line.Message{notify.LeaderboardCard(stats, r.TopN, r.Link)}, nil
}

func (r *Router) help(ctx context.Context, event Event, args []string) ([]line.Message, error) {
	return []line.Message{line.NewTextMessage(helpText)}, nil
}
