package webhook

import (
	"context"
	"errors"
	"strings"

	"github.com/dealstreak/dealstreak"
	"github.com/dealstreak/dealstreak/line"
	"github.com/sirupsen/logrus"
)

type Registry interface {
	Register(ctx context.Context, groupId string, registeredBy string, groupName string) (dealstreak.GroupRegistration, error)
	Unregister(ctx context.Context, groupId string) error
	UpdateSettings(ctx context.Context, groupId string, kind dealstreak.NotificationKind, enabled bool) (dealstreak.GroupRegistration, error)
}

type StatsProvider interface {
	TeamStats(ctx context.Context, period dealstreak.Period) (dealstreak.TeamStats, error)
}

type Messenger interface {
	Reply(ctx context.Context, replyToken string, messages ...line.Message) error
	Push(ctx context.Context, to string, messages ...line.Message) error
}

type GroupSummarizer interface {
	GroupSummary(ctx context.Context, groupId string) (line.GroupSummary, error)
}

// Router dispatches decoded webhook events. Failures never leave Handle, they
// are logged and answered in the chat when possible.
type Router struct {
	Groups    Registry
	Stats     StatsProvider
	Messenger Messenger
	// Optional, used to name groups on registration.
	Summaries GroupSummarizer
	TopN      int
	Link      string
}

const welcomeText = "Hi! I post the team's sales leaderboard and achievements here.\n" +
	"Type /register to start receiving updates in this group or /help for all commands."

const followText = "Thanks for adding me! Add me to your team group and type /register there to get leaderboard updates."

func (r *Router) Handle(ctx context.Context, event Event) {
	log := logrus.WithField("event_type", event.Type).
		WithField("source", event.Source.Key())

	switch event.Type {
	case EventMessage:
		text := strings.TrimSpace(event.Message.Text)
		if event.Message.Type != "text" || !strings.HasPrefix(text, "/") {
			eventCounter.WithLabelValues(string(event.Type), "ignored").Inc()
			return
		}
		r.command(ctx, event, text)
	case EventJoin:
		if !event.Source.IsGroup() {
			eventCounter.WithLabelValues(string(event.Type), "ignored").Inc()
			return
		}
		if err := r.Messenger.Push(ctx, event.Source.GroupId, line.NewTextMessage(welcomeText)); err != nil {
			eventCounter.WithLabelValues(string(event.Type), "error").Inc()
			log.WithError(err).Warningln("Could not send welcome message.")
			return
		}
		log.Infoln("Joined group.")
	case EventMemberJoined:
		log.Infoln("Member joined group.")
	case EventFollow:
		if err := r.respond(ctx, event, line.NewTextMessage(followText)); err != nil {
			eventCounter.WithLabelValues(string(event.Type), "error").Inc()
			log.WithError(err).Warningln("Could not greet follower.")
			return
		}
		log.Infoln("Followed.")
	case EventUnfollow:
		log.Infoln("Unfollowed.")
	default:
		eventCounter.WithLabelValues(string(event.Type), "ignored").Inc()
		log.Debugln("Ignoring webhook event.")
		return
	}
	eventCounter.WithLabelValues(string(event.Type), "handled").Inc()
}

// respond replies with the event's reply token when it has one and pushes to
// the source chat otherwise.
func (r *Router) respond(ctx context.Context, event Event, messages ...line.Message) error {
	if event.ReplyToken != "" {
		return r.Messenger.Reply(ctx, event.ReplyToken, messages...)
	}
	target := event.Source.Target()
	if target == "" {
		return errors.New("event has no reply channel")
	}
	return r.Messenger.Push(ctx, target, messages...)
}
