package webhook

import (
	"fmt"

	"github.com/dealstreak/dealstreak"
	"github.com/tidwall/gjson"
)

type EventType string

const (
	EventMessage      EventType = "message"
	EventJoin         EventType = "join"
	EventMemberJoined EventType = "memberJoined"
	EventFollow       EventType = "follow"
	EventUnfollow     EventType = "unfollow"
)

type Source struct {
	// "user" or "group"
	Type    string
	UserId  string
	GroupId string
}

func (s Source) IsGroup() bool {
	return s.Type == "group" && s.GroupId != ""
}

// Key identifies the chat the event came from.
func (s Source) Key() string {
	if s.GroupId != "" {
		return s.GroupId
	}
	return s.UserId
}

// Target is where replies to the chat are pushed.
func (s Source) Target() string {
	return s.Key()
}

type Message struct {
	Type string
	Text string
}

type Event struct {
	Type       EventType
	Source     Source
	Message    Message
	ReplyToken string
}

// Decode parses a bare JSON array of events or the platform envelope
// {"destination": ..., "events": [...]}. Events of unknown type are kept,
// the router ignores them.
func Decode(body []byte) ([]Event, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: malformed webhook body", dealstreak.ErrValidation)
	}
	root := gjson.ParseBytes(body)

	var list gjson.Result
	switch {
	case root.IsArray():
		list = root
	case root.IsObject() && root.Get("events").IsArray():
		list = root.Get("events")
	default:
		return nil, fmt.Errorf("%w: webhook body holds no events", dealstreak.ErrValidation)
	}

	var events []Event
	var err error
	list.ForEach(func(_, value gjson.Result) bool {
		if !value.IsObject() {
			err = fmt.Errorf("%w: webhook event is not an object", dealstreak.ErrValidation)
			return false
		}
		events = append(events, Event{
			Type: EventType(value.Get("type").String()),
			Source: Source{
				Type:    value.Get("source.type").String(),
				UserId:  value.Get("source.userId").String(),
				GroupId: value.Get("source.groupId").String(),
			},
			Message: Message{
				Type: value.Get("message.type").String(),
				Text: value.Get("message.text").String(),
			},
			ReplyToken: value.Get("replyToken").String(),
		})
		return true
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}
