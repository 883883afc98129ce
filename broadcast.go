package dealstreak

import (
	"sync"
	"time"
)

type EventName string

const (
	EventActivityCreated EventName = "activity:created"
	EventActivityUpdated EventName = "activity:updated"
	EventActivityDeleted EventName = "activity:deleted"
)

type Event struct {
	Name       EventName
	Activity   Activity
	OccurredAt time.Time
}

// Broadcaster fans ledger events out to currently connected subscribers.
// Delivery is notify-if-present: nothing is kept for subscribers that connect
// later and a subscriber with a full buffer misses the event.
type Broadcaster struct {
	// Buffer size of subscriber channels.
	Buffer int

	mutex  sync.RWMutex
	lastId int
	subs   map[int]*subscriber
}

type subscriber struct {
	names map[EventName]struct{}
	ch    chan Event
}

var _ EventPublisher = (*Broadcaster)(nil)

func NewBroadcaster(buffer int) *Broadcaster {
	return &Broadcaster{Buffer: buffer, subs: make(map[int]*subscriber)}
}

// Subscribe returns a channel receiving events with given names (all events
// when no name is given) and a function closing the subscription.
func (b *Broadcaster) Subscribe(names ...EventName) (<-chan Event, func()) {
	s := &subscriber{
		names: make(map[EventName]struct{}, len(names)),
		ch:    make(chan Event, b.Buffer),
	}
	for _, n := range names {
		s.names[n] = struct{}{}
	}

	b.mutex.Lock()
	if b.subs == nil {
		b.subs = make(map[int]*subscriber)
	}
	b.lastId++
	id := b.lastId
	b.subs[id] = s
	b.mutex.Unlock()

	var once sync.Once
	return s.ch, func() {
		once.Do(func() {
			b.mutex.Lock()
			delete(b.subs, id)
			b.mutex.Unlock()
			close(s.ch)
		})
	}
}

func (b *Broadcaster) Publish(name EventName, activity Activity) {
	event := Event{Name: name, Activity: activity, OccurredAt: time.Now()}

	b.mutex.RLock()
	defer b.mutex.RUnlock()
	for _, s := range b.subs {
		if len(s.names) > 0 {
			if _, ok := s.names[name]; !ok {
				continue
			}
		}
		select {
		case s.ch <- event:
		default:
			droppedEvents.WithLabelValues(string(name)).Inc()
		}
	}
}

func (b *Broadcaster) Subscribers() int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return len(b.subs)
}
