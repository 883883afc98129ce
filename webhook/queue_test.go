package webhook

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueueKeepsChatOrder(t *testing.T) {
	assert := assert.New(t)

	var mutex sync.Mutex
	got := map[string][]string{}
	q := NewQueue(4, 100, func(ctx context.Context, event Event) {
		mutex.Lock()
		defer mutex.Unlock()
		key := event.Source.Key()
		got[key] = append(got[key], event.Message.Text)
	})
	q.Start(context.Background())

	want := map[string][]string{}
	for i := 0; i < 20; i++ {
		for _, group := range []string{"g1", "g2", "g3"} {
			text := string(rune('a' + i))
			want[group] = append(want[group], text)
			err := q.Enqueue(Event{Type: EventMessage, Source: Source{GroupId: group}, Message: Message{Text: text}})
			if !assert.NoError(err) {
				return
			}
		}
	}
	q.Close()

	assert.Equal(want, got)
}

func TestQueueFull(t *testing.T) {
	assert := assert.New(t)

	// Workers are not started, the single slot fills up.
	q := NewQueue(1, 1, func(ctx context.Context, event Event) {})
	assert.NoError(q.Enqueue(Event{Type: EventJoin}))
	assert.ErrorIs(q.Enqueue(Event{Type: EventJoin}), ErrQueueFull)
}

func TestQueueClosed(t *testing.T) {
	q := NewQueue(1, 1, func(ctx context.Context, event Event) {})
	q.Start(context.Background())
	q.Close()
	q.Close()

	assert.ErrorIs(t, q.Enqueue(Event{Type: EventJoin}), ErrQueueClosed)
}

func TestQueueRecoversPanic(t *testing.T) {
	assert := assert.New(t)

	var handled []string
	q := NewQueue(1, 10, func(ctx context.Context, event Event) {
		if event.Message.Text == "boom" {
			panic("boom")
		}
		handled = append(handled, event.Message.Text)
	})
	q.Start(context.Background())
	assert.NoError(q.Enqueue(
		Event{Message: Message{Text: "boom"}},
		Event{Message: Message{Text: "ok"}},
	))
	q.Close()

	assert.Equal([]string{"ok"}, handled)
}

func TestQueueCloseDrainsBufferedEvents(t *testing.T) {
	assert := assert.New(t)

	var mutex sync.Mutex
	handled := 0
	q := NewQueue(2, 10, func(ctx context.Context, event Event) {
		mutex.Lock()
		handled++
		mutex.Unlock()
	})
	for i := 0; i < 8; i++ {
		if !assert.NoError(q.Enqueue(Event{Type: EventJoin, Source: Source{GroupId: "g1"}})) {
			return
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	q.Start(ctx)
	q.Close()
	cancel()

	assert.Equal(8, handled)
}
