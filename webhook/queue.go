package webhook

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"github.com/sirupsen/logrus"
)

var ErrQueueFull = errors.New("webhook queue full")
var ErrQueueClosed = errors.New("webhook queue closed")

type HandlerFunc func(ctx context.Context, event Event)

// Queue processes events on a fixed number of workers. Each worker owns a
// bounded channel and events of one chat always land on the same worker, so
// they are handled in arrival order.
type Queue struct {
	handle HandlerFunc
	shards []chan Event
	wg     sync.WaitGroup

	mutex  sync.RWMutex
	closed bool
}

func NewQueue(workers int, size int, handle HandlerFunc) *Queue {
	if workers < 1 {
		workers = 1
	}
	if size < 1 {
		size = 1
	}
	shards := make([]chan Event, workers)
	for i := range shards {
		shards[i] = make(chan Event, size)
	}
	return &Queue{handle: handle, shards: shards}
}

// Start launches the workers. They run until Close or until ctx is done,
// a done ctx abandons events still buffered.
func (q *Queue) Start(ctx context.Context) {
	for _, shard := range q.shards {
		q.wg.Add(1)
		go func(shard <-chan Event) {
			defer q.wg.Done()
			q.work(ctx, shard)
		}(shard)
	}
}

func (q *Queue) work(ctx context.Context, shard <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-shard:
			if !ok {
				return
			}
			q.safeHandle(ctx, event)
		}
	}
}

func (q *Queue) safeHandle(ctx context.Context, event Event) {
	defer func() {
		if r := recover(); r != nil {
			eventCounter.WithLabelValues(string(event.Type), "panic").Inc()
			logrus.WithField("event_type", event.Type).
				WithField("panic", r).
				Errorln("Webhook handler panicked.")
		}
	}()
	q.handle(ctx, event)
}

// Enqueue schedules events without blocking. Events that don't fit their
// worker's channel are dropped and ErrQueueFull is returned after the rest
// were scheduled.
func (q *Queue) Enqueue(events ...Event) error {
	q.mutex.RLock()
	defer q.mutex.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	var err error
	for _, event := range events {
		select {
		case q.shards[q.shardOf(event)] <- event:
		default:
			eventCounter.WithLabelValues(string(event.Type), "dropped").Inc()
			logrus.WithField("event_type", event.Type).
				WithField("source", event.Source.Key()).
				Warningln("Webhook queue full, event dropped.")
			err = ErrQueueFull
		}
	}
	return err
}

func (q *Queue) shardOf(event Event) int {
	h := fnv.New32a()
	h.Write([]byte(event.Source.Key()))
	return int(h.Sum32() % uint32(len(q.shards)))
}

// Close stops accepting events and waits until the workers drained their
// channels. Call it before cancelling the ctx given to Start to process every
// buffered event.
func (q *Queue) Close() {
	q.mutex.Lock()
	if !q.closed {
		q.closed = true
		for _, shard := range q.shards {
			close(shard)
		}
	}
	q.mutex.Unlock()
	q.wg.Wait()
}
