package rest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dealstreak/dealstreak"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

type EventSource interface {
	Subscribe(names ...dealstreak.EventName) (<-chan dealstreak.Event, func())
}

// EventsController streams ledger events as server-sent events.
type EventsController struct {
	Source EventSource
	// Closed on shutdown to end open streams.
	Done      <-chan struct{}
	KeepAlive time.Duration
}

func (c *EventsController) InstallTo(requestAuthorizer fiber.Handler, router fiber.Router) {
	router.Get("/events", combineHandlers(requestAuthorizer, c.serveEvents))
}

func (c *EventsController) keepAlive() time.Duration {
	if c.KeepAlive <= 0 {
		return 15 * time.Second
	}
	return c.KeepAlive
}

func (c *EventsController) serveEvents(ctx *fiber.Ctx) error {
	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")

	events, unsubscribe := c.Source.Subscribe()
	log := requestLog(ctx)
	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()
		ticker := time.NewTicker(c.keepAlive())
		defer ticker.Stop()

		for {
			select {
			case <-c.Done:
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				if err := writeEvent(w, event); err != nil {
					log.WithError(err).Debugln("Event stream closed.")
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}

func writeEvent(w *bufio.Writer, event dealstreak.Event) error {
	a := event.Activity
	data, err := json.Marshal(toActivityResponse(a))
	if err != nil {
		logrus.WithError(err).WithField("activity_id", a.Id).Warningln("Could not serialize event.")
		return nil
	}
	if _, err := fmt.Fprintf(w, "event: %s\nid: %d\ndata: %s\n\n", event.Name, event.OccurredAt.UnixNano(), data); err != nil {
		return err
	}
	return w.Flush()
}
