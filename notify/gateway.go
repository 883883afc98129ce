package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/dealstreak/dealstreak"
	"github.com/dealstreak/dealstreak/line"
	"github.com/sirupsen/logrus"
)

// Messenger is the outbound messaging platform.
type Messenger interface {
	Reply(ctx context.Context, replyToken string, messages ...line.Message) error
	Push(ctx context.Context, to string, messages ...line.Message) error
	Multicast(ctx context.Context, to []string, messages ...line.Message) error
	Broadcast(ctx context.Context, messages ...line.Message) error
}

// Gateway gates every Messenger primitive with the same Quota. A send that
// doesn't fit the quota fails with dealstreak.ErrQuotaExceeded without
// reaching the messenger, a failed send doesn't consume quota.
type Gateway struct {
	Messenger Messenger
	Quota     Quota
}

var _ Messenger = (*Gateway)(nil)

func (g *Gateway) Reply(ctx context.Context, replyToken string, messages ...line.Message) error {
	if replyToken == "" {
		return fmt.Errorf("%w: missing reply token", dealstreak.ErrValidation)
	}
	return g.send(ctx, "reply", func() error {
		return g.Messenger.Reply(ctx, replyToken, messages...)
	})
}

func (g *Gateway) Push(ctx context.Context, to string, messages ...line.Message) error {
	if to == "" {
		return fmt.Errorf("%w: missing push target", dealstreak.ErrValidation)
	}
	return g.send(ctx, "push", func() error {
		return g.Messenger.Push(ctx, to, messages...)
	})
}

func (g *Gateway) Multicast(ctx context.Context, to []string, messages ...line.Message) error {
	if len(to) == 0 {
		return nil
	}
	return g.send(ctx, "multicast", func() error {
		return g.Messenger.Multicast(ctx, to, messages...)
	})
}

func (g *Gateway) Broadcast(ctx context.Context, messages ...line.Message) error {
	return g.send(ctx, "broadcast", func() error {
		return g.Messenger.Broadcast(ctx, messages...)
	})
}

func (g *Gateway) send(ctx context.Context, primitive string, send func() error) error {
	release, err := g.Quota.Acquire(ctx)
	if err != nil {
		if errors.Is(err, dealstreak.ErrQuotaExceeded) {
			rejectedCounter.WithLabelValues(primitive).Inc()
			logrus.WithField("primitive", primitive).Warningln("Notification quota exhausted.")
		}
		return err
	}
	if err := send(); err != nil {
		release()
		failedCounter.WithLabelValues(primitive).Inc()
		return fmt.Errorf("%w: %s: %s", dealstreak.ErrExternalService, primitive, err)
	}
	sentCounter.WithLabelValues(primitive).Inc()
	return nil
}
