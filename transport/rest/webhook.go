package rest

import (
	"errors"
	"fmt"

	"github.com/dealstreak/dealstreak"
	"github.com/dealstreak/dealstreak/webhook"
	"github.com/gofiber/fiber/v2"
)

const (
	signatureHeader       = "X-Signature"
	legacySignatureHeader = "X-Line-Signature"
)

type EventQueue interface {
	Enqueue(events ...webhook.Event) error
}

// WebhookController acknowledges signed platform callbacks and hands the
// decoded events to the queue. Nothing is processed on the request path.
type WebhookController struct {
	Secret []byte
	Queue  EventQueue
}

func (c *WebhookController) InstallTo(router fiber.Router) {
	router.Post("/webhook", c.serveWebhook)
}

func (c *WebhookController) serveWebhook(ctx *fiber.Ctx) error {
	// fasthttp reuses the body buffer after the handler returns
	body := append([]byte(nil), ctx.Body()...)

	signature := ctx.Get(signatureHeader)
	if signature == "" {
		signature = ctx.Get(legacySignatureHeader)
	}
	if !webhook.Verify(c.Secret, body, signature) {
		requestLog(ctx).Warningln("Webhook signature mismatch.")
		return dealstreak.ErrInvalidSignature
	}

	// the platform redelivers on non 2xx, a body we can't read won't get better
	events, err := webhook.Decode(body)
	if err != nil {
		requestLog(ctx).WithError(err).Warningln("Could not decode webhook body, acknowledged without dispatch.")
		return ctx.JSON(map[string]bool{"received": true})
	}
	if err := c.Queue.Enqueue(events...); err != nil {
		if !errors.Is(err, webhook.ErrQueueFull) {
			return fmt.Errorf("enqueue webhook events: %w", err)
		}
		requestLog(ctx).WithError(err).Warningln("Webhook events dropped.")
	}
	return ctx.JSON(map[string]bool{"received": true})
}
