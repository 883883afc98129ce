package rest

import (
	"encoding/json"
	"errors"

	"github.com/dealstreak/dealstreak"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	ErrorMessage string `json:"error_message"`
}

func requestLog(ctx *fiber.Ctx) *logrus.Entry {
	return logrus.
		WithField("remote_addr", ctx.Context().RemoteAddr()).
		WithField("path", ctx.Path()).
		WithField("z_referer", string(ctx.Request().Header.Peek("Referer"))).
		WithField("z_user_agent", string(ctx.Request().Header.Peek("User-Agent"))).
		WithField("z_x_forwared_for", string(ctx.Request().Header.Peek("X-Forwarded-For")))
}

// domain error kinds exposed to clients, checked in order
var errorStatuses = []struct {
	kind   error
	status int
}{
	{dealstreak.ErrValidation, fiber.StatusBadRequest},
	{dealstreak.ErrAuthentication, fiber.StatusForbidden},
	{dealstreak.ErrNotFound, fiber.StatusNotFound},
	{dealstreak.ErrConflict, fiber.StatusConflict},
	{dealstreak.ErrQuotaExceeded, fiber.StatusTooManyRequests},
	{dealstreak.ErrExternalService, fiber.StatusBadGateway},
}

func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return ctx.
			Status(fe.Code).
			JSON(&ErrorResponse{ErrorMessage: fe.Message})
	}
	for _, es := range errorStatuses {
		if errors.Is(err, es.kind) {
			if es.status >= fiber.StatusInternalServerError {
				requestLog(ctx).WithError(err).Warningln("Upstream failure.")
			}
			return ctx.
				Status(es.status).
				JSON(&ErrorResponse{ErrorMessage: err.Error()})
		}
	}
	requestLog(ctx).WithError(err).Errorln("Internal server error.")
	// keep internal server errors private. reply with generic error message.
	return ctx.
		Status(fiber.ErrInternalServerError.Code).
		JSON(&ErrorResponse{ErrorMessage: fiber.ErrInternalServerError.Message})
}

func NotFoundHandler(c *fiber.Ctx) error {
	return fiber.NewError(fiber.StatusNotFound)
}

func LogHandler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		requestLog(ctx).Infoln("Handling request.")
		return ctx.Next()
	}
}

func combineHandlers(handlers ...fiber.Handler) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		for _, handler := range handlers {
			err := handler(ctx)
			if err != nil {
				return err
			}
		}
		return nil
	}
}

func JsonErrorMessageResponse(message string) string {
	bytes, err := json.Marshal(ErrorResponse{ErrorMessage: message})
	if err != nil {
		panic(err)
	}
	return string(bytes)
}
