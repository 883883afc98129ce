package rest

import (
	"context"
	"fmt"

	"github.com/dealstreak/dealstreak"
	"github.com/gofiber/fiber/v2"
)

type GroupRegistry interface {
	Register(ctx context.Context, groupId string, registeredBy string, groupName string) (dealstreak.GroupRegistration, error)
	Unregister(ctx context.Context, groupId string) error
	ListActive(ctx context.Context, kind dealstreak.NotificationKind) ([]string, error)
}

type GroupController struct {
	Registry GroupRegistry
}

func (c *GroupController) InstallTo(requestAuthorizer fiber.Handler, router fiber.Router) {
	router.Post("/groups", combineHandlers(requestAuthorizer, c.serveRegister))
	router.Delete("/groups/:group_id", combineHandlers(requestAuthorizer, c.serveUnregister))
	router.Get("/groups", combineHandlers(requestAuthorizer, c.serveListActive))
}

func (c *GroupController) serveRegister(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx)
	if err != nil {
		return err
	}
	body := struct {
		GroupId   string `json:"groupId"`
		GroupName string `json:"groupName"`
	}{}
	if err := ctx.BodyParser(&body); err != nil {
		requestLog(ctx).WithError(err).Infoln("Invalid body.")
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	reg, err := c.Registry.Register(ctx.Context(), body.GroupId, string(user.Id), body.GroupName)
	if err != nil {
		return fmt.Errorf("register group: %w", err)
	}
	settings := make(map[string]bool, len(dealstreak.NotificationKinds))
	for _, kind := range dealstreak.NotificationKinds {
		settings[string(kind)] = reg.Settings.Enabled(kind)
	}
	return ctx.Status(fiber.StatusCreated).JSON(map[string]interface{}{
		"groupId":              reg.GroupId,
		"groupName":            reg.GroupName,
		"isActive":             reg.IsActive,
		"registeredBy":         reg.RegisteredBy,
		"registeredAt":         reg.RegisteredAt.Unix(),
		"notificationSettings": settings,
	})
}

func (c *GroupController) serveUnregister(ctx *fiber.Ctx) error {
	if err := c.Registry.Unregister(ctx.Context(), ctx.Params("group_id")); err != nil {
		return fmt.Errorf("unregister group: %w", err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *GroupController) serveListActive(ctx *fiber.Ctx) error {
	ids, err := c.Registry.ListActive(ctx.Context(), dealstreak.NotificationKind(ctx.Query("kind")))
	if err != nil {
		return fmt.Errorf("list active groups: %w", err)
	}
	return ctx.JSON(map[string]interface{}{"groupIds": ids})
}
