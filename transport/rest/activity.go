package rest

import (
	"context"
	"fmt"

	"github.com/dealstreak/dealstreak"
	"github.com/gofiber/fiber/v2"
)

type ActivityLedger interface {
	Create(ctx context.Context, ownerId dealstreak.UserId, na dealstreak.NewActivity) (dealstreak.Activity, error)
	Update(ctx context.Context, id dealstreak.ActivityId, ownerId dealstreak.UserId, patch dealstreak.ActivityPatch) (dealstreak.Activity, error)
	Delete(ctx context.Context, id dealstreak.ActivityId, ownerId dealstreak.UserId) error
	FindById(ctx context.Context, id dealstreak.ActivityId) (dealstreak.Activity, error)
	FindByUser(ctx context.Context, ownerId dealstreak.UserId) ([]dealstreak.Activity, error)
}

type ActivityController struct {
	Ledger ActivityLedger
}

func (c *ActivityController) InstallTo(requestAuthorizer fiber.Handler, router fiber.Router) {
	router.Post("/activities", combineHandlers(requestAuthorizer, c.serveCreate))
	router.Get("/activities", combineHandlers(requestAuthorizer, c.serveList))
	router.Get("/activities/:id", combineHandlers(requestAuthorizer, c.serveGet))
	router.Patch("/activities/:id", combineHandlers(requestAuthorizer, c.serveUpdate))
	router.Delete("/activities/:id", combineHandlers(requestAuthorizer, c.serveDelete))
}

type activityResponse struct {
	Id          string                 `json:"id"`
	UserId      string                 `json:"userId"`
	Type        string                 `json:"type"`
	Description string                 `json:"description"`
	Points      int                    `json:"points"`
	Status      string                 `json:"status"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt   int64                  `json:"createdAt"`
	UpdatedAt   int64                  `json:"updatedAt"`
}

func toActivityResponse(a dealstreak.Activity) activityResponse {
	return activityResponse{
		Id:          string(a.Id),
		UserId:      string(a.OwnerId),
		Type:        string(a.Type),
		Description: a.Description,
		Points:      a.Points,
		Status:      string(a.Status),
		Metadata:    a.Metadata,
		CreatedAt:   a.CreatedAt.Unix(),
		UpdatedAt:   a.UpdatedAt.Unix(),
	}
}

func (c *ActivityController) serveCreate(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx)
	if err != nil {
		return err
	}
	body := struct {
		Type        string                 `json:"type"`
		Description string                 `json:"description"`
		Status      string                 `json:"status"`
		Metadata    map[string]interface{} `json:"metadata"`
	}{}
	if err := ctx.BodyParser(&body); err != nil {
		requestLog(ctx).WithError(err).Infoln("Invalid body.")
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	activity, err := c.Ledger.Create(ctx.Context(), user.Id, dealstreak.NewActivity{
		Type:        dealstreak.ActivityType(body.Type),
		Description: body.Description,
		Status:      dealstreak.ActivityStatus(body.Status),
		Metadata:    body.Metadata,
	})
	if err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(toActivityResponse(activity))
}

func (c *ActivityController) serveList(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx)
	if err != nil {
		return err
	}
	ownerId := user.Id
	if q := ctx.Query("user_id"); q != "" {
		ownerId = dealstreak.UserId(q)
	}
	activities, err := c.Ledger.FindByUser(ctx.Context(), ownerId)
	if err != nil {
		return fmt.Errorf("find user activities: %w", err)
	}
	mapped := make([]activityResponse, len(activities))
	for i, a := range activities {
		mapped[i] = toActivityResponse(a)
	}
	return ctx.JSON(mapped)
}

func (c *ActivityController) serveGet(ctx *fiber.Ctx) error {
	activity, err := c.Ledger.FindById(ctx.Context(), dealstreak.ActivityId(ctx.Params("id")))
	if err != nil {
		return fmt.Errorf("find activity: %w", err)
	}
	return ctx.JSON(toActivityResponse(activity))
}

func (c *ActivityController) serveUpdate(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx)
	if err != nil {
		return err
	}
	body := struct {
		Type        *string                `json:"type"`
		Description *string                `json:"description"`
		Status      *string                `json:"status"`
		Metadata    map[string]interface{} `json:"metadata"`
	}{}
	if err := ctx.BodyParser(&body); err != nil {
		requestLog(ctx).WithError(err).Infoln("Invalid body.")
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	patch := dealstreak.ActivityPatch{Description: body.Description, Metadata: body.Metadata}
	if body.Type != nil {
		t := dealstreak.ActivityType(*body.Type)
		patch.Type = &t
	}
	if body.Status != nil {
		s := dealstreak.ActivityStatus(*body.Status)
		patch.Status = &s
	}
	activity, err := c.Ledger.Update(ctx.Context(), dealstreak.ActivityId(ctx.Params("id")), user.Id, patch)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	return ctx.JSON(toActivityResponse(activity))
}

func (c *ActivityController) serveDelete(ctx *fiber.Ctx) error {
	user, err := currentUser(ctx)
	if err != nil {
		return err
	}
	err = c.Ledger.Delete(ctx.Context(), dealstreak.ActivityId(ctx.Params("id")), user.Id)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
