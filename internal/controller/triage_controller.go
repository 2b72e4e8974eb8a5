package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"luni-triage-be/internal/dto"
	"luni-triage-be/internal/entity"
	"luni-triage-be/internal/pkg/serverutils"
	"luni-triage-be/internal/service"
)

type ITriageController interface {
	RegisterRoutes(r fiber.Router)
	StartSession(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	ClearSession(ctx *fiber.Ctx) error
	GetUsage(ctx *fiber.Ctx) error
}

type triageController struct {
	triageService service.ITriageService
	usageService  service.IUsageService
}

func NewTriageController(triageService service.ITriageService, usageService service.IUsageService) ITriageController {
	return &triageController{
		triageService: triageService,
		usageService:  usageService,
	}
}

func (c *triageController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/triage")
	h.Use(serverutils.OptionalJwtMiddleware)
	h.Get("/usage", c.GetUsage)
	h.Post("/sessions", c.StartSession)
	h.Get("/sessions/:id", c.GetSession)
	h.Post("/sessions/:id/messages", c.SendMessage)
	h.Delete("/sessions/:id", c.ClearSession)
}

func (c *triageController) StartSession(ctx *fiber.Ctx) error {
	scope, err := serverutils.ScopeFromCtx(ctx)
	if err != nil {
		return err
	}

	var req dto.StartSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.triageService.StartSession(ctx.Context(), scope, &req)
	if err != nil {
		var quotaErr *dto.QuotaExceededError
		if errors.As(err, &quotaErr) {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(dto.QuotaExceededResponse{
				Success:   false,
				Code:      fiber.StatusTooManyRequests,
				Message:   quotaErr.Error(),
				ErrorType: "quota_exceeded",
				Data: dto.QuotaExceededData{
					Limit:            quotaErr.Limit,
					Used:             quotaErr.Used,
					ResetAfter:       quotaErr.ResetAfter,
					ShowModalPricing: true,
				},
			})
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Session started", res))
}

func (c *triageController) GetSession(ctx *fiber.Ctx) error {
	scope, err := serverutils.ScopeFromCtx(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	res, err := c.triageService.GetSession(ctx.Context(), scope, id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Session", res))
}

func (c *triageController) SendMessage(ctx *fiber.Ctx) error {
	scope, err := serverutils.ScopeFromCtx(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.triageService.SendMessage(ctx.Context(), scope, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		case errors.Is(err, service.ErrEmptyMessage):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrImageTooLarge):
			return fiber.NewError(fiber.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrImageUploadFailed):
			return fiber.NewError(fiber.StatusBadGateway, "image upload failed")
		case errors.Is(err, service.ErrReplyGenerationFailed):
			return fiber.NewError(fiber.StatusBadGateway, "assistant is unavailable, your message was saved")
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Message sent", res))
}

func (c *triageController) ClearSession(ctx *fiber.Ctx) error {
	scope, err := serverutils.ScopeFromCtx(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	if err := c.triageService.ClearSession(ctx.Context(), scope, id); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Session cleared", nil))
}

func (c *triageController) GetUsage(ctx *fiber.Ctx) error {
	scope, err := serverutils.ScopeFromCtx(ctx)
	if err != nil {
		return err
	}

	// Authenticated users are not metered.
	if !scope.IsGuest() {
		return ctx.JSON(serverutils.SuccessResponse("Usage", &dto.UsageResponse{
			Unlimited: true,
			CanStart:  true,
			Purchases: []string{},
		}))
	}

	usage, err := c.usageService.Read(ctx.Context(), scope.GuestId)
	if err != nil {
		return err
	}

	unlimited := false
	for _, p := range usage.Purchases {
		if p == entity.PurchaseUnlimited {
			unlimited = true
			break
		}
	}

	return ctx.JSON(serverutils.SuccessResponse("Usage", &dto.UsageResponse{
		CasesUsed:    usage.CasesUsed,
		AllowedCases: usage.AllowedCases(),
		Unlimited:    unlimited,
		CanStart:     usage.CanStartNewCase(),
		LastReset:    usage.LastReset,
		Purchases:    usage.Purchases,
	}))
}
