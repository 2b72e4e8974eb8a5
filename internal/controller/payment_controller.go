package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"luni-triage-be/internal/dto"
	"luni-triage-be/internal/pkg/serverutils"
	"luni-triage-be/internal/service"
)

type IPaymentController interface {
	RegisterRoutes(r fiber.Router)
	GetOptions(ctx *fiber.Ctx) error
	Checkout(ctx *fiber.Ctx) error
	Confirm(ctx *fiber.Ctx) error
	Webhook(ctx *fiber.Ctx) error
}

type paymentController struct {
	paymentService service.IPaymentService
}

func NewPaymentController(paymentService service.IPaymentService) IPaymentController {
	return &paymentController{paymentService: paymentService}
}

func (c *paymentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/payment")
	h.Post("/midtrans/notification", c.Webhook)
	h.Get("/options", c.GetOptions)

	h.Post("/checkout", serverutils.OptionalJwtMiddleware, c.Checkout)
	h.Post("/confirm", serverutils.OptionalJwtMiddleware, c.Confirm)
}

func (c *paymentController) GetOptions(ctx *fiber.Ctx) error {
	res := c.paymentService.GetOptions(ctx.Context())
	return ctx.JSON(serverutils.SuccessResponse("Payment options", res))
}

func (c *paymentController) Checkout(ctx *fiber.Ctx) error {
	scope, err := serverutils.ScopeFromCtx(ctx)
	if err != nil {
		return err
	}

	var req dto.CheckoutRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.paymentService.Checkout(ctx.Context(), scope, &req)
	if err != nil {
		if errors.Is(err, service.ErrPaymentOptionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Checkout created", res))
}

func (c *paymentController) Confirm(ctx *fiber.Ctx) error {
	scope, err := serverutils.ScopeFromCtx(ctx)
	if err != nil {
		return err
	}

	var req dto.ConfirmPurchaseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.paymentService.ConfirmPurchase(ctx.Context(), scope, &req)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Purchase confirmed", res))
}

func (c *paymentController) Webhook(ctx *fiber.Ctx) error {
	var req dto.MidtransWebhookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.SendStatus(fiber.StatusBadRequest)
	}

	if err := c.paymentService.HandleNotification(ctx.Context(), &req); err != nil {
		if errors.Is(err, service.ErrInvalidSignature) {
			return ctx.SendStatus(fiber.StatusForbidden)
		}
		// 500 so the gateway retries the notification
		return ctx.SendStatus(fiber.StatusInternalServerError)
	}
	return ctx.SendStatus(fiber.StatusOK)
}
