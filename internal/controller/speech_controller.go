package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"luni-triage-be/internal/dto"
	"luni-triage-be/internal/pkg/serverutils"
	"luni-triage-be/internal/service"
)

type ISpeechController interface {
	RegisterRoutes(r fiber.Router)
	Synthesize(ctx *fiber.Ctx) error
}

type speechController struct {
	speechService service.ISpeechService
}

func NewSpeechController(speechService service.ISpeechService) ISpeechController {
	return &speechController{speechService: speechService}
}

func (c *speechController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/speech")
	h.Post("/synthesize", c.Synthesize)
}

func (c *speechController) Synthesize(ctx *fiber.Ctx) error {
	var req dto.SynthesizeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	audio, err := c.speechService.Synthesize(ctx.Context(), req.Text)
	if err != nil {
		if errors.Is(err, service.ErrSpeechNotConfigured) {
			return fiber.NewError(fiber.StatusNotImplemented, err.Error())
		}
		return fiber.NewError(fiber.StatusBadGateway, "speech synthesis failed")
	}

	ctx.Set(fiber.HeaderContentType, "audio/mpeg")
	return ctx.Send(audio)
}
