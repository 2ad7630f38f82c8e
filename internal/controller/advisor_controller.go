package controller

import (
	"errors"

	"ai-shopscout-be/internal/dto"
	"ai-shopscout-be/internal/pkg/serverutils"
	"ai-shopscout-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdvisorController interface {
	RegisterRoutes(r fiber.Router)
	SendTurn(ctx *fiber.Ctx) error
	ShowSession(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	ShowReport(ctx *fiber.Ctx) error
}

type advisorController struct {
	advisorService service.IAdvisorService
}

func NewAdvisorController(advisorService service.IAdvisorService) IAdvisorController {
	return &advisorController{
		advisorService: advisorService,
	}
}

func (c *advisorController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/advisor/v1")
	h.Post("send-turn", c.SendTurn)
	h.Get("session/:id", c.ShowSession)
	h.Get("session/:id/report", c.ShowReport)
	h.Delete("session/:id", c.DeleteSession)
}

func (c *advisorController) SendTurn(ctx *fiber.Ctx) error {
	var req dto.SendTurnRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.advisorService.SendTurn(ctx.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrNotConfigured) {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.ErrorResponse(503, err.Error()))
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send turn", res))
}

func (c *advisorController) ShowSession(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	res, err := c.advisorService.GetSession(ctx.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Session not found"))
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *advisorController) DeleteSession(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	err := c.advisorService.DeleteSession(ctx.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Session not found"))
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}

func (c *advisorController) ShowReport(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	res, err := c.advisorService.GetReport(ctx.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Session not found"))
		}
		if errors.Is(err, service.ErrReportNotReady) {
			return ctx.Status(fiber.StatusConflict).JSON(serverutils.ErrorResponse(409, "Report is not ready until the session completes"))
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show report", res))
}
