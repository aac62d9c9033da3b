package controller

import (
	"magic-diary-be/internal/dto"
	"magic-diary-be/internal/pkg/serverutils"
	"magic-diary-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDiaryController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	ShowSession(ctx *fiber.Ctx) error
	SetMode(ctx *fiber.Ctx) error
	SubmitEntry(ctx *fiber.Ctx) error
	SubmitStrokes(ctx *fiber.Ctx) error
	GetTurns(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
	Export(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	OneShot(ctx *fiber.Ctx) error
}

type diaryController struct {
	sessionService service.ISessionService
}

func NewDiaryController(sessionService service.ISessionService) IDiaryController {
	return &diaryController{
		sessionService: sessionService,
	}
}

func (c *diaryController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/diary/v1")
	h.Post("oneshot", c.OneShot)
	h.Post("sessions", c.CreateSession)
	h.Get("sessions/:id", c.ShowSession)
	h.Delete("sessions/:id", c.DeleteSession)
	h.Put("sessions/:id/mode", c.SetMode)
	h.Post("sessions/:id/entries", c.SubmitEntry)
	h.Post("sessions/:id/strokes", c.SubmitStrokes)
	h.Get("sessions/:id/turns", c.GetTurns)
	h.Post("sessions/:id/reset", c.Reset)
	h.Get("sessions/:id/export", c.Export)
}

func (c *diaryController) CreateSession(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *diaryController) ShowSession(ctx *fiber.Ctx) error {
	res, err := c.sessionService.Show(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *diaryController) SetMode(ctx *fiber.Ctx) error {
	var req dto.SetModeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.SetMode(ctx.UserContext(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success set mode", res))
}

func (c *diaryController) SubmitEntry(ctx *fiber.Ctx) error {
	var req dto.SubmitEntryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.SubmitEntry(ctx.UserContext(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success submit entry", res))
}

func (c *diaryController) SubmitStrokes(ctx *fiber.Ctx) error {
	var req dto.SubmitStrokesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.sessionService.SubmitStrokes(ctx.UserContext(), ctx.Params("id"), &req); err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse[any]("Strokes accepted", nil))
}

func (c *diaryController) GetTurns(ctx *fiber.Ctx) error {
	res, err := c.sessionService.GetTurns(ctx.UserContext(), ctx.Params("id"), ctx.Query("mode"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get turns", res))
}

func (c *diaryController) Reset(ctx *fiber.Ctx) error {
	if err := c.sessionService.Reset(ctx.UserContext(), ctx.Params("id")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success reset conversation", nil))
}

func (c *diaryController) Export(ctx *fiber.Ctx) error {
	text, err := c.sessionService.Export(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="magical-diary.txt"`)
	return ctx.SendString(text)
}

func (c *diaryController) DeleteSession(ctx *fiber.Ctx) error {
	if err := c.sessionService.Delete(ctx.UserContext(), ctx.Params("id")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}

func (c *diaryController) OneShot(ctx *fiber.Ctx) error {
	var req dto.OneShotRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.OneShot(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}
