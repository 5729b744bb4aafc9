package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mansoorceksport/periodize/internal/domain"
	"github.com/mansoorceksport/periodize/internal/middleware"
	"github.com/mansoorceksport/periodize/internal/service"
)

// LibraryHandler serves the planning library: workout templates and programs.
type LibraryHandler struct {
	library *service.LibraryService
}

func NewLibraryHandler(library *service.LibraryService) *LibraryHandler {
	return &LibraryHandler{library: library}
}

// --- Templates ---

func (h *LibraryHandler) CreateTemplate(c *fiber.Ctx) error {
	var req domain.WorkoutTemplate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	tmpl, err := h.library.CreateTemplate(c.Context(), middleware.UserID(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tmpl)
}

func (h *LibraryHandler) GetTemplate(c *fiber.Ctx) error {
	tmpl, err := h.library.GetTemplate(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tmpl)
}

func (h *LibraryHandler) ListTemplates(c *fiber.Ctx) error {
	templates, err := h.library.ListTemplates(c.Context(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(templates)
}

func (h *LibraryHandler) UpdateTemplate(c *fiber.Ctx) error {
	var req domain.WorkoutTemplate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	req.ID = c.Params("id")

	tmpl, err := h.library.UpdateTemplate(c.Context(), middleware.UserID(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tmpl)
}

func (h *LibraryHandler) DeleteTemplate(c *fiber.Ctx) error {
	if err := h.library.DeleteTemplate(c.Context(), middleware.UserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

// --- Programs ---

func (h *LibraryHandler) CreateProgram(c *fiber.Ctx) error {
	var req domain.Program
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	program, err := h.library.CreateProgram(c.Context(), middleware.UserID(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(program)
}

func (h *LibraryHandler) GetProgram(c *fiber.Ctx) error {
	program, err := h.library.GetProgram(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(program)
}

func (h *LibraryHandler) ListPrograms(c *fiber.Ctx) error {
	programs, err := h.library.ListPrograms(c.Context(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(programs)
}

func (h *LibraryHandler) UpdateProgram(c *fiber.Ctx) error {
	var req domain.Program
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	req.ID = c.Params("id")

	program, err := h.library.UpdateProgram(c.Context(), middleware.UserID(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(program)
}

func (h *LibraryHandler) DeleteProgram(c *fiber.Ctx) error {
	if err := h.library.DeleteProgram(c.Context(), middleware.UserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}
