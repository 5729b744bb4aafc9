package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mansoorceksport/periodize/internal/domain"
	"github.com/mansoorceksport/periodize/internal/middleware"
	"github.com/mansoorceksport/periodize/internal/service"
)

// SessionHandler serves workout session logging.
type SessionHandler struct {
	sessions *service.SessionService
}

func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Start POST /v1/sessions
// Ad hoc session start; scheduled sessions start via the schedule endpoints.
func (h *SessionHandler) Start(c *fiber.Ctx) error {
	var req struct {
		TemplateID string `json:"template_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	session, err := h.sessions.StartAdHoc(c.Context(), middleware.UserID(c), req.TemplateID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

// Get GET /v1/sessions/:id
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	session, err := h.sessions.GetByID(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(session)
}

// LogSet POST /v1/sessions/:id/sets
func (h *SessionHandler) LogSet(c *fiber.Ctx) error {
	var req domain.LoggedSet
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	session, err := h.sessions.LogSet(c.Context(), middleware.UserID(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

// Finalize POST /v1/sessions/:id/finalize
func (h *SessionHandler) Finalize(c *fiber.Ctx) error {
	session, err := h.sessions.Finalize(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(session)
}

// Correct PUT /v1/sessions/:id/sets
// Corrective edit on a finalized session: replaces the full set list.
func (h *SessionHandler) Correct(c *fiber.Ctx) error {
	var req struct {
		Sets []domain.LoggedSet `json:"sets"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	session, err := h.sessions.Correct(c.Context(), middleware.UserID(c), c.Params("id"), req.Sets)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(session)
}
