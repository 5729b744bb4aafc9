package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mansoorceksport/periodize/internal/middleware"
	"github.com/mansoorceksport/periodize/internal/service"
)

const dateLayout = "2006-01-02"

// ScheduleHandler serves the calendar: placing workouts, program expansion,
// and the workout lifecycle transitions.
type ScheduleHandler struct {
	schedules *service.ScheduleService
}

func NewScheduleHandler(schedules *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules}
}

// Create POST /v1/schedules
func (h *ScheduleHandler) Create(c *fiber.Ctx) error {
	var req struct {
		TemplateID string `json:"template_id"`
		Date       string `json:"date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
	}

	workout, err := h.schedules.Schedule(c.Context(), middleware.UserID(c), req.TemplateID, date)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(workout)
}

// Get GET /v1/schedules/:id
func (h *ScheduleHandler) Get(c *fiber.Ctx) error {
	workout, err := h.schedules.GetByID(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(workout)
}

// List GET /v1/schedules?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *ScheduleHandler) List(c *fiber.Ctx) error {
	from, err := time.Parse(dateLayout, c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from must be YYYY-MM-DD"})
	}
	to, err := time.Parse(dateLayout, c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "to must be YYYY-MM-DD"})
	}

	workouts, err := h.schedules.ListCalendar(c.Context(), middleware.UserID(c), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(workouts)
}

// ExpandProgram POST /v1/programs/:id/expand
// Dry run: returns the drafts a ScheduleProgram call would place.
func (h *ScheduleHandler) ExpandProgram(c *fiber.Ctx) error {
	startDate, err := h.parseStartDate(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	drafts, err := h.schedules.ExpandProgram(c.Context(), middleware.UserID(c), c.Params("id"), startDate)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(drafts)
}

// ScheduleProgram POST /v1/programs/:id/schedule
func (h *ScheduleHandler) ScheduleProgram(c *fiber.Ctx) error {
	startDate, err := h.parseStartDate(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	placed, err := h.schedules.ScheduleProgram(c.Context(), middleware.UserID(c), c.Params("id"), startDate)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(placed)
}

func (h *ScheduleHandler) parseStartDate(c *fiber.Ctx) (time.Time, error) {
	var req struct {
		StartDate string `json:"start_date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "Invalid body")
	}
	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "start_date must be YYYY-MM-DD")
	}
	return startDate, nil
}

// Start POST /v1/schedules/:id/start
func (h *ScheduleHandler) Start(c *fiber.Ctx) error {
	session, err := h.schedules.Start(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

// Complete POST /v1/schedules/:id/complete
func (h *ScheduleHandler) Complete(c *fiber.Ctx) error {
	workout, err := h.schedules.Complete(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(workout)
}

// Skip POST /v1/schedules/:id/skip
func (h *ScheduleHandler) Skip(c *fiber.Ctx) error {
	workout, err := h.schedules.Skip(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(workout)
}

// Cancel POST /v1/schedules/:id/cancel
func (h *ScheduleHandler) Cancel(c *fiber.Ctx) error {
	workout, err := h.schedules.Cancel(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(workout)
}

// Reschedule PATCH /v1/schedules/:id/reschedule
func (h *ScheduleHandler) Reschedule(c *fiber.Ctx) error {
	var req struct {
		Date string `json:"date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
	}

	workout, err := h.schedules.Reschedule(c.Context(), middleware.UserID(c), c.Params("id"), date)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(workout)
}
