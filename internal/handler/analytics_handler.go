package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mansoorceksport/periodize/internal/middleware"
	"github.com/mansoorceksport/periodize/internal/service"
)

// AnalyticsHandler serves aggregated training statistics and one-rep-max
// estimates.
type AnalyticsHandler struct {
	aggregates *service.AggregationService
	estimator  *service.OneRepMaxEstimator
}

func NewAnalyticsHandler(aggregates *service.AggregationService, estimator *service.OneRepMaxEstimator) *AnalyticsHandler {
	return &AnalyticsHandler{aggregates: aggregates, estimator: estimator}
}

func (h *AnalyticsHandler) parseRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	from, err := time.Parse(dateLayout, c.Query("from"))
	if err != nil {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "from must be YYYY-MM-DD")
	}
	to, err := time.Parse(dateLayout, c.Query("to"))
	if err != nil {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "to must be YYYY-MM-DD")
	}
	return from, to, nil
}

// PeriodStats GET /v1/stats/period?from=...&to=...
func (h *AnalyticsHandler) PeriodStats(c *fiber.Ctx) error {
	from, to, err := h.parseRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	stats, err := h.aggregates.PeriodStats(c.Context(), middleware.UserID(c), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// DayTotals GET /v1/stats/day?date=...
func (h *AnalyticsHandler) DayTotals(c *fiber.Ctx) error {
	date, err := time.Parse(dateLayout, c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
	}

	totals, err := h.aggregates.DayTotals(c.Context(), middleware.UserID(c), date)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(totals)
}

// Progression GET /v1/stats/progression/:exerciseID?from=...&to=...
func (h *AnalyticsHandler) Progression(c *fiber.Ctx) error {
	from, to, err := h.parseRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	points, err := h.aggregates.StrengthProgression(c.Context(), middleware.UserID(c), c.Params("exerciseID"), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(points)
}

// ListMaxes GET /v1/maxes
func (h *AnalyticsHandler) ListMaxes(c *fiber.Ctx) error {
	estimates, err := h.estimator.ListByUser(c.Context(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(estimates)
}

// SetManualMax PUT /v1/maxes/:exerciseID
func (h *AnalyticsHandler) SetManualMax(c *fiber.Ctx) error {
	var req struct {
		Value float64 `json:"value"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	estimate, err := h.estimator.SetManual(c.Context(), middleware.UserID(c), c.Params("exerciseID"), req.Value)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(estimate)
}

// GetMax GET /v1/maxes/:exerciseID
func (h *AnalyticsHandler) GetMax(c *fiber.Ctx) error {
	estimate, err := h.estimator.Estimate(c.Context(), middleware.UserID(c), c.Params("exerciseID"))
	if err != nil {
		return respondError(c, err)
	}
	if estimate == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no estimate for this exercise"})
	}
	return c.JSON(estimate)
}
