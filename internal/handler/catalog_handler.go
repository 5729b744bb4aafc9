package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mansoorceksport/periodize/internal/domain"
)

// CatalogHandler serves the read-only exercise catalog.
type CatalogHandler struct {
	catalog domain.ExerciseCatalog
}

func NewCatalogHandler(catalog domain.ExerciseCatalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// List GET /v1/exercises?muscle_group=...
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	filter := make(map[string]interface{})
	if mg := c.Query("muscle_group"); mg != "" {
		filter["muscle_groups"] = mg
	}

	exercises, err := h.catalog.List(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(exercises)
}

// Get GET /v1/exercises/:id
func (h *CatalogHandler) Get(c *fiber.Ctx) error {
	exercise, err := h.catalog.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(exercise)
}
