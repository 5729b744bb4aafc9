package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/mansoorceksport/periodize/internal/domain"
)

// respondError maps domain errors onto HTTP statuses. Conflicts that the
// client can act on (occupied slot, bad transition, missing max) get 409 so
// retrying without changing the request is visibly pointless.
func respondError(c *fiber.Ctx, err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": verr.Error(),
			"field": verr.Field,
		})
	}

	switch {
	case errors.Is(err, domain.ErrDuplicateSlot),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrMissingMaxReference),
		errors.Is(err, domain.ErrSessionNotFinalized),
		errors.Is(err, domain.ErrSessionFinalized),
		errors.Is(err, domain.ErrSessionVoided):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrTemplateNotFound),
		errors.Is(err, domain.ErrProgramNotFound),
		errors.Is(err, domain.ErrScheduleNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrExerciseNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, domain.ErrInvalidID):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
