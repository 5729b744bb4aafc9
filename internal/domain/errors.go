package domain

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotFound  = errors.New("record not found")
	ErrInvalidID = errors.New("invalid id")
	ErrForbidden = errors.New("access forbidden: you don't own this resource")

	// ErrDuplicateSlot signals that an active scheduled workout already occupies
	// the (user, date, template) slot. Never auto-resolved; the caller decides.
	ErrDuplicateSlot = errors.New("an active workout already occupies this slot")

	// ErrInvalidTransition signals a lifecycle operation applied to a workout
	// whose current status does not permit it.
	ErrInvalidTransition = errors.New("invalid schedule status transition")

	// ErrMissingMaxReference signals a percent-of-max weight that cannot be
	// resolved because no one-rep-max estimate exists for the referenced
	// exercise. Recoverable: the caller can supply a manual max.
	ErrMissingMaxReference = errors.New("no one-rep-max estimate for referenced exercise")

	// ErrSessionNotFinalized signals an attempt to complete a scheduled workout
	// whose linked session has not been finalized yet.
	ErrSessionNotFinalized = errors.New("workout session is not finalized")

	// ErrSessionFinalized signals a plain edit on a finalized session; finalized
	// sessions only change through corrective edits.
	ErrSessionFinalized = errors.New("workout session is already finalized")

	// ErrSessionVoided signals any write to a voided session. Voiding is
	// terminal; the session stays readable for audit only.
	ErrSessionVoided = errors.New("workout session is voided")

	// ErrCacheMiss is returned by CacheRepository.Get when no entry exists.
	ErrCacheMiss = errors.New("cache miss")
)

// ValidationError reports a malformed field on a template, set spec or program.
// Rejected before any persistence happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
