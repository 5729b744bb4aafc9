package domain

import (
	"context"
	"errors"
	"time"
)

var ErrScheduleNotFound = errors.New("scheduled workout not found")

// Scheduled workout lifecycle statuses.
const (
	ScheduleStatusPlanned    = "planned"
	ScheduleStatusInProgress = "in_progress"
	ScheduleStatusCompleted  = "completed"
	ScheduleStatusSkipped    = "skipped"
	ScheduleStatusCancelled  = "cancelled"
)

// PlannedSet is a set prescription with its weight already resolved for the
// scheduled date. Autoregulated sets carry no load; the athlete picks it live.
type PlannedSet struct {
	Position      int        `json:"position" bson:"position"`
	Reps          int        `json:"reps" bson:"reps"`
	RepsMax       int        `json:"reps_max,omitempty" bson:"reps_max,omitempty"`
	TargetWeight  float64    `json:"target_weight,omitempty" bson:"target_weight,omitempty"`
	Unit          WeightUnit `json:"unit,omitempty" bson:"unit,omitempty"`
	Autoregulated bool       `json:"autoregulated,omitempty" bson:"autoregulated,omitempty"`
	TargetRIR     *int       `json:"target_rir,omitempty" bson:"target_rir,omitempty"`
	RestSeconds   int        `json:"rest_seconds,omitempty" bson:"rest_seconds,omitempty"`
}

// PlannedExercise is one exercise of a scheduled workout's prescription.
type PlannedExercise struct {
	ExerciseID string       `json:"exercise_id" bson:"exercise_id"`
	Name       string       `json:"name" bson:"name"` // Denormalized for easy display
	Position   int          `json:"position" bson:"position"`
	Sets       []PlannedSet `json:"sets" bson:"sets"`
}

// ScheduledWorkout is a single calendar-dated workout instance, either
// materialized from a program expansion or created ad hoc. Date is date-only:
// always midnight UTC.
type ScheduledWorkout struct {
	ID         string `json:"id" bson:"_id,omitempty"`
	UserID     string `json:"user_id" bson:"user_id"`
	TemplateID string `json:"template_id" bson:"template_id"`

	Date         time.Time         `json:"date" bson:"date"`
	Status       string            `json:"status" bson:"status"`
	Prescription []PlannedExercise `json:"prescription,omitempty" bson:"prescription,omitempty"`

	// Set when the workout came out of a program expansion.
	ProgramID   string `json:"program_id,omitempty" bson:"program_id,omitempty"`
	ProgramWeek int    `json:"program_week,omitempty" bson:"program_week,omitempty"`

	// Set once a session has been started against this workout.
	SessionID string `json:"session_id,omitempty" bson:"session_id,omitempty"`

	RescheduledFrom *time.Time `json:"rescheduled_from,omitempty" bson:"rescheduled_from,omitempty"`
	Notes           string     `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" bson:"updated_at"`
}

// Active reports whether the workout still occupies its calendar slot.
// Only non-terminal workouts block the (user, date, template) slot.
func (s *ScheduledWorkout) Active() bool {
	return s.Status == ScheduleStatusPlanned || s.Status == ScheduleStatusInProgress
}

// DateOnly truncates a timestamp to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type ScheduleRepository interface {
	Create(ctx context.Context, workout *ScheduledWorkout) error
	GetByID(ctx context.Context, id string) (*ScheduledWorkout, error)
	// FindActiveSlot returns the active workout occupying (user, date, template),
	// or nil when the slot is free.
	FindActiveSlot(ctx context.Context, userID string, date time.Time, templateID string) (*ScheduledWorkout, error)
	ListByDateRange(ctx context.Context, userID string, from, to time.Time) ([]*ScheduledWorkout, error)
	Update(ctx context.Context, workout *ScheduledWorkout) error
	// UpdateStatus transitions status only when the stored status still equals
	// fromStatus; returns ErrInvalidTransition otherwise.
	UpdateStatus(ctx context.Context, id, fromStatus, toStatus string) error
	// SetSession links the started session and moves planned -> in_progress in
	// one conditional write.
	SetSession(ctx context.Context, id, sessionID string) error
	Delete(ctx context.Context, id string) error
}
