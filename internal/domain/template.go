package domain

import (
	"context"
	"errors"
	"time"
)

var ErrTemplateNotFound = errors.New("workout template not found")

// SetSpec prescribes a single set within a template exercise. Position is
// 1-based and unique within the exercise.
type SetSpec struct {
	Position    int        `json:"position" bson:"position"`
	Reps        int        `json:"reps" bson:"reps"`
	RepsMax     int        `json:"reps_max,omitempty" bson:"reps_max,omitempty"` // upper bound of a rep range, 0 = fixed reps
	Weight      WeightSpec `json:"weight" bson:"weight"`
	RestSeconds int        `json:"rest_seconds,omitempty" bson:"rest_seconds,omitempty"`
	TargetRIR   *int       `json:"target_rir,omitempty" bson:"target_rir,omitempty"`
	Note        string     `json:"note,omitempty" bson:"note,omitempty"`
}

func (s SetSpec) Validate() error {
	if s.Position < 1 {
		return invalid("set.position", "position must be 1-based")
	}
	if s.Reps < 1 {
		return invalid("set.reps", "target reps must be at least 1")
	}
	if s.RepsMax != 0 && s.RepsMax < s.Reps {
		return invalid("set.reps_max", "rep range upper bound below lower bound")
	}
	if s.RestSeconds < 0 {
		return invalid("set.rest_seconds", "rest must not be negative")
	}
	if s.TargetRIR != nil && (*s.TargetRIR < 0 || *s.TargetRIR > 10) {
		return invalid("set.target_rir", "target RIR must be in [0, 10]")
	}
	return s.Weight.Validate()
}

// TemplateExercise is an ordered exercise instance inside a template.
type TemplateExercise struct {
	ExerciseID string    `json:"exercise_id" bson:"exercise_id"`
	Name       string    `json:"name" bson:"name"` // Denormalized for easy display
	Position   int       `json:"position" bson:"position"`
	Sets       []SetSpec `json:"sets" bson:"sets"`
}

// WorkoutTemplate is an ordered list of exercise instances, each with an
// ordered list of set prescriptions. Owned by a user; referenced (not owned)
// by programs and scheduled workouts.
type WorkoutTemplate struct {
	ID        string             `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"user_id" bson:"user_id"`
	Name      string             `json:"name" bson:"name"`
	Exercises []TemplateExercise `json:"exercises" bson:"exercises"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

func (t *WorkoutTemplate) Validate() error {
	if t.Name == "" {
		return invalid("template.name", "name is required")
	}
	if len(t.Exercises) == 0 {
		return invalid("template.exercises", "template needs at least one exercise")
	}
	for _, ex := range t.Exercises {
		if ex.ExerciseID == "" {
			return invalid("template.exercises", "exercise reference is required")
		}
		if len(ex.Sets) == 0 {
			return invalid("template.exercises", "exercise needs at least one set")
		}
		seen := make(map[int]bool, len(ex.Sets))
		for _, set := range ex.Sets {
			if err := set.Validate(); err != nil {
				return err
			}
			if seen[set.Position] {
				return invalid("set.position", "duplicate set position within exercise")
			}
			seen[set.Position] = true
		}
	}
	return nil
}

type TemplateRepository interface {
	Create(ctx context.Context, template *WorkoutTemplate) error
	GetByID(ctx context.Context, id string) (*WorkoutTemplate, error)
	ListByUser(ctx context.Context, userID string) ([]*WorkoutTemplate, error)
	Update(ctx context.Context, template *WorkoutTemplate) error
	Delete(ctx context.Context, id string) error
}
