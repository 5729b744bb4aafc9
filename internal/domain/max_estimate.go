package domain

import (
	"context"
	"time"
)

// One-rep-max estimate sources.
const (
	MaxSourceManual  = "manual"
	MaxSourceDerived = "derived"
)

// OneRepMaxEstimate is the current estimated one-rep-max for a (user,
// exercise) pair, in kg. Mutated only by the estimator; read by the weight
// resolver for percent-of-max prescriptions.
type OneRepMaxEstimate struct {
	ID         string  `json:"id" bson:"_id,omitempty"`
	UserID     string  `json:"user_id" bson:"user_id"`
	ExerciseID string  `json:"exercise_id" bson:"exercise_id"`
	Value      float64 `json:"value" bson:"value"`
	Source     string  `json:"source" bson:"source"`

	// Set when the estimate was derived from a logged set.
	BasedOnWeight float64 `json:"based_on_weight,omitempty" bson:"based_on_weight,omitempty"`
	BasedOnReps   int     `json:"based_on_reps,omitempty" bson:"based_on_reps,omitempty"`

	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type MaxEstimateRepository interface {
	// Get returns nil, nil when no estimate exists yet.
	Get(ctx context.Context, userID, exerciseID string) (*OneRepMaxEstimate, error)
	Upsert(ctx context.Context, estimate *OneRepMaxEstimate) error
	ListByUser(ctx context.Context, userID string) ([]*OneRepMaxEstimate, error)
}
