package domain

import (
	"context"
	"errors"
)

var ErrExerciseNotFound = errors.New("exercise not found")

// Exercise is reference catalog data. The engine never mutates it.
type Exercise struct {
	ID           string   `json:"id" bson:"_id,omitempty"`
	Name         string   `json:"name" bson:"name"`
	MuscleGroups []string `json:"muscle_groups" bson:"muscle_groups"`
	Equipment    []string `json:"equipment" bson:"equipment"`
}

// ExerciseCatalog is the read-only lookup surface over the exercise catalog.
type ExerciseCatalog interface {
	GetByID(ctx context.Context, id string) (*Exercise, error)
	List(ctx context.Context, filter map[string]interface{}) ([]*Exercise, error)
}
