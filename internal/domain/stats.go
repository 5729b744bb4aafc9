package domain

import (
	"context"
	"time"
)

// DayTotals is the per-(user, date) partial sum the aggregation engine
// memoizes. Volume is in kg.
type DayTotals struct {
	Date     time.Time `json:"date" bson:"date"`
	Workouts int       `json:"workouts" bson:"workouts"`
	Volume   float64   `json:"volume" bson:"volume"`
	Sets     int       `json:"sets" bson:"sets"`
}

// ProgressionPoint is one entry of a strength progression series: the best
// weight logged in a session and the one-rep-max estimate as computed from
// that session alone, so historical charts stay stable as the live estimate
// moves.
type ProgressionPoint struct {
	Date           time.Time `json:"date"`
	MaxWeight      float64   `json:"max_weight"`
	EstimatedOneRM float64   `json:"estimated_one_rm"`
}

// PeriodStats are the rolled-up statistics for a date range, consumed by
// dashboard and progress surfaces.
type PeriodStats struct {
	StartDate              time.Time                     `json:"start_date"`
	EndDate                time.Time                     `json:"end_date"`
	WorkoutCount           int                           `json:"workout_count"`
	TotalVolume            float64                       `json:"total_volume"`
	TotalSets              int                           `json:"total_sets"`
	WorkoutsPerWeek        float64                       `json:"workouts_per_week"`
	PerExerciseProgression map[string][]ProgressionPoint `json:"per_exercise_progression"`
}

// CacheRepository is the process-wide memo store for aggregation partial
// sums. Staleness correctness matters more than hit rate: entries are removed
// by explicit invalidation, never trusted past one.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
