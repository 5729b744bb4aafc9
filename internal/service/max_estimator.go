package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/periodize/internal/domain"
)

// decayWeight blends a stale estimate toward a newly derived lower value.
// 0 keeps the old estimate, 1 jumps straight to the new one.
const decayWeight = 0.5

// OneRepMaxEstimator derives and maintains per-(user, exercise) one-rep-max
// estimates from logged sets. Updates for the same pair serialize through a
// keyed mutex: the monotonic comparison below is not safe under
// last-writer-wins.
type OneRepMaxEstimator struct {
	repo      domain.MaxEstimateRepository
	divisor   float64
	staleness time.Duration
	locks     *keyedMutex
	now       func() time.Time
}

// NewOneRepMaxEstimator creates an estimator using an Epley-style formula
// weight * (1 + reps/divisor). The divisor and staleness window are
// configuration; several published formulas differ only in this constant.
func NewOneRepMaxEstimator(repo domain.MaxEstimateRepository, divisor float64, staleness time.Duration) *OneRepMaxEstimator {
	if divisor <= 0 {
		divisor = 30
	}
	return &OneRepMaxEstimator{
		repo:      repo,
		divisor:   divisor,
		staleness: staleness,
		locks:     newKeyedMutex(),
		now:       time.Now,
	}
}

// EstimateFromSet converts one logged set into a 1RM estimate (kg in, kg out).
// A single rep is, by definition, its own max.
func (e *OneRepMaxEstimator) EstimateFromSet(reps int, weight float64) float64 {
	if reps <= 1 {
		return weight
	}
	return weight * (1 + float64(reps)/e.divisor)
}

// Update folds one achieved set into the stored estimate and returns the
// current estimate afterwards.
//
// Policy: within the staleness window the estimate only ever increases; a
// fatigued final set must not erase previously demonstrated capability. Once
// the stored estimate is older than the window it decays toward the newly
// derived value instead.
func (e *OneRepMaxEstimator) Update(ctx context.Context, userID, exerciseID string, achievedReps int, achievedWeight float64) (*domain.OneRepMaxEstimate, error) {
	if achievedReps < 1 || achievedWeight <= 0 {
		return nil, fmt.Errorf("cannot estimate 1RM from %d reps at %.1f kg", achievedReps, achievedWeight)
	}

	unlock := e.locks.Lock(userID + "|" + exerciseID)
	defer unlock()

	derived := e.EstimateFromSet(achievedReps, achievedWeight)

	existing, err := e.repo.Get(ctx, userID, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load 1RM estimate: %w", err)
	}

	now := e.now()
	value := derived
	if existing != nil && derived <= existing.Value {
		if now.Sub(existing.UpdatedAt) <= e.staleness {
			// Monotonic window: keep the higher estimate untouched.
			return existing, nil
		}
		value = existing.Value + (derived-existing.Value)*decayWeight
	}

	estimate := &domain.OneRepMaxEstimate{
		UserID:        userID,
		ExerciseID:    exerciseID,
		Value:         value,
		Source:        domain.MaxSourceDerived,
		BasedOnWeight: achievedWeight,
		BasedOnReps:   achievedReps,
		UpdatedAt:     now,
	}
	if err := e.repo.Upsert(ctx, estimate); err != nil {
		return nil, fmt.Errorf("failed to store 1RM estimate: %w", err)
	}
	return estimate, nil
}

// SetManual records a user-entered tested max, overriding any derived value.
func (e *OneRepMaxEstimator) SetManual(ctx context.Context, userID, exerciseID string, value float64) (*domain.OneRepMaxEstimate, error) {
	if value <= 0 {
		return nil, fmt.Errorf("manual 1RM must be positive, got %.1f", value)
	}

	unlock := e.locks.Lock(userID + "|" + exerciseID)
	defer unlock()

	estimate := &domain.OneRepMaxEstimate{
		UserID:     userID,
		ExerciseID: exerciseID,
		Value:      value,
		Source:     domain.MaxSourceManual,
		UpdatedAt:  e.now(),
	}
	if err := e.repo.Upsert(ctx, estimate); err != nil {
		return nil, fmt.Errorf("failed to store manual 1RM: %w", err)
	}
	return estimate, nil
}

// Estimate returns the current estimate, or nil when none exists.
func (e *OneRepMaxEstimator) Estimate(ctx context.Context, userID, exerciseID string) (*domain.OneRepMaxEstimate, error) {
	return e.repo.Get(ctx, userID, exerciseID)
}

// ListByUser returns all current estimates for a user.
func (e *OneRepMaxEstimator) ListByUser(ctx context.Context, userID string) ([]*domain.OneRepMaxEstimate, error) {
	return e.repo.ListByUser(ctx, userID)
}
