package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mansoorceksport/periodize/internal/domain"
)

const ninetyDays = 90 * 24 * time.Hour

func TestEstimateFromSet(t *testing.T) {
	e := NewOneRepMaxEstimator(newFakeMaxRepo(), 30, ninetyDays)

	// 100 kg x 10 with divisor 30: 100 * (1 + 10/30).
	assert.InDelta(t, 133.33, e.EstimateFromSet(10, 100), 0.01)

	// A single is its own max.
	assert.Equal(t, 140.0, e.EstimateFromSet(1, 140))
}

func TestUpdateStoresFirstEstimate(t *testing.T) {
	repo := newFakeMaxRepo()
	e := NewOneRepMaxEstimator(repo, 30, ninetyDays)

	est, err := e.Update(context.Background(), "u1", "ex-squat", 10, 100)
	require.NoError(t, err)
	assert.InDelta(t, 133.33, est.Value, 0.01)
	assert.Equal(t, domain.MaxSourceDerived, est.Source)
	assert.Equal(t, 100.0, est.BasedOnWeight)
	assert.Equal(t, 10, est.BasedOnReps)
}

func TestUpdateIsMonotonicWithinWindow(t *testing.T) {
	repo := newFakeMaxRepo()
	e := NewOneRepMaxEstimator(repo, 30, ninetyDays)
	ctx := context.Background()

	_, err := e.Update(ctx, "u1", "ex-squat", 10, 100)
	require.NoError(t, err)

	// A lighter set days later must not lower the estimate.
	est, err := e.Update(ctx, "u1", "ex-squat", 10, 90)
	require.NoError(t, err)
	assert.InDelta(t, 133.33, est.Value, 0.01)
	assert.Equal(t, 100.0, est.BasedOnWeight, "stored basis must stay on the stronger set")

	// A heavier set raises it.
	est, err = e.Update(ctx, "u1", "ex-squat", 8, 110)
	require.NoError(t, err)
	assert.InDelta(t, 139.33, est.Value, 0.01)
}

func TestUpdateDecaysStaleEstimate(t *testing.T) {
	repo := newFakeMaxRepo()
	e := NewOneRepMaxEstimator(repo, 30, ninetyDays)
	ctx := context.Background()

	_, err := e.Update(ctx, "u1", "ex-squat", 10, 100)
	require.NoError(t, err)

	// Jump past the staleness window, then demonstrate less.
	e.now = func() time.Time { return time.Now().Add(ninetyDays + 24*time.Hour) }
	est, err := e.Update(ctx, "u1", "ex-squat", 10, 90)
	require.NoError(t, err)

	// Halfway between the stale 133.33 and the fresh 120.
	assert.InDelta(t, 126.67, est.Value, 0.01)
}

func TestSetManualOverrides(t *testing.T) {
	repo := newFakeMaxRepo()
	e := NewOneRepMaxEstimator(repo, 30, ninetyDays)
	ctx := context.Background()

	_, err := e.Update(ctx, "u1", "ex-bench", 10, 100)
	require.NoError(t, err)

	est, err := e.SetManual(ctx, "u1", "ex-bench", 120)
	require.NoError(t, err)
	assert.Equal(t, 120.0, est.Value)
	assert.Equal(t, domain.MaxSourceManual, est.Source)

	stored, err := e.Estimate(ctx, "u1", "ex-bench")
	require.NoError(t, err)
	assert.Equal(t, 120.0, stored.Value)
}

func TestUpdateRejectsNonsenseSets(t *testing.T) {
	e := NewOneRepMaxEstimator(newFakeMaxRepo(), 30, ninetyDays)

	_, err := e.Update(context.Background(), "u1", "ex-bench", 0, 100)
	require.Error(t, err)
	_, err = e.Update(context.Background(), "u1", "ex-bench", 5, 0)
	require.Error(t, err)
}
