package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mansoorceksport/periodize/internal/domain"
)

type sessionFixture struct {
	sessions  *fakeSessionRepo
	schedules *fakeScheduleRepo
	maxes     *fakeMaxRepo
	estimator *OneRepMaxEstimator
	inv       *noopInvalidator
	svc       *SessionService
}

func newSessionFixture() *sessionFixture {
	f := &sessionFixture{
		sessions:  newFakeSessionRepo(),
		schedules: newFakeScheduleRepo(),
		maxes:     newFakeMaxRepo(),
		inv:       &noopInvalidator{},
	}
	f.estimator = NewOneRepMaxEstimator(f.maxes, 30, ninetyDays)
	f.svc = NewSessionService(f.sessions, f.schedules, f.estimator, f.inv)
	return f
}

func TestAdHocSessionFlow(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	session, err := f.svc.StartAdHoc(ctx, "u1", "")
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Nil(t, session.CompletedAt)

	_, err = f.svc.LogSet(ctx, "u1", session.ID, domain.LoggedSet{
		ExerciseID: "ex-squat", SetIndex: 1, Reps: 10, Weight: 60, Unit: domain.WeightUnitKG,
	})
	require.NoError(t, err)
	_, err = f.svc.LogSet(ctx, "u1", session.ID, domain.LoggedSet{
		ExerciseID: "ex-squat", SetIndex: 2, Reps: 8, Weight: 60, Unit: domain.WeightUnitKG,
	})
	require.NoError(t, err)

	done, err := f.svc.Finalize(ctx, "u1", session.ID)
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)
	assert.InDelta(t, 1080, done.TotalVolume, 0.001) // 60x10 + 60x8
	assert.Equal(t, 2, done.TotalSets)

	// Ad hoc finalization feeds the estimator and invalidates the day.
	est, err := f.estimator.Estimate(ctx, "u1", "ex-squat")
	require.NoError(t, err)
	assert.InDelta(t, 80, est.Value, 0.01) // 60 * (1 + 10/30)
	assert.Len(t, f.inv.calls, 1)
}

func TestLogSetAssignsULIDAndDedupsRetries(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	session, err := f.svc.StartAdHoc(ctx, "u1", "")
	require.NoError(t, err)

	updated, err := f.svc.LogSet(ctx, "u1", session.ID, domain.LoggedSet{
		ExerciseID: "ex-squat", SetIndex: 1, Reps: 5, Weight: 100, Unit: domain.WeightUnitKG,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, updated.Sets[0].ULID)

	// A client retry carrying the same ULID does not duplicate the set.
	retried := domain.LoggedSet{
		ULID:       "01J0000000000000000000TEST",
		ExerciseID: "ex-squat", SetIndex: 2, Reps: 5, Weight: 100, Unit: domain.WeightUnitKG,
	}
	_, err = f.svc.LogSet(ctx, "u1", session.ID, retried)
	require.NoError(t, err)
	again, err := f.svc.LogSet(ctx, "u1", session.ID, retried)
	require.NoError(t, err)
	assert.Len(t, again.Sets, 2)
}

func TestLogSetDefaultsUnitAndValidates(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	session, err := f.svc.StartAdHoc(ctx, "u1", "")
	require.NoError(t, err)

	updated, err := f.svc.LogSet(ctx, "u1", session.ID, domain.LoggedSet{
		ExerciseID: "ex-squat", SetIndex: 1, Reps: 5, Weight: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.WeightUnitKG, updated.Sets[0].Unit)

	_, err = f.svc.LogSet(ctx, "u1", session.ID, domain.LoggedSet{
		ExerciseID: "ex-squat", SetIndex: 2, Reps: 0, Weight: 100,
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestFinalizedSessionRejectsEdits(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	session, err := f.svc.StartAdHoc(ctx, "u1", "")
	require.NoError(t, err)
	_, err = f.svc.Finalize(ctx, "u1", session.ID)
	require.NoError(t, err)

	_, err = f.svc.LogSet(ctx, "u1", session.ID, domain.LoggedSet{
		ExerciseID: "ex-squat", SetIndex: 1, Reps: 5, Weight: 100,
	})
	require.ErrorIs(t, err, domain.ErrSessionFinalized)

	_, err = f.svc.Finalize(ctx, "u1", session.ID)
	require.ErrorIs(t, err, domain.ErrSessionFinalized)
}

func TestVoidedSessionRejectsWrites(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	session, err := f.svc.StartAdHoc(ctx, "u1", "")
	require.NoError(t, err)
	_, err = f.svc.LogSet(ctx, "u1", session.ID, domain.LoggedSet{
		ExerciseID: "ex-squat", SetIndex: 1, Reps: 5, Weight: 100, Unit: domain.WeightUnitKG,
	})
	require.NoError(t, err)
	require.NoError(t, f.sessions.Void(ctx, session.ID, time.Now()))

	// A voided session is frozen: it cannot take sets, be finalized into
	// history, or be corrected.
	_, err = f.svc.LogSet(ctx, "u1", session.ID, domain.LoggedSet{
		ExerciseID: "ex-squat", SetIndex: 2, Reps: 5, Weight: 100, Unit: domain.WeightUnitKG,
	})
	require.ErrorIs(t, err, domain.ErrSessionVoided)

	_, err = f.svc.Finalize(ctx, "u1", session.ID)
	require.ErrorIs(t, err, domain.ErrSessionVoided)

	_, err = f.svc.Correct(ctx, "u1", session.ID, nil)
	require.ErrorIs(t, err, domain.ErrSessionVoided)
}

func TestScheduledSessionSkipsEstimatorOnFinalize(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	// Sessions opened from a schedule carry the schedule reference; the
	// estimator runs on workout completion instead.
	session := &domain.WorkoutSession{UserID: "u1", ScheduleID: "sched-1", StartedAt: time.Now()}
	require.NoError(t, f.sessions.Create(ctx, session))
	_, err := f.svc.LogSet(ctx, "u1", session.ID, domain.LoggedSet{
		ExerciseID: "ex-squat", SetIndex: 1, Reps: 5, Weight: 100, Unit: domain.WeightUnitKG,
	})
	require.NoError(t, err)

	_, err = f.svc.Finalize(ctx, "u1", session.ID)
	require.NoError(t, err)

	est, err := f.estimator.Estimate(ctx, "u1", "ex-squat")
	require.NoError(t, err)
	assert.Nil(t, est)
	assert.Empty(t, f.inv.calls)
}

func TestCorrectReplacesSetsAndInvalidates(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	session, err := f.svc.StartAdHoc(ctx, "u1", "")
	require.NoError(t, err)
	_, err = f.svc.LogSet(ctx, "u1", session.ID, domain.LoggedSet{
		ExerciseID: "ex-squat", SetIndex: 1, Reps: 10, Weight: 60, Unit: domain.WeightUnitKG,
	})
	require.NoError(t, err)
	_, err = f.svc.Finalize(ctx, "u1", session.ID)
	require.NoError(t, err)

	// The set was mislogged; the athlete actually squatted 65.
	corrected, err := f.svc.Correct(ctx, "u1", session.ID, []domain.LoggedSet{
		{ExerciseID: "ex-squat", SetIndex: 1, Reps: 10, Weight: 65, Unit: domain.WeightUnitKG},
	})
	require.NoError(t, err)
	assert.InDelta(t, 650, corrected.TotalVolume, 0.001)
	assert.Equal(t, 1, corrected.TotalSets)
	assert.Len(t, f.inv.calls, 2) // finalize + correction

	stored, err := f.sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.InDelta(t, 650, stored.TotalVolume, 0.001)
}

func TestCorrectRequiresFinalized(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	session, err := f.svc.StartAdHoc(ctx, "u1", "")
	require.NoError(t, err)

	_, err = f.svc.Correct(ctx, "u1", session.ID, nil)
	require.ErrorIs(t, err, domain.ErrSessionNotFinalized)
}

func TestSessionOwnership(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	session, err := f.svc.StartAdHoc(ctx, "u1", "")
	require.NoError(t, err)

	_, err = f.svc.GetByID(ctx, "intruder", session.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)
}
