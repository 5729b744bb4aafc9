package service

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mansoorceksport/periodize/internal/domain"
)

// SessionService owns workout session logging: ad hoc starts, per-set
// appends, finalization with derived totals, and corrective edits on
// finalized sessions. Scheduled sessions are opened by the schedule service;
// everything after the open goes through here.
type SessionService struct {
	sessions    domain.SessionRepository
	schedules   domain.ScheduleRepository
	estimator   *OneRepMaxEstimator
	invalidator DayInvalidator
	now         func() time.Time
}

func NewSessionService(
	sessions domain.SessionRepository,
	schedules domain.ScheduleRepository,
	estimator *OneRepMaxEstimator,
	invalidator DayInvalidator,
) *SessionService {
	return &SessionService{
		sessions:    sessions,
		schedules:   schedules,
		estimator:   estimator,
		invalidator: invalidator,
		now:         time.Now,
	}
}

// StartAdHoc opens a session outside of any scheduled workout. TemplateID is
// optional; an empty value means free training.
func (s *SessionService) StartAdHoc(ctx context.Context, userID, templateID string) (*domain.WorkoutSession, error) {
	now := s.now()
	session := &domain.WorkoutSession{
		UserID:     userID,
		TemplateID: templateID,
		StartedAt:  now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetByID fetches a session with an ownership check.
func (s *SessionService) GetByID(ctx context.Context, userID, sessionID string) (*domain.WorkoutSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return session, nil
}

// LogSet appends one executed set to an open session.
func (s *SessionService) LogSet(ctx context.Context, userID, sessionID string, set domain.LoggedSet) (*domain.WorkoutSession, error) {
	session, err := s.GetByID(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Voided() {
		return nil, domain.ErrSessionVoided
	}
	if session.Finalized() {
		return nil, domain.ErrSessionFinalized
	}
	if err := validateLoggedSet(set); err != nil {
		return nil, err
	}
	if set.Unit == "" {
		set.Unit = domain.WeightUnitKG
	}
	if set.ULID == "" {
		set.ULID = ulid.Make().String()
	} else {
		// A retried append with the same ULID is a no-op.
		for _, existing := range session.Sets {
			if existing.ULID == set.ULID {
				return session, nil
			}
		}
	}
	if err := s.sessions.AppendSet(ctx, session.ID, set); err != nil {
		return nil, err
	}
	session.Sets = append(session.Sets, set)
	return session, nil
}

// Finalize closes an open session: totals are derived from the logged sets
// and stamped alongside completed_at in one write. Ad hoc sessions feed the
// max estimator here; scheduled ones do it on workout completion so a
// completed schedule and its estimates move together.
func (s *SessionService) Finalize(ctx context.Context, userID, sessionID string) (*domain.WorkoutSession, error) {
	session, err := s.GetByID(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Voided() {
		return nil, domain.ErrSessionVoided
	}
	if session.Finalized() {
		return nil, domain.ErrSessionFinalized
	}

	completedAt := s.now()
	session.ComputeTotals()
	if err := s.sessions.Finalize(ctx, session.ID, completedAt, session.TotalVolume, session.TotalSets); err != nil {
		return nil, err
	}
	session.CompletedAt = &completedAt

	if session.ScheduleID == "" {
		for _, set := range session.Sets {
			if set.Weight <= 0 || set.Reps < 1 {
				continue
			}
			weightKG := domain.ConvertWeight(set.Weight, set.Unit, domain.WeightUnitKG)
			if _, err := s.estimator.Update(ctx, userID, set.ExerciseID, set.Reps, weightKG); err != nil {
				return nil, fmt.Errorf("update max estimate for %s: %w", set.ExerciseID, err)
			}
		}
		if err := s.invalidator.InvalidateDay(ctx, userID, completedAt); err != nil {
			return nil, err
		}
	}
	return session, nil
}

// Correct replaces the full set list of a finalized session and re-derives
// its totals. The affected day's aggregates are invalidated so the next read
// recomputes them.
func (s *SessionService) Correct(ctx context.Context, userID, sessionID string, sets []domain.LoggedSet) (*domain.WorkoutSession, error) {
	session, err := s.GetByID(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Voided() {
		return nil, domain.ErrSessionVoided
	}
	if !session.Finalized() {
		return nil, domain.ErrSessionNotFinalized
	}
	for _, set := range sets {
		if err := validateLoggedSet(set); err != nil {
			return nil, err
		}
	}
	for i := range sets {
		if sets[i].Unit == "" {
			sets[i].Unit = domain.WeightUnitKG
		}
		if sets[i].ULID == "" {
			sets[i].ULID = ulid.Make().String()
		}
	}

	session.Sets = sets
	session.ComputeTotals()
	if err := s.sessions.ReplaceSets(ctx, session.ID, sets, session.TotalVolume, session.TotalSets); err != nil {
		return nil, err
	}
	if err := s.invalidator.InvalidateDay(ctx, userID, *session.CompletedAt); err != nil {
		return nil, err
	}
	return session, nil
}

func validateLoggedSet(set domain.LoggedSet) error {
	if set.ExerciseID == "" {
		return &domain.ValidationError{Field: "set.exercise_id", Reason: "exercise reference is required"}
	}
	if set.SetIndex < 1 {
		return &domain.ValidationError{Field: "set.set_index", Reason: "set index must be 1-based"}
	}
	if set.Reps < 1 {
		return &domain.ValidationError{Field: "set.reps", Reason: "logged reps must be at least 1"}
	}
	if set.Weight < 0 {
		return &domain.ValidationError{Field: "set.weight", Reason: "weight must not be negative"}
	}
	if set.Unit != "" && set.Unit != domain.WeightUnitKG && set.Unit != domain.WeightUnitLBS {
		return &domain.ValidationError{Field: "set.unit", Reason: "unit must be kg or lbs"}
	}
	if set.RIR != nil && (*set.RIR < 0 || *set.RIR > 10) {
		return &domain.ValidationError{Field: "set.rir", Reason: "RIR must be in [0, 10]"}
	}
	return nil
}
