package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mansoorceksport/periodize/internal/domain"
)

// DayInvalidator drops memoized per-day aggregates after a write that changes
// what a date's totals should report.
type DayInvalidator interface {
	InvalidateDay(ctx context.Context, userID string, date time.Time) error
}

// ScheduleService owns the scheduled-workout lifecycle: materializing program
// expansions onto the calendar, ad hoc scheduling, and the status transitions
// planned -> in_progress -> completed with the skip/cancel/reschedule side
// paths. The duplicate-slot invariant on (user, date, template) is enforced
// here under a per-slot lock; the Mongo partial unique index backs it up
// across processes.
type ScheduleService struct {
	schedules   domain.ScheduleRepository
	sessions    domain.SessionRepository
	templates   domain.TemplateRepository
	programs    domain.ProgramRepository
	expander    *PeriodizationExpander
	estimator   *OneRepMaxEstimator
	invalidator DayInvalidator
	slotLocks   *keyedMutex
	now         func() time.Time
}

func NewScheduleService(
	schedules domain.ScheduleRepository,
	sessions domain.SessionRepository,
	templates domain.TemplateRepository,
	programs domain.ProgramRepository,
	expander *PeriodizationExpander,
	estimator *OneRepMaxEstimator,
	invalidator DayInvalidator,
) *ScheduleService {
	return &ScheduleService{
		schedules:   schedules,
		sessions:    sessions,
		templates:   templates,
		programs:    programs,
		expander:    expander,
		estimator:   estimator,
		invalidator: invalidator,
		slotLocks:   newKeyedMutex(),
		now:         time.Now,
	}
}

func slotKey(userID string, date time.Time, templateID string) string {
	return userID + "|" + date.Format("2006-01-02") + "|" + templateID
}

// Schedule places a single workout on the calendar outside of any program.
// The prescription is resolved against the user's current max estimates at
// scheduling time.
func (s *ScheduleService) Schedule(ctx context.Context, userID, templateID string, date time.Time) (*domain.ScheduledWorkout, error) {
	tmpl, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if tmpl.UserID != userID {
		return nil, domain.ErrForbidden
	}

	maxes, err := s.maxesFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	prescription, err := s.expander.prescribe(tmpl, identityRow, maxes, domain.WeightUnitKG)
	if err != nil {
		return nil, err
	}

	day := domain.DateOnly(date)
	unlock := s.slotLocks.Lock(slotKey(userID, day, templateID))
	defer unlock()

	occupied, err := s.schedules.FindActiveSlot(ctx, userID, day, templateID)
	if err != nil {
		return nil, err
	}
	if occupied != nil {
		return nil, fmt.Errorf("schedule %s on %s: %w", tmpl.Name, day.Format("2006-01-02"), domain.ErrDuplicateSlot)
	}

	now := s.now()
	workout := &domain.ScheduledWorkout{
		UserID:       userID,
		TemplateID:   templateID,
		Date:         day,
		Status:       domain.ScheduleStatusPlanned,
		Prescription: prescription,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.schedules.Create(ctx, workout); err != nil {
		return nil, err
	}
	return workout, nil
}

// ExpandProgram previews a program expansion without persisting anything.
func (s *ScheduleService) ExpandProgram(ctx context.Context, userID, programID string, startDate time.Time) ([]*domain.ScheduledWorkout, error) {
	in, err := s.expansionInput(ctx, userID, programID, startDate)
	if err != nil {
		return nil, err
	}
	return s.expander.Expand(*in)
}

// ScheduleProgram expands a program from the start date and materializes every
// draft onto the calendar. All targeted slots are verified free before the
// first insert, so a duplicate-slot conflict leaves the calendar untouched.
func (s *ScheduleService) ScheduleProgram(ctx context.Context, userID, programID string, startDate time.Time) ([]*domain.ScheduledWorkout, error) {
	in, err := s.expansionInput(ctx, userID, programID, startDate)
	if err != nil {
		return nil, err
	}

	drafts, err := s.expander.Expand(*in)
	if err != nil {
		return nil, err
	}

	// Hold every target slot's lock across the check-then-insert sequence so
	// an ad hoc Schedule or Reschedule cannot slip into one of the slots
	// mid-placement. Keys are sorted to keep concurrent bulk placements from
	// deadlocking on each other.
	keys := make([]string, 0, len(drafts))
	seen := make(map[string]struct{}, len(drafts))
	for _, d := range drafts {
		key := slotKey(userID, d.Date, d.TemplateID)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		unlock := s.slotLocks.Lock(key)
		defer unlock()
	}

	for _, d := range drafts {
		occupied, err := s.schedules.FindActiveSlot(ctx, userID, d.Date, d.TemplateID)
		if err != nil {
			return nil, err
		}
		if occupied != nil {
			return nil, fmt.Errorf("program slot %s on %s: %w", d.TemplateID, d.Date.Format("2006-01-02"), domain.ErrDuplicateSlot)
		}
	}

	now := s.now()
	inserted := make([]string, 0, len(drafts))
	for _, d := range drafts {
		d.CreatedAt = now
		d.UpdatedAt = now
		if err := s.schedules.Create(ctx, d); err != nil {
			// Another process can still win a slot through the unique index
			// between our check and this insert; undo the partial placement.
			for _, id := range inserted {
				_ = s.schedules.Delete(ctx, id)
			}
			return nil, err
		}
		inserted = append(inserted, d.ID)
	}
	return drafts, nil
}

func (s *ScheduleService) expansionInput(ctx context.Context, userID, programID string, startDate time.Time) (*ExpansionInput, error) {
	program, err := s.programs.GetByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if program.UserID != userID {
		return nil, domain.ErrForbidden
	}

	templates := make(map[string]*domain.WorkoutTemplate)
	for _, block := range program.Blocks {
		for _, a := range block.Assignments {
			if _, ok := templates[a.TemplateID]; ok {
				continue
			}
			tmpl, err := s.templates.GetByID(ctx, a.TemplateID)
			if err != nil {
				return nil, fmt.Errorf("program references template %s: %w", a.TemplateID, err)
			}
			if tmpl.UserID != userID {
				return nil, domain.ErrForbidden
			}
			templates[a.TemplateID] = tmpl
		}
	}

	maxes, err := s.maxesFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ExpansionInput{
		Program:   program,
		StartDate: startDate,
		Templates: templates,
		Maxes:     maxes,
		Unit:      domain.WeightUnitKG,
	}, nil
}

func (s *ScheduleService) maxesFor(ctx context.Context, userID string) (map[string]*domain.OneRepMaxEstimate, error) {
	estimates, err := s.estimator.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	maxes := make(map[string]*domain.OneRepMaxEstimate, len(estimates))
	for _, est := range estimates {
		maxes[est.ExerciseID] = est
	}
	return maxes, nil
}

// GetByID fetches a scheduled workout with an ownership check.
func (s *ScheduleService) GetByID(ctx context.Context, userID, scheduleID string) (*domain.ScheduledWorkout, error) {
	workout, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if workout.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return workout, nil
}

// ListCalendar returns the user's scheduled workouts with dates in [from, to).
func (s *ScheduleService) ListCalendar(ctx context.Context, userID string, from, to time.Time) ([]*domain.ScheduledWorkout, error) {
	return s.schedules.ListByDateRange(ctx, userID, domain.DateOnly(from), domain.DateOnly(to))
}

// Start moves a planned workout to in_progress and opens the session that will
// receive its logged sets. The linking write is conditional on the workout
// still being planned, so two concurrent starts yield exactly one session.
func (s *ScheduleService) Start(ctx context.Context, userID, scheduleID string) (*domain.WorkoutSession, error) {
	workout, err := s.GetByID(ctx, userID, scheduleID)
	if err != nil {
		return nil, err
	}
	if workout.Status != domain.ScheduleStatusPlanned {
		return nil, fmt.Errorf("start from %s: %w", workout.Status, domain.ErrInvalidTransition)
	}

	now := s.now()
	session := &domain.WorkoutSession{
		UserID:     userID,
		TemplateID: workout.TemplateID,
		ScheduleID: workout.ID,
		StartedAt:  now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	if err := s.schedules.SetSession(ctx, workout.ID, session.ID); err != nil {
		return nil, err
	}
	return session, nil
}

// Complete closes an in_progress workout whose session has been finalized.
// Completion feeds every logged set into the max estimator and invalidates
// the day's cached aggregates.
func (s *ScheduleService) Complete(ctx context.Context, userID, scheduleID string) (*domain.ScheduledWorkout, error) {
	workout, err := s.GetByID(ctx, userID, scheduleID)
	if err != nil {
		return nil, err
	}
	if workout.Status != domain.ScheduleStatusInProgress {
		return nil, fmt.Errorf("complete from %s: %w", workout.Status, domain.ErrInvalidTransition)
	}
	session, err := s.sessions.GetByID(ctx, workout.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.Finalized() {
		return nil, domain.ErrSessionNotFinalized
	}

	if err := s.schedules.UpdateStatus(ctx, workout.ID, domain.ScheduleStatusInProgress, domain.ScheduleStatusCompleted); err != nil {
		return nil, err
	}
	workout.Status = domain.ScheduleStatusCompleted

	for _, set := range session.Sets {
		if set.Weight <= 0 || set.Reps < 1 {
			continue
		}
		weightKG := domain.ConvertWeight(set.Weight, set.Unit, domain.WeightUnitKG)
		if _, err := s.estimator.Update(ctx, userID, set.ExerciseID, set.Reps, weightKG); err != nil {
			return nil, fmt.Errorf("update max estimate for %s: %w", set.ExerciseID, err)
		}
	}
	// Aggregates bucket sessions by their completion date, which is not the
	// scheduled date when a missed workout is finished later.
	if err := s.invalidator.InvalidateDay(ctx, userID, *session.CompletedAt); err != nil {
		return nil, err
	}
	return workout, nil
}

// Skip marks a planned workout as skipped. Skipped workouts stay on the
// calendar for adherence reporting but free their slot.
func (s *ScheduleService) Skip(ctx context.Context, userID, scheduleID string) (*domain.ScheduledWorkout, error) {
	workout, err := s.GetByID(ctx, userID, scheduleID)
	if err != nil {
		return nil, err
	}
	if workout.Status != domain.ScheduleStatusPlanned {
		return nil, fmt.Errorf("skip from %s: %w", workout.Status, domain.ErrInvalidTransition)
	}
	if err := s.schedules.UpdateStatus(ctx, workout.ID, domain.ScheduleStatusPlanned, domain.ScheduleStatusSkipped); err != nil {
		return nil, err
	}
	workout.Status = domain.ScheduleStatusSkipped
	return workout, nil
}

// Reschedule moves a planned workout to a new date. The workout stays planned;
// the original date is kept on RescheduledFrom. Moving onto an occupied slot
// fails without touching the workout.
func (s *ScheduleService) Reschedule(ctx context.Context, userID, scheduleID string, newDate time.Time) (*domain.ScheduledWorkout, error) {
	workout, err := s.GetByID(ctx, userID, scheduleID)
	if err != nil {
		return nil, err
	}
	if workout.Status != domain.ScheduleStatusPlanned {
		return nil, fmt.Errorf("reschedule from %s: %w", workout.Status, domain.ErrInvalidTransition)
	}

	day := domain.DateOnly(newDate)
	if day.Equal(workout.Date) {
		return workout, nil
	}

	unlock := s.slotLocks.Lock(slotKey(userID, day, workout.TemplateID))
	defer unlock()

	occupied, err := s.schedules.FindActiveSlot(ctx, userID, day, workout.TemplateID)
	if err != nil {
		return nil, err
	}
	if occupied != nil {
		return nil, fmt.Errorf("reschedule to %s: %w", day.Format("2006-01-02"), domain.ErrDuplicateSlot)
	}

	from := workout.Date
	workout.Date = day
	workout.RescheduledFrom = &from
	workout.UpdatedAt = s.now()
	if err := s.schedules.Update(ctx, workout); err != nil {
		return nil, err
	}
	return workout, nil
}

// Cancel removes a workout from its slot; any status except cancelled itself
// may be cancelled. Cancelling a completed workout is an administrative
// correction: the linked session is voided and its completion day's
// aggregates are invalidated so history no longer counts it. Cancelling an
// in_progress workout voids the open session so it cannot be finalized into
// history later.
func (s *ScheduleService) Cancel(ctx context.Context, userID, scheduleID string) (*domain.ScheduledWorkout, error) {
	workout, err := s.GetByID(ctx, userID, scheduleID)
	if err != nil {
		return nil, err
	}
	switch workout.Status {
	case domain.ScheduleStatusPlanned, domain.ScheduleStatusSkipped:
		if err := s.schedules.UpdateStatus(ctx, workout.ID, workout.Status, domain.ScheduleStatusCancelled); err != nil {
			return nil, err
		}
	case domain.ScheduleStatusInProgress:
		if err := s.schedules.UpdateStatus(ctx, workout.ID, workout.Status, domain.ScheduleStatusCancelled); err != nil {
			return nil, err
		}
		if workout.SessionID != "" {
			if err := s.sessions.Void(ctx, workout.SessionID, s.now()); err != nil {
				return nil, err
			}
		}
	case domain.ScheduleStatusCompleted:
		if err := s.schedules.UpdateStatus(ctx, workout.ID, domain.ScheduleStatusCompleted, domain.ScheduleStatusCancelled); err != nil {
			return nil, err
		}
		// The session counted toward its completion day, not necessarily the
		// scheduled date; that is the memo that must be dropped.
		day := workout.Date
		if workout.SessionID != "" {
			session, err := s.sessions.GetByID(ctx, workout.SessionID)
			if err != nil {
				return nil, err
			}
			if err := s.sessions.Void(ctx, workout.SessionID, s.now()); err != nil {
				return nil, err
			}
			if session.CompletedAt != nil {
				day = *session.CompletedAt
			}
		}
		if err := s.invalidator.InvalidateDay(ctx, userID, day); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("cancel from %s: %w", workout.Status, domain.ErrInvalidTransition)
	}
	workout.Status = domain.ScheduleStatusCancelled
	return workout, nil
}
