package domain

import (
	"context"
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("workout session not found")

// LoggedSet is one executed set inside a session. Weight 0 means no load was
// recorded (bodyweight work); such sets count toward set totals but not
// volume.
type LoggedSet struct {
	// ULID identifies the set across retries. Clients may supply their own
	// for offline-first dedup; the server assigns one otherwise.
	ULID       string     `json:"ulid,omitempty" bson:"ulid,omitempty"`
	ExerciseID string     `json:"exercise_id" bson:"exercise_id"`
	SetIndex   int        `json:"set_index" bson:"set_index"` // 1-based index (1, 2, 3)
	Reps       int        `json:"reps" bson:"reps"`
	Weight     float64    `json:"weight" bson:"weight"`
	Unit       WeightUnit `json:"unit,omitempty" bson:"unit,omitempty"`
	RIR        *int       `json:"rir,omitempty" bson:"rir,omitempty"`
	Remarks    string     `json:"remarks,omitempty" bson:"remarks,omitempty"`
}

// WorkoutSession is a logged execution, created when the user starts training
// (from a scheduled workout or ad hoc). Immutable once finalized except for
// corrective edits, which must re-trigger aggregation for the affected date.
type WorkoutSession struct {
	ID         string `json:"id" bson:"_id,omitempty"`
	UserID     string `json:"user_id" bson:"user_id"`
	TemplateID string `json:"template_id,omitempty" bson:"template_id,omitempty"`
	ScheduleID string `json:"schedule_id,omitempty" bson:"schedule_id,omitempty"`

	StartedAt   time.Time  `json:"started_at" bson:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	Sets        []LoggedSet `json:"sets" bson:"sets"`

	// Derived at finalization.
	TotalVolume float64 `json:"total_volume" bson:"total_volume"`
	TotalSets   int     `json:"total_sets" bson:"total_sets"`

	// Set when a completed scheduled workout is cancelled as an administrative
	// correction; voided sessions no longer contribute to aggregates.
	VoidedAt *time.Time `json:"voided_at,omitempty" bson:"voided_at,omitempty"`

	Notes     string    `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (s *WorkoutSession) Finalized() bool {
	return s.CompletedAt != nil
}

// Voided reports whether the session was administratively voided. Voided
// sessions are frozen and never count toward aggregates.
func (s *WorkoutSession) Voided() bool {
	return s.VoidedAt != nil
}

// ComputeTotals recalculates the derived volume and set counts from the
// logged sets. Weightless sets are excluded from volume but counted as sets.
func (s *WorkoutSession) ComputeTotals() {
	var volume float64
	for _, set := range s.Sets {
		if set.Weight > 0 && set.Reps > 0 {
			volume += ConvertWeight(set.Weight, set.Unit, WeightUnitKG) * float64(set.Reps)
		}
	}
	s.TotalVolume = volume
	s.TotalSets = len(s.Sets)
}

type SessionRepository interface {
	Create(ctx context.Context, session *WorkoutSession) error
	GetByID(ctx context.Context, id string) (*WorkoutSession, error)
	AppendSet(ctx context.Context, id string, set LoggedSet) error
	// Finalize stamps completed_at and the derived totals in one write; fails
	// with ErrSessionFinalized when already finalized.
	Finalize(ctx context.Context, id string, completedAt time.Time, totalVolume float64, totalSets int) error
	// ReplaceSets is the corrective-edit path for finalized sessions.
	ReplaceSets(ctx context.Context, id string, sets []LoggedSet, totalVolume float64, totalSets int) error
	Void(ctx context.Context, id string, at time.Time) error
	// ListCompletedByDateRange returns finalized, non-voided sessions with
	// completed_at in [from, to), ordered by completion time.
	ListCompletedByDateRange(ctx context.Context, userID string, from, to time.Time) ([]*WorkoutSession, error)
}
