package domain

import (
	"context"
	"errors"
	"time"
)

var ErrProgramNotFound = errors.New("program not found")

type PeriodizationKind string

const (
	PeriodizationLinear     PeriodizationKind = "linear"
	PeriodizationUndulating PeriodizationKind = "undulating"
	PeriodizationBlockPhase PeriodizationKind = "block"
)

// AnyWeekday marks a modifier row that applies to every training day of its
// week, instead of a single weekday offset.
const AnyWeekday = -1

// ModifierRow is one entry of a block's intensity/volume table. Week is a
// 0-based offset within the block (for undulating blocks, within the cycle);
// Weekday is a 0-6 day offset or AnyWeekday.
type ModifierRow struct {
	Week      int     `json:"week" bson:"week"`
	Weekday   int     `json:"weekday" bson:"weekday"`
	Intensity float64 `json:"intensity" bson:"intensity"` // multiplier on percent-of-max prescriptions
	Volume    float64 `json:"volume" bson:"volume"`       // multiplier on prescribed set counts
	Note      string  `json:"note,omitempty" bson:"note,omitempty"`
}

// DayAssignment places a template on a day offset (0-6 relative to the
// program start date) within every week of a block. Order disambiguates
// multiple templates on the same day.
type DayAssignment struct {
	Weekday    int    `json:"weekday" bson:"weekday"`
	TemplateID string `json:"template_id" bson:"template_id"`
	Order      int    `json:"order" bson:"order"`
}

// PeriodizationBlock is a contiguous multi-week phase of a program. It owns
// its modifier table and template assignments; templates are referenced by ID
// so one template can appear in many blocks.
type PeriodizationBlock struct {
	Name          string            `json:"name,omitempty" bson:"name,omitempty"`
	StartWeek     int               `json:"start_week" bson:"start_week"` // 0-based offset from program start
	DurationWeeks int               `json:"duration_weeks" bson:"duration_weeks"`
	Kind          PeriodizationKind `json:"kind" bson:"kind"`
	Rows          []ModifierRow     `json:"rows" bson:"rows"`
	Assignments   []DayAssignment   `json:"assignments" bson:"assignments"`
}

func (b *PeriodizationBlock) Validate() error {
	if b.DurationWeeks < 1 {
		return invalid("block.duration_weeks", "block must span at least one week")
	}
	if b.StartWeek < 0 {
		return invalid("block.start_week", "start week must not be negative")
	}
	switch b.Kind {
	case PeriodizationLinear, PeriodizationUndulating, PeriodizationBlockPhase:
	default:
		return invalid("block.kind", "unknown periodization kind")
	}
	if b.Kind == PeriodizationBlockPhase && len(b.Rows) > 1 {
		return invalid("block.rows", "block-phase periodization uses a single modifier row")
	}
	for _, row := range b.Rows {
		if row.Week < 0 {
			return invalid("block.rows", "modifier week must not be negative")
		}
		if row.Weekday != AnyWeekday && (row.Weekday < 0 || row.Weekday > 6) {
			return invalid("block.rows", "modifier weekday must be 0-6 or apply to the whole week")
		}
		if row.Intensity <= 0 || row.Volume <= 0 {
			return invalid("block.rows", "modifiers must be positive")
		}
	}
	if len(b.Assignments) == 0 {
		return invalid("block.assignments", "block assigns no templates")
	}
	for _, a := range b.Assignments {
		if a.Weekday < 0 || a.Weekday > 6 {
			return invalid("block.assignments", "assignment weekday must be 0-6")
		}
		if a.TemplateID == "" {
			return invalid("block.assignments", "assignment template reference is required")
		}
	}
	return nil
}

// CycleLength is the undulating repeat length: the number of distinct week
// offsets in the modifier table.
func (b *PeriodizationBlock) CycleLength() int {
	maxWeek := 0
	for _, row := range b.Rows {
		if row.Week > maxWeek {
			maxWeek = row.Week
		}
	}
	return maxWeek + 1
}

// Program is an ordered sequence of non-overlapping periodization blocks
// spanning a contiguous week range.
type Program struct {
	ID        string               `json:"id" bson:"_id,omitempty"`
	UserID    string               `json:"user_id" bson:"user_id"`
	Name      string               `json:"name" bson:"name"`
	Notes     string               `json:"notes,omitempty" bson:"notes,omitempty"`
	Blocks    []PeriodizationBlock `json:"blocks" bson:"blocks"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time            `json:"updated_at" bson:"updated_at"`
}

// DurationWeeks is the total week span covered by the program's blocks.
func (p *Program) DurationWeeks() int {
	weeks := 0
	for _, b := range p.Blocks {
		if end := b.StartWeek + b.DurationWeeks; end > weeks {
			weeks = end
		}
	}
	return weeks
}

func (p *Program) Validate() error {
	if p.Name == "" {
		return invalid("program.name", "name is required")
	}
	if len(p.Blocks) == 0 {
		return invalid("program.blocks", "program needs at least one block")
	}
	next := 0
	for i := range p.Blocks {
		b := &p.Blocks[i]
		if err := b.Validate(); err != nil {
			return err
		}
		// Blocks must be ordered, contiguous and non-overlapping.
		if b.StartWeek != next {
			return invalid("program.blocks", "blocks must form a contiguous non-overlapping week range")
		}
		next = b.StartWeek + b.DurationWeeks
	}
	return nil
}

type ProgramRepository interface {
	Create(ctx context.Context, program *Program) error
	GetByID(ctx context.Context, id string) (*Program, error)
	ListByUser(ctx context.Context, userID string) ([]*Program, error)
	Update(ctx context.Context, program *Program) error
	Delete(ctx context.Context, id string) error
}
