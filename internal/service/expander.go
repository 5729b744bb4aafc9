package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mansoorceksport/periodize/internal/domain"
)

// identityRow applies when a block defines no modifier table.
var identityRow = domain.ModifierRow{Weekday: domain.AnyWeekday, Intensity: 1, Volume: 1}

// ExpansionInput carries everything Expand needs, pre-fetched by the caller.
// The expander itself never touches a store, which keeps it pure and lets
// expansions for different programs run fully in parallel.
type ExpansionInput struct {
	Program   *domain.Program
	StartDate time.Time
	Templates map[string]*domain.WorkoutTemplate
	// Maxes holds current 1RM estimates keyed by exercise ID; consulted for
	// percent-of-max set specs.
	Maxes map[string]*domain.OneRepMaxEstimate
	// Unit the prescription is expressed in; defaults to kg.
	Unit domain.WeightUnit
}

// PeriodizationExpander turns a program definition into a deterministic
// ordered sequence of scheduled-workout drafts with computed target weights.
// Expansion is side-effect-free and idempotent: identical inputs yield
// identical drafts. Persisting drafts is the schedule service's job.
type PeriodizationExpander struct {
	resolver *WeightResolver
}

func NewPeriodizationExpander(resolver *WeightResolver) *PeriodizationExpander {
	return &PeriodizationExpander{resolver: resolver}
}

// Expand walks each block in program order and materializes one draft per
// (week, day assignment), dated relative to the start date. Drafts come back
// ordered by date, then by assignment order.
func (e *PeriodizationExpander) Expand(in ExpansionInput) ([]*domain.ScheduledWorkout, error) {
	if in.Program == nil {
		return nil, fmt.Errorf("expand: program is required")
	}
	if err := in.Program.Validate(); err != nil {
		return nil, err
	}
	unit := in.Unit
	if unit == "" {
		unit = domain.WeightUnitKG
	}
	startDate := domain.DateOnly(in.StartDate)

	var drafts []*domain.ScheduledWorkout
	for bi := range in.Program.Blocks {
		block := &in.Program.Blocks[bi]

		assignments := make([]domain.DayAssignment, len(block.Assignments))
		copy(assignments, block.Assignments)
		sort.SliceStable(assignments, func(i, j int) bool {
			if assignments[i].Weekday != assignments[j].Weekday {
				return assignments[i].Weekday < assignments[j].Weekday
			}
			return assignments[i].Order < assignments[j].Order
		})

		for week := 0; week < block.DurationWeeks; week++ {
			for _, assignment := range assignments {
				tmpl, ok := in.Templates[assignment.TemplateID]
				if !ok {
					return nil, fmt.Errorf("expand: template %s: %w", assignment.TemplateID, domain.ErrTemplateNotFound)
				}

				row := modifierFor(block, week, assignment.Weekday)
				prescription, err := e.prescribe(tmpl, row, in.Maxes, unit)
				if err != nil {
					return nil, fmt.Errorf("expand %s week %d: %w", tmpl.Name, block.StartWeek+week+1, err)
				}

				date := startDate.AddDate(0, 0, (block.StartWeek+week)*7+assignment.Weekday)
				drafts = append(drafts, &domain.ScheduledWorkout{
					UserID:       in.Program.UserID,
					TemplateID:   tmpl.ID,
					Date:         date,
					Status:       domain.ScheduleStatusPlanned,
					ProgramID:    in.Program.ID,
					ProgramWeek:  block.StartWeek + week + 1,
					Prescription: prescription,
				})
			}
		}
	}
	return drafts, nil
}

// modifierFor selects the active modifier row for a week/weekday according
// to the block's periodization kind.
func modifierFor(block *domain.PeriodizationBlock, week, weekday int) domain.ModifierRow {
	if len(block.Rows) == 0 {
		return identityRow
	}
	switch block.Kind {
	case domain.PeriodizationLinear:
		// Selected purely by week index: the last row at or before this week.
		row := identityRow
		found := false
		for _, r := range block.Rows {
			if r.Week <= week && (!found || r.Week >= row.Week) {
				row, found = r, true
			}
		}
		return row
	case domain.PeriodizationUndulating:
		cycleWeek := week % block.CycleLength()
		// Exact weekday row wins over a whole-week row.
		var weekRow domain.ModifierRow
		haveWeekRow := false
		for _, r := range block.Rows {
			if r.Week != cycleWeek {
				continue
			}
			if r.Weekday == weekday {
				return r
			}
			if r.Weekday == domain.AnyWeekday {
				weekRow, haveWeekRow = r, true
			}
		}
		if haveWeekRow {
			return weekRow
		}
		return identityRow
	default: // block-phase: the block itself is the phase
		return block.Rows[0]
	}
}

// prescribe resolves one template against a modifier row into planned
// exercises. The intensity modifier scales percent-of-max specs; the volume
// modifier scales prescribed set counts. Static weight values are never
// scaled.
func (e *PeriodizationExpander) prescribe(tmpl *domain.WorkoutTemplate, row domain.ModifierRow, maxes map[string]*domain.OneRepMaxEstimate, unit domain.WeightUnit) ([]domain.PlannedExercise, error) {
	planned := make([]domain.PlannedExercise, 0, len(tmpl.Exercises))
	for _, ex := range tmpl.Exercises {
		specs := scaleSetCount(ex.Sets, row.Volume)

		sets := make([]domain.PlannedSet, 0, len(specs))
		for i, spec := range specs {
			ws := spec.Weight
			if ws.Kind == domain.WeightKindPercentOfMax {
				ws.Percent = clampPercent(ws.Percent * row.Intensity)
			}
			resolved, err := e.resolver.Resolve(ws, maxes[ws.ReferenceExerciseID], unit)
			if err != nil {
				return nil, err
			}
			sets = append(sets, domain.PlannedSet{
				Position:      i + 1,
				Reps:          spec.Reps,
				RepsMax:       spec.RepsMax,
				TargetWeight:  resolved.Value,
				Unit:          resolved.Unit,
				Autoregulated: resolved.Autoregulated,
				TargetRIR:     spec.TargetRIR,
				RestSeconds:   spec.RestSeconds,
			})
		}
		planned = append(planned, domain.PlannedExercise{
			ExerciseID: ex.ExerciseID,
			Name:       ex.Name,
			Position:   ex.Position,
			Sets:       sets,
		})
	}
	return planned, nil
}

// scaleSetCount applies a volume modifier to a set prescription. Shrinking
// drops trailing sets; growing repeats the last set. At least one set always
// survives.
func scaleSetCount(sets []domain.SetSpec, volume float64) []domain.SetSpec {
	if volume == 1 || len(sets) == 0 {
		return sets
	}
	n := int(math.Round(float64(len(sets)) * volume))
	if n < 1 {
		n = 1
	}
	if n <= len(sets) {
		return sets[:n]
	}
	scaled := make([]domain.SetSpec, 0, n)
	scaled = append(scaled, sets...)
	last := sets[len(sets)-1]
	for len(scaled) < n {
		scaled = append(scaled, last)
	}
	return scaled
}

func clampPercent(p float64) float64 {
	if p > 200 {
		return 200
	}
	return p
}
