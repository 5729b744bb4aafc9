package domain

import "testing"

func validBlock(start, weeks int) PeriodizationBlock {
	return PeriodizationBlock{
		StartWeek:     start,
		DurationWeeks: weeks,
		Kind:          PeriodizationLinear,
		Rows: []ModifierRow{
			{Week: 0, Weekday: AnyWeekday, Intensity: 1.0, Volume: 1.0},
		},
		Assignments: []DayAssignment{
			{Weekday: 0, TemplateID: "tmpl-1"},
		},
	}
}

func TestProgramValidate(t *testing.T) {
	tests := []struct {
		name    string
		program Program
		wantErr bool
	}{
		{
			name:    "single block",
			program: Program{Name: "SL 5x5", Blocks: []PeriodizationBlock{validBlock(0, 4)}},
		},
		{
			name:    "contiguous blocks",
			program: Program{Name: "base+peak", Blocks: []PeriodizationBlock{validBlock(0, 4), validBlock(4, 2)}},
		},
		{
			name:    "gap between blocks",
			program: Program{Name: "gap", Blocks: []PeriodizationBlock{validBlock(0, 4), validBlock(5, 2)}},
			wantErr: true,
		},
		{
			name:    "overlapping blocks",
			program: Program{Name: "overlap", Blocks: []PeriodizationBlock{validBlock(0, 4), validBlock(3, 2)}},
			wantErr: true,
		},
		{
			name:    "no blocks",
			program: Program{Name: "empty"},
			wantErr: true,
		},
		{
			name:    "missing name",
			program: Program{Blocks: []PeriodizationBlock{validBlock(0, 1)}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.program.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBlockValidate(t *testing.T) {
	b := validBlock(0, 4)
	b.Kind = PeriodizationBlockPhase
	if err := b.Validate(); err != nil {
		t.Fatalf("valid block-phase block rejected: %v", err)
	}
	b.Rows = append(b.Rows, ModifierRow{Week: 1, Weekday: AnyWeekday, Intensity: 1, Volume: 1})
	if err := b.Validate(); err == nil {
		t.Fatal("block-phase block with two modifier rows accepted")
	}
}

func TestCycleLength(t *testing.T) {
	b := PeriodizationBlock{
		Rows: []ModifierRow{
			{Week: 0, Weekday: 0, Intensity: 0.9, Volume: 1.1},
			{Week: 0, Weekday: 3, Intensity: 1.05, Volume: 0.8},
			{Week: 1, Weekday: AnyWeekday, Intensity: 1.0, Volume: 1.0},
		},
	}
	if got := b.CycleLength(); got != 2 {
		t.Errorf("CycleLength() = %d, want 2", got)
	}
}

func TestProgramDurationWeeks(t *testing.T) {
	p := Program{Blocks: []PeriodizationBlock{validBlock(0, 4), validBlock(4, 3)}}
	if got := p.DurationWeeks(); got != 7 {
		t.Errorf("DurationWeeks() = %d, want 7", got)
	}
}
