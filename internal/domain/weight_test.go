package domain

import (
	"math"
	"testing"
)

func TestWeightSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    WeightSpec
		wantErr bool
	}{
		{name: "valid static kg", spec: StaticWeight(100, WeightUnitKG)},
		{name: "valid static lbs", spec: StaticWeight(225, WeightUnitLBS)},
		{name: "static zero weight", spec: StaticWeight(0, WeightUnitKG), wantErr: true},
		{name: "static bad unit", spec: WeightSpec{Kind: WeightKindStatic, Value: 50, Unit: "stone"}, wantErr: true},
		{name: "valid percent", spec: PercentOfMax(80, "squat")},
		{name: "percent at upper bound", spec: PercentOfMax(200, "squat")},
		{name: "percent above bound", spec: PercentOfMax(200.5, "squat"), wantErr: true},
		{name: "percent zero", spec: PercentOfMax(0, "squat"), wantErr: true},
		{name: "percent missing reference", spec: WeightSpec{Kind: WeightKindPercentOfMax, Percent: 75}, wantErr: true},
		{name: "valid rir", spec: RIRTarget(2)},
		{name: "rir zero", spec: RIRTarget(0)},
		{name: "rir out of range", spec: RIRTarget(11), wantErr: true},
		{name: "unknown kind", spec: WeightSpec{Kind: "dynamic"}, wantErr: true},
		// Invalid combinations must be rejected even if the active variant is fine.
		{name: "rir with percent field", spec: WeightSpec{Kind: WeightKindRIRTarget, TargetRIR: 2, Percent: 80}, wantErr: true},
		{name: "static with reference", spec: WeightSpec{Kind: WeightKindStatic, Value: 60, Unit: WeightUnitKG, ReferenceExerciseID: "bench"}, wantErr: true},
		{name: "percent with static value", spec: WeightSpec{Kind: WeightKindPercentOfMax, Percent: 70, ReferenceExerciseID: "squat", Value: 100}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConvertWeight(t *testing.T) {
	if got := ConvertWeight(100, WeightUnitKG, WeightUnitKG); got != 100 {
		t.Errorf("same-unit conversion changed value: %v", got)
	}
	lbs := ConvertWeight(100, WeightUnitKG, WeightUnitLBS)
	if math.Abs(lbs-220.462) > 0.01 {
		t.Errorf("100 kg = %v lbs, want ~220.462", lbs)
	}
	back := ConvertWeight(lbs, WeightUnitLBS, WeightUnitKG)
	if math.Abs(back-100) > 1e-9 {
		t.Errorf("round trip lost precision: %v", back)
	}
}
