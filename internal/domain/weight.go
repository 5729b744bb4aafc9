package domain

type WeightUnit string

const (
	WeightUnitKG  WeightUnit = "kg"
	WeightUnitLBS WeightUnit = "lbs"
)

const kgPerPound = 0.45359237

// ConvertWeight converts a weight value between units.
func ConvertWeight(value float64, from, to WeightUnit) float64 {
	if from == to {
		return value
	}
	if from == WeightUnitKG && to == WeightUnitLBS {
		return value / kgPerPound
	}
	return value * kgPerPound
}

type WeightSpecKind string

const (
	WeightKindStatic       WeightSpecKind = "static"
	WeightKindPercentOfMax WeightSpecKind = "percent_of_max"
	WeightKindRIRTarget    WeightSpecKind = "rir_target"
)

// WeightSpec is a tagged variant over static weights, percent-of-max weights
// and RIR-autoregulated weights. Exactly one variant is active, selected by
// Kind; the constructors below are the only way to build a well-formed spec
// and Validate rejects any stray field that does not belong to the active
// variant.
type WeightSpec struct {
	Kind WeightSpecKind `json:"kind" bson:"kind"`

	// static
	Value float64    `json:"value,omitempty" bson:"value,omitempty"`
	Unit  WeightUnit `json:"unit,omitempty" bson:"unit,omitempty"`

	// percent_of_max
	Percent             float64 `json:"percent,omitempty" bson:"percent,omitempty"`
	ReferenceExerciseID string  `json:"reference_exercise_id,omitempty" bson:"reference_exercise_id,omitempty"`

	// rir_target
	TargetRIR int `json:"target_rir,omitempty" bson:"target_rir,omitempty"`
}

// StaticWeight builds a fixed-load spec.
func StaticWeight(value float64, unit WeightUnit) WeightSpec {
	return WeightSpec{Kind: WeightKindStatic, Value: value, Unit: unit}
}

// PercentOfMax builds a spec resolved against the lifter's current estimated
// one-rep-max for the referenced exercise.
func PercentOfMax(percent float64, exerciseID string) WeightSpec {
	return WeightSpec{Kind: WeightKindPercentOfMax, Percent: percent, ReferenceExerciseID: exerciseID}
}

// RIRTarget builds an autoregulated spec: the athlete picks the load live so
// that the target reps-in-reserve is hit.
func RIRTarget(targetRIR int) WeightSpec {
	return WeightSpec{Kind: WeightKindRIRTarget, TargetRIR: targetRIR}
}

func (s WeightSpec) Validate() error {
	switch s.Kind {
	case WeightKindStatic:
		if s.Value <= 0 {
			return invalid("weight.value", "static weight must be positive")
		}
		if s.Unit != WeightUnitKG && s.Unit != WeightUnitLBS {
			return invalid("weight.unit", "unit must be kg or lbs")
		}
		if s.Percent != 0 || s.ReferenceExerciseID != "" || s.TargetRIR != 0 {
			return invalid("weight", "static spec carries percent or RIR fields")
		}
	case WeightKindPercentOfMax:
		if s.Percent <= 0 || s.Percent > 200 {
			return invalid("weight.percent", "percent must be in (0, 200]")
		}
		if s.ReferenceExerciseID == "" {
			return invalid("weight.reference_exercise_id", "percent-of-max requires a reference exercise")
		}
		if s.Value != 0 || s.Unit != "" || s.TargetRIR != 0 {
			return invalid("weight", "percent spec carries static or RIR fields")
		}
	case WeightKindRIRTarget:
		if s.TargetRIR < 0 || s.TargetRIR > 10 {
			return invalid("weight.target_rir", "target RIR must be in [0, 10]")
		}
		if s.Value != 0 || s.Unit != "" || s.Percent != 0 || s.ReferenceExerciseID != "" {
			return invalid("weight", "RIR spec carries static or percent fields")
		}
	default:
		return invalid("weight.kind", "unknown weight spec kind")
	}
	return nil
}

// ResolvedWeight is the outcome of resolving a WeightSpec. Either Value/Unit
// hold a concrete load, or Autoregulated is set and the load is chosen by the
// athlete during the session. Callers must check Autoregulated before reading
// Value.
type ResolvedWeight struct {
	Value         float64    `json:"value" bson:"value"`
	Unit          WeightUnit `json:"unit,omitempty" bson:"unit,omitempty"`
	Autoregulated bool       `json:"autoregulated" bson:"autoregulated"`
	TargetRIR     int        `json:"target_rir,omitempty" bson:"target_rir,omitempty"`
}
