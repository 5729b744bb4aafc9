package service

import (
	"fmt"
	"math"

	"github.com/mansoorceksport/periodize/internal/domain"
)

// WeightResolver converts a set's weight specification plus the lifter's
// current estimated max into an absolute load. Pure; safe for concurrent use.
type WeightResolver struct {
	increment float64
}

// NewWeightResolver creates a resolver rounding percent-of-max loads to the
// given plate increment (kg). Increments vary per gym, so this is
// configuration, not a constant.
func NewWeightResolver(increment float64) *WeightResolver {
	if increment <= 0 {
		increment = 2.5
	}
	return &WeightResolver{increment: increment}
}

// Resolve computes the load for spec in the requested unit. max may be nil;
// it is only consulted for percent-of-max specs, which fail with
// ErrMissingMaxReference without one. RIR-target specs resolve to an
// autoregulated marker, never to a number: callers must check
// ResolvedWeight.Autoregulated.
func (r *WeightResolver) Resolve(spec domain.WeightSpec, max *domain.OneRepMaxEstimate, unit domain.WeightUnit) (domain.ResolvedWeight, error) {
	if unit == "" {
		unit = domain.WeightUnitKG
	}
	if err := spec.Validate(); err != nil {
		return domain.ResolvedWeight{}, err
	}

	switch spec.Kind {
	case domain.WeightKindStatic:
		return domain.ResolvedWeight{
			Value: domain.ConvertWeight(spec.Value, spec.Unit, unit),
			Unit:  unit,
		}, nil

	case domain.WeightKindPercentOfMax:
		if max == nil || max.Value <= 0 {
			return domain.ResolvedWeight{}, fmt.Errorf("resolve %.0f%% of %s: %w",
				spec.Percent, spec.ReferenceExerciseID, domain.ErrMissingMaxReference)
		}
		// Estimates are stored in kg; convert after scaling, round after
		// converting so the increment applies in the requested unit.
		load := domain.ConvertWeight(max.Value*spec.Percent/100, domain.WeightUnitKG, unit)
		return domain.ResolvedWeight{
			Value: r.roundToIncrement(load),
			Unit:  unit,
		}, nil

	default: // domain.WeightKindRIRTarget
		return domain.ResolvedWeight{
			Autoregulated: true,
			TargetRIR:     spec.TargetRIR,
		}, nil
	}
}

func (r *WeightResolver) roundToIncrement(v float64) float64 {
	return math.Round(v/r.increment) * r.increment
}
