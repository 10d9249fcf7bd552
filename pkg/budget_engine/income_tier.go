package budget_engine

import "math"

type IncomeTier int

const (
	TierLow IncomeTier = iota
	TierLowerMiddle
	TierMiddle
	TierUpperMiddle
	TierHigh
)

var incomeTiers = []IncomeTier{TierLow, TierLowerMiddle, TierMiddle, TierUpperMiddle, TierHigh}

// tierBoundaries[i] separates incomeTiers[i] from incomeTiers[i+1].
var tierBoundaries = []float64{3000, 4500, 7000, 12000}

const (
	// transitionWidth is the relative half width of the blending zone around each boundary.
	transitionWidth = 0.15
	// transitionSteepness controls how sharp the sigmoid is inside a zone.
	transitionSteepness = 6.0
)

func (t IncomeTier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierLowerMiddle:
		return "lower_middle"
	case TierMiddle:
		return "middle"
	case TierUpperMiddle:
		return "upper_middle"
	case TierHigh:
		return "high"
	}
	return "unknown"
}

// DisplayName is the human readable form used in insights and explanations.
func (t IncomeTier) DisplayName() string {
	switch t {
	case TierLow:
		return "Low"
	case TierLowerMiddle:
		return "Lower-Middle"
	case TierMiddle:
		return "Middle"
	case TierUpperMiddle:
		return "Upper-Middle"
	case TierHigh:
		return "High"
	}
	return "Unknown"
}

type IncomeClassification struct {
	PrimaryTier     IncomeTier
	SecondaryTier   *IncomeTier
	PrimaryWeight   float64
	SecondaryWeight float64
	// TransitionFactor is the sigmoid position inside the transition zone, 0 outside any zone.
	TransitionFactor float64
	InTransition     bool
}

// ClassifyIncome maps a monthly income to its tier. Near a boundary the result blends the two
// adjacent tiers so that allocation ratios change smoothly. Only the first zone containing the
// income is considered.
func ClassifyIncome(monthlyIncome float64) IncomeClassification {
	if math.IsNaN(monthlyIncome) {
		monthlyIncome = 0
	}
	for i, boundary := range tierBoundaries {
		halfWidth := boundary * transitionWidth
		lower := boundary - halfWidth
		upper := boundary + halfWidth
		if monthlyIncome < lower || monthlyIncome > upper {
			continue
		}

		position := (monthlyIncome - lower) / (upper - lower)
		s := 1 / (1 + math.Exp(-transitionSteepness*(position-0.5)))

		lowerTier := incomeTiers[i]
		higherTier := incomeTiers[i+1]
		if s > 0.5 {
			return IncomeClassification{
				PrimaryTier:      higherTier,
				SecondaryTier:    &lowerTier,
				PrimaryWeight:    s,
				SecondaryWeight:  1 - s,
				TransitionFactor: s,
				InTransition:     true,
			}
		}
		return IncomeClassification{
			PrimaryTier:      lowerTier,
			SecondaryTier:    &higherTier,
			PrimaryWeight:    1 - s,
			SecondaryWeight:  s,
			TransitionFactor: s,
			InTransition:     true,
		}
	}

	tier := TierHigh
	for i, boundary := range tierBoundaries {
		if monthlyIncome < boundary {
			tier = incomeTiers[i]
			break
		}
	}
	return IncomeClassification{
		PrimaryTier:   tier,
		PrimaryWeight: 1.0,
	}
}
