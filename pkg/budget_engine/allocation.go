package budget_engine

type BudgetRatios struct {
	FixedCommitment float64
	SavingsTarget   float64
}

// tierRatios must stay monotonic: fixed burden falls and savings capacity rises with the tier.
var tierRatios = map[IncomeTier]BudgetRatios{
	TierLow:         {FixedCommitment: 0.65, SavingsTarget: 0.05},
	TierLowerMiddle: {FixedCommitment: 0.58, SavingsTarget: 0.08},
	TierMiddle:      {FixedCommitment: 0.52, SavingsTarget: 0.15},
	TierUpperMiddle: {FixedCommitment: 0.45, SavingsTarget: 0.22},
	TierHigh:        {FixedCommitment: 0.40, SavingsTarget: 0.30},
}

func RatiosForTier(tier IncomeTier) BudgetRatios {
	return tierRatios[tier]
}

type BaseBudget struct {
	// BaseAmount is the daily amount before any adjustment.
	BaseAmount        float64
	FixedCommitments  float64
	SavingsTarget     float64
	AvailableSpending float64
	Ratios            BudgetRatios
}

// BlendedRatios returns the ratios of the primary tier, linearly mixed with the secondary tier
// when the classification is in transition.
func BlendedRatios(classification IncomeClassification) BudgetRatios {
	primary := tierRatios[classification.PrimaryTier]
	if !classification.InTransition || classification.SecondaryTier == nil {
		return primary
	}
	secondary := tierRatios[*classification.SecondaryTier]
	return BudgetRatios{
		FixedCommitment: primary.FixedCommitment*classification.PrimaryWeight +
			secondary.FixedCommitment*classification.SecondaryWeight,
		SavingsTarget: primary.SavingsTarget*classification.PrimaryWeight +
			secondary.SavingsTarget*classification.SecondaryWeight,
	}
}

// AllocateBase splits the monthly income into fixed commitments, savings and available spending,
// and spreads the available part over daysInMonth.
func AllocateBase(monthlyIncome float64, classification IncomeClassification, daysInMonth int) BaseBudget {
	if daysInMonth <= 0 {
		daysInMonth = DefaultDaysInMonth
	}
	ratios := BlendedRatios(classification)

	fixed := monthlyIncome * ratios.FixedCommitment
	savings := monthlyIncome * ratios.SavingsTarget
	available := monthlyIncome - fixed - savings

	return BaseBudget{
		BaseAmount:        available / float64(daysInMonth),
		FixedCommitments:  fixed,
		SavingsTarget:     savings,
		AvailableSpending: available,
		Ratios:            ratios,
	}
}
