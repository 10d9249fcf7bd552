package budget_engine

import "math"

// The fallback keeps its own ratio instead of reusing the tier table so that a defect in the
// main path cannot break it.
const (
	fallbackSpendingRatio = 0.30
	fallbackDaysInMonth   = 30
	fallbackConfidence    = 0.5
	fallbackRisk          = 0.5
	fallbackInsight       = "Using a basic budget estimate; add income and spending details for a personalized budget"
	fallbackExplanation   = "Basic budget calculated as 30% of monthly income spread over 30 days."
	methodologyFallback   = "fallback_fixed_ratio"
)

func fallbackResult(income float64, metadata Metadata, reason error) CalculationResult {
	if math.IsNaN(income) || math.IsInf(income, 0) || income < 0 {
		income = 0
	}
	daily := income * fallbackSpendingRatio / fallbackDaysInMonth

	metadata.Fallback = true
	if reason != nil {
		metadata.FallbackReason = reason.Error()
	}
	return CalculationResult{
		DailyBudget: daily,
		Confidence:  fallbackConfidence,
		Insights:    []string{fallbackInsight},
		RiskScore:   fallbackRisk,
		Explanation: fallbackExplanation,
		Metadata:    metadata,
		Legacy: LegacyFormat{
			TotalDailyBudget:     daily,
			BaseAmount:           daily,
			RedistributionBuffer: daily * redistributionBufferShare,
			FixedCommitments:     income * (1 - fallbackSpendingRatio),
			SavingsTarget:        0,
			Confidence:           fallbackConfidence,
			Methodology:          methodologyFallback,
		},
		Adjustments: []AppliedAdjustment{},
	}
}
