package budget_engine

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultAlgorithmVersion = "2.0.0"

	methodologyEnhanced = "income_tier_adjustment_pipeline"
	// redistributionBufferShare is the part of the daily budget reported as a buffer to legacy consumers.
	redistributionBufferShare = 0.15
)

type DataQuality string

const (
	DataQualityNone   DataQuality = "none"
	DataQualityLow    DataQuality = "low"
	DataQualityMedium DataQuality = "medium"
	DataQualityHigh   DataQuality = "high"
)

func dataQualityFor(transactionCount int) DataQuality {
	switch {
	case transactionCount >= 30:
		return DataQualityHigh
	case transactionCount >= minTransactionsForBehavior:
		return DataQualityMedium
	case transactionCount > 0:
		return DataQualityLow
	}
	return DataQualityNone
}

type Metadata struct {
	CalculationId           string
	CalculatedAt            time.Time
	TargetDate              time.Time
	UserId                  string
	AdvancedFeaturesEnabled bool
	DataQuality             DataQuality
	AlgorithmVersion        string
	IncomeTier              string
	Fallback                bool
	// FallbackReason is the error that selected the fallback, empty otherwise.
	FallbackReason string
}

// LegacyFormat mirrors the result under the field set older consumers expect.
type LegacyFormat struct {
	TotalDailyBudget     float64
	BaseAmount           float64
	RedistributionBuffer float64
	FixedCommitments     float64
	SavingsTarget        float64
	Confidence           float64
	Methodology          string
}

type CalculationResult struct {
	DailyBudget float64
	Confidence  float64
	Insights    []string
	RiskScore   float64
	Explanation string
	Metadata    Metadata
	Legacy      LegacyFormat
	// Adjustments lists the stages that changed the budget, empty for a fallback result.
	Adjustments []AppliedAdjustment
}

type assembly struct {
	classification IncomeClassification
	enhanced       EnhancedBudget
	insights       []string
	risk           float64
	metadata       Metadata
}

func assembleResult(a assembly) CalculationResult {
	daily := a.enhanced.AdjustedDailyBudget
	return CalculationResult{
		DailyBudget: daily,
		Confidence:  a.enhanced.Confidence,
		Insights:    a.insights,
		RiskScore:   a.risk,
		Explanation: explain(daily, a.classification, a.enhanced.Enhancements),
		Metadata:    a.metadata,
		Legacy: LegacyFormat{
			TotalDailyBudget:     daily,
			BaseAmount:           a.enhanced.Base.BaseAmount,
			RedistributionBuffer: daily * redistributionBufferShare,
			FixedCommitments:     a.enhanced.Base.FixedCommitments,
			SavingsTarget:        a.enhanced.Base.SavingsTarget,
			Confidence:           a.enhanced.Confidence,
			Methodology:          methodologyEnhanced,
		},
		Adjustments: a.enhanced.Adjustments,
	}
}

func explain(daily float64, classification IncomeClassification, enhancements []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Your daily budget of %.2f is based on the %s income tier allocation", daily, classification.PrimaryTier.DisplayName())
	if classification.InTransition && classification.SecondaryTier != nil {
		fmt.Fprintf(&sb, " blended with the %s tier", classification.SecondaryTier.DisplayName())
	}
	if len(enhancements) > 0 {
		sb.WriteString(", adjusted for ")
		sb.WriteString(strings.Join(enhancements, ", "))
	}
	sb.WriteString(".")
	return sb.String()
}
