package budget_engine

import (
	"fmt"
	"math"
)

const DefaultMaxInsights = 4

// InsightContext is the read-only state the insight rules look at.
type InsightContext struct {
	Classification   IncomeClassification
	Enhanced         EnhancedBudget
	Profile          Profile
	TransactionCount int
}

// insightRule returns the insight text and whether it applies.
type insightRule func(ic InsightContext) (string, bool)

// insightPriority lists the rules from most to least important. When more rules apply than
// there are slots, the ones at the end are dropped.
var insightPriority = []insightRule{
	tierInsight,
	adjustmentInsight,
	goalInsight,
	confidenceInsight,
	dataVolumeInsight,
}

func GenerateInsights(ic InsightContext, maxInsights int) []string {
	if maxInsights <= 0 {
		maxInsights = DefaultMaxInsights
	}
	insights := make([]string, 0, maxInsights)
	for _, rule := range insightPriority {
		if len(insights) == maxInsights {
			break
		}
		if text, ok := rule(ic); ok {
			insights = append(insights, text)
		}
	}
	return insights
}

func tierInsight(ic InsightContext) (string, bool) {
	c := ic.Classification
	if c.InTransition && c.SecondaryTier != nil {
		return fmt.Sprintf("Your income is transitioning between %s and %s tiers (%.0f%% %s)",
			c.PrimaryTier.DisplayName(), c.SecondaryTier.DisplayName(), c.PrimaryWeight*100, c.PrimaryTier.DisplayName()), true
	}
	return fmt.Sprintf("Budget optimized for %s income tier", c.PrimaryTier.DisplayName()), true
}

func adjustmentInsight(ic InsightContext) (string, bool) {
	base := ic.Enhanced.Base.BaseAmount
	if base == 0 {
		return "", false
	}
	change := (ic.Enhanced.AdjustedDailyBudget - base) / base * 100
	if math.Abs(change) <= 5 {
		return "", false
	}
	if change > 0 {
		return fmt.Sprintf("Budget increased by %.1f%% based on your profile and timing", change), true
	}
	return fmt.Sprintf("Budget reduced by %.1f%% to support your financial goals", -change), true
}

func goalInsight(ic InsightContext) (string, bool) {
	n := len(ic.Profile.Goals)
	if n == 0 {
		return "", false
	}
	if n == 1 {
		return "Budget aligned with your financial goal", true
	}
	return fmt.Sprintf("Budget aligned with your %d financial goals", n), true
}

func confidenceInsight(ic InsightContext) (string, bool) {
	switch {
	case ic.Enhanced.Confidence > 0.8:
		return "High confidence recommendation based on your data", true
	case ic.Enhanced.Confidence < 0.6:
		return "Recommendation will improve as more spending data becomes available", true
	}
	return "", false
}

func dataVolumeInsight(ic InsightContext) (string, bool) {
	if ic.TransactionCount < 30 {
		return "", false
	}
	return fmt.Sprintf("Personalized using %d recent transactions", ic.TransactionCount), true
}
