package budget_engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func insightContext(income float64, adjusted float64, confidence float64, goals []Goal, transactions int) InsightContext {
	classification := ClassifyIncome(income)
	base := AllocateBase(income, classification, DefaultDaysInMonth)
	return InsightContext{
		Classification: classification,
		Enhanced: EnhancedBudget{
			AdjustedDailyBudget: adjusted,
			Confidence:          confidence,
			Base:                base,
		},
		Profile:          Profile{Goals: goals},
		TransactionCount: transactions,
	}
}

func TestGenerateInsights(t *testing.T) {
	t.Run("should only describe the tier for a plain calculation", func(t *testing.T) {
		// given
		ic := insightContext(2500, 25, 0.8, nil, 0)

		// when
		insights := GenerateInsights(ic, DefaultMaxInsights)

		// then
		assert.Equal(t, []string{"Budget optimized for Low income tier"}, insights)
	})

	t.Run("should describe a tier transition", func(t *testing.T) {
		ic := insightContext(4500, 0, 0.8, nil, 0)
		ic.Enhanced.AdjustedDailyBudget = ic.Enhanced.Base.BaseAmount

		insights := GenerateInsights(ic, DefaultMaxInsights)

		assert.Equal(t, []string{"Your income is transitioning between Lower-Middle and Middle tiers (50% Lower-Middle)"}, insights)
	})

	t.Run("should follow priority order and drop the last category", func(t *testing.T) {
		// given every category applies
		ic := insightContext(2500, 20, 0.9, []Goal{GoalSaveMore, GoalInvesting}, 45)

		// when
		insights := GenerateInsights(ic, DefaultMaxInsights)

		// then
		assert.Equal(t, []string{
			"Budget optimized for Low income tier",
			"Budget reduced by 20.0% to support your financial goals",
			"Budget aligned with your 2 financial goals",
			"High confidence recommendation based on your data",
		}, insights)
	})

	t.Run("should include data volume when a slot is free", func(t *testing.T) {
		ic := insightContext(2500, 30, 0.5, nil, 30)

		insights := GenerateInsights(ic, DefaultMaxInsights)

		assert.Equal(t, []string{
			"Budget optimized for Low income tier",
			"Budget increased by 20.0% based on your profile and timing",
			"Recommendation will improve as more spending data becomes available",
			"Personalized using 30 recent transactions",
		}, insights)
	})

	t.Run("should skip small adjustments", func(t *testing.T) {
		ic := insightContext(2500, 26, 0.8, []Goal{GoalSaveMore}, 0)

		insights := GenerateInsights(ic, DefaultMaxInsights)

		assert.Equal(t, []string{
			"Budget optimized for Low income tier",
			"Budget aligned with your financial goal",
		}, insights)
	})

	t.Run("should respect a smaller limit", func(t *testing.T) {
		ic := insightContext(2500, 20, 0.9, []Goal{GoalSaveMore}, 45)

		insights := GenerateInsights(ic, 2)

		assert.Len(t, insights, 2)
	})

	t.Run("should skip adjustment insight for zero base", func(t *testing.T) {
		ic := insightContext(0, 0, 0.8, nil, 0)

		insights := GenerateInsights(ic, DefaultMaxInsights)

		assert.Equal(t, []string{"Budget optimized for Low income tier"}, insights)
	})
}
