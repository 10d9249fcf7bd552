package budget_engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestScoreRisk(t *testing.T) {
	income := decimal.NewFromInt(3000)
	tests := []struct {
		name       string
		daily      float64
		confidence float64
		profile    Profile
		expect     float64
	}{
		{"no risk factors", 30, 0.8, Profile{MonthlyIncome: income}, 0},
		{"moderate budget ratio", 50, 0.8, Profile{MonthlyIncome: income}, 0.1},
		{"ratio exactly 0.4 is not moderate", 40, 0.8, Profile{MonthlyIncome: income}, 0},
		{"high budget ratio", 61, 0.8, Profile{MonthlyIncome: income}, 0.3},
		{"many goals", 30, 0.8, Profile{MonthlyIncome: income, Goals: []Goal{GoalSaveMore, GoalInvesting, GoalPayOffDebt, "travel"}}, 0.2},
		{"three goals are fine", 30, 0.8, Profile{MonthlyIncome: income, Goals: []Goal{GoalSaveMore, GoalInvesting, GoalPayOffDebt}}, 0},
		{"risky habits count once", 30, 0.8, Profile{MonthlyIncome: income, Habits: []Habit{HabitImpulseBuying, HabitCreditDependency}}, 0.3},
		{"low confidence", 30, 0.5, Profile{MonthlyIncome: income}, 0.2},
		{"zero income skips ratio", 30, 0.8, Profile{MonthlyIncome: decimal.Zero}, 0},
		{
			"all factors are clamped",
			100, 0.1,
			Profile{
				MonthlyIncome: income,
				Goals:         []Goal{GoalSaveMore, GoalInvesting, GoalPayOffDebt, "travel"},
				Habits:        []Habit{HabitNoBudgeting},
			},
			1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enhanced := EnhancedBudget{AdjustedDailyBudget: tt.daily, Confidence: tt.confidence}

			got := ScoreRisk(enhanced, tt.profile, DefaultDaysInMonth)

			assert.InDelta(t, tt.expect, got, 1e-12)
		})
	}
}
