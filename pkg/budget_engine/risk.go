package budget_engine

// riskyHabits are the self-reported habits that raise the risk score.
var riskyHabits = []Habit{HabitImpulseBuying, HabitCreditDependency, HabitNoBudgeting}

// ScoreRisk adds independent risk factors and clamps the sum to [0,1].
func ScoreRisk(enhanced EnhancedBudget, profile Profile, daysInMonth int) float64 {
	risk := 0.0

	income := profile.MonthlyIncome.InexactFloat64()
	if income > 0 {
		budgetRatio := enhanced.AdjustedDailyBudget * float64(daysInMonth) / income
		if budgetRatio > 0.6 {
			risk += 0.3
		} else if budgetRatio > 0.4 {
			risk += 0.1
		}
	}

	if len(profile.Goals) > 3 {
		risk += 0.2
	}

	for _, habit := range riskyHabits {
		if profile.HasHabit(habit) {
			risk += 0.3
			break
		}
	}

	if enhanced.Confidence < 0.6 {
		risk += 0.2
	}

	return clamp01(risk)
}
