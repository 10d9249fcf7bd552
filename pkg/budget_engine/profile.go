package budget_engine

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

type Goal string

const (
	GoalSaveMore   Goal = "save_more"
	GoalPayOffDebt Goal = "pay_off_debt"
	GoalInvesting  Goal = "investing"
)

type Habit string

const (
	HabitImpulseBuying    Habit = "impulse_buying"
	HabitNoBudgeting      Habit = "no_budgeting"
	HabitCreditDependency Habit = "credit_dependency"
	// HabitWeekendSpending is never self-reported, it is only detected from transactions.
	HabitWeekendSpending Habit = "weekend_spending"
)

// Profile is the user's financial snapshot. The engine only reads it.
type Profile struct {
	MonthlyIncome decimal.Decimal
	Goals         []Goal
	Habits        []Habit
}

func (p Profile) HasGoal(goal Goal) bool {
	return slices.Contains(p.Goals, goal)
}

func (p Profile) HasHabit(habit Habit) bool {
	return slices.Contains(p.Habits, habit)
}

// distinct returns a copy with repeated goals and habits dropped, first occurrence kept.
func (p Profile) distinct() Profile {
	p.Goals = distinctTags(p.Goals)
	p.Habits = distinctTags(p.Habits)
	return p
}

func distinctTags[T comparable](tags []T) []T {
	if len(tags) < 2 {
		return tags
	}
	seen := make(map[T]struct{}, len(tags))
	unique := make([]T, 0, len(tags))
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		unique = append(unique, tag)
	}
	return unique
}

type Transaction struct {
	Amount decimal.Decimal
	Date   time.Time
}

// Input is everything a single calculation needs. Zero values mean "not provided".
type Input struct {
	Profile      Profile
	TargetDate   time.Time
	UserId       string
	Transactions []Transaction
	UserMetrics  map[string]any
	// AdvancedFeatures enables the transaction based stages. nil means enabled.
	AdvancedFeatures *bool
}

func (in Input) advancedFeaturesEnabled() bool {
	return in.AdvancedFeatures == nil || *in.AdvancedFeatures
}
