package budget_engine

import (
	"fmt"
	"math"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	baseConfidence = 0.8

	// minTransactionsForBehavior gates the transaction based stages.
	minTransactionsForBehavior = 10
	recentTransactionsWindow   = 7

	highVelocityRatio  = 1.5
	lowVelocityRatio   = 0.6
	velocityConfidence = 0.8

	impulseAmountThreshold  = 100.0
	impulseShareThreshold   = 0.2
	weekendShareThreshold   = 0.4
	detectedHabitConfidence = 0.7
)

// ReasonMode decides which reasons a multi-tag stage (goals, habits) reports.
type ReasonMode string

const (
	// ReasonModeLast keeps only the reason of the last matched tag. Multipliers still compound.
	ReasonModeLast ReasonMode = "last"
	// ReasonModeAll reports every matched reason.
	ReasonModeAll ReasonMode = "all"
)

type Adjustment struct {
	Multiplier float64
	Confidence float64
	Reason     string
}

func noAdjustment() Adjustment {
	return Adjustment{Multiplier: 1.0, Confidence: 1.0}
}

type AppliedAdjustment struct {
	Stage string
	Adjustment
}

type EnhancedBudget struct {
	AdjustedDailyBudget float64
	Confidence          float64
	// Enhancements holds the non-empty reasons in stage order.
	Enhancements []string
	Adjustments  []AppliedAdjustment
	Base         BaseBudget
}

// StageInput is what every stage can look at. Stages never see the running budget.
type StageInput struct {
	Base         BaseBudget
	Profile      Profile
	TargetDate   time.Time
	Transactions []Transaction
	Advanced     bool
}

func (in StageInput) behaviorEnabled() bool {
	return in.Advanced && len(in.Transactions) >= minTransactionsForBehavior
}

type Stage struct {
	Name   string
	Adjust func(in StageInput) Adjustment
}

type tagRule[T ~string] struct {
	tag        T
	multiplier float64
	reason     string
}

var goalRules = []tagRule[Goal]{
	{GoalSaveMore, 0.95, "savings goal optimization"},
	{GoalPayOffDebt, 0.92, "debt payoff acceleration"},
	{GoalInvesting, 0.94, "investment goal allocation"},
}

var habitRules = []tagRule[Habit]{
	{HabitImpulseBuying, 0.85, "impulse buying control"},
	{HabitNoBudgeting, 0.90, "budgeting structure support"},
	{HabitCreditDependency, 0.80, "credit dependency reduction"},
}

// Pipeline applies its stages in order on top of a base budget.
type Pipeline struct {
	stages []Stage
}

// NewPipeline builds the standard stage sequence: temporal, goals, habits, spending velocity,
// then the two detected-habit corrections.
func NewPipeline(reasonMode ReasonMode) *Pipeline {
	return &Pipeline{stages: []Stage{
		{Name: "temporal", Adjust: temporalAdjustment},
		{Name: "goals", Adjust: func(in StageInput) Adjustment {
			return tagAdjustment(goalRules, in.Profile.HasGoal, reasonMode)
		}},
		{Name: "habits", Adjust: func(in StageInput) Adjustment {
			return tagAdjustment(habitRules, in.Profile.HasHabit, reasonMode)
		}},
		{Name: "spending_velocity", Adjust: velocityAdjustment},
		{Name: "detected_impulse_buying", Adjust: detectedImpulseAdjustment},
		{Name: "detected_weekend_spending", Adjust: detectedWeekendAdjustment},
	}}
}

func (p *Pipeline) Stages() []Stage {
	return p.stages
}

func (p *Pipeline) Apply(in StageInput) (EnhancedBudget, error) {
	result := EnhancedBudget{
		AdjustedDailyBudget: in.Base.BaseAmount,
		Confidence:          baseConfidence,
		Enhancements:        []string{},
		Base:                in.Base,
	}

	for _, stage := range p.stages {
		adjustment := stage.Adjust(in)
		if math.IsNaN(adjustment.Multiplier) || math.IsInf(adjustment.Multiplier, 0) || adjustment.Multiplier <= 0 {
			return EnhancedBudget{}, fmt.Errorf("stage %s returned multiplier %v: %w", stage.Name, adjustment.Multiplier, ErrInvalidAdjustment)
		}
		if math.IsNaN(adjustment.Confidence) || math.IsInf(adjustment.Confidence, 0) {
			return EnhancedBudget{}, fmt.Errorf("stage %s returned confidence %v: %w", stage.Name, adjustment.Confidence, ErrInvalidAdjustment)
		}

		result.AdjustedDailyBudget *= adjustment.Multiplier
		result.Confidence *= adjustment.Confidence
		if math.IsNaN(result.AdjustedDailyBudget) || math.IsInf(result.AdjustedDailyBudget, 0) {
			return EnhancedBudget{}, fmt.Errorf("after stage %s: %w", stage.Name, ErrNonFiniteBudget)
		}

		if adjustment.Reason != "" {
			result.Enhancements = append(result.Enhancements, adjustment.Reason)
		}
		if adjustment.Multiplier != 1.0 || adjustment.Confidence != 1.0 {
			result.Adjustments = append(result.Adjustments, AppliedAdjustment{Stage: stage.Name, Adjustment: adjustment})
			log.Debugf("Stage %s: multiplier %.4f, confidence %.2f (%s)", stage.Name, adjustment.Multiplier, adjustment.Confidence, adjustment.Reason)
		}
	}

	result.Confidence = clamp01(result.Confidence)
	return result, nil
}

// temporalAdjustment checks weekend, month end and holiday season in that order; the first match wins.
func temporalAdjustment(in StageInput) Adjustment {
	date := in.TargetDate
	switch {
	case date.Weekday() == time.Saturday || date.Weekday() == time.Sunday:
		return Adjustment{Multiplier: 1.15, Confidence: 1.0, Reason: "weekend spending increase"}
	case date.Day() > 25:
		return Adjustment{Multiplier: 0.85, Confidence: 1.0, Reason: "month-end conservation"}
	case date.Month() == time.December && date.Day() > 20:
		return Adjustment{Multiplier: 1.30, Confidence: 1.0, Reason: "holiday season increase"}
	}
	return noAdjustment()
}

func tagAdjustment[T ~string](rules []tagRule[T], present func(T) bool, mode ReasonMode) Adjustment {
	adjustment := noAdjustment()
	var reasons []string
	for _, rule := range rules {
		if !present(rule.tag) {
			continue
		}
		adjustment.Multiplier *= rule.multiplier
		reasons = append(reasons, rule.reason)
	}
	if len(reasons) == 0 {
		return adjustment
	}
	if mode == ReasonModeAll {
		adjustment.Reason = strings.Join(reasons, ", ")
	} else {
		adjustment.Reason = reasons[len(reasons)-1]
	}
	return adjustment
}

// velocityAdjustment compares the average of the most recent transactions with the overall average.
// Transactions are expected newest first.
func velocityAdjustment(in StageInput) Adjustment {
	if !in.behaviorEnabled() {
		return noAdjustment()
	}
	recent := in.Transactions[:min(recentTransactionsWindow, len(in.Transactions))]
	recentAvg := averageAmount(recent)
	historicalAvg := averageAmount(in.Transactions)
	if historicalAvg <= 0 {
		return noAdjustment()
	}

	ratio := recentAvg / historicalAvg
	log.Tracef("Spending velocity ratio: %.3f (recent %.2f, historical %.2f)", ratio, recentAvg, historicalAvg)
	switch {
	case ratio > highVelocityRatio:
		return Adjustment{Multiplier: 0.85, Confidence: velocityConfidence, Reason: "high spending velocity detected"}
	case ratio < lowVelocityRatio:
		return Adjustment{Multiplier: 1.15, Confidence: velocityConfidence, Reason: "low spending velocity - budget increase"}
	}
	return noAdjustment()
}

func detectedImpulseAdjustment(in StageInput) Adjustment {
	if !in.behaviorEnabled() {
		return noAdjustment()
	}
	large := 0
	for _, t := range in.Transactions {
		if t.Amount.InexactFloat64() > impulseAmountThreshold {
			large++
		}
	}
	if float64(large)/float64(len(in.Transactions)) > impulseShareThreshold {
		return Adjustment{Multiplier: 0.90, Confidence: detectedHabitConfidence, Reason: "detected impulse buying pattern"}
	}
	return noAdjustment()
}

func detectedWeekendAdjustment(in StageInput) Adjustment {
	if !in.behaviorEnabled() {
		return noAdjustment()
	}
	weekend := 0
	for _, t := range in.Transactions {
		if wd := t.Date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			weekend++
		}
	}
	if float64(weekend)/float64(len(in.Transactions)) > weekendShareThreshold {
		return Adjustment{Multiplier: 0.95, Confidence: detectedHabitConfidence, Reason: "detected weekend spending pattern"}
	}
	return noAdjustment()
}

func averageAmount(transactions []Transaction) float64 {
	if len(transactions) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range transactions {
		sum += t.Amount.InexactFloat64()
	}
	return sum / float64(len(transactions))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
