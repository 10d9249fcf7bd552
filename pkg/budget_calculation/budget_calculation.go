package budget_calculation

import (
	"time"

	"github.com/klokku/dailybudget/internal/event_bus"
	"github.com/shopspring/decimal"
)

// Record is the stored summary of one calculation.
type Record struct {
	Id               string
	UserId           string
	CalculatedAt     time.Time
	TargetDate       time.Time
	MonthlyIncome    decimal.Decimal
	DailyBudget      float64
	Confidence       float64
	RiskScore        float64
	IncomeTier       string
	DataQuality      string
	AlgorithmVersion string
	Fallback         bool
}

func recordFromEvent(e event_bus.BudgetCalculated) Record {
	return Record{
		Id:               e.CalculationId,
		UserId:           e.UserId,
		CalculatedAt:     e.CalculatedAt,
		TargetDate:       e.TargetDate,
		MonthlyIncome:    e.MonthlyIncome,
		DailyBudget:      e.DailyBudget,
		Confidence:       e.Confidence,
		RiskScore:        e.RiskScore,
		IncomeTier:       e.IncomeTier,
		DataQuality:      e.DataQuality,
		AlgorithmVersion: e.AlgorithmVersion,
		Fallback:         e.Fallback,
	}
}
