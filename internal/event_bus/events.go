package event_bus

import (
	"time"

	"github.com/shopspring/decimal"
)

const BudgetCalculatedEvent EventType = "budget.calculated"

// BudgetCalculated is published after every daily budget calculation, fallbacks included.
type BudgetCalculated struct {
	CalculationId    string
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
