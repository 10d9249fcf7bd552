package budget_engine

import "errors"

// Input errors. They never reach the caller of Engine.Calculate, they select the fallback.
var (
	// ErrInvalidIncome indicates a negative, NaN or infinite monthly income.
	ErrInvalidIncome = errors.New("invalid monthly income")
)

// Computation errors raised between pipeline stages.
var (
	// ErrInvalidAdjustment indicates a stage produced a multiplier that is not a positive finite number.
	ErrInvalidAdjustment = errors.New("invalid budget adjustment")

	// ErrNonFiniteBudget indicates the running budget or confidence left the real numbers.
	ErrNonFiniteBudget = errors.New("budget is not a finite number")
)
