package budget_engine

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/klokku/dailybudget/internal/utils"
	log "github.com/sirupsen/logrus"
)

const DefaultDaysInMonth = 30

type MonthLength string

const (
	// MonthLengthFixed spreads the monthly budget over DefaultDaysInMonth days.
	MonthLengthFixed MonthLength = "fixed"
	// MonthLengthCalendar uses the number of days in the target date's month.
	MonthLengthCalendar MonthLength = "calendar"
)

type Settings struct {
	MonthLength      MonthLength
	ReasonMode       ReasonMode
	AlgorithmVersion string
	MaxInsights      int
}

func DefaultSettings() Settings {
	return Settings{
		MonthLength:      MonthLengthFixed,
		ReasonMode:       ReasonModeLast,
		AlgorithmVersion: DefaultAlgorithmVersion,
		MaxInsights:      DefaultMaxInsights,
	}
}

// Engine computes daily budgets. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	settings Settings
	pipeline *Pipeline
	clock    utils.Clock
}

func NewEngine(settings Settings, clock utils.Clock) *Engine {
	if settings.MonthLength == "" {
		settings.MonthLength = MonthLengthFixed
	}
	if settings.ReasonMode == "" {
		settings.ReasonMode = ReasonModeLast
	}
	if settings.AlgorithmVersion == "" {
		settings.AlgorithmVersion = DefaultAlgorithmVersion
	}
	if settings.MaxInsights <= 0 || settings.MaxInsights > DefaultMaxInsights {
		settings.MaxInsights = DefaultMaxInsights
	}
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &Engine{
		settings: settings,
		pipeline: NewPipeline(settings.ReasonMode),
		clock:    clock,
	}
}

func (e *Engine) Settings() Settings {
	return e.settings
}

// Calculate always returns a usable result. Invalid input, stage errors and panics are logged
// and replaced by the fixed ratio fallback.
func (e *Engine) Calculate(in Input) (result CalculationResult) {
	// goals and habits are sets
	in.Profile = in.Profile.distinct()
	now := e.clock.Now()
	targetDate := in.TargetDate
	if targetDate.IsZero() {
		targetDate = now
	}
	income := in.Profile.MonthlyIncome.InexactFloat64()

	metadata := Metadata{
		CalculationId:           uuid.NewString(),
		CalculatedAt:            now,
		TargetDate:              targetDate,
		UserId:                  in.UserId,
		AdvancedFeaturesEnabled: in.advancedFeaturesEnabled(),
		DataQuality:             dataQualityFor(len(in.Transactions)),
		AlgorithmVersion:        e.settings.AlgorithmVersion,
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("budget calculation panicked: %v", r)
			log.Errorf("Falling back to basic budget for user %q: %v", in.UserId, err)
			result = fallbackResult(income, metadata, err)
		}
	}()

	calculated, err := e.calculate(in, income, targetDate, metadata)
	if err != nil {
		log.Warnf("Falling back to basic budget for user %q: %v", in.UserId, err)
		return fallbackResult(income, metadata, err)
	}
	return calculated
}

func (e *Engine) calculate(in Input, income float64, targetDate time.Time, metadata Metadata) (CalculationResult, error) {
	if math.IsNaN(income) || math.IsInf(income, 0) || income < 0 {
		return CalculationResult{}, fmt.Errorf("monthly income %v: %w", income, ErrInvalidIncome)
	}
	daysInMonth := e.daysInMonth(targetDate)

	classification := ClassifyIncome(income)
	base := AllocateBase(income, classification, daysInMonth)
	log.Debugf("Income %.2f classified as %s (in transition: %t), base daily amount %.2f",
		income, classification.PrimaryTier, classification.InTransition, base.BaseAmount)

	enhanced, err := e.pipeline.Apply(StageInput{
		Base:         base,
		Profile:      in.Profile,
		TargetDate:   targetDate,
		Transactions: in.Transactions,
		Advanced:     in.advancedFeaturesEnabled(),
	})
	if err != nil {
		return CalculationResult{}, fmt.Errorf("adjustment pipeline failed: %w", err)
	}

	risk := ScoreRisk(enhanced, in.Profile, daysInMonth)
	insights := GenerateInsights(InsightContext{
		Classification:   classification,
		Enhanced:         enhanced,
		Profile:          in.Profile,
		TransactionCount: len(in.Transactions),
	}, e.settings.MaxInsights)

	metadata.IncomeTier = classification.PrimaryTier.String()
	return assembleResult(assembly{
		classification: classification,
		enhanced:       enhanced,
		insights:       insights,
		risk:           risk,
		metadata:       metadata,
	}), nil
}

func (e *Engine) daysInMonth(targetDate time.Time) int {
	if e.settings.MonthLength == MonthLengthCalendar {
		return time.Date(targetDate.Year(), targetDate.Month()+1, 0, 0, 0, 0, 0, targetDate.Location()).Day()
	}
	return DefaultDaysInMonth
}
