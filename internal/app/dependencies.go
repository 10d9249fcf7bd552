package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/dailybudget/internal/config"
	"github.com/klokku/dailybudget/internal/event_bus"
	"github.com/klokku/dailybudget/internal/utils"
	"github.com/klokku/dailybudget/pkg/budget_calculation"
	"github.com/klokku/dailybudget/pkg/budget_engine"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus
	Engine   *budget_engine.Engine

	CalculationRepo    budget_calculation.Repository
	CalculationService *budget_calculation.ServiceImpl
	CalculationHandler *budget_calculation.Handler
}

// BuildDependencies initializes and wires all application services and handlers. A nil db keeps
// the calculation history in memory.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()
	deps.Engine = budget_engine.NewEngine(EngineSettings(cfg.Engine), deps.Clock)

	if db != nil {
		deps.CalculationRepo = budget_calculation.NewRepository(db)
	} else {
		deps.CalculationRepo = budget_calculation.NewRepositoryStub()
	}
	deps.CalculationService = budget_calculation.NewService(deps.Engine, deps.CalculationRepo, deps.EventBus, deps.Clock)
	deps.CalculationHandler = budget_calculation.NewHandler(deps.CalculationService)

	if cfg.History.Enabled {
		budget_calculation.RegisterHistoryRecorder(deps.EventBus, deps.CalculationRepo)
	}

	return deps
}

// EngineSettings maps the engine configuration section. Unknown values fall back to the engine
// defaults with a warning.
func EngineSettings(cfg config.Engine) budget_engine.Settings {
	settings := budget_engine.DefaultSettings()

	switch budget_engine.MonthLength(cfg.MonthLength) {
	case budget_engine.MonthLengthFixed, budget_engine.MonthLengthCalendar:
		settings.MonthLength = budget_engine.MonthLength(cfg.MonthLength)
	default:
		log.Warnf("unknown engine.monthlength %q, using %q", cfg.MonthLength, settings.MonthLength)
	}

	switch budget_engine.ReasonMode(cfg.ReasonMode) {
	case budget_engine.ReasonModeLast, budget_engine.ReasonModeAll:
		settings.ReasonMode = budget_engine.ReasonMode(cfg.ReasonMode)
	default:
		log.Warnf("unknown engine.reasonmode %q, using %q", cfg.ReasonMode, settings.ReasonMode)
	}

	if cfg.AlgorithmVersion != "" {
		settings.AlgorithmVersion = cfg.AlgorithmVersion
	}
	switch {
	case cfg.MaxInsights > budget_engine.DefaultMaxInsights:
		log.Warnf("engine.maxinsights %d exceeds the limit of %d, using %d",
			cfg.MaxInsights, budget_engine.DefaultMaxInsights, budget_engine.DefaultMaxInsights)
	case cfg.MaxInsights > 0:
		settings.MaxInsights = cfg.MaxInsights
	}
	return settings
}
