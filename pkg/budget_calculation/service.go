package budget_calculation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/klokku/dailybudget/internal/event_bus"
	"github.com/klokku/dailybudget/internal/utils"
	"github.com/klokku/dailybudget/pkg/budget_engine"
	"github.com/klokku/dailybudget/pkg/user"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

var ErrInvalidLimit = errors.New("invalid history limit")

type Service interface {
	// Calculate runs the engine for the input. The result is always usable; an error is only
	// returned when the context is already cancelled.
	Calculate(ctx context.Context, in budget_engine.Input) (budget_engine.CalculationResult, error)
	History(ctx context.Context, limit int) ([]Record, error)
	PurgeHistory(ctx context.Context, retention time.Duration) (int64, error)
}

type ServiceImpl struct {
	engine   *budget_engine.Engine
	repo     Repository
	eventBus *event_bus.EventBus
	clock    utils.Clock
}

func NewService(engine *budget_engine.Engine, repo Repository, eventBus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{engine: engine, repo: repo, eventBus: eventBus, clock: clock}
}

func (s *ServiceImpl) Calculate(ctx context.Context, in budget_engine.Input) (budget_engine.CalculationResult, error) {
	if err := ctx.Err(); err != nil {
		return budget_engine.CalculationResult{}, err
	}
	// the authenticated user always wins over a user id sent in the body
	uid, err := user.CurrentUid(ctx)
	if err == nil {
		if in.UserId != "" && in.UserId != uid {
			log.Warnf("ignoring user id %q from request, authenticated as %q", in.UserId, uid)
		}
		in.UserId = uid
	}

	result := s.engine.Calculate(in)

	if s.eventBus != nil {
		event := event_bus.NewEvent(ctx, event_bus.BudgetCalculatedEvent, toEvent(uid, in, result))
		if err := s.eventBus.Publish(event); err != nil {
			// history is best effort, the caller still gets the budget
			log.Errorf("failed to publish calculation %s: %v", result.Metadata.CalculationId, err)
		}
	}
	return result, nil
}

func (s *ServiceImpl) History(ctx context.Context, limit int) ([]Record, error) {
	userId, err := user.CurrentUid(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	if limit < 0 || limit > MaxHistoryLimit {
		return nil, fmt.Errorf("%w: %d (allowed 1-%d)", ErrInvalidLimit, limit, MaxHistoryLimit)
	}
	return s.repo.ListForUser(ctx, userId, limit)
}

// PurgeHistory deletes calculations older than the retention period.
func (s *ServiceImpl) PurgeHistory(ctx context.Context, retention time.Duration) (int64, error) {
	before := s.clock.Now().Add(-retention)
	deleted, err := s.repo.DeleteOlderThan(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge history before %s: %w", before.Format(time.RFC3339), err)
	}
	log.Infof("Purged %d calculation(s) older than %s", deleted, before.Format(time.RFC3339))
	return deleted, nil
}

// RegisterHistoryRecorder stores every calculation made for an authenticated user.
func RegisterHistoryRecorder(eventBus *event_bus.EventBus, repo Repository) (unsubscribe func()) {
	return event_bus.SubscribeTyped(eventBus, event_bus.BudgetCalculatedEvent,
		func(e event_bus.EventT[event_bus.BudgetCalculated]) error {
			if e.Data.UserId == "" {
				log.Tracef("skipping anonymous calculation %s", e.Data.CalculationId)
				return nil
			}
			return repo.Store(e.Context(), recordFromEvent(e.Data))
		})
}

// toEvent only carries the authenticated uid, so a user id sent by an anonymous caller is never
// recorded.
func toEvent(uid string, in budget_engine.Input, result budget_engine.CalculationResult) event_bus.BudgetCalculated {
	return event_bus.BudgetCalculated{
		CalculationId:    result.Metadata.CalculationId,
		UserId:           uid,
		CalculatedAt:     result.Metadata.CalculatedAt,
		TargetDate:       result.Metadata.TargetDate,
		MonthlyIncome:    in.Profile.MonthlyIncome,
		DailyBudget:      result.DailyBudget,
		Confidence:       result.Confidence,
		RiskScore:        result.RiskScore,
		IncomeTier:       result.Metadata.IncomeTier,
		DataQuality:      string(result.Metadata.DataQuality),
		AlgorithmVersion: result.Metadata.AlgorithmVersion,
		Fallback:         result.Metadata.Fallback,
	}
}
