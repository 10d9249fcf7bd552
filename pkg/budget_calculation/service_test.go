package budget_calculation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/klokku/dailybudget/internal/event_bus"
	"github.com/klokku/dailybudget/internal/utils"
	"github.com/klokku/dailybudget/pkg/budget_engine"
	"github.com/klokku/dailybudget/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 11, 9, 30, 0, 0, time.UTC)

var ctx = user.WithUser(context.Background(), user.User{Uid: "user-1"})

var repoStub = NewRepositoryStub()

var clock *utils.MockClock

var service *ServiceImpl

func setup(t *testing.T) func() {
	clock = utils.NewMockClock(now)
	eventBus := event_bus.NewEventBus()
	engine := budget_engine.NewEngine(budget_engine.DefaultSettings(), clock)
	service = NewService(engine, repoStub, eventBus, clock)
	unsubscribe := RegisterHistoryRecorder(eventBus, repoStub)
	return func() {
		t.Log("Teardown after test")
		unsubscribe()
		repoStub.Cleanup()
	}
}

func lowIncomeInput() budget_engine.Input {
	return budget_engine.Input{
		Profile: budget_engine.Profile{MonthlyIncome: decimal.NewFromInt(2500)},
	}
}

func TestServiceImpl_Calculate(t *testing.T) {
	t.Run("should calculate and record for the context user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		result, err := service.Calculate(ctx, lowIncomeInput())

		// then
		require.NoError(t, err)
		assert.InDelta(t, 25.0, result.DailyBudget, 1e-9)
		assert.Equal(t, "user-1", result.Metadata.UserId)
		assert.Equal(t, now, result.Metadata.TargetDate)

		records, err := repoStub.ListForUser(ctx, "user-1", 10)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, result.Metadata.CalculationId, records[0].Id)
		assert.Equal(t, "low", records[0].IncomeTier)
		assert.True(t, decimal.NewFromInt(2500).Equal(records[0].MonthlyIncome))
		assert.False(t, records[0].Fallback)
	})

	t.Run("should use the authenticated user over a user id from the request", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		in := lowIncomeInput()
		in.UserId = "someone-else"

		// when
		result, err := service.Calculate(ctx, in)

		// then
		require.NoError(t, err)
		assert.Equal(t, "user-1", result.Metadata.UserId)
		stolen, _ := repoStub.ListForUser(ctx, "someone-else", 10)
		assert.Empty(t, stolen)
		own, _ := repoStub.ListForUser(ctx, "user-1", 10)
		assert.Len(t, own, 1)
	})

	t.Run("should not record a request user id without authentication", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		in := lowIncomeInput()
		in.UserId = "someone-else"

		// when
		result, err := service.Calculate(context.Background(), in)

		// then
		require.NoError(t, err)
		assert.Equal(t, "someone-else", result.Metadata.UserId)
		assert.Empty(t, repoStub.records)
	})

	t.Run("should store the exact monthly income", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		in := lowIncomeInput()
		in.Profile.MonthlyIncome = decimal.RequireFromString("2345.678901234567")

		// when
		_, err := service.Calculate(ctx, in)

		// then
		require.NoError(t, err)
		records, _ := repoStub.ListForUser(ctx, "user-1", 10)
		require.Len(t, records, 1)
		assert.Equal(t, "2345.678901234567", records[0].MonthlyIncome.String())
	})

	t.Run("should not record anonymous calculations", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		result, err := service.Calculate(context.Background(), lowIncomeInput())

		// then
		require.NoError(t, err)
		assert.Empty(t, result.Metadata.UserId)
		assert.Empty(t, repoStub.records)
	})

	t.Run("should record fallback results", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		in := lowIncomeInput()
		in.Profile.MonthlyIncome = decimal.NewFromInt(-100)

		// when
		result, err := service.Calculate(ctx, in)

		// then
		require.NoError(t, err)
		assert.True(t, result.Metadata.Fallback)
		assert.Equal(t, 0.0, result.DailyBudget)
		records, _ := repoStub.ListForUser(ctx, "user-1", 10)
		require.Len(t, records, 1)
		assert.True(t, records[0].Fallback)
	})

	t.Run("should return the result when history storage fails", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		repoStub.Err = errors.New("database unavailable")

		// when
		result, err := service.Calculate(ctx, lowIncomeInput())

		// then
		require.NoError(t, err)
		assert.InDelta(t, 25.0, result.DailyBudget, 1e-9)
	})

	t.Run("should fail for a cancelled context", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		// when
		_, err := service.Calculate(cancelled, lowIncomeInput())

		// then
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestServiceImpl_History(t *testing.T) {
	t.Run("should list newest first with default limit", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		first, _ := service.Calculate(ctx, lowIncomeInput())
		clock.Advance(time.Hour)
		second, _ := service.Calculate(ctx, lowIncomeInput())

		// when
		records, err := service.History(ctx, 0)

		// then
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, second.Metadata.CalculationId, records[0].Id)
		assert.Equal(t, first.Metadata.CalculationId, records[1].Id)
	})

	t.Run("should apply the limit", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		for i := 0; i < 3; i++ {
			_, _ = service.Calculate(ctx, lowIncomeInput())
			clock.Advance(time.Minute)
		}

		// when
		records, err := service.History(ctx, 2)

		// then
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("should reject an out of range limit", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.History(ctx, MaxHistoryLimit+1)

		assert.ErrorIs(t, err, ErrInvalidLimit)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.History(context.Background(), 10)

		assert.ErrorIs(t, err, user.ErrNoUser)
		assert.Contains(t, err.Error(), "failed to get current user")
	})
}

func TestServiceImpl_PurgeHistory(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	// given
	_, _ = service.Calculate(ctx, lowIncomeInput())
	clock.Advance(10 * 24 * time.Hour)
	recent, _ := service.Calculate(ctx, lowIncomeInput())

	// when
	deleted, err := service.PurgeHistory(ctx, 5*24*time.Hour)

	// then
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	records, _ := service.History(ctx, 10)
	require.Len(t, records, 1)
	assert.Equal(t, recent.Metadata.CalculationId, records[0].Id)
}
