package budget_calculation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/klokku/dailybudget/internal/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_CalculateDaily(t *testing.T) {
	t.Run("should return the calculation contract", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		handler := NewHandler(service)

		// given
		body := `{
			"monthlyIncome": 2500,
			"goals": ["save_more"],
			"habits": [],
			"targetDate": "2024-12-25",
			"enableAdvancedFeatures": true
		}`
		req := httptest.NewRequest(http.MethodPost, "/api/budget/daily", strings.NewReader(body)).WithContext(ctx)
		rec := httptest.NewRecorder()

		// when
		handler.CalculateDaily(rec, req)

		// then
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		var response CalculationResponseDTO
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		// holiday 1.3, savings goal 0.95
		assert.InDelta(t, 25*1.3*0.95, response.DailyBudget, 1e-9)
		assert.InDelta(t, response.DailyBudget*0.15, response.LegacyFormat.RedistributionBuffer, 1e-9)
		assert.Equal(t, response.DailyBudget, response.LegacyFormat.TotalDailyBudget)
		assert.Equal(t, "income_tier_adjustment_pipeline", response.LegacyFormat.Methodology)
		assert.Equal(t, "user-1", response.Metadata.UserId)
		assert.Equal(t, "none", response.Metadata.DataQuality)
		assert.Equal(t, time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), response.Metadata.TargetDate)
		assert.LessOrEqual(t, len(response.Insights), 4)
		assert.Len(t, response.Adjustments, 2)
		assert.Equal(t, "temporal", response.Adjustments[0].Stage)
	})

	t.Run("should treat missing income as zero", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		handler := NewHandler(service)

		req := httptest.NewRequest(http.MethodPost, "/api/budget/daily", strings.NewReader(`{"goals":[],"habits":[]}`))
		rec := httptest.NewRecorder()

		handler.CalculateDaily(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var response CalculationResponseDTO
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, 0.0, response.DailyBudget)
		assert.False(t, response.Metadata.Fallback)
	})

	t.Run("should fall back for negative income", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		handler := NewHandler(service)

		req := httptest.NewRequest(http.MethodPost, "/api/budget/daily", strings.NewReader(`{"monthlyIncome":-10}`))
		rec := httptest.NewRecorder()

		handler.CalculateDaily(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var response CalculationResponseDTO
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.True(t, response.Metadata.Fallback)
		assert.Equal(t, "fallback_fixed_ratio", response.LegacyFormat.Methodology)
		assert.NotEmpty(t, response.Metadata.FallbackReason)
	})

	t.Run("should ignore a malformed target date", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		handler := NewHandler(service)

		req := httptest.NewRequest(http.MethodPost, "/api/budget/daily", strings.NewReader(`{"monthlyIncome":2500,"targetDate":"next friday"}`))
		rec := httptest.NewRecorder()

		handler.CalculateDaily(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var response CalculationResponseDTO
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.True(t, now.Equal(response.Metadata.TargetDate))
	})

	t.Run("should reject a malformed body", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		handler := NewHandler(service)

		req := httptest.NewRequest(http.MethodPost, "/api/budget/daily", bytes.NewBufferString(`{"monthlyIncome":`))
		rec := httptest.NewRecorder()

		handler.CalculateDaily(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var response rest.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, "invalid request body", response.Error)
	})
}

func TestHandler_CalculateDaily_BodyTooLarge(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	handler := NewHandler(service)

	// given a transaction history over the body limit
	transaction := `{"amount": 12.5, "date": "2024-06-10"},`
	var sb strings.Builder
	sb.WriteString(`{"monthlyIncome": 2500, "transactionHistory": [`)
	for sb.Len() <= maxRequestBytes {
		sb.WriteString(transaction)
	}
	sb.WriteString(`{"amount": 1, "date": "2024-06-10"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/budget/daily", strings.NewReader(sb.String()))
	rec := httptest.NewRecorder()

	// when
	handler.CalculateDaily(rec, req)

	// then
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, repoStub.records)
}

func TestHandler_GetHistory(t *testing.T) {
	t.Run("should list calculations of the current user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		handler := NewHandler(service)

		// given
		result, err := service.Calculate(ctx, lowIncomeInput())
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/budget/history?limit=5", nil).WithContext(ctx)
		rec := httptest.NewRecorder()

		// when
		handler.GetHistory(rec, req)

		// then
		require.Equal(t, http.StatusOK, rec.Code)
		var records []RecordDTO
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&records))
		require.Len(t, records, 1)
		assert.Equal(t, result.Metadata.CalculationId, records[0].Id)
		assert.Equal(t, "2500", records[0].MonthlyIncome.String())
	})

	t.Run("should return forbidden without a user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		handler := NewHandler(service)

		req := httptest.NewRequest(http.MethodGet, "/api/budget/history", nil).WithContext(context.Background())
		rec := httptest.NewRecorder()

		handler.GetHistory(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("should reject an invalid limit", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		handler := NewHandler(service)

		for _, limit := range []string{"abc", "-1", "1000"} {
			req := httptest.NewRequest(http.MethodGet, "/api/budget/history?limit="+limit, nil).WithContext(ctx)
			rec := httptest.NewRecorder()

			handler.GetHistory(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code, "limit %s", limit)
		}
	})
}
