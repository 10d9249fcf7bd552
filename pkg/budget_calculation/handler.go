package budget_calculation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/klokku/dailybudget/internal/rest"
	"github.com/klokku/dailybudget/pkg/budget_engine"
	"github.com/klokku/dailybudget/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// maxRequestBytes caps the calculation request body, transaction history included.
const maxRequestBytes = 1 << 20

type TransactionDTO struct {
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"`
}

type CalculationRequestDTO struct {
	MonthlyIncome          *decimal.Decimal `json:"monthlyIncome"`
	Goals                  []string         `json:"goals"`
	Habits                 []string         `json:"habits"`
	TargetDate             string           `json:"targetDate,omitempty"`
	UserId                 string           `json:"userId,omitempty"`
	TransactionHistory     []TransactionDTO `json:"transactionHistory,omitempty"`
	UserMetrics            map[string]any   `json:"userMetrics,omitempty"`
	EnableAdvancedFeatures *bool            `json:"enableAdvancedFeatures,omitempty"`
}

type MetadataDTO struct {
	CalculationId           string    `json:"calculationId"`
	CalculatedAt            time.Time `json:"calculatedAt"`
	TargetDate              time.Time `json:"targetDate"`
	UserId                  string    `json:"userId,omitempty"`
	AdvancedFeaturesEnabled bool      `json:"advancedFeaturesEnabled"`
	DataQuality             string    `json:"dataQuality"`
	AlgorithmVersion        string    `json:"algorithmVersion"`
	IncomeTier              string    `json:"incomeTier,omitempty"`
	Fallback                bool      `json:"fallback,omitempty"`
	FallbackReason          string    `json:"fallbackReason,omitempty"`
}

type LegacyFormatDTO struct {
	TotalDailyBudget     float64 `json:"totalDailyBudget"`
	BaseAmount           float64 `json:"baseAmount"`
	RedistributionBuffer float64 `json:"redistributionBuffer"`
	FixedCommitments     float64 `json:"fixedCommitments"`
	SavingsTarget        float64 `json:"savingsTarget"`
	Confidence           float64 `json:"confidence"`
	Methodology          string  `json:"methodology"`
}

type AdjustmentDTO struct {
	Stage      string  `json:"stage"`
	Multiplier float64 `json:"multiplier"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
}

type CalculationResponseDTO struct {
	DailyBudget  float64         `json:"dailyBudget"`
	Confidence   float64         `json:"confidence"`
	Insights     []string        `json:"insights"`
	RiskScore    float64         `json:"riskScore"`
	Explanation  string          `json:"explanation"`
	Metadata     MetadataDTO     `json:"metadata"`
	LegacyFormat LegacyFormatDTO `json:"legacyFormat"`
	Adjustments  []AdjustmentDTO `json:"adjustments"`
}

type RecordDTO struct {
	Id               string          `json:"id"`
	CalculatedAt     time.Time       `json:"calculatedAt"`
	TargetDate       time.Time       `json:"targetDate"`
	MonthlyIncome    decimal.Decimal `json:"monthlyIncome"`
	DailyBudget      float64         `json:"dailyBudget"`
	Confidence       float64         `json:"confidence"`
	RiskScore        float64         `json:"riskScore"`
	IncomeTier       string          `json:"incomeTier"`
	DataQuality      string          `json:"dataQuality"`
	AlgorithmVersion string          `json:"algorithmVersion"`
	Fallback         bool            `json:"fallback"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

// CalculateDaily godoc
// @Summary Calculate the daily budget
// @Description Calculate a personalized daily budget from income, goals, habits and recent transactions
// @Tags Budget
// @Accept json
// @Produce json
// @Param request body CalculationRequestDTO true "Calculation input"
// @Success 200 {object} CalculationResponseDTO
// @Failure 400 {object} rest.ErrorResponse "Malformed request body"
// @Failure 413 {object} rest.ErrorResponse "Request body over 1 MiB"
// @Router /api/budget/daily [post]
func (handler *Handler) CalculateDaily(w http.ResponseWriter, r *http.Request) {
	log.Debug("Calculating daily budget")
	var requestDTO CalculationRequestDTO
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(body).Decode(&requestDTO); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rest.WriteError(w, http.StatusRequestEntityTooLarge, "request body too large", err.Error())
			return
		}
		rest.WriteError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := handler.service.Calculate(r.Context(), requestDTO.ToInput())
	if err != nil {
		rest.WriteError(w, http.StatusServiceUnavailable, "calculation aborted", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ResultToDTO(result)); err != nil {
		log.Errorf("failed to encode calculation result: %v", err)
	}
}

// GetHistory godoc
// @Summary List past calculations
// @Description Get the most recent daily budget calculations of the current user
// @Tags Budget
// @Produce json
// @Param limit query int false "Number of calculations (1-100, default 20)"
// @Success 200 {array} RecordDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid limit"
// @Failure 403 {object} rest.ErrorResponse "User not found"
// @Router /api/budget/history [get]
// @Security XUserId
func (handler *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing calculation history")
	limit := 0
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "invalid limit", err.Error())
			return
		}
		limit = parsed
	}

	records, err := handler.service.History(r.Context(), limit)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNoUser):
			rest.WriteError(w, http.StatusForbidden, "user not found", "")
		case errors.Is(err, ErrInvalidLimit):
			rest.WriteError(w, http.StatusBadRequest, "invalid limit", err.Error())
		default:
			rest.WriteError(w, http.StatusInternalServerError, "failed to load history", err.Error())
		}
		return
	}

	recordsDTO := make([]RecordDTO, 0, len(records))
	for _, record := range records {
		recordsDTO = append(recordsDTO, RecordToDTO(record))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(recordsDTO); err != nil {
		log.Errorf("failed to encode history: %v", err)
	}
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// parseDate accepts RFC 3339 timestamps and plain dates. Anything else yields the zero time.
func parseDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	log.Warnf("ignoring malformed date %q", value)
	return time.Time{}
}

// ToInput maps the request onto engine input. A missing income is zero and a malformed target
// date falls back to the calculation time.
func (dto CalculationRequestDTO) ToInput() budget_engine.Input {
	income := decimal.Zero
	if dto.MonthlyIncome != nil {
		income = *dto.MonthlyIncome
	}
	goals := make([]budget_engine.Goal, 0, len(dto.Goals))
	for _, g := range dto.Goals {
		goals = append(goals, budget_engine.Goal(g))
	}
	habits := make([]budget_engine.Habit, 0, len(dto.Habits))
	for _, h := range dto.Habits {
		habits = append(habits, budget_engine.Habit(h))
	}
	var transactions []budget_engine.Transaction
	if len(dto.TransactionHistory) > 0 {
		transactions = make([]budget_engine.Transaction, 0, len(dto.TransactionHistory))
		for _, t := range dto.TransactionHistory {
			transactions = append(transactions, budget_engine.Transaction{Amount: t.Amount, Date: parseDate(t.Date)})
		}
	}
	return budget_engine.Input{
		Profile: budget_engine.Profile{
			MonthlyIncome: income,
			Goals:         goals,
			Habits:        habits,
		},
		TargetDate:       parseDate(dto.TargetDate),
		UserId:           dto.UserId,
		Transactions:     transactions,
		UserMetrics:      dto.UserMetrics,
		AdvancedFeatures: dto.EnableAdvancedFeatures,
	}
}

func ResultToDTO(result budget_engine.CalculationResult) CalculationResponseDTO {
	insights := result.Insights
	if insights == nil {
		insights = []string{}
	}
	adjustments := make([]AdjustmentDTO, 0, len(result.Adjustments))
	for _, a := range result.Adjustments {
		adjustments = append(adjustments, AdjustmentDTO{
			Stage:      a.Stage,
			Multiplier: a.Multiplier,
			Confidence: a.Confidence,
			Reason:     a.Reason,
		})
	}
	m := result.Metadata
	return CalculationResponseDTO{
		DailyBudget: result.DailyBudget,
		Confidence:  result.Confidence,
		Insights:    insights,
		RiskScore:   result.RiskScore,
		Explanation: result.Explanation,
		Metadata: MetadataDTO{
			CalculationId:           m.CalculationId,
			CalculatedAt:            m.CalculatedAt,
			TargetDate:              m.TargetDate,
			UserId:                  m.UserId,
			AdvancedFeaturesEnabled: m.AdvancedFeaturesEnabled,
			DataQuality:             string(m.DataQuality),
			AlgorithmVersion:        m.AlgorithmVersion,
			IncomeTier:              m.IncomeTier,
			Fallback:                m.Fallback,
			FallbackReason:          m.FallbackReason,
		},
		LegacyFormat: LegacyFormatDTO{
			TotalDailyBudget:     result.Legacy.TotalDailyBudget,
			BaseAmount:           result.Legacy.BaseAmount,
			RedistributionBuffer: result.Legacy.RedistributionBuffer,
			FixedCommitments:     result.Legacy.FixedCommitments,
			SavingsTarget:        result.Legacy.SavingsTarget,
			Confidence:           result.Legacy.Confidence,
			Methodology:          result.Legacy.Methodology,
		},
		Adjustments: adjustments,
	}
}

func RecordToDTO(record Record) RecordDTO {
	return RecordDTO{
		Id:               record.Id,
		CalculatedAt:     record.CalculatedAt,
		TargetDate:       record.TargetDate,
		MonthlyIncome:    record.MonthlyIncome,
		DailyBudget:      record.DailyBudget,
		Confidence:       record.Confidence,
		RiskScore:        record.RiskScore,
		IncomeTier:       record.IncomeTier,
		DataQuality:      record.DataQuality,
		AlgorithmVersion: record.AlgorithmVersion,
		Fallback:         record.Fallback,
	}
}
