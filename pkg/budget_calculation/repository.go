package budget_calculation

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Store(ctx context.Context, record Record) error
	ListForUser(ctx context.Context, userId string, limit int) ([]Record, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Store(ctx context.Context, record Record) error {
	query := `INSERT INTO budget_calculation (
					id,
					user_id,
					calculated_at,
					target_date,
					monthly_income,
					daily_budget,
					confidence,
					risk_score,
					income_tier,
					data_quality,
					algorithm_version,
					fallback
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Exec(ctx, query,
		record.Id,
		record.UserId,
		record.CalculatedAt,
		record.TargetDate,
		record.MonthlyIncome,
		record.DailyBudget,
		record.Confidence,
		record.RiskScore,
		record.IncomeTier,
		record.DataQuality,
		record.AlgorithmVersion,
		record.Fallback,
	)
	if err != nil {
		err := fmt.Errorf("could not store calculation %s: %w", record.Id, err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) ListForUser(ctx context.Context, userId string, limit int) ([]Record, error) {
	query := `SELECT
				id,
				user_id,
				calculated_at,
				target_date,
				monthly_income,
				daily_budget,
				confidence,
				risk_score,
				income_tier,
				data_quality,
				algorithm_version,
				fallback
			  FROM budget_calculation
			  WHERE user_id = $1
			  ORDER BY calculated_at DESC
			  LIMIT $2`

	rows, err := r.db.Query(ctx, query, userId, limit)
	if err != nil {
		err := fmt.Errorf("could not query calculations: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var record Record
		if err := rows.Scan(
			&record.Id,
			&record.UserId,
			&record.CalculatedAt,
			&record.TargetDate,
			&record.MonthlyIncome,
			&record.DailyBudget,
			&record.Confidence,
			&record.RiskScore,
			&record.IncomeTier,
			&record.DataQuality,
			&record.AlgorithmVersion,
			&record.Fallback,
		); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return records, nil
}

func (r *RepositoryImpl) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, "DELETE FROM budget_calculation WHERE calculated_at < $1", before)
	if err != nil {
		err := fmt.Errorf("could not delete calculations: %w", err)
		log.Error(err)
		return 0, err
	}
	return result.RowsAffected(), nil
}
