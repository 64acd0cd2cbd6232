package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/lifelog/backend/internal/models"
)

const weeklyLogColumns = `id, user_id, week_start, week_end, tasks_markdown, target_weight, primary_relationship_active, finance_concept_applied, portfolio_review, created_at, updated_at`

type WeeklyLogRepository struct {
	db *pgxpool.Pool
}

// NewWeeklyLogRepository создает репозиторий недельных записей.
func NewWeeklyLogRepository(db *pgxpool.Pool) *WeeklyLogRepository {
	return &WeeklyLogRepository{db: db}
}

func scanWeeklyLog(row rowScanner, log *models.WeeklyLog) error {
	return row.Scan(&log.ID, &log.UserID, &log.WeekStart, &log.WeekEnd, &log.TasksMarkdown, &log.TargetWeight, &log.PrimaryRelationshipActive, &log.FinanceConceptApplied, &log.PortfolioReview, &log.CreatedAt, &log.UpdatedAt)
}

// Save обновляет запись недели либо создает новую, если диапазон не пересекается с другими.
// Проверка и вставка выполняются в одной транзакции.
func (r *WeeklyLogRepository) Save(ctx context.Context, log models.WeeklyLog) (models.WeeklyLog, error) {
	var saved models.WeeklyLog

	start, end := models.Day(log.WeekStart), models.Day(log.WeekEnd)
	if end.Before(start) {
		return saved, ErrInvalid
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return saved, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var existingID uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id
		 FROM weekly_logs
		 WHERE user_id = $1 AND week_start = $2`,
		log.UserID, start,
	).Scan(&existingID)
	switch {
	case err == nil:
		err = scanWeeklyLog(tx.QueryRow(ctx,
			`UPDATE weekly_logs
			 SET week_end = $2,
			     tasks_markdown = $3,
			     target_weight = $4,
			     primary_relationship_active = $5,
			     finance_concept_applied = $6,
			     portfolio_review = $7,
			     updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+weeklyLogColumns,
			existingID, end, log.TasksMarkdown, log.TargetWeight, log.PrimaryRelationshipActive, log.FinanceConceptApplied, log.PortfolioReview,
		), &saved)
		if err != nil {
			return saved, mapError(err)
		}

	case errors.Is(err, pgx.ErrNoRows):
		var overlaps bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS (
				SELECT 1 FROM weekly_logs
				WHERE user_id = $1 AND week_start <= $3 AND week_end >= $2
			 )`,
			log.UserID, start, end,
		).Scan(&overlaps)
		if err != nil {
			return saved, err
		}
		if overlaps {
			return saved, ErrOverlap
		}

		err = scanWeeklyLog(tx.QueryRow(ctx,
			`INSERT INTO weekly_logs (user_id, week_start, week_end, tasks_markdown, target_weight, primary_relationship_active, finance_concept_applied, portfolio_review)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING `+weeklyLogColumns,
			log.UserID, start, end, log.TasksMarkdown, log.TargetWeight, log.PrimaryRelationshipActive, log.FinanceConceptApplied, log.PortfolioReview,
		), &saved)
		if err != nil {
			return saved, mapError(err)
		}

	default:
		return saved, err
	}

	if err := tx.Commit(ctx); err != nil {
		return saved, err
	}

	return saved, nil
}

// GetByWeekStart возвращает запись недели по понедельнику.
func (r *WeeklyLogRepository) GetByWeekStart(ctx context.Context, userID uuid.UUID, weekStart time.Time) (models.WeeklyLog, error) {
	var log models.WeeklyLog

	err := scanWeeklyLog(r.db.QueryRow(ctx,
		`SELECT `+weeklyLogColumns+`
		 FROM weekly_logs
		 WHERE user_id = $1 AND week_start = $2`,
		userID, models.Day(weekStart),
	), &log)
	if err != nil {
		return log, mapError(err)
	}

	return log, nil
}

// List возвращает недели пользователя, начиная с последней.
func (r *WeeklyLogRepository) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.WeeklyLog, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+weeklyLogColumns+`
		 FROM weekly_logs
		 WHERE user_id = $1
		 ORDER BY week_start DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]models.WeeklyLog, 0)
	for rows.Next() {
		var log models.WeeklyLog
		if err := scanWeeklyLog(rows, &log); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return logs, nil
}
