package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/lifelog/backend/internal/models"
)

const dailyLogColumns = `id, user_id, log_date, logged, tasks_markdown, gym_session, weight, calories_tracked, created_at, updated_at`

type DailyLogRepository struct {
	db *pgxpool.Pool
}

// NewDailyLogRepository создает репозиторий дневных записей.
func NewDailyLogRepository(db *pgxpool.Pool) *DailyLogRepository {
	return &DailyLogRepository{db: db}
}

func scanDailyLog(row rowScanner, log *models.DailyLog) error {
	return row.Scan(&log.ID, &log.UserID, &log.Date, &log.Logged, &log.TasksMarkdown, &log.GymSession, &log.Weight, &log.CaloriesTracked, &log.CreatedAt, &log.UpdatedAt)
}

// Upsert создает или перезаписывает запись за дату.
func (r *DailyLogRepository) Upsert(ctx context.Context, log models.DailyLog) (models.DailyLog, error) {
	var saved models.DailyLog

	err := scanDailyLog(r.db.QueryRow(ctx,
		`INSERT INTO daily_logs (user_id, log_date, logged, tasks_markdown, gym_session, weight, calories_tracked)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id, log_date) DO UPDATE
		 SET logged = EXCLUDED.logged,
		     tasks_markdown = EXCLUDED.tasks_markdown,
		     gym_session = EXCLUDED.gym_session,
		     weight = EXCLUDED.weight,
		     calories_tracked = EXCLUDED.calories_tracked,
		     updated_at = NOW()
		 RETURNING `+dailyLogColumns,
		log.UserID, models.Day(log.Date), log.Logged, log.TasksMarkdown, log.GymSession, log.Weight, log.CaloriesTracked,
	), &saved)
	if err != nil {
		return saved, mapError(err)
	}

	return saved, nil
}

// GetByDate возвращает запись пользователя за дату.
func (r *DailyLogRepository) GetByDate(ctx context.Context, userID uuid.UUID, date time.Time) (models.DailyLog, error) {
	var log models.DailyLog

	err := scanDailyLog(r.db.QueryRow(ctx,
		`SELECT `+dailyLogColumns+`
		 FROM daily_logs
		 WHERE user_id = $1 AND log_date = $2`,
		userID, models.Day(date),
	), &log)
	if err != nil {
		return log, mapError(err)
	}

	return log, nil
}

// ListRange возвращает записи в закрытом интервале дат по возрастанию.
func (r *DailyLogRepository) ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.DailyLog, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+dailyLogColumns+`
		 FROM daily_logs
		 WHERE user_id = $1 AND log_date BETWEEN $2 AND $3
		 ORDER BY log_date`,
		userID, models.Day(from), models.Day(to),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]models.DailyLog, 0)
	for rows.Next() {
		var log models.DailyLog
		if err := scanDailyLog(rows, &log); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return logs, nil
}
