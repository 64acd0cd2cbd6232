package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AdminRepository struct {
	db *pgxpool.Pool
}

type AdminUser struct {
	ID          uuid.UUID
	Email       string
	Name        *string
	DailyLogs   int
	LastLogDate *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type DailyCount struct {
	Day   time.Time
	Count int
}

type UsageStats struct {
	Users          int
	DailyLogs      int
	WeeklyLogs     int
	LearningItems  int
	Reviews        int
	DailyLogsByDay []DailyCount
	ReviewsByDay   []DailyCount
}

// NewAdminRepository создает репозиторий для админских запросов.
func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{db: db}
}

// ListUsers возвращает список пользователей с активностью и пагинацией.
func (r *AdminRepository) ListUsers(ctx context.Context, limit, offset int) ([]AdminUser, error) {
	rows, err := r.db.Query(ctx,
		`SELECT u.id, u.email, u.name, COUNT(d.id), MAX(d.log_date), u.created_at, u.updated_at
		 FROM users u
		 LEFT JOIN daily_logs d ON d.user_id = u.id
		 GROUP BY u.id, u.email, u.name, u.created_at, u.updated_at
		 ORDER BY u.created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]AdminUser, 0)
	for rows.Next() {
		var user AdminUser
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.DailyLogs, &user.LastLogDate, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// CountUsers возвращает общее количество пользователей.
func (r *AdminRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// UsageStats возвращает агрегированную статистику за N дней.
func (r *AdminRepository) UsageStats(ctx context.Context, days int) (UsageStats, error) {
	stats := UsageStats{}
	if days <= 0 {
		return stats, ErrInvalid
	}

	err := r.db.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM users),
		        (SELECT COUNT(*) FROM daily_logs),
		        (SELECT COUNT(*) FROM weekly_logs),
		        (SELECT COUNT(*) FROM learning_items),
		        (SELECT COUNT(*) FROM review_logs)`,
	).Scan(&stats.Users, &stats.DailyLogs, &stats.WeeklyLogs, &stats.LearningItems, &stats.Reviews)
	if err != nil {
		return stats, err
	}

	start := time.Now().UTC().AddDate(0, 0, -days+1)

	stats.DailyLogsByDay, err = r.countByDay(ctx,
		`SELECT log_date, COUNT(*)
		 FROM daily_logs
		 WHERE log_date >= $1
		 GROUP BY log_date
		 ORDER BY log_date DESC`,
		start,
	)
	if err != nil {
		return stats, err
	}

	stats.ReviewsByDay, err = r.countByDay(ctx,
		`SELECT review_date, COUNT(*)
		 FROM review_logs
		 WHERE review_date >= $1
		 GROUP BY review_date
		 ORDER BY review_date DESC`,
		start,
	)
	if err != nil {
		return stats, err
	}

	return stats, nil
}

func (r *AdminRepository) countByDay(ctx context.Context, sql string, start time.Time) ([]DailyCount, error) {
	rows, err := r.db.Query(ctx, sql, start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]DailyCount, 0)
	for rows.Next() {
		var row DailyCount
		if err := rows.Scan(&row.Day, &row.Count); err != nil {
			return nil, err
		}
		counts = append(counts, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}
