package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/lifelog/backend/internal/models"
)

const learningColumns = `id, user_id, text, source_date, source_type, ease_factor, interval_days, repetitions, status, next_review_date, last_review_date, related_dates, created_at, updated_at`

type LearningRepository struct {
	db *pgxpool.Pool
}

// NewLearningRepository создает репозиторий карточек повторения.
func NewLearningRepository(db *pgxpool.Pool) *LearningRepository {
	return &LearningRepository{db: db}
}

func scanLearningItem(row rowScanner, item *models.LearningItem) error {
	return row.Scan(&item.ID, &item.UserID, &item.Text, &item.SourceDate, &item.SourceType, &item.EaseFactor, &item.Interval, &item.Repetitions, &item.Status, &item.NextReviewDate, &item.LastReviewDate, &item.RelatedDates, &item.CreatedAt, &item.UpdatedAt)
}

// Upsert создает карточку, а для уже известного текста добавляет дату в related_dates.
// Второе значение сообщает, была ли карточка создана.
func (r *LearningRepository) Upsert(ctx context.Context, item models.LearningItem) (models.LearningItem, bool, error) {
	var saved models.LearningItem
	var created bool

	day := models.Day(item.SourceDate)
	err := r.db.QueryRow(ctx,
		`INSERT INTO learning_items (user_id, text, source_date, source_type, ease_factor, interval_days, repetitions, status, next_review_date, related_dates)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, ARRAY[$3::date])
		 ON CONFLICT (user_id, text) DO UPDATE
		 SET related_dates = CASE
		         WHEN $3::date = ANY(learning_items.related_dates) THEN learning_items.related_dates
		         ELSE array_append(learning_items.related_dates, $3::date)
		     END,
		     updated_at = NOW()
		 RETURNING `+learningColumns+`, (xmax = 0)`,
		item.UserID, item.Text, day, item.SourceType, item.EaseFactor, item.Interval, item.Repetitions, item.Status, models.Day(item.NextReviewDate),
	).Scan(&saved.ID, &saved.UserID, &saved.Text, &saved.SourceDate, &saved.SourceType, &saved.EaseFactor, &saved.Interval, &saved.Repetitions, &saved.Status, &saved.NextReviewDate, &saved.LastReviewDate, &saved.RelatedDates, &saved.CreatedAt, &saved.UpdatedAt, &created)
	if err != nil {
		return saved, false, mapError(err)
	}

	return saved, created, nil
}

// GetByID возвращает карточку пользователя.
func (r *LearningRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (models.LearningItem, error) {
	var item models.LearningItem

	err := scanLearningItem(r.db.QueryRow(ctx,
		`SELECT `+learningColumns+`
		 FROM learning_items
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	), &item)
	if err != nil {
		return item, mapError(err)
	}

	return item, nil
}

// List возвращает карточки пользователя, при необходимости с фильтром по статусу.
func (r *LearningRepository) List(ctx context.Context, userID uuid.UUID, status *models.LearningStatus) ([]models.LearningItem, error) {
	return r.query(ctx,
		`SELECT `+learningColumns+`
		 FROM learning_items
		 WHERE user_id = $1 AND ($2::text IS NULL OR status = $2)
		 ORDER BY next_review_date, created_at`,
		userID, status,
	)
}

// ListDue возвращает карточки к повторению на дату.
func (r *LearningRepository) ListDue(ctx context.Context, userID uuid.UUID, today time.Time) ([]models.LearningItem, error) {
	return r.query(ctx,
		`SELECT `+learningColumns+`
		 FROM learning_items
		 WHERE user_id = $1 AND next_review_date <= $2 AND status <> 'suspended'
		 ORDER BY next_review_date, created_at`,
		userID, models.Day(today),
	)
}

// SaveReview сохраняет новое расписание карточки и запись о повторении.
func (r *LearningRepository) SaveReview(ctx context.Context, item models.LearningItem, review models.ReviewLog) (models.LearningItem, error) {
	var saved models.LearningItem

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return saved, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = scanLearningItem(tx.QueryRow(ctx,
		`UPDATE learning_items
		 SET ease_factor = $3,
		     interval_days = $4,
		     repetitions = $5,
		     status = $6,
		     next_review_date = $7,
		     last_review_date = $8,
		     updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+learningColumns,
		item.ID, item.UserID, item.EaseFactor, item.Interval, item.Repetitions, item.Status, models.Day(item.NextReviewDate), item.LastReviewDate,
	), &saved)
	if err != nil {
		return saved, mapError(err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO review_logs (item_id, user_id, rating, review_date, interval_days, ease_factor)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		saved.ID, saved.UserID, review.Rating, models.Day(review.ReviewDate), saved.Interval, saved.EaseFactor,
	)
	if err != nil {
		return saved, err
	}

	if err := tx.Commit(ctx); err != nil {
		return saved, err
	}

	return saved, nil
}

// UpdateStatus меняет только статус карточки.
func (r *LearningRepository) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status models.LearningStatus) (models.LearningItem, error) {
	var item models.LearningItem

	err := scanLearningItem(r.db.QueryRow(ctx,
		`UPDATE learning_items
		 SET status = $3, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+learningColumns,
		id, userID, status,
	), &item)
	if err != nil {
		return item, mapError(err)
	}

	return item, nil
}

// ReviewCounts возвращает число повторений по оценкам за интервал.
func (r *LearningRepository) ReviewCounts(ctx context.Context, userID uuid.UUID, from, to time.Time) (map[string]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT rating, COUNT(*)
		 FROM review_logs
		 WHERE user_id = $1 AND review_date BETWEEN $2 AND $3
		 GROUP BY rating`,
		userID, models.Day(from), models.Day(to),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var rating string
		var count int
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, err
		}
		counts[rating] = count
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *LearningRepository) query(ctx context.Context, sql string, args ...interface{}) ([]models.LearningItem, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.LearningItem, 0)
	for rows.Next() {
		var item models.LearningItem
		if err := scanLearningItem(rows, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
