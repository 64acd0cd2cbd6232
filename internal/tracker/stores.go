// Package tracker holds the services behind daily logs, weekly logs and
// learning items. Each service loads records, derives values from them with
// the pure packages (tasks, metrics, srs) and persists the result.
package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"example.com/lifelog/backend/internal/models"
	"example.com/lifelog/backend/internal/repository"
)

var (
	ErrNotMonday     = errors.New("week must start on monday")
	ErrInvalidFlag   = errors.New("invalid weekly flag")
	ErrItemSuspended = errors.New("learning item is suspended")
)

type DailyLogStore interface {
	Upsert(ctx context.Context, log models.DailyLog) (models.DailyLog, error)
	GetByDate(ctx context.Context, userID uuid.UUID, date time.Time) (models.DailyLog, error)
	ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.DailyLog, error)
}

type WeeklyLogStore interface {
	Save(ctx context.Context, log models.WeeklyLog) (models.WeeklyLog, error)
	GetByWeekStart(ctx context.Context, userID uuid.UUID, weekStart time.Time) (models.WeeklyLog, error)
	List(ctx context.Context, userID uuid.UUID, limit int) ([]models.WeeklyLog, error)
}

type TodoStore interface {
	Apply(ctx context.Context, userID uuid.UUID, changes repository.TodoChanges) error
	ListBySourceDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.TodoItem, error)
	ListOpenBefore(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.TodoItem, error)
	ListForRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.TodoItem, error)
}

type LearningStore interface {
	Upsert(ctx context.Context, item models.LearningItem) (models.LearningItem, bool, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (models.LearningItem, error)
	List(ctx context.Context, userID uuid.UUID, status *models.LearningStatus) ([]models.LearningItem, error)
	ListDue(ctx context.Context, userID uuid.UUID, today time.Time) ([]models.LearningItem, error)
	SaveReview(ctx context.Context, item models.LearningItem, review models.ReviewLog) (models.LearningItem, error)
	UpdateStatus(ctx context.Context, userID, id uuid.UUID, status models.LearningStatus) (models.LearningItem, error)
	ReviewCounts(ctx context.Context, userID uuid.UUID, from, to time.Time) (map[string]int, error)
}

// FinanceReader is the read side of the finance repository used for scoring.
type FinanceReader interface {
	ListExpenses(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.Expense, error)
	ListIncomes(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.Income, error)
	GetBudgetTarget(ctx context.Context, userID uuid.UUID) (models.BudgetTarget, error)
}
