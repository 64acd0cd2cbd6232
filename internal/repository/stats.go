package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/lifelog/backend/internal/models"
)

type StatsRepository struct {
	db *pgxpool.Pool
}

type FinanceOverview struct {
	IncomeCents  int64
	SpentCents   int64
	ExpenseCount int
	IncomeCount  int
}

type CategorySpend struct {
	Category   string
	SpentCents int64
	Count      int
}

type WeeklyComparison struct {
	WeekStart   time.Time
	IncomeCents int64
	SpentCents  int64
}

// NewStatsRepository создает репозиторий статистики.
func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

// Overview возвращает суммы доходов и расходов за интервал.
func (r *StatsRepository) Overview(ctx context.Context, userID uuid.UUID, from, to time.Time) (FinanceOverview, error) {
	var stats FinanceOverview

	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0), COUNT(*)
		 FROM expenses
		 WHERE user_id = $1 AND spent_on BETWEEN $2 AND $3`,
		userID, models.Day(from), models.Day(to),
	).Scan(&stats.SpentCents, &stats.ExpenseCount)
	if err != nil {
		return stats, err
	}

	err = r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0), COUNT(*)
		 FROM incomes
		 WHERE user_id = $1 AND received_on BETWEEN $2 AND $3`,
		userID, models.Day(from), models.Day(to),
	).Scan(&stats.IncomeCents, &stats.IncomeCount)
	if err != nil {
		return stats, err
	}

	return stats, nil
}

// SpendingByCategory возвращает траты по категориям за интервал.
func (r *StatsRepository) SpendingByCategory(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]CategorySpend, error) {
	rows, err := r.db.Query(ctx,
		`SELECT category, COALESCE(SUM(amount_cents), 0) AS spent_cents, COUNT(*)
		 FROM expenses
		 WHERE user_id = $1 AND spent_on BETWEEN $2 AND $3
		 GROUP BY category
		 ORDER BY spent_cents DESC, category`,
		userID, models.Day(from), models.Day(to),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	spending := make([]CategorySpend, 0)
	for rows.Next() {
		var row CategorySpend
		if err := rows.Scan(&row.Category, &row.SpentCents, &row.Count); err != nil {
			return nil, err
		}
		spending = append(spending, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return spending, nil
}

// WeeklyComparison возвращает доходы и расходы по последним N неделям (ISO, с понедельника).
func (r *StatsRepository) WeeklyComparison(ctx context.Context, userID uuid.UUID, weeks int) ([]WeeklyComparison, error) {
	if weeks <= 0 {
		return nil, ErrInvalid
	}

	rows, err := r.db.Query(ctx,
		`WITH flows AS (
			SELECT date_trunc('week', spent_on)::date AS week_start, 0::bigint AS income_cents, amount_cents AS spent_cents
			FROM expenses
			WHERE user_id = $1
			UNION ALL
			SELECT date_trunc('week', received_on)::date, amount_cents, 0
			FROM incomes
			WHERE user_id = $1
		)
		SELECT week_start,
		       COALESCE(SUM(income_cents), 0)::bigint,
		       COALESCE(SUM(spent_cents), 0)::bigint
		FROM flows
		GROUP BY week_start
		ORDER BY week_start DESC
		LIMIT $2`,
		userID, weeks,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]WeeklyComparison, 0)
	for rows.Next() {
		var row WeeklyComparison
		if err := rows.Scan(&row.WeekStart, &row.IncomeCents, &row.SpentCents); err != nil {
			return nil, err
		}
		items = append(items, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
