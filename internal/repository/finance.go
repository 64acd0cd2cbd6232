package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/lifelog/backend/internal/models"
)

const (
	expenseColumns = `id, user_id, spent_on, category, title, amount_cents, created_at, updated_at`
	incomeColumns  = `id, user_id, received_on, source, amount_cents, created_at, updated_at`
)

type FinanceRepository struct {
	db *pgxpool.Pool
}

// NewFinanceRepository создает репозиторий расходов, доходов и бюджетных целей.
func NewFinanceRepository(db *pgxpool.Pool) *FinanceRepository {
	return &FinanceRepository{db: db}
}

func scanExpense(row rowScanner, expense *models.Expense) error {
	return row.Scan(&expense.ID, &expense.UserID, &expense.Date, &expense.Category, &expense.Title, &expense.AmountCents, &expense.CreatedAt, &expense.UpdatedAt)
}

func scanIncome(row rowScanner, income *models.Income) error {
	return row.Scan(&income.ID, &income.UserID, &income.Date, &income.Source, &income.AmountCents, &income.CreatedAt, &income.UpdatedAt)
}

// CreateExpense добавляет расход.
func (r *FinanceRepository) CreateExpense(ctx context.Context, expense models.Expense) (models.Expense, error) {
	var saved models.Expense

	if strings.TrimSpace(expense.Title) == "" || expense.AmountCents <= 0 {
		return saved, ErrInvalid
	}

	err := scanExpense(r.db.QueryRow(ctx,
		`INSERT INTO expenses (user_id, spent_on, category, title, amount_cents)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+expenseColumns,
		expense.UserID, models.Day(expense.Date), expense.Category, expense.Title, expense.AmountCents,
	), &saved)
	if err != nil {
		return saved, mapError(err)
	}

	return saved, nil
}

// UpdateExpense изменяет расход пользователя.
func (r *FinanceRepository) UpdateExpense(ctx context.Context, expense models.Expense) (models.Expense, error) {
	var saved models.Expense

	if strings.TrimSpace(expense.Title) == "" || expense.AmountCents <= 0 {
		return saved, ErrInvalid
	}

	err := scanExpense(r.db.QueryRow(ctx,
		`UPDATE expenses
		 SET spent_on = $3,
		     category = $4,
		     title = $5,
		     amount_cents = $6,
		     updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+expenseColumns,
		expense.ID, expense.UserID, models.Day(expense.Date), expense.Category, expense.Title, expense.AmountCents,
	), &saved)
	if err != nil {
		return saved, mapError(err)
	}

	return saved, nil
}

// DeleteExpense удаляет расход.
func (r *FinanceRepository) DeleteExpense(ctx context.Context, userID, id uuid.UUID) error {
	return r.delete(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, userID)
}

// ListExpenses возвращает расходы за интервал дат.
func (r *FinanceRepository) ListExpenses(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.Expense, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+expenseColumns+`
		 FROM expenses
		 WHERE user_id = $1 AND spent_on BETWEEN $2 AND $3
		 ORDER BY spent_on, created_at`,
		userID, models.Day(from), models.Day(to),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]models.Expense, 0)
	for rows.Next() {
		var expense models.Expense
		if err := scanExpense(rows, &expense); err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return expenses, nil
}

// CreateIncome добавляет доход.
func (r *FinanceRepository) CreateIncome(ctx context.Context, income models.Income) (models.Income, error) {
	var saved models.Income

	if strings.TrimSpace(income.Source) == "" || income.AmountCents <= 0 {
		return saved, ErrInvalid
	}

	err := scanIncome(r.db.QueryRow(ctx,
		`INSERT INTO incomes (user_id, received_on, source, amount_cents)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+incomeColumns,
		income.UserID, models.Day(income.Date), income.Source, income.AmountCents,
	), &saved)
	if err != nil {
		return saved, mapError(err)
	}

	return saved, nil
}

// UpdateIncome изменяет доход пользователя.
func (r *FinanceRepository) UpdateIncome(ctx context.Context, income models.Income) (models.Income, error) {
	var saved models.Income

	if strings.TrimSpace(income.Source) == "" || income.AmountCents <= 0 {
		return saved, ErrInvalid
	}

	err := scanIncome(r.db.QueryRow(ctx,
		`UPDATE incomes
		 SET received_on = $3,
		     source = $4,
		     amount_cents = $5,
		     updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+incomeColumns,
		income.ID, income.UserID, models.Day(income.Date), income.Source, income.AmountCents,
	), &saved)
	if err != nil {
		return saved, mapError(err)
	}

	return saved, nil
}

// DeleteIncome удаляет доход.
func (r *FinanceRepository) DeleteIncome(ctx context.Context, userID, id uuid.UUID) error {
	return r.delete(ctx, `DELETE FROM incomes WHERE id = $1 AND user_id = $2`, id, userID)
}

// ListIncomes возвращает доходы за интервал дат.
func (r *FinanceRepository) ListIncomes(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.Income, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+incomeColumns+`
		 FROM incomes
		 WHERE user_id = $1 AND received_on BETWEEN $2 AND $3
		 ORDER BY received_on, created_at`,
		userID, models.Day(from), models.Day(to),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	incomes := make([]models.Income, 0)
	for rows.Next() {
		var income models.Income
		if err := scanIncome(rows, &income); err != nil {
			return nil, err
		}
		incomes = append(incomes, income)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return incomes, nil
}

// GetBudgetTarget возвращает бюджетную цель пользователя.
func (r *FinanceRepository) GetBudgetTarget(ctx context.Context, userID uuid.UUID) (models.BudgetTarget, error) {
	var target models.BudgetTarget

	err := r.db.QueryRow(ctx,
		`SELECT user_id, savings_rate_target, weekly_spend_cap_cents, updated_at
		 FROM budget_targets
		 WHERE user_id = $1`,
		userID,
	).Scan(&target.UserID, &target.SavingsRateTarget, &target.WeeklySpendCapCents, &target.UpdatedAt)
	if err != nil {
		return target, mapError(err)
	}

	return target, nil
}

// UpsertBudgetTarget сохраняет единственную бюджетную цель пользователя.
func (r *FinanceRepository) UpsertBudgetTarget(ctx context.Context, target models.BudgetTarget) (models.BudgetTarget, error) {
	var saved models.BudgetTarget

	if target.SavingsRateTarget < 0 || target.SavingsRateTarget > 1 || target.WeeklySpendCapCents < 0 {
		return saved, ErrInvalid
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO budget_targets (user_id, savings_rate_target, weekly_spend_cap_cents)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE
		 SET savings_rate_target = EXCLUDED.savings_rate_target,
		     weekly_spend_cap_cents = EXCLUDED.weekly_spend_cap_cents,
		     updated_at = NOW()
		 RETURNING user_id, savings_rate_target, weekly_spend_cap_cents, updated_at`,
		target.UserID, target.SavingsRateTarget, target.WeeklySpendCapCents,
	).Scan(&saved.UserID, &saved.SavingsRateTarget, &saved.WeeklySpendCapCents, &saved.UpdatedAt)
	if err != nil {
		return saved, mapError(err)
	}

	return saved, nil
}

func (r *FinanceRepository) delete(ctx context.Context, sql string, id, userID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx, sql, id, userID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
