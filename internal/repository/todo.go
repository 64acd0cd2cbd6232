package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/lifelog/backend/internal/models"
)

const todoColumns = `id, user_id, text, label, source_date, completed, completed_date, closed_by_log, created_at`

type TodoRepository struct {
	db *pgxpool.Pool
}

type TodoFilter struct {
	Label *models.TodoLabel
	Open  *bool
	Limit int
}

// TodoCompletion sets the completion state of an existing todo.
// ClosedByLog marks a closure made by a daily log sync, as opposed to a manual toggle.
type TodoCompletion struct {
	ID            uuid.UUID
	Completed     bool
	CompletedDate *time.Time
	ClosedByLog   bool
}

// TodoChanges is the result of diffing a markdown log against stored todos.
type TodoChanges struct {
	Create   []models.TodoItem
	Delete   []uuid.UUID
	Complete []TodoCompletion
}

// Empty reports whether applying the changes would be a no-op.
func (c TodoChanges) Empty() bool {
	return len(c.Create) == 0 && len(c.Delete) == 0 && len(c.Complete) == 0
}

// NewTodoRepository создает репозиторий задач-todo.
func NewTodoRepository(db *pgxpool.Pool) *TodoRepository {
	return &TodoRepository{db: db}
}

func scanTodo(row rowScanner, todo *models.TodoItem) error {
	return row.Scan(&todo.ID, &todo.UserID, &todo.Text, &todo.Label, &todo.SourceDate, &todo.Completed, &todo.CompletedDate, &todo.ClosedByLog, &todo.CreatedAt)
}

// Apply применяет изменения синхронизации в одной транзакции.
func (r *TodoRepository) Apply(ctx context.Context, userID uuid.UUID, changes TodoChanges) error {
	if changes.Empty() {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, id := range changes.Delete {
		if _, err := tx.Exec(ctx,
			`DELETE FROM todo_items WHERE id = $1 AND user_id = $2`,
			id, userID,
		); err != nil {
			return err
		}
	}

	for _, completion := range changes.Complete {
		if _, err := tx.Exec(ctx,
			`UPDATE todo_items
			 SET completed = $3, completed_date = $4, closed_by_log = $5
			 WHERE id = $1 AND user_id = $2`,
			completion.ID, userID, completion.Completed, completion.CompletedDate, completion.ClosedByLog,
		); err != nil {
			return err
		}
	}

	for _, todo := range changes.Create {
		if strings.TrimSpace(todo.Text) == "" || !todo.Label.IsValid() {
			return ErrInvalid
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO todo_items (user_id, text, label, source_date, completed, completed_date, closed_by_log)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			userID, todo.Text, todo.Label, models.Day(todo.SourceDate), todo.Completed, todo.CompletedDate, todo.ClosedByLog,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ListBySourceDate возвращает todo, созданные из записи за дату.
func (r *TodoRepository) ListBySourceDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.TodoItem, error) {
	return r.query(ctx,
		`SELECT `+todoColumns+`
		 FROM todo_items
		 WHERE user_id = $1 AND source_date = $2
		 ORDER BY created_at`,
		userID, models.Day(date),
	)
}

// ListOpenBefore возвращает todo из более ранних записей, открытые на начало даты.
// Закрытые в эту же дату тоже входят, чтобы повторное сохранение записи было идемпотентным.
func (r *TodoRepository) ListOpenBefore(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.TodoItem, error) {
	return r.query(ctx,
		`SELECT `+todoColumns+`
		 FROM todo_items
		 WHERE user_id = $1 AND source_date < $2 AND (NOT completed OR completed_date = $2)
		 ORDER BY source_date, created_at`,
		userID, models.Day(date),
	)
}

// ListForRange возвращает todo, влияющие на бэклог интервала: созданные до его конца
// и не закрытые до его начала.
func (r *TodoRepository) ListForRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.TodoItem, error) {
	return r.query(ctx,
		`SELECT `+todoColumns+`
		 FROM todo_items
		 WHERE user_id = $1
		   AND source_date <= $3
		   AND (NOT completed OR completed_date IS NULL OR completed_date >= $2)
		 ORDER BY source_date, created_at`,
		userID, models.Day(from), models.Day(to),
	)
}

// List возвращает todo пользователя с фильтрами.
func (r *TodoRepository) List(ctx context.Context, userID uuid.UUID, filter TodoFilter) ([]models.TodoItem, error) {
	clauses := []string{"user_id = $1"}
	args := []interface{}{userID}

	if filter.Label != nil {
		args = append(args, *filter.Label)
		clauses = append(clauses, fmt.Sprintf("label = $%d", len(args)))
	}
	if filter.Open != nil {
		args = append(args, !*filter.Open)
		clauses = append(clauses, fmt.Sprintf("completed = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	args = append(args, limit)

	query := fmt.Sprintf(
		"SELECT %s FROM todo_items WHERE %s ORDER BY source_date DESC, created_at DESC LIMIT $%d",
		todoColumns, strings.Join(clauses, " AND "), len(args),
	)
	return r.query(ctx, query, args...)
}

// SetCompleted переключает состояние todo вручную; синхронизация записи такое закрытие не отменяет.
func (r *TodoRepository) SetCompleted(ctx context.Context, userID, id uuid.UUID, completed bool, completedDate *time.Time) (models.TodoItem, error) {
	var todo models.TodoItem

	err := scanTodo(r.db.QueryRow(ctx,
		`UPDATE todo_items
		 SET completed = $3, completed_date = $4, closed_by_log = FALSE
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+todoColumns,
		id, userID, completed, completedDate,
	), &todo)
	if err != nil {
		return todo, mapError(err)
	}

	return todo, nil
}

// GetByID возвращает todo пользователя.
func (r *TodoRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (models.TodoItem, error) {
	var todo models.TodoItem

	err := scanTodo(r.db.QueryRow(ctx,
		`SELECT `+todoColumns+`
		 FROM todo_items
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	), &todo)
	if err != nil {
		return todo, mapError(err)
	}

	return todo, nil
}

// Delete удаляет todo.
func (r *TodoRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM todo_items WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *TodoRepository) query(ctx context.Context, sql string, args ...interface{}) ([]models.TodoItem, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := make([]models.TodoItem, 0)
	for rows.Next() {
		var todo models.TodoItem
		if err := scanTodo(rows, &todo); err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return todos, nil
}
