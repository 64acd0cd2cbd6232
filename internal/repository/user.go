package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/lifelog/backend/internal/models"
)

const userColumns = `id, email, password_hash, name, timezone, created_at, updated_at`

type UserRepository struct {
	db *pgxpool.Pool
}

// ProfileUpdate описывает изменяемые поля профиля; nil означает "не менять".
type ProfileUpdate struct {
	Name     *string
	Timezone *string
}

// NewUserRepository создает репозиторий пользователей.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row rowScanner, user *models.User) error {
	return row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Timezone, &user.CreatedAt, &user.UpdatedAt)
}

// Create создает пользователя. Пустой часовой пояс сохраняется как UTC.
func (r *UserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	var saved models.User

	if strings.TrimSpace(user.Email) == "" || user.PasswordHash == "" {
		return saved, ErrInvalid
	}
	timezone := user.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	err := scanUser(r.db.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, name, timezone)
		 VALUES (lower($1), $2, $3, $4)
		 RETURNING `+userColumns,
		user.Email, user.PasswordHash, user.Name, timezone,
	), &saved)
	if err != nil {
		return saved, mapError(err)
	}

	return saved, nil
}

// GetByEmail возвращает пользователя по email без учета регистра.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User

	err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 WHERE email = lower($1)`,
		strings.TrimSpace(email),
	), &user)
	if err != nil {
		return user, mapError(err)
	}

	return user, nil
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	var user models.User

	err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 WHERE id = $1`,
		id,
	), &user)
	if err != nil {
		return user, mapError(err)
	}

	return user, nil
}

// UpdateProfile меняет имя и часовой пояс. Пустое имя очищает его.
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (models.User, error) {
	var user models.User

	clearName := update.Name != nil && *update.Name == ""
	err := scanUser(r.db.QueryRow(ctx,
		`UPDATE users
		 SET name = CASE WHEN $4 THEN NULL ELSE COALESCE($2, name) END,
		     timezone = COALESCE($3, timezone),
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, update.Name, update.Timezone, clearName,
	), &user)
	if err != nil {
		return user, mapError(err)
	}

	return user, nil
}
