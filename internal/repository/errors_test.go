package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// TestMapError проверяет перевод ошибок pgx в ошибки репозитория.
func TestMapError(t *testing.T) {
	other := errors.New("boom")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", pgx.ErrNoRows, ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, ErrConflict},
		{"other pg error", &pgconn.PgError{Code: "23503"}, nil},
		{"other", other, other},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := mapError(tc.in)
			if tc.want == nil {
				if tc.in == nil && got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				if tc.in != nil && got != tc.in {
					t.Fatalf("expected original error, got %v", got)
				}
				return
			}
			if !errors.Is(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

// TestTodoChangesEmpty проверяет определение пустого набора изменений.
func TestTodoChangesEmpty(t *testing.T) {
	if !(TodoChanges{}).Empty() {
		t.Fatal("expected empty changes")
	}
	if (TodoChanges{Delete: []uuid.UUID{uuid.New()}}).Empty() {
		t.Fatal("expected non-empty changes")
	}
}
