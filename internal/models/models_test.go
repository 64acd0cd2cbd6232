package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestRefreshTokenState проверяет признаки активного и обменянного токена.
func TestRefreshTokenState(t *testing.T) {
	now := time.Now()
	token := RefreshToken{ExpiresAt: now.Add(time.Hour)}
	if !token.Usable(now) || token.Rotated() {
		t.Fatal("expected fresh token to be usable and not rotated")
	}

	if token.Usable(now.Add(2 * time.Hour)) {
		t.Fatal("expected expired token to be unusable")
	}

	revokedAt := now
	token.RevokedAt = &revokedAt
	if token.Usable(now) || token.Rotated() {
		t.Fatal("expected logged-out token to be unusable but not rotated")
	}

	next := uuid.New()
	token.ReplacedBy = &next
	if !token.Rotated() {
		t.Fatal("expected replaced token to be rotated")
	}
}

// TestWeekBounds проверяет границы недели с понедельника.
func TestWeekBounds(t *testing.T) {
	sunday := time.Date(2024, 1, 21, 23, 0, 0, 0, time.UTC)
	start, end := WeekBounds(sunday)
	if start.Format(DateLayout) != "2024-01-15" || end.Format(DateLayout) != "2024-01-21" {
		t.Fatalf("unexpected bounds %s..%s", start.Format(DateLayout), end.Format(DateLayout))
	}
}
