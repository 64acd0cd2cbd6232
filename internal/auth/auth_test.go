package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

func newManager() *TokenManager {
	return NewTokenManager("test-secret", "lifelog", time.Minute, time.Hour)
}

// TestTokenPairRoundTrip проверяет выпуск и разбор пары токенов.
func TestTokenPairRoundTrip(t *testing.T) {
	manager := newManager()
	userID := uuid.New()
	refreshID := uuid.New()

	pair, err := manager.NewTokenPair(Subject{UserID: userID, Timezone: "Europe/Moscow"}, refreshID)
	if err != nil {
		t.Fatalf("new token pair: %v", err)
	}

	access, err := manager.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if access.Subject != userID.String() {
		t.Fatalf("expected subject %s, got %s", userID, access.Subject)
	}
	if access.Timezone != "Europe/Moscow" {
		t.Fatalf("expected timezone claim, got %q", access.Timezone)
	}

	refresh, err := manager.ParseRefreshToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if refresh.ID != refreshID.String() {
		t.Fatalf("expected refresh id %s, got %s", refreshID, refresh.ID)
	}

	if _, err := manager.ParseAccessToken(pair.RefreshToken); !errors.Is(err, ErrTokenType) {
		t.Fatalf("expected ErrTokenType for refresh token, got %v", err)
	}

	other := NewTokenManager("other-secret", "lifelog", time.Minute, time.Hour)
	if _, err := other.ParseAccessToken(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}

// TestRefreshHash проверяет, что хэш refresh-токена зависит от секрета.
func TestRefreshHash(t *testing.T) {
	manager := newManager()
	hash := manager.HashRefreshToken("abc")
	if !manager.VerifyRefreshHash(hash, "abc") {
		t.Fatal("expected hash to match")
	}
	if manager.VerifyRefreshHash(hash, "abd") {
		t.Fatal("expected hash mismatch")
	}

	other := NewTokenManager("other-secret", "lifelog", time.Minute, time.Hour)
	if other.VerifyRefreshHash(hash, "abc") {
		t.Fatal("expected hash from another secret to mismatch")
	}
}

// TestPasswordHasher проверяет bcrypt-хэш и ошибку несовпадения.
func TestPasswordHasher(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := hasher.Compare(hash, "correct horse"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := hasher.Compare(hash, "wrong"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}

	if NewPasswordHasher(100).cost != bcrypt.DefaultCost {
		t.Fatal("expected out-of-range cost to fall back to default")
	}
}

// TestLoadLocation проверяет разбор часового пояса.
func TestLoadLocation(t *testing.T) {
	if LoadLocation("") != time.UTC {
		t.Fatal("expected UTC for empty name")
	}
	if LoadLocation("Mars/Olympus") != time.UTC {
		t.Fatal("expected UTC for unknown name")
	}
	if loc := LoadLocation("Asia/Tokyo"); loc.String() != "Asia/Tokyo" {
		t.Fatalf("expected Asia/Tokyo, got %s", loc)
	}
}

func runMiddleware(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (uuid.UUID, error) {
	t.Helper()

	e := echo.New()
	c := e.NewContext(req, httptest.NewRecorder())

	var got uuid.UUID
	err := mw(func(c echo.Context) error {
		got, _ = UserIDFromContext(c)
		if LocationFromContext(c).String() != "Asia/Tokyo" {
			t.Errorf("expected Asia/Tokyo location, got %s", LocationFromContext(c))
		}
		return nil
	})(c)
	return got, err
}

// TestJWTMiddleware проверяет заголовок Authorization и query-токен для SSE.
func TestJWTMiddleware(t *testing.T) {
	manager := newManager()
	userID := uuid.New()
	pair, err := manager.NewTokenPair(Subject{UserID: userID, Timezone: "Asia/Tokyo"}, uuid.New())
	if err != nil {
		t.Fatalf("new token pair: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+pair.AccessToken)
	got, err := runMiddleware(t, JWTMiddleware(manager), req)
	if err != nil || got != userID {
		t.Fatalf("expected user %s, got %s (err %v)", userID, got, err)
	}

	queryReq := httptest.NewRequest(http.MethodGet, "/?access_token="+pair.AccessToken, nil)
	if _, err := runMiddleware(t, JWTMiddleware(manager), queryReq); err == nil {
		t.Fatal("expected query token to be rejected by JWTMiddleware")
	}

	got, err = runMiddleware(t, StreamJWTMiddleware(manager), queryReq)
	if err != nil || got != userID {
		t.Fatalf("expected stream middleware to accept query token, got %s (err %v)", got, err)
	}

	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.Header.Set(echo.HeaderAuthorization, "Token abc")
	if _, err := runMiddleware(t, JWTMiddleware(manager), bad); err == nil {
		t.Fatal("expected invalid header to be rejected")
	}
}
