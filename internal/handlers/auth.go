package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/lifelog/backend/internal/auth"
	"example.com/lifelog/backend/internal/models"
	"example.com/lifelog/backend/internal/repository"
)

type AuthHandler struct {
	Users        *repository.UserRepository
	Tokens       *repository.RefreshTokenRepository
	TokenManager *auth.TokenManager
	Passwords    *auth.PasswordHasher
}

// NewAuthHandler создает обработчик авторизации.
func NewAuthHandler(users *repository.UserRepository, tokens *repository.RefreshTokenRepository, manager *auth.TokenManager, passwords *auth.PasswordHasher) *AuthHandler {
	return &AuthHandler{
		Users:        users,
		Tokens:       tokens,
		TokenManager: manager,
		Passwords:    passwords,
	}
}

type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Timezone string  `json:"timezone" validate:"omitempty,timezone"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type UpdateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Timezone *string `json:"timezone" validate:"omitempty,timezone"`
}

type AuthUser struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Name     *string   `json:"name,omitempty"`
	Timezone string    `json:"timezone"`
}

type AuthResponse struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	User             AuthUser  `json:"user"`
}

type UserResponse struct {
	User AuthUser `json:"user"`
}

// Register регистрирует пользователя и выдает токены.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	passwordHash, err := h.Passwords.Hash(strings.TrimSpace(req.Password))
	if err != nil {
		return logError(c, "hash password", err)
	}

	user, err := h.Users.Create(c.Request().Context(), models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: passwordHash,
		Name:         normalizeName(req.Name),
		Timezone:     req.Timezone,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return conflict(c, "user already exists")
		}
		return logError(c, "create user", err)
	}

	response, err := h.issueTokens(c.Request().Context(), user)
	if err != nil {
		return logError(c, "issue tokens", err)
	}

	return c.JSON(http.StatusCreated, response)
}

// Login выполняет вход и выдает токены.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	user, err := h.Users.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return logError(c, "find user", err)
	}

	if err := h.Passwords.Compare(user.PasswordHash, strings.TrimSpace(req.Password)); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			slog.Warn("password compare failed", slog.String("user_id", user.ID.String()), slog.String("error", err.Error()))
		}
		return unauthorized(c)
	}

	response, err := h.issueTokens(c.Request().Context(), user)
	if err != nil {
		return logError(c, "issue tokens", err)
	}

	return c.JSON(http.StatusOK, response)
}

// Refresh обменивает refresh-токен на новую пару. Повторное предъявление уже
// обменянного токена отзывает все сессии пользователя.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	ctx := c.Request().Context()
	stored, err := h.lookupRefresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, errRefreshRejected) {
			return unauthorized(c)
		}
		return logError(c, "load refresh token", err)
	}

	if stored.Rotated() {
		revoked, err := h.Tokens.RevokeAll(ctx, stored.UserID)
		if err != nil {
			return logError(c, "revoke sessions", err)
		}
		slog.Warn("refresh token reuse detected",
			slog.String("user_id", stored.UserID.String()),
			slog.Int64("revoked", revoked),
		)
		return unauthorized(c)
	}
	if !stored.Usable(time.Now()) {
		return unauthorized(c)
	}

	user, err := h.Users.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return logError(c, "find user", err)
	}

	newRefreshID := uuid.New()
	pair, err := h.TokenManager.NewTokenPair(subjectOf(user), newRefreshID)
	if err != nil {
		return logError(c, "issue tokens", err)
	}

	if err := h.Tokens.Rotate(ctx, stored.ID, h.refreshRecord(user.ID, newRefreshID, pair)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return logError(c, "rotate refresh token", err)
	}

	return c.JSON(http.StatusOK, authResponse(user, pair))
}

// Logout отзывает refresh-токен.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	stored, err := h.lookupRefresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, errRefreshRejected) {
			return unauthorized(c)
		}
		return logError(c, "load refresh token", err)
	}

	if err := h.Tokens.Revoke(c.Request().Context(), stored.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return logError(c, "revoke refresh token", err)
	}

	return c.NoContent(http.StatusNoContent)
}

// Me возвращает данные текущего пользователя.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := h.Users.GetByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		return logError(c, "find user", err)
	}

	return c.JSON(http.StatusOK, UserResponse{User: toAuthUser(user)})
}

// UpdateMe меняет имя и часовой пояс. Новый пояс попадает в access-токен
// при следующем обновлении пары.
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	update := repository.ProfileUpdate{Timezone: req.Timezone}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		update.Name = &name
	}

	user, err := h.Users.UpdateProfile(c.Request().Context(), userID, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		return logError(c, "update profile", err)
	}

	return c.JSON(http.StatusOK, UserResponse{User: toAuthUser(user)})
}

var errRefreshRejected = errors.New("refresh token rejected")

// lookupRefresh проверяет подпись, хэш и владельца refresh-токена и возвращает его запись.
func (h *AuthHandler) lookupRefresh(ctx context.Context, token string) (models.RefreshToken, error) {
	claims, err := h.TokenManager.ParseRefreshToken(token)
	if err != nil {
		return models.RefreshToken{}, errRefreshRejected
	}

	refreshID, err := uuid.Parse(claims.ID)
	if err != nil {
		return models.RefreshToken{}, errRefreshRejected
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return models.RefreshToken{}, errRefreshRejected
	}

	stored, err := h.Tokens.GetByID(ctx, refreshID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return stored, errRefreshRejected
		}
		return stored, err
	}

	if stored.UserID != userID || !h.TokenManager.VerifyRefreshHash(stored.TokenHash, token) {
		return stored, errRefreshRejected
	}

	return stored, nil
}

func (h *AuthHandler) issueTokens(ctx context.Context, user models.User) (AuthResponse, error) {
	refreshID := uuid.New()
	pair, err := h.TokenManager.NewTokenPair(subjectOf(user), refreshID)
	if err != nil {
		return AuthResponse{}, err
	}

	if err := h.Tokens.Create(ctx, h.refreshRecord(user.ID, refreshID, pair)); err != nil {
		return AuthResponse{}, err
	}

	return authResponse(user, pair), nil
}

func (h *AuthHandler) refreshRecord(userID, refreshID uuid.UUID, pair auth.TokenPair) models.RefreshToken {
	return models.RefreshToken{
		ID:        refreshID,
		UserID:    userID,
		TokenHash: h.TokenManager.HashRefreshToken(pair.RefreshToken),
		ExpiresAt: pair.RefreshExpiresAt,
	}
}

func subjectOf(user models.User) auth.Subject {
	return auth.Subject{UserID: user.ID, Timezone: user.Timezone}
}

func authResponse(user models.User, pair auth.TokenPair) AuthResponse {
	return AuthResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
		User:             toAuthUser(user),
	}
}

func toAuthUser(user models.User) AuthUser {
	return AuthUser{
		ID:       user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Timezone: user.Timezone,
	}
}

func normalizeName(name *string) *string {
	if name == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil
	}

	return &trimmed
}
