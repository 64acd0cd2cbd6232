package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/lifelog/backend/internal/models"
)

const (
	ContextUserIDKey   = "user_id"
	ContextLocationKey = "user_location"
	// accessTokenQuery используется EventSource-клиентами, которые не умеют ставить заголовки.
	accessTokenQuery = "access_token"
)

// JWTMiddleware проверяет access-токен и сохраняет user_id и часовой пояс в контексте.
func JWTMiddleware(manager *TokenManager) echo.MiddlewareFunc {
	return jwtMiddleware(manager, false)
}

// StreamJWTMiddleware работает как JWTMiddleware, но также принимает токен из query.
func StreamJWTMiddleware(manager *TokenManager) echo.MiddlewareFunc {
	return jwtMiddleware(manager, true)
}

func jwtMiddleware(manager *TokenManager, allowQuery bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil && allowQuery {
				if query := strings.TrimSpace(c.QueryParam(accessTokenQuery)); query != "" {
					tokenString, err = query, nil
				}
			}
			if err != nil {
				return err
			}

			claims, err := manager.ParseAccessToken(tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
			}

			c.Set(ContextUserIDKey, userID)
			c.Set(ContextLocationKey, claims.Location())
			return next(c)
		}
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}

	return token, nil
}

// UserIDFromContext извлекает идентификатор пользователя из контекста.
func UserIDFromContext(c echo.Context) (uuid.UUID, bool) {
	value := c.Get(ContextUserIDKey)
	userID, ok := value.(uuid.UUID)
	return userID, ok
}

// LocationFromContext возвращает часовой пояс пользователя, по умолчанию UTC.
func LocationFromContext(c echo.Context) *time.Location {
	if loc, ok := c.Get(ContextLocationKey).(*time.Location); ok && loc != nil {
		return loc
	}
	return time.UTC
}

// Today возвращает текущую календарную дату в часовом поясе пользователя.
func Today(c echo.Context) time.Time {
	return models.Day(time.Now().In(LocationFromContext(c)))
}
