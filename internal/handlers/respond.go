package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/lifelog/backend/internal/auth"
	"example.com/lifelog/backend/internal/models"
)

const (
	timeLayout = time.RFC3339
	// maxPeriodDays ограничивает выборки по интервалу дат.
	maxPeriodDays = 366
)

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": message})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
}

func conflict(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, map[string]string{"error": message})
}

func notFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, map[string]string{"error": message})
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, map[string]string{"error": "access denied"})
}

func serverError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

// logError пишет ошибку с контекстом запроса и отвечает 500.
func logError(c echo.Context, msg string, err error) error {
	slog.Error(msg,
		slog.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		slog.String("path", c.Path()),
		slog.Any("error", err),
	)
	return serverError(c)
}

func parseDateParam(c echo.Context, name string) (time.Time, error) {
	raw := strings.TrimSpace(c.Param(name))
	date, err := models.ParseDate(raw)
	if err != nil {
		return time.Time{}, errors.New("invalid " + name)
	}
	return date, nil
}

func parseIDParam(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

// parsePeriod разбирает интервал YYYY-MM-DD; пустые границы заменяются на текущую неделю.
func parsePeriod(from, to string, now time.Time) (time.Time, time.Time, error) {
	weekStart, weekEnd := models.WeekBounds(now)

	start := weekStart
	if value := strings.TrimSpace(from); value != "" {
		parsed, err := models.ParseDate(value)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid from date")
		}
		start = parsed
	}

	end := weekEnd
	if value := strings.TrimSpace(to); value != "" {
		parsed, err := models.ParseDate(value)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid to date")
		}
		end = parsed
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("to must be on or after from")
	}
	if end.Sub(start) > maxPeriodDays*24*time.Hour {
		return time.Time{}, time.Time{}, errors.New("period is too long")
	}

	return start, end, nil
}

func periodFromQuery(c echo.Context) (time.Time, time.Time, error) {
	return parsePeriod(c.QueryParam("from"), c.QueryParam("to"), auth.Today(c))
}

// parseOptionalDate разбирает дату из query; пустое значение дает today.
func parseOptionalDate(raw string, today time.Time) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return models.Day(today), nil
	}
	return models.ParseDate(value)
}

func parseOptionalBool(raw string) (*bool, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parsePagination(c echo.Context, defaultLimit, maxLimit int) (int, int, error) {
	limit := defaultLimit
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return 0, 0, errors.New("invalid limit")
		}
		if parsed > maxLimit {
			parsed = maxLimit
		}
		limit = parsed
	}

	offset := 0
	if raw := strings.TrimSpace(c.QueryParam("offset")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return 0, 0, errors.New("invalid offset")
		}
		offset = parsed
	}

	return limit, offset, nil
}
