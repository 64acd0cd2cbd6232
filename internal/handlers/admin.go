package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/lifelog/backend/internal/auth"
	"example.com/lifelog/backend/internal/models"
	"example.com/lifelog/backend/internal/repository"
)

type AdminHandler struct {
	Repo *repository.AdminRepository
}

// NewAdminHandler создает обработчик админских эндпоинтов.
func NewAdminHandler(repo *repository.AdminRepository) *AdminHandler {
	return &AdminHandler{Repo: repo}
}

type AdminUserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Name        *string   `json:"name,omitempty"`
	DailyLogs   int       `json:"daily_logs"`
	LastLogDate *string   `json:"last_log_date,omitempty"`
	CreatedAt   string    `json:"created_at"`
	UpdatedAt   string    `json:"updated_at"`
}

type AdminUsersResponse struct {
	Total int                 `json:"total"`
	Users []AdminUserResponse `json:"users"`
}

type AdminUsageDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type AdminUsageResponse struct {
	Users          int             `json:"users"`
	DailyLogs      int             `json:"daily_logs"`
	WeeklyLogs     int             `json:"weekly_logs"`
	LearningItems  int             `json:"learning_items"`
	Reviews        int             `json:"reviews"`
	DailyLogsByDay []AdminUsageDay `json:"daily_logs_by_day"`
	ReviewsByDay   []AdminUsageDay `json:"reviews_by_day"`
}

// ListUsers возвращает список пользователей для админки.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	limit, offset, err := parsePagination(c, 50, 200)
	if err != nil {
		return badRequest(c, err.Error())
	}

	users, err := h.Repo.ListUsers(c.Request().Context(), limit, offset)
	if err != nil {
		return logError(c, "admin query", err)
	}

	total, err := h.Repo.CountUsers(c.Request().Context())
	if err != nil {
		return logError(c, "admin query", err)
	}

	response := make([]AdminUserResponse, 0, len(users))
	for _, user := range users {
		item := AdminUserResponse{
			ID:        user.ID,
			Email:     user.Email,
			Name:      user.Name,
			DailyLogs: user.DailyLogs,
			CreatedAt: user.CreatedAt.Format(timeLayout),
			UpdatedAt: user.UpdatedAt.Format(timeLayout),
		}
		if user.LastLogDate != nil {
			last := user.LastLogDate.Format(models.DateLayout)
			item.LastLogDate = &last
		}
		response = append(response, item)
	}

	return c.JSON(http.StatusOK, AdminUsersResponse{
		Total: total,
		Users: response,
	})
}

// Usage возвращает агрегированную статистику использования.
func (h *AdminHandler) Usage(c echo.Context) error {
	days := 7
	if raw := strings.TrimSpace(c.QueryParam("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return badRequest(c, "invalid days")
		}
		if parsed > 30 {
			parsed = 30
		}
		days = parsed
	}

	stats, err := h.Repo.UsageStats(c.Request().Context(), days)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid days")
		}
		return logError(c, "admin query", err)
	}

	return c.JSON(http.StatusOK, AdminUsageResponse{
		Users:          stats.Users,
		DailyLogs:      stats.DailyLogs,
		WeeklyLogs:     stats.WeeklyLogs,
		LearningItems:  stats.LearningItems,
		Reviews:        stats.Reviews,
		DailyLogsByDay: usageDays(stats.DailyLogsByDay),
		ReviewsByDay:   usageDays(stats.ReviewsByDay),
	})
}

// AdminMiddleware ограничивает доступ к админским роутам по email.
func AdminMiddleware(users *repository.UserRepository, emails []string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		trimmed := strings.ToLower(strings.TrimSpace(email))
		if trimmed == "" {
			continue
		}
		allowed[trimmed] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := auth.UserIDFromContext(c)
			if !ok {
				return unauthorized(c)
			}

			if len(allowed) == 0 {
				return forbidden(c)
			}

			user, err := users.GetByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return forbidden(c)
				}
				return logError(c, "admin query", err)
			}

			email := strings.ToLower(strings.TrimSpace(user.Email))
			if _, ok := allowed[email]; !ok {
				return forbidden(c)
			}

			return next(c)
		}
	}
}

func usageDays(counts []repository.DailyCount) []AdminUsageDay {
	days := make([]AdminUsageDay, 0, len(counts))
	for _, day := range counts {
		days = append(days, AdminUsageDay{
			Date:  day.Day.Format(models.DateLayout),
			Count: day.Count,
		})
	}
	return days
}
