package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"example.com/lifelog/backend/internal/auth"
	"example.com/lifelog/backend/internal/models"
	"example.com/lifelog/backend/internal/repository"
	"example.com/lifelog/backend/internal/tracker"
)

type WeeklyLogHandler struct {
	Service *tracker.WeeklyLogService
}

// NewWeeklyLogHandler создает обработчик недельных записей.
func NewWeeklyLogHandler(service *tracker.WeeklyLogService) *WeeklyLogHandler {
	return &WeeklyLogHandler{Service: service}
}

type WeeklyLogRequest struct {
	TasksMarkdown             string                 `json:"tasks_markdown" validate:"max=20000"`
	TargetWeight              float64                `json:"target_weight" validate:"gte=0,lt=1000"`
	PrimaryRelationshipActive bool                   `json:"primary_relationship_active"`
	FinanceConceptApplied     models.FinanceConcept  `json:"finance_concept_applied" validate:"omitempty,oneof=none noted implemented"`
	PortfolioReview           models.PortfolioReview `json:"portfolio_review" validate:"omitempty,oneof=none reviewed ips_checked"`
}

type WeeklyLogsResponse struct {
	Logs []models.WeeklyLog `json:"logs"`
}

// List возвращает последние недельные записи.
func (h *WeeklyLogHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	limit := 0
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return badRequest(c, "invalid limit")
		}
		limit = parsed
	}

	logs, err := h.Service.List(c.Request().Context(), userID, limit)
	if err != nil {
		return logError(c, "list weekly logs", err)
	}

	return c.JSON(http.StatusOK, WeeklyLogsResponse{Logs: logs})
}

// Get возвращает запись недели.
func (h *WeeklyLogHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	weekStart, err := parseDateParam(c, "weekStart")
	if err != nil {
		return badRequest(c, err.Error())
	}

	log, err := h.Service.Load(c.Request().Context(), userID, weekStart)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, log)
}

// Put создает или обновляет запись недели.
func (h *WeeklyLogHandler) Put(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	weekStart, err := parseDateParam(c, "weekStart")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req WeeklyLogRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	log, err := h.Service.Save(c.Request().Context(), userID, weekStart, tracker.WeeklyLogInput{
		TasksMarkdown:             req.TasksMarkdown,
		TargetWeight:              req.TargetWeight,
		PrimaryRelationshipActive: req.PrimaryRelationshipActive,
		FinanceConceptApplied:     req.FinanceConceptApplied,
		PortfolioReview:           req.PortfolioReview,
	})
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, log)
}

// Scores считает оценки по шести осям за неделю.
func (h *WeeklyLogHandler) Scores(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	weekStart, err := parseDateParam(c, "weekStart")
	if err != nil {
		return badRequest(c, err.Error())
	}

	scores, err := h.Service.ComputeDerived(c.Request().Context(), userID, weekStart)
	if err != nil {
		return logError(c, "compute weekly scores", err)
	}

	return c.JSON(http.StatusOK, scores)
}

func (h *WeeklyLogHandler) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, tracker.ErrNotMonday):
		return badRequest(c, "week must start on monday")
	case errors.Is(err, tracker.ErrInvalidFlag), errors.Is(err, repository.ErrInvalid):
		return badRequest(c, "invalid weekly log")
	case errors.Is(err, repository.ErrOverlap):
		return conflict(c, "week overlaps an existing weekly log")
	case errors.Is(err, repository.ErrNotFound):
		return notFound(c, "weekly log not found")
	default:
		return logError(c, "weekly log", err)
	}
}
