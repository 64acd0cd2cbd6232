package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/lifelog/backend/internal/auth"
	"example.com/lifelog/backend/internal/models"
	"example.com/lifelog/backend/internal/repository"
	"example.com/lifelog/backend/internal/tasks"
	"example.com/lifelog/backend/internal/tracker"
)

type DailyLogHandler struct {
	Service *tracker.DailyLogService
}

// NewDailyLogHandler создает обработчик дневных записей.
func NewDailyLogHandler(service *tracker.DailyLogService) *DailyLogHandler {
	return &DailyLogHandler{Service: service}
}

type DailyLogRequest struct {
	Logged          bool     `json:"logged"`
	TasksMarkdown   string   `json:"tasks_markdown" validate:"max=20000"`
	GymSession      bool     `json:"gym_session"`
	Weight          *float64 `json:"weight" validate:"omitempty,gt=0,lt=1000"`
	CaloriesTracked bool     `json:"calories_tracked"`
}

type DailyLogResponse struct {
	Log     models.DailyLog `json:"log"`
	Derived tasks.TagCounts `json:"derived"`
}

type DailyLogsResponse struct {
	From string            `json:"from"`
	To   string            `json:"to"`
	Logs []models.DailyLog `json:"logs"`
}

// List возвращает дневные записи за интервал.
func (h *DailyLogHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	from, to, err := periodFromQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	logs, err := h.Service.List(c.Request().Context(), userID, from, to)
	if err != nil {
		return logError(c, "list daily logs", err)
	}

	return c.JSON(http.StatusOK, DailyLogsResponse{
		From: from.Format(models.DateLayout),
		To:   to.Format(models.DateLayout),
		Logs: logs,
	})
}

// Get возвращает запись за дату вместе с подсчетом тегов.
func (h *DailyLogHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	date, err := parseDateParam(c, "date")
	if err != nil {
		return badRequest(c, err.Error())
	}

	log, err := h.Service.Load(c.Request().Context(), userID, date)
	if err != nil {
		return logError(c, "load daily log", err)
	}

	return c.JSON(http.StatusOK, DailyLogResponse{
		Log:     log,
		Derived: h.Service.ComputeDerived(log),
	})
}

// Put сохраняет запись за дату и синхронизирует todo и карточки.
func (h *DailyLogHandler) Put(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	date, err := parseDateParam(c, "date")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req DailyLogRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	result, err := h.Service.Save(c.Request().Context(), userID, date, tracker.DailyLogInput{
		Logged:          req.Logged,
		TasksMarkdown:   req.TasksMarkdown,
		GymSession:      req.GymSession,
		Weight:          req.Weight,
		CaloriesTracked: req.CaloriesTracked,
	})
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid daily log")
		}
		return logError(c, "save daily log", err)
	}

	return c.JSON(http.StatusOK, result)
}
