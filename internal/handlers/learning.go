package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"example.com/lifelog/backend/internal/auth"
	"example.com/lifelog/backend/internal/models"
	"example.com/lifelog/backend/internal/repository"
	"example.com/lifelog/backend/internal/srs"
	"example.com/lifelog/backend/internal/tracker"
)

type LearningHandler struct {
	Service *tracker.LearningService
}

// NewLearningHandler создает обработчик карточек повторения.
func NewLearningHandler(service *tracker.LearningService) *LearningHandler {
	return &LearningHandler{Service: service}
}

type ReviewRequest struct {
	Rating     string `json:"rating" validate:"required"`
	ReviewDate string `json:"review_date" validate:"omitempty,date"`
}

type LearningItemsResponse struct {
	Items []models.LearningItem `json:"items"`
}

type PreviewResponse struct {
	ItemID   string                    `json:"item_id"`
	Outcomes map[srs.Rating]srs.Update `json:"outcomes"`
}

// List возвращает карточки, при необходимости с фильтром status.
func (h *LearningHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var status *models.LearningStatus
	if raw := strings.ToLower(strings.TrimSpace(c.QueryParam("status"))); raw != "" {
		parsed := models.LearningStatus(raw)
		if !parsed.IsValid() {
			return badRequest(c, "invalid status")
		}
		status = &parsed
	}

	items, err := h.Service.List(c.Request().Context(), userID, status)
	if err != nil {
		return logError(c, "list learning items", err)
	}

	return c.JSON(http.StatusOK, LearningItemsResponse{Items: items})
}

// Due возвращает карточки к повторению на дату date (по умолчанию сегодня).
func (h *LearningHandler) Due(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	today, err := parseOptionalDate(c.QueryParam("date"), auth.Today(c))
	if err != nil {
		return badRequest(c, "invalid date")
	}

	items, err := h.Service.Due(c.Request().Context(), userID, today)
	if err != nil {
		return logError(c, "list due items", err)
	}

	return c.JSON(http.StatusOK, LearningItemsResponse{Items: items})
}

// Stats возвращает статистику по карточкам.
func (h *LearningHandler) Stats(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	stats, err := h.Service.Stats(c.Request().Context(), userID, auth.Today(c))
	if err != nil {
		return logError(c, "learning stats", err)
	}

	return c.JSON(http.StatusOK, stats)
}

// Review применяет оценку к карточке.
func (h *LearningHandler) Review(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, "invalid item id")
	}

	var req ReviewRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	rating, err := srs.ParseRating(req.Rating)
	if err != nil {
		return badRequest(c, "rating must be one of again, hard, good, easy")
	}

	reviewDate, err := parseOptionalDate(req.ReviewDate, auth.Today(c))
	if err != nil {
		return badRequest(c, "invalid review_date")
	}

	item, err := h.Service.Review(c.Request().Context(), userID, id, rating, reviewDate)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, item)
}

// Preview показывает расписание для каждой оценки без сохранения.
func (h *LearningHandler) Preview(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, "invalid item id")
	}

	reviewDate, err := parseOptionalDate(c.QueryParam("date"), auth.Today(c))
	if err != nil {
		return badRequest(c, "invalid date")
	}

	outcomes, err := h.Service.Preview(c.Request().Context(), userID, id, reviewDate)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, PreviewResponse{ItemID: id.String(), Outcomes: outcomes})
}

func (h *LearningHandler) Suspend(c echo.Context) error {
	return h.setSuspended(c, true)
}

func (h *LearningHandler) Unsuspend(c echo.Context) error {
	return h.setSuspended(c, false)
}

func (h *LearningHandler) setSuspended(c echo.Context, suspend bool) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, "invalid item id")
	}

	var item models.LearningItem
	if suspend {
		item, err = h.Service.Suspend(c.Request().Context(), userID, id)
	} else {
		item, err = h.Service.Unsuspend(c.Request().Context(), userID, id)
	}
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, item)
}

func (h *LearningHandler) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFound(c, "learning item not found")
	case errors.Is(err, tracker.ErrItemSuspended):
		return conflict(c, "learning item is suspended")
	default:
		return logError(c, "learning item", err)
	}
}
