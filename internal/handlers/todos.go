package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/lifelog/backend/internal/auth"
	"example.com/lifelog/backend/internal/models"
	"example.com/lifelog/backend/internal/repository"
)

type TodoHandler struct {
	Todos *repository.TodoRepository
}

// NewTodoHandler создает обработчик todo.
func NewTodoHandler(todos *repository.TodoRepository) *TodoHandler {
	return &TodoHandler{Todos: todos}
}

type TodosResponse struct {
	Todos []models.TodoItem `json:"todos"`
}

// List возвращает todo с фильтрами label и open.
func (h *TodoHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	filter, err := parseTodoFilter(c.QueryParam("label"), c.QueryParam("open"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	limit, _, err := parsePagination(c, 200, 500)
	if err != nil {
		return badRequest(c, err.Error())
	}
	filter.Limit = limit

	todos, err := h.Todos.List(c.Request().Context(), userID, filter)
	if err != nil {
		return logError(c, "list todos", err)
	}

	return c.JSON(http.StatusOK, TodosResponse{Todos: todos})
}

// Toggle переключает выполнение todo; дата закрытия - сегодняшний день.
func (h *TodoHandler) Toggle(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, "invalid todo id")
	}

	todo, err := h.Todos.GetByID(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "todo not found")
		}
		return logError(c, "get todo", err)
	}

	completed := !todo.Completed
	var completedDate *time.Time
	if completed {
		today := auth.Today(c)
		completedDate = &today
	}

	updated, err := h.Todos.SetCompleted(c.Request().Context(), userID, id, completed, completedDate)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "todo not found")
		}
		return logError(c, "toggle todo", err)
	}

	return c.JSON(http.StatusOK, updated)
}

// Delete удаляет todo.
func (h *TodoHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, "invalid todo id")
	}

	if err := h.Todos.Delete(c.Request().Context(), userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "todo not found")
		}
		return logError(c, "delete todo", err)
	}

	return c.NoContent(http.StatusNoContent)
}

func parseTodoFilter(label, open string) (repository.TodoFilter, error) {
	var filter repository.TodoFilter

	if value := strings.ToLower(strings.TrimSpace(label)); value != "" {
		parsed := models.TodoLabel(value)
		if !parsed.IsValid() {
			return filter, errors.New("invalid label")
		}
		filter.Label = &parsed
	}

	parsedOpen, err := parseOptionalBool(open)
	if err != nil {
		return filter, errors.New("invalid open")
	}
	filter.Open = parsedOpen

	return filter, nil
}
