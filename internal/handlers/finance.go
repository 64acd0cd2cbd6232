package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/lifelog/backend/internal/auth"
	"example.com/lifelog/backend/internal/models"
	"example.com/lifelog/backend/internal/repository"
)

type FinanceHandler struct {
	Finance *repository.FinanceRepository
}

// NewFinanceHandler создает обработчик расходов, доходов и бюджетной цели.
func NewFinanceHandler(finance *repository.FinanceRepository) *FinanceHandler {
	return &FinanceHandler{Finance: finance}
}

type ExpenseRequest struct {
	Date        string `json:"date" validate:"required,date"`
	Category    string `json:"category" validate:"max=64"`
	Title       string `json:"title" validate:"required,max=200"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
}

type IncomeRequest struct {
	Date        string `json:"date" validate:"required,date"`
	Source      string `json:"source" validate:"required,max=200"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
}

type BudgetTargetRequest struct {
	SavingsRateTarget   float64 `json:"savings_rate_target" validate:"gte=0,lte=1"`
	WeeklySpendCapCents int64   `json:"weekly_spend_cap_cents" validate:"gte=0"`
}

type ExpensesResponse struct {
	Expenses []models.Expense `json:"expenses"`
}

type IncomesResponse struct {
	Incomes []models.Income `json:"incomes"`
}

// ListExpenses возвращает расходы за интервал.
func (h *FinanceHandler) ListExpenses(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	from, to, err := periodFromQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	expenses, err := h.Finance.ListExpenses(c.Request().Context(), userID, from, to)
	if err != nil {
		return logError(c, "list expenses", err)
	}

	return c.JSON(http.StatusOK, ExpensesResponse{Expenses: expenses})
}

// CreateExpense добавляет расход.
func (h *FinanceHandler) CreateExpense(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	expense, err := bindExpense(c, userID)
	if err != nil {
		return badRequest(c, err.Error())
	}

	saved, err := h.Finance.CreateExpense(c.Request().Context(), expense)
	if err != nil {
		return h.writeError(c, err, "expense")
	}

	return c.JSON(http.StatusCreated, saved)
}

// UpdateExpense изменяет расход.
func (h *FinanceHandler) UpdateExpense(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, "invalid expense id")
	}

	expense, err := bindExpense(c, userID)
	if err != nil {
		return badRequest(c, err.Error())
	}
	expense.ID = id

	saved, err := h.Finance.UpdateExpense(c.Request().Context(), expense)
	if err != nil {
		return h.writeError(c, err, "expense")
	}

	return c.JSON(http.StatusOK, saved)
}

// DeleteExpense удаляет расход.
func (h *FinanceHandler) DeleteExpense(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, "invalid expense id")
	}

	if err := h.Finance.DeleteExpense(c.Request().Context(), userID, id); err != nil {
		return h.writeError(c, err, "expense")
	}

	return c.NoContent(http.StatusNoContent)
}

// ListIncomes возвращает доходы за интервал.
func (h *FinanceHandler) ListIncomes(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	from, to, err := periodFromQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	incomes, err := h.Finance.ListIncomes(c.Request().Context(), userID, from, to)
	if err != nil {
		return logError(c, "list incomes", err)
	}

	return c.JSON(http.StatusOK, IncomesResponse{Incomes: incomes})
}

// CreateIncome добавляет доход.
func (h *FinanceHandler) CreateIncome(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	income, err := bindIncome(c, userID)
	if err != nil {
		return badRequest(c, err.Error())
	}

	saved, err := h.Finance.CreateIncome(c.Request().Context(), income)
	if err != nil {
		return h.writeError(c, err, "income")
	}

	return c.JSON(http.StatusCreated, saved)
}

// UpdateIncome изменяет доход.
func (h *FinanceHandler) UpdateIncome(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, "invalid income id")
	}

	income, err := bindIncome(c, userID)
	if err != nil {
		return badRequest(c, err.Error())
	}
	income.ID = id

	saved, err := h.Finance.UpdateIncome(c.Request().Context(), income)
	if err != nil {
		return h.writeError(c, err, "income")
	}

	return c.JSON(http.StatusOK, saved)
}

// DeleteIncome удаляет доход.
func (h *FinanceHandler) DeleteIncome(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, "invalid income id")
	}

	if err := h.Finance.DeleteIncome(c.Request().Context(), userID, id); err != nil {
		return h.writeError(c, err, "income")
	}

	return c.NoContent(http.StatusNoContent)
}

// GetBudgetTarget возвращает бюджетную цель.
func (h *FinanceHandler) GetBudgetTarget(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	target, err := h.Finance.GetBudgetTarget(c.Request().Context(), userID)
	if err != nil {
		return h.writeError(c, err, "budget target")
	}

	return c.JSON(http.StatusOK, target)
}

// PutBudgetTarget сохраняет бюджетную цель.
func (h *FinanceHandler) PutBudgetTarget(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req BudgetTargetRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	saved, err := h.Finance.UpsertBudgetTarget(c.Request().Context(), models.BudgetTarget{
		UserID:              userID,
		SavingsRateTarget:   req.SavingsRateTarget,
		WeeklySpendCapCents: req.WeeklySpendCapCents,
	})
	if err != nil {
		return h.writeError(c, err, "budget target")
	}

	return c.JSON(http.StatusOK, saved)
}

func (h *FinanceHandler) writeError(c echo.Context, err error, entity string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFound(c, entity+" not found")
	case errors.Is(err, repository.ErrInvalid):
		return badRequest(c, "invalid "+entity)
	default:
		return logError(c, entity, err)
	}
}

func bindExpense(c echo.Context, userID uuid.UUID) (models.Expense, error) {
	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		return models.Expense{}, errors.New("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return models.Expense{}, errors.New("validation failed")
	}

	date, err := models.ParseDate(req.Date)
	if err != nil {
		return models.Expense{}, errors.New("invalid date")
	}

	category := strings.ToLower(strings.TrimSpace(req.Category))
	if category == "" {
		category = "other"
	}

	return models.Expense{
		UserID:      userID,
		Date:        date,
		Category:    category,
		Title:       strings.TrimSpace(req.Title),
		AmountCents: req.AmountCents,
	}, nil
}

func bindIncome(c echo.Context, userID uuid.UUID) (models.Income, error) {
	var req IncomeRequest
	if err := c.Bind(&req); err != nil {
		return models.Income{}, errors.New("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return models.Income{}, errors.New("validation failed")
	}

	date, err := models.ParseDate(req.Date)
	if err != nil {
		return models.Income{}, errors.New("invalid date")
	}

	return models.Income{
		UserID:      userID,
		Date:        date,
		Source:      strings.TrimSpace(req.Source),
		AmountCents: req.AmountCents,
	}, nil
}
