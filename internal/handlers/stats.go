package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"example.com/lifelog/backend/internal/auth"
	"example.com/lifelog/backend/internal/models"
	"example.com/lifelog/backend/internal/repository"
)

type StatsHandler struct {
	Stats *repository.StatsRepository
}

// NewStatsHandler создает обработчик финансовой статистики.
func NewStatsHandler(stats *repository.StatsRepository) *StatsHandler {
	return &StatsHandler{Stats: stats}
}

type FinanceSummaryResponse struct {
	From         string                     `json:"from"`
	To           string                     `json:"to"`
	IncomeCents  int64                      `json:"income_cents"`
	SpentCents   int64                      `json:"spent_cents"`
	NetCents     int64                      `json:"net_cents"`
	SavingsRate  float64                    `json:"savings_rate"`
	ExpenseCount int                        `json:"expense_count"`
	IncomeCount  int                        `json:"income_count"`
	Categories   []CategorySpendingCategory `json:"categories"`
}

type CategorySpendingCategory struct {
	Category   string `json:"category"`
	SpentCents int64  `json:"spent_cents"`
	Count      int    `json:"count"`
}

type WeeklyComparisonResponse struct {
	Weeks []WeeklyComparisonItem `json:"weeks"`
}

type WeeklyComparisonItem struct {
	WeekStart   string `json:"week_start"`
	IncomeCents int64  `json:"income_cents"`
	SpentCents  int64  `json:"spent_cents"`
}

// Summary возвращает доходы, расходы и траты по категориям за интервал.
func (h *StatsHandler) Summary(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	from, to, err := periodFromQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	overview, err := h.Stats.Overview(c.Request().Context(), userID, from, to)
	if err != nil {
		return logError(c, "finance overview", err)
	}

	items, err := h.Stats.SpendingByCategory(c.Request().Context(), userID, from, to)
	if err != nil {
		return logError(c, "spending by category", err)
	}

	categories := make([]CategorySpendingCategory, 0, len(items))
	for _, item := range items {
		categories = append(categories, CategorySpendingCategory{
			Category:   item.Category,
			SpentCents: item.SpentCents,
			Count:      item.Count,
		})
	}

	return c.JSON(http.StatusOK, FinanceSummaryResponse{
		From:         from.Format(models.DateLayout),
		To:           to.Format(models.DateLayout),
		IncomeCents:  overview.IncomeCents,
		SpentCents:   overview.SpentCents,
		NetCents:     overview.IncomeCents - overview.SpentCents,
		SavingsRate:  savingsRate(overview.IncomeCents, overview.SpentCents),
		ExpenseCount: overview.ExpenseCount,
		IncomeCount:  overview.IncomeCount,
		Categories:   categories,
	})
}

// WeeklyComparison возвращает доходы и расходы по последним неделям.
func (h *StatsHandler) WeeklyComparison(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	weeks := 8
	if raw := c.QueryParam("weeks"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return badRequest(c, "invalid weeks")
		}
		if parsed > 52 {
			parsed = 52
		}
		weeks = parsed
	}

	items, err := h.Stats.WeeklyComparison(c.Request().Context(), userID, weeks)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid weeks")
		}
		return logError(c, "weekly comparison", err)
	}

	response := make([]WeeklyComparisonItem, 0, len(items))
	for _, item := range items {
		response = append(response, WeeklyComparisonItem{
			WeekStart:   item.WeekStart.Format(models.DateLayout),
			IncomeCents: item.IncomeCents,
			SpentCents:  item.SpentCents,
		})
	}

	return c.JSON(http.StatusOK, WeeklyComparisonResponse{Weeks: response})
}

// savingsRate возвращает (доход - расход) / доход; без дохода ставка равна 0.
func savingsRate(incomeCents, spentCents int64) float64 {
	if incomeCents <= 0 {
		return 0
	}
	return float64(incomeCents-spentCents) / float64(incomeCents)
}
