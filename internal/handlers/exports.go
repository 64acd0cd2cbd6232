package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/lifelog/backend/internal/auth"
	"example.com/lifelog/backend/internal/models"
	"example.com/lifelog/backend/internal/repository"
	"example.com/lifelog/backend/internal/tracker"
)

const (
	exportTypeLedger = "ledger"
	exportTypeTodos  = "todos"
)

type ExportHandler struct {
	Finance *repository.FinanceRepository
	Todos   *repository.TodoRepository
	Weekly  *tracker.WeeklyLogService
}

// NewExportHandler создает обработчик выгрузок.
func NewExportHandler(finance *repository.FinanceRepository, todos *repository.TodoRepository, weekly *tracker.WeeklyLogService) *ExportHandler {
	return &ExportHandler{Finance: finance, Todos: todos, Weekly: weekly}
}

// ledgerEntry is one row of the combined income/expense ledger.
type ledgerEntry struct {
	Date        time.Time
	Kind        string
	Category    string
	Title       string
	AmountCents int64
}

// ExportCSV выгружает журнал доходов и расходов либо todo за интервал.
func (h *ExportHandler) ExportCSV(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	from, to, err := periodFromQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	exportType := strings.ToLower(strings.TrimSpace(c.QueryParam("type")))
	if exportType == "" {
		exportType = exportTypeLedger
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	switch exportType {
	case exportTypeLedger:
		expenses, err := h.Finance.ListExpenses(c.Request().Context(), userID, from, to)
		if err != nil {
			return logError(c, "export expenses", err)
		}
		incomes, err := h.Finance.ListIncomes(c.Request().Context(), userID, from, to)
		if err != nil {
			return logError(c, "export incomes", err)
		}
		if err := writeLedgerCSV(writer, buildLedger(expenses, incomes)); err != nil {
			return logError(c, "write ledger csv", err)
		}
	case exportTypeTodos:
		todos, err := h.Todos.ListForRange(c.Request().Context(), userID, from, to)
		if err != nil {
			return logError(c, "export todos", err)
		}
		if err := writeTodosCSV(writer, todos); err != nil {
			return logError(c, "write todos csv", err)
		}
	default:
		return badRequest(c, "invalid export type")
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return logError(c, "flush csv", err)
	}

	filename := exportType + "-" + from.Format(models.DateLayout) + "-" + to.Format(models.DateLayout) + ".csv"
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportWeekJSON выгружает все записи недели в формате, который принимает lifelogctl score.
func (h *ExportHandler) ExportWeekJSON(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	weekStart, err := parseDateParam(c, "weekStart")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if weekStart.Weekday() != time.Monday {
		return badRequest(c, tracker.ErrNotMonday.Error())
	}

	data, err := h.Weekly.WeekData(c.Request().Context(), userID, weekStart)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid week")
		}
		return logError(c, "export week", err)
	}

	filename := "week-" + weekStart.Format(models.DateLayout) + ".json"
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.JSON(http.StatusOK, data)
}

func buildLedger(expenses []models.Expense, incomes []models.Income) []ledgerEntry {
	entries := make([]ledgerEntry, 0, len(expenses)+len(incomes))
	for _, expense := range expenses {
		entries = append(entries, ledgerEntry{
			Date:        expense.Date,
			Kind:        "expense",
			Category:    expense.Category,
			Title:       expense.Title,
			AmountCents: -expense.AmountCents,
		})
	}
	for _, income := range incomes {
		entries = append(entries, ledgerEntry{
			Date:        income.Date,
			Kind:        "income",
			Category:    "income",
			Title:       income.Source,
			AmountCents: income.AmountCents,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})

	return entries
}

func writeLedgerCSV(writer *csv.Writer, entries []ledgerEntry) error {
	header := []string{"date", "kind", "category", "title", "amount_cents", "balance_cents"}
	if err := writer.Write(header); err != nil {
		return err
	}

	var balance int64
	for _, entry := range entries {
		balance += entry.AmountCents
		record := []string{
			entry.Date.Format(models.DateLayout),
			entry.Kind,
			entry.Category,
			entry.Title,
			formatInt64(entry.AmountCents),
			formatInt64(balance),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func writeTodosCSV(writer *csv.Writer, todos []models.TodoItem) error {
	header := []string{"id", "label", "text", "source_date", "completed", "completed_date"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, todo := range todos {
		completedDate := ""
		if todo.CompletedDate != nil {
			completedDate = todo.CompletedDate.Format(models.DateLayout)
		}
		record := []string{
			todo.ID.String(),
			string(todo.Label),
			todo.Text,
			todo.SourceDate.Format(models.DateLayout),
			formatBool(todo.Completed),
			completedDate,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func formatInt64(value int64) string {
	return strconv.FormatInt(value, 10)
}

func formatBool(value bool) string {
	if value {
		return "true"
	}
	return "false"
}
