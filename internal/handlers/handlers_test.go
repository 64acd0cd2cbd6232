package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/lifelog/backend/internal/models"
)

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := models.ParseDate(value)
	if err != nil {
		t.Fatalf("parse %s: %v", value, err)
	}
	return parsed
}

// TestParsePeriodValid проверяет корректный разбор периода.
func TestParsePeriodValid(t *testing.T) {
	now := mustDate(t, "2024-01-17")

	start, end, err := parsePeriod("2024-01-01", "2024-01-31", now)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if start.Format(models.DateLayout) != "2024-01-01" {
		t.Fatalf("unexpected start: %s", start.Format(models.DateLayout))
	}
	if end.Format(models.DateLayout) != "2024-01-31" {
		t.Fatalf("unexpected end: %s", end.Format(models.DateLayout))
	}
}

// TestParsePeriodDefaultsToCurrentWeek проверяет подстановку текущей недели.
func TestParsePeriodDefaultsToCurrentWeek(t *testing.T) {
	now := mustDate(t, "2024-01-17")

	start, end, err := parsePeriod("", "", now)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if start.Format(models.DateLayout) != "2024-01-15" || end.Format(models.DateLayout) != "2024-01-21" {
		t.Fatalf("unexpected week: %s..%s", start.Format(models.DateLayout), end.Format(models.DateLayout))
	}
}

// TestParsePeriodInvalid проверяет ошибки при неверном периоде.
func TestParsePeriodInvalid(t *testing.T) {
	now := mustDate(t, "2024-01-17")

	if _, _, err := parsePeriod("2024/01/01", "2024-01-31", now); err == nil {
		t.Fatal("expected error for invalid start format")
	}
	if _, _, err := parsePeriod("2024-02-01", "2024-01-31", now); err == nil {
		t.Fatal("expected error for end before start")
	}
	if _, _, err := parsePeriod("2020-01-01", "2024-01-31", now); err == nil {
		t.Fatal("expected error for too long period")
	}
}

// TestParseTodoFilter проверяет фильтры списка todo.
func TestParseTodoFilter(t *testing.T) {
	filter, err := parseTodoFilter("Fitness", "true")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if filter.Label == nil || *filter.Label != models.TodoLabelFitness {
		t.Fatalf("unexpected label: %v", filter.Label)
	}
	if filter.Open == nil || !*filter.Open {
		t.Fatalf("unexpected open: %v", filter.Open)
	}

	if _, err := parseTodoFilter("chores", ""); err == nil {
		t.Fatal("expected error for unknown label")
	}
	if _, err := parseTodoFilter("", "maybe"); err == nil {
		t.Fatal("expected error for invalid open")
	}
}

// TestWriteLedgerCSV проверяет порядок строк и накопленный баланс.
func TestWriteLedgerCSV(t *testing.T) {
	expenses := []models.Expense{{Date: mustDate(t, "2024-01-16"), Category: "food", Title: "groceries", AmountCents: 2500}}
	incomes := []models.Income{{Date: mustDate(t, "2024-01-15"), Source: "salary", AmountCents: 10000}}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writeLedgerCSV(writer, buildLedger(expenses, incomes)); err != nil {
		t.Fatalf("write ledger: %v", err)
	}
	writer.Flush()

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(records))
	}
	if records[1][1] != "income" || records[1][5] != "10000" {
		t.Fatalf("unexpected first row: %v", records[1])
	}
	if records[2][4] != "-2500" || records[2][5] != "7500" {
		t.Fatalf("unexpected second row: %v", records[2])
	}
}

// TestSavingsRate проверяет расчет нормы сбережений.
func TestSavingsRate(t *testing.T) {
	if rate := savingsRate(0, 100); rate != 0 {
		t.Fatalf("expected 0 without income, got %v", rate)
	}
	if rate := savingsRate(1000, 250); rate != 0.75 {
		t.Fatalf("expected 0.75, got %v", rate)
	}
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

// TestReady проверяет ответ readiness-проверки.
func TestReady(t *testing.T) {
	e := echo.New()

	rec := httptest.NewRecorder()
	if err := Ready(stubPinger{})(e.NewContext(httptest.NewRequest(http.MethodGet, "/ready", nil), rec)); err != nil {
		t.Fatalf("ready: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	if err := Ready(stubPinger{err: errors.New("down")})(e.NewContext(httptest.NewRequest(http.MethodGet, "/ready", nil), rec)); err != nil {
		t.Fatalf("ready: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
