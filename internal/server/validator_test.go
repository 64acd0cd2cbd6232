package server

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"

	"example.com/lifelog/backend/internal/handlers"
)

// TestValidatorDateTag проверяет тег date на запросах расходов.
func TestValidatorDateTag(t *testing.T) {
	v := NewValidator()

	valid := handlers.ExpenseRequest{Date: "2024-01-15", Title: "coffee", AmountCents: 350}
	if err := v.Validate(&valid); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	invalid := handlers.ExpenseRequest{Date: "15.01.2024", Title: "coffee", AmountCents: 350}
	err := v.Validate(&invalid)
	if err == nil {
		t.Fatal("expected error for invalid date")
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		t.Fatalf("expected validation errors, got %T", err)
	}
	if validationErrors[0].Field() != "date" {
		t.Fatalf("expected json field name, got %s", validationErrors[0].Field())
	}
}

// TestValidatorWeeklyFlags проверяет допустимые значения недельных флагов.
func TestValidatorWeeklyFlags(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(&handlers.WeeklyLogRequest{PortfolioReview: "ips_checked"}); err != nil {
		t.Fatalf("expected valid flag, got %v", err)
	}
	if err := v.Validate(&handlers.WeeklyLogRequest{PortfolioReview: "weekly"}); err == nil {
		t.Fatal("expected error for unknown portfolio_review")
	}
}
