package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"example.com/lifelog/backend/internal/metrics"
	"example.com/lifelog/backend/internal/models"
	"example.com/lifelog/backend/internal/notifications"
	"example.com/lifelog/backend/internal/repository"
	"example.com/lifelog/backend/internal/tasks"
	"example.com/lifelog/backend/internal/telemetry"
)

const defaultWeeklyListLimit = 52

type WeeklyLogInput struct {
	TasksMarkdown             string
	TargetWeight              float64
	PrimaryRelationshipActive bool
	FinanceConceptApplied     models.FinanceConcept
	PortfolioReview           models.PortfolioReview
}

// WeekScores is the derived view of one week.
type WeekScores struct {
	WeekStart time.Time      `json:"week_start"`
	WeekEnd   time.Time      `json:"week_end"`
	Input     metrics.Input  `json:"input"`
	Scores    metrics.Scores `json:"scores"`
	Overall   float64        `json:"overall"`
}

type WeeklyLogService struct {
	weekly   WeeklyLogStore
	daily    DailyLogStore
	todos    TodoStore
	finance  FinanceReader
	targets  metrics.Targets
	events   notifications.Publisher
	recorder *telemetry.Recorder
}

// NewWeeklyLogService создает сервис недельных записей и оценок.
func NewWeeklyLogService(weekly WeeklyLogStore, daily DailyLogStore, todos TodoStore, finance FinanceReader, targets metrics.Targets, events notifications.Publisher, recorder *telemetry.Recorder) *WeeklyLogService {
	return &WeeklyLogService{
		weekly:   weekly,
		daily:    daily,
		todos:    todos,
		finance:  finance,
		targets:  targets,
		events:   events,
		recorder: recorder,
	}
}

// Load возвращает запись недели; ErrNotFound, если ее нет.
func (s *WeeklyLogService) Load(ctx context.Context, userID uuid.UUID, weekStart time.Time) (models.WeeklyLog, error) {
	if weekStart.Weekday() != time.Monday {
		return models.WeeklyLog{}, ErrNotMonday
	}
	return s.weekly.GetByWeekStart(ctx, userID, models.Day(weekStart))
}

func (s *WeeklyLogService) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.WeeklyLog, error) {
	if limit <= 0 {
		limit = defaultWeeklyListLimit
	}
	return s.weekly.List(ctx, userID, limit)
}

// Save сохраняет запись недели. Флаги, найденные в markdown, имеют приоритет
// над переданными значениями.
func (s *WeeklyLogService) Save(ctx context.Context, userID uuid.UUID, weekStart time.Time, input WeeklyLogInput) (models.WeeklyLog, error) {
	if weekStart.Weekday() != time.Monday {
		return models.WeeklyLog{}, ErrNotMonday
	}
	start, end := models.WeekBounds(weekStart)

	concept, portfolio, err := weeklyFlags(input)
	if err != nil {
		return models.WeeklyLog{}, err
	}

	saved, err := s.weekly.Save(ctx, models.WeeklyLog{
		UserID:                    userID,
		WeekStart:                 start,
		WeekEnd:                   end,
		TasksMarkdown:             input.TasksMarkdown,
		TargetWeight:              input.TargetWeight,
		PrimaryRelationshipActive: input.PrimaryRelationshipActive,
		FinanceConceptApplied:     concept,
		PortfolioReview:           portfolio,
	})
	if err != nil {
		return saved, fmt.Errorf("save weekly log: %w", err)
	}
	s.recorder.WeeklyLogSaved()

	if s.events != nil {
		s.events.Publish(userID, notifications.WeeklyLogSaved(start))
	}
	s.scoresChanged(ctx, userID, start)

	return saved, nil
}

// ComputeDerived собирает записи недели и считает оценки по осям. Только чтение:
// метрики и события пишутся при сохранении недели.
func (s *WeeklyLogService) ComputeDerived(ctx context.Context, userID uuid.UUID, weekStart time.Time) (WeekScores, error) {
	data, err := s.WeekData(ctx, userID, weekStart)
	if err != nil {
		return WeekScores{}, err
	}

	input := metrics.Aggregate(data, s.targets)
	scores := metrics.Calculate(input)
	result := WeekScores{
		WeekStart: data.WeekStart,
		WeekEnd:   data.WeekEnd,
		Input:     input,
		Scores:    scores,
		Overall:   scores.Overall(),
	}

	return result, nil
}

// scoresChanged пересчитывает неделю после сохранения; ошибка не отменяет сохранение.
func (s *WeeklyLogService) scoresChanged(ctx context.Context, userID uuid.UUID, weekStart time.Time) {
	result, err := s.ComputeDerived(ctx, userID, weekStart)
	if err != nil {
		slog.Warn("failed to recompute week scores",
			slog.String("user_id", userID.String()),
			slog.String("week_start", weekStart.Format(models.DateLayout)),
			slog.String("error", err.Error()),
		)
		return
	}

	axes := make(map[string]float64, len(metrics.Axes))
	for _, axis := range metrics.Axes {
		axes[string(axis)] = result.Scores.Axis(axis).Score
	}
	s.recorder.ScoresComputed(result.Overall, axes)

	if s.events != nil {
		s.events.Publish(userID, notifications.ScoresUpdated(result.WeekStart, result.Overall))
	}
}

// WeekData загружает все записи, нужные для оценки недели.
func (s *WeeklyLogService) WeekData(ctx context.Context, userID uuid.UUID, day time.Time) (metrics.WeekData, error) {
	start, end := models.WeekBounds(day)
	data := metrics.WeekData{WeekStart: start, WeekEnd: end}

	var err error
	if data.DailyLogs, err = s.daily.ListRange(ctx, userID, start, end); err != nil {
		return data, fmt.Errorf("list daily logs: %w", err)
	}

	weekly, err := s.weekly.GetByWeekStart(ctx, userID, start)
	switch {
	case err == nil:
		data.WeeklyLog = &weekly
	case !errors.Is(err, repository.ErrNotFound):
		return data, fmt.Errorf("load weekly log: %w", err)
	}

	if data.Todos, err = s.todos.ListForRange(ctx, userID, start, end); err != nil {
		return data, fmt.Errorf("list todos: %w", err)
	}
	if data.Expenses, err = s.finance.ListExpenses(ctx, userID, start, end); err != nil {
		return data, fmt.Errorf("list expenses: %w", err)
	}
	if data.Incomes, err = s.finance.ListIncomes(ctx, userID, start, end); err != nil {
		return data, fmt.Errorf("list incomes: %w", err)
	}

	target, err := s.finance.GetBudgetTarget(ctx, userID)
	switch {
	case err == nil:
		data.BudgetTarget = &target
	case errors.Is(err, repository.ErrNotFound):
		slog.Debug("no budget target, finance ratios score zero", slog.String("user_id", userID.String()))
	default:
		return data, fmt.Errorf("load budget target: %w", err)
	}

	return data, nil
}

func weeklyFlags(input WeeklyLogInput) (models.FinanceConcept, models.PortfolioReview, error) {
	concept := input.FinanceConceptApplied
	if concept == "" {
		concept = models.FinanceConceptNone
	}
	portfolio := input.PortfolioReview
	if portfolio == "" {
		portfolio = models.PortfolioReviewNone
	}
	if !concept.IsValid() || !portfolio.IsValid() {
		return concept, portfolio, ErrInvalidFlag
	}

	derived := tasks.ExtractWeeklyTaskData(input.TasksMarkdown)
	if derived.FinanceConceptApplied != models.FinanceConceptNone {
		concept = derived.FinanceConceptApplied
	}
	if derived.PortfolioReview != models.PortfolioReviewNone {
		portfolio = derived.PortfolioReview
	}

	return concept, portfolio, nil
}
