package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"example.com/lifelog/backend/internal/models"
	"example.com/lifelog/backend/internal/notifications"
	"example.com/lifelog/backend/internal/repository"
	"example.com/lifelog/backend/internal/srs"
	"example.com/lifelog/backend/internal/tasks"
	"example.com/lifelog/backend/internal/telemetry"
)

type DailyLogInput struct {
	Logged          bool
	TasksMarkdown   string
	GymSession      bool
	Weight          *float64
	CaloriesTracked bool
}

// DailyLogResult is a saved log together with what the save changed.
type DailyLogResult struct {
	Log             models.DailyLog       `json:"log"`
	Derived         tasks.TagCounts       `json:"derived"`
	TodosCreated    int                   `json:"todos_created"`
	TodosDeleted    int                   `json:"todos_deleted"`
	TodosClosed     int                   `json:"todos_closed"`
	LearningCreated int                   `json:"learning_created"`
	LearningItems   []models.LearningItem `json:"learning_items"`
}

type DailyLogService struct {
	logs     DailyLogStore
	todos    TodoStore
	learning LearningStore
	events   notifications.Publisher
	recorder *telemetry.Recorder
}

// NewDailyLogService создает сервис дневных записей.
func NewDailyLogService(logs DailyLogStore, todos TodoStore, learning LearningStore, events notifications.Publisher, recorder *telemetry.Recorder) *DailyLogService {
	return &DailyLogService{
		logs:     logs,
		todos:    todos,
		learning: learning,
		events:   events,
		recorder: recorder,
	}
}

// Load возвращает запись за дату; отсутствующая запись возвращается пустой.
func (s *DailyLogService) Load(ctx context.Context, userID uuid.UUID, date time.Time) (models.DailyLog, error) {
	log, err := s.logs.GetByDate(ctx, userID, date)
	if errors.Is(err, repository.ErrNotFound) {
		return models.DailyLog{UserID: userID, Date: models.Day(date)}, nil
	}
	if err != nil {
		return log, fmt.Errorf("load daily log: %w", err)
	}
	return log, nil
}

func (s *DailyLogService) List(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.DailyLog, error) {
	if to.Before(from) {
		return nil, repository.ErrInvalid
	}
	return s.logs.ListRange(ctx, userID, from, to)
}

// Save сохраняет запись, синхронизирует todo и создает карточки повторения.
func (s *DailyLogService) Save(ctx context.Context, userID uuid.UUID, date time.Time, input DailyLogInput) (DailyLogResult, error) {
	day := models.Day(date)
	result := DailyLogResult{LearningItems: make([]models.LearningItem, 0)}

	if input.Weight != nil && *input.Weight <= 0 {
		return result, repository.ErrInvalid
	}

	saved, err := s.logs.Upsert(ctx, models.DailyLog{
		UserID:          userID,
		Date:            day,
		Logged:          input.Logged,
		TasksMarkdown:   input.TasksMarkdown,
		GymSession:      input.GymSession,
		Weight:          input.Weight,
		CaloriesTracked: input.CaloriesTracked,
	})
	if err != nil {
		return result, fmt.Errorf("save daily log: %w", err)
	}
	result.Log = saved
	result.Derived = s.ComputeDerived(saved)
	s.recorder.DailyLogSaved()

	changes, err := s.syncTodos(ctx, userID, day, saved.TasksMarkdown)
	if err != nil {
		return result, err
	}
	result.TodosCreated = len(changes.Create)
	result.TodosDeleted = len(changes.Delete)
	result.TodosClosed = ClosedCount(changes)

	for _, entry := range tasks.ExtractLearningEntries(saved.TasksMarkdown) {
		item, created, err := s.learning.Upsert(ctx, srs.NewLearningItem(userID, entry.Text, day, entry.SourceType))
		if err != nil {
			return result, fmt.Errorf("save learning item: %w", err)
		}
		if created {
			result.LearningCreated++
		}
		result.LearningItems = append(result.LearningItems, item)
	}
	s.recorder.LearningItemsCreated(result.LearningCreated)

	slog.Info("daily log saved",
		slog.String("user_id", userID.String()),
		slog.String("date", day.Format(models.DateLayout)),
		slog.Int("todos_created", result.TodosCreated),
		slog.Int("todos_deleted", result.TodosDeleted),
		slog.Int("todos_closed", result.TodosClosed),
		slog.Int("learning_created", result.LearningCreated),
	)

	if s.events != nil {
		s.events.Publish(userID, notifications.DailyLogSaved(day, result.TodosCreated, result.TodosClosed, result.LearningCreated))
	}

	return result, nil
}

// ComputeDerived считает выполненные задачи по тегам.
func (s *DailyLogService) ComputeDerived(log models.DailyLog) tasks.TagCounts {
	return tasks.CountCompletedTasks(log.TasksMarkdown)
}

func (s *DailyLogService) syncTodos(ctx context.Context, userID uuid.UUID, day time.Time, markdown string) (repository.TodoChanges, error) {
	existing, err := s.todos.ListBySourceDate(ctx, userID, day)
	if err != nil {
		return repository.TodoChanges{}, fmt.Errorf("list todos: %w", err)
	}
	carried, err := s.todos.ListOpenBefore(ctx, userID, day)
	if err != nil {
		return repository.TodoChanges{}, fmt.Errorf("list carried todos: %w", err)
	}

	changes := DiffTodos(day, tasks.ExtractTodos(markdown, day), existing, carried)
	if changes.Empty() {
		return changes, nil
	}

	for i := range changes.Create {
		changes.Create[i].UserID = userID
	}
	if err := s.todos.Apply(ctx, userID, changes); err != nil {
		return changes, fmt.Errorf("apply todo changes: %w", err)
	}
	s.recorder.TodosSynced(len(changes.Create), len(changes.Delete), ClosedCount(changes))

	return changes, nil
}
