package tracker

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/lifelog/backend/internal/models"
	"example.com/lifelog/backend/internal/notifications"
	"example.com/lifelog/backend/internal/repository"
)

func day(value string) time.Time {
	t, err := models.ParseDate(value)
	if err != nil {
		panic(err)
	}
	return t
}

type memDailyLogs struct {
	logs map[string]models.DailyLog
}

func newMemDailyLogs() *memDailyLogs {
	return &memDailyLogs{logs: make(map[string]models.DailyLog)}
}

func dailyKey(userID uuid.UUID, date time.Time) string {
	return userID.String() + "/" + models.Day(date).Format(models.DateLayout)
}

func (m *memDailyLogs) Upsert(_ context.Context, log models.DailyLog) (models.DailyLog, error) {
	key := dailyKey(log.UserID, log.Date)
	if existing, ok := m.logs[key]; ok {
		log.ID = existing.ID
	} else {
		log.ID = uuid.New()
	}
	m.logs[key] = log
	return log, nil
}

func (m *memDailyLogs) GetByDate(_ context.Context, userID uuid.UUID, date time.Time) (models.DailyLog, error) {
	log, ok := m.logs[dailyKey(userID, date)]
	if !ok {
		return log, repository.ErrNotFound
	}
	return log, nil
}

func (m *memDailyLogs) ListRange(_ context.Context, userID uuid.UUID, from, to time.Time) ([]models.DailyLog, error) {
	logs := make([]models.DailyLog, 0)
	for _, log := range m.logs {
		if log.UserID == userID && models.InRange(log.Date, from, to) {
			logs = append(logs, log)
		}
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].Date.Before(logs[j].Date) })
	return logs, nil
}

type memWeeklyLogs struct {
	logs []models.WeeklyLog
}

func (m *memWeeklyLogs) Save(_ context.Context, log models.WeeklyLog) (models.WeeklyLog, error) {
	for i, existing := range m.logs {
		if existing.UserID != log.UserID {
			continue
		}
		if existing.WeekStart.Equal(log.WeekStart) {
			log.ID = existing.ID
			m.logs[i] = log
			return log, nil
		}
		if !log.WeekStart.After(existing.WeekEnd) && !log.WeekEnd.Before(existing.WeekStart) {
			return models.WeeklyLog{}, repository.ErrOverlap
		}
	}
	log.ID = uuid.New()
	m.logs = append(m.logs, log)
	return log, nil
}

func (m *memWeeklyLogs) GetByWeekStart(_ context.Context, userID uuid.UUID, weekStart time.Time) (models.WeeklyLog, error) {
	for _, log := range m.logs {
		if log.UserID == userID && log.WeekStart.Equal(models.Day(weekStart)) {
			return log, nil
		}
	}
	return models.WeeklyLog{}, repository.ErrNotFound
}

func (m *memWeeklyLogs) List(_ context.Context, userID uuid.UUID, limit int) ([]models.WeeklyLog, error) {
	logs := make([]models.WeeklyLog, 0)
	for _, log := range m.logs {
		if log.UserID == userID && len(logs) < limit {
			logs = append(logs, log)
		}
	}
	return logs, nil
}

type memTodos struct {
	todos []models.TodoItem
}

func (m *memTodos) Apply(_ context.Context, userID uuid.UUID, changes repository.TodoChanges) error {
	deleted := make(map[uuid.UUID]bool)
	for _, id := range changes.Delete {
		deleted[id] = true
	}
	kept := make([]models.TodoItem, 0, len(m.todos))
	for _, todo := range m.todos {
		if !deleted[todo.ID] {
			kept = append(kept, todo)
		}
	}
	m.todos = kept

	for _, c := range changes.Complete {
		for i := range m.todos {
			if m.todos[i].ID == c.ID {
				m.todos[i].Completed = c.Completed
				m.todos[i].CompletedDate = c.CompletedDate
				m.todos[i].ClosedByLog = c.ClosedByLog
			}
		}
	}
	for _, todo := range changes.Create {
		todo.ID = uuid.New()
		todo.UserID = userID
		m.todos = append(m.todos, todo)
	}
	return nil
}

func (m *memTodos) ListBySourceDate(_ context.Context, userID uuid.UUID, date time.Time) ([]models.TodoItem, error) {
	return m.filter(func(t models.TodoItem) bool {
		return t.UserID == userID && t.SourceDate.Equal(models.Day(date))
	}), nil
}

func (m *memTodos) ListOpenBefore(_ context.Context, userID uuid.UUID, date time.Time) ([]models.TodoItem, error) {
	d := models.Day(date)
	return m.filter(func(t models.TodoItem) bool {
		if t.UserID != userID || !t.SourceDate.Before(d) {
			return false
		}
		return !t.Completed || (t.CompletedDate != nil && t.CompletedDate.Equal(d))
	}), nil
}

func (m *memTodos) ListForRange(_ context.Context, userID uuid.UUID, from, to time.Time) ([]models.TodoItem, error) {
	return m.filter(func(t models.TodoItem) bool {
		if t.UserID != userID || t.SourceDate.After(to) {
			return false
		}
		return !t.Completed || t.CompletedDate == nil || !t.CompletedDate.Before(from)
	}), nil
}

func (m *memTodos) filter(keep func(models.TodoItem) bool) []models.TodoItem {
	out := make([]models.TodoItem, 0)
	for _, todo := range m.todos {
		if keep(todo) {
			out = append(out, todo)
		}
	}
	return out
}

type memLearning struct {
	items   []models.LearningItem
	reviews []models.ReviewLog
}

func (m *memLearning) Upsert(_ context.Context, item models.LearningItem) (models.LearningItem, bool, error) {
	for i, existing := range m.items {
		if existing.UserID == item.UserID && existing.Text == item.Text {
			for _, d := range existing.RelatedDates {
				if d.Equal(item.SourceDate) {
					return existing, false, nil
				}
			}
			m.items[i].RelatedDates = append(m.items[i].RelatedDates, item.SourceDate)
			return m.items[i], false, nil
		}
	}
	item.ID = uuid.New()
	m.items = append(m.items, item)
	return item, true, nil
}

func (m *memLearning) GetByID(_ context.Context, userID, id uuid.UUID) (models.LearningItem, error) {
	for _, item := range m.items {
		if item.UserID == userID && item.ID == id {
			return item, nil
		}
	}
	return models.LearningItem{}, repository.ErrNotFound
}

func (m *memLearning) List(_ context.Context, userID uuid.UUID, status *models.LearningStatus) ([]models.LearningItem, error) {
	out := make([]models.LearningItem, 0)
	for _, item := range m.items {
		if item.UserID == userID && (status == nil || item.Status == *status) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memLearning) ListDue(ctx context.Context, userID uuid.UUID, today time.Time) ([]models.LearningItem, error) {
	all, _ := m.List(ctx, userID, nil)
	out := make([]models.LearningItem, 0)
	for _, item := range all {
		if !item.NextReviewDate.After(today) && item.Status != models.LearningStatusSuspended {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memLearning) SaveReview(_ context.Context, item models.LearningItem, review models.ReviewLog) (models.LearningItem, error) {
	for i := range m.items {
		if m.items[i].ID == item.ID {
			m.items[i] = item
			m.reviews = append(m.reviews, review)
			return item, nil
		}
	}
	return item, repository.ErrNotFound
}

func (m *memLearning) UpdateStatus(_ context.Context, userID, id uuid.UUID, status models.LearningStatus) (models.LearningItem, error) {
	for i := range m.items {
		if m.items[i].UserID == userID && m.items[i].ID == id {
			m.items[i].Status = status
			return m.items[i], nil
		}
	}
	return models.LearningItem{}, repository.ErrNotFound
}

func (m *memLearning) ReviewCounts(_ context.Context, userID uuid.UUID, from, to time.Time) (map[string]int, error) {
	counts := make(map[string]int)
	for _, review := range m.reviews {
		if review.UserID == userID && models.InRange(review.ReviewDate, from, to) {
			counts[strings.ToLower(review.Rating)]++
		}
	}
	return counts, nil
}

type memFinance struct {
	expenses []models.Expense
	incomes  []models.Income
	target   *models.BudgetTarget
}

func (m *memFinance) ListExpenses(_ context.Context, userID uuid.UUID, from, to time.Time) ([]models.Expense, error) {
	out := make([]models.Expense, 0)
	for _, e := range m.expenses {
		if e.UserID == userID && models.InRange(e.Date, from, to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memFinance) ListIncomes(_ context.Context, userID uuid.UUID, from, to time.Time) ([]models.Income, error) {
	out := make([]models.Income, 0)
	for _, i := range m.incomes {
		if i.UserID == userID && models.InRange(i.Date, from, to) {
			out = append(out, i)
		}
	}
	return out, nil
}

func (m *memFinance) GetBudgetTarget(_ context.Context, userID uuid.UUID) (models.BudgetTarget, error) {
	if m.target == nil || m.target.UserID != userID {
		return models.BudgetTarget{}, repository.ErrNotFound
	}
	return *m.target, nil
}

type recordedEvents struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (r *recordedEvents) Publish(_ uuid.UUID, event notifications.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordedEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
