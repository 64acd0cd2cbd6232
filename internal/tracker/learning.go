package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"example.com/lifelog/backend/internal/models"
	"example.com/lifelog/backend/internal/notifications"
	"example.com/lifelog/backend/internal/srs"
	"example.com/lifelog/backend/internal/telemetry"
)

const statsWindowDays = 30

type LearningStats struct {
	Total           int                           `json:"total"`
	ByStatus        map[models.LearningStatus]int `json:"by_status"`
	Due             int                           `json:"due"`
	AverageEase     float64                       `json:"average_ease"`
	AverageInterval float64                       `json:"average_interval"`
	ReviewsByRating map[string]int                `json:"reviews_by_rating"`
	WindowDays      int                           `json:"window_days"`
}

type LearningService struct {
	items    LearningStore
	events   notifications.Publisher
	recorder *telemetry.Recorder
}

// NewLearningService создает сервис карточек повторения.
func NewLearningService(items LearningStore, events notifications.Publisher, recorder *telemetry.Recorder) *LearningService {
	return &LearningService{items: items, events: events, recorder: recorder}
}

func (s *LearningService) Load(ctx context.Context, userID, id uuid.UUID) (models.LearningItem, error) {
	return s.items.GetByID(ctx, userID, id)
}

func (s *LearningService) List(ctx context.Context, userID uuid.UUID, status *models.LearningStatus) ([]models.LearningItem, error) {
	return s.items.List(ctx, userID, status)
}

// Review применяет оценку и сохраняет запись о повторении.
func (s *LearningService) Review(ctx context.Context, userID, id uuid.UUID, rating srs.Rating, reviewDate time.Time) (models.LearningItem, error) {
	item, err := s.items.GetByID(ctx, userID, id)
	if err != nil {
		return item, err
	}
	if item.Status == models.LearningStatusSuspended {
		return item, ErrItemSuspended
	}
	if !rating.IsValid() {
		rating = srs.Good
	}

	day := models.Day(reviewDate)
	srs.CalculateNextReview(item, rating, day).Apply(&item)

	saved, err := s.items.SaveReview(ctx, item, models.ReviewLog{
		ItemID:     item.ID,
		UserID:     userID,
		Rating:     rating.String(),
		ReviewDate: day,
		Interval:   item.Interval,
		EaseFactor: item.EaseFactor,
	})
	if err != nil {
		return saved, fmt.Errorf("save review: %w", err)
	}
	s.recorder.Reviewed(rating.String())

	if s.events != nil {
		s.events.Publish(userID, notifications.LearningReviewed(saved.ID, rating.String(), saved.NextReviewDate))
	}

	return saved, nil
}

// Preview показывает результат каждой оценки без сохранения.
func (s *LearningService) Preview(ctx context.Context, userID, id uuid.UUID, reviewDate time.Time) (map[srs.Rating]srs.Update, error) {
	item, err := s.items.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return srs.Preview(item, models.Day(reviewDate)), nil
}

func (s *LearningService) Suspend(ctx context.Context, userID, id uuid.UUID) (models.LearningItem, error) {
	item, err := s.items.GetByID(ctx, userID, id)
	if err != nil {
		return item, err
	}
	return s.items.UpdateStatus(ctx, userID, id, srs.Suspend(item).Status)
}

func (s *LearningService) Unsuspend(ctx context.Context, userID, id uuid.UUID) (models.LearningItem, error) {
	item, err := s.items.GetByID(ctx, userID, id)
	if err != nil {
		return item, err
	}
	restored := srs.Unsuspend(item)
	if restored.Status == item.Status {
		return item, nil
	}
	return s.items.UpdateStatus(ctx, userID, id, restored.Status)
}

// Due возвращает карточки, которые нужно повторить к today.
func (s *LearningService) Due(ctx context.Context, userID uuid.UUID, today time.Time) ([]models.LearningItem, error) {
	items, err := s.items.ListDue(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	due := make([]models.LearningItem, 0, len(items))
	for _, item := range items {
		if srs.IsDue(item, today) {
			due = append(due, item)
		}
	}
	return due, nil
}

// Stats считает распределение по статусам, средние ease и интервал
// и число повторений по оценкам за последние statsWindowDays дней.
func (s *LearningService) Stats(ctx context.Context, userID uuid.UUID, today time.Time) (LearningStats, error) {
	stats := LearningStats{
		ByStatus:   make(map[models.LearningStatus]int),
		WindowDays: statsWindowDays,
	}

	items, err := s.items.List(ctx, userID, nil)
	if err != nil {
		return stats, err
	}

	var easeSum float64
	var intervalSum int
	for _, item := range items {
		stats.Total++
		stats.ByStatus[item.Status]++
		easeSum += item.EaseFactor
		intervalSum += item.Interval
		if srs.IsDue(item, today) {
			stats.Due++
		}
	}
	if stats.Total > 0 {
		stats.AverageEase = easeSum / float64(stats.Total)
		stats.AverageInterval = float64(intervalSum) / float64(stats.Total)
	}

	day := models.Day(today)
	stats.ReviewsByRating, err = s.items.ReviewCounts(ctx, userID, models.AddDays(day, -(statsWindowDays-1)), day)
	if err != nil {
		return stats, err
	}

	return stats, nil
}
