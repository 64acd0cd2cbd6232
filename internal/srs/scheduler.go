// Package srs schedules learning item reviews with an SM-2 style ease factor.
package srs

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/lifelog/backend/internal/models"
)

const (
	MinEaseFactor      = 1.3
	MaxEaseFactor      = 3.0
	DefaultEaseFactor  = 2.5
	InitialInterval    = 1
	GraduatingInterval = 6
	easyFirstInterval  = 9
	hardIntervalFactor = 1.2
	easyIntervalFactor = 1.3
	againEasePenalty   = 0.2
	hardEasePenalty    = 0.15
	easyEaseBonus      = 0.15
)

// Update is the scheduling state after one review.
type Update struct {
	EaseFactor     float64               `json:"ease_factor"`
	Interval       int                   `json:"interval"`
	Repetitions    int                   `json:"repetitions"`
	Status         models.LearningStatus `json:"status"`
	NextReviewDate time.Time             `json:"next_review_date"`
	LastReviewDate time.Time             `json:"last_review_date"`
}

// Apply копирует новое состояние в карточку.
func (u Update) Apply(item *models.LearningItem) {
	item.EaseFactor = u.EaseFactor
	item.Interval = u.Interval
	item.Repetitions = u.Repetitions
	item.Status = u.Status
	item.NextReviewDate = u.NextReviewDate
	last := u.LastReviewDate
	item.LastReviewDate = &last
}

// CalculateNextReview вычисляет следующий интервал по оценке.
// Невалидная оценка обрабатывается как Good.
func CalculateNextReview(item models.LearningItem, rating Rating, reviewDate time.Time) Update {
	ease := item.EaseFactor
	if ease == 0 {
		ease = DefaultEaseFactor
	}
	interval := item.Interval
	if interval < InitialInterval {
		interval = InitialInterval
	}
	reps := item.Repetitions

	var status models.LearningStatus

	switch rating {
	case Again:
		ease = roundEase(math.Max(MinEaseFactor, ease-againEasePenalty))
		interval = InitialInterval
		reps = 0
		status = models.LearningStatusLearning

	case Hard:
		ease = roundEase(math.Max(MinEaseFactor, ease-hardEasePenalty))
		switch reps {
		case 0:
			interval = InitialInterval
			status = models.LearningStatusLearning
		case 1:
			interval = GraduatingInterval
			status = models.LearningStatusReview
		default:
			interval = int(math.Ceil(float64(interval) * hardIntervalFactor))
			status = models.LearningStatusReview
		}
		reps++

	case Easy:
		ease = roundEase(math.Min(MaxEaseFactor, ease+easyEaseBonus))
		if reps <= 1 {
			interval = easyFirstInterval
		} else {
			interval = int(math.Ceil(float64(interval) * ease * easyIntervalFactor))
		}
		status = models.LearningStatusReview
		reps++

	default:
		ease = roundEase(ease)
		switch reps {
		case 0:
			interval = InitialInterval
			status = models.LearningStatusLearning
		case 1:
			interval = GraduatingInterval
			status = models.LearningStatusReview
		default:
			interval = int(math.Ceil(float64(interval) * ease))
			status = models.LearningStatusReview
		}
		reps++
	}

	day := models.Day(reviewDate)
	return Update{
		EaseFactor:     ease,
		Interval:       interval,
		Repetitions:    reps,
		Status:         status,
		NextReviewDate: models.AddDays(day, interval),
		LastReviewDate: day,
	}
}

// Preview returns the outcome of every rating without changing the item.
func Preview(item models.LearningItem, reviewDate time.Time) map[Rating]Update {
	outcomes := make(map[Rating]Update, len(Ratings))
	for _, rating := range Ratings {
		outcomes[rating] = CalculateNextReview(item, rating, reviewDate)
	}
	return outcomes
}

// NewLearningItem создает карточку. Первое повторение назначается на следующий
// день после изучения материала, а не после сохранения записи.
func NewLearningItem(userID uuid.UUID, text string, sourceDate time.Time, sourceType models.LearningSourceType) models.LearningItem {
	day := models.Day(sourceDate)
	return models.LearningItem{
		UserID:         userID,
		Text:           strings.TrimSpace(text),
		SourceDate:     day,
		SourceType:     sourceType,
		EaseFactor:     DefaultEaseFactor,
		Interval:       InitialInterval,
		Repetitions:    0,
		Status:         models.LearningStatusNew,
		NextReviewDate: models.AddDays(day, InitialInterval),
		RelatedDates:   []time.Time{day},
	}
}

// Suspend исключает карточку из очереди повторений.
func Suspend(item models.LearningItem) models.LearningItem {
	item.Status = models.LearningStatusSuspended
	return item
}

// Unsuspend возвращает карточку в очередь, восстанавливая статус по числу повторений.
func Unsuspend(item models.LearningItem) models.LearningItem {
	if item.Status != models.LearningStatusSuspended {
		return item
	}
	switch {
	case item.Repetitions == 0:
		item.Status = models.LearningStatusNew
	case item.Repetitions < 2:
		item.Status = models.LearningStatusLearning
	default:
		item.Status = models.LearningStatusReview
	}
	return item
}

// IsDue reports whether the item should be reviewed on today.
func IsDue(item models.LearningItem, today time.Time) bool {
	if item.Status == models.LearningStatusSuspended {
		return false
	}
	return !models.Day(item.NextReviewDate).After(models.Day(today))
}

func roundEase(ease float64) float64 {
	return math.Round(ease*100) / 100
}
