package notifications

import (
	"time"

	"github.com/google/uuid"

	"example.com/lifelog/backend/internal/models"
)

const (
	EventConnected        = "connected"
	EventDailyLogSaved    = "daily_log_saved"
	EventWeeklyLogSaved   = "weekly_log_saved"
	EventScoresUpdated    = "scores_updated"
	EventLearningReviewed = "learning_reviewed"
	EventTodosSynced      = "todos_synced"
)

func Connected(userID uuid.UUID) Event {
	return Event{Type: EventConnected, Data: map[string]string{"user_id": userID.String()}}
}

func DailyLogSaved(date time.Time, todosCreated, todosClosed, learningItems int) Event {
	return Event{
		Type: EventDailyLogSaved,
		Data: map[string]interface{}{
			"date":           date.Format(models.DateLayout),
			"todos_created":  todosCreated,
			"todos_closed":   todosClosed,
			"learning_items": learningItems,
		},
	}
}

func WeeklyLogSaved(weekStart time.Time) Event {
	return Event{
		Type: EventWeeklyLogSaved,
		Data: map[string]string{"week_start": weekStart.Format(models.DateLayout)},
	}
}

func ScoresUpdated(weekStart time.Time, overall float64) Event {
	return Event{
		Type: EventScoresUpdated,
		Data: map[string]interface{}{
			"week_start": weekStart.Format(models.DateLayout),
			"overall":    overall,
		},
	}
}

func LearningReviewed(itemID uuid.UUID, rating string, nextReview time.Time) Event {
	return Event{
		Type: EventLearningReviewed,
		Data: map[string]interface{}{
			"item_id":          itemID.String(),
			"rating":           rating,
			"next_review_date": nextReview.Format(models.DateLayout),
		},
	}
}
