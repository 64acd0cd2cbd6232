package srs

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/lifelog/backend/internal/models"
)

var reviewDay = time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC)

func item(ease float64, interval, reps int, status models.LearningStatus) models.LearningItem {
	return models.LearningItem{
		EaseFactor:  ease,
		Interval:    interval,
		Repetitions: reps,
		Status:      status,
	}
}

// TestNewLearningItemAnchorsToSourceDate проверяет привязку первой даты повторения к дате источника.
func TestNewLearningItemAnchorsToSourceDate(t *testing.T) {
	userID := uuid.New()
	source := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	got := NewLearningItem(userID, "  SM-2 algorithm ", source, models.LearningSourceLearn)

	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, "SM-2 algorithm", got.Text)
	assert.Equal(t, models.LearningStatusNew, got.Status)
	assert.Equal(t, DefaultEaseFactor, got.EaseFactor)
	assert.Equal(t, 1, got.Interval)
	assert.Equal(t, 0, got.Repetitions)
	assert.Equal(t, "2024-01-16", got.NextReviewDate.Format(models.DateLayout))
	assert.Equal(t, []time.Time{source}, got.RelatedDates)
}

// TestCalculateNextReview проверяет расчет следующего повторения по оценкам.
func TestCalculateNextReview(t *testing.T) {
	tests := []struct {
		name     string
		item     models.LearningItem
		rating   Rating
		ease     float64
		interval int
		reps     int
		status   models.LearningStatus
	}{
		{"again resets", item(2.5, 20, 5, models.LearningStatusReview), Again, 2.3, 1, 0, models.LearningStatusLearning},
		{"again floors ease", item(1.4, 3, 2, models.LearningStatusReview), Again, MinEaseFactor, 1, 0, models.LearningStatusLearning},
		{"hard first", item(2.5, 1, 0, models.LearningStatusNew), Hard, 2.35, 1, 1, models.LearningStatusLearning},
		{"hard graduates", item(2.5, 1, 1, models.LearningStatusLearning), Hard, 2.35, 6, 2, models.LearningStatusReview},
		{"hard grows slowly", item(2.5, 4, 2, models.LearningStatusReview), Hard, 2.35, 5, 3, models.LearningStatusReview},
		{"good first", item(2.5, 1, 0, models.LearningStatusNew), Good, 2.5, 1, 1, models.LearningStatusLearning},
		{"good graduates", item(2.5, 1, 1, models.LearningStatusLearning), Good, 2.5, 6, 2, models.LearningStatusReview},
		{"good multiplies by ease", item(2.5, 6, 2, models.LearningStatusReview), Good, 2.5, 15, 3, models.LearningStatusReview},
		{"easy early", item(2.5, 1, 0, models.LearningStatusNew), Easy, 2.65, 9, 1, models.LearningStatusReview},
		{"easy caps ease", item(2.9, 1, 1, models.LearningStatusLearning), Easy, MaxEaseFactor, 9, 2, models.LearningStatusReview},
		{"easy multiplies", item(2.5, 10, 3, models.LearningStatusReview), Easy, 2.65, 35, 4, models.LearningStatusReview},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateNextReview(tc.item, tc.rating, reviewDay)

			assert.InDelta(t, tc.ease, got.EaseFactor, 1e-9)
			assert.Equal(t, tc.interval, got.Interval)
			assert.Equal(t, tc.reps, got.Repetitions)
			assert.Equal(t, tc.status, got.Status)
			assert.Equal(t, models.AddDays(reviewDay, tc.interval), got.NextReviewDate)
			assert.Equal(t, models.Day(reviewDay), got.LastReviewDate)
		})
	}
}

// TestEaseStaysInBounds проверяет что легкость остается в допустимых границах.
func TestEaseStaysInBounds(t *testing.T) {
	current := NewLearningItem(uuid.New(), "x", reviewDay, models.LearningSourceLearn)
	for i := 0; i < 10; i++ {
		CalculateNextReview(current, Again, reviewDay).Apply(&current)
		assert.GreaterOrEqual(t, current.EaseFactor, MinEaseFactor)
	}
	for i := 0; i < 10; i++ {
		CalculateNextReview(current, Easy, reviewDay).Apply(&current)
		assert.LessOrEqual(t, current.EaseFactor, MaxEaseFactor)
	}
}

// TestUpdateApply проверяет применение обновления расписания к записи.
func TestUpdateApply(t *testing.T) {
	current := item(2.5, 6, 2, models.LearningStatusReview)
	CalculateNextReview(current, Good, reviewDay).Apply(&current)

	assert.Equal(t, 15, current.Interval)
	assert.Equal(t, 3, current.Repetitions)
	require.NotNil(t, current.LastReviewDate)
	assert.Equal(t, models.Day(reviewDay), *current.LastReviewDate)
}

// TestPreview проверяет предпросмотр интервалов по всем оценкам.
func TestPreview(t *testing.T) {
	outcomes := Preview(item(2.5, 6, 2, models.LearningStatusReview), reviewDay)

	require.Len(t, outcomes, 4)
	assert.Equal(t, 1, outcomes[Again].Interval)
	assert.Equal(t, 8, outcomes[Hard].Interval)
	assert.Equal(t, 15, outcomes[Good].Interval)
	assert.Less(t, outcomes[Good].Interval, outcomes[Easy].Interval)
}

// TestSuspendUnsuspend проверяет приостановку и возобновление расписания.
func TestSuspendUnsuspend(t *testing.T) {
	tests := []struct {
		reps int
		want models.LearningStatus
	}{
		{0, models.LearningStatusNew},
		{1, models.LearningStatusLearning},
		{2, models.LearningStatusReview},
		{7, models.LearningStatusReview},
	}

	for _, tc := range tests {
		original := item(2.2, 11, tc.reps, models.LearningStatusReview)

		suspended := Suspend(original)
		assert.Equal(t, models.LearningStatusSuspended, suspended.Status)
		assert.Equal(t, original.Interval, suspended.Interval)
		assert.Equal(t, original.EaseFactor, suspended.EaseFactor)

		restored := Unsuspend(suspended)
		assert.Equal(t, tc.want, restored.Status)
		assert.Equal(t, tc.reps, restored.Repetitions)
		assert.Equal(t, 11, restored.Interval)
	}

	active := item(2.5, 1, 0, models.LearningStatusLearning)
	assert.Equal(t, models.LearningStatusLearning, Unsuspend(active).Status)
}

// TestIsDue проверяет проверку готовности записи к повторению.
func TestIsDue(t *testing.T) {
	today := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	due := models.LearningItem{Status: models.LearningStatusReview, NextReviewDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)}
	future := models.LearningItem{Status: models.LearningStatusReview, NextReviewDate: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)}

	assert.True(t, IsDue(due, today))
	assert.False(t, IsDue(future, today))
	assert.False(t, IsDue(Suspend(due), today))
}

// TestRatingJSON проверяет JSON-кодирование оценок.
func TestRatingJSON(t *testing.T) {
	data, err := json.Marshal(Hard)
	require.NoError(t, err)
	assert.Equal(t, `"hard"`, string(data))

	var r Rating
	require.NoError(t, json.Unmarshal([]byte(`"Easy"`), &r))
	assert.Equal(t, Easy, r)

	assert.ErrorIs(t, json.Unmarshal([]byte(`"meh"`), &r), ErrInvalidRating)
	assert.ErrorIs(t, json.Unmarshal([]byte(`3`), &r), ErrInvalidRating)

	_, err = Rating(9).MarshalText()
	assert.ErrorIs(t, err, ErrInvalidRating)
	assert.Equal(t, "Rating(9)", Rating(9).String())
}

// TestParseRating проверяет разбор строковой оценки.
func TestParseRating(t *testing.T) {
	got, err := ParseRating(" AGAIN ")
	require.NoError(t, err)
	assert.Equal(t, Again, got)

	_, err = ParseRating("")
	assert.ErrorIs(t, err, ErrInvalidRating)
}
