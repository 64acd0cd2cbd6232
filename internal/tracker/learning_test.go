package tracker

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/lifelog/backend/internal/models"
	"example.com/lifelog/backend/internal/notifications"
	"example.com/lifelog/backend/internal/repository"
	"example.com/lifelog/backend/internal/srs"
	"example.com/lifelog/backend/internal/telemetry"
)

func newLearningFixture(t *testing.T) (*LearningService, *memLearning, *recordedEvents, uuid.UUID, models.LearningItem) {
	t.Helper()

	store := &memLearning{}
	events := &recordedEvents{}
	userID := uuid.New()
	item, _, err := store.Upsert(context.Background(), srs.NewLearningItem(userID, "sm2 paper", day("2024-01-15"), models.LearningSourceLearn))
	require.NoError(t, err)

	return NewLearningService(store, events, telemetry.New()), store, events, userID, item
}

// TestLearningReviewPersistsScheduleAndLog проверяет сохранение расписания и журнала повторений.
func TestLearningReviewPersistsScheduleAndLog(t *testing.T) {
	service, store, events, userID, item := newLearningFixture(t)

	saved, err := service.Review(context.Background(), userID, item.ID, srs.Good, day("2024-01-16"))
	require.NoError(t, err)

	assert.Equal(t, 1, saved.Repetitions)
	assert.Equal(t, srs.InitialInterval, saved.Interval)
	assert.Equal(t, day("2024-01-17"), saved.NextReviewDate)
	require.NotNil(t, saved.LastReviewDate)
	assert.Equal(t, day("2024-01-16"), *saved.LastReviewDate)

	require.Len(t, store.reviews, 1)
	assert.Equal(t, "good", store.reviews[0].Rating)
	assert.Equal(t, []string{notifications.EventLearningReviewed}, events.types())
}

// TestLearningReviewInvalidRatingFallsBackToGood проверяет замену неизвестной оценки на good.
func TestLearningReviewInvalidRatingFallsBackToGood(t *testing.T) {
	service, store, _, userID, item := newLearningFixture(t)

	_, err := service.Review(context.Background(), userID, item.ID, srs.Rating(42), day("2024-01-16"))
	require.NoError(t, err)
	assert.Equal(t, "good", store.reviews[0].Rating)
}

// TestLearningReviewSuspendedItem проверяет отказ в повторении приостановленной записи.
func TestLearningReviewSuspendedItem(t *testing.T) {
	service, _, _, userID, item := newLearningFixture(t)

	_, err := service.Suspend(context.Background(), userID, item.ID)
	require.NoError(t, err)

	_, err = service.Review(context.Background(), userID, item.ID, srs.Good, day("2024-01-16"))
	assert.ErrorIs(t, err, ErrItemSuspended)
}

// TestLearningSuspendAndUnsuspend проверяет приостановку и возобновление записи.
func TestLearningSuspendAndUnsuspend(t *testing.T) {
	service, _, _, userID, item := newLearningFixture(t)
	ctx := context.Background()

	suspended, err := service.Suspend(ctx, userID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LearningStatusSuspended, suspended.Status)

	due, err := service.Due(ctx, userID, day("2024-02-01"))
	require.NoError(t, err)
	assert.Empty(t, due)

	restored, err := service.Unsuspend(ctx, userID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LearningStatusNew, restored.Status)
}

// TestLearningDue проверяет выборку записей к повторению.
func TestLearningDue(t *testing.T) {
	service, _, _, userID, _ := newLearningFixture(t)
	ctx := context.Background()

	due, err := service.Due(ctx, userID, day("2024-01-15"))
	require.NoError(t, err)
	assert.Empty(t, due)

	due, err = service.Due(ctx, userID, day("2024-01-16"))
	require.NoError(t, err)
	assert.Len(t, due, 1)
}

// TestLearningPreviewDoesNotPersist проверяет что предпросмотр ничего не сохраняет.
func TestLearningPreviewDoesNotPersist(t *testing.T) {
	service, store, _, userID, item := newLearningFixture(t)

	outcomes, err := service.Preview(context.Background(), userID, item.ID, day("2024-01-16"))
	require.NoError(t, err)

	assert.Len(t, outcomes, len(srs.Ratings))
	assert.Empty(t, store.reviews)
	assert.Equal(t, 0, store.items[0].Repetitions)
}

// TestLearningStats проверяет статистику учебных записей.
func TestLearningStats(t *testing.T) {
	service, _, _, userID, item := newLearningFixture(t)
	ctx := context.Background()

	_, err := service.Review(ctx, userID, item.ID, srs.Easy, day("2024-01-16"))
	require.NoError(t, err)

	stats, err := service.Stats(ctx, userID, day("2024-01-20"))
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.ReviewsByRating["easy"])
	assert.Greater(t, stats.AverageEase, srs.DefaultEaseFactor)
	assert.Equal(t, statsWindowDays, stats.WindowDays)
}

// TestLearningLoadMissing проверяет ErrNotFound для отсутствующей записи.
func TestLearningLoadMissing(t *testing.T) {
	service, _, _, userID, _ := newLearningFixture(t)

	_, err := service.Load(context.Background(), userID, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
