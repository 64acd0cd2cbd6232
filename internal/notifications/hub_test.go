package notifications

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestHubPublishSubscribe проверяет доставку событий подписчику.
func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	ch, unsubscribe := hub.Subscribe(userID)
	defer unsubscribe()

	hub.Publish(userID, WeeklyLogSaved(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))

	select {
	case event := <-ch:
		if event.Type != EventWeeklyLogSaved {
			t.Fatalf("expected event type %s, got %s", EventWeeklyLogSaved, event.Type)
		}
		if event.Timestamp.IsZero() {
			t.Fatal("expected timestamp to be set")
		}
		data, ok := event.Data.(map[string]string)
		if !ok || data["week_start"] != "2024-01-15" {
			t.Fatalf("unexpected event data: %#v", event.Data)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected event to be delivered")
	}
}

// TestHubIsolatesUsers проверяет, что события не уходят чужим подписчикам.
func TestHubIsolatesUsers(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe(uuid.New())
	defer unsubscribe()

	hub.Publish(uuid.New(), Event{Type: EventScoresUpdated})

	select {
	case event := <-ch:
		t.Fatalf("unexpected event %s", event.Type)
	default:
	}
}

// TestHubUnsubscribe проверяет закрытие канала после отписки.
func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	ch, unsubscribe := hub.Subscribe(userID)
	if hub.Connections() != 1 {
		t.Fatalf("expected 1 connection, got %d", hub.Connections())
	}

	unsubscribe()
	unsubscribe()

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed")
	}
	if hub.Connections() != 0 {
		t.Fatalf("expected 0 connections, got %d", hub.Connections())
	}
}

// TestHubDropsWhenBufferFull проверяет, что Publish не блокируется.
func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	_, unsubscribe := hub.Subscribe(userID)
	defer unsubscribe()

	for i := 0; i < subscriberBuffer+3; i++ {
		hub.Publish(userID, Event{Type: EventTodosSynced})
	}

	if hub.Dropped() != 3 {
		t.Fatalf("expected 3 dropped events, got %d", hub.Dropped())
	}
}
