package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/leavedesk/internal/persistence"
	"github.com/example/leavedesk/internal/testfixtures"
)

func seedEvent(t *testing.T, repo persistence.EventRepository, id, userID string, date time.Time, eventType, status string) {
	t.Helper()

	err := repo.CreateEvent(context.Background(), persistence.Event{
		ID:        id,
		UserID:    userID,
		Date:      date,
		Type:      eventType,
		Status:    status,
		CreatedAt: testReference,
		UpdatedAt: testReference,
	})
	if err != nil {
		t.Fatalf("seed event %s failed: %v", id, err)
	}
}

func TestEventRepository_CreateEvent_UnknownUser(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)

	err := harness.Events.CreateEvent(context.Background(), persistence.Event{
		ID:        "event1",
		UserID:    "ghost",
		Date:      testDate(2024, time.March, 11),
		Type:      "PaidLeave",
		Status:    "Pending",
		CreatedAt: testReference,
		UpdatedAt: testReference,
	})
	if !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
	}
}

func TestEventRepository_DateRoundTrip(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	seedUser(t, harness, "user1", "a@example.com")

	seedEvent(t, harness.Events, "event1", "user1", testDate(2024, time.March, 11), "RemoteWork", "Accepted")

	event, err := harness.Events.GetEvent(context.Background(), "event1")
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if !event.Date.Equal(testDate(2024, time.March, 11)) {
		t.Fatalf("expected stored date to round-trip, got %v", event.Date)
	}
	if !event.CreatedAt.Equal(testReference) {
		t.Fatalf("expected created_at to round-trip, got %v", event.CreatedAt)
	}
}

func TestEventRepository_ListEvents_OrderedByDate(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	seedUser(t, harness, "user1", "a@example.com")

	seedEvent(t, harness.Events, "e2", "user1", testDate(2024, time.March, 13), "PaidLeave", "Pending")
	seedEvent(t, harness.Events, "e1", "user1", testDate(2024, time.March, 11), "RemoteWork", "Accepted")

	events, err := harness.Events.ListEvents(context.Background(), persistence.EventFilter{UserID: "user1"})
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].ID != "e1" || events[1].ID != "e2" {
		t.Fatalf("expected date order e1,e2, got %s,%s", events[0].ID, events[1].ID)
	}
}
