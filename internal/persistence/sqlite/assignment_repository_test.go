package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/leavedesk/internal/persistence"
	"github.com/example/leavedesk/internal/testfixtures"
)

func seedAssignment(t *testing.T, h *testfixtures.SQLiteHarness, id string, start, end time.Time) {
	t.Helper()

	assignment := testfixtures.NewAssignmentFixture(
		testfixtures.WithAssignmentID(id),
		testfixtures.WithAssignmentProject("project1"),
		testfixtures.WithAssignmentManager("manager1"),
		testfixtures.WithAssignmentEmployee("employee1"),
		testfixtures.WithAssignmentRange(start, end),
	).Persistence()
	if err := h.Assignments.CreateAssignment(context.Background(), assignment); err != nil {
		t.Fatalf("seed assignment %s failed: %v", id, err)
	}
}

func setupAssignmentHarness(t *testing.T) *testfixtures.SQLiteHarness {
	t.Helper()

	harness := testfixtures.NewSQLiteHarness(t)
	seedUser(t, harness, "manager1", "m1@example.com")
	seedUser(t, harness, "employee1", "e1@example.com")

	project := testfixtures.NewProjectFixture(
		testfixtures.WithProjectID("project1"),
		testfixtures.WithProjectManager("manager1"),
	).Persistence()
	if err := harness.Projects.CreateProject(context.Background(), project); err != nil {
		t.Fatalf("seed project failed: %v", err)
	}
	return harness
}

func TestAssignmentRepository_FindAssignment_InclusiveBounds(t *testing.T) {
	harness := setupAssignmentHarness(t)
	seedAssignment(t, harness, "a1", testDate(2024, time.March, 1), testDate(2024, time.March, 31))
	ctx := context.Background()

	for _, date := range []time.Time{
		testDate(2024, time.March, 1),
		testDate(2024, time.March, 15),
		testDate(2024, time.March, 31),
	} {
		if _, err := harness.Assignments.FindAssignment(ctx, "manager1", "employee1", date); err != nil {
			t.Fatalf("FindAssignment on %v failed: %v", date, err)
		}
	}

	for _, date := range []time.Time{
		testDate(2024, time.February, 29),
		testDate(2024, time.April, 1),
	} {
		_, err := harness.Assignments.FindAssignment(ctx, "manager1", "employee1", date)
		if !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("FindAssignment on %v: expected ErrNotFound, got %v", date, err)
		}
	}
}

func TestAssignmentRepository_FindAssignment_WrongManager(t *testing.T) {
	harness := setupAssignmentHarness(t)
	seedAssignment(t, harness, "a1", testDate(2024, time.March, 1), testDate(2024, time.March, 31))

	_, err := harness.Assignments.FindAssignment(context.Background(), "manager2", "employee1", testDate(2024, time.March, 15))
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAssignmentRepository_FindOverlappingAssignment(t *testing.T) {
	harness := setupAssignmentHarness(t)
	seedAssignment(t, harness, "a1", testDate(2024, time.March, 10), testDate(2024, time.March, 20))
	ctx := context.Background()

	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		overlap bool
	}{
		{"fully inside", testDate(2024, time.March, 12), testDate(2024, time.March, 18), true},
		{"touching start", testDate(2024, time.March, 1), testDate(2024, time.March, 10), true},
		{"touching end", testDate(2024, time.March, 20), testDate(2024, time.March, 25), true},
		{"covering", testDate(2024, time.March, 1), testDate(2024, time.March, 31), true},
		{"before", testDate(2024, time.March, 1), testDate(2024, time.March, 9), false},
		{"after", testDate(2024, time.March, 21), testDate(2024, time.March, 31), false},
	}

	for _, tt := range tests {
		_, err := harness.Assignments.FindOverlappingAssignment(ctx, "employee1", tt.start, tt.end)
		if tt.overlap && err != nil {
			t.Fatalf("%s: expected overlap, got %v", tt.name, err)
		}
		if !tt.overlap && !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("%s: expected ErrNotFound, got %v", tt.name, err)
		}
	}
}

func TestAssignmentRepository_ListAssignmentsForEmployee(t *testing.T) {
	harness := setupAssignmentHarness(t)
	seedUser(t, harness, "employee2", "e2@example.com")
	seedAssignment(t, harness, "a1", testDate(2024, time.March, 1), testDate(2024, time.March, 31))

	other := testfixtures.NewAssignmentFixture(
		testfixtures.WithAssignmentID("a2"),
		testfixtures.WithAssignmentProject("project1"),
		testfixtures.WithAssignmentManager("manager1"),
		testfixtures.WithAssignmentEmployee("employee2"),
		testfixtures.WithAssignmentRange(testDate(2024, time.March, 1), testDate(2024, time.March, 31)),
	).Persistence()
	if err := harness.Assignments.CreateAssignment(context.Background(), other); err != nil {
		t.Fatalf("seed assignment a2 failed: %v", err)
	}

	assignments, err := harness.Assignments.ListAssignmentsForEmployee(context.Background(), "employee1")
	if err != nil {
		t.Fatalf("ListAssignmentsForEmployee failed: %v", err)
	}
	if len(assignments) != 1 || assignments[0].ID != "a1" {
		t.Fatalf("expected only a1, got %v", assignments)
	}
}

func TestAssignmentRepository_RejectsInvertedRange(t *testing.T) {
	harness := setupAssignmentHarness(t)

	err := harness.Assignments.CreateAssignment(context.Background(), persistence.Assignment{
		ID:         "a1",
		ProjectID:  "project1",
		ManagerID:  "manager1",
		EmployeeID: "employee1",
		StartDate:  testDate(2024, time.March, 31),
		EndDate:    testDate(2024, time.March, 1),
		CreatedAt:  testReference,
		UpdatedAt:  testReference,
	})
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}
