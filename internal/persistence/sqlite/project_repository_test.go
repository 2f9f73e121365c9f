package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/leavedesk/internal/persistence"
	"github.com/example/leavedesk/internal/testfixtures"
)

func TestProjectRepository_UnknownManager(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)

	err := harness.Projects.CreateProject(context.Background(), persistence.Project{
		ID:        "project1",
		Name:      "Orion",
		ManagerID: "ghost",
		CreatedAt: testReference,
		UpdatedAt: testReference,
	})
	if !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
	}
}
