package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/example/leavedesk/internal/testfixtures"
)

var testReference = testfixtures.ReferenceTime()

func testDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedUser(t *testing.T, h *testfixtures.SQLiteHarness, id, email string) {
	t.Helper()

	user := testfixtures.NewUserFixture(
		testfixtures.WithUserID(id),
		testfixtures.WithUserEmail(email),
	).Persistence()
	if err := h.Users.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user %s failed: %v", id, err)
	}
}
