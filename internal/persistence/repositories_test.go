package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/leavedesk/internal/persistence"
	"github.com/example/leavedesk/internal/persistence/memory"
	"github.com/example/leavedesk/internal/testfixtures"
)

func newPersistenceUser(opts ...testfixtures.UserOption) persistence.User {
	return testfixtures.NewUserFixture(opts...).Persistence()
}

func newPersistenceEvent(opts ...testfixtures.EventOption) persistence.Event {
	return testfixtures.NewEventFixture(opts...).Persistence()
}

func newPersistenceProject(opts ...testfixtures.ProjectOption) persistence.Project {
	return testfixtures.NewProjectFixture(opts...).Persistence()
}

func newPersistenceAssignment(opts ...testfixtures.AssignmentOption) persistence.Assignment {
	return testfixtures.NewAssignmentFixture(opts...).Persistence()
}

func newPersistenceSession(opts ...testfixtures.SessionOption) persistence.Session {
	return testfixtures.NewSessionFixture(opts...).Persistence()
}

// repositories groups the five repository interfaces so the same test body
// can run against both storage backends.
type repositories struct {
	Users       persistence.UserRepository
	Events      persistence.EventRepository
	Projects    persistence.ProjectRepository
	Assignments persistence.AssignmentRepository
	Sessions    persistence.SessionRepository
}

type backend struct {
	name string
	open func(t *testing.T) repositories
}

func backends() []backend {
	return []backend{
		{
			name: "sqlite",
			open: func(t *testing.T) repositories {
				t.Helper()
				harness := testfixtures.NewSQLiteHarness(t)
				return repositories{
					Users:       harness.Users,
					Events:      harness.Events,
					Projects:    harness.Projects,
					Assignments: harness.Assignments,
					Sessions:    harness.Sessions,
				}
			},
		},
		{
			name: "memory",
			open: func(t *testing.T) repositories {
				t.Helper()
				store := memory.Open()
				t.Cleanup(func() { _ = store.Close() })
				return repositories{
					Users:       store,
					Events:      store,
					Projects:    store,
					Assignments: store,
					Sessions:    store,
				}
			},
		},
	}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, repos repositories)) {
	t.Helper()
	for _, b := range backends() {
		b := b
		t.Run(b.name, func(t *testing.T) {
			t.Parallel()
			fn(t, b.open(t))
		})
	}
}

// seedUser creates the given user record, failing the test on error. Events,
// assignments, and sessions reference users, so most suites start here.
func seedUser(t *testing.T, repos repositories, user persistence.User) persistence.User {
	t.Helper()
	if err := repos.Users.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func TestUserRepository(t *testing.T) {
	t.Parallel()

	t.Run("creates and reads users", func(t *testing.T) {
		t.Parallel()
		forEachBackend(t, func(t *testing.T, repos repositories) {
			ctx := context.Background()
			user := seedUser(t, repos, newPersistenceUser(
				testfixtures.WithUserID("user-1"),
				testfixtures.WithUserEmail("alice@example.com"),
				testfixtures.WithUserPasswordHash("hash"),
			))

			fetched, err := repos.Users.GetUser(ctx, user.ID)
			if err != nil {
				t.Fatalf("GetUser failed: %v", err)
			}
			if fetched.Email != user.Email || fetched.PasswordHash != "hash" || fetched.Role != user.Role {
				t.Fatalf("unexpected user data: %#v", fetched)
			}

			fetched, err = repos.Users.GetUserByEmail(ctx, "ALICE@EXAMPLE.COM")
			if err != nil {
				t.Fatalf("GetUserByEmail failed: %v", err)
			}
			if fetched.ID != user.ID {
				t.Fatalf("expected user %q, got %#v", user.ID, fetched)
			}

			users, err := repos.Users.ListUsers(ctx)
			if err != nil {
				t.Fatalf("ListUsers failed: %v", err)
			}
			if len(users) != 1 || users[0].ID != user.ID {
				t.Fatalf("expected single user, got %#v", users)
			}
		})
	})

	t.Run("enforces unique email addresses", func(t *testing.T) {
		t.Parallel()
		forEachBackend(t, func(t *testing.T, repos repositories) {
			ctx := context.Background()
			seedUser(t, repos, newPersistenceUser(
				testfixtures.WithUserID("user-1"),
				testfixtures.WithUserEmail("duplicate@example.com"),
			))

			conflicting := newPersistenceUser(
				testfixtures.WithUserID("user-2"),
				testfixtures.WithUserEmail("duplicate@example.com"),
			)
			if err := repos.Users.CreateUser(ctx, conflicting); !errors.Is(err, persistence.ErrDuplicate) {
				t.Fatalf("expected persistence.ErrDuplicate, got %v", err)
			}
		})
	})

	t.Run("reports missing users", func(t *testing.T) {
		t.Parallel()
		forEachBackend(t, func(t *testing.T, repos repositories) {
			if _, err := repos.Users.GetUser(context.Background(), "absent"); !errors.Is(err, persistence.ErrNotFound) {
				t.Fatalf("expected persistence.ErrNotFound, got %v", err)
			}
		})
	})
}

func TestEventRepository(t *testing.T) {
	t.Parallel()

	t.Run("creates, reads, and updates events", func(t *testing.T) {
		t.Parallel()
		forEachBackend(t, func(t *testing.T, repos repositories) {
			ctx := context.Background()
			owner := seedUser(t, repos, newPersistenceUser(testfixtures.WithUserID("user-1")))

			day := time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)
			event := newPersistenceEvent(
				testfixtures.WithEventID("event-1"),
				testfixtures.WithEventUser(owner.ID),
				testfixtures.WithEventDate(day),
			)
			if err := repos.Events.CreateEvent(ctx, event); err != nil {
				t.Fatalf("CreateEvent failed: %v", err)
			}

			fetched, err := repos.Events.GetEvent(ctx, event.ID)
			if err != nil {
				t.Fatalf("GetEvent failed: %v", err)
			}
			if fetched.UserID != owner.ID || fetched.Type != event.Type || !fetched.Date.Equal(day) {
				t.Fatalf("unexpected event data: %#v", fetched)
			}

			fetched, err = repos.Events.FindEventByUserAndDate(ctx, owner.ID, day)
			if err != nil {
				t.Fatalf("FindEventByUserAndDate failed: %v", err)
			}
			if fetched.ID != event.ID {
				t.Fatalf("expected event %q, got %#v", event.ID, fetched)
			}

			stamp := testfixtures.ReferenceTime().Add(2 * time.Hour)
			if err := repos.Events.UpdateEventStatus(ctx, event.ID, "Declined", stamp); err != nil {
				t.Fatalf("UpdateEventStatus failed: %v", err)
			}
			fetched, err = repos.Events.GetEvent(ctx, event.ID)
			if err != nil {
				t.Fatalf("GetEvent after update failed: %v", err)
			}
			if fetched.Status != "Declined" || !fetched.UpdatedAt.Equal(stamp) {
				t.Fatalf("unexpected updated event: %#v", fetched)
			}
		})
	})

	t.Run("rejects a second event on the same day", func(t *testing.T) {
		t.Parallel()
		forEachBackend(t, func(t *testing.T, repos repositories) {
			ctx := context.Background()
			owner := seedUser(t, repos, newPersistenceUser(testfixtures.WithUserID("user-1")))

			day := time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)
			first := newPersistenceEvent(
				testfixtures.WithEventID("event-1"),
				testfixtures.WithEventUser(owner.ID),
				testfixtures.WithEventDate(day),
			)
			if err := repos.Events.CreateEvent(ctx, first); err != nil {
				t.Fatalf("CreateEvent failed: %v", err)
			}

			second := newPersistenceEvent(
				testfixtures.WithEventID("event-2"),
				testfixtures.WithEventUser(owner.ID),
				testfixtures.WithEventDate(day),
			)
			if err := repos.Events.CreateEvent(ctx, second); !errors.Is(err, persistence.ErrDuplicate) {
				t.Fatalf("expected persistence.ErrDuplicate, got %v", err)
			}
		})
	})

	t.Run("counts events inside a date window", func(t *testing.T) {
		t.Parallel()
		forEachBackend(t, func(t *testing.T, repos repositories) {
			ctx := context.Background()
			owner := seedUser(t, repos, newPersistenceUser(testfixtures.WithUserID("user-1")))

			days := []time.Time{
				time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
				time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC),
				time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
			}
			for i, day := range days {
				event := newPersistenceEvent(
					testfixtures.WithEventID(days[i].Format("event-2006-01-02")),
					testfixtures.WithEventUser(owner.ID),
					testfixtures.WithEventDate(day),
					testfixtures.WithEventType("RemoteWork"),
					testfixtures.WithEventStatus("Accepted"),
				)
				if err := repos.Events.CreateEvent(ctx, event); err != nil {
					t.Fatalf("CreateEvent failed: %v", err)
				}
			}

			from := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
			to := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
			count, err := repos.Events.CountEvents(ctx, persistence.EventFilter{
				UserID:   owner.ID,
				Type:     "RemoteWork",
				Status:   "Accepted",
				DateFrom: &from,
				DateTo:   &to,
			})
			if err != nil {
				t.Fatalf("CountEvents failed: %v", err)
			}
			if count != 2 {
				t.Fatalf("expected 2 events in window, got %d", count)
			}

			listed, err := repos.Events.ListEvents(ctx, persistence.EventFilter{UserID: owner.ID})
			if err != nil {
				t.Fatalf("ListEvents failed: %v", err)
			}
			if len(listed) != 3 {
				t.Fatalf("expected 3 events, got %#v", listed)
			}
		})
	})
}

func TestProjectRepository(t *testing.T) {
	t.Parallel()

	t.Run("creates and reads projects", func(t *testing.T) {
		t.Parallel()
		forEachBackend(t, func(t *testing.T, repos repositories) {
			ctx := context.Background()
			manager := seedUser(t, repos, newPersistenceUser(
				testfixtures.WithUserID("manager-1"),
				testfixtures.WithUserRole("ProjectManager"),
			))

			project := newPersistenceProject(
				testfixtures.WithProjectID("project-1"),
				testfixtures.WithProjectManager(manager.ID),
			)
			if err := repos.Projects.CreateProject(ctx, project); err != nil {
				t.Fatalf("CreateProject failed: %v", err)
			}

			fetched, err := repos.Projects.GetProject(ctx, project.ID)
			if err != nil {
				t.Fatalf("GetProject failed: %v", err)
			}
			if fetched.ManagerID != manager.ID || fetched.Name != project.Name {
				t.Fatalf("unexpected project data: %#v", fetched)
			}

			projects, err := repos.Projects.ListProjects(ctx)
			if err != nil {
				t.Fatalf("ListProjects failed: %v", err)
			}
			if len(projects) != 1 || projects[0].ID != project.ID {
				t.Fatalf("expected single project, got %#v", projects)
			}
		})
	})

	t.Run("reports missing projects", func(t *testing.T) {
		t.Parallel()
		forEachBackend(t, func(t *testing.T, repos repositories) {
			if _, err := repos.Projects.GetProject(context.Background(), "absent"); !errors.Is(err, persistence.ErrNotFound) {
				t.Fatalf("expected persistence.ErrNotFound, got %v", err)
			}
		})
	})
}

func TestAssignmentRepository(t *testing.T) {
	t.Parallel()

	// seedAssignmentGraph creates the manager, employee, and project rows an
	// assignment depends on.
	seedAssignmentGraph := func(t *testing.T, repos repositories) (manager, employee persistence.User, project persistence.Project) {
		t.Helper()
		ctx := context.Background()
		manager = seedUser(t, repos, newPersistenceUser(
			testfixtures.WithUserID("manager-1"),
			testfixtures.WithUserRole("ProjectManager"),
		))
		employee = seedUser(t, repos, newPersistenceUser(testfixtures.WithUserID("employee-1")))
		project = newPersistenceProject(
			testfixtures.WithProjectID("project-1"),
			testfixtures.WithProjectManager(manager.ID),
		)
		if err := repos.Projects.CreateProject(ctx, project); err != nil {
			t.Fatalf("CreateProject failed: %v", err)
		}
		return manager, employee, project
	}

	t.Run("resolves management authority over the inclusive range", func(t *testing.T) {
		t.Parallel()
		forEachBackend(t, func(t *testing.T, repos repositories) {
			ctx := context.Background()
			manager, employee, project := seedAssignmentGraph(t, repos)

			start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
			end := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
			assignment := newPersistenceAssignment(
				testfixtures.WithAssignmentID("assignment-1"),
				testfixtures.WithAssignmentProject(project.ID),
				testfixtures.WithAssignmentManager(manager.ID),
				testfixtures.WithAssignmentEmployee(employee.ID),
				testfixtures.WithAssignmentRange(start, end),
			)
			if err := repos.Assignments.CreateAssignment(ctx, assignment); err != nil {
				t.Fatalf("CreateAssignment failed: %v", err)
			}

			for _, day := range []time.Time{start, end} {
				found, err := repos.Assignments.FindAssignment(ctx, manager.ID, employee.ID, day)
				if err != nil {
					t.Fatalf("FindAssignment on %s failed: %v", day.Format("2006-01-02"), err)
				}
				if found.ID != assignment.ID {
					t.Fatalf("expected assignment %q, got %#v", assignment.ID, found)
				}
			}

			outside := end.AddDate(0, 0, 1)
			if _, err := repos.Assignments.FindAssignment(ctx, manager.ID, employee.ID, outside); !errors.Is(err, persistence.ErrNotFound) {
				t.Fatalf("expected persistence.ErrNotFound outside range, got %v", err)
			}

			listed, err := repos.Assignments.ListAssignmentsForEmployee(ctx, employee.ID)
			if err != nil {
				t.Fatalf("ListAssignmentsForEmployee failed: %v", err)
			}
			if len(listed) != 1 || listed[0].ID != assignment.ID {
				t.Fatalf("expected single assignment, got %#v", listed)
			}
		})
	})

	t.Run("detects overlapping assignments", func(t *testing.T) {
		t.Parallel()
		forEachBackend(t, func(t *testing.T, repos repositories) {
			ctx := context.Background()
			manager, employee, project := seedAssignmentGraph(t, repos)

			assignment := newPersistenceAssignment(
				testfixtures.WithAssignmentID("assignment-1"),
				testfixtures.WithAssignmentProject(project.ID),
				testfixtures.WithAssignmentManager(manager.ID),
				testfixtures.WithAssignmentEmployee(employee.ID),
				testfixtures.WithAssignmentRange(
					time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
					time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC),
				),
			)
			if err := repos.Assignments.CreateAssignment(ctx, assignment); err != nil {
				t.Fatalf("CreateAssignment failed: %v", err)
			}

			overlap, err := repos.Assignments.FindOverlappingAssignment(ctx, employee.ID,
				time.Date(2024, time.March, 18, 0, 0, 0, 0, time.UTC),
				time.Date(2024, time.March, 25, 0, 0, 0, 0, time.UTC),
			)
			if err != nil {
				t.Fatalf("FindOverlappingAssignment failed: %v", err)
			}
			if overlap.ID != assignment.ID {
				t.Fatalf("expected assignment %q, got %#v", assignment.ID, overlap)
			}

			if _, err := repos.Assignments.FindOverlappingAssignment(ctx, employee.ID,
				time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC),
			); !errors.Is(err, persistence.ErrNotFound) {
				t.Fatalf("expected persistence.ErrNotFound for disjoint range, got %v", err)
			}
		})
	})
}

func TestSessionRepository(t *testing.T) {
	t.Parallel()

	t.Run("creates, reads, and revokes sessions", func(t *testing.T) {
		t.Parallel()
		forEachBackend(t, func(t *testing.T, repos repositories) {
			ctx := context.Background()
			owner := seedUser(t, repos, newPersistenceUser(testfixtures.WithUserID("user-1")))

			session := newPersistenceSession(
				testfixtures.WithSessionUser(owner.ID),
				testfixtures.WithSessionToken("token-1"),
			)
			created, err := repos.Sessions.CreateSession(ctx, session)
			if err != nil {
				t.Fatalf("CreateSession failed: %v", err)
			}
			if created.Token != session.Token || created.UserID != owner.ID {
				t.Fatalf("unexpected created session: %#v", created)
			}

			fetched, err := repos.Sessions.GetSession(ctx, session.Token)
			if err != nil {
				t.Fatalf("GetSession failed: %v", err)
			}
			if fetched.ID != session.ID || fetched.RevokedAt != nil {
				t.Fatalf("unexpected session data: %#v", fetched)
			}

			revokedAt := testfixtures.ReferenceTime().Add(time.Hour)
			revoked, err := repos.Sessions.RevokeSession(ctx, session.Token, revokedAt)
			if err != nil {
				t.Fatalf("RevokeSession failed: %v", err)
			}
			if revoked.RevokedAt == nil || !revoked.RevokedAt.Equal(revokedAt) {
				t.Fatalf("expected revocation stamp %v, got %#v", revokedAt, revoked)
			}

			if _, err := repos.Sessions.RevokeSession(ctx, session.Token, revokedAt); !errors.Is(err, persistence.ErrNotFound) {
				t.Fatalf("expected persistence.ErrNotFound on second revoke, got %v", err)
			}
		})
	})

	t.Run("deletes sessions expired at the reference instant", func(t *testing.T) {
		t.Parallel()
		forEachBackend(t, func(t *testing.T, repos repositories) {
			ctx := context.Background()
			owner := seedUser(t, repos, newPersistenceUser(testfixtures.WithUserID("user-1")))

			reference := testfixtures.ReferenceTime().Add(24 * time.Hour)
			stale := newPersistenceSession(
				testfixtures.WithSessionUser(owner.ID),
				testfixtures.WithSessionToken("token-stale"),
				testfixtures.WithSessionExpiry(reference),
			)
			live := newPersistenceSession(
				testfixtures.WithSessionUser(owner.ID),
				testfixtures.WithSessionToken("token-live"),
				testfixtures.WithSessionExpiry(reference.Add(time.Hour)),
			)
			for _, session := range []persistence.Session{stale, live} {
				if _, err := repos.Sessions.CreateSession(ctx, session); err != nil {
					t.Fatalf("CreateSession failed: %v", err)
				}
			}

			if err := repos.Sessions.DeleteExpiredSessions(ctx, reference); err != nil {
				t.Fatalf("DeleteExpiredSessions failed: %v", err)
			}

			if _, err := repos.Sessions.GetSession(ctx, stale.Token); !errors.Is(err, persistence.ErrNotFound) {
				t.Fatalf("expected stale session to be deleted, got %v", err)
			}
			if _, err := repos.Sessions.GetSession(ctx, live.Token); err != nil {
				t.Fatalf("expected live session to survive, got %v", err)
			}
		})
	})
}
