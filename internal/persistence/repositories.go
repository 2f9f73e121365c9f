package persistence

import "context"
import "time"

// EventRepository stores attendance events.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) error
	UpdateEventStatus(ctx context.Context, id, status string, updatedAt time.Time) error
	GetEvent(ctx context.Context, id string) (Event, error)
	FindEventByUserAndDate(ctx context.Context, userID string, date time.Time) (Event, error)
	CountEvents(ctx context.Context, filter EventFilter) (int, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
}

// UserRepository exposes CRUD operations for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// ProjectRepository exposes CRUD operations for projects.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project Project) error
	GetProject(ctx context.Context, id string) (Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
}

// AssignmentRepository stores project assignments and resolves management
// authority by date.
type AssignmentRepository interface {
	CreateAssignment(ctx context.Context, assignment Assignment) error
	GetAssignment(ctx context.Context, id string) (Assignment, error)
	ListAssignments(ctx context.Context) ([]Assignment, error)
	ListAssignmentsForEmployee(ctx context.Context, employeeID string) ([]Assignment, error)
	FindAssignment(ctx context.Context, managerID, employeeID string, date time.Time) (Assignment, error)
	FindOverlappingAssignment(ctx context.Context, employeeID string, start, end time.Time) (Assignment, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
