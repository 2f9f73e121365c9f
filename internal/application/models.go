package application

import "time"

// Role identifies the authority level of an acting principal. The set is
// closed; callers must branch exhaustively over the three constants.
type Role string

const (
	// RoleEmployee may create their own events but never transition any.
	RoleEmployee Role = "Employee"
	// RoleProjectManager may transition events for employees they are
	// assigned to manage on the event's date.
	RoleProjectManager Role = "ProjectManager"
	// RoleAdmin may transition any event without assignment scoping.
	RoleAdmin Role = "Admin"
)

// Valid reports whether the role is one of the three known values.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleProjectManager, RoleAdmin:
		return true
	}
	return false
}

// Principal represents the authenticated user invoking a service method.
// Identity and role are threaded explicitly into every call; there is no
// ambient request state.
type Principal struct {
	UserID string
	Role   Role
}

// EventType enumerates the supported attendance event kinds.
type EventType string

const (
	// EventTypeRemoteWork is self-approved, capped at two days per working week.
	EventTypeRemoteWork EventType = "RemoteWork"
	// EventTypePaidLeave requires manager or admin approval.
	EventTypePaidLeave EventType = "PaidLeave"
)

// Valid reports whether the event type is a known value.
func (t EventType) Valid() bool {
	return t == EventTypeRemoteWork || t == EventTypePaidLeave
}

// EventStatus enumerates the lifecycle states of an event. Accepted and
// Declined are terminal.
type EventStatus string

const (
	EventStatusPending  EventStatus = "Pending"
	EventStatusAccepted EventStatus = "Accepted"
	EventStatusDeclined EventStatus = "Declined"
)

// Terminal reports whether the status permits no further transition.
func (s EventStatus) Terminal() bool {
	return s == EventStatusAccepted || s == EventStatusDeclined
}

// Event represents one attendance event held by an employee on a single day.
type Event struct {
	ID        string
	UserID    string
	Date      time.Time
	Type      EventType
	Status    EventStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EventInput captures caller provided event fields.
type EventInput struct {
	Date time.Time
	Type EventType
}

// CreateEventParams wraps the data required to create an event. The event is
// always created for the acting principal.
type CreateEventParams struct {
	Principal Principal
	Input     EventInput
}

// TransitionEventParams wraps the data required to transition an event's
// status.
type TransitionEventParams struct {
	Principal Principal
	EventID   string
	NewStatus EventStatus
}

// EventListFilter narrows event listings. Date bounds are inclusive.
type EventListFilter struct {
	UserID   string
	Type     EventType
	Status   EventStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

// User represents an employee account exposed by the application services.
type User struct {
	ID          string
	Email       string
	DisplayName string
	Role        Role
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserInput captures caller provided user attributes at sign-up.
type UserInput struct {
	Email       string
	DisplayName string
	Password    string
	Role        Role
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
}

// Project represents a project led by a referring manager.
type Project struct {
	ID        string
	Name      string
	ManagerID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProjectInput captures caller provided project fields.
type ProjectInput struct {
	Name      string
	ManagerID string
}

// CreateProjectParams wraps the data required to create a project.
type CreateProjectParams struct {
	Principal Principal
	Input     ProjectInput
}

// Assignment binds an employee to a project's manager over an inclusive date
// range. It is the sole source of a project manager's approval authority.
type Assignment struct {
	ID         string
	ProjectID  string
	ManagerID  string
	EmployeeID string
	StartDate  time.Time
	EndDate    time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AssignmentInput captures caller provided assignment fields.
type AssignmentInput struct {
	ProjectID  string
	EmployeeID string
	StartDate  time.Time
	EndDate    time.Time
}

// AssignEmployeeParams wraps the data required to create an assignment.
type AssignEmployeeParams struct {
	Principal Principal
	Input     AssignmentInput
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication.
type AuthenticateResult struct {
	User    User
	Session Session
}
