package persistence

import "time"

// Event represents a single-day attendance event stored for an employee.
// Exactly one event may exist per (UserID, Date) pair; the storage layer
// enforces this with a unique constraint.
type Event struct {
	ID        string
	UserID    string
	Date      time.Time
	Type      string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EventFilter narrows event queries. Date bounds are inclusive.
type EventFilter struct {
	UserID   string
	Type     string
	Status   string
	DateFrom *time.Time
	DateTo   *time.Time
}

// User represents an employee account with its stored credentials.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Project represents a project led by a referring manager.
type Project struct {
	ID        string
	Name      string
	ManagerID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Assignment binds an employee to a project, and thereby to the project's
// manager, over an inclusive date range.
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

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
