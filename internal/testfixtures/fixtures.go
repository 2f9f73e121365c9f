package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/leavedesk/internal/application"
	"github.com/example/leavedesk/internal/persistence"
)

var (
	userCounter       uint64
	eventCounter      uint64
	projectCounter    uint64
	assignmentCounter uint64
	sessionCounter    uint64
)

var referenceTime = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic user record that can be materialised
// for application or persistence tests.
type UserFixture struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	Role         application.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		DisplayName:  fmt.Sprintf("User %03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		Role:         application.RoleEmployee,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserRole sets the role on the generated fixture.
func WithUserRole(role application.Role) UserOption {
	return func(f *UserFixture) {
		f.Role = role
	}
}

// WithUserPasswordHash overrides the generated password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:          f.ID,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		Role:        f.Role,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.User record.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Email:        f.Email,
		DisplayName:  f.DisplayName,
		PasswordHash: f.PasswordHash,
		Role:         string(f.Role),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Principal returns the acting principal corresponding to the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, Role: f.Role}
}

// ----------------------------- Event fixtures ----------------------------

// EventFixture represents a deterministic attendance event.
type EventFixture struct {
	ID        string
	UserID    string
	Date      time.Time
	Type      application.EventType
	Status    application.EventStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EventOption configures the generated event fixture.
type EventOption func(*EventFixture)

// NewEventFixture returns a deterministic event fixture with optional
// overrides. Successive fixtures land on successive days so that default
// events never collide on the per-user-per-day constraint.
func NewEventFixture(opts ...EventOption) EventFixture {
	idx := atomic.AddUint64(&eventCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := EventFixture{
		ID:        fmt.Sprintf("event-%03d", idx),
		UserID:    "user-001",
		Date:      time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(idx-1)),
		Type:      application.EventTypeRemoteWork,
		Status:    application.EventStatusAccepted,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEventID overrides the generated event ID.
func WithEventID(id string) EventOption {
	return func(f *EventFixture) {
		f.ID = id
	}
}

// WithEventUser sets the owner of the generated event.
func WithEventUser(userID string) EventOption {
	return func(f *EventFixture) {
		f.UserID = userID
	}
}

// WithEventDate sets the calendar day of the generated event.
func WithEventDate(date time.Time) EventOption {
	return func(f *EventFixture) {
		f.Date = date
	}
}

// WithEventType sets the event type on the generated fixture.
func WithEventType(eventType application.EventType) EventOption {
	return func(f *EventFixture) {
		f.Type = eventType
	}
}

// WithEventStatus sets the lifecycle status on the generated fixture.
func WithEventStatus(status application.EventStatus) EventOption {
	return func(f *EventFixture) {
		f.Status = status
	}
}

// Application returns the fixture as an application.Event value.
func (f EventFixture) Application() application.Event {
	return application.Event{
		ID:        f.ID,
		UserID:    f.UserID,
		Date:      f.Date,
		Type:      f.Type,
		Status:    f.Status,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Event record.
func (f EventFixture) Persistence() persistence.Event {
	return persistence.Event{
		ID:        f.ID,
		UserID:    f.UserID,
		Date:      f.Date,
		Type:      string(f.Type),
		Status:    string(f.Status),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// ---------------------------- Project fixtures ---------------------------

// ProjectFixture represents a deterministic project record.
type ProjectFixture struct {
	ID        string
	Name      string
	ManagerID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProjectOption configures the generated project fixture.
type ProjectOption func(*ProjectFixture)

// NewProjectFixture returns a deterministic project fixture with optional
// overrides.
func NewProjectFixture(opts ...ProjectOption) ProjectFixture {
	idx := atomic.AddUint64(&projectCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := ProjectFixture{
		ID:        fmt.Sprintf("project-%03d", idx),
		Name:      fmt.Sprintf("Project %03d", idx),
		ManagerID: "manager-001",
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithProjectID overrides the generated project ID.
func WithProjectID(id string) ProjectOption {
	return func(f *ProjectFixture) {
		f.ID = id
	}
}

// WithProjectManager sets the managing user of the generated project.
func WithProjectManager(managerID string) ProjectOption {
	return func(f *ProjectFixture) {
		f.ManagerID = managerID
	}
}

// Application returns the fixture as an application.Project value.
func (f ProjectFixture) Application() application.Project {
	return application.Project{
		ID:        f.ID,
		Name:      f.Name,
		ManagerID: f.ManagerID,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Project record.
func (f ProjectFixture) Persistence() persistence.Project {
	return persistence.Project{
		ID:        f.ID,
		Name:      f.Name,
		ManagerID: f.ManagerID,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// -------------------------- Assignment fixtures --------------------------

// AssignmentFixture represents a deterministic project assignment covering an
// inclusive date range.
type AssignmentFixture struct {
	ID         string
	ProjectID  string
	ManagerID  string
	EmployeeID string
	StartDate  time.Time
	EndDate    time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AssignmentOption configures the generated assignment fixture.
type AssignmentOption func(*AssignmentFixture)

// NewAssignmentFixture returns a deterministic assignment fixture with
// optional overrides. The default range spans one calendar month.
func NewAssignmentFixture(opts ...AssignmentOption) AssignmentFixture {
	idx := atomic.AddUint64(&assignmentCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := AssignmentFixture{
		ID:         fmt.Sprintf("assignment-%03d", idx),
		ProjectID:  "project-001",
		ManagerID:  "manager-001",
		EmployeeID: "user-001",
		StartDate:  time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAssignmentID overrides the generated assignment ID.
func WithAssignmentID(id string) AssignmentOption {
	return func(f *AssignmentFixture) {
		f.ID = id
	}
}

// WithAssignmentProject sets the project of the generated assignment.
func WithAssignmentProject(projectID string) AssignmentOption {
	return func(f *AssignmentFixture) {
		f.ProjectID = projectID
	}
}

// WithAssignmentManager sets the manager of the generated assignment.
func WithAssignmentManager(managerID string) AssignmentOption {
	return func(f *AssignmentFixture) {
		f.ManagerID = managerID
	}
}

// WithAssignmentEmployee sets the employee of the generated assignment.
func WithAssignmentEmployee(employeeID string) AssignmentOption {
	return func(f *AssignmentFixture) {
		f.EmployeeID = employeeID
	}
}

// WithAssignmentRange sets the inclusive date range of the assignment.
func WithAssignmentRange(start, end time.Time) AssignmentOption {
	return func(f *AssignmentFixture) {
		f.StartDate = start
		f.EndDate = end
	}
}

// Application returns the fixture as an application.Assignment value.
func (f AssignmentFixture) Application() application.Assignment {
	return application.Assignment{
		ID:         f.ID,
		ProjectID:  f.ProjectID,
		ManagerID:  f.ManagerID,
		EmployeeID: f.EmployeeID,
		StartDate:  f.StartDate,
		EndDate:    f.EndDate,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Assignment record.
func (f AssignmentFixture) Persistence() persistence.Assignment {
	return persistence.Assignment{
		ID:         f.ID,
		ProjectID:  f.ProjectID,
		ManagerID:  f.ManagerID,
		EmployeeID: f.EmployeeID,
		StartDate:  f.StartDate,
		EndDate:    f.EndDate,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

// --------------------------- Session fixtures ----------------------------

// SessionFixture represents a deterministic authentication session.
type SessionFixture struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic session fixture with optional
// overrides. The default session expires one day after ReferenceTime.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := SessionFixture{
		ID:        fmt.Sprintf("session-%03d", idx),
		UserID:    "user-001",
		Token:     fmt.Sprintf("token-%03d", idx),
		ExpiresAt: referenceTime.Add(24 * time.Hour),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionUser sets the owner of the generated session.
func WithSessionUser(userID string) SessionOption {
	return func(f *SessionFixture) {
		f.UserID = userID
	}
}

// WithSessionToken overrides the generated token.
func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) {
		f.Token = token
	}
}

// WithSessionExpiry sets the expiry instant of the generated session.
func WithSessionExpiry(expiresAt time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.ExpiresAt = expiresAt
	}
}

// WithSessionRevoked marks the generated session as revoked at the given time.
func WithSessionRevoked(revokedAt time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.RevokedAt = &revokedAt
	}
}

// Application returns the fixture as an application.Session value.
func (f SessionFixture) Application() application.Session {
	return application.Session{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: f.RevokedAt,
	}
}

// Persistence returns the fixture as a persistence.Session record.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: f.RevokedAt,
	}
}
