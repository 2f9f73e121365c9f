// Package memory provides a mutex-guarded in-memory implementation of the
// persistence repositories. It backs tests and fixtures; production wiring
// uses the sqlite package.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/leavedesk/internal/persistence"
)

// Storage implements every persistence repository interface in memory.
type Storage struct {
	mu          sync.RWMutex
	users       map[string]persistence.User
	projects    map[string]persistence.Project
	assignments map[string]persistence.Assignment
	events      map[string]persistence.Event
	sessions    map[string]persistence.Session
}

// Open returns a new empty Storage.
func Open() *Storage {
	return &Storage{
		users:       make(map[string]persistence.User),
		projects:    make(map[string]persistence.Project),
		assignments: make(map[string]persistence.Assignment),
		events:      make(map[string]persistence.Event),
		sessions:    make(map[string]persistence.Session),
	}
}

// Close releases resources held by the storage. No-op for the in-memory
// implementation.
func (s *Storage) Close() error {
	return nil
}

// --- EventRepository implementation ---

// CreateEvent stores a new event, enforcing the one-event-per-day rule.
func (s *Storage) CreateEvent(ctx context.Context, event persistence.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[event.ID]; ok {
		return persistence.ErrDuplicate
	}
	for _, existing := range s.events {
		if existing.UserID == event.UserID && sameDate(existing.Date, event.Date) {
			return persistence.ErrDuplicate
		}
	}

	s.events[event.ID] = event
	return nil
}

// UpdateEventStatus sets the status of an existing event.
func (s *Storage) UpdateEventStatus(ctx context.Context, id, status string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[id]
	if !ok {
		return persistence.ErrNotFound
	}
	event.Status = status
	event.UpdatedAt = updatedAt
	s.events[id] = event
	return nil
}

// GetEvent retrieves an event by ID.
func (s *Storage) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok {
		return persistence.Event{}, persistence.ErrNotFound
	}
	return event, nil
}

// FindEventByUserAndDate retrieves the event occupying a day for the user.
func (s *Storage) FindEventByUserAndDate(ctx context.Context, userID string, date time.Time) (persistence.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, event := range s.events {
		if event.UserID == userID && sameDate(event.Date, date) {
			return event, nil
		}
	}
	return persistence.Event{}, persistence.ErrNotFound
}

// CountEvents counts events matching the filter.
func (s *Storage) CountEvents(ctx context.Context, filter persistence.EventFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, event := range s.events {
		if eventMatches(event, filter) {
			count++
		}
	}
	return count, nil
}

// ListEvents returns events matching the filter ordered by date.
func (s *Storage) ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []persistence.Event
	for _, event := range s.events {
		if eventMatches(event, filter) {
			events = append(events, event)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Date.Equal(events[j].Date) {
			return events[i].ID < events[j].ID
		}
		return events[i].Date.Before(events[j].Date)
	})
	return events, nil
}

func eventMatches(event persistence.Event, filter persistence.EventFilter) bool {
	if filter.UserID != "" && event.UserID != filter.UserID {
		return false
	}
	if filter.Type != "" && event.Type != filter.Type {
		return false
	}
	if filter.Status != "" && event.Status != filter.Status {
		return false
	}
	if filter.DateFrom != nil && event.Date.Before(*filter.DateFrom) {
		return false
	}
	if filter.DateTo != nil && event.Date.After(*filter.DateTo) {
		return false
	}
	return true
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// --- UserRepository implementation ---

// CreateUser stores a new user, enforcing email uniqueness.
func (s *Storage) CreateUser(ctx context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return persistence.ErrDuplicate
	}
	lower := strings.ToLower(user.Email)
	for _, existing := range s.users {
		if strings.ToLower(existing.Email) == lower {
			return persistence.ErrDuplicate
		}
	}

	s.users[user.ID] = user
	return nil
}

// GetUser retrieves a user by ID.
func (s *Storage) GetUser(ctx context.Context, id string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address, case-insensitively.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(strings.TrimSpace(email))
	for _, user := range s.users {
		if strings.ToLower(user.Email) == lower {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

// ListUsers returns all users ordered by display name.
func (s *Storage) ListUsers(ctx context.Context) ([]persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]persistence.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].DisplayName == users[j].DisplayName {
			return users[i].ID < users[j].ID
		}
		return users[i].DisplayName < users[j].DisplayName
	})
	return users, nil
}

// --- ProjectRepository implementation ---

// CreateProject stores a new project.
func (s *Storage) CreateProject(ctx context.Context, project persistence.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[project.ID]; ok {
		return persistence.ErrDuplicate
	}
	s.projects[project.ID] = project
	return nil
}

// GetProject retrieves a project by ID.
func (s *Storage) GetProject(ctx context.Context, id string) (persistence.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, ok := s.projects[id]
	if !ok {
		return persistence.Project{}, persistence.ErrNotFound
	}
	return project, nil
}

// ListProjects returns all projects ordered by name.
func (s *Storage) ListProjects(ctx context.Context) ([]persistence.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects := make([]persistence.Project, 0, len(s.projects))
	for _, project := range s.projects {
		projects = append(projects, project)
	}
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].Name == projects[j].Name {
			return projects[i].ID < projects[j].ID
		}
		return projects[i].Name < projects[j].Name
	})
	return projects, nil
}

// --- AssignmentRepository implementation ---

// CreateAssignment stores a new assignment.
func (s *Storage) CreateAssignment(ctx context.Context, assignment persistence.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assignments[assignment.ID]; ok {
		return persistence.ErrDuplicate
	}
	if assignment.EndDate.Before(assignment.StartDate) {
		return persistence.ErrConstraintViolation
	}
	s.assignments[assignment.ID] = assignment
	return nil
}

// GetAssignment retrieves an assignment by ID.
func (s *Storage) GetAssignment(ctx context.Context, id string) (persistence.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assignment, ok := s.assignments[id]
	if !ok {
		return persistence.Assignment{}, persistence.ErrNotFound
	}
	return assignment, nil
}

// ListAssignments returns all assignments ordered by start date.
func (s *Storage) ListAssignments(ctx context.Context) ([]persistence.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assignments := make([]persistence.Assignment, 0, len(s.assignments))
	for _, assignment := range s.assignments {
		assignments = append(assignments, assignment)
	}
	sortAssignments(assignments)
	return assignments, nil
}

// ListAssignmentsForEmployee returns an employee's assignments ordered by
// start date.
func (s *Storage) ListAssignmentsForEmployee(ctx context.Context, employeeID string) ([]persistence.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var assignments []persistence.Assignment
	for _, assignment := range s.assignments {
		if assignment.EmployeeID == employeeID {
			assignments = append(assignments, assignment)
		}
	}
	sortAssignments(assignments)
	return assignments, nil
}

// FindAssignment resolves the assignment binding the manager to the employee
// on the given date, bounds inclusive.
func (s *Storage) FindAssignment(ctx context.Context, managerID, employeeID string, date time.Time) (persistence.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		found bool
		best  persistence.Assignment
	)
	for _, assignment := range s.assignments {
		if assignment.ManagerID != managerID || assignment.EmployeeID != employeeID {
			continue
		}
		if date.Before(assignment.StartDate) || date.After(assignment.EndDate) {
			continue
		}
		if !found || assignment.StartDate.Before(best.StartDate) {
			best = assignment
			found = true
		}
	}
	if !found {
		return persistence.Assignment{}, persistence.ErrNotFound
	}
	return best, nil
}

// FindOverlappingAssignment returns an assignment of the employee intersecting
// [start, end], if one exists.
func (s *Storage) FindOverlappingAssignment(ctx context.Context, employeeID string, start, end time.Time) (persistence.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, assignment := range s.assignments {
		if assignment.EmployeeID != employeeID {
			continue
		}
		if end.Before(assignment.StartDate) || start.After(assignment.EndDate) {
			continue
		}
		return assignment, nil
	}
	return persistence.Assignment{}, persistence.ErrNotFound
}

func sortAssignments(assignments []persistence.Assignment) {
	sort.Slice(assignments, func(i, j int) bool {
		if assignments[i].StartDate.Equal(assignments[j].StartDate) {
			return assignments[i].ID < assignments[j].ID
		}
		return assignments[i].StartDate.Before(assignments[j].StartDate)
	})
}

// --- SessionRepository implementation ---

// CreateSession stores a new session keyed by token.
func (s *Storage) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.Token]; ok {
		return persistence.Session{}, persistence.ErrDuplicate
	}
	s.sessions[session.Token] = session
	return session, nil
}

// GetSession retrieves a session by token.
func (s *Storage) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

// RevokeSession marks a live session revoked and returns the updated record.
func (s *Storage) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok || session.RevokedAt != nil {
		return persistence.Session{}, persistence.ErrNotFound
	}
	session.RevokedAt = &revokedAt
	session.UpdatedAt = revokedAt
	s.sessions[token] = session
	return session, nil
}

// DeleteExpiredSessions removes sessions that expired on or before reference.
func (s *Storage) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if !session.ExpiresAt.After(reference) {
			delete(s.sessions, token)
		}
	}
	return nil
}
