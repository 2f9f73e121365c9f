package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/leavedesk/internal/workcal"
)

// ProjectRepository captures the persistence interactions for projects.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project Project) (Project, error)
	GetProject(ctx context.Context, id string) (Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
}

// AssignmentRepository captures the persistence interactions for project
// assignments.
type AssignmentRepository interface {
	CreateAssignment(ctx context.Context, assignment Assignment) (Assignment, error)
	GetAssignment(ctx context.Context, id string) (Assignment, error)
	ListAssignments(ctx context.Context) ([]Assignment, error)
	ListAssignmentsForEmployee(ctx context.Context, employeeID string) ([]Assignment, error)
	FindOverlappingAssignment(ctx context.Context, employeeID string, start, end time.Time) (Assignment, error)
}

// UserDirectory exposes user existence lookups.
type UserDirectory interface {
	UserExists(ctx context.Context, id string) (bool, error)
}

// ProjectService manages projects and the manager-to-employee assignments
// that scope approval authority.
type ProjectService struct {
	projects    ProjectRepository
	assignments AssignmentRepository
	users       UserDirectory
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewProjectService wires dependencies for project operations.
func NewProjectService(projects ProjectRepository, assignments AssignmentRepository, users UserDirectory, idGenerator func() string, now func() time.Time) *ProjectService {
	return NewProjectServiceWithLogger(projects, assignments, users, idGenerator, now, nil)
}

// NewProjectServiceWithLogger constructs a ProjectService with a specified logger.
func NewProjectServiceWithLogger(projects ProjectRepository, assignments AssignmentRepository, users UserDirectory, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ProjectService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ProjectService{
		projects:    projects,
		assignments: assignments,
		users:       users,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *ProjectService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ProjectService", operation, attrs...)
}

// CreateProject registers a new project with its referring manager. Employees
// may not create projects.
func (s *ProjectService) CreateProject(ctx context.Context, params CreateProjectParams) (project Project, err error) {
	if s == nil {
		err = fmt.Errorf("ProjectService is nil")
		return
	}
	if s.projects == nil {
		err = fmt.Errorf("project repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateProject", "actor_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "project creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("project_id", project.ID).InfoContext(ctx, "project created")
	}()

	if params.Principal.Role == RoleEmployee {
		err = ErrForbidden
		return
	}

	input := params.Input
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.ManagerID == "" {
		vErr.add("manager_id", "manager is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.ensureUserExists(ctx, input.ManagerID, "manager_id"); err != nil {
		return
	}

	createdAt := s.now()
	candidate := Project{
		ID:        s.idGenerator(),
		Name:      strings.TrimSpace(input.Name),
		ManagerID: input.ManagerID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	project, err = s.projects.CreateProject(ctx, candidate)
	if err != nil {
		err = mapEventRepoError(err)
		project = Project{}
		return
	}
	return project, nil
}

// GetProject retrieves a project by identifier.
func (s *ProjectService) GetProject(ctx context.Context, id string) (Project, error) {
	if s == nil || s.projects == nil {
		return Project{}, fmt.Errorf("project repository not configured")
	}
	project, err := s.projects.GetProject(ctx, id)
	if err != nil {
		return Project{}, mapEventRepoError(err)
	}
	return project, nil
}

// ListProjects returns every project.
func (s *ProjectService) ListProjects(ctx context.Context) ([]Project, error) {
	if s == nil || s.projects == nil {
		return nil, fmt.Errorf("project repository not configured")
	}
	projects, err := s.projects.ListProjects(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return projects, nil
}

// AssignEmployee binds an employee to a project over a date range, granting
// the project's manager approval authority for that period. Employees may not
// create assignments, and an employee may hold at most one assignment over
// any given period.
func (s *ProjectService) AssignEmployee(ctx context.Context, params AssignEmployeeParams) (assignment Assignment, err error) {
	if s == nil {
		err = fmt.Errorf("ProjectService is nil")
		return
	}
	if s.assignments == nil || s.projects == nil {
		err = fmt.Errorf("assignment repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "AssignEmployee",
		"actor_id", params.Principal.UserID,
		"employee_id", params.Input.EmployeeID,
		"project_id", params.Input.ProjectID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "assignment rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("assignment_id", assignment.ID).InfoContext(ctx, "employee assigned")
	}()

	if params.Principal.Role == RoleEmployee {
		err = ErrForbidden
		return
	}

	input := params.Input
	vErr := &ValidationError{}
	if input.ProjectID == "" {
		vErr.add("project_id", "project is required")
	}
	if input.EmployeeID == "" {
		vErr.add("employee_id", "employee is required")
	}
	if input.StartDate.IsZero() {
		vErr.add("start_date", "start date is required")
	}
	if input.EndDate.IsZero() {
		vErr.add("end_date", "end date is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	start := workcal.Day(input.StartDate)
	end := workcal.Day(input.EndDate)
	if end.Before(start) {
		vErr.add("end_date", "end date must not precede start date")
		err = vErr
		return
	}

	var project Project
	project, err = s.projects.GetProject(ctx, input.ProjectID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	if err = s.ensureUserExists(ctx, input.EmployeeID, "employee_id"); err != nil {
		return
	}

	_, overlapErr := s.assignments.FindOverlappingAssignment(ctx, input.EmployeeID, start, end)
	switch {
	case overlapErr == nil:
		err = ErrConflict
		return
	case !isNotFound(overlapErr):
		err = overlapErr
		return
	}

	createdAt := s.now()
	candidate := Assignment{
		ID:         s.idGenerator(),
		ProjectID:  project.ID,
		ManagerID:  project.ManagerID,
		EmployeeID: input.EmployeeID,
		StartDate:  start,
		EndDate:    end,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}

	assignment, err = s.assignments.CreateAssignment(ctx, candidate)
	if err != nil {
		err = mapEventRepoError(err)
		assignment = Assignment{}
		return
	}
	return assignment, nil
}

// GetAssignment retrieves an assignment by identifier. Employees may only
// read their own assignments.
func (s *ProjectService) GetAssignment(ctx context.Context, principal Principal, id string) (Assignment, error) {
	if s == nil || s.assignments == nil {
		return Assignment{}, fmt.Errorf("assignment repository not configured")
	}
	assignment, err := s.assignments.GetAssignment(ctx, id)
	if err != nil {
		return Assignment{}, mapEventRepoError(err)
	}
	if principal.Role == RoleEmployee && assignment.EmployeeID != principal.UserID {
		return Assignment{}, ErrForbidden
	}
	return assignment, nil
}

// ListAssignments enumerates assignments visible to the principal: managers
// and admins see all, employees only their own.
func (s *ProjectService) ListAssignments(ctx context.Context, principal Principal) ([]Assignment, error) {
	if s == nil || s.assignments == nil {
		return nil, fmt.Errorf("assignment repository not configured")
	}

	var (
		assignments []Assignment
		err         error
	)
	switch principal.Role {
	case RoleAdmin, RoleProjectManager:
		assignments, err = s.assignments.ListAssignments(ctx)
	case RoleEmployee:
		assignments, err = s.assignments.ListAssignmentsForEmployee(ctx, principal.UserID)
	default:
		return nil, ErrForbidden
	}
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return assignments, nil
}

func (s *ProjectService) ensureUserExists(ctx context.Context, id, field string) error {
	if s.users == nil {
		return nil
	}
	exists, err := s.users.UserExists(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	vErr := &ValidationError{}
	vErr.add(field, "user does not exist")
	return vErr
}
