package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/leavedesk/internal/persistence"
)

// AssignmentRepository implements persistence.AssignmentRepository using SQLite.
type AssignmentRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewAssignmentRepository creates a new SQLite assignment repository.
func NewAssignmentRepository(pool *ConnectionPool) *AssignmentRepository {
	return &AssignmentRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const assignmentColumns = `id, project_id, manager_id, employee_id, start_date, end_date, created_at, updated_at`

// CreateAssignment inserts a new assignment.
func (r *AssignmentRepository) CreateAssignment(ctx context.Context, assignment persistence.Assignment) error {
	if assignment.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO assignments (` + assignmentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		assignment.ID,
		assignment.ProjectID,
		assignment.ManagerID,
		assignment.EmployeeID,
		formatDate(assignment.StartDate),
		formatDate(assignment.EndDate),
		formatTime(assignment.CreatedAt),
		formatTime(assignment.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetAssignment retrieves an assignment by ID.
func (r *AssignmentRepository) GetAssignment(ctx context.Context, id string) (persistence.Assignment, error) {
	if id == "" {
		return persistence.Assignment{}, persistence.ErrNotFound
	}

	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = ?`
	return r.scanAssignment(r.helper.QueryRow(ctx, query, id))
}

// ListAssignments returns all assignments ordered by start date.
func (r *AssignmentRepository) ListAssignments(ctx context.Context) ([]persistence.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments ORDER BY start_date, id`
	return r.queryAssignments(ctx, query)
}

// ListAssignmentsForEmployee returns the employee's assignments ordered by
// start date.
func (r *AssignmentRepository) ListAssignmentsForEmployee(ctx context.Context, employeeID string) ([]persistence.Assignment, error) {
	if employeeID == "" {
		return nil, nil
	}

	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE employee_id = ? ORDER BY start_date, id`
	return r.queryAssignments(ctx, query, employeeID)
}

// FindAssignment resolves the assignment binding the manager to the employee
// on the given date, bounds inclusive.
func (r *AssignmentRepository) FindAssignment(ctx context.Context, managerID, employeeID string, date time.Time) (persistence.Assignment, error) {
	if managerID == "" || employeeID == "" {
		return persistence.Assignment{}, persistence.ErrNotFound
	}

	query := `
		SELECT ` + assignmentColumns + `
		FROM assignments
		WHERE manager_id = ? AND employee_id = ? AND start_date <= ? AND end_date >= ?
		ORDER BY start_date
		LIMIT 1
	`
	day := formatDate(date)
	return r.scanAssignment(r.helper.QueryRow(ctx, query, managerID, employeeID, day, day))
}

// FindOverlappingAssignment returns an assignment of the employee whose range
// intersects [start, end], if one exists.
func (r *AssignmentRepository) FindOverlappingAssignment(ctx context.Context, employeeID string, start, end time.Time) (persistence.Assignment, error) {
	if employeeID == "" {
		return persistence.Assignment{}, persistence.ErrNotFound
	}

	query := `
		SELECT ` + assignmentColumns + `
		FROM assignments
		WHERE employee_id = ? AND start_date <= ? AND end_date >= ?
		ORDER BY start_date
		LIMIT 1
	`
	return r.scanAssignment(r.helper.QueryRow(ctx, query, employeeID, formatDate(end), formatDate(start)))
}

func (r *AssignmentRepository) queryAssignments(ctx context.Context, query string, args ...any) ([]persistence.Assignment, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var assignments []persistence.Assignment
	for rows.Next() {
		assignment, err := r.scanAssignmentRow(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return assignments, nil
}

func (r *AssignmentRepository) scanAssignment(row *sql.Row) (persistence.Assignment, error) {
	return r.scanAssignmentRow(row)
}

func (r *AssignmentRepository) scanAssignmentRow(row rowScanner) (persistence.Assignment, error) {
	var (
		assignment              persistence.Assignment
		startStr, endStr        string
		createdAt, updatedAtStr string
	)
	err := row.Scan(
		&assignment.ID,
		&assignment.ProjectID,
		&assignment.ManagerID,
		&assignment.EmployeeID,
		&startStr,
		&endStr,
		&createdAt,
		&updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Assignment{}, persistence.ErrNotFound
		}
		return persistence.Assignment{}, r.mapper.MapError(err)
	}

	if assignment.StartDate, err = parseDate(startStr); err != nil {
		return persistence.Assignment{}, err
	}
	if assignment.EndDate, err = parseDate(endStr); err != nil {
		return persistence.Assignment{}, err
	}
	if assignment.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Assignment{}, err
	}
	if assignment.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Assignment{}, err
	}
	return assignment, nil
}
