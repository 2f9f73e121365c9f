package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/leavedesk/internal/workcal"
)

// AssignmentDirectory resolves assignment lookups for authorization decisions.
type AssignmentDirectory interface {
	FindAssignment(ctx context.Context, managerID, employeeID string, date time.Time) (Assignment, error)
}

// AuthorizationEngine decides whether a project manager holds authority over
// an employee on a given date. Every decision is a point-in-time lookup;
// assignments can change between calls, so results are never cached.
type AuthorizationEngine struct {
	assignments AssignmentDirectory
	logger      *slog.Logger
}

// NewAuthorizationEngine wires the assignment directory.
func NewAuthorizationEngine(assignments AssignmentDirectory) *AuthorizationEngine {
	return NewAuthorizationEngineWithLogger(assignments, nil)
}

// NewAuthorizationEngineWithLogger constructs an AuthorizationEngine with a
// specified logger.
func NewAuthorizationEngineWithLogger(assignments AssignmentDirectory, logger *slog.Logger) *AuthorizationEngine {
	return &AuthorizationEngine{
		assignments: assignments,
		logger:      defaultLogger(logger),
	}
}

// CanManage reports whether managerID is assigned to manage employeeID on the
// given date, inclusive of the assignment's start and end days. When several
// assignments overlap, any covering assignment grants authority.
func (e *AuthorizationEngine) CanManage(ctx context.Context, managerID, employeeID string, date time.Time) (bool, error) {
	if e == nil || e.assignments == nil {
		return false, fmt.Errorf("assignment directory not configured")
	}
	if managerID == "" || employeeID == "" {
		return false, nil
	}

	_, err := e.assignments.FindAssignment(ctx, managerID, employeeID, workcal.Day(date))
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
