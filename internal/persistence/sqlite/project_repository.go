package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/leavedesk/internal/persistence"
)

// ProjectRepository implements persistence.ProjectRepository using SQLite.
type ProjectRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewProjectRepository creates a new SQLite project repository.
func NewProjectRepository(pool *ConnectionPool) *ProjectRepository {
	return &ProjectRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateProject inserts a new project.
func (r *ProjectRepository) CreateProject(ctx context.Context, project persistence.Project) error {
	if project.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO projects (id, name, manager_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		project.ID,
		project.Name,
		project.ManagerID,
		formatTime(project.CreatedAt),
		formatTime(project.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetProject retrieves a project by ID.
func (r *ProjectRepository) GetProject(ctx context.Context, id string) (persistence.Project, error) {
	if id == "" {
		return persistence.Project{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, name, manager_id, created_at, updated_at
		FROM projects
		WHERE id = ?
	`
	return r.scanProject(r.helper.QueryRow(ctx, query, id))
}

// ListProjects returns all projects ordered by name.
func (r *ProjectRepository) ListProjects(ctx context.Context) ([]persistence.Project, error) {
	query := `
		SELECT id, name, manager_id, created_at, updated_at
		FROM projects
		ORDER BY name, id
	`

	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var projects []persistence.Project
	for rows.Next() {
		project, err := r.scanProjectRow(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return projects, nil
}

func (r *ProjectRepository) scanProject(row *sql.Row) (persistence.Project, error) {
	return r.scanProjectRow(row)
}

func (r *ProjectRepository) scanProjectRow(row rowScanner) (persistence.Project, error) {
	var (
		project                 persistence.Project
		createdAt, updatedAtStr string
	)
	err := row.Scan(&project.ID, &project.Name, &project.ManagerID, &createdAt, &updatedAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Project{}, persistence.ErrNotFound
		}
		return persistence.Project{}, r.mapper.MapError(err)
	}

	if project.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Project{}, err
	}
	if project.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Project{}, err
	}
	return project, nil
}
