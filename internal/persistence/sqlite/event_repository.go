package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/leavedesk/internal/persistence"
)

// EventRepository implements persistence.EventRepository using SQLite.
type EventRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewEventRepository creates a new SQLite event repository.
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateEvent inserts a new event. The UNIQUE (user_id, date) constraint
// surfaces a racing duplicate as persistence.ErrDuplicate.
func (r *EventRepository) CreateEvent(ctx context.Context, event persistence.Event) error {
	if event.ID == "" || event.UserID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO events (id, user_id, date, type, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		event.ID,
		event.UserID,
		formatDate(event.Date),
		event.Type,
		event.Status,
		formatTime(event.CreatedAt),
		formatTime(event.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// UpdateEventStatus sets the status of an existing event.
func (r *EventRepository) UpdateEventStatus(ctx context.Context, id, status string, updatedAt time.Time) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	query := `UPDATE events SET status = ?, updated_at = ? WHERE id = ?`

	result, err := r.helper.Exec(ctx, query, status, formatTime(updatedAt), id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetEvent retrieves an event by ID.
func (r *EventRepository) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	if id == "" {
		return persistence.Event{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, user_id, date, type, status, created_at, updated_at
		FROM events
		WHERE id = ?
	`
	return r.scanEvent(r.helper.QueryRow(ctx, query, id))
}

// FindEventByUserAndDate retrieves the event occupying the given day for the
// user, regardless of status.
func (r *EventRepository) FindEventByUserAndDate(ctx context.Context, userID string, date time.Time) (persistence.Event, error) {
	if userID == "" {
		return persistence.Event{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, user_id, date, type, status, created_at, updated_at
		FROM events
		WHERE user_id = ? AND date = ?
	`
	return r.scanEvent(r.helper.QueryRow(ctx, query, userID, formatDate(date)))
}

// CountEvents counts events matching the filter.
func (r *EventRepository) CountEvents(ctx context.Context, filter persistence.EventFilter) (int, error) {
	where, args := buildEventFilter(filter)

	var count int
	err := r.helper.QueryRow(ctx, "SELECT COUNT(*) FROM events"+where, args...).Scan(&count)
	if err != nil {
		return 0, r.mapper.MapError(err)
	}
	return count, nil
}

// ListEvents returns events matching the filter ordered by date.
func (r *EventRepository) ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.Event, error) {
	where, args := buildEventFilter(filter)

	query := `
		SELECT id, user_id, date, type, status, created_at, updated_at
		FROM events
	` + where + " ORDER BY date, user_id"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var events []persistence.Event
	for rows.Next() {
		event, err := r.scanEventRow(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return events, nil
}

func buildEventFilter(filter persistence.EventFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if filter.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Type != "" {
		clauses = append(clauses, "type = ?")
		args = append(args, filter.Type)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.DateFrom != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, formatDate(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		clauses = append(clauses, "date <= ?")
		args = append(args, formatDate(*filter.DateTo))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *EventRepository) scanEvent(row *sql.Row) (persistence.Event, error) {
	return r.scanEventRow(row)
}

func (r *EventRepository) scanEventRow(row rowScanner) (persistence.Event, error) {
	var (
		event                            persistence.Event
		dateStr, createdAt, updatedAtStr string
	)
	err := row.Scan(&event.ID, &event.UserID, &dateStr, &event.Type, &event.Status, &createdAt, &updatedAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Event{}, persistence.ErrNotFound
		}
		return persistence.Event{}, r.mapper.MapError(err)
	}

	if event.Date, err = parseDate(dateStr); err != nil {
		return persistence.Event{}, err
	}
	if event.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Event{}, err
	}
	if event.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Event{}, err
	}
	return event, nil
}
