package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/leavedesk/internal/persistence"
	"github.com/example/leavedesk/internal/workcal"
)

// DefaultRemoteWorkWeeklyLimit caps self-approved remote-work days per
// Monday-to-Friday week.
const DefaultRemoteWorkWeeklyLimit = 2

// EventRepository captures the persistence interactions needed by the service.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) (Event, error)
	UpdateEventStatus(ctx context.Context, id string, status EventStatus) (Event, error)
	GetEvent(ctx context.Context, id string) (Event, error)
	FindEventByUserAndDate(ctx context.Context, userID string, date time.Time) (Event, error)
	CountEvents(ctx context.Context, filter EventRepositoryFilter) (int, error)
	ListEvents(ctx context.Context, filter EventRepositoryFilter) ([]Event, error)
}

// EventRepositoryFilter narrows queries issued to the event repository.
// Date bounds are inclusive.
type EventRepositoryFilter struct {
	UserID   string
	Type     EventType
	Status   EventStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

// ManagerAuthorizer resolves whether a manager holds authority over an
// employee on a specific date.
type ManagerAuthorizer interface {
	CanManage(ctx context.Context, managerID, employeeID string, date time.Time) (bool, error)
}

// EventService owns the event lifecycle: creation rules including the weekly
// remote-work quota, and status transitions with role-scoped authorization.
type EventService struct {
	events      EventRepository
	authorizer  ManagerAuthorizer
	idGenerator func() string
	now         func() time.Time
	weeklyLimit int
	logger      *slog.Logger
}

// NewEventService wires dependencies for event lifecycle operations. A
// weeklyLimit of zero or less selects DefaultRemoteWorkWeeklyLimit.
func NewEventService(events EventRepository, authorizer ManagerAuthorizer, idGenerator func() string, now func() time.Time, weeklyLimit int) *EventService {
	return NewEventServiceWithLogger(events, authorizer, idGenerator, now, weeklyLimit, nil)
}

// NewEventServiceWithLogger constructs an EventService with a specified logger.
func NewEventServiceWithLogger(events EventRepository, authorizer ManagerAuthorizer, idGenerator func() string, now func() time.Time, weeklyLimit int, logger *slog.Logger) *EventService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if weeklyLimit <= 0 {
		weeklyLimit = DefaultRemoteWorkWeeklyLimit
	}
	return &EventService{
		events:      events,
		authorizer:  authorizer,
		idGenerator: idGenerator,
		now:         now,
		weeklyLimit: weeklyLimit,
		logger:      defaultLogger(logger),
	}
}

func (s *EventService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EventService", operation, attrs...)
}

// CreateEvent records a new attendance event for the acting principal.
//
// At most one event may exist per employee and date, any status counted; a
// second request for the same date fails with ErrConflict. Remote-work events
// are additionally capped per Monday-to-Friday week and are self-approved
// (created Accepted); paid leave is created Pending and awaits approval.
func (s *EventService) CreateEvent(ctx context.Context, params CreateEventParams) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	input := params.Input
	principal := params.Principal

	logger := s.loggerWith(ctx, "CreateEvent",
		"user_id", principal.UserID,
		"event_type", string(input.Type),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "event creation rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_id", event.ID, "event_status", string(event.Status)).InfoContext(ctx, "event created")
	}()

	vErr := &ValidationError{}
	if principal.UserID == "" {
		vErr.add("user_id", "acting user is required")
	}
	if input.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	if !input.Type.Valid() {
		vErr.add("event_type", "event type must be RemoteWork or PaidLeave")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	date := workcal.Day(input.Date)

	// Check-then-act: the storage layer backs this with a unique constraint
	// on (user_id, date), so a racing duplicate insert still surfaces as
	// ErrConflict below.
	_, findErr := s.events.FindEventByUserAndDate(ctx, principal.UserID, date)
	switch {
	case findErr == nil:
		err = ErrConflict
		return
	case !isNotFound(findErr):
		err = findErr
		return
	}

	status := EventStatusPending
	if input.Type == EventTypeRemoteWork {
		monday, friday := workcal.WorkWeek(date)
		var count int
		count, err = s.events.CountEvents(ctx, EventRepositoryFilter{
			UserID:   principal.UserID,
			Type:     EventTypeRemoteWork,
			DateFrom: &monday,
			DateTo:   &friday,
		})
		if err != nil {
			return
		}
		if count >= s.weeklyLimit {
			err = ErrQuotaExceeded
			return
		}
		status = EventStatusAccepted
	}

	createdAt := s.now()
	candidate := Event{
		ID:        s.idGenerator(),
		UserID:    principal.UserID,
		Date:      date,
		Type:      input.Type,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	event, err = s.events.CreateEvent(ctx, candidate)
	if err != nil {
		err = mapEventRepoError(err)
		event = Event{}
		return
	}
	return event, nil
}

// Transition moves a pending event to Accepted or Declined.
//
// Employees may never transition events, their own included. Project managers
// must hold an assignment covering the event's owner on the event's date.
// Admins are unscoped. Accepted and Declined are terminal; transitioning a
// finalized event fails with ErrAlreadyFinalized.
func (s *EventService) Transition(ctx context.Context, params TransitionEventParams) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	principal := params.Principal

	logger := s.loggerWith(ctx, "Transition",
		"actor_id", principal.UserID,
		"actor_role", string(principal.Role),
		"event_id", params.EventID,
		"new_status", string(params.NewStatus),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "transition rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "event transitioned")
	}()

	if params.NewStatus != EventStatusAccepted && params.NewStatus != EventStatusDeclined {
		vErr := &ValidationError{}
		vErr.add("status", "status must be Accepted or Declined")
		err = vErr
		return
	}

	existing, getErr := s.events.GetEvent(ctx, params.EventID)
	if getErr != nil {
		err = mapEventRepoError(getErr)
		return
	}

	if existing.Status.Terminal() {
		err = ErrAlreadyFinalized
		return
	}

	switch principal.Role {
	case RoleEmployee:
		err = ErrForbidden
		return
	case RoleProjectManager:
		if s.authorizer == nil {
			err = ErrForbidden
			return
		}
		allowed, authErr := s.authorizer.CanManage(ctx, principal.UserID, existing.UserID, existing.Date)
		if authErr != nil {
			err = authErr
			return
		}
		if !allowed {
			err = ErrForbidden
			return
		}
	case RoleAdmin:
		// Unscoped override.
	default:
		err = ErrForbidden
		return
	}

	event, err = s.events.UpdateEventStatus(ctx, existing.ID, params.NewStatus)
	if err != nil {
		err = mapEventRepoError(err)
		event = Event{}
		return
	}
	return event, nil
}

// GetEvent retrieves a single event by identifier.
func (s *EventService) GetEvent(ctx context.Context, id string) (Event, error) {
	if s == nil || s.events == nil {
		return Event{}, fmt.Errorf("event repository not configured")
	}
	event, err := s.events.GetEvent(ctx, id)
	if err != nil {
		return Event{}, mapEventRepoError(err)
	}
	return event, nil
}

// ListEvents enumerates events, optionally filtered by owner and date range.
func (s *EventService) ListEvents(ctx context.Context, filter EventListFilter) ([]Event, error) {
	if s == nil || s.events == nil {
		return nil, fmt.Errorf("event repository not configured")
	}
	events, err := s.events.ListEvents(ctx, EventRepositoryFilter{
		UserID:   filter.UserID,
		Type:     filter.Type,
		Status:   filter.Status,
		DateFrom: filter.DateFrom,
		DateTo:   filter.DateTo,
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return events, nil
}

func mapEventRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrConflict
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound)
}
