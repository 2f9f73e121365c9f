package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/leavedesk/internal/application"
)

type eventService interface {
	CreateEvent(ctx context.Context, params application.CreateEventParams) (application.Event, error)
	Transition(ctx context.Context, params application.TransitionEventParams) (application.Event, error)
	GetEvent(ctx context.Context, id string) (application.Event, error)
	ListEvents(ctx context.Context, filter application.EventListFilter) ([]application.Event, error)
}

type EventHandler struct {
	service   eventService
	responder responder
	logger    *slog.Logger
}

func NewEventHandler(service eventService, logger *slog.Logger) *EventHandler {
	base := defaultLogger(logger)
	return &EventHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *EventHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EventHandler", operation, attrs...)
}

const dateLayout = "2006-01-02"

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode event request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "malformed event date", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "date", req.Date, "event_type", req.Type)

	event, err := h.service.CreateEvent(r.Context(), application.CreateEventParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "event creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("event_id", event.ID, "status", string(event.Status)).InfoContext(r.Context(), "event created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, eventResponse{Event: toEventDTO(event)})
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	event, err := h.service.GetEvent(r.Context(), eventID)
	if err != nil {
		h.log(r.Context(), "Get", "event_id", eventID).ErrorContext(r.Context(), "event lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: toEventDTO(event)})
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	filter, err := parseEventListFilter(r, principal)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	events, err := h.service.ListEvents(r.Context(), filter)
	if err != nil {
		h.log(r.Context(), "List", "principal_id", principal.UserID).ErrorContext(r.Context(), "event listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]eventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, toEventDTO(event))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventListResponse{Events: dtos})
}

// Validate accepts a pending request.
func (h *EventHandler) Validate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Validate", application.EventStatusAccepted)
}

// Decline rejects a pending request.
func (h *EventHandler) Decline(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Decline", application.EventStatusDeclined)
}

func (h *EventHandler) transition(w http.ResponseWriter, r *http.Request, operation string, status application.EventStatus) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), operation, "principal_id", principal.UserID, "event_id", eventID)

	event, err := h.service.Transition(r.Context(), application.TransitionEventParams{
		Principal: principal,
		EventID:   eventID,
		NewStatus: status,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "event transition failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("status", string(event.Status)).InfoContext(r.Context(), "event transitioned")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: toEventDTO(event)})
}

func parseEventListFilter(r *http.Request, principal application.Principal) (application.EventListFilter, error) {
	query := r.URL.Query()
	filter := application.EventListFilter{
		UserID: strings.TrimSpace(query.Get("user_id")),
		Type:   application.EventType(strings.TrimSpace(query.Get("type"))),
		Status: application.EventStatus(strings.TrimSpace(query.Get("status"))),
	}

	// Employees only ever see their own events.
	if principal.Role == application.RoleEmployee {
		filter.UserID = principal.UserID
	}

	if raw := strings.TrimSpace(query.Get("from")); raw != "" {
		from, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			return application.EventListFilter{}, errors.New("from の日付形式が不正です。")
		}
		filter.DateFrom = &from
	}
	if raw := strings.TrimSpace(query.Get("to")); raw != "" {
		to, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			return application.EventListFilter{}, errors.New("to の日付形式が不正です。")
		}
		filter.DateTo = &to
	}
	return filter, nil
}

type eventRequest struct {
	Date string `json:"date"`
	Type string `json:"type"`
}

func (req eventRequest) toInput() (application.EventInput, error) {
	input := application.EventInput{Type: application.EventType(strings.TrimSpace(req.Type))}

	raw := strings.TrimSpace(req.Date)
	if raw == "" {
		return input, nil
	}
	date, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return application.EventInput{}, errors.New("対象日は YYYY-MM-DD 形式で指定してください。")
	}
	input.Date = date
	return input, nil
}

type eventDTO struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Date      string `json:"date"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type eventResponse struct {
	Event eventDTO `json:"event"`
}

type eventListResponse struct {
	Events []eventDTO `json:"events"`
}

func toEventDTO(event application.Event) eventDTO {
	return eventDTO{
		ID:        event.ID,
		UserID:    event.UserID,
		Date:      event.Date.UTC().Format(dateLayout),
		Type:      string(event.Type),
		Status:    string(event.Status),
		CreatedAt: event.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: event.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
