package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/leavedesk/internal/application"
)

type eventServiceStub struct {
	createResult application.Event
	createErr    error
	transitioned []application.TransitionEventParams
	transResult  application.Event
	transErr     error
	listResult   []application.Event
	lastFilter   application.EventListFilter
}

func (s *eventServiceStub) CreateEvent(ctx context.Context, params application.CreateEventParams) (application.Event, error) {
	if s.createErr != nil {
		return application.Event{}, s.createErr
	}
	return s.createResult, nil
}

func (s *eventServiceStub) Transition(ctx context.Context, params application.TransitionEventParams) (application.Event, error) {
	s.transitioned = append(s.transitioned, params)
	if s.transErr != nil {
		return application.Event{}, s.transErr
	}
	return s.transResult, nil
}

func (s *eventServiceStub) GetEvent(ctx context.Context, id string) (application.Event, error) {
	if s.createErr != nil {
		return application.Event{}, s.createErr
	}
	return s.createResult, nil
}

func (s *eventServiceStub) ListEvents(ctx context.Context, filter application.EventListFilter) ([]application.Event, error) {
	s.lastFilter = filter
	return s.listResult, nil
}

func sampleEvent(status application.EventStatus) application.Event {
	return application.Event{
		ID:        "event-1",
		UserID:    "user-1",
		Date:      time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC),
		Type:      application.EventTypeRemoteWork,
		Status:    status,
		CreatedAt: time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC),
	}
}

func newEventRouter(service eventService) http.Handler {
	return NewRouter(RouterConfig{Events: NewEventHandler(service, nil)})
}

func withPrincipal(req *http.Request, principal application.Principal) *http.Request {
	return req.WithContext(ContextWithPrincipal(req.Context(), principal))
}

func TestEventHandler_Create(t *testing.T) {
	t.Parallel()

	service := &eventServiceStub{createResult: sampleEvent(application.EventStatusAccepted)}
	router := newEventRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"date":"2024-03-11","type":"RemoteWork"}`))
	req = withPrincipal(req, application.Principal{UserID: "user-1", Role: application.RoleEmployee})
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", recorder.Code, recorder.Body.String())
	}

	var resp eventResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Event.Status != "Accepted" || resp.Event.Date != "2024-03-11" {
		t.Fatalf("unexpected payload %+v", resp.Event)
	}
}

func TestEventHandler_Create_MalformedBody(t *testing.T) {
	t.Parallel()

	router := newEventRouter(&eventServiceStub{})

	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{`))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestEventHandler_ServiceErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"date conflict", application.ErrConflict, http.StatusConflict, "EVENT_CONFLICT"},
		{"quota exceeded", application.ErrQuotaExceeded, http.StatusConflict, "EVENT_QUOTA_EXCEEDED"},
		{"already finalized", application.ErrAlreadyFinalized, http.StatusConflict, "EVENT_ALREADY_FINALIZED"},
		{"forbidden", application.ErrForbidden, http.StatusForbidden, "AUTH_FORBIDDEN"},
		{"not found", application.ErrNotFound, http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			service := &eventServiceStub{createErr: tt.err, transErr: tt.err}
			router := newEventRouter(service)

			req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"date":"2024-03-11","type":"RemoteWork"}`))
			req = withPrincipal(req, application.Principal{UserID: "user-1", Role: application.RoleEmployee})
			recorder := httptest.NewRecorder()

			router.ServeHTTP(recorder, req)

			if recorder.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, recorder.Code)
			}
			if tt.wantCode != "" {
				var resp errorResponse
				if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to decode error: %v", err)
				}
				if resp.ErrorCode != tt.wantCode {
					t.Fatalf("expected error code %s, got %s", tt.wantCode, resp.ErrorCode)
				}
			}
		})
	}
}

func TestEventHandler_ValidationErrorLocalized(t *testing.T) {
	t.Parallel()

	vErr := &application.ValidationError{FieldErrors: map[string]string{
		"event_type": "event type must be RemoteWork or PaidLeave",
	}}
	service := &eventServiceStub{createErr: vErr}
	router := newEventRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"date":"2024-03-11","type":"Holiday"}`))
	req = withPrincipal(req, application.Principal{UserID: "user-1", Role: application.RoleEmployee})
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", recorder.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if resp.Errors["event_type"] != "申請種別の指定が不正です。" {
		t.Fatalf("expected localized message, got %q", resp.Errors["event_type"])
	}
}

func TestEventHandler_ValidateAndDecline(t *testing.T) {
	t.Parallel()

	service := &eventServiceStub{transResult: sampleEvent(application.EventStatusAccepted)}
	router := newEventRouter(service)

	for i, tt := range []struct {
		path string
		want application.EventStatus
	}{
		{"/events/event-1/validate", application.EventStatusAccepted},
		{"/events/event-1/decline", application.EventStatusDeclined},
	} {
		req := httptest.NewRequest(http.MethodPost, tt.path, nil)
		req = withPrincipal(req, application.Principal{UserID: "admin-1", Role: application.RoleAdmin})
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tt.path, recorder.Code)
		}
		if len(service.transitioned) != i+1 {
			t.Fatalf("%s: expected transition call", tt.path)
		}
		got := service.transitioned[i]
		if got.EventID != "event-1" || got.NewStatus != tt.want {
			t.Fatalf("%s: unexpected params %+v", tt.path, got)
		}
	}
}

func TestEventHandler_List_EmployeeScopedToSelf(t *testing.T) {
	t.Parallel()

	service := &eventServiceStub{}
	router := newEventRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/events?user_id=user-2&from=2024-03-01&to=2024-03-31", nil)
	req = withPrincipal(req, application.Principal{UserID: "user-1", Role: application.RoleEmployee})
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if service.lastFilter.UserID != "user-1" {
		t.Fatalf("expected filter pinned to caller, got %q", service.lastFilter.UserID)
	}
	if service.lastFilter.DateFrom == nil || service.lastFilter.DateTo == nil {
		t.Fatal("expected parsed date bounds")
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	router := newEventRouter(&eventServiceStub{})

	req := httptest.NewRequest(http.MethodDelete, "/events", nil)
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", recorder.Code)
	}
	if allow := recorder.Header().Get("Allow"); !strings.Contains(allow, http.MethodPost) {
		t.Fatalf("expected Allow header, got %q", allow)
	}
}
