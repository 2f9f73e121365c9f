package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/example/leavedesk/internal/application"
)

type capturingEventRepo struct {
	created application.Event
}

func (c *capturingEventRepo) CreateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	c.created = event
	return event, nil
}

func (c *capturingEventRepo) UpdateEventStatus(ctx context.Context, id string, status application.EventStatus) (application.Event, error) {
	return application.Event{}, application.ErrNotFound
}

func (c *capturingEventRepo) GetEvent(ctx context.Context, id string) (application.Event, error) {
	return application.Event{}, application.ErrNotFound
}

func (c *capturingEventRepo) FindEventByUserAndDate(ctx context.Context, userID string, date time.Time) (application.Event, error) {
	return application.Event{}, application.ErrNotFound
}

func (c *capturingEventRepo) CountEvents(ctx context.Context, filter application.EventRepositoryFilter) (int, error) {
	return 0, nil
}

func (c *capturingEventRepo) ListEvents(ctx context.Context, filter application.EventRepositoryFilter) ([]application.Event, error) {
	return nil, nil
}

func TestServiceFactoryNewEventService(t *testing.T) {
	factory := NewServiceFactory()
	repo := &capturingEventRepo{}

	svc := factory.NewEventService(EventServiceDeps{Events: repo})
	principal := application.Principal{UserID: "user-001", Role: application.RoleEmployee}
	input := application.EventInput{
		Date: time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC),
		Type: application.EventTypeRemoteWork,
	}

	event, err := svc.CreateEvent(context.Background(), application.CreateEventParams{Principal: principal, Input: input})
	if err != nil {
		t.Fatalf("CreateEvent returned error: %v", err)
	}

	if event.ID != "id-1" {
		t.Fatalf("expected generated ID id-1, got %q", event.ID)
	}
	if repo.created.ID != event.ID {
		t.Fatalf("repository received unexpected ID: %q", repo.created.ID)
	}
	if !event.CreatedAt.Equal(factory.Clock.Current()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Current(), event.CreatedAt)
	}
	if event.Status != application.EventStatusAccepted {
		t.Fatalf("expected self-approved remote work, got %q", event.Status)
	}
}

func TestServiceFactoryNewAuthService(t *testing.T) {
	factory := NewServiceFactory(WithClock(NewClock(ReferenceTime())))

	svc := factory.NewAuthService(AuthServiceDeps{
		Credentials: credentialStoreStub{},
		Sessions:    &sessionStoreStub{},
		Verifier: func(hashedPassword, password string) error {
			return nil
		},
		SessionTTL: 2 * time.Hour,
	})

	result, err := svc.Authenticate(context.Background(), application.AuthenticateParams{
		Email:    "user-001@example.com",
		Password: "irrelevant",
	})
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}

	expected := ReferenceTime().Add(2 * time.Hour)
	if !result.Session.ExpiresAt.Equal(expected) {
		t.Fatalf("expected expiry %v, got %v", expected, result.Session.ExpiresAt)
	}
	if result.Session.ID != "id-1" || result.Session.Token != "id-2" {
		t.Fatalf("expected deterministic session identifiers, got id %q token %q", result.Session.ID, result.Session.Token)
	}
}

type credentialStoreStub struct{}

func (credentialStoreStub) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	return application.UserCredentials{
		User: application.User{
			ID:    "user-001",
			Email: email,
			Role:  application.RoleEmployee,
		},
		PasswordHash: "stored-hash",
	}, nil
}

func (credentialStoreStub) GetUser(ctx context.Context, id string) (application.User, error) {
	return application.User{ID: id, Role: application.RoleEmployee}, nil
}

type sessionStoreStub struct {
	sessions []application.Session
}

func (s *sessionStoreStub) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	s.sessions = append(s.sessions, session)
	return session, nil
}

func (s *sessionStoreStub) GetSession(ctx context.Context, token string) (application.Session, error) {
	return application.Session{}, application.ErrNotFound
}

func (s *sessionStoreStub) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	return application.Session{}, application.ErrNotFound
}

func (s *sessionStoreStub) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return nil
}
