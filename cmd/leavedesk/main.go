package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/leavedesk/internal/application"
	"github.com/example/leavedesk/internal/config"
	httptransport "github.com/example/leavedesk/internal/http"
	"github.com/example/leavedesk/internal/persistence"
	"github.com/example/leavedesk/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	eventStore := sqlite.NewEventRepository(pool)
	userStore := sqlite.NewUserRepository(pool)
	projectStore := sqlite.NewProjectRepository(pool)
	assignmentStore := sqlite.NewAssignmentRepository(pool)
	sessionStore := sqlite.NewSessionRepository(pool)

	eventRepo := newEventRepositoryAdapter(eventStore, now)
	userRepo := newUserRepositoryAdapter(userStore)
	userDirectory := newUserDirectoryAdapter(userStore)
	credentialStore := newCredentialStoreAdapter(userStore)
	projectRepo := newProjectRepositoryAdapter(projectStore)
	assignmentRepo := newAssignmentRepositoryAdapter(assignmentStore)
	assignmentDirectory := newAssignmentDirectoryAdapter(assignmentStore)
	sessionRepo := newSessionRepositoryAdapter(sessionStore)

	authorizer := application.NewAuthorizationEngineWithLogger(assignmentDirectory, logger)
	eventService := application.NewEventServiceWithLogger(eventRepo, authorizer, idGenerator, now, cfg.RemoteWeeklyLimit, logger)
	attendanceService := application.NewAttendanceServiceWithLogger(eventRepo, cfg.VouchersPerDay, logger)
	userService := application.NewUserServiceWithLogger(userRepo, nil, idGenerator, now, logger)
	projectService := application.NewProjectServiceWithLogger(projectRepo, assignmentRepo, userDirectory, idGenerator, now, logger)
	authService := application.NewAuthServiceWithLogger(credentialStore, sessionRepo, nil, tokenGenerator, now, cfg.SessionTTL, logger)

	authHandler := httptransport.NewAuthHandler(authService, logger)
	userHandler := httptransport.NewUserHandler(userService, attendanceService, now, logger)
	eventHandler := httptransport.NewEventHandler(eventService, logger)
	projectHandler := httptransport.NewProjectHandler(projectService, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:     authHandler,
		Users:    userHandler,
		Events:   eventHandler,
		Projects: projectHandler,
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicEndpoint(r) {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("leave management API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// isPublicEndpoint reports whether the request may bypass session validation.
// Login and account sign-up are the only unauthenticated operations.
func isPublicEndpoint(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}
	return r.URL.Path == "/sessions" || r.URL.Path == "/users"
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

type eventRepositoryAdapter struct {
	repo persistence.EventRepository
	now  func() time.Time
}

func newEventRepositoryAdapter(repo persistence.EventRepository, now func() time.Time) *eventRepositoryAdapter {
	if now == nil {
		now = time.Now
	}
	return &eventRepositoryAdapter{repo: repo, now: now}
}

func (a *eventRepositoryAdapter) CreateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	if err := a.repo.CreateEvent(ctx, toPersistenceEvent(event)); err != nil {
		return application.Event{}, err
	}
	stored, err := a.repo.GetEvent(ctx, event.ID)
	if err != nil {
		return application.Event{}, err
	}
	return toApplicationEvent(stored), nil
}

func (a *eventRepositoryAdapter) UpdateEventStatus(ctx context.Context, id string, status application.EventStatus) (application.Event, error) {
	if err := a.repo.UpdateEventStatus(ctx, id, string(status), a.now().UTC()); err != nil {
		return application.Event{}, err
	}
	stored, err := a.repo.GetEvent(ctx, id)
	if err != nil {
		return application.Event{}, err
	}
	return toApplicationEvent(stored), nil
}

func (a *eventRepositoryAdapter) GetEvent(ctx context.Context, id string) (application.Event, error) {
	stored, err := a.repo.GetEvent(ctx, id)
	if err != nil {
		return application.Event{}, err
	}
	return toApplicationEvent(stored), nil
}

func (a *eventRepositoryAdapter) FindEventByUserAndDate(ctx context.Context, userID string, date time.Time) (application.Event, error) {
	stored, err := a.repo.FindEventByUserAndDate(ctx, userID, date)
	if err != nil {
		return application.Event{}, err
	}
	return toApplicationEvent(stored), nil
}

func (a *eventRepositoryAdapter) CountEvents(ctx context.Context, filter application.EventRepositoryFilter) (int, error) {
	return a.repo.CountEvents(ctx, toPersistenceEventFilter(filter))
}

func (a *eventRepositoryAdapter) ListEvents(ctx context.Context, filter application.EventRepositoryFilter) ([]application.Event, error) {
	models, err := a.repo.ListEvents(ctx, toPersistenceEventFilter(filter))
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	events := make([]application.Event, 0, len(models))
	for _, model := range models {
		events = append(events, toApplicationEvent(model))
	}
	return events, nil
}

type userRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newUserRepositoryAdapter(repo persistence.UserRepository) *userRepositoryAdapter {
	return &userRepositoryAdapter{repo: repo}
}

func (a *userRepositoryAdapter) CreateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	if err := a.repo.CreateUser(ctx, toPersistenceUser(user, passwordHash)); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) ListUsers(ctx context.Context) ([]application.User, error) {
	models, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	users := make([]application.User, 0, len(models))
	for _, model := range models {
		users = append(users, toApplicationUser(model))
	}
	return users, nil
}

type userDirectoryAdapter struct {
	repo persistence.UserRepository
}

func newUserDirectoryAdapter(repo persistence.UserRepository) *userDirectoryAdapter {
	return &userDirectoryAdapter{repo: repo}
}

func (a *userDirectoryAdapter) UserExists(ctx context.Context, id string) (bool, error) {
	if _, err := a.repo.GetUser(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type credentialStoreAdapter struct {
	repo persistence.UserRepository
}

func newCredentialStoreAdapter(repo persistence.UserRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{repo: repo}
}

func (a *credentialStoreAdapter) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return application.UserCredentials{
		User:         toApplicationUser(stored),
		PasswordHash: stored.PasswordHash,
	}, nil
}

func (a *credentialStoreAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

type projectRepositoryAdapter struct {
	repo persistence.ProjectRepository
}

func newProjectRepositoryAdapter(repo persistence.ProjectRepository) *projectRepositoryAdapter {
	return &projectRepositoryAdapter{repo: repo}
}

func (a *projectRepositoryAdapter) CreateProject(ctx context.Context, project application.Project) (application.Project, error) {
	if err := a.repo.CreateProject(ctx, toPersistenceProject(project)); err != nil {
		return application.Project{}, err
	}
	stored, err := a.repo.GetProject(ctx, project.ID)
	if err != nil {
		return application.Project{}, err
	}
	return toApplicationProject(stored), nil
}

func (a *projectRepositoryAdapter) GetProject(ctx context.Context, id string) (application.Project, error) {
	stored, err := a.repo.GetProject(ctx, id)
	if err != nil {
		return application.Project{}, err
	}
	return toApplicationProject(stored), nil
}

func (a *projectRepositoryAdapter) ListProjects(ctx context.Context) ([]application.Project, error) {
	models, err := a.repo.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	projects := make([]application.Project, 0, len(models))
	for _, model := range models {
		projects = append(projects, toApplicationProject(model))
	}
	return projects, nil
}

type assignmentRepositoryAdapter struct {
	repo persistence.AssignmentRepository
}

func newAssignmentRepositoryAdapter(repo persistence.AssignmentRepository) *assignmentRepositoryAdapter {
	return &assignmentRepositoryAdapter{repo: repo}
}

func (a *assignmentRepositoryAdapter) CreateAssignment(ctx context.Context, assignment application.Assignment) (application.Assignment, error) {
	if err := a.repo.CreateAssignment(ctx, toPersistenceAssignment(assignment)); err != nil {
		return application.Assignment{}, err
	}
	stored, err := a.repo.GetAssignment(ctx, assignment.ID)
	if err != nil {
		return application.Assignment{}, err
	}
	return toApplicationAssignment(stored), nil
}

func (a *assignmentRepositoryAdapter) GetAssignment(ctx context.Context, id string) (application.Assignment, error) {
	stored, err := a.repo.GetAssignment(ctx, id)
	if err != nil {
		return application.Assignment{}, err
	}
	return toApplicationAssignment(stored), nil
}

func (a *assignmentRepositoryAdapter) ListAssignments(ctx context.Context) ([]application.Assignment, error) {
	models, err := a.repo.ListAssignments(ctx)
	if err != nil {
		return nil, err
	}
	return toApplicationAssignments(models), nil
}

func (a *assignmentRepositoryAdapter) ListAssignmentsForEmployee(ctx context.Context, employeeID string) ([]application.Assignment, error) {
	models, err := a.repo.ListAssignmentsForEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return toApplicationAssignments(models), nil
}

func (a *assignmentRepositoryAdapter) FindOverlappingAssignment(ctx context.Context, employeeID string, start, end time.Time) (application.Assignment, error) {
	stored, err := a.repo.FindOverlappingAssignment(ctx, employeeID, start, end)
	if err != nil {
		return application.Assignment{}, err
	}
	return toApplicationAssignment(stored), nil
}

type assignmentDirectoryAdapter struct {
	repo persistence.AssignmentRepository
}

func newAssignmentDirectoryAdapter(repo persistence.AssignmentRepository) *assignmentDirectoryAdapter {
	return &assignmentDirectoryAdapter{repo: repo}
}

func (a *assignmentDirectoryAdapter) FindAssignment(ctx context.Context, managerID, employeeID string, date time.Time) (application.Assignment, error) {
	stored, err := a.repo.FindAssignment(ctx, managerID, employeeID, date)
	if err != nil {
		return application.Assignment{}, err
	}
	return toApplicationAssignment(stored), nil
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return a.repo.DeleteExpiredSessions(ctx, reference)
}

func toApplicationEvent(model persistence.Event) application.Event {
	return application.Event{
		ID:        model.ID,
		UserID:    model.UserID,
		Date:      model.Date,
		Type:      application.EventType(model.Type),
		Status:    application.EventStatus(model.Status),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceEvent(event application.Event) persistence.Event {
	return persistence.Event{
		ID:        event.ID,
		UserID:    event.UserID,
		Date:      event.Date,
		Type:      string(event.Type),
		Status:    string(event.Status),
		CreatedAt: event.CreatedAt,
		UpdatedAt: event.UpdatedAt,
	}
}

func toPersistenceEventFilter(filter application.EventRepositoryFilter) persistence.EventFilter {
	return persistence.EventFilter{
		UserID:   filter.UserID,
		Type:     string(filter.Type),
		Status:   string(filter.Status),
		DateFrom: filter.DateFrom,
		DateTo:   filter.DateTo,
	}
}

func toApplicationUser(model persistence.User) application.User {
	return application.User{
		ID:          model.ID,
		Email:       model.Email,
		DisplayName: model.DisplayName,
		Role:        application.Role(model.Role),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceUser(user application.User, passwordHash string) persistence.User {
	return persistence.User{
		ID:           user.ID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		PasswordHash: passwordHash,
		Role:         string(user.Role),
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func toApplicationProject(model persistence.Project) application.Project {
	return application.Project{
		ID:        model.ID,
		Name:      model.Name,
		ManagerID: model.ManagerID,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceProject(project application.Project) persistence.Project {
	return persistence.Project{
		ID:        project.ID,
		Name:      project.Name,
		ManagerID: project.ManagerID,
		CreatedAt: project.CreatedAt,
		UpdatedAt: project.UpdatedAt,
	}
}

func toApplicationAssignment(model persistence.Assignment) application.Assignment {
	return application.Assignment{
		ID:         model.ID,
		ProjectID:  model.ProjectID,
		ManagerID:  model.ManagerID,
		EmployeeID: model.EmployeeID,
		StartDate:  model.StartDate,
		EndDate:    model.EndDate,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

func toApplicationAssignments(models []persistence.Assignment) []application.Assignment {
	if len(models) == 0 {
		return nil
	}
	assignments := make([]application.Assignment, 0, len(models))
	for _, model := range models {
		assignments = append(assignments, toApplicationAssignment(model))
	}
	return assignments
}

func toPersistenceAssignment(assignment application.Assignment) persistence.Assignment {
	return persistence.Assignment{
		ID:         assignment.ID,
		ProjectID:  assignment.ProjectID,
		ManagerID:  assignment.ManagerID,
		EmployeeID: assignment.EmployeeID,
		StartDate:  assignment.StartDate,
		EndDate:    assignment.EndDate,
		CreatedAt:  assignment.CreatedAt,
		UpdatedAt:  assignment.UpdatedAt,
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:        model.ID,
		UserID:    model.UserID,
		Token:     model.Token,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		RevokedAt: cloneTime(model.RevokedAt),
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: cloneTime(session.RevokedAt),
	}
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
