package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// UserRepository captures the persistence interactions needed by the service.
type UserRepository interface {
	CreateUser(ctx context.Context, user User, passwordHash string) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// PasswordHasher derives a storable hash from a plaintext password.
type PasswordHasher func(password string) (string, error)

// UserService manages the employee directory. Password hashes never leave the
// persistence boundary; every returned User carries directory fields only.
type UserService struct {
	users        UserRepository
	hashPassword PasswordHasher
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewUserService wires dependencies for directory operations.
func NewUserService(users UserRepository, hash PasswordHasher, idGenerator func() string, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(users, hash, idGenerator, now, nil)
}

// NewUserServiceWithLogger constructs a UserService with a specified logger.
func NewUserServiceWithLogger(users UserRepository, hash PasswordHasher, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if hash == nil {
		hash = func(password string) (string, error) {
			return CreatePasswordHash(password, DefaultArgon2idParams)
		}
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users:        users,
		hashPassword: hash,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// CreateUser registers a new employee account. Sign-up is open; the supplied
// role defaults to Employee when absent.
func (s *UserService) CreateUser(ctx context.Context, input UserInput) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	email := strings.TrimSpace(strings.ToLower(input.Email))

	logger := s.loggerWith(ctx, "CreateUser", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "user creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user created")
	}()

	role := input.Role
	if role == "" {
		role = RoleEmployee
	}

	vErr := &ValidationError{}
	if email == "" {
		vErr.add("email", "email is required")
	} else if !strings.Contains(email, "@") {
		vErr.add("email", "email is invalid")
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		vErr.add("display_name", "display name is required")
	}
	if len(input.Password) < 8 {
		vErr.add("password", "password must be at least 8 characters")
	}
	if !role.Valid() {
		vErr.add("role", "role must be Employee, ProjectManager or Admin")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	hash, hashErr := s.hashPassword(input.Password)
	if hashErr != nil {
		err = hashErr
		return
	}

	createdAt := s.now()
	candidate := User{
		ID:          s.idGenerator(),
		Email:       email,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Role:        role,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	user, err = s.users.CreateUser(ctx, candidate, hash)
	if err != nil {
		err = mapUserRepoError(err)
		user = User{}
		return
	}
	return user, nil
}

// GetUser retrieves a directory entry by identifier.
func (s *UserService) GetUser(ctx context.Context, id string) (User, error) {
	if s == nil || s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return User{}, mapUserRepoError(err)
	}
	return user, nil
}

// ListUsers returns every directory entry.
func (s *UserService) ListUsers(ctx context.Context) ([]User, error) {
	if s == nil || s.users == nil {
		return nil, fmt.Errorf("user repository not configured")
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return users, nil
}

func mapUserRepoError(err error) error {
	mapped := mapEventRepoError(err)
	if mapped == ErrConflict {
		vErr := &ValidationError{}
		vErr.add("email", "email already registered")
		return vErr
	}
	return mapped
}
