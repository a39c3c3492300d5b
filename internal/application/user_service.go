package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// UserRepository captures the persistence operations needed by the user service.
type UserRepository interface {
	CreateUser(ctx context.Context, credentials UserCredentials) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// UserService manages club accounts. Only administrators may call it, except
// for EnsureBootstrapAdmin which runs at start-up.
type UserService struct {
	users       UserRepository
	hash        PasswordHasher
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewUserService wires dependencies for the user service.
func NewUserService(users UserRepository, hash PasswordHasher, idGenerator func() string, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(users, hash, idGenerator, now, nil)
}

// NewUserServiceWithLogger wires dependencies for the user service with a specified logger.
func NewUserServiceWithLogger(users UserRepository, hash PasswordHasher, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if hash == nil {
		hash = HashPassword
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{users: users, hash: hash, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// CreateUser validates input and persists a new account for administrators.
func (s *UserService) CreateUser(ctx context.Context, params CreateUserParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateUser", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	user, err = s.create(ctx, params.Input)
	return
}

// EnsureBootstrapAdmin creates an administrator with the given credentials
// unless an account with that email already exists. It reports whether an
// account was created.
func (s *UserService) EnsureBootstrapAdmin(ctx context.Context, email, password string) (created bool, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	normalized := strings.ToLower(strings.TrimSpace(email))
	logger := s.loggerWith(ctx, "EnsureBootstrapAdmin", "email", normalized)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to bootstrap administrator", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "administrator bootstrap checked", "created", created)
	}()

	_, err = s.users.GetUserByEmail(ctx, normalized)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(mapUserRepoError(err), ErrNotFound):
		return false, err
	}
	err = nil

	_, err = s.create(ctx, UserInput{
		Email:       normalized,
		DisplayName: "Administración",
		Password:    password,
		IsAdmin:     true,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *UserService) create(ctx context.Context, input UserInput) (User, error) {
	normalized := normalizeUserInput(input)
	if vErr := validateStruct(normalized); vErr.HasErrors() {
		return User{}, vErr
	}

	hash, err := s.hash(normalized.Password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	creds := UserCredentials{
		User: User{
			ID:          s.idGenerator(),
			Email:       normalized.Email,
			DisplayName: normalized.DisplayName,
			IsAdmin:     normalized.IsAdmin,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		PasswordHash: hash,
	}

	persisted, err := s.users.CreateUser(ctx, creds)
	if err != nil {
		return User{}, mapUserRepoError(err)
	}
	return persisted, nil
}

// DeleteUser removes an account when requested by an administrator.
// Administrators cannot delete their own account.
func (s *UserService) DeleteUser(ctx context.Context, principal Principal, userID string) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteUser",
		"principal_id", principal.UserID,
		"user_id", userID,
	)

	if principal.UserID == userID {
		vErr := &ValidationError{}
		vErr.add("id", "id is invalid")
		logger.ErrorContext(ctx, "refused to delete own account", "error_kind", ErrorKind(vErr))
		return vErr
	}

	if err := s.users.DeleteUser(ctx, userID); err != nil {
		err = mapUserRepoError(err)
		logger.ErrorContext(ctx, "failed to delete user", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "user deleted")
	return nil
}

// ListUsers returns all accounts ordered by email for administrators.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) ([]User, error) {
	if s == nil {
		return nil, fmt.Errorf("UserService is nil")
	}
	if !principal.IsAdmin {
		return nil, ErrUnauthorized
	}
	if s.users == nil {
		return nil, nil
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, mapUserRepoError(err)
	}

	out := make([]User, len(users))
	copy(out, users)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Email == out[j].Email {
			return out[i].ID < out[j].ID
		}
		return out[i].Email < out[j].Email
	})
	return out, nil
}

func normalizeUserInput(input UserInput) UserInput {
	return UserInput{
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		DisplayName: strings.TrimSpace(input.DisplayName),
		Password:    input.Password,
		IsAdmin:     input.IsAdmin,
	}
}
