package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// CredentialStore exposes user credential lookup operations required by the auth service.
type CredentialStore interface {
	GetUserCredentialsByEmail(ctx context.Context, email string) (UserCredentials, error)
	GetUser(ctx context.Context, id string) (User, error)
}

// AuthSessionRepository captures the persistence interactions for issued logins.
type AuthSessionRepository interface {
	CreateAuthSession(ctx context.Context, session AuthSession) (AuthSession, error)
	GetAuthSession(ctx context.Context, id string) (AuthSession, error)
	RevokeAuthSession(ctx context.Context, id string, revokedAt time.Time) (AuthSession, error)
	DeleteExpiredAuthSessions(ctx context.Context, reference time.Time) error
}

// TokenClaims are the JWT claims carried by a session token. The registered
// ID is the persisted AuthSession id so logouts can revoke it.
type TokenClaims struct {
	jwt.RegisteredClaims
	Admin bool `json:"adm,omitempty"`
}

// AuthService coordinates login, token validation and logout.
type AuthService struct {
	credentials    CredentialStore
	sessions       AuthSessionRepository
	verifyPassword PasswordVerifier
	idGenerator    func() string
	now            func() time.Time
	sessionTTL     time.Duration
	secret         []byte
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(credentials CredentialStore, sessions AuthSessionRepository, verify PasswordVerifier, idGenerator func() string, now func() time.Time, sessionTTL time.Duration, secret []byte) *AuthService {
	return NewAuthServiceWithLogger(credentials, sessions, verify, idGenerator, now, sessionTTL, secret, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(credentials CredentialStore, sessions AuthSessionRepository, verify PasswordVerifier, idGenerator func() string, now func() time.Time, sessionTTL time.Duration, secret []byte, logger *slog.Logger) *AuthService {
	if verify == nil {
		verify = VerifyPassword
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &AuthService{
		credentials:    credentials,
		sessions:       sessions,
		verifyPassword: verify,
		idGenerator:    idGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		secret:         append([]byte(nil), secret...),
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Authenticate validates credentials, persists a login and returns a signed token for it.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (result AuthenticateResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.credentials == nil || s.sessions == nil {
		err = fmt.Errorf("auth repositories not configured")
		return
	}

	params.Email = strings.TrimSpace(strings.ToLower(params.Email))
	logger := s.loggerWith(ctx, "Authenticate", "email", params.Email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"user_id", result.User.ID,
			"session_id", result.Session.ID,
		).InfoContext(ctx, "authentication succeeded")
	}()

	if vErr := validateStruct(params); vErr.HasErrors() {
		err = ErrInvalidCredentials
		return
	}

	var creds UserCredentials
	creds, err = s.credentials.GetUserCredentialsByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(mapUserRepoError(err), ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}

	if err = s.verifyPassword(creds.PasswordHash, params.Password); err != nil {
		err = ErrInvalidCredentials
		return
	}

	now := s.now()
	if err = s.sessions.DeleteExpiredAuthSessions(ctx, now); err != nil {
		err = fmt.Errorf("prune expired sessions: %w", err)
		return
	}

	session := AuthSession{
		ID:        s.idGenerator(),
		UserID:    creds.User.ID,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	session, err = s.sessions.CreateAuthSession(ctx, session)
	if err != nil {
		err = mapAuthSessionRepoError(err)
		return
	}

	var token string
	token, err = s.signToken(session, creds.User)
	if err != nil {
		return
	}

	result = AuthenticateResult{User: creds.User, Session: session, Token: token}
	return
}

func (s *AuthService) signToken(session AuthSession, user User) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("session secret not configured")
	}
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
		Admin: user.IsAdmin,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// parseToken checks the signature and returns the claims. Expiry is checked
// against the injected clock by the caller, not by the JWT library.
func (s *AuthService) parseToken(token string) (TokenClaims, error) {
	var claims TokenClaims
	parser := jwt.Parser{SkipClaimsValidation: true}
	_, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || claims.ID == "" || claims.Subject == "" {
		return TokenClaims{}, ErrInvalidCredentials
	}
	return claims, nil
}

// ValidateSession verifies that token is correctly signed and refers to an
// active login, and returns the principal it authenticates. The admin flag is
// read from the current account, not from the token.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.sessions == nil || s.credentials == nil {
		err = fmt.Errorf("auth repositories not configured")
		return
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "ValidateSession", "token_provided", trimmed != "")
	defer func() {
		if err != nil {
			logger.DebugContext(ctx, "session validation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("principal_id", principal.UserID).DebugContext(ctx, "session validated")
	}()

	if trimmed == "" {
		err = ErrInvalidCredentials
		return
	}

	var claims TokenClaims
	claims, err = s.parseToken(trimmed)
	if err != nil {
		return
	}

	var session AuthSession
	session, err = s.sessions.GetAuthSession(ctx, claims.ID)
	if err != nil {
		if errors.Is(mapAuthSessionRepoError(err), ErrNotFound) {
			err = ErrUnauthorized
		}
		return
	}
	if session.UserID != claims.Subject {
		err = ErrInvalidCredentials
		return
	}

	now := s.now()
	if session.RevokedAt != nil && !session.RevokedAt.IsZero() {
		err = ErrSessionRevoked
		return
	}
	if !session.ExpiresAt.After(now) {
		err = ErrSessionExpired
		return
	}

	var user User
	user, err = s.credentials.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(mapUserRepoError(err), ErrNotFound) {
			err = ErrUnauthorized
		}
		return
	}

	principal = Principal{UserID: user.ID, IsAdmin: user.IsAdmin}
	return
}

// RevokeSession invalidates the login behind token.
func (s *AuthService) RevokeSession(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("session repository not configured")
	}

	logger := s.loggerWith(ctx, "RevokeSession")

	claims, err := s.parseToken(strings.TrimSpace(token))
	if err != nil {
		logger.ErrorContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger = logger.With("session_id", claims.ID)

	if _, err := s.sessions.RevokeAuthSession(ctx, claims.ID, s.now()); err != nil {
		err = mapAuthSessionRepoError(err)
		if errors.Is(err, ErrNotFound) {
			err = ErrInvalidCredentials
		}
		logger.ErrorContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "session revoked")
	return nil
}
