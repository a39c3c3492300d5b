package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/club-portal/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

func (f *ServiceFactory) ids(override func() string) func() string {
	if override != nil {
		return override
	}
	return f.IDGenerator.NextFunc()
}

func (f *ServiceFactory) now(override func() time.Time) func() time.Time {
	if override != nil {
		return override
	}
	return f.Clock.NowFunc()
}

// UserServiceDeps captures dependencies for constructing a user service.
type UserServiceDeps struct {
	Users       application.UserRepository
	Hash        application.PasswordHasher
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewUserService builds a user service using the supplied dependencies.
func (f *ServiceFactory) NewUserService(deps UserServiceDeps) *application.UserService {
	return application.NewUserServiceWithLogger(
		deps.Users,
		deps.Hash,
		f.ids(deps.IDGenerator),
		f.now(deps.Now),
		deps.Logger,
	)
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	Credentials    application.CredentialStore
	Sessions       application.AuthSessionRepository
	PasswordVerify application.PasswordVerifier
	IDGenerator    func() string
	Now            func() time.Time
	SessionTTL     time.Duration
	Secret         []byte
	Logger         *slog.Logger
}

// NewAuthService builds an auth service using the supplied dependencies. A
// fixed test secret is used when none is given.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	secret := deps.Secret
	if len(secret) == 0 {
		secret = []byte("testfixtures-secret")
	}
	return application.NewAuthServiceWithLogger(
		deps.Credentials,
		deps.Sessions,
		deps.PasswordVerify,
		f.ids(deps.IDGenerator),
		f.now(deps.Now),
		deps.SessionTTL,
		secret,
		deps.Logger,
	)
}

// RosterServiceDeps captures dependencies for constructing a roster service.
type RosterServiceDeps struct {
	Players  application.PlayerRepository
	Users    application.UserLookup
	CacheTTL time.Duration
	Now      func() time.Time
	Logger   *slog.Logger
}

// NewRosterService builds a roster service using the supplied dependencies.
func (f *ServiceFactory) NewRosterService(deps RosterServiceDeps) *application.RosterService {
	return application.NewRosterServiceWithLogger(
		deps.Players,
		deps.Users,
		deps.CacheTTL,
		f.now(deps.Now),
		deps.Logger,
	)
}

// TrainingServiceDeps captures dependencies for constructing a training service.
type TrainingServiceDeps struct {
	Trainings   application.TrainingRepository
	Writer      application.AttendanceWriter
	Roster      application.RosterReader
	Players     application.PlayerLookup
	Hub         application.SnapshotHub
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewTrainingService builds a training service using the supplied dependencies.
func (f *ServiceFactory) NewTrainingService(deps TrainingServiceDeps) *application.TrainingService {
	return application.NewTrainingServiceWithLogger(
		deps.Trainings,
		deps.Writer,
		deps.Roster,
		deps.Players,
		deps.Hub,
		f.ids(deps.IDGenerator),
		f.now(deps.Now),
		deps.Logger,
	)
}
