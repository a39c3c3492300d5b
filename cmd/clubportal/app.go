package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/example/club-portal/internal/application"
	"github.com/example/club-portal/internal/config"
	httptransport "github.com/example/club-portal/internal/http"
	"github.com/example/club-portal/internal/live"
	"github.com/example/club-portal/internal/persistence"
	"github.com/example/club-portal/internal/persistence/memory"
	"github.com/example/club-portal/internal/persistence/sqlite"
	"github.com/example/club-portal/internal/persistence/sqlite/migration"
)

// storage is what the process needs from a store backend.
type storage interface {
	persistence.UserRepository
	persistence.PlayerRepository
	persistence.TrainingRepository
	persistence.AuthSessionRepository
	Ping(ctx context.Context) error
	Close() error
}

// app is the wired process: store, live hub and the HTTP handler.
type app struct {
	handler http.Handler
	users   *application.UserService
	store   storage
	hub     *live.Hub[application.TeamSnapshot]
	logger  *slog.Logger
}

func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage, error) {
	switch cfg.Store {
	case config.StoreMemory:
		logger.WarnContext(ctx, "using in-memory store; data is lost on restart")
		return memory.New(), nil
	default:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data directory: %w", err)
			}
		}
		return sqlite.Open(ctx, migration.DefaultSQLiteConfig(cfg.SQLitePath), logger)
	}
}

// newApp opens the configured store and wires every service and handler.
// now is the club wall clock.
func newApp(ctx context.Context, cfg config.Config, now func() time.Time, logger *slog.Logger) (*app, error) {
	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	idGenerator := uuid.NewString
	hub := live.NewHub[application.TeamSnapshot]()

	userRepo := newUserRepositoryAdapter(store)
	playerRepo := newPlayerRepositoryAdapter(store)
	trainingRepo := newTrainingRepositoryAdapter(store)

	userService := application.NewUserServiceWithLogger(userRepo, application.HashPassword, idGenerator, now, logger)
	authService := application.NewAuthServiceWithLogger(
		newCredentialStoreAdapter(store),
		newAuthSessionRepositoryAdapter(store),
		application.VerifyPassword,
		idGenerator,
		now,
		cfg.SessionTTL,
		[]byte(cfg.SessionSecret),
		logger,
	)
	rosterService := application.NewRosterServiceWithLogger(playerRepo, userRepo, cfg.RosterCacheTTL, now, logger)
	trainingService := application.NewTrainingServiceWithLogger(trainingRepo, trainingRepo, rosterService, playerRepo, hub, idGenerator, now, logger)
	rosterService.SetChangeListener(trainingService)

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:      httptransport.NewAuthHandler(authService, cfg.CookieSecure, logger),
		Users:     httptransport.NewUserHandler(userService, logger),
		Players:   httptransport.NewPlayerHandler(rosterService, trainingService, logger),
		Trainings: httptransport.NewTrainingHandler(trainingService, logger),
		Sessions:  authService,
		Health:    store,
		Logger:    logger,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	return &app{
		handler: handler,
		users:   userService,
		store:   store,
		hub:     hub,
		logger:  logger,
	}, nil
}

// bootstrap creates the initial administrator when configured to.
func (a *app) bootstrap(ctx context.Context, cfg config.Config) error {
	if !cfg.BootstrapAdmin() {
		return nil
	}
	if _, err := a.users.EnsureBootstrapAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("bootstrap administrator: %w", err)
	}
	return nil
}

// Close ends live streams and releases the store.
func (a *app) Close() error {
	a.hub.Close()
	return a.store.Close()
}
