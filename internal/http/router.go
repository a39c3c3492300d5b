package http

import (
	"context"
	"log/slog"
	"net/http"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Players   *PlayerHandler
	Trainings *TrainingHandler
	Sessions  SessionValidator
	Health    Pinger
	Logger    *slog.Logger
	// Middleware wraps the whole mux, outermost first.
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	logger := defaultLogger(cfg.Logger)

	protected := func(h http.HandlerFunc) http.Handler {
		if cfg.Sessions == nil {
			return h
		}
		return RequireSession(cfg.Sessions, logger)(h)
	}

	mux.HandleFunc("GET /healthz", healthHandler(cfg.Health, logger))

	if cfg.Auth != nil {
		mux.HandleFunc("POST /sessions", cfg.Auth.CreateSession)
		mux.HandleFunc("DELETE /sessions/current", cfg.Auth.DeleteCurrentSession)
	}

	if cfg.Trainings != nil {
		mux.Handle("GET /trainings", protected(cfg.Trainings.List))
		mux.Handle("POST /trainings", protected(cfg.Trainings.Create))
		mux.Handle("GET /trainings/stream", protected(cfg.Trainings.Stream))
		mux.Handle("GET /trainings/{id}", protected(cfg.Trainings.Get))
		mux.Handle("PUT /trainings/{id}", protected(cfg.Trainings.Update))
		mux.Handle("DELETE /trainings/{id}", protected(cfg.Trainings.Delete))
		mux.Handle("POST /trainings/{id}/attendance", protected(cfg.Trainings.ChangeAttendance))
	}

	if cfg.Players != nil {
		mux.Handle("GET /players", protected(cfg.Players.List))
		mux.Handle("POST /players", protected(cfg.Players.Create))
		mux.Handle("GET /players/{id}", protected(cfg.Players.Get))
		mux.Handle("PUT /players/{id}", protected(cfg.Players.Update))
		mux.Handle("DELETE /players/{id}", protected(cfg.Players.Delete))
		mux.Handle("GET /players/{id}/attendance-summary", protected(cfg.Players.Summary))
	}

	if cfg.Users != nil {
		mux.Handle("GET /users", protected(cfg.Users.List))
		mux.Handle("POST /users", protected(cfg.Users.Create))
		mux.Handle("DELETE /users/{id}", protected(cfg.Users.Delete))
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}

func healthHandler(store Pinger, logger *slog.Logger) http.HandlerFunc {
	responder := newResponder(logger)
	return func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			if err := store.Ping(r.Context()); err != nil {
				handlerLogger(r.Context(), logger, "Health", "Ping").ErrorContext(r.Context(), "storage ping failed", "error", err)
				responder.writeJSON(r.Context(), w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
				return
			}
		}
		responder.writeJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ok"})
	}
}

type healthResponse struct {
	Status string `json:"status"`
}
