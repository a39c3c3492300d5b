package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/club-portal/internal/application"
)

type fakeSessionValidator struct {
	principal application.Principal
	err       error
	tokens    []string
}

func (f *fakeSessionValidator) ValidateSession(ctx context.Context, token string) (application.Principal, error) {
	f.tokens = append(f.tokens, token)
	return f.principal, f.err
}

func TestRequireSession(t *testing.T) {
	t.Parallel()

	t.Run("rejects requests without valid session tokens", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name         string
			cookie       *http.Cookie
			header       string
			err          error
			expectedCode int
			errorCode    string
		}{
			{
				name:         "missing credentials",
				expectedCode: http.StatusUnauthorized,
				errorCode:    "AUTH_REQUIRED",
			},
			{
				name:         "non bearer header",
				header:       "Basic abc",
				expectedCode: http.StatusUnauthorized,
				errorCode:    "AUTH_REQUIRED",
			},
			{
				name:         "expired session",
				header:       "Bearer expired",
				err:          application.ErrSessionExpired,
				expectedCode: http.StatusUnauthorized,
				errorCode:    "AUTH_SESSION_EXPIRED",
			},
			{
				name:         "revoked session",
				cookie:       &http.Cookie{Name: sessionCookieName, Value: "revoked"},
				err:          application.ErrSessionRevoked,
				expectedCode: http.StatusUnauthorized,
				errorCode:    "AUTH_SESSION_INVALID",
			},
			{
				name:         "tampered token",
				header:       "Bearer tampered",
				err:          application.ErrInvalidCredentials,
				expectedCode: http.StatusUnauthorized,
				errorCode:    "AUTH_SESSION_INVALID",
			},
			{
				name:         "store failure",
				header:       "Bearer valid",
				err:          errors.New("database is locked"),
				expectedCode: http.StatusInternalServerError,
			},
		}

		for _, tc := range tests {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				req := httptest.NewRequest(http.MethodGet, "/protected", nil)
				if tc.cookie != nil {
					req.AddCookie(tc.cookie)
				}
				if tc.header != "" {
					req.Header.Set("Authorization", tc.header)
				}
				recorder := httptest.NewRecorder()

				validator := &fakeSessionValidator{err: tc.err}
				handler := RequireSession(validator, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					t.Fatal("next handler should not be called when authentication fails")
				}))
				handler.ServeHTTP(recorder, req)

				if recorder.Code != tc.expectedCode {
					t.Fatalf("expected status %d, got %d", tc.expectedCode, recorder.Code)
				}
				var body errorResponse
				if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
					t.Fatalf("failed to decode body: %v", err)
				}
				if body.ErrorCode != tc.errorCode {
					t.Fatalf("expected error code %q, got %q", tc.errorCode, body.ErrorCode)
				}
				if body.Message == "" {
					t.Fatal("expected a user facing message")
				}
			})
		}
	})

	t.Run("attaches authenticated principal to request context", func(t *testing.T) {
		t.Parallel()

		expected := application.Principal{UserID: "player-a", IsAdmin: true}
		validator := &fakeSessionValidator{principal: expected}

		for _, source := range []string{"header", "cookie"} {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if source == "header" {
				req.Header.Set("Authorization", "Bearer token-"+source)
			} else {
				req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "token-" + source})
			}
			recorder := httptest.NewRecorder()

			var captured application.Principal
			handler := RequireSession(validator, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				p, ok := PrincipalFromContext(r.Context())
				if !ok {
					t.Fatal("expected principal in request context")
				}
				captured = p
				w.WriteHeader(http.StatusOK)
			}))
			handler.ServeHTTP(recorder, req)

			if recorder.Code != http.StatusOK {
				t.Fatalf("%s: expected 200, got %d", source, recorder.Code)
			}
			if captured != expected {
				t.Fatalf("%s: expected principal %+v, got %+v", source, expected, captured)
			}
		}
		if len(validator.tokens) != 2 || validator.tokens[0] != "token-header" || validator.tokens[1] != "token-cookie" {
			t.Fatalf("unexpected validated tokens: %v", validator.tokens)
		}
	})
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if LoggerFromContext(r.Context()) == nil {
			t.Fatal("expected request logger in context")
		}
		if _, ok := w.(http.Flusher); !ok {
			t.Fatal("expected the wrapped writer to keep flushing")
		}
		w.WriteHeader(http.StatusTeapot)
	}))

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected one completion line per request, got %d: %s", len(lines), buf.String())
	}
	for i, line := range lines {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		if entry["request_id"] != float64(i+1) {
			t.Fatalf("expected request_id %d, got %v", i+1, entry["request_id"])
		}
		if entry["status"] != float64(http.StatusTeapot) {
			t.Fatalf("expected status 418 in log, got %v", entry["status"])
		}
		if entry["path"] != "/healthz" {
			t.Fatalf("expected path in log, got %v", entry["path"])
		}
	}
}
