package application

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/example/club-portal/internal/logging"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestServiceLoggerPrefersContextLogger(t *testing.T) {
	t.Parallel()

	var base, scoped bytes.Buffer
	baseLogger := slog.New(slog.NewTextHandler(&base, nil))
	ctx := logging.ContextWithLogger(context.Background(), slog.New(slog.NewTextHandler(&scoped, nil)).With("request_id", "req-1"))

	serviceLogger(ctx, baseLogger, "TrainingService", "ChangeAttendance", "training_id", "t-1").Info("done")

	if base.Len() != 0 {
		t.Fatalf("expected base logger to stay silent, got %q", base.String())
	}
	for _, want := range []string{"request_id=req-1", "service=TrainingService", "operation=ChangeAttendance", "training_id=t-1"} {
		if !strings.Contains(scoped.String(), want) {
			t.Fatalf("expected %q in %q", want, scoped.String())
		}
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: ""},
		{err: ErrUnauthorized, want: "unauthorized"},
		{err: fmt.Errorf("wrap: %w", ErrNotFound), want: "not_found"},
		{err: ErrAlreadyExists, want: "already_exists"},
		{err: ErrInvalidCredentials, want: "invalid_credentials"},
		{err: ErrSessionExpired, want: "session_expired"},
		{err: ErrSessionRevoked, want: "session_revoked"},
		{err: ErrAttendanceClosed, want: "attendance_closed"},
		{err: ErrInvalidTransition, want: "invalid_transition"},
		{err: &ValidationError{FieldErrors: map[string]string{"title": "title is required"}}, want: "validation"},
		{err: io.ErrUnexpectedEOF, want: "unexpected"},
	}

	for _, tc := range tests {
		if got := ErrorKind(tc.err); got != tc.want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
