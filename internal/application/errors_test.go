package application

import (
	"errors"
	"testing"

	"github.com/example/club-portal/internal/attendance"
)

func TestValidationError(t *testing.T) {
	t.Parallel()

	var nilErr *ValidationError
	if nilErr.Error() != "" || nilErr.HasErrors() {
		t.Fatalf("expected nil validation error to be empty")
	}

	vErr := &ValidationError{}
	if vErr.HasErrors() {
		t.Fatalf("expected HasErrors to report false for empty error")
	}

	vErr.add("email", "email is required")
	vErr.add("email", "email is invalid")
	if got := vErr.FieldErrors["email"]; got != "email is required" {
		t.Fatalf("expected first message to win, got %q", got)
	}

	vErr.merge(&ValidationError{FieldErrors: map[string]string{"team": "team is invalid"}})
	vErr.merge(nil)
	if len(vErr.FieldErrors) != 2 || vErr.Error() != "validation failed" {
		t.Fatalf("unexpected merged error %#v", vErr.FieldErrors)
	}
}

func TestInvalidTransitionWrapsCoreError(t *testing.T) {
	t.Parallel()

	if !errors.Is(ErrInvalidTransition, attendance.ErrInvalidTransition) {
		t.Fatalf("expected application error to wrap the core sentinel")
	}
}
