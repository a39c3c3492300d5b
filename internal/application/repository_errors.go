package application

import (
	"errors"

	"github.com/example/club-portal/internal/persistence"
)

// mapRepoError translates persistence sentinels into application errors.
// Constraint violations become a ValidationError on field.
func mapRepoError(err error, field, message string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrConstraintViolation):
		vErr := &ValidationError{}
		vErr.add(field, message)
		return vErr
	}
	return err
}

func mapUserRepoError(err error) error {
	return mapRepoError(err, "email", "email is invalid")
}

func mapPlayerRepoError(err error) error {
	return mapRepoError(err, "id", "id is invalid")
}

func mapTrainingRepoError(err error) error {
	return mapRepoError(err, "team", "team is invalid")
}

func mapAuthSessionRepoError(err error) error {
	return mapRepoError(err, "user_id", "user_id is invalid")
}
