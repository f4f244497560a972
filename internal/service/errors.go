package service

import (
	"errors"
	"fmt"

	"todo_webapp/internal/repository"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrNullEntity         = errors.New("entity must not be nil")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUserIsToDoOwner    = errors.New("user is the owner of the todo")
	ErrForbidden          = errors.New("forbidden")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStateInUse         = errors.New("state is used by tasks")
)

// notFound converts a store miss into ErrNotFound naming the entity
func notFound(kind string, id any, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s %v: %w", kind, id, ErrNotFound)
	}
	return err
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

var errNotOwned = fmt.Errorf("owned by another user: %w", repository.ErrNotFound)
