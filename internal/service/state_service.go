package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/repository"
)

// StateService manages the workflow states tasks move through. "New" and
// "Completed" are relied upon by task creation and the due-task sweep and
// cannot be renamed or deleted.
type StateService struct {
	repo StateStore
}

func NewStateService(repo StateStore) *StateService {
	return &StateService{repo: repo}
}

func (s *StateService) List(ctx context.Context) ([]*domain.State, error) {
	return s.repo.List(ctx)
}

func (s *StateService) Get(ctx context.Context, id int64) (*domain.State, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound("state", id, err)
	}
	return st, nil
}

func (s *StateService) Create(ctx context.Context, name string) (*domain.State, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("state name is required")
	}
	st := &domain.State{Name: name}
	if err := s.repo.Create(ctx, st); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("state %q already exists", name)
		}
		return nil, err
	}
	return st, nil
}

func (s *StateService) Rename(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("state name is required")
	}
	st, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if isBuiltinState(st.Name) {
		return invalid("state %q cannot be renamed", st.Name)
	}
	err = s.repo.Rename(ctx, id, name)
	if errors.Is(err, repository.ErrDuplicate) {
		return invalid("state %q already exists", name)
	}
	return notFound("state", id, err)
}

func (s *StateService) Delete(ctx context.Context, id int64) error {
	st, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if isBuiltinState(st.Name) {
		return invalid("state %q cannot be deleted", st.Name)
	}
	err = s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrInUse) {
		return fmt.Errorf("state %q: %w", st.Name, ErrStateInUse)
	}
	return notFound("state", id, err)
}

func isBuiltinState(name string) bool {
	return name == domain.StateNew || name == domain.StateCompleted
}
