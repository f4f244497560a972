package service

import (
	"context"
	"fmt"
	"strings"

	"todo_webapp/internal/domain"
)

// ToDoService manages todo lists and their collaborators. Collaborations
// live only in the todo_collaborators relation, so each mutation is one write.
type ToDoService struct {
	todos ToDoStore
	users UserStore
	tasks TaskStore
}

func NewToDoService(todos ToDoStore, users UserStore, tasks TaskStore) *ToDoService {
	return &ToDoService{todos: todos, users: users, tasks: tasks}
}

func (s *ToDoService) Create(ctx context.Context, ownerID int64, title, description string) (*domain.ToDo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, invalid("title is required")
	}
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		return nil, notFound("user", ownerID, err)
	}

	t := &domain.ToDo{
		OwnerID:     ownerID,
		Title:       title,
		Description: strings.TrimSpace(description),
	}
	if err := s.todos.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *ToDoService) Get(ctx context.Context, id int64) (*domain.ToDo, error) {
	t, err := s.todos.GetByID(ctx, id)
	if err != nil {
		return nil, notFound("todo", id, err)
	}
	return t, nil
}

func (s *ToDoService) ListOwned(ctx context.Context, userID int64) ([]*domain.ToDo, error) {
	return s.todos.ListByOwner(ctx, userID)
}

func (s *ToDoService) ListCollaborating(ctx context.Context, userID int64) ([]*domain.ToDo, error) {
	return s.todos.ListByCollaborator(ctx, userID)
}

func (s *ToDoService) Update(ctx context.Context, t *domain.ToDo) error {
	if t == nil {
		return ErrNullEntity
	}
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return invalid("title is required")
	}
	return notFound("todo", t.ID, s.todos.Update(ctx, t))
}

// Delete removes the todo and, by cascade, its tasks. Only the owner or an
// admin may delete.
func (s *ToDoService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	if actor == nil {
		return ErrNullEntity
	}
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanManage(t, actor) {
		return ErrForbidden
	}
	return notFound("todo", id, s.todos.Delete(ctx, id))
}

// CanManage reports whether user may edit the todo itself or its sharing
func CanManage(t *domain.ToDo, user *domain.User) bool {
	return t != nil && user != nil && (t.IsOwner(user.ID) || user.IsAdmin())
}

// CanAccess reports whether user may see and work on the todo's tasks
func (s *ToDoService) CanAccess(ctx context.Context, t *domain.ToDo, user *domain.User) (bool, error) {
	if t == nil || user == nil {
		return false, ErrNullEntity
	}
	if CanManage(t, user) {
		return true, nil
	}
	return s.todos.IsCollaborator(ctx, t.ID, user.ID)
}

// IsMember reports whether userID is the owner or a collaborator
func (s *ToDoService) IsMember(ctx context.Context, t *domain.ToDo, userID int64) (bool, error) {
	if t == nil {
		return false, ErrNullEntity
	}
	if t.IsOwner(userID) {
		return true, nil
	}
	return s.todos.IsCollaborator(ctx, t.ID, userID)
}

func (s *ToDoService) Collaborators(ctx context.Context, todoID int64) ([]*domain.User, error) {
	if _, err := s.Get(ctx, todoID); err != nil {
		return nil, err
	}
	return s.todos.ListCollaborators(ctx, todoID)
}

// AddCollaborator shares the todo with userID. The owner can never be a
// collaborator of their own todo. Adding an existing collaborator is a no-op
// and reports added == false.
func (s *ToDoService) AddCollaborator(ctx context.Context, todoID, userID int64) (added bool, err error) {
	if _, err := s.loadPair(ctx, todoID, userID); err != nil {
		return false, err
	}
	return s.todos.AddCollaborator(ctx, todoID, userID)
}

// RemoveCollaborator stops sharing the todo with userID and drops the user's
// task assignments in it. Removing a non-collaborator succeeds.
func (s *ToDoService) RemoveCollaborator(ctx context.Context, todoID, userID int64) error {
	if _, err := s.loadPair(ctx, todoID, userID); err != nil {
		return err
	}
	if err := s.todos.RemoveCollaborator(ctx, todoID, userID); err != nil {
		return err
	}
	if s.tasks == nil {
		return nil
	}
	return s.tasks.UnassignFromToDo(ctx, todoID, userID)
}

func (s *ToDoService) loadPair(ctx context.Context, todoID, userID int64) (*domain.ToDo, error) {
	t, err := s.Get(ctx, todoID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, notFound("user", userID, err)
	}
	if t.IsOwner(userID) {
		return nil, fmt.Errorf("todo %d, user %d: %w", todoID, userID, ErrUserIsToDoOwner)
	}
	return t, nil
}
