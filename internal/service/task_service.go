package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"todo_webapp/internal/domain"
)

// TaskInput carries the editable fields of a task. A zero StateID means the
// default state ("New") on create and "unchanged" on update.
type TaskInput struct {
	Name        string
	Description string
	Priority    domain.Priority
	StateID     int64
	Deadline    *time.Time
}

type TaskService struct {
	tasks         TaskStore
	todos         *ToDoService
	states        StateStore
	notifications *NotificationService
}

func NewTaskService(tasks TaskStore, todos *ToDoService, states StateStore, notifications *NotificationService) *TaskService {
	return &TaskService{
		tasks:         tasks,
		todos:         todos,
		states:        states,
		notifications: notifications,
	}
}

func (s *TaskService) Create(ctx context.Context, todoID int64, in TaskInput) (*domain.Task, error) {
	if _, err := s.todos.Get(ctx, todoID); err != nil {
		return nil, err
	}
	if err := validateTaskInput(&in); err != nil {
		return nil, err
	}

	state, err := s.resolveState(ctx, in.StateID)
	if err != nil {
		return nil, err
	}

	t := &domain.Task{
		ToDoID:      todoID,
		Name:        in.Name,
		Description: in.Description,
		Priority:    in.Priority,
		State:       *state,
		Deadline:    in.Deadline,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns the task with its assignees loaded
func (s *TaskService) Get(ctx context.Context, id int64) (*domain.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, notFound("task", id, err)
	}
	if t.AssignedUsers, err = s.tasks.ListAssignees(ctx, id); err != nil {
		return nil, err
	}
	return t, nil
}

// ListByToDo returns the todo's tasks, most urgent first
func (s *TaskService) ListByToDo(ctx context.Context, todoID int64) ([]*domain.Task, error) {
	return s.tasks.ListByToDo(ctx, todoID)
}

func (s *TaskService) ListAssignedTo(ctx context.Context, userID int64) ([]*domain.Task, error) {
	return s.tasks.ListAssignedTo(ctx, userID)
}

func (s *TaskService) Update(ctx context.Context, id int64, in TaskInput) (*domain.Task, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateTaskInput(&in); err != nil {
		return nil, err
	}
	if in.StateID != 0 && in.StateID != t.State.ID {
		state, err := s.resolveState(ctx, in.StateID)
		if err != nil {
			return nil, err
		}
		t.State = *state
	}

	t.Name = in.Name
	t.Description = in.Description
	t.Priority = in.Priority
	t.Deadline = in.Deadline
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, notFound("task", id, err)
	}
	return t, nil
}

// SetState moves the task to another workflow state
func (s *TaskService) SetState(ctx context.Context, id, stateID int64) (*domain.Task, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	state, err := s.resolveState(ctx, stateID)
	if err != nil {
		return nil, err
	}
	t.State = *state
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, notFound("task", id, err)
	}
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	return notFound("task", id, s.tasks.Delete(ctx, id))
}

// Assign adds userID to the task's assignees and notifies them. Only the
// todo's owner and collaborators can be assigned.
func (s *TaskService) Assign(ctx context.Context, taskID, userID int64) error {
	t, err := s.Get(ctx, taskID)
	if err != nil {
		return err
	}
	for _, u := range t.AssignedUsers {
		if u.ID == userID {
			return nil
		}
	}

	todo, err := s.todos.Get(ctx, t.ToDoID)
	if err != nil {
		return err
	}
	member, err := s.todos.IsMember(ctx, todo, userID)
	if err != nil {
		return err
	}
	if !member {
		return invalid("user %d is not a member of todo %d", userID, todo.ID)
	}

	if err := s.tasks.Assign(ctx, taskID, userID); err != nil {
		return err
	}

	if s.notifications != nil {
		msg := fmt.Sprintf("You have been assigned to '%s' in '%s'.", t.Name, todo.Title)
		if _, err := s.notifications.SendToUserID(ctx, userID, domain.NotificationTitleTaskAssigned, msg); err != nil {
			return err
		}
	}
	return nil
}

func (s *TaskService) Unassign(ctx context.Context, taskID, userID int64) error {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return notFound("task", taskID, err)
	}
	return s.tasks.Unassign(ctx, taskID, userID)
}

func (s *TaskService) Assignees(ctx context.Context, taskID int64) ([]*domain.User, error) {
	return s.tasks.ListAssignees(ctx, taskID)
}

func (s *TaskService) resolveState(ctx context.Context, stateID int64) (*domain.State, error) {
	if stateID == 0 {
		st, err := s.states.GetByName(ctx, domain.StateNew)
		if err != nil {
			return nil, notFound("state", domain.StateNew, err)
		}
		return st, nil
	}
	st, err := s.states.GetByID(ctx, stateID)
	if err != nil {
		return nil, notFound("state", stateID, err)
	}
	return st, nil
}

func validateTaskInput(in *TaskInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" {
		return invalid("task name is required")
	}
	if !in.Priority.Valid() {
		return invalid("unknown priority %d", int(in.Priority))
	}
	return nil
}
