package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"todo_webapp/internal/domain"
)

func TestCreateTaskDefaults(t *testing.T) {
	s := newServices()
	ctx := context.Background()
	owner := s.db.AddUser("ann")
	todo, _ := s.todos.Create(ctx, owner.ID, "Home", "")

	task, err := s.tasks.Create(ctx, todo.ID, TaskInput{Name: "  Vacuum ", Priority: domain.PriorityMedium})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.Name != "Vacuum" {
		t.Errorf("name = %q", task.Name)
	}
	if task.State.Name != domain.StateNew {
		t.Errorf("state = %q, want New", task.State.Name)
	}

	if _, err := s.tasks.Create(ctx, todo.ID, TaskInput{Name: ""}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty name: err = %v", err)
	}
	if _, err := s.tasks.Create(ctx, todo.ID, TaskInput{Name: "x", Priority: 42}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bad priority: err = %v", err)
	}
	if _, err := s.tasks.Create(ctx, 999, TaskInput{Name: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing todo: err = %v", err)
	}
	if _, err := s.tasks.Create(ctx, todo.ID, TaskInput{Name: "x", StateID: 999}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing state: err = %v", err)
	}
}

func TestUpdateTaskAndSetState(t *testing.T) {
	s := newServices()
	ctx := context.Background()
	owner := s.db.AddUser("ann")
	todo, _ := s.todos.Create(ctx, owner.ID, "Home", "")
	task, _ := s.tasks.Create(ctx, todo.ID, TaskInput{Name: "Vacuum"})

	deadline := time.Now().Add(48 * time.Hour)
	updated, err := s.tasks.Update(ctx, task.ID, TaskInput{
		Name:     "Vacuum upstairs",
		Priority: domain.PriorityHigh,
		Deadline: &deadline,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Priority != domain.PriorityHigh || updated.Deadline == nil || updated.State.Name != domain.StateNew {
		t.Fatalf("updated = %+v", updated)
	}

	done := s.db.StateNamed(domain.StateCompleted)
	got, err := s.tasks.SetState(ctx, task.ID, done.ID)
	if err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if !got.IsCompleted() {
		t.Fatalf("state = %q", got.State.Name)
	}
}

func TestAssignRequiresMembership(t *testing.T) {
	s := newServices()
	ctx := context.Background()
	owner := s.db.AddUser("ann")
	collab := s.db.AddUser("bob")
	stranger := s.db.AddUser("cid")
	todo, _ := s.todos.Create(ctx, owner.ID, "Home", "")
	_, _ = s.todos.AddCollaborator(ctx, todo.ID, collab.ID)
	task, _ := s.tasks.Create(ctx, todo.ID, TaskInput{Name: "Vacuum"})

	if err := s.tasks.Assign(ctx, task.ID, stranger.ID); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("stranger: err = %v", err)
	}
	if err := s.tasks.Assign(ctx, task.ID, collab.ID); err != nil {
		t.Fatalf("collaborator: %v", err)
	}
	if err := s.tasks.Assign(ctx, task.ID, owner.ID); err != nil {
		t.Fatalf("owner: %v", err)
	}
	// already assigned, no second notification
	if err := s.tasks.Assign(ctx, task.ID, collab.ID); err != nil {
		t.Fatal(err)
	}

	ns := s.db.NotificationsFor(collab.ID)
	if len(ns) != 1 || ns[0].Title != domain.NotificationTitleTaskAssigned {
		t.Fatalf("collaborator notifications = %+v", ns)
	}

	got, _ := s.tasks.Get(ctx, task.ID)
	if len(got.AssignedUsers) != 2 {
		t.Fatalf("assigned = %d, want 2", len(got.AssignedUsers))
	}

	if err := s.tasks.Unassign(ctx, task.ID, collab.ID); err != nil {
		t.Fatal(err)
	}
	mine, _ := s.tasks.ListAssignedTo(ctx, collab.ID)
	if len(mine) != 0 {
		t.Fatalf("ListAssignedTo = %d, want 0", len(mine))
	}
}

func TestDeleteTask(t *testing.T) {
	s := newServices()
	ctx := context.Background()
	owner := s.db.AddUser("ann")
	todo, _ := s.todos.Create(ctx, owner.ID, "Home", "")
	task, _ := s.tasks.Create(ctx, todo.ID, TaskInput{Name: "Vacuum"})

	if err := s.tasks.Delete(ctx, task.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.tasks.Get(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if err := s.tasks.Delete(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestStateService(t *testing.T) {
	s := newServices()
	ctx := context.Background()

	blocked, err := s.states.Create(ctx, "Blocked")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.states.Create(ctx, "Blocked"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("duplicate: err = %v", err)
	}
	if _, err := s.states.Create(ctx, " "); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("empty: err = %v", err)
	}

	newState := s.db.StateNamed(domain.StateNew)
	if err := s.states.Rename(ctx, newState.ID, "Fresh"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("rename builtin: err = %v", err)
	}
	if err := s.states.Delete(ctx, newState.ID); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("delete builtin: err = %v", err)
	}

	owner := s.db.AddUser("ann")
	todo, _ := s.todos.Create(ctx, owner.ID, "Home", "")
	_, _ = s.tasks.Create(ctx, todo.ID, TaskInput{Name: "stuck", StateID: blocked.ID})

	if err := s.states.Delete(ctx, blocked.ID); !errors.Is(err, ErrStateInUse) {
		t.Fatalf("in use: err = %v", err)
	}
	if err := s.states.Rename(ctx, blocked.ID, "On Hold"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
}

func TestCommentService(t *testing.T) {
	s := newServices()
	ctx := context.Background()
	ann := s.db.AddUser("ann")
	bob := s.db.AddUser("bob")
	todo, _ := s.todos.Create(ctx, ann.ID, "Home", "")
	task, _ := s.tasks.Create(ctx, todo.ID, TaskInput{Name: "Vacuum"})

	c, err := s.comments.Add(ctx, task.ID, ann, "on it")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if c.Author != "ann" {
		t.Errorf("author = %q", c.Author)
	}
	if _, err := s.comments.Add(ctx, task.ID, ann, ""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty body: err = %v", err)
	}
	if _, err := s.comments.Add(ctx, 999, ann, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing task: err = %v", err)
	}

	if err := s.comments.Delete(ctx, bob, c.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("other user delete: err = %v", err)
	}
	if err := s.comments.Delete(ctx, ann, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}
