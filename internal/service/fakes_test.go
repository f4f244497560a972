package service

import (
	"context"
	"sync"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/repository/memrepo"
)

// recordingSink remembers every delivered notification
type recordingSink struct {
	mu        sync.Mutex
	delivered []*domain.Notification
	err       error
}

func (s *recordingSink) Deliver(_ context.Context, _ *domain.User, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivered = append(s.delivered, n)
	return s.err
}

// services wires every service over one in-memory store
type services struct {
	db            *memrepo.DB
	users         *UserService
	todos         *ToDoService
	tasks         *TaskService
	states        *StateService
	comments      *CommentService
	notifications *NotificationService
	sweeper       *DueTaskSweeper
}

func newServices() *services {
	db := memrepo.New()
	notifications := NewNotificationService(db.Notifications(), db.Users())
	todos := NewToDoService(db.ToDos(), db.Users(), db.Tasks())
	return &services{
		db:            db,
		users:         NewUserService(db.Users(), db.Identities(), []string{"boss@example.com"}),
		todos:         todos,
		tasks:         NewTaskService(db.Tasks(), todos, db.States(), notifications),
		states:        NewStateService(db.States()),
		comments:      NewCommentService(db.Comments(), db.Tasks()),
		notifications: notifications,
		sweeper:       NewDueTaskSweeper(db.Tasks(), notifications),
	}
}
