package service

import (
	"context"

	"todo_webapp/internal/domain"
)

// The stores below are implemented by the repository package over
// PostgreSQL. Reads of a missing row return repository.ErrNotFound.

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	SetRole(ctx context.Context, userID int64, role domain.RoleName) error
	Delete(ctx context.Context, id int64) error
}

type OAuthIdentityStore interface {
	GetByProviderSubject(ctx context.Context, provider, subject string) (*domain.OAuthIdentity, error)
	Create(ctx context.Context, id *domain.OAuthIdentity) error
}

type ToDoStore interface {
	GetByID(ctx context.Context, id int64) (*domain.ToDo, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.ToDo, error)
	ListByCollaborator(ctx context.Context, userID int64) ([]*domain.ToDo, error)
	Create(ctx context.Context, t *domain.ToDo) error
	Update(ctx context.Context, t *domain.ToDo) error
	Delete(ctx context.Context, id int64) error
	AddCollaborator(ctx context.Context, todoID, userID int64) (bool, error)
	RemoveCollaborator(ctx context.Context, todoID, userID int64) error
	IsCollaborator(ctx context.Context, todoID, userID int64) (bool, error)
	ListCollaborators(ctx context.Context, todoID int64) ([]*domain.User, error)
}

type TaskStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	ListByToDo(ctx context.Context, todoID int64) ([]*domain.Task, error)
	ListAssignedTo(ctx context.Context, userID int64) ([]*domain.Task, error)
	ListAllWithAssignees(ctx context.Context) ([]*domain.Task, error)
	Create(ctx context.Context, t *domain.Task) error
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id int64) error
	Assign(ctx context.Context, taskID, userID int64) error
	Unassign(ctx context.Context, taskID, userID int64) error
	ListAssignees(ctx context.Context, taskID int64) ([]*domain.User, error)
	UnassignFromToDo(ctx context.Context, todoID, userID int64) error
}

type StateStore interface {
	List(ctx context.Context) ([]*domain.State, error)
	GetByID(ctx context.Context, id int64) (*domain.State, error)
	GetByName(ctx context.Context, name string) (*domain.State, error)
	Create(ctx context.Context, s *domain.State) error
	Rename(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
}

type CommentStore interface {
	Create(ctx context.Context, c *domain.Comment) error
	GetByID(ctx context.Context, id int64) (*domain.Comment, error)
	ListByTask(ctx context.Context, taskID int64) ([]*domain.Comment, error)
	Delete(ctx context.Context, id int64) error
}

type NotificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id int64) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Notification, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
	Delete(ctx context.Context, id int64) error
}

type AuditStore interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	ListRecent(ctx context.Context, category string, limit int) ([]*domain.AuditLog, error)
}
