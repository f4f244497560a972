package domain

import "time"

// Notification is created by the system only and removed once read
type Notification struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const (
	NotificationTitleTaskDue      = "Task Due"
	NotificationTitleTaskAssigned = "Task Assigned"
	NotificationTitleCollaborator = "Added as Collaborator"
)
