package domain

import "time"

// ToDo is a named list of tasks owned by one user and optionally shared
// with collaborators. The owner is never one of the collaborators.
type ToDo struct {
	ID          int64     `db:"id" json:"id"`
	OwnerID     int64     `db:"owner_id" json:"owner_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

func (t *ToDo) IsOwner(userID int64) bool {
	return t.OwnerID == userID
}
