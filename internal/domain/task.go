package domain

import (
	"fmt"
	"strings"
	"time"
)

// Priority is ordinal: TRIVIAL < LOW < MEDIUM < HIGH < URGENT
type Priority int

const (
	PriorityTrivial Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

var priorityNames = [...]string{"TRIVIAL", "LOW", "MEDIUM", "HIGH", "URGENT"}

// Priorities lists all priorities in ascending order
func Priorities() []Priority {
	return []Priority{PriorityTrivial, PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}

func (p Priority) Valid() bool {
	return p >= PriorityTrivial && p <= PriorityUrgent
}

func (p Priority) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Priority(%d)", int(p))
	}
	return priorityNames[p]
}

// ParsePriority accepts a priority name in any case
func ParsePriority(s string) (Priority, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range priorityNames {
		if name == s {
			return Priority(i), nil
		}
	}
	return 0, fmt.Errorf("unknown priority %q", s)
}

// StateCompleted is the name of the terminal workflow state
const StateCompleted = "Completed"

// StateNew is assigned to tasks created without an explicit state
const StateNew = "New"

// State - этап рабочего процесса задачи
type State struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type Task struct {
	ID          int64      `db:"id" json:"id"`
	ToDoID      int64      `db:"todo_id" json:"todo_id"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	Priority    Priority   `db:"priority" json:"priority"`
	State       State      `db:"state" json:"state"`
	Deadline    *time.Time `db:"deadline" json:"deadline,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`

	// AssignedUsers is populated by queries that load assignments
	AssignedUsers []*User `db:"-" json:"assigned_users,omitempty"`
}

// IsCompleted reports whether the task is in the Completed state
func (t *Task) IsCompleted() bool {
	return t.State.Name == StateCompleted
}

// IsDue reports whether the task is overdue at now: not completed, has a
// deadline, and the deadline is strictly before now.
func (t *Task) IsDue(now time.Time) bool {
	return !t.IsCompleted() && t.Deadline != nil && t.Deadline.Before(now)
}
