package service

import (
	"context"
	"fmt"
	"time"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"
)

// DueTaskSource provides the full task scan, assignees included
type DueTaskSource interface {
	ListAllWithAssignees(ctx context.Context) ([]*domain.Task, error)
}

// SweepResult summarizes one sweep run
type SweepResult struct {
	Scanned int
	Due     int
	Sent    int
	Failed  int
}

// DueTaskSweeper notifies every assignee of every overdue, unfinished task.
// It keeps no memory between runs, so a task that stays overdue is reported
// again on each run.
type DueTaskSweeper struct {
	tasks         DueTaskSource
	notifications *NotificationService
	now           func() time.Time
}

func NewDueTaskSweeper(tasks DueTaskSource, notifications *NotificationService) *DueTaskSweeper {
	return &DueTaskSweeper{
		tasks:         tasks,
		notifications: notifications,
		now:           time.Now,
	}
}

// WithClock replaces the time source, for tests
func (s *DueTaskSweeper) WithClock(now func() time.Time) *DueTaskSweeper {
	s.now = now
	return s
}

// Run performs one sweep. Only the task scan can fail the run; a failed
// notification is logged and counted and the sweep moves on.
func (s *DueTaskSweeper) Run(ctx context.Context) (SweepResult, error) {
	var res SweepResult

	tasks, err := s.tasks.ListAllWithAssignees(ctx)
	if err != nil {
		return res, fmt.Errorf("scan tasks: %w", err)
	}
	res.Scanned = len(tasks)

	now := s.now()
	for _, t := range tasks {
		if !t.IsDue(now) {
			continue
		}
		res.Due++

		msg := DueTaskMessage(t)
		for _, u := range t.AssignedUsers {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			if _, err := s.notifications.SendToUser(ctx, u, domain.NotificationTitleTaskDue, msg); err != nil {
				res.Failed++
				logger.Warn("due task notification failed",
					"error", err, "task_id", t.ID, "user_id", u.ID)
				continue
			}
			res.Sent++
		}
	}

	return res, nil
}

// DueTaskMessage is the body of a "Task Due" notification
func DueTaskMessage(t *domain.Task) string {
	return fmt.Sprintf("The task '%s' is due.", t.Name)
}
