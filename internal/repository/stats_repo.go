package repository

import (
	"context"
	"time"

	"todo_webapp/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StatsRepository runs the aggregate queries behind the admin overview
type StatsRepository struct {
	db *pgxpool.Pool
}

func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

// GetStats counts users, lists, tasks and notifications as of now.
// Only the first query's error is reported; the rest leave zeros.
func (r *StatsRepository) GetStats(ctx context.Context, now time.Time) (*domain.Stats, error) {
	stats := &domain.Stats{}
	today := now.Truncate(24 * time.Hour)
	weekAgo := today.Add(-7 * 24 * time.Hour)

	// Total users
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&stats.TotalUsers); err != nil {
		return nil, err
	}

	_ = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_guest`).Scan(&stats.GuestUsers)

	// Registered this week
	_ = r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM users WHERE created_at >= $1
	`, weekAgo).Scan(&stats.NewUsersWeek)

	_ = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM todos`).Scan(&stats.TotalToDos)

	// Lists with at least one collaborator
	_ = r.db.QueryRow(ctx, `
		SELECT COUNT(DISTINCT todo_id) FROM todo_collaborators
	`).Scan(&stats.SharedToDos)

	_ = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&stats.TotalTasks)

	_ = r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM tasks t JOIN states s ON s.id = t.state_id
		WHERE s.name = $1
	`, domain.StateCompleted).Scan(&stats.CompletedTasks)

	// Same rule as the due-task sweep
	_ = r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM tasks t JOIN states s ON s.id = t.state_id
		WHERE s.name <> $1 AND t.deadline IS NOT NULL AND t.deadline < $2
	`, domain.StateCompleted, now).Scan(&stats.OverdueTasks)

	_ = r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM tasks WHERE created_at >= $1
	`, today).Scan(&stats.TasksToday)

	_ = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications`).Scan(&stats.Notifications)

	_ = r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM comments WHERE created_at >= $1
	`, weekAgo).Scan(&stats.CommentsWeek)

	return stats, nil
}
