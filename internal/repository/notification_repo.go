package repository

import (
	"context"

	"todo_webapp/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO notifications (user_id, title, message)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		n.UserID, n.Title, n.Message,
	).Scan(&n.ID, &n.CreatedAt)
	return translate(err)
}

func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	var n domain.Notification
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, title, message, created_at FROM notifications WHERE id = $1`, id,
	).Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

// ListByUser returns notifications in insertion order; callers sort for display
func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Notification, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, title, message, created_at
		 FROM notifications
		 WHERE user_id = $1
		 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &n)
	}
	return res, rows.Err()
}

func (r *NotificationRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *NotificationRepository) Delete(ctx context.Context, id int64) error {
	return expectRows(r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id))
}
