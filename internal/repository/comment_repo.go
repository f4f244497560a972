package repository

import (
	"context"

	"todo_webapp/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CommentRepository struct {
	db *pgxpool.Pool
}

func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO comments (task_id, author_id, body)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		c.TaskID, c.AuthorID, c.Body,
	).Scan(&c.ID, &c.CreatedAt)
	return translate(err)
}

func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	var c domain.Comment
	err := r.db.QueryRow(ctx,
		`SELECT c.id, c.task_id, c.author_id, COALESCE(NULLIF(trim(u.first_name || ' ' || u.last_name), ''), u.email),
		        c.body, c.created_at
		 FROM comments c
		 JOIN users u ON u.id = c.author_id
		 WHERE c.id = $1`, id,
	).Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Author, &c.Body, &c.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CommentRepository) ListByTask(ctx context.Context, taskID int64) ([]*domain.Comment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT c.id, c.task_id, c.author_id, COALESCE(NULLIF(trim(u.first_name || ' ' || u.last_name), ''), u.email),
		        c.body, c.created_at
		 FROM comments c
		 JOIN users u ON u.id = c.author_id
		 WHERE c.task_id = $1
		 ORDER BY c.created_at, c.id`,
		taskID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Author, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &c)
	}
	return res, rows.Err()
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	return expectRows(r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id))
}
