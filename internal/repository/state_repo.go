package repository

import (
	"context"

	"todo_webapp/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type StateRepository struct {
	db *pgxpool.Pool
}

func NewStateRepository(db *pgxpool.Pool) *StateRepository {
	return &StateRepository{db: db}
}

func (r *StateRepository) List(ctx context.Context) ([]*domain.State, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM states ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.State
	for rows.Next() {
		var s domain.State
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		res = append(res, &s)
	}
	return res, rows.Err()
}

func (r *StateRepository) GetByID(ctx context.Context, id int64) (*domain.State, error) {
	var s domain.State
	if err := r.db.QueryRow(ctx, `SELECT id, name FROM states WHERE id = $1`, id).Scan(&s.ID, &s.Name); err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *StateRepository) GetByName(ctx context.Context, name string) (*domain.State, error) {
	var s domain.State
	if err := r.db.QueryRow(ctx, `SELECT id, name FROM states WHERE name = $1`, name).Scan(&s.ID, &s.Name); err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *StateRepository) Create(ctx context.Context, s *domain.State) error {
	return translate(r.db.QueryRow(ctx, `INSERT INTO states (name) VALUES ($1) RETURNING id`, s.Name).Scan(&s.ID))
}

func (r *StateRepository) Rename(ctx context.Context, id int64, name string) error {
	return expectRows(r.db.Exec(ctx, `UPDATE states SET name = $1 WHERE id = $2`, name, id))
}

// Delete fails with ErrInUse while tasks still reference the state
func (r *StateRepository) Delete(ctx context.Context, id int64) error {
	return expectRows(r.db.Exec(ctx, `DELETE FROM states WHERE id = $1`, id))
}
