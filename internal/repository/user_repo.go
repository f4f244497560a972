package repository

import (
	"context"

	"todo_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userSelect = `
	SELECT u.id, u.first_name, u.last_name, u.email, u.password_hash,
	       u.role_id, r.name, u.is_guest, u.created_at
	FROM users u
	JOIN roles r ON r.id = u.role_id`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, userSelect+` WHERE u.id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, userSelect+` WHERE lower(u.email) = lower($1)`, email))
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx, userSelect+` ORDER BY u.created_at, u.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanUsers(rows)
}

// Create inserts the user with the role named by u.Role
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (first_name, last_name, email, password_hash, role_id, is_guest)
		 VALUES ($1, $2, $3, $4, (SELECT id FROM roles WHERE name = $5), $6)
		 RETURNING id, role_id, created_at`,
		u.FirstName,
		u.LastName,
		u.Email,
		u.PasswordHash,
		string(u.Role),
		u.Guest,
	).Scan(&u.ID, &u.RoleID, &u.CreatedAt)
	return translate(err)
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	return expectRows(r.db.Exec(ctx,
		`UPDATE users SET first_name = $1, last_name = $2, email = $3, password_hash = $4, is_guest = $5
		 WHERE id = $6`,
		u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Guest, u.ID,
	))
}

func (r *UserRepository) SetRole(ctx context.Context, userID int64, role domain.RoleName) error {
	return expectRows(r.db.Exec(ctx,
		`UPDATE users SET role_id = (SELECT id FROM roles WHERE name = $1) WHERE id = $2`,
		string(role), userID,
	))
}

// Delete removes the user; owned todos, notifications, comments and
// memberships go with it through ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return expectRows(r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id))
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.PasswordHash,
		&u.RoleID,
		&u.Role,
		&u.Guest,
		&u.CreatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func scanUsers(rows pgx.Rows) ([]*domain.User, error) {
	var res []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}
