package repository

import (
	"context"

	"todo_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ToDoRepository stores todos and the todo_collaborators junction. The
// junction row is the only record of a collaboration, so both directions
// (collaborators of a todo, todos of a collaborator) are read from it.
type ToDoRepository struct {
	db *pgxpool.Pool
}

func NewToDoRepository(db *pgxpool.Pool) *ToDoRepository {
	return &ToDoRepository{db: db}
}

func (r *ToDoRepository) GetByID(ctx context.Context, id int64) (*domain.ToDo, error) {
	var t domain.ToDo
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_id, title, description, created_at FROM todos WHERE id = $1`, id,
	).Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *ToDoRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.ToDo, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, owner_id, title, description, created_at
		 FROM todos
		 WHERE owner_id = $1
		 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanToDos(rows)
}

// ListByCollaborator returns todos the user collaborates on
func (r *ToDoRepository) ListByCollaborator(ctx context.Context, userID int64) ([]*domain.ToDo, error) {
	rows, err := r.db.Query(ctx,
		`SELECT t.id, t.owner_id, t.title, t.description, t.created_at
		 FROM todos t
		 JOIN todo_collaborators c ON c.todo_id = t.id
		 WHERE c.user_id = $1
		 ORDER BY t.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanToDos(rows)
}

func (r *ToDoRepository) Create(ctx context.Context, t *domain.ToDo) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO todos (owner_id, title, description)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		t.OwnerID, t.Title, t.Description,
	).Scan(&t.ID, &t.CreatedAt)
	return translate(err)
}

func (r *ToDoRepository) Update(ctx context.Context, t *domain.ToDo) error {
	return expectRows(r.db.Exec(ctx,
		`UPDATE todos SET title = $1, description = $2 WHERE id = $3`,
		t.Title, t.Description, t.ID,
	))
}

// Delete removes the todo and, by cascade, its tasks and collaborations
func (r *ToDoRepository) Delete(ctx context.Context, id int64) error {
	return expectRows(r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id))
}

// AddCollaborator is idempotent. It reports whether a row was inserted.
func (r *ToDoRepository) AddCollaborator(ctx context.Context, todoID, userID int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO todo_collaborators (todo_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (todo_id, user_id) DO NOTHING`,
		todoID, userID,
	)
	if err != nil {
		return false, translate(err)
	}
	return tag.RowsAffected() == 1, nil
}

// RemoveCollaborator succeeds even if the pair does not exist
func (r *ToDoRepository) RemoveCollaborator(ctx context.Context, todoID, userID int64) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM todo_collaborators WHERE todo_id = $1 AND user_id = $2`,
		todoID, userID,
	)
	return translate(err)
}

func (r *ToDoRepository) IsCollaborator(ctx context.Context, todoID, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM todo_collaborators WHERE todo_id = $1 AND user_id = $2)`,
		todoID, userID,
	).Scan(&exists)
	return exists, err
}

func (r *ToDoRepository) ListCollaborators(ctx context.Context, todoID int64) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx, userSelect+`
		JOIN todo_collaborators c ON c.user_id = u.id
		WHERE c.todo_id = $1
		ORDER BY c.added_at, u.id`,
		todoID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanUsers(rows)
}

func scanToDos(rows pgx.Rows) ([]*domain.ToDo, error) {
	var res []*domain.ToDo
	for rows.Next() {
		var t domain.ToDo
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &t)
	}
	return res, rows.Err()
}
