package repository

import (
	"context"

	"todo_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskSelect = `
	SELECT t.id, t.todo_id, t.name, t.description, t.priority,
	       s.id, s.name, t.deadline, t.created_at
	FROM tasks t
	JOIN states s ON s.id = t.state_id`

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	var t domain.Task
	if err := scanTaskRow(r.db.QueryRow(ctx, taskSelect+` WHERE t.id = $1`, id), &t); err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// ListByToDo orders by priority (highest first), then earliest deadline
func (r *TaskRepository) ListByToDo(ctx context.Context, todoID int64) ([]*domain.Task, error) {
	rows, err := r.db.Query(ctx, taskSelect+`
		WHERE t.todo_id = $1
		ORDER BY t.priority DESC, t.deadline ASC NULLS LAST, t.id`,
		todoID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

func (r *TaskRepository) ListAssignedTo(ctx context.Context, userID int64) ([]*domain.Task, error) {
	rows, err := r.db.Query(ctx, taskSelect+`
		JOIN task_assignees a ON a.task_id = t.id
		WHERE a.user_id = $1
		ORDER BY t.deadline ASC NULLS LAST, t.priority DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// ListAllWithAssignees returns every task with AssignedUsers populated.
// Assignments are fetched in a second query and grouped in memory.
func (r *TaskRepository) ListAllWithAssignees(ctx context.Context) ([]*domain.Task, error) {
	rows, err := r.db.Query(ctx, taskSelect+` ORDER BY t.id`)
	if err != nil {
		return nil, err
	}
	tasks, err := scanTasks(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*domain.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	arows, err := r.db.Query(ctx, `
		SELECT a.task_id, u.id, u.first_name, u.last_name, u.email, u.password_hash,
		       u.role_id, r.name, u.is_guest, u.created_at
		FROM task_assignees a
		JOIN users u ON u.id = a.user_id
		JOIN roles r ON r.id = u.role_id
		ORDER BY a.task_id, a.assigned_at`)
	if err != nil {
		return nil, err
	}
	defer arows.Close()

	for arows.Next() {
		var taskID int64
		var u domain.User
		if err := arows.Scan(&taskID, &u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
			&u.RoleID, &u.Role, &u.Guest, &u.CreatedAt); err != nil {
			return nil, err
		}
		if t, ok := byID[taskID]; ok {
			t.AssignedUsers = append(t.AssignedUsers, &u)
		}
	}
	return tasks, arows.Err()
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO tasks (todo_id, name, description, priority, state_id, deadline)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		t.ToDoID, t.Name, t.Description, int(t.Priority), t.State.ID, t.Deadline,
	).Scan(&t.ID, &t.CreatedAt)
	return translate(err)
}

func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	return expectRows(r.db.Exec(ctx,
		`UPDATE tasks SET name = $1, description = $2, priority = $3, state_id = $4, deadline = $5
		 WHERE id = $6`,
		t.Name, t.Description, int(t.Priority), t.State.ID, t.Deadline, t.ID,
	))
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	return expectRows(r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id))
}

func (r *TaskRepository) Assign(ctx context.Context, taskID, userID int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO task_assignees (task_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (task_id, user_id) DO NOTHING`,
		taskID, userID,
	)
	return translate(err)
}

func (r *TaskRepository) Unassign(ctx context.Context, taskID, userID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM task_assignees WHERE task_id = $1 AND user_id = $2`, taskID, userID)
	return translate(err)
}

func (r *TaskRepository) ListAssignees(ctx context.Context, taskID int64) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx, userSelect+`
		JOIN task_assignees a ON a.user_id = u.id
		WHERE a.task_id = $1
		ORDER BY a.assigned_at, u.id`,
		taskID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanUsers(rows)
}

// UnassignFromToDo drops the user's assignments on every task of the todo,
// used when a collaborator leaves.
func (r *TaskRepository) UnassignFromToDo(ctx context.Context, todoID, userID int64) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM task_assignees a
		 USING tasks t
		 WHERE a.task_id = t.id AND t.todo_id = $1 AND a.user_id = $2`,
		todoID, userID,
	)
	return translate(err)
}

func scanTaskRow(row pgx.Row, t *domain.Task) error {
	var priority int
	if err := row.Scan(
		&t.ID,
		&t.ToDoID,
		&t.Name,
		&t.Description,
		&priority,
		&t.State.ID,
		&t.State.Name,
		&t.Deadline,
		&t.CreatedAt,
	); err != nil {
		return err
	}
	t.Priority = domain.Priority(priority)
	return nil
}

func scanTasks(rows pgx.Rows) ([]*domain.Task, error) {
	var res []*domain.Task
	for rows.Next() {
		var t domain.Task
		if err := scanTaskRow(rows, &t); err != nil {
			return nil, err
		}
		res = append(res, &t)
	}
	return res, rows.Err()
}
