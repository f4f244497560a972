package integration

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"todo_webapp/internal/db"
	"todo_webapp/internal/domain"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type stack struct {
	pool          *pgxpool.Pool
	users         *service.UserService
	todos         *service.ToDoService
	tasks         *service.TaskService
	notifications *service.NotificationService
	sweeper       *service.DueTaskSweeper
}

func setup(t *testing.T) *stack {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	userRepo := repository.NewUserRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)
	notifications := service.NewNotificationService(repository.NewNotificationRepository(pool), userRepo)
	todos := service.NewToDoService(repository.NewToDoRepository(pool), userRepo, taskRepo)

	return &stack{
		pool:          pool,
		users:         service.NewUserService(userRepo, repository.NewOAuthRepository(pool), nil),
		todos:         todos,
		tasks:         service.NewTaskService(taskRepo, todos, repository.NewStateRepository(pool), notifications),
		notifications: notifications,
		sweeper:       service.NewDueTaskSweeper(taskRepo, notifications),
	}
}

func (s *stack) newUser(t *testing.T, name string) *domain.User {
	t.Helper()
	u, err := s.users.Register(context.Background(), service.RegisterParams{
		FirstName: name,
		Email:     name + "-" + uuid.NewString() + "@it.local",
		Password:  "integration-pw",
	})
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	t.Cleanup(func() { _ = s.users.Delete(context.Background(), u.ID) })
	return u
}

func TestCollaboratorsRoundTrip(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	owner := s.newUser(t, "owner")
	bob := s.newUser(t, "bob")

	todo, err := s.todos.Create(ctx, owner.ID, "integration", "")
	if err != nil {
		t.Fatalf("create todo: %v", err)
	}

	if _, err := s.todos.AddCollaborator(ctx, todo.ID, owner.ID); !errors.Is(err, service.ErrUserIsToDoOwner) {
		t.Fatalf("adding the owner: err = %v", err)
	}

	if added, err := s.todos.AddCollaborator(ctx, todo.ID, bob.ID); err != nil || !added {
		t.Fatalf("add collaborator: added = %v err = %v", added, err)
	}
	// second add is a no-op
	if added, err := s.todos.AddCollaborator(ctx, todo.ID, bob.ID); err != nil || added {
		t.Fatalf("re-add collaborator: added = %v err = %v", added, err)
	}

	collabs, err := s.todos.Collaborators(ctx, todo.ID)
	if err != nil || len(collabs) != 1 || collabs[0].ID != bob.ID {
		t.Fatalf("collaborators = %v, err = %v", collabs, err)
	}
	shared, err := s.todos.ListCollaborating(ctx, bob.ID)
	if err != nil || len(shared) != 1 || shared[0].ID != todo.ID {
		t.Fatalf("ListCollaborating = %v, err = %v", shared, err)
	}

	task, err := s.tasks.Create(ctx, todo.ID, service.TaskInput{Name: "shared task", Priority: domain.PriorityLow})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := s.tasks.Assign(ctx, task.ID, bob.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if err := s.todos.RemoveCollaborator(ctx, todo.ID, bob.ID); err != nil {
		t.Fatalf("remove collaborator: %v", err)
	}
	if ok, _ := s.todos.IsMember(ctx, todo, bob.ID); ok {
		t.Fatal("bob is still a member after removal")
	}
	assignees, err := s.tasks.Assignees(ctx, task.ID)
	if err != nil || len(assignees) != 0 {
		t.Fatalf("assignees after removal = %v, err = %v", assignees, err)
	}

	if err := s.todos.Delete(ctx, owner, todo.ID); err != nil {
		t.Fatalf("delete todo: %v", err)
	}
}

func TestDueTaskSweepAgainstPostgres(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	owner := s.newUser(t, "sweeper")
	todo, err := s.todos.Create(ctx, owner.ID, "due soon", "")
	if err != nil {
		t.Fatalf("create todo: %v", err)
	}
	t.Cleanup(func() { _ = s.todos.Delete(context.Background(), owner, todo.ID) })

	past := time.Now().Add(-time.Hour)
	task, err := s.tasks.Create(ctx, todo.ID, service.TaskInput{Name: "overdue", Priority: domain.PriorityHigh, Deadline: &past})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := s.tasks.Assign(ctx, task.ID, owner.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	before, err := s.notifications.Count(ctx, owner.ID)
	if err != nil {
		t.Fatal(err)
	}

	res, err := s.sweeper.Run(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if res.Due == 0 || res.Sent == 0 {
		t.Fatalf("sweep result %+v", res)
	}

	list, err := s.notifications.FindByUser(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	// one "Task Assigned" plus one "Task Due"
	if len(list) != before+1 {
		t.Fatalf("notifications = %d; want %d", len(list), before+1)
	}
	var found bool
	for _, n := range list {
		if n.Title == domain.NotificationTitleTaskDue && n.Message == service.DueTaskMessage(task) {
			found = true
		}
	}
	if !found {
		t.Fatalf("no due notification in %v", list)
	}

	// completed tasks are skipped
	completed, err := repository.NewStateRepository(s.pool).GetByName(ctx, domain.StateCompleted)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.tasks.SetState(ctx, task.ID, completed.ID); err != nil {
		t.Fatalf("complete task: %v", err)
	}
	if _, err := s.sweeper.Run(ctx); err != nil {
		t.Fatal(err)
	}
	after, _ := s.notifications.Count(ctx, owner.ID)
	if after != len(list) {
		t.Fatalf("completed task notified again: %d -> %d", len(list), after)
	}
}
