package http

import (
	"bytes"
	"context"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"todo_webapp/internal/config"
	"todo_webapp/internal/domain"
	"todo_webapp/internal/http/handlers"
	"todo_webapp/internal/service"
	"todo_webapp/internal/ws"

	"github.com/gin-gonic/gin"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func testRouter(t *testing.T, dbErr error) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	service.InitJWT("routes-test", time.Hour)

	cfg := &config.Config{
		AuthRateLimit:   100,
		AuthRateWindow:  time.Minute,
		WriteRateLimit:  100,
		WriteRateWindow: time.Minute,
	}
	r, err := NewRouter(&handlers.Handler{}, handlers.NewHealthHandler(pinger{dbErr}, nil, "test"), ws.NewHub(), cfg)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return r
}

func get(r nethttp.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAnonymousIsSentToLogin(t *testing.T) {
	r := testRouter(t, nil)
	for _, path := range []string{"/todos", "/notifications", "/admin/users", "/tasks/1"} {
		w := get(r, path)
		if w.Code != nethttp.StatusSeeOther || w.Header().Get("Location") != "/login" {
			t.Errorf("%s: status = %d location = %q", path, w.Code, w.Header().Get("Location"))
		}
	}
}

func TestRootRedirectsToTodos(t *testing.T) {
	w := get(testRouter(t, nil), "/")
	if w.Code != nethttp.StatusSeeOther || w.Header().Get("Location") != "/todos" {
		t.Fatalf("status = %d location = %q", w.Code, w.Header().Get("Location"))
	}
}

func TestLoginPageRenders(t *testing.T) {
	w := get(testRouter(t, nil), "/login")
	if w.Code != nethttp.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `action="/login"`) || !strings.Contains(body, "Continue as guest") {
		t.Fatalf("unexpected login page: %s", body)
	}
	if strings.Contains(body, "/oauth2/") {
		t.Fatal("no providers configured, but an oauth link was rendered")
	}
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	w := get(testRouter(t, nil), "/no/such/page")
	if w.Code != nethttp.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "page not found") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	r := testRouter(t, nil)
	if w := get(r, "/healthz"); w.Code != nethttp.StatusOK {
		t.Fatalf("/healthz = %d", w.Code)
	}
	if w := get(r, "/readyz"); w.Code != nethttp.StatusOK {
		t.Fatalf("/readyz = %d", w.Code)
	}

	down := testRouter(t, errors.New("connection refused"))
	if w := get(down, "/readyz"); w.Code != nethttp.StatusServiceUnavailable {
		t.Fatalf("/readyz with db down = %d", w.Code)
	}
}

type sweepStatus struct{ at time.Time }

func (s sweepStatus) LastRun() (time.Time, service.SweepResult, error) {
	return s.at, service.SweepResult{Due: 2, Sent: 2}, nil
}

func TestReadinessReportsSweep(t *testing.T) {
	gin.SetMode(gin.TestMode)
	health := handlers.NewHealthHandler(pinger{}, nil, "test").WithSweep(sweepStatus{at: time.Now()})
	r := gin.New()
	r.GET("/readyz", health.Readiness)

	w := get(r, "/readyz")
	if w.Code != nethttp.StatusOK || !strings.Contains(w.Body.String(), "due=2 sent=2") {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
}

func TestMetricsExposed(t *testing.T) {
	r := testRouter(t, nil)
	get(r, "/healthz")
	w := get(r, "/metrics")
	if w.Code != nethttp.StatusOK || !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Fatalf("metrics status = %d", w.Code)
	}
}

func TestPagesExecute(t *testing.T) {
	tmpl, err := Templates()
	if err != nil {
		t.Fatalf("Templates: %v", err)
	}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	ann := &domain.User{ID: 1, FirstName: "Ann", Email: "ann@example.com", Role: domain.RoleAdmin}
	bob := &domain.User{ID: 2, FirstName: "Bob", Email: "bob@example.com", Role: domain.RoleUser}
	todo := &domain.ToDo{ID: 7, OwnerID: 1, Title: "Groceries", CreatedAt: now}
	task := &domain.Task{
		ID: 3, ToDoID: 7, Name: "Milk", Priority: domain.PriorityHigh,
		State: domain.State{ID: 1, Name: domain.StateNew}, Deadline: &past,
		AssignedUsers: []*domain.User{bob},
	}
	states := []*domain.State{{ID: 1, Name: domain.StateNew}, {ID: 2, Name: domain.StateCompleted}}

	pages := map[string]gin.H{
		"error.html":    {"Status": 404, "Title": "Not Found", "Message": "gone"},
		"login.html":    {"Providers": []string{"github"}, "Error": "bad password"},
		"register.html": {"Form": service.RegisterParams{FirstName: "Ann"}},
		"todos.html": {
			"CurrentUser": ann, "Unread": 2,
			"Owned": []*domain.ToDo{todo}, "Shared": []*domain.ToDo{}, "Assigned": []*domain.Task{task},
		},
		"todo.html": {
			"CurrentUser": ann, "ToDo": todo, "Owner": ann, "Tasks": []*domain.Task{task},
			"Collaborators": []*domain.User{bob}, "States": states,
			"Priorities": domain.Priorities(), "CanManage": true,
		},
		"task.html": {
			"CurrentUser": bob, "Task": task, "ToDo": todo, "States": states,
			"Priorities": domain.Priorities(), "Members": []*domain.User{ann, bob},
			"Comments": []*domain.Comment{{ID: 4, AuthorID: 2, Author: "Bob", Body: "on it", CreatedAt: now}},
		},
		"notifications.html": {
			"CurrentUser": bob,
			"Notifications": []*domain.Notification{{ID: 9, UserID: 2, Title: domain.NotificationTitleTaskDue, Message: "The task 'Milk' is due.", CreatedAt: now}},
		},
		"admin_users.html":  {"CurrentUser": ann, "Users": []*domain.User{ann, bob}},
		"admin_states.html": {"CurrentUser": ann, "States": states},
		"admin_audit.html": {
			"CurrentUser": ann, "Category": "todo",
			"Logs": []*domain.AuditLog{{ID: 1, UserID: 1, Category: "todo", Action: "collaborator_add", Details: map[string]interface{}{"todo_id": 7}, CreatedAt: now}},
		},
	}

	for name, data := range pages {
		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestTaskPageMarksOverdue(t *testing.T) {
	tmpl, err := Templates()
	if err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Minute)
	user := &domain.User{ID: 1, FirstName: "Ann"}
	task := &domain.Task{ID: 1, ToDoID: 1, Name: "Late", State: domain.State{ID: 1, Name: domain.StateNew}, Deadline: &past}

	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, "task.html", gin.H{
		"CurrentUser": user, "Task": task, "ToDo": &domain.ToDo{ID: 1, OwnerID: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "overdue") {
		t.Fatal("overdue task not marked")
	}

	task.State = domain.State{ID: 2, Name: domain.StateCompleted}
	buf.Reset()
	if err := tmpl.ExecuteTemplate(&buf, "task.html", gin.H{
		"CurrentUser": user, "Task": task, "ToDo": &domain.ToDo{ID: 1, OwnerID: 1},
	}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "overdue") {
		t.Fatal("completed task marked overdue")
	}
}
