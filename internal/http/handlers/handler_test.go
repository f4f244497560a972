package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("todo 4: %w", service.ErrNotFound), http.StatusNotFound},
		{service.ErrNullEntity, http.StatusNotAcceptable},
		{fmt.Errorf("user 1: %w", service.ErrUserIsToDoOwner), http.StatusNotAcceptable},
		{service.ErrInvalidArgument, http.StatusBadRequest},
		{service.ErrOAuthState, http.StatusBadRequest},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrEmailTaken, http.StatusConflict},
		{service.ErrStateInUse, http.StatusConflict},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("statusFor(%v) = %d; want %d", tc.err, got, tc.want)
		}
	}
}

func formContext(values url.Values) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest("POST", "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.Request = req
	return c
}

func TestTaskInputDefaults(t *testing.T) {
	in, err := taskInput(formContext(url.Values{"name": {"Milk"}}))
	if err != nil {
		t.Fatal(err)
	}
	if in.Name != "Milk" || in.Priority != domain.PriorityMedium || in.StateID != 0 || in.Deadline != nil {
		t.Fatalf("unexpected input %+v", in)
	}
}

func TestTaskInputParsesFields(t *testing.T) {
	in, err := taskInput(formContext(url.Values{
		"name":     {"Milk"},
		"priority": {"urgent"},
		"state_id": {"3"},
		"deadline": {"2026-05-01T09:30"},
	}))
	if err != nil {
		t.Fatal(err)
	}
	if in.Priority != domain.PriorityUrgent || in.StateID != 3 {
		t.Fatalf("unexpected input %+v", in)
	}
	want := time.Date(2026, 5, 1, 9, 30, 0, 0, time.Local)
	if in.Deadline == nil || !in.Deadline.Equal(want) {
		t.Fatalf("deadline = %v; want %v", in.Deadline, want)
	}
}

func TestTaskInputRejectsBadValues(t *testing.T) {
	bad := []url.Values{
		{"name": {"x"}, "priority": {"SOON"}},
		{"name": {"x"}, "state_id": {"abc"}},
		{"name": {"x"}, "deadline": {"tomorrow"}},
	}
	for _, v := range bad {
		if _, err := taskInput(formContext(v)); !errors.Is(err, service.ErrInvalidArgument) {
			t.Errorf("taskInput(%v) err = %v; want ErrInvalidArgument", v, err)
		}
	}
}

func TestParseDeadlineLayouts(t *testing.T) {
	cases := map[string]time.Time{
		"2026-05-01T09:30:00Z": time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC),
		"2026-05-01T09:30":     time.Date(2026, 5, 1, 9, 30, 0, 0, time.Local),
		"2026-05-01 09:30":     time.Date(2026, 5, 1, 9, 30, 0, 0, time.Local),
		"2026-05-01":           time.Date(2026, 5, 1, 0, 0, 0, 0, time.Local),
	}
	for in, want := range cases {
		got, err := parseDeadline(in)
		if err != nil {
			t.Errorf("parseDeadline(%q): %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("parseDeadline(%q) = %v; want %v", in, got, want)
		}
	}
}

func TestFailRendersJSONForAPIClients(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/todos/1", nil)
	c.Request.Header.Set("Accept", "application/json")

	h := &Handler{}
	h.fail(c, fmt.Errorf("todo 1: %w", service.ErrNotFound))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"error"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
	if !c.IsAborted() {
		t.Fatal("context not aborted")
	}
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/todos", nil)
	c.Request.Header.Set("Accept", "application/json")

	(&Handler{}).fail(c, errors.New("pq: password authentication failed"))

	if w.Code != http.StatusInternalServerError || strings.Contains(w.Body.String(), "password") {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
}
