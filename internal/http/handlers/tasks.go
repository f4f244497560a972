package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

var deadlineLayouts = []string{"2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"}

// taskInput reads the task form. An empty priority means MEDIUM and an
// empty deadline clears it.
func taskInput(c *gin.Context) (service.TaskInput, error) {
	in := service.TaskInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Priority:    domain.PriorityMedium,
	}

	if p := c.PostForm("priority"); p != "" {
		priority, err := domain.ParsePriority(p)
		if err != nil {
			return in, fmt.Errorf("%w: %v", service.ErrInvalidArgument, err)
		}
		in.Priority = priority
	}

	if s := c.PostForm("state_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return in, fmt.Errorf("%w: bad state", service.ErrInvalidArgument)
		}
		in.StateID = id
	}

	if d := strings.TrimSpace(c.PostForm("deadline")); d != "" {
		deadline, err := parseDeadline(d)
		if err != nil {
			return in, err
		}
		in.Deadline = &deadline
	}
	return in, nil
}

func parseDeadline(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: bad deadline %q", service.ErrInvalidArgument, s)
}

func (h *Handler) CreateTask(c *gin.Context) {
	todo, ok := h.loadToDo(c, "id")
	if !ok {
		return
	}
	in, err := taskInput(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if _, err := h.Tasks.Create(c.Request.Context(), todo.ID, in); err != nil {
		h.fail(c, err)
		return
	}
	redirect(c, fmt.Sprintf("/todos/%d", todo.ID), "Task added")
}

func (h *Handler) ShowTask(c *gin.Context) {
	task, todo, ok := h.loadTask(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	comments, err := h.Comments.ListByTask(ctx, task.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	states, err := h.States.List(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	members, err := h.members(c, todo)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.render(c, http.StatusOK, "task.html", gin.H{
		"Task":       task,
		"ToDo":       todo,
		"Comments":   comments,
		"States":     states,
		"Priorities": domain.Priorities(),
		"Members":    members,
		"Now":        time.Now(),
	})
}

// members is the owner followed by the collaborators, the users a task can
// be assigned to
func (h *Handler) members(c *gin.Context, todo *domain.ToDo) ([]*domain.User, error) {
	ctx := c.Request.Context()
	owner, err := h.Users.GetByID(ctx, todo.OwnerID)
	if err != nil {
		return nil, err
	}
	collaborators, err := h.ToDos.Collaborators(ctx, todo.ID)
	if err != nil {
		return nil, err
	}
	return append([]*domain.User{owner}, collaborators...), nil
}

func (h *Handler) UpdateTask(c *gin.Context) {
	task, _, ok := h.loadTask(c, "id")
	if !ok {
		return
	}
	in, err := taskInput(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if _, err := h.Tasks.Update(c.Request.Context(), task.ID, in); err != nil {
		h.fail(c, err)
		return
	}
	redirect(c, fmt.Sprintf("/tasks/%d", task.ID), "Task updated")
}

func (h *Handler) DeleteTask(c *gin.Context) {
	task, todo, ok := h.loadTask(c, "id")
	if !ok {
		return
	}
	if err := h.Tasks.Delete(c.Request.Context(), task.ID); err != nil {
		h.fail(c, err)
		return
	}
	redirect(c, fmt.Sprintf("/todos/%d", todo.ID), "Task deleted")
}

func (h *Handler) AssignTask(c *gin.Context) {
	task, _, ok := h.loadTask(c, "id")
	if !ok {
		return
	}
	userID, err := strconv.ParseInt(c.PostForm("user_id"), 10, 64)
	if err != nil {
		h.failStatus(c, http.StatusBadRequest, "user_id required")
		return
	}
	if err := h.Tasks.Assign(c.Request.Context(), task.ID, userID); err != nil {
		h.fail(c, err)
		return
	}
	redirect(c, fmt.Sprintf("/tasks/%d", task.ID), "Assigned")
}

func (h *Handler) UnassignTask(c *gin.Context) {
	task, _, ok := h.loadTask(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "userId")
	if !ok {
		h.failStatus(c, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := h.Tasks.Unassign(c.Request.Context(), task.ID, userID); err != nil {
		h.fail(c, err)
		return
	}
	redirect(c, fmt.Sprintf("/tasks/%d", task.ID), "Unassigned")
}

func (h *Handler) AddComment(c *gin.Context) {
	task, _, ok := h.loadTask(c, "id")
	if !ok {
		return
	}
	if _, err := h.Comments.Add(c.Request.Context(), task.ID, currentUser(c), c.PostForm("body")); err != nil {
		h.fail(c, err)
		return
	}
	redirect(c, fmt.Sprintf("/tasks/%d#comments", task.ID), "")
}

func (h *Handler) DeleteComment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.failStatus(c, http.StatusBadRequest, "invalid id")
		return
	}
	ctx := c.Request.Context()
	comment, err := h.Comments.Get(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.Comments.Delete(ctx, currentUser(c), id); err != nil {
		h.fail(c, err)
		return
	}
	redirect(c, fmt.Sprintf("/tasks/%d#comments", comment.TaskID), "Comment deleted")
}
