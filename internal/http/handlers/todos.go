package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"

	"github.com/gin-gonic/gin"
)

// ListToDos is the home page: owned lists, shared lists and my tasks
func (h *Handler) ListToDos(c *gin.Context) {
	ctx := c.Request.Context()
	user := currentUser(c)

	owned, err := h.ToDos.ListOwned(ctx, user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	shared, err := h.ToDos.ListCollaborating(ctx, user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	assigned, err := h.Tasks.ListAssignedTo(ctx, user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.render(c, http.StatusOK, "todos.html", gin.H{
		"Owned":    owned,
		"Shared":   shared,
		"Assigned": assigned,
	})
}

func (h *Handler) CreateToDo(c *gin.Context) {
	todo, err := h.ToDos.Create(c.Request.Context(), currentUser(c).ID, c.PostForm("title"), c.PostForm("description"))
	if err != nil {
		h.fail(c, err)
		return
	}
	redirect(c, fmt.Sprintf("/todos/%d", todo.ID), "List created")
}

func (h *Handler) ShowToDo(c *gin.Context) {
	todo, ok := h.loadToDo(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	tasks, err := h.Tasks.ListByToDo(ctx, todo.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	collaborators, err := h.ToDos.Collaborators(ctx, todo.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	owner, err := h.Users.GetByID(ctx, todo.OwnerID)
	if err != nil {
		h.fail(c, err)
		return
	}
	states, err := h.States.List(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.render(c, http.StatusOK, "todo.html", gin.H{
		"ToDo":          todo,
		"Owner":         owner,
		"Tasks":         tasks,
		"Collaborators": collaborators,
		"States":        states,
		"Priorities":    domain.Priorities(),
		"CanManage":     todo.IsOwner(currentUser(c).ID) || currentUser(c).IsAdmin(),
	})
}

func (h *Handler) UpdateToDo(c *gin.Context) {
	todo, ok := h.loadToDo(c, "id")
	if !ok || !h.requireManage(c, todo) {
		return
	}
	todo.Title = c.PostForm("title")
	todo.Description = strings.TrimSpace(c.PostForm("description"))
	if err := h.ToDos.Update(c.Request.Context(), todo); err != nil {
		h.fail(c, err)
		return
	}
	redirect(c, fmt.Sprintf("/todos/%d", todo.ID), "List updated")
}

func (h *Handler) DeleteToDo(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.failStatus(c, http.StatusBadRequest, "invalid id")
		return
	}
	user := currentUser(c)
	if err := h.ToDos.Delete(c.Request.Context(), user, id); err != nil {
		h.fail(c, err)
		return
	}
	h.AuditService.Log(c.Request.Context(), user.ID, domain.AuditActionToDoDelete, domain.AuditCategoryToDo,
		map[string]interface{}{"todo_id": id})
	redirect(c, "/todos", "List deleted")
}

// AddCollaborator shares the todo with the user named by the "email" or
// "user_id" form field.
func (h *Handler) AddCollaborator(c *gin.Context) {
	todo, ok := h.loadToDo(c, "id")
	if !ok || !h.requireManage(c, todo) {
		return
	}
	ctx := c.Request.Context()

	var target *domain.User
	var err error
	if email := c.PostForm("email"); email != "" {
		target, err = h.Users.GetByEmail(ctx, email)
	} else {
		uid, perr := strconv.ParseInt(c.PostForm("user_id"), 10, 64)
		if perr != nil {
			h.failStatus(c, http.StatusBadRequest, "email or user_id required")
			return
		}
		target, err = h.Users.GetByID(ctx, uid)
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	added, err := h.ToDos.AddCollaborator(ctx, todo.ID, target.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	location := fmt.Sprintf("/todos/%d", todo.ID)
	if !added {
		redirect(c, location, target.DisplayName()+" is already a collaborator")
		return
	}
	h.AuditService.LogCollaborator(ctx, currentUser(c).ID, todo.ID, target.ID, true)

	// the share is committed, a failed notification must not undo the redirect
	msg := fmt.Sprintf("%s shared '%s' with you.", currentUser(c).DisplayName(), todo.Title)
	if _, err := h.Notifications.SendToUser(ctx, target, domain.NotificationTitleCollaborator, msg); err != nil {
		logger.WithContext(ctx).Warn("share notification failed",
			"error", err, "todo_id", todo.ID, "user_id", target.ID)
	}
	redirect(c, location, target.DisplayName()+" added")
}

func (h *Handler) RemoveCollaborator(c *gin.Context) {
	todo, ok := h.loadToDo(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "userId")
	if !ok {
		h.failStatus(c, http.StatusBadRequest, "invalid user id")
		return
	}
	// collaborators may leave on their own
	if userID != currentUser(c).ID && !h.requireManage(c, todo) {
		return
	}

	ctx := c.Request.Context()
	if err := h.ToDos.RemoveCollaborator(ctx, todo.ID, userID); err != nil {
		h.fail(c, err)
		return
	}
	h.AuditService.LogCollaborator(ctx, currentUser(c).ID, todo.ID, userID, false)

	if userID == currentUser(c).ID && !todo.IsOwner(userID) {
		redirect(c, "/todos", "You left '"+todo.Title+"'")
		return
	}
	redirect(c, fmt.Sprintf("/todos/%d", todo.ID), "Collaborator removed")
}
