package handlers

import (
	"net/http"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

// loadToDo fetches the :id todo and checks the current user may see it.
// On failure the response is already written.
func (h *Handler) loadToDo(c *gin.Context, param string) (*domain.ToDo, bool) {
	id, ok := paramID(c, param)
	if !ok {
		h.failStatus(c, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	todo, err := h.ToDos.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return todo, h.checkAccess(c, todo)
}

// loadTask fetches the :id task together with its todo and checks access
func (h *Handler) loadTask(c *gin.Context, param string) (*domain.Task, *domain.ToDo, bool) {
	id, ok := paramID(c, param)
	if !ok {
		h.failStatus(c, http.StatusBadRequest, "invalid id")
		return nil, nil, false
	}
	task, err := h.Tasks.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return nil, nil, false
	}
	todo, err := h.ToDos.Get(c.Request.Context(), task.ToDoID)
	if err != nil {
		h.fail(c, err)
		return nil, nil, false
	}
	return task, todo, h.checkAccess(c, todo)
}

func (h *Handler) checkAccess(c *gin.Context, todo *domain.ToDo) bool {
	ok, err := h.ToDos.CanAccess(c.Request.Context(), todo, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return false
	}
	if !ok {
		h.fail(c, service.ErrForbidden)
		return false
	}
	return true
}

func (h *Handler) requireManage(c *gin.Context, todo *domain.ToDo) bool {
	if !service.CanManage(todo, currentUser(c)) {
		h.fail(c, service.ErrForbidden)
		return false
	}
	return true
}
