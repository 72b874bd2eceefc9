package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gnoparus/pbtodo/core"
	"github.com/gnoparus/pbtodo/service"
)

// TodoHandlers contains HTTP handlers for todo endpoints
type TodoHandlers struct {
	todoService *service.TodoService
}

// NewTodoHandlers creates new todo handlers
func NewTodoHandlers(todoService *service.TodoService) *TodoHandlers {
	return &TodoHandlers{todoService: todoService}
}

// List returns the authenticated user's todos
func (h *TodoHandlers) List(c *gin.Context) {
	userID := userIDFromContext(c)

	todos, err := h.todoService.List(c.Request.Context(), userID)
	if err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": todos})
}

// Get returns a single todo owned by the authenticated user
func (h *TodoHandlers) Get(c *gin.Context) {
	userID := userIDFromContext(c)

	todo, err := h.todoService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusOK, todo)
}

// Create creates a todo for the authenticated user
func (h *TodoHandlers) Create(c *gin.Context) {
	userID := userIDFromContext(c)

	var input service.TodoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	todo, err := h.todoService.Create(c.Request.Context(), userID, input)
	if err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusCreated, todo)
}

// Update applies a partial update to a todo owned by the authenticated user
func (h *TodoHandlers) Update(c *gin.Context) {
	userID := userIDFromContext(c)

	var input service.TodoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	todo, err := h.todoService.Update(c.Request.Context(), userID, c.Param("id"), input)
	if err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusOK, todo)
}

// Delete removes a todo owned by the authenticated user
func (h *TodoHandlers) Delete(c *gin.Context) {
	userID := userIDFromContext(c)

	if err := h.todoService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondTodoError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondTodoError(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Validation failed",
			"errors": verr.Errors,
		})
		return
	}

	switch {
	case errors.Is(err, core.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
	case errors.Is(err, core.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Todo belongs to another user"})
	case errors.Is(err, core.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Request failed"})
	}
}
