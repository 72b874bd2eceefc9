package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gnoparus/pbtodo/core"
	"github.com/gnoparus/pbtodo/ports"
	"go.uber.org/zap"
)

// TodoInput is the mutable part of a todo item as submitted by a client
type TodoInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Completed   bool   `json:"completed"`
}

// TodoService owns todo CRUD on top of the backing collection, with
// validation and per-record ownership checks.
type TodoService struct {
	todos ports.TodoStore
	log   *zap.Logger
}

// NewTodoService creates a new todo service
func NewTodoService(todos ports.TodoStore, log *zap.Logger) *TodoService {
	return &TodoService{todos: todos, log: log}
}

// List returns the owner's todos
func (s *TodoService) List(ctx context.Context, ownerID string) ([]core.Todo, error) {
	todos, err := s.todos.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// Get returns one todo, enforcing ownership
func (s *TodoService) Get(ctx context.Context, ownerID, id string) (*core.Todo, error) {
	return s.ownedTodo(ctx, ownerID, id)
}

// Create validates the input and stores a new todo for the owner
func (s *TodoService) Create(ctx context.Context, ownerID string, input TodoInput) (*core.Todo, error) {
	if input.Priority == "" {
		input.Priority = core.PriorityMedium
	}

	if err := validateTodoInput(input); err != nil {
		return nil, err
	}

	todo, err := s.todos.Create(ctx, &core.Todo{
		OwnerID:     ownerID,
		Title:       core.SanitizeInput(input.Title),
		Description: core.SanitizeInput(input.Description),
		Priority:    input.Priority,
		Completed:   input.Completed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	s.log.Info("todo created", zap.String("todo_id", todo.ID), zap.String("owner_id", ownerID))
	return todo, nil
}

// Update validates the input and patches an owned todo
func (s *TodoService) Update(ctx context.Context, ownerID, id string, input TodoInput) (*core.Todo, error) {
	existing, err := s.ownedTodo(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if input.Priority == "" {
		input.Priority = existing.Priority
	}
	if err := validateTodoInput(input); err != nil {
		return nil, err
	}

	existing.Title = core.SanitizeInput(input.Title)
	existing.Description = core.SanitizeInput(input.Description)
	existing.Priority = input.Priority
	existing.Completed = input.Completed

	updated, err := s.todos.Update(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	return updated, nil
}

// Delete removes an owned todo
func (s *TodoService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.ownedTodo(ctx, ownerID, id); err != nil {
		return err
	}

	if err := s.todos.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	s.log.Info("todo deleted", zap.String("todo_id", id), zap.String("owner_id", ownerID))
	return nil
}

// ownedTodo fetches a todo and verifies it belongs to ownerID. A record
// owned by someone else reports forbidden, not missing, because the ID
// was valid and hiding that helps nobody here.
func (s *TodoService) ownedTodo(ctx context.Context, ownerID, id string) (*core.Todo, error) {
	todo, err := s.todos.Get(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch todo: %w", err)
	}

	if todo.OwnerID != ownerID {
		return nil, core.ErrForbidden
	}
	return todo, nil
}

func validateTodoInput(input TodoInput) error {
	result := core.Merge(
		core.ValidateTodoTitle(input.Title),
		core.ValidateTodoDescription(input.Description),
		core.ValidatePriority(input.Priority),
	)
	if !result.IsValid {
		return &ValidationError{Errors: result.Errors}
	}
	return nil
}
