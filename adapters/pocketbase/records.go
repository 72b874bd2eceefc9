package pocketbase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gnoparus/pbtodo/core"
	"github.com/gnoparus/pbtodo/ports"
)

const (
	usersCollection = "users"
	todosCollection = "todos"
)

// recordTime handles the backend's "2006-01-02 15:04:05.000Z" timestamps
// and falls back to RFC 3339
type recordTime struct {
	time.Time
}

const backendTimeLayout = "2006-01-02 15:04:05.000Z"

func (t *recordTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}

	parsed, err := time.Parse(backendTimeLayout, s)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, s)
	}
	if err != nil {
		return fmt.Errorf("unrecognized timestamp %q", s)
	}

	t.Time = parsed
	return nil
}

func (t recordTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(backendTimeLayout) + `"`), nil
}

type userRecord struct {
	ID           string     `json:"id,omitempty"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"passwordHash"`
	Created      recordTime `json:"created,omitempty"`
	Updated      recordTime `json:"updated,omitempty"`
}

// userWrite is the payload for create/update calls; the backend owns
// the id and timestamp fields
type userWrite struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"passwordHash"`
}

func (r userRecord) toUser() *core.User {
	return &core.User{
		ID:           r.ID,
		Email:        r.Email,
		Name:         r.Name,
		PasswordHash: r.PasswordHash,
		Created:      r.Created.Time,
		Updated:      r.Updated.Time,
	}
}

// UserStore implements ports.UserStore on top of the users collection
type UserStore struct {
	client *Client
}

// NewUserStore creates a UserStore backed by the given client
func NewUserStore(client *Client) *UserStore {
	return &UserStore{client: client}
}

var _ ports.UserStore = (*UserStore)(nil)

// FindByEmail looks a user up with a filter-string query
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*core.User, error) {
	filter := fmt.Sprintf(`email = "%s"`, escapeFilterValue(email))

	var records []userRecord
	if err := s.client.ListRecords(ctx, usersCollection, filter, "", 1, &records); err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	if len(records) == 0 {
		return nil, core.ErrNotFound
	}

	return records[0].toUser(), nil
}

// Create inserts a new user record
func (s *UserStore) Create(ctx context.Context, user *core.User) (*core.User, error) {
	record := userWrite{
		Email:        user.Email,
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
	}

	var stored userRecord
	if err := s.client.CreateRecord(ctx, usersCollection, record, &stored); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return stored.toUser(), nil
}

// Update patches an existing user record
func (s *UserStore) Update(ctx context.Context, user *core.User) (*core.User, error) {
	if user.ID == "" {
		return nil, errors.New("user ID is required for update")
	}

	record := userWrite{
		Email:        user.Email,
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
	}

	var stored userRecord
	if err := s.client.UpdateRecord(ctx, usersCollection, user.ID, record, &stored); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return stored.toUser(), nil
}

// todoWrite is the payload for create/update calls
type todoWrite struct {
	Owner       string `json:"owner"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Completed   bool   `json:"completed"`
}

type todoRecord struct {
	ID          string     `json:"id,omitempty"`
	Owner       string     `json:"owner"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Completed   bool       `json:"completed"`
	Created     recordTime `json:"created,omitempty"`
	Updated     recordTime `json:"updated,omitempty"`
}

func (r todoRecord) toTodo() core.Todo {
	return core.Todo{
		ID:          r.ID,
		OwnerID:     r.Owner,
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Completed:   r.Completed,
		Created:     r.Created.Time,
		Updated:     r.Updated.Time,
	}
}

// TodoStore implements ports.TodoStore on top of the todos collection
type TodoStore struct {
	client *Client
}

// NewTodoStore creates a TodoStore backed by the given client
func NewTodoStore(client *Client) *TodoStore {
	return &TodoStore{client: client}
}

var _ ports.TodoStore = (*TodoStore)(nil)

// ListByOwner returns the owner's todos, newest first
func (s *TodoStore) ListByOwner(ctx context.Context, ownerID string) ([]core.Todo, error) {
	filter := fmt.Sprintf(`owner = "%s"`, escapeFilterValue(ownerID))

	var records []todoRecord
	if err := s.client.ListRecords(ctx, todosCollection, filter, "-created", 200, &records); err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}

	todos := make([]core.Todo, 0, len(records))
	for _, r := range records {
		todos = append(todos, r.toTodo())
	}
	return todos, nil
}

// Get fetches one todo by record ID
func (s *TodoStore) Get(ctx context.Context, id string) (*core.Todo, error) {
	var record todoRecord
	if err := s.client.GetRecord(ctx, todosCollection, id, &record); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Code == 404 {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch todo: %w", err)
	}

	todo := record.toTodo()
	return &todo, nil
}

// Create inserts a new todo record
func (s *TodoStore) Create(ctx context.Context, todo *core.Todo) (*core.Todo, error) {
	record := todoWrite{
		Owner:       todo.OwnerID,
		Title:       todo.Title,
		Description: todo.Description,
		Priority:    todo.Priority,
		Completed:   todo.Completed,
	}

	var stored todoRecord
	if err := s.client.CreateRecord(ctx, todosCollection, record, &stored); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	result := stored.toTodo()
	return &result, nil
}

// Update patches an existing todo record
func (s *TodoStore) Update(ctx context.Context, todo *core.Todo) (*core.Todo, error) {
	if todo.ID == "" {
		return nil, errors.New("todo ID is required for update")
	}

	record := todoWrite{
		Owner:       todo.OwnerID,
		Title:       todo.Title,
		Description: todo.Description,
		Priority:    todo.Priority,
		Completed:   todo.Completed,
	}

	var stored todoRecord
	if err := s.client.UpdateRecord(ctx, todosCollection, todo.ID, record, &stored); err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	result := stored.toTodo()
	return &result, nil
}

// Delete removes a todo record
func (s *TodoStore) Delete(ctx context.Context, id string) error {
	if err := s.client.DeleteRecord(ctx, todosCollection, id); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Code == 404 {
			return core.ErrNotFound
		}
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return nil
}
