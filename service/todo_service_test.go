package service

import (
	"context"
	"testing"

	"github.com/gnoparus/pbtodo/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockTodoStore struct {
	ListByOwnerFunc func(ctx context.Context, ownerID string) ([]core.Todo, error)
	GetFunc         func(ctx context.Context, id string) (*core.Todo, error)
	CreateFunc      func(ctx context.Context, todo *core.Todo) (*core.Todo, error)
	UpdateFunc      func(ctx context.Context, todo *core.Todo) (*core.Todo, error)
	DeleteFunc      func(ctx context.Context, id string) error
}

func (m *mockTodoStore) ListByOwner(ctx context.Context, ownerID string) ([]core.Todo, error) {
	return m.ListByOwnerFunc(ctx, ownerID)
}

func (m *mockTodoStore) Get(ctx context.Context, id string) (*core.Todo, error) {
	return m.GetFunc(ctx, id)
}

func (m *mockTodoStore) Create(ctx context.Context, todo *core.Todo) (*core.Todo, error) {
	return m.CreateFunc(ctx, todo)
}

func (m *mockTodoStore) Update(ctx context.Context, todo *core.Todo) (*core.Todo, error) {
	return m.UpdateFunc(ctx, todo)
}

func (m *mockTodoStore) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

func TestTodoCreate_SanitizesAndDefaults(t *testing.T) {
	var stored *core.Todo
	todos := &mockTodoStore{
		CreateFunc: func(ctx context.Context, todo *core.Todo) (*core.Todo, error) {
			stored = todo
			copied := *todo
			copied.ID = "todo_1"
			return &copied, nil
		},
	}

	svc := NewTodoService(todos, zap.NewNop())

	created, err := svc.Create(context.Background(), "user_1", TodoInput{
		Title:       "buy <b>milk</b>",
		Description: `2% & "fresh"`,
	})
	require.NoError(t, err)
	assert.Equal(t, "todo_1", created.ID)

	require.NotNil(t, stored)
	assert.Equal(t, "user_1", stored.OwnerID)
	assert.Equal(t, "buy &lt;b&gt;milk&lt;&#x2F;b&gt;", stored.Title)
	assert.Equal(t, "2% &amp; &quot;fresh&quot;", stored.Description)
	assert.Equal(t, core.PriorityMedium, stored.Priority)
}

func TestTodoCreate_ValidationErrors(t *testing.T) {
	svc := NewTodoService(&mockTodoStore{}, zap.NewNop())

	_, err := svc.Create(context.Background(), "user_1", TodoInput{Title: "", Priority: "urgent"})
	require.ErrorIs(t, err, core.ErrValidation)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 2)
}

func ownedTodoStore(owner string) *mockTodoStore {
	return &mockTodoStore{
		GetFunc: func(ctx context.Context, id string) (*core.Todo, error) {
			if id != "todo_1" {
				return nil, core.ErrNotFound
			}
			return &core.Todo{
				ID: "todo_1", OwnerID: owner, Title: "buy milk", Priority: core.PriorityLow,
			}, nil
		},
	}
}

func TestTodoGet_EnforcesOwnership(t *testing.T) {
	svc := NewTodoService(ownedTodoStore("user_1"), zap.NewNop())
	ctx := context.Background()

	todo, err := svc.Get(ctx, "user_1", "todo_1")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", todo.Title)

	_, err = svc.Get(ctx, "user_2", "todo_1")
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.Get(ctx, "user_1", "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestTodoUpdate_KeepsPriorityWhenOmitted(t *testing.T) {
	todos := ownedTodoStore("user_1")
	todos.UpdateFunc = func(ctx context.Context, todo *core.Todo) (*core.Todo, error) {
		return todo, nil
	}

	svc := NewTodoService(todos, zap.NewNop())

	updated, err := svc.Update(context.Background(), "user_1", "todo_1", TodoInput{
		Title:     "buy oat milk",
		Completed: true,
	})
	require.NoError(t, err)
	assert.Equal(t, core.PriorityLow, updated.Priority)
	assert.True(t, updated.Completed)
}

func TestTodoDelete_EnforcesOwnership(t *testing.T) {
	deleted := false
	todos := ownedTodoStore("user_1")
	todos.DeleteFunc = func(ctx context.Context, id string) error {
		deleted = true
		return nil
	}

	svc := NewTodoService(todos, zap.NewNop())
	ctx := context.Background()

	assert.ErrorIs(t, svc.Delete(ctx, "user_2", "todo_1"), core.ErrForbidden)
	assert.False(t, deleted)

	require.NoError(t, svc.Delete(ctx, "user_1", "todo_1"))
	assert.True(t, deleted)
}

func TestTodoList(t *testing.T) {
	todos := &mockTodoStore{
		ListByOwnerFunc: func(ctx context.Context, ownerID string) ([]core.Todo, error) {
			assert.Equal(t, "user_1", ownerID)
			return []core.Todo{{ID: "todo_1"}, {ID: "todo_2"}}, nil
		},
	}

	svc := NewTodoService(todos, zap.NewNop())

	list, err := svc.List(context.Background(), "user_1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
