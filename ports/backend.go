package ports

import (
	"context"

	"github.com/gnoparus/pbtodo/core"
)

// UserStore persists account records in the backing users collection
type UserStore interface {
	// FindByEmail returns core.ErrNotFound when no record matches.
	FindByEmail(ctx context.Context, email string) (*core.User, error)
	Create(ctx context.Context, user *core.User) (*core.User, error)
	Update(ctx context.Context, user *core.User) (*core.User, error)
}

// TodoStore persists todo records in the backing todos collection
type TodoStore interface {
	ListByOwner(ctx context.Context, ownerID string) ([]core.Todo, error)
	// Get returns core.ErrNotFound when no record matches.
	Get(ctx context.Context, id string) (*core.Todo, error)
	Create(ctx context.Context, todo *core.Todo) (*core.Todo, error)
	Update(ctx context.Context, todo *core.Todo) (*core.Todo, error)
	Delete(ctx context.Context, id string) error
}
