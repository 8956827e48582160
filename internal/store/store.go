// Package store persists circles for the development record service.
package store

import (
	"context"
	"errors"

	"github.com/idilsaglam/circles/internal/model"
)

var (
	ErrNotFound = errors.New("circle not found")
	ErrConflict = errors.New("circle name already taken")
)

// Store is the record collection behind the service.
type Store interface {
	List(ctx context.Context, p model.PageParams) ([]model.Circle, int, error)
	Get(ctx context.Context, id string) (model.Circle, error)
	Create(ctx context.Context, d model.NewDraft) (model.Circle, error)
	Update(ctx context.Context, p model.ExistingPatch) (model.Circle, error)
	// Delete removes every id it knows and returns how many it removed.
	Delete(ctx context.Context, ids []string) (int, error)
	Close() error
}
