package repository

import (
	"context"
	"fmt"

	"github.com/asanchezf/recetario-api/internal/domain/entity"
)

// Filters narrows list queries. Zero values mean "no filter".
type Filters struct {
	UserID   string
	IsPublic *bool
}

// ListOptions carries pagination and filtering for list queries.
type ListOptions struct {
	Limit   int
	Offset  int
	Filters Filters
}

// RecipeRepository is the persistence contract every backend implements.
// "Not found" is reported through the return values, never through an error:
// FindByID and Update return (nil, nil), Delete returns (false, nil). Errors
// are reserved for backend failures (wrapped in *PersistenceError).
type RecipeRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.Recipe, error)
	// FindAll returns recipes newest-first.
	FindAll(ctx context.Context, opts ListOptions) ([]*entity.Recipe, error)
	// FindByUser is FindAll with an implicit owner filter.
	FindByUser(ctx context.Context, userID string, opts ListOptions) ([]*entity.Recipe, error)
	// SearchByIngredient matches the ingredient text case-insensitively
	// against the serialized ingredients list.
	SearchByIngredient(ctx context.Context, ingredient string) ([]*entity.Recipe, error)
	Create(ctx context.Context, props entity.RecipeProps) (*entity.Recipe, error)
	// Update persists only the fields present in the patch.
	Update(ctx context.Context, id int64, patch entity.RecipePatch) (*entity.Recipe, error)
	// Delete reports whether a record existed and was removed.
	Delete(ctx context.Context, id int64) (bool, error)
}

// PersistenceError wraps a backend failure so callers can distinguish it from
// domain errors without knowing which backend produced it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("recipe storage: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
