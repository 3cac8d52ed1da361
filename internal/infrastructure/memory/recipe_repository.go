// Package memory holds the process-local fallback repository used when the
// managed backend is not configured. State lives for the process lifetime
// only; nothing survives a restart.
package memory

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/asanchezf/recetario-api/internal/domain/entity"
	"github.com/asanchezf/recetario-api/internal/domain/repository"
)

// RecipeRepository keeps recipes in insertion order and assigns integer ids
// starting at 1. A single mutex serializes mutations so concurrent creates
// never race on the id counter.
type RecipeRepository struct {
	mu     sync.Mutex
	items  []*entity.Recipe
	nextID int64
}

func NewRecipeRepository() *RecipeRepository {
	return &RecipeRepository{nextID: 1}
}

func (r *RecipeRepository) FindByID(ctx context.Context, id int64) (*entity.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.ID == id {
			return clone(it), nil
		}
	}
	return nil, nil
}

func (r *RecipeRepository) FindAll(ctx context.Context, opts repository.ListOptions) ([]*entity.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Reverse insertion order = newest first, matching the durable backend.
	out := make([]*entity.Recipe, 0, len(r.items))
	for i := len(r.items) - 1; i >= 0; i-- {
		it := r.items[i]
		if opts.Filters.UserID != "" && it.UserID != opts.Filters.UserID {
			continue
		}
		if opts.Filters.IsPublic != nil && it.IsPublic != *opts.Filters.IsPublic {
			continue
		}
		out = append(out, clone(it))
	}
	return paginate(out, opts), nil
}

func (r *RecipeRepository) FindByUser(ctx context.Context, userID string, opts repository.ListOptions) ([]*entity.Recipe, error) {
	opts.Filters.UserID = userID
	return r.FindAll(ctx, opts)
}

func (r *RecipeRepository) SearchByIngredient(ctx context.Context, ingredient string) ([]*entity.Recipe, error) {
	all, err := r.FindAll(ctx, repository.ListOptions{})
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(ingredient)
	out := make([]*entity.Recipe, 0, len(all))
	for _, it := range all {
		b, err := json.Marshal(it.Ingredients)
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(string(b)), needle) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *RecipeRepository) Create(ctx context.Context, props entity.RecipeProps) (*entity.Recipe, error) {
	if props.UserID == "" {
		return nil, &repository.PersistenceError{Op: "create", Err: errMissingUserID}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	props.ID = r.nextID
	props.CreatedAt = time.Now().UTC()
	rec, err := entity.NewRecipe(props)
	if err != nil {
		return nil, err
	}
	r.nextID++
	r.items = append(r.items, rec)
	return clone(rec), nil
}

func (r *RecipeRepository) Update(ctx context.Context, id int64, patch entity.RecipePatch) (*entity.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, it := range r.items {
		if it.ID != id {
			continue
		}
		rec, err := entity.NewRecipe(patch.ApplyTo(it.Props()))
		if err != nil {
			return nil, &repository.PersistenceError{Op: "update", Err: err}
		}
		r.items[i] = rec
		return clone(rec), nil
	}
	return nil, nil
}

func (r *RecipeRepository) Delete(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, it := range r.items {
		if it.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

var errMissingUserID = &entity.ValidationError{Field: "userId", Message: "is required to create a recipe"}

func paginate(items []*entity.Recipe, opts repository.ListOptions) []*entity.Recipe {
	if opts.Offset > 0 {
		if opts.Offset >= len(items) {
			return []*entity.Recipe{}
		}
		items = items[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}

func clone(r *entity.Recipe) *entity.Recipe {
	cp := *r
	cp.Steps = append([]string(nil), r.Steps...)
	cp.Ingredients = append([]string(nil), r.Ingredients...)
	if r.Description != nil {
		d := *r.Description
		cp.Description = &d
	}
	if r.ImageURL != nil {
		u := *r.ImageURL
		cp.ImageURL = &u
	}
	return &cp
}

var _ repository.RecipeRepository = (*RecipeRepository)(nil)
