package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/asanchezf/recetario-api/internal/domain/entity"
	"github.com/asanchezf/recetario-api/internal/domain/repository"
)

const recipesTable = "recipes"

// RecipeRepository implements the domain contract over PostgREST. Reads go
// through the caller-scoped client; every mutation goes through Clients.Writer
// (elevated credential when available).
type RecipeRepository struct {
	clients *Clients
}

func NewRecipeRepository(clients *Clients) *RecipeRepository {
	return &RecipeRepository{clients: clients}
}

// recipeRow mirrors the storage shape: snake_case columns, steps/ingredients
// as JSON arrays, timestamps as ISO-8601 strings.
type recipeRow struct {
	ID          int64     `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Steps       []string  `json:"steps"`
	Ingredients []string  `json:"ingredients"`
	UserID      string    `json:"user_id"`
	IsPublic    bool      `json:"is_public"`
	ImageURL    *string   `json:"image_url"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

func (row recipeRow) toEntity() (*entity.Recipe, error) {
	isPublic := row.IsPublic
	return entity.NewRecipe(entity.RecipeProps{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Steps:       row.Steps,
		Ingredients: row.Ingredients,
		UserID:      row.UserID,
		IsPublic:    &isPublic,
		ImageURL:    row.ImageURL,
		CreatedAt:   row.CreatedAt,
	})
}

func rowsToEntities(rows []recipeRow) ([]*entity.Recipe, error) {
	out := make([]*entity.Recipe, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toEntity()
		if err != nil {
			return nil, &repository.PersistenceError{Op: "decode", Err: err}
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *RecipeRepository) FindByID(ctx context.Context, id int64) (*entity.Recipe, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("id", "eq."+strconv.FormatInt(id, 10))
	q.Set("limit", "1")

	var rows []recipeRow
	if err := r.clients.Reader().rest(ctx, http.MethodGet, recipesTable, q, nil, &rows); err != nil {
		return nil, &repository.PersistenceError{Op: "findById", Err: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	rec, err := rows[0].toEntity()
	if err != nil {
		return nil, &repository.PersistenceError{Op: "findById", Err: err}
	}
	return rec, nil
}

func (r *RecipeRepository) FindAll(ctx context.Context, opts repository.ListOptions) ([]*entity.Recipe, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "created_at.desc")
	if opts.Filters.UserID != "" {
		q.Set("user_id", "eq."+opts.Filters.UserID)
	}
	if opts.Filters.IsPublic != nil {
		q.Set("is_public", "eq."+strconv.FormatBool(*opts.Filters.IsPublic))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
		q.Set("offset", strconv.Itoa(opts.Offset))
	}

	var rows []recipeRow
	if err := r.clients.Reader().rest(ctx, http.MethodGet, recipesTable, q, nil, &rows); err != nil {
		return nil, &repository.PersistenceError{Op: "findAll", Err: err}
	}
	return rowsToEntities(rows)
}

func (r *RecipeRepository) FindByUser(ctx context.Context, userID string, opts repository.ListOptions) ([]*entity.Recipe, error) {
	opts.Filters.UserID = userID
	return r.FindAll(ctx, opts)
}

// SearchByIngredient fetches the ordered table and filters client-side.
// JSONB containment queries depend on the exact shape of the ingredients
// column, so this trades a full scan for correctness; fine at current volume.
func (r *RecipeRepository) SearchByIngredient(ctx context.Context, ingredient string) ([]*entity.Recipe, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "created_at.desc")

	var rows []recipeRow
	if err := r.clients.Reader().rest(ctx, http.MethodGet, recipesTable, q, nil, &rows); err != nil {
		return nil, &repository.PersistenceError{Op: "searchByIngredient", Err: err}
	}

	needle := strings.ToLower(ingredient)
	matched := rows[:0]
	for _, row := range rows {
		b, err := json.Marshal(row.Ingredients)
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(string(b)), needle) {
			matched = append(matched, row)
		}
	}
	return rowsToEntities(matched)
}

func (r *RecipeRepository) Create(ctx context.Context, props entity.RecipeProps) (*entity.Recipe, error) {
	// Defense in depth: the entity validates this too, but a row without an
	// owner must never reach storage regardless of how we were called.
	if props.UserID == "" {
		return nil, &repository.PersistenceError{Op: "create", Err: fmt.Errorf("userId is required to create a recipe")}
	}

	isPublic := true
	if props.IsPublic != nil {
		isPublic = *props.IsPublic
	}
	steps := props.Steps
	if steps == nil {
		steps = []string{}
	}
	ingredients := props.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	insert := recipeRow{
		Name:        props.Name,
		Description: props.Description,
		Steps:       steps,
		Ingredients: ingredients,
		UserID:      props.UserID,
		IsPublic:    isPublic,
		ImageURL:    props.ImageURL,
	}

	var rows []recipeRow
	if err := r.clients.Writer().rest(ctx, http.MethodPost, recipesTable, url.Values{}, insert, &rows); err != nil {
		return nil, &repository.PersistenceError{Op: "create", Err: err}
	}
	if len(rows) == 0 {
		return nil, &repository.PersistenceError{Op: "create", Err: fmt.Errorf("backend returned no row")}
	}
	rec, err := rows[0].toEntity()
	if err != nil {
		return nil, &repository.PersistenceError{Op: "create", Err: err}
	}
	return rec, nil
}

func (r *RecipeRepository) Update(ctx context.Context, id int64, patch entity.RecipePatch) (*entity.Recipe, error) {
	// Only explicitly provided keys are sent, so the backend sets exactly
	// those columns and leaves the rest untouched.
	update := map[string]any{}
	if patch.Name.IsSet() {
		update["name"] = patch.Name.Or("")
	}
	if patch.Description.IsSet() {
		if v, ok := patch.Description.Get(); ok {
			update["description"] = v
		} else {
			update["description"] = nil
		}
	}
	if patch.Steps.IsSet() {
		update["steps"] = patch.Steps.Or([]string{})
	}
	if patch.Ingredients.IsSet() {
		update["ingredients"] = patch.Ingredients.Or([]string{})
	}
	if patch.IsPublic.IsSet() {
		update["is_public"] = patch.IsPublic.Or(true)
	}
	if patch.ImageURL.IsSet() {
		if v, ok := patch.ImageURL.Get(); ok {
			update["image_url"] = v
		} else {
			update["image_url"] = nil
		}
	}
	if len(update) == 0 {
		return r.FindByID(ctx, id)
	}

	q := url.Values{}
	q.Set("id", "eq."+strconv.FormatInt(id, 10))

	var rows []recipeRow
	if err := r.clients.Writer().rest(ctx, http.MethodPatch, recipesTable, q, update, &rows); err != nil {
		return nil, &repository.PersistenceError{Op: "update", Err: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	rec, err := rows[0].toEntity()
	if err != nil {
		return nil, &repository.PersistenceError{Op: "update", Err: err}
	}
	return rec, nil
}

func (r *RecipeRepository) Delete(ctx context.Context, id int64) (bool, error) {
	q := url.Values{}
	q.Set("id", "eq."+strconv.FormatInt(id, 10))

	var rows []recipeRow
	if err := r.clients.Writer().rest(ctx, http.MethodDelete, recipesTable, q, nil, &rows); err != nil {
		return false, &repository.PersistenceError{Op: "delete", Err: err}
	}
	return len(rows) > 0, nil
}

var _ repository.RecipeRepository = (*RecipeRepository)(nil)
