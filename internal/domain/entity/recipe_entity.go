package entity

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// MinNameLength is the minimum recipe name length after trimming.
	MinNameLength = 3
	// MaxImageURLLength caps the stored image URL.
	MaxImageURLLength = 2000
)

// ValidationError marks domain data the caller can fix. Field names follow
// the transport (camelCase) representation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Recipe is the aggregate root for the recipe domain. Values are built through
// NewRecipe so an invalid recipe never exists in memory. JSON tags are the
// transport representation (camelCase), not the storage column names.
type Recipe struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Steps       []string  `json:"steps"`
	Ingredients []string  `json:"ingredients"`
	UserID      string    `json:"userId"`
	IsPublic    bool      `json:"isPublic"`
	ImageURL    *string   `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RecipeProps is the property bag NewRecipe validates. ID and CreatedAt are
// storage-assigned and only populated when rehydrating a persisted row.
type RecipeProps struct {
	ID          int64
	Name        string
	Description *string
	Steps       []string
	Ingredients []string
	UserID      string
	IsPublic    *bool // defaults to true when nil
	ImageURL    *string
	CreatedAt   time.Time
}

// NewRecipe validates props and returns a fully populated Recipe.
// A recipe must always have a name and belong to a user; those two rules hold
// before any persistence attempt. Absent steps/ingredients become empty slices
// here; non-emptiness is demanded by the create workflow, not by the entity.
func NewRecipe(props RecipeProps) (*Recipe, error) {
	name := strings.TrimSpace(props.Name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "is required"}
	}
	if len([]rune(name)) < MinNameLength {
		return nil, &ValidationError{Field: "name", Message: fmt.Sprintf("must be at least %d characters", MinNameLength)}
	}
	if props.UserID == "" {
		return nil, &ValidationError{Field: "userId", Message: "is required: a recipe must belong to a user"}
	}
	if err := validateImageURL(props.ImageURL); err != nil {
		return nil, err
	}

	steps := props.Steps
	if steps == nil {
		steps = []string{}
	}
	ingredients := props.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	isPublic := true
	if props.IsPublic != nil {
		isPublic = *props.IsPublic
	}

	return &Recipe{
		ID:          props.ID,
		Name:        name,
		Description: props.Description,
		Steps:       steps,
		Ingredients: ingredients,
		UserID:      props.UserID,
		IsPublic:    isPublic,
		ImageURL:    props.ImageURL,
		CreatedAt:   props.CreatedAt,
	}, nil
}

func validateImageURL(raw *string) error {
	if raw == nil {
		return nil
	}
	if len(*raw) > MaxImageURLLength {
		return &ValidationError{Field: "imageUrl", Message: fmt.Sprintf("must not exceed %d characters", MaxImageURLLength)}
	}
	u, err := url.Parse(*raw)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &ValidationError{Field: "imageUrl", Message: "must be an absolute http or https URL"}
	}
	return nil
}

// Props returns the recipe as a property bag, the inverse of NewRecipe.
// The update workflow merges a patch over this and revalidates.
func (r *Recipe) Props() RecipeProps {
	isPublic := r.IsPublic
	return RecipeProps{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Steps:       r.Steps,
		Ingredients: r.Ingredients,
		UserID:      r.UserID,
		IsPublic:    &isPublic,
		ImageURL:    r.ImageURL,
		CreatedAt:   r.CreatedAt,
	}
}

// OwnedBy reports whether userID owns the recipe.
func (r *Recipe) OwnedBy(userID string) bool {
	return r.UserID == userID
}
