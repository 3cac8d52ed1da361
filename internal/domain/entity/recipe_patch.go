package entity

import "github.com/asanchezf/recetario-api/pkg/optional"

// RecipePatch is a partial update: only fields the caller actually provided
// are applied. Ownership (UserID) and CreatedAt are immutable and therefore
// not part of the patch.
type RecipePatch struct {
	Name        optional.Value[string]   `json:"name"`
	Description optional.Value[string]   `json:"description"`
	Steps       optional.Value[[]string] `json:"steps"`
	Ingredients optional.Value[[]string] `json:"ingredients"`
	IsPublic    optional.Value[bool]     `json:"isPublic"`
	ImageURL    optional.Value[string]   `json:"imageUrl"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p RecipePatch) IsEmpty() bool {
	return !p.Name.IsSet() && !p.Description.IsSet() && !p.Steps.IsSet() &&
		!p.Ingredients.IsSet() && !p.IsPublic.IsSet() && !p.ImageURL.IsSet()
}

// ApplyTo merges the patch over existing props and returns the candidate a
// fresh entity is built from. An explicit null clears nullable fields; for
// non-nullable fields it degrades to the zero value so validation rejects it.
func (p RecipePatch) ApplyTo(props RecipeProps) RecipeProps {
	if p.Name.IsSet() {
		props.Name = p.Name.Or("")
	}
	if p.Description.IsSet() {
		if v, ok := p.Description.Get(); ok {
			props.Description = &v
		} else {
			props.Description = nil
		}
	}
	if p.Steps.IsSet() {
		props.Steps = p.Steps.Or(nil)
	}
	if p.Ingredients.IsSet() {
		props.Ingredients = p.Ingredients.Or(nil)
	}
	if p.IsPublic.IsSet() {
		v := p.IsPublic.Or(true)
		props.IsPublic = &v
	}
	if p.ImageURL.IsSet() {
		if v, ok := p.ImageURL.Get(); ok {
			props.ImageURL = &v
		} else {
			props.ImageURL = nil
		}
	}
	return props
}
