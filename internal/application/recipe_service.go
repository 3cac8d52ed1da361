package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/asanchezf/recetario-api/internal/domain/entity"
	repo "github.com/asanchezf/recetario-api/internal/domain/repository"
	"github.com/asanchezf/recetario-api/pkg/helpers"
	"github.com/asanchezf/recetario-api/pkg/optional"
)

var (
	// ErrInvalidInput marks a malformed request-level argument, like a
	// non-numeric id. Raised before any repository call.
	ErrInvalidInput = errors.New("invalid input")
	// ErrRecipeNotFound means the referenced recipe does not exist.
	ErrRecipeNotFound = errors.New("recipe not found")
	// ErrForbidden means the caller is authenticated but not the owner.
	ErrForbidden = errors.New("you do not own this recipe")
)

// Service orchestrates the recipe use cases: entity validation, ownership
// enforcement, and repository calls. ES, GCS, Redis and the queue publisher
// are optional; nil disables the feature they back.
type Service struct {
	Repo      repo.RecipeRepository
	Logger    *logrus.Logger
	ES        *elasticsearch.Client
	ESIndex   string
	Publisher *helpers.RabbitPublisher
	GCS       *storage.Client
	GCSBucket string
}

func NewService(r repo.RecipeRepository, logger *logrus.Logger, es *elasticsearch.Client, esIndex string, pub *helpers.RabbitPublisher, gcs *storage.Client, gcsBucket string) *Service {
	return &Service{
		Repo:      r,
		Logger:    logger,
		ES:        es,
		ESIndex:   esIndex,
		Publisher: pub,
		GCS:       gcs,
		GCSBucket: gcsBucket,
	}
}

// CreateRecipeInput is the raw create payload; the resolved caller identity
// arrives separately and becomes the owner.
type CreateRecipeInput struct {
	Name        string
	Description *string
	Steps       []string
	Ingredients []string
	IsPublic    *bool
	ImageURL    *string
}

// Create validates the payload through the entity and persists it. The
// creator is the owner by construction, so no ownership check is needed here.
// The entity tolerates empty steps/ingredients; the create workflow does not.
func (s *Service) Create(ctx context.Context, in CreateRecipeInput, userID string) (*entity.Recipe, error) {
	if len(in.Steps) == 0 {
		return nil, &entity.ValidationError{Field: "steps", Message: "must contain at least one step"}
	}
	if len(in.Ingredients) == 0 {
		return nil, &entity.ValidationError{Field: "ingredients", Message: "must contain at least one ingredient"}
	}

	rec, err := entity.NewRecipe(entity.RecipeProps{
		Name:        in.Name,
		Description: in.Description,
		Steps:       in.Steps,
		Ingredients: in.Ingredients,
		UserID:      userID,
		IsPublic:    in.IsPublic,
		ImageURL:    in.ImageURL,
	})
	if err != nil {
		return nil, err
	}

	created, err := s.Repo.Create(ctx, rec.Props())
	if err != nil {
		return nil, err
	}
	s.enqueueIndex(ctx, ActionIndex, created)
	return created, nil
}

// GetAll returns every recipe regardless of caller, newest first.
func (s *Service) GetAll(ctx context.Context, opts repo.ListOptions) ([]*entity.Recipe, error) {
	opts.Filters = repo.Filters{}
	return s.Repo.FindAll(ctx, opts)
}

// GetByID parses the raw id and loads the recipe. Absence is transparent:
// (nil, nil) lets the caller decide whether that means a 404.
func (s *Service) GetByID(ctx context.Context, rawID string) (*entity.Recipe, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.Repo.FindByID(ctx, id)
}

// GetMine lists the caller's recipes, newest first.
func (s *Service) GetMine(ctx context.Context, userID string, opts repo.ListOptions) ([]*entity.Recipe, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	return s.Repo.FindByUser(ctx, userID, opts)
}

// Update loads the recipe, enforces ownership, revalidates the merged
// candidate through a fresh entity, and persists only the provided fields.
func (s *Service) Update(ctx context.Context, rawID string, patch entity.RecipePatch, userID string) (*entity.Recipe, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}

	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrRecipeNotFound
	}
	if !existing.OwnedBy(userID) {
		return nil, ErrForbidden
	}

	// Merge + revalidate catches invalid partial updates (e.g. blank name)
	// before anything touches storage.
	if _, err := entity.NewRecipe(patch.ApplyTo(existing.Props())); err != nil {
		return nil, err
	}

	updated, err := s.Repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrRecipeNotFound
	}
	s.enqueueIndex(ctx, ActionIndex, updated)
	return updated, nil
}

// Delete removes the recipe and reports whether it existed. It intentionally
// performs NO ownership check: enforcement for deletion lives in the HTTP
// handler, which fetches and compares before calling here. That asymmetry
// with Update is inherited behavior kept on purpose; if it ever gets fixed,
// the check belongs at this boundary, consistent with Update.
func (s *Service) Delete(ctx context.Context, rawID string) (bool, error) {
	id, err := parseID(rawID)
	if err != nil {
		return false, err
	}
	deleted, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.enqueueIndex(ctx, ActionDelete, &entity.Recipe{ID: id})
	}
	return deleted, nil
}

// UploadImage stores the image in GCS and persists its public URL on the
// recipe. Owner-only, same rule as Update.
func (s *Service) UploadImage(ctx context.Context, rawID, userID string, r io.Reader, filename, contentType string) (*entity.Recipe, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return nil, errors.New("object storage not configured")
	}
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrRecipeNotFound
	}
	if !existing.OwnedBy(userID) {
		return nil, ErrForbidden
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("recipes", strconv.FormatInt(id, 10), uuid.NewString()+ext))
	publicURL, err := helpers.UploadImageToGCS(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return nil, err
	}

	patch := entity.RecipePatch{ImageURL: optional.Of(publicURL)}
	updated, err := s.Repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrRecipeNotFound
	}
	s.enqueueIndex(ctx, ActionIndex, updated)
	return updated, nil
}

func parseID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: recipe id is required", ErrInvalidInput)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: recipe id must be numeric", ErrInvalidInput)
	}
	return id, nil
}
