package application

import (
	"context"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asanchezf/recetario-api/internal/domain/entity"
	repo "github.com/asanchezf/recetario-api/internal/domain/repository"
	"github.com/asanchezf/recetario-api/internal/infrastructure/memory"
	"github.com/asanchezf/recetario-api/pkg/optional"
)

func newTestService() *Service {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewService(memory.NewRecipeRepository(), logger, nil, "", nil, nil, "")
}

func validInput() CreateRecipeInput {
	return CreateRecipeInput{
		Name:        "Tortilla de patatas",
		Steps:       []string{"peel", "fry", "mix"},
		Ingredients: []string{"potato", "egg"},
	}
}

func TestCreate_OwnerIsCaller(t *testing.T) {
	svc := newTestService()
	rec, err := svc.Create(context.Background(), validInput(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", rec.UserID)
	assert.True(t, rec.IsPublic)
	assert.Equal(t, int64(1), rec.ID)
}

func TestCreate_RequiresStepsAndIngredients(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	in := validInput()
	in.Steps = nil
	_, err := svc.Create(ctx, in, "user-1")
	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "steps", verr.Field)

	in = validInput()
	in.Ingredients = []string{}
	_, err = svc.Create(ctx, in, "user-1")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "ingredients", verr.Field)
}

func TestCreate_EntityValidation(t *testing.T) {
	svc := newTestService()
	in := validInput()
	in.Name = "ab"
	_, err := svc.Create(context.Background(), in, "user-1")
	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
}

// recordingRepo counts calls so tests can prove input validation short-circuits
// before storage is touched.
type recordingRepo struct {
	repo.RecipeRepository
	calls int
}

func (r *recordingRepo) FindByID(ctx context.Context, id int64) (*entity.Recipe, error) {
	r.calls++
	return r.RecipeRepository.FindByID(ctx, id)
}

func (r *recordingRepo) Delete(ctx context.Context, id int64) (bool, error) {
	r.calls++
	return r.RecipeRepository.Delete(ctx, id)
}

func TestGetByID_NonNumericFailsBeforeRepo(t *testing.T) {
	rec := &recordingRepo{RecipeRepository: memory.NewRecipeRepository()}
	svc := newTestService()
	svc.Repo = rec

	_, err := svc.GetByID(context.Background(), "abc")
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, rec.calls)

	_, err = svc.GetByID(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, rec.calls)
}

func TestGetByID_AbsenceIsTransparent(t *testing.T) {
	svc := newTestService()
	got, err := svc.GetByID(context.Background(), "42")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetAll_IgnoresCallerFilters(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	_, err := svc.Create(ctx, validInput(), "user-1")
	require.NoError(t, err)

	// Filters smuggled through list options are dropped for the public list.
	got, err := svc.GetAll(ctx, repo.ListOptions{Filters: repo.Filters{UserID: "someone-else"}})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestGetAll_NewestFirst(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		in := validInput()
		in.Name = fmt.Sprintf("Recipe %d", i)
		_, err := svc.Create(ctx, in, "user-1")
		require.NoError(t, err)
	}

	got, err := svc.GetAll(ctx, repo.ListOptions{})
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, "Recipe 5", got[0].Name)
	assert.Equal(t, "Recipe 1", got[4].Name)
}

func TestGetMine(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	_, err := svc.Create(ctx, validInput(), "user-1")
	require.NoError(t, err)
	_, err = svc.Create(ctx, validInput(), "user-2")
	require.NoError(t, err)

	got, err := svc.GetMine(ctx, "user-1", repo.ListOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "user-1", got[0].UserID)

	_, err = svc.GetMine(ctx, "", repo.ListOptions{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdate_OwnershipEnforced(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	rec, err := svc.Create(ctx, validInput(), "user-1")
	require.NoError(t, err)

	_, err = svc.Update(ctx, "1", entity.RecipePatch{Name: optional.Of("Hacked")}, "user-2")
	require.ErrorIs(t, err, ErrForbidden)

	stored, err := svc.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, rec.Name, stored.Name)
}

func TestUpdate_PartialNameOnly(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	_, err := svc.Create(ctx, validInput(), "user-1")
	require.NoError(t, err)

	got, err := svc.Update(ctx, "1", entity.RecipePatch{Name: optional.Of("Tortilla francesa")}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Tortilla francesa", got.Name)
	assert.Equal(t, []string{"peel", "fry", "mix"}, got.Steps)
}

func TestUpdate_InvalidMergeLeavesRecipeUnchanged(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	_, err := svc.Create(ctx, validInput(), "user-1")
	require.NoError(t, err)

	_, err = svc.Update(ctx, "1", entity.RecipePatch{Name: optional.Of("ab")}, "user-1")
	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)

	stored, err := svc.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Tortilla de patatas", stored.Name)
}

func TestUpdate_NotFoundAndBadID(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Update(ctx, "42", entity.RecipePatch{Name: optional.Of("Nope")}, "user-1")
	require.ErrorIs(t, err, ErrRecipeNotFound)

	_, err = svc.Update(ctx, "abc", entity.RecipePatch{}, "user-1")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDelete_NoOwnershipCheck(t *testing.T) {
	// Deletion ownership is enforced one layer up, in the HTTP handler.
	svc := newTestService()
	ctx := context.Background()
	_, err := svc.Create(ctx, validInput(), "user-1")
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, "1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Delete(ctx, "1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDelete_NonNumericFailsBeforeRepo(t *testing.T) {
	rec := &recordingRepo{RecipeRepository: memory.NewRecipeRepository()}
	svc := newTestService()
	svc.Repo = rec

	_, err := svc.Delete(context.Background(), "abc")
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, rec.calls)
}

func TestSearchByIngredient_RepoFallback(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	in := validInput()
	in.Ingredients = []string{"Tomate", "pepino"}
	_, err := svc.Create(ctx, in, "user-1")
	require.NoError(t, err)

	got, err := svc.SearchByIngredient(ctx, "tomate")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.SearchByIngredient(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUploadImage_RequiresStorage(t *testing.T) {
	svc := newTestService()
	_, err := svc.UploadImage(context.Background(), "1", "user-1", nil, "img.png", "image/png")
	require.Error(t, err)
}
