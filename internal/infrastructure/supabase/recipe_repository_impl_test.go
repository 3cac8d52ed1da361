package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asanchezf/recetario-api/internal/domain/entity"
	"github.com/asanchezf/recetario-api/internal/domain/repository"
	"github.com/asanchezf/recetario-api/pkg/optional"
)

type capturedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Header http.Header
	Body   []byte
}

// newTestBackend records every request and replies with a fixed JSON body.
func newTestBackend(t *testing.T, status int, reply string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured = append(captured, capturedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

const oneRow = `[{"id":7,"name":"Gazpacho","description":"cold soup","steps":["blend"],"ingredients":["tomate"],"user_id":"user-1","is_public":true,"image_url":null,"created_at":"2025-03-01T12:00:00Z"}]`

func TestFindByID_QueryAndHeaders(t *testing.T) {
	srv, captured := newTestBackend(t, http.StatusOK, oneRow)
	repo := NewRecipeRepository(NewClients(srv.URL, "anon-key", "admin-key"))

	rec, err := repo.FindByID(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(7), rec.ID)
	assert.Equal(t, "user-1", rec.UserID)

	require.Len(t, *captured, 1)
	req := (*captured)[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/rest/v1/recipes", req.Path)
	assert.Equal(t, []string{"eq.7"}, req.Query["id"])
	assert.Equal(t, []string{"1"}, req.Query["limit"])
	// Reads use the caller-scoped credential.
	assert.Equal(t, "anon-key", req.Header.Get("apikey"))
	assert.Equal(t, "Bearer anon-key", req.Header.Get("Authorization"))
}

func TestFindByID_NotFoundIsNilNil(t *testing.T) {
	srv, _ := newTestBackend(t, http.StatusOK, `[]`)
	repo := NewRecipeRepository(NewClients(srv.URL, "anon-key", ""))

	rec, err := repo.FindByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestFindAll_OrderAndFilters(t *testing.T) {
	srv, captured := newTestBackend(t, http.StatusOK, oneRow)
	repo := NewRecipeRepository(NewClients(srv.URL, "anon-key", ""))

	pub := true
	_, err := repo.FindAll(context.Background(), repository.ListOptions{
		Limit:   10,
		Offset:  20,
		Filters: repository.Filters{UserID: "user-1", IsPublic: &pub},
	})
	require.NoError(t, err)

	req := (*captured)[0]
	assert.Equal(t, []string{"created_at.desc"}, req.Query["order"])
	assert.Equal(t, []string{"eq.user-1"}, req.Query["user_id"])
	assert.Equal(t, []string{"eq.true"}, req.Query["is_public"])
	assert.Equal(t, []string{"10"}, req.Query["limit"])
	assert.Equal(t, []string{"20"}, req.Query["offset"])
}

func TestCreate_UsesElevatedCredential(t *testing.T) {
	srv, captured := newTestBackend(t, http.StatusCreated, oneRow)
	repo := NewRecipeRepository(NewClients(srv.URL, "anon-key", "admin-key"))

	_, err := repo.Create(context.Background(), entity.RecipeProps{
		Name:        "Gazpacho",
		Steps:       []string{"blend"},
		Ingredients: []string{"tomate"},
		UserID:      "user-1",
	})
	require.NoError(t, err)

	req := (*captured)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	// Writes prefer the service-role credential when both are configured.
	assert.Equal(t, "admin-key", req.Header.Get("apikey"))
	assert.Equal(t, "return=representation", req.Header.Get("Prefer"))

	var sent map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &sent))
	assert.Equal(t, "user-1", sent["user_id"])
	assert.Equal(t, true, sent["is_public"])
}

func TestCreate_MissingUserIDNeverCallsBackend(t *testing.T) {
	srv, captured := newTestBackend(t, http.StatusCreated, oneRow)
	repo := NewRecipeRepository(NewClients(srv.URL, "anon-key", ""))

	_, err := repo.Create(context.Background(), entity.RecipeProps{Name: "Gazpacho"})
	var perr *repository.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Empty(t, *captured)
}

func TestUpdate_SendsOnlyProvidedKeys(t *testing.T) {
	srv, captured := newTestBackend(t, http.StatusOK, oneRow)
	repo := NewRecipeRepository(NewClients(srv.URL, "anon-key", "admin-key"))

	patch := entity.RecipePatch{
		Name:        optional.Of("Salmorejo"),
		Description: optional.Null[string](),
	}
	_, err := repo.Update(context.Background(), 7, patch)
	require.NoError(t, err)

	req := (*captured)[0]
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, []string{"eq.7"}, req.Query["id"])

	var sent map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &sent))
	assert.Equal(t, "Salmorejo", sent["name"])
	val, present := sent["description"]
	assert.True(t, present, "explicit null travels as a JSON null")
	assert.Nil(t, val)
	assert.NotContains(t, sent, "steps")
	assert.NotContains(t, sent, "is_public")
	assert.NotContains(t, sent, "user_id", "ownership is immutable")
}

func TestUpdate_EmptyPatchReadsInstead(t *testing.T) {
	srv, captured := newTestBackend(t, http.StatusOK, oneRow)
	repo := NewRecipeRepository(NewClients(srv.URL, "anon-key", ""))

	rec, err := repo.Update(context.Background(), 7, entity.RecipePatch{})
	require.NoError(t, err)
	require.NotNil(t, rec)

	req := (*captured)[0]
	assert.Equal(t, http.MethodGet, req.Method)
}

func TestUpdate_NoRowsIsNilNil(t *testing.T) {
	srv, _ := newTestBackend(t, http.StatusOK, `[]`)
	repo := NewRecipeRepository(NewClients(srv.URL, "anon-key", ""))

	rec, err := repo.Update(context.Background(), 99, entity.RecipePatch{Name: optional.Of("Nope")})
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestDelete_SentinelFromReturnedRows(t *testing.T) {
	srv, captured := newTestBackend(t, http.StatusOK, oneRow)
	repo := NewRecipeRepository(NewClients(srv.URL, "anon-key", ""))

	ok, err := repo.Delete(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, http.MethodDelete, (*captured)[0].Method)

	srv2, _ := newTestBackend(t, http.StatusOK, `[]`)
	repo2 := NewRecipeRepository(NewClients(srv2.URL, "anon-key", ""))
	ok, err = repo2.Delete(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBackendErrorSurfacesAsPersistenceError(t *testing.T) {
	srv, _ := newTestBackend(t, http.StatusInternalServerError, `{"message":"boom"}`)
	repo := NewRecipeRepository(NewClients(srv.URL, "anon-key", ""))

	_, err := repo.FindByID(context.Background(), 7)
	var perr *repository.PersistenceError
	require.ErrorAs(t, err, &perr)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "boom", apiErr.Message)
}

func TestSearchByIngredient_ClientSideFilter(t *testing.T) {
	rows := `[
		{"id":1,"name":"Gazpacho","steps":["blend"],"ingredients":["Tomate","pepino"],"user_id":"u1","is_public":true,"created_at":"2025-03-01T12:00:00Z"},
		{"id":2,"name":"Paella","steps":["cook"],"ingredients":["arroz"],"user_id":"u1","is_public":true,"created_at":"2025-03-02T12:00:00Z"}
	]`
	srv, _ := newTestBackend(t, http.StatusOK, rows)
	repo := NewRecipeRepository(NewClients(srv.URL, "anon-key", ""))

	got, err := repo.SearchByIngredient(context.Background(), "tomate")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Gazpacho", got[0].Name)
}
