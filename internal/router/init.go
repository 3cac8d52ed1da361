package router

import (
	"github.com/asanchezf/recetario-api/internal/application"
	"github.com/asanchezf/recetario-api/internal/container"
	repo "github.com/asanchezf/recetario-api/internal/domain/repository"
	"github.com/asanchezf/recetario-api/internal/infrastructure/memory"
	"github.com/asanchezf/recetario-api/internal/infrastructure/supabase"
	handlers "github.com/asanchezf/recetario-api/internal/interface/http"
	"github.com/asanchezf/recetario-api/internal/router/modules"
)

// buildRecipeRepository selects the backend at process start: the managed
// store when configured, otherwise the in-memory fallback. The fallback keeps
// nothing across restarts; the warning makes that visible.
func buildRecipeRepository() repo.RecipeRepository {
	if clients := container.GetSupabase(); clients.Configured() {
		return supabase.NewRecipeRepository(clients)
	}
	container.GetLogger().Warn("SUPABASE_URL or API keys not set; using in-memory fallback repository (state is lost on restart)")
	return memory.NewRecipeRepository()
}

func buildRecipeService() *application.Service {
	cfg := container.GetConfig()
	return application.NewService(
		buildRecipeRepository(),
		container.GetLogger(),
		container.GetES(),
		cfg.ESRecipesIndex,
		container.GetRabbitPub(),
		container.GetGCS(),
		cfg.GCSBucket,
	)
}

// InitModules wires all feature modules into the router registry. Called once
// during startup after the container is populated.
func InitModules(r *Registry) {
	svc := buildRecipeService()
	logger := container.GetLogger()

	r.Add(modules.NewRecipeModule(handlers.NewRecipeHandler(svc, logger)))
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(container.GetAuth(), logger)))
	r.Add(modules.NewDebugModule())
}
