package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/asanchezf/recetario-api/internal/container"
	handlers "github.com/asanchezf/recetario-api/internal/interface/http"
	"github.com/asanchezf/recetario-api/internal/interface/middleware"
)

// RecipeModule wires the recipe HTTP surface.
// Public: GET /api/recipes, GET /api/recipes/search (listing is intentionally
// unauthenticated; visibility filtering is the client's concern today).
// Protected: everything else, behind bearer-token auth.
type RecipeModule struct {
	Handler *handlers.RecipeHandler
}

func NewRecipeModule(h *handlers.RecipeHandler) *RecipeModule {
	return &RecipeModule{Handler: h}
}

func (m *RecipeModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	publicLimiter := middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	rg.GET("/recipes", publicLimiter, m.Handler.GetAll)
	rg.GET("/recipes/search", publicLimiter, m.Handler.Search)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(tokenVerifier(), rdb))
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/recipes", m.Handler.Create)
		auth.GET("/recipes/mine", m.Handler.GetMine)
		auth.GET("/recipes/:id", m.Handler.GetByID)
		auth.PUT("/recipes/:id", m.Handler.Update)
		auth.DELETE("/recipes/:id", m.Handler.Delete)
		auth.POST("/recipes/:id/image", m.Handler.UploadImage)
	}
}

// tokenVerifier avoids handing Auth a typed nil when Supabase auth was never
// wired up; the middleware then answers 503 instead of panicking.
func tokenVerifier() middleware.TokenVerifier {
	if a := container.GetAuth(); a != nil {
		return a
	}
	return nil
}
