package modules

import (
	"crypto/subtle"
	"encoding/json"
	"expvar"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/asanchezf/recetario-api/internal/container"
	"github.com/asanchezf/recetario-api/internal/interface/middleware"
	"github.com/asanchezf/recetario-api/pkg/response"
)

// DebugModule exposes operational endpoints that never ship behind a public
// gateway: expvar metrics and a direct-to-Postgres recipe insert used to
// verify database connectivity in staging.
type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	cfg := container.GetConfig()
	rl := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)

	if cfg == nil || cfg.DebugMetricsEnabled {
		rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
	}

	// Only mounted when both a pool and a key exist; otherwise the route is
	// simply absent and callers see gin's 404.
	if container.GetPGPool() != nil && cfg != nil && cfg.DebugKey != "" {
		rg.POST("/debug/recipes", rl, requireDebugKey(cfg.DebugKey), insertRecipeDirect)
	}
}

func requireDebugKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("X-Debug-Key")
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			response.AbortError(c, http.StatusUnauthorized, "invalid debug key", nil)
			return
		}
		c.Next()
	}
}

type debugRecipeRequest struct {
	Name        string   `json:"name" binding:"required,min=3"`
	Description *string  `json:"description"`
	Steps       []string `json:"steps" binding:"required,min=1"`
	Ingredients []string `json:"ingredients" binding:"required,min=1"`
	UserID      string   `json:"userId" binding:"required"`
	IsPublic    *bool    `json:"isPublic"`
}

// insertRecipeDirect bypasses the repository layer on purpose: it proves the
// migrations ran and the pool can write, independent of Supabase config.
func insertRecipeDirect(c *gin.Context) {
	var req debugRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", err.Error())
		return
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	steps, _ := json.Marshal(req.Steps)
	ingredients, _ := json.Marshal(req.Ingredients)

	pool := container.GetPGPool()
	var id int64
	err := pool.QueryRow(c.Request.Context(),
		`INSERT INTO recipes (name, description, steps, ingredients, user_id, is_public)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		req.Name, req.Description, steps, ingredients, req.UserID, isPublic,
	).Scan(&id)
	if err != nil {
		if log := container.GetLogger(); log != nil {
			log.WithError(err).Error("debug recipe insert failed")
		}
		response.Error(c, http.StatusInternalServerError, "insert failed", nil)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"id": id}, "recipe inserted", nil)
}
