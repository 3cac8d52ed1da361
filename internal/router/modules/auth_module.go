package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/asanchezf/recetario-api/internal/container"
	handlers "github.com/asanchezf/recetario-api/internal/interface/http"
	"github.com/asanchezf/recetario-api/internal/interface/middleware"
)

// AuthModule proxies credential flows to Supabase GoTrue. Login and register
// get a tight per-IP limit since they are the brute-force surface.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	credLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	grp := rg.Group("/auth")
	{
		grp.POST("/register", credLimiter, m.Handler.Register)
		grp.POST("/login", credLimiter, m.Handler.Login)
		grp.GET("/me", middleware.Auth(tokenVerifier(), rdb), m.Handler.Me)
	}
}
