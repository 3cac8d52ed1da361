package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/asanchezf/recetario-api/internal/infrastructure/supabase"
	"github.com/asanchezf/recetario-api/internal/interface/middleware"
	"github.com/asanchezf/recetario-api/pkg/response"
	"github.com/asanchezf/recetario-api/pkg/validation"
)

// AuthHandler proxies registration and login to the managed identity
// provider. Token issuance and verification belong to the provider; this
// service never stores credentials.
type AuthHandler struct {
	Auth   *supabase.AuthClient
	Logger *logrus.Logger
}

func NewAuthHandler(auth *supabase.AuthClient, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Logger: logger}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	if h.Auth == nil {
		response.Error(c, http.StatusServiceUnavailable, "auth not configured in this environment", nil)
		return
	}
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	user, err := h.Auth.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeAuthError(c, err, "registration failed")
		return
	}
	response.Success(c, http.StatusCreated, user, "user registered", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	if h.Auth == nil {
		response.Error(c, http.StatusServiceUnavailable, "auth not configured in this environment", nil)
		return
	}
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	session, err := h.Auth.SignInWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeAuthError(c, err, "invalid credentials")
		return
	}
	response.Success(c, http.StatusOK, session, "login successful", nil)
}

// Me echoes the identity the auth middleware resolved.
func (h *AuthHandler) Me(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"userId": c.GetString(middleware.CtxUserIDKey)}, "me", nil)
}

func (h *AuthHandler) writeAuthError(c *gin.Context, err error, message string) {
	var apiErr *supabase.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		response.Error(c, http.StatusBadRequest, apiErr.Message, nil)
		return
	}
	if errors.Is(err, supabase.ErrInvalidToken) {
		response.Error(c, http.StatusUnauthorized, message, nil)
		return
	}
	if h.Logger != nil {
		h.Logger.WithError(err).Error("auth provider call failed")
	}
	response.Error(c, http.StatusInternalServerError, message, nil)
}
