package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/asanchezf/recetario-api/internal/application"
	"github.com/asanchezf/recetario-api/internal/domain/entity"
	repo "github.com/asanchezf/recetario-api/internal/domain/repository"
	"github.com/asanchezf/recetario-api/internal/interface/middleware"
	"github.com/asanchezf/recetario-api/pkg/response"
	"github.com/asanchezf/recetario-api/pkg/validation"
)

type RecipeHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewRecipeHandler(svc *application.Service, logger *logrus.Logger) *RecipeHandler {
	return &RecipeHandler{Svc: svc, Logger: logger}
}

type createRecipeRequest struct {
	Name        string   `json:"name" binding:"required,min=3"`
	Description *string  `json:"description"`
	Steps       []string `json:"steps" binding:"required,min=1"`
	Ingredients []string `json:"ingredients" binding:"required,min=1"`
	IsPublic    *bool    `json:"isPublic"`
	ImageURL    *string  `json:"imageUrl" binding:"omitempty,http_url,max=2000"`
}

func (h *RecipeHandler) Create(c *gin.Context) {
	var req createRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	rec, err := h.Svc.Create(c.Request.Context(), application.CreateRecipeInput{
		Name:        req.Name,
		Description: req.Description,
		Steps:       req.Steps,
		Ingredients: req.Ingredients,
		IsPublic:    req.IsPublic,
		ImageURL:    req.ImageURL,
	}, c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, rec, "recipe created", nil)
}

func (h *RecipeHandler) GetAll(c *gin.Context) {
	recipes, err := h.Svc.GetAll(c.Request.Context(), listOptions(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, recipes, "recipes", gin.H{"count": len(recipes)})
}

func (h *RecipeHandler) GetByID(c *gin.Context) {
	rec, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if rec == nil {
		response.Error(c, http.StatusNotFound, "recipe not found", nil)
		return
	}
	response.Success(c, http.StatusOK, rec, "recipe", nil)
}

func (h *RecipeHandler) GetMine(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	recipes, err := h.Svc.GetMine(c.Request.Context(), uid, listOptions(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, recipes, "my recipes", gin.H{"count": len(recipes)})
}

func (h *RecipeHandler) Search(c *gin.Context) {
	recipes, err := h.Svc.SearchByIngredient(c.Request.Context(), c.Query("ingredient"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, recipes, "search results", gin.H{"count": len(recipes)})
}

func (h *RecipeHandler) Update(c *gin.Context) {
	var patch entity.RecipePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	rec, err := h.Svc.Update(c.Request.Context(), c.Param("id"), patch, c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rec, "recipe updated", nil)
}

// Delete enforces ownership here, at the controller layer: the delete use
// case does not check it (see the note on Service.Delete), so the handler
// fetches and compares before asking for the removal.
func (h *RecipeHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	rawID := c.Param("id")

	rec, err := h.Svc.GetByID(ctx, rawID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if rec == nil {
		response.Error(c, http.StatusNotFound, "recipe not found", nil)
		return
	}
	if !rec.OwnedBy(c.GetString(middleware.CtxUserIDKey)) {
		response.Error(c, http.StatusForbidden, "you do not own this recipe", nil)
		return
	}

	if _, err := h.Svc.Delete(ctx, rawID); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) UploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "image file is required", nil)
		return
	}
	defer func() { _ = file.Close() }()

	rec, err := h.Svc.UploadImage(
		c.Request.Context(),
		c.Param("id"),
		c.GetString(middleware.CtxUserIDKey),
		file,
		header.Filename,
		header.Header.Get("Content-Type"),
	)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rec, "image uploaded", nil)
}

func (h *RecipeHandler) writeError(c *gin.Context, err error) {
	var verr *entity.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Error(c, http.StatusBadRequest, "validation failed", map[string]string{verr.Field: verr.Message})
	case errors.Is(err, application.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, application.ErrRecipeNotFound):
		response.Error(c, http.StatusNotFound, "recipe not found", nil)
	case errors.Is(err, application.ErrForbidden):
		response.Error(c, http.StatusForbidden, "you do not own this recipe", nil)
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("recipe request failed")
		}
		response.Error(c, http.StatusInternalServerError, "internal server error", nil)
	}
}

func listOptions(c *gin.Context) repo.ListOptions {
	opts := repo.ListOptions{}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		opts.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		opts.Offset = v
	}
	return opts
}
