package http

import (
	"net/http"
	"strings"

	"streamgrid/internal/core/services"
	"streamgrid/pkg/errors"
	"streamgrid/pkg/validation"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func (h *AuthHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/auth")
	{
		api.POST("/session", h.CreateSessionToken)
		api.POST("/refresh", h.RefreshToken)
	}
}

type SessionTokenRequest struct {
	ViewerID string `json:"viewer_id" binding:"required,min=3,max=50"`
}

type RefreshTokenRequest struct {
	Token string `json:"token" binding:"required,max=2048"`
}

// CreateSessionToken issues a bearer token for a viewer. There is no user
// store: the viewer id is self-declared and tokens exist to scope rate
// limits and session access, not to authenticate identity.
func (h *AuthHandler) CreateSessionToken(c *gin.Context) {
	var req SessionTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	req.ViewerID = strings.TrimSpace(req.ViewerID)
	if err := validation.ValidateViewerID(req.ViewerID); err != nil {
		c.Error(errors.NewInvalidInputError(err.Error()))
		return
	}

	token, err := h.authService.GenerateToken(req.ViewerID)
	if err != nil {
		c.Error(errors.NewInternalError("failed to generate token"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token":     token,
		"viewer_id": req.ViewerID,
	})
}

// RefreshToken exchanges a still-valid token for a fresh one.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	claims, err := h.authService.ValidateToken(req.Token)
	if err != nil {
		c.Error(errors.NewUnauthorizedError("invalid or expired token"))
		return
	}

	token, err := h.authService.GenerateToken(claims.ViewerID)
	if err != nil {
		c.Error(errors.NewInternalError("failed to generate token"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"viewer_id": claims.ViewerID,
	})
}
