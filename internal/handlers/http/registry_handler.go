package http

import (
	"net/http"
	"time"

	"streamgrid/internal/core/domain"
	"streamgrid/internal/core/ports"
	apperrors "streamgrid/pkg/errors"
	"streamgrid/pkg/validation"

	"github.com/gin-gonic/gin"
)

// RegistryHandler exposes the stream registry: which platform streams are
// known to the service and can be placed on a canvas.
type RegistryHandler struct {
	registry ports.StreamRegistry
}

func NewRegistryHandler(registry ports.StreamRegistry) *RegistryHandler {
	return &RegistryHandler{registry: registry}
}

func (h *RegistryHandler) SetupRoutes(router gin.IRouter) {
	api := router.Group("/api/v1")
	{
		api.POST("/streams", h.RegisterStream)
		api.GET("/streams", h.ListStreams)
		api.GET("/streams/:id", h.GetStream)
		api.DELETE("/streams/:id", h.UnregisterStream)
	}
}

type RegisterStreamRequest struct {
	StreamID domain.StreamID `json:"stream_id" binding:"required"`
	Platform domain.Platform `json:"platform" binding:"required"`
	Channel  string          `json:"channel" binding:"required"`
	Title    string          `json:"title"`
	Live     bool            `json:"live"`
}

func (h *RegistryHandler) RegisterStream(c *gin.Context) {
	var req RegisterStreamRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError("invalid request format"))
		return
	}
	if err := validation.ValidateStreamID(string(req.StreamID)); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}
	if err := validation.ValidatePlatform(string(req.Platform)); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}
	if err := validation.ValidateChannel(req.Channel); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	info := &domain.StreamInfo{
		ID:           req.StreamID,
		Platform:     req.Platform,
		Channel:      req.Channel,
		Title:        req.Title,
		Live:         req.Live,
		RegisteredAt: time.Now(),
	}

	if err := h.registry.Register(c.Request.Context(), info); err != nil {
		c.Error(apperrors.NewInternalError(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, info)
}

func (h *RegistryHandler) ListStreams(c *gin.Context) {
	streams, err := h.registry.List(c.Request.Context())
	if err != nil {
		c.Error(apperrors.NewInternalError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"streams": streams})
}

func (h *RegistryHandler) GetStream(c *gin.Context) {
	info, err := h.registry.Lookup(c.Request.Context(), domain.StreamID(c.Param("id")))
	if err != nil {
		c.Error(apperrors.NewNotFoundError("stream"))
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *RegistryHandler) UnregisterStream(c *gin.Context) {
	if err := h.registry.Unregister(c.Request.Context(), domain.StreamID(c.Param("id"))); err != nil {
		c.Error(apperrors.NewNotFoundError("stream"))
		return
	}
	c.Status(http.StatusNoContent)
}
