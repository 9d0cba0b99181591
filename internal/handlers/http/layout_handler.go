package http

import (
	"errors"
	"net/http"

	"streamgrid/internal/core/domain"
	"streamgrid/internal/core/ports"
	"streamgrid/internal/core/services"
	"streamgrid/internal/infrastructure/middleware"
	apperrors "streamgrid/pkg/errors"
	"streamgrid/pkg/validation"

	"github.com/gin-gonic/gin"
)

type LayoutHandler struct {
	sessions     *services.SessionManager
	snapshotRepo ports.SnapshotRepository
	collector    ports.MetricsCollector
}

func NewLayoutHandler(sessions *services.SessionManager, snapshotRepo ports.SnapshotRepository) *LayoutHandler {
	return &LayoutHandler{
		sessions:     sessions,
		snapshotRepo: snapshotRepo,
	}
}

// SetCollector reports snapshot saves to c.
func (h *LayoutHandler) SetCollector(c ports.MetricsCollector) {
	h.collector = c
}

func (h *LayoutHandler) SetupRoutes(router gin.IRouter) {
	api := router.Group("/api/v1")
	{
		api.POST("/sessions", h.CreateSession)
		api.GET("/sessions", h.ListSessions)

		session := api.Group("/sessions/:id", middleware.SessionMiddleware(h.sessions))
		{
			session.GET("", h.GetSession)
			session.DELETE("", h.DestroySession)

			session.PUT("/template", h.SetTemplate)
			session.PUT("/container", h.SetContainerSize)
			session.POST("/arrange", h.AutoArrange)
			session.POST("/clear-focus", h.ClearFocus)
			session.POST("/mute", h.MuteAll)
			session.POST("/exit-fullscreen", h.ExitFullscreen)

			session.POST("/streams", h.AddStream)
			session.DELETE("/streams/:streamId", h.RemoveStream)
			session.POST("/streams/:streamId/focus", h.SetFocus)
			session.POST("/streams/:streamId/audio", h.SetAudioActive)
			session.POST("/streams/:streamId/front", h.BringToFront)
			session.POST("/streams/:streamId/back", h.SendToBack)
			session.POST("/streams/:streamId/move", h.MoveSlot)
			session.POST("/streams/:streamId/resize", h.ResizeSlot)
			session.POST("/streams/:streamId/fullscreen", h.ToggleFullscreen)
			session.POST("/streams/:streamId/detach", h.DetachToPiP)

			session.POST("/pip/:pipId/reattach", h.ReattachFromPiP)
			session.POST("/pip/:pipId/move", h.MovePiP)
			session.POST("/pip/:pipId/minimize", h.MinimizePiP)
			session.POST("/pip/:pipId/maximize", h.MaximizePiP)
			session.POST("/pip/:pipId/restore", h.RestorePiP)

			session.POST("/snapshots", h.SaveSnapshot)
			session.POST("/snapshots/:name/restore", h.RestoreSnapshot)
		}

		api.GET("/snapshots", h.ListSnapshots)
		api.GET("/snapshots/:name", h.GetSnapshot)
		api.DELETE("/snapshots/:name", h.DeleteSnapshot)

		api.GET("/templates", h.ListTemplates)
	}
}

// layoutFrom returns the layout service resolved by SessionMiddleware.
func layoutFrom(c *gin.Context) ports.LayoutService {
	return c.MustGet("layout").(ports.LayoutService)
}

// fail maps domain sentinel errors onto structured API errors.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrCapacityExceeded):
		c.Error(apperrors.NewConflictError("layout is full"))
	case errors.Is(err, domain.ErrDuplicateStream):
		c.Error(apperrors.NewConflictError("stream already present"))
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrSnapshotNotFound):
		c.Error(apperrors.NewNotFoundError("resource"))
	case errors.Is(err, domain.ErrTemplateLocked):
		c.Error(apperrors.NewConflictError("active template does not allow manual geometry"))
	case errors.Is(err, domain.ErrInvalidGeometry),
		errors.Is(err, domain.ErrUnknownTemplate),
		errors.Is(err, domain.ErrUnknownArrangeStyle),
		errors.Is(err, domain.ErrStaleContainerSize):
		c.Error(apperrors.NewInvalidInputError(err.Error()))
	default:
		c.Error(apperrors.NewInternalError(err.Error()))
	}
}

func stateResponse(c *gin.Context, layout ports.LayoutService) {
	c.JSON(http.StatusOK, gin.H{
		"layout": layout.State(),
		"pip":    layout.PiP(),
	})
}

func (h *LayoutHandler) CreateSession(c *gin.Context) {
	id := h.sessions.Create()
	c.JSON(http.StatusCreated, gin.H{"session_id": id})
}

func (h *LayoutHandler) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sessions": h.sessions.List(),
		"count":    h.sessions.Count(),
	})
}

func (h *LayoutHandler) GetSession(c *gin.Context) {
	stateResponse(c, layoutFrom(c))
}

func (h *LayoutHandler) DestroySession(c *gin.Context) {
	id := c.MustGet("session_id").(domain.SessionID)
	if err := h.sessions.Destroy(id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LayoutHandler) SetTemplate(c *gin.Context) {
	var req struct {
		TemplateID domain.TemplateID `json:"template_id" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError("invalid request format"))
		return
	}

	layout := layoutFrom(c)
	if err := layout.SetTemplate(req.TemplateID); err != nil {
		fail(c, err)
		return
	}
	stateResponse(c, layout)
}

func (h *LayoutHandler) SetContainerSize(c *gin.Context) {
	var req struct {
		Width  float64 `json:"width" binding:"required"`
		Height float64 `json:"height" binding:"required"`
		Seq    uint64  `json:"seq"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError("invalid request format"))
		return
	}
	if err := validation.ValidateContainerSize(req.Width, req.Height); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	layout := layoutFrom(c)
	if err := layout.SetContainerSize(domain.Size{Width: req.Width, Height: req.Height}, req.Seq); err != nil {
		fail(c, err)
		return
	}
	stateResponse(c, layout)
}

func (h *LayoutHandler) AutoArrange(c *gin.Context) {
	var req struct {
		Style domain.ArrangeStyle `json:"style" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError("invalid request format"))
		return
	}

	layout := layoutFrom(c)
	if err := layout.AutoArrange(req.Style); err != nil {
		fail(c, err)
		return
	}
	stateResponse(c, layout)
}

func (h *LayoutHandler) ClearFocus(c *gin.Context) {
	layout := layoutFrom(c)
	layout.ClearFocus()
	stateResponse(c, layout)
}

func (h *LayoutHandler) MuteAll(c *gin.Context) {
	layout := layoutFrom(c)
	layout.MuteAll()
	stateResponse(c, layout)
}

func (h *LayoutHandler) ExitFullscreen(c *gin.Context) {
	layout := layoutFrom(c)
	layout.ExitFullscreen()
	stateResponse(c, layout)
}

func (h *LayoutHandler) AddStream(c *gin.Context) {
	var req struct {
		StreamID domain.StreamID `json:"stream_id" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError("invalid request format"))
		return
	}
	if err := validation.ValidateStreamID(string(req.StreamID)); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	layout := layoutFrom(c)
	if err := layout.AddStream(req.StreamID); err != nil {
		fail(c, err)
		return
	}
	stateResponse(c, layout)
}

func (h *LayoutHandler) RemoveStream(c *gin.Context) {
	layout := layoutFrom(c)
	if err := layout.RemoveStream(domain.StreamID(c.Param("streamId"))); err != nil {
		fail(c, err)
		return
	}
	stateResponse(c, layout)
}

func (h *LayoutHandler) SetFocus(c *gin.Context) {
	layout := layoutFrom(c)
	if err := layout.SetFocus(domain.StreamID(c.Param("streamId"))); err != nil {
		fail(c, err)
		return
	}
	stateResponse(c, layout)
}

func (h *LayoutHandler) SetAudioActive(c *gin.Context) {
	layout := layoutFrom(c)
	if err := layout.SetAudioActive(domain.StreamID(c.Param("streamId"))); err != nil {
		fail(c, err)
		return
	}
	stateResponse(c, layout)
}

func (h *LayoutHandler) BringToFront(c *gin.Context) {
	layout := layoutFrom(c)
	if err := layout.BringToFront(domain.StreamID(c.Param("streamId"))); err != nil {
		fail(c, err)
		return
	}
	stateResponse(c, layout)
}

func (h *LayoutHandler) SendToBack(c *gin.Context) {
	layout := layoutFrom(c)
	if err := layout.SendToBack(domain.StreamID(c.Param("streamId"))); err != nil {
		fail(c, err)
		return
	}
	stateResponse(c, layout)
}

func (h *LayoutHandler) MoveSlot(c *gin.Context) {
	var req struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError("invalid request format"))
		return
	}

	layout := layoutFrom(c)
	if err := layout.MoveSlot(domain.StreamID(c.Param("streamId")), domain.Point{X: req.X, Y: req.Y}); err != nil {
		fail(c, err)
		return
	}
	stateResponse(c, layout)
}

func (h *LayoutHandler) ResizeSlot(c *gin.Context) {
	var req struct {
		Width  float64 `json:"width" binding:"required"`
		Height float64 `json:"height" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError("invalid request format"))
		return
	}

	layout := layoutFrom(c)
	if err := layout.ResizeSlot(domain.StreamID(c.Param("streamId")), domain.Size{Width: req.Width, Height: req.Height}); err != nil {
		fail(c, err)
		return
	}
	stateResponse(c, layout)
}

func (h *LayoutHandler) ToggleFullscreen(c *gin.Context) {
	layout := layoutFrom(c)
	if err := layout.ToggleFullscreen(domain.StreamID(c.Param("streamId"))); err != nil {
		fail(c, err)
		return
	}
	stateResponse(c, layout)
}

func (h *LayoutHandler) DetachToPiP(c *gin.Context) {
	layout := layoutFrom(c)
	pipID, err := layout.DetachToPiP(domain.StreamID(c.Param("streamId")))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pip_id": pipID,
		"layout": layout.State(),
		"pip":    layout.PiP(),
	})
}

func (h *LayoutHandler) ReattachFromPiP(c *gin.Context) {
	layout := layoutFrom(c)
	if err := layout.ReattachFromPiP(domain.PiPID(c.Param("pipId"))); err != nil {
		fail(c, err)
		return
	}
	stateResponse(c, layout)
}

func (h *LayoutHandler) MovePiP(c *gin.Context) {
	var req struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError("invalid request format"))
		return
	}

	layout := layoutFrom(c)
	if err := layout.MovePiP(domain.PiPID(c.Param("pipId")), domain.Point{X: req.X, Y: req.Y}); err != nil {
		fail(c, err)
		return
	}
	stateResponse(c, layout)
}

func (h *LayoutHandler) MinimizePiP(c *gin.Context) {
	layout := layoutFrom(c)
	if err := layout.MinimizePiP(domain.PiPID(c.Param("pipId"))); err != nil {
		fail(c, err)
		return
	}
	stateResponse(c, layout)
}

func (h *LayoutHandler) MaximizePiP(c *gin.Context) {
	layout := layoutFrom(c)
	if err := layout.MaximizePiP(domain.PiPID(c.Param("pipId"))); err != nil {
		fail(c, err)
		return
	}
	stateResponse(c, layout)
}

func (h *LayoutHandler) RestorePiP(c *gin.Context) {
	layout := layoutFrom(c)
	if err := layout.RestorePiP(domain.PiPID(c.Param("pipId"))); err != nil {
		fail(c, err)
		return
	}
	stateResponse(c, layout)
}

func (h *LayoutHandler) SaveSnapshot(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError("invalid request format"))
		return
	}
	if err := validation.ValidateSnapshotName(req.Name); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	snapshot := layoutFrom(c).Serialize(req.Name)
	if err := h.snapshotRepo.Save(c.Request.Context(), &snapshot); err != nil {
		fail(c, err)
		return
	}
	if h.collector != nil {
		h.collector.RecordSnapshotSaved()
	}
	c.JSON(http.StatusCreated, snapshot)
}

func (h *LayoutHandler) RestoreSnapshot(c *gin.Context) {
	snapshot, err := h.snapshotRepo.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}

	layout := layoutFrom(c)
	if err := layout.Restore(snapshot); err != nil {
		fail(c, err)
		return
	}
	stateResponse(c, layout)
}

func (h *LayoutHandler) ListSnapshots(c *gin.Context) {
	snapshots, err := h.snapshotRepo.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": snapshots})
}

func (h *LayoutHandler) GetSnapshot(c *gin.Context) {
	snapshot, err := h.snapshotRepo.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (h *LayoutHandler) DeleteSnapshot(c *gin.Context) {
	if err := h.snapshotRepo.Delete(c.Request.Context(), c.Param("name")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LayoutHandler) ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": domain.Templates()})
}
