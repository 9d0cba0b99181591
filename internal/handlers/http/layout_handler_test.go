package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"streamgrid/internal/core/domain"
	"streamgrid/internal/core/services"
	"streamgrid/internal/infrastructure/middleware"
	"streamgrid/internal/infrastructure/repositories/memory"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestRouter(t *testing.T) (*gin.Engine, *services.SessionManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager := services.NewSessionManager(services.DefaultLayoutConfig(), nil, services.NewMetricsService(), zaptest.NewLogger(t).Sugar())
	handler := NewLayoutHandler(manager, memory.NewMemorySnapshotRepository())

	router := gin.New()
	router.Use(middleware.ErrorHandlerMiddleware(zaptest.NewLogger(t).Sugar()))
	handler.SetupRoutes(router)
	return router, manager
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID
}

type stateBody struct {
	Layout domain.LayoutState `json:"layout"`
	PiP    domain.PiPState    `json:"pip"`
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) stateBody {
	t.Helper()
	var body stateBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSessionLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	id := createSession(t, router)

	w := doJSON(t, router, http.MethodGet, "/api/v1/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeState(t, w)
	assert.Equal(t, domain.TemplateGrid2x2, state.Layout.ActiveTemplate)
	assert.Empty(t, state.Layout.Slots)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddStream_StateAndErrors(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createSession(t, router)
	base := "/api/v1/sessions/" + id

	for i, stream := range []string{"a", "b", "c", "d"} {
		w := doJSON(t, router, http.MethodPost, base+"/streams", gin.H{"stream_id": stream})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeState(t, w).Layout.Slots, i+1)
	}

	// Fifth stream exceeds the 2x2 grid.
	w := doJSON(t, router, http.MethodPost, base+"/streams", gin.H{"stream_id": "e"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Duplicate placement.
	w = doJSON(t, router, http.MethodPost, base+"/streams", gin.H{"stream_id": "a"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Malformed stream id.
	w = doJSON(t, router, http.MethodPost, base+"/streams", gin.H{"stream_id": "has spaces!"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFocusAndAudioRoutes(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createSession(t, router)
	base := "/api/v1/sessions/" + id

	doJSON(t, router, http.MethodPost, base+"/streams", gin.H{"stream_id": "a"})
	doJSON(t, router, http.MethodPost, base+"/streams", gin.H{"stream_id": "b"})

	w := doJSON(t, router, http.MethodPost, base+"/streams/a/focus", nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeState(t, w)
	assert.True(t, state.Layout.SlotFor("a").Focused)

	w = doJSON(t, router, http.MethodPost, base+"/streams/b/audio", nil)
	require.Equal(t, http.StatusOK, w.Code)
	state = decodeState(t, w)
	assert.True(t, state.Layout.SlotFor("b").AudioActive)
	assert.False(t, state.Layout.SlotFor("a").AudioActive)

	w = doJSON(t, router, http.MethodPost, base+"/mute", nil)
	require.Equal(t, http.StatusOK, w.Code)
	for _, slot := range decodeState(t, w).Layout.Slots {
		assert.False(t, slot.AudioActive)
	}

	w = doJSON(t, router, http.MethodPost, base+"/streams/zz/focus", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTemplateRoutes(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createSession(t, router)
	base := "/api/v1/sessions/" + id

	for _, stream := range []string{"a", "b", "c", "d"} {
		doJSON(t, router, http.MethodPost, base+"/streams", gin.H{"stream_id": stream})
	}

	// Single cannot hold four panes.
	w := doJSON(t, router, http.MethodPut, base+"/template", gin.H{"template_id": "single"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPut, base+"/template", gin.H{"template_id": "grid3x3"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.TemplateGrid3x3, decodeState(t, w).Layout.ActiveTemplate)

	w = doJSON(t, router, http.MethodPut, base+"/template", gin.H{"template_id": "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestManualPlacementRoutes(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createSession(t, router)
	base := "/api/v1/sessions/" + id

	doJSON(t, router, http.MethodPost, base+"/streams", gin.H{"stream_id": "a"})

	// Manual move is rejected while a fixed template is active.
	w := doJSON(t, router, http.MethodPost, base+"/streams/a/move", gin.H{"x": 10, "y": 10})
	assert.Equal(t, http.StatusConflict, w.Code)

	doJSON(t, router, http.MethodPut, base+"/template", gin.H{"template_id": "custom"})

	w = doJSON(t, router, http.MethodPost, base+"/streams/a/move", gin.H{"x": 40, "y": 30})
	require.Equal(t, http.StatusOK, w.Code)
	moved := decodeState(t, w)
	frame := moved.Layout.SlotFor("a").Frame
	assert.Equal(t, 40.0, frame.X)
	assert.Equal(t, 30.0, frame.Y)

	w = doJSON(t, router, http.MethodPost, base+"/streams/a/resize", gin.H{"width": 300, "height": 200})
	require.Equal(t, http.StatusOK, w.Code)
	resized := decodeState(t, w)
	size := resized.Layout.SlotFor("a").Frame.Size()
	assert.Equal(t, 300.0, size.Width)
	assert.Equal(t, 200.0, size.Height)
}

func TestContainerRoute_StaleSeq(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createSession(t, router)
	base := "/api/v1/sessions/" + id

	w := doJSON(t, router, http.MethodPut, base+"/container", gin.H{"width": 1920, "height": 1080, "seq": 2})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPut, base+"/container", gin.H{"width": 800, "height": 600, "seq": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, base, nil)
	assert.Equal(t, 1920.0, decodeState(t, w).Layout.ContainerSize.Width)
}

func TestArrangeRoute(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createSession(t, router)
	base := "/api/v1/sessions/" + id

	doJSON(t, router, http.MethodPost, base+"/streams", gin.H{"stream_id": "a"})
	doJSON(t, router, http.MethodPost, base+"/streams", gin.H{"stream_id": "b"})

	w := doJSON(t, router, http.MethodPost, base+"/arrange", gin.H{"style": "cascade"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.TemplateCustom, decodeState(t, w).Layout.ActiveTemplate)

	w = doJSON(t, router, http.MethodPost, base+"/arrange", gin.H{"style": "spiral"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPiPRoutes(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createSession(t, router)
	base := "/api/v1/sessions/" + id

	doJSON(t, router, http.MethodPost, base+"/streams", gin.H{"stream_id": "a"})
	doJSON(t, router, http.MethodPost, base+"/streams", gin.H{"stream_id": "b"})

	w := doJSON(t, router, http.MethodPost, base+"/streams/a/detach", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var detachResp struct {
		PiPID  string             `json:"pip_id"`
		Layout domain.LayoutState `json:"layout"`
		PiP    domain.PiPState    `json:"pip"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detachResp))
	require.NotEmpty(t, detachResp.PiPID)
	assert.Len(t, detachResp.Layout.Slots, 1)
	assert.Len(t, detachResp.PiP.Slots, 1)

	pipBase := fmt.Sprintf("%s/pip/%s", base, detachResp.PiPID)

	w = doJSON(t, router, http.MethodPost, pipBase+"/minimize", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeState(t, w).PiP.Slots[0].Minimized)

	w = doJSON(t, router, http.MethodPost, pipBase+"/move", gin.H{"x": 50, "y": 60})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, pipBase+"/reattach", nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeState(t, w)
	assert.Len(t, state.Layout.Slots, 2)
	assert.Empty(t, state.PiP.Slots)

	w = doJSON(t, router, http.MethodPost, pipBase+"/reattach", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSnapshotRoutes(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createSession(t, router)
	base := "/api/v1/sessions/" + id

	doJSON(t, router, http.MethodPost, base+"/streams", gin.H{"stream_id": "a"})
	doJSON(t, router, http.MethodPost, base+"/streams/a/focus", nil)

	w := doJSON(t, router, http.MethodPost, base+"/snapshots", gin.H{"name": "evening-setup"})
	require.Equal(t, http.StatusCreated, w.Code)

	// Visible in the listing.
	w = doJSON(t, router, http.MethodGet, "/api/v1/snapshots", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listResp struct {
		Snapshots []domain.LayoutSnapshot `json:"snapshots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	require.Len(t, listResp.Snapshots, 1)
	assert.Equal(t, "evening-setup", listResp.Snapshots[0].Name)

	// Restore into a fresh session.
	other := createSession(t, router)
	w = doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+other+"/snapshots/evening-setup/restore", nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeState(t, w)
	require.Len(t, state.Layout.Slots, 1)
	assert.True(t, state.Layout.Slots[0].Focused)

	// Delete and confirm it is gone.
	w = doJSON(t, router, http.MethodDelete, "/api/v1/snapshots/evening-setup", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, router, http.MethodGet, "/api/v1/snapshots/evening-setup", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Restoring a missing snapshot fails cleanly.
	w = doJSON(t, router, http.MethodPost, base+"/snapshots/missing/restore", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Bad snapshot names are rejected before hitting the store.
	w = doJSON(t, router, http.MethodPost, base+"/snapshots", gin.H{"name": "no/slashes"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTemplateCatalogRoute(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/templates", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Templates []domain.Template `json:"templates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Templates, 6)
	assert.Equal(t, domain.TemplateSingle, resp.Templates[0].ID)
}

func TestListSessions(t *testing.T) {
	router, _ := newTestRouter(t)
	createSession(t, router)
	createSession(t, router)

	w := doJSON(t, router, http.MethodGet, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Sessions []string `json:"sessions"`
		Count    int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Len(t, resp.Sessions, 2)
}
