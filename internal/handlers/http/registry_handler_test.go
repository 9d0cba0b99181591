package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"streamgrid/internal/core/domain"
	"streamgrid/internal/infrastructure/middleware"
	"streamgrid/internal/infrastructure/repositories/memory"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newRegistryRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.ErrorHandlerMiddleware(zaptest.NewLogger(t).Sugar()))
	NewRegistryHandler(memory.NewMemoryStreamRegistry()).SetupRoutes(router)
	return router
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	router := newRegistryRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/streams", gin.H{
		"stream_id": "alpha",
		"platform":  "twitch",
		"channel":   "alpha_live",
		"title":     "Morning run",
		"live":      true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/streams/alpha", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var info domain.StreamInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, domain.PlatformTwitch, info.Platform)
	assert.Equal(t, "alpha_live", info.Channel)
	assert.True(t, info.Live)
	assert.False(t, info.RegisteredAt.IsZero())
}

func TestRegistry_Validation(t *testing.T) {
	router := newRegistryRouter(t)

	cases := []struct {
		name string
		body gin.H
	}{
		{"bad stream id", gin.H{"stream_id": "has spaces", "platform": "twitch", "channel": "c"}},
		{"unknown platform", gin.H{"stream_id": "alpha", "platform": "myspace", "channel": "c"}},
		{"missing channel", gin.H{"stream_id": "alpha", "platform": "twitch"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/v1/streams", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRegistry_ListAndUnregister(t *testing.T) {
	router := newRegistryRouter(t)

	for _, id := range []string{"alpha", "bravo"} {
		w := doJSON(t, router, http.MethodPost, "/api/v1/streams", gin.H{
			"stream_id": id,
			"platform":  "youtube",
			"channel":   id,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/api/v1/streams", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listResp struct {
		Streams []domain.StreamInfo `json:"streams"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Len(t, listResp.Streams, 2)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/streams/alpha", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/streams/alpha", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/streams/alpha", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
