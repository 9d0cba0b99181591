package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"streamgrid/internal/core/services"
	"streamgrid/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func newAuthRouter(t *testing.T) (*gin.Engine, services.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	auth := services.NewAuthService("test-secret", time.Hour)
	router := gin.New()
	router.Use(middleware.ErrorHandlerMiddleware(zaptest.NewLogger(t).Sugar()))
	NewAuthHandler(auth).SetupRoutes(router)
	return router, auth
}

func TestAuth_IssueToken(t *testing.T) {
	router, auth := newAuthRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/session", gin.H{"viewer_id": "viewer-1"})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Token    string `json:"token"`
		ViewerID string `json:"viewer_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "viewer-1", resp.ViewerID)

	claims, err := auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "viewer-1", claims.ViewerID)
}

func TestAuth_RejectsShortViewerID(t *testing.T) {
	router, _ := newAuthRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/session", gin.H{"viewer_id": "ab"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuth_RefreshToken(t *testing.T) {
	router, auth := newAuthRouter(t)

	token, err := auth.GenerateToken("viewer-7")
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh", gin.H{"token": token})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token    string `json:"token"`
		ViewerID string `json:"viewer_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "viewer-7", resp.ViewerID)

	claims, err := auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "viewer-7", claims.ViewerID)
}

func TestAuth_RefreshRejectsGarbage(t *testing.T) {
	router, _ := newAuthRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh", gin.H{"token": "not-a-jwt"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_GuardsProtectedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := services.NewAuthService("test-secret", time.Hour)

	router := gin.New()
	protected := router.Group("/", middleware.AuthMiddleware(auth))
	protected.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"viewer_id": c.GetString("viewer_id")})
	})

	w := doJSON(t, router, http.MethodGet, "/whoami", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := auth.GenerateToken("viewer-9")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, "/whoami", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	w2 := performRequest(router, req)
	require.Equal(t, http.StatusOK, w2.Code)

	var resp struct {
		ViewerID string `json:"viewer_id"`
	}
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &resp))
	assert.Equal(t, "viewer-9", resp.ViewerID)
}
