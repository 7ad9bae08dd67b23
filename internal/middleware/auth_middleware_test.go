package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	iauth "github.com/stackitdev/stackit/internal/auth"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *iauth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwt, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "test-secret"})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/protected", Auth(jwt), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserIDKey))
	})
	return r, jwt
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsMalformedToken(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
}

func TestAuthAcceptsValidToken(t *testing.T) {
	r, jwt := newAuthRouter(t)

	token, err := jwt.GenerateAccessToken(iauth.AccessTokenInput{UserID: "user-1", Username: "gopher"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "user-1", w.Body.String())
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CORS())
	r.GET("/resource", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	// Preflight request
	preflight := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/resource", nil)
	r.ServeHTTP(preflight, req)
	require.Equal(t, http.StatusNoContent, preflight.Code)
	require.Equal(t, "*", preflight.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, preflight.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	// Actual request inherits headers and proceeds
	w := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/resource", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
