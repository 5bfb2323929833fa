package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"group_chat_server/pkg/constants"
	"group_chat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newAuthEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	jwt.Init("middleware-test-secret-middleware", 5)
	r := gin.New()
	r.GET("/me", JWTAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(constants.CtxUserIDKey))
	})
	return r
}

func TestJWTAuthHeader(t *testing.T) {
	r := newAuthEngine()
	token, err := jwt.GenerateAccessToken("U42")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "U42", w.Body.String())
}

func TestJWTAuthQueryToken(t *testing.T) {
	r := newAuthEngine()
	token, err := jwt.GenerateAccessToken("U7")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?token="+token, nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "U7", w.Body.String())
}

func TestJWTAuthRejects(t *testing.T) {
	r := newAuthEngine()
	for _, header := range []string{"", "Token abc", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestSecureHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Secure("localhost", 8443, false))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
