package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/laisky-blog-cms/library/jwt"
)

func newTestRouter(t *testing.T) (*gin.Engine, *jwt.Verifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	v, err := jwt.NewVerifier(context.Background(), []byte("test-secret"), "")
	require.NoError(t, err)

	r := gin.New()
	r.Use(NewMiddleware(v))
	r.GET("/whoami", func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, claims.Email)
	})

	return r, v
}

func TestMiddleware(t *testing.T) {
	r, v := newTestRouter(t)
	token, err := v.Sign(&jwt.UserClaims{Email: "Ann@Example.com"}, time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name     string
		setup    func(req *http.Request)
		wantCode int
		wantBody string
	}{
		{"anonymous", func(*http.Request) {}, http.StatusOK, "anonymous"},
		{"bearer", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+token)
		}, http.StatusOK, "ann@example.com"},
		{"lowercase scheme", func(req *http.Request) {
			req.Header.Set("Authorization", "bearer "+token)
		}, http.StatusOK, "ann@example.com"},
		{"cookie", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		}, http.StatusOK, "ann@example.com"},
		{"basic auth is ignored", func(req *http.Request) {
			req.SetBasicAuth("ann", "pwd")
		}, http.StatusOK, "anonymous"},
		{"invalid token", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer not-a-token")
		}, http.StatusUnauthorized, `{"error":"invalid token"}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			c.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, c.wantCode, w.Code)
			require.Equal(t, c.wantBody, w.Body.String())
		})
	}
}
