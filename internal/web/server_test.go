package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/content"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/controller"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/dao"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/service"
	"github.com/Laisky/laisky-blog-cms/library/jwt"
)

var (
	ginModeOnce sync.Once
)

func setupGinTestMode() {
	ginModeOnce.Do(func() {
		gin.SetMode(gin.TestMode)
	})
}

func TestAllowCORS(t *testing.T) {
	setupGinTestMode()
	t.Parallel()

	hosts := []string{"laisky.com", "Example.org"}
	tests := []struct {
		name           string
		method         string
		origin         string
		expectedStatus int
		expectedCORS   bool
	}{
		{"no origin header", http.MethodGet, "", http.StatusOK, false},
		{"subdomain origin", http.MethodGet, "https://blog.laisky.com", http.StatusOK, true},
		{"main domain origin", http.MethodPost, "https://laisky.com", http.StatusOK, true},
		{"configured host is case insensitive", http.MethodGet, "https://WWW.EXAMPLE.ORG", http.StatusOK, true},
		{"origin with port", http.MethodGet, "https://blog.laisky.com:8080", http.StatusOK, true},
		{"preflight", http.MethodOptions, "https://blog.laisky.com", http.StatusNoContent, true},
		{"disallowed preflight", http.MethodOptions, "https://evil.com", http.StatusForbidden, false},
		{"disallowed origin", http.MethodGet, "https://evil.com", http.StatusOK, false},
		{"suffix trick", http.MethodGet, "https://laisky.com.evil.com", http.StatusOK, false},
		{"not a subdomain", http.MethodGet, "https://notlaisky.com", http.StatusOK, false},
		{"malformed origin", http.MethodGet, "not-a-valid-url", http.StatusOK, false},
		{"blank origin", http.MethodGet, "   ", http.StatusOK, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := gin.New()
			router.Use(newCORS(hosts))
			router.Any("/test", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"message": "success"})
			})

			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code, "Status code mismatch")
			if tt.expectedCORS {
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
				assert.Equal(t, corsAllowMethods, w.Header().Get("Access-Control-Allow-Methods"))
				assert.Equal(t, corsMaxAge, w.Header().Get("Access-Control-Max-Age"))
				assert.Equal(t, "Origin", w.Header().Get("Vary"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}

func TestNewStatusHandler(t *testing.T) {
	setupGinTestMode()
	t.Parallel()

	handler := newStatusHandler()
	router := gin.New()
	router.GET("/status", handler)
	router.HEAD("/status", handler)
	router.OPTIONS("/status", handler)

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		req := httptest.NewRequest(method, "/status", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "GET, HEAD, OPTIONS", w.Header().Get("Allow"))
		if method == http.MethodGet {
			assert.Equal(t, "ok", strings.TrimSpace(w.Body.String()))
		} else {
			assert.Empty(t, w.Body.String())
		}
	}
}

func TestNewEngine(t *testing.T) {
	setupGinTestMode()

	fs, err := content.NewFSStore(glog.Shared.Named("content_test"), t.TempDir())
	require.NoError(t, err)
	v, err := jwt.NewVerifier(context.Background(), []byte("engine-test-secret"), "")
	require.NoError(t, err)

	engine := NewEngine(Options{
		Logger:       glog.Shared.Named("engine_test"),
		Blog:         controller.New(service.New(dao.NewMemory(), fs)),
		Tokens:       v,
		AllowedHosts: []string{"laisky.com"},
	})

	cases := []struct {
		method, path, token string
		want                int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/api/blogs", "", http.StatusOK},
		{http.MethodGet, "/api/blogs/missing", "", http.StatusNotFound},
		{http.MethodGet, "/api/blogs", "bad-token", http.StatusUnauthorized},
		{http.MethodPost, "/api/blogs", "", http.StatusUnauthorized},
	}
	for _, c := range cases {
		req := httptest.NewRequest(c.method, c.path, nil)
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		require.Equalf(t, c.want, w.Code, "%s %s", c.method, c.path)
	}
}
