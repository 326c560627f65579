// Package web gin server
package web

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/controller"
	"github.com/Laisky/laisky-blog-cms/library/auth"
)

const (
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS, HEAD"
	corsAllowHeaders = "Content-Type, Authorization, Accept, Origin, X-Requested-With"
	corsMaxAge       = "86400"
	shutdownTimeout  = 10 * time.Second
)

// Options wires the server.
type Options struct {
	Logger glog.Logger
	Blog   *controller.Controller
	Tokens auth.TokenParser
	// AllowedHosts hosts, and their subdomains, allowed as CORS origins
	AllowedHosts []string
}

// NewEngine builds the gin engine with every middleware and route.
func NewEngine(opt Options) *gin.Engine {
	engine := gin.New()
	engine.ContextWithFallback = true
	engine.Use(
		gin.Recovery(),
		gmw.NewLoggerMiddleware(gmw.WithLogger(opt.Logger.Named("gin"))),
		newCORS(opt.AllowedHosts),
	)

	status := newStatusHandler()
	engine.GET("/health", status)
	engine.HEAD("/health", status)
	engine.OPTIONS("/health", status)

	api := engine.Group("/api", auth.NewMiddleware(opt.Tokens))
	opt.Blog.Register(api)

	return engine
}

// RunServer serves engine on addr until ctx is done, then shuts down gracefully.
func RunServer(ctx context.Context, logger glog.Logger, addr string, engine *gin.Engine) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on http", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server exit")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown http server")
	}

	logger.Info("http server stopped")
	return nil
}

func newStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Allow", "GET, HEAD, OPTIONS")
		if c.Request.Method != http.MethodGet {
			c.Status(http.StatusOK)
			return
		}

		c.String(http.StatusOK, "ok")
	}
}

// originAllowed reports whether the host of origin is one of hosts or a subdomain of one.
func originAllowed(origin string, hosts []string) bool {
	parsed, err := url.Parse(strings.TrimSpace(origin))
	if err != nil {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return false
	}
	for _, allowed := range hosts {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		if allowed == "" {
			continue
		}
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}

	return false
}

func newCORS(hosts []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && originAllowed(origin, hosts) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", corsAllowMethods)
			c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
			c.Header("Access-Control-Max-Age", corsMaxAge)
			c.Header("Vary", "Origin")

			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusNoContent)
				return
			}
		} else if strings.TrimSpace(origin) != "" && c.Request.Method == http.MethodOptions {
			// preflight from an origin we do not serve
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		c.Next()
	}
}
