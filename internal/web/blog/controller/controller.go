// Package controller serves the blog over http.
package controller

import (
	"context"
	"net/http"
	"time"

	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/dto"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/model"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/service"
	"github.com/Laisky/laisky-blog-cms/library/auth"
)

const (
	defaultTimeout = 10 * time.Second

	internalErrorMessage = "internal server error"
	ctxKeyUser           = "blog.user"
)

// Controller blog http handlers
type Controller struct {
	svc     *service.Blog
	timeout time.Duration
}

// New create new controller
func New(svc *service.Blog) *Controller {
	return &Controller{svc: svc, timeout: defaultTimeout}
}

// Register mounts every blog route on r, which is usually the /api group.
func (ctl *Controller) Register(r gin.IRouter) {
	editor := ctl.requireRole(model.RoleEditor)
	admin := ctl.requireRole(model.RoleAdmin)
	signedIn := ctl.requireRole(model.RoleUser)

	blogs := r.Group("/blogs")
	blogs.GET("", ctl.ListPosts)
	blogs.POST("", editor, ctl.CreatePost)
	blogs.GET("/:slug", ctl.GetPost)
	blogs.GET("/:slug/content", ctl.GetPostContent)
	blogs.PUT("/:slug", editor, ctl.UpdatePost)
	blogs.DELETE("/:slug", admin, ctl.DeletePost)
	blogs.POST("/:slug/like", ctl.LikePost)
	blogs.GET("/:slug/comments", ctl.PublicComments)

	r.POST("/comments", ctl.SubmitComment)

	adm := r.Group("/admin", admin)
	adm.GET("/comments", ctl.ListComments)
	adm.GET("/comments/:id", ctl.GetComment)
	adm.POST("/comments/:id/approve", ctl.ApproveComment)
	adm.DELETE("/comments/:id", ctl.DeleteComment)
	adm.GET("/dashboard", ctl.Dashboard)
	adm.GET("/editor-requests", ctl.ListEditorRequests)
	adm.POST("/editor-requests/:email/approve", ctl.ApproveEditorRequest)

	users := r.Group("/users/me", signedIn)
	users.GET("", ctl.Me)
	users.POST("/editor-request", ctl.RequestEditor)

	topics := r.Group("/topics")
	topics.GET("", ctl.ListTopics)
	topics.POST("", editor, ctl.CreateTopic)
	topics.GET("/:slug", ctl.GetTopic)
}

// requestCtx bounds the store calls of one request.
func (ctl *Controller) requestCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c, ctl.timeout)
}

func signInFromClaims(c *gin.Context) (dto.SignIn, bool) {
	claims, ok := auth.GetClaims(c)
	if !ok {
		return dto.SignIn{}, false
	}

	return dto.SignIn{
		Email:    claims.Email,
		Name:     claims.Name,
		Image:    claims.Picture,
		Provider: claims.Provider,
	}, true
}

// requireRole rejects anonymous callers with 401 and callers below role with 403.
func (ctl *Controller) requireRole(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := signInFromClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		ctx, cancel := ctl.requestCtx(c)
		defer cancel()

		u, err := ctl.svc.CurrentUser(ctx, identity)
		if err != nil {
			ctl.writeError(c, err)
			c.Abort()
			return
		}
		if !ctl.svc.RoleOf(u).AtLeast(role) {
			gmw.GetLogger(c).Warn("insufficient role",
				zap.String("email", u.Email), zap.String("want", string(role)))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}

		c.Set(ctxKeyUser, u)
		c.Next()
	}
}

func currentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(ctxKeyUser); ok {
		if u, ok := v.(*model.User); ok {
			return u
		}
	}

	return nil
}

// writeError maps the typed blog errors to statuses. Internal details of
// integrity and storage failures are logged and never returned.
func (ctl *Controller) writeError(c *gin.Context, err error) {
	logger := gmw.GetLogger(c)
	typed, ok := model.AsError(err)
	if !ok {
		typed = model.NewStorageError(err, "unexpected error")
	}

	switch typed.Kind {
	case model.KindValidation:
		logger.Warn("invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": typed.Message, "details": typed.Fields})
	case model.KindDuplicate:
		logger.Warn("duplicate identifier", zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": typed.Message})
	case model.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": typed.Message})
	default:
		logger.Error("handle request", zap.String("kind", string(typed.Kind)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
	}
}

func badJSON(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
}
