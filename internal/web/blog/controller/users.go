package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/dto"
)

// Me GET /users/me
func (ctl *Controller) Me(c *gin.Context) {
	u := currentUser(c)
	c.JSON(http.StatusOK, gin.H{"user": u, "role": ctl.svc.RoleOf(u)})
}

// RequestEditor POST /users/me/editor-request
func (ctl *Controller) RequestEditor(c *gin.Context) {
	ctx, cancel := ctl.requestCtx(c)
	defer cancel()

	u, err := ctl.svc.RequestEditor(ctx, currentUser(c).Email)
	if err != nil {
		ctl.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": u})
}

// ListEditorRequests GET /admin/editor-requests
func (ctl *Controller) ListEditorRequests(c *gin.Context) {
	ctx, cancel := ctl.requestCtx(c)
	defer cancel()

	users, err := ctl.svc.ListEditorRequests(ctx)
	if err != nil {
		ctl.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// ApproveEditorRequest POST /admin/editor-requests/:email/approve
func (ctl *Controller) ApproveEditorRequest(c *gin.Context) {
	ctx, cancel := ctl.requestCtx(c)
	defer cancel()

	u, err := ctl.svc.ApproveEditorRequest(ctx, c.Param("email"))
	if err != nil {
		ctl.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": u})
}

// ListTopics GET /topics
func (ctl *Controller) ListTopics(c *gin.Context) {
	ctx, cancel := ctl.requestCtx(c)
	defer cancel()

	topics, err := ctl.svc.ListTopics(ctx)
	if err != nil {
		ctl.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

// CreateTopic POST /topics
func (ctl *Controller) CreateTopic(c *gin.Context) {
	in := new(dto.TopicInput)
	if err := c.ShouldBindJSON(in); err != nil {
		badJSON(c)
		return
	}

	ctx, cancel := ctl.requestCtx(c)
	defer cancel()

	topic, err := ctl.svc.CreateTopic(ctx, in, currentUser(c).Email)
	if err != nil {
		ctl.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, topic)
}

// GetTopic GET /topics/:slug
func (ctl *Controller) GetTopic(c *gin.Context) {
	ctx, cancel := ctl.requestCtx(c)
	defer cancel()

	topic, err := ctl.svc.GetTopic(ctx, c.Param("slug"))
	if err != nil {
		ctl.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, topic)
}
