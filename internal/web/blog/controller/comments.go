package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/dto"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/service"
)

// PublicComments GET /blogs/:slug/comments
func (ctl *Controller) PublicComments(c *gin.Context) {
	ctx, cancel := ctl.requestCtx(c)
	defer cancel()

	comments, err := ctl.svc.PublicComments(ctx, c.Param("slug"))
	if err != nil {
		ctl.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// SubmitComment POST /comments
func (ctl *Controller) SubmitComment(c *gin.Context) {
	in := new(dto.CommentInput)
	if err := c.ShouldBindJSON(in); err != nil {
		badJSON(c)
		return
	}

	ctx, cancel := ctl.requestCtx(c)
	defer cancel()

	comment, err := ctl.svc.SubmitComment(ctx, in)
	if err != nil {
		ctl.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"comment": comment,
		"message": "comment submitted and awaiting approval",
	})
}

// ListComments GET /admin/comments?status=
func (ctl *Controller) ListComments(c *gin.Context) {
	status, err := service.ParseCommentStatus(c.Query("status"))
	if err != nil {
		ctl.writeError(c, err)
		return
	}

	ctx, cancel := ctl.requestCtx(c)
	defer cancel()

	comments, err := ctl.svc.ListComments(ctx, status)
	if err != nil {
		ctl.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// GetComment GET /admin/comments/:id
func (ctl *Controller) GetComment(c *gin.Context) {
	ctx, cancel := ctl.requestCtx(c)
	defer cancel()

	comment, err := ctl.svc.GetComment(ctx, c.Param("id"))
	if err != nil {
		ctl.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// ApproveComment POST /admin/comments/:id/approve
func (ctl *Controller) ApproveComment(c *gin.Context) {
	ctx, cancel := ctl.requestCtx(c)
	defer cancel()

	comment, err := ctl.svc.ApproveComment(ctx, c.Param("id"))
	if err != nil {
		ctl.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// DeleteComment DELETE /admin/comments/:id
func (ctl *Controller) DeleteComment(c *gin.Context) {
	ctx, cancel := ctl.requestCtx(c)
	defer cancel()

	if err := ctl.svc.DeleteComment(ctx, c.Param("id")); err != nil {
		ctl.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Dashboard GET /admin/dashboard
func (ctl *Controller) Dashboard(c *gin.Context) {
	ctx, cancel := ctl.requestCtx(c)
	defer cancel()

	d, err := ctl.svc.Dashboard(ctx)
	if err != nil {
		ctl.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, d)
}
