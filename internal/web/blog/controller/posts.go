package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/dto"
	"github.com/Laisky/laisky-blog-cms/library/auth"
)

// ListPosts GET /blogs
func (ctl *Controller) ListPosts(c *gin.Context) {
	var q dto.ListPostsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}

	ctx, cancel := ctl.requestCtx(c)
	defer cancel()

	list, err := ctl.svc.ListPosts(ctx, q)
	if err != nil {
		ctl.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// CreatePost POST /blogs
func (ctl *Controller) CreatePost(c *gin.Context) {
	in := new(dto.PostInput)
	if err := c.ShouldBindJSON(in); err != nil {
		badJSON(c)
		return
	}

	ctx, cancel := ctl.requestCtx(c)
	defer cancel()

	post, err := ctl.svc.CreatePost(ctx, in)
	if err != nil {
		ctl.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// GetPost GET /blogs/:slug
func (ctl *Controller) GetPost(c *gin.Context) {
	ctx, cancel := ctl.requestCtx(c)
	defer cancel()

	post, err := ctl.svc.GetPost(ctx, c.Param("slug"))
	if err != nil {
		ctl.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// GetPostContent GET /blogs/:slug/content
func (ctl *Controller) GetPostContent(c *gin.Context) {
	ctx, cancel := ctl.requestCtx(c)
	defer cancel()

	cnt, err := ctl.svc.GetPostContent(ctx, c.Param("slug"))
	if err != nil {
		ctl.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, cnt)
}

// UpdatePost PUT /blogs/:slug
func (ctl *Controller) UpdatePost(c *gin.Context) {
	patch := new(dto.PostPatch)
	if err := c.ShouldBindJSON(patch); err != nil {
		badJSON(c)
		return
	}

	ctx, cancel := ctl.requestCtx(c)
	defer cancel()

	post, err := ctl.svc.UpdatePost(ctx, c.Param("slug"), patch)
	if err != nil {
		ctl.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost DELETE /blogs/:slug
func (ctl *Controller) DeletePost(c *gin.Context) {
	ctx, cancel := ctl.requestCtx(c)
	defer cancel()

	if err := ctl.svc.DeletePost(ctx, c.Param("slug")); err != nil {
		ctl.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// LikePost POST /blogs/:slug/like
//
// Signed-in callers are identified by email and like a post once.
// Anonymous likes always count.
func (ctl *Controller) LikePost(c *gin.Context) {
	var identity string
	if claims, ok := auth.GetClaims(c); ok {
		identity = claims.Email
	}

	ctx, cancel := ctl.requestCtx(c)
	defer cancel()

	r, err := ctl.svc.LikePost(ctx, c.Param("slug"), identity)
	if err != nil {
		ctl.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}
