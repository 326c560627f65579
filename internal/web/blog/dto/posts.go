// Package dto request and response shapes of the blog api
package dto

import (
	"time"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/model"
)

// PostInput create post request
type PostInput struct {
	Title      string   `json:"title"`
	Excerpt    string   `json:"excerpt"`
	Content    string   `json:"content"`
	Author     string   `json:"author"`
	Tags       []string `json:"tags,omitempty"`
	CoverImage string   `json:"coverImage,omitempty"`
	Images     []string `json:"images,omitempty"`
	Featured   bool     `json:"featured,omitempty"`
}

// PostPatch update post request, absent fields are left untouched.
// The slug is never part of an update.
type PostPatch struct {
	Title      *string  `json:"title,omitempty"`
	Excerpt    *string  `json:"excerpt,omitempty"`
	Content    *string  `json:"content,omitempty"`
	Author     *string  `json:"author,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	CoverImage *string  `json:"coverImage,omitempty"`
	Images     []string `json:"images,omitempty"`
	Featured   *bool    `json:"featured,omitempty"`
}

// ListPostsQuery post listing filters
type ListPostsQuery struct {
	Tag      string `form:"tag"`
	Featured bool   `form:"featured"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

// Pagination page info of a listing
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// PostList one page of posts
type PostList struct {
	Posts      []*model.Post `json:"posts"`
	Pagination Pagination    `json:"pagination"`
}

// PostDetail a post merged with its content
type PostDetail struct {
	*model.Post
	// Content full markdown body
	Content string `json:"content"`
	// HTML rendered body
	HTML string `json:"html"`
	// Comments approved comments, newest first
	Comments []*model.Comment `json:"comments"`
}

// PostContent raw content of a post, with frontmatter read defaults applied
type PostContent struct {
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	Excerpt    string    `json:"excerpt"`
	Author     string    `json:"author"`
	CoverImage string    `json:"coverImage"`
	Date       time.Time `json:"date"`
	Tags       []string  `json:"tags"`
	Featured   bool      `json:"featured"`
	Content    string    `json:"content"`
}

// LikeResult like counter after a like
type LikeResult struct {
	Likes int `json:"likes"`
	// Liked false when the identity had already liked the post
	Liked bool `json:"liked"`
}

// RecentPost dashboard entry of a post
type RecentPost struct {
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	PublishedAt time.Time `json:"publishedAt"`
}

// ReconcileReport divergences between the record store and the content store
type ReconcileReport struct {
	// OrphanContent slugs with content but no record
	OrphanContent []string `json:"orphanContent"`
	// MissingContent slugs with a record but no content
	MissingContent []string `json:"missingContent"`
}

// Clean has no divergence
func (r *ReconcileReport) Clean() bool {
	return len(r.OrphanContent) == 0 && len(r.MissingContent) == 0
}
