package dto

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/model"
)

// CommentInput submit comment request
type CommentInput struct {
	// Blog id or slug of the post
	Blog    string `json:"blog"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Content string `json:"content"`
}

// ModerationComment comment as seen by moderators, with its post
type ModerationComment struct {
	ID        primitive.ObjectID  `json:"id"`
	PostID    primitive.ObjectID  `json:"blog"`
	Name      string              `json:"name"`
	Email     string              `json:"email"`
	Content   string              `json:"content"`
	CreatedAt time.Time           `json:"createdAt"`
	Approved  bool                `json:"approved"`
	Status    model.CommentStatus `json:"status"`
	BlogTitle string              `json:"blogTitle"`
	BlogSlug  string              `json:"blogSlug"`
}

// Dashboard admin overview
type Dashboard struct {
	TotalBlogs      int64                `json:"totalBlogs"`
	FeaturedBlogs   int64                `json:"featuredBlogs"`
	TotalComments   int64                `json:"totalComments"`
	PendingComments int64                `json:"pendingComments"`
	TagsCount       int                  `json:"tagsCount"`
	RecentBlogs     []RecentPost         `json:"recentBlogs"`
	RecentComments  []*ModerationComment `json:"recentComments"`
}
