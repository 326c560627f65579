package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentStatus is the moderation state of a comment as seen by readers.
type CommentStatus string

const (
	// CommentStatusPending submitted, visible to moderators only
	CommentStatusPending CommentStatus = "pending"
	// CommentStatusApproved visible to everyone
	CommentStatusApproved CommentStatus = "approved"
	// CommentStatusAll moderation views only, matches both states
	CommentStatusAll CommentStatus = "all"
)

// Comment represents a comment in the blog
type Comment struct {
	// ID is the unique identifier for the comment
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	// PostID is the identifier of the blog post this comment belongs to
	PostID primitive.ObjectID `bson:"blog" json:"blog"`
	// Name is the display name of the comment author
	Name string `bson:"name" json:"name"`
	// Email is the email address of the commenter (only visible to admins)
	Email string `bson:"email" json:"-"`
	// Content contains the actual text/body of the comment
	Content string `bson:"content" json:"content"`
	// CreatedAt records when the comment was first submitted
	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	// Approved indicates whether the comment has been approved by a moderator
	Approved bool `bson:"approved" json:"approved"`
}

// Collection returns the name of the MongoDB collection for comments
func (Comment) Collection() string {
	return "comments"
}

// Status returns the moderation state.
func (c *Comment) Status() CommentStatus {
	if c.Approved {
		return CommentStatusApproved
	}

	return CommentStatusPending
}

// CommentFilter narrows comment listings. A zero PostID matches all posts.
type CommentFilter struct {
	PostID primitive.ObjectID
	Status CommentStatus
	Limit  int64
}
