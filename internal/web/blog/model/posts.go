// Package model contains all the models used in the application.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PreviewLength is the number of leading body runes denormalized into Post.Preview.
const PreviewLength = 200

// Post is the record-store half of a blog post. The markdown body lives in
// the content store under the same slug.
type Post struct {
	// ID unique identifier for the post
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	// Slug URL-safe identifier derived from the title at creation, immutable afterwards
	Slug string `bson:"slug" json:"slug"`
	// Title title of the post
	Title string `bson:"title" json:"title"`
	// Excerpt short summary shown in listings
	Excerpt string `bson:"excerpt" json:"excerpt"`
	// Preview first PreviewLength runes of the markdown body
	Preview string `bson:"content" json:"preview"`
	// ContentRef where the full body is stored, e.g. `content/blogs/<slug>.md`
	ContentRef string `bson:"contentRef,omitempty" json:"-"`
	// Author display name of the author
	Author string `bson:"author" json:"author"`
	// CoverImage cover image url
	CoverImage string `bson:"coverImage" json:"cover_image"`
	// Images image urls referenced by the post
	Images []string `bson:"images" json:"images"`
	// Tags tags of the post, duplicates are kept as given
	Tags []string `bson:"tags" json:"tags"`
	// Featured whether the post is pinned on the front page
	Featured bool `bson:"featured" json:"featured"`
	// Likes like counter, only ever incremented
	Likes int `bson:"likes" json:"likes"`
	// PublishedAt time when the post was created
	PublishedAt time.Time `bson:"publishedAt" json:"published_at"`
	// UpdatedAt time when the post was last modified
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
	// Comments ids of all comments submitted to this post, in submission order
	Comments []primitive.ObjectID `bson:"comments" json:"-"`
}

// Collection returns the name of the MongoDB collection for posts
func (Post) Collection() string {
	return "blogs"
}

// PostFilter narrows post listings.
type PostFilter struct {
	Tag          string
	FeaturedOnly bool
	Skip, Limit  int64
}

// PostUpdate is the set of record fields rewritten by an update.
// Nil fields are left untouched.
type PostUpdate struct {
	Title      *string
	Excerpt    *string
	Author     *string
	Preview    *string
	CoverImage *string
	Images     []string
	Tags       []string
	Featured   *bool
	UpdatedAt  time.Time
}
