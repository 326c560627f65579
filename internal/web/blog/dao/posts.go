package dao

import (
	"context"

	"github.com/Laisky/errors/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoLib "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/model"
	"github.com/Laisky/laisky-blog-cms/library/db/mongo"
)

func postQuery(f model.PostFilter) bson.D {
	query := bson.D{}
	if f.Tag != "" {
		query = append(query, bson.E{Key: "tags", Value: f.Tag})
	}
	if f.FeaturedOnly {
		query = append(query, bson.E{Key: "featured", Value: true})
	}

	return query
}

// InsertPost inserts p and sets its ID.
// A slug collision returns model.ErrDuplicateKey.
func (d *Blog) InsertPost(ctx context.Context, p *model.Post) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	// $push fails on a null field
	if p.Comments == nil {
		p.Comments = []primitive.ObjectID{}
	}

	if _, err := d.posts.InsertOne(ctx, p); err != nil {
		if mongo.DuplicateKey(err) {
			return errors.Wrapf(model.ErrDuplicateKey, "insert post %q", p.Slug)
		}
		return errors.Wrapf(err, "insert post %q", p.Slug)
	}

	return nil
}

// GetPostBySlug load post by slug
func (d *Blog) GetPostBySlug(ctx context.Context, slug string) (*model.Post, error) {
	p := new(model.Post)
	if err := d.posts.FindOne(ctx, bson.D{{Key: "slug", Value: slug}}).Decode(p); err != nil {
		return nil, notFoundOr(err, "find post %q", slug)
	}

	return p, nil
}

// GetPostByID load post by id
func (d *Blog) GetPostByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	p := new(model.Post)
	if err := d.posts.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(p); err != nil {
		return nil, notFoundOr(err, "find post %q", id.Hex())
	}

	return p, nil
}

// ListPosts returns posts newest first, without their comment lists.
func (d *Blog) ListPosts(ctx context.Context, f model.PostFilter) ([]*model.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "publishedAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetProjection(bson.D{{Key: "comments", Value: 0}})
	if f.Skip > 0 {
		opts.SetSkip(f.Skip)
	}
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cur, err := d.posts.Find(ctx, postQuery(f), opts)
	if err != nil {
		return nil, errors.Wrap(err, "find posts")
	}

	posts := []*model.Post{}
	if err = cur.All(ctx, &posts); err != nil {
		return nil, errors.Wrap(err, "load posts")
	}

	return posts, nil
}

// CountPosts counts posts matching f. Skip and Limit are ignored.
func (d *Blog) CountPosts(ctx context.Context, f model.PostFilter) (int64, error) {
	n, err := d.posts.CountDocuments(ctx, postQuery(f))
	if err != nil {
		return 0, errors.Wrap(err, "count posts")
	}

	return n, nil
}

// UpdatePost applies upd to the post of slug and returns the new version.
func (d *Blog) UpdatePost(ctx context.Context, slug string, upd model.PostUpdate) (*model.Post, error) {
	set := bson.D{{Key: "updatedAt", Value: upd.UpdatedAt}}
	if upd.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *upd.Title})
	}
	if upd.Excerpt != nil {
		set = append(set, bson.E{Key: "excerpt", Value: *upd.Excerpt})
	}
	if upd.Author != nil {
		set = append(set, bson.E{Key: "author", Value: *upd.Author})
	}
	if upd.Preview != nil {
		set = append(set, bson.E{Key: "content", Value: *upd.Preview})
	}
	if upd.CoverImage != nil {
		set = append(set, bson.E{Key: "coverImage", Value: *upd.CoverImage})
	}
	if upd.Images != nil {
		set = append(set, bson.E{Key: "images", Value: upd.Images})
	}
	if upd.Tags != nil {
		set = append(set, bson.E{Key: "tags", Value: upd.Tags})
	}
	if upd.Featured != nil {
		set = append(set, bson.E{Key: "featured", Value: *upd.Featured})
	}

	p := new(model.Post)
	if err := d.posts.FindOneAndUpdate(ctx,
		bson.D{{Key: "slug", Value: slug}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(p); err != nil {
		return nil, notFoundOr(err, "update post %q", slug)
	}

	return p, nil
}

// DeletePost deletes the post record only.
func (d *Blog) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	ret, err := d.posts.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return errors.Wrapf(err, "delete post %q", id.Hex())
	}
	if ret.DeletedCount == 0 {
		return errors.Wrapf(model.ErrNotFound, "delete post %q", id.Hex())
	}

	return nil
}

// IncrLikes atomically adds delta to the like counter and returns the new value.
func (d *Blog) IncrLikes(ctx context.Context, id primitive.ObjectID, delta int) (int, error) {
	p := new(model.Post)
	if err := d.posts.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "likes", Value: delta}}}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.D{{Key: "likes", Value: 1}}),
	).Decode(p); err != nil {
		return 0, notFoundOr(err, "incr likes of %q", id.Hex())
	}

	return p.Likes, nil
}

func (d *Blog) updateCommentRefs(ctx context.Context, postID primitive.ObjectID, op string, commentID primitive.ObjectID) error {
	ret, err := d.posts.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: postID}},
		bson.D{{Key: op, Value: bson.D{{Key: "comments", Value: commentID}}}},
	)
	if err != nil {
		return errors.Wrapf(err, "%s comment %q on post %q", op, commentID.Hex(), postID.Hex())
	}
	if ret.MatchedCount == 0 {
		return errors.Wrapf(model.ErrNotFound, "%s comment on post %q", op, postID.Hex())
	}

	return nil
}

// PushComment appends commentID to the post's comment list.
func (d *Blog) PushComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	return d.updateCommentRefs(ctx, postID, "$push", commentID)
}

// PullComment removes commentID from the post's comment list.
func (d *Blog) PullComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	return d.updateCommentRefs(ctx, postID, "$pull", commentID)
}

// DistinctTags returns every tag used by at least one post.
func (d *Blog) DistinctTags(ctx context.Context) ([]string, error) {
	values, err := d.posts.Distinct(ctx, "tags", bson.D{})
	if err != nil {
		return nil, errors.Wrap(err, "distinct tags")
	}

	tags := make([]string, 0, len(values))
	for _, v := range values {
		if tag, ok := v.(string); ok {
			tags = append(tags, tag)
		}
	}

	return tags, nil
}

// MigrateLegacyPosts drops the legacy `markdownPath` field and fills in a
// missing contentRef using refOf. It returns the number of modified posts.
func (d *Blog) MigrateLegacyPosts(ctx context.Context, refOf func(slug string) string) (int64, error) {
	unset, err := d.posts.UpdateMany(ctx,
		bson.D{{Key: "markdownPath", Value: bson.D{{Key: "$exists", Value: true}}}},
		bson.D{{Key: "$unset", Value: bson.D{{Key: "markdownPath", Value: 1}}}},
	)
	if err != nil {
		return 0, errors.Wrap(err, "unset markdownPath")
	}
	modified := unset.ModifiedCount

	cur, err := d.posts.Find(ctx,
		bson.D{{Key: "contentRef", Value: bson.D{{Key: "$in", Value: bson.A{nil, ""}}}}},
		options.Find().SetProjection(bson.D{{Key: "slug", Value: 1}}),
	)
	if err != nil {
		return modified, errors.Wrap(err, "find posts without contentRef")
	}
	defer cur.Close(ctx) // nolint: errcheck

	var models []mongoLib.WriteModel
	for cur.Next(ctx) {
		p := new(model.Post)
		if err = cur.Decode(p); err != nil {
			return modified, errors.Wrap(err, "decode post")
		}

		models = append(models, mongoLib.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "_id", Value: p.ID}}).
			SetUpdate(bson.D{{Key: "$set", Value: bson.D{{Key: "contentRef", Value: refOf(p.Slug)}}}}))
	}
	if err = cur.Err(); err != nil {
		return modified, errors.Wrap(err, "iterate posts")
	}
	if len(models) == 0 {
		return modified, nil
	}

	ret, err := d.posts.BulkWrite(ctx, models)
	if err != nil {
		return modified, errors.Wrap(err, "backfill contentRef")
	}

	return modified + ret.ModifiedCount, nil
}
