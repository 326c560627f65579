package dao

import (
	"context"

	"github.com/Laisky/errors/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/model"
)

func commentQuery(f model.CommentFilter) bson.D {
	query := bson.D{}
	if !f.PostID.IsZero() {
		query = append(query, bson.E{Key: "blog", Value: f.PostID})
	}

	switch f.Status {
	case model.CommentStatusPending:
		query = append(query, bson.E{Key: "approved", Value: false})
	case model.CommentStatusApproved:
		query = append(query, bson.E{Key: "approved", Value: true})
	}

	return query
}

// InsertComment inserts c and sets its ID.
func (d *Blog) InsertComment(ctx context.Context, c *model.Comment) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}

	if _, err := d.comments.InsertOne(ctx, c); err != nil {
		return errors.Wrapf(err, "insert comment on post %q", c.PostID.Hex())
	}

	return nil
}

// GetComment load comment by id
func (d *Blog) GetComment(ctx context.Context, id primitive.ObjectID) (*model.Comment, error) {
	c := new(model.Comment)
	if err := d.comments.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(c); err != nil {
		return nil, notFoundOr(err, "find comment %q", id.Hex())
	}

	return c, nil
}

// ListComments returns comments newest first.
func (d *Blog) ListComments(ctx context.Context, f model.CommentFilter) ([]*model.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cur, err := d.comments.Find(ctx, commentQuery(f), opts)
	if err != nil {
		return nil, errors.Wrap(err, "find comments")
	}

	comments := []*model.Comment{}
	if err = cur.All(ctx, &comments); err != nil {
		return nil, errors.Wrap(err, "load comments")
	}

	return comments, nil
}

// CountComments counts comments matching f.
func (d *Blog) CountComments(ctx context.Context, f model.CommentFilter) (int64, error) {
	n, err := d.comments.CountDocuments(ctx, commentQuery(f))
	if err != nil {
		return 0, errors.Wrap(err, "count comments")
	}

	return n, nil
}

// ApproveComment sets the approved flag. changed is false when the
// comment was already approved.
func (d *Blog) ApproveComment(ctx context.Context, id primitive.ObjectID) (changed bool, err error) {
	ret, err := d.comments.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "approved", Value: true}}}},
	)
	if err != nil {
		return false, errors.Wrapf(err, "approve comment %q", id.Hex())
	}
	if ret.MatchedCount == 0 {
		return false, errors.Wrapf(model.ErrNotFound, "approve comment %q", id.Hex())
	}

	return ret.ModifiedCount > 0, nil
}

// DeleteComment deletes one comment.
func (d *Blog) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	ret, err := d.comments.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return errors.Wrapf(err, "delete comment %q", id.Hex())
	}
	if ret.DeletedCount == 0 {
		return errors.Wrapf(model.ErrNotFound, "delete comment %q", id.Hex())
	}

	return nil
}

// DeleteCommentsByPost deletes every comment of a post.
func (d *Blog) DeleteCommentsByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	ret, err := d.comments.DeleteMany(ctx, bson.D{{Key: "blog", Value: postID}})
	if err != nil {
		return 0, errors.Wrapf(err, "delete comments of post %q", postID.Hex())
	}

	return ret.DeletedCount, nil
}
