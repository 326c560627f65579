package dao

import (
	"context"

	"github.com/Laisky/errors/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/model"
	"github.com/Laisky/laisky-blog-cms/library/db/mongo"
)

// InsertTopic inserts t and sets its ID.
// A slug collision returns model.ErrDuplicateKey.
func (d *Blog) InsertTopic(ctx context.Context, t *model.Topic) error {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}

	if _, err := d.topics.InsertOne(ctx, t); err != nil {
		if mongo.DuplicateKey(err) {
			return errors.Wrapf(model.ErrDuplicateKey, "insert topic %q", t.Slug)
		}
		return errors.Wrapf(err, "insert topic %q", t.Slug)
	}

	return nil
}

// GetTopicBySlug load topic by slug
func (d *Blog) GetTopicBySlug(ctx context.Context, slug string) (*model.Topic, error) {
	t := new(model.Topic)
	if err := d.topics.FindOne(ctx, bson.D{{Key: "slug", Value: slug}}).Decode(t); err != nil {
		return nil, notFoundOr(err, "find topic %q", slug)
	}

	return t, nil
}

// ListTopics returns all topics ordered by name.
func (d *Blog) ListTopics(ctx context.Context) ([]*model.Topic, error) {
	cur, err := d.topics.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "find topics")
	}

	topics := []*model.Topic{}
	if err = cur.All(ctx, &topics); err != nil {
		return nil, errors.Wrap(err, "load topics")
	}

	return topics, nil
}
