// Package dao contains all the data access object used in the application.
package dao

import (
	"context"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"go.mongodb.org/mongo-driver/bson"
	mongoLib "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/model"
	"github.com/Laisky/laisky-blog-cms/library/db/mongo"
)

// Blog is the mongo record store. Every collection handle it uses is
// resolved once in New and the same registry drives EnsureIndexes.
type Blog struct {
	logger   glog.Logger
	db       mongo.DB
	posts    *mongoLib.Collection
	comments *mongoLib.Collection
	users    *mongoLib.Collection
	topics   *mongoLib.Collection
}

// New create new dao
func New(logger glog.Logger, db mongo.DB) *Blog {
	return &Blog{
		logger:   logger,
		db:       db,
		posts:    db.GetCol(model.Post{}.Collection()),
		comments: db.GetCol(model.Comment{}.Collection()),
		users:    db.GetCol(model.User{}.Collection()),
		topics:   db.GetCol(model.Topic{}.Collection()),
	}
}

// indexes lists the indexes every collection must carry. The unique ones
// are what finally rejects concurrent creates of the same identifier.
func (d *Blog) indexes() map[*mongoLib.Collection][]mongoLib.IndexModel {
	return map[*mongoLib.Collection][]mongoLib.IndexModel{
		d.posts: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "publishedAt", Value: -1}}},
			{Keys: bson.D{{Key: "tags", Value: 1}}},
		},
		d.comments: {
			{Keys: bson.D{{Key: "blog", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "approved", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		d.users: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		d.topics: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
}

// EnsureIndexes creates missing indexes. Existing ones are left as they are.
func (d *Blog) EnsureIndexes(ctx context.Context) error {
	for col, models := range d.indexes() {
		names, err := col.Indexes().CreateMany(ctx, models)
		if err != nil {
			return errors.Wrapf(err, "create indexes on %q", col.Name())
		}

		d.logger.Debug("ensured indexes",
			zap.String("collection", col.Name()),
			zap.Strings("indexes", names))
	}

	return nil
}

// Close closes the underlying connection.
func (d *Blog) Close(ctx context.Context) error {
	return d.db.Close(ctx)
}

func notFoundOr(err error, format string, args ...any) error {
	if mongo.NotFound(err) {
		return errors.Wrapf(model.ErrNotFound, format, args...)
	}

	return errors.Wrapf(err, format, args...)
}
