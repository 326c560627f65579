// Package redis keeps the per-identity like ledger in redis.
package redis

import (
	"context"

	"github.com/Laisky/errors/v2"
	"github.com/redis/go-redis/v9"
)

// DB is a wrapper for go-redis
type DB struct {
	cli redis.UniversalClient
}

// NewDB creates a new DB instance
func NewDB(opt *redis.Options) *DB {
	return &DB{
		cli: redis.NewClient(opt),
	}
}

// Ping checks the connection.
func (db *DB) Ping(ctx context.Context) error {
	return errors.Wrap(db.cli.Ping(ctx).Err(), "ping redis")
}

// Close closes the underlying client.
func (db *DB) Close() error {
	return db.cli.Close()
}

func likesKey(postID string) string {
	return KeyPrefixLikes + postID
}

// MarkLiked records identity as having liked postID.
// It returns false when the identity had already liked the post.
func (db *DB) MarkLiked(ctx context.Context, postID, identity string) (bool, error) {
	added, err := db.cli.SAdd(ctx, likesKey(postID), identity).Result()
	if err != nil {
		return false, errors.Wrapf(err, "sadd like for post %q", postID)
	}

	return added == 1, nil
}

// UnmarkLiked takes back a like recorded by MarkLiked.
func (db *DB) UnmarkLiked(ctx context.Context, postID, identity string) error {
	if err := db.cli.SRem(ctx, likesKey(postID), identity).Err(); err != nil {
		return errors.Wrapf(err, "srem like for post %q", postID)
	}

	return nil
}

// ForgetLikes drops the ledger of a deleted post.
func (db *DB) ForgetLikes(ctx context.Context, postID string) error {
	if err := db.cli.Del(ctx, likesKey(postID)).Err(); err != nil {
		return errors.Wrapf(err, "del likes of post %q", postID)
	}

	return nil
}
