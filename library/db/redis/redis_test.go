package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestLikesKey(t *testing.T) {
	require.Equal(t, "laisky-blog-cms/likes/65f0c0ffee", likesKey("65f0c0ffee"))
}

func TestNewDB(t *testing.T) {
	db := NewDB(&redis.Options{Addr: "localhost:6379"})
	require.NotNil(t, db.cli)
	require.NoError(t, db.Close())
}

func TestLedgerErrorsNameTheCommand(t *testing.T) {
	db := NewDB(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer db.Close() // nolint: errcheck

	ctx := context.Background()
	_, err := db.MarkLiked(ctx, "p1", "alice")
	require.ErrorContains(t, err, "sadd like")
	require.ErrorContains(t, db.UnmarkLiked(ctx, "p1", "alice"), "srem like")
	require.ErrorContains(t, db.ForgetLikes(ctx, "p1"), "del likes")
}
