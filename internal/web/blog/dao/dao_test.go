package dao

import (
	"context"
	"testing"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoLib "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/model"
)

// mockDB serves collections of an mtest mock deployment.
type mockDB struct {
	db *mongoLib.Database
}

func (m mockDB) Close(context.Context) error { return nil }
func (m mockDB) CurrentDB() *mongoLib.Database { return m.db }
func (m mockDB) GetCol(name string) *mongoLib.Collection { return m.db.Collection(name) }

func newMockDao(mt *mtest.T) *Blog {
	return New(glog.Shared.Named("dao_test"), mockDB{db: mt.DB})
}

func TestBlogPosts(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	ns := "blog.blogs"

	mt.Run("insert", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		p := &model.Post{Slug: "hello-world", Title: "Hello World!!"}
		require.NoError(mt, newMockDao(mt).InsertPost(ctx, p))
		require.False(mt, p.ID.IsZero())
		require.NotNil(mt, p.Comments)
	})

	mt.Run("insert duplicate slug", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: blog.blogs index: slug_1",
		}))

		err := newMockDao(mt).InsertPost(ctx, &model.Post{Slug: "hello-world"})
		require.True(mt, errors.Is(err, model.ErrDuplicateKey))
	})

	mt.Run("find by slug", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "slug", Value: "hello-world"},
			{Key: "title", Value: "Hello World!!"},
			{Key: "content", Value: "preview"},
			{Key: "likes", Value: 3},
		}))

		p, err := newMockDao(mt).GetPostBySlug(ctx, "hello-world")
		require.NoError(mt, err)
		require.Equal(mt, id, p.ID)
		require.Equal(mt, "preview", p.Preview)
		require.Equal(mt, 3, p.Likes)
	})

	mt.Run("find by slug not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := newMockDao(mt).GetPostBySlug(ctx, "missing")
		require.True(mt, errors.Is(err, model.ErrNotFound))
	})

	mt.Run("incr likes", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{
			Key:   "value",
			Value: bson.D{{Key: "_id", Value: id}, {Key: "likes", Value: 4}},
		}))

		likes, err := newMockDao(mt).IncrLikes(ctx, id, 1)
		require.NoError(mt, err)
		require.Equal(mt, 4, likes)
	})

	mt.Run("push comment to missing post", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := newMockDao(mt).PushComment(ctx, primitive.NewObjectID(), primitive.NewObjectID())
		require.True(mt, errors.Is(err, model.ErrNotFound))
	})

	mt.Run("count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: 2}}))

		n, err := newMockDao(mt).CountPosts(ctx, model.PostFilter{Tag: "go"})
		require.NoError(mt, err)
		require.EqualValues(mt, 2, n)
	})

	mt.Run("distinct tags", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "values", Value: bson.A{"go", "mongo"}}))

		tags, err := newMockDao(mt).DistinctTags(ctx)
		require.NoError(mt, err)
		require.Equal(mt, []string{"go", "mongo"}, tags)
	})
}

func TestBlogComments(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("approve twice", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 0}),
		)

		d := newMockDao(mt)
		id := primitive.NewObjectID()
		changed, err := d.ApproveComment(ctx, id)
		require.NoError(mt, err)
		require.True(mt, changed)

		changed, err = d.ApproveComment(ctx, id)
		require.NoError(mt, err)
		require.False(mt, changed)
	})

	mt.Run("approve missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		_, err := newMockDao(mt).ApproveComment(ctx, primitive.NewObjectID())
		require.True(mt, errors.Is(err, model.ErrNotFound))
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := newMockDao(mt).DeleteComment(ctx, primitive.NewObjectID())
		require.True(mt, errors.Is(err, model.ErrNotFound))
	})
}

func TestCommentQuery(t *testing.T) {
	postID := primitive.NewObjectID()

	require.Equal(t, bson.D{}, commentQuery(model.CommentFilter{Status: model.CommentStatusAll}))
	require.Equal(t,
		bson.D{{Key: "blog", Value: postID}, {Key: "approved", Value: true}},
		commentQuery(model.CommentFilter{PostID: postID, Status: model.CommentStatusApproved}))
	require.Equal(t,
		bson.D{{Key: "approved", Value: false}},
		commentQuery(model.CommentFilter{Status: model.CommentStatusPending}))
}

func TestPostQuery(t *testing.T) {
	require.Equal(t, bson.D{}, postQuery(model.PostFilter{}))
	require.Equal(t,
		bson.D{{Key: "tags", Value: "go"}, {Key: "featured", Value: true}},
		postQuery(model.PostFilter{Tag: "go", FeaturedOnly: true}))
}
