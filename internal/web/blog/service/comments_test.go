package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/dto"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/model"
)

func TestSubmitCommentValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	cases := []struct {
		name  string
		in    *dto.CommentInput
		field string
	}{
		{"no blog", &dto.CommentInput{Name: "Bob", Email: "b@x.com", Content: "nice"}, "blog"},
		{"short name", &dto.CommentInput{Blog: "x", Name: "B", Email: "b@x.com", Content: "nice"}, "name"},
		{"bad email", &dto.CommentInput{Blog: "x", Name: "Bob", Email: "not-an-email", Content: "nice"}, "email"},
		{"display email", &dto.CommentInput{Blog: "x", Name: "Bob", Email: "Bob <b@x.com>", Content: "nice"}, "email"},
		{"short content", &dto.CommentInput{Blog: "x", Name: "Bob", Email: "b@x.com", Content: "no"}, "content"},
		{"long content", &dto.CommentInput{Blog: "x", Name: "Bob", Email: "b@x.com", Content: strings.Repeat("a", 501)}, "content"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := env.svc.SubmitComment(ctx, c.in)
			requireKind(t, err, model.KindValidation)
			typed, _ := model.AsError(err)
			require.Contains(t, typed.Fields, c.field)
		})
	}

	_, err := env.svc.SubmitComment(ctx, &dto.CommentInput{
		Blog: "missing-post", Name: "Bob", Email: "b@x.com", Content: "nice",
	})
	requireKind(t, err, model.KindNotFound)
}

func TestCommentModeration(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	post, err := env.svc.CreatePost(ctx, newPostInput("Moderated"))
	require.NoError(t, err)

	first, err := env.svc.SubmitComment(ctx, &dto.CommentInput{
		Blog: post.Slug, Name: "Bob", Email: "B@X.com", Content: "first!",
	})
	require.NoError(t, err)
	require.Equal(t, "b@x.com", first.Email)
	second, err := env.svc.SubmitComment(ctx, &dto.CommentInput{
		Blog: post.Slug, Name: "Eve", Email: "e@x.com", Content: "second",
	})
	require.NoError(t, err)

	stored, err := env.store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, []string{first.ID.Hex(), second.ID.Hex()},
		[]string{stored.Comments[0].Hex(), stored.Comments[1].Hex()})

	pending, err := env.svc.ListComments(ctx, model.CommentStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, second.ID, pending[0].ID, "newest first")
	require.Equal(t, "Moderated", pending[0].BlogTitle)
	require.Equal(t, post.Slug, pending[0].BlogSlug)
	require.Equal(t, model.CommentStatusPending, pending[0].Status)

	approved, err := env.svc.ApproveComment(ctx, first.ID.Hex())
	require.NoError(t, err)
	require.True(t, approved.Approved)

	again, err := env.svc.ApproveComment(ctx, first.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, approved, again, "approving twice is a no-op")

	public, err := env.svc.PublicComments(ctx, post.Slug)
	require.NoError(t, err)
	require.Len(t, public, 1)
	require.Equal(t, first.ID, public[0].ID)

	got, err := env.svc.GetComment(ctx, first.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, model.CommentStatusApproved, got.Status)
	require.Equal(t, "b@x.com", got.Email)

	all, err := env.svc.ListComments(ctx, model.CommentStatusAll)
	require.NoError(t, err)
	require.Len(t, all, 2)

	require.NoError(t, env.svc.DeleteComment(ctx, first.ID.Hex()))
	stored, err = env.store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, second.ID, stored.Comments[0])
	require.Len(t, stored.Comments, 1)

	public, err = env.svc.PublicComments(ctx, post.Slug)
	require.NoError(t, err)
	require.Empty(t, public)

	requireKind(t, env.svc.DeleteComment(ctx, first.ID.Hex()), model.KindNotFound)
	_, err = env.svc.ApproveComment(ctx, first.ID.Hex())
	requireKind(t, err, model.KindNotFound)
	_, err = env.svc.ApproveComment(ctx, "not-an-id")
	requireKind(t, err, model.KindNotFound)
}

func TestSubmitCommentCompensates(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	post, err := env.svc.CreatePost(ctx, newPostInput("Compensated"))
	require.NoError(t, err)

	env.store.failPushComment = true
	_, err = env.svc.SubmitComment(ctx, &dto.CommentInput{
		Blog: post.Slug, Name: "Bob", Email: "b@x.com", Content: "lost",
	})
	requireKind(t, err, model.KindStorage)

	n, err := env.store.CountComments(ctx, model.CommentFilter{Status: model.CommentStatusAll})
	require.NoError(t, err)
	require.Zero(t, n, "the orphaned comment is removed again")
}

func TestDeleteCommentRestoresReference(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	post, err := env.svc.CreatePost(ctx, newPostInput("Restored Ref"))
	require.NoError(t, err)
	c, err := env.svc.SubmitComment(ctx, &dto.CommentInput{
		Blog: post.Slug, Name: "Bob", Email: "b@x.com", Content: "stay",
	})
	require.NoError(t, err)

	env.store.failDeleteComment = true
	requireKind(t, env.svc.DeleteComment(ctx, c.ID.Hex()), model.KindStorage)

	stored, err := env.store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, c.ID, stored.Comments[0])
	_, err = env.store.GetComment(ctx, c.ID)
	require.NoError(t, err)
}

func TestParseCommentStatus(t *testing.T) {
	for raw, want := range map[string]model.CommentStatus{
		"":         model.CommentStatusAll,
		"all":      model.CommentStatusAll,
		"pending":  model.CommentStatusPending,
		"approved": model.CommentStatusApproved,
	} {
		got, err := ParseCommentStatus(raw)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseCommentStatus("deleted")
	requireKind(t, err, model.KindValidation)
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	var slugs []string
	for i, title := range []string{"Dash One", "Dash Two"} {
		in := newPostInput(title)
		in.Featured = i == 1
		in.Tags = []string{"go", title}
		post, err := env.svc.CreatePost(ctx, in)
		require.NoError(t, err)
		slugs = append(slugs, post.Slug)
	}
	c, err := env.svc.SubmitComment(ctx, &dto.CommentInput{
		Blog: slugs[0], Name: "Bob", Email: "b@x.com", Content: "one",
	})
	require.NoError(t, err)
	_, err = env.svc.SubmitComment(ctx, &dto.CommentInput{
		Blog: slugs[1], Name: "Bob", Email: "b@x.com", Content: "two",
	})
	require.NoError(t, err)
	_, err = env.svc.ApproveComment(ctx, c.ID.Hex())
	require.NoError(t, err)

	d, err := env.svc.Dashboard(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, d.TotalBlogs)
	require.EqualValues(t, 1, d.FeaturedBlogs)
	require.EqualValues(t, 2, d.TotalComments)
	require.EqualValues(t, 1, d.PendingComments)
	require.Equal(t, 3, d.TagsCount)
	require.Len(t, d.RecentBlogs, 2)
	require.Equal(t, "dash-two", d.RecentBlogs[0].Slug)
	require.Equal(t, "Dash Two", d.RecentBlogs[0].Title)
	require.False(t, d.RecentBlogs[0].PublishedAt.IsZero())
	require.Len(t, d.RecentComments, 2)
	require.Equal(t, "dash-two", d.RecentComments[0].BlogSlug)
}
