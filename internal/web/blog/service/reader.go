package service

import (
	"context"
	"math"

	"github.com/Laisky/errors/v2"
	"golang.org/x/sync/errgroup"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/content"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/dto"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/model"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// getPostBySlug maps a missing record, or a slug that could never be
// derived, to NotFound.
func (s *Blog) getPostBySlug(ctx context.Context, slug string) (*model.Post, error) {
	if content.ValidateSlug(slug) != nil {
		return nil, model.NewNotFoundError("blog %q not found", slug)
	}

	post, err := s.store.GetPostBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewNotFoundError("blog %q not found", slug)
		}

		return nil, model.NewStorageError(err, "load post %q", slug)
	}

	return post, nil
}

// getPostByRef resolves a post by slug, falling back to its hex id.
func (s *Blog) getPostByRef(ctx context.Context, ref string) (*model.Post, error) {
	post, err := s.getPostBySlug(ctx, ref)
	if err == nil || !model.IsKind(err, model.KindNotFound) {
		return post, err
	}

	id, idErr := primitive.ObjectIDFromHex(ref)
	if idErr != nil {
		return nil, err
	}

	post, idErr = s.store.GetPostByID(ctx, id)
	if idErr != nil {
		if errors.Is(idErr, model.ErrNotFound) {
			return nil, err
		}

		return nil, model.NewStorageError(idErr, "load post %q", ref)
	}

	return post, nil
}

// loadPost reads the record and the content of slug concurrently.
//
// A missing record is NotFound whatever the content store holds, since
// orphaned content is invisible to readers. A record without content is
// an IntegrityError.
func (s *Blog) loadPost(ctx context.Context, slug string) (*model.Post, *content.Document, error) {
	if content.ValidateSlug(slug) != nil {
		return nil, nil, model.NewNotFoundError("blog %q not found", slug)
	}

	var (
		post            *model.Post
		doc             *content.Document
		postErr, docErr error
		g               errgroup.Group
	)
	g.Go(func() error {
		post, postErr = s.getPostBySlug(ctx, slug)
		return nil
	})
	g.Go(func() error {
		doc, docErr = s.content.Read(ctx, slug)
		return nil
	})
	_ = g.Wait()

	if postErr != nil {
		return nil, nil, postErr
	}
	if docErr != nil {
		if errors.Is(docErr, content.ErrNotExist) {
			s.loggerFromCtx(ctx).Error("content missing for existing post")
			return nil, nil, model.NewIntegrityError(docErr, "content missing for blog %q", slug)
		}

		return nil, nil, model.NewStorageError(docErr, "read content %q", slug)
	}

	return post, doc, nil
}

// GetPost returns the post of slug merged with its body, the rendered
// html and the approved comments.
func (s *Blog) GetPost(ctx context.Context, slug string) (*dto.PostDetail, error) {
	post, doc, err := s.loadPost(ctx, slug)
	if err != nil {
		return nil, err
	}

	comments, err := s.store.ListComments(ctx, model.CommentFilter{
		PostID: post.ID,
		Status: model.CommentStatusApproved,
	})
	if err != nil {
		return nil, model.NewStorageError(err, "load comments of %q", slug)
	}

	return &dto.PostDetail{
		Post:     post,
		Content:  doc.Body,
		HTML:     ParseMarkdown2HTML([]byte(doc.Body)),
		Comments: comments,
	}, nil
}

// GetPostContent returns the raw body of slug with its frontmatter.
// An empty author reads as content.DefaultAuthor and a missing date
// falls back to the publish time of the record.
func (s *Blog) GetPostContent(ctx context.Context, slug string) (*dto.PostContent, error) {
	post, doc, err := s.loadPost(ctx, slug)
	if err != nil {
		return nil, err
	}

	fm := doc.Frontmatter
	date := fm.Date.Time
	if date.IsZero() {
		date = post.PublishedAt
	}
	tags := fm.Tags
	if tags == nil {
		tags = []string{}
	}

	return &dto.PostContent{
		Slug:       slug,
		Title:      fm.Title,
		Excerpt:    fm.Excerpt,
		Author:     fm.AuthorOrDefault(),
		CoverImage: fm.CoverImage,
		Date:       date,
		Tags:       tags,
		Featured:   fm.Featured,
		Content:    doc.Body,
	}, nil
}

// ListPosts returns one page of posts, newest first.
func (s *Blog) ListPosts(ctx context.Context, q dto.ListPostsQuery) (*dto.PostList, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageLimit
	}
	if q.Limit > maxPageLimit {
		q.Limit = maxPageLimit
	}

	filter := model.PostFilter{
		Tag:          q.Tag,
		FeaturedOnly: q.Featured,
		Skip:         int64((q.Page - 1) * q.Limit),
		Limit:        int64(q.Limit),
	}

	var (
		posts []*model.Post
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		posts, err = s.store.ListPosts(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		total, err = s.store.CountPosts(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, model.NewStorageError(err, "list posts")
	}

	return &dto.PostList{
		Posts: posts,
		Pagination: dto.Pagination{
			Total: total,
			Page:  q.Page,
			Limit: q.Limit,
			Pages: int(math.Ceil(float64(total) / float64(q.Limit))),
		},
	}, nil
}
