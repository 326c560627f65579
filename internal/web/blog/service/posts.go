package service

import (
	"context"
	"slices"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/content"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/dto"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/model"
)

func duplicatePostError(slug string) error {
	return model.NewDuplicateError("a blog with a similar title already exists (slug %q)", slug)
}

// CreatePost stores a new post.
//
// # Steps
//  1. validate in and derive the slug from its title
//  2. reject the slug if a record already uses it
//  3. write the content file exclusively, or swap out an orphan left by an
//     earlier failed create
//  4. insert the record
//
// A record insert failure leaves the content file behind as an orphan, a
// create of the same title after the orphan grace period repairs it.
// Concurrent creates of one slug get exactly one content write through,
// every other writer gets a duplicate error.
func (s *Blog) CreatePost(ctx context.Context, in *dto.PostInput) (*model.Post, error) {
	in, err := validatePostInput(in)
	if err != nil {
		return nil, err
	}

	slug := Slugify(in.Title)
	logger := s.loggerFromCtx(ctx).With(zap.String("slug", slug))

	if _, err = s.store.GetPostBySlug(ctx, slug); err == nil {
		return nil, duplicatePostError(slug)
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, model.NewStorageError(err, "check slug %q", slug)
	}

	// content without a record is an orphan once it is older than any
	// create still in flight, only then may it be replaced
	var orphan *content.Info
	switch info, err := s.content.Stat(ctx, slug); {
	case errors.Is(err, content.ErrNotExist):
	case err != nil:
		return nil, model.NewStorageError(err, "check content %q", slug)
	case s.orphanGrace > 0 && s.now().Sub(info.ModTime) < s.orphanGrace:
		logger.Debug("content of a concurrent create", zap.Time("modified", info.ModTime))
		return nil, duplicatePostError(slug)
	default:
		logger.Warn("repair orphaned content", zap.Time("modified", info.ModTime))
		orphan = info
	}

	now := s.timestamp()
	doc := &content.Document{
		Slug: slug,
		Frontmatter: content.Frontmatter{
			Title:      in.Title,
			Excerpt:    in.Excerpt,
			Author:     in.Author,
			CoverImage: in.CoverImage,
			Date:       content.NewTimestamp(now),
			Tags:       in.Tags,
			Featured:   in.Featured,
		},
		Body: in.Content,
	}
	if orphan != nil {
		err = s.content.Replace(ctx, doc, orphan.Revision)
	} else {
		err = s.content.Write(ctx, doc, content.WriteCreate)
	}
	if err != nil {
		if errors.Is(err, content.ErrExists) || errors.Is(err, content.ErrConflict) {
			return nil, duplicatePostError(slug)
		}

		return nil, model.NewStorageError(err, "write content %q", slug)
	}

	post := &model.Post{
		Slug:        slug,
		Title:       in.Title,
		Excerpt:     in.Excerpt,
		Preview:     Truncate(in.Content, model.PreviewLength),
		ContentRef:  s.content.Ref(slug),
		Author:      in.Author,
		CoverImage:  in.CoverImage,
		Images:      in.Images,
		Tags:        in.Tags,
		Featured:    in.Featured,
		PublishedAt: now,
		UpdatedAt:   now,
	}
	if err = s.store.InsertPost(ctx, post); err != nil {
		if errors.Is(err, model.ErrDuplicateKey) {
			return nil, duplicatePostError(slug)
		}

		logger.Error("insert post after writing content, content left as orphan", zap.Error(err))
		return nil, model.NewStorageError(err, "insert post %q", slug)
	}

	logger.Info("create post", zap.String("id", post.ID.Hex()))
	return post, nil
}

// mirroredChanged reports whether any field mirrored from the record differs.
func mirroredChanged(a, b *content.Frontmatter) bool {
	return a.Title != b.Title ||
		a.Excerpt != b.Excerpt ||
		a.Author != b.Author ||
		a.CoverImage != b.CoverImage ||
		a.Featured != b.Featured ||
		!slices.Equal(a.Tags, b.Tags)
}

// UpdatePost applies patch to the post of slug.
//
// The content file is rewritten, before the record, only when the body or
// a mirrored field changes value. An untouched body is kept byte for byte.
// Missing content can only be repaired by a patch carrying a new body.
func (s *Blog) UpdatePost(ctx context.Context, slug string, patch *dto.PostPatch) (*model.Post, error) {
	patch, err := validatePostPatch(patch)
	if err != nil {
		return nil, err
	}

	post, err := s.getPostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	logger := s.loggerFromCtx(ctx).With(zap.String("slug", slug))

	current, err := s.content.Read(ctx, slug)
	missing := errors.Is(err, content.ErrNotExist)
	switch {
	case missing && patch.Content == nil:
		return nil, model.NewIntegrityError(err, "content missing for blog %q", slug)
	case missing:
		logger.Warn("restore missing content from update")
		current = &content.Document{
			Slug: slug,
			Frontmatter: content.Frontmatter{
				Title:      post.Title,
				Excerpt:    post.Excerpt,
				Author:     post.Author,
				CoverImage: post.CoverImage,
				Date:       content.NewTimestamp(post.PublishedAt),
				Tags:       post.Tags,
				Featured:   post.Featured,
			},
		}
	case err != nil:
		return nil, model.NewStorageError(err, "read content %q", slug)
	}

	now := s.timestamp()
	upd := model.PostUpdate{
		Title:      patch.Title,
		Excerpt:    patch.Excerpt,
		Author:     patch.Author,
		CoverImage: patch.CoverImage,
		Images:     patch.Images,
		Tags:       patch.Tags,
		Featured:   patch.Featured,
		UpdatedAt:  now,
	}

	next := *current
	fm := &next.Frontmatter
	if patch.Title != nil {
		fm.Title = *patch.Title
	}
	if patch.Excerpt != nil {
		fm.Excerpt = *patch.Excerpt
	}
	if patch.Author != nil {
		fm.Author = *patch.Author
	}
	if patch.CoverImage != nil {
		fm.CoverImage = *patch.CoverImage
	}
	if patch.Featured != nil {
		fm.Featured = *patch.Featured
	}
	if patch.Tags != nil {
		fm.Tags = patch.Tags
	}
	if patch.Content != nil {
		next.Body = *patch.Content
		preview := Truncate(next.Body, model.PreviewLength)
		upd.Preview = &preview
	}

	rewritten := missing || next.Body != current.Body || mirroredChanged(fm, &current.Frontmatter)
	if rewritten {
		if fm.Date.IsZero() {
			fm.Date = content.NewTimestamp(post.PublishedAt)
		}
		updatedAt := content.NewTimestamp(now)
		fm.UpdatedAt = &updatedAt

		if err = s.content.Write(ctx, &next, content.WriteOverwrite); err != nil {
			return nil, model.NewStorageError(err, "rewrite content %q", slug)
		}
		logger.Debug("rewrite content")
	}

	updated, err := s.store.UpdatePost(ctx, slug, upd)
	if err != nil {
		logger.Error("update post after writing content", zap.Error(err))
		if rewritten && !missing && !errors.Is(err, model.ErrNotFound) {
			if restoreErr := s.content.Write(ctx, current, content.WriteOverwrite); restoreErr != nil {
				logger.Error("restore content after failed update", zap.Error(restoreErr))
			}
		}
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewNotFoundError("blog %q not found", slug)
		}

		return nil, model.NewStorageError(err, "update post %q", slug)
	}

	logger.Info("update post")
	return updated, nil
}

// DeletePost removes the comments, the record and then the content of slug.
// Content that is already gone is tolerated.
func (s *Blog) DeletePost(ctx context.Context, slug string) error {
	post, err := s.getPostBySlug(ctx, slug)
	if err != nil {
		return err
	}
	logger := s.loggerFromCtx(ctx).With(zap.String("slug", slug))

	n, err := s.store.DeleteCommentsByPost(ctx, post.ID)
	if err != nil {
		return model.NewStorageError(err, "delete comments of %q", slug)
	}

	if err = s.store.DeletePost(ctx, post.ID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewNotFoundError("blog %q not found", slug)
		}

		return model.NewStorageError(err, "delete post %q", slug)
	}

	if err = s.content.Delete(ctx, slug); err != nil {
		if !errors.Is(err, content.ErrNotExist) {
			logger.Error("delete content after deleting post", zap.Error(err))
			return model.NewStorageError(err, "delete content %q", slug)
		}

		logger.Warn("content already missing on delete")
	}

	if s.likes != nil {
		if err = s.likes.ForgetLikes(ctx, post.ID.Hex()); err != nil {
			logger.Warn("forget likes", zap.Error(err))
		}
	}

	logger.Info("delete post", zap.Int64("comments", n))
	return nil
}
