package service

import (
	"context"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/jinzhu/copier"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/dto"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/model"
)

// ParseCommentStatus parses a moderation filter, empty means all.
func ParseCommentStatus(raw string) (model.CommentStatus, error) {
	switch status := model.CommentStatus(raw); status {
	case "":
		return model.CommentStatusAll, nil
	case model.CommentStatusPending, model.CommentStatusApproved, model.CommentStatusAll:
		return status, nil
	default:
		return "", model.NewValidationError(invalidCommentMessage, map[string]string{
			"status": "status must be one of pending, approved, all",
		})
	}
}

func parseCommentID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, model.NewNotFoundError("comment %q not found", raw)
	}

	return id, nil
}

func (s *Blog) getComment(ctx context.Context, rawID string) (*model.Comment, error) {
	id, err := parseCommentID(rawID)
	if err != nil {
		return nil, err
	}

	c, err := s.store.GetComment(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewNotFoundError("comment %q not found", rawID)
		}

		return nil, model.NewStorageError(err, "load comment %q", rawID)
	}

	return c, nil
}

// SubmitComment stores a pending comment and appends it to its post.
// When the post can not take the reference the comment is removed again.
func (s *Blog) SubmitComment(ctx context.Context, in *dto.CommentInput) (*model.Comment, error) {
	in, err := validateCommentInput(in)
	if err != nil {
		return nil, err
	}

	post, err := s.getPostByRef(ctx, in.Blog)
	if err != nil {
		return nil, err
	}
	logger := s.loggerFromCtx(ctx).With(zap.String("slug", post.Slug))

	c := &model.Comment{
		PostID:    post.ID,
		Name:      in.Name,
		Email:     in.Email,
		Content:   in.Content,
		CreatedAt: s.timestamp(),
	}
	if err = s.store.InsertComment(ctx, c); err != nil {
		return nil, model.NewStorageError(err, "insert comment")
	}

	if err = s.store.PushComment(ctx, post.ID, c.ID); err != nil {
		if delErr := s.store.DeleteComment(ctx, c.ID); delErr != nil {
			logger.Error("remove comment after failed push",
				zap.String("comment", c.ID.Hex()), zap.Error(delErr))
		}

		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewNotFoundError("blog %q not found", post.Slug)
		}

		return nil, model.NewStorageError(err, "push comment to %q", post.Slug)
	}

	logger.Info("submit comment", zap.String("comment", c.ID.Hex()))
	return c, nil
}

// ApproveComment makes a comment public. Approving twice is a no-op.
func (s *Blog) ApproveComment(ctx context.Context, rawID string) (*model.Comment, error) {
	id, err := parseCommentID(rawID)
	if err != nil {
		return nil, err
	}

	changed, err := s.store.ApproveComment(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewNotFoundError("comment %q not found", rawID)
		}

		return nil, model.NewStorageError(err, "approve comment %q", rawID)
	}

	s.loggerFromCtx(ctx).Info("approve comment",
		zap.String("comment", rawID), zap.Bool("changed", changed))
	return s.getComment(ctx, rawID)
}

// DeleteComment pulls the comment from its post and then deletes it.
// The reference is pushed back when the delete fails.
func (s *Blog) DeleteComment(ctx context.Context, rawID string) error {
	c, err := s.getComment(ctx, rawID)
	if err != nil {
		return err
	}
	logger := s.loggerFromCtx(ctx).With(zap.String("comment", rawID))

	pulled := true
	if err = s.store.PullComment(ctx, c.PostID, c.ID); err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return model.NewStorageError(err, "pull comment %q", rawID)
		}

		pulled = false
		logger.Warn("parent post of comment is gone", zap.String("post", c.PostID.Hex()))
	}

	if err = s.store.DeleteComment(ctx, c.ID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewNotFoundError("comment %q not found", rawID)
		}

		if pulled {
			if pushErr := s.store.PushComment(ctx, c.PostID, c.ID); pushErr != nil {
				logger.Error("restore comment reference after failed delete", zap.Error(pushErr))
			}
		}

		return model.NewStorageError(err, "delete comment %q", rawID)
	}

	logger.Info("delete comment")
	return nil
}

// GetComment returns one comment for moderation.
func (s *Blog) GetComment(ctx context.Context, rawID string) (*dto.ModerationComment, error) {
	c, err := s.getComment(ctx, rawID)
	if err != nil {
		return nil, err
	}

	comments, err := s.withPosts(ctx, []*model.Comment{c})
	if err != nil {
		return nil, err
	}

	return comments[0], nil
}

// ListComments returns comments of every post for moderation, newest first.
func (s *Blog) ListComments(ctx context.Context, status model.CommentStatus) ([]*dto.ModerationComment, error) {
	comments, err := s.store.ListComments(ctx, model.CommentFilter{Status: status})
	if err != nil {
		return nil, model.NewStorageError(err, "list comments")
	}

	return s.withPosts(ctx, comments)
}

// PublicComments returns the approved comments of slug, newest first.
func (s *Blog) PublicComments(ctx context.Context, slug string) ([]*model.Comment, error) {
	post, err := s.getPostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	comments, err := s.store.ListComments(ctx, model.CommentFilter{
		PostID: post.ID,
		Status: model.CommentStatusApproved,
	})
	if err != nil {
		return nil, model.NewStorageError(err, "list comments of %q", slug)
	}

	return comments, nil
}

// withPosts decorates comments with the title and slug of their posts.
// Comments of deleted posts keep empty ones.
func (s *Blog) withPosts(ctx context.Context, comments []*model.Comment) ([]*dto.ModerationComment, error) {
	posts := map[primitive.ObjectID]*model.Post{}
	out := make([]*dto.ModerationComment, 0, len(comments))
	for _, c := range comments {
		mc := new(dto.ModerationComment)
		if err := copier.Copy(mc, c); err != nil {
			return nil, errors.Wrap(err, "copy comment")
		}
		mc.Status = c.Status()

		post, ok := posts[c.PostID]
		if !ok {
			var err error
			if post, err = s.store.GetPostByID(ctx, c.PostID); err != nil {
				if !errors.Is(err, model.ErrNotFound) {
					return nil, model.NewStorageError(err, "load post of comment %q", c.ID.Hex())
				}
				post = nil
			}
			posts[c.PostID] = post
		}
		if post != nil {
			mc.BlogTitle = post.Title
			mc.BlogSlug = post.Slug
		}

		out = append(out, mc)
	}

	return out, nil
}
