package service

import (
	"context"

	"github.com/Laisky/zap"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/dto"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/model"
)

// LikePost increments the like counter of the post referenced by slug or id.
//
// With a like ledger configured and a non-empty identity, an identity that
// already liked the post leaves the counter untouched.
func (s *Blog) LikePost(ctx context.Context, ref, identity string) (*dto.LikeResult, error) {
	post, err := s.getPostByRef(ctx, ref)
	if err != nil {
		return nil, err
	}

	marked := false
	if s.likes != nil && identity != "" {
		added, err := s.likes.MarkLiked(ctx, post.ID.Hex(), identity)
		if err != nil {
			return nil, model.NewStorageError(err, "mark liked %q", post.Slug)
		}
		if !added {
			s.loggerFromCtx(ctx).Debug("already liked", zap.String("slug", post.Slug))
			return &dto.LikeResult{Likes: post.Likes}, nil
		}
		marked = true
	}

	likes, err := s.store.IncrLikes(ctx, post.ID, 1)
	if err != nil {
		if marked {
			if unmarkErr := s.likes.UnmarkLiked(ctx, post.ID.Hex(), identity); unmarkErr != nil {
				s.loggerFromCtx(ctx).Error("unmark like after failed increment",
					zap.String("slug", post.Slug), zap.Error(unmarkErr))
			}
		}

		return nil, model.NewStorageError(err, "like post %q", post.Slug)
	}

	return &dto.LikeResult{Likes: likes, Liked: true}, nil
}
