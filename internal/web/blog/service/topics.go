package service

import (
	"context"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/dto"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/model"
)

// CreateTopic stores a topic whose slug is derived from its name.
func (s *Blog) CreateTopic(ctx context.Context, in *dto.TopicInput, createdBy string) (*model.Topic, error) {
	in, err := validateTopicInput(in)
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	t := &model.Topic{
		Name:        in.Name,
		Slug:        Slugify(in.Name),
		Description: in.Description,
		CreatedBy:   normalizeEmail(createdBy),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err = s.store.InsertTopic(ctx, t); err != nil {
		if errors.Is(err, model.ErrDuplicateKey) {
			return nil, model.NewDuplicateError("a topic with a similar name already exists (slug %q)", t.Slug)
		}

		return nil, model.NewStorageError(err, "insert topic %q", t.Slug)
	}

	s.loggerFromCtx(ctx).Info("create topic", zap.String("slug", t.Slug))
	return t, nil
}

// ListTopics returns every topic ordered by name.
func (s *Blog) ListTopics(ctx context.Context) ([]*model.Topic, error) {
	topics, err := s.store.ListTopics(ctx)
	if err != nil {
		return nil, model.NewStorageError(err, "list topics")
	}

	return topics, nil
}

// GetTopic load topic by slug
func (s *Blog) GetTopic(ctx context.Context, slug string) (*model.Topic, error) {
	t, err := s.store.GetTopicBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewNotFoundError("topic %q not found", slug)
		}

		return nil, model.NewStorageError(err, "load topic %q", slug)
	}

	return t, nil
}
