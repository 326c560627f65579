package service

import (
	"context"
	"sort"

	"github.com/Laisky/zap"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/dto"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/model"
)

// Reconcile compares both stores and reports slugs present in only one of
// them. It never repairs or deletes anything.
func (s *Blog) Reconcile(ctx context.Context) (*dto.ReconcileReport, error) {
	posts, err := s.store.ListPosts(ctx, model.PostFilter{})
	if err != nil {
		return nil, model.NewStorageError(err, "list posts")
	}
	slugs, err := s.content.List(ctx)
	if err != nil {
		return nil, model.NewStorageError(err, "list content")
	}

	stored := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		stored[slug] = struct{}{}
	}

	report := &dto.ReconcileReport{
		OrphanContent:  []string{},
		MissingContent: []string{},
	}
	recorded := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		recorded[p.Slug] = struct{}{}
		if _, ok := stored[p.Slug]; !ok {
			report.MissingContent = append(report.MissingContent, p.Slug)
		}
	}
	for _, slug := range slugs {
		if _, ok := recorded[slug]; !ok {
			report.OrphanContent = append(report.OrphanContent, slug)
		}
	}
	sort.Strings(report.MissingContent)
	sort.Strings(report.OrphanContent)

	s.loggerFromCtx(ctx).Info("reconcile",
		zap.Int("posts", len(posts)),
		zap.Int("contents", len(slugs)),
		zap.Strings("orphan_content", report.OrphanContent),
		zap.Strings("missing_content", report.MissingContent))
	return report, nil
}
