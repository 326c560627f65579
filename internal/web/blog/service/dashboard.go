package service

import (
	"context"

	"github.com/Laisky/errors/v2"
	"github.com/jinzhu/copier"
	"golang.org/x/sync/errgroup"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/dto"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/model"
)

const dashboardRecentLimit = 5

// Dashboard collects the admin overview with parallel reads.
func (s *Blog) Dashboard(ctx context.Context) (*dto.Dashboard, error) {
	var (
		d              dto.Dashboard
		tags           []string
		recentPosts    []*model.Post
		recentComments []*model.Comment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.TotalBlogs, err = s.store.CountPosts(gctx, model.PostFilter{})
		return err
	})
	g.Go(func() (err error) {
		d.FeaturedBlogs, err = s.store.CountPosts(gctx, model.PostFilter{FeaturedOnly: true})
		return err
	})
	g.Go(func() (err error) {
		d.TotalComments, err = s.store.CountComments(gctx, model.CommentFilter{Status: model.CommentStatusAll})
		return err
	})
	g.Go(func() (err error) {
		d.PendingComments, err = s.store.CountComments(gctx, model.CommentFilter{Status: model.CommentStatusPending})
		return err
	})
	g.Go(func() (err error) {
		tags, err = s.store.DistinctTags(gctx)
		return err
	})
	g.Go(func() (err error) {
		recentPosts, err = s.store.ListPosts(gctx, model.PostFilter{Limit: dashboardRecentLimit})
		return err
	})
	g.Go(func() (err error) {
		recentComments, err = s.store.ListComments(gctx, model.CommentFilter{
			Status: model.CommentStatusAll,
			Limit:  dashboardRecentLimit,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, model.NewStorageError(err, "load dashboard")
	}

	d.TagsCount = len(tags)
	d.RecentBlogs = make([]dto.RecentPost, len(recentPosts))
	for i, p := range recentPosts {
		if err := copier.Copy(&d.RecentBlogs[i], p); err != nil {
			return nil, errors.Wrap(err, "copy recent post")
		}
	}

	var err error
	if d.RecentComments, err = s.withPosts(ctx, recentComments); err != nil {
		return nil, err
	}

	return &d, nil
}
