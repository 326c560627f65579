// Package service implements the blog: posts kept in two stores, comment
// moderation, users and topics.
package service

import (
	"context"
	"strings"
	"time"

	gmw "github.com/Laisky/gin-middlewares/v7"
	gutils "github.com/Laisky/go-utils/v6"
	glog "github.com/Laisky/go-utils/v6/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/content"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/model"
	"github.com/Laisky/laisky-blog-cms/library/log"
)

// PostStore is the record store of posts.
type PostStore interface {
	InsertPost(ctx context.Context, p *model.Post) error
	GetPostBySlug(ctx context.Context, slug string) (*model.Post, error)
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error)
	ListPosts(ctx context.Context, f model.PostFilter) ([]*model.Post, error)
	CountPosts(ctx context.Context, f model.PostFilter) (int64, error)
	UpdatePost(ctx context.Context, slug string, upd model.PostUpdate) (*model.Post, error)
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	IncrLikes(ctx context.Context, id primitive.ObjectID, delta int) (int, error)
	PushComment(ctx context.Context, postID, commentID primitive.ObjectID) error
	PullComment(ctx context.Context, postID, commentID primitive.ObjectID) error
	DistinctTags(ctx context.Context) ([]string, error)
}

// CommentStore is the record store of comments.
type CommentStore interface {
	InsertComment(ctx context.Context, c *model.Comment) error
	GetComment(ctx context.Context, id primitive.ObjectID) (*model.Comment, error)
	ListComments(ctx context.Context, f model.CommentFilter) ([]*model.Comment, error)
	CountComments(ctx context.Context, f model.CommentFilter) (int64, error)
	ApproveComment(ctx context.Context, id primitive.ObjectID) (bool, error)
	DeleteComment(ctx context.Context, id primitive.ObjectID) error
	DeleteCommentsByPost(ctx context.Context, postID primitive.ObjectID) (int64, error)
}

// UserStore is the record store of users.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpsertUser(ctx context.Context, u *model.User, provider model.AuthProvider) (*model.User, error)
	UpdateUser(ctx context.Context, email string, role *model.Role, editorRequest *bool) (*model.User, error)
	ListEditorRequests(ctx context.Context) ([]*model.User, error)
}

// TopicStore is the record store of topics.
type TopicStore interface {
	InsertTopic(ctx context.Context, t *model.Topic) error
	GetTopicBySlug(ctx context.Context, slug string) (*model.Topic, error)
	ListTopics(ctx context.Context) ([]*model.Topic, error)
}

// Store is every record store the blog needs.
// Both dao.Blog and dao.Memory implement it.
type Store interface {
	PostStore
	CommentStore
	UserStore
	TopicStore
}

// LikeLedger remembers who liked which post.
type LikeLedger interface {
	MarkLiked(ctx context.Context, postID, identity string) (bool, error)
	UnmarkLiked(ctx context.Context, postID, identity string) error
	ForgetLikes(ctx context.Context, postID string) error
}

// DefaultOrphanGrace outlives any create request, content younger than
// this without a record belongs to a create still in flight.
const DefaultOrphanGrace = time.Minute

// Option customises a Blog during construction.
type Option func(*Blog)

// WithLogger overrides the fallback logger used when no contextual logger is available.
func WithLogger(logger glog.Logger) Option {
	return func(s *Blog) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLikeLedger enables per-identity like deduplication.
func WithLikeLedger(ledger LikeLedger) Option {
	return func(s *Blog) {
		s.likes = ledger
	}
}

// WithAdminEmails promotes users signing in with any of emails to admin.
func WithAdminEmails(emails ...string) Option {
	return func(s *Blog) {
		for _, email := range emails {
			if email = normalizeEmail(email); email != "" {
				s.adminEmails[email] = struct{}{}
			}
		}
	}
}

// WithClock replaces the wall clock, primarily for testing.
func WithClock(now func() time.Time) Option {
	return func(s *Blog) {
		if now != nil {
			s.now = now
		}
	}
}

// WithOrphanGrace sets how old recordless content must be before a create
// may replace it. Zero repairs orphans at once.
func WithOrphanGrace(grace time.Duration) Option {
	return func(s *Blog) {
		s.orphanGrace = grace
	}
}

// Blog is the blog service
type Blog struct {
	logger      glog.Logger
	store       Store
	content     content.Store
	likes       LikeLedger
	adminEmails map[string]struct{}
	now         func() time.Time
	orphanGrace time.Duration
}

// New create new blog service
func New(store Store, contents content.Store, opts ...Option) *Blog {
	s := &Blog{
		logger:      log.Logger.Named("blog_service"),
		store:       store,
		content:     contents,
		adminEmails: map[string]struct{}{},
		now:         gutils.Clock.GetUTCNow,
		orphanGrace: DefaultOrphanGrace,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// loggerFromCtx prefers the request logger set by the gin logger middleware.
func (s *Blog) loggerFromCtx(ctx context.Context) glog.Logger {
	if ctx != nil {
		if logger := gmw.GetLogger(ctx); logger != nil {
			return logger.Named("blog_service")
		}
	}

	return s.logger
}

// timestamp returns the current time at the precision mongo keeps.
func (s *Blog) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
