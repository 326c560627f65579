package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/content"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/dao"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/dto"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/model"
)

var errInjected = errors.New("injected failure")

// flakyStore fails the selected writes once.
type flakyStore struct {
	*dao.Memory
	failInsertPost    bool
	failUpdatePost    bool
	failIncrLikes     bool
	failPushComment   bool
	failDeleteComment bool
}

func (f *flakyStore) InsertPost(ctx context.Context, p *model.Post) error {
	if f.failInsertPost {
		f.failInsertPost = false
		return errInjected
	}

	return f.Memory.InsertPost(ctx, p)
}

func (f *flakyStore) UpdatePost(ctx context.Context, slug string, upd model.PostUpdate) (*model.Post, error) {
	if f.failUpdatePost {
		f.failUpdatePost = false
		return nil, errInjected
	}

	return f.Memory.UpdatePost(ctx, slug, upd)
}

func (f *flakyStore) IncrLikes(ctx context.Context, id primitive.ObjectID, delta int) (int, error) {
	if f.failIncrLikes {
		f.failIncrLikes = false
		return 0, errInjected
	}

	return f.Memory.IncrLikes(ctx, id, delta)
}

func (f *flakyStore) PushComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	if f.failPushComment {
		f.failPushComment = false
		return errInjected
	}

	return f.Memory.PushComment(ctx, postID, commentID)
}

func (f *flakyStore) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	if f.failDeleteComment {
		f.failDeleteComment = false
		return errInjected
	}

	return f.Memory.DeleteComment(ctx, id)
}

// memLedger is an in-process like ledger.
type memLedger struct {
	mu    sync.Mutex
	liked map[string]map[string]struct{}
}

func (l *memLedger) MarkLiked(_ context.Context, postID, identity string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.liked == nil {
		l.liked = map[string]map[string]struct{}{}
	}
	if l.liked[postID] == nil {
		l.liked[postID] = map[string]struct{}{}
	}
	if _, ok := l.liked[postID][identity]; ok {
		return false, nil
	}

	l.liked[postID][identity] = struct{}{}
	return true, nil
}

func (l *memLedger) UnmarkLiked(_ context.Context, postID, identity string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.liked[postID], identity)
	return nil
}

func (l *memLedger) ForgetLikes(_ context.Context, postID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.liked, postID)
	return nil
}

// faultyContent wraps the file store, failing writes on demand and
// holding every write open for a while so concurrent writers overlap.
type faultyContent struct {
	*content.FSStore
	failWrite bool
	hold      time.Duration
}

func (c *faultyContent) Write(ctx context.Context, doc *content.Document, mode content.WriteMode) error {
	if c.failWrite {
		return errInjected
	}

	err := c.FSStore.Write(ctx, doc, mode)
	time.Sleep(c.hold)
	return err
}

func (c *faultyContent) Replace(ctx context.Context, doc *content.Document, rev content.Revision) error {
	err := c.FSStore.Replace(ctx, doc, rev)
	time.Sleep(c.hold)
	return err
}

type testEnv struct {
	svc   *Blog
	store   *flakyStore
	fs      *content.FSStore
	content *faultyContent
	dir     string
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	dir := t.TempDir()
	fs, err := content.NewFSStore(glog.Shared.Named("content_test"), dir)
	require.NoError(t, err)

	store := &flakyStore{Memory: dao.NewMemory()}
	var (
		mu    sync.Mutex
		clock = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	)
	opts = append([]Option{
		WithLogger(glog.Shared.Named("service_test")),
		WithClock(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			clock = clock.Add(time.Second)
			return clock
		}),
	}, opts...)

	wrapped := &faultyContent{FSStore: fs}
	return &testEnv{
		svc:     New(store, wrapped, opts...),
		store:   store,
		fs:      fs,
		content: wrapped,
		dir:     dir,
	}
}

// backdate makes the content of slug look long abandoned.
func (e *testEnv) backdate(t *testing.T, slug string) {
	t.Helper()

	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(e.dir, slug+".md"), old, old))
}

func (e *testEnv) rawContent(t *testing.T, slug string) []byte {
	t.Helper()

	raw, err := os.ReadFile(filepath.Join(e.dir, slug+".md"))
	require.NoError(t, err)
	return raw
}

func requireKind(t *testing.T, err error, kind model.ErrorKind) {
	t.Helper()

	require.Error(t, err)
	require.Truef(t, model.IsKind(err, kind), "want %s, got %v", kind, err)
}

// body returns a markdown body of n runes.
func body(n int) string {
	return strings.Repeat("x", n)
}

func newPostInput(title string) *dto.PostInput {
	return &dto.PostInput{
		Title:   title,
		Excerpt: "an intro to the post",
		Content: "# Heading\n\n" + body(60),
		Author:  "Ann",
		Tags:    []string{"go", "blog"},
	}
}

func strPtr(s string) *string {
	return &s
}
