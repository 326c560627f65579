package dao

import (
	"context"
	"sort"
	"sync"

	"github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/model"
)

// Memory is an in-process record store with the same semantics as Blog,
// unique indexes included. It backs `--dry` runs and tests; nothing survives
// a restart.
type Memory struct {
	mu       sync.RWMutex
	posts    map[primitive.ObjectID]*model.Post
	comments map[primitive.ObjectID]*model.Comment
	users    map[string]*model.User
	topics   map[string]*model.Topic
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		posts:    map[primitive.ObjectID]*model.Post{},
		comments: map[primitive.ObjectID]*model.Comment{},
		users:    map[string]*model.User{},
		topics:   map[string]*model.Topic{},
	}
}

func clonePost(p *model.Post) *model.Post {
	cp := *p
	cp.Images = append([]string(nil), p.Images...)
	cp.Tags = append([]string(nil), p.Tags...)
	cp.Comments = append([]primitive.ObjectID(nil), p.Comments...)
	return &cp
}

func cloneComment(c *model.Comment) *model.Comment {
	cp := *c
	return &cp
}

func cloneUser(u *model.User) *model.User {
	cp := *u
	cp.AuthProviders = append([]model.AuthProvider(nil), u.AuthProviders...)
	return &cp
}

func cloneTopic(t *model.Topic) *model.Topic {
	cp := *t
	return &cp
}

func (m *Memory) postBySlug(slug string) *model.Post {
	for _, p := range m.posts {
		if p.Slug == slug {
			return p
		}
	}

	return nil
}

func matchPost(p *model.Post, f model.PostFilter) bool {
	if f.FeaturedOnly && !p.Featured {
		return false
	}
	if f.Tag == "" {
		return true
	}
	for _, tag := range p.Tags {
		if tag == f.Tag {
			return true
		}
	}

	return false
}

func matchComment(c *model.Comment, f model.CommentFilter) bool {
	if !f.PostID.IsZero() && c.PostID != f.PostID {
		return false
	}

	switch f.Status {
	case model.CommentStatusPending:
		return !c.Approved
	case model.CommentStatusApproved:
		return c.Approved
	default:
		return true
	}
}

// InsertPost inserts p and sets its ID.
func (m *Memory) InsertPost(_ context.Context, p *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.postBySlug(p.Slug) != nil {
		return errors.Wrapf(model.ErrDuplicateKey, "insert post %q", p.Slug)
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}

	m.posts[p.ID] = clonePost(p)
	return nil
}

// GetPostBySlug load post by slug
func (m *Memory) GetPostBySlug(_ context.Context, slug string) (*model.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if p := m.postBySlug(slug); p != nil {
		return clonePost(p), nil
	}

	return nil, errors.Wrapf(model.ErrNotFound, "find post %q", slug)
}

// GetPostByID load post by id
func (m *Memory) GetPostByID(_ context.Context, id primitive.ObjectID) (*model.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if p, ok := m.posts[id]; ok {
		return clonePost(p), nil
	}

	return nil, errors.Wrapf(model.ErrNotFound, "find post %q", id.Hex())
}

// ListPosts returns posts newest first, without their comment lists.
func (m *Memory) ListPosts(_ context.Context, f model.PostFilter) ([]*model.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	posts := []*model.Post{}
	for _, p := range m.posts {
		if matchPost(p, f) {
			cp := clonePost(p)
			cp.Comments = nil
			posts = append(posts, cp)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].PublishedAt.Equal(posts[j].PublishedAt) {
			return posts[i].PublishedAt.After(posts[j].PublishedAt)
		}
		return posts[i].ID.Hex() > posts[j].ID.Hex()
	})

	return page(posts, f.Skip, f.Limit), nil
}

func page[T any](items []T, skip, limit int64) []T {
	if skip >= int64(len(items)) {
		return items[:0]
	}
	items = items[skip:]
	if limit > 0 && limit < int64(len(items)) {
		items = items[:limit]
	}

	return items
}

// CountPosts counts posts matching f.
func (m *Memory) CountPosts(_ context.Context, f model.PostFilter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, p := range m.posts {
		if matchPost(p, f) {
			n++
		}
	}

	return n, nil
}

// UpdatePost applies upd to the post of slug and returns the new version.
func (m *Memory) UpdatePost(_ context.Context, slug string, upd model.PostUpdate) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.postBySlug(slug)
	if p == nil {
		return nil, errors.Wrapf(model.ErrNotFound, "update post %q", slug)
	}

	p.UpdatedAt = upd.UpdatedAt
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Excerpt != nil {
		p.Excerpt = *upd.Excerpt
	}
	if upd.Author != nil {
		p.Author = *upd.Author
	}
	if upd.Preview != nil {
		p.Preview = *upd.Preview
	}
	if upd.CoverImage != nil {
		p.CoverImage = *upd.CoverImage
	}
	if upd.Images != nil {
		p.Images = append([]string(nil), upd.Images...)
	}
	if upd.Tags != nil {
		p.Tags = append([]string(nil), upd.Tags...)
	}
	if upd.Featured != nil {
		p.Featured = *upd.Featured
	}

	return clonePost(p), nil
}

// DeletePost deletes the post record only.
func (m *Memory) DeletePost(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[id]; !ok {
		return errors.Wrapf(model.ErrNotFound, "delete post %q", id.Hex())
	}

	delete(m.posts, id)
	return nil
}

// IncrLikes adds delta to the like counter and returns the new value.
func (m *Memory) IncrLikes(_ context.Context, id primitive.ObjectID, delta int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return 0, errors.Wrapf(model.ErrNotFound, "incr likes of %q", id.Hex())
	}

	p.Likes += delta
	return p.Likes, nil
}

// PushComment appends commentID to the post's comment list.
func (m *Memory) PushComment(_ context.Context, postID, commentID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[postID]
	if !ok {
		return errors.Wrapf(model.ErrNotFound, "$push comment on post %q", postID.Hex())
	}

	p.Comments = append(p.Comments, commentID)
	return nil
}

// PullComment removes every occurrence of commentID from the post's comment list.
func (m *Memory) PullComment(_ context.Context, postID, commentID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[postID]
	if !ok {
		return errors.Wrapf(model.ErrNotFound, "$pull comment on post %q", postID.Hex())
	}

	kept := p.Comments[:0]
	for _, id := range p.Comments {
		if id != commentID {
			kept = append(kept, id)
		}
	}
	p.Comments = kept
	return nil
}

// DistinctTags returns every tag used by at least one post.
func (m *Memory) DistinctTags(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := map[string]struct{}{}
	tags := []string{}
	for _, p := range m.posts {
		for _, tag := range p.Tags {
			if _, ok := seen[tag]; !ok {
				seen[tag] = struct{}{}
				tags = append(tags, tag)
			}
		}
	}
	sort.Strings(tags)

	return tags, nil
}

// InsertComment inserts c and sets its ID.
func (m *Memory) InsertComment(_ context.Context, c *model.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}

	m.comments[c.ID] = cloneComment(c)
	return nil
}

// GetComment load comment by id
func (m *Memory) GetComment(_ context.Context, id primitive.ObjectID) (*model.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if c, ok := m.comments[id]; ok {
		return cloneComment(c), nil
	}

	return nil, errors.Wrapf(model.ErrNotFound, "find comment %q", id.Hex())
}

// ListComments returns comments newest first.
func (m *Memory) ListComments(_ context.Context, f model.CommentFilter) ([]*model.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	comments := []*model.Comment{}
	for _, c := range m.comments {
		if matchComment(c, f) {
			comments = append(comments, cloneComment(c))
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.After(comments[j].CreatedAt)
		}
		return comments[i].ID.Hex() > comments[j].ID.Hex()
	})

	return page(comments, 0, f.Limit), nil
}

// CountComments counts comments matching f.
func (m *Memory) CountComments(_ context.Context, f model.CommentFilter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, c := range m.comments {
		if matchComment(c, f) {
			n++
		}
	}

	return n, nil
}

// ApproveComment sets the approved flag.
func (m *Memory) ApproveComment(_ context.Context, id primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.comments[id]
	if !ok {
		return false, errors.Wrapf(model.ErrNotFound, "approve comment %q", id.Hex())
	}
	if c.Approved {
		return false, nil
	}

	c.Approved = true
	return true, nil
}

// DeleteComment deletes one comment.
func (m *Memory) DeleteComment(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.comments[id]; !ok {
		return errors.Wrapf(model.ErrNotFound, "delete comment %q", id.Hex())
	}

	delete(m.comments, id)
	return nil
}

// DeleteCommentsByPost deletes every comment of a post.
func (m *Memory) DeleteCommentsByPost(_ context.Context, postID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, c := range m.comments {
		if c.PostID == postID {
			delete(m.comments, id)
			n++
		}
	}

	return n, nil
}

// GetUserByEmail load user by email
func (m *Memory) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if u, ok := m.users[email]; ok {
		return cloneUser(u), nil
	}

	return nil, errors.Wrapf(model.ErrNotFound, "find user %q", email)
}

// UpsertUser creates u on first sign-in and records provider on the stored user.
func (m *Memory) UpsertUser(_ context.Context, u *model.User, provider model.AuthProvider) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.users[u.Email]
	if !ok {
		stored = cloneUser(u)
		stored.ID = primitive.NewObjectID()
		stored.AuthProviders = nil
		stored.EditorRequest = false
		m.users[u.Email] = stored
	}
	stored.UpdatedAt = u.UpdatedAt

	if provider != "" {
		known := false
		for _, p := range stored.AuthProviders {
			known = known || p == provider
		}
		if !known {
			stored.AuthProviders = append(stored.AuthProviders, provider)
		}
	}

	return cloneUser(stored), nil
}

// UpdateUser sets role and editorRequest of the user of email.
func (m *Memory) UpdateUser(_ context.Context, email string, role *model.Role, editorRequest *bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[email]
	if !ok {
		return nil, errors.Wrapf(model.ErrNotFound, "update user %q", email)
	}
	if role == nil && editorRequest == nil {
		return cloneUser(u), nil
	}

	if role != nil {
		u.Role = *role
	}
	if editorRequest != nil {
		u.EditorRequest = *editorRequest
	}
	u.UpdatedAt = gutils.Clock.GetUTCNow()

	return cloneUser(u), nil
}

// ListEditorRequests returns users with a pending editor request, oldest first.
func (m *Memory) ListEditorRequests(_ context.Context) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := []*model.User{}
	for _, u := range m.users {
		if u.EditorRequest && u.Role == model.RoleUser {
			users = append(users, cloneUser(u))
		}
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].UpdatedAt.Before(users[j].UpdatedAt)
	})

	return users, nil
}

// InsertTopic inserts t and sets its ID.
func (m *Memory) InsertTopic(_ context.Context, t *model.Topic) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.topics[t.Slug]; ok {
		return errors.Wrapf(model.ErrDuplicateKey, "insert topic %q", t.Slug)
	}
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}

	m.topics[t.Slug] = cloneTopic(t)
	return nil
}

// GetTopicBySlug load topic by slug
func (m *Memory) GetTopicBySlug(_ context.Context, slug string) (*model.Topic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if t, ok := m.topics[slug]; ok {
		return cloneTopic(t), nil
	}

	return nil, errors.Wrapf(model.ErrNotFound, "find topic %q", slug)
}

// ListTopics returns all topics ordered by name.
func (m *Memory) ListTopics(_ context.Context) ([]*model.Topic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	topics := make([]*model.Topic, 0, len(m.topics))
	for _, t := range m.topics {
		topics = append(topics, cloneTopic(t))
	}
	sort.Slice(topics, func(i, j int) bool {
		return topics[i].Name < topics[j].Name
	})

	return topics, nil
}
