// Package content stores the markdown body of each post as one
// frontmatter-prefixed file keyed by slug.
package content

import (
	"context"
	"regexp"
	"time"

	"github.com/Laisky/errors/v2"
)

var (
	// ErrNotExist no content stored for the slug
	ErrNotExist = errors.New("content not found")
	// ErrExists a create-only write found content already stored
	ErrExists = errors.New("content already exists")
	// ErrConflict a replace found the content changed since it was stat'ed
	ErrConflict = errors.New("content changed concurrently")

	slugRegexp = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// WriteMode selects what Write does when content already exists.
type WriteMode int

const (
	// WriteCreate fails with ErrExists if the slug already has content
	WriteCreate WriteMode = iota
	// WriteOverwrite replaces existing content
	WriteOverwrite
)

// DefaultAuthor is reported for content whose frontmatter has no author.
const DefaultAuthor = "Anonymous"

// Frontmatter mirrors a subset of the post record at the top of each file.
type Frontmatter struct {
	Title      string     `yaml:"title"`
	Excerpt    string     `yaml:"excerpt"`
	Author     string     `yaml:"author"`
	CoverImage string     `yaml:"coverImage"`
	Date       Timestamp  `yaml:"date"`
	UpdatedAt  *Timestamp `yaml:"updatedAt,omitempty"`
	Tags       []string   `yaml:"tags"`
	Featured   bool       `yaml:"featured"`
}

// AuthorOrDefault returns the author, or DefaultAuthor when empty.
func (f *Frontmatter) AuthorOrDefault() string {
	if f.Author == "" {
		return DefaultAuthor
	}

	return f.Author
}

// Document is one stored post body.
type Document struct {
	Slug        string
	Frontmatter Frontmatter
	// Body raw markdown, preserved byte for byte
	Body string
}

// Revision identifies one stored version of a slug's content.
type Revision string

// Info describes the stored content of a slug.
type Info struct {
	Revision Revision
	ModTime  time.Time
}

// Store is a flat-file content store.
type Store interface {
	// Exists reports whether content is stored for slug.
	Exists(ctx context.Context, slug string) (bool, error)
	// Read returns the stored document, or ErrNotExist.
	Read(ctx context.Context, slug string) (*Document, error)
	// Stat returns the current revision of slug, or ErrNotExist.
	Stat(ctx context.Context, slug string) (*Info, error)
	// Write stores doc under doc.Slug.
	Write(ctx context.Context, doc *Document, mode WriteMode) error
	// Replace overwrites the content of doc.Slug only while it is still at
	// rev, otherwise it returns ErrConflict.
	Replace(ctx context.Context, doc *Document, rev Revision) error
	// Delete removes the content for slug, or returns ErrNotExist.
	Delete(ctx context.Context, slug string) error
	// List returns every stored slug.
	List(ctx context.Context) ([]string, error)
	// Ref returns the location recorded on the post for slug.
	Ref(slug string) string
}

// ValidateSlug rejects anything that is not a derived slug, which also keeps
// path separators and dot segments out of file names.
func ValidateSlug(slug string) error {
	if !slugRegexp.MatchString(slug) {
		return errors.Errorf("invalid slug %q", slug)
	}

	return nil
}

// NewTimestamp wraps t, truncated to milliseconds in UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Millisecond)}
}
