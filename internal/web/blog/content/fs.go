package content

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/google/uuid"
)

const fileExt = ".md"

// DefaultDir is where post bodies are kept unless configured otherwise.
const DefaultDir = "content/blogs"

// lockStaleAfter outlives any request holding a content lock.
const lockStaleAfter = time.Minute

// FSStore keeps one `<slug>.md` file per post in a directory.
//
// Writes go to a temporary file first and are then published with a
// rename (overwrite) or a hard link (create), so readers never observe a
// half-written file and two concurrent creates cannot both succeed.
// Lock and temp files are hidden dot files and never listed.
type FSStore struct {
	logger glog.Logger
	dir    string
}

// NewFSStore returns a store rooted at dir, creating it if missing.
func NewFSStore(logger glog.Logger, dir string) (*FSStore, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create content dir %q", dir)
	}

	logger.Info("content store ready", zap.String("dir", dir))
	return &FSStore{logger: logger, dir: dir}, nil
}

func (s *FSStore) path(slug string) string {
	return filepath.Join(s.dir, slug+fileExt)
}

// Ref returns the file path recorded on the post.
func (s *FSStore) Ref(slug string) string {
	return filepath.ToSlash(s.path(slug))
}

// Exists reports whether slug has a file.
func (s *FSStore) Exists(_ context.Context, slug string) (bool, error) {
	if err := ValidateSlug(slug); err != nil {
		return false, err
	}

	_, err := os.Stat(s.path(slug))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, errors.Wrapf(err, "stat content %q", slug)
	}
}

// Read loads and decodes the file of slug.
func (s *FSStore) Read(_ context.Context, slug string) (*Document, error) {
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.path(slug))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, errors.Wrapf(err, "read content %q", slug)
	}

	return Decode(slug, raw)
}

// Stat returns the revision of slug, a digest of the file bytes.
func (s *FSStore) Stat(_ context.Context, slug string) (*Info, error) {
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}

	return s.stat(slug)
}

func (s *FSStore) stat(slug string) (*Info, error) {
	f, err := os.Open(s.path(slug))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, errors.Wrapf(err, "open content %q", slug)
	}
	defer f.Close() // nolint: errcheck

	fi, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "stat content %q", slug)
	}

	h := sha256.New()
	if _, err = io.Copy(h, f); err != nil {
		return nil, errors.Wrapf(err, "hash content %q", slug)
	}

	return &Info{
		Revision: Revision(hex.EncodeToString(h.Sum(nil))),
		ModTime:  fi.ModTime().UTC(),
	}, nil
}

// writeTemp encodes doc into a hidden temporary file next to its destination.
// The returned cleanup removes the file if it was not published.
func (s *FSStore) writeTemp(doc *Document) (tmp string, cleanup func(), err error) {
	data, err := Encode(doc)
	if err != nil {
		return "", nil, err
	}

	tmp = filepath.Join(s.dir, "."+doc.Slug+"."+uuid.NewString()+".tmp")
	if err = os.WriteFile(tmp, data, 0o644); err != nil {
		return "", nil, errors.Wrapf(err, "write temp file for %q", doc.Slug)
	}

	return tmp, func() {
		if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			s.logger.Warn("remove temp content file", zap.String("file", tmp), zap.Error(rmErr))
		}
	}, nil
}

// Write stores doc. With WriteCreate it fails with ErrExists when the file
// is already present.
func (s *FSStore) Write(_ context.Context, doc *Document, mode WriteMode) error {
	if err := ValidateSlug(doc.Slug); err != nil {
		return err
	}

	tmp, cleanup, err := s.writeTemp(doc)
	if err != nil {
		return err
	}
	defer cleanup()

	dst := s.path(doc.Slug)
	switch mode {
	case WriteCreate:
		if err = os.Link(tmp, dst); err != nil {
			if errors.Is(err, fs.ErrExist) {
				return ErrExists
			}
			return errors.Wrapf(err, "publish content %q", doc.Slug)
		}
	case WriteOverwrite:
		if err = os.Rename(tmp, dst); err != nil {
			return errors.Wrapf(err, "replace content %q", doc.Slug)
		}
	default:
		return errors.Errorf("unknown write mode %d", mode)
	}

	return nil
}

// Replace swaps in doc while the file is still at rev. The compare and the
// rename happen under a per-slug lock file, a held lock counts as a conflict.
func (s *FSStore) Replace(_ context.Context, doc *Document, rev Revision) error {
	if err := ValidateSlug(doc.Slug); err != nil {
		return err
	}

	unlock, err := s.lock(doc.Slug)
	if err != nil {
		return err
	}
	defer unlock()

	info, err := s.stat(doc.Slug)
	if err != nil {
		if errors.Is(err, ErrNotExist) {
			return ErrConflict
		}
		return err
	}
	if info.Revision != rev {
		return ErrConflict
	}

	tmp, cleanup, err := s.writeTemp(doc)
	if err != nil {
		return err
	}
	defer cleanup()

	if err = os.Rename(tmp, s.path(doc.Slug)); err != nil {
		return errors.Wrapf(err, "replace content %q", doc.Slug)
	}

	return nil
}

func (s *FSStore) lockPath(slug string) string {
	return filepath.Join(s.dir, "."+slug+".lock")
}

// lock takes the exclusive lock of slug without waiting. Locks older than
// lockStaleAfter were left by a crashed writer and are taken over.
func (s *FSStore) lock(slug string) (unlock func(), err error) {
	p := s.lockPath(slug)
	f, err := os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, fs.ErrExist) {
		if fi, statErr := os.Stat(p); statErr == nil && time.Since(fi.ModTime()) > lockStaleAfter {
			s.logger.Warn("take over stale content lock", zap.String("slug", slug))
			if err = os.Remove(p); err == nil || errors.Is(err, fs.ErrNotExist) {
				f, err = os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
			}
		}
	}
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, ErrConflict
		}
		return nil, errors.Wrapf(err, "lock content %q", slug)
	}
	if err = f.Close(); err != nil {
		return nil, errors.Wrapf(err, "close lock of %q", slug)
	}

	return func() {
		if rmErr := os.Remove(p); rmErr != nil {
			s.logger.Warn("release content lock", zap.String("slug", slug), zap.Error(rmErr))
		}
	}, nil
}

// Delete removes the file of slug.
func (s *FSStore) Delete(_ context.Context, slug string) error {
	if err := ValidateSlug(slug); err != nil {
		return err
	}

	if err := os.Remove(s.path(slug)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotExist
		}
		return errors.Wrapf(err, "delete content %q", slug)
	}

	return nil
}

// List returns the slugs of all stored files, sorted.
func (s *FSStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read content dir %q", s.dir)
	}

	slugs := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
			continue
		}

		slug := strings.TrimSuffix(name, fileExt)
		if ValidateSlug(slug) != nil {
			continue
		}
		slugs = append(slugs, slug)
	}

	sort.Strings(slugs)
	return slugs, nil
}
