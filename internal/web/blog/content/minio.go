package content

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const contentType = "text/markdown; charset=utf-8"

// MinioOptions configures an S3-compatible content bucket.
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	// Prefix is prepended to every object key, e.g. `blogs`
	Prefix string
	UseSSL bool
}

// MinioStore keeps one `<prefix>/<slug>.md` object per post.
//
// Exclusive creates and replaces rely on conditional puts, which MinIO and
// S3 both honour.
type MinioStore struct {
	logger glog.Logger
	cli    *minio.Client
	bucket string
	prefix string
}

// NewMinioStore connects and creates the bucket if it does not exist.
func NewMinioStore(ctx context.Context, logger glog.Logger, opt MinioOptions) (*MinioStore, error) {
	if opt.Endpoint == "" || opt.Bucket == "" {
		return nil, errors.New("minio endpoint and bucket are required")
	}

	cli, err := minio.New(opt.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opt.AccessKey, opt.SecretKey, ""),
		Secure: opt.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "new minio client")
	}

	exists, err := cli.BucketExists(ctx, opt.Bucket)
	if err != nil {
		return nil, errors.Wrapf(err, "check bucket %q", opt.Bucket)
	}
	if !exists {
		if err = cli.MakeBucket(ctx, opt.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrapf(err, "make bucket %q", opt.Bucket)
		}
		logger.Info("created content bucket", zap.String("bucket", opt.Bucket))
	}

	return &MinioStore{
		logger: logger,
		cli:    cli,
		bucket: opt.Bucket,
		prefix: strings.Trim(opt.Prefix, "/"),
	}, nil
}

func (s *MinioStore) key(slug string) string {
	return path.Join(s.prefix, slug+fileExt)
}

// Ref returns the object location recorded on the post.
func (s *MinioStore) Ref(slug string) string {
	return "minio://" + s.bucket + "/" + s.key(slug)
}

// errorResponse finds the S3 error response behind err, wrapped or not.
func errorResponse(err error) minio.ErrorResponse {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp
	}

	return minio.ToErrorResponse(err)
}

func isNoSuchKey(err error) bool {
	return errorResponse(err).Code == "NoSuchKey"
}

// isPreconditionFailed reports a conditional put that lost, either to the
// stored ETag or to a concurrent conditional put on the same key.
func isPreconditionFailed(err error) bool {
	resp := errorResponse(err)
	return resp.Code == minio.PreconditionFailed ||
		resp.StatusCode == http.StatusPreconditionFailed ||
		resp.StatusCode == http.StatusConflict
}

// Stat returns the ETag of the object as its revision.
func (s *MinioStore) Stat(ctx context.Context, slug string) (*Info, error) {
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}

	obj, err := s.cli.StatObject(ctx, s.bucket, s.key(slug), minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, ErrNotExist
		}
		return nil, errors.Wrapf(err, "stat content %q", slug)
	}

	return &Info{
		Revision: Revision(obj.ETag),
		ModTime:  obj.LastModified.UTC(),
	}, nil
}

// Exists reports whether slug has an object.
func (s *MinioStore) Exists(ctx context.Context, slug string) (bool, error) {
	if err := ValidateSlug(slug); err != nil {
		return false, err
	}

	if _, err := s.cli.StatObject(ctx, s.bucket, s.key(slug), minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "stat content %q", slug)
	}

	return true, nil
}

// Read downloads and decodes the object of slug.
func (s *MinioStore) Read(ctx context.Context, slug string) (*Document, error) {
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}

	obj, err := s.cli.GetObject(ctx, s.bucket, s.key(slug), minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "get content %q", slug)
	}
	defer obj.Close() // nolint: errcheck

	raw, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, ErrNotExist
		}
		return nil, errors.Wrapf(err, "read content %q", slug)
	}

	return Decode(slug, raw)
}

// Write uploads doc. WriteCreate is a conditional put (`If-None-Match: *`),
// so of two concurrent creates only one is stored.
func (s *MinioStore) Write(ctx context.Context, doc *Document, mode WriteMode) error {
	if err := ValidateSlug(doc.Slug); err != nil {
		return err
	}

	opts := minio.PutObjectOptions{ContentType: contentType}
	switch mode {
	case WriteCreate:
		opts.SetMatchETagExcept("*")
	case WriteOverwrite:
	default:
		return errors.Errorf("unknown write mode %d", mode)
	}

	if err := s.put(ctx, doc, opts); err != nil {
		if isPreconditionFailed(err) {
			return ErrExists
		}
		return err
	}

	return nil
}

// Replace uploads doc only while the object still carries the ETag rev.
func (s *MinioStore) Replace(ctx context.Context, doc *Document, rev Revision) error {
	if err := ValidateSlug(doc.Slug); err != nil {
		return err
	}

	opts := minio.PutObjectOptions{ContentType: contentType}
	opts.SetMatchETag(string(rev))
	if err := s.put(ctx, doc, opts); err != nil {
		if isPreconditionFailed(err) || isNoSuchKey(err) {
			return ErrConflict
		}
		return err
	}

	return nil
}

func (s *MinioStore) put(ctx context.Context, doc *Document, opts minio.PutObjectOptions) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	if _, err = s.cli.PutObject(ctx, s.bucket, s.key(doc.Slug),
		bytes.NewReader(data), int64(len(data)), opts,
	); err != nil {
		return errors.Wrapf(err, "put content %q", doc.Slug)
	}

	return nil
}

// Delete removes the object of slug.
func (s *MinioStore) Delete(ctx context.Context, slug string) error {
	exists, err := s.Exists(ctx, slug)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotExist
	}

	if err = s.cli.RemoveObject(ctx, s.bucket, s.key(slug), minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrapf(err, "remove content %q", slug)
	}

	return nil
}

// List returns the slugs of all stored objects, sorted.
func (s *MinioStore) List(ctx context.Context) ([]string, error) {
	prefix := ""
	if s.prefix != "" {
		prefix = s.prefix + "/"
	}

	var slugs []string
	for obj := range s.cli.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, "list content objects")
		}

		name := strings.TrimPrefix(obj.Key, prefix)
		if !strings.HasSuffix(name, fileExt) {
			continue
		}

		slug := strings.TrimSuffix(name, fileExt)
		if ValidateSlug(slug) != nil {
			s.logger.Debug("skip foreign object", zap.String("key", obj.Key))
			continue
		}
		slugs = append(slugs, slug)
	}

	sort.Strings(slugs)
	return slugs, nil
}
