package cmd

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"
	"github.com/redis/go-redis/v9"

	"github.com/Laisky/laisky-blog-cms/internal/web/blog/content"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/dao"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/service"
	rlib "github.com/Laisky/laisky-blog-cms/library/db/redis"
	"github.com/Laisky/laisky-blog-cms/library/db/mongo"
	"github.com/Laisky/laisky-blog-cms/library/log"
)

const (
	contentBackendFS    = "fs"
	contentBackendMinio = "minio"
	defaultContentDir   = "content/blogs"
)

// dependencies everything the commands need, closed in reverse order of creation.
type dependencies struct {
	dao     *dao.Blog
	store   service.Store
	content content.Store
	ledger  *rlib.DB
	closers []func(context.Context) error
}

func (d *dependencies) Close(ctx context.Context) {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](ctx); err != nil {
			log.Logger.Warn("close dependency", zap.Error(err))
		}
	}
}

// setupDependencies connects the record store, the content store and the
// optional like ledger. In dry mode records live in memory.
func setupDependencies(ctx context.Context) (*dependencies, error) {
	deps := new(dependencies)

	if gconfig.Shared.GetBool("dry") {
		log.Logger.Info("dry mode, records are kept in memory")
		deps.store = dao.NewMemory()
	} else {
		db, err := mongo.NewDB(ctx, mongo.DialInfo{
			Addr:   gconfig.Shared.GetString("settings.db.blog.addr"),
			DBName: gconfig.Shared.GetString("settings.db.blog.db"),
			User:   gconfig.Shared.GetString("settings.db.blog.user"),
			Pwd:    gconfig.Shared.GetString("settings.db.blog.pwd"),
			AuthDB: gconfig.Shared.GetString("settings.db.blog.auth_db"),
		})
		if err != nil {
			return nil, errors.Wrap(err, "connect blog db")
		}

		deps.dao = dao.New(log.Logger.Named("blog_dao"), db)
		deps.store = deps.dao
		deps.closers = append(deps.closers, deps.dao.Close)
	}

	contents, err := setupContentStore(ctx)
	if err != nil {
		deps.Close(ctx)
		return nil, errors.Wrap(err, "setup content store")
	}
	deps.content = contents

	if addr := gconfig.Shared.GetString("settings.likes.redis.addr"); addr != "" {
		deps.ledger = rlib.NewDB(&redis.Options{
			Addr:     addr,
			Password: gconfig.Shared.GetString("settings.likes.redis.pwd"),
			DB:       gconfig.Shared.GetInt("settings.likes.redis.db"),
		})
		deps.closers = append(deps.closers, func(context.Context) error { return deps.ledger.Close() })
		if err = deps.ledger.Ping(ctx); err != nil {
			deps.Close(ctx)
			return nil, errors.Wrap(err, "ping like ledger")
		}
	}

	return deps, nil
}

func setupContentStore(ctx context.Context) (content.Store, error) {
	backend := strings.ToLower(strings.TrimSpace(gconfig.Shared.GetString("settings.content.backend")))
	switch backend {
	case "", contentBackendFS:
		dir := gconfig.Shared.GetString("settings.content.dir")
		if dir == "" {
			dir = defaultContentDir
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(gconfig.Shared.GetString("cfg_dir"), dir)
		}

		return content.NewFSStore(log.Logger.Named("content_fs"), dir)
	case contentBackendMinio:
		return content.NewMinioStore(ctx, log.Logger.Named("content_minio"), content.MinioOptions{
			Endpoint:  gconfig.Shared.GetString("settings.content.minio.endpoint"),
			AccessKey: gconfig.Shared.GetString("settings.content.minio.access_key"),
			SecretKey: gconfig.Shared.GetString("settings.content.minio.secret_key"),
			Bucket:    gconfig.Shared.GetString("settings.content.minio.bucket"),
			Prefix:    gconfig.Shared.GetString("settings.content.minio.prefix"),
			UseSSL:    gconfig.Shared.GetBool("settings.content.minio.use_ssl"),
		})
	default:
		return nil, errors.Errorf("unknown content backend %q", backend)
	}
}

// newService builds the blog service over deps.
func newService(deps *dependencies) *service.Blog {
	opts := []service.Option{
		service.WithLogger(log.Logger.Named("blog_service")),
		service.WithAdminEmails(gconfig.Shared.GetStringSlice("settings.auth.admin_emails")...),
	}
	if deps.ledger != nil {
		opts = append(opts, service.WithLikeLedger(deps.ledger))
	}

	return service.New(deps.store, deps.content, opts...)
}
