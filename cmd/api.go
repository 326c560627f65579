package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Laisky/laisky-blog-cms/internal/web"
	"github.com/Laisky/laisky-blog-cms/internal/web/blog/controller"
	"github.com/Laisky/laisky-blog-cms/library/jwt"
	"github.com/Laisky/laisky-blog-cms/library/log"
)

var apiCMD = &cobra.Command{
	Use:   "api",
	Short: "api",
	Long:  `markdown blog API service for laisky`,
	Args:  gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if err := runAPI(ctx); err != nil {
			log.Logger.Panic("run api", zap.Error(err))
		}
	},
}

func runAPI(ctx context.Context) error {
	deps, err := setupDependencies(ctx)
	if err != nil {
		return errors.Wrap(err, "setup dependencies")
	}
	defer deps.Close(context.Background())

	if deps.dao != nil {
		if err = deps.dao.EnsureIndexes(ctx); err != nil {
			return errors.Wrap(err, "ensure indexes")
		}
	}

	verifier, err := jwt.NewVerifier(ctx,
		[]byte(gconfig.Shared.GetString("settings.auth.secret")),
		gconfig.Shared.GetString("settings.auth.jwks_url"),
	)
	if err != nil {
		return errors.Wrap(err, "new jwt verifier")
	}

	if !gconfig.Shared.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := web.NewEngine(web.Options{
		Logger:       log.Logger,
		Blog:         controller.New(newService(deps)),
		Tokens:       verifier,
		AllowedHosts: gconfig.Shared.GetStringSlice("settings.web.cors_allowed_hosts"),
	})

	return web.RunServer(ctx, log.Logger.Named("web"), gconfig.Shared.GetString("listen"), engine)
}

func init() {
	rootCMD.AddCommand(apiCMD)
}
