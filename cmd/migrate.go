package cmd

import (
	"context"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/laisky-blog-cms/library/log"
)

var migrateCMD = &cobra.Command{
	Use:   "migrate",
	Short: "migrate",
	Long:  `ensure indexes and migrate legacy blog records`,
	Args:  gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMigrate(cmd.Context()); err != nil {
			log.Logger.Panic("migrate", zap.Error(err))
		}
	},
}

func runMigrate(ctx context.Context) error {
	if gconfig.Shared.GetBool("dry") {
		return errors.New("migrate needs the blog db, do not run it in dry mode")
	}

	deps, err := setupDependencies(ctx)
	if err != nil {
		return errors.Wrap(err, "setup dependencies")
	}
	defer deps.Close(context.Background())

	if err = deps.dao.EnsureIndexes(ctx); err != nil {
		return errors.Wrap(err, "ensure indexes")
	}

	n, err := deps.dao.MigrateLegacyPosts(ctx, deps.content.Ref)
	if err != nil {
		return errors.Wrap(err, "migrate legacy posts")
	}

	log.Logger.Info("migrated", zap.Int64("posts", n))
	return nil
}

func init() {
	rootCMD.AddCommand(migrateCMD)
}
