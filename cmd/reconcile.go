package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/Laisky/errors/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/laisky-blog-cms/library/log"
)

var reconcileCMD = &cobra.Command{
	Use:   "reconcile",
	Short: "reconcile",
	Long:  `report blog records without content and content without records`,
	Args:  gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		clean, err := runReconcile(cmd.Context())
		if err != nil {
			log.Logger.Panic("reconcile", zap.Error(err))
		}
		if !clean {
			os.Exit(1)
		}
	},
}

// runReconcile prints the report to stdout and reports whether both stores agree.
func runReconcile(ctx context.Context) (bool, error) {
	deps, err := setupDependencies(ctx)
	if err != nil {
		return false, errors.Wrap(err, "setup dependencies")
	}
	defer deps.Close(context.Background())

	report, err := newService(deps).Reconcile(ctx)
	if err != nil {
		return false, errors.Wrap(err, "reconcile")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err = enc.Encode(report); err != nil {
		return false, errors.Wrap(err, "print report")
	}

	return report.Clean(), nil
}

func init() {
	rootCMD.AddCommand(reconcileCMD)
}
