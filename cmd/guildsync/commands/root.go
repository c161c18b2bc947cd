package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/guildsync/guildsync/internal/config"
	"github.com/guildsync/guildsync/pkg/logger"
)

var (
	envFile string

	cfg        *config.Config
	baseLogger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "guildsync",
	Short:         "guildsync copies storefront royalty reports into Google Sheets.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(envFile)
		if err != nil {
			return err
		}
		cfg = loaded

		l, err := logger.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}
		baseLogger = l
		zap.ReplaceGlobals(baseLogger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if baseLogger != nil {
			_ = baseLogger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "Path to a .env file (defaults to ./.env when present).")
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if baseLogger != nil {
			baseLogger.Error("command failed", zap.Error(err))
			_ = baseLogger.Sync()
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
