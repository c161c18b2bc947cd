package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/guildsync/guildsync/internal/repository/mongodb"
	"github.com/guildsync/guildsync/internal/repository/snapshot"
	catalogsvc "github.com/guildsync/guildsync/internal/service/catalog"
	catalogclient "github.com/guildsync/guildsync/pkg/clients/catalog"
	"github.com/guildsync/guildsync/pkg/logger"
)

var (
	catalogStartURL string
	catalogMaxPages int
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [--start-url <url>] [--max-pages <n>]",
	Short: "Crawls the storefront catalog and stores new products.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("start-url") {
			cfg.Catalog.StartURL = catalogStartURL
		}
		if cmd.Flags().Changed("max-pages") {
			cfg.Catalog.MaxPages = catalogMaxPages
		}
		if err := cfg.ValidateCatalog(); err != nil {
			return err
		}
		ctx := cmd.Context()

		var store catalogsvc.ProductStore
		if cfg.MongoDB.URI != "" {
			mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
			if err != nil {
				return fmt.Errorf("init mongodb repository: %w", err)
			}
			defer func() {
				if err := mongoRepo.Close(ctx); err != nil {
					baseLogger.Error("failed to close mongodb connection", zap.Error(err))
				}
			}()
			store = mongoRepo
		} else {
			baseLogger.Info("mongodb uri missing, writing products to file", zap.String("path", cfg.Catalog.File))
			store = snapshot.NewProductFile(cfg.Catalog.File)
		}

		svc := catalogsvc.NewService(
			catalogclient.NewClient(cfg.Catalog),
			store,
			cfg.Catalog.Delay,
			cfg.Catalog.MaxPages,
			logger.Named(baseLogger, "svc.catalog"),
		)

		stats, err := svc.Crawl(ctx, cfg.Catalog.StartURL)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "pages=%d saved=%d skipped=%d failed=%d\n", stats.Pages, stats.Saved, stats.Skipped, stats.Failed)
		return nil
	},
}

func init() {
	catalogCmd.Flags().StringVar(&catalogStartURL, "start-url", "", "Listing page to start from.")
	catalogCmd.Flags().IntVar(&catalogMaxPages, "max-pages", 0, "Stop after this many listing pages (0 means no limit).")
	rootCmd.AddCommand(catalogCmd)
}
