package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/guildsync/guildsync/internal/credentials"
	"github.com/guildsync/guildsync/internal/domain/models"
	"github.com/guildsync/guildsync/internal/repository/mongodb"
	"github.com/guildsync/guildsync/internal/repository/sheets"
	"github.com/guildsync/guildsync/internal/repository/snapshot"
	"github.com/guildsync/guildsync/internal/service/reporting"
	"github.com/guildsync/guildsync/internal/service/sheetsync"
	"github.com/guildsync/guildsync/pkg/clients/browser"
	"github.com/guildsync/guildsync/pkg/logger"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetches last month's royalty report and appends it to the sheet.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateSync(); err != nil {
			return err
		}
		ctx := cmd.Context()

		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			return fmt.Errorf("init sheets repository: %w", err)
		}

		var archive reporting.Archive
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
			archive = mongoRepo
		} else {
			baseLogger.Info("mongodb uri missing, report archive disabled")
		}

		creds := &promptingCredentials{
			store: credentials.NewFileStore(cfg.Storefront.CredentialsFile, cfg.Storefront.EncryptionKey),
			ask: func() (models.Credential, error) {
				return promptCredential(cmd.InOrStdin(), cmd.OutOrStdout())
			},
			logger: logger.Named(baseLogger, "credentials"),
		}

		pipeline := reporting.NewPipeline(
			browser.NewFetcher(cfg.Storefront.BaseURL, cfg.Browser, logger.Named(baseLogger, "client.browser")),
			creds,
			snapshot.NewReportStore(logger.Named(baseLogger, "repo.snapshot")),
			sheetsync.NewService(sheetsRepo, cfg.Sheets.SheetName, logger.Named(baseLogger, "svc.sheetsync")),
			archive,
			cfg.Reports.Dir,
			logger.Named(baseLogger, "svc.reporting"),
		)

		result, err := pipeline.Run(ctx)
		if errors.Is(err, reporting.ErrNoRecords) {
			fmt.Fprintln(cmd.OutOrStdout(), "no royalty data for last month, nothing to sync")
			return nil
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch result.Outcome.Status {
		case sheetsync.StatusWritten:
			fmt.Fprintf(out, "%s: wrote %d rows to %s\n", result.Outcome.Period, result.Outcome.Rows, result.Outcome.Range)
		case sheetsync.StatusSkipped:
			fmt.Fprintf(out, "%s: already in the sheet, skipped\n", result.Outcome.Period)
		}
		fmt.Fprintf(out, "snapshot: %s\n", result.Snapshot)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
