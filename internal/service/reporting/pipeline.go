package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/guildsync/guildsync/internal/domain/models"
	"github.com/guildsync/guildsync/internal/parser"
	"github.com/guildsync/guildsync/internal/repository/snapshot"
	"github.com/guildsync/guildsync/internal/service/sheetsync"
)

// ErrNoRecords is returned when the fetched table held no usable rows.
var ErrNoRecords = errors.New("no valid royalty records found")

// TableFetcher returns the rendered royalty results table for a date range.
type TableFetcher interface {
	FetchReportTable(ctx context.Context, cred models.Credential, period models.DateRange) (string, error)
}

// CredentialSource supplies the storefront login.
type CredentialSource interface {
	Read() (models.Credential, error)
}

// SnapshotStore caches report tables on disk.
type SnapshotStore interface {
	Load(path string) (models.ReportTable, bool)
	Save(path string, table models.ReportTable) error
}

// Syncer pushes a table to the destination sheet.
type Syncer interface {
	Sync(ctx context.Context, table models.ReportTable) (sheetsync.Outcome, error)
}

// Archive keeps a copy of every report written to the sheet.
type Archive interface {
	SaveReport(ctx context.Context, report models.ArchivedReport) error
}

// Result summarises a pipeline run.
type Result struct {
	Table     models.ReportTable
	Snapshot  string
	FromCache bool
	Outcome   sheetsync.Outcome
}

// Pipeline runs fetch, parse, cache and sync for last month's royalties.
type Pipeline struct {
	fetcher     TableFetcher
	credentials CredentialSource
	snapshots   SnapshotStore
	syncer      Syncer
	archive     Archive
	reportsDir  string
	logger      *zap.Logger
	now         func() time.Time
}

// NewPipeline wires a pipeline. archive may be nil.
func NewPipeline(fetcher TableFetcher, credentials CredentialSource, snapshots SnapshotStore, syncer Syncer, archive Archive, reportsDir string, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		fetcher:     fetcher,
		credentials: credentials,
		snapshots:   snapshots,
		syncer:      syncer,
		archive:     archive,
		reportsDir:  reportsDir,
		logger:      logger,
		now:         time.Now,
	}
}

// Run reuses this month's snapshot when present, otherwise fetches last
// month's report and saves it, then syncs the table to the sheet.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	now := p.now()
	result := Result{Snapshot: snapshot.MonthlyPath(p.reportsDir, now)}

	table, ok := p.snapshots.Load(result.Snapshot)
	if ok {
		p.logger.Info("using existing report for this month", zap.String("path", result.Snapshot), zap.String("period", table.Period()))
		result.FromCache = true
	} else {
		p.logger.Info("no existing report for this month, fetching", zap.String("path", result.Snapshot))

		fetched, err := p.fetch(ctx, now)
		if err != nil {
			return result, err
		}
		if err := p.snapshots.Save(result.Snapshot, fetched); err != nil {
			return result, fmt.Errorf("save report snapshot: %w", err)
		}
		table = fetched
	}
	result.Table = table

	outcome, err := p.syncer.Sync(ctx, table)
	result.Outcome = outcome
	if err != nil {
		return result, fmt.Errorf("sync report: %w", err)
	}

	if outcome.Status == sheetsync.StatusWritten && p.archive != nil {
		archived := models.ArchivedReport{ReportTable: table, SyncedAt: now.UTC(), Range: outcome.Range}
		if err := p.archive.SaveReport(ctx, archived); err != nil {
			p.logger.Error("failed to archive report", zap.String("period", table.Period()), zap.Error(err))
		}
	}

	return result, nil
}

func (p *Pipeline) fetch(ctx context.Context, now time.Time) (models.ReportTable, error) {
	cred, err := p.credentials.Read()
	if err != nil {
		return models.ReportTable{}, fmt.Errorf("read credentials: %w", err)
	}

	period := LastMonth(now)
	html, err := p.fetcher.FetchReportTable(ctx, cred, period)
	if err != nil {
		return models.ReportTable{}, fmt.Errorf("fetch royalty report: %w", err)
	}

	table, err := NewReportTable(parser.ParseSalesTable(html, p.logger.Named("parser")), int(period.Start.Month()), period.Start.Year())
	if err != nil {
		return models.ReportTable{}, err
	}
	if table.Len() == 0 {
		p.logger.Warn("royalty report contained no valid rows", zap.String("period", table.Period()))
		return models.ReportTable{}, fmt.Errorf("%s: %w", table.Period(), ErrNoRecords)
	}

	p.logger.Info("royalty report parsed", zap.String("period", table.Period()), zap.Int("records", table.Len()))
	return table, nil
}
