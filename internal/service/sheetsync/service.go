package sheetsync

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/guildsync/guildsync/internal/domain/models"
	repo "github.com/guildsync/guildsync/internal/repository/sheets"
)

// ErrEmptyTable is returned when asked to sync a table without records.
var ErrEmptyTable = errors.New("report table has no records")

// Status describes what a sync did.
type Status string

const (
	StatusWritten Status = "written"
	StatusSkipped Status = "skipped"
)

// Outcome is the result of a Sync call.
type Outcome struct {
	Status Status
	Period string
	Range  string
	Rows   int
}

// Service pushes report tables to a sheet tab.
type Service struct {
	repo      repo.Repository
	sheetName string
	logger    *zap.Logger
}

// NewService wires a new sync service instance.
func NewService(repository repo.Repository, sheetName string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	return &Service{repo: repository, sheetName: sheetName, logger: logger}
}

// ReadRange is the span read before every write, columns A to I.
func (s *Service) ReadRange() string {
	return fmt.Sprintf("%s!A:I", s.sheetName)
}

// Sync appends table unless its period is already in the sheet. Remote
// errors are returned unchanged apart from wrapping; nothing is retried.
// When the rows were written but formatting failed the Written outcome is
// returned together with the error.
func (s *Service) Sync(ctx context.Context, table models.ReportTable) (Outcome, error) {
	outcome := Outcome{Period: table.Period()}
	if table.Len() == 0 {
		return outcome, fmt.Errorf("sync %s: %w", outcome.Period, ErrEmptyTable)
	}

	values, err := s.repo.ReadRange(ctx, s.ReadRange())
	if err != nil {
		return outcome, fmt.Errorf("load existing sheet data: %w", err)
	}
	snapshot := models.SheetSnapshot(values)

	duplicate, err := IsDuplicate(snapshot, table.Month, table.Year)
	if err != nil {
		return outcome, fmt.Errorf("check %s for duplicates: %w", outcome.Period, err)
	}
	if duplicate {
		s.logger.Info("period already present in sheet, skipping update",
			zap.String("period", outcome.Period),
			zap.Int("existing_rows", len(snapshot)))
		outcome.Status = StatusSkipped
		return outcome, nil
	}

	plan := Plan(s.sheetName, table, snapshot)
	if err := s.repo.WriteRows(ctx, plan.Range, plan.Rows); err != nil {
		return outcome, fmt.Errorf("write %s: %w", outcome.Period, err)
	}
	outcome.Status = StatusWritten
	outcome.Range = plan.Range
	outcome.Rows = table.Len()

	s.logger.Info("report appended to sheet",
		zap.String("period", outcome.Period),
		zap.String("range", plan.Range),
		zap.Int("rows", len(plan.Rows)),
		zap.Bool("header", plan.IncludeHeader))

	if err := s.repo.ApplyFormats(ctx, CurrencyFormats()); err != nil {
		return outcome, fmt.Errorf("apply currency formatting: %w", err)
	}

	return outcome, nil
}
