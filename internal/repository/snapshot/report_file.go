// Package snapshot keeps flat-file copies of scraped data so a run can reuse
// what an earlier run in the same month already fetched.
package snapshot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/guildsync/guildsync/internal/domain/models"
)

const reportFilePrefix = "dmsguild_report_"

// MonthlyPath names the snapshot for the month containing now. The key is
// the wall-clock month of the run, not the reporting period in the file.
func MonthlyPath(dir string, now time.Time) string {
	return filepath.Join(dir, reportFilePrefix+now.Format("200601")+".csv")
}

// ReportStore loads and saves report tables as CSV.
type ReportStore struct {
	logger *zap.Logger
}

// NewReportStore builds a ReportStore.
func NewReportStore(logger *zap.Logger) *ReportStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportStore{logger: logger}
}

// Load returns the table saved at path. A missing, empty or corrupt file
// yields ok=false so the caller fetches afresh. The period is only stored on
// record lines, so a header-only file saved from a table without records is
// also reported as absent.
func (s *ReportStore) Load(path string) (models.ReportTable, bool) {
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("unable to open report snapshot", zap.String("path", path), zap.Error(err))
		}
		return models.ReportTable{}, false
	}
	defer f.Close()

	table, err := decodeReport(f)
	if err != nil {
		s.logger.Warn("ignoring unreadable report snapshot", zap.String("path", path), zap.Error(err))
		return models.ReportTable{}, false
	}

	s.logger.Info("found existing report snapshot", zap.String("path", path), zap.Int("records", table.Len()))
	return table, true
}

// Save writes table to path, creating the directory when needed. The file is
// replaced atomically. A table without records is written as the header
// alone and does not load back.
func (s *ReportStore) Save(path string, table models.ReportTable) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".report-*.csv")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := encodeReport(tmp, table); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode snapshot %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("move snapshot into place %s: %w", path, err)
	}

	s.logger.Info("report snapshot saved", zap.String("path", path), zap.Int("records", table.Len()))
	return nil
}

func encodeReport(w io.Writer, table models.ReportTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.ReportColumns); err != nil {
		return err
	}

	year := strconv.Itoa(table.Year)
	for _, r := range table.Records {
		record := []string{
			table.Month,
			year,
			r.Publisher,
			r.Title,
			r.SKU,
			strconv.Itoa(r.UnitsSold),
			formatFloat(r.Net),
			formatFloat(r.RoyaltyRate),
			formatFloat(r.Royalties),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func decodeReport(r io.Reader) (models.ReportTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(models.ReportColumns)

	header, err := cr.Read()
	if err != nil {
		return models.ReportTable{}, fmt.Errorf("read header: %w", err)
	}
	for i, name := range models.ReportColumns {
		if header[i] != name {
			return models.ReportTable{}, fmt.Errorf("unexpected header column %d: %q", i, header[i])
		}
	}

	var table models.ReportTable
	for line := 2; ; line++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return models.ReportTable{}, err
		}

		year, err := strconv.Atoi(fields[models.ColumnYear])
		if err != nil {
			return models.ReportTable{}, fmt.Errorf("line %d year: %w", line, err)
		}
		if len(table.Records) == 0 {
			table.Month, table.Year = fields[models.ColumnMonth], year
		} else if fields[models.ColumnMonth] != table.Month || year != table.Year {
			return models.ReportTable{}, fmt.Errorf("line %d: mixed reporting periods", line)
		}

		record, err := decodeRecord(fields)
		if err != nil {
			return models.ReportTable{}, fmt.Errorf("line %d %w", line, err)
		}
		table.Records = append(table.Records, record)
	}

	if len(table.Records) == 0 {
		return models.ReportTable{}, errors.New("snapshot holds no records")
	}
	return table, nil
}

func decodeRecord(fields []string) (models.SalesRecord, error) {
	units, err := strconv.Atoi(fields[models.ColumnUnitsSold])
	if err != nil {
		return models.SalesRecord{}, fmt.Errorf("units_sold: %w", err)
	}
	net, err := strconv.ParseFloat(fields[models.ColumnNet], 64)
	if err != nil {
		return models.SalesRecord{}, fmt.Errorf("net: %w", err)
	}
	rate, err := strconv.ParseFloat(fields[models.ColumnRoyaltyRate], 64)
	if err != nil {
		return models.SalesRecord{}, fmt.Errorf("royalty_rate: %w", err)
	}
	royalties, err := strconv.ParseFloat(fields[models.ColumnRoyalties], 64)
	if err != nil {
		return models.SalesRecord{}, fmt.Errorf("royalties: %w", err)
	}

	return models.SalesRecord{
		Publisher:   fields[models.ColumnPublisher],
		Title:       fields[models.ColumnTitle],
		SKU:         fields[models.ColumnSKU],
		UnitsSold:   units,
		Net:         net,
		RoyaltyRate: rate,
		Royalties:   royalties,
	}, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
