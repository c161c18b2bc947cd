package reporting

import (
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/guildsync/guildsync/internal/domain/models"
)

// ErrInvalidMonth is returned for month numbers outside 1-12.
var ErrInvalidMonth = errors.New("month must be between 1 and 12")

// NewReportTable collects records into a table for the given period.
func NewReportTable(records iter.Seq[models.SalesRecord], month, year int) (models.ReportTable, error) {
	if month < 1 || month > 12 {
		return models.ReportTable{}, fmt.Errorf("%w: got %d", ErrInvalidMonth, month)
	}

	table := models.ReportTable{
		Month:   time.Month(month).String(),
		Year:    year,
		Records: []models.SalesRecord{},
	}
	for r := range records {
		table.Records = append(table.Records, r)
	}
	return table, nil
}

// LastMonth returns the first and last day of the calendar month before now.
func LastMonth(now time.Time) models.DateRange {
	firstOfThisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := firstOfThisMonth.AddDate(0, 0, -1)
	start := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, now.Location())
	return models.DateRange{Start: start, End: end}
}
