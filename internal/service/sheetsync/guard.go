// Package sheetsync appends royalty reports to the destination sheet at most
// once per reporting period.
package sheetsync

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/guildsync/guildsync/internal/domain/models"
)

// ErrSchemaMismatch indicates the destination sheet no longer has the columns
// the duplicate check relies on.
var ErrSchemaMismatch = errors.New("sheet schema mismatch")

// IsDuplicate reports whether snapshot already holds rows for month/year.
// Header names are matched case-insensitively; month values must match
// exactly and years are compared as text.
func IsDuplicate(snapshot models.SheetSnapshot, month string, year int) (bool, error) {
	if len(snapshot) == 0 {
		return false, nil
	}

	header := snapshot[0]
	monthIdx := headerIndex(header, models.ReportColumns[models.ColumnMonth])
	if monthIdx < 0 {
		return false, fmt.Errorf("%w: column %q not found in header %v", ErrSchemaMismatch, models.ReportColumns[models.ColumnMonth], header)
	}
	yearIdx := headerIndex(header, models.ReportColumns[models.ColumnYear])
	if yearIdx < 0 {
		return false, fmt.Errorf("%w: column %q not found in header %v", ErrSchemaMismatch, models.ReportColumns[models.ColumnYear], header)
	}

	wantYear := strconv.Itoa(year)
	need := max(monthIdx, yearIdx)
	for _, row := range snapshot[1:] {
		if len(row) <= need {
			continue
		}
		if fmt.Sprint(row[monthIdx]) == month && fmt.Sprint(row[yearIdx]) == wantYear {
			return true, nil
		}
	}
	return false, nil
}

func headerIndex(header []any, name string) int {
	for i, cell := range header {
		if strings.EqualFold(strings.TrimSpace(fmt.Sprint(cell)), name) {
			return i
		}
	}
	return -1
}
