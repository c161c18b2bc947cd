package sheetsync

import (
	"fmt"
	"math"
	"strings"

	"github.com/guildsync/guildsync/internal/domain/models"
)

// WritePlan is the payload and location of one append.
type WritePlan struct {
	Range         string
	Rows          [][]any
	IncludeHeader bool
}

// Plan computes where and what to write for table. An empty snapshot gets
// the header row at A1; otherwise rows land directly below the last
// existing row.
func Plan(sheetName string, table models.ReportTable, snapshot models.SheetSnapshot) WritePlan {
	data := table.Rows()
	rows := make([][]any, 0, len(data)+1)

	plan := WritePlan{}
	if len(snapshot) == 0 {
		header := make([]any, len(models.ReportColumns))
		for i, name := range models.ReportColumns {
			header[i] = name
		}
		rows = append(rows, header)
		plan.IncludeHeader = true
		plan.Range = fmt.Sprintf("%s!A1", sheetName)
	} else {
		plan.Range = fmt.Sprintf("%s!A%d", sheetName, len(snapshot)+1)
	}

	for _, row := range data {
		cleaned := make([]any, len(row))
		for i, v := range row {
			cleaned[i] = CleanValue(v)
		}
		rows = append(rows, cleaned)
	}

	plan.Rows = rows
	return plan
}

// CleanValue makes v acceptable to the sheets API: nil and non-finite
// numbers become "", numbers pass through, anything else is stringified and
// trimmed.
func CleanValue(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return ""
		}
		return val
	case float32:
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return ""
		}
		return val
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return val
	case string:
		return strings.TrimSpace(val)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// CurrencyFormats declares currency display for the net and royalties
// columns on every row below the header.
func CurrencyFormats() []models.FormatDirective {
	return []models.FormatDirective{
		{Column: models.ColumnNet, StartRow: 1, Kind: models.FormatCurrency, Pattern: models.CurrencyPattern},
		{Column: models.ColumnRoyalties, StartRow: 1, Kind: models.FormatCurrency, Pattern: models.CurrencyPattern},
	}
}
