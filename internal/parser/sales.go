// Package parser turns storefront HTML into domain records.
package parser

import (
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/guildsync/guildsync/internal/domain/models"
)

// salesCells is the cell count of a royalty data row. Rows with any other
// count, such as the trailing totals row, are not data.
const salesCells = 7

var salesCellNames = [salesCells]string{
	"publisher", "title", "sku", "units_sold", "net", "royalty_rate", "royalties",
}

// ParseSalesTable lazily yields the records of a royalty results table.
// The first row is the header. Rows that are not exactly seven cells wide or
// hold an unparsable number are logged and skipped.
func ParseSalesTable(html string, logger *zap.Logger) iter.Seq[models.SalesRecord] {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(yield func(models.SalesRecord) bool) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			logger.Warn("unable to parse royalty table html", zap.Error(err))
			return
		}

		rows := doc.Find("tr")
		logger.Debug("royalty table rows found", zap.Int("rows", rows.Length()))
		if rows.Length() < 2 {
			logger.Info("royalty table has no data rows", zap.Int("rows", rows.Length()))
			return
		}

		for i := 1; i < rows.Length(); i++ {
			cells := rows.Eq(i).Find("td")
			if cells.Length() != salesCells {
				logger.Debug("skip royalty row with unexpected cell count",
					zap.Int("row", i), zap.Int("cells", cells.Length()))
				continue
			}

			var text [salesCells]string
			cells.Each(func(j int, cell *goquery.Selection) {
				text[j] = strings.TrimSpace(cell.Text())
			})

			record, err := salesRecordFromCells(text)
			if err != nil {
				logger.Warn("skip malformed royalty row", zap.Int("row", i), zap.Error(err))
				continue
			}

			if !yield(record) {
				return
			}
		}
	}
}

// CellError reports which column of a row failed to coerce.
type CellError struct {
	Column string
	Value  string
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("column %s: value %q: %v", e.Column, e.Value, e.Err)
}

func (e *CellError) Unwrap() error {
	return e.Err
}

func salesRecordFromCells(text [salesCells]string) (models.SalesRecord, error) {
	units, err := ParseUnits(text[3])
	if err != nil {
		return models.SalesRecord{}, &CellError{Column: salesCellNames[3], Value: text[3], Err: err}
	}
	net, err := ParseCurrency(text[4])
	if err != nil {
		return models.SalesRecord{}, &CellError{Column: salesCellNames[4], Value: text[4], Err: err}
	}
	rate, err := ParsePercent(text[5])
	if err != nil {
		return models.SalesRecord{}, &CellError{Column: salesCellNames[5], Value: text[5], Err: err}
	}
	royalties, err := ParseCurrency(text[6])
	if err != nil {
		return models.SalesRecord{}, &CellError{Column: salesCellNames[6], Value: text[6], Err: err}
	}

	return models.SalesRecord{
		Publisher:   text[0],
		Title:       text[1],
		SKU:         text[2],
		UnitsSold:   units,
		Net:         net,
		RoyaltyRate: rate,
		Royalties:   royalties,
	}, nil
}

// ParseUnits converts a units cell to a non-negative integer. Blank is zero.
func ParseUnits(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	units, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if units < 0 {
		return 0, fmt.Errorf("negative unit count %d", units)
	}
	return units, nil
}

// ParseCurrency converts "$1,234.50" style amounts. Blank, or nothing left
// after stripping "$" and ",", is zero.
func ParseCurrency(s string) (float64, error) {
	return parseDecimal(strings.NewReplacer("$", "", ",", "").Replace(s))
}

// ParsePercent converts "12.5%" to 12.5. Blank is zero.
func ParsePercent(s string) (float64, error) {
	return parseDecimal(strings.ReplaceAll(s, "%", ""))
}

func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}
