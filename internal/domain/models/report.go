package models

import (
	"strconv"
	"time"
)

// ReportColumns is the fixed column order of a royalty report, locally and in the sheet.
var ReportColumns = []string{
	"month",
	"year",
	"publisher",
	"title",
	"sku",
	"units_sold",
	"net",
	"royalty_rate",
	"royalties",
}

// Column positions within ReportColumns.
const (
	ColumnMonth = iota
	ColumnYear
	ColumnPublisher
	ColumnTitle
	ColumnSKU
	ColumnUnitsSold
	ColumnNet
	ColumnRoyaltyRate
	ColumnRoyalties
)

// ReportTable is one reporting period worth of royalty records.
// Month and Year apply to every record.
type ReportTable struct {
	Month   string        `bson:"month" json:"month"`
	Year    int           `bson:"year" json:"year"`
	Records []SalesRecord `bson:"records" json:"records"`
}

// Len returns the number of records in the table.
func (t ReportTable) Len() int {
	return len(t.Records)
}

// Period renders the reporting period, e.g. "March 2024".
func (t ReportTable) Period() string {
	return t.Month + " " + strconv.Itoa(t.Year)
}

// Rows flattens the table into cells ordered as ReportColumns.
func (t ReportTable) Rows() [][]any {
	rows := make([][]any, 0, len(t.Records))
	for _, r := range t.Records {
		rows = append(rows, []any{
			t.Month,
			t.Year,
			r.Publisher,
			r.Title,
			r.SKU,
			r.UnitsSold,
			r.Net,
			r.RoyaltyRate,
			r.Royalties,
		})
	}
	return rows
}

// ArchivedReport is the document stored for every report pushed to the sheet.
type ArchivedReport struct {
	ReportTable `bson:",inline"`
	SyncedAt    time.Time `bson:"synced_at" json:"synced_at"`
	Range       string    `bson:"range" json:"range"`
}
