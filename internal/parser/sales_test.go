package parser

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildsync/guildsync/internal/domain/models"
)

const salesHeader = `<tr><th>Publisher</th><th>Title</th><th>SKU</th><th>Units</th><th>Net</th><th>Rate</th><th>Royalties</th></tr>`

func salesRow(cells ...string) string {
	var b strings.Builder
	b.WriteString("<tr>")
	for _, c := range cells {
		b.WriteString("<td>" + c + "</td>")
	}
	b.WriteString("</tr>")
	return b.String()
}

func salesTable(rows ...string) string {
	return `<table cellpadding="5" cellspacing="0" border="1">` + salesHeader + strings.Join(rows, "") + `</table>`
}

func TestParseSalesTableExample(t *testing.T) {
	html := salesTable(
		salesRow("Acme", "Book A", "SKU1", "10", "$100.00", "15%", "$15.00"),
		salesRow("Acme", "Book B", "SKU2", "0", "$0.00", "0%", "$0.00"),
	)

	records := slices.Collect(ParseSalesTable(html, nil))
	require.Len(t, records, 2)

	assert.Equal(t, models.SalesRecord{
		Publisher: "Acme", Title: "Book A", SKU: "SKU1",
		UnitsSold: 10, Net: 100, RoyaltyRate: 15, Royalties: 15,
	}, records[0])
	assert.Equal(t, 0, records[1].UnitsSold)
	assert.Equal(t, 0.0, records[1].Net)
}

func TestParseSalesTableSkipsMalformedRows(t *testing.T) {
	html := salesTable(
		salesRow("Acme", "Book A", "SKU1", "10", "$100.00", "15%", "$15.00"),
		salesRow("Totals", "", "", "10", "$100.00", "$15.00"),
		salesRow("Acme", "Book B", "SKU2", "ten", "$1.00", "1%", "$1.00"),
		salesRow("Acme", "Book C", "SKU3", " 3 ", " $1,234.50 ", "12.5%", ""),
	)

	records := slices.Collect(ParseSalesTable(html, nil))
	require.Len(t, records, 2)
	assert.Equal(t, "SKU1", records[0].SKU)
	assert.Equal(t, "SKU3", records[1].SKU)
	assert.Equal(t, 3, records[1].UnitsSold)
	assert.Equal(t, 1234.50, records[1].Net)
	assert.Equal(t, 12.5, records[1].RoyaltyRate)
	assert.Equal(t, 0.0, records[1].Royalties)
}

func TestParseSalesTableRowCount(t *testing.T) {
	for _, n := range []int{1, 5, 25} {
		rows := make([]string, 0, n+1)
		for i := 0; i < n; i++ {
			rows = append(rows, salesRow("P", "T", "S", "1", "$1.00", "10%", "$0.10"))
		}
		rows = append(rows, salesRow("Total", "$25.00"))

		records := slices.Collect(ParseSalesTable(salesTable(rows...), nil))
		assert.Len(t, records, n)
	}
}

func TestParseSalesTableEmpty(t *testing.T) {
	for name, html := range map[string]string{
		"no rows":     "<table></table>",
		"header only": salesTable(),
		"not html":    "",
		"only totals": salesTable(salesRow("Total", "$0.00")),
	} {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, slices.Collect(ParseSalesTable(html, nil)))
		})
	}
}

func TestParseSalesTableStopsWhenConsumerStops(t *testing.T) {
	html := salesTable(
		salesRow("Acme", "Book A", "SKU1", "1", "$1.00", "1%", "$1.00"),
		salesRow("Acme", "Book B", "SKU2", "1", "$1.00", "1%", "$1.00"),
	)

	var seen []string
	for r := range ParseSalesTable(html, nil) {
		seen = append(seen, r.SKU)
		break
	}
	assert.Equal(t, []string{"SKU1"}, seen)
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"$1,234.50", 1234.50},
		{"1,234.50", 1234.50},
		{"", 0},
		{"$", 0},
		{"$,", 0},
		{" $0.99 ", 0.99},
	}
	for _, tt := range tests {
		got, err := ParseCurrency(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseCurrency("USD twelve")
	require.Error(t, err)
}

func TestParsePercent(t *testing.T) {
	got, err := ParsePercent("12.5%")
	require.NoError(t, err)
	assert.Equal(t, 12.5, got)

	got, err = ParsePercent("")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestParseUnits(t *testing.T) {
	got, err := ParseUnits("")
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	_, err = ParseUnits("-1")
	require.Error(t, err)

	_, err = ParseUnits("1.5")
	require.Error(t, err)
}

func TestCellErrorNamesColumn(t *testing.T) {
	_, err := salesRecordFromCells([salesCells]string{"P", "T", "S", "1", "abc", "1%", "$1"})
	var cellErr *CellError
	require.ErrorAs(t, err, &cellErr)
	assert.Equal(t, "net", cellErr.Column)
}
