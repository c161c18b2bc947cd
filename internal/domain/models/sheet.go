package models

// Number format kinds understood by the sheet adapter.
const (
	FormatCurrency = "CURRENCY"
)

// CurrencyPattern renders a dollar symbol, thousands separator and two decimals.
const CurrencyPattern = `"$"#,##0.00`

// FormatDirective declares a number format for one column over a row range.
// Rows are zero based and EndRow zero means "to the end of the sheet".
// Applying the same directive twice yields the same result.
type FormatDirective struct {
	Column   int
	StartRow int
	EndRow   int
	Kind     string
	Pattern  string
}
