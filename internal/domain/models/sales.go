package models

import "time"

// SalesRecord captures a single row of the storefront royalty report.
type SalesRecord struct {
	Publisher   string  `bson:"publisher" json:"publisher"`
	Title       string  `bson:"title" json:"title"`
	SKU         string  `bson:"sku" json:"sku"`
	UnitsSold   int     `bson:"units_sold" json:"units_sold"`
	Net         float64 `bson:"net" json:"net"`
	RoyaltyRate float64 `bson:"royalty_rate" json:"royalty_rate"` // percent, 12.5 means 12.5%
	Royalties   float64 `bson:"royalties" json:"royalties"`
}

// Credential is the storefront login handed to the fetcher.
type Credential struct {
	Username string
	Password string
}

// SheetSnapshot is the raw content of the destination sheet, header row first.
type SheetSnapshot [][]any

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}
