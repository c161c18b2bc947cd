package models

import "time"

// Product captures catalog details scraped from a storefront product page.
// Fields the page does not expose stay nil or empty.
type Product struct {
	URL          string     `bson:"url" json:"url"`
	Name         string     `bson:"name" json:"name"`
	Metal        string     `bson:"metal" json:"metal"`
	DateAdded    *time.Time `bson:"date_added,omitempty" json:"date_added,omitempty"`
	Rating       *float64   `bson:"rating,omitempty" json:"rating,omitempty"`
	Edition      string     `bson:"edition" json:"edition"`
	Authors      []string   `bson:"authors" json:"authors"`
	Artists      []string   `bson:"artists" json:"artists"`
	Pages        *int       `bson:"pages,omitempty" json:"pages,omitempty"`
	Price        *float64   `bson:"price,omitempty" json:"price,omitempty"`
	RatingsCount *int       `bson:"ratings_count,omitempty" json:"ratings_count,omitempty"`
}

// Listing is one page of the storefront product browser.
type Listing struct {
	ProductURLs []string
	NextURL     string
}
