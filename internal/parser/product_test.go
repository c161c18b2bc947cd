package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productPage = `<html><head>
<meta itemprop="reviewCount" content="42">
</head><body>
<h1><span itemprop="name">Rules Compendium</span></h1>
<img src="/badge.png" alt="Mithral seller">
<input id="product-rate-score-value" value="4.5">
<div id="product-price-strike">$19.99</div>
<div class="widget-information-item">
  <div class="widget-information-item-title">Rules Edition</div>
  <div class="widget-information-item-content">
    <ul class="rules-system-list"><li><a href="/e/4e">D&amp;D 4th Ed.</a></li><li><a href="/e/5e">5e</a></li></ul>
  </div>
</div>
<div class="widget-information-item">
  <div class="widget-information-item-title">Author(s)</div>
  <div class="widget-information-item-content"><a href="/a/1">Jane Roe</a>, <a href="/a/2">John Doe</a></div>
</div>
<div class="widget-information-item">
  <div class="widget-information-item-title">Artist(s)</div>
  <div class="widget-information-item-content"><a href="/a/3">Pat Ink</a></div>
</div>
<div class="widget-information-item">
  <div class="widget-information-item-title">Pages</div>
  <div class="widget-information-item-content"> 320 </div>
</div>
<div class="widget-information-item">
  <div class="widget-information-item-content">This title was added to our catalog on March 4, 2014.</div>
</div>
</body></html>`

func TestParseProductPage(t *testing.T) {
	p, err := ParseProductPage(productPage, "https://example.com/product/1", nil)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/product/1", p.URL)
	assert.Equal(t, "Rules Compendium", p.Name)
	assert.Equal(t, "Mithral seller", p.Metal)
	require.NotNil(t, p.DateAdded)
	assert.Equal(t, time.Date(2014, time.March, 4, 0, 0, 0, 0, time.UTC), *p.DateAdded)
	require.NotNil(t, p.Rating)
	assert.Equal(t, 4.5, *p.Rating)
	assert.Equal(t, "D&D 4th Ed.", p.Edition)
	assert.Equal(t, []string{"Jane Roe", "John Doe"}, p.Authors)
	assert.Equal(t, []string{"Pat Ink"}, p.Artists)
	require.NotNil(t, p.Pages)
	assert.Equal(t, 320, *p.Pages)
	require.NotNil(t, p.Price)
	assert.Equal(t, 19.99, *p.Price)
	require.NotNil(t, p.RatingsCount)
	assert.Equal(t, 42, *p.RatingsCount)
}

func TestParseProductPageMissingFields(t *testing.T) {
	p, err := ParseProductPage("<html><body><p>gone</p></body></html>", "https://example.com/x", nil)
	require.NoError(t, err)

	assert.Empty(t, p.Name)
	assert.Nil(t, p.DateAdded)
	assert.Nil(t, p.Rating)
	assert.Nil(t, p.Pages)
	assert.Nil(t, p.Price)
	assert.Nil(t, p.RatingsCount)
	assert.Empty(t, p.Authors)
	assert.NotNil(t, p.Authors)
}

func TestParseListing(t *testing.T) {
	html := `<html><body>
<a class="product_listing_link" href="/product/2/B">B</a>
<a class="product_listing_link" href="https://example.com/product/1/A">A</a>
<a class="product_listing_link" href="/product/2/B">B again</a>
<a href="/browse.php?page=3">[Next &gt;&gt;]</a>
</body></html>`

	listing, err := ParseListing(html, "https://example.com/browse.php?page=2")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://example.com/product/1/A",
		"https://example.com/product/2/B",
	}, listing.ProductURLs)
	assert.Equal(t, "https://example.com/browse.php?page=3", listing.NextURL)
}

func TestParseListingLastPage(t *testing.T) {
	listing, err := ParseListing(`<a class="product_listing_link" href="/p/1">x</a>`, "https://example.com/browse.php")
	require.NoError(t, err)
	assert.Empty(t, listing.NextURL)
	assert.Len(t, listing.ProductURLs, 1)
}
