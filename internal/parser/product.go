package parser

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/guildsync/guildsync/internal/domain/models"
)

const (
	catalogDateMarker = "added to our catalog on "
	catalogDateLayout = "January 2, 2006"
	nextPageText      = "[Next >>]"
)

// ParseListing extracts the product links and the next page link of a
// storefront browse page. Relative links are resolved against pageURL.
func ParseListing(html, pageURL string) (models.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.Listing{}, fmt.Errorf("parse listing html: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return models.Listing{}, fmt.Errorf("parse listing url %s: %w", pageURL, err)
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find("a.product_listing_link").Each(func(_ int, a *goquery.Selection) {
		href, ok := resolve(base, a.AttrOr("href", ""))
		if !ok {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}
		links = append(links, href)
	})
	sort.Strings(links)

	listing := models.Listing{ProductURLs: links}
	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if !strings.Contains(a.Text(), nextPageText) {
			return true
		}
		if href, ok := resolve(base, a.AttrOr("href", "")); ok {
			listing.NextURL = href
			return false
		}
		return true
	})

	return listing, nil
}

func resolve(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}

// ParseProductPage scrapes a product detail page. Missing fields are left
// empty and logged at debug; a page never fails as a whole.
func ParseProductPage(html, productURL string, logger *zap.Logger) (models.Product, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.Product{}, fmt.Errorf("parse product html: %w", err)
	}

	p := models.Product{
		URL:     productURL,
		Authors: []string{},
		Artists: []string{},
	}
	missing := func(field string, err error) {
		fields := []zap.Field{zap.String("url", productURL), zap.String("field", field)}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		logger.Debug("product field not found", fields...)
	}

	if name := strings.TrimSpace(doc.Find("span[itemprop='name']").First().Text()); name != "" {
		p.Name = name
	} else {
		missing("name", nil)
	}

	if alt, ok := doc.Find("img[alt*='seller']").First().Attr("alt"); ok {
		p.Metal = alt
	} else {
		missing("metal", nil)
	}

	if added, err := parseDateAdded(doc); err == nil {
		p.DateAdded = &added
	} else {
		missing("date_added", err)
	}

	if raw, ok := doc.Find("#product-rate-score-value").First().Attr("value"); ok {
		if rating, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			p.Rating = &rating
		} else {
			missing("rating", err)
		}
	} else {
		missing("rating", nil)
	}

	// only the first listed edition is kept
	edition := widgetContent(doc, "Rules Edition").Find("ul.rules-system-list li a").First()
	if text := strings.TrimSpace(edition.Text()); text != "" {
		p.Edition = text
	} else {
		missing("edition", nil)
	}

	p.Authors = widgetLinks(doc, "Author")
	p.Artists = widgetLinks(doc, "Artist")

	pagesText := strings.TrimSpace(widgetContent(doc, "Pages").Filter(".widget-information-item-content").First().Text())
	if pages, err := strconv.Atoi(pagesText); err == nil {
		p.Pages = &pages
	} else {
		missing("pages", err)
	}

	priceText := strings.TrimSpace(doc.Find("#product-price-strike").First().Text())
	if price, err := ParseCurrency(priceText); err == nil && priceText != "" {
		p.Price = &price
	} else {
		missing("price", err)
	}

	if raw, ok := doc.Find("meta[itemprop='reviewCount']").First().Attr("content"); ok {
		if count, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			p.RatingsCount = &count
		} else {
			missing("ratings_count", err)
		}
	} else {
		missing("ratings_count", nil)
	}

	return p, nil
}

// widgetContent returns the div siblings following the information widget
// title that contains label.
func widgetContent(doc *goquery.Document, label string) *goquery.Selection {
	title := doc.Find("div.widget-information-item-title").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), label)
	}).First()
	return title.NextAllFiltered("div")
}

func widgetLinks(doc *goquery.Document, label string) []string {
	names := []string{}
	widgetContent(doc, label).Find("a").Each(func(_ int, a *goquery.Selection) {
		if text := strings.TrimSpace(a.Text()); text != "" {
			names = append(names, text)
		}
	})
	return names
}

func parseDateAdded(doc *goquery.Document) (time.Time, error) {
	var text string
	doc.Find("div.widget-information-item-content").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t := s.Text(); strings.Contains(t, catalogDateMarker) {
			text = t
			return false
		}
		return true
	})
	if text == "" {
		return time.Time{}, fmt.Errorf("catalog date not present")
	}

	_, after, _ := strings.Cut(text, catalogDateMarker)
	after = strings.TrimSpace(strings.ReplaceAll(after, ".", ""))
	return time.Parse(catalogDateLayout, after)
}
