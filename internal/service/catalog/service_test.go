package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildsync/guildsync/internal/domain/models"
)

type fakePages struct {
	pages     map[string]string
	requested []string
}

func (f *fakePages) GetPage(_ context.Context, url string) (string, error) {
	f.requested = append(f.requested, url)
	html, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("fetch %s: status=404", url)
	}
	return html, nil
}

type memoryProducts struct {
	known map[string]struct{}
	saved []models.Product
	err   error
}

func (m *memoryProducts) KnownURLs(context.Context) (map[string]struct{}, error) {
	known := make(map[string]struct{}, len(m.known))
	for k := range m.known {
		known[k] = struct{}{}
	}
	return known, nil
}

func (m *memoryProducts) SaveProduct(_ context.Context, p models.Product) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, p)
	return nil
}

func productHTML(name string) string {
	return fmt.Sprintf(`<html><body><span itemprop="name">%s</span></body></html>`, name)
}

func siteFixture() *fakePages {
	return &fakePages{pages: map[string]string{
		"https://shop.test/browse?page=1": `<a class="product_listing_link" href="/p/1">1</a>
<a class="product_listing_link" href="/p/2">2</a>
<a href="/browse?page=2">[Next &gt;&gt;]</a>`,
		"https://shop.test/browse?page=2": `<a class="product_listing_link" href="/p/3">3</a>
<a class="product_listing_link" href="/p/missing">gone</a>`,
		"https://shop.test/p/1": productHTML("One"),
		"https://shop.test/p/2": productHTML("Two"),
		"https://shop.test/p/3": productHTML("Three"),
	}}
}

func TestCrawlFollowsPagesAndSkipsKnown(t *testing.T) {
	pages := siteFixture()
	store := &memoryProducts{known: map[string]struct{}{"https://shop.test/p/2": {}}}

	stats, err := NewService(pages, store, 0, 0, nil).Crawl(context.Background(), "https://shop.test/browse?page=1")
	require.NoError(t, err)

	assert.Equal(t, Stats{Pages: 2, Saved: 2, Skipped: 1, Failed: 1}, stats)
	require.Len(t, store.saved, 2)
	assert.Equal(t, "One", store.saved[0].Name)
	assert.Equal(t, "https://shop.test/p/3", store.saved[1].URL)
	assert.NotContains(t, pages.requested, "https://shop.test/p/2")
}

func TestCrawlStopsAtPageLimit(t *testing.T) {
	pages := siteFixture()
	store := &memoryProducts{}

	stats, err := NewService(pages, store, 0, 1, nil).Crawl(context.Background(), "https://shop.test/browse?page=1")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Pages)
	assert.Len(t, store.saved, 2)
	assert.NotContains(t, pages.requested, "https://shop.test/browse?page=2")
}

func TestCrawlFailsWhenListingUnavailable(t *testing.T) {
	_, err := NewService(&fakePages{}, &memoryProducts{}, 0, 0, nil).Crawl(context.Background(), "https://shop.test/browse?page=1")
	require.Error(t, err)
}

func TestCrawlStopsOnStoreError(t *testing.T) {
	storeErr := errors.New("disk full")
	store := &memoryProducts{err: storeErr}

	stats, err := NewService(siteFixture(), store, 0, 0, nil).Crawl(context.Background(), "https://shop.test/browse?page=1")
	require.ErrorIs(t, err, storeErr)
	assert.Zero(t, stats.Saved)
}

func TestCrawlHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewService(siteFixture(), &memoryProducts{}, 0, 0, nil).Crawl(ctx, "https://shop.test/browse?page=1")
	require.ErrorIs(t, err, context.Canceled)
}
