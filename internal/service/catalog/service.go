package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/guildsync/guildsync/internal/domain/models"
	"github.com/guildsync/guildsync/internal/parser"
	client "github.com/guildsync/guildsync/pkg/clients/catalog"
)

// ProductStore persists crawled products.
type ProductStore interface {
	KnownURLs(ctx context.Context) (map[string]struct{}, error)
	SaveProduct(ctx context.Context, product models.Product) error
}

// Stats counts what a crawl did.
type Stats struct {
	Pages   int
	Saved   int
	Skipped int
	Failed  int
}

// Service walks the storefront listing pages and stores every new product.
type Service struct {
	fetcher  client.PageFetcher
	store    ProductStore
	delay    time.Duration
	maxPages int
	logger   *zap.Logger
}

// NewService wires a crawler. maxPages of zero means no page limit.
func NewService(fetcher client.PageFetcher, store ProductStore, delay time.Duration, maxPages int, logger *zap.Logger) *Service {
	svc := &Service{
		fetcher:  fetcher,
		store:    store,
		delay:    delay,
		maxPages: maxPages,
		logger:   logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// Crawl starts at startURL and follows the next page links until none remain
// or the page limit is reached. Products already in the store are skipped.
func (s *Service) Crawl(ctx context.Context, startURL string) (Stats, error) {
	var stats Stats

	known, err := s.store.KnownURLs(ctx)
	if err != nil {
		return stats, fmt.Errorf("load known products: %w", err)
	}
	s.logger.Info("starting catalog crawl", zap.String("url", startURL), zap.Int("known", len(known)))

	pageURL := startURL
	for pageURL != "" {
		if s.maxPages > 0 && stats.Pages >= s.maxPages {
			s.logger.Info("page limit reached", zap.Int("pages", stats.Pages))
			break
		}

		html, err := s.fetcher.GetPage(ctx, pageURL)
		if err != nil {
			return stats, fmt.Errorf("fetch listing page: %w", err)
		}
		listing, err := parser.ParseListing(html, pageURL)
		if err != nil {
			return stats, err
		}
		stats.Pages++
		s.logger.Info("listing page parsed",
			zap.String("url", pageURL),
			zap.Int("products", len(listing.ProductURLs)),
		)

		for _, productURL := range listing.ProductURLs {
			if _, ok := known[productURL]; ok {
				stats.Skipped++
				continue
			}

			if err := s.wait(ctx); err != nil {
				return stats, err
			}

			product, err := s.scrapeProduct(ctx, productURL)
			if err != nil {
				if ctx.Err() != nil {
					return stats, ctx.Err()
				}
				stats.Failed++
				s.logger.Warn("failed to scrape product", zap.String("url", productURL), zap.Error(err))
				continue
			}

			if err := s.store.SaveProduct(ctx, product); err != nil {
				return stats, fmt.Errorf("save product %s: %w", productURL, err)
			}
			known[productURL] = struct{}{}
			stats.Saved++
			s.logger.Debug("product saved", zap.String("url", productURL), zap.String("name", product.Name))
		}

		pageURL = listing.NextURL
		if pageURL != "" {
			if err := s.wait(ctx); err != nil {
				return stats, err
			}
		}
	}

	s.logger.Info("catalog crawl finished",
		zap.Int("pages", stats.Pages),
		zap.Int("saved", stats.Saved),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}

func (s *Service) scrapeProduct(ctx context.Context, productURL string) (models.Product, error) {
	html, err := s.fetcher.GetPage(ctx, productURL)
	if err != nil {
		return models.Product{}, err
	}
	return parser.ParseProductPage(html, productURL, s.logger)
}

func (s *Service) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
