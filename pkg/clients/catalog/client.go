package catalog

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/guildsync/guildsync/internal/config"
)

// PageFetcher exposes the storefront page downloads used by the catalog crawler.
type PageFetcher interface {
	GetPage(ctx context.Context, url string) (string, error)
}

// Client is a resty-backed implementation of PageFetcher.
type Client struct {
	httpClient *resty.Client
}

// NewClient builds a catalog client using the provided configuration values.
func NewClient(cfg config.CatalogConfig) *Client {
	restyClient := resty.New()
	restyClient.
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml").
		SetTimeout(cfg.Timeout).
		SetRetryCount(2)

	return &Client{httpClient: restyClient}
}

// GetPage downloads url and returns the response body.
func (c *Client) GetPage(ctx context.Context, url string) (string, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return "", fmt.Errorf("fetch %s: status=%d", url, resp.StatusCode())
	}

	return resp.String(), nil
}
