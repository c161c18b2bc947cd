package browser

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/guildsync/guildsync/internal/config"
)

func TestSelectorsFollowBaseURL(t *testing.T) {
	base := "https://example.test"

	assert.Equal(t, "https://example.test/login.php", loginURL(base))
	assert.Equal(t, "a.nav-bar-link[href='https://example.test/account.php']", accountLinkSelector(base))
	assert.Equal(t, "a[href='https://example.test/royalty_report.php']", royaltyLinkSelector(base))
}

func TestScreenshotPath(t *testing.T) {
	now := time.Date(2024, time.April, 2, 9, 5, 7, 0, time.UTC)
	assert.Equal(t, filepath.Join("shots", "error_20240402_090507.png"), screenshotPath("shots", now))
}

func TestNewFetcherAcceptsNilLogger(t *testing.T) {
	f := NewFetcher("https://example.test", config.BrowserConfig{Timeout: time.Second}, nil)
	assert.NotNil(t, f.logger)
	assert.Equal(t, time.Second, f.cfg.Timeout)
}
