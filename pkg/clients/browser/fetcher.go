// Package browser drives a Chromium instance through the storefront login and
// royalty report pages.
package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/guildsync/guildsync/internal/config"
	"github.com/guildsync/guildsync/internal/domain/models"
)

const (
	loginLinkSelector     = "a.login_window"
	emailSelector         = "#login_email_address"
	passwordSelector      = "#login_password"
	loginButtonSelector   = "#loginbutton"
	startDateSelector     = "input[name='startdate']"
	endDateSelector       = "input[name='enddate']"
	submitSelector        = "[name='submit_report']"
	reportTableSelector   = "table[cellpadding='5'][cellspacing='0'][border='1']"
	reportSummarySelector = ".standardText"

	// dates are entered the way the report form displays them
	dateLayout = "2006-01-02"
)

// setValueJS replaces an input value and fires the change event the form listens for.
const setValueJS = `(v) => { this.value = ''; this.value = v; this.dispatchEvent(new Event('change', { bubbles: true })); }`

// Fetcher retrieves the royalty report table HTML for a date range.
type Fetcher struct {
	baseURL string
	cfg     config.BrowserConfig
	logger  *zap.Logger
}

// NewFetcher builds a Fetcher for the storefront at baseURL.
func NewFetcher(baseURL string, cfg config.BrowserConfig, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		baseURL: baseURL,
		cfg:     cfg,
		logger:  logger,
	}
}

// FetchReportTable logs in, requests the report for period and returns the
// outer HTML of the report table.
func (f *Fetcher) FetchReportTable(ctx context.Context, cred models.Credential, period models.DateRange) (string, error) {
	browser, cleanup, err := f.connect(ctx)
	if err != nil {
		return "", err
	}
	defer cleanup()

	page, err := browser.Page(proto.TargetCreateTarget{URL: loginURL(f.baseURL)})
	if err != nil {
		return "", fmt.Errorf("open login page: %w", err)
	}

	var table string
	steps := []struct {
		name string
		run  func(p *rod.Page) error
	}{
		{"open login form", func(p *rod.Page) error { return clickJS(p, loginLinkSelector) }},
		{"enter email", func(p *rod.Page) error { return input(p, emailSelector, cred.Username) }},
		{"enter password", func(p *rod.Page) error { return input(p, passwordSelector, cred.Password) }},
		{"submit login", func(p *rod.Page) error { return click(p, loginButtonSelector) }},
		{"open account", func(p *rod.Page) error { return click(p, accountLinkSelector(f.baseURL)) }},
		{"open royalty report", func(p *rod.Page) error { return click(p, royaltyLinkSelector(f.baseURL)) }},
		{"set start date", func(p *rod.Page) error { return setValue(p, startDateSelector, period.Start.Format(dateLayout)) }},
		{"set end date", func(p *rod.Page) error { return setValue(p, endDateSelector, period.End.Format(dateLayout)) }},
		{"submit report", func(p *rod.Page) error { return click(p, submitSelector) }},
		{"read report table", func(p *rod.Page) error {
			el, err := p.Element(reportTableSelector)
			if err != nil {
				return err
			}
			if _, err := p.Element(reportSummarySelector); err != nil {
				return err
			}
			table, err = el.HTML()
			return err
		}},
	}

	for _, step := range steps {
		f.logger.Debug("browser step", zap.String("step", step.name))
		p := page.Timeout(f.cfg.Timeout)
		err := step.run(p)
		p.CancelTimeout()
		if err != nil {
			f.captureFailure(page, step.name)
			return "", fmt.Errorf("%s: %w", step.name, err)
		}
	}

	f.logger.Info("royalty report table fetched",
		zap.Time("start", period.Start),
		zap.Time("end", period.End),
		zap.Int("bytes", len(table)),
	)
	return table, nil
}

func (f *Fetcher) connect(ctx context.Context) (*rod.Browser, func(), error) {
	controlURL := f.cfg.ControlURL
	var l *launcher.Launcher
	if controlURL == "" {
		l = launcher.New().Headless(f.cfg.Headless)
		u, err := l.Launch()
		if err != nil {
			return nil, nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, nil, fmt.Errorf("connect browser: %w", err)
	}

	cleanup := func() {
		if err := browser.Close(); err != nil {
			f.logger.Debug("close browser", zap.Error(err))
		}
		if l != nil {
			l.Cleanup()
		}
	}
	return browser, cleanup, nil
}

// captureFailure saves a screenshot of the page when a screenshot directory is configured.
func (f *Fetcher) captureFailure(page *rod.Page, step string) {
	if f.cfg.ScreenshotDir == "" {
		return
	}

	img, err := page.Screenshot(true, nil)
	if err != nil {
		f.logger.Warn("failed to capture screenshot", zap.String("step", step), zap.Error(err))
		return
	}

	if err := os.MkdirAll(f.cfg.ScreenshotDir, 0o755); err != nil {
		f.logger.Warn("failed to create screenshot directory", zap.Error(err))
		return
	}

	path := screenshotPath(f.cfg.ScreenshotDir, time.Now())
	if err := os.WriteFile(path, img, 0o644); err != nil {
		f.logger.Warn("failed to write screenshot", zap.String("path", path), zap.Error(err))
		return
	}
	f.logger.Info("saved failure screenshot", zap.String("step", step), zap.String("path", path))
}

func click(p *rod.Page, selector string) error {
	el, err := p.Element(selector)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	return p.WaitLoad()
}

// clickJS clicks through the DOM, for links hidden behind overlays.
func clickJS(p *rod.Page, selector string) error {
	el, err := p.Element(selector)
	if err != nil {
		return err
	}
	_, err = el.Eval(`() => this.click()`)
	return err
}

func input(p *rod.Page, selector, value string) error {
	el, err := p.Element(selector)
	if err != nil {
		return err
	}
	return el.Input(value)
}

func setValue(p *rod.Page, selector, value string) error {
	el, err := p.Element(selector)
	if err != nil {
		return err
	}
	_, err = el.Eval(setValueJS, value)
	return err
}

func loginURL(baseURL string) string {
	return baseURL + "/login.php"
}

func accountLinkSelector(baseURL string) string {
	return fmt.Sprintf("a.nav-bar-link[href='%s/account.php']", baseURL)
}

func royaltyLinkSelector(baseURL string) string {
	return fmt.Sprintf("a[href='%s/royalty_report.php']", baseURL)
}

func screenshotPath(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("error_%s.png", now.Format("20060102_150405")))
}
