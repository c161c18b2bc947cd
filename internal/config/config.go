package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Storefront StorefrontConfig
	Browser    BrowserConfig
	Sheets     SheetsConfig
	Reports    ReportsConfig
	Catalog    CatalogConfig
	MongoDB    MongoDBConfig
	Log        LogConfig
}

// StorefrontConfig holds login details for the royalty report site.
type StorefrontConfig struct {
	BaseURL         string
	CredentialsFile string
	EncryptionKey   string
}

// BrowserConfig controls the headless browser used to fetch the royalty table.
type BrowserConfig struct {
	Headless bool
	Timeout  time.Duration
	// ControlURL connects to an already running browser instead of launching one.
	ControlURL string
	// ScreenshotDir receives a page capture when a step fails. Empty disables it.
	ScreenshotDir string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	SheetName       string
	SheetID         int64
}

// ReportsConfig holds local snapshot settings.
type ReportsConfig struct {
	Dir string
}

// CatalogConfig holds product catalog crawl settings.
type CatalogConfig struct {
	StartURL  string
	File      string
	Delay     time.Duration
	MaxPages  int
	Timeout   time.Duration
	UserAgent string
}

// MongoDBConfig holds settings for MongoDB. An empty URI disables it.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance. Validation is left to the caller because
// each command needs a different subset.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// missing .env files are fine, configuration may come from the environment
		_ = godotenv.Load()
	}

	headless, err := getenvBool("BROWSER_HEADLESS", true)
	if err != nil {
		return nil, err
	}
	browserTimeout, err := getenvDuration("BROWSER_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	sheetID, err := getenvInt("GOOGLE_SHEETS_SHEET_ID", 0)
	if err != nil {
		return nil, err
	}
	catalogDelay, err := getenvDuration("CATALOG_DELAY", 3*time.Second)
	if err != nil {
		return nil, err
	}
	catalogTimeout, err := getenvDuration("CATALOG_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	maxPages, err := getenvInt("CATALOG_MAX_PAGES", 0)
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimSuffix(getenvWithDefault("DMSGUILD_BASE_URL", "https://www.dmsguild.com"), "/")

	cfg := &Config{
		Storefront: StorefrontConfig{
			BaseURL:         baseURL,
			CredentialsFile: getenvWithDefault("DMSGUILD_CREDENTIALS_FILE", "credentials.txt"),
			EncryptionKey:   os.Getenv("DMSGUILD_ENCRYPTION_KEY"),
		},
		Browser: BrowserConfig{
			Headless:      headless,
			Timeout:       browserTimeout,
			ControlURL:    os.Getenv("BROWSER_CONTROL_URL"),
			ScreenshotDir: os.Getenv("BROWSER_SCREENSHOT_DIR"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"),
			SheetName:       getenvWithDefault("GOOGLE_SHEETS_SHEET_NAME", "Sheet1"),
			SheetID:         int64(sheetID),
		},
		Reports: ReportsConfig{
			Dir: getenvWithDefault("REPORTS_DIR", "reports"),
		},
		Catalog: CatalogConfig{
			StartURL:  getenvWithDefault("CATALOG_START_URL", baseURL+"/browse.php?filters=45471_0_0_0_0_0_0_0&src=fid45471"),
			File:      getenvWithDefault("CATALOG_FILE", "dmsguild_products.csv"),
			Delay:     catalogDelay,
			MaxPages:  maxPages,
			Timeout:   catalogTimeout,
			UserAgent: getenvWithDefault("CATALOG_USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "guildsync"),
		},
		Log: LogConfig{
			Level:  getenvWithDefault("LOG_LEVEL", "info"),
			Format: getenvWithDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// ValidateCredentials ensures the credential store can be opened.
func (c *Config) ValidateCredentials() error {
	if c == nil {
		return errors.New("config is nil")
	}

	switch {
	case c.Storefront.EncryptionKey == "":
		return errors.New("DMSGUILD_ENCRYPTION_KEY must be provided")
	case c.Storefront.CredentialsFile == "":
		return errors.New("DMSGUILD_CREDENTIALS_FILE must not be empty")
	}

	return nil
}

// ValidateSync ensures every setting needed by the royalty sync is populated.
func (c *Config) ValidateSync() error {
	if err := c.ValidateCredentials(); err != nil {
		return err
	}

	if c.Storefront.BaseURL == "" {
		return errors.New("DMSGUILD_BASE_URL must not be empty")
	}

	if c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS must be provided")
	}

	if c.Sheets.SpreadsheetID == "" {
		return errors.New("GOOGLE_SHEETS_SPREADSHEET_ID must be provided")
	}

	if c.Sheets.SheetName == "" {
		return errors.New("GOOGLE_SHEETS_SHEET_NAME must not be empty")
	}

	if c.Reports.Dir == "" {
		return errors.New("REPORTS_DIR must not be empty")
	}

	if c.Browser.Timeout <= 0 {
		return errors.New("BROWSER_TIMEOUT must be positive")
	}

	return nil
}

// ValidateCatalog ensures the catalog crawl settings are usable.
func (c *Config) ValidateCatalog() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Catalog.StartURL == "" {
		return errors.New("CATALOG_START_URL must not be empty")
	}

	if c.MongoDB.URI == "" && c.Catalog.File == "" {
		return errors.New("CATALOG_FILE must be provided when MONGODB_URI is not set")
	}

	if c.Catalog.MaxPages < 0 {
		return errors.New("CATALOG_MAX_PAGES must not be negative")
	}

	if c.Catalog.Timeout <= 0 {
		return errors.New("CATALOG_TIMEOUT must be positive")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return parsed, nil
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return parsed, nil
}
