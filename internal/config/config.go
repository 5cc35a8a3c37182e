package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/photoqc/photoqc-go/internal/locator"
)

// Config carries every runtime setting. Values come from the
// environment; the CLI layers its ff flags on top of the same keys.
type Config struct {
	// QC image resolution
	QCDirectory    string
	FormatPriority []locator.Format

	// Analysis
	AnalysisTimeout time.Duration
	OCRLanguage     string

	// History persistence
	HistoryDBPath string

	// HTTP server
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	MaxRequestBodySize int64

	// Optional Azure blob source; when AccountName is empty the blob
	// sync backend is disabled.
	AzureAccountName string
	AzureAccountKey  string
	AzureContainer   string
	AzureBlobPrefix  string
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureEnabled reports whether a blob source is configured.
func (c *Config) AzureEnabled() bool {
	return c.AzureAccountName != ""
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		QCDirectory:        getEnvOrDefault("QC_DIRECTORY", locator.DefaultDirectory),
		AnalysisTimeout:    parseDurationOrDefault("ANALYSIS_TIMEOUT", 20*time.Second),
		OCRLanguage:        getEnvOrDefault("OCR_LANGUAGE", "eng"),
		HistoryDBPath:      getEnvOrDefault("HISTORY_DB", "photoqc.db"),
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB
		AzureAccountName:   os.Getenv("AZURE_ACCOUNT_NAME"),
		AzureAccountKey:    os.Getenv("AZURE_ACCOUNT_KEY"),
		AzureContainer:     getEnvOrDefault("AZURE_CONTAINER", "qcimages"),
		AzureBlobPrefix:    os.Getenv("AZURE_BLOB_PREFIX"),
	}

	priority, err := ParseFormatPriority(os.Getenv("FORMAT_PRIORITY"))
	if err != nil {
		return nil, err
	}
	cfg.FormatPriority = priority

	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.ImageFetchTimeout <= 0 || cfg.AnalysisTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, analysis=%s)",
			cfg.RequestTimeout, cfg.ImageFetchTimeout, cfg.AnalysisTimeout)
	}
	if cfg.QCDirectory == "" {
		return nil, fmt.Errorf("QC_DIRECTORY must not be empty")
	}
	return cfg, nil
}

// ParseFormatPriority parses a comma-separated priority list such as
// "tiff,png,jpeg". An empty input yields the default TIFF > PNG > JPEG
// order.
func ParseFormatPriority(s string) ([]locator.Format, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return locator.DefaultPriority(), nil
	}
	var priority []locator.Format
	for _, part := range strings.Split(s, ",") {
		format, ok := locator.ParseFormat(part)
		if !ok {
			return nil, fmt.Errorf("unknown image format %q in priority list", strings.TrimSpace(part))
		}
		priority = append(priority, format)
	}
	return priority, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
