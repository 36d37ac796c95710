package config

import (
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	AnalysisTimeout    time.Duration
	MaxRequestBodySize int64

	// Detection engine
	ModelPath       string
	ELAQuality      int
	ELATempDir      string
	OCRLanguage     string
	AnalyzerWorkers int

	// Collaborators
	HistoryDBPath     string
	AzureAccountName  string
	AzureAccountKey   string
	AllowedImageHosts []string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureEnabled reports whether blob storage credentials were supplied
func (c *Config) AzureEnabled() bool {
	return c.AzureAccountName != "" && c.AzureAccountKey != ""
}

// HistoryEnabled reports whether detection results are persisted
func (c *Config) HistoryEnabled() bool {
	return c.HistoryDBPath != ""
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		AnalysisTimeout:    parseDurationOrDefault("ANALYSIS_TIMEOUT", 20*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB

		ModelPath:       getEnvOrDefault("MODEL_PATH", "model/id_classifier.json"),
		ELAQuality:      int(parseIntOrDefault("ELA_QUALITY", 90)),
		ELATempDir:      os.Getenv("ELA_TEMP_DIR"),
		OCRLanguage:     getEnvOrDefault("OCR_LANGUAGE", "eng"),
		AnalyzerWorkers: int(parseIntOrDefault("ANALYZER_WORKERS", int64(runtime.NumCPU()))),

		HistoryDBPath:     lookupEnvOrDefault("HISTORY_DB_PATH", "data/history.db"),
		AzureAccountName:  strings.TrimSpace(os.Getenv("AZURE_STORAGE_ACCOUNT")),
		AzureAccountKey:   strings.TrimSpace(os.Getenv("AZURE_STORAGE_KEY")),
		AllowedImageHosts: parseListOrEmpty("ALLOWED_IMAGE_HOSTS"),
	}

	// Validate port is numeric and in range
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
	if cfg.ELAQuality < 1 || cfg.ELAQuality > 100 {
		return nil, fmt.Errorf("ELA_QUALITY must be within 1..100 (got %d)", cfg.ELAQuality)
	}
	if cfg.AnalyzerWorkers <= 0 {
		return nil, fmt.Errorf("ANALYZER_WORKERS must be > 0 (got %d)", cfg.AnalyzerWorkers)
	}
	if strings.TrimSpace(cfg.ModelPath) == "" {
		return nil, fmt.Errorf("MODEL_PATH must not be empty")
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// lookupEnvOrDefault distinguishes an unset variable from one explicitly set to ""
func lookupEnvOrDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
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

func parseListOrEmpty(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
