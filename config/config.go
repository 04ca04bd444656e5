package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "sjsage522/catalogworker/pkg/errors"

	"github.com/go-playground/validator/v10"
)

// Config represents the application configuration
type Config struct {
	// Catalog source
	BaseURL    string   `validate:"required,url"`
	SearchPath string   `validate:"required,contains=%s"`
	Queries    []string `validate:"dive,required"`

	// Fetch collaborator
	FetchDelay    time.Duration `validate:"gte=0"`
	BlockTime     time.Duration `validate:"gte=0"`
	CrawlInterval time.Duration `validate:"gte=0"`
	FetchRetries  int           `validate:"gte=0,lte=10"`
	RetryDelay    time.Duration `validate:"gte=0"`

	// Pipeline
	MinPrice      float64 `validate:"gte=0"`
	MaxPrice      float64 `validate:"gte=0"`
	FlagPolicy    string  `validate:"oneof=extracted force_true"`
	WalkerWorkers int     `validate:"gte=1,lte=64"`
	ExportFields  []string

	// Export
	OutputPath string

	// Redis configuration
	RedisAddr            string `validate:"required"`
	RedisDB              int    `validate:"gte=0"`
	RedisStream          string `validate:"required"`
	RedisStreamCount     int    `validate:"gte=1"`
	RedisStreamMaxLength int    `validate:"gte=1"`

	// Memcache configuration
	MemcacheAddr string `validate:"required"`

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	streamMaxLength, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "1000"))
	fetchDelay, _ := strconv.Atoi(getEnv("FETCH_DELAY_MS", "500"))
	blockTime, _ := strconv.Atoi(getEnv("BLOCK_TIME_SECONDS", "300"))
	crawlInterval, _ := strconv.Atoi(getEnv("CRAWL_INTERVAL_SECONDS", "0"))
	fetchRetries, _ := strconv.Atoi(getEnv("FETCH_RETRIES", "1"))
	retryDelay, _ := strconv.Atoi(getEnv("RETRY_DELAY_MS", "2000"))
	workers, _ := strconv.Atoi(getEnv("WALKER_WORKERS", "1"))
	minPrice, _ := strconv.ParseFloat(getEnv("MIN_PRICE", "0"), 64)
	maxPrice, _ := strconv.ParseFloat(getEnv("MAX_PRICE", "1000000"), 64)

	return Config{
		BaseURL:              getEnv("CATALOG_BASE_URL", "https://www.auchan.sn"),
		SearchPath:           getEnv("CATALOG_SEARCH_PATH", "/catalogsearch/result/?q=%s"),
		Queries:              splitList(getEnv("SEARCH_QUERIES", "")),
		FetchDelay:           time.Duration(fetchDelay) * time.Millisecond,
		BlockTime:            time.Duration(blockTime) * time.Second,
		CrawlInterval:        time.Duration(crawlInterval) * time.Second,
		FetchRetries:         fetchRetries,
		RetryDelay:           time.Duration(retryDelay) * time.Millisecond,
		MinPrice:             minPrice,
		MaxPrice:             maxPrice,
		FlagPolicy:           getEnv("FLAG_POLICY", "extracted"),
		WalkerWorkers:        workers,
		ExportFields:         splitList(getEnv("EXPORT_FIELDS", "")),
		OutputPath:           getEnv("OUTPUT_PATH", ""),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "catalog"),
		RedisStreamCount:     streamCount,
		RedisStreamMaxLength: streamMaxLength,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		Environment:          getEnv("CATALOG_ENVIRONMENT", "development"),
	}
}

// Validate checks field constraints and cross-field rules. columns is the
// canonical column set export fields must come from.
func (c Config) Validate(columns []string) error {
	if err := validator.New().Struct(c); err != nil {
		return apperrors.NewConfiguration("invalid configuration", err)
	}
	if c.MaxPrice > 0 && c.MinPrice > c.MaxPrice {
		return apperrors.NewValidation("config",
			fmt.Sprintf("MIN_PRICE %.2f above MAX_PRICE %.2f", c.MinPrice, c.MaxPrice))
	}

	known := make(map[string]bool, len(columns))
	for _, col := range columns {
		known[col] = true
	}
	for _, f := range c.ExportFields {
		if !known[f] {
			return apperrors.NewValidation("config", fmt.Sprintf("unknown export field %q", f))
		}
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// splitList splits a comma-separated value, dropping empty entries
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
