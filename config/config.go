package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Warehouse drivers
const (
	DriverBigQuery = "bigquery"
	DriverPostgres = "postgres"
)

// Grouping modes for the full aggregation endpoint
const (
	GroupByDataset = "dataset"
	GroupByTable   = "table"
)

// Emission modes
const (
	EmissionBuffered  = "buffered"
	EmissionStreaming = "streaming"
)

// Config represents service configuration for dp-table-aggregator
type Config struct {
	BindAddr                     string        `envconfig:"BIND_ADDR"`
	GracefulShutdownTimeout      time.Duration `envconfig:"GRACEFUL_SHUTDOWN_TIMEOUT"`
	HealthCheckInterval          time.Duration `envconfig:"HEALTHCHECK_INTERVAL"`
	HealthCheckCriticalTimeout   time.Duration `envconfig:"HEALTHCHECK_CRITICAL_TIMEOUT"`
	WarehouseDriver              string        `envconfig:"WAREHOUSE_DRIVER"`
	BigQueryProjectID            string        `envconfig:"BIGQUERY_PROJECT_ID"`
	GoogleApplicationCredentials string        `envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`
	PostgresURL                  string        `envconfig:"POSTGRES_URL"                 json:"-"`
	Datasets                     []string      `envconfig:"DATASETS"`
	DatasetKeyPrefix             string        `envconfig:"DATASET_KEY_PREFIX"`
	TablesDataRowLimit           uint          `envconfig:"TABLES_DATA_ROW_LIMIT"`
	TableDataRowLimit            uint          `envconfig:"TABLE_DATA_ROW_LIMIT"`
	FetchConcurrency             int           `envconfig:"FETCH_CONCURRENCY"`
	DiscoveryConcurrency         int           `envconfig:"DISCOVERY_CONCURRENCY"`
	FetchTimeout                 time.Duration `envconfig:"FETCH_TIMEOUT"`
	GroupBy                      string        `envconfig:"GROUP_BY"`
	EmissionMode                 string        `envconfig:"EMISSION_MODE"`
	QueryCacheEnabled            bool          `envconfig:"QUERY_CACHE_ENABLED"`
	QueryCacheSize               int           `envconfig:"QUERY_CACHE_SIZE"`
	QueryCacheTTL                time.Duration `envconfig:"QUERY_CACHE_TTL"`
	CORSAllowedOrigins           []string      `envconfig:"CORS_ALLOWED_ORIGINS"`
	OTExporterOTLPEndpoint       string        `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTServiceName                string        `envconfig:"OTEL_SERVICE_NAME"`
	OTBatchTimeout               time.Duration `envconfig:"OTEL_BATCH_TIMEOUT"`
	OtelEnabled                  bool          `envconfig:"OTEL_ENABLED"`
}

var cfg *Config

// Get returns the default config with any modifications through environment
// variables
func Get() (*Config, error) {
	if cfg != nil {
		return cfg, nil
	}

	cfg = &Config{
		BindAddr:                     ":28500",
		GracefulShutdownTimeout:      5 * time.Second,
		HealthCheckInterval:          30 * time.Second,
		HealthCheckCriticalTimeout:   90 * time.Second,
		WarehouseDriver:              DriverBigQuery,
		BigQueryProjectID:            "automatic-spotify-scraper",
		GoogleApplicationCredentials: "automatic-spotify-scraper.json",
		PostgresURL:                  "postgres://localhost:5432/warehouse",
		Datasets: []string{
			"keywords_ranking_data_sheet1",
			"keywords_ranking_data_sheet2",
			"keywords_ranking_data_sheet3",
			"keywords_ranking_data_sheet4",
		},
		DatasetKeyPrefix:       "keywords_ranking_data_sheet",
		TablesDataRowLimit:     10000,
		TableDataRowLimit:      10000,
		FetchConcurrency:       10,
		DiscoveryConcurrency:   2,
		FetchTimeout:           0,
		GroupBy:                GroupByDataset,
		EmissionMode:           EmissionBuffered,
		QueryCacheEnabled:      true,
		QueryCacheSize:         256,
		QueryCacheTTL:          5 * time.Minute,
		CORSAllowedOrigins:     []string{"*"},
		OTExporterOTLPEndpoint: "localhost:4317",
		OTServiceName:          "dp-table-aggregator",
		OTBatchTimeout:         5 * time.Second,
		OtelEnabled:            false,
	}

	if err := envconfig.Process("", cfg); err != nil {
		return cfg, err
	}

	cfg.Datasets = dedupe(cfg.Datasets)

	return cfg, cfg.Validate()
}

// Validate checks that the configured modes and bounds are usable
func (c *Config) Validate() error {
	switch c.WarehouseDriver {
	case DriverBigQuery:
		if c.BigQueryProjectID == "" {
			return errors.New("BIGQUERY_PROJECT_ID must be set for the bigquery driver")
		}
	case DriverPostgres:
		if c.PostgresURL == "" {
			return errors.New("POSTGRES_URL must be set for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported warehouse driver %q", c.WarehouseDriver)
	}

	if len(c.Datasets) == 0 {
		return errors.New("at least one dataset must be configured")
	}

	if err := c.validateDatasetKeys(); err != nil {
		return err
	}

	if c.FetchConcurrency < 1 {
		return fmt.Errorf("fetch concurrency must be at least 1, got %d", c.FetchConcurrency)
	}

	if c.DiscoveryConcurrency < 1 {
		return fmt.Errorf("discovery concurrency must be at least 1, got %d", c.DiscoveryConcurrency)
	}

	if c.GroupBy != GroupByDataset && c.GroupBy != GroupByTable {
		return fmt.Errorf("unsupported group by mode %q", c.GroupBy)
	}

	if c.EmissionMode != EmissionBuffered && c.EmissionMode != EmissionStreaming {
		return fmt.Errorf("unsupported emission mode %q", c.EmissionMode)
	}

	if c.QueryCacheEnabled && c.QueryCacheSize < 1 {
		return fmt.Errorf("query cache size must be at least 1 when the cache is enabled, got %d", c.QueryCacheSize)
	}

	return nil
}

// DatasetKey returns the key a dataset is presented under in responses: its
// id without DatasetKeyPrefix, or the full id when nothing would be left.
func (c *Config) DatasetKey(dataset string) string {
	key := strings.TrimPrefix(dataset, c.DatasetKeyPrefix)
	if key == "" {
		return dataset
	}
	return key
}

// validateDatasetKeys rejects datasets that would share a response key
func (c *Config) validateDatasetKeys() error {
	seen := make(map[string]string, len(c.Datasets))
	for _, dataset := range c.Datasets {
		key := c.DatasetKey(dataset)
		if other, ok := seen[key]; ok && other != dataset {
			return fmt.Errorf("datasets %q and %q are both presented under the key %q", other, dataset, key)
		}
		seen[key] = dataset
	}
	return nil
}

// dedupe removes repeated dataset ids, keeping the first occurrence
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
