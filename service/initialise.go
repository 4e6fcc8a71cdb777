package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ONSdigital/dp-healthcheck/healthcheck"
	dphttp "github.com/ONSdigital/dp-net/v2/http"
	dpotelgo "github.com/ONSdigital/dp-otel-go"
	"github.com/ONSdigital/dp-table-aggregator/config"
	"github.com/ONSdigital/dp-table-aggregator/engine"
	"github.com/ONSdigital/dp-table-aggregator/generator"
	"github.com/ONSdigital/dp-table-aggregator/handler"
	"github.com/ONSdigital/dp-table-aggregator/warehouse"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// GetHTTPServer creates an http server and sets the Server
var GetHTTPServer = func(bindAddr string, router http.Handler) HTTPServer {
	s := dphttp.NewServer(bindAddr, otelhttp.NewHandler(router, "/"))
	s.HandleOSSignals = false
	return s
}

// GetHealthCheck creates a healthcheck with versionInfo
var GetHealthCheck = func(cfg *config.Config, buildTime, gitCommit, version string) (HealthChecker, error) {
	versionInfo, err := healthcheck.NewVersionInfo(buildTime, gitCommit, version)
	if err != nil {
		return nil, fmt.Errorf("failed to get version info: %w", err)
	}

	hc := healthcheck.New(
		versionInfo,
		cfg.HealthCheckCriticalTimeout,
		cfg.HealthCheckInterval,
	)
	return &hc, nil
}

// GetWarehouse connects to the configured warehouse. The first dataset is
// used to probe the connection from the health check.
var GetWarehouse = func(ctx context.Context, cfg *config.Config) (Warehouse, error) {
	switch cfg.WarehouseDriver {
	case config.DriverPostgres:
		pg, err := warehouse.NewPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case config.DriverBigQuery:
		bq, err := warehouse.NewBigQuery(ctx, cfg.BigQueryProjectID, cfg.GoogleApplicationCredentials, cfg.Datasets[0])
		if err != nil {
			return nil, err
		}
		return bq, nil
	}
	return nil, fmt.Errorf("unsupported warehouse driver %q", cfg.WarehouseDriver)
}

// GetQueryBuilder returns the statement builder for the configured warehouse dialect
var GetQueryBuilder = func(cfg *config.Config) engine.QueryBuilder {
	if cfg.WarehouseDriver == config.DriverPostgres {
		return warehouse.PostgresBuilder{}
	}
	return warehouse.BigQueryBuilder{ProjectID: cfg.BigQueryProjectID}
}

// GetExecutor wraps the warehouse with the result cache when it is enabled
var GetExecutor = func(cfg *config.Config, w Warehouse) warehouse.Executor {
	if !cfg.QueryCacheEnabled {
		return w
	}
	return warehouse.NewCache(w, cfg.QueryCacheSize, cfg.QueryCacheTTL)
}

// GetGenerator returns the source of request IDs and timestamps
var GetGenerator = func() handler.Generator {
	return generator.New()
}

// SetupOtel starts the OpenTelemetry SDK and returns its shutdown function
var SetupOtel = func(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	return dpotelgo.SetupOTelSDK(ctx, dpotelgo.Config{
		OtelServiceName:          cfg.OTServiceName,
		OtelExporterOtlpEndpoint: cfg.OTExporterOTLPEndpoint,
		OtelBatchTimeout:         cfg.OTBatchTimeout,
	})
}
