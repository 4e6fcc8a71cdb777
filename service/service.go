package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ONSdigital/dp-table-aggregator/config"
	"github.com/ONSdigital/dp-table-aggregator/engine"
	"github.com/ONSdigital/dp-table-aggregator/handler"
	"github.com/ONSdigital/log.go/v2/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

// Service contains all the configs, server and clients to run the aggregation API
type Service struct {
	Cfg          *config.Config
	Server       HTTPServer
	HealthCheck  HealthChecker
	Warehouse    Warehouse
	Registry     *prometheus.Registry
	Handler      *handler.Aggregation
	otelShutdown func(context.Context) error
}

func New() *Service {
	return &Service{}
}

// Init initialises the service and it's dependencies
func (svc *Service) Init(ctx context.Context, cfg *config.Config, buildTime, gitCommit, version string) error {
	var err error

	if cfg == nil {
		return errors.New("nil config passed to service init")
	}

	svc.Cfg = cfg

	if cfg.OtelEnabled {
		if svc.otelShutdown, err = SetupOtel(ctx, cfg); err != nil {
			return fmt.Errorf("failed to set up open telemetry: %w", err)
		}
	}

	if svc.Warehouse, err = GetWarehouse(ctx, cfg); err != nil {
		return fmt.Errorf("failed to connect to warehouse: %w", err)
	}

	svc.Registry = prometheus.NewRegistry()
	svc.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := engine.NewMetrics(svc.Registry)

	executor := GetExecutor(cfg, svc.Warehouse)
	builder := GetQueryBuilder(cfg)
	svc.Handler = handler.NewAggregation(
		*cfg,
		engine.NewDiscoverer(executor, builder, cfg.DiscoveryConcurrency, metrics),
		engine.NewDispatcher(executor, builder, cfg.FetchTimeout, metrics),
		GetGenerator(),
	)

	// Get HealthCheck
	if svc.HealthCheck, err = GetHealthCheck(cfg, buildTime, gitCommit, version); err != nil {
		return fmt.Errorf("could not instantiate healthcheck: %w", err)
	}

	if err := svc.registerCheckers(); err != nil {
		return fmt.Errorf("error initialising checkers: %w", err)
	}

	svc.Server = GetHTTPServer(cfg.BindAddr, svc.router())

	return nil
}

func (svc *Service) router() http.Handler {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware(svc.Cfg.OTServiceName))
	r.StrictSlash(true).Path("/health").HandlerFunc(svc.HealthCheck.Handler)
	r.Path("/metrics").Handler(promhttp.HandlerFor(svc.Registry, promhttp.HandlerOpts{}))
	svc.Handler.Register(r)

	return handlers.CORS(
		handlers.AllowedOrigins(svc.Cfg.CORSAllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(r)
}

// Start the service
func (svc *Service) Start(ctx context.Context, svcErrors chan error) {
	log.Info(ctx, "starting service", log.Data{
		"bind_addr":     svc.Cfg.BindAddr,
		"warehouse":     svc.Cfg.WarehouseDriver,
		"datasets":      svc.Cfg.Datasets,
		"emission_mode": svc.Cfg.EmissionMode,
	})

	svc.HealthCheck.Start(ctx)

	// Run the http server in a new go-routine
	go func() {
		if err := svc.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			svcErrors <- fmt.Errorf("failure in http listen and serve: %w", err)
		}
	}()
}

// Close gracefully shuts the service down in the required order, with timeout
func (svc *Service) Close(ctx context.Context) error {
	timeout := svc.Cfg.GracefulShutdownTimeout
	log.Info(ctx, "commencing graceful shutdown", log.Data{"graceful_shutdown_timeout": timeout})
	ctx, cancel := context.WithTimeout(ctx, timeout)
	hasShutdownError := false

	go func() {
		defer cancel()

		// stop healthcheck, as it depends on everything else
		if svc.HealthCheck != nil {
			svc.HealthCheck.Stop()
			log.Info(ctx, "stopped health checker")
		}

		// stop any incoming requests before closing any outbound connections
		if svc.Server != nil {
			if err := svc.Server.Shutdown(ctx); err != nil {
				log.Error(ctx, "failed to shutdown http server", err)
				hasShutdownError = true
			}
			log.Info(ctx, "stopped http server")
		}

		if svc.Warehouse != nil {
			if err := svc.Warehouse.Close(ctx); err != nil {
				log.Error(ctx, "error closing warehouse connection", err)
				hasShutdownError = true
			}
			log.Info(ctx, "closed warehouse connection")
		}

		if svc.otelShutdown != nil {
			if err := svc.otelShutdown(ctx); err != nil {
				log.Error(ctx, "error shutting down open telemetry", err)
				hasShutdownError = true
			}
		}
	}()

	// wait for shutdown success (via cancel) or failure (timeout)
	<-ctx.Done()

	// timeout expired
	if ctx.Err() == context.DeadlineExceeded {
		log.Error(ctx, "shutdown timed out", ctx.Err())
		return ctx.Err()
	}

	// other error
	if hasShutdownError {
		err := fmt.Errorf("failed to shutdown gracefully")
		log.Error(ctx, "failed to shutdown gracefully ", err)
		return err
	}

	log.Info(ctx, "graceful shutdown was successful")
	return nil
}

// registerCheckers adds the checkers for the service clients to the health check object.
func (svc *Service) registerCheckers() error {
	if _, err := svc.HealthCheck.AddAndGetCheck("Warehouse", svc.Warehouse.Checker); err != nil {
		return fmt.Errorf("error adding check for warehouse: %w", err)
	}

	return nil
}
