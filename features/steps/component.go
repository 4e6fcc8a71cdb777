package steps

import (
	"context"
	"fmt"
	"net/http"

	componenttest "github.com/ONSdigital/dp-component-test"
	"github.com/ONSdigital/dp-table-aggregator/config"
	"github.com/ONSdigital/dp-table-aggregator/engine"
	"github.com/ONSdigital/dp-table-aggregator/handler"
	"github.com/ONSdigital/dp-table-aggregator/service"
	serviceMock "github.com/ONSdigital/dp-table-aggregator/service/mock"
)

// Component runs the service against an in memory warehouse
type Component struct {
	componenttest.ErrorFeature
	svc       *service.Service
	cfg       *config.Config
	warehouse *memoryWarehouse
	handler   http.Handler
}

// NewComponent returns a Component using the default configuration
func NewComponent() (*Component, error) {
	c := &Component{}
	if err := c.Reset(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reset restores the default configuration and empties the warehouse
func (c *Component) Reset() error {
	base, err := config.Get()
	if err != nil {
		return fmt.Errorf("failed to get config: %w", err)
	}

	cfg := *base
	cfg.DatasetKeyPrefix = ""
	cfg.QueryCacheEnabled = false
	cfg.OtelEnabled = false
	c.cfg = &cfg

	c.warehouse = newMemoryWarehouse()
	c.handler = nil
	c.svc = nil
	return nil
}

// InitialiseService initialises the service on first use and returns its
// router
func (c *Component) InitialiseService() (http.Handler, error) {
	if c.handler != nil {
		return c.handler, nil
	}

	service.GetWarehouse = func(ctx context.Context, cfg *config.Config) (service.Warehouse, error) {
		return c.warehouse, nil
	}
	service.GetQueryBuilder = func(cfg *config.Config) engine.QueryBuilder {
		return memoryBuilder{}
	}
	service.GetGenerator = func() handler.Generator {
		return &generator{}
	}
	service.GetHTTPServer = func(bindAddr string, router http.Handler) service.HTTPServer {
		c.handler = router
		return &serviceMock.HTTPServerMock{
			ShutdownFunc: func(ctx context.Context) error { return nil },
		}
	}

	c.svc = service.New()
	if err := c.svc.Init(context.Background(), c.cfg, "1", "component", "test"); err != nil {
		return nil, fmt.Errorf("failed to initialise service: %w", err)
	}

	return c.handler, nil
}

// Close stops the service if it was started
func (c *Component) Close() error {
	if c.svc == nil {
		return nil
	}
	return c.svc.Warehouse.Close(context.Background())
}
