package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ONSdigital/dp-table-aggregator/config"
	"github.com/ONSdigital/dp-table-aggregator/engine"
	"github.com/ONSdigital/dp-table-aggregator/service"
	"github.com/ONSdigital/dp-table-aggregator/warehouse"
	"github.com/ONSdigital/log.go/v2/log"
)

const serviceName = "dp-table-aggregator-discover"

func main() {
	log.Namespace = serviceName
	ctx := context.Background()

	// Get Config
	cfg, err := config.Get()
	if err != nil {
		log.Fatal(ctx, "error getting config", err)
		os.Exit(1)
	}

	// Connect to the warehouse the service would use
	wh, err := service.GetWarehouse(ctx, cfg)
	if err != nil {
		log.Fatal(ctx, "fatal error trying to connect to warehouse", err, log.Data{"driver": cfg.WarehouseDriver})
		os.Exit(1)
	}
	defer func() {
		if err := wh.Close(ctx); err != nil {
			log.Error(ctx, "error closing warehouse connection", err)
		}
	}()

	builder := service.GetQueryBuilder(cfg)
	discoverer := engine.NewDiscoverer(wh, builder, cfg.DiscoveryConcurrency, nil)
	dispatcher := engine.NewDispatcher(wh, builder, cfg.FetchTimeout, nil)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		datasets, table, ok := scanRequest(scanner, cfg.Datasets)
		if !ok {
			return
		}

		if table == "" {
			d := discoverer.Discover(ctx, datasets)
			printJSON(map[string]interface{}{
				"tables": d.TableNames(),
				"errors": d.Errors,
			})
			continue
		}

		if err := warehouse.ValidateIdentifier(table); err != nil {
			fmt.Println(err)
			continue
		}

		units := make([]engine.Unit, 0, len(datasets))
		for _, ds := range datasets {
			units = append(units, engine.Unit{Dataset: ds, Table: table, RowLimit: cfg.TableDataRowLimit})
		}
		agg := engine.NewAggregator(engine.ByDataset, engine.Flat, engine.TrimPrefixKey(cfg.DatasetKeyPrefix))
		printJSON(agg.Collect(dispatcher.Dispatch(ctx, units, cfg.FetchConcurrency)))
	}
}

// scanRequest reads the datasets to query and an optional table to fetch
// from them. It returns false once stdin is exhausted.
func scanRequest(scanner *bufio.Scanner, configured []string) ([]string, string, bool) {
	fmt.Println("--- [Discover warehouse tables] ---")

	fmt.Printf("Please type the datasets, comma separated (blank for %s)\n", strings.Join(configured, ","))
	fmt.Printf("$ ")
	if !scanner.Scan() {
		return nil, "", false
	}
	datasets := configured
	if line := strings.TrimSpace(scanner.Text()); line != "" {
		datasets = nil
		for _, ds := range strings.Split(line, ",") {
			if ds = strings.TrimSpace(ds); ds != "" {
				datasets = append(datasets, ds)
			}
		}
	}

	fmt.Println("Please type a table_name to fetch (blank to list tables)")
	fmt.Printf("$ ")
	if !scanner.Scan() {
		return nil, "", false
	}

	return datasets, strings.TrimSpace(scanner.Text()), true
}

func printJSON(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(string(b))
}
