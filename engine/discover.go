package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/ONSdigital/dp-table-aggregator/warehouse"
	"github.com/ONSdigital/log.go/v2/log"
	"golang.org/x/sync/errgroup"
)

//go:generate moq -out mock/query_builder.go -pkg mock . QueryBuilder

// QueryBuilder builds the statements the engine runs against the warehouse
type QueryBuilder interface {
	ListTables(dataset string) (warehouse.Statement, error)
	SelectRows(dataset, table string, limit uint) (warehouse.Statement, error)
}

// Discovery is the set of tables found across datasets, along with the
// reason each failed dataset could not be listed.
type Discovery struct {
	Tables []TableRef
	Errors map[string]string
}

// Empty reports whether no table was found in any dataset
func (d Discovery) Empty() bool {
	return len(d.Tables) == 0
}

// TableNames returns the sorted, deduplicated table names regardless of
// which dataset they were found in.
func (d Discovery) TableNames() []string {
	seen := make(map[string]struct{}, len(d.Tables))
	names := make([]string, 0, len(d.Tables))
	for _, t := range d.Tables {
		if _, ok := seen[t.Table]; ok {
			continue
		}
		seen[t.Table] = struct{}{}
		names = append(names, t.Table)
	}
	sort.Strings(names)
	return names
}

// Units returns one fetch unit per discovered table
func (d Discovery) Units(rowLimit uint, useCache bool) []Unit {
	units := make([]Unit, 0, len(d.Tables))
	for _, t := range d.Tables {
		units = append(units, Unit{
			Dataset:  t.Dataset,
			Table:    t.Table,
			RowLimit: rowLimit,
			UseCache: useCache,
		})
	}
	return units
}

// Discoverer lists the tables of each dataset
type Discoverer struct {
	executor    warehouse.Executor
	builder     QueryBuilder
	concurrency int
	metrics     *Metrics
}

// NewDiscoverer returns a Discoverer that lists at most concurrency datasets at once
func NewDiscoverer(e warehouse.Executor, b QueryBuilder, concurrency int, m *Metrics) *Discoverer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Discoverer{
		executor:    e,
		builder:     b,
		concurrency: concurrency,
		metrics:     m,
	}
}

// Discover lists the tables of every dataset. A dataset that cannot be listed
// contributes an entry to Errors and no tables; the others are unaffected.
// Tables are returned in dataset order, then by name.
func (d *Discoverer) Discover(ctx context.Context, datasets []string) Discovery {
	found := make([][]string, len(datasets))
	failed := make([]error, len(datasets))

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, dataset := range datasets {
		i, dataset := i, dataset
		g.Go(func() error {
			found[i], failed[i] = d.listTables(ctx, dataset)
			return nil
		})
	}
	_ = g.Wait()

	discovery := Discovery{Errors: map[string]string{}}
	for i, dataset := range datasets {
		if failed[i] != nil {
			derr := &DiscoveryError{Dataset: dataset, Err: failed[i]}
			log.Error(ctx, "failed to discover tables", derr, derr.LogData())
			d.metrics.discoveryFailed()
			discovery.Errors[dataset] = failed[i].Error()
			continue
		}
		for _, table := range found[i] {
			discovery.Tables = append(discovery.Tables, TableRef{Dataset: dataset, Table: table})
		}
	}

	log.Info(ctx, "table discovery complete", log.Data{
		"datasets":        len(datasets),
		"tables":          len(discovery.Tables),
		"failed_datasets": len(discovery.Errors),
	})

	return discovery
}

func (d *Discoverer) listTables(ctx context.Context, dataset string) (tables []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			tables, err = nil, fmt.Errorf("panic while listing tables: %v", r)
		}
	}()

	stmt, err := d.builder.ListTables(dataset)
	if err != nil {
		return nil, err
	}

	rows, err := d.executor.Execute(ctx, stmt)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		name, ok := row[warehouse.TableNameColumn].(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("unexpected %s value %v", warehouse.TableNameColumn, row[warehouse.TableNameColumn])
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		tables = append(tables, name)
	}
	sort.Strings(tables)

	return tables, nil
}
