package engine_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ONSdigital/dp-table-aggregator/engine"
	"github.com/ONSdigital/dp-table-aggregator/engine/mock"
	"github.com/ONSdigital/dp-table-aggregator/warehouse"
	whmock "github.com/ONSdigital/dp-table-aggregator/warehouse/mock"
)

var ctx = context.Background()

var errNotFound = errors.New("Not found: Table")

// testBuilder renders statements as "tables <dataset>" and
// "rows <dataset>.<table>" so the fake warehouse can route them.
func testBuilder() *mock.QueryBuilderMock {
	return &mock.QueryBuilderMock{
		ListTablesFunc: func(dataset string) (warehouse.Statement, error) {
			return warehouse.Statement{SQL: "tables " + dataset}, nil
		},
		SelectRowsFunc: func(dataset string, table string, limit uint) (warehouse.Statement, error) {
			return warehouse.Statement{SQL: "rows " + dataset + "." + table}, nil
		},
	}
}

// fakeWarehouse is an in memory warehouse holding table names per dataset.
// Statements listed in failures fail with the given error.
type fakeWarehouse struct {
	mu       sync.Mutex
	tables   map[string][]string
	failures map[string]error
}

func newFakeWarehouse(tables map[string][]string) *fakeWarehouse {
	return &fakeWarehouse{
		tables:   tables,
		failures: map[string]error{},
	}
}

func (f *fakeWarehouse) fail(sql string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[sql] = err
}

func (f *fakeWarehouse) executor() *whmock.ExecutorMock {
	return &whmock.ExecutorMock{
		ExecuteFunc: func(ctx context.Context, stmt warehouse.Statement) ([]warehouse.Row, error) {
			f.mu.Lock()
			err := f.failures[stmt.SQL]
			f.mu.Unlock()
			if err != nil {
				return nil, err
			}

			switch {
			case strings.HasPrefix(stmt.SQL, "tables "):
				dataset := strings.TrimPrefix(stmt.SQL, "tables ")
				tables, ok := f.tables[dataset]
				if !ok {
					return nil, fmt.Errorf("Not found: Dataset %s", dataset)
				}
				rows := make([]warehouse.Row, 0, len(tables))
				for _, t := range tables {
					rows = append(rows, warehouse.Row{warehouse.TableNameColumn: t})
				}
				return rows, nil
			case strings.HasPrefix(stmt.SQL, "rows "):
				ref := strings.SplitN(strings.TrimPrefix(stmt.SQL, "rows "), ".", 2)
				for _, t := range f.tables[ref[0]] {
					if t == ref[1] {
						return rowsFor(ref[0], ref[1]), nil
					}
				}
				return nil, errNotFound
			}
			return nil, fmt.Errorf("unexpected statement %q", stmt.SQL)
		},
	}
}

func rowsFor(dataset, table string) []warehouse.Row {
	return []warehouse.Row{
		{"dataset": dataset, "table": table, "position": 1},
		{"dataset": dataset, "table": table, "position": 2, "extra": "only on this row"},
	}
}

func success(dataset, table string) engine.Result {
	return engine.Result{
		Unit:    engine.Unit{Dataset: dataset, Table: table},
		Outcome: engine.Outcome{Rows: rowsFor(dataset, table)},
	}
}

func failure(dataset, table, reason string) engine.Result {
	u := engine.Unit{Dataset: dataset, Table: table}
	return engine.Result{
		Unit:    u,
		Outcome: engine.Outcome{Err: &engine.FetchError{Unit: u, Err: errors.New(reason)}},
	}
}

func unitsOf(results []engine.Result) []engine.Unit {
	units := make([]engine.Unit, 0, len(results))
	for _, r := range results {
		units = append(units, r.Unit)
	}
	return units
}

func feed(results []engine.Result) <-chan engine.Result {
	ch := make(chan engine.Result, len(results))
	for _, r := range results {
		ch <- r
	}
	close(ch)
	return ch
}
