package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ONSdigital/dp-healthcheck/healthcheck"
	"github.com/ONSdigital/dp-table-aggregator/warehouse"
)

// memoryBuilder renders statements that memoryWarehouse can route
type memoryBuilder struct{}

func (memoryBuilder) ListTables(dataset string) (warehouse.Statement, error) {
	if err := warehouse.ValidateIdentifier(dataset); err != nil {
		return warehouse.Statement{}, err
	}
	return warehouse.Statement{SQL: "tables " + dataset}, nil
}

func (memoryBuilder) SelectRows(dataset, table string, limit uint) (warehouse.Statement, error) {
	if err := warehouse.ValidateIdentifier(dataset); err != nil {
		return warehouse.Statement{}, err
	}
	if err := warehouse.ValidateIdentifier(table); err != nil {
		return warehouse.Statement{}, err
	}
	return warehouse.Statement{SQL: fmt.Sprintf("rows %s.%s", dataset, table), Args: []interface{}{limit}}, nil
}

// memoryWarehouse holds generated rows per dataset and table
type memoryWarehouse struct {
	mu       sync.Mutex
	tables   map[string]map[string][]warehouse.Row
	failures map[string]string
	fetches  int
}

func newMemoryWarehouse() *memoryWarehouse {
	return &memoryWarehouse{
		tables:   map[string]map[string][]warehouse.Row{},
		failures: map[string]string{},
	}
}

func (m *memoryWarehouse) addTable(dataset, table string, rows int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tables[dataset] == nil {
		m.tables[dataset] = map[string][]warehouse.Row{}
	}
	data := make([]warehouse.Row, 0, rows)
	for i := 1; i <= rows; i++ {
		data = append(data, warehouse.Row{"position": i, "table": table})
	}
	m.tables[dataset][table] = data
}

func (m *memoryWarehouse) fail(sql, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[sql] = reason
}

func (m *memoryWarehouse) fetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches
}

func (m *memoryWarehouse) Execute(ctx context.Context, stmt warehouse.Statement) ([]warehouse.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if strings.HasPrefix(stmt.SQL, "rows ") {
		m.fetches++
	}
	if reason, ok := m.failures[stmt.SQL]; ok {
		return nil, errors.New(reason)
	}

	if dataset, ok := strings.CutPrefix(stmt.SQL, "tables "); ok {
		tables, ok := m.tables[dataset]
		if !ok {
			return nil, fmt.Errorf("Not found: Dataset %s", dataset)
		}
		rows := make([]warehouse.Row, 0, len(tables))
		for name := range tables {
			rows = append(rows, warehouse.Row{warehouse.TableNameColumn: name})
		}
		return rows, nil
	}

	ref := strings.SplitN(strings.TrimPrefix(stmt.SQL, "rows "), ".", 2)
	rows, ok := m.tables[ref[0]][ref[1]]
	if !ok {
		return nil, fmt.Errorf("Not found: Table %s.%s", ref[0], ref[1])
	}
	if limit, ok := stmt.Args[0].(uint); ok && limit > 0 && uint(len(rows)) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (m *memoryWarehouse) Checker(ctx context.Context, state *healthcheck.CheckState) error {
	return state.Update(healthcheck.StatusOK, "in memory warehouse is healthy", 0)
}

func (m *memoryWarehouse) Close(ctx context.Context) error {
	return nil
}
