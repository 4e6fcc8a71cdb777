package warehouse

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ONSdigital/dp-healthcheck/healthcheck"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBuilder builds statements for a Postgres warehouse where every
// dataset is a schema.
type PostgresBuilder struct{}

// ListTables lists the base tables and views in a schema
func (PostgresBuilder) ListTables(dataset string) (Statement, error) {
	if err := ValidateIdentifier(dataset); err != nil {
		return Statement{}, err
	}
	return Statement{
		SQL:  "SELECT table_name::text AS table_name FROM information_schema.tables WHERE table_schema = $1 ORDER BY table_name",
		Args: []interface{}{dataset},
	}, nil
}

// SelectRows selects every column of a table, capped at limit rows. A zero
// limit selects everything.
func (PostgresBuilder) SelectRows(dataset, table string, limit uint) (Statement, error) {
	if err := validateAll(dataset, table); err != nil {
		return Statement{}, err
	}
	sql := "SELECT * FROM " + pgx.Identifier{dataset, table}.Sanitize()
	if limit > 0 {
		sql += " LIMIT " + strconv.FormatUint(uint64(limit), 10)
	}
	return Statement{SQL: sql}, nil
}

// Postgres executes statements through a shared connection pool.
// Postgres has no result cache of its own, so UseCache is left to Cache.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres opens a connection pool for the given url
func NewPostgres(ctx context.Context, url string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Execute runs the statement and reads every row of the result
func (p *Postgres) Execute(ctx context.Context, stmt Statement) ([]Row, error) {
	rows, err := p.pool.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(out), err)
		}
		row := make(Row, len(fields))
		for i, f := range fields {
			row[f.Name] = values[i]
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if out == nil {
		out = []Row{}
	}

	return out, nil
}

// Checker reports the warehouse as critical if the pool cannot reach the server
func (p *Postgres) Checker(ctx context.Context, state *healthcheck.CheckState) error {
	if err := p.pool.Ping(ctx); err != nil {
		return state.Update(healthcheck.StatusCritical, fmt.Sprintf("postgres unavailable: %s", err), 0)
	}
	return state.Update(healthcheck.StatusOK, "postgres is healthy", 0)
}

// Close closes every connection in the pool
func (p *Postgres) Close(ctx context.Context) error {
	p.pool.Close()
	return nil
}
