package warehouse

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"cloud.google.com/go/bigquery"
	"github.com/ONSdigital/dp-healthcheck/healthcheck"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// BigQueryBuilder builds statements in BigQuery standard SQL, where every
// dataset lives under the same project.
type BigQueryBuilder struct {
	ProjectID string
}

// ListTables lists the tables of a dataset via its INFORMATION_SCHEMA view
func (b BigQueryBuilder) ListTables(dataset string) (Statement, error) {
	if err := validateAll(b.ProjectID, dataset); err != nil {
		return Statement{}, err
	}
	return Statement{
		SQL: fmt.Sprintf("SELECT table_name FROM `%s.%s.INFORMATION_SCHEMA.TABLES` ORDER BY table_name",
			b.ProjectID, dataset),
	}, nil
}

// SelectRows selects every column of a table, capped at limit rows. A zero
// limit selects everything.
func (b BigQueryBuilder) SelectRows(dataset, table string, limit uint) (Statement, error) {
	if err := validateAll(b.ProjectID, dataset, table); err != nil {
		return Statement{}, err
	}
	sql := fmt.Sprintf("SELECT * FROM `%s.%s.%s`", b.ProjectID, dataset, table)
	if limit > 0 {
		sql += " LIMIT " + strconv.FormatUint(uint64(limit), 10)
	}
	return Statement{SQL: sql}, nil
}

// BigQuery executes statements against a BigQuery project. The client is safe
// for concurrent use and is shared by every request.
type BigQuery struct {
	client       *bigquery.Client
	probeDataset string
}

// NewBigQuery creates a BigQuery client for the project. credentialsFile is a
// service account key file; when empty the application default credentials
// are used. probeDataset is the dataset whose metadata is read by the health
// checker.
func NewBigQuery(ctx context.Context, projectID, credentialsFile, probeDataset string) (*BigQuery, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}

	return &BigQuery{
		client:       client,
		probeDataset: probeDataset,
	}, nil
}

// Execute runs the statement and reads every row of the result
func (b *BigQuery) Execute(ctx context.Context, stmt Statement) ([]Row, error) {
	q := b.client.Query(stmt.SQL)
	q.DisableQueryCache = !stmt.UseCache
	for _, arg := range stmt.Args {
		q.Parameters = append(q.Parameters, bigquery.QueryParameter{Value: arg})
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}

	rows := make([]Row, 0, it.TotalRows)
	for {
		var values map[string]bigquery.Value
		err := it.Next(&values)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows), err)
		}

		row := make(Row, len(values))
		for k, v := range values {
			row[k] = v
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// Checker reports the warehouse as critical if the probe dataset's metadata
// cannot be read.
func (b *BigQuery) Checker(ctx context.Context, state *healthcheck.CheckState) error {
	if _, err := b.client.Dataset(b.probeDataset).Metadata(ctx); err != nil {
		return state.Update(healthcheck.StatusCritical, fmt.Sprintf("bigquery dataset %s unavailable: %s", b.probeDataset, err), 0)
	}
	return state.Update(healthcheck.StatusOK, "bigquery is healthy", 0)
}

// Close releases the underlying client
func (b *BigQuery) Close(ctx context.Context) error {
	return b.client.Close()
}
