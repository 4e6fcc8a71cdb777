package steps

import (
	"fmt"
	"strings"

	assistdog "github.com/ONSdigital/dp-assistdog"
	"github.com/ONSdigital/dp-table-aggregator/config"
	"github.com/cucumber/godog"
)

// warehouseTable is a row of the table describing the warehouse contents
type warehouseTable struct {
	Dataset string
	Table   string
	Rows    int
}

// RegisterSteps maps the human-readable regular expressions to their corresponding funcs
func (c *Component) RegisterSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^the datasets "([^"]*)" are configured$`, c.theDatasetsAreConfigured)
	ctx.Step(`^the warehouse holds the following tables:$`, c.theWarehouseHoldsTheFollowingTables)
	ctx.Step(`^listing the tables of dataset "([^"]*)" fails with "([^"]*)"$`, c.listingTablesFails)
	ctx.Step(`^fetching table "([^"]*)" from dataset "([^"]*)" fails with "([^"]*)"$`, c.fetchingTableFails)
	ctx.Step(`^the responses are streamed$`, c.theResponsesAreStreamed)
	ctx.Step(`^the data is grouped by table$`, c.theDataIsGroupedByTable)
	ctx.Step(`^dataset keys drop the prefix "([^"]*)"$`, c.datasetKeysDropThePrefix)
	ctx.Step(`^no table data should have been fetched$`, c.noTableDataShouldHaveBeenFetched)
	ctx.Step(`^(\d+) tables? should have been fetched$`, c.tablesShouldHaveBeenFetched)
}

func (c *Component) theDatasetsAreConfigured(datasets string) error {
	c.cfg.Datasets = strings.Split(datasets, ",")
	return nil
}

// theWarehouseHoldsTheFollowingTables fills the in memory warehouse with
// generated rows for every dataset and table listed
func (c *Component) theWarehouseHoldsTheFollowingTables(tables *godog.Table) error {
	rows, err := assistdog.NewDefault().CreateSlice(new(warehouseTable), tables)
	if err != nil {
		return fmt.Errorf("failed to create slice from godog table: %w", err)
	}

	for _, t := range rows.([]*warehouseTable) {
		c.warehouse.addTable(t.Dataset, t.Table, t.Rows)
	}
	return nil
}

func (c *Component) listingTablesFails(dataset, reason string) error {
	c.warehouse.fail("tables "+dataset, reason)
	return nil
}

func (c *Component) fetchingTableFails(table, dataset, reason string) error {
	c.warehouse.fail(fmt.Sprintf("rows %s.%s", dataset, table), reason)
	return nil
}

func (c *Component) theResponsesAreStreamed() error {
	c.cfg.EmissionMode = config.EmissionStreaming
	return nil
}

func (c *Component) theDataIsGroupedByTable() error {
	c.cfg.GroupBy = config.GroupByTable
	return nil
}

func (c *Component) datasetKeysDropThePrefix(prefix string) error {
	c.cfg.DatasetKeyPrefix = prefix
	return nil
}

func (c *Component) noTableDataShouldHaveBeenFetched() error {
	return c.tablesShouldHaveBeenFetched(0)
}

func (c *Component) tablesShouldHaveBeenFetched(expected int) error {
	if got := c.warehouse.fetchCount(); got != expected {
		return fmt.Errorf("expected %d table fetches, got %d", expected, got)
	}
	return nil
}
