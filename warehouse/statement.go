// Package warehouse holds the query executors and the dialect specific query
// builders used to talk to the remote data warehouse. Identifiers are checked
// before they are interpolated into query text, as table names can arrive
// straight from a request path.
package warehouse

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidIdentifier is returned when a dataset or table name cannot be
// safely placed into query text.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// TableNameColumn is the column every ListTables statement returns.
const TableNameColumn = "table_name"

// MaxIdentifierLength is the longest dataset or table name accepted
const MaxIdentifierLength = 1024

var identifierRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Row is a single record returned by the warehouse. Columns may vary from row
// to row and values are whatever the driver decoded.
type Row map[string]interface{}

// Statement is a query ready to be run by an Executor.
type Statement struct {
	SQL  string
	Args []interface{}
	// UseCache allows identical statements to be answered from a previous result.
	UseCache bool
}

//go:generate moq -out mock/executor.go -pkg mock . Executor

// Executor runs a statement and returns every row it produced, in order.
type Executor interface {
	Execute(ctx context.Context, stmt Statement) ([]Row, error)
}

// ValidateIdentifier checks a dataset or table name against the characters
// accepted by every supported dialect.
func ValidateIdentifier(id string) error {
	if len(id) > MaxIdentifierLength || !identifierRE.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	return nil
}

func validateAll(ids ...string) error {
	for _, id := range ids {
		if err := ValidateIdentifier(id); err != nil {
			return err
		}
	}
	return nil
}
