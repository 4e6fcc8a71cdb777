// Package engine fans table fetches out across the configured datasets and
// folds the per table results back into one response.
//
// The flow is Discoverer -> Dispatcher -> Aggregator -> Emitter. Every unit
// handed to the Dispatcher produces exactly one Result, and a failed unit is
// reported in place of its rows instead of failing the request.
package engine

import (
	"errors"

	"github.com/ONSdigital/dp-table-aggregator/warehouse"
)

// Unit is a single (dataset, table) fetch. One unit is one query.
type Unit struct {
	Dataset  string
	Table    string
	RowLimit uint
	UseCache bool
}

// Outcome is the result of fetching a unit. It is a failure when Err is set.
type Outcome struct {
	Rows []warehouse.Row
	Err  error
}

// Failed reports whether the fetch failed
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Reason returns the failure message shown to callers
func (o Outcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	var fe *FetchError
	if errors.As(o.Err, &fe) && fe.Err != nil {
		return fe.Err.Error()
	}
	return o.Err.Error()
}

// Result pairs an outcome with the unit that produced it. Results arrive in
// completion order so they must be matched by Unit, never by position.
type Result struct {
	Unit    Unit
	Outcome Outcome
}

// Failure is the marker written where a unit's rows would have been
type Failure struct {
	Error string `json:"error"`
}

// TableRef identifies a table within a dataset
type TableRef struct {
	Dataset string
	Table   string
}
