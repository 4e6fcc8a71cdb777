package engine

import (
	"strings"
	"sync"
)

// GroupBy selects which dimension is the outer key of an Aggregate
type GroupBy int

const (
	// ByDataset nests tables under their dataset
	ByDataset GroupBy = iota
	// ByTable nests datasets under the table name
	ByTable
)

// Shape selects whether an Aggregate has an inner level
type Shape int

const (
	// Nested maps outer key -> inner key -> rows
	Nested Shape = iota
	// Flat maps outer key -> rows, for requests where the inner key is fixed
	Flat
)

// KeyFunc maps a dataset id to the key it is presented under
type KeyFunc func(dataset string) string

// TrimPrefixKey presents sharded datasets by their suffix, so that
// "sheet1" becomes "1" for the prefix "sheet". A dataset equal to the prefix
// keeps its full id.
func TrimPrefixKey(prefix string) KeyFunc {
	return func(dataset string) string {
		key := strings.TrimPrefix(dataset, prefix)
		if key == "" {
			return dataset
		}
		return key
	}
}

// Aggregate is the merged response data. Leaves are either []warehouse.Row or
// a Failure; with the Nested shape every value is a map[string]interface{}.
type Aggregate map[string]interface{}

// Aggregator folds results into an Aggregate. It is safe for concurrent use.
type Aggregator struct {
	groupBy GroupBy
	shape   Shape
	key     KeyFunc

	mu        sync.Mutex
	data      Aggregate
	succeeded int
	failed    int
}

// NewAggregator returns an empty Aggregator. A nil key presents datasets
// by their full id.
func NewAggregator(groupBy GroupBy, shape Shape, key KeyFunc) *Aggregator {
	if key == nil {
		key = func(dataset string) string { return dataset }
	}
	return &Aggregator{
		groupBy: groupBy,
		shape:   shape,
		key:     key,
		data:    Aggregate{},
	}
}

// Shape returns the shape of the aggregate being built
func (a *Aggregator) Shape() Shape {
	return a.shape
}

// Keys returns where a unit's leaf sits in the aggregate. inner is empty for
// the Flat shape.
func (a *Aggregator) Keys(u Unit) (outer, inner string) {
	dataset := a.key(u.Dataset)
	if a.groupBy == ByTable {
		outer, inner = u.Table, dataset
	} else {
		outer, inner = dataset, u.Table
	}
	if a.shape == Flat {
		inner = ""
	}
	return outer, inner
}

// Leaf returns the value written for an outcome: its rows, or a Failure
// marker in their place.
func Leaf(o Outcome) interface{} {
	if o.Failed() {
		return Failure{Error: o.Reason()}
	}
	return o.Rows
}

// Add folds a single result into the aggregate
func (a *Aggregator) Add(r Result) {
	a.AddLeaf(r, Leaf(r.Outcome))
}

// AddLeaf folds a result into the aggregate with leaf written in its place,
// such as rows that have already been encoded.
func (a *Aggregator) AddLeaf(r Result, leaf interface{}) {
	outer, inner := a.Keys(r.Unit)

	a.mu.Lock()
	defer a.mu.Unlock()

	if r.Outcome.Failed() {
		a.failed++
	} else {
		a.succeeded++
	}

	if a.shape == Flat {
		a.data[outer] = leaf
		return
	}

	group, ok := a.data[outer].(map[string]interface{})
	if !ok {
		group = map[string]interface{}{}
		a.data[outer] = group
	}
	group[inner] = leaf
}

// Collect adds every result from the channel until it is closed and returns
// the aggregate.
func (a *Aggregator) Collect(results <-chan Result) Aggregate {
	for r := range results {
		a.Add(r)
	}
	return a.Result()
}

// Result returns the aggregate built so far
func (a *Aggregator) Result() Aggregate {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.data
}

// Succeeded returns the number of successful results added
func (a *Aggregator) Succeeded() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.succeeded
}

// Failed returns the number of failed results added
func (a *Aggregator) Failed() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.failed
}

// AllFailed reports whether results were added and none succeeded
func (a *Aggregator) AllFailed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.failed > 0 && a.succeeded == 0
}

// Flatten returns the (dataset key, table) -> leaf relation of a Nested
// aggregate built with groupBy.
func Flatten(agg Aggregate, groupBy GroupBy) map[TableRef]interface{} {
	flat := map[TableRef]interface{}{}
	for outer, v := range agg {
		group, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		for inner, leaf := range group {
			ref := TableRef{Dataset: outer, Table: inner}
			if groupBy == ByTable {
				ref = TableRef{Dataset: inner, Table: outer}
			}
			flat[ref] = leaf
		}
	}
	return flat
}

// Leaves counts the leaves of an aggregate
func Leaves(agg Aggregate) int {
	n := 0
	for _, v := range agg {
		if group, ok := v.(map[string]interface{}); ok {
			n += len(group)
			continue
		}
		n++
	}
	return n
}
