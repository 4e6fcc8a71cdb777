package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ONSdigital/dp-table-aggregator/warehouse"
	"github.com/ONSdigital/log.go/v2/log"
	"github.com/panjf2000/ants/v2"
)

// Dispatcher runs fetch units against the warehouse with bounded concurrency
type Dispatcher struct {
	executor warehouse.Executor
	builder  QueryBuilder
	timeout  time.Duration
	metrics  *Metrics
}

// NewDispatcher returns a Dispatcher. A zero timeout lets a fetch run for as
// long as the executor takes.
func NewDispatcher(e warehouse.Executor, b QueryBuilder, timeout time.Duration, m *Metrics) *Dispatcher {
	return &Dispatcher{
		executor: e,
		builder:  b,
		timeout:  timeout,
		metrics:  m,
	}
}

// Dispatch fetches every unit, running at most concurrency fetches at a time,
// and sends one Result per unit in completion order. The channel is closed
// once every unit has reported.
//
// Fetches are detached from ctx cancellation: once dispatched, a unit runs
// until it succeeds, fails or hits the per unit timeout.
func (d *Dispatcher) Dispatch(ctx context.Context, units []Unit, concurrency int) <-chan Result {
	results := make(chan Result, len(units))
	ctx = context.WithoutCancel(ctx)

	if concurrency < 1 {
		concurrency = 1
	}
	if len(units) > 0 && concurrency > len(units) {
		concurrency = len(units)
	}

	pool, err := ants.NewPool(concurrency, ants.WithPanicHandler(func(p interface{}) {
		log.Error(ctx, "fetch worker panicked", fmt.Errorf("%v", p))
	}))
	if err != nil {
		log.Error(ctx, "failed to create fetch pool", err, log.Data{"concurrency": concurrency})
		for _, u := range units {
			results <- failed(u, fmt.Errorf("failed to create fetch pool: %w", err))
		}
		close(results)
		return results
	}

	log.Info(ctx, "dispatching table fetches", log.Data{
		"units":       len(units),
		"concurrency": concurrency,
	})

	go func() {
		var wg sync.WaitGroup
		for _, u := range units {
			u := u
			wg.Add(1)
			// Submit blocks while every worker is busy, queueing the remaining units
			err := pool.Submit(func() {
				defer wg.Done()
				results <- d.fetch(ctx, u)
			})
			if err != nil {
				wg.Done()
				results <- failed(u, fmt.Errorf("failed to schedule fetch: %w", err))
			}
		}
		wg.Wait()
		pool.Release()
		close(results)
	}()

	return results
}

func (d *Dispatcher) fetch(ctx context.Context, u Unit) (res Result) {
	res.Unit = u
	logData := log.Data{
		"dataset":   u.Dataset,
		"table":     u.Table,
		"row_limit": u.RowLimit,
	}
	start := time.Now()
	d.metrics.fetchStarted()
	log.Info(ctx, "fetching table data", logData)

	defer func() {
		if r := recover(); r != nil {
			res = failed(u, fmt.Errorf("panic during fetch: %v", r))
		}
		elapsed := time.Since(start)
		d.metrics.fetchFinished(res.Outcome, elapsed)
		logData["duration"] = elapsed.String()
		if res.Outcome.Failed() {
			log.Error(ctx, "failed to fetch table data", res.Outcome.Err, logData)
			return
		}
		logData["rows"] = len(res.Outcome.Rows)
		log.Info(ctx, "retrieved table data", logData)
	}()

	stmt, err := d.builder.SelectRows(u.Dataset, u.Table, u.RowLimit)
	if err != nil {
		return failed(u, err)
	}
	stmt.UseCache = u.UseCache

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	rows, err := d.executor.Execute(ctx, stmt)
	if err != nil {
		return failed(u, err)
	}
	if rows == nil {
		rows = []warehouse.Row{}
	}

	return Result{Unit: u, Outcome: Outcome{Rows: rows}}
}

func failed(u Unit, err error) Result {
	return Result{
		Unit:    u,
		Outcome: Outcome{Err: &FetchError{Unit: u, Err: err}},
	}
}
