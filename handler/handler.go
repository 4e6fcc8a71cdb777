package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/ONSdigital/dp-table-aggregator/config"
	"github.com/ONSdigital/dp-table-aggregator/engine"
	"github.com/ONSdigital/dp-table-aggregator/warehouse"
	"github.com/ONSdigital/log.go/v2/log"
	"github.com/gorilla/mux"
)

// TableNameParam names the path variable and query parameter carrying the
// table requested from the single table endpoint.
const TableNameParam = "table_name"

// Aggregation serves the table listing and aggregation endpoints
type Aggregation struct {
	cfg        config.Config
	discoverer Discoverer
	dispatcher Dispatcher
	generator  Generator
	emitter    *engine.Emitter
}

// NewAggregation creates a new Aggregation handler
func NewAggregation(cfg config.Config, d Discoverer, f Dispatcher, g Generator) *Aggregation {
	mode := engine.Buffered
	if cfg.EmissionMode == config.EmissionStreaming {
		mode = engine.Streaming
	}
	return &Aggregation{
		cfg:        cfg,
		discoverer: d,
		dispatcher: f,
		generator:  g,
		emitter:    engine.NewEmitter(mode),
	}
}

// Register adds the aggregation routes to r
func (h *Aggregation) Register(r *mux.Router) {
	r.HandleFunc("/tables", h.Tables).Methods(http.MethodGet)
	r.HandleFunc("/tables/data", h.TablesData).Methods(http.MethodGet)
	r.HandleFunc("/table/data", h.TableData).Methods(http.MethodGet)
	r.HandleFunc("/table/{"+TableNameParam+"}/data", h.TableData).Methods(http.MethodGet)
}

// Tables lists the distinct table names found across the configured datasets
func (h *Aggregation) Tables(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logData := h.logData(ctx, req)
	start := h.generator.Timestamp()

	d := h.discoverer.Discover(ctx, h.cfg.Datasets)
	if d.Empty() {
		h.writeError(ctx, w, &engine.TotalFailure{Message: engine.MsgNoTablesFound, Errors: d.Errors}, logData)
		return
	}

	env := engine.Envelope{
		Status: engine.StatusSuccess,
		Tables: d.TableNames(),
	}
	if len(d.Errors) > 0 {
		env.Errors = d.Errors
	}

	logData["tables"] = len(env.Tables)
	logData["failed_datasets"] = len(d.Errors)
	logData["duration"] = h.since(start)
	h.write(ctx, w, http.StatusOK, env, logData)
}

// TablesData fetches every table of every dataset and returns them grouped
// by dataset then table, or by table then dataset. Datasets whose tables
// could not be listed are reported under errors.
func (h *Aggregation) TablesData(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logData := h.logData(ctx, req)
	start := h.generator.Timestamp()

	d := h.discoverer.Discover(ctx, h.cfg.Datasets)
	if d.Empty() {
		h.writeError(ctx, w, &engine.TotalFailure{Message: engine.MsgNoTablesFound, Errors: d.Errors}, logData)
		return
	}
	if len(d.Errors) > 0 {
		log.Warn(ctx, "some datasets could not be listed and are reported as errors", log.Data{
			"request_id": logData["request_id"],
			"errors":     d.Errors,
		})
	}

	groupBy := engine.ByDataset
	if h.cfg.GroupBy == config.GroupByTable {
		groupBy = engine.ByTable
	}

	units := d.Units(h.cfg.TablesDataRowLimit, h.cfg.QueryCacheEnabled)
	h.aggregate(ctx, w, units, engine.NewAggregator(groupBy, engine.Nested, h.keyFunc()), d.Errors, start, logData)
}

// TableData fetches a single table from every dataset and returns it keyed
// by dataset. The table is not checked for existence first; datasets that
// do not hold it report a failure in its place.
func (h *Aggregation) TableData(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logData := h.logData(ctx, req)
	start := h.generator.Timestamp()

	table, err := tableName(req)
	if err != nil {
		h.writeError(ctx, w, err, logData)
		return
	}
	logData["table"] = table

	units := make([]engine.Unit, 0, len(h.cfg.Datasets))
	for _, dataset := range h.cfg.Datasets {
		units = append(units, engine.Unit{
			Dataset:  dataset,
			Table:    table,
			RowLimit: h.cfg.TableDataRowLimit,
			UseCache: h.cfg.QueryCacheEnabled,
		})
	}

	h.aggregate(ctx, w, units, engine.NewAggregator(engine.ByDataset, engine.Flat, h.keyFunc()), nil, start, logData)
}

// aggregate dispatches units and emits their results. errs are reported
// beside the data of a success envelope.
func (h *Aggregation) aggregate(ctx context.Context, w http.ResponseWriter, units []engine.Unit, agg *engine.Aggregator, errs map[string]string, start time.Time, logData log.Data) {
	logData["units"] = len(units)
	log.Info(ctx, "aggregating table data", logData)

	results := h.dispatcher.Dispatch(ctx, units, h.cfg.FetchConcurrency)
	s := h.emitter.EmitWithErrors(ctx, w, units, results, agg, errs)

	logData["succeeded"] = s.Succeeded
	logData["failed"] = s.Failed
	logData["status_code"] = s.StatusCode
	logData["duration"] = h.since(start)
	log.Info(ctx, "request complete", logData)
}

// tableName reads the table from the path, falling back to the query string
func tableName(req *http.Request) (string, *engine.RequestError) {
	table := mux.Vars(req)[TableNameParam]
	if table == "" {
		table = req.URL.Query().Get(TableNameParam)
	}
	if table == "" {
		return "", &engine.RequestError{Message: engine.MsgMissingTableName}
	}
	if err := warehouse.ValidateIdentifier(table); err != nil {
		return "", &engine.RequestError{Message: engine.MsgInvalidTableName}
	}
	return table, nil
}

func (h *Aggregation) keyFunc() engine.KeyFunc {
	if h.cfg.DatasetKeyPrefix == "" {
		return nil
	}
	return engine.TrimPrefixKey(h.cfg.DatasetKeyPrefix)
}

func (h *Aggregation) logData(ctx context.Context, req *http.Request) log.Data {
	logData := log.Data{
		"method": req.Method,
		"path":   req.URL.Path,
	}
	id, err := h.generator.RequestID()
	if err != nil {
		log.Warn(ctx, "failed to generate request id", log.Data{"error": err.Error()})
		return logData
	}
	logData["request_id"] = id
	return logData
}

func (h *Aggregation) since(start time.Time) string {
	return h.generator.Timestamp().Sub(start).String()
}

func (h *Aggregation) writeError(ctx context.Context, w http.ResponseWriter, err envelopeError, logData log.Data) {
	for k, v := range unwrapLogData(err) {
		logData[k] = v
	}
	status := statusCode(err)
	log.Error(ctx, "request failed", err, logData)
	h.write(ctx, w, status, err.Envelope(), logData)
}

func (h *Aggregation) write(ctx context.Context, w http.ResponseWriter, status int, env engine.Envelope, logData log.Data) {
	written, err := engine.WriteJSON(w, status, env)
	logData["status_code"] = written
	if err != nil {
		log.Error(ctx, "failed to write response", err, logData)
		return
	}
	log.Info(ctx, "request complete", logData)
}
