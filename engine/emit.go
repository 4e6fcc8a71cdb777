package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ONSdigital/log.go/v2/log"
)

// Envelope statuses
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps every response body
type Envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Tables  []string    `json:"tables,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// WriteJSON encodes env and writes it with the given status code. If env
// cannot be encoded an error envelope is written instead. The status code
// actually written is returned.
func WriteJSON(w http.ResponseWriter, status int, env Envelope) (int, error) {
	var encErr error
	b, err := json.Marshal(env)
	if err != nil {
		encErr = fmt.Errorf("failed to encode response: %w", err)
		status = http.StatusInternalServerError
		b, _ = json.Marshal(Envelope{Status: StatusError, Message: MsgEncodingFailed})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(b); err != nil {
		return status, fmt.Errorf("failed to write response: %w", err)
	}
	return status, encErr
}

// Mode selects how results are written to the response
type Mode int

const (
	// Buffered waits for every result and encodes the response once
	Buffered Mode = iota
	// Streaming writes each result as soon as it can be placed
	Streaming
)

func (m Mode) String() string {
	if m == Streaming {
		return "streaming"
	}
	return "buffered"
}

// Summary describes what an Emit call wrote
type Summary struct {
	Units      int
	Succeeded  int
	Failed     int
	StatusCode int
	Err        error
}

// Emitter writes dispatched results as a response envelope
type Emitter struct {
	mode Mode
}

// NewEmitter returns an Emitter for the given mode
func NewEmitter(mode Mode) *Emitter {
	return &Emitter{mode: mode}
}

// Mode returns the emission mode
func (e *Emitter) Mode() Mode {
	return e.mode
}

// Emit drains results, which must carry exactly one result per unit, and
// writes the envelope. Both modes produce the same JSON value for the same
// results. If every unit failed an error envelope is written instead.
func (e *Emitter) Emit(ctx context.Context, w http.ResponseWriter, units []Unit, results <-chan Result, agg *Aggregator) Summary {
	return e.EmitWithErrors(ctx, w, units, results, agg, nil)
}

// EmitWithErrors is Emit with errs written beside the data of a success
// envelope. It reports failures that happened before dispatch, such as
// datasets whose tables could not be listed.
func (e *Emitter) EmitWithErrors(ctx context.Context, w http.ResponseWriter, units []Unit, results <-chan Result, agg *Aggregator, errs map[string]string) Summary {
	var s Summary
	if e.mode == Streaming {
		s = newStreamer(w, units, agg, errs).run(results)
	} else {
		s = emitBuffered(w, units, results, agg, errs)
	}

	logData := log.Data{
		"mode":        e.mode.String(),
		"units":       s.Units,
		"succeeded":   s.Succeeded,
		"failed":      s.Failed,
		"status_code": s.StatusCode,
	}
	if s.Err != nil {
		log.Error(ctx, "failed to write aggregate response", s.Err, logData)
	} else {
		log.Info(ctx, "aggregate response written", logData)
	}

	return s
}

func emitBuffered(w http.ResponseWriter, units []Unit, results <-chan Result, agg *Aggregator, errs map[string]string) Summary {
	for r := range results {
		e := encodeResult(r)
		agg.AddLeaf(e.Result, e.leaf)
	}

	s := Summary{
		Units:     len(units),
		Succeeded: agg.Succeeded(),
		Failed:    agg.Failed(),
	}

	status := http.StatusOK
	env := Envelope{Status: StatusSuccess, Data: agg.Result()}
	if len(errs) > 0 {
		env.Errors = errs
	}
	if agg.AllFailed() {
		tf := &TotalFailure{Message: MsgAllFetchesFailed, Errors: agg.Result()}
		env = tf.Envelope()
		status = tf.Code()
	}

	s.StatusCode, s.Err = WriteJSON(w, status, env)
	return s
}

// encoded is a result with its leaf already rendered as JSON
type encoded struct {
	Result
	leaf json.RawMessage
}

// encodeResult renders the leaf of a result. Rows that cannot be encoded,
// such as non finite floats, turn the result into a failure of that unit.
func encodeResult(r Result) encoded {
	b, err := json.Marshal(Leaf(r.Outcome))
	if err != nil {
		r.Outcome = Outcome{Err: &FetchError{Unit: r.Unit, Err: fmt.Errorf("failed to encode rows: %w", err)}}
		b, _ = json.Marshal(Leaf(r.Outcome))
	}
	return encoded{Result: r, leaf: b}
}

var streamPrefix = []byte(`{"status":"` + StatusSuccess + `","data":{`)

// streamer writes results incrementally. Only one outer group of a Nested
// aggregate can be open at a time; results for other groups are held until
// the open group has every unit and is closed. Nothing is written until the
// first successful result, so a total failure can still be reported as an
// error envelope.
type streamer struct {
	w       http.ResponseWriter
	flusher http.Flusher
	agg     *Aggregator
	units   int
	errs    map[string]string

	order     []string
	remaining map[string]int
	pending   map[string][]encoded

	started    bool
	open       string
	isOpen     bool
	firstEntry bool
	firstInner bool

	succeeded int
	failed    int
	err       error
}

func newStreamer(w http.ResponseWriter, units []Unit, agg *Aggregator, errs map[string]string) *streamer {
	s := &streamer{
		w:         w,
		agg:       agg,
		units:     len(units),
		errs:      errs,
		remaining: map[string]int{},
		pending:   map[string][]encoded{},
	}
	s.flusher, _ = w.(http.Flusher)
	for _, u := range units {
		outer, _ := agg.Keys(u)
		if _, ok := s.remaining[outer]; !ok {
			s.order = append(s.order, outer)
		}
		s.remaining[outer]++
	}
	return s
}

func (s *streamer) run(results <-chan Result) Summary {
	for r := range results {
		s.handle(encodeResult(r))
	}
	status := s.finish()

	return Summary{
		Units:      s.units,
		Succeeded:  s.succeeded,
		Failed:     s.failed,
		StatusCode: status,
		Err:        s.err,
	}
}

func (s *streamer) handle(e encoded) {
	outer, inner := s.agg.Keys(e.Unit)
	s.remaining[outer]--
	if e.Outcome.Failed() {
		s.failed++
	} else {
		s.succeeded++
	}

	if !s.started {
		s.pending[outer] = append(s.pending[outer], e)
		if e.Outcome.Failed() {
			return
		}
		s.start()
		s.advance()
		return
	}

	if s.agg.Shape() == Flat {
		s.writeEntry(outer, e)
		s.flush()
		return
	}

	if s.isOpen && s.open == outer {
		s.writeInner(inner, e)
		if s.remaining[outer] == 0 {
			s.closeGroup()
			s.advance()
		}
		s.flush()
		return
	}

	s.pending[outer] = append(s.pending[outer], e)
	if !s.isOpen {
		s.advance()
		s.flush()
	}
}

func (s *streamer) start() {
	s.started = true
	s.firstEntry = true
	s.w.Header().Set("Content-Type", "application/json")
	s.w.WriteHeader(http.StatusOK)
	s.write(streamPrefix)
}

// advance writes held results while a group can be opened. Complete groups
// are preferred, as they can be written and closed in one go.
func (s *streamer) advance() {
	if s.agg.Shape() == Flat {
		for _, outer := range s.order {
			for _, e := range s.pending[outer] {
				s.writeEntry(outer, e)
			}
			delete(s.pending, outer)
		}
		s.flush()
		return
	}

	for !s.isOpen {
		next, ok := s.nextGroup()
		if !ok {
			break
		}
		s.openGroup(next)
		for _, e := range s.pending[next] {
			_, inner := s.agg.Keys(e.Unit)
			s.writeInner(inner, e)
		}
		delete(s.pending, next)
		if s.remaining[next] == 0 {
			s.closeGroup()
		}
	}
	s.flush()
}

func (s *streamer) nextGroup() (string, bool) {
	for _, outer := range s.order {
		if len(s.pending[outer]) > 0 && s.remaining[outer] == 0 {
			return outer, true
		}
	}
	for _, outer := range s.order {
		if len(s.pending[outer]) > 0 {
			return outer, true
		}
	}
	return "", false
}

func (s *streamer) finish() int {
	if !s.started {
		if s.units == 0 {
			s.start()
			s.writeSuffix()
			s.flush()
			return http.StatusOK
		}
		tf := &TotalFailure{Message: MsgAllFetchesFailed, Errors: s.heldAggregate()}
		status, err := WriteJSON(s.w, tf.Code(), tf.Envelope())
		if err != nil {
			s.err = err
		}
		return status
	}

	s.advance()
	if s.isOpen {
		s.closeGroup()
	}
	// anything still held belongs to groups that never completed
	for _, outer := range s.order {
		if len(s.pending[outer]) == 0 {
			continue
		}
		s.openGroup(outer)
		for _, e := range s.pending[outer] {
			_, inner := s.agg.Keys(e.Unit)
			s.writeInner(inner, e)
		}
		delete(s.pending, outer)
		s.closeGroup()
	}

	s.writeSuffix()
	s.flush()
	return http.StatusOK
}

// writeSuffix closes the data object and the envelope, writing any errors
// in between.
func (s *streamer) writeSuffix() {
	s.write([]byte{'}'})
	if len(s.errs) > 0 {
		b, err := json.Marshal(s.errs)
		if err == nil {
			s.write([]byte(`,"errors":`))
			s.write(b)
		}
	}
	s.write([]byte{'}'})
}

func (s *streamer) heldAggregate() Aggregate {
	for _, outer := range s.order {
		for _, e := range s.pending[outer] {
			s.agg.AddLeaf(e.Result, e.leaf)
		}
	}
	s.pending = map[string][]encoded{}
	return s.agg.Result()
}

func (s *streamer) openGroup(outer string) {
	s.writeKey(&s.firstEntry, outer)
	s.write([]byte{'{'})
	s.open = outer
	s.isOpen = true
	s.firstInner = true
}

func (s *streamer) closeGroup() {
	s.write([]byte{'}'})
	s.open = ""
	s.isOpen = false
}

func (s *streamer) writeEntry(key string, e encoded) {
	s.writeKey(&s.firstEntry, key)
	s.write(e.leaf)
}

func (s *streamer) writeInner(key string, e encoded) {
	s.writeKey(&s.firstInner, key)
	s.write(e.leaf)
}

// writeKey writes `"key":`, preceded by a separator unless it is the first
// element at its level.
func (s *streamer) writeKey(first *bool, key string) {
	if !*first {
		s.write([]byte{','})
	}
	*first = false
	k, _ := json.Marshal(key)
	s.write(k)
	s.write([]byte{':'})
}

// write stops writing after the first error; results are still drained.
func (s *streamer) write(b []byte) {
	if s.err != nil {
		return
	}
	if _, err := s.w.Write(b); err != nil {
		s.err = fmt.Errorf("failed to write response: %w", err)
	}
}

func (s *streamer) flush() {
	if s.err == nil && s.flusher != nil {
		s.flusher.Flush()
	}
}
