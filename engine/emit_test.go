package engine_test

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ONSdigital/dp-table-aggregator/engine"
	"github.com/ONSdigital/dp-table-aggregator/warehouse"
	"github.com/google/go-cmp/cmp"
	. "github.com/smartystreets/goconvey/convey"
)

func emit(mode engine.Mode, groupBy engine.GroupBy, shape engine.Shape, results []engine.Result) (*httptest.ResponseRecorder, engine.Summary) {
	return emitWithErrors(mode, groupBy, shape, results, nil)
}

func emitWithErrors(mode engine.Mode, groupBy engine.GroupBy, shape engine.Shape, results []engine.Result, errs map[string]string) (*httptest.ResponseRecorder, engine.Summary) {
	w := httptest.NewRecorder()
	agg := engine.NewAggregator(groupBy, shape, engine.TrimPrefixKey("sheet"))
	s := engine.NewEmitter(mode).EmitWithErrors(ctx, w, unitsOf(results), feed(results), agg, errs)
	return w, s
}

func unencodable(dataset, table string) engine.Result {
	return engine.Result{
		Unit:    engine.Unit{Dataset: dataset, Table: table},
		Outcome: engine.Outcome{Rows: []warehouse.Row{{"score": math.NaN()}}},
	}
}

func decode(b []byte) interface{} {
	var v interface{}
	So(json.Unmarshal(b, &v), ShouldBeNil)
	return v
}

// interleaved returns results whose completion order mixes datasets, so the
// streaming emitter has to hold groups back.
func interleaved() []engine.Result {
	return []engine.Result{
		success("sheet1", "plays"),
		success("sheet2", "plays"),
		failure("sheet3", "likes", "quota exceeded"),
		success("sheet2", "likes"),
		success("sheet3", "plays"),
		failure("sheet1", "likes", `Not found: "likes"`),
		success("sheet4", "plays"),
		success("sheet1", "skips"),
	}
}

func TestEmitEquivalence(t *testing.T) {
	cases := []struct {
		name    string
		groupBy engine.GroupBy
		shape   engine.Shape
		results []engine.Result
		errs    map[string]string
	}{
		{"nested by dataset", engine.ByDataset, engine.Nested, interleaved(), nil},
		{"nested by table", engine.ByTable, engine.Nested, interleaved(), nil},
		{"flat by dataset", engine.ByDataset, engine.Flat, []engine.Result{
			failure("sheet1", "plays", "boom"),
			success("sheet2", "plays"),
			success("sheet3", "plays"),
		}, nil},
		{"failures before the first success", engine.ByDataset, engine.Nested, []engine.Result{
			failure("sheet1", "plays", "a"),
			failure("sheet2", "plays", "b"),
			failure("sheet1", "likes", "c"),
			success("sheet2", "likes"),
		}, nil},
		{"single unit", engine.ByDataset, engine.Nested, []engine.Result{success("sheet1", "plays")}, nil},
		{"no units", engine.ByDataset, engine.Nested, nil, nil},
		{"every unit failed", engine.ByDataset, engine.Nested, []engine.Result{
			failure("sheet1", "plays", "a"),
			failure("sheet2", "plays", "b"),
		}, nil},
		{"rows that cannot be encoded", engine.ByDataset, engine.Nested, []engine.Result{
			success("sheet1", "plays"),
			unencodable("sheet1", "scores"),
		}, nil},
		{"only rows that cannot be encoded", engine.ByDataset, engine.Flat, []engine.Result{
			unencodable("sheet1", "scores"),
			unencodable("sheet2", "scores"),
		}, nil},
		{"datasets that could not be listed", engine.ByTable, engine.Nested, interleaved(), map[string]string{
			"sheet5": "Not found: Dataset sheet5",
		}},
	}

	for _, tc := range cases {
		tc := tc
		Convey("Given results for "+tc.name, t, func() {

			Convey("When they are emitted buffered and streamed", func() {
				buffered, bs := emitWithErrors(engine.Buffered, tc.groupBy, tc.shape, tc.results, tc.errs)
				streamed, ss := emitWithErrors(engine.Streaming, tc.groupBy, tc.shape, tc.results, tc.errs)

				Convey("Then the streamed body is valid JSON with no dangling separators", func() {
					body := streamed.Body.String()
					So(json.Valid([]byte(body)), ShouldBeTrue)
					So(body, ShouldNotContainSubstring, ",}")
					So(body, ShouldNotContainSubstring, "{,")
				})

				Convey("Then both parse to the same value", func() {
					diff := cmp.Diff(decode(buffered.Body.Bytes()), decode(streamed.Body.Bytes()))
					So(diff, ShouldBeEmpty)
				})

				Convey("Then both report the same status and counts", func() {
					So(streamed.Code, ShouldEqual, buffered.Code)
					So(ss.StatusCode, ShouldEqual, bs.StatusCode)
					So(bs.StatusCode, ShouldEqual, buffered.Code)
					So(ss.Succeeded, ShouldEqual, bs.Succeeded)
					So(ss.Failed, ShouldEqual, bs.Failed)
					So(ss.Err, ShouldBeNil)
					So(bs.Err, ShouldBeNil)
				})
			})
		})
	}
}

func TestEmitBuffered(t *testing.T) {
	Convey("Given the ds1/ds2 scenario with ds1.plays failing", t, func() {
		w, s := emit(engine.Buffered, engine.ByDataset, engine.Nested, scenarioResults())

		Convey("Then a success envelope carries the failure marker inside the data", func() {
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "application/json")
			body := decode(w.Body.Bytes()).(map[string]interface{})
			So(body["status"], ShouldEqual, "success")
			data := body["data"].(map[string]interface{})
			So(data["ds1"], ShouldResemble, map[string]interface{}{
				"plays": map[string]interface{}{"error": "Not found: Table ds1.plays"},
			})
			ds2 := data["ds2"].(map[string]interface{})
			So(ds2["plays"], ShouldHaveLength, 2)
			So(ds2["likes"], ShouldHaveLength, 2)
			So(s.Units, ShouldEqual, 3)
		})
	})

	Convey("Given every unit failed", t, func() {
		w, s := emit(engine.Buffered, engine.ByDataset, engine.Nested, []engine.Result{
			failure("sheet1", "plays", "a"),
		})

		Convey("Then an error envelope is written with the failures", func() {
			So(w.Code, ShouldEqual, http.StatusBadGateway)
			So(s.StatusCode, ShouldEqual, http.StatusBadGateway)
			So(decode(w.Body.Bytes()), ShouldResemble, map[string]interface{}{
				"status":  "error",
				"message": engine.MsgAllFetchesFailed,
				"errors": map[string]interface{}{
					"1": map[string]interface{}{"plays": map[string]interface{}{"error": "a"}},
				},
			})
		})
	})

	Convey("Given one unit whose rows cannot be encoded beside one that can", t, func() {
		w, s := emit(engine.Buffered, engine.ByDataset, engine.Nested, []engine.Result{
			success("sheet1", "plays"),
			unencodable("sheet1", "scores"),
		})

		Convey("Then only that unit is replaced by a failure marker", func() {
			So(w.Code, ShouldEqual, http.StatusOK)
			So(s.StatusCode, ShouldEqual, http.StatusOK)
			So(s.Err, ShouldBeNil)
			So(s.Succeeded, ShouldEqual, 1)
			So(s.Failed, ShouldEqual, 1)
			group := decode(w.Body.Bytes()).(map[string]interface{})["data"].(map[string]interface{})["1"].(map[string]interface{})
			So(group["plays"], ShouldHaveLength, 2)
			So(group["scores"].(map[string]interface{})["error"], ShouldStartWith, "failed to encode rows")
		})
	})

	Convey("Given datasets that could not be listed", t, func() {
		w, _ := emitWithErrors(engine.Buffered, engine.ByDataset, engine.Nested, []engine.Result{
			success("sheet1", "plays"),
		}, map[string]string{"sheet2": "Not found: Dataset sheet2"})

		Convey("Then they are reported beside the data", func() {
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode(w.Body.Bytes()).(map[string]interface{})
			So(body["status"], ShouldEqual, "success")
			So(body["errors"], ShouldResemble, map[string]interface{}{"sheet2": "Not found: Dataset sheet2"})
		})
	})
}

// lockedRecorder lets a test read the body while the emitter is writing
type lockedRecorder struct {
	mu  sync.Mutex
	rec *httptest.ResponseRecorder
}

func (l *lockedRecorder) Header() http.Header { return l.rec.Header() }

func (l *lockedRecorder) WriteHeader(code int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rec.WriteHeader(code)
}

func (l *lockedRecorder) Write(b []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rec.Write(b)
}

func (l *lockedRecorder) Flush() {}

func (l *lockedRecorder) body() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rec.Body.String()
}

func TestEmitStreaming(t *testing.T) {
	Convey("Given a streaming emitter fed one result at a time", t, func() {
		w := &lockedRecorder{rec: httptest.NewRecorder()}
		units := []engine.Unit{
			{Dataset: "sheet1", Table: "plays"},
			{Dataset: "sheet1", Table: "likes"},
			{Dataset: "sheet2", Table: "plays"},
			{Dataset: "sheet2", Table: "likes"},
		}
		ch := make(chan engine.Result)
		done := make(chan engine.Summary)
		go func() {
			agg := engine.NewAggregator(engine.ByDataset, engine.Nested, engine.TrimPrefixKey("sheet"))
			done <- engine.NewEmitter(engine.Streaming).Emit(ctx, w, units, ch, agg)
		}()

		// a send only completes once the previous result has been handled
		ch <- failure("sheet1", "plays", "boom")
		ch <- failure("sheet2", "plays", "bang")

		Convey("Then nothing is written until the first success, which writes its completed group first", func() {
			So(w.body(), ShouldBeEmpty)

			ch <- success("sheet2", "likes")
			ch <- success("sheet1", "likes")
			body := w.body()
			So(body, ShouldStartWith, `{"status":"success","data":{"2":{"plays":{"error":"bang"},"likes":[`)

			close(ch)
			s := <-done

			final := w.body()
			So(strings.HasPrefix(final, body), ShouldBeTrue)
			So(final, ShouldEndWith, "}}")
			So(s.Units, ShouldEqual, 4)
			So(s.Failed, ShouldEqual, 2)
			So(s.StatusCode, ShouldEqual, http.StatusOK)

			data := decode([]byte(final)).(map[string]interface{})["data"].(map[string]interface{})
			So(data["1"].(map[string]interface{})["plays"], ShouldResemble, map[string]interface{}{"error": "boom"})
			So(data["1"].(map[string]interface{})["likes"], ShouldHaveLength, 2)
		})
	})

	Convey("Given a unit whose rows cannot be encoded while streaming", t, func() {
		w, s := emit(engine.Streaming, engine.ByDataset, engine.Nested, []engine.Result{
			success("sheet1", "plays"),
			{
				Unit:    engine.Unit{Dataset: "sheet1", Table: "scores"},
				Outcome: engine.Outcome{Rows: []warehouse.Row{{"score": math.Inf(1)}}},
			},
		})

		Convey("Then only that unit is replaced by a failure marker", func() {
			So(s.Err, ShouldBeNil)
			So(json.Valid(w.Body.Bytes()), ShouldBeTrue)
			data := decode(w.Body.Bytes()).(map[string]interface{})["data"].(map[string]interface{})
			group := data["1"].(map[string]interface{})
			So(group["plays"], ShouldHaveLength, 2)
			So(group["scores"].(map[string]interface{})["error"], ShouldStartWith, "failed to encode rows")
		})
	})

	Convey("Given a client that goes away mid stream", t, func() {
		w := &failingWriter{ResponseRecorder: httptest.NewRecorder(), failAfter: 1}
		results := interleaved()
		ch := make(chan engine.Result)
		go func() {
			for _, r := range results {
				ch <- r
			}
			close(ch)
		}()

		agg := engine.NewAggregator(engine.ByDataset, engine.Nested, nil)
		s := engine.NewEmitter(engine.Streaming).Emit(ctx, w, unitsOf(results), ch, agg)

		Convey("Then every result is still drained and the write error reported", func() {
			So(s.Err, ShouldNotBeNil)
			So(errors.Is(s.Err, errGone), ShouldBeTrue)
			So(s.Succeeded+s.Failed, ShouldEqual, len(results))
		})
	})
}

var errGone = errors.New("client gone")

type failingWriter struct {
	*httptest.ResponseRecorder
	failAfter int
	writes    int
}

func (f *failingWriter) Write(b []byte) (int, error) {
	f.writes++
	if f.writes > f.failAfter {
		return 0, errGone
	}
	return f.ResponseRecorder.Write(b)
}
