package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/minestats/internal/adapters/http/api"
	"github.com/okian/minestats/internal/adapters/repository"
	service "github.com/okian/minestats/internal/app"
	"github.com/okian/minestats/internal/domain/model"
	"github.com/okian/minestats/internal/domain/types"
	"github.com/okian/minestats/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeDeps struct {
	snap      *repository.Snapshot
	submitErr error
	submitted []string
	seen      map[string]bool
}

func (f *fakeDeps) Submit(_ context.Context, src string, payload []byte) (service.SubmitResult, error) {
	if f.submitErr != nil {
		return service.SubmitResult{}, f.submitErr
	}
	digest := fmt.Sprintf("d%d", len(payload))
	if f.seen[digest] {
		return service.SubmitResult{Digest: digest, Duplicate: true}, nil
	}
	f.seen[digest] = true
	f.submitted = append(f.submitted, src)
	return service.SubmitResult{JobID: "job-1", Digest: digest}, nil
}

func (f *fakeDeps) Latest(context.Context) (*repository.Snapshot, error) {
	if f.snap == nil {
		return nil, repository.ErrNotFound
	}
	return f.snap, nil
}

func (f *fakeDeps) Snapshot(_ context.Context, id string) (*repository.Snapshot, error) {
	if f.snap == nil || f.snap.ID != id {
		return nil, repository.ErrNotFound
	}
	return f.snap, nil
}

func (f *fakeDeps) Snapshots(context.Context) ([]repository.Info, error) {
	if f.snap == nil {
		return []repository.Info{}, nil
	}
	return []repository.Info{f.snap.Info()}, nil
}

func (f *fakeDeps) Table(_ context.Context, name string) (types.Table, error) {
	if f.snap == nil {
		return types.Table{}, repository.ErrNotFound
	}
	t, ok := f.snap.Table(name)
	if !ok {
		return types.Table{}, fmt.Errorf("%w: %s", service.ErrUnknownTable, name)
	}
	return t, nil
}

func (f *fakeDeps) Pareto(ctx context.Context, _ string) (types.Table, error) {
	return f.Table(ctx, model.TablePareto)
}

type fakeStats struct{}

func (fakeStats) GetStats() map[string]any { return map[string]any{"started": true} }

func newFixture() *repository.Snapshot {
	return &repository.Snapshot{
		ID:        "snap-1",
		Source:    "runs.csv",
		CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Report:    model.IngestReport{Total: 2, Retained: 2},
		Tables: []types.Table{
			{Name: model.TableSummary, Columns: []string{"algorithm", "avg_guess_rate"},
				Rows: [][]any{{"greedy", types.Some(0.25)}, {"exact_solver", types.Null()}}},
			{Name: model.TablePareto, Columns: []string{"algorithm", "pareto"},
				Rows: [][]any{{"greedy", true}}},
		},
	}
}

func serve(deps api.Dependencies, method, target, body string, opts ...api.Option) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	api.NewServer(deps, fakeStats{}, opts...).Register(context.Background(), mux)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var out map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}

func TestRunsEndpoint(t *testing.T) {
	Convey("Given the runs endpoint", t, func() {
		deps := &fakeDeps{seen: map[string]bool{}}

		Convey("When posting a CSV body", func() {
			w := serve(deps, http.MethodPost, "/runs?source=bench", "algorithm\nx\n")

			Convey("Then the job should be accepted", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				var resp map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["job_id"], ShouldEqual, "job-1")
				So(resp["status"], ShouldEqual, "accepted")
				So(deps.submitted, ShouldResemble, []string{"bench"})
			})

			Convey("Then the same body should be a duplicate", func() {
				again := serve(deps, http.MethodPost, "/runs", "algorithm\nx\n")
				So(again.Code, ShouldEqual, http.StatusOK)
				So(again.Body.String(), ShouldContainSubstring, `"duplicate":true`)
			})
		})

		Convey("When the body is empty", func() {
			w := serve(deps, http.MethodPost, "/runs", "  ")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["code"], ShouldEqual, "bad_request")
		})

		Convey("When the body is too large", func() {
			w := serve(deps, http.MethodPost, "/runs", strings.Repeat("x", 64), api.WithMaxUploadBytes(16))
			So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
			So(decodeError(w)["code"], ShouldEqual, "too_large")
		})

		Convey("When the service reports errors", func() {
			cases := map[error]int{
				fmt.Errorf("%w: bad csv", service.ErrInvalidPayload): http.StatusBadRequest,
				fmt.Errorf("%w: full", service.ErrBackpressure):      http.StatusTooManyRequests,
				service.ErrNotStarted:                                http.StatusServiceUnavailable,
				fmt.Errorf("disk on fire"):                           http.StatusInternalServerError,
			}
			for err, code := range cases {
				deps.submitErr = err
				w := serve(deps, http.MethodPost, "/runs", "a\n1\n")
				So(w.Code, ShouldEqual, code)
			}
		})

		Convey("When using the wrong method", func() {
			w := serve(deps, http.MethodGet, "/runs", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestReadEndpoints(t *testing.T) {
	Convey("Given a service without snapshots", t, func() {
		deps := &fakeDeps{seen: map[string]bool{}}

		Convey("Then latest reads should be not found", func() {
			So(serve(deps, http.MethodGet, "/snapshots/latest", "").Code, ShouldEqual, http.StatusNotFound)
			So(serve(deps, http.MethodGet, "/tables/summary", "").Code, ShouldEqual, http.StatusNotFound)
			So(serve(deps, http.MethodGet, "/snapshots", "").Body.String(), ShouldEqual, "[]\n")
		})
	})

	Convey("Given a stored snapshot", t, func() {
		deps := &fakeDeps{snap: newFixture(), seen: map[string]bool{}}

		Convey("When listing tables", func() {
			w := serve(deps, http.MethodGet, "/tables", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual,
				`[{"name":"summary","rows":2},{"name":"pareto_fronts","rows":1}]`+"\n")
		})

		Convey("When fetching a table as JSON", func() {
			w := serve(deps, http.MethodGet, "/tables/summary", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"rows":[["greedy",0.25],["exact_solver",null]]`)
		})

		Convey("When fetching a table as CSV", func() {
			w := serve(deps, http.MethodGet, "/tables/summary?format=csv", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "text/csv")
			So(w.Body.String(), ShouldEqual, "algorithm,avg_guess_rate\ngreedy,0.25\nexact_solver,\n")
		})

		Convey("When asking for an unsupported format", func() {
			So(serve(deps, http.MethodGet, "/tables/summary?format=xml", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When fetching an unknown table", func() {
			So(serve(deps, http.MethodGet, "/tables/nonexistent", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When fetching the Pareto fronts", func() {
			w := serve(deps, http.MethodGet, "/pareto?dims=3x3x6&format=csv", "")
			So(w.Body.String(), ShouldEqual, "algorithm,pareto\ngreedy,True\n")
		})

		Convey("When fetching snapshots", func() {
			So(serve(deps, http.MethodGet, "/snapshots/snap-1", "").Code, ShouldEqual, http.StatusOK)
			So(serve(deps, http.MethodGet, "/snapshots/other", "").Code, ShouldEqual, http.StatusNotFound)

			w := serve(deps, http.MethodGet, "/snapshots/latest", "")
			var info repository.Info
			So(json.Unmarshal(w.Body.Bytes(), &info), ShouldBeNil)
			So(info.ID, ShouldEqual, "snap-1")
			So(info.TableRows[model.TableSummary], ShouldEqual, 2)
		})

		Convey("When fetching stats and health", func() {
			So(serve(deps, http.MethodGet, "/stats", "").Body.String(), ShouldEqual, `{"started":true}`+"\n")
			So(serve(deps, http.MethodGet, "/healthz", "").Code, ShouldEqual, http.StatusOK)
		})
	})
}

func TestRunsRejectsIncompleteSchema(t *testing.T) {
	Convey("Given a running analysis service", t, func() {
		_ = logger.Init(logger.WithWriter(io.Discard))
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(1))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When posting a CSV that lacks required columns", func() {
			w := serve(svc, http.MethodPost, "/runs", "algorithm,dims\nx,3x3\n")

			Convey("Then the upload should be refused with the missing columns named", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				body := decodeError(w)
				So(body["code"], ShouldEqual, "bad_request")
				So(body["message"], ShouldContainSubstring, "missing required columns")
				for _, col := range []string{"objective", "seed", "win", "clicks", "time_ms", "guesses", "completion"} {
					So(body["message"], ShouldContainSubstring, col)
				}
				So(svc.GetStats()["queueLength"], ShouldEqual, 0)
			})
		})
	})
}
