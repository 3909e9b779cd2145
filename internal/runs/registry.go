// Package runs owns the set of runs: it starts pipelines, tracks their
// status and event logs, and lets callers subscribe to live events.
//
// Each run moves pending -> running -> completed | failed. Runs cannot be
// cancelled: once started, a pipeline always runs to a terminal status,
// even if the context that started it is cancelled.
package runs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ajaysolanky/namazing-sub000/internal/model"
	"github.com/ajaysolanky/namazing-sub000/internal/pipeline"
	"github.com/ajaysolanky/namazing-sub000/internal/telemetry"
)

var (
	// ErrNotFound is returned for an unknown (or evicted) run id.
	ErrNotFound = errors.New("runs: run not found")
	// ErrInvalidMode is returned by StartRun for a mode other than serial
	// or parallel.
	ErrInvalidMode = errors.New("runs: invalid mode")
)

// Runner executes the pipeline for one run. *pipeline.Pipeline implements it.
type Runner interface {
	Run(ctx context.Context, runID, brief string, mode model.Mode, emit pipeline.Emitter) (model.Result, error)
}

// Registry starts runs and serves their state.
type Registry struct {
	store  Store
	runner Runner
	logger *slog.Logger
	now    func() time.Time

	wg sync.WaitGroup

	runsCounter metric.Int64Counter
}

// NewRegistry creates a registry over store.
func NewRegistry(store Store, runner Runner, logger *slog.Logger) *Registry {
	r := &Registry{
		store:  store,
		runner: runner,
		logger: logger,
		now:    time.Now,
	}

	meter := telemetry.Meter(telemetry.ScopeRuns)
	r.runsCounter, _ = meter.Int64Counter("namazing.runs",
		metric.WithDescription("Runs that reached a terminal status"),
	)
	_, _ = meter.Int64ObservableGauge("namazing.runs.stored",
		metric.WithDescription("Runs currently held by the run store"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(store.Len()))
			return nil
		}),
	)
	return r
}

// StartRun registers a new run and starts its pipeline in the background.
// It returns the pending run without waiting for any stage. The pipeline is
// detached from ctx's cancellation but keeps its values (e.g. trace spans).
func (r *Registry) StartRun(ctx context.Context, brief string, mode model.Mode) (model.Run, error) {
	run, _, err := r.start(ctx, brief, mode, nil)
	return run, err
}

// StartAndSubscribe is StartRun with listener attached before the pipeline
// starts, so it sees every event of the run. The returned function detaches
// the listener.
func (r *Registry) StartAndSubscribe(ctx context.Context, brief string, mode model.Mode, listener Listener) (model.Run, func(), error) {
	return r.start(ctx, brief, mode, listener)
}

func (r *Registry) start(ctx context.Context, brief string, mode model.Mode, listener Listener) (model.Run, func(), error) {
	switch mode {
	case "":
		mode = model.ModeSerial
	case model.ModeSerial, model.ModeParallel:
	default:
		return model.Run{}, nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	rec := newRecord(model.Run{
		ID:        uuid.NewString(),
		Brief:     brief,
		Mode:      mode,
		Status:    model.RunStatusPending,
		CreatedAt: r.now().UTC(),
	})
	unsubscribe := func() {}
	if listener != nil {
		unsubscribe = rec.Subscribe(listener)
	}
	r.store.Put(rec)
	snap := rec.Snapshot()

	r.logger.Info("run started", "run_id", rec.ID(), "mode", mode, "brief_len", len(brief))

	r.wg.Add(1)
	go r.drive(context.WithoutCancel(ctx), rec)
	return snap, unsubscribe, nil
}

// GetRun returns a snapshot of the run.
func (r *Registry) GetRun(id string) (model.Run, error) {
	rec, ok := r.store.Get(id)
	if !ok {
		return model.Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec.Snapshot(), nil
}

// Subscribe attaches listener to the run's live events and returns a
// function that detaches it. Events emitted before the call are not
// replayed; use GetRun for the log so far.
func (r *Registry) Subscribe(id string, listener Listener) (func(), error) {
	rec, ok := r.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec.Subscribe(listener), nil
}

// Wait blocks until every started pipeline has finished.
func (r *Registry) Wait() {
	r.wg.Wait()
}

func (r *Registry) drive(ctx context.Context, rec *Record) {
	defer r.wg.Done()

	if err := rec.transition(model.RunStatusRunning, r.now().UTC(), nil); err != nil {
		r.logger.Error("run: start", "run_id", rec.ID(), "error", err)
		return
	}

	run := rec.Snapshot()
	start := time.Now()
	res, err := r.execute(ctx, rec, run)
	if err == nil {
		err = rec.transition(model.RunStatusCompleted, r.now().UTC(), func(run *model.Run) {
			run.Result = &res
		})
		if err == nil {
			r.finished(ctx, rec, model.RunStatusCompleted, start)
			return
		}
	}

	r.logger.Error("run failed", "run_id", rec.ID(), "error", err)
	msg := err.Error()
	if emitErr := rec.emit(model.Event{
		Kind:  model.EventKindError,
		RunID: rec.ID(),
		Agent: model.AgentPipeline,
		Msg:   msg,
	}); emitErr != nil {
		r.logger.Error("run: emit error event", "run_id", rec.ID(), "error", emitErr)
	}
	if terr := rec.transition(model.RunStatusFailed, r.now().UTC(), func(run *model.Run) {
		run.Error = msg
	}); terr != nil {
		r.logger.Error("run: mark failed", "run_id", rec.ID(), "error", terr)
		return
	}
	r.finished(ctx, rec, model.RunStatusFailed, start)
}

// execute runs the pipeline, converting a panic into an error.
func (r *Registry) execute(ctx context.Context, rec *Record, run model.Run) (res model.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("runs: pipeline panicked: %v", p)
		}
	}()
	return r.runner.Run(ctx, rec.ID(), run.Brief, run.Mode, pipeline.EmitterFunc(rec.emit))
}

func (r *Registry) finished(ctx context.Context, rec *Record, status model.RunStatus, start time.Time) {
	r.runsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(status))))
	r.logger.Info("run finished",
		"run_id", rec.ID(),
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
