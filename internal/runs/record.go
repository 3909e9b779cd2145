package runs

import (
	"fmt"
	"sync"
	"time"

	"github.com/ajaysolanky/namazing-sub000/internal/model"
)

// Record is the live state of one run: its data, its event log and its
// broadcaster. Only the pipeline driving the run writes to it.
type Record struct {
	id string

	// emitMu serializes append+publish so the log order and the delivery
	// order are the same.
	emitMu sync.Mutex

	mu  sync.RWMutex
	run model.Run

	bus Broadcaster
}

func newRecord(run model.Run) *Record {
	if run.Events == nil {
		run.Events = []model.Event{}
	}
	return &Record{id: run.ID, run: run}
}

// ID returns the run id.
func (r *Record) ID() string { return r.id }

// Snapshot returns a copy of the run that shares no mutable state with it.
func (r *Record) Snapshot() model.Run {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := r.run
	snap.Events = append([]model.Event(nil), r.run.Events...)
	if r.run.Result != nil {
		res := *r.run.Result
		snap.Result = &res
	}
	return snap
}

// Status returns the current status.
func (r *Record) Status() model.RunStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.run.Status
}

// Subscribe attaches a listener to the run's live events.
func (r *Record) Subscribe(fn Listener) func() {
	return r.bus.Subscribe(fn)
}

// emit validates e, appends it to the log and delivers it to every
// listener. Events for another run, or arriving after the run finished,
// are rejected.
func (r *Record) emit(e model.Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if e.RunID != r.id {
		return &model.EventError{Event: e, Reason: fmt.Sprintf("runId does not match run %s", r.id)}
	}

	r.emitMu.Lock()
	defer r.emitMu.Unlock()

	r.mu.Lock()
	if r.run.Status.Terminal() {
		r.mu.Unlock()
		return &model.EventError{Event: e, Reason: "run already " + string(r.run.Status)}
	}
	r.run.Events = append(r.run.Events, e)
	r.mu.Unlock()

	r.bus.Publish(e)
	return nil
}

// transition moves the run to next, applying update under the same lock.
func (r *Record) transition(next model.RunStatus, at time.Time, update func(*model.Run)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.run.Status.CanTransition(next) {
		return fmt.Errorf("runs: illegal transition %s -> %s for run %s", r.run.Status, next, r.id)
	}
	r.run.Status = next
	switch {
	case next == model.RunStatusRunning:
		r.run.StartedAt = &at
	case next.Terminal():
		r.run.CompletedAt = &at
	}
	if update != nil {
		update(&r.run)
	}
	return nil
}

// expired reports whether the run finished more than retention ago.
func (r *Record) expired(now time.Time, retention time.Duration) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.run.Status.Terminal() || r.run.CompletedAt == nil {
		return false
	}
	return now.Sub(*r.run.CompletedAt) > retention
}
