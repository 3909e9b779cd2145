package namazing

import "github.com/ajaysolanky/namazing-sub000/internal/model"

// Run is a snapshot of one pipeline execution: status, ordered event log and,
// once completed, the Result.
type Run = model.Run

// Event is one unit of run progress. See model.Event for the wire shape.
type Event = model.Event

// Result is the terminal artifact set of a completed run.
type Result = model.Result

// Mode trades latency for cost.
type Mode = model.Mode

// RunStatus is the lifecycle state of a run.
type RunStatus = model.RunStatus

const (
	ModeSerial   = model.ModeSerial
	ModeParallel = model.ModeParallel

	RunStatusPending   = model.RunStatusPending
	RunStatusRunning   = model.RunStatusRunning
	RunStatusCompleted = model.RunStatusCompleted
	RunStatusFailed    = model.RunStatusFailed
)

// ParseMode converts "serial", "parallel" or "" (serial) into a Mode.
func ParseMode(s string) (Mode, error) {
	return model.ParseMode(s)
}
