package pipeline

import (
	"github.com/ajaysolanky/namazing-sub000/internal/model"
)

// Emitter receives every event a run produces, in emission order. An error
// from Emit aborts the run.
type Emitter interface {
	Emit(model.Event) error
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(model.Event) error

// Emit calls f.
func (f EmitterFunc) Emit(e model.Event) error { return f(e) }

// stageEvents stamps events with the run id and stage name and validates
// them before they leave the stage.
type stageEvents struct {
	emit  Emitter
	runID string
	agent string
}

func (s stageEvents) send(e model.Event) error {
	e.RunID = s.runID
	e.Agent = s.agent
	if err := e.Validate(); err != nil {
		return err
	}
	return s.emit.Emit(e)
}

func (s stageEvents) activity(msg string) error {
	return s.send(model.Event{Kind: model.EventActivity, Msg: msg})
}

func (s stageEvents) log(msg string) error {
	return s.send(model.Event{Kind: model.EventLog, Msg: msg})
}

func (s stageEvents) start(name string) error {
	return s.send(model.Event{Kind: model.EventStart, Name: name})
}

func (s stageEvents) done(name string) error {
	return s.send(model.Event{Kind: model.EventDone, Name: name})
}

func (s stageEvents) partial(field string, value any) error {
	return s.send(model.Event{Kind: model.EventPartial, Field: field, Value: value})
}

func (s stageEvents) result(payload any) error {
	return s.send(model.Event{Kind: model.EventResult, Payload: payload})
}
