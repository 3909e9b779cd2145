package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajaysolanky/namazing-sub000/internal/model"
)

func TestEventValidate(t *testing.T) {
	base := model.Event{RunID: "r1", Agent: model.AgentResearcher}
	with := func(mut func(*model.Event)) model.Event {
		e := base
		mut(&e)
		return e
	}

	tests := []struct {
		name    string
		event   model.Event
		wantErr string
	}{
		{"activity ok", with(func(e *model.Event) { e.Kind = model.EventActivity; e.Msg = "go" }), ""},
		{"activity without msg", with(func(e *model.Event) { e.Kind = model.EventActivity }), "msg is required"},
		{"log without msg", with(func(e *model.Event) { e.Kind = model.EventLog }), "msg is required"},
		{"error ok", with(func(e *model.Event) { e.Kind = model.EventKindError; e.Msg = "boom" }), ""},
		{"error without msg", with(func(e *model.Event) { e.Kind = model.EventKindError }), "msg is required"},
		{"start without name", with(func(e *model.Event) { e.Kind = model.EventStart }), ""},
		{"done with name", with(func(e *model.Event) { e.Kind = model.EventDone; e.Name = "Ava" }), ""},
		{"partial ok", with(func(e *model.Event) { e.Kind = model.EventPartial; e.Field = "card"; e.Value = 1 }), ""},
		{"partial no field", with(func(e *model.Event) { e.Kind = model.EventPartial; e.Value = 1 }), "field is required"},
		{"partial no value", with(func(e *model.Event) { e.Kind = model.EventPartial; e.Field = "card" }), "value is required"},
		{"result no payload", with(func(e *model.Event) { e.Kind = model.EventResult }), "payload is required"},
		{"unknown kind", with(func(e *model.Event) { e.Kind = "progress" }), "unknown kind"},
		{"missing run id", model.Event{Kind: model.EventStart, Agent: "x"}, "runId is required"},
		{"missing agent", model.Event{Kind: model.EventStart, RunID: "r1"}, "agent is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var evErr *model.EventError
			require.True(t, errors.As(err, &evErr))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEventWireShape(t *testing.T) {
	raw, err := json.Marshal(model.Event{
		Kind:  model.EventPartial,
		RunID: "r1",
		Agent: model.AgentNameGenerator,
		Field: model.FieldCandidates,
		Value: []string{"Ava"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":"partial","runId":"r1","agent":"name-generator","field":"candidates","value":["Ava"]}`, string(raw))

	raw, err = json.Marshal(model.Event{Kind: model.EventLog, RunID: "r1", Agent: "researcher", Msg: "fell back"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":"log","runId":"r1","agent":"researcher","msg":"fell back"}`, string(raw))

	raw, err = json.Marshal(model.Event{Kind: model.EventKindError, RunID: "r1", Agent: model.AgentPipeline, Msg: "boom"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":"error","runId":"r1","agent":"pipeline","msg":"boom"}`, string(raw))
}

func TestEventIsTerminal(t *testing.T) {
	assert.True(t, model.Event{Kind: model.EventKindError}.IsTerminal())
	assert.True(t, model.Event{Kind: model.EventResult, Agent: model.AgentReportComposer}.IsTerminal())
	assert.False(t, model.Event{Kind: model.EventResult, Agent: model.AgentExpertSelector}.IsTerminal())
	assert.False(t, model.Event{Kind: model.EventDone, Agent: model.AgentReportComposer}.IsTerminal())
}
