package model

import (
	"fmt"
)

// EventKind discriminates pipeline events on the wire (the "t" field).
type EventKind string

const (
	EventActivity  EventKind = "activity"
	EventStart     EventKind = "start"
	EventDone      EventKind = "done"
	EventPartial   EventKind = "partial"
	EventResult    EventKind = "result"
	EventLog       EventKind = "log"
	EventKindError EventKind = "error"
)

// Stage (agent) names as they appear in Event.Agent.
const (
	AgentBriefParser    = "brief-parser"
	AgentNameGenerator  = "name-generator"
	AgentResearcher     = "researcher"
	AgentExpertSelector = "expert-selector"
	AgentReportComposer = "report-composer"
	AgentPipeline       = "pipeline"
)

// Partial event field names.
const (
	FieldCandidates = "candidates"
	FieldCard       = "card"
)

// Event is one immutable, ordered unit of progress information for a run.
//
// Wire shape: {t, runId, agent, ...} where activity/log/error carry msg,
// start/done optionally carry name, partial carries field+value and result
// carries payload.
type Event struct {
	Kind    EventKind `json:"t"`
	RunID   string    `json:"runId"`
	Agent   string    `json:"agent"`
	Msg     string    `json:"msg,omitempty"`
	Name    string    `json:"name,omitempty"`
	Field   string    `json:"field,omitempty"`
	Value   any       `json:"value,omitempty"`
	Payload any       `json:"payload,omitempty"`
}

// EventError reports an event that failed its own shape validation. It is a
// programming error and the only error class allowed to fail a run.
type EventError struct {
	Event  Event
	Reason string
}

func (e *EventError) Error() string {
	return fmt.Sprintf("invalid %q event from %q: %s", e.Event.Kind, e.Event.Agent, e.Reason)
}

// Validate checks the kind-specific shape of the event.
func (e Event) Validate() error {
	bad := func(reason string) error { return &EventError{Event: e, Reason: reason} }

	if e.RunID == "" {
		return bad("runId is required")
	}
	if e.Agent == "" {
		return bad("agent is required")
	}
	switch e.Kind {
	case EventActivity, EventLog, EventKindError:
		if e.Msg == "" {
			return bad("msg is required")
		}
	case EventStart, EventDone:
	case EventPartial:
		if e.Field == "" {
			return bad("field is required")
		}
		if e.Value == nil {
			return bad("value is required")
		}
	case EventResult:
		if e.Payload == nil {
			return bad("payload is required")
		}
	default:
		return bad("unknown kind")
	}
	return nil
}

// IsTerminal reports whether the event closes the run's stream: the final
// report-composer result, or an error.
func (e Event) IsTerminal() bool {
	return e.Kind == EventKindError || (e.Kind == EventResult && e.Agent == AgentReportComposer)
}
