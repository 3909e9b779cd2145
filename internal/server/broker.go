package server

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ajaysolanky/namazing-sub000/internal/model"
)

// subscriberBuffer bounds how far an SSE client may fall behind the run
// before it is disconnected.
const subscriberBuffer = 256

// eventStream hands one run's events from the publishing goroutine to an
// SSE handler. The run's listeners must not block, so events go into a
// buffered channel; a client that lets the buffer fill is dropped rather
// than shown a gapped stream.
type eventStream struct {
	events chan model.Event

	overflowOnce sync.Once
	overflow     chan struct{}
}

func newEventStream(size int) *eventStream {
	return &eventStream{
		events:   make(chan model.Event, size),
		overflow: make(chan struct{}),
	}
}

// deliver is the run listener. It never blocks.
func (s *eventStream) deliver(e model.Event) {
	select {
	case <-s.overflow:
		return
	default:
	}
	select {
	case s.events <- e:
	default:
		s.overflowOnce.Do(func() { close(s.overflow) })
	}
}

// formatSSE formats a message as a Server-Sent Events frame.
func formatSSE(eventType, data string) []byte {
	// SSE format: "event: <type>\ndata: <payload>\n\n"
	return []byte("event: " + eventType + "\ndata: " + data + "\n\n")
}

// eventFrame encodes a run event as an SSE frame named after its kind.
func eventFrame(e model.Event) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("server: encode event: %w", err)
	}
	return formatSSE(string(e.Kind), string(data)), nil
}

// statusFrame is sent instead of a live stream when the run has already
// finished.
type statusFrame struct {
	RunID  string          `json:"runId"`
	Status model.RunStatus `json:"status"`
	Error  string          `json:"error,omitempty"`
}

func runStatusFrame(run model.Run) []byte {
	data, _ := json.Marshal(statusFrame{RunID: run.ID, Status: run.Status, Error: run.Error})
	return formatSSE("status", string(data))
}

// finished reports whether the snapshot already carries the run's closing
// event or a terminal status.
func finished(run model.Run) bool {
	if run.Status.Terminal() {
		return true
	}
	n := len(run.Events)
	return n > 0 && run.Events[n-1].IsTerminal()
}
