package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ajaysolanky/namazing-sub000/internal/model"
	"github.com/ajaysolanky/namazing-sub000/internal/runs"
)

// defaultKeepAlive is the interval between SSE keep-alive comments.
const defaultKeepAlive = 15 * time.Second

// RunService is the part of the run registry the HTTP API needs.
// *runs.Registry implements it.
type RunService interface {
	StartRun(ctx context.Context, brief string, mode model.Mode) (model.Run, error)
	GetRun(id string) (model.Run, error)
	Subscribe(id string, listener runs.Listener) (func(), error)
}

// Handlers holds HTTP handler dependencies.
type Handlers struct {
	runs                RunService
	logger              *slog.Logger
	startedAt           time.Time
	version             string
	maxRequestBodyBytes int64
	stubMode            bool
	openapiSpec         []byte
	keepAlive           time.Duration
}

// HandlersDeps holds all dependencies for constructing Handlers.
type HandlersDeps struct {
	Runs                RunService
	Logger              *slog.Logger
	Version             string
	MaxRequestBodyBytes int64
	StubMode            bool
	OpenAPISpec         []byte // Optional; nil leaves /openapi.yaml answering 404.
	// KeepAlive overrides the SSE keep-alive interval; zero means 15s.
	KeepAlive time.Duration
}

// NewHandlers creates a new Handlers with all dependencies.
func NewHandlers(d HandlersDeps) *Handlers {
	keepAlive := d.KeepAlive
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}
	return &Handlers{
		runs:                d.Runs,
		logger:              d.Logger,
		startedAt:           time.Now(),
		version:             d.Version,
		maxRequestBodyBytes: d.MaxRequestBodyBytes,
		stubMode:            d.StubMode,
		openapiSpec:         d.OpenAPISpec,
		keepAlive:           keepAlive,
	}
}

// HandleStartRun handles POST /v1/runs.
func (h *Handlers) HandleStartRun(w http.ResponseWriter, r *http.Request) {
	var req model.StartRunRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}
	mode, err := req.Validate()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}

	run, err := h.runs.StartRun(r.Context(), req.Brief, mode)
	if err != nil {
		if errors.Is(err, runs.ErrInvalidMode) {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
			return
		}
		h.writeInternalError(w, r, "failed to start run", err)
		return
	}

	w.Header().Set("Location", "/v1/runs/"+run.ID)
	writeJSON(w, r, http.StatusAccepted, run)
}

// HandleGetRun handles GET /v1/runs/{run_id}.
func (h *Handlers) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runs.GetRun(r.PathValue("run_id"))
	if err != nil {
		h.writeRunError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, run)
}

// HandleRunEvents handles GET /v1/runs/{run_id}/events (SSE).
//
// The stream is live-only: it starts with the first event emitted after
// the client connects and ends after the run's terminal event. A client
// that connects after the run finished gets a single status event.
func (h *Handlers) HandleRunEvents(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("run_id")

	// Subscribe before reading the snapshot so nothing emitted in between
	// is missed.
	stream := newEventStream(subscriberBuffer)
	unsubscribe, err := h.runs.Subscribe(runID, stream.deliver)
	if err != nil {
		h.writeRunError(w, r, err)
		return
	}
	defer unsubscribe()

	snap, err := h.runs.GetRun(runID)
	if err != nil {
		h.writeRunError(w, r, err)
		return
	}

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.Warn("sse: streaming not supported", "run_id", runID, "error", err)
		return
	}

	// Disable the server's WriteTimeout for this long-lived connection.
	_ = rc.SetWriteDeadline(time.Time{})

	if finished(snap) {
		_, _ = w.Write(runStatusFrame(snap))
		_ = rc.Flush()
		return
	}

	keepalive := time.NewTicker(h.keepAlive)
	defer keepalive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stream.overflow:
			h.logger.Warn("sse: subscriber fell behind, disconnecting", "run_id", runID)
			return
		case <-keepalive.C:
			if _, err := w.Write([]byte(":keepalive\n\n")); err != nil {
				return
			}
			_ = rc.Flush()
		case e := <-stream.events:
			frame, err := eventFrame(e)
			if err != nil {
				h.logger.Error("sse: encode event", "run_id", runID, "error", err)
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			_ = rc.Flush()
			if e.IsTerminal() {
				return
			}
		}
	}
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, model.HealthResponse{
		Status:        "healthy",
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		StubMode:      h.stubMode,
	})
}

// HandleOpenAPISpec serves the embedded OpenAPI specification.
func (h *Handlers) HandleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	if len(h.openapiSpec) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.openapiSpec)
}

func (h *Handlers) writeRunError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, runs.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "run not found")
		return
	}
	h.writeInternalError(w, r, "failed to load run", err)
}

func (h *Handlers) writeInternalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg, "error", err, "request_id", RequestIDFromContext(r.Context()))
	writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, msg)
}

func handleDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeError(w, r, http.StatusRequestEntityTooLarge, model.ErrCodeInvalidInput, "request body too large")
		return
	}
	writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid request body: "+err.Error())
}
