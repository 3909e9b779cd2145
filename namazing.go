// Package namazing is the public API for embedding the namazing naming
// pipeline.
//
// An App turns free-text naming briefs into researched name suggestions.
// Each brief becomes a run that moves through five stages (brief parser,
// name generator, researcher, expert selector, report composer), emitting
// ordered progress events. Every stage has a deterministic fallback, so a
// run completes even with no model provider configured.
//
//	app, err := namazing.New(
//	    namazing.WithVersion(version),
//	    namazing.WithLogger(logger),
//	)
//	if err != nil { ... }
//	if err := app.Run(ctx); err != nil { ... }
//
// The import graph enforces a strict no-cycle rule: namazing (root) imports
// internal/*, but internal/* never imports namazing (root). Adapters between
// the public extension interfaces and their internal counterparts live here.
package namazing

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/ajaysolanky/namazing-sub000/api"
	"github.com/ajaysolanky/namazing-sub000/internal/agent"
	"github.com/ajaysolanky/namazing-sub000/internal/config"
	"github.com/ajaysolanky/namazing-sub000/internal/llm"
	"github.com/ajaysolanky/namazing-sub000/internal/mcp"
	"github.com/ajaysolanky/namazing-sub000/internal/pipeline"
	"github.com/ajaysolanky/namazing-sub000/internal/prompt"
	"github.com/ajaysolanky/namazing-sub000/internal/research"
	"github.com/ajaysolanky/namazing-sub000/internal/runs"
	"github.com/ajaysolanky/namazing-sub000/internal/server"
	"github.com/ajaysolanky/namazing-sub000/internal/telemetry"
	"github.com/ajaysolanky/namazing-sub000/prompts"
)

// App is the namazing lifecycle. Construct with New(), serve with Run() or
// drive runs directly with StartRun/StartAndSubscribe.
// App has no public fields; configure it with New() options.
type App struct {
	cfg          config.Config
	registry     *runs.Registry
	store        *runs.MemoryStore
	srv          *server.Server
	otelShutdown telemetry.Shutdown
	logger       *slog.Logger
	version      string
	stubOnly     bool
}

// New wires the pipeline, run registry, HTTP API and MCP server from
// environment configuration and options. It does NOT accept HTTP
// connections; call Run() for that.
func New(opts ...Option) (*App, error) {
	o := resolvedOptions{}
	for _, fn := range opts {
		fn(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.port != 0 {
		cfg.Port = o.port
	}
	if o.stubMode {
		cfg.StubMode = true
	}
	version := o.version
	if version == "" {
		version = "dev"
	}

	otelShutdown, err := telemetry.Init(context.Background(), telemetry.Config{
		Endpoint:    cfg.OTELEndpoint,
		Insecure:    cfg.OTELInsecure,
		ServiceName: cfg.ServiceName,
		Version:     version,
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	// Model client: an external override takes priority over configuration.
	var client llm.Client
	stubOnly := cfg.StubOnly()
	if o.modelClient != nil && !cfg.StubMode && cfg.ModelProvider != config.ProviderStub {
		client = &modelClientAdapter{c: o.modelClient}
		stubOnly = false
		logger.Info("model provider: external")
	} else if !stubOnly {
		client, err = newModelClient(context.Background(), cfg)
		if err != nil {
			_ = otelShutdown(context.Background())
			return nil, fmt.Errorf("model client: %w", err)
		}
		logger.Info("model provider", "provider", cfg.Provider(), "default_model", cfg.DefaultModel)
	}
	if stubOnly {
		logger.Info("model provider: stub (deterministic fallbacks only)")
	}

	var runner *agent.Runner
	if client != nil {
		runner = agent.NewRunner(client, prompt.NewStore(promptFS(o, cfg)), cfg.ModelTimeout)
	}

	var tools research.Tools = research.Local{}
	if o.researchTools != nil {
		tools = &researchToolsAdapter{t: o.researchTools}
	}

	pipe := pipeline.New(pipeline.Config{
		Models: pipeline.Models{
			BriefParser:    cfg.BriefParserModel,
			NameGenerator:  cfg.NameGeneratorModel,
			Researcher:     cfg.ResearcherModel,
			ExpertSelector: cfg.ExpertSelectorModel,
			ReportComposer: cfg.ReportComposerModel,
		},
		StubOnly:            stubOnly,
		Concurrency:         cfg.Concurrency,
		SerialMaxCandidates: cfg.SerialMaxCandidates,
	}, runner, research.NewBridge(tools, logger), logger)

	store := runs.NewMemoryStore(cfg.RunRetention)
	registry := runs.NewRegistry(store, pipe, logger)

	mcpSrv := mcp.New(registry, logger, version)

	srv := server.New(server.ServerConfig{
		Runs:                registry,
		Logger:              logger,
		MCPServer:           mcpSrv.MCPServer(),
		Port:                cfg.Port,
		ReadTimeout:         cfg.ReadTimeout,
		WriteTimeout:        cfg.WriteTimeout,
		Version:             version,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
		StubMode:            stubOnly,
		OpenAPISpec:         api.OpenAPISpec,
	})

	return &App{
		cfg:          cfg,
		registry:     registry,
		store:        store,
		srv:          srv,
		otelShutdown: otelShutdown,
		logger:       logger,
		version:      version,
		stubOnly:     stubOnly,
	}, nil
}

// Run starts the HTTP server, then blocks until ctx is cancelled or a fatal
// server error occurs. On return, Shutdown has been called.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("namazing starting", "version", a.version, "port", a.cfg.Port, "stub_mode", a.stubOnly)

	errCh := make(chan error, 1)
	go func() {
		if err := a.srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		_ = a.Shutdown(context.Background())
		return err
	}

	return a.Shutdown(context.Background())
}

// Shutdown performs a two-phase graceful shutdown: (1) stop accepting HTTP
// requests and drain in-flight ones, (2) wait for started runs to finish.
// Runs cannot be cancelled, so phase 2 is bounded only by ctx. It then
// stops the run store's eviction loop and the OTEL providers.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("namazing shutting down")

	// Phase 1: HTTP drain.
	httpCtx, httpCancel := contextWithOptionalTimeout(ctx, a.cfg.WriteTimeout)
	if err := a.srv.Shutdown(httpCtx); err != nil {
		a.logger.Error("http shutdown error", "error", err)
	}
	httpCancel()

	// Phase 2: in-flight runs.
	done := make(chan struct{})
	go func() {
		a.registry.Wait()
		close(done)
	}()
	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = fmt.Errorf("shutdown: runs still in flight: %w", ctx.Err())
		a.logger.Error("runs still in flight at shutdown", "error", ctx.Err())
	}

	a.store.Close()
	_ = a.otelShutdown(context.Background())

	a.logger.Info("namazing stopped")
	return err
}

// Handler returns the root HTTP handler for use in tests.
func (a *App) Handler() http.Handler {
	return a.srv.Handler()
}

// StubOnly reports whether every stage runs on its deterministic fallback.
func (a *App) StubOnly() bool {
	return a.stubOnly
}

// StartRun starts a run for brief and returns its pending snapshot. An
// empty mode means serial.
func (a *App) StartRun(ctx context.Context, brief string, mode Mode) (Run, error) {
	return a.registry.StartRun(ctx, brief, mode)
}

// StartAndSubscribe starts a run with fn already attached, so fn sees every
// event of the run in order. The returned function detaches fn.
func (a *App) StartAndSubscribe(ctx context.Context, brief string, mode Mode, fn func(Event)) (Run, func(), error) {
	return a.registry.StartAndSubscribe(ctx, brief, mode, fn)
}

// GetRun returns a snapshot of the run, or an error wrapping ErrRunNotFound.
func (a *App) GetRun(id string) (Run, error) {
	return a.registry.GetRun(id)
}

// Subscribe attaches fn to the run's live events. Events emitted before the
// call are not replayed; GetRun carries the log so far.
func (a *App) Subscribe(id string, fn func(Event)) (func(), error) {
	return a.registry.Subscribe(id, fn)
}

// Wait blocks until every started run has finished.
func (a *App) Wait() {
	a.registry.Wait()
}

// Errors returned by App methods.
var (
	ErrRunNotFound = runs.ErrNotFound
	ErrInvalidMode = runs.ErrInvalidMode
)

// ── Adapters ──────────────────────────────────────────────────────────────────

// modelClientAdapter bridges a public ModelClient to llm.Client.
type modelClientAdapter struct {
	c ModelClient
}

func (a *modelClientAdapter) Complete(ctx context.Context, req llm.Request) (string, error) {
	msgs := make([]ModelMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = ModelMessage{Role: m.Role, Content: m.Content}
	}
	return a.c.Complete(ctx, ModelRequest{
		Model:       req.Model,
		System:      req.System,
		Messages:    msgs,
		JSON:        req.JSON,
		Temperature: req.Temperature,
	})
}

// researchToolsAdapter bridges public ResearchTools to research.Tools.
type researchToolsAdapter struct {
	t ResearchTools
}

func (a *researchToolsAdapter) Pronounce(ctx context.Context, name string) (string, error) {
	return a.t.Pronounce(ctx, name)
}

func (a *researchToolsAdapter) Syllables(ctx context.Context, name string) (int, error) {
	return a.t.Syllables(ctx, name)
}

func (a *researchToolsAdapter) Popularity(ctx context.Context, name string) (research.Popularity, error) {
	p, err := a.t.Popularity(ctx, name)
	if err != nil {
		return research.Popularity{}, err
	}
	return research.Popularity{Rank: p.Rank, Trend: p.Trend, Note: p.Note}, nil
}

func (a *researchToolsAdapter) Associations(ctx context.Context, name string) ([]string, error) {
	return a.t.Associations(ctx, name)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// newModelClient builds the client for the configured provider. The
// per-call timeout is applied by the agent runner, so clients get none.
func newModelClient(ctx context.Context, cfg config.Config) (llm.Client, error) {
	switch p := cfg.Provider(); p {
	case config.ProviderOpenAI:
		return llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, 0), nil
	case config.ProviderOllama:
		return llm.NewOllamaClient(cfg.OllamaURL, 0), nil
	case config.ProviderGemini:
		c, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, 0)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderStub:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", p)
	}
}

// promptFS picks the template source: option, then NAMAZING_PROMPTS_DIR,
// then the embedded defaults.
func promptFS(o resolvedOptions, cfg config.Config) fs.FS {
	switch {
	case o.promptFS != nil:
		return o.promptFS
	case cfg.PromptsDir != "":
		return os.DirFS(cfg.PromptsDir)
	default:
		return prompts.FS
	}
}

func contextWithOptionalTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
