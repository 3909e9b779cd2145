package namazing

import (
	"io/fs"
	"log/slog"
)

// Option configures an App.
type Option func(*resolvedOptions)

// resolvedOptions holds all extension points after applying defaults.
// Callers set them through the With* functions.
type resolvedOptions struct {
	port          int
	stubMode      bool
	logger        *slog.Logger
	version       string
	modelClient   ModelClient
	researchTools ResearchTools
	promptFS      fs.FS
}

// WithPort overrides the TCP port from config (NAMAZING_PORT env var).
func WithPort(port int) Option {
	return func(o *resolvedOptions) { o.port = port }
}

// WithStubMode forces every stage onto its deterministic fallback, as
// NAMAZING_STUB_MODE=true does.
func WithStubMode() Option {
	return func(o *resolvedOptions) { o.stubMode = true }
}

// WithLogger sets the structured logger for the App.
// If not set, the default slog logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *resolvedOptions) { o.logger = logger }
}

// WithVersion sets the version string reported in the health endpoint and logs.
func WithVersion(version string) Option {
	return func(o *resolvedOptions) { o.version = version }
}

// WithModelClient replaces the configured model provider. Stages use it
// unless stub mode is forced.
func WithModelClient(c ModelClient) Option {
	return func(o *resolvedOptions) { o.modelClient = c }
}

// WithResearchTools replaces the built-in local research heuristics.
func WithResearchTools(t ResearchTools) Option {
	return func(o *resolvedOptions) { o.researchTools = t }
}

// WithPromptFS replaces the stage templates. The filesystem holds one
// <id>.txt or <id>.yaml file per template id. Takes priority over
// NAMAZING_PROMPTS_DIR.
func WithPromptFS(fsys fs.FS) Option {
	return func(o *resolvedOptions) { o.promptFS = fsys }
}
