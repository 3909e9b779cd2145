// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Model provider names.
const (
	ProviderAuto   = "auto"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
	ProviderStub   = "stub"
)

// Config holds all application configuration.
type Config struct {
	// Server settings.
	Port                int
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	MaxRequestBodyBytes int64 // Maximum request body size in bytes.

	// Model provider settings.
	ModelProvider string // "auto", "openai", "ollama", "gemini" or "stub"
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OllamaURL     string
	GeminiAPIKey  string
	ModelTimeout  time.Duration // Per-call timeout; 0 disables it.
	StubMode      bool          // Force the deterministic fallbacks.

	// Per-stage model ids. Empty entries fall back to DefaultModel.
	DefaultModel        string
	BriefParserModel    string
	NameGeneratorModel  string
	ResearcherModel     string
	ExpertSelectorModel string
	ReportComposerModel string

	// Pipeline settings.
	Concurrency         int // Researcher workers in parallel mode.
	SerialMaxCandidates int
	RunRetention        time.Duration // How long finished runs stay queryable; 0 keeps them forever.
	PromptsDir          string        // Overrides the embedded templates when set.

	// OTEL settings.
	OTELEndpoint string
	ServiceName  string
	OTELInsecure bool

	// Operational settings.
	LogLevel string
}

// Load reads configuration from environment variables with sensible defaults.
// Every malformed variable is reported, not just the first.
func Load() (Config, error) {
	var errs []error
	str := envStr
	integer := func(key string, def int) int {
		v, err := envInt(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	duration := func(key string, def time.Duration) time.Duration {
		v, err := envDuration(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	boolean := func(key string, def bool) bool {
		v, err := envBool(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	defaultModel := str("NAMAZING_MODEL_DEFAULT", "gpt-4o-mini")
	cfg := Config{
		Port:                integer("NAMAZING_PORT", 8080),
		ReadTimeout:         duration("NAMAZING_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:        duration("NAMAZING_WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBodyBytes: int64(integer("NAMAZING_MAX_REQUEST_BODY_BYTES", 64*1024)),
		ModelProvider:       strings.ToLower(str("NAMAZING_MODEL_PROVIDER", ProviderAuto)),
		OpenAIAPIKey:        str("OPENAI_API_KEY", ""),
		OpenAIBaseURL:       str("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OllamaURL:           str("OLLAMA_URL", "http://localhost:11434"),
		GeminiAPIKey:        str("GEMINI_API_KEY", ""),
		ModelTimeout:        duration("NAMAZING_MODEL_TIMEOUT", 90*time.Second),
		StubMode:            boolean("NAMAZING_STUB_MODE", false),
		DefaultModel:        defaultModel,
		BriefParserModel:    str("NAMAZING_MODEL_BRIEF_PARSER", defaultModel),
		NameGeneratorModel:  str("NAMAZING_MODEL_NAME_GENERATOR", defaultModel),
		ResearcherModel:     str("NAMAZING_MODEL_RESEARCHER", defaultModel),
		ExpertSelectorModel: str("NAMAZING_MODEL_EXPERT_SELECTOR", defaultModel),
		ReportComposerModel: str("NAMAZING_MODEL_REPORT_COMPOSER", defaultModel),
		Concurrency:         integer("NAMAZING_CONCURRENCY", 6),
		SerialMaxCandidates: integer("NAMAZING_SERIAL_MAX_CANDIDATES", 24),
		RunRetention:        duration("NAMAZING_RUN_RETENTION", time.Hour),
		PromptsDir:          str("NAMAZING_PROMPTS_DIR", ""),
		OTELEndpoint:        str("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:         str("OTEL_SERVICE_NAME", "namazing"),
		OTELInsecure:        boolean("NAMAZING_OTEL_INSECURE", false),
		LogLevel:            str("NAMAZING_LOG_LEVEL", "info"),
	}
	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("NAMAZING_PORT must be between 1 and 65535"))
	}
	if c.MaxRequestBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("NAMAZING_MAX_REQUEST_BODY_BYTES must be positive"))
	}
	if c.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("NAMAZING_CONCURRENCY must be positive"))
	}
	if c.SerialMaxCandidates <= 0 {
		errs = append(errs, fmt.Errorf("NAMAZING_SERIAL_MAX_CANDIDATES must be positive"))
	}
	if c.ModelTimeout < 0 {
		errs = append(errs, fmt.Errorf("NAMAZING_MODEL_TIMEOUT must not be negative"))
	}
	if c.RunRetention < 0 {
		errs = append(errs, fmt.Errorf("NAMAZING_RUN_RETENTION must not be negative"))
	}
	switch c.ModelProvider {
	case ProviderAuto, ProviderOllama, ProviderStub:
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, fmt.Errorf("OPENAI_API_KEY is required for provider %q", ProviderOpenAI))
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			errs = append(errs, fmt.Errorf("GEMINI_API_KEY is required for provider %q", ProviderGemini))
		}
	default:
		errs = append(errs, fmt.Errorf("NAMAZING_MODEL_PROVIDER %q is not one of auto, openai, ollama, gemini, stub", c.ModelProvider))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Provider resolves "auto" to a concrete provider: OpenAI when its key is
// set, then Gemini, otherwise stub. NAMAZING_STUB_MODE always wins.
func (c Config) Provider() string {
	if c.StubMode {
		return ProviderStub
	}
	if c.ModelProvider != ProviderAuto {
		return c.ModelProvider
	}
	switch {
	case c.OpenAIAPIKey != "":
		return ProviderOpenAI
	case c.GeminiAPIKey != "":
		return ProviderGemini
	default:
		return ProviderStub
	}
}

// StubOnly reports whether model-backed paths should be skipped.
func (c Config) StubOnly() bool {
	return c.Provider() == ProviderStub
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid integer", key, v)
	}
	return n, nil
}

func envBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s=%q is not a valid boolean", key, v)
	}
	return b, nil
}

func envDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid duration", key, v)
	}
	return d, nil
}
