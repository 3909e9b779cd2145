// Package pipeline drives a brief through the five naming stages.
//
// Stage order is fixed: brief-parser, name-generator, researcher,
// expert-selector, report-composer. Each stage tries its model-backed path
// and, on any failure, logs the reason and computes a deterministic
// fallback, so a model outage degrades output quality but never fails the
// run. Only an event that fails its own validation, or an emitter error,
// escapes Run.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ajaysolanky/namazing-sub000/internal/agent"
	"github.com/ajaysolanky/namazing-sub000/internal/model"
	"github.com/ajaysolanky/namazing-sub000/internal/research"
	"github.com/ajaysolanky/namazing-sub000/internal/telemetry"
)

// Template ids and sampling temperatures per stage.
const (
	templateBriefParser    = "brief_parser"
	templateNameGenerator  = "name_generator"
	templateResearcher     = "researcher"
	templateExpertSelector = "expert_selector"
	templateReportComposer = "report_composer"

	tempBriefParser    = 0.2
	tempNameGenerator  = 0.9
	tempResearcher     = 0.4
	tempExpertSelector = 0.3
	tempReportComposer = 0.6
)

// DefaultSerialMaxCandidates caps the candidate list in serial mode.
const DefaultSerialMaxCandidates = 24

// Models holds the model id used by each stage.
type Models struct {
	BriefParser    string
	NameGenerator  string
	Researcher     string
	ExpertSelector string
	ReportComposer string
}

// Config controls stage behaviour.
type Config struct {
	Models Models
	// StubOnly skips every model-backed path.
	StubOnly bool
	// Concurrency is the researcher worker count in parallel mode.
	Concurrency int
	// SerialMaxCandidates caps the candidate list in serial mode.
	SerialMaxCandidates int
}

// Pipeline runs briefs through the stages. It holds no per-run state and is
// safe for concurrent use.
type Pipeline struct {
	cfg    Config
	agent  *agent.Runner
	bridge *research.Bridge
	logger *slog.Logger

	tracer        trace.Tracer
	stageDuration metric.Float64Histogram
	fallbacks     metric.Int64Counter
}

// New creates a pipeline. runner may be nil when cfg.StubOnly is set.
func New(cfg Config, runner *agent.Runner, bridge *research.Bridge, logger *slog.Logger) *Pipeline {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.SerialMaxCandidates < 1 {
		cfg.SerialMaxCandidates = DefaultSerialMaxCandidates
	}
	if runner == nil {
		cfg.StubOnly = true
	}

	meter := telemetry.Meter(telemetry.ScopePipeline)
	stageDur, _ := meter.Float64Histogram("namazing.stage.duration",
		metric.WithDescription("Time spent in a pipeline stage (ms)"),
		metric.WithUnit("ms"),
	)
	fallbacks, _ := meter.Int64Counter("namazing.stage.fallbacks",
		metric.WithDescription("Stage attempts answered by the deterministic fallback"),
	)
	return &Pipeline{
		cfg:           cfg,
		agent:         runner,
		bridge:        bridge,
		logger:        logger,
		tracer:        telemetry.Tracer(telemetry.ScopePipeline),
		stageDuration: stageDur,
		fallbacks:     fallbacks,
	}
}

// StubOnly reports whether model-backed paths are skipped.
func (p *Pipeline) StubOnly() bool { return p.cfg.StubOnly }

// Run executes every stage in order and returns the assembled result. The
// last event emitted on success is the report-composer result carrying the
// full Result.
func (p *Pipeline) Run(ctx context.Context, runID, brief string, mode model.Mode, emit Emitter) (model.Result, error) {
	ctx, span := p.tracer.Start(ctx, "namazing.run", trace.WithAttributes(
		telemetry.RunAttributes(runID, string(mode))...,
	))
	defer span.End()

	var res model.Result
	steps := []struct {
		agent string
		run   func(context.Context, stageEvents) error
	}{
		{model.AgentBriefParser, func(ctx context.Context, ev stageEvents) (err error) {
			res.Profile, err = p.parseBrief(ctx, ev, brief)
			return err
		}},
		{model.AgentNameGenerator, func(ctx context.Context, ev stageEvents) (err error) {
			res.Candidates, err = p.generateNames(ctx, ev, res.Profile, mode)
			return err
		}},
		{model.AgentResearcher, func(ctx context.Context, ev stageEvents) (err error) {
			res.Cards, err = p.researchNames(ctx, ev, res.Profile, res.Candidates, mode)
			return err
		}},
		{model.AgentExpertSelector, func(ctx context.Context, ev stageEvents) (err error) {
			res.Selection, err = p.selectFinalists(ctx, ev, res.Profile, res.Cards)
			return err
		}},
		{model.AgentReportComposer, func(ctx context.Context, ev stageEvents) error {
			return p.composeReport(ctx, ev, &res)
		}},
	}

	for _, step := range steps {
		ev := stageEvents{emit: emit, runID: runID, agent: step.agent}
		if err := p.stage(ctx, step.agent, ev, step.run); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return model.Result{}, err
		}
	}
	return res, nil
}

// stage wraps one stage in a span and records its duration.
func (p *Pipeline) stage(ctx context.Context, name string, ev stageEvents, fn func(context.Context, stageEvents) error) error {
	ctx, span := p.tracer.Start(ctx, "namazing.stage", trace.WithAttributes(
		telemetry.StageKey.String(name),
	))
	defer span.End()

	start := time.Now()
	err := fn(ctx, ev)
	p.stageDuration.Record(ctx, float64(time.Since(start).Milliseconds()),
		metric.WithAttributes(telemetry.StageKey.String(name)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// noteFallback records a stubbed outcome. A log event is emitted only when
// the model path actually failed; skipping it in stub-only mode is silent.
func (p *Pipeline) noteFallback(ctx context.Context, ev stageEvents, name string, reason error) error {
	kind := "stub_only"
	if reason != nil {
		if k := agent.KindOf(reason); k != "" {
			kind = string(k)
		} else {
			kind = "internal"
		}
	}
	p.fallbacks.Add(ctx, 1, metric.WithAttributes(
		telemetry.StageKey.String(ev.agent),
		telemetry.FallbackKey.String(kind),
	))
	if reason == nil {
		return nil
	}

	p.logger.Warn("pipeline: model path failed, using fallback",
		"run_id", ev.runID, "stage", ev.agent, "candidate", name, "kind", kind, "error", reason)
	subject := ev.agent
	if name != "" {
		subject = fmt.Sprintf("%s (%s)", ev.agent, name)
	}
	return ev.log(fmt.Sprintf("%s: %s failure, using deterministic fallback: %s", subject, kind, truncate(reason.Error(), 240)))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// toJSON renders a stage input for the model.
func toJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}
