// Package agent turns prompt templates and a model client into typed calls.
//
// Structured calls load a template, send the instruction followed by the
// caller's input as one user message, recover JSON from the reply and
// validate it. Every failure comes back as a single *Error whose Kind tells
// the caller which stage of the call broke. Callers decide what a failure
// means; the pipeline treats any of them as "use the fallback".
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/ajaysolanky/namazing-sub000/internal/llm"
	"github.com/ajaysolanky/namazing-sub000/internal/prompt"
)

// Validatable is implemented by every structured output type.
type Validatable interface {
	Validate() error
}

// Call describes one templated model call.
type Call struct {
	TemplateID  string
	Model       string
	Input       string
	Temperature float64
}

// Runner executes templated calls against a model client.
type Runner struct {
	client  llm.Client
	prompts *prompt.Store
	timeout time.Duration

	schemas sync.Map // reflect.Type -> string
}

// NewRunner creates a Runner. timeout bounds each model call; zero means the
// call may block for as long as the client allows.
func NewRunner(client llm.Client, prompts *prompt.Store, timeout time.Duration) *Runner {
	return &Runner{client: client, prompts: prompts, timeout: timeout}
}

// Structured runs a JSON-mode call and decodes the reply into out, which
// must be a pointer. out is validated before Structured returns nil.
func (r *Runner) Structured(ctx context.Context, call Call, out Validatable) error {
	tpl, err := r.prompts.Load(call.TemplateID)
	if err != nil {
		return &Error{Kind: KindTemplate, TemplateID: call.TemplateID, Err: err}
	}

	system := tpl.System
	if schema := r.schemaFor(out); schema != "" {
		system += "\n\nThe reply must be a JSON object matching this JSON Schema:\n" + schema
	}

	text, err := r.complete(ctx, call, system, tpl.Instruction, true)
	if err != nil {
		return err
	}

	raw, err := ExtractJSON(text)
	if err != nil {
		return &Error{Kind: KindExtraction, TemplateID: call.TemplateID, Err: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindValidation, TemplateID: call.TemplateID, Err: err}
	}
	if err := out.Validate(); err != nil {
		return &Error{Kind: KindValidation, TemplateID: call.TemplateID, Err: err}
	}
	return nil
}

// Text runs a free-text call and returns the trimmed reply.
func (r *Runner) Text(ctx context.Context, call Call) (string, error) {
	tpl, err := r.prompts.Load(call.TemplateID)
	if err != nil {
		return "", &Error{Kind: KindTemplate, TemplateID: call.TemplateID, Err: err}
	}
	text, err := r.complete(ctx, call, tpl.System, tpl.Instruction, false)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &Error{Kind: KindValidation, TemplateID: call.TemplateID, Err: llm.ErrEmptyResponse}
	}
	return text, nil
}

func (r *Runner) complete(ctx context.Context, call Call, system, instruction string, wantJSON bool) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	text, err := r.client.Complete(ctx, llm.Request{
		Model:  call.Model,
		System: system,
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: instruction + "\n" + call.Input,
		}},
		JSON:        wantJSON,
		Temperature: call.Temperature,
	})
	if err != nil {
		return "", &Error{Kind: KindTransport, TemplateID: call.TemplateID, Err: err}
	}
	return text, nil
}

// schemaFor returns the indented JSON Schema for out's type, computed once
// per type.
func (r *Runner) schemaFor(out any) string {
	t := reflect.TypeOf(out)
	if cached, ok := r.schemas.Load(t); ok {
		return cached.(string)
	}
	schema, err := SchemaFor(out)
	if err != nil {
		schema = ""
	}
	r.schemas.Store(t, schema)
	return schema
}

// SchemaFor reflects v into an inline JSON Schema document.
func SchemaFor(v any) (string, error) {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	b, err := json.MarshalIndent(reflector.Reflect(v), "", "  ")
	if err != nil {
		return "", fmt.Errorf("agent: marshal schema: %w", err)
	}
	return string(b), nil
}
