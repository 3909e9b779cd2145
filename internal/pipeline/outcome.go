package pipeline

import (
	"context"
	"fmt"
)

// Source records which path produced a stage value.
type Source string

const (
	SourceLive Source = "live"
	SourceStub Source = "stub"
)

// Outcome is the result of one stage attempt. A Stubbed outcome always
// carries a usable value; Reason is nil when the model path was skipped
// rather than failed.
type Outcome[T any] struct {
	Value  T
	Source Source
	Reason error
}

// Live wraps a value produced by the model-backed path.
func Live[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v, Source: SourceLive}
}

// Stubbed wraps a deterministic fallback value and why it was needed.
func Stubbed[T any](v T, reason error) Outcome[T] {
	return Outcome[T]{Value: v, Source: SourceStub, Reason: reason}
}

// IsStubbed reports whether the fallback produced the value.
func (o Outcome[T]) IsStubbed() bool { return o.Source == SourceStub }

// attempt tries live unless skip is set and falls back on any failure,
// including a panic inside live. fallback cannot fail, so attempt is total.
func attempt[T any](ctx context.Context, skip bool, live func(context.Context) (T, error), fallback func() T) Outcome[T] {
	if skip {
		return Stubbed(fallback(), nil)
	}
	v, err := guarded(ctx, live)
	if err != nil {
		return Stubbed(fallback(), err)
	}
	return Live(v)
}

func guarded[T any](ctx context.Context, live func(context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, err = zero, fmt.Errorf("model path panicked: %v", r)
		}
	}()
	return live(ctx)
}
