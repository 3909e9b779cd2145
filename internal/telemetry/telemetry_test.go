package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestInitWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{ServiceName: "namazing", Version: "test"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestGlobalInstruments(t *testing.T) {
	counter, err := Meter(ScopePipeline).Int64Counter("namazing.test.count")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	ctx, span := Tracer(ScopeRuns).Start(context.Background(), "op")
	defer span.End()
	assert.NotNil(t, ctx)
}

func TestRunAttributes(t *testing.T) {
	attrs := RunAttributes("r1", "parallel")
	assert.Equal(t, []attribute.KeyValue{
		attribute.String("namazing.run_id", "r1"),
		attribute.String("namazing.mode", "parallel"),
	}, attrs)
	assert.Equal(t, attribute.Key("namazing.stage"), StageKey)
}
