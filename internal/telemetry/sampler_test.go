package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/Ahammedsa/server-site-fitenss/internal/config"
)

func TestNewSampler(t *testing.T) {
	require.Contains(t, newSampler(1).Description(), "AlwaysOnSampler")
	require.Contains(t, newSampler(0.25).Description(), "TraceIDRatioBased{0.25}")

	never := newSampler(0)
	res := never.ShouldSample(sdktrace.SamplingParameters{
		ParentContext: context.Background(),
		TraceID:       trace.TraceID{1},
		Name:          "root",
	})
	require.Equal(t, sdktrace.Drop, res.Decision)
}

func TestNewResourceTagsStorageDriver(t *testing.T) {
	res, err := newResource(context.Background(), config.Config{
		ServiceName:   "the-fitness",
		Environment:   "test",
		StorageDriver: config.DriverMongo,
	})
	require.NoError(t, err)

	value, ok := res.Set().Value(StorageDriverKey)
	require.True(t, ok)
	require.Equal(t, "mongo", value.AsString())

	name, ok := res.Set().Value("service.name")
	require.True(t, ok)
	require.Equal(t, "the-fitness", name.AsString())
}
