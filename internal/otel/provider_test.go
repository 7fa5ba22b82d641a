package otel

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestNew_Disabled(t *testing.T) {
	p, err := New(Config{Enabled: false})
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.Nil(t, p.LoggerProvider())
	assert.Equal(t, noop.Meter{}, p.Meter("scene"))

	counters, err := p.Counters(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, counters)

	assert.NoError(t, p.Flush(context.Background()))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNew_EnabledWithoutSinks(t *testing.T) {
	_, err := New(Config{Enabled: true, ServiceName: "wheelpath"})
	assert.ErrorContains(t, err, "no log writer or endpoint")
}

func TestNew_FileExporter(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(Config{
		Enabled:      true,
		ServiceName:  "wheelpath",
		BatchTimeout: time.Second,
		LogWriter:    &buf,
	})
	require.NoError(t, err)
	require.NotNil(t, p.LoggerProvider())
	assert.True(t, p.Enabled())
	assert.NoError(t, p.Flush(context.Background()))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestCounters(t *testing.T) {
	ctx := context.Background()
	p, err := New(Config{Enabled: true, ServiceName: "wheelpath", LogWriter: &bytes.Buffer{}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(ctx) })

	m := p.Meter("scene")
	rebuilds, err := m.Int64Counter("wheelpath.curve.rebuilds")
	require.NoError(t, err)
	failed, err := m.Int64Counter("wheelpath.anchors.failed")
	require.NoError(t, err)
	ratio, err := m.Float64Counter("wheelpath.follow.ratio")
	require.NoError(t, err)

	rebuilds.Add(ctx, 2)
	rebuilds.Add(ctx, 1, metric.WithAttributes(attribute.String("scenario", "park")))
	failed.Add(ctx, 1)
	ratio.Add(ctx, 0.5)

	counters, err := p.Counters(ctx)
	require.NoError(t, err)
	// float sums are not reported
	assert.Equal(t, []Counter{
		{Name: "wheelpath.anchors.failed", Value: 1},
		{Name: "wheelpath.curve.rebuilds", Value: 3},
	}, counters)
}
