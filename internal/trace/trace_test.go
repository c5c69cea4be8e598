package trace

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSpan_Disabled(t *testing.T) {
	require.NoError(t, Shutdown(context.Background()))
	assert.False(t, Enabled())

	ctx := context.Background()
	got, span := StartSpan(ctx, "noop")
	assert.Equal(t, ctx, got)
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}

func TestStartSpan_Enabled(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(&buf))
	t.Cleanup(func() { _ = Shutdown(context.Background()) })
	assert.True(t, Enabled())

	_, span := StartSpan(context.Background(), "analytics.refresh")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "analytics.refresh")
	assert.Contains(t, buf.String(), serviceName)
	assert.False(t, Enabled())
}
