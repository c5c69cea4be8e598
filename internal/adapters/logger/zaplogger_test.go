package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level zapcore.Level) (*ZapLogger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewFromZap(zap.New(core)), logs
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"DEBUG", LevelDebug},
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"WARN", LevelWarn},
		{"ERROR", LevelError},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatConsole, f)

	_, err = ParseFormat("xml")
	assert.ErrorContains(t, err, "unknown log format")
}

func TestNewZapLogger(t *testing.T) {
	for _, format := range []Format{FormatConsole, FormatJSON} {
		l, err := NewZapLogger(LevelWarn, format)
		require.NoError(t, err)
		require.NotNil(t, l)
	}
}

func TestZapLogger_LevelsAndFields(t *testing.T) {
	l, logs := observed(zapcore.InfoLevel)
	ctx := context.Background()

	l.Debug(ctx, "hidden")
	l.Info(ctx, "refreshed", map[string]interface{}{"trades": 3, "events": 7})
	l.Warn(ctx, "skipped")
	l.Error(ctx, errors.New("boom"), "failed")

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, "refreshed", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, 3, fields["trades"])
	assert.EqualValues(t, 7, fields["events"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)

	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "boom", entries[2].ContextMap()["error"])
}

func TestZapLogger_AttachesTraceIDs(t *testing.T) {
	l, logs := observed(zapcore.DebugLevel)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02},
		SpanID:     trace.SpanID{0x03},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	l.Debug(ctx, "inside span")
	l.Debug(context.Background(), "outside span")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, sc.TraceID().String(), entries[0].ContextMap()["trace_id"])
	assert.Equal(t, sc.SpanID().String(), entries[0].ContextMap()["span_id"])
	assert.NotContains(t, entries[1].ContextMap(), "trace_id")
}
