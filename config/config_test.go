package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeAnalytics/internal/adapters/logger"
	"tradeAnalytics/internal/analytics"
	"tradeAnalytics/internal/matching"
)

var configKeys = []string{
	"EVENTS_PATH", "DB_PATH", "LOG_LEVEL", "LOG_FORMAT", "STARTING_CAPITAL",
	"SCRATCH_EPSILON", "MATCH_POLICY", "TIMEZONE", "FEE_SCHEDULE_FILE",
	"REFRESH_INTERVAL_SECONDS", "TRACING_ENABLED", "SNAPSHOT_RETENTION",
	"REPORT_FROM", "REPORT_TO",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "./data/events.csv", cfg.EventsPath)
	assert.Equal(t, "./data/trade_analytics.db", cfg.DBPath)
	assert.Equal(t, 5, cfg.SnapshotRetention)
	assert.True(t, cfg.ReportFrom.IsZero())
	assert.True(t, cfg.ReportTo.IsZero())
	assert.Equal(t, logger.LevelInfo, cfg.LogLevel)
	assert.Equal(t, logger.FormatConsole, cfg.LogFormat)
	assert.Equal(t, analytics.DefaultStartingCapital, cfg.StartingCapital)
	assert.Equal(t, 0.0, cfg.ScratchEpsilon)
	assert.Equal(t, matching.PolicyOverwrite, cfg.MatchPolicy)
	assert.Equal(t, time.Local, cfg.Location)
	assert.Equal(t, analytics.DefaultFeeSchedule(), cfg.FeeSchedule)
	assert.Equal(t, time.Duration(0), cfg.RefreshInterval)
	assert.False(t, cfg.TracingEnabled)
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("EVENTS_PATH", "/tmp/events.json")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("STARTING_CAPITAL", "2500")
	t.Setenv("SCRATCH_EPSILON", "0.01")
	t.Setenv("MATCH_POLICY", "FIFO")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("REFRESH_INTERVAL_SECONDS", "30")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("SNAPSHOT_RETENTION", "2")
	t.Setenv("REPORT_FROM", "2024-05-01")
	t.Setenv("REPORT_TO", "2024-05-31")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/events.json", cfg.EventsPath)
	assert.Equal(t, logger.LevelDebug, cfg.LogLevel)
	assert.Equal(t, logger.FormatJSON, cfg.LogFormat)
	assert.Equal(t, 2500.0, cfg.StartingCapital)
	assert.Equal(t, 0.01, cfg.ScratchEpsilon)
	assert.Equal(t, matching.PolicyFIFO, cfg.MatchPolicy)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
	assert.True(t, cfg.TracingEnabled)
	assert.Equal(t, 2, cfg.SnapshotRetention)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), cfg.ReportFrom)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond), cfg.ReportTo)

	ac := cfg.Analytics()
	assert.Equal(t, cfg.ReportFrom, ac.From)
	assert.Equal(t, cfg.ReportTo, ac.To)
	assert.Equal(t, 2500.0, ac.StartingCapital)
	assert.Equal(t, 0.01, ac.ScratchEpsilon)
	assert.Equal(t, time.UTC, ac.Location)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantMsg string
	}{
		{name: "capital not a number", key: "STARTING_CAPITAL", value: "lots", wantMsg: "invalid STARTING_CAPITAL"},
		{name: "capital zero", key: "STARTING_CAPITAL", value: "0", wantMsg: "STARTING_CAPITAL must be a positive finite number"},
		{name: "capital infinite", key: "STARTING_CAPITAL", value: "Inf", wantMsg: "STARTING_CAPITAL must be a positive finite number"},
		{name: "capital NaN", key: "STARTING_CAPITAL", value: "NaN", wantMsg: "STARTING_CAPITAL must be a positive finite number"},
		{name: "negative epsilon", key: "SCRATCH_EPSILON", value: "-1", wantMsg: "SCRATCH_EPSILON must be a non-negative finite number"},
		{name: "infinite epsilon", key: "SCRATCH_EPSILON", value: "+Inf", wantMsg: "SCRATCH_EPSILON must be a non-negative finite number"},
		{name: "zero retention", key: "SNAPSHOT_RETENTION", value: "0", wantMsg: "SNAPSHOT_RETENTION must be at least 1"},
		{name: "bad report start", key: "REPORT_FROM", value: "last week", wantMsg: "invalid REPORT_FROM"},
		{name: "unknown policy", key: "MATCH_POLICY", value: "random", wantMsg: "invalid MATCH_POLICY"},
		{name: "unknown zone", key: "TIMEZONE", value: "Mars/Olympus", wantMsg: "invalid TIMEZONE"},
		{name: "unknown format", key: "LOG_FORMAT", value: "xml", wantMsg: "log format"},
		{name: "negative interval", key: "REFRESH_INTERVAL_SECONDS", value: "-5", wantMsg: "cannot be negative"},
		{name: "missing fee file", key: "FEE_SCHEDULE_FILE", value: "/nonexistent/fees.yaml", wantMsg: "failed to read fee schedule"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := LoadConfig()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), "configuration validation failed")
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoadFeeSchedule(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fees.yaml")
	content := "categories:\n  - name: Exchange\n    weight: 3\n  - name: Gas\n    weight: 1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	schedule, err := LoadFeeSchedule(path)
	require.NoError(t, err)

	require.Len(t, schedule.Categories, 2)
	assert.Equal(t, "Exchange", schedule.Categories[0].Name)
	assert.Equal(t, 3.0, schedule.Categories[0].Weight)
	assert.Equal(t, int32(2), schedule.Places)

	clearEnv(t)
	t.Setenv("FEE_SCHEDULE_FILE", path)
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, schedule, cfg.FeeSchedule)
}

func TestLoadFeeSchedule_Invalid(t *testing.T) {
	dir := t.TempDir()

	badYAML := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badYAML, []byte("categories: [oops"), 0o644))
	_, err := LoadFeeSchedule(badYAML)
	assert.ErrorContains(t, err, "failed to parse fee schedule")

	noWeights := filepath.Join(dir, "zero.yaml")
	require.NoError(t, os.WriteFile(noWeights, []byte("categories:\n  - name: A\n    weight: 0\n"), 0o644))
	_, err = LoadFeeSchedule(noWeights)
	assert.ErrorContains(t, err, "invalid fee schedule")
}

func TestLoadConfig_ReportRangeReversed(t *testing.T) {
	clearEnv(t)
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("REPORT_FROM", "2024-06-01")
	t.Setenv("REPORT_TO", "2024-05-01")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "REPORT_TO is before REPORT_FROM")
}

func TestParseReportBound(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   string
		upper   bool
		want    time.Time
		wantErr bool
	}{
		{name: "empty is unbounded", input: "", want: time.Time{}},
		{name: "rfc3339", input: "2024-05-06T12:00:00Z", want: time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)},
		{name: "date as lower bound", input: "2024-05-06", want: time.Date(2024, 5, 6, 0, 0, 0, 0, ny)},
		{
			name:  "date as upper bound covers the day",
			input: "2024-05-06",
			upper: true,
			want:  time.Date(2024, 5, 7, 0, 0, 0, 0, ny).Add(-time.Nanosecond),
		},
		{name: "garbage", input: "yesterday", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReportBound(tt.input, ny, tt.upper)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}
