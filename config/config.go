package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tradeAnalytics/internal/adapters/logger"
	"tradeAnalytics/internal/analytics"
	"tradeAnalytics/internal/matching"
)

const defaultSnapshotRetention = 5

// Config holds all application configuration.
type Config struct {
	// Input
	EventsPath string // Event file (.csv, .json, .yaml, .yml)

	// Database
	DBPath            string
	SnapshotRetention int // Newest snapshots kept in the store

	// Logging
	LogLevel  logger.LogLevel
	LogFormat logger.Format

	// Analytics
	StartingCapital float64
	ScratchEpsilon  float64
	MatchPolicy     matching.Policy
	Location        *time.Location
	FeeSchedule     analytics.FeeSchedule
	ReportFrom      time.Time // Zero means no lower bound on exit time
	ReportTo        time.Time // Zero means no upper bound on exit time

	// Service
	RefreshInterval time.Duration // 0 runs a single refresh
	TracingEnabled  bool
}

// Analytics returns the reducer configuration derived from cfg.
func (c *Config) Analytics() analytics.Config {
	return analytics.Config{
		StartingCapital: c.StartingCapital,
		ScratchEpsilon:  c.ScratchEpsilon,
		Location:        c.Location,
		Fees:            c.FeeSchedule,
		From:            c.ReportFrom,
		To:              c.ReportTo,
	}
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string

	cfg.EventsPath = getEnv("EVENTS_PATH", "./data/events.csv")
	cfg.DBPath = getEnv("DB_PATH", "./data/trade_analytics.db")
	cfg.SnapshotRetention, err = getEnvAsIntRequired("SNAPSHOT_RETENTION", defaultSnapshotRetention)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SNAPSHOT_RETENTION: %v", err))
	} else if cfg.SnapshotRetention < 1 {
		errs = append(errs, "SNAPSHOT_RETENTION must be at least 1")
	}

	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))
	cfg.LogFormat, err = logger.ParseFormat(getEnv("LOG_FORMAT", string(logger.FormatConsole)))
	if err != nil {
		errs = append(errs, err.Error())
	}

	cfg.StartingCapital, err = getEnvAsFloatRequired("STARTING_CAPITAL", analytics.DefaultStartingCapital)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid STARTING_CAPITAL: %v", err))
	} else if !(cfg.StartingCapital > 0) || math.IsInf(cfg.StartingCapital, 0) {
		errs = append(errs, "STARTING_CAPITAL must be a positive finite number")
	}

	cfg.ScratchEpsilon, err = getEnvAsFloatRequired("SCRATCH_EPSILON", 0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SCRATCH_EPSILON: %v", err))
	} else if !(cfg.ScratchEpsilon >= 0) || math.IsInf(cfg.ScratchEpsilon, 0) {
		errs = append(errs, "SCRATCH_EPSILON must be a non-negative finite number")
	}

	cfg.MatchPolicy, err = matching.ParsePolicy(getEnv("MATCH_POLICY", string(matching.PolicyOverwrite)))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MATCH_POLICY: %v", err))
	}

	cfg.Location, err = time.LoadLocation(getEnv("TIMEZONE", "Local"))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TIMEZONE: %v", err))
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	cfg.ReportFrom, err = ParseReportBound(getEnv("REPORT_FROM", ""), loc, false)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid REPORT_FROM: %v", err))
	}
	cfg.ReportTo, err = ParseReportBound(getEnv("REPORT_TO", ""), loc, true)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid REPORT_TO: %v", err))
	}
	if !cfg.ReportFrom.IsZero() && !cfg.ReportTo.IsZero() && cfg.ReportTo.Before(cfg.ReportFrom) {
		errs = append(errs, "REPORT_TO is before REPORT_FROM")
	}

	cfg.FeeSchedule = analytics.DefaultFeeSchedule()
	if path := getEnv("FEE_SCHEDULE_FILE", ""); path != "" {
		cfg.FeeSchedule, err = LoadFeeSchedule(path)
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	refreshSeconds, err := getEnvAsIntRequired("REFRESH_INTERVAL_SECONDS", 0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid REFRESH_INTERVAL_SECONDS: %v", err))
	} else if refreshSeconds < 0 {
		errs = append(errs, "REFRESH_INTERVAL_SECONDS cannot be negative")
	}
	cfg.RefreshInterval = time.Duration(refreshSeconds) * time.Second

	cfg.TracingEnabled = getEnvAsBool("TRACING_ENABLED", false)

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// LoadFeeSchedule reads a YAML fee schedule such as:
//
//	places: 2
//	categories:
//	  - name: Trading Fees
//	    weight: 70
//	  - name: Network Fees
//	    weight: 30
//
// Places defaults to 2 when omitted.
func LoadFeeSchedule(path string) (analytics.FeeSchedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return analytics.FeeSchedule{}, fmt.Errorf("failed to read fee schedule %s: %w", path, err)
	}

	schedule := analytics.FeeSchedule{Places: analytics.DefaultFeeSchedule().Places}
	if err := yaml.Unmarshal(data, &schedule); err != nil {
		return analytics.FeeSchedule{}, fmt.Errorf("failed to parse fee schedule %s: %w", path, err)
	}
	if err := schedule.Validate(); err != nil {
		return analytics.FeeSchedule{}, fmt.Errorf("invalid fee schedule %s: %w", path, err)
	}
	return schedule, nil
}

// ParseReportBound parses a date-range bound given as RFC 3339 or as a bare
// YYYY-MM-DD date in loc. A bare date used as an upper bound covers that whole
// day. Empty input yields the zero time (unbounded).
func ParseReportBound(s string, loc *time.Location, upper bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	day, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("want RFC 3339 or YYYY-MM-DD, got %q", s)
	}
	if upper {
		return day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return day, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
