package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"tradeAnalytics/config"
	"tradeAnalytics/internal/analytics"
	"tradeAnalytics/internal/domain"
	"tradeAnalytics/internal/matching"
	"tradeAnalytics/internal/ports"
	"tradeAnalytics/internal/trace"
)

// AnalyticsService runs the refresh cycle: load events, match them into
// trades, derive the report and publish it as the current snapshot.
// A failed cycle never replaces the last successful snapshot.
type AnalyticsService struct {
	cfg       *config.Config
	logger    ports.Logger
	source    ports.EventSource
	repo      ports.SnapshotRepository
	matcher   *matching.Matcher
	reportCfg analytics.Config

	now   func() time.Time
	newID func() string

	mu      sync.RWMutex // Protects current
	current *domain.Snapshot
}

// NewAnalyticsService creates a new application service instance.
func NewAnalyticsService(
	cfg *config.Config,
	logger ports.Logger,
	source ports.EventSource,
	repo ports.SnapshotRepository,
) (*AnalyticsService, error) {
	if cfg == nil || logger == nil || source == nil || repo == nil {
		return nil, fmt.Errorf("missing required dependencies for AnalyticsService: %w", ports.ErrConfigurationError)
	}

	matcher, err := matching.NewMatcher(cfg.MatchPolicy)
	if err != nil {
		return nil, fmt.Errorf("invalid match policy: %w: %w", ports.ErrConfigurationError, err)
	}

	reportCfg := cfg.Analytics()
	if reportCfg.StartingCapital <= 0 {
		return nil, fmt.Errorf("configuration StartingCapital must be positive: %w", ports.ErrConfigurationError)
	}
	if err := reportCfg.Fees.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fee schedule: %w: %w", ports.ErrConfigurationError, err)
	}

	return &AnalyticsService{
		cfg:       cfg,
		logger:    logger,
		source:    source,
		repo:      repo,
		matcher:   matcher,
		reportCfg: reportCfg,
		now:       time.Now,
		newID:     uuid.NewString,
	}, nil
}

// Snapshot returns the last successful snapshot, or nil before the first one.
// The returned value is shared and must not be modified.
func (s *AnalyticsService) Snapshot() *domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *AnalyticsService) publish(snap *domain.Snapshot) {
	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
}

// Restore loads the most recently stored snapshot and rebuilds its report
// from the stored trades. An empty store is not an error.
func (s *AnalyticsService) Restore(ctx context.Context) error {
	stored, err := s.repo.LatestSnapshot(ctx)
	if errors.Is(err, ports.ErrNoSnapshot) {
		s.logger.Info(ctx, "No stored snapshot to restore")
		return nil
	}
	if err != nil {
		s.logger.Error(ctx, err, "Failed to load stored snapshot")
		return fmt.Errorf("failed to load stored snapshot: %w", err)
	}

	report, err := analytics.BuildReport(ctx, stored.Trades, s.reportCfg)
	if err != nil {
		return fmt.Errorf("failed to rebuild report for snapshot %s: %w", stored.ID, err)
	}
	stored.Report = *report

	s.publish(stored)
	s.logger.Info(ctx, "Snapshot restored", map[string]interface{}{
		"snapshotID":  stored.ID,
		"generatedAt": stored.GeneratedAt.Format(time.RFC3339),
		"trades":      len(stored.Trades),
	})
	return nil
}

// Refresh runs one full cycle and publishes the result. On error the
// previously published snapshot stays current.
func (s *AnalyticsService) Refresh(ctx context.Context) (*domain.Snapshot, error) {
	ctx, span := trace.StartSpan(ctx, "analytics.refresh")
	defer span.End()

	snap, err := s.refresh(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error(ctx, err, "Refresh failed, keeping last snapshot")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("snapshot.id", snap.ID),
		attribute.Int("events", snap.EventCount),
		attribute.Int("trades", len(snap.Trades)),
		attribute.Int("open_positions", len(snap.OpenPositions)),
	)
	span.SetStatus(codes.Ok, "completed")
	return snap, nil
}

func (s *AnalyticsService) refresh(ctx context.Context) (*domain.Snapshot, error) {
	events, err := s.source.Events(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	result, err := s.matcher.Match(events)
	if err != nil {
		return nil, fmt.Errorf("failed to match events: %w", err)
	}
	if result.DiscardedEntries > 0 || result.UnmatchedExits > 0 {
		s.logger.Debug(ctx, "Events left out of trade matching", map[string]interface{}{
			"discardedEntries": result.DiscardedEntries,
			"unmatchedExits":   result.UnmatchedExits,
			"policy":           string(s.matcher.Policy()),
		})
	}

	report, err := analytics.BuildReport(ctx, result.Trades, s.reportCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}

	snap := &domain.Snapshot{
		ID:             s.newID(),
		GeneratedAt:    s.now().UTC(),
		EventCount:     len(events),
		UnmatchedExits: result.UnmatchedExits,
		OpenPositions:  result.Open,
		Trades:         result.Trades,
		Report:         *report,
	}

	if err := s.repo.SaveSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	s.publish(snap)
	m := snap.Report.Metrics
	s.logger.Info(ctx, "Snapshot refreshed", map[string]interface{}{
		"snapshotID": snap.ID,
		"events":     snap.EventCount,
		"trades":     m.TotalTrades,
		"open":       len(snap.OpenPositions),
		"totalPnL":   m.TotalPnL,
		"winRate":    m.WinRate,
	})
	return snap, nil
}

// Run refreshes once when interval is zero. Otherwise it refreshes
// immediately and then on every tick until ctx is canceled or the process
// receives SIGINT/SIGTERM. Failed cycles are logged and the loop continues.
func (s *AnalyticsService) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		_, err := s.Refresh(ctx)
		return err
	}

	s.logger.Info(ctx, "Starting Analytics Service...", map[string]interface{}{"interval": interval.String()})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		_, _ = s.Refresh(ctx) // Errors are logged by Refresh

		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Analytics Service stopped")
			return nil
		case <-ticker.C:
		}
	}
}
