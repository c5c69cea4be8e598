package ports

import (
	"context"

	"tradeAnalytics/internal/domain"
)

// EventSource yields the typed market events of a single trading account.
// How the events are obtained (file, RPC, socket) is up to the implementation.
type EventSource interface {
	// Events returns the full, materialized event list. Order is not significant.
	Events(ctx context.Context) ([]domain.MarketEvent, error)
}
