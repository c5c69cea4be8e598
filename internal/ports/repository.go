package ports

import (
	"context"

	"tradeAnalytics/internal/domain"
)

// SnapshotRepository stores the last-known-good analytics snapshot.
// Only the trade list and the metrics are persisted; derived series are recomputed on load.
type SnapshotRepository interface {
	// SaveSnapshot persists the snapshot and its trades atomically and prunes
	// snapshots beyond the store's retention in the same transaction.
	SaveSnapshot(ctx context.Context, snap *domain.Snapshot) error
	// LatestSnapshot returns the most recently saved snapshot with its trades
	// in canonical order (exit time descending).
	// Returns ErrNoSnapshot (which matches ErrNotFound) if nothing has been saved yet.
	LatestSnapshot(ctx context.Context) (*domain.Snapshot, error)
	// Close releases the underlying storage.
	Close() error
}
