package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"tradeAnalytics/internal/domain"
	"tradeAnalytics/internal/ports"

	"github.com/mattn/go-sqlite3"
)

// Repository implements ports.SnapshotRepository using SQLite.
type Repository struct {
	db        *sql.DB
	logger    ports.Logger
	retention int
}

// DefaultRetention is the number of snapshots kept when Config.Retention is unset.
const DefaultRetention = 5

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath    string
	Logger    ports.Logger
	Retention int // Newest snapshots kept after each save; <= 0 means DefaultRetention
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository: %w", ports.ErrConfigurationError)
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/trade_analytics.db" // Default path
	}
	retention := cfg.Retention
	if retention <= 0 {
		retention = DefaultRetention
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Open database connection
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000") // WAL keeps readers off the writer's lock
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close() // Close the connection if ping fails
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Set connection pool settings (one writer at a time; the driver serialises anyway)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour) // Recycle connections periodically

	repo := &Repository{db: db, logger: cfg.Logger, retention: retention}

	// Initialize schema
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Snapshot store ready", map[string]interface{}{
		"path":      dbPath,
		"retention": retention,
	})

	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		generated_at TIMESTAMP NOT NULL,
		event_count INTEGER NOT NULL,
		unmatched_exits INTEGER NOT NULL,
		total_trades INTEGER NOT NULL,
		total_pnl REAL NOT NULL,
		win_rate REAL NOT NULL,
		sharpe_ratio REAL NOT NULL,
		max_drawdown REAL NOT NULL,
		profit_factor REAL NULL -- NULL encodes +Inf
	);

	CREATE TABLE IF NOT EXISTS snapshot_trades (
		snapshot_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		trade_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		market_type TEXT NOT NULL,
		direction TEXT NOT NULL,
		order_type TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		quantity REAL NOT NULL,
		pnl REAL NOT NULL,
		pnl_percent REAL NOT NULL,
		fees REAL NOT NULL,
		entry_time TIMESTAMP NOT NULL,
		exit_time TIMESTAMP NOT NULL,
		duration_minutes INTEGER NOT NULL,
		notes TEXT NULL,
		tx_signature TEXT NULL,
		PRIMARY KEY (snapshot_id, seq)
	);

	CREATE TABLE IF NOT EXISTS snapshot_open_positions (
		snapshot_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		tx_id TEXT NULL,
		symbol TEXT NOT NULL,
		direction TEXT NOT NULL,
		market_type TEXT NOT NULL,
		entry_price REAL NOT NULL,
		quantity REAL NOT NULL,
		fee REAL NOT NULL,
		entry_time TIMESTAMP NOT NULL,
		PRIMARY KEY (snapshot_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_generated_at ON snapshots (generated_at);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// SaveSnapshot writes the snapshot header, its trades and its open positions in one transaction.
func (r *Repository) SaveSnapshot(ctx context.Context, snap *domain.Snapshot) (err error) {
	if snap == nil || snap.ID == "" {
		return fmt.Errorf("snapshot must have an id: %w", ports.ErrUpdateFailed)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w: %w", ports.ErrUpdateFailed, err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				r.logger.Error(ctx, rbErr, "Failed to roll back snapshot transaction", map[string]interface{}{"snapshotID": snap.ID})
			}
		}
	}()

	m := snap.Report.Metrics
	const insertSnapshot = `
	INSERT INTO snapshots (id, generated_at, event_count, unmatched_exits, total_trades,
	                       total_pnl, win_rate, sharpe_ratio, max_drawdown, profit_factor)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err = tx.ExecContext(ctx, insertSnapshot,
		snap.ID, snap.GeneratedAt.UTC(), snap.EventCount, snap.UnmatchedExits, len(snap.Trades),
		m.TotalPnL, m.WinRate, m.SharpeRatio, m.MaxDrawdown, encodeFactor(m.ProfitFactor)); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("snapshot %s: %w", snap.ID, ports.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to insert snapshot %s: %w: %w", snap.ID, ports.ErrUpdateFailed, err)
	}

	const insertTrade = `
	INSERT INTO snapshot_trades (snapshot_id, seq, trade_id, symbol, market_type, direction, order_type,
	                             entry_price, exit_price, quantity, pnl, pnl_percent, fees,
	                             entry_time, exit_time, duration_minutes, notes, tx_signature)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	tradeStmt, err := tx.PrepareContext(ctx, insertTrade)
	if err != nil {
		return fmt.Errorf("failed to prepare trade insert: %w: %w", ports.ErrUpdateFailed, err)
	}
	defer tradeStmt.Close()

	for i, t := range snap.Trades {
		if _, err = tradeStmt.ExecContext(ctx,
			snap.ID, i, t.ID, t.Symbol, string(t.MarketType), string(t.Direction), string(t.OrderType),
			t.EntryPrice, t.ExitPrice, t.Quantity, t.PnL, t.PnLPercent, t.Fees,
			t.EntryTime.UTC(), t.ExitTime.UTC(), t.DurationMinutes,
			nullString(t.Notes), nullString(t.TxSignature)); err != nil {
			return fmt.Errorf("failed to insert trade %s: %w: %w", t.ID, ports.ErrUpdateFailed, err)
		}
	}

	const insertOpen = `
	INSERT INTO snapshot_open_positions (snapshot_id, seq, tx_id, symbol, direction, market_type,
	                                     entry_price, quantity, fee, entry_time)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i, p := range snap.OpenPositions {
		if _, err = tx.ExecContext(ctx, insertOpen,
			snap.ID, i, nullString(p.TxID), p.Symbol, string(p.Direction), string(p.MarketType),
			p.EntryPrice, p.Quantity, p.Fee, p.EntryTime.UTC()); err != nil {
			return fmt.Errorf("failed to insert open position %s: %w: %w", p.Symbol, ports.ErrUpdateFailed, err)
		}
	}

	pruned, err := r.pruneSnapshots(ctx, tx)
	if err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot %s: %w: %w", snap.ID, ports.ErrUpdateFailed, err)
	}
	r.logger.Debug(ctx, "Snapshot saved", map[string]interface{}{
		"snapshotID": snap.ID,
		"trades":     len(snap.Trades),
		"open":       len(snap.OpenPositions),
		"pruned":     pruned,
	})
	return nil
}

// pruneSnapshots deletes every snapshot outside the newest r.retention, child rows first.
// It runs inside the save transaction so a failed prune rolls back the new snapshot too.
func (r *Repository) pruneSnapshots(ctx context.Context, tx *sql.Tx) (int64, error) {
	const kept = `SELECT id FROM snapshots ORDER BY generated_at DESC, rowid DESC LIMIT ?`
	statements := []string{
		`DELETE FROM snapshot_trades WHERE snapshot_id NOT IN (` + kept + `)`,
		`DELETE FROM snapshot_open_positions WHERE snapshot_id NOT IN (` + kept + `)`,
		`DELETE FROM snapshots WHERE id NOT IN (` + kept + `)`,
	}

	var pruned int64
	for _, stmt := range statements {
		res, err := tx.ExecContext(ctx, stmt, r.retention)
		if err != nil {
			return 0, fmt.Errorf("failed to prune old snapshots: %w: %w", ports.ErrUpdateFailed, err)
		}
		pruned, _ = res.RowsAffected() // The last statement counts snapshot headers
	}
	return pruned, nil
}

// LatestSnapshot loads the newest snapshot. Only the headline metrics are
// restored into Report; callers recompute the full report from Trades.
func (r *Repository) LatestSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	const query = `
	SELECT id, generated_at, event_count, unmatched_exits, total_trades,
	       total_pnl, win_rate, sharpe_ratio, max_drawdown, profit_factor
	FROM snapshots
	ORDER BY generated_at DESC, rowid DESC
	LIMIT 1`

	snap := &domain.Snapshot{}
	m := &snap.Report.Metrics
	var factor sql.NullFloat64
	err := r.db.QueryRowContext(ctx, query).Scan(
		&snap.ID, &snap.GeneratedAt, &snap.EventCount, &snap.UnmatchedExits, &m.TotalTrades,
		&m.TotalPnL, &m.WinRate, &m.SharpeRatio, &m.MaxDrawdown, &factor)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug(ctx, "No stored snapshot")
			return nil, ports.ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to query latest snapshot: %w: %w", ports.ErrQueryFailed, err)
	}
	m.ProfitFactor = decodeFactor(factor)

	snap.Trades, err = r.findTrades(ctx, snap.ID)
	if err != nil {
		return nil, err
	}
	snap.OpenPositions, err = r.findOpenPositions(ctx, snap.ID)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *Repository) findTrades(ctx context.Context, snapshotID string) ([]*domain.Trade, error) {
	const query = `
	SELECT trade_id, symbol, market_type, direction, order_type, entry_price, exit_price, quantity,
	       pnl, pnl_percent, fees, entry_time, exit_time, duration_minutes, notes, tx_signature
	FROM snapshot_trades
	WHERE snapshot_id = ?
	ORDER BY seq`

	rows, err := r.db.QueryContext(ctx, query, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades for snapshot %s: %w: %w", snapshotID, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade for snapshot %s: %w", snapshotID, err)
		}
		trades = append(trades, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

func (r *Repository) findOpenPositions(ctx context.Context, snapshotID string) ([]domain.OpenPosition, error) {
	const query = `
	SELECT tx_id, symbol, direction, market_type, entry_price, quantity, fee, entry_time
	FROM snapshot_open_positions
	WHERE snapshot_id = ?
	ORDER BY seq`

	rows, err := r.db.QueryContext(ctx, query, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query open positions for snapshot %s: %w: %w", snapshotID, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	open := make([]domain.OpenPosition, 0)
	for rows.Next() {
		var p domain.OpenPosition
		var txID sql.NullString
		var direction, marketType string
		if err := rows.Scan(&txID, &p.Symbol, &direction, &marketType,
			&p.EntryPrice, &p.Quantity, &p.Fee, &p.EntryTime); err != nil {
			return nil, fmt.Errorf("failed to scan open position for snapshot %s: %w", snapshotID, err)
		}
		p.TxID = txID.String
		p.Direction = domain.Direction(direction)
		p.MarketType = domain.MarketType(marketType)
		open = append(open, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating open position rows: %w", err)
	}
	return open, nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(s scanner) (*domain.Trade, error) {
	t := &domain.Trade{}
	var marketType, direction, orderType string
	var notes, txSignature sql.NullString
	err := s.Scan(
		&t.ID, &t.Symbol, &marketType, &direction, &orderType, &t.EntryPrice, &t.ExitPrice, &t.Quantity,
		&t.PnL, &t.PnLPercent, &t.Fees, &t.EntryTime, &t.ExitTime, &t.DurationMinutes, &notes, &txSignature)
	if err != nil {
		return nil, err
	}
	t.MarketType = domain.MarketType(marketType)
	t.Direction = domain.Direction(direction)
	t.OrderType = domain.OrderType(orderType)
	t.Notes = notes.String
	t.TxSignature = txSignature.String
	return t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func encodeFactor(f float64) sql.NullFloat64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

func decodeFactor(f sql.NullFloat64) float64 {
	if !f.Valid {
		return math.Inf(1)
	}
	return f.Float64
}
