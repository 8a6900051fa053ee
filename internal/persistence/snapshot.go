package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"StableTreasury/internal/currency"
)

// StateSnapshot captures the treasury's pool state for warm restarts.
type StateSnapshot struct {
	DebitPool   uint64
	SurplusPool uint64
	Collaterals map[currency.Asset]uint64
	IsShutdown  bool
	Sequence    int64 // last event sequence covered by this snapshot
	CreatedAt   time.Time
}

// SnapshotManager saves and loads treasury state snapshots.
type SnapshotManager struct {
	db *sql.DB
}

func NewSnapshotManager(db *sql.DB) *SnapshotManager {
	return &SnapshotManager{db: db}
}

// Save writes a snapshot row. Pool amounts go through NUMERIC(20,0) to
// keep the unsigned range intact.
func (m *SnapshotManager) Save(ctx context.Context, snap StateSnapshot) error {
	collaterals, err := json.Marshal(snap.Collaterals)
	if err != nil {
		return fmt.Errorf("marshal collaterals: %w", err)
	}

	_, err = m.db.ExecContext(ctx, `
		INSERT INTO treasury_log.snapshots
			(debit_pool, surplus_pool, collaterals, is_shutdown, sequence, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())`,
		strconv.FormatUint(snap.DebitPool, 10),
		strconv.FormatUint(snap.SurplusPool, 10),
		collaterals,
		snap.IsShutdown,
		snap.Sequence,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// LoadLatest returns the most recent snapshot, or nil when none exists.
func (m *SnapshotManager) LoadLatest(ctx context.Context) (*StateSnapshot, error) {
	var (
		debitPool   string
		surplusPool string
		collaterals []byte
		snap        StateSnapshot
	)

	err := m.db.QueryRowContext(ctx, `
		SELECT debit_pool, surplus_pool, collaterals, is_shutdown, sequence, created_at
		FROM treasury_log.snapshots
		ORDER BY id DESC
		LIMIT 1`,
	).Scan(&debitPool, &surplusPool, &collaterals, &snap.IsShutdown, &snap.Sequence, &snap.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}

	if snap.DebitPool, err = strconv.ParseUint(debitPool, 10, 64); err != nil {
		return nil, fmt.Errorf("parse debit pool: %w", err)
	}
	if snap.SurplusPool, err = strconv.ParseUint(surplusPool, 10, 64); err != nil {
		return nil, fmt.Errorf("parse surplus pool: %w", err)
	}
	if err := json.Unmarshal(collaterals, &snap.Collaterals); err != nil {
		return nil, fmt.Errorf("unmarshal collaterals: %w", err)
	}

	return &snap, nil
}
