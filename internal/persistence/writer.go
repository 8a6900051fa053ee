package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"StableTreasury/internal/event"

	"github.com/google/uuid"
)

// EventRow is a row in treasury_log.events. Amounts are stored as
// NUMERIC(20,0) so the full unsigned range survives the round trip.
type EventRow struct {
	Sequence  int64
	EventType string
	Asset     string
	Amount    uint64
	Aux       uint64
	AuctionID *string
	Timestamp time.Time
}

// EventLogWriter writes treasury events to Postgres using multi-row INSERT.
type EventLogWriter struct {
	db *sql.DB
}

func NewEventLogWriter(db *sql.DB) *EventLogWriter {
	return &EventLogWriter{db: db}
}

// RowFromEnvelope converts an event envelope to its storage row.
func RowFromEnvelope(env event.Envelope) EventRow {
	row := EventRow{
		Sequence:  env.Sequence,
		EventType: env.Event.Type.String(),
		Asset:     string(env.Event.Asset),
		Amount:    env.Event.Amount,
		Aux:       env.Event.Aux,
		Timestamp: env.Timestamp,
	}
	if env.Event.AuctionID != uuid.Nil {
		id := env.Event.AuctionID.String()
		row.AuctionID = &id
	}
	return row
}

// WriteEventBatch writes a batch of events inside the given transaction.
// Writes are idempotent on sequence so a retried flush cannot duplicate.
func (w *EventLogWriter) WriteEventBatch(ctx context.Context, tx *sql.Tx, events []EventRow) error {
	if len(events) == 0 {
		return nil
	}

	query := `INSERT INTO treasury_log.events
		(sequence, event_type, asset, amount, aux, auction_id, timestamp)
		VALUES `

	values := make([]string, 0, len(events))
	args := make([]interface{}, 0, len(events)*7)

	for i, e := range events {
		base := i * 7
		values = append(values, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
		))
		args = append(args,
			e.Sequence, e.EventType, e.Asset,
			strconv.FormatUint(e.Amount, 10), strconv.FormatUint(e.Aux, 10),
			e.AuctionID, e.Timestamp,
		)
	}

	query += strings.Join(values, ", ")
	query += " ON CONFLICT (sequence) DO NOTHING"

	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// LastSequence returns the highest sequence in the event log, or -1 when
// the log is empty.
func (w *EventLogWriter) LastSequence(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	err := w.db.QueryRowContext(ctx, `SELECT MAX(sequence) FROM treasury_log.events`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("query last sequence: %w", err)
	}
	if !seq.Valid {
		return -1, nil
	}
	return seq.Int64, nil
}
