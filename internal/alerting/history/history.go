// Package history persists evaluation snapshots to Postgres for the
// administrative read surface. The daemon only ever writes here.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/novesfi/canton-sentinel/internal/alerting/evaluate"
	"github.com/novesfi/canton-sentinel/internal/alerting/state"
)

const schema = `
CREATE TABLE IF NOT EXISTS alert_snapshots (
    id            UUID PRIMARY KEY,
    family        TEXT NOT NULL,
    instance_idx  INT NOT NULL,
    taken_at      TIMESTAMPTZ NOT NULL,
    any_triggered BOOLEAN NOT NULL,
    payload       JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS alert_snapshots_identity_idx
    ON alert_snapshots (family, instance_idx, taken_at DESC);
`

// Writer appends snapshot rows. A nil Writer (or one without a DB) is a
// valid no-op, so callers need no persistence branching.
type Writer struct {
	db *sql.DB
}

// Open connects to the history database and ensures the schema.
func Open(dsn string) (*Writer, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure history schema: %w", err)
	}
	return &Writer{db: db}, nil
}

// NewWithDB wraps an existing handle; used in tests.
func NewWithDB(db *sql.DB) *Writer { return &Writer{db: db} }

func (w *Writer) Close() error {
	if w == nil || w.db == nil {
		return nil
	}
	return w.db.Close()
}

// Write appends one snapshot row for an instance's completed cycle.
func (w *Writer) Write(ctx context.Context, id state.InstanceID, snap *evaluate.Snapshot, anyTriggered bool) error {
	if w == nil || w.db == nil || snap == nil {
		return nil
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", id, err)
	}
	const q = `INSERT INTO alert_snapshots (id, family, instance_idx, taken_at, any_triggered, payload)
               VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := w.db.ExecContext(ctx, q, uuid.NewString(), id.Family, id.Index, snap.TakenAt, anyTriggered, payload); err != nil {
		return fmt.Errorf("insert snapshot %s: %w", id, err)
	}
	return nil
}

// Row is one stored snapshot, payload kept as raw JSON for the API.
type Row struct {
	ID           string          `json:"id"`
	Family       string          `json:"family"`
	InstanceIdx  int             `json:"instance_idx"`
	TakenAt      time.Time       `json:"taken_at"`
	AnyTriggered bool            `json:"any_triggered"`
	Payload      json.RawMessage `json:"payload"`
}

// Recent returns the newest rows for one instance identity.
func (w *Writer) Recent(ctx context.Context, family string, index, limit int) ([]Row, error) {
	if w == nil || w.db == nil {
		return []Row{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT id, family, instance_idx, taken_at, any_triggered, payload
               FROM alert_snapshots
               WHERE family = $1 AND instance_idx = $2
               ORDER BY taken_at DESC
               LIMIT $3`
	rows, err := w.db.QueryContext(ctx, q, family, index, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots %s/%d: %w", family, index, err)
	}
	defer rows.Close()
	out := make([]Row, 0, limit)
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.Family, &r.InstanceIdx, &r.TakenAt, &r.AnyTriggered, &r.Payload); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
