package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"evt/pkg/evt"
	"evt/pkg/types"
)

// Journal appends deliveries to a SQLite database.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// OpenJournal opens (or creates) the journal database at path.
func OpenJournal(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)
	j := &Journal{db: db, now: time.Now}
	if err := j.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return j, nil
}

func (j *Journal) Close() error { return j.db.Close() }

func (j *Journal) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS deliveries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event TEXT NOT NULL,
			label TEXT NOT NULL,
			args_json TEXT NOT NULL,
			at_unix_nano INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_event ON deliveries(event);`,
	}
	for _, stmt := range stmts {
		if _, err := j.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record appends one delivery.
func (j *Journal) Record(ctx context.Context, d types.Delivery) error {
	args := d.Args
	if args == nil {
		args = []any{}
	}
	b, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode args: %w", err)
	}
	if d.AtUnixNano == 0 {
		d.AtUnixNano = j.now().UnixNano()
	}
	_, err = j.db.ExecContext(ctx,
		`INSERT INTO deliveries (event, label, args_json, at_unix_nano) VALUES (?, ?, ?, ?)`,
		d.Event, d.Label, string(b), d.AtUnixNano)
	return err
}

// Recent returns up to n deliveries, newest first. An empty event matches
// every event.
func (j *Journal) Recent(ctx context.Context, event string, n int) ([]types.Delivery, error) {
	if n <= 0 {
		n = 50
	}
	q := `SELECT event, label, args_json, at_unix_nano FROM deliveries`
	params := []any{}
	if event != "" {
		q += ` WHERE event = ?`
		params = append(params, event)
	}
	q += ` ORDER BY id DESC LIMIT ?`
	params = append(params, n)

	rows, err := j.db.QueryContext(ctx, q, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []types.Delivery{}
	for rows.Next() {
		var (
			d    types.Delivery
			args string
		)
		if err := rows.Scan(&d.Event, &d.Label, &args, &d.AtUnixNano); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(args), &d.Args); err != nil {
			return nil, fmt.Errorf("decode args: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (j *Journal) handler(log zerolog.Logger) evt.Handler {
	return func(recv any, args ...any) {
		r := receiverOf(recv)
		d := types.Delivery{Event: r.Event, Label: r.Label, Args: args}
		if err := j.Record(context.Background(), d); err != nil {
			log.Error().Err(err).Str("event", r.Event).Str("sink", r.Label).Msg("journal write failed")
		}
	}
}
