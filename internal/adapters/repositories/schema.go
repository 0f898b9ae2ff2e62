package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"mailroom-simulator/internal/platform/db"
	"os"
	"strings"
)

// Initialize the database schema. The DDL is valid for SQLite and Postgres.
func InitSchema(ctx context.Context, conn *sql.DB) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createMailItemsQuery := `
	CREATE TABLE IF NOT EXISTS mail_items (
		item_id TEXT PRIMARY KEY,
		arrival_time INTEGER NOT NULL,
		dest_floor INTEGER NOT NULL,
		weight INTEGER NOT NULL,
		fragile BOOLEAN NOT NULL DEFAULT FALSE,
		priority_level INTEGER
	);
	`

	createRunsQuery := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		seed BIGINT NOT NULL,
		robots TEXT NOT NULL,
		ticks INTEGER NOT NULL,
		generated INTEGER NOT NULL,
		delivered INTEGER NOT NULL,
		total_score DOUBLE PRECISION NOT NULL,
		started_at BIGINT NOT NULL,
		finished_at BIGINT NOT NULL,
		failure_kind TEXT NOT NULL DEFAULT ''
	);
	`

	createDeliveriesQuery := `
	CREATE TABLE IF NOT EXISTS deliveries (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		item_id TEXT NOT NULL,
		dest_floor INTEGER NOT NULL,
		arrival_time INTEGER NOT NULL,
		delivered_at INTEGER NOT NULL,
		weight INTEGER NOT NULL,
		fragile BOOLEAN NOT NULL,
		priority_level INTEGER NOT NULL,
		score DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (run_id, seq)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_deliveries_run_item
	ON deliveries(run_id, item_id);
	`

	statements := []string{
		createMailItemsQuery,
		createRunsQuery,
		createDeliveriesQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type MailSeed struct {
	ItemID        string `json:"item_id"`
	ArrivalTime   int    `json:"arrival_time"`
	DestFloor     int    `json:"dest_floor"`
	Weight        int    `json:"weight"`
	Fragile       bool   `json:"fragile"`
	PriorityLevel *int   `json:"priority_level"`
}

// Populate the mail schedule from a JSON file.
// Items without priority_level are ordinary mail.
func SeedFromJSON(ctx context.Context, conn *sql.DB, dialect db.Dialect, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed mail: read %q: %w", jsonPath, err)
	}

	var data []MailSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed mail: parse json: %w", err)
	}

	return SeedMail(ctx, conn, dialect, data)
}

// Insert or replace the given mail schedule rows.
func SeedMail(ctx context.Context, conn *sql.DB, dialect db.Dialect, data []MailSeed) error {
	rows := make([]MailSeed, 0, len(data))
	for i, item := range data {
		id := strings.TrimSpace(item.ItemID)
		if id == "" {
			return fmt.Errorf("seed mail: item at index %d: item_id cannot be empty", i+1)
		}
		if item.Weight < 0 {
			return fmt.Errorf("seed mail: item %q: weight must be >= 0, got %d", id, item.Weight)
		}
		item.ItemID = id
		rows = append(rows, item)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed mail: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := dialect.Rebind(`
	INSERT INTO mail_items (
		item_id,
		arrival_time,
		dest_floor,
		weight,
		fragile,
		priority_level
	)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (item_id) DO UPDATE
	SET arrival_time = excluded.arrival_time,
		dest_floor = excluded.dest_floor,
		weight = excluded.weight,
		fragile = excluded.fragile,
		priority_level = excluded.priority_level;
	`)
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("seed mail: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range rows {
		var level sql.NullInt64
		if m.PriorityLevel != nil {
			level = sql.NullInt64{Int64: int64(*m.PriorityLevel), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, m.ItemID, m.ArrivalTime, m.DestFloor, m.Weight, m.Fragile, level); err != nil {
			return fmt.Errorf("seed mail: insert item_id=%s: %w", m.ItemID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed mail: commit tx: %w", err)
	}

	return nil
}
