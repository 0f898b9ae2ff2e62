package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mailroom-simulator/internal/domain"
	"mailroom-simulator/internal/platform/obs"
	"strings"
)

// SQLite-backed implementation of the ReportRepository port.
type SqliteReportRepository struct {
	DB *sql.DB
}

func NewSqliteReportRepository(db *sql.DB) *SqliteReportRepository {
	return &SqliteReportRepository{DB: db}
}

// Store a run and its deliveries, replacing any earlier copy of the run.
func (s *SqliteReportRepository) SaveReport(
	ctx context.Context,
	report *domain.RunReport,
	records []domain.DeliveryRecord,
) (err error) {
	defer obs.Time(ctx, "report.sqlite.SaveReport")(&err)

	if s.DB == nil {
		return errors.New("sqlite report repository: db is nil")
	}
	if report == nil || report.RunID == "" {
		return errors.New("save report: run id must not be empty")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save report: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT OR REPLACE INTO runs (
		run_id, seed, robots, ticks, generated, delivered,
		total_score, started_at, finished_at, failure_kind
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`,
		report.RunID, report.Seed, strings.Join(report.Robots, ","), report.Ticks,
		report.Generated, report.Delivered, report.TotalScore,
		report.StartedAt.UnixMilli(), report.FinishedAt.UnixMilli(), report.FailureKind,
	)
	if err != nil {
		return fmt.Errorf("save report: insert run %s: %w", report.RunID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM deliveries WHERE run_id = ?;`, report.RunID); err != nil {
		return fmt.Errorf("save report: clear deliveries of run %s: %w", report.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO deliveries (
		run_id, seq, item_id, dest_floor, arrival_time, delivered_at,
		weight, fragile, priority_level, score
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("save report: db prepare: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx,
			report.RunID, i, r.ItemID, r.DestFloor, r.ArrivalTime, r.DeliveredAt,
			r.Weight, r.Fragile, r.PriorityLevel, r.Score,
		); err != nil {
			return fmt.Errorf("save report: insert delivery item=%s: %w", r.ItemID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save report: commit: %w", err)
	}
	return nil
}

// Return the deliveries of one run in delivery order.
func (s *SqliteReportRepository) ListDeliveries(ctx context.Context, runID string) (_ []domain.DeliveryRecord, err error) {
	defer obs.Time(ctx, "report.sqlite.ListDeliveries")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite report repository: db is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT item_id, dest_floor, arrival_time, delivered_at, weight, fragile, priority_level, score
	FROM deliveries
	WHERE run_id = ?
	ORDER BY seq;
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: query deliveries table: %w", err)
	}
	defer rows.Close()

	return scanDeliveries(rows)
}

func scanDeliveries(rows *sql.Rows) ([]domain.DeliveryRecord, error) {
	out := make([]domain.DeliveryRecord, 0, 64)
	for rows.Next() {
		var r domain.DeliveryRecord
		if err := rows.Scan(
			&r.ItemID, &r.DestFloor, &r.ArrivalTime, &r.DeliveredAt,
			&r.Weight, &r.Fragile, &r.PriorityLevel, &r.Score,
		); err != nil {
			return nil, fmt.Errorf("list deliveries: scan rows: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list deliveries: row iteration: %w", err)
	}
	return out, nil
}
