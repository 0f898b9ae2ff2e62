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

// SQLReportRepository is a Postgres-backed ReportRepository (pgx driver).
type SQLReportRepository struct {
	DB *sql.DB
}

func NewSQLReportRepository(db *sql.DB) *SQLReportRepository {
	return &SQLReportRepository{DB: db}
}

// Store a run and its deliveries, replacing any earlier copy of the run.
func (s *SQLReportRepository) SaveReport(
	ctx context.Context,
	report *domain.RunReport,
	records []domain.DeliveryRecord,
) (err error) {
	defer obs.Time(ctx, "report.postgres.SaveReport")(&err)

	if s.DB == nil {
		return errors.New("report repository: db is nil")
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
	INSERT INTO runs (
		run_id, seed, robots, ticks, generated, delivered,
		total_score, started_at, finished_at, failure_kind
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (run_id) DO UPDATE
	SET seed = EXCLUDED.seed,
		robots = EXCLUDED.robots,
		ticks = EXCLUDED.ticks,
		generated = EXCLUDED.generated,
		delivered = EXCLUDED.delivered,
		total_score = EXCLUDED.total_score,
		started_at = EXCLUDED.started_at,
		finished_at = EXCLUDED.finished_at,
		failure_kind = EXCLUDED.failure_kind;
	`,
		report.RunID, report.Seed, strings.Join(report.Robots, ","), report.Ticks,
		report.Generated, report.Delivered, report.TotalScore,
		report.StartedAt.UnixMilli(), report.FinishedAt.UnixMilli(), report.FailureKind,
	)
	if err != nil {
		return fmt.Errorf("save report: insert run %s: %w", report.RunID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM deliveries WHERE run_id = $1;`, report.RunID); err != nil {
		return fmt.Errorf("save report: clear deliveries of run %s: %w", report.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO deliveries (
		run_id, seq, item_id, dest_floor, arrival_time, delivered_at,
		weight, fragile, priority_level, score
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
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
func (s *SQLReportRepository) ListDeliveries(ctx context.Context, runID string) (_ []domain.DeliveryRecord, err error) {
	defer obs.Time(ctx, "report.postgres.ListDeliveries")(&err)

	if s.DB == nil {
		return nil, errors.New("report repository: db is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT item_id, dest_floor, arrival_time, delivered_at, weight, fragile, priority_level, score
	FROM deliveries
	WHERE run_id = $1
	ORDER BY seq;
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: query deliveries table: %w", err)
	}
	defer rows.Close()

	return scanDeliveries(rows)
}
