package ports

import (
	"context"
	"mailroom-simulator/internal/domain"
)

// Port: a boundary for persisting the outcome of a simulation run.
type ReportRepository interface {
	// Store a run summary with its delivery records.
	SaveReport(ctx context.Context, report *domain.RunReport, records []domain.DeliveryRecord) error
	// Return the delivery records of a stored run, in delivery order.
	ListDeliveries(ctx context.Context, runID string) ([]domain.DeliveryRecord, error)
}
