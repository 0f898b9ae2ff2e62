package reports

import (
	"context"
	"fmt"
	"mailroom-simulator/internal/domain"
	"mailroom-simulator/internal/ports"

	"golang.org/x/sync/errgroup"
)

// Named pairs a repository with the backend name used in errors.
type Named struct {
	Name string
	Repo ports.ReportRepository
}

// SaveAll writes the report to every backend concurrently and returns the
// first failure. Backends that succeeded keep their copy.
func SaveAll(ctx context.Context, backends []Named, report *domain.RunReport, records []domain.DeliveryRecord) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(5)

	for _, b := range backends {
		g.Go(func() error {
			if err := b.Repo.SaveReport(ctx, report, records); err != nil {
				return fmt.Errorf("save report to %s: %w", b.Name, err)
			}
			return nil
		})
	}

	return g.Wait()
}
