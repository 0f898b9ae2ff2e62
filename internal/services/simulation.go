package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mailroom-simulator/internal/domain"
	"mailroom-simulator/internal/ports"
	"slices"
	"time"
)

type SimulationRequest struct {
	RunID    string
	Seed     int64
	MaxTicks int
	// Check item conservation and tube capacity after every tick.
	VerifyInvariants bool
}

// RunSimulation drives the clock until every scheduled item has been delivered.
//
// Each tick adds the items arriving at that tick to the pool, then steps the
// pool and every robot. A fault stops the run; the partial report is returned
// alongside the error so the caller can still record it.
func RunSimulation(
	ctx context.Context,
	req SimulationRequest,
	automail *Automail,
	source ports.MailSource,
	recorder ports.DeliveryRecorder,
	logger *slog.Logger,
) (*domain.RunReport, error) {
	if automail == nil {
		return nil, errors.New("run simulation: automail must be non-nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	items, err := source.ListMailItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("run simulation: list mail items: %w", err)
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("run simulation: duplicate mail item id %q", item.ID)
		}
		seen[item.ID] = struct{}{}
	}

	schedule := slices.Clone(items)
	slices.SortStableFunc(schedule, func(a, b *domain.MailItem) int {
		return a.ArrivalTime - b.ArrivalTime
	})

	report := &domain.RunReport{
		RunID:     req.RunID,
		Seed:      req.Seed,
		Robots:    automail.RobotNames(),
		Generated: len(schedule),
		StartedAt: time.Now().UTC(),
	}
	finish := func(tick int, runErr error) (*domain.RunReport, error) {
		report.Ticks = tick
		report.Delivered = recorder.Count()
		report.TotalScore = 0
		for _, rec := range recorder.Records() {
			report.TotalScore += rec.Score
		}
		report.FinishedAt = time.Now().UTC()
		if runErr != nil {
			report.FailureKind = failureKind(runErr)
		}
		return report, runErr
	}

	logger.Info("simulation started", "run_id", req.RunID, "items", len(schedule), "robots", len(automail.Robots))

	next := 0
	for tick := 1; ; tick++ {
		if err := ctx.Err(); err != nil {
			return finish(tick-1, fmt.Errorf("run simulation: %w", err))
		}

		for next < len(schedule) && schedule[next].ArrivalTime <= tick {
			automail.Pool.AddToPool(schedule[next])
			logger.Debug("mail arrived", "tick", tick, "item", schedule[next].String())
			next++
		}

		if err := automail.Step(tick); err != nil {
			logger.Error("simulation fault", "tick", tick, "err", err)
			return finish(tick, fmt.Errorf("run simulation: %w", err))
		}
		if err := recorder.Err(); err != nil {
			return finish(tick, fmt.Errorf("run simulation: tick %d: %w", tick, err))
		}
		if req.VerifyInvariants {
			if err := VerifyInvariants(items, tick, automail, recorder); err != nil {
				return finish(tick, fmt.Errorf("run simulation: tick %d: %w", tick, err))
			}
		}

		if next == len(schedule) && recorder.Count() == len(schedule) {
			logger.Info("simulation finished", "run_id", req.RunID, "ticks", tick, "delivered", recorder.Count())
			return finish(tick, nil)
		}
		if req.MaxTicks > 0 && tick >= req.MaxTicks {
			return finish(tick, fmt.Errorf("run simulation: %d of %d delivered after %d ticks: %w",
				recorder.Count(), len(schedule), tick, domain.ErrTickLimit))
		}
	}
}

func failureKind(err error) string {
	for _, kind := range []error{
		domain.ErrTubeFull,
		domain.ErrFragileItemBroken,
		domain.ErrItemTooHeavy,
		domain.ErrExcessiveDelivery,
		domain.ErrDuplicateDelivery,
		domain.ErrTickLimit,
		context.Canceled,
		context.DeadlineExceeded,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return err.Error()
}
