package delivery

import (
	"fmt"
	"log/slog"
	"mailroom-simulator/internal/domain"
	"sync"
)

// Recorder is an in-memory delivery sink.
// It scores each delivery and remembers the delivered set so a second
// delivery of the same item is reported as a consistency violation.
type Recorder struct {
	mu        sync.Mutex
	penalty   float64
	delivered map[string]struct{}
	records   []domain.DeliveryRecord
	err       error
	logger    *slog.Logger
}

func NewRecorder(penalty float64, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		penalty:   penalty,
		delivered: make(map[string]struct{}),
		logger:    logger,
	}
}

func (r *Recorder) Deliver(tick int, item *domain.MailItem) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.delivered[item.ID]; dup {
		if r.err == nil {
			r.err = fmt.Errorf("deliver item %s at tick %d: %w", item.ID, tick, domain.ErrDuplicateDelivery)
		}
		r.logger.Error("duplicate delivery", "tick", tick, "item", item.ID)
		return
	}
	r.delivered[item.ID] = struct{}{}

	rec := domain.DeliveryRecord{
		ItemID:        item.ID,
		DestFloor:     item.DestFloor,
		ArrivalTime:   item.ArrivalTime,
		DeliveredAt:   tick,
		Weight:        item.Weight,
		Fragile:       item.Fragile,
		PriorityLevel: item.PriorityLevel,
		Score:         domain.DeliveryScore(tick, item, r.penalty),
	}
	r.records = append(r.records, rec)

	r.logger.Info("delivered", "tick", tick, "item", item.String())
}

func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.delivered)
}

func (r *Recorder) Delivered(itemID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.delivered[itemID]
	return ok
}

func (r *Recorder) Records() []domain.DeliveryRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.DeliveryRecord, len(r.records))
	copy(out, r.records)
	return out
}

func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
