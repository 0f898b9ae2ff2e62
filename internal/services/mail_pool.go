package services

import (
	"fmt"
	"log/slog"
	"mailroom-simulator/internal/domain"
	"slices"
	"sync"
)

type readiness int

const (
	robotUnavailable readiness = iota
	robotWaiting
)

// MailPool holds mail not yet assigned to a robot and loads waiting robots.
//
// Selection per waiting robot:
//   - A strong robot takes everything when all pending mail fits in one load.
//   - Otherwise priority mail is taken first, highest level then earliest
//     arrival, and the load is topped up with non-priority mail by arrival.
//   - Items the robot cannot carry (too heavy, or fragile for a robot that is
//     not fragile-safe) are skipped and stay pending.
//
// Every exported method is serialized by a mutex; the simulation itself is
// single-threaded.
type MailPool struct {
	mu          sync.Mutex
	priority    pendingQueue
	nonPriority pendingQueue
	robots      map[*Robot]readiness
	order       []*Robot
	loadLimit   int
	logger      *slog.Logger
}

func NewMailPool(loadLimit int, logger *slog.Logger) *MailPool {
	if loadLimit <= 0 {
		loadLimit = domain.DefaultLoadLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MailPool{
		robots:    make(map[*Robot]readiness),
		loadLimit: loadLimit,
		logger:    logger,
	}
}

// AddToPool queues a newly arrived or returned item in its ordered collection.
func (p *MailPool) AddToPool(item *domain.MailItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enqueue(item)
}

// RegisterWaiting marks a robot ready for a new load.
func (p *MailPool) RegisterWaiting(r *Robot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setReadiness(r, robotWaiting)
}

// DeregisterWaiting marks a robot unavailable.
func (p *MailPool) DeregisterWaiting(r *Robot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setReadiness(r, robotUnavailable)
}

func (p *MailPool) setReadiness(r *Robot, state readiness) {
	if _, known := p.robots[r]; !known {
		p.order = append(p.order, r)
	}
	p.robots[r] = state
}

// IsWaiting reports whether the pool considers the robot ready for a load.
func (p *MailPool) IsWaiting(r *Robot) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.robots[r] == robotWaiting
}

// Step loads every waiting robot. Larger tubes are served first, then robots
// in the order they first registered.
// A robot with nothing it can carry stays waiting.
func (p *MailPool) Step(tick int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	waiting := make([]*Robot, 0, len(p.order))
	for _, r := range p.order {
		if p.robots[r] == robotWaiting {
			waiting = append(waiting, r)
		}
	}
	if len(waiting) == 0 {
		return nil
	}
	slices.SortStableFunc(waiting, func(a, b *Robot) int {
		return b.tube.Capacity() - a.tube.Capacity()
	})

	for _, r := range waiting {
		selected := p.selectFor(r)
		if len(selected) == 0 {
			continue
		}

		if err := r.load(tick, selected); err != nil {
			for _, item := range selected {
				p.enqueue(item)
			}
			return fmt.Errorf("mail pool: fill storage tube: %w", err)
		}

		p.robots[r] = robotUnavailable
		r.Dispatch()

		ids := make([]string, 0, len(selected))
		for _, item := range selected {
			ids = append(ids, item.ID)
		}
		p.logger.Info("robot dispatched", "tick", tick, "robot", r.idTube(), "items", ids)
	}

	return nil
}

// selectFor removes and returns the load for one robot, in delivery order.
func (p *MailPool) selectFor(r *Robot) []*domain.MailItem {
	limit := min(p.loadLimit, r.tube.Free())
	if limit <= 0 {
		return nil
	}

	total := p.priority.size() + p.nonPriority.size()
	if r.settings.Strong() && total <= limit && p.priority.all(r.accepts) && p.nonPriority.all(r.accepts) {
		selected := p.priority.drain()
		return append(selected, p.nonPriority.drain()...)
	}

	selected := p.priority.take(limit, r.accepts)
	if len(selected) < limit {
		selected = append(selected, p.nonPriority.take(limit-len(selected), r.accepts)...)
	}
	return selected
}

func (p *MailPool) enqueue(item *domain.MailItem) {
	if item.IsPriority() {
		p.priority.insert(item)
		return
	}
	p.nonPriority.insert(item)
}

// Pending returns a snapshot of the priority and non-priority collections.
func (p *MailPool) Pending() (priority, nonPriority []*domain.MailItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.priority.snapshot(), p.nonPriority.snapshot()
}

// PendingCount returns the number of items not assigned to any robot.
func (p *MailPool) PendingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.priority.size() + p.nonPriority.size()
}
