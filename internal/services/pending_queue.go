package services

import (
	"mailroom-simulator/internal/domain"
	"slices"
	"strings"
)

// pendingQueue keeps mail items ordered for selection: higher priority level
// first (priority mail only), then earlier arrival, then item id.
// Inserts use binary search so the queue is never fully re-sorted.
type pendingQueue struct {
	items []*domain.MailItem
}

func compareMail(a, b *domain.MailItem) int {
	if a.IsPriority() && b.IsPriority() && a.PriorityLevel != b.PriorityLevel {
		// Descending priority level.
		return b.PriorityLevel - a.PriorityLevel
	}
	if a.ArrivalTime != b.ArrivalTime {
		return a.ArrivalTime - b.ArrivalTime
	}
	return strings.Compare(a.ID, b.ID)
}

func (q *pendingQueue) insert(item *domain.MailItem) {
	i, _ := slices.BinarySearchFunc(q.items, item, compareMail)
	q.items = slices.Insert(q.items, i, item)
}

func (q *pendingQueue) size() int { return len(q.items) }

// all reports whether every queued item satisfies ok.
func (q *pendingQueue) all(ok func(*domain.MailItem) bool) bool {
	for _, item := range q.items {
		if !ok(item) {
			return false
		}
	}
	return true
}

// take removes and returns up to n items, in queue order, that satisfy ok.
// Skipped items keep their position.
func (q *pendingQueue) take(n int, ok func(*domain.MailItem) bool) []*domain.MailItem {
	if n <= 0 {
		return nil
	}

	taken := make([]*domain.MailItem, 0, n)
	kept := q.items[:0]
	for _, item := range q.items {
		if len(taken) < n && ok(item) {
			taken = append(taken, item)
			continue
		}
		kept = append(kept, item)
	}
	clear(q.items[len(kept):])
	q.items = kept
	return taken
}

// drain removes and returns every item in queue order.
func (q *pendingQueue) drain() []*domain.MailItem {
	out := q.items
	q.items = nil
	return out
}

func (q *pendingQueue) snapshot() []*domain.MailItem {
	return slices.Clone(q.items)
}
