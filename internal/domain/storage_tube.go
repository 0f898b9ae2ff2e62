package domain

import "fmt"

// Bounded last-in-first-out container owned by exactly one robot.
// The most recently pushed item is the first one popped.
type StorageTube struct {
	capacity int
	items    []*MailItem
}

func NewStorageTube(capacity int) *StorageTube {
	return &StorageTube{
		capacity: capacity,
		items:    make([]*MailItem, 0, capacity),
	}
}

// Push a single item onto the tube.
// Fails without mutating the tube if it is already full.
func (t *StorageTube) Push(item *MailItem) error {
	if len(t.items) >= t.capacity {
		return fmt.Errorf("push item %s: %w (capacity=%d)", item.ID, ErrTubeFull, t.capacity)
	}
	t.items = append(t.items, item)
	return nil
}

// Pop removes and returns the most recently pushed item.
func (t *StorageTube) Pop() (*MailItem, error) {
	if len(t.items) == 0 {
		return nil, fmt.Errorf("pop item: %w", ErrTubeEmpty)
	}
	last := len(t.items) - 1
	item := t.items[last]
	t.items[last] = nil
	t.items = t.items[:last]
	return item, nil
}

// Peek returns the most recently pushed item without removing it.
func (t *StorageTube) Peek() (*MailItem, error) {
	if len(t.items) == 0 {
		return nil, fmt.Errorf("peek item: %w", ErrTubeEmpty)
	}
	return t.items[len(t.items)-1], nil
}

func (t *StorageTube) IsEmpty() bool { return len(t.items) == 0 }

func (t *StorageTube) Size() int { return len(t.items) }

func (t *StorageTube) Capacity() int { return t.capacity }

// Free returns how many more items fit.
func (t *StorageTube) Free() int { return t.capacity - len(t.items) }

// Items returns a copy of the tube contents, bottom first.
func (t *StorageTube) Items() []*MailItem {
	out := make([]*MailItem, len(t.items))
	copy(out, t.items)
	return out
}
