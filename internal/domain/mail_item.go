package domain

import "fmt"

// Represents a single piece of mail handled by the mailroom.
// A MailItem is immutable once created: it arrives at a given tick, is bound
// for a single floor, and carries a weight and a fragile flag.
//
// Priority mail is the same type with IsPriority set and a PriorityLevel
// (higher is more urgent); it is interchangeable wherever a MailItem is expected.
type MailItem struct {
	ID            string
	ArrivalTime   int
	DestFloor     int
	Weight        int
	Fragile       bool
	PriorityLevel int
	priority      bool
}

func NewMailItem(id string, arrival, destFloor, weight int, fragile bool) *MailItem {
	return &MailItem{
		ID:          id,
		ArrivalTime: arrival,
		DestFloor:   destFloor,
		Weight:      weight,
		Fragile:     fragile,
	}
}

func NewPriorityMailItem(id string, arrival, destFloor, weight int, fragile bool, level int) *MailItem {
	item := NewMailItem(id, arrival, destFloor, weight, fragile)
	item.priority = true
	item.PriorityLevel = level
	return item
}

// IsPriority reports whether the item was created as priority mail.
func (m *MailItem) IsPriority() bool { return m.priority }

func (m *MailItem) String() string {
	s := fmt.Sprintf("Mail Item:: ID: %6s | Arrival: %4d | Destination: %2d | Weight: %4d", m.ID, m.ArrivalTime, m.DestFloor, m.Weight)
	if m.Fragile {
		s += " | Fragile"
	}
	if m.priority {
		s += fmt.Sprintf(" | Priority: %3d", m.PriorityLevel)
	}
	return s
}
