package domain

import (
	"math"
	"time"
)

// Represents one confirmed delivery of a mail item.
// Records are produced by the delivery sink when a robot reaches the item's
// destination floor, and are never modified afterwards.
type DeliveryRecord struct {
	ItemID        string
	DestFloor     int
	ArrivalTime   int
	DeliveredAt   int
	Weight        int
	Fragile       bool
	PriorityLevel int
	Score         float64
}

// Summary of a single simulation run.
// A RunReport is output data only; runs are never resumed from it.
type RunReport struct {
	RunID       string
	Seed        int64
	Robots      []string
	Ticks       int
	Generated   int
	Delivered   int
	TotalScore  float64
	StartedAt   time.Time
	FinishedAt  time.Time
	FailureKind string
}

// DeliveryScore weighs how late an item was delivered.
// Waiting time is raised to penalty and scaled by (1 + sqrt(priority)),
// so urgent mail that waits long dominates the total.
func DeliveryScore(deliveredAt int, item *MailItem, penalty float64) float64 {
	wait := float64(deliveredAt - item.ArrivalTime)
	if wait < 0 {
		wait = 0
	}

	priority := 0.0
	if item.IsPriority() {
		priority = float64(item.PriorityLevel)
	}

	return math.Pow(wait, penalty) * (1 + math.Sqrt(priority))
}
