package domain

import (
	"errors"
	"fmt"
)

// Fault kinds raised by robots, tubes and the mail pool. They mark invariant
// violations and are never retried.
var (
	ErrTubeFull          = errors.New("storage tube at full capacity")
	ErrTubeEmpty         = errors.New("storage tube is empty")
	ErrFragileItemBroken = errors.New("fragile item broken")
	ErrItemTooHeavy      = errors.New("item too heavy")
	ErrExcessiveDelivery = errors.New("excessive deliveries in one load")
	ErrDuplicateDelivery = errors.New("mail item already delivered")
	ErrTickLimit         = errors.New("tick limit reached before all mail was delivered")
	ErrUnknownRobotType  = errors.New("unknown robot type")
)

// Fault ties a fault kind to the robot, tick and item where it was detected.
type Fault struct {
	Kind    error
	RobotID string
	Tick    int
	ItemID  string
}

func (f *Fault) Error() string {
	if f.ItemID != "" {
		return fmt.Sprintf("robot %s at tick %d: %v (item %s)", f.RobotID, f.Tick, f.Kind, f.ItemID)
	}
	return fmt.Sprintf("robot %s at tick %d: %v", f.RobotID, f.Tick, f.Kind)
}

func (f *Fault) Unwrap() error { return f.Kind }
