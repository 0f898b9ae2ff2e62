package services

import (
	"fmt"
	"mailroom-simulator/internal/domain"
	"mailroom-simulator/internal/ports"
)

// VerifyInvariants checks, at the end of tick, that every item that has
// arrived is in exactly one place (pending, a robot's tube, carried, or
// delivered) and that no tube is over capacity.
func VerifyInvariants(items []*domain.MailItem, tick int, automail *Automail, recorder ports.DeliveryRecorder) error {
	where := make(map[string][]string, len(items))

	priority, nonPriority := automail.Pool.Pending()
	for _, item := range append(priority, nonPriority...) {
		where[item.ID] = append(where[item.ID], "pending")
	}

	for _, r := range automail.Robots {
		tube := r.Tube()
		if tube.Size() > tube.Capacity() {
			return fmt.Errorf("verify invariants: robot %s tube holds %d items, capacity %d", r.ID(), tube.Size(), tube.Capacity())
		}
		for _, item := range tube.Items() {
			where[item.ID] = append(where[item.ID], "tube "+r.ID())
		}
		if item := r.Carrying(); item != nil {
			where[item.ID] = append(where[item.ID], "carried "+r.ID())
		}
	}

	for _, item := range items {
		if recorder.Delivered(item.ID) {
			where[item.ID] = append(where[item.ID], "delivered")
		}

		places := where[item.ID]
		switch {
		case len(places) > 1:
			return fmt.Errorf("verify invariants: item %s found in %v", item.ID, places)
		case len(places) == 0 && item.ArrivalTime <= tick:
			return fmt.Errorf("verify invariants: item %s arrived at %d but is nowhere at tick %d", item.ID, item.ArrivalTime, tick)
		case len(places) == 1 && item.ArrivalTime > tick:
			return fmt.Errorf("verify invariants: item %s seen at tick %d before its arrival at %d", item.ID, tick, item.ArrivalTime)
		}
	}
	return nil
}
