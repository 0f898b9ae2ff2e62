package ports

import "mailroom-simulator/internal/domain"

// Contract called by a robot when it reaches an item's destination floor.
// Called exactly once per item; it does not fail from the robot's perspective.
type DeliverySink interface {
	Deliver(tick int, item *domain.MailItem)
}

// DeliverySink that also keeps the delivered set for the simulation driver.
type DeliveryRecorder interface {
	DeliverySink
	// Number of distinct items delivered so far.
	Count() int
	// Whether an item has been delivered.
	Delivered(itemID string) bool
	// Records in delivery order.
	Records() []domain.DeliveryRecord
	// First consistency violation seen by the sink, if any.
	Err() error
}
