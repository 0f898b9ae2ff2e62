package ports

import (
	"context"
	"mailroom-simulator/internal/domain"
)

// Port: a boundary for retrieving the mail schedule of a run.
type MailSource interface {
	// Retrieve every mail item of the run, each stamped with its arrival tick.
	ListMailItems(ctx context.Context) ([]*domain.MailItem, error)
}
