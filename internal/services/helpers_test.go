package services

import (
	"mailroom-simulator/internal/adapters/delivery"
	"mailroom-simulator/internal/domain"
	"mailroom-simulator/internal/platform/logging"
)

const testMailroom = 1

func newTestPool() *MailPool {
	return NewMailPool(domain.DefaultLoadLimit, logging.Discard())
}

func newTestRecorder() *delivery.Recorder {
	return delivery.NewRecorder(1.2, logging.Discard())
}

func newTestRobot(id string, kind domain.RobotType, pool Pool, sink *delivery.Recorder) *Robot {
	settings := domain.DefaultRobotSettings()[kind]
	return NewRobot(id, kind, settings, pool, sink, RobotOptions{
		MailroomFloor: testMailroom,
		Logger:        logging.Discard(),
	})
}

func mail(id string, arrival, floor, weight int) *domain.MailItem {
	return domain.NewMailItem(id, arrival, floor, weight, false)
}

func priorityMail(id string, arrival, floor, weight, level int) *domain.MailItem {
	return domain.NewPriorityMailItem(id, arrival, floor, weight, false, level)
}

func fragileMail(id string, arrival, floor int) *domain.MailItem {
	return domain.NewMailItem(id, arrival, floor, 100, true)
}

// popOrder empties a tube and returns ids in delivery order.
func popOrder(tube *domain.StorageTube) []string {
	var ids []string
	for !tube.IsEmpty() {
		item, _ := tube.Pop()
		ids = append(ids, item.ID)
	}
	return ids
}

func ids(items []*domain.MailItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}
