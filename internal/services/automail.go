package services

import (
	"errors"
	"fmt"
	"log/slog"
	"mailroom-simulator/internal/domain"
	"mailroom-simulator/internal/ports"
)

// Automail owns the robot roster. Every robot shares one mail pool and one
// delivery sink.
type Automail struct {
	Pool   *MailPool
	Robots []*Robot
}

type AutomailRequest struct {
	Types         []domain.RobotType
	Settings      domain.RobotSettingsTable
	MailroomFloor int
	MaxDeliveries int
}

// NewAutomail builds one robot per configured type, in order.
// Robot ids are assigned monotonically: R0, R1, ...
func NewAutomail(req AutomailRequest, pool *MailPool, sink ports.DeliverySink, logger *slog.Logger) (*Automail, error) {
	if len(req.Types) == 0 {
		return nil, errors.New("new automail: robot type list must not be empty")
	}
	if pool == nil {
		return nil, errors.New("new automail: mail pool must be non-nil")
	}
	if sink == nil {
		return nil, errors.New("new automail: delivery sink must be non-nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	settings := req.Settings
	if settings == nil {
		settings = domain.DefaultRobotSettings()
	}

	robots := make([]*Robot, 0, len(req.Types))
	for i, kind := range req.Types {
		s, err := settings.Lookup(kind)
		if err != nil {
			return nil, fmt.Errorf("new automail: robot %d: %w", i, err)
		}
		if s.Capacity < 1 {
			return nil, fmt.Errorf("new automail: robot %d (%v): capacity must be positive, got %d", i, kind, s.Capacity)
		}

		id := fmt.Sprintf("R%d", i)
		robots = append(robots, NewRobot(id, kind, s, pool, sink, RobotOptions{
			MailroomFloor: req.MailroomFloor,
			MaxDeliveries: req.MaxDeliveries,
			Logger:        logger.With("robot_type", kind.String()),
		}))
	}

	return &Automail{Pool: pool, Robots: robots}, nil
}

// Step runs one tick: the pool first, so dispatches made this tick are seen by
// the robots in the same tick, then every robot in roster order.
func (a *Automail) Step(tick int) error {
	if err := a.Pool.Step(tick); err != nil {
		return fmt.Errorf("automail step %d: %w", tick, err)
	}
	for _, r := range a.Robots {
		if err := r.Step(tick); err != nil {
			return fmt.Errorf("automail step %d: %w", tick, err)
		}
	}
	return nil
}

// RobotNames lists the roster as "R0:Standard" entries.
func (a *Automail) RobotNames() []string {
	names := make([]string, 0, len(a.Robots))
	for _, r := range a.Robots {
		names = append(names, r.ID()+":"+r.Type().String())
	}
	return names
}
