package services

import (
	"fmt"
	"log/slog"
	"mailroom-simulator/internal/domain"
	"mailroom-simulator/internal/ports"
)

// RobotState is the position of a robot in its delivery cycle.
type RobotState int

const (
	StateReturning RobotState = iota
	StateWaiting
	StateDelivering
)

func (s RobotState) String() string {
	switch s {
	case StateReturning:
		return "RETURNING"
	case StateWaiting:
		return "WAITING"
	case StateDelivering:
		return "DELIVERING"
	default:
		return fmt.Sprintf("RobotState(%d)", int(s))
	}
}

// Pool is the part of the mail pool a robot talks to on its own behalf.
type Pool interface {
	AddToPool(item *domain.MailItem)
	RegisterWaiting(r *Robot)
	DeregisterWaiting(r *Robot)
}

// Robot delivers mail between the mailroom and destination floors.
//
// The variant (Standard, Big, Careful, Weak) is fixed at construction and only
// selects a RobotSettings entry: tube capacity, weight limit, movement cadence
// and fragile handling. The state machine is shared by every variant.
type Robot struct {
	id       string
	kind     domain.RobotType
	settings domain.RobotSettings
	tube     *domain.StorageTube

	pool   Pool
	sink   ports.DeliverySink
	logger *slog.Logger

	mailroomFloor   int
	maxDeliveries   int
	state           RobotState
	currentFloor    int
	destFloor       int
	dispatched      bool
	deliveryItem    *domain.MailItem
	deliveryCounter int
	moveProgress    int
}

type RobotOptions struct {
	MailroomFloor int
	MaxDeliveries int
	Logger        *slog.Logger
}

// NewRobot places a robot at the mailroom in the RETURNING state, so its first
// step drains the (empty) tube and registers it with the pool.
func NewRobot(id string, kind domain.RobotType, settings domain.RobotSettings, pool Pool, sink ports.DeliverySink, opts RobotOptions) *Robot {
	if settings.MoveTicks < 1 {
		settings.MoveTicks = 1
	}
	if opts.MaxDeliveries <= 0 {
		opts.MaxDeliveries = domain.MaxLoadDeliveries
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Robot{
		id:            id,
		kind:          kind,
		settings:      settings,
		tube:          domain.NewStorageTube(settings.Capacity),
		pool:          pool,
		sink:          sink,
		logger:        logger,
		mailroomFloor: opts.MailroomFloor,
		maxDeliveries: opts.MaxDeliveries,
		state:         StateReturning,
		currentFloor:  opts.MailroomFloor,
	}
}

func (r *Robot) ID() string                     { return r.id }
func (r *Robot) Type() domain.RobotType         { return r.kind }
func (r *Robot) Settings() domain.RobotSettings { return r.settings }
func (r *Robot) State() RobotState              { return r.state }
func (r *Robot) Floor() int                     { return r.currentFloor }
func (r *Robot) Destination() int               { return r.destFloor }
func (r *Robot) Tube() *domain.StorageTube      { return r.tube }

// Carrying returns the item currently being delivered, if any.
func (r *Robot) Carrying() *domain.MailItem { return r.deliveryItem }

// Dispatch flags the robot to start delivering its loaded tube on its next step.
func (r *Robot) Dispatch() { r.dispatched = true }

// Step advances the robot by one tick.
func (r *Robot) Step(tick int) error {
	switch r.state {
	case StateReturning:
		if r.currentFloor != r.mailroomFloor {
			return r.moveTowards(tick, r.mailroomFloor)
		}

		for !r.tube.IsEmpty() {
			item, err := r.tube.Pop()
			if err != nil {
				return fmt.Errorf("robot %s: drain tube: %w", r.id, err)
			}
			r.pool.AddToPool(item)
			r.logger.Info("old addToPool", "tick", tick, "robot", r.id, "item", item.ID)
		}
		r.pool.RegisterWaiting(r)
		r.changeState(tick, StateWaiting)

	case StateWaiting:
		if r.tube.IsEmpty() || !r.dispatched {
			return nil
		}
		if err := r.setRoute(tick); err != nil {
			return err
		}
		r.dispatched = false
		r.deliveryCounter = 0
		r.pool.DeregisterWaiting(r)
		r.changeState(tick, StateDelivering)

	case StateDelivering:
		if r.currentFloor != r.destFloor {
			return r.moveTowards(tick, r.destFloor)
		}

		item := r.deliveryItem
		r.sink.Deliver(tick, item)
		r.deliveryItem = nil
		r.deliveryCounter++
		if r.deliveryCounter > r.maxDeliveries {
			return &domain.Fault{Kind: domain.ErrExcessiveDelivery, RobotID: r.id, Tick: tick, ItemID: item.ID}
		}

		if r.tube.IsEmpty() {
			r.changeState(tick, StateReturning)
			return nil
		}
		if err := r.setRoute(tick); err != nil {
			return err
		}
		r.changeState(tick, StateDelivering)
	}

	return nil
}

// setRoute takes the next item off the tube and heads for its floor.
// An item over the weight limit stays in the tube and raises a fault.
func (r *Robot) setRoute(tick int) error {
	next, err := r.tube.Peek()
	if err != nil {
		return fmt.Errorf("robot %s: set route: %w", r.id, err)
	}
	if !r.settings.Strong() && next.Weight > r.settings.WeightLimit {
		return &domain.Fault{Kind: domain.ErrItemTooHeavy, RobotID: r.id, Tick: tick, ItemID: next.ID}
	}

	item, err := r.tube.Pop()
	if err != nil {
		return fmt.Errorf("robot %s: set route: %w", r.id, err)
	}
	r.deliveryItem = item
	r.destFloor = item.DestFloor
	return nil
}

// moveTowards advances one floor toward destination once enough ticks have
// accumulated. Robots that are not fragile-safe refuse to move while carrying
// or queued behind a fragile item.
func (r *Robot) moveTowards(tick int, destination int) error {
	if !r.settings.FragileSafe {
		if r.deliveryItem != nil && r.deliveryItem.Fragile {
			return &domain.Fault{Kind: domain.ErrFragileItemBroken, RobotID: r.id, Tick: tick, ItemID: r.deliveryItem.ID}
		}
		if next, err := r.tube.Peek(); err == nil && next.Fragile {
			return &domain.Fault{Kind: domain.ErrFragileItemBroken, RobotID: r.id, Tick: tick, ItemID: next.ID}
		}
	}

	r.moveProgress++
	if r.moveProgress < r.settings.MoveTicks {
		return nil
	}
	r.moveProgress = 0

	if r.currentFloor < destination {
		r.currentFloor++
	} else if r.currentFloor > destination {
		r.currentFloor--
	}
	return nil
}

// accepts reports whether the pool may offer item to this robot.
func (r *Robot) accepts(item *domain.MailItem) bool { return r.settings.CanCarry(item) }

// load pushes items so that the first selected item is the first popped.
// Nothing is loaded if the tube cannot take them all.
func (r *Robot) load(tick int, items []*domain.MailItem) error {
	if len(items) > r.tube.Free() {
		return &domain.Fault{
			Kind:    fmt.Errorf("load %d items into %d free slots: %w", len(items), r.tube.Free(), domain.ErrTubeFull),
			RobotID: r.id,
			Tick:    tick,
		}
	}
	for i := len(items) - 1; i >= 0; i-- {
		if err := r.tube.Push(items[i]); err != nil {
			return fmt.Errorf("robot %s: load: %w", r.id, err)
		}
	}
	return nil
}

func (r *Robot) idTube() string {
	return fmt.Sprintf("%s(%d/%d)", r.id, r.tube.Size(), r.tube.Capacity())
}

func (r *Robot) changeState(tick int, next RobotState) {
	if r.state != next {
		r.logger.Info("robot state changed", "tick", tick, "robot", r.idTube(), "from", r.state, "to", next)
	}
	r.state = next
	if next == StateDelivering && r.deliveryItem != nil {
		r.logger.Info("robot delivering", "tick", tick, "robot", r.idTube(), "item", r.deliveryItem.String())
	}
}
