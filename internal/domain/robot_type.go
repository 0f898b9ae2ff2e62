package domain

import (
	"fmt"
	"strings"
)

// RobotType is the closed set of robot variants.
type RobotType int

const (
	RobotStandard RobotType = iota
	RobotBig
	RobotCareful
	RobotWeak
)

var robotTypeNames = map[RobotType]string{
	RobotStandard: "Standard",
	RobotBig:      "Big",
	RobotCareful:  "Careful",
	RobotWeak:     "Weak",
}

func (t RobotType) String() string {
	if name, ok := robotTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("RobotType(%d)", int(t))
}

// ParseRobotType maps a configuration token (case-insensitive) to a RobotType.
func ParseRobotType(token string) (RobotType, error) {
	token = strings.TrimSpace(token)
	for t, name := range robotTypeNames {
		if strings.EqualFold(token, name) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("parse robot type %q: %w", token, ErrUnknownRobotType)
}

// RobotTypes returns every variant in declaration order.
func RobotTypes() []RobotType {
	return []RobotType{RobotStandard, RobotBig, RobotCareful, RobotWeak}
}

// Per-type robot parameters.
//
// WeightLimit of 0 means the robot is strong and has no per-item limit.
// MoveTicks is how many ticks of step accumulation it takes to advance one floor.
// FragileSafe robots are exempt from the fragile-item movement check.
type RobotSettings struct {
	Capacity    int
	WeightLimit int
	MoveTicks   int
	FragileSafe bool
}

// Strong reports whether the robot has no weight limit.
func (s RobotSettings) Strong() bool { return s.WeightLimit <= 0 }

// CanCarry reports whether an item is within the robot's weight and handling limits.
func (s RobotSettings) CanCarry(item *MailItem) bool {
	if !s.Strong() && item.Weight > s.WeightLimit {
		return false
	}
	return s.FragileSafe || !item.Fragile
}

type RobotSettingsTable map[RobotType]RobotSettings

const (
	StandardCapacity  = 4
	BigCapacity       = 6
	CarefulCapacity   = 3
	WeakCapacity      = 4
	WeakWeightLimit   = 2000
	StandardMoveTicks = 1
	CarefulMoveTicks  = 2
	DefaultLoadLimit  = 4
	DefaultMailroom   = 1
	MaxLoadDeliveries = 4
)

func DefaultRobotSettings() RobotSettingsTable {
	return RobotSettingsTable{
		RobotStandard: {Capacity: StandardCapacity, MoveTicks: StandardMoveTicks},
		RobotBig:      {Capacity: BigCapacity, MoveTicks: StandardMoveTicks},
		RobotCareful:  {Capacity: CarefulCapacity, MoveTicks: CarefulMoveTicks, FragileSafe: true},
		RobotWeak:     {Capacity: WeakCapacity, WeightLimit: WeakWeightLimit, MoveTicks: StandardMoveTicks},
	}
}

// Lookup returns the settings for a type, falling back to the defaults.
func (t RobotSettingsTable) Lookup(kind RobotType) (RobotSettings, error) {
	if s, ok := t[kind]; ok {
		return s, nil
	}
	if s, ok := DefaultRobotSettings()[kind]; ok {
		return s, nil
	}
	return RobotSettings{}, fmt.Errorf("robot settings: %v: %w", kind, ErrUnknownRobotType)
}
