package domain

import (
	"errors"
	"math"
	"testing"
)

func TestParseRobotType(t *testing.T) {
	tests := []struct {
		token string
		want  RobotType
	}{
		{"Standard", RobotStandard},
		{"big", RobotBig},
		{" CAREFUL ", RobotCareful},
		{"weak", RobotWeak},
	}

	for _, tt := range tests {
		got, err := ParseRobotType(tt.token)
		if err != nil {
			t.Fatalf("ParseRobotType(%q): unexpected error: %v", tt.token, err)
		}
		if got != tt.want {
			t.Errorf("ParseRobotType(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}

	if _, err := ParseRobotType("Flying"); !errors.Is(err, ErrUnknownRobotType) {
		t.Errorf("err = %v, want ErrUnknownRobotType", err)
	}
}

func TestRobotSettingsCanCarry(t *testing.T) {
	table := DefaultRobotSettings()
	heavy := NewMailItem("H", 1, 2, 2500, false)
	light := NewMailItem("L", 1, 2, 500, false)
	fragile := NewMailItem("F", 1, 2, 500, true)

	weak := table[RobotWeak]
	if weak.CanCarry(heavy) {
		t.Errorf("weak robot should not carry %d units", heavy.Weight)
	}
	if !weak.CanCarry(light) {
		t.Errorf("weak robot should carry %d units", light.Weight)
	}

	if !table[RobotBig].CanCarry(heavy) {
		t.Errorf("big robot should carry heavy item")
	}
	if table[RobotStandard].CanCarry(fragile) {
		t.Errorf("standard robot should not be offered fragile items")
	}
	if !table[RobotCareful].CanCarry(fragile) {
		t.Errorf("careful robot should carry fragile items")
	}
}

func TestDeliveryScore(t *testing.T) {
	plain := NewMailItem("A", 10, 3, 100, false)
	if got := DeliveryScore(20, plain, 1.0); got != 10 {
		t.Errorf("score = %v, want 10", got)
	}

	urgent := NewPriorityMailItem("B", 10, 3, 100, false, 100)
	want := math.Pow(10, 1.2) * 11
	if got := DeliveryScore(20, urgent, 1.2); math.Abs(got-want) > 1e-9 {
		t.Errorf("score = %v, want %v", got, want)
	}
}
