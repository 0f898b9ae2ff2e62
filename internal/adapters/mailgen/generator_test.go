package mailgen

import (
	"context"
	"testing"
)

func testConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:            42,
		Count:           200,
		LastArrivalTick: 50,
		MailroomFloor:   1,
		Floors:          14,
		MinWeight:       200,
		MaxWeight:       3000,
		PriorityRatio:   0.2,
		PriorityLevels:  []int{10, 100},
		FragileRatio:    0.1,
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	gen, err := NewGenerator(testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := gen.ListMailItems(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := gen.ListMailItems(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != 200 || len(second) != 200 {
		t.Fatalf("lengths = %d, %d, want 200", len(first), len(second))
	}
	for i := range first {
		if *first[i] != *second[i] {
			t.Fatalf("item %d differs between calls: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestGeneratorRanges(t *testing.T) {
	cfg := testConfig()
	gen, err := NewGenerator(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, err := gen.ListMailItems(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	priority := 0
	for _, item := range items {
		if item.ArrivalTime < 1 || item.ArrivalTime > cfg.LastArrivalTick {
			t.Errorf("%s arrival %d out of range", item.ID, item.ArrivalTime)
		}
		if item.DestFloor < cfg.MailroomFloor || item.DestFloor > cfg.Floors {
			t.Errorf("%s floor %d out of range", item.ID, item.DestFloor)
		}
		if item.Weight < cfg.MinWeight || item.Weight > cfg.MaxWeight {
			t.Errorf("%s weight %d out of range", item.ID, item.Weight)
		}
		if item.IsPriority() {
			priority++
			if item.PriorityLevel != 10 && item.PriorityLevel != 100 {
				t.Errorf("%s priority level %d not in configured set", item.ID, item.PriorityLevel)
			}
		}
	}
	if priority == 0 {
		t.Errorf("expected some priority mail in 200 items")
	}
}

func TestNewGeneratorRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.PriorityLevels = nil
	if _, err := NewGenerator(cfg); err == nil {
		t.Fatalf("expected error for missing priority levels")
	}

	cfg = testConfig()
	cfg.MaxWeight = 100
	if _, err := NewGenerator(cfg); err == nil {
		t.Fatalf("expected error for inverted weight range")
	}
}
