package mailgen

import (
	"context"
	"errors"
	"fmt"
	"mailroom-simulator/internal/domain"
	"math/rand/v2"
)

type GeneratorConfig struct {
	Seed            int64
	Count           int
	LastArrivalTick int
	MailroomFloor   int
	Floors          int
	MinWeight       int
	MaxWeight       int
	PriorityRatio   float64
	PriorityLevels  []int
	FragileRatio    float64
}

// Generator produces a reproducible random mail schedule from a seed.
// Every call to ListMailItems returns the same schedule.
type Generator struct {
	cfg GeneratorConfig
}

func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if cfg.Count < 0 {
		return nil, fmt.Errorf("new generator: count must be >= 0, got %d", cfg.Count)
	}
	if cfg.LastArrivalTick < 1 {
		return nil, fmt.Errorf("new generator: last arrival tick must be >= 1, got %d", cfg.LastArrivalTick)
	}
	if cfg.Floors < cfg.MailroomFloor {
		return nil, fmt.Errorf("new generator: floors (%d) below mailroom floor (%d)", cfg.Floors, cfg.MailroomFloor)
	}
	if cfg.MinWeight < 0 || cfg.MaxWeight < cfg.MinWeight {
		return nil, fmt.Errorf("new generator: invalid weight range [%d, %d]", cfg.MinWeight, cfg.MaxWeight)
	}
	if cfg.PriorityRatio > 0 && len(cfg.PriorityLevels) == 0 {
		return nil, errors.New("new generator: priority levels must not be empty when priority ratio > 0")
	}
	return &Generator{cfg: cfg}, nil
}

func (g *Generator) ListMailItems(ctx context.Context) ([]*domain.MailItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seed := uint64(g.cfg.Seed)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	items := make([]*domain.MailItem, 0, g.cfg.Count)
	for i := 0; i < g.cfg.Count; i++ {
		id := fmt.Sprintf("M%04d", i+1)
		arrival := 1 + rng.IntN(g.cfg.LastArrivalTick)
		dest := g.cfg.MailroomFloor + rng.IntN(g.cfg.Floors-g.cfg.MailroomFloor+1)
		weight := g.cfg.MinWeight + rng.IntN(g.cfg.MaxWeight-g.cfg.MinWeight+1)
		fragile := rng.Float64() < g.cfg.FragileRatio

		if rng.Float64() < g.cfg.PriorityRatio {
			level := g.cfg.PriorityLevels[rng.IntN(len(g.cfg.PriorityLevels))]
			items = append(items, domain.NewPriorityMailItem(id, arrival, dest, weight, fragile, level))
			continue
		}
		items = append(items, domain.NewMailItem(id, arrival, dest, weight, fragile))
	}

	return items, nil
}

// StaticSource serves a fixed list of items.
type StaticSource struct {
	items []*domain.MailItem
}

func NewStaticSource(items []*domain.MailItem) *StaticSource {
	return &StaticSource{items: items}
}

func (s *StaticSource) ListMailItems(ctx context.Context) ([]*domain.MailItem, error) {
	out := make([]*domain.MailItem, len(s.items))
	copy(out, s.items)
	return out, nil
}
