package services

import (
	"errors"
	"fmt"
	"mailroom-simulator/internal/domain"
	"math/rand/v2"
	"slices"
	"testing"
)

func TestMailPoolPriorityThenArrivalFill(t *testing.T) {
	pool := newTestPool()
	robot := newTestRobot("R0", domain.RobotStandard, pool, newTestRecorder())

	pool.AddToPool(priorityMail("P1", 1, 3, 100, 5))
	pool.AddToPool(priorityMail("P0", 0, 4, 100, 5))
	pool.AddToPool(mail("N4", 4, 2, 100))
	pool.AddToPool(mail("N2", 2, 5, 100))
	pool.AddToPool(mail("N3", 3, 6, 100))
	pool.RegisterWaiting(robot)

	if err := pool.Step(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pool.IsWaiting(robot) {
		t.Fatalf("robot should be deregistered after dispatch")
	}
	if !robot.dispatched {
		t.Fatalf("robot should carry a dispatch flag")
	}

	_, nonPriority := pool.Pending()
	if got := ids(nonPriority); !slices.Equal(got, []string{"N4"}) {
		t.Fatalf("pending non-priority = %v, want [N4]", got)
	}

	want := []string{"P0", "P1", "N2", "N3"}
	if got := popOrder(robot.Tube()); !slices.Equal(got, want) {
		t.Fatalf("delivery order = %v, want %v", got, want)
	}
}

func TestMailPoolStrongRobotTakesEverything(t *testing.T) {
	pool := newTestPool()
	robot := newTestRobot("R0", domain.RobotBig, pool, newTestRecorder())

	pool.AddToPool(mail("N1", 1, 3, 3000))
	pool.AddToPool(priorityMail("P1", 2, 4, 100, 10))
	pool.AddToPool(mail("N2", 2, 5, 100))
	pool.RegisterWaiting(robot)

	if err := pool.Step(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pool.PendingCount() != 0 {
		t.Fatalf("pending = %d, want 0", pool.PendingCount())
	}
	if robot.Tube().Size() != 3 {
		t.Fatalf("tube size = %d, want 3", robot.Tube().Size())
	}
	if got := popOrder(robot.Tube()); !slices.Equal(got, []string{"P1", "N1", "N2"}) {
		t.Fatalf("delivery order = %v", got)
	}
}

func TestMailPoolWeakRobotSkipsHeavyItems(t *testing.T) {
	pool := newTestPool()
	sink := newTestRecorder()
	weak := newTestRobot("R0", domain.RobotWeak, pool, sink)

	pool.AddToPool(priorityMail("HEAVY", 1, 3, 2500, 10))
	pool.AddToPool(mail("LIGHT", 1, 4, 500))
	pool.RegisterWaiting(weak)

	if err := pool.Step(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := ids(weak.Tube().Items()); !slices.Equal(got, []string{"LIGHT"}) {
		t.Fatalf("weak tube = %v, want [LIGHT]", got)
	}
	priority, _ := pool.Pending()
	if got := ids(priority); !slices.Equal(got, []string{"HEAVY"}) {
		t.Fatalf("pending priority = %v, want [HEAVY]", got)
	}

	// Another weak robot never picks the heavy item up.
	other := newTestRobot("R1", domain.RobotWeak, pool, sink)
	pool.RegisterWaiting(other)
	for tick := 2; tick < 10; tick++ {
		if err := pool.Step(tick); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if !other.Tube().IsEmpty() || !pool.IsWaiting(other) {
		t.Fatalf("weak robot should stay waiting with an empty tube")
	}

	strong := newTestRobot("R2", domain.RobotStandard, pool, sink)
	pool.RegisterWaiting(strong)
	if err := pool.Step(10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(strong.Tube().Items()); !slices.Equal(got, []string{"HEAVY"}) {
		t.Fatalf("standard tube = %v, want [HEAVY]", got)
	}
}

func TestMailPoolStepWithoutWaitingRobotsIsNoop(t *testing.T) {
	pool := newTestPool()
	robot := newTestRobot("R0", domain.RobotStandard, pool, newTestRecorder())
	pool.AddToPool(priorityMail("P1", 1, 3, 100, 10))
	pool.AddToPool(mail("N1", 1, 3, 100))

	pool.RegisterWaiting(robot)
	pool.DeregisterWaiting(robot)
	before1, before2 := pool.Pending()

	if err := pool.Step(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after1, after2 := pool.Pending()
	if !slices.Equal(before1, after1) || !slices.Equal(before2, after2) {
		t.Fatalf("pending collections changed: %v %v -> %v %v", ids(before1), ids(before2), ids(after1), ids(after2))
	}
	if !robot.Tube().IsEmpty() || robot.dispatched {
		t.Fatalf("unavailable robot was loaded")
	}
}

func TestMailPoolPriorityOrdering(t *testing.T) {
	pool := newTestPool()
	robot := newTestRobot("R0", domain.RobotBig, pool, newTestRecorder())

	pool.AddToPool(priorityMail("L10-A3", 3, 2, 100, 10))
	pool.AddToPool(priorityMail("L100-A5", 5, 2, 100, 100))
	pool.AddToPool(priorityMail("L100-A2", 2, 2, 100, 100))
	pool.AddToPool(priorityMail("L10-A1", 1, 2, 100, 10))
	pool.AddToPool(priorityMail("L1-A0", 0, 2, 100, 1))
	pool.RegisterWaiting(robot)

	if err := pool.Step(5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"L100-A2", "L100-A5", "L10-A1", "L10-A3"}
	if got := popOrder(robot.Tube()); !slices.Equal(got, want) {
		t.Fatalf("delivery order = %v, want %v", got, want)
	}
	priority, _ := pool.Pending()
	if got := ids(priority); !slices.Equal(got, []string{"L1-A0"}) {
		t.Fatalf("pending = %v, want [L1-A0]", got)
	}
}

func TestMailPoolCarefulLoadBoundedByTube(t *testing.T) {
	pool := newTestPool()
	robot := newTestRobot("R0", domain.RobotCareful, pool, newTestRecorder())

	for i := 0; i < 4; i++ {
		pool.AddToPool(mail(fmt.Sprintf("N%d", i), i, 2, 100))
	}
	pool.RegisterWaiting(robot)

	if err := pool.Step(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if robot.Tube().Size() != 3 {
		t.Fatalf("tube size = %d, want 3", robot.Tube().Size())
	}
	if pool.PendingCount() != 1 {
		t.Fatalf("pending = %d, want 1", pool.PendingCount())
	}
}

func TestMailPoolFragileOnlyToCarefulRobots(t *testing.T) {
	pool := newTestPool()
	sink := newTestRecorder()
	standard := newTestRobot("R0", domain.RobotStandard, pool, sink)

	pool.AddToPool(fragileMail("F1", 1, 5))
	pool.AddToPool(mail("N1", 2, 3, 100))
	pool.RegisterWaiting(standard)

	if err := pool.Step(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(standard.Tube().Items()); !slices.Equal(got, []string{"N1"}) {
		t.Fatalf("standard tube = %v, want [N1]", got)
	}

	careful := newTestRobot("R1", domain.RobotCareful, pool, sink)
	pool.RegisterWaiting(careful)
	if err := pool.Step(3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(careful.Tube().Items()); !slices.Equal(got, []string{"F1"}) {
		t.Fatalf("careful tube = %v, want [F1]", got)
	}
}

func TestMailPoolServesLargerTubesFirst(t *testing.T) {
	pool := newTestPool()
	sink := newTestRecorder()
	standard := newTestRobot("R0", domain.RobotStandard, pool, sink)
	big := newTestRobot("R1", domain.RobotBig, pool, sink)

	for i := 0; i < 5; i++ {
		pool.AddToPool(mail(fmt.Sprintf("N%d", i), i, 2, 100))
	}
	pool.RegisterWaiting(standard)
	pool.RegisterWaiting(big)

	if err := pool.Step(5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := ids(big.Tube().Items()); len(got) != 4 {
		t.Fatalf("big tube = %v, want 4 items", got)
	}
	if got := ids(standard.Tube().Items()); !slices.Equal(got, []string{"N4"}) {
		t.Fatalf("standard tube = %v, want [N4]", got)
	}
}

func TestMailPoolRejectsOverfullLoad(t *testing.T) {
	pool := newTestPool()
	robot := newTestRobot("R0", domain.RobotCareful, pool, newTestRecorder())

	// Two items already aboard leave one free slot.
	items := []*domain.MailItem{mail("A", 1, 2, 100), mail("B", 1, 2, 100)}
	if err := robot.load(1, items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := robot.load(1, []*domain.MailItem{mail("C", 1, 2, 100), mail("D", 1, 2, 100)})
	if err == nil {
		t.Fatalf("expected capacity fault")
	}
	if robot.Tube().Size() != 2 {
		t.Fatalf("failed load mutated tube: size = %d", robot.Tube().Size())
	}
	var fault *domain.Fault
	if !errors.As(err, &fault) || fault.RobotID != "R0" {
		t.Fatalf("err = %v, want *domain.Fault for R0", err)
	}
	if !errors.Is(err, domain.ErrTubeFull) {
		t.Fatalf("err = %v, want ErrTubeFull", err)
	}
}

// referenceSelect is the discard-and-recompute formulation: take priority
// items, and if the load is short rebuild it from those plus non-priority items.
func referenceSelect(priority, nonPriority []*domain.MailItem, limit int, ok func(*domain.MailItem) bool) []string {
	var picked []*domain.MailItem
	for _, item := range priority {
		if len(picked) == limit {
			break
		}
		if ok(item) {
			picked = append(picked, item)
		}
	}
	if len(picked) < limit {
		rebuilt := slices.Clone(picked)
		for _, item := range nonPriority {
			if len(rebuilt) == limit {
				break
			}
			if ok(item) {
				rebuilt = append(rebuilt, item)
			}
		}
		picked = rebuilt
	}
	return ids(picked)
}

func TestMailPoolSelectionMatchesRecomputeFormulation(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	kinds := []domain.RobotType{domain.RobotStandard, domain.RobotWeak, domain.RobotCareful}

	for round := 0; round < 200; round++ {
		pool := newTestPool()
		kind := kinds[round%len(kinds)]
		robot := newTestRobot("R0", kind, pool, newTestRecorder())

		n := 5 + rng.IntN(10)
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("M%02d", i)
			weight := 100 + rng.IntN(3000)
			if rng.IntN(3) == 0 {
				pool.AddToPool(priorityMail(id, rng.IntN(20), 2, weight, []int{1, 10, 100}[rng.IntN(3)]))
				continue
			}
			pool.AddToPool(mail(id, rng.IntN(20), 2, weight))
		}

		priority, nonPriority := pool.Pending()
		limit := min(domain.DefaultLoadLimit, robot.Tube().Capacity())
		want := referenceSelect(priority, nonPriority, limit, robot.accepts)

		pool.RegisterWaiting(robot)
		if err := pool.Step(1); err != nil {
			t.Fatalf("round %d: unexpected error: %v", round, err)
		}

		got := popOrder(robot.Tube())
		if !slices.Equal(got, want) {
			t.Fatalf("round %d (%v): selection = %v, want %v", round, kind, got, want)
		}
		if len(got) > limit {
			t.Fatalf("round %d: %d items exceed limit %d", round, len(got), limit)
		}
		if pool.PendingCount()+len(got) != n {
			t.Fatalf("round %d: %d pending + %d loaded != %d", round, pool.PendingCount(), len(got), n)
		}
	}
}
