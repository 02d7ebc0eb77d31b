package platform

import (
	"testing"
	"time"
)

func waitForGeneration(t *testing.T, s *Session, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Generation() >= want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("generation %d not reached before deadline (at %d)", want, s.Generation())
}

func TestAutoEvolverRejectsNonPositivePeriod(t *testing.T) {
	e := NewAutoEvolver(newTestSession(t))
	if err := e.Start(0); err == nil {
		t.Fatal("expected error for zero period")
	}
	if err := e.SetPeriod(-time.Millisecond); err == nil {
		t.Fatal("expected error for negative period")
	}
}

func TestAutoEvolverSeedsGenesisAndClimbs(t *testing.T) {
	s := newTestSession(t)
	e := NewAutoEvolver(s)

	if e.State() != RunStateIdle {
		t.Fatalf("initial state = %s, want idle", e.State())
	}
	if err := e.Start(time.Millisecond); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer e.Stop()

	if _, ok := s.Current(); !ok {
		t.Fatal("Start did not seed a genesis individual")
	}
	if e.State() != RunStateRunning {
		t.Fatalf("state after Start = %s, want running", e.State())
	}

	waitForGeneration(t, s, 3)
}

func TestAutoEvolverStopHaltsStepping(t *testing.T) {
	s := newTestSession(t)
	e := NewAutoEvolver(s)
	if err := e.Start(time.Millisecond); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitForGeneration(t, s, 1)

	e.Stop()
	if e.State() != RunStateIdle {
		t.Fatalf("state after Stop = %s, want idle", e.State())
	}

	frozen := s.Generation()
	time.Sleep(20 * time.Millisecond)
	if got := s.Generation(); got != frozen {
		t.Fatalf("generation advanced after Stop: %d -> %d", frozen, got)
	}
}

func TestAutoEvolverStopWhileIdleIsNoop(t *testing.T) {
	e := NewAutoEvolver(newTestSession(t))
	e.Stop()
	e.Stop()
}

func TestAutoEvolverStartWhileRunningIsNoop(t *testing.T) {
	s := newTestSession(t)
	e := NewAutoEvolver(s)
	if err := e.Start(time.Millisecond); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer e.Stop()

	if err := e.Start(time.Hour); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if e.Period() != time.Millisecond {
		t.Fatalf("second Start changed the period to %s", e.Period())
	}
	waitForGeneration(t, s, 2)
}

func TestAutoEvolverSetPeriodWhileRunning(t *testing.T) {
	s := newTestSession(t)
	e := NewAutoEvolver(s)
	if err := e.Start(time.Millisecond); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer e.Stop()

	if err := e.SetPeriod(2 * time.Millisecond); err != nil {
		t.Fatalf("SetPeriod: %v", err)
	}
	if e.Period() != 2*time.Millisecond {
		t.Fatalf("period = %s, want 2ms", e.Period())
	}
	waitForGeneration(t, s, 3)
}

func TestAutoEvolverRestartsAfterStop(t *testing.T) {
	s := newTestSession(t)
	e := NewAutoEvolver(s)
	if err := e.Start(time.Millisecond); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitForGeneration(t, s, 1)
	e.Stop()

	resumed := s.Generation()
	if err := e.Start(time.Millisecond); err != nil {
		t.Fatalf("restart: %v", err)
	}
	defer e.Stop()
	waitForGeneration(t, s, resumed+1)
}
