package platform

import (
	"context"
	"strings"
	"testing"

	"biomorph/internal/evo"
	"biomorph/internal/model"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(Config{Seed: 11})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func TestNewSessionRejectsUnknownMode(t *testing.T) {
	if _, err := NewSession(Config{Mode: "partial"}); err == nil {
		t.Fatal("expected error for unknown mutation mode")
	}
}

func TestNewSessionRejectsUnknownPolicy(t *testing.T) {
	if _, err := NewSession(Config{Policy: "tallest"}); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestGenesisSeedsSelectionState(t *testing.T) {
	s := newTestSession(t)

	root, err := s.Genesis()
	if err != nil {
		t.Fatalf("Genesis: %v", err)
	}
	if root.Generation != 0 || root.ParentID != "" {
		t.Fatalf("genesis individual not a root: gen=%d parent=%q", root.Generation, root.ParentID)
	}

	current, ok := s.Current()
	if !ok || current.ID != root.ID {
		t.Fatalf("current = (%v, %v), want genesis individual", current.ID, ok)
	}
	if got := len(s.Offspring()); got != 18 {
		t.Fatalf("offspring batch size = %d, want 18", got)
	}
	if chain := s.Lineage(root); len(chain) != 1 || chain[0].ID != root.ID {
		t.Fatalf("genesis lineage = %v, want single root", chain)
	}
}

func TestSelectAdvancesStateAndHistory(t *testing.T) {
	s := newTestSession(t)
	root, err := s.Genesis()
	if err != nil {
		t.Fatalf("Genesis: %v", err)
	}

	child := s.Offspring()[3]
	if err := s.Select(child); err != nil {
		t.Fatalf("Select: %v", err)
	}

	current, _ := s.Current()
	if current.ID != child.ID {
		t.Fatalf("current = %s, want selected child %s", current.ID, child.ID)
	}
	if s.Generation() != 1 {
		t.Fatalf("generation = %d, want 1", s.Generation())
	}

	chain := s.Lineage(child)
	if len(chain) != 2 || chain[0].ID != root.ID || chain[1].ID != child.ID {
		t.Fatalf("lineage chain = %d entries, want [root, child]", len(chain))
	}
}

func TestStepWithoutCurrentIsNoop(t *testing.T) {
	s := newTestSession(t)
	if _, advanced, err := s.Step(); err != nil || advanced {
		t.Fatalf("Step on empty session = (advanced=%v, err=%v), want no-op", advanced, err)
	}
}

func TestStepNeverDecreasesBalancedFitness(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.Genesis(); err != nil {
		t.Fatalf("Genesis: %v", err)
	}

	previous, _ := s.Current()
	for i := 0; i < 25; i++ {
		chosen, advanced, err := s.Step()
		if err != nil || !advanced {
			t.Fatalf("Step %d = (advanced=%v, err=%v)", i, advanced, err)
		}
		if chosen.Fitness < previous.Fitness {
			t.Fatalf("step %d regressed fitness: %f -> %f", i, previous.Fitness, chosen.Fitness)
		}
		if chosen.Generation != previous.Generation+1 {
			t.Fatalf("step %d generation = %d, want %d", i, chosen.Generation, previous.Generation+1)
		}
		previous = chosen
	}
}

func TestSetPolicyDoesNotRescore(t *testing.T) {
	s := newTestSession(t)
	root, err := s.Genesis()
	if err != nil {
		t.Fatalf("Genesis: %v", err)
	}

	if err := s.SetPolicy("symmetric"); err != nil {
		t.Fatalf("SetPolicy: %v", err)
	}
	current, _ := s.Current()
	if current.Fitness != root.Fitness {
		t.Fatalf("policy switch rescored current: %f -> %f", root.Fitness, current.Fitness)
	}

	s.RecomputeFitness()
	symmetric, err := evo.ResolvePolicy("symmetric")
	if err != nil {
		t.Fatalf("ResolvePolicy: %v", err)
	}
	current, _ = s.Current()
	if want := symmetric.Score(current); current.Fitness != want {
		t.Fatalf("recomputed fitness = %f, want %f", current.Fitness, want)
	}
	for i, child := range s.Offspring() {
		if want := symmetric.Score(child); child.Fitness != want {
			t.Fatalf("offspring %d fitness = %f, want %f", i, child.Fitness, want)
		}
	}
}

func TestMutateLeavesSessionUntouched(t *testing.T) {
	s := newTestSession(t)
	root, err := s.Genesis()
	if err != nil {
		t.Fatalf("Genesis: %v", err)
	}

	batch, err := s.Mutate(root, evo.ModeReduced)
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if len(batch) != 8 {
		t.Fatalf("reduced batch size = %d, want 8", len(batch))
	}
	if current, _ := s.Current(); current.ID != root.ID {
		t.Fatal("Mutate changed the current individual")
	}
}

func TestEvolveCollectsRunArtifacts(t *testing.T) {
	s := newTestSession(t)

	const steps = 10
	result, err := s.Evolve(context.Background(), "run-1", steps)
	if err != nil {
		t.Fatalf("Evolve: %v", err)
	}

	if result.Run.ID != "run-1" || result.Run.Policy != "balanced" || result.Run.Mode != string(evo.ModeFull) {
		t.Fatalf("run metadata = %+v", result.Run)
	}
	if result.Run.Steps != steps || len(result.FitnessHistory) != steps {
		t.Fatalf("steps = %d, history = %d, want %d", result.Run.Steps, len(result.FitnessHistory), steps)
	}
	if len(result.Lineage) != steps+1 {
		t.Fatalf("lineage records = %d, want %d", len(result.Lineage), steps+1)
	}
	if result.Lineage[0].Operation != "seed" {
		t.Fatalf("first lineage operation = %q, want seed", result.Lineage[0].Operation)
	}
	for i := 1; i < len(result.Lineage); i++ {
		op := result.Lineage[i].Operation
		if !strings.HasPrefix(op, "gene") && op != "noop(clamp)" {
			t.Fatalf("lineage record %d has unexpected operation %q", i, op)
		}
		if result.Lineage[i].ParentID != result.Lineage[i-1].BiomorphID {
			t.Fatalf("lineage record %d parent mismatch", i)
		}
	}

	final, _ := s.Current()
	if result.Run.FinalBiomorph.ID != final.ID {
		t.Fatal("final biomorph does not match session state")
	}
	if result.Run.FinalFitness != final.Fitness {
		t.Fatalf("final fitness = %f, want %f", result.Run.FinalFitness, final.Fitness)
	}
}

func TestEvolveRejectsNonPositiveSteps(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.Evolve(context.Background(), "run-x", 0); err == nil {
		t.Fatal("expected error for zero steps")
	}
}

func TestEvolveHonorsContextCancellation(t *testing.T) {
	s := newTestSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Evolve(ctx, "run-c", 5); err == nil {
		t.Fatal("expected context error")
	}
}

func TestLineageOfForeignIndividual(t *testing.T) {
	s := newTestSession(t)
	foreign := model.Biomorph{ID: "outsider", Generation: 4, ParentID: "gone"}
	if chain := s.Lineage(foreign); len(chain) != 1 || chain[0].ID != "outsider" {
		t.Fatalf("foreign lineage = %v, want the individual alone", chain)
	}
}
