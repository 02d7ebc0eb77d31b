package platform

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"biomorph/internal/evo"
	"biomorph/internal/genotype"
	"biomorph/internal/lineage"
	"biomorph/internal/model"
	"biomorph/internal/phenotype"
	"biomorph/internal/storage"
)

type Config struct {
	Mode            evo.Mode
	Policy          string
	HistoryCapacity int
	CacheCapacity   int
	Seed            int64
}

// Session is the process-scoped selection/history state: the current
// individual, its offspring batch, the generation counter, retained history
// and the phenotype cache. All mutation is serialized behind one mutex, so
// a manual selection and an auto-evolution tick can never interleave
// mid-update.
type Session struct {
	mu         sync.Mutex
	rng        *rand.Rand
	mode       evo.Mode
	policy     evo.Policy
	history    *lineage.History
	renderer   *phenotype.Renderer
	current    model.Biomorph
	hasCurrent bool
	offspring  []model.Biomorph
}

func NewSession(cfg Config) (*Session, error) {
	mode := cfg.Mode
	if mode == "" {
		mode = evo.ModeFull
	}
	if _, err := evo.MutationGeneSet(mode); err != nil {
		return nil, err
	}
	policy, err := evo.ResolvePolicy(cfg.Policy)
	if err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Session{
		rng:      rand.New(rand.NewSource(seed)),
		mode:     mode,
		policy:   policy,
		history:  lineage.NewHistory(cfg.HistoryCapacity),
		renderer: phenotype.NewRenderer(cfg.CacheCapacity),
	}, nil
}

// Genesis synthesizes a random root individual, makes it current, seeds
// history and regenerates the offspring batch.
func (s *Session) Genesis() (model.Biomorph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	root := genotype.NewRandom(s.rng)
	root.Fitness = s.policy.Score(root)
	if err := s.setCurrentLocked(root); err != nil {
		return model.Biomorph{}, err
	}
	return root, nil
}

// Select makes an individual current, retains it in history and replaces
// the offspring batch with the individual's own offspring.
func (s *Session) Select(b model.Biomorph) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setCurrentLocked(b)
}

func (s *Session) setCurrentLocked(b model.Biomorph) error {
	batch, err := evo.Offspring(b, s.mode, s.policy)
	if err != nil {
		return err
	}
	s.current = b
	s.hasCurrent = true
	s.offspring = batch
	s.history.Append(b)
	return nil
}

// Step runs one auto-evolution advance: offspring of the current
// individual, fittest wins (ties to the earliest candidate), the winner
// becomes current and its own batch replaces the display batch. With no
// current individual the step is a no-op.
func (s *Session) Step() (model.Biomorph, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasCurrent {
		return model.Biomorph{}, false, nil
	}
	batch, err := evo.Offspring(s.current, s.mode, s.policy)
	if err != nil {
		return model.Biomorph{}, false, err
	}
	best, err := evo.Fittest(batch)
	if err != nil {
		return model.Biomorph{}, false, err
	}
	if err := s.setCurrentLocked(best); err != nil {
		return model.Biomorph{}, false, err
	}
	return best, true, nil
}

func (s *Session) Current() (model.Biomorph, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.hasCurrent
}

// Offspring returns a copy of the current candidate batch.
func (s *Session) Offspring() []model.Biomorph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Biomorph(nil), s.offspring...)
}

// Generation reports the current individual's generation; zero when
// nothing is selected.
func (s *Session) Generation() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasCurrent {
		return 0
	}
	return s.current.Generation
}

// Mutate derives an offspring batch without touching session state.
func (s *Session) Mutate(parent model.Biomorph, mode evo.Mode) ([]model.Biomorph, error) {
	s.mu.Lock()
	policy := s.policy
	s.mu.Unlock()

	if mode == "" {
		mode = s.mode
	}
	return evo.Offspring(parent, mode, policy)
}

// SetPolicy switches the active fitness policy. Cached fitness values are
// left untouched; RecomputeFitness is the explicit bulk operation.
func (s *Session) SetPolicy(name string) error {
	policy, err := evo.ResolvePolicy(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.policy = policy
	s.mu.Unlock()
	return nil
}

func (s *Session) PolicyName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy.Name()
}

// RecomputeFitness rescores the currently-visible individuals (the selected
// one and the offspring batch) under the active policy.
func (s *Session) RecomputeFitness() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasCurrent {
		s.current.Fitness = s.policy.Score(s.current)
		s.history.Append(s.current)
	}
	for i := range s.offspring {
		s.offspring[i].Fitness = s.policy.Score(s.offspring[i])
	}
}

// Lineage reconstructs the ancestor chain of an individual from retained
// history, earliest reconstructible ancestor first.
func (s *Session) Lineage(b model.Biomorph) []model.Biomorph {
	return lineage.Find(b, s.history)
}

// Phenotype returns the drawable segment list for an individual.
func (s *Session) Phenotype(b model.Biomorph) []phenotype.Segment {
	return s.renderer.Render(b)
}

// RunResult carries the artifacts of one synchronous evolution run.
type RunResult struct {
	Run            model.RunRecord
	FitnessHistory []float64
	Lineage        []model.LineageRecord
}

// Evolve advances the session through a fixed number of steps, seeding a
// random genesis individual when nothing is selected, and collects run
// artifacts for persistence.
func (s *Session) Evolve(ctx context.Context, runID string, steps int) (RunResult, error) {
	if steps <= 0 {
		return RunResult{}, fmt.Errorf("steps must be > 0")
	}

	start, ok := s.Current()
	if !ok {
		var err error
		start, err = s.Genesis()
		if err != nil {
			return RunResult{}, err
		}
	}

	startedAt := time.Now().UTC()
	history := make([]float64, 0, steps)
	records := make([]model.LineageRecord, 0, steps+1)
	records = append(records, model.LineageRecord{
		VersionedRecord: storage.Stamp(),
		BiomorphID:      start.ID,
		ParentID:        start.ParentID,
		Generation:      start.Generation,
		Operation:       "seed",
		Fitness:         start.Fitness,
	})

	previous := start
	final := start
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}
		chosen, advanced, err := s.Step()
		if err != nil {
			return RunResult{}, err
		}
		if !advanced {
			break
		}
		history = append(history, chosen.Fitness)
		records = append(records, model.LineageRecord{
			VersionedRecord: storage.Stamp(),
			BiomorphID:      chosen.ID,
			ParentID:        chosen.ParentID,
			Generation:      chosen.Generation,
			Operation:       StepOperation(previous, chosen),
			Fitness:         chosen.Fitness,
		})
		previous = chosen
		final = chosen
	}

	return RunResult{
		Run: model.RunRecord{
			VersionedRecord: storage.Stamp(),
			ID:              runID,
			Policy:          s.PolicyName(),
			Mode:            string(s.mode),
			Steps:           len(history),
			FinalFitness:    final.Fitness,
			FinalBiomorph:   final,
			StartedAt:       startedAt,
			FinishedAt:      time.Now().UTC(),
		},
		FitnessHistory: history,
		Lineage:        records,
	}, nil
}

// StepOperation labels a single-step transition by the gene it changed,
// e.g. "gene3+1"; a bound-clamped no-op child is labeled "noop(clamp)".
func StepOperation(parent, child model.Biomorph) string {
	for i := range child.Genes {
		if diff := child.Genes[i] - parent.Genes[i]; diff != 0 {
			return fmt.Sprintf("gene%d%+d", i, diff)
		}
	}
	return "noop(clamp)"
}
