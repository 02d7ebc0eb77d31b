package biomorph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"biomorph/internal/evo"
	"biomorph/internal/genotype"
	"biomorph/internal/model"
	"biomorph/internal/phenotype"
	"biomorph/internal/platform"
	"biomorph/internal/storage"
)

const defaultDBPath = "biomorph.db"

type Options struct {
	StoreKind       string
	DBPath          string
	Mode            string
	Policy          string
	HistoryCapacity int
	CacheCapacity   int
	Seed            int64
}

type Client struct {
	store   storage.Store
	session *platform.Session
	evolver *platform.AutoEvolver

	mode string
	seed int64

	initialized bool

	recMu    sync.Mutex
	recorder *autoRecorder
}

// autoRecorder accumulates run artifacts while timed auto-evolution is
// running; the collected run is persisted when the evolver stops.
type autoRecorder struct {
	mu        sync.Mutex
	runID     string
	startedAt time.Time
	seeded    bool
	final     model.Biomorph
	history   []float64
	records   []model.LineageRecord
}

func (r *autoRecorder) observe(parent, chosen model.Biomorph) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.seeded {
		r.records = append(r.records, model.LineageRecord{
			VersionedRecord: storage.Stamp(),
			BiomorphID:      parent.ID,
			ParentID:        parent.ParentID,
			Generation:      parent.Generation,
			Operation:       "seed",
			Fitness:         parent.Fitness,
		})
		r.seeded = true
	}
	r.history = append(r.history, chosen.Fitness)
	r.records = append(r.records, model.LineageRecord{
		VersionedRecord: storage.Stamp(),
		BiomorphID:      chosen.ID,
		ParentID:        chosen.ParentID,
		Generation:      chosen.Generation,
		Operation:       platform.StepOperation(parent, chosen),
		Fitness:         chosen.Fitness,
	})
	r.final = chosen
}

type MutateRequest struct {
	Parent model.Biomorph
	Mode   string
}

type EvolveRequest struct {
	Steps int
	RunID string
}

type EvolveSummary struct {
	RunID          string
	Steps          int
	Policy         string
	FinalFitness   float64
	FinalBiomorph  model.Biomorph
	FitnessHistory []float64
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID        string
	Policy       string
	Mode         string
	Steps        int
	FinalFitness float64
	StartedAtUTC string
}

type RunLineageRequest struct {
	RunID string
	Limit int
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	session, err := platform.NewSession(platform.Config{
		Mode:            evo.Mode(opts.Mode),
		Policy:          opts.Policy,
		HistoryCapacity: opts.HistoryCapacity,
		CacheCapacity:   opts.CacheCapacity,
		Seed:            opts.Seed,
	})
	if err != nil {
		return nil, err
	}

	mode := opts.Mode
	if mode == "" {
		mode = string(evo.ModeFull)
	}

	return &Client{
		store:   store,
		session: session,
		evolver: platform.NewAutoEvolver(session),
		mode:    mode,
		seed:    opts.Seed,
	}, nil
}

func (c *Client) Close() error {
	if err := c.StopAutoEvolution(); err != nil {
		return err
	}
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.ensureStore(ctx)
}

// Genesis synthesizes a random root individual and makes it the current
// selection.
func (c *Client) Genesis(_ context.Context) (model.Biomorph, error) {
	return c.session.Genesis()
}

// Construct builds a validated individual from an explicit gene vector.
func (c *Client) Construct(_ context.Context, genes []int) (model.Biomorph, error) {
	b, err := genotype.Construct(genes)
	if err != nil {
		return model.Biomorph{}, err
	}
	policy, err := evo.ResolvePolicy(c.session.PolicyName())
	if err != nil {
		return model.Biomorph{}, err
	}
	b.Fitness = policy.Score(b)
	return b, nil
}

// Mutate derives the full single-step mutation neighborhood of a parent
// without touching session state.
func (c *Client) Mutate(_ context.Context, req MutateRequest) ([]model.Biomorph, error) {
	mode := req.Mode
	if mode == "" {
		mode = c.mode
	}
	return c.session.Mutate(req.Parent, evo.Mode(mode))
}

// Fitness scores an individual under a named policy; an empty name means
// the session's active policy.
func (c *Client) Fitness(_ context.Context, b model.Biomorph, policyName string) (float64, error) {
	if policyName == "" {
		policyName = c.session.PolicyName()
	}
	policy, err := evo.ResolvePolicy(policyName)
	if err != nil {
		return 0, err
	}
	return policy.Score(b), nil
}

// Phenotype returns the deterministic drawable segment list for an
// individual.
func (c *Client) Phenotype(b model.Biomorph) []phenotype.Segment {
	return c.session.Phenotype(b)
}

// Select makes an individual current and returns its fresh offspring batch.
func (c *Client) Select(_ context.Context, b model.Biomorph) ([]model.Biomorph, error) {
	if err := c.session.Select(b); err != nil {
		return nil, err
	}
	return c.session.Offspring(), nil
}

func (c *Client) Current() (model.Biomorph, bool) {
	return c.session.Current()
}

func (c *Client) Offspring() []model.Biomorph {
	return c.session.Offspring()
}

// Lineage reconstructs the ancestor chain of an individual from retained
// session history.
func (c *Client) Lineage(b model.Biomorph) []model.Biomorph {
	return c.session.Lineage(b)
}

func (c *Client) SetFitnessPolicy(name string) error {
	return c.session.SetPolicy(name)
}

func (c *Client) ActivePolicy() string {
	return c.session.PolicyName()
}

// RecomputeFitness rescores the current individual and offspring batch
// under the active policy.
func (c *Client) RecomputeFitness() {
	c.session.RecomputeFitness()
}

func (c *Client) Policies() []string {
	return evo.ListPolicies()
}

func (c *Client) StartAutoEvolution(period time.Duration) error {
	c.recMu.Lock()
	defer c.recMu.Unlock()

	if c.evolver.State() == platform.RunStateRunning {
		return nil
	}
	rec := &autoRecorder{
		runID:     fmt.Sprintf("auto-%s-%d", c.session.PolicyName(), time.Now().UTC().UnixNano()),
		startedAt: time.Now().UTC(),
	}
	c.evolver.OnStep(rec.observe)
	if err := c.evolver.Start(period); err != nil {
		return err
	}
	c.recorder = rec
	return nil
}

// StopAutoEvolution halts the timer loop and persists the collected run
// artifacts; stopping a run that never stepped records nothing.
func (c *Client) StopAutoEvolution() error {
	c.recMu.Lock()
	defer c.recMu.Unlock()

	c.evolver.Stop()
	rec := c.recorder
	c.recorder = nil
	if rec == nil {
		return nil
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.history) == 0 {
		return nil
	}

	ctx := context.Background()
	if err := c.ensureStore(ctx); err != nil {
		return err
	}
	run := model.RunRecord{
		VersionedRecord: storage.Stamp(),
		ID:              rec.runID,
		Policy:          c.session.PolicyName(),
		Mode:            c.mode,
		Steps:           len(rec.history),
		FinalFitness:    rec.final.Fitness,
		FinalBiomorph:   rec.final,
		StartedAt:       rec.startedAt,
		FinishedAt:      time.Now().UTC(),
	}
	if err := c.store.SaveBiomorph(ctx, rec.final); err != nil {
		return err
	}
	if err := c.store.SaveRun(ctx, run); err != nil {
		return err
	}
	if err := c.store.SaveFitnessHistory(ctx, rec.runID, rec.history); err != nil {
		return err
	}
	return c.store.SaveLineage(ctx, rec.runID, rec.records)
}

func (c *Client) SetAutoEvolutionPeriod(period time.Duration) error {
	return c.evolver.SetPeriod(period)
}

func (c *Client) AutoEvolutionState() platform.RunState {
	return c.evolver.State()
}

// Evolve runs a synchronous hill-climbing batch and persists the run
// artifacts.
func (c *Client) Evolve(ctx context.Context, req EvolveRequest) (EvolveSummary, error) {
	if req.Steps <= 0 {
		req.Steps = 50
	}
	if c.evolver.State() == platform.RunStateRunning {
		return EvolveSummary{}, errors.New("auto-evolution is running; stop it before a batch run")
	}
	if err := c.ensureStore(ctx); err != nil {
		return EvolveSummary{}, err
	}

	runID := req.RunID
	if runID == "" {
		runID = fmt.Sprintf("%s-%d-%d", c.session.PolicyName(), c.seed, time.Now().UTC().Unix())
	}

	result, err := c.session.Evolve(ctx, runID, req.Steps)
	if err != nil {
		return EvolveSummary{}, err
	}

	if err := c.store.SaveBiomorph(ctx, result.Run.FinalBiomorph); err != nil {
		return EvolveSummary{}, err
	}
	if err := c.store.SaveRun(ctx, result.Run); err != nil {
		return EvolveSummary{}, err
	}
	if err := c.store.SaveFitnessHistory(ctx, runID, result.FitnessHistory); err != nil {
		return EvolveSummary{}, err
	}
	if err := c.store.SaveLineage(ctx, runID, result.Lineage); err != nil {
		return EvolveSummary{}, err
	}

	return EvolveSummary{
		RunID:          runID,
		Steps:          result.Run.Steps,
		Policy:         result.Run.Policy,
		FinalFitness:   result.Run.FinalFitness,
		FinalBiomorph:  result.Run.FinalBiomorph,
		FitnessHistory: append([]float64(nil), result.FitnessHistory...),
	}, nil
}

func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if err := c.ensureStore(ctx); err != nil {
		return nil, err
	}

	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) > req.Limit {
		runs = runs[len(runs)-req.Limit:]
	}

	out := make([]RunItem, 0, len(runs))
	for _, r := range runs {
		out = append(out, RunItem{
			RunID:        r.ID,
			Policy:       r.Policy,
			Mode:         r.Mode,
			Steps:        r.Steps,
			FinalFitness: r.FinalFitness,
			StartedAtUTC: r.StartedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return out, nil
}

func (c *Client) RunLineage(ctx context.Context, req RunLineageRequest) ([]model.LineageRecord, error) {
	if req.RunID == "" {
		return nil, errors.New("run lineage requires a run id")
	}
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	if err := c.ensureStore(ctx); err != nil {
		return nil, err
	}

	records, ok, err := c.store.GetLineage(ctx, req.RunID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("lineage not found for run id: %s", req.RunID)
	}
	if req.Limit > 0 && len(records) > req.Limit {
		records = records[:req.Limit]
	}
	out := make([]model.LineageRecord, len(records))
	copy(out, records)
	return out, nil
}

func (c *Client) RunFitnessHistory(ctx context.Context, runID string) ([]float64, error) {
	if runID == "" {
		return nil, errors.New("fitness history requires a run id")
	}
	if err := c.ensureStore(ctx); err != nil {
		return nil, err
	}

	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("fitness history not found for run id: %s", runID)
	}
	return append([]float64(nil), history...), nil
}

// ExportSVG renders an individual's phenotype as an SVG document.
func (c *Client) ExportSVG(w io.Writer, b model.Biomorph) error {
	return phenotype.WriteSVG(w, c.session.Phenotype(b))
}

func (c *Client) ensureStore(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}
