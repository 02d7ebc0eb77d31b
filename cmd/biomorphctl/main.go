package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"biomorph/internal/model"
	"biomorph/internal/storage"
	bio "biomorph/pkg/biomorph"
)

const defaultDBPath = "biomorph.db"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "genesis":
		return runGenesis(ctx, args[1:])
	case "mutate":
		return runMutate(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "render":
		return runRender(ctx, args[1:])
	case "evolve":
		return runEvolve(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "lineage":
		return runLineage(ctx, args[1:])
	case "fitness-history":
		return runFitnessHistory(ctx, args[1:])
	case "policies":
		return runPolicies(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := bio.New(bio.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()
	if err := store.Init(ctx); err != nil {
		return err
	}
	resetter, ok := store.(storage.Resetter)
	if !ok {
		return fmt.Errorf("store backend %s does not support reset", *storeKind)
	}
	if err := resetter.Reset(ctx); err != nil {
		return err
	}

	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runGenesis(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("genesis", flag.ContinueOnError)
	seed := fs.Int64("seed", 0, "rng seed (0 = time-based)")
	policy := fs.String("policy", "", "fitness policy: balanced|complex|symmetric")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := bio.New(bio.Options{Seed: *seed, Policy: *policy})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	b, err := client.Genesis(ctx)
	if err != nil {
		return err
	}
	printBiomorph(b)
	return nil
}

func runMutate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mutate", flag.ContinueOnError)
	genesCSV := fs.String("genes", "", "comma-separated parent genes (9 values)")
	mode := fs.String("mode", "full", "mutation mode: full|reduced")
	policy := fs.String("policy", "", "fitness policy: balanced|complex|symmetric")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := bio.New(bio.Options{Policy: *policy})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	genes, err := parseGenes(*genesCSV)
	if err != nil {
		return err
	}
	parent, err := client.Construct(ctx, genes)
	if err != nil {
		return err
	}
	batch, err := client.Mutate(ctx, bio.MutateRequest{Parent: parent, Mode: *mode})
	if err != nil {
		return err
	}

	fmt.Printf("parent genes=%s fitness=%.3f\n", formatGenes(parent.Genes), parent.Fitness)
	for i, child := range batch {
		fmt.Printf("%2d  genes=%s fitness=%.3f\n", i, formatGenes(child.Genes), child.Fitness)
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	genesCSV := fs.String("genes", "", "comma-separated genes (9 values)")
	policy := fs.String("policy", "", "fitness policy: balanced|complex|symmetric")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := bio.New(bio.Options{})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	genes, err := parseGenes(*genesCSV)
	if err != nil {
		return err
	}
	b, err := client.Construct(ctx, genes)
	if err != nil {
		return err
	}
	score, err := client.Fitness(ctx, b, *policy)
	if err != nil {
		return err
	}

	fmt.Printf("genes=%s fitness=%.3f\n", formatGenes(b.Genes), score)
	return nil
}

func runRender(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	genesCSV := fs.String("genes", "", "comma-separated genes (9 values)")
	outPath := fs.String("out", "", "output SVG path (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := bio.New(bio.Options{})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	genes, err := parseGenes(*genesCSV)
	if err != nil {
		return err
	}
	b, err := client.Construct(ctx, genes)
	if err != nil {
		return err
	}

	if *outPath == "" {
		return client.ExportSVG(os.Stdout, b)
	}
	f, err := os.Create(*outPath)
	if err != nil {
		return err
	}
	if err := client.ExportSVG(f, b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	segments := client.Phenotype(b)
	fmt.Printf("wrote %s segments=%s\n", *outPath, humanize.Comma(int64(len(segments))))
	return nil
}

func runEvolve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("evolve", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	steps := fs.Int("steps", 50, "hill-climbing steps")
	seed := fs.Int64("seed", 0, "rng seed (0 = time-based)")
	mode := fs.String("mode", "full", "mutation mode: full|reduced")
	policy := fs.String("policy", "", "fitness policy: balanced|complex|symmetric")
	runID := fs.String("run-id", "", "run identifier (default derived)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := bio.New(bio.Options{
		StoreKind: *storeKind,
		DBPath:    *dbPath,
		Mode:      *mode,
		Policy:    *policy,
		Seed:      *seed,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Evolve(ctx, bio.EvolveRequest{Steps: *steps, RunID: *runID})
	if err != nil {
		return err
	}

	fmt.Printf("run=%s policy=%s steps=%d\n", summary.RunID, summary.Policy, summary.Steps)
	fmt.Printf("final genes=%s fitness=%.3f generation=%s\n",
		formatGenes(summary.FinalBiomorph.Genes),
		summary.FinalFitness,
		humanize.Ordinal(summary.FinalBiomorph.Generation))
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	limit := fs.Int("limit", 20, "maximum runs to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := bio.New(bio.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx, bio.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	for _, r := range runs {
		started := r.StartedAtUTC
		if at, err := time.Parse(time.RFC3339Nano, r.StartedAtUTC); err == nil {
			started = humanize.Time(at)
		}
		fmt.Printf("%s  policy=%s mode=%s steps=%d fitness=%.3f started=%s\n",
			r.RunID, r.Policy, r.Mode, r.Steps, r.FinalFitness, started)
	}
	return nil
}

func runLineage(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("lineage", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	runID := fs.String("run-id", "", "run identifier")
	limit := fs.Int("limit", 0, "maximum records (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := bio.New(bio.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	records, err := client.RunLineage(ctx, bio.RunLineageRequest{RunID: *runID, Limit: *limit})
	if err != nil {
		return err
	}
	for _, rec := range records {
		fmt.Printf("gen=%-4d op=%-12s fitness=%.3f id=%s\n",
			rec.Generation, rec.Operation, rec.Fitness, rec.BiomorphID)
	}
	return nil
}

func runFitnessHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness-history", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	runID := fs.String("run-id", "", "run identifier")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := bio.New(bio.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.RunFitnessHistory(ctx, *runID)
	if err != nil {
		return err
	}
	for i, fitness := range history {
		fmt.Printf("step=%-4d fitness=%.3f\n", i+1, fitness)
	}
	return nil
}

func runPolicies(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("policies", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := bio.New(bio.Options{})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	for _, name := range client.Policies() {
		fmt.Println(name)
	}
	return nil
}

func printBiomorph(b model.Biomorph) {
	fmt.Printf("id=%s generation=%d genes=%s fitness=%.3f\n",
		b.ID, b.Generation, formatGenes(b.Genes), b.Fitness)
}

func parseGenes(csv string) ([]int, error) {
	if csv == "" {
		return nil, fmt.Errorf("missing -genes (expected %d comma-separated values)", model.GeneCount)
	}
	parts := strings.Split(csv, ",")
	genes := make([]int, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid gene value %q", part)
		}
		genes = append(genes, v)
	}
	return genes, nil
}

func formatGenes(genes [model.GeneCount]int) string {
	parts := make([]string, len(genes))
	for i, g := range genes {
		parts[i] = strconv.Itoa(g)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: biomorphctl <init|reset|genesis|mutate|fitness|render|evolve|runs|lineage|fitness-history|policies> [flags]", msg)
}
