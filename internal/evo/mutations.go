package evo

import (
	"fmt"

	"biomorph/internal/genotype"
	"biomorph/internal/model"
)

// Mode names the mutation gene set used when deriving offspring.
type Mode string

const (
	// ModeFull mutates every gene: 18 offspring per batch.
	ModeFull Mode = "full"
	// ModeReduced mutates only the most visually salient genes
	// (angle, length, width, depth): 8 offspring per batch.
	ModeReduced Mode = "reduced"
)

var reducedGeneSet = []int{model.GeneAngle, model.GeneLength, model.GeneWidth, model.GeneDepth}

// MutationGeneSet returns the gene indices mutated under a mode, ascending.
func MutationGeneSet(mode Mode) ([]int, error) {
	switch mode {
	case "", ModeFull:
		set := make([]int, model.GeneCount)
		for i := range set {
			set[i] = i
		}
		return set, nil
	case ModeReduced:
		return append([]int(nil), reducedGeneSet...), nil
	default:
		return nil, fmt.Errorf("unsupported mutation mode: %s", mode)
	}
}

// Offspring derives the candidate batch from one parent: for each gene in
// the mode's gene set, one child with that gene incremented and one with it
// decremented, both clamped at the bounds (a mutation at a bound reproduces
// the parent's genes; that is a no-op, not an error). Ordering is
// deterministic: gene index ascending, up before down. Each child gets a
// fresh id, generation parent+1, and fitness scored under the given policy.
func Offspring(parent model.Biomorph, mode Mode, policy Policy) ([]model.Biomorph, error) {
	if policy == nil {
		return nil, fmt.Errorf("fitness policy is required")
	}
	geneSet, err := MutationGeneSet(mode)
	if err != nil {
		return nil, err
	}

	batch := make([]model.Biomorph, 0, 2*len(geneSet))
	for _, idx := range geneSet {
		for _, delta := range []int{1, -1} {
			genes := parent.Genes
			genes[idx] = genotype.ClampGene(genes[idx] + delta)
			child := genotype.Child(parent, genes)
			child.Fitness = policy.Score(child)
			batch = append(batch, child)
		}
	}
	return batch, nil
}

// Fittest picks the best-scored offspring from a batch. Ties break toward
// the earliest candidate in the deterministic batch order.
func Fittest(batch []model.Biomorph) (model.Biomorph, error) {
	if len(batch) == 0 {
		return model.Biomorph{}, fmt.Errorf("offspring batch is empty")
	}
	best := batch[0]
	for _, candidate := range batch[1:] {
		if candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best, nil
}
