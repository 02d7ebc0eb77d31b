package genotype

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"biomorph/internal/model"
	"biomorph/internal/storage"
)

// ClampGene clamps a gene value to the closed range [GeneMin, GeneMax].
func ClampGene(value int) int {
	if value < model.GeneMin {
		return model.GeneMin
	}
	if value > model.GeneMax {
		return model.GeneMax
	}
	return value
}

// Construct builds a root biomorph from an explicit gene vector. Out-of-range
// genes are clamped silently; they only ever originate from this codebase's
// own generators, so clamping favors robustness over strictness.
func Construct(genes []int) (model.Biomorph, error) {
	if len(genes) != model.GeneCount {
		return model.Biomorph{}, fmt.Errorf("gene vector must have %d genes, got %d", model.GeneCount, len(genes))
	}

	var clamped [model.GeneCount]int
	for i, g := range genes {
		clamped[i] = ClampGene(g)
	}
	return model.Biomorph{
		VersionedRecord: storage.Stamp(),
		ID:              uuid.NewString(),
		Genes:           clamped,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// NewRandom draws a root biomorph with uniformly random genes. The length,
// width, depth and decay genes are biased toward the non-negative half of
// their range so a fresh individual always has a visible structure; this is
// a usability choice, not a correctness requirement, and stays inside the
// gene bounds.
func NewRandom(rng *rand.Rand) model.Biomorph {
	rng = ensureRNG(rng)

	var genes [model.GeneCount]int
	for i := range genes {
		genes[i] = model.GeneMin + rng.Intn(model.GeneMax-model.GeneMin+1)
	}
	for _, i := range []int{model.GeneLength, model.GeneWidth, model.GeneDepth, model.GeneDecay} {
		genes[i] = rng.Intn(model.GeneMax + 1)
	}

	return model.Biomorph{
		VersionedRecord: storage.Stamp(),
		ID:              uuid.NewString(),
		Genes:           genes,
		CreatedAt:       time.Now().UTC(),
	}
}

// Child derives a fresh biomorph from a parent with the given gene vector.
// Generation and parent back-reference follow the lineage invariants; the
// caller fills in fitness under the active policy.
func Child(parent model.Biomorph, genes [model.GeneCount]int) model.Biomorph {
	for i, g := range genes {
		genes[i] = ClampGene(g)
	}
	return model.Biomorph{
		VersionedRecord: storage.Stamp(),
		ID:              uuid.NewString(),
		Genes:           genes,
		Generation:      parent.Generation + 1,
		ParentID:        parent.ID,
		CreatedAt:       time.Now().UTC(),
	}
}

func ensureRNG(rng *rand.Rand) *rand.Rand {
	if rng == nil {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return rng
}
