package evo

import (
	"biomorph/internal/model"
)

// Policy scores a genotype. Scores are non-negative; the raw formula is
// floored at zero. Policies read the raw integer genes, not the mapped
// rendering parameters.
type Policy interface {
	Name() string
	Score(b model.Biomorph) float64
}

// BalancedPolicy rewards depth and length, penalizes asymmetry, and gives
// half weight to branch splits. This is the default policy.
type BalancedPolicy struct{}

func (BalancedPolicy) Name() string {
	return "balanced"
}

func (BalancedPolicy) Score(b model.Biomorph) float64 {
	raw := absf(b.Genes[model.GeneDepth]) +
		absf(b.Genes[model.GeneLength])/2 +
		(10 - absf(b.Genes[model.GeneAsymmetry])) +
		absf(b.Genes[model.GeneSplits])/2
	return floorAtZero(raw)
}

// ComplexPolicy rewards deep, heavily-split structures with mid-range
// length and decay.
type ComplexPolicy struct{}

func (ComplexPolicy) Name() string {
	return "complex"
}

func (ComplexPolicy) Score(b model.Biomorph) float64 {
	raw := 2*float64(b.Genes[model.GeneDepth]) +
		1.5*float64(b.Genes[model.GeneSplits]) +
		(10 - absf(b.Genes[model.GeneLength]-5)) +
		(10 - absf(b.Genes[model.GeneDecay]-5))
	return floorAtZero(raw)
}

// SymmetricPolicy rewards low asymmetry and curvature with a mid-range
// spread angle.
type SymmetricPolicy struct{}

func (SymmetricPolicy) Name() string {
	return "symmetric"
}

func (SymmetricPolicy) Score(b model.Biomorph) float64 {
	raw := 2*(10-absf(b.Genes[model.GeneAsymmetry])) +
		1.5*(10-absf(b.Genes[model.GeneCurvature])) +
		(10 - absf(b.Genes[model.GeneAngle]-5))
	return floorAtZero(raw)
}

func absf(v int) float64 {
	if v < 0 {
		return float64(-v)
	}
	return float64(v)
}

func floorAtZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
