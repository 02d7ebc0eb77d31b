package phenotype

import (
	"math"

	"biomorph/internal/genotype"
	"biomorph/internal/model"
)

// Params is the rendering parameter set mapped from a gene vector. Each gene
// is linearly interpolated from its [-10,10] domain into the parameter's
// output range.
type Params struct {
	SpreadAngle float64 // degrees, 10..60
	Length      float64 // units, 5..40
	StrokeWidth float64 // units, 0.5..5
	Depth       int     // recursion levels, 1..8
	Decay       float64 // per-level length multiplier, 0.5..0.9
	Asymmetry   float64 // -0.5..0.5
	Hue         float64 // degrees, 0..360
	Curvature   float64 // degrees, -30..30
	Splits      int     // branches per split, 2..4
}

// MapParams maps a gene vector to rendering parameters. Out-of-range genes
// are clamped before interpolation, so the mapping is total.
func MapParams(genes [model.GeneCount]int) Params {
	return Params{
		SpreadAngle: lerpGene(genes[model.GeneAngle], 10, 60),
		Length:      lerpGene(genes[model.GeneLength], 5, 40),
		StrokeWidth: lerpGene(genes[model.GeneWidth], 0.5, 5),
		Depth:       int(math.Floor(lerpGene(genes[model.GeneDepth], 1, 8))),
		Decay:       lerpGene(genes[model.GeneDecay], 0.5, 0.9),
		Asymmetry:   lerpGene(genes[model.GeneAsymmetry], -0.5, 0.5),
		Hue:         lerpGene(genes[model.GeneHue], 0, 360),
		Curvature:   lerpGene(genes[model.GeneCurvature], -30, 30),
		Splits:      clampSplits(int(math.Floor(lerpGene(genes[model.GeneSplits], 2, 4)))),
	}
}

func lerpGene(gene int, lo, hi float64) float64 {
	t := float64(genotype.ClampGene(gene)-model.GeneMin) / float64(model.GeneMax-model.GeneMin)
	return lo + (hi-lo)*t
}

func clampSplits(splits int) int {
	if splits < 2 {
		return 2
	}
	return splits
}
