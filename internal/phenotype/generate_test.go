package phenotype

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"biomorph/internal/model"
)

func randomGenes(rng *rand.Rand) [model.GeneCount]int {
	var genes [model.GeneCount]int
	for i := range genes {
		genes[i] = model.GeneMin + rng.Intn(model.GeneMax-model.GeneMin+1)
	}
	return genes
}

func TestMapParamsRanges(t *testing.T) {
	low := MapParams([model.GeneCount]int{-10, -10, -10, -10, -10, -10, -10, -10, -10})
	if low.SpreadAngle != 10 || low.Length != 5 || low.StrokeWidth != 0.5 {
		t.Fatalf("unexpected low mapping: %+v", low)
	}
	if low.Depth != 1 || low.Splits != 2 {
		t.Fatalf("unexpected low integer mapping: depth=%d splits=%d", low.Depth, low.Splits)
	}
	if low.Decay != 0.5 || low.Asymmetry != -0.5 || low.Hue != 0 || low.Curvature != -30 {
		t.Fatalf("unexpected low mapping: %+v", low)
	}

	high := MapParams([model.GeneCount]int{10, 10, 10, 10, 10, 10, 10, 10, 10})
	if high.SpreadAngle != 60 || high.Length != 40 || high.StrokeWidth != 5 {
		t.Fatalf("unexpected high mapping: %+v", high)
	}
	if high.Depth != 8 || high.Splits != 4 {
		t.Fatalf("unexpected high integer mapping: depth=%d splits=%d", high.Depth, high.Splits)
	}
}

func TestMapParamsClampsDefensively(t *testing.T) {
	p := MapParams([model.GeneCount]int{100, -100, 0, 100, 0, 0, 0, 0, -100})
	if p.SpreadAngle != 60 || p.Length != 5 || p.Depth != 8 || p.Splits != 2 {
		t.Fatalf("expected clamped mapping, got %+v", p)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	for i := 0; i < 20; i++ {
		genes := randomGenes(rng)
		first := Generate(genes)
		second := Generate(genes)
		if len(first) != len(second) {
			t.Fatalf("segment counts differ: %d vs %d", len(first), len(second))
		}
		for j := range first {
			if first[j] != second[j] {
				t.Fatalf("segment %d differs for genes %v", j, genes)
			}
		}
	}
}

func TestWalkersAreInterchangeable(t *testing.T) {
	rng := rand.New(rand.NewSource(29))
	for i := 0; i < 50; i++ {
		genes := randomGenes(rng)
		recursive := Generate(genes)
		iterative := GenerateBreadthFirst(genes)
		if len(recursive) != len(iterative) {
			t.Fatalf("walker segment counts differ for genes %v: %d vs %d", genes, len(recursive), len(iterative))
		}
		for j := range recursive {
			if recursive[j] != iterative[j] {
				t.Fatalf("walkers disagree at segment %d for genes %v", j, genes)
			}
		}
	}
}

func TestSegmentsOrderedShallowFirst(t *testing.T) {
	genes := [model.GeneCount]int{0, 5, 0, 10, 5, 0, 0, 0, 0}
	segments := Generate(genes)
	for i := 1; i < len(segments); i++ {
		if segments[i].Depth < segments[i-1].Depth {
			t.Fatalf("segment %d at depth %d follows depth %d", i, segments[i].Depth, segments[i-1].Depth)
		}
	}
	if segments[0].Depth != 0 {
		t.Fatalf("expected trunk first, got depth %d", segments[0].Depth)
	}
}

func TestSegmentCountMatchesTreeShape(t *testing.T) {
	// depth gene 10 -> 8 levels, splits gene -10 -> 2 per split:
	// 1+2+4+...+128 = 255 segments.
	genes := [model.GeneCount]int{0, 0, 0, 10, 0, 0, 0, 0, -10}
	segments := Generate(genes)
	if len(segments) != 255 {
		t.Fatalf("expected 255 segments, got %d", len(segments))
	}

	// depth gene -10 -> single trunk segment.
	genes[model.GeneDepth] = -10
	segments = Generate(genes)
	if len(segments) != 1 {
		t.Fatalf("expected single trunk segment, got %d", len(segments))
	}
}

func TestTrunkGeometry(t *testing.T) {
	genes := [model.GeneCount]int{0, 10, 10, -10, 0, 0, 0, 0, 0}
	segments := Generate(genes)
	trunk := segments[0]
	if trunk.Start != (Point{}) {
		t.Fatalf("trunk must start at the base point, got %+v", trunk.Start)
	}
	// Length gene 10 -> 40 units, growing straight up.
	if math.Abs(trunk.End.Y+40) > 1e-9 || math.Abs(trunk.End.X) > 1e-9 {
		t.Fatalf("unexpected trunk end: %+v", trunk.End)
	}
	if trunk.Width != 5 {
		t.Fatalf("expected full stroke width on trunk, got %v", trunk.Width)
	}
}

func TestDeeperSegmentsAreThinnerAndDarker(t *testing.T) {
	genes := [model.GeneCount]int{0, 5, 5, 10, 5, 0, 0, 0, 0}
	segments := Generate(genes)
	trunk := segments[0]
	leaf := segments[len(segments)-1]
	if leaf.Width >= trunk.Width {
		t.Fatalf("expected deep segment thinner than trunk: %v >= %v", leaf.Width, trunk.Width)
	}
	if leaf.Color.L >= trunk.Color.L {
		t.Fatalf("expected deep segment darker than trunk: %v >= %v", leaf.Color.L, trunk.Color.L)
	}
}

func TestColorString(t *testing.T) {
	c := Color{H: 120, S: 70, L: 45}
	if got := c.String(); got != "hsl(120, 70%, 45%)" {
		t.Fatalf("unexpected color string: %s", got)
	}
}

func TestWriteSVG(t *testing.T) {
	genes := [model.GeneCount]int{0, 0, 0, 0, 0, 0, 0, 0, 0}
	segments := Generate(genes)

	var sb strings.Builder
	if err := WriteSVG(&sb, segments); err != nil {
		t.Fatalf("write svg: %v", err)
	}
	out := sb.String()
	if !strings.HasPrefix(out, "<svg") || !strings.Contains(out, "</svg>") {
		t.Fatal("expected an svg document")
	}
	if strings.Count(out, "<path") != len(segments) {
		t.Fatalf("expected %d paths", len(segments))
	}
}
