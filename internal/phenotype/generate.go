package phenotype

import (
	"math"
	"sort"

	"biomorph/internal/model"
)

// The trunk grows upward from a fixed base point so identical genotypes
// always produce identical geometry.
const (
	baseAngle = -90.0
	hueShift  = 12.0
	fixedSat  = 70.0
	minLight  = 30.0
	maxLight  = 60.0
)

type branch struct {
	origin    Point
	angle     float64 // degrees
	length    float64
	remaining int // levels left including this branch
}

// Generate maps a genotype's genes to the canonical ordered segment list:
// shallower segments first so thicker strokes draw under thinner ones,
// siblings left to right within a level. This is the recursive walker; the
// stable sort by depth turns its pre-order emission into the canonical
// order.
func Generate(genes [model.GeneCount]int) []Segment {
	p := MapParams(genes)
	segments := make([]Segment, 0, estimateSegments(p))
	walk(p, trunk(p), &segments)
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Depth < segments[j].Depth
	})
	return segments
}

// GenerateBreadthFirst is the queue-based walker. It produces exactly the
// same ordered segment list as Generate; it exists as a faster evaluation
// strategy for shallow trees and must never change the visual result.
func GenerateBreadthFirst(genes [model.GeneCount]int) []Segment {
	p := MapParams(genes)
	segments := make([]Segment, 0, estimateSegments(p))

	queue := []branch{trunk(p)}
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		segments = append(segments, segmentFor(p, b))
		queue = append(queue, children(p, b)...)
	}
	return segments
}

func walk(p Params, b branch, out *[]Segment) {
	*out = append(*out, segmentFor(p, b))
	for _, child := range children(p, b) {
		walk(p, child, out)
	}
}

func trunk(p Params) branch {
	return branch{
		origin:    Point{},
		angle:     baseAngle,
		length:    p.Length,
		remaining: p.Depth,
	}
}

// segmentFor emits the stroke for one branch. Both walkers go through this
// single function, so a segment's coordinates depend only on the branch
// state, never on evaluation order.
func segmentFor(p Params, b branch) Segment {
	end := advance(b.origin, b.angle, b.length)
	depthIndex := p.Depth - b.remaining

	bend := p.Curvature * float64(b.remaining) / float64(p.Depth)
	control := advance(b.origin, b.angle+bend/2, b.length/2)

	light := minLight
	if p.Depth > 0 {
		light = minLight + (maxLight-minLight)*float64(b.remaining)/float64(p.Depth)
	}

	return Segment{
		Start:   b.origin,
		End:     end,
		Control: control,
		Depth:   depthIndex,
		Color: Color{
			H: math.Mod(p.Hue+hueShift*float64(depthIndex), 360),
			S: fixedSat,
			L: light,
		},
		Width: p.StrokeWidth * float64(b.remaining) / float64(p.Depth),
	}
}

// children distributes the split branches evenly across the spread angle
// centered on the parent direction. Even- and odd-indexed children are
// pushed by asymmetry x spread in opposite directions, and the whole offset
// is perturbed by curvature scaled to the child's remaining depth, bending
// the structure more strongly near the trunk.
func children(p Params, b branch) []branch {
	if b.remaining <= 1 {
		return nil
	}

	out := make([]branch, 0, p.Splits)
	tip := advance(b.origin, b.angle, b.length)
	childRemaining := b.remaining - 1
	for i := 0; i < p.Splits; i++ {
		t := 0.0
		if p.Splits > 1 {
			t = float64(i) / float64(p.Splits-1)
		}
		offset := -p.SpreadAngle/2 + p.SpreadAngle*t
		if i%2 == 0 {
			offset -= p.Asymmetry * p.SpreadAngle
		} else {
			offset += p.Asymmetry * p.SpreadAngle
		}
		offset += p.Curvature * float64(childRemaining) / float64(p.Depth)

		out = append(out, branch{
			origin:    tip,
			angle:     b.angle + offset,
			length:    b.length * p.Decay,
			remaining: childRemaining,
		})
	}
	return out
}

func advance(from Point, angleDeg, dist float64) Point {
	rad := angleDeg * math.Pi / 180
	return Point{
		X: from.X + dist*math.Cos(rad),
		Y: from.Y + dist*math.Sin(rad),
	}
}

func estimateSegments(p Params) int {
	total := 0
	count := 1
	for level := 0; level < p.Depth; level++ {
		total += count
		count *= p.Splits
		if total > 1<<16 {
			return 1 << 16
		}
	}
	return total
}
