package phenotype

import "fmt"

// Point is a 2D coordinate in abstract drawing units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Color is an HSL stroke color.
type Color struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

func (c Color) String() string {
	return fmt.Sprintf("hsl(%.0f, %.0f%%, %.0f%%)", c.H, c.S, c.L)
}

// Segment is one drawable branch stroke. Control is the quadratic curve
// control point encoding the curvature bend; for a straight branch it sits
// on the segment midpoint. Depth counts levels below the trunk, so segments
// are ordered shallow (thick, drawn first) to deep.
type Segment struct {
	Start   Point   `json:"start"`
	End     Point   `json:"end"`
	Control Point   `json:"control"`
	Depth   int     `json:"depth"`
	Color   Color   `json:"color"`
	Width   float64 `json:"width"`
}
