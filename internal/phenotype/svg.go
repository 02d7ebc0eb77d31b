package phenotype

import (
	"fmt"
	"io"
)

const svgMargin = 10.0

// WriteSVG renders a segment list as a standalone SVG document, one
// quadratic path per segment in list order.
func WriteSVG(w io.Writer, segments []Segment) error {
	minX, minY, maxX, maxY := bounds(segments)
	width := maxX - minX + 2*svgMargin
	height := maxY - minY + 2*svgMargin

	if _, err := fmt.Fprintf(w,
		"<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"%.2f %.2f %.2f %.2f\">\n",
		minX-svgMargin, minY-svgMargin, width, height); err != nil {
		return err
	}
	for _, s := range segments {
		if _, err := fmt.Fprintf(w,
			"  <path d=\"M %.2f %.2f Q %.2f %.2f %.2f %.2f\" stroke=\"%s\" stroke-width=\"%.2f\" stroke-linecap=\"round\" fill=\"none\"/>\n",
			s.Start.X, s.Start.Y, s.Control.X, s.Control.Y, s.End.X, s.End.Y, s.Color, s.Width); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "</svg>")
	return err
}

func bounds(segments []Segment) (minX, minY, maxX, maxY float64) {
	if len(segments) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = segments[0].Start.X, segments[0].Start.Y
	maxX, maxY = minX, minY
	for _, s := range segments {
		for _, p := range []Point{s.Start, s.End, s.Control} {
			if p.X < minX {
				minX = p.X
			}
			if p.X > maxX {
				maxX = p.X
			}
			if p.Y < minY {
				minY = p.Y
			}
			if p.Y > maxY {
				maxY = p.Y
			}
		}
	}
	return minX, minY, maxX, maxY
}
