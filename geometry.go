// geometry.go - integer geometry primitives shared by the printout pipeline.

package printmech

// Point is an integer coordinate in printout space: x across the printhead
// width, y down the length of the paper.
type Point struct {
	X, Y int
}

// Add returns the componentwise sum of p and q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns the componentwise difference p - q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Span is a half-open integer interval [Beg, End).
type Span struct {
	Beg, End int
}

// Len returns End - Beg. A span with End <= Beg has zero or negative
// length; HasVolume reports whether it actually contains any indices.
func (s Span) Len() int {
	return s.End - s.Beg
}

// HasVolume reports whether the span contains at least one index.
func (s Span) HasVolume() bool {
	return s.End > s.Beg
}

// BoundingBox is a rectangle with an inclusive top-left corner P1 and an
// exclusive bottom-right corner P2.
type BoundingBox struct {
	P1, P2 Point
}

// BoxFromSpans builds a BoundingBox from an x-span and a y-span.
func BoxFromSpans(xspan, yspan Span) BoundingBox {
	return BoundingBox{
		P1: Point{xspan.Beg, yspan.Beg},
		P2: Point{xspan.End, yspan.End},
	}
}

// Width returns P2.X - P1.X.
func (b BoundingBox) Width() int {
	return b.P2.X - b.P1.X
}

// Height returns P2.Y - P1.Y.
func (b BoundingBox) Height() int {
	return b.P2.Y - b.P1.Y
}

// Center returns the integer center of the box, rounding down as the
// original Python implementation does (int() truncation, not round-to-even).
func (b BoundingBox) Center() Point {
	return Point{
		X: b.P1.X + (b.P2.X-b.P1.X)/2,
		Y: b.P1.Y + (b.P2.Y-b.P1.Y)/2,
	}
}

// HorizontalSpan returns the box's x-extent as a Span.
func (b BoundingBox) HorizontalSpan() Span {
	return Span{b.P1.X, b.P2.X}
}

// VerticalSpan returns the box's y-extent as a Span.
func (b BoundingBox) VerticalSpan() Span {
	return Span{b.P1.Y, b.P2.Y}
}

// Clamp returns b clipped coordinate-wise into outer, matching the Python
// reference's per-axis max(min(..), ..) clamp rather than a bbox-intersect.
func (b BoundingBox) Clamp(outer BoundingBox) BoundingBox {
	clampAxis := func(v, lo, hi int) int {
		if v > hi {
			v = hi
		}
		if v < lo {
			v = lo
		}
		return v
	}

	return BoundingBox{
		P1: Point{
			X: clampAxis(b.P1.X, outer.P1.X, outer.P2.X),
			Y: clampAxis(b.P1.Y, outer.P1.Y, outer.P2.Y),
		},
		P2: Point{
			X: clampAxis(b.P2.X, outer.P1.X, outer.P2.X),
			Y: clampAxis(b.P2.Y, outer.P1.Y, outer.P2.Y),
		},
	}
}
