// space.go - row/column activity segmentation into a tagged-variant tree.
//
// Ported from original_source/print_mech_analyser/parse/space.py. The
// HorizontalSpace tagged union is realized as a sealed interface (unexported
// marker method) with a type switch at each use site, the same shape the
// teacher uses for its small DebuggableCPU family in debug_interface.go.

package printmech

// HorizontalSpace is one of WhiteSpace, UnknownSpace, or GlyphSpace, each
// covering a half-open x-span.
type HorizontalSpace interface {
	horizontalSpace()
	HSpan() Span
}

// WhiteSpace marks a column span with no burned pixels.
type WhiteSpace struct {
	Span Span
}

func (WhiteSpace) horizontalSpace() {}

// HSpan returns the span this variant covers.
func (w WhiteSpace) HSpan() Span { return w.Span }

// UnknownSpace marks a column span containing burn not yet classified.
type UnknownSpace struct {
	Span Span
}

func (UnknownSpace) horizontalSpace() {}

// HSpan returns the span this variant covers.
func (u UnknownSpace) HSpan() Span { return u.Span }

// GlyphSpace marks a column span classified against one or more fonts.
// Matches is sorted ascending by score (best first).
type GlyphSpace struct {
	Span    Span
	Matches []GlyphMatch
}

func (GlyphSpace) horizontalSpace() {}

// HSpan returns the span this variant covers.
func (g GlyphSpace) HSpan() Span { return g.Span }

// VerticalSpace is a row-span of the printout together with its column
// segmentation.
type VerticalSpace struct {
	Span     Span
	Contents []HorizontalSpace
}

// IsWhitespace reports whether every content element is WhiteSpace.
func (v VerticalSpace) IsWhitespace() bool {
	for _, h := range v.Contents {
		if _, ok := h.(WhiteSpace); !ok {
			return false
		}
	}
	return true
}

// Segment runs the full-width, full-height segmenter over p.
func Segment(p *Printout) []VerticalSpace {
	return SegmentROI(p, Span{0, p.Length()})
}

// SegmentROI segments only rows within roi, offsetting every emitted span by
// roi.Beg so coordinates remain in printout space.
func SegmentROI(p *Printout, roi Span) []VerticalSpace {
	n := roi.Len()
	if n <= 0 {
		return nil
	}

	rowActive := func(i int) bool { return p.RowBurned(roi.Beg + i) }
	rowRuns := activityRuns(n, rowActive)

	out := make([]VerticalSpace, 0, len(rowRuns))
	for _, rr := range rowRuns {
		ySpan := Span{roi.Beg + rr.span.Beg, roi.Beg + rr.span.End}
		out = append(out, VerticalSpace{
			Span:     ySpan,
			Contents: segmentHorizontal(p, ySpan),
		})
	}
	return out
}

func segmentHorizontal(p *Printout, ySpan Span) []HorizontalSpace {
	width := p.Width()
	colActive := func(x int) bool {
		for y := ySpan.Beg; y < ySpan.End; y++ {
			if p.At(x, y) != pixelUnburned {
				return true
			}
		}
		return false
	}
	colRuns := activityRuns(width, colActive)

	out := make([]HorizontalSpace, 0, len(colRuns))
	for _, cr := range colRuns {
		if cr.active {
			out = append(out, UnknownSpace{Span: cr.span})
		} else {
			out = append(out, WhiteSpace{Span: cr.span})
		}
	}
	return out
}

type run struct {
	span   Span
	active bool
}

// activityRuns partitions [0, n) into maximal runs of constant active(i),
// in index order. Adjacent runs always differ in activity.
func activityRuns(n int, active func(i int) bool) []run {
	if n <= 0 {
		return nil
	}

	var out []run
	start := 0
	cur := active(0)
	for i := 1; i < n; i++ {
		a := active(i)
		if a != cur {
			out = append(out, run{Span{start, i}, cur})
			start = i
			cur = a
		}
	}
	out = append(out, run{Span{start, n}, cur})
	return out
}
