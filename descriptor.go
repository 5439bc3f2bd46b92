// descriptor.go - classification and geometric refinement over a segmented
// printout.
//
// Ported from original_source/print_mech_analyser/parse/descriptor.py
// (PrintoutDescriptor.new / parse_unknown / constrain_whitespace).

package printmech

import (
	"sort"
	"strings"
)

// strongMatchScore is the score below which a GlyphMatch's pos is trusted
// enough to tighten neighboring spans.
const strongMatchScore = 0.001

// PrintoutDescriptor holds a segmented, classified view of a printout. It
// exclusively owns Contents; Printout and Fonts are read-only from its
// perspective.
type PrintoutDescriptor struct {
	Printout *Printout
	Contents []VerticalSpace
	Fonts    []*Font
}

// NewPrintoutDescriptor segments p, classifies every UnknownSpace against
// fonts, and refines the result.
func NewPrintoutDescriptor(p *Printout, fonts []*Font) *PrintoutDescriptor {
	d := &PrintoutDescriptor{Printout: p, Fonts: fonts}
	d.Contents = Segment(p)
	d.classifyRange(0, len(d.Contents))
	d.constrainRange(0, len(d.Contents))
	d.dropEmptyVertical()
	return d
}

// Extend appends newRows to the printout and re-segments/re-classifies only
// the ROI starting at the beginning of the last (truncated, in-progress)
// VerticalSpace, preserving the stable classifications of every earlier
// entry.
func (d *PrintoutDescriptor) Extend(newRows *Printout) {
	d.Printout.Extend(newRows)

	roiBeg := 0
	if len(d.Contents) > 0 {
		last := d.Contents[len(d.Contents)-1]
		roiBeg = last.Span.Beg
		d.Contents = d.Contents[:len(d.Contents)-1] // discard truncated in-progress span
	}

	fresh := SegmentROI(d.Printout, Span{roiBeg, d.Printout.Length()})
	startIdx := len(d.Contents)
	d.Contents = append(d.Contents, fresh...)

	d.classifyRange(startIdx, len(d.Contents))
	d.constrainRange(startIdx, len(d.Contents))
	d.dropEmptyVertical()
}

// Text renders the descriptor as plain text, one line per VerticalSpace:
// WhiteSpace as a blank, UnknownSpace as '?', GlyphSpace as its top match's
// character.
func (d *PrintoutDescriptor) Text() string {
	var b strings.Builder
	for _, v := range d.Contents {
		for _, h := range v.Contents {
			switch x := h.(type) {
			case WhiteSpace:
				b.WriteString(" ")
			case UnknownSpace:
				b.WriteString("?")
			case GlyphSpace:
				if len(x.Matches) > 0 {
					b.WriteString(x.Matches[0].Char)
				} else {
					b.WriteString("?")
				}
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (d *PrintoutDescriptor) classifyRange(lo, hi int) {
	for vi := lo; vi < hi; vi++ {
		d.classifyVertical(vi)
	}
}

func (d *PrintoutDescriptor) classifyVertical(vi int) {
	v := d.Contents[vi]
	for hi, h := range v.Contents {
		u, ok := h.(UnknownSpace)
		if !ok {
			continue
		}
		matches := d.classify(v.Span, u.Span)
		if len(matches) > 0 {
			v.Contents[hi] = GlyphSpace{Span: u.Span, Matches: matches}
		}
	}
}

// classify runs the glyph matcher for hSpan within vSpan against every font
// whose dimensions aren't drastically smaller than the region, aggregating
// and sorting matches ascending by score.
func (d *PrintoutDescriptor) classify(vSpan, hSpan Span) []GlyphMatch {
	region := BoxFromSpans(hSpan, vSpan)

	var all []GlyphMatch
	for _, f := range d.Fonts {
		if float64(vSpan.Len()) > 1.5*float64(f.Height) {
			continue
		}
		if float64(hSpan.Len()) > 1.5*float64(f.Width) {
			continue
		}
		all = append(all, MatchGlyph(d.Printout, region, f)...)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Score < all[j].Score })
	return all
}

func (d *PrintoutDescriptor) constrainRange(lo, hi int) {
	for vi := lo; vi < hi; vi++ {
		d.constrainHorizontal(vi)
		d.constrainVertical(vi)
		d.dropEmptyHorizontal(vi)
	}
}

// constrainHorizontal replaces every strong-match GlyphSpace's x-span with
// its match's pos, and clips its immediate neighbors within the same
// VerticalSpace to that boundary.
func (d *PrintoutDescriptor) constrainHorizontal(vi int) {
	contents := d.Contents[vi].Contents
	for hi, h := range contents {
		gs, ok := h.(GlyphSpace)
		if !ok || len(gs.Matches) == 0 {
			continue
		}
		top := gs.Matches[0]
		if top.Score >= strongMatchScore {
			continue
		}

		newSpan := top.Pos.HorizontalSpan()
		gs.Span = newSpan
		contents[hi] = gs

		if hi > 0 {
			contents[hi-1] = withHorizontalEnd(contents[hi-1], newSpan.Beg)
		}
		if hi < len(contents)-1 {
			contents[hi+1] = withHorizontalBeg(contents[hi+1], newSpan.End)
		}
	}
}

// constrainVertical replaces a VerticalSpace's own span with the shared
// vertical span of its strong matches, when they all agree, and clips the
// adjacent VerticalSpaces to the new boundary.
func (d *PrintoutDescriptor) constrainVertical(vi int) {
	var strongSpan Span
	found := false
	consistent := true

	for _, h := range d.Contents[vi].Contents {
		gs, ok := h.(GlyphSpace)
		if !ok || len(gs.Matches) == 0 {
			continue
		}
		top := gs.Matches[0]
		if top.Score >= strongMatchScore {
			continue
		}
		span := top.Pos.VerticalSpan()
		if !found {
			strongSpan = span
			found = true
		} else if span != strongSpan {
			consistent = false
		}
	}

	if !found || !consistent {
		return
	}

	d.Contents[vi].Span = strongSpan
	if vi > 0 {
		d.Contents[vi-1].Span.End = strongSpan.Beg
	}
	if vi < len(d.Contents)-1 {
		d.Contents[vi+1].Span.Beg = strongSpan.End
	}
}

func (d *PrintoutDescriptor) dropEmptyHorizontal(vi int) {
	contents := d.Contents[vi].Contents
	out := contents[:0]
	for _, h := range contents {
		if h.HSpan().Len() > 0 {
			out = append(out, h)
		}
	}
	d.Contents[vi].Contents = out
}

func (d *PrintoutDescriptor) dropEmptyVertical() {
	out := d.Contents[:0]
	for _, v := range d.Contents {
		if v.Span.Len() > 0 {
			out = append(out, v)
		}
	}
	d.Contents = out
}

func withHorizontalEnd(h HorizontalSpace, end int) HorizontalSpace {
	switch v := h.(type) {
	case WhiteSpace:
		v.Span.End = end
		return v
	case UnknownSpace:
		v.Span.End = end
		return v
	case GlyphSpace:
		v.Span.End = end
		return v
	default:
		return h
	}
}

func withHorizontalBeg(h HorizontalSpace, beg int) HorizontalSpace {
	switch v := h.(type) {
	case WhiteSpace:
		v.Span.Beg = beg
		return v
	case UnknownSpace:
		v.Span.Beg = beg
		return v
	case GlyphSpace:
		v.Span.Beg = beg
		return v
	default:
		return h
	}
}
