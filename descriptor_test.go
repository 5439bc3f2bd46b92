package printmech

import "testing"

func singleGlyphFont(t *testing.T) *Font {
	t.Helper()
	data := []byte(`{"name":"single","glyph_width":5,"glyph_height":7,"glyphs":{"41":[32,80,136,136,248,136,136]}}`)
	f, err := LoadFontJSON(data)
	if err != nil {
		t.Fatalf("LoadFontJSON: %v", err)
	}
	return f
}

func TestDescriptorClassifiesGlyphAtOffset(t *testing.T) {
	// Scenario S4.
	font := singleGlyphFont(t)
	p := NewBlankPrintout(HeadWidth, font.Height)

	glyphBitmap, _ := font.Glyph('A')
	for y := 0; y < font.Height; y++ {
		for x := 0; x < font.Width; x++ {
			if glyphBitmap[y*font.Width+x] != 0 {
				p.rows[y][100+x] = pixelBurned
			}
		}
	}

	d := NewPrintoutDescriptor(p, []*Font{font})

	if len(d.Contents) != 1 {
		t.Fatalf("got %d VerticalSpaces, want 1", len(d.Contents))
	}
	v := d.Contents[0]
	if v.Span != (Span{0, font.Height}) {
		t.Fatalf("vertical span = %+v, want {0,%d}", v.Span, font.Height)
	}
	if len(v.Contents) != 3 {
		t.Fatalf("got %d horizontal spaces, want 3 [White, Glyph, White]: %+v", len(v.Contents), v.Contents)
	}

	gs, ok := v.Contents[1].(GlyphSpace)
	if !ok {
		t.Fatalf("middle content is %T, want GlyphSpace", v.Contents[1])
	}
	if len(gs.Matches) == 0 {
		t.Fatalf("GlyphSpace has no matches")
	}
	top := gs.Matches[0]
	if top.CodePoint != 'A' {
		t.Fatalf("top match code point = %d, want 'A'", top.CodePoint)
	}
	if top.Score >= strongMatchScore {
		t.Fatalf("top match score = %v, want a strong (<%v) match", top.Score, strongMatchScore)
	}

	// Invariant 8: refinement sets the GlyphSpace's span to the matched
	// glyph's exact W-by-H rectangle.
	wantSpan := Span{100, 100 + font.Width}
	if gs.Span != wantSpan {
		t.Fatalf("GlyphSpace span after refinement = %+v, want %+v", gs.Span, wantSpan)
	}
}

func TestDescriptorExtendMatchesFullRebuild(t *testing.T) {
	font := singleGlyphFont(t)
	full := NewBlankPrintout(HeadWidth, font.Height*2)

	glyphBitmap, _ := font.Glyph('A')
	place := func(p *Printout, rowOffset, colOffset int) {
		for y := 0; y < font.Height; y++ {
			for x := 0; x < font.Width; x++ {
				if glyphBitmap[y*font.Width+x] != 0 {
					p.rows[rowOffset+y][colOffset+x] = pixelBurned
				}
			}
		}
	}
	place(full, 0, 50)
	place(full, font.Height, 200)

	rebuilt := NewPrintoutDescriptor(full, []*Font{font})

	firstHalf := full.Slice(Span{0, font.Height})
	incremental := NewPrintoutDescriptor(firstHalf, []*Font{font})
	secondHalf := full.Slice(Span{font.Height, font.Height * 2})
	incremental.Extend(secondHalf)

	if len(incremental.Contents) != len(rebuilt.Contents) {
		t.Fatalf("incremental has %d VerticalSpaces, rebuilt has %d", len(incremental.Contents), len(rebuilt.Contents))
	}
	for i := range rebuilt.Contents {
		if incremental.Contents[i].Span != rebuilt.Contents[i].Span {
			t.Fatalf("VerticalSpace %d span mismatch: incremental %+v, rebuilt %+v", i, incremental.Contents[i].Span, rebuilt.Contents[i].Span)
		}
	}
}

func TestDescriptorExtendPreservesEarlierStableVerticalSpaces(t *testing.T) {
	font := singleGlyphFont(t)
	glyphBitmap, _ := font.Glyph('A')
	place := func(p *Printout, rowOffset, colOffset int) {
		for y := 0; y < font.Height; y++ {
			for x := 0; x < font.Width; x++ {
				if glyphBitmap[y*font.Width+x] != 0 {
					p.rows[rowOffset+y][colOffset+x] = pixelBurned
				}
			}
		}
	}

	// A glyph block directly followed by trailing blank rows: exactly two
	// VerticalSpaces exist before Extend is ever called, reproducing the
	// minimal [A, B] shape where a bug would discard both instead of just
	// the trailing one.
	initialHeight := font.Height + 3
	p := NewBlankPrintout(HeadWidth, initialHeight)
	place(p, 0, 50)

	d := NewPrintoutDescriptor(p, []*Font{font})
	if len(d.Contents) < 2 {
		t.Fatalf("got %d VerticalSpaces, want at least 2", len(d.Contents))
	}

	firstSpanBefore := d.Contents[0].Span
	firstHorizontalCountBefore := len(d.Contents[0].Contents)
	firstGlyphBefore, ok := d.Contents[0].Contents[1].(GlyphSpace)
	if !ok {
		t.Fatalf("first VerticalSpace's middle content is %T, want GlyphSpace", d.Contents[0].Contents[1])
	}

	d.Extend(NewBlankPrintout(HeadWidth, 2))

	if d.Contents[0].Span != firstSpanBefore {
		t.Fatalf("first VerticalSpace span changed after Extend: got %+v, want %+v (untouched)", d.Contents[0].Span, firstSpanBefore)
	}
	if len(d.Contents[0].Contents) != firstHorizontalCountBefore {
		t.Fatalf("first VerticalSpace horizontal content count changed after Extend: got %d, want %d", len(d.Contents[0].Contents), firstHorizontalCountBefore)
	}
	firstGlyphAfter, ok := d.Contents[0].Contents[1].(GlyphSpace)
	if !ok {
		t.Fatalf("first VerticalSpace's middle content is %T after Extend, want GlyphSpace", d.Contents[0].Contents[1])
	}
	if firstGlyphAfter.Span != firstGlyphBefore.Span {
		t.Fatalf("first VerticalSpace's GlyphSpace span changed after Extend: got %+v, want %+v", firstGlyphAfter.Span, firstGlyphBefore.Span)
	}
}

func TestDescriptorTextNonEmptyForBlankPrintout(t *testing.T) {
	p := NewBlankPrintout(HeadWidth, 3)
	font := singleGlyphFont(t)
	d := NewPrintoutDescriptor(p, []*Font{font})

	text := d.Text()
	if text == "" {
		t.Fatalf("Text() returned empty string for a non-empty descriptor")
	}
}
