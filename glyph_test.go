package printmech

import "testing"

func smallFont(t *testing.T) *Font {
	t.Helper()
	// A 3x3 font with two glyphs: a solid block (code point 'X') and a
	// plus shape (code point '+'), exercised directly rather than through
	// the JSON loader.
	solid := []byte{
		255, 255, 255,
		255, 255, 255,
		255, 255, 255,
	}
	plus := []byte{
		0, 255, 0,
		255, 255, 255,
		0, 255, 0,
	}
	f := &Font{
		Name:       "test",
		Width:      3,
		Height:     3,
		codePoints: []int{'X', '+'},
		glyphs:     map[int][]byte{'X': solid, '+': plus},
		contours:   map[int][]Contour{},
	}
	f.contours['X'] = findContours(solid, 3, 3)
	f.contours['+'] = findContours(plus, 3, 3)
	return f
}

func TestMatchGlyphWhitespace(t *testing.T) {
	// Invariant 7: an all-zero region matches whitespace with score 0.
	p := NewBlankPrintout(9, 3)
	font := smallFont(t)

	region := BoundingBox{P1: Point{0, 0}, P2: Point{9, 3}}
	matches := MatchGlyph(p, region, font)

	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].Char != "   " {
		t.Fatalf("Char = %q, want 3 spaces", matches[0].Char)
	}
	if matches[0].Score != 0 {
		t.Fatalf("Score = %v, want 0", matches[0].Score)
	}
}

func TestMatchGlyphExactSolidBlock(t *testing.T) {
	rows := [][]byte{
		{255, 255, 255},
		{255, 255, 255},
		{255, 255, 255},
	}
	p, err := NewPrintoutFromRows(rows)
	if err != nil {
		t.Fatalf("NewPrintoutFromRows: %v", err)
	}
	font := smallFont(t)
	region := BoundingBox{P1: Point{0, 0}, P2: Point{3, 3}}

	matches := MatchGlyph(p, region, font)

	var found bool
	for _, m := range matches {
		if m.CodePoint == 'X' {
			found = true
			if m.Score >= TemplateThreshold {
				t.Fatalf("solid-block match score %v exceeds threshold", m.Score)
			}
		}
	}
	if !found {
		t.Fatalf("expected an 'X' candidate among matches: %+v", matches)
	}
}

func TestFindContoursSinglePixel(t *testing.T) {
	bitmap := []byte{0, 0, 0, 0, 255, 0, 0, 0, 0}
	contours := findContours(bitmap, 3, 3)
	if len(contours) != 1 {
		t.Fatalf("got %d contours, want 1", len(contours))
	}
	if len(contours[0].Points) != 1 {
		t.Fatalf("isolated pixel contour has %d points, want 1", len(contours[0].Points))
	}
}

func TestFindContoursFourIsolatedPixels(t *testing.T) {
	bitmap := []byte{
		255, 0, 0, 0, 255,
		0, 0, 0, 0, 0,
		255, 0, 0, 0, 255,
	}
	contours := findContours(bitmap, 5, 3)
	if len(contours) != 4 {
		t.Fatalf("got %d contours, want 4 (one per isolated corner pixel)", len(contours))
	}
}

func TestHuMomentsSelfDistanceIsZero(t *testing.T) {
	points := []Point{{0, 0}, {1, 0}, {2, 0}, {2, 1}, {2, 2}, {1, 2}, {0, 2}, {0, 1}}
	a := huMoments(points)
	b := huMoments(points)
	if d := matchShapesI1(a, b); d != 0 {
		t.Fatalf("self shape distance = %v, want 0", d)
	}
}

func TestContourSimilarityEmptyInputs(t *testing.T) {
	if got := contourSimilarity(nil, []Contour{{Points: []Point{{0, 0}}}}); got != 0 {
		t.Fatalf("contourSimilarity with no region contours = %v, want 0", got)
	}
}
