package printmech

import "testing"

func TestSpanLen(t *testing.T) {
	s := Span{Beg: 3, End: 10}
	if got := s.Len(); got != 7 {
		t.Fatalf("Len() = %d, want 7", got)
	}
	if !s.HasVolume() {
		t.Fatalf("HasVolume() = false, want true")
	}
	if (Span{Beg: 5, End: 5}).HasVolume() {
		t.Fatalf("zero-width span reported HasVolume")
	}
}

func TestBoundingBoxDimensions(t *testing.T) {
	b := BoxFromSpans(Span{Beg: 10, End: 20}, Span{Beg: 0, End: 8})
	if b.Width() != 10 || b.Height() != 8 {
		t.Fatalf("got %dx%d, want 10x8", b.Width(), b.Height())
	}
	if got := b.Center(); got != (Point{X: 15, Y: 4}) {
		t.Fatalf("Center() = %+v, want {15 4}", got)
	}
}

func TestBoundingBoxClamp(t *testing.T) {
	outer := BoundingBox{P1: Point{0, 0}, P2: Point{100, 50}}

	cases := []struct {
		name string
		in   BoundingBox
		want BoundingBox
	}{
		{
			name: "fully inside",
			in:   BoundingBox{P1: Point{10, 10}, P2: Point{20, 20}},
			want: BoundingBox{P1: Point{10, 10}, P2: Point{20, 20}},
		},
		{
			name: "overshoots top-left",
			in:   BoundingBox{P1: Point{-5, -5}, P2: Point{10, 10}},
			want: BoundingBox{P1: Point{0, 0}, P2: Point{10, 10}},
		},
		{
			name: "overshoots bottom-right",
			in:   BoundingBox{P1: Point{90, 40}, P2: Point{110, 60}},
			want: BoundingBox{P1: Point{90, 40}, P2: Point{100, 50}},
		},
		{
			name: "entirely outside",
			in:   BoundingBox{P1: Point{200, 200}, P2: Point{210, 210}},
			want: BoundingBox{P1: Point{100, 50}, P2: Point{100, 50}},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.in.Clamp(outer); got != c.want {
				t.Fatalf("Clamp() = %+v, want %+v", got, c.want)
			}
		})
	}
}

func TestPointAddSub(t *testing.T) {
	p := Point{1, 2}
	q := Point{3, 4}
	if got := p.Add(q); got != (Point{4, 6}) {
		t.Fatalf("Add() = %+v, want {4 6}", got)
	}
	if got := q.Sub(p); got != (Point{2, 2}) {
		t.Fatalf("Sub() = %+v, want {2 2}", got)
	}
}
