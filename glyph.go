// glyph.go - contour pre-filter and template refinement glyph matcher.
//
// Ported from original_source/print_mech_analyser/parse/character.py
// (parse_image_character_bbox / contour_similarity / template_similarity).
// There is no OpenCV-class binding anywhere in the retrieval pack (see
// DESIGN.md), so contour extraction, the Hu-moment-style shape distance,
// and the SSD template search are implemented directly against the raw
// byte bitmaps, in the spirit of the pack's own hand-rolled image
// algorithms (esimov-caire's sobel.go/grayscale.go/stackblur.go).

package printmech

import (
	"math"
	"strings"
)

// Matcher thresholds. Lower is better for both.
const (
	ContourThreshold  = 0.1
	TemplateThreshold = 100.0
)

// GlyphMatch is one ranked candidate produced by the matcher.
type GlyphMatch struct {
	Char      string
	FontName  string
	CodePoint int
	Score     float64
	Pos       BoundingBox
}

// MatchGlyph runs the contour prefilter and template refinement described
// over region of source, against every glyph in font.
func MatchGlyph(source *Printout, region BoundingBox, font *Font) []GlyphMatch {
	if regionAllZero(source, region) {
		spaces := truncDiv(region.Width(), font.Width)
		return []GlyphMatch{{
			Char:      strings.Repeat(" ", spaces),
			FontName:  font.Name,
			CodePoint: 0x20,
			Score:     0,
			Pos:       BoundingBox{},
		}}
	}

	imageBBox := BoundingBox{P1: Point{0, 0}, P2: Point{source.Width(), source.Length()}}

	xpad := 0
	if region.Width() < font.Width {
		xpad = font.Width - region.Width()
	}
	ypad := 0
	if region.Height() < font.Height {
		ypad = font.Height - region.Height()
	}

	paddedUnclamped := BoundingBox{
		P1: region.P1.Sub(Point{xpad, ypad}),
		P2: region.P2.Add(Point{xpad, ypad}),
	}
	padded := paddedUnclamped.Clamp(imageBBox)

	paddedImg := extractSubImage(source, padded)
	regionImg := extractSubImage(source, region)
	regionContours := findContours(regionImg, region.Width(), region.Height())

	var matches []GlyphMatch
	for _, cp := range font.CodePoints() {
		glyphContours := font.Contours(cp)
		if len(glyphContours) == 0 {
			continue
		}
		// The glyph must have at least as many contours as the region, not
		// exactly equal.
		if len(glyphContours) < len(regionContours) {
			continue
		}
		if contourSimilarity(regionContours, glyphContours) >= ContourThreshold {
			continue
		}

		glyphBitmap, _ := font.Glyph(cp)
		minSSD, offset := templateMatch(paddedImg, padded.Width(), padded.Height(), glyphBitmap, font.Width, font.Height)
		if minSSD >= TemplateThreshold {
			continue
		}

		resultWidth := padded.Width() - font.Width + 1
		resultHeight := padded.Height() - font.Height + 1

		matchCenter := offset.Add(Point{truncDiv(resultWidth, 2), truncDiv(resultHeight, 2)})

		transformVector := region.P1.Sub(padded.P1)
		matchCenter = matchCenter.Sub(transformVector)
		matchCenter = padded.Center().Add(matchCenter)

		cornerOffset := Point{truncDiv(font.Width, 2), truncDiv(font.Height, 2)}
		topLeft := matchCenter.Sub(cornerOffset)
		pos := BoundingBox{
			P1: topLeft,
			P2: topLeft.Add(Point{font.Width, font.Height}),
		}.Clamp(imageBBox)

		matches = append(matches, GlyphMatch{
			Char:      string(rune(cp)),
			FontName:  font.Name,
			CodePoint: cp,
			Score:     minSSD,
			Pos:       pos,
		})
	}

	return matches
}

func regionAllZero(source *Printout, region BoundingBox) bool {
	for y := region.P1.Y; y < region.P2.Y; y++ {
		for x := region.P1.X; x < region.P2.X; x++ {
			if source.At(x, y) != 0 {
				return false
			}
		}
	}
	return true
}

// extractSubImage copies box out of source into a flat row-major slice.
func extractSubImage(source *Printout, box BoundingBox) []byte {
	w, h := box.Width(), box.Height()
	out := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y*w+x] = source.At(box.P1.X+x, box.P1.Y+y)
		}
	}
	return out
}

// templateMatch slides template (width*height, row-major) over image
// (imgW*imgH, row-major) and returns the minimum sum-of-squared-differences
// and its top-left offset within image. Both buffers are compared in a
// normalized 0/1 domain (nonzero => 1) so that TemplateThreshold is
// meaningful regardless of whether callers hold 0/255 or 0/1 pixels; see
// DESIGN.md for why this departs from literal 0/255 SQDIFF.
func templateMatch(image []byte, imgW, imgH int, template []byte, tW, tH int) (float64, Point) {
	best := math.Inf(1)
	var bestPos Point

	maxX := imgW - tW
	maxY := imgH - tH
	if maxX < 0 || maxY < 0 {
		return best, bestPos
	}

	bit := func(v byte) float64 {
		if v != 0 {
			return 1
		}
		return 0
	}

	for oy := 0; oy <= maxY; oy++ {
		for ox := 0; ox <= maxX; ox++ {
			sum := 0.0
			for ty := 0; ty < tH; ty++ {
				for tx := 0; tx < tW; tx++ {
					diff := bit(template[ty*tW+tx]) - bit(image[(oy+ty)*imgW+(ox+tx)])
					sum += diff * diff
				}
			}
			if sum < best {
				best = sum
				bestPos = Point{ox, oy}
			}
		}
	}

	return best, bestPos
}

// contourSimilarity averages the Hu-moment-style shape distance between
// paired contours, over the region's contour count.
func contourSimilarity(regionContours, glyphContours []Contour) float64 {
	if len(regionContours) == 0 || len(glyphContours) == 0 {
		return 0
	}
	sum := 0.0
	for i, rc := range regionContours {
		if i >= len(glyphContours) {
			break
		}
		sum += matchShapesI1(huMoments(rc.Points), huMoments(glyphContours[i].Points))
	}
	return sum / float64(len(regionContours))
}

// huMoments computes the seven Hu moment invariants of a point set, treating
// each boundary point as a unit mass (a discrete analogue of the
// Green's-theorem contour moments OpenCV computes).
func huMoments(points []Point) [7]float64 {
	var h [7]float64
	m00 := float64(len(points))
	if m00 == 0 {
		return h
	}

	var m10, m01 float64
	for _, p := range points {
		m10 += float64(p.X)
		m01 += float64(p.Y)
	}
	xc, yc := m10/m00, m01/m00

	var mu20, mu02, mu11, mu30, mu03, mu21, mu12 float64
	for _, p := range points {
		dx := float64(p.X) - xc
		dy := float64(p.Y) - yc
		mu20 += dx * dx
		mu02 += dy * dy
		mu11 += dx * dy
		mu30 += dx * dx * dx
		mu03 += dy * dy * dy
		mu21 += dx * dx * dy
		mu12 += dx * dy * dy
	}

	norm := func(mu, order float64) float64 { return mu / math.Pow(m00, order) }

	eta20 := norm(mu20, 2)
	eta02 := norm(mu02, 2)
	eta11 := norm(mu11, 2)
	eta30 := norm(mu30, 2.5)
	eta03 := norm(mu03, 2.5)
	eta21 := norm(mu21, 2.5)
	eta12 := norm(mu12, 2.5)

	h[0] = eta20 + eta02
	h[1] = (eta20-eta02)*(eta20-eta02) + 4*eta11*eta11
	h[2] = (eta30-3*eta12)*(eta30-3*eta12) + (3*eta21-eta03)*(3*eta21-eta03)
	h[3] = (eta30+eta12)*(eta30+eta12) + (eta21+eta03)*(eta21+eta03)
	h[4] = (eta30-3*eta12)*(eta30+eta12)*((eta30+eta12)*(eta30+eta12)-3*(eta21+eta03)*(eta21+eta03)) +
		(3*eta21-eta03)*(eta21+eta03)*(3*(eta30+eta12)*(eta30+eta12)-(eta21+eta03)*(eta21+eta03))
	h[5] = (eta20-eta02)*((eta30+eta12)*(eta30+eta12)-(eta21+eta03)*(eta21+eta03)) +
		4*eta11*(eta30+eta12)*(eta21+eta03)
	h[6] = (3*eta21-eta03)*(eta30+eta12)*((eta30+eta12)*(eta30+eta12)-3*(eta21+eta03)*(eta21+eta03)) -
		(eta30-3*eta12)*(eta21+eta03)*(3*(eta30+eta12)*(eta30+eta12)-(eta21+eta03)*(eta21+eta03))

	return h
}

// matchShapesI1 reproduces OpenCV's CONTOURS_MATCH_I1 metric over two Hu
// moment vectors.
func matchShapesI1(a, b [7]float64) float64 {
	signedLog := func(v float64) float64 {
		av := math.Abs(v)
		if av < 1e-30 {
			av = 1e-30
		}
		s := 1.0
		if v < 0 {
			s = -1.0
		}
		return s * math.Log(av)
	}

	sum := 0.0
	for i := 0; i < 7; i++ {
		ma := signedLog(a[i])
		mb := signedLog(b[i])
		if ma == 0 || mb == 0 {
			continue
		}
		sum += math.Abs(1/ma - 1/mb)
	}
	return sum
}

// findContours returns one Contour per 8-connected external (outer)
// boundary of the foreground (nonzero) pixels in bitmap. Interior holes
// are not traced separately.
func findContours(bitmap []byte, width, height int) []Contour {
	if width <= 0 || height <= 0 {
		return nil
	}

	foreground := func(x, y int) bool {
		if x < 0 || x >= width || y < 0 || y >= height {
			return false
		}
		return bitmap[y*width+x] != 0
	}

	components := connectedComponents(bitmap, width, height)

	contours := make([]Contour, 0, len(components))
	for _, comp := range components {
		start := topLeftMost(comp)
		contours = append(contours, Contour{Points: traceOuterBoundary(foreground, start)})
	}
	return contours
}

func topLeftMost(points []Point) Point {
	best := points[0]
	for _, p := range points[1:] {
		if p.Y < best.Y || (p.Y == best.Y && p.X < best.X) {
			best = p
		}
	}
	return best
}

// connectedComponents labels 8-connected foreground regions and returns the
// pixel set of each, in discovery order.
func connectedComponents(bitmap []byte, width, height int) [][]Point {
	visited := make([]bool, width*height)
	var components [][]Point

	offsets := [8]Point{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			if bitmap[idx] == 0 || visited[idx] {
				continue
			}

			var comp []Point
			queue := []Point{{x, y}}
			visited[idx] = true
			for len(queue) > 0 {
				p := queue[len(queue)-1]
				queue = queue[:len(queue)-1]
				comp = append(comp, p)

				for _, d := range offsets {
					nx, ny := p.X+d.X, p.Y+d.Y
					if nx < 0 || nx >= width || ny < 0 || ny >= height {
						continue
					}
					nidx := ny*width + nx
					if bitmap[nidx] != 0 && !visited[nidx] {
						visited[nidx] = true
						queue = append(queue, Point{nx, ny})
					}
				}
			}
			components = append(components, comp)
		}
	}
	return components
}

// moorePixelNeighbors holds the 8-connected offsets in clockwise order
// starting due west, as used by Moore-neighbor boundary tracing.
var moorePixelNeighbors = [8]Point{
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1},
}

func neighborDirIndex(from, to Point) int {
	d := to.Sub(from)
	for i, n := range moorePixelNeighbors {
		if n == d {
			return i
		}
	}
	return 0
}

// traceOuterBoundary implements Moore-neighbor tracing (Jacob's stopping
// criterion approximated with a start-pixel revisit check) to order the
// boundary pixels of the component containing start.
func traceOuterBoundary(foreground func(x, y int) bool, start Point) []Point {
	boundary := []Point{start}

	if !hasForegroundNeighbor(foreground, start) {
		return boundary // isolated single pixel
	}

	backtrack := Point{start.X - 1, start.Y}
	current := start
	checkIdx := neighborDirIndex(current, backtrack)

	maxSteps := 4096
	for step := 0; step < maxSteps; step++ {
		found := false
		var next Point
		var nextCheckIdx int
		for i := 1; i <= 8; i++ {
			idx := (checkIdx + i) % 8
			cand := current.Add(moorePixelNeighbors[idx])
			if foreground(cand.X, cand.Y) {
				next = cand
				nextCheckIdx = (idx + 7) % 8 // one step back from where we found it
				found = true
				break
			}
		}
		if !found {
			break
		}
		if next == start {
			break
		}
		boundary = append(boundary, next)
		current = next
		checkIdx = nextCheckIdx
	}

	return boundary
}

func hasForegroundNeighbor(foreground func(x, y int) bool, p Point) bool {
	for _, d := range moorePixelNeighbors {
		if foreground(p.X+d.X, p.Y+d.Y) {
			return true
		}
	}
	return false
}
