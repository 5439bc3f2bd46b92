// overlay is a visual preview binary for a captured printout: it loads a
// saved PNG, recognises text with the default fonts, and renders burned
// pixels tinted a configurable colour with recognised glyph boxes outlined.
//
// Grounded on video_backend_ebiten.go: the same ebiten.Game interface
// (Update/Draw/Layout), the same NewImage + WritePixels framebuffer
// pattern, and ebiten.RunGame to drive it. This is a thin binary; only the
// pure tintedImage and parseHexColor helpers are exercised by tests.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	printmech "github.com/sullyy9/martel-print-mech-analyser-software"
)

func main() {
	path := flag.String("in", "", "printout PNG to load")
	tintHex := flag.String("tint", "ff6600", "hex RGB colour to tint burned pixels")
	scale := flag.Int("scale", 2, "integer window scale")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: overlay -in <printout.png> [options]\n\nRenders a captured printout with burned pixels tinted and recognised\nglyphs outlined.\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(1)
	}

	tint, err := parseHexColor(*tintHex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: -tint: %v\n", err)
		os.Exit(1)
	}

	printout, err := printmech.LoadPrintout(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading %s: %v\n", *path, err)
		os.Exit(1)
	}

	regular, err := printmech.DefaultFont()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading font: %v\n", err)
		os.Exit(1)
	}
	bold, err := regular.IntoBold()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: deriving bold font: %v\n", err)
		os.Exit(1)
	}
	descriptor := printmech.NewPrintoutDescriptor(printout, []*printmech.Font{regular, bold})

	g := &overlayGame{
		printout:   printout,
		descriptor: descriptor,
		tint:       tint,
		scale:      *scale,
	}

	ebiten.SetWindowSize(printout.Width()*g.scale, printout.Length()*g.scale)
	ebiten.SetWindowTitle("printout overlay: " + *path)
	ebiten.SetWindowResizable(true)

	if err := ebiten.RunGame(g); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// overlayGame implements ebiten.Game. It never mutates the printout or
// descriptor it was built with, so it needs no synchronisation of its
// own (unlike EbitenOutput, which shares a frame buffer
// with a writer goroutine).
type overlayGame struct {
	printout   *printmech.Printout
	descriptor *printmech.PrintoutDescriptor
	tint       color.RGBA
	scale      int

	frame *ebiten.Image
}

func (g *overlayGame) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	return nil
}

func (g *overlayGame) Draw(screen *ebiten.Image) {
	if g.frame == nil {
		g.frame = ebiten.NewImage(g.printout.Width(), g.printout.Length())
		g.frame.WritePixels(tintedImage(g.printout, g.tint))
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.frame, opts)

	g.drawGlyphBoxes(screen)
}

func (g *overlayGame) Layout(_, _ int) (int, int) {
	return g.printout.Width() * g.scale, g.printout.Length() * g.scale
}

// drawGlyphBoxes outlines every recognised GlyphSpace and labels it with
// its top match, using basicfont for small on-screen text.
func (g *overlayGame) drawGlyphBoxes(screen *ebiten.Image) {
	for _, v := range g.descriptor.Contents {
		for _, h := range v.Contents {
			gs, ok := h.(printmech.GlyphSpace)
			if !ok || len(gs.Matches) == 0 {
				continue
			}
			box := printmech.BoxFromSpans(gs.Span, v.Span)
			drawBoxOutline(screen, box, g.scale, color.RGBA{0, 255, 0, 255})
			drawLabel(screen, box, g.scale, gs.Matches[0].Char)
		}
	}
}

func drawBoxOutline(screen *ebiten.Image, box printmech.BoundingBox, scale int, c color.RGBA) {
	x0, y0 := box.P1.X*scale, box.P1.Y*scale
	x1, y1 := box.P2.X*scale, box.P2.Y*scale
	for x := x0; x < x1; x++ {
		screen.Set(x, y0, c)
		screen.Set(x, y1-1, c)
	}
	for y := y0; y < y1; y++ {
		screen.Set(x0, y, c)
		screen.Set(x1-1, y, c)
	}
}

// drawLabel rasterises label with basicfont into a small RGBA image via
// font.Drawer, then blits it as an ebiten sprite just below box.
func drawLabel(screen *ebiten.Image, box printmech.BoundingBox, scale int, label string) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, label).Ceil()
	if width <= 0 {
		return
	}
	height := face.Metrics().Height.Ceil()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	drawer.DrawString(label)

	sprite := ebiten.NewImageFromImage(img)
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Translate(float64(box.P1.X*scale), float64(box.P2.Y*scale))
	screen.DrawImage(sprite, opts)
}

// tintedImage renders a printout as an RGBA byte buffer (row-major,
// 4 bytes/pixel) with burned pixels drawn in tint and unburned pixels
// left black. Pure and independent of ebiten, so it can be unit tested
// without a display.
func tintedImage(p *printmech.Printout, tint color.RGBA) []byte {
	w, h := p.Width(), p.Length()
	out := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			if p.At(x, y) != 0 {
				out[i] = tint.R
				out[i+1] = tint.G
				out[i+2] = tint.B
				out[i+3] = 255
			} else {
				out[i+3] = 255
			}
		}
	}
	return out
}

func parseHexColor(s string) (color.RGBA, error) {
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("expected 6 hex digits, got %q", s)
	}
	var r, g, b int
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, err
	}
	return color.RGBA{R: byte(r), G: byte(g), B: byte(b), A: 255}, nil
}
