package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/d2font/d2face"
	"github.com/thatisuday/commando"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

func runRenderCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	name := strings.TrimSpace(args["font"].Value)
	if name == "" {
		fatalf("font path is required")
	}
	input, err := readInput(args["text"], flags["codepoints"])
	if err != nil {
		fatalf("%v", err)
	}
	face := d2face.NewOwningFace(mustLoadFont(name, flags))
	defer face.Close()
	out := flagString(flags["output"])
	margin := mustFlagInt(flags["margin"], "margin")
	showBBoxes := mustFlagBool(flags["show-bboxes"], "show-bboxes")
	if err := renderTextPNG(face, string(input), out, margin, showBBoxes); err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("wrote %s\n", out)
}

func renderTextPNG(face font.Face, text string, outPath string, margin int, showBBoxes bool) error {
	if margin < 0 {
		margin = 0
	}
	metrics := face.Metrics()
	width := font.MeasureString(face, text).Ceil() + 2*margin
	height := metrics.Height.Ceil() + 2*margin
	if width <= 2*margin || height <= 2*margin {
		return fmt.Errorf("nothing to render for %q", text)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	dot := fixed.P(margin, margin+metrics.Ascent.Ceil())
	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: face,
		Dot:  dot,
	}
	if showBBoxes {
		prev := rune(-1)
		pen := dot
		red := color.RGBA{R: 255, A: 255}
		for _, r := range text {
			if prev >= 0 {
				pen.X += face.Kern(prev, r)
			}
			bounds, adv, ok := face.GlyphBounds(r)
			if ok {
				drawRectOutline(img,
					(pen.X + bounds.Min.X).Floor(), (pen.Y + bounds.Min.Y).Floor(),
					(pen.X + bounds.Max.X).Ceil(), (pen.Y + bounds.Max.Y).Ceil(), red)
			}
			pen.X += adv
			prev = r
		}
	}
	d.DrawString(text)

	if dir := filepath.Dir(outPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create output directory: %w", err)
		}
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("cannot create output file: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("cannot encode png: %w", err)
	}
	return nil
}

func drawRectOutline(img *image.RGBA, minX int, minY int, maxX int, maxY int, c color.RGBA) {
	r := image.Rect(minX, minY, maxX, maxY).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	// top and bottom
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, c)
		img.SetRGBA(x, r.Max.Y-1, c)
	}
	// left and right
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, c)
		img.SetRGBA(r.Max.X-1, y, c)
	}
}
