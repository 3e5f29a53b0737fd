package main

import (
	"fmt"
	"image"
	"strings"

	"github.com/pterm/pterm"
	"golang.org/x/text/unicode/runenames"
)

// shades renders alpha values from transparent to opaque.
var shades = []rune(" .:-=+*#%@")

func glyphOp(intp *Intp, op *Op) (error, bool) {
	arg, ok := op.hasArg()
	if !ok {
		if intp.last == 0 {
			return fmt.Errorf("usage: glyph:<code-point>"), false
		}
		arg = string(intp.last)
	}
	r, err := parseRune(arg)
	if err != nil {
		return err, false
	}
	intp.last = r
	gid, ok := intp.font.GlyphID(r)
	if !ok {
		pterm.Printf("%s is not covered by the font\n", describeRune(r))
		return nil, false
	}
	m, _ := intp.font.GlyphMetrics(r, 0)
	pterm.Printf("%s => glyph %d\n", describeRune(r), gid)
	pterm.Printf("advance=%d box=%d×%d offset=(%d, %d) bpp=%d\n",
		m.Advance, m.BoxW, m.BoxH, m.OffsetX, m.OffsetY, m.BPP)
	if op.format == "raw" {
		raw, format, ok := intp.font.RawGlyphBitmap(r)
		if ok {
			if format.IsCompressed() && len(raw) > 64 {
				raw = raw[:64]
			}
			pterm.Printf("%s: % x\n", format, raw)
		}
		return nil, false
	}
	if img, ok := intp.font.GlyphBitmap(r); ok {
		pterm.Println(asciiArt(img))
	}
	return nil, false
}

// asciiArt draws an alpha mask with one character per pixel.
func asciiArt(img *image.Alpha) string {
	var sb strings.Builder
	b := img.Bounds()
	sb.WriteString("+" + strings.Repeat("-", b.Dx()) + "+\n")
	for y := b.Min.Y; y < b.Max.Y; y++ {
		sb.WriteByte('|')
		for x := b.Min.X; x < b.Max.X; x++ {
			a := img.AlphaAt(x, y).A
			sb.WriteRune(shades[int(a)*(len(shades)-1)/255])
		}
		sb.WriteString("|\n")
	}
	sb.WriteString("+" + strings.Repeat("-", b.Dx()) + "+")
	return sb.String()
}

func describeRune(r rune) string {
	name := runenames.Name(r)
	if name == "" {
		name = "<unnamed>"
	}
	if r < ' ' {
		return fmt.Sprintf("%U %s", r, name)
	}
	return fmt.Sprintf("%U '%c' %s", r, r, name)
}
