package d2font

import (
	"image"

	"github.com/npillmayer/d2font/d2"
	"github.com/npillmayer/d2font/raster"
)

// GlyphMetrics describes how to place a glyph. Offsets are in pixels. OffsetX
// is the distance from the pen position to the left of the box, OffsetY the
// distance from the baseline to the bottom of the box, positive upwards.
type GlyphMetrics struct {
	Advance int // in pixels, rounded, including kerning
	BoxW    int
	BoxH    int
	OffsetX int
	OffsetY int
	BPP     uint8
}

// Bounds returns the glyph's bounding box relative to the pen position on the
// baseline, with y growing downwards.
func (m GlyphMetrics) Bounds() image.Rectangle {
	return image.Rect(m.OffsetX, -m.OffsetY-m.BoxH, m.OffsetX+m.BoxW, -m.OffsetY)
}

// GlyphMetrics returns the metrics of the glyph for cp, to be followed by next.
// If the font has kerning, the advance is adjusted for the pair (cp, next);
// pass 0 for next if there is no following character.
//
// A horizontal tab is measured as a space of double width: both advance and
// box width are doubled.
func (f *Font) GlyphMetrics(cp, next rune) (GlyphMetrics, bool) {
	tab := cp == '\t'
	if tab {
		cp = ' '
	}
	r, ok := f.resolve(cp)
	if !ok {
		return GlyphMetrics{}, false
	}
	_, dsc, ok := f.tables.Glyph(r.glyph)
	if !ok {
		return GlyphMetrics{}, false
	}
	var kv int32
	if f.tables.HasKerning() && next != 0 {
		if n, ok := f.resolve(next); ok {
			kv = int32(f.tables.Kern(r.glyph, n.glyph))
		}
	}
	m := GlyphMetrics{
		Advance: advance(dsc.AdvanceWidth, kv, f.tables.Descriptor.KernScale, tab),
		BoxW:    int(dsc.BoxW),
		BoxH:    int(dsc.BoxH),
		OffsetX: int(dsc.OffsetX),
		OffsetY: int(dsc.OffsetY),
		BPP:     f.tables.Descriptor.BPP,
	}
	if tab {
		m.BoxW *= 2
	}
	return m, true
}

// advance computes an advance in whole pixels from a 12.4 fixed point advance
// width and a kerning value in units of kernScale (also 12.4).
// Rounding is half-up, with shifts rounding towards negative infinity.
func advance(advW uint16, kv int32, kernScale uint16, tab bool) int {
	delta := (kv * int32(kernScale)) >> 4
	raw := int32(advW)
	if tab {
		raw *= 2
	}
	raw += delta
	return int((raw + 8) >> 4)
}

// Kern returns the kerning between two code points in 12.4 fixed point pixels.
func (f *Font) Kern(left, right rune) int {
	if f.tables == nil || !f.tables.HasKerning() {
		return 0
	}
	l, ok := f.resolve(left)
	if !ok {
		return 0
	}
	r, ok := f.resolve(right)
	if !ok {
		return 0
	}
	kv := int32(f.tables.Kern(l.glyph, r.glyph))
	return int((kv * int32(f.tables.Descriptor.KernScale)) >> 4)
}

// glyphSource locates the bitmap of the glyph for cp. Zero-area glyphs have no
// bitmap.
func (f *Font) glyphSource(cp rune) (raster.Glyph, bool) {
	r, ok := f.resolve(cp)
	if !ok {
		return raster.Glyph{}, false
	}
	inx, dsc, ok := f.tables.Glyph(r.glyph)
	if !ok || dsc.Area() == 0 {
		return raster.Glyph{}, false
	}
	data, ok := f.tables.GlyphBitmapData(r.rangeIndex, inx)
	if !ok {
		return raster.Glyph{}, false
	}
	return raster.Glyph{
		Data:   data,
		W:      int(dsc.BoxW),
		H:      int(dsc.BoxH),
		BPP:    f.tables.Descriptor.BPP,
		Format: f.tables.Descriptor.BitmapFormat,
	}, true
}

// GlyphBitmap returns the bitmap of the glyph for cp as an 8-bit alpha mask
// of the glyph's box size. Glyphs without pixels, such as space, have no
// bitmap.
func (f *Font) GlyphBitmap(cp rune) (*image.Alpha, bool) {
	g, ok := f.glyphSource(cp)
	if !ok {
		return nil, false
	}
	img, err := raster.DecodeAlpha(g)
	if err != nil {
		tracer().Errorf("glyph bitmap for %U: %v", cp, err)
		return nil, false
	}
	return img, true
}

// GlyphBitmapInto renders the bitmap of the glyph for cp into dst, one byte of
// alpha per pixel, with rows stride bytes apart. It returns the size of the
// glyph's box. If dst cannot hold the glyph, nothing is written and ok is
// false.
func (f *Font) GlyphBitmapInto(dst []byte, stride int, cp rune) (w, h int, ok bool) {
	g, ok := f.glyphSource(cp)
	if !ok {
		return 0, 0, false
	}
	if err := raster.Decode(dst, stride, g); err != nil {
		tracer().Errorf("glyph bitmap for %U: %v", cp, err)
		return 0, 0, false
	}
	return g.W, g.H, true
}

// RawGlyphBitmap returns the stored bitmap bytes of the glyph for cp, together
// with the format they are stored in. For compressed formats the slice extends
// to the end of the glyph bitmap table.
func (f *Font) RawGlyphBitmap(cp rune) ([]byte, d2.BitmapFormat, bool) {
	g, ok := f.glyphSource(cp)
	if !ok {
		return nil, 0, false
	}
	if !g.Format.IsCompressed() {
		if n := raster.PlainSize(g.W, g.H, g.BPP); n < len(g.Data) {
			g.Data = g.Data[:n]
		}
	}
	return g.Data, g.Format, true
}
