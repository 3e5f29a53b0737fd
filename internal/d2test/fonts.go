package d2test

import "github.com/npillmayer/d2font/d2"

// ABC is a minimal font with a single range 'A'…'C' of 1×1 glyphs at 8 bpp,
// with alpha values 0, 128 and 255.
func ABC() *Font {
	return &Font{
		Header: d2.Header{Version: d2.VersionCRC32, LineHeight: 1, BaseLine: 0},
		BPP:    8,
		Format: d2.Plain,
		Ranges: []Range{
			{Start: 'A', Length: 3, GlyphIDStart: 1, Type: d2.CmapFormat0Tiny},
		},
		Glyphs: []Glyph{
			{},
			{AdvanceWidth: 16, BoxW: 1, BoxH: 1, Pixels: []uint8{0}},
			{AdvanceWidth: 16, BoxW: 1, BoxH: 1, Pixels: []uint8{128}},
			{AdvanceWidth: 16, BoxW: 1, BoxH: 1, Pixels: []uint8{255}},
		},
	}
}

// Glyph IDs of the Latin test font.
const (
	LatinSpace = 1
	LatinA     = 2
	LatinB     = 3
	LatinV     = 4
)

// Latin is a small font covering space, 'A', 'B' and 'V', with kerning for the
// pairs AV (-8) and VA (-3) at a kern scale of 1.0. Advances are 5, 10, 10.5
// and 9.5 pixels. Glyph bitmaps are filled with Pattern.
func Latin(bpp uint8, format d2.BitmapFormat) *Font {
	return &Font{
		Header: d2.Header{
			Version:            d2.VersionCRC32,
			LineHeight:         16,
			BaseLine:           3,
			UnderlinePosition:  -2,
			UnderlineThickness: 1,
		},
		BPP:       bpp,
		Format:    format,
		KernScale: 16,
		Ranges: []Range{
			{Start: ' ', Length: 1, GlyphIDStart: LatinSpace, Type: d2.CmapFormat0Tiny},
			{Start: 'A', Length: 2, GlyphIDStart: LatinA, Type: d2.CmapFormat0Tiny},
			{Start: 'V', Length: 1, GlyphIDStart: LatinV, Type: d2.CmapSparseTiny, UnicodeList: []uint16{0}},
		},
		Glyphs: []Glyph{
			{},
			{AdvanceWidth: 80},
			{AdvanceWidth: 160, BoxW: 7, BoxH: 9, OffsetX: 1, Pixels: Pattern(7, 9, bpp)},
			{AdvanceWidth: 168, BoxW: 8, BoxH: 9, OffsetX: 1, Pixels: Pattern(8, 9, bpp)},
			{AdvanceWidth: 152, BoxW: 9, BoxH: 9, OffsetY: -1, Pixels: Pattern(9, 9, bpp)},
		},
		Kern: []KernPair{
			{Left: LatinA, Right: LatinV, Value: -8},
			{Left: LatinV, Right: LatinA, Value: -3},
		},
	}
}

// Pattern is a w×h grid of samples for a bit depth of bpp, mixing runs of
// equal samples with changing ones.
func Pattern(w, h int, bpp uint8) []uint8 {
	maxv := uint8(1<<bpp - 1)
	if bpp == 8 {
		maxv = 255
	}
	px := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			switch {
			case y == 0 || y == h-1:
				px[y*w+x] = maxv
			case x == y%w:
				px[y*w+x] = uint8(x*y) & maxv
			case x > w/2:
				px[y*w+x] = maxv / 2
			}
		}
	}
	return px
}
