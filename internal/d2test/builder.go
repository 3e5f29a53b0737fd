/*
Package d2test fabricates D2 font containers for tests.

Fonts are described by a Font value and serialized with Build. The layout
written is the one a D2 encoder produces: header, descriptor block, then the
tag-prefixed sub-tables CMAP, KERN (if any), GIDX, GDSC and GBIT, followed by
the integrity field selected by the header version.
*/
package d2test

import (
	"encoding/binary"
	"fmt"

	"github.com/npillmayer/d2font/d2"
)

// Glyph describes one glyph. Pixels holds BoxW×BoxH samples, row-major, each
// smaller than 1<<bpp.
type Glyph struct {
	AdvanceWidth uint16 // 12.4 fixed point
	BoxW, BoxH   uint8
	OffsetX      int8
	OffsetY      int8
	Pixels       []uint8
}

// Range describes one character range.
type Range struct {
	Start           uint32
	Length          uint16
	GlyphIDStart    uint16
	Type            d2.CmapType
	UnicodeList     []uint16 // sparse types
	GlyphIDOffsets  []uint16 // full types; written as u8 for Format0Full
	BitmapIndexBase uint32
}

// KernPair is one entry of a pair-based kerning table.
type KernPair struct {
	Left, Right uint16
	Value       int8
}

// Font describes a complete container. Glyphs are indexed by glyph ID; glyph 0
// is reserved and should be an empty placeholder.
type Font struct {
	Header      d2.Header
	BPP         uint8
	Format      d2.BitmapFormat
	KernScale   uint16
	KernClasses bool
	KernIDWidth d2.KernIDWidth
	Ranges      []Range
	Glyphs      []Glyph
	Kern        []KernPair // nil: no kerning table
}

// Layout reports where Build placed the parts of a container.
type Layout struct {
	HeaderLength int
	Dsc          int            // absolute offset of the descriptor block
	CoveredEnd   int            // end of the integrity-covered region
	Tables       map[d2.Tag]int // absolute offsets of the sub-tables' data
	Bitmaps      []int          // absolute offsets of glyph bitmaps, by glyph ID
}

const headerLength = 8 + d2.HeaderSize

var le = binary.LittleEndian

// Build serializes f.
func (f *Font) Build() []byte {
	b, _ := f.BuildLayout()
	return b
}

// BuildLayout serializes f and reports the layout of the result.
func (f *Font) BuildLayout() ([]byte, Layout) {
	lay := Layout{HeaderLength: headerLength, Tables: map[d2.Tag]int{}}
	b := make([]byte, 0, 1024)
	b = le.AppendUint16(b, headerLength)
	b = append(b, d2.Magic...)
	b = le.AppendUint32(b, f.Header.Version)
	b = le.AppendUint32(b, uint32(f.Header.LineHeight))
	b = le.AppendUint32(b, uint32(f.Header.BaseLine))
	b = append(b, f.Header.Subpx, byte(f.Header.UnderlinePosition), byte(f.Header.UnderlineThickness), 0)
	b = le.AppendUint32(b, 0) // dsc_length, patched below
	lay.Dsc = len(b)
	b = append(b, make([]byte, d2.DescriptorSize)...)
	rel := func(abs int) uint32 { return uint32(abs - lay.Dsc) }

	// CMAP: records, then lists
	b = append(b, "CMAP"...)
	cmaps := len(b)
	lay.Tables[d2.TagCMap] = cmaps
	b = append(b, make([]byte, len(f.Ranges)*22)...)
	for i, r := range f.Ranges {
		rec := b[cmaps+i*22:]
		le.PutUint32(rec[0:], r.Start)
		le.PutUint16(rec[4:], r.Length)
		le.PutUint16(rec[6:], r.GlyphIDStart)
		le.PutUint32(rec[8:], r.BitmapIndexBase&(1<<30-1)|uint32(r.Type)<<30)
		listLen := len(r.UnicodeList)
		if r.Type == d2.CmapFormat0Full {
			listLen = len(r.GlyphIDOffsets)
		}
		le.PutUint16(rec[20:], uint16(listLen))
		if len(r.UnicodeList) > 0 {
			le.PutUint32(rec[12:], rel(len(b)))
			for _, u := range r.UnicodeList {
				b = le.AppendUint16(b, u)
			}
			rec = b[cmaps+i*22:]
		}
		if len(r.GlyphIDOffsets) > 0 {
			le.PutUint32(rec[16:], rel(len(b)))
			for _, o := range r.GlyphIDOffsets {
				if r.Type == d2.CmapFormat0Full {
					b = append(b, byte(o))
				} else {
					b = le.AppendUint16(b, o)
				}
			}
		}
	}

	// KERN
	if f.Kern != nil {
		b = append(b, "KERN"...)
		lay.Tables[d2.TagKern] = len(b)
		var maxID uint16
		for _, p := range f.Kern {
			maxID = max(maxID, p.Left, p.Right)
		}
		b = le.AppendUint32(b, uint32(len(f.Kern))&(1<<30-1)|uint32(f.KernIDWidth)<<30)
		b = le.AppendUint32(b, uint32(maxID))
		for _, p := range f.Kern {
			b = append(b, byte(p.Value))
		}
		for _, p := range f.Kern {
			if f.KernIDWidth == d2.KernIDs16 {
				b = le.AppendUint16(b, p.Left)
				b = le.AppendUint16(b, p.Right)
			} else {
				b = append(b, byte(p.Left), byte(p.Right))
			}
		}
	}

	// GBIT is written last, but bitmap offsets are needed for GIDX
	bitmaps := make([][]byte, len(f.Glyphs))
	offsets := make([]int, len(f.Glyphs))
	pos := 0
	for i, g := range f.Glyphs {
		bitmaps[i] = f.encodeBitmap(g)
		offsets[i] = pos
		pos += len(bitmaps[i])
	}

	// GIDX: glyph i uses descriptor i
	b = append(b, "GIDX"...)
	lay.Tables[d2.TagGlyphIndex] = len(b)
	for i := range f.Glyphs {
		b = le.AppendUint32(b, uint32(offsets[i])&(1<<21-1)|uint32(i)<<21)
	}

	// GDSC
	b = append(b, "GDSC"...)
	lay.Tables[d2.TagGlyphDsc] = len(b)
	for _, g := range f.Glyphs {
		b = le.AppendUint16(b, g.AdvanceWidth)
		b = append(b, g.BoxW, g.BoxH, byte(g.OffsetX), byte(g.OffsetY))
	}

	// GBIT
	b = append(b, "GBIT"...)
	gbit := len(b)
	lay.Tables[d2.TagGlyphBitmap] = gbit
	lay.Bitmaps = make([]int, len(f.Glyphs))
	for i, bm := range bitmaps {
		lay.Bitmaps[i] = gbit + offsets[i]
		b = append(b, bm...)
	}

	// descriptor block
	d := d2.Descriptor{
		GlyphBitmap:  rel(lay.Tables[d2.TagGlyphBitmap]),
		GlyphIndex:   rel(lay.Tables[d2.TagGlyphIndex]),
		GlyphDsc:     rel(lay.Tables[d2.TagGlyphDsc]),
		CMaps:        rel(lay.Tables[d2.TagCMap]),
		KernScale:    f.KernScale,
		CMapCount:    uint16(len(f.Ranges)),
		BPP:          f.BPP,
		KernClasses:  f.KernClasses,
		BitmapFormat: f.Format,
	}
	if k, ok := lay.Tables[d2.TagKern]; ok {
		d.Kern = rel(k)
	}
	PutDescriptor(b[lay.Dsc:], d)
	le.PutUint32(b[headerLength:], uint32(len(b)-headerLength))
	lay.CoveredEnd = len(b)
	return Seal(b), lay
}

// PutDescriptor writes a descriptor block into b.
func PutDescriptor(b []byte, d d2.Descriptor) {
	le.PutUint32(b[0:], d.GlyphBitmap)
	le.PutUint32(b[4:], d.GlyphIndex)
	le.PutUint32(b[8:], d.GlyphDsc)
	le.PutUint32(b[12:], d.CMaps)
	le.PutUint32(b[16:], d.Kern)
	le.PutUint16(b[20:], d.KernScale)
	le.PutUint16(b[22:], d.EncodeFlags())
}

// Seal appends the integrity field to a container lacking it.
func Seal(b []byte) []byte {
	covered := int(le.Uint16(b)) + int(le.Uint32(b[le.Uint16(b):]))
	scheme, ok := d2.SchemeForVersion(le.Uint32(b[8:]))
	if !ok {
		scheme = d2.CRC32
	}
	return append(b[:covered:covered], scheme.Sum(b[:covered])...)
}

// Reseal recomputes the integrity field of a complete container, e.g. after a
// test has modified its contents.
func Reseal(b []byte) []byte {
	covered := int(le.Uint16(b)) + int(le.Uint32(b[le.Uint16(b):]))
	return Seal(append([]byte(nil), b[:covered]...))
}

func (f *Font) encodeBitmap(g Glyph) []byte {
	n := int(g.BoxW) * int(g.BoxH)
	if n == 0 {
		return nil
	}
	if len(g.Pixels) != n {
		panic(fmt.Sprintf("d2test: glyph has %d pixels, box is %d×%d", len(g.Pixels), g.BoxW, g.BoxH))
	}
	switch f.Format {
	case d2.Compressed:
		return EncodeRLE(Prefilter(g.Pixels, int(g.BoxW), int(g.BoxH)), f.BPP)
	case d2.CompressedNoPrefilter:
		return EncodeRLE(g.Pixels, f.BPP)
	}
	return PackPlain(g.Pixels, f.BPP)
}
