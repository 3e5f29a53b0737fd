package d2

import (
	"fmt"
	"sort"
)

// CmapType is the encoding of a character range.
//
// For simplicity introduce a "relative code point": rcp = codepoint - RangeStart.
//
//	Format0Tiny   glyph = GlyphIDStart + rcp
//	Format0Full   glyph = GlyphIDStart + glyphIDOffsets[rcp]          (u8 offsets)
//	SparseTiny    glyph = GlyphIDStart + search(unicodeList, rcp)
//	SparseFull    glyph = GlyphIDStart + glyphIDOffsets[search(…)]    (u16 offsets)
type CmapType uint8

const (
	CmapFormat0Full CmapType = 0
	CmapSparseFull  CmapType = 1
	CmapFormat0Tiny CmapType = 2
	CmapSparseTiny  CmapType = 3
)

func (ct CmapType) String() string {
	switch ct {
	case CmapFormat0Full:
		return "format0-full"
	case CmapSparseFull:
		return "sparse-full"
	case CmapFormat0Tiny:
		return "format0-tiny"
	case CmapSparseTiny:
		return "sparse-tiny"
	}
	return fmt.Sprintf("CmapType(%d)", uint8(ct))
}

// CmapRange maps a contiguous run of code-points to glyph IDs.
type CmapRange struct {
	RangeStart      uint32
	RangeLength     uint16
	GlyphIDStart    uint16
	BitmapIndexBase uint32 // 30 bits
	Type            CmapType
	ListLength      uint16
	unicodeList     int // absolute offset of []u16, 0 if absent
	glyphIDOffsets  int // absolute offset of []u8 (Format0Full) or []u16 (SparseFull), 0 if absent
}

// Contains is true if code-point cp lies within the range.
func (r CmapRange) Contains(cp uint32) bool {
	return cp-r.RangeStart < uint32(r.RangeLength)
}

const (
	bitmapIndexBaseMask = 1<<30 - 1
	cmapTypeShift       = 30
)

func decodeCmapRecord(b binarySegm) (r CmapRange, unicodeList, glyphIDOffsets uint32) {
	_ = b[cmapRecordSize-1]
	packed := u32(b[8:])
	r = CmapRange{
		RangeStart:      u32(b),
		RangeLength:     u16(b[4:]),
		GlyphIDStart:    u16(b[6:]),
		BitmapIndexBase: packed & bitmapIndexBaseMask,
		Type:            CmapType(packed >> cmapTypeShift),
		ListLength:      u16(b[20:]),
	}
	return r, u32(b[12:]), u32(b[16:])
}

// parseCMaps reads the array of character ranges and checks that every list a
// range references lies within the font.
func (t *Tables) parseCMaps() error {
	base := t.extents[TagCMap].from
	count := int(t.Descriptor.CMapCount)
	size, _ := checkedMulInt(count, cmapRecordSize)
	records, err := t.bin.view(base, size)
	if err != nil {
		return formatError(ErrInvalidTableReference, TagCMap, "Ranges",
			fmt.Sprintf("%d ranges exceed table bounds", count), base)
	}
	tracer().Debugf("font has %d character ranges", count)
	t.ranges = make([]CmapRange, count)
	for i := range t.ranges {
		r, ulist, olist := decodeCmapRecord(records[i*cmapRecordSize:])
		section := fmt.Sprintf("Range %d", i)
		at := base + i*cmapRecordSize
		switch r.Type {
		case CmapFormat0Full:
			if r.glyphIDOffsets, err = t.cmapList(olist, int(r.RangeLength), section, at); err != nil {
				return err
			}
		case CmapSparseFull:
			if r.glyphIDOffsets, err = t.cmapList(olist, 2*int(r.ListLength), section, at); err != nil {
				return err
			}
			fallthrough
		case CmapSparseTiny:
			if r.unicodeList, err = t.cmapList(ulist, 2*int(r.ListLength), section, at); err != nil {
				return err
			}
		}
		tracer().Debugf("range %d: U+%04X…+%d, %s, glyph %d", i, r.RangeStart, r.RangeLength, r.Type, r.GlyphIDStart)
		t.ranges[i] = r
	}
	return nil
}

func (t *Tables) cmapList(offset uint32, n int, section string, at int) (int, error) {
	if n == 0 {
		return 0, nil
	}
	abs, ok := t.inDescriptor(offset, n)
	if offset == 0 || !ok {
		return 0, formatError(ErrInvalidTableReference, TagCMap, section,
			fmt.Sprintf("list of %d bytes at offset %d out of bounds", n, offset), at)
	}
	return abs, nil
}

// CMapRanges returns the font's character ranges in stored order.
// Clients must not modify the returned slice.
func (t *Tables) CMapRanges() []CmapRange {
	return t.ranges
}

// Lookup resolves a code-point to a glyph ID. Ranges are scanned in stored
// order and the first range that resolves the code-point wins. Lookup returns
// the glyph ID and the index of the resolving range.
//
// Code-point 0 never resolves, and neither does glyph ID 0, which is reserved.
func (t *Tables) Lookup(cp uint32) (glyph uint32, rangeIndex int, ok bool) {
	if cp == 0 {
		return 0, -1, false
	}
	for i := range t.ranges {
		r := &t.ranges[i]
		rcp := cp - r.RangeStart
		if rcp >= uint32(r.RangeLength) {
			continue
		}
		var found bool
		switch r.Type {
		case CmapFormat0Tiny:
			glyph, found = uint32(r.GlyphIDStart)+rcp, true
		case CmapFormat0Full:
			// the first code-point of a range has offset 0; any other zero offset
			// marks a hole in the range
			ofs, err := t.bin.u8(r.glyphIDOffsets + int(rcp))
			if err != nil || (ofs == 0 && cp != r.RangeStart) {
				continue
			}
			glyph, found = uint32(r.GlyphIDStart)+uint32(ofs), true
		case CmapSparseTiny:
			var inx int
			if inx, found = t.searchUnicodeList(r, rcp); found {
				glyph = uint32(r.GlyphIDStart) + uint32(inx)
			}
		case CmapSparseFull:
			var inx int
			if inx, found = t.searchUnicodeList(r, rcp); found {
				ofs, err := t.bin.u16(r.glyphIDOffsets + 2*inx)
				if err != nil {
					found = false
				}
				glyph = uint32(r.GlyphIDStart) + uint32(ofs)
			}
		}
		if !found {
			continue
		}
		if glyph == 0 {
			return 0, i, false
		}
		return glyph, i, true
	}
	return 0, -1, false
}

// searchUnicodeList performs a binary search for rcp in the ascending
// u16 unicode list of range r.
func (t *Tables) searchUnicodeList(r *CmapRange, rcp uint32) (int, bool) {
	if rcp > 0xffff {
		return 0, false
	}
	key := uint16(rcp)
	n := int(r.ListLength)
	return sort.Find(n, func(i int) int {
		v, err := t.bin.u16(r.unicodeList + 2*i)
		if err != nil {
			return -1
		}
		return int(key) - int(v)
	})
}
