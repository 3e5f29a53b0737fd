package d2

// GlyphIndexEntry links a glyph ID to its descriptor and bitmap.
type GlyphIndexEntry struct {
	BitmapIndexOffset uint32 // 21 bits, relative to the range's bitmap index base
	DscIndex          uint16 // 11 bits, index into the glyph descriptors
}

const (
	bitmapIndexOffsetMask = 1<<21 - 1
	dscIndexShift         = 21
)

// GlyphDescriptor holds the metrics of a glyph.
type GlyphDescriptor struct {
	AdvanceWidth uint16 // 12.4 fixed point (real advance × 16)
	BoxW         uint8
	BoxH         uint8
	OffsetX      int8
	OffsetY      int8 // bottom of the box above the baseline
}

// Area is the number of pixels of the glyph's bounding box.
func (d GlyphDescriptor) Area() int {
	return int(d.BoxW) * int(d.BoxH)
}

// GlyphCount is the number of glyph index entries the GIDX table can hold.
func (t *Tables) GlyphCount() int {
	return t.extents[TagGlyphIndex].size() / glyphIndexEntrySize
}

// DescriptorCount is the number of glyph descriptors the GDSC table can hold.
func (t *Tables) DescriptorCount() int {
	return t.extents[TagGlyphDsc].size() / glyphDscSize
}

// GlyphIndex returns the index entry of glyph ID gid.
func (t *Tables) GlyphIndex(gid uint32) (GlyphIndexEntry, bool) {
	if gid >= uint32(t.GlyphCount()) {
		return GlyphIndexEntry{}, false
	}
	packed, err := t.bin.u32(t.extents[TagGlyphIndex].from + int(gid)*glyphIndexEntrySize)
	if err != nil {
		return GlyphIndexEntry{}, false
	}
	return GlyphIndexEntry{
		BitmapIndexOffset: packed & bitmapIndexOffsetMask,
		DscIndex:          uint16(packed >> dscIndexShift),
	}, true
}

// GlyphDescriptor returns the descriptor at index dscIndex.
func (t *Tables) GlyphDescriptor(dscIndex uint16) (GlyphDescriptor, bool) {
	if int(dscIndex) >= t.DescriptorCount() {
		return GlyphDescriptor{}, false
	}
	b, err := t.bin.view(t.extents[TagGlyphDsc].from+int(dscIndex)*glyphDscSize, glyphDscSize)
	if err != nil {
		return GlyphDescriptor{}, false
	}
	return GlyphDescriptor{
		AdvanceWidth: u16(b),
		BoxW:         b[2],
		BoxH:         b[3],
		OffsetX:      int8(b[4]),
		OffsetY:      int8(b[5]),
	}, true
}

// Glyph returns index entry and descriptor of glyph ID gid.
func (t *Tables) Glyph(gid uint32) (GlyphIndexEntry, GlyphDescriptor, bool) {
	inx, ok := t.GlyphIndex(gid)
	if !ok {
		tracer().Debugf("glyph %d outside of glyph index", gid)
		return GlyphIndexEntry{}, GlyphDescriptor{}, false
	}
	dsc, ok := t.GlyphDescriptor(inx.DscIndex)
	if !ok {
		tracer().Debugf("glyph %d has descriptor index %d outside of descriptor table", gid, inx.DscIndex)
		return GlyphIndexEntry{}, GlyphDescriptor{}, false
	}
	return inx, dsc, true
}

// GlyphBitmapData returns the raw bitmap bytes of a glyph, located at the
// bitmap index base of the glyph's character range plus the glyph's bitmap
// offset. The returned slice extends to the end of the GBIT table, as the size
// of compressed bitmaps is not stored; it aliases the font binary.
func (t *Tables) GlyphBitmapData(rangeIndex int, inx GlyphIndexEntry) ([]byte, bool) {
	if rangeIndex < 0 || rangeIndex >= len(t.ranges) {
		return nil, false
	}
	gbit := t.extents[TagGlyphBitmap]
	start := gbit.from + int(t.ranges[rangeIndex].BitmapIndexBase) + int(inx.BitmapIndexOffset)
	if start >= gbit.to {
		tracer().Debugf("bitmap offset %d outside of GBIT table", start)
		return nil, false
	}
	return t.bin[start:gbit.to], true
}
