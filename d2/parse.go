package d2

import (
	"fmt"
	"sort"
)

// Tables is an immutable, validated view onto the bytes of a D2 font.
// It does not copy the font's binary data; the byte slice handed to Parse must
// not change for as long as the Tables are in use.
//
// All sub-table references are kept as absolute offsets into the binary and are
// resolved through bounds-checked reads, never as raw pointers.
type Tables struct {
	Header     Header
	Descriptor Descriptor
	Integrity  IntegrityScheme
	bin        binarySegm // the integrity-covered region [0, header_length+dsc_length)
	dsc        int        // absolute offset of the descriptor block
	ranges     []CmapRange
	kern       kernTable
	extents    map[Tag]extent
	warnings   []Warning
}

// extent is the absolute byte range [from, to) of a sub-table's data,
// without its tag.
type extent struct {
	from, to int
}

func (e extent) size() int {
	return e.to - e.from
}

// Parse validates a D2 font container and returns a view onto its tables.
// Either a fully validated Tables or an error is returned; there is no partial
// result. Errors are of type *FormatError and wrap one of the Err… kinds.
func Parse(font []byte) (*Tables, error) {
	b := binarySegm(font)
	// Step 1: preamble and font header must be present
	if len(b) < preambleSize+HeaderSize {
		return nil, formatError(ErrInvalidArgument, tagHeader, "Size",
			fmt.Sprintf("font binary has %d bytes, need at least %d", len(b), preambleSize+HeaderSize), 0)
	}
	// Step 2: header length and magic
	headerLength := int(u16(b))
	if string(b[2:preambleSize]) != Magic {
		return nil, formatError(ErrCorruptHeader, tagHeader, "Magic",
			fmt.Sprintf("expected magic %q, found %q", Magic, string(b[2:preambleSize])), 2)
	}
	if headerLength < preambleSize+HeaderSize {
		return nil, formatError(ErrCorruptHeader, tagHeader, "Length",
			fmt.Sprintf("header length %d too small", headerLength), 0)
	}
	t := &Tables{Header: decodeHeader(b[preambleSize : preambleSize+HeaderSize])}
	tracer().Debugf("D2 font header = %+v", t.Header)
	scheme, ok := SchemeForVersion(t.Header.Version)
	if !ok {
		return nil, formatError(ErrCorruptHeader, tagHeader, "Version",
			fmt.Sprintf("unknown container version %d", t.Header.Version), preambleSize)
	}
	t.Integrity = scheme
	// Step 3: descriptor block length
	if headerLength+dscLengthSize+DescriptorSize > len(b) {
		return nil, formatError(ErrCorruptHeader, tagHeader, "Length",
			fmt.Sprintf("header length %d leaves no room for descriptor block", headerLength), 0)
	}
	dscLength := int(u32(b[headerLength:]))
	t.dsc = headerLength + dscLengthSize
	// Step 4: descriptor block and integrity field must fit
	coveredEnd, err := checkedAddInt(headerLength, dscLength)
	if err != nil || dscLength < dscLengthSize+DescriptorSize {
		return nil, formatError(ErrCorruptDescriptor, tagDescriptor, "Length",
			fmt.Sprintf("descriptor length %d is invalid", dscLength), headerLength)
	}
	if coveredEnd > len(b)-scheme.Size() {
		return nil, formatError(ErrCorruptDescriptor, tagDescriptor, "Length",
			fmt.Sprintf("descriptor length %d exceeds font size %d", dscLength, len(b)), headerLength)
	}
	tracer().Debugf("descriptor block at %d, %d bytes covered by %s", t.dsc, coveredEnd, scheme)
	// Step 5: integrity
	if !scheme.verify(b[:coveredEnd], b[coveredEnd:coveredEnd+scheme.Size()]) {
		return nil, formatError(ErrIntegrity, tagDescriptor, scheme.String(),
			"stored integrity value does not match font data", coveredEnd)
	}
	t.bin = b[:coveredEnd]
	t.Descriptor = decodeDescriptor(t.bin[t.dsc : t.dsc+DescriptorSize])
	tracer().Debugf("descriptor = %+v", t.Descriptor)
	if !validBPP(t.Descriptor.BPP, t.Descriptor.BitmapFormat) {
		return nil, formatError(ErrCorruptDescriptor, tagDescriptor, "BPP",
			fmt.Sprintf("%d bits per pixel not supported for %s bitmaps",
				t.Descriptor.BPP, t.Descriptor.BitmapFormat), t.dsc)
	}
	if t.Descriptor.BitmapFormat > CompressedNoPrefilter {
		return nil, formatError(ErrCorruptDescriptor, tagDescriptor, "BitmapFormat",
			fmt.Sprintf("unknown bitmap format %d", t.Descriptor.BitmapFormat), t.dsc)
	}
	// Step 6: sub-table references
	if err := t.locateTables(); err != nil {
		return nil, err
	}
	// Step 7: sub-table structure
	wc := &warningCollector{}
	if err := t.parseCMaps(); err != nil {
		return nil, err
	}
	if err := t.parseKern(wc); err != nil {
		return nil, err
	}
	t.warnings = wc.warnings
	return t, nil
}

// locateTables checks each sub-table reference of the descriptor block and
// computes the tables' extents. A table's data reaches up to the tag of the
// next table, or to the end of the integrity-covered region.
func (t *Tables) locateTables() error {
	refs := []struct {
		tag    Tag
		offset uint32
	}{
		{TagCMap, t.Descriptor.CMaps},
		{TagKern, t.Descriptor.Kern},
		{TagGlyphIndex, t.Descriptor.GlyphIndex},
		{TagGlyphDsc, t.Descriptor.GlyphDsc},
		{TagGlyphBitmap, t.Descriptor.GlyphBitmap},
	}
	starts := make([]int, 0, len(refs))
	t.extents = make(map[Tag]extent, len(refs))
	for _, ref := range refs {
		if ref.tag == TagKern && ref.offset == 0 {
			tracer().Debugf("font has no kerning table")
			continue
		}
		at, err := t.resolveTable(ref.tag, ref.offset)
		if err != nil {
			return err
		}
		t.extents[ref.tag] = extent{from: at}
		starts = append(starts, at)
	}
	sort.Ints(starts)
	for tag, e := range t.extents {
		e.to = len(t.bin)
		if i := sort.SearchInts(starts, e.from+1); i < len(starts) {
			e.to = starts[i] - tagSize
		}
		t.extents[tag] = e
		tracer().Debugf("table %s at [%d, %d)", tag, e.from, e.to)
	}
	return nil
}

// resolveTable turns a descriptor-relative offset into an absolute one and
// checks bounds and tag.
func (t *Tables) resolveTable(tag Tag, offset uint32) (int, error) {
	at, err := checkedAddInt(t.dsc, int(offset))
	if err != nil || at-tagSize < t.dsc+DescriptorSize || at > len(t.bin) {
		return 0, formatError(ErrInvalidTableReference, tag, "Offset",
			fmt.Sprintf("offset %d outside of descriptor block", offset), t.dsc)
	}
	if found := MakeTag(t.bin[at-tagSize : at]); found != tag {
		return 0, formatError(ErrInvalidTableReference, tag, "Tag",
			fmt.Sprintf("expected table tag %s, found %q", tag, found.String()), at-tagSize)
	}
	return at, nil
}

// inDescriptor checks that n bytes at a descriptor-relative offset lie within
// the descriptor block's sub-table area, and returns the absolute offset.
func (t *Tables) inDescriptor(offset uint32, n int) (int, bool) {
	at, err := checkedAddInt(t.dsc, int(offset))
	if err != nil || at < t.dsc+DescriptorSize {
		return 0, false
	}
	if _, err := t.bin.view(at, n); err != nil {
		return 0, false
	}
	return at, true
}

// --- Accessors -------------------------------------------------------------

// HasKerning is true if the font contains a kerning table.
func (t *Tables) HasKerning() bool {
	_, ok := t.extents[TagKern]
	return ok
}

// Warnings returns all warnings encountered during font parsing.
func (t *Tables) Warnings() []Warning {
	if t.warnings == nil {
		return []Warning{}
	}
	return t.warnings
}

// TableTags returns the tags of the sub-tables present in the font, in the
// order of their position in the binary.
func (t *Tables) TableTags() []Tag {
	tags := make([]Tag, 0, len(t.extents))
	for tag := range t.extents {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		return t.extents[tags[i]].from < t.extents[tags[j]].from
	})
	return tags
}

// TableExtent returns the absolute offset and size of a sub-table's data
// (excluding its tag). It returns ok == false if the font has no such table.
func (t *Tables) TableExtent(tag Tag) (offset, size int, ok bool) {
	e, ok := t.extents[tag]
	if !ok {
		return 0, 0, false
	}
	return e.from, e.size(), true
}

// CoveredSize is the number of bytes protected by the integrity field.
func (t *Tables) CoveredSize() int {
	return len(t.bin)
}
