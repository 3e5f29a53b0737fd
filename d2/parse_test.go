package d2_test

import (
	"encoding/binary"
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/d2font/d2"
	"github.com/npillmayer/d2font/internal/d2test"
	"github.com/npillmayer/d2font/raster"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

var le = binary.LittleEndian

func mustParse(t *testing.T, b []byte) *d2.Tables {
	t.Helper()
	tables, err := d2.Parse(b)
	if err != nil {
		t.Fatalf("cannot parse test font: %v", err)
	}
	return tables
}

func expectKind(t *testing.T, err error, kind error, table d2.Tag) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected error of kind %q, got %v", kind, err)
	}
	if table == 0 {
		return
	}
	var ferr *d2.FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected *FormatError, got %T", err)
	}
	if ferr.Table != table {
		t.Errorf("expected error for table %s, reported for %s", table, ferr.Table)
	}
}

func quiet(t *testing.T) func() {
	level := tracing.Select("d2font").GetTraceLevel()
	tracing.Select("d2font").SetTraceLevel(tracing.LevelError)
	return func() { tracing.Select("d2font").SetTraceLevel(level) }
}

func TestParseLatin(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	b, lay := d2test.Latin(4, d2.Plain).BuildLayout()
	tables := mustParse(t, b)
	h := tables.Header
	if h.LineHeight != 16 || h.BaseLine != 3 || h.UnderlinePosition != -2 || h.UnderlineThickness != 1 {
		t.Errorf("unexpected header metrics %+v", h)
	}
	if tables.Integrity != d2.CRC32 {
		t.Errorf("expected version 1 font to use CRC32, uses %s", tables.Integrity)
	}
	expectTags := []d2.Tag{d2.TagCMap, d2.TagKern, d2.TagGlyphIndex, d2.TagGlyphDsc, d2.TagGlyphBitmap}
	if diff := cmp.Diff(expectTags, tables.TableTags()); diff != "" {
		t.Errorf("table tags differ (-want +got):\n%s", diff)
	}
	for tag, at := range lay.Tables {
		if offset, _, ok := tables.TableExtent(tag); !ok || offset != at {
			t.Errorf("expected table %s at %d, found at %d", tag, at, offset)
		}
	}
	if _, size, _ := tables.TableExtent(d2.TagGlyphIndex); size != 5*4 {
		t.Errorf("expected GIDX of 5 entries, has %d bytes", size)
	}
	if tables.GlyphCount() != 5 || tables.DescriptorCount() != 5 {
		t.Errorf("expected 5 glyphs and descriptors, have %d and %d", tables.GlyphCount(), tables.DescriptorCount())
	}
	if tables.CoveredSize() != lay.CoveredEnd {
		t.Errorf("expected %d bytes covered, have %d", lay.CoveredEnd, tables.CoveredSize())
	}
	if !tables.HasKerning() || tables.KernPairCount() != 2 {
		t.Errorf("expected kerning with 2 pairs")
	}
	d := tables.Descriptor
	if d.BPP != 4 || d.BitmapFormat != d2.Plain || d.CMapCount != 3 || d.KernScale != 16 {
		t.Errorf("unexpected descriptor %+v", d)
	}
	if len(tables.Warnings()) != 0 {
		t.Errorf("expected no warnings, have %v", tables.Warnings())
	}
}

func TestParseWithoutKerning(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	f := d2test.Latin(2, d2.Compressed)
	f.Kern = nil
	tables := mustParse(t, f.Build())
	if tables.HasKerning() {
		t.Errorf("expected font without kerning table")
	}
	if kv := tables.Kern(d2test.LatinA, d2test.LatinV); kv != 0 {
		t.Errorf("expected kerning 0 without table, is %d", kv)
	}
}

func TestParseTooShort(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	_, err := d2.Parse(nil)
	expectKind(t, err, d2.ErrInvalidArgument, 0)
	_, err = d2.Parse(make([]byte, 23))
	expectKind(t, err, d2.ErrInvalidArgument, 0)
}

func TestParseCorruptHeader(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	good := d2test.ABC().Build()
	mutate := func(fn func(b []byte)) []byte {
		b := append([]byte(nil), good...)
		fn(b)
		return b
	}
	cases := map[string][]byte{
		"magic":           mutate(func(b []byte) { b[4] = 'x' }),
		"header length":   mutate(func(b []byte) { le.PutUint16(b, 20) }),
		"no descriptor":   good[:24+4+10],
		"unknown version": mutate(func(b []byte) { le.PutUint32(b[8:], 3) }),
	}
	for name, b := range cases {
		_, err := d2.Parse(b)
		if !errors.Is(err, d2.ErrCorruptHeader) {
			t.Errorf("%s: expected ErrCorruptHeader, got %v", name, err)
		}
	}
}

func TestParseCorruptDescriptorLength(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	good := d2test.ABC().Build()
	for _, dscLength := range []uint32{0, 27, uint32(len(good)), 0xffffffff} {
		b := append([]byte(nil), good...)
		le.PutUint32(b[24:], dscLength)
		_, err := d2.Parse(b)
		if !errors.Is(err, d2.ErrCorruptDescriptor) {
			t.Errorf("dsc_length %d: expected ErrCorruptDescriptor, got %v", dscLength, err)
		}
	}
	// integrity field cut off
	_, err := d2.Parse(good[:len(good)-1])
	expectKind(t, err, d2.ErrCorruptDescriptor, 0)
}

func TestParseIntegrityBitFlips(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	defer quiet(t)()
	//
	for _, version := range []uint32{d2.VersionLegacy, d2.VersionCRC32, d2.VersionSHA256} {
		f := d2test.Latin(2, d2.Compressed)
		f.Header.Version = version
		good, lay := f.BuildLayout()
		mustParse(t, good)
		b := append([]byte(nil), good...)
		for i := 12; i < len(b); i++ {
			if i >= lay.HeaderLength && i < lay.Dsc {
				continue // dsc_length is checked before integrity
			}
			for bit := 0; bit < 8; bit++ {
				b[i] ^= 1 << bit
				if _, err := d2.Parse(b); !errors.Is(err, d2.ErrIntegrity) {
					t.Fatalf("version %d, flipped bit %d of byte %d: expected ErrIntegrity, got %v",
						version, bit, i, err)
				}
				b[i] ^= 1 << bit
			}
		}
	}
}

func TestParseSHA256(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	f := d2test.Latin(4, d2.Plain)
	f.Header.Version = d2.VersionSHA256
	b, lay := f.BuildLayout()
	if len(b) != lay.CoveredEnd+32 {
		t.Fatalf("expected 32 bytes of SHA-256 after covered region")
	}
	tables := mustParse(t, b)
	if tables.Integrity != d2.SHA256 {
		t.Errorf("expected SHA-256 integrity, is %s", tables.Integrity)
	}
	// a CRC32 field in place of the hash does not validate
	crc := append(append([]byte(nil), b[:lay.CoveredEnd]...), d2.CRC32.Sum(b[:lay.CoveredEnd])...)
	_, err := d2.Parse(crc)
	expectKind(t, err, d2.ErrCorruptDescriptor, 0)
}

func TestParseBadTableTag(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	good, lay := d2test.Latin(1, d2.Plain).BuildLayout()
	for _, tag := range []d2.Tag{d2.TagCMap, d2.TagKern, d2.TagGlyphIndex, d2.TagGlyphDsc, d2.TagGlyphBitmap} {
		b := append([]byte(nil), good...)
		b[lay.Tables[tag]-1] = '?'
		_, err := d2.Parse(d2test.Reseal(b))
		expectKind(t, err, d2.ErrInvalidTableReference, tag)
	}
}

func TestParseBadTableOffset(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	good, lay := d2test.Latin(1, d2.Plain).BuildLayout()
	tables := mustParse(t, good)
	cases := []struct {
		name   string
		tag    d2.Tag
		modify func(d *d2.Descriptor)
	}{
		{"beyond end", d2.TagGlyphBitmap, func(d *d2.Descriptor) { d.GlyphBitmap = 1 << 20 }},
		{"overflow", d2.TagGlyphIndex, func(d *d2.Descriptor) { d.GlyphIndex = 0xffffffff }},
		{"into descriptor", d2.TagCMap, func(d *d2.Descriptor) { d.CMaps = 8 }},
		{"zero", d2.TagGlyphDsc, func(d *d2.Descriptor) { d.GlyphDsc = 0 }},
		{"misaligned", d2.TagGlyphDsc, func(d *d2.Descriptor) { d.GlyphDsc++ }},
	}
	for _, c := range cases {
		b := append([]byte(nil), good...)
		d := tables.Descriptor
		c.modify(&d)
		d2test.PutDescriptor(b[lay.Dsc:], d)
		_, err := d2.Parse(d2test.Reseal(b))
		if !errors.Is(err, d2.ErrInvalidTableReference) {
			t.Errorf("%s: expected ErrInvalidTableReference, got %v", c.name, err)
			continue
		}
		var ferr *d2.FormatError
		if errors.As(err, &ferr) && ferr.Table != c.tag {
			t.Errorf("%s: expected error for table %s, reported for %s", c.name, c.tag, ferr.Table)
		}
	}
}

func TestParseBadDescriptorFlags(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	good, lay := d2test.Latin(4, d2.Compressed).BuildLayout()
	tables := mustParse(t, good)
	cases := map[string]func(d *d2.Descriptor){
		"bpp 0":            func(d *d2.Descriptor) { d.BPP = 0 },
		"bpp 5":            func(d *d2.Descriptor) { d.BPP = 5 },
		"bpp 8 compressed": func(d *d2.Descriptor) { d.BPP = 8 },
		"format 3":         func(d *d2.Descriptor) { d.BitmapFormat = 3 },
	}
	for name, modify := range cases {
		b := append([]byte(nil), good...)
		d := tables.Descriptor
		modify(&d)
		d2test.PutDescriptor(b[lay.Dsc:], d)
		_, err := d2.Parse(d2test.Reseal(b))
		if !errors.Is(err, d2.ErrCorruptDescriptor) {
			t.Errorf("%s: expected ErrCorruptDescriptor, got %v", name, err)
		}
	}
}

func TestParseTruncated(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	defer quiet(t)()
	//
	good := d2test.Latin(3, d2.Compressed).Build()
	for n := 0; n < len(good); n++ {
		if _, err := d2.Parse(good[:n]); err == nil {
			t.Fatalf("font truncated to %d bytes parsed without error", n)
		}
	}
}

// Mutated fonts with valid integrity fields must either be rejected or be
// safe to query.
func TestParseMutated(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	defer quiet(t)()
	//
	rnd := rand.New(rand.NewSource(1))
	for _, format := range []d2.BitmapFormat{d2.Plain, d2.Compressed} {
		good, lay := d2test.Latin(2, format).BuildLayout()
		accepted := 0
		for round := 0; round < 2000; round++ {
			b := append([]byte(nil), good...)
			for k := 0; k < 1+rnd.Intn(4); k++ {
				i := lay.Dsc + rnd.Intn(lay.CoveredEnd-lay.Dsc)
				b[i] = byte(rnd.Intn(256))
			}
			tables, err := d2.Parse(d2test.Reseal(b))
			if err != nil {
				continue
			}
			accepted++
			exercise(tables)
		}
		t.Logf("%s: %d of 2000 mutated fonts accepted", format, accepted)
	}
}

func exercise(tables *d2.Tables) {
	for cp := uint32(0); cp < 0x80; cp++ {
		gid, rinx, ok := tables.Lookup(cp)
		if !ok {
			continue
		}
		tables.Kern(gid, gid+1)
		inx, dsc, ok := tables.Glyph(gid)
		if !ok {
			continue
		}
		data, ok := tables.GlyphBitmapData(rinx, inx)
		if !ok {
			continue
		}
		_, _ = raster.DecodeAlpha(raster.Glyph{
			Data:   data,
			W:      int(dsc.BoxW),
			H:      int(dsc.BoxH),
			BPP:    tables.Descriptor.BPP,
			Format: tables.Descriptor.BitmapFormat,
		})
	}
}
