package d2

import "fmt"

// Fixed sizes of the container's structures, in bytes.
const (
	preambleSize        = 8  // header length (u16) + magic
	HeaderSize          = 16 // font header following the magic
	DescriptorSize      = 24 // descriptor block without sub-tables
	dscLengthSize       = 4  // length field in front of the descriptor block
	tagSize             = 4
	cmapRecordSize      = 22
	kernHeaderSize      = 8
	glyphIndexEntrySize = 4
	glyphDscSize        = 6
)

// Magic identifies a D2 font container, following the 2-byte header length.
const Magic = "D2FtHd"

// Header holds font-wide metrics. It is located at bytes [8, 24) of a container.
type Header struct {
	Version            uint32 // selects the integrity scheme, see IntegrityScheme
	LineHeight         int32
	BaseLine           int32
	Subpx              uint8
	UnderlinePosition  int8
	UnderlineThickness int8
}

func decodeHeader(b binarySegm) Header {
	_ = b[HeaderSize-1]
	return Header{
		Version:            u32(b),
		LineHeight:         int32(u32(b[4:])),
		BaseLine:           int32(u32(b[8:])),
		Subpx:              b[12],
		UnderlinePosition:  int8(b[13]),
		UnderlineThickness: int8(b[14]),
	}
}

// BitmapFormat is the storage format of glyph bitmaps.
type BitmapFormat uint8

const (
	Plain                 BitmapFormat = 0 // bit-packed samples, row-major, MSB first
	Compressed            BitmapFormat = 1 // RLE with line prediction (rows XORed)
	CompressedNoPrefilter BitmapFormat = 2 // RLE without line prediction
)

func (f BitmapFormat) String() string {
	switch f {
	case Plain:
		return "plain"
	case Compressed:
		return "compressed"
	case CompressedNoPrefilter:
		return "compressed-no-prefilter"
	}
	return fmt.Sprintf("BitmapFormat(%d)", uint8(f))
}

// IsCompressed is true for both RLE formats.
func (f BitmapFormat) IsCompressed() bool {
	return f == Compressed || f == CompressedNoPrefilter
}

// Descriptor is the decoded descriptor block. Sub-table offsets are relative to
// the start of the descriptor block. A Kern offset of 0 means "no kerning".
type Descriptor struct {
	GlyphBitmap  uint32
	GlyphIndex   uint32
	GlyphDsc     uint32
	CMaps        uint32
	Kern         uint32
	KernScale    uint16 // 12.4 fixed point
	CMapCount    uint16
	BPP          uint8
	KernClasses  bool
	BitmapFormat BitmapFormat
}

// The flags word packs cmap count, bpp, kern type and bitmap format.
// Decoded with explicit shifts; bit-field layout of C compilers is not portable.
const (
	flagCMapCountMask   = 0x1ff
	flagBPPShift        = 9
	flagBPPMask         = 0xf
	flagKernClassesBit  = 13
	flagBitmapFmtShift  = 14
	flagBitmapFmtMask   = 0x3
	descriptorFlagsOffs = 22
)

// MaxCMapCount is the largest number of character ranges a descriptor can declare.
const MaxCMapCount = flagCMapCountMask

func decodeDescriptor(b binarySegm) Descriptor {
	_ = b[DescriptorSize-1]
	flags := u16(b[descriptorFlagsOffs:])
	return Descriptor{
		GlyphBitmap:  u32(b[0:]),
		GlyphIndex:   u32(b[4:]),
		GlyphDsc:     u32(b[8:]),
		CMaps:        u32(b[12:]),
		Kern:         u32(b[16:]),
		KernScale:    u16(b[20:]),
		CMapCount:    flags & flagCMapCountMask,
		BPP:          uint8(flags >> flagBPPShift & flagBPPMask),
		KernClasses:  flags>>flagKernClassesBit&1 == 1,
		BitmapFormat: BitmapFormat(flags >> flagBitmapFmtShift & flagBitmapFmtMask),
	}
}

// EncodeFlags packs the descriptor's cmap count, bpp, kern type and bitmap format
// into the flags word of the binary layout.
func (d Descriptor) EncodeFlags() uint16 {
	flags := d.CMapCount & flagCMapCountMask
	flags |= uint16(d.BPP&flagBPPMask) << flagBPPShift
	if d.KernClasses {
		flags |= 1 << flagKernClassesBit
	}
	flags |= uint16(d.BitmapFormat&flagBitmapFmtMask) << flagBitmapFmtShift
	return flags
}

// validBPP reports whether bpp is one of the supported bit depths for format f.
func validBPP(bpp uint8, f BitmapFormat) bool {
	switch bpp {
	case 1, 2, 3, 4:
		return true
	case 8:
		return !f.IsCompressed()
	}
	return false
}
