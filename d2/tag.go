package d2

// Tag identifies a sub-table of a D2 font. In the binary, every sub-table is
// preceded by its four-letter ASCII tag, e.g. "CMAP".
type Tag uint32

// MakeTag creates a Tag from 4 bytes, e.g.,
// If b is shorter or longer, it will be silently extended or cut as appropriate
//
//	MakeTag([]byte("GBIT"))
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate
func T(t string) Tag {
	t = (t + "    ")[:4]
	return MakeTag([]byte(t))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}

// Tags of the five sub-tables referenced by the descriptor block.
var (
	TagCMap        = T("CMAP")
	TagKern        = T("KERN")
	TagGlyphIndex  = T("GIDX")
	TagGlyphDsc    = T("GDSC")
	TagGlyphBitmap = T("GBIT")
)

// Sections of the container not covered by a sub-table tag.
var (
	tagHeader     = T("HEAD")
	tagDescriptor = T("DSC ")
)
