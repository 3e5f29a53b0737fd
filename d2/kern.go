package d2

import (
	"fmt"
	"sort"
)

// KernIDWidth is the storage width of glyph IDs in the kerning pair array.
type KernIDWidth uint8

const (
	KernIDs8  KernIDWidth = 0 // glyph IDs stored as u8
	KernIDs16 KernIDWidth = 1 // glyph IDs stored as u16
)

// kernTable is the decoded header of a pair-based kerning table:
//
//	u32   pair count (30 bits) | ID width (2 bits)
//	u32   maximum glyph ID of any pair
//	i8    values[pair count]
//	u8/16 glyph IDs[2 * pair count], sorted by (left, right)
type kernTable struct {
	pairCount  int
	idWidth    KernIDWidth
	glyphIDMax uint32
	values     int // absolute offset of values
	ids        int // absolute offset of the glyph ID pairs
	usable     bool
}

const (
	kernPairCountMask = 1<<30 - 1
	kernIDWidthShift  = 30
)

func (k kernTable) pairSize() int {
	if k.idWidth == KernIDs16 {
		return 4
	}
	return 2
}

// parseKern decodes the kerning table header. Class-based kerning and unknown ID
// widths are accepted with a warning; kerning lookups will then yield 0.
func (t *Tables) parseKern(wc *warningCollector) error {
	e, ok := t.extents[TagKern]
	if !ok {
		return nil
	}
	if t.Descriptor.KernClasses {
		wc.addWarning(TagKern, "class-based kerning is not supported, kerning disabled", e.from)
		return nil
	}
	h, err := t.bin.view(e.from, kernHeaderSize)
	if err != nil {
		return formatError(ErrInvalidTableReference, TagKern, "Header", "kern header exceeds table bounds", e.from)
	}
	packed := u32(h)
	k := kernTable{
		pairCount:  int(packed & kernPairCountMask),
		idWidth:    KernIDWidth(packed >> kernIDWidthShift),
		glyphIDMax: u32(h[4:]),
		values:     e.from + kernHeaderSize,
	}
	tracer().Debugf("kern table has %d pairs, id width %d, max glyph %d", k.pairCount, k.idWidth, k.glyphIDMax)
	if k.idWidth != KernIDs8 && k.idWidth != KernIDs16 {
		wc.addWarning(TagKern, fmt.Sprintf("invalid glyph ID width %d, kerning disabled", k.idWidth), e.from)
		t.kern = k
		return nil
	}
	k.ids = k.values + k.pairCount
	idsSize, err := checkedMulInt(k.pairCount, k.pairSize())
	if err == nil {
		_, err = t.bin.view(k.values, k.pairCount+idsSize)
	}
	if err != nil {
		return formatError(ErrInvalidTableReference, TagKern, "Pairs",
			fmt.Sprintf("%d kerning pairs exceed table bounds", k.pairCount), e.from)
	}
	k.usable = true
	t.kern = k
	return nil
}

// Kern returns the kerning value for an ordered pair of glyph IDs, in units of
// the descriptor's kern scale. Kern returns 0 if the font has no (usable)
// kerning table or the pair is not listed.
//
// Pairs are expected to be sorted by (left, right); this is not checked.
// An unsorted table yields possibly wrong values, but no out-of-bounds reads.
func (t *Tables) Kern(left, right uint32) int8 {
	k := &t.kern
	if !k.usable || left > k.glyphIDMax || right > k.glyphIDMax {
		return 0
	}
	psize := k.pairSize()
	inx, found := sort.Find(k.pairCount, func(i int) int {
		l, r, err := t.kernPair(k, k.ids+i*psize)
		if err != nil {
			return -1
		}
		if left != l {
			return cmpUint32(left, l)
		}
		return cmpUint32(right, r)
	})
	if !found {
		return 0
	}
	v, err := t.bin.i8(k.values + inx)
	if err != nil {
		return 0
	}
	return v
}

func (t *Tables) kernPair(k *kernTable, at int) (left, right uint32, err error) {
	if k.idWidth == KernIDs16 {
		var l, r uint16
		if l, err = t.bin.u16(at); err == nil {
			r, err = t.bin.u16(at + 2)
		}
		return uint32(l), uint32(r), err
	}
	var l, r uint8
	if l, err = t.bin.u8(at); err == nil {
		r, err = t.bin.u8(at + 1)
	}
	return uint32(l), uint32(r), err
}

// KernPairCount is the number of kerning pairs of a usable kerning table.
func (t *Tables) KernPairCount() int {
	if !t.kern.usable {
		return 0
	}
	return t.kern.pairCount
}

func cmpUint32(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
