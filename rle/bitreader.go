package rle

import (
	"errors"
	"fmt"
)

// ErrShortStream is returned when a read would extend beyond the end of the
// input buffer.
var ErrShortStream = errors.New("rle: bit stream exhausted")

// BitReader reads fields of up to 8 bits, MSB first, from an arbitrary bit
// position of a byte buffer. Reads may cross one byte boundary.
type BitReader struct {
	in  []byte
	pos uint64 // bit position of the next read
}

// NewBitReader creates a BitReader positioned at the first bit of in.
func NewBitReader(in []byte) *BitReader {
	return &BitReader{in: in}
}

// Pos is the bit position of the next read.
func (br *BitReader) Pos() uint64 {
	return br.pos
}

// Read returns the next n bits (1 ≤ n ≤ 8) and advances the bit cursor.
// If fewer than n bits remain, Read returns ErrShortStream and does not
// advance.
func (br *BitReader) Read(n uint8) (uint8, error) {
	v, err := br.Peek(n)
	if err != nil {
		return 0, err
	}
	br.pos += uint64(n)
	return v, nil
}

// Peek returns the next n bits without advancing the cursor.
func (br *BitReader) Peek(n uint8) (uint8, error) {
	if n == 0 || n > 8 {
		return 0, fmt.Errorf("rle: cannot read %d bits at once", n)
	}
	if br.pos+uint64(n) > uint64(len(br.in))*8 {
		return 0, ErrShortStream
	}
	bytePos := br.pos >> 3
	bitPos := uint(br.pos & 0x7)
	mask := uint16(1)<<n - 1
	if bitPos+uint(n) > 8 {
		in16 := uint16(br.in[bytePos])<<8 | uint16(br.in[bytePos+1])
		return uint8(in16 >> (16 - bitPos - uint(n)) & mask), nil
	}
	return uint8(uint16(br.in[bytePos]) >> (8 - bitPos - uint(n)) & mask), nil
}
