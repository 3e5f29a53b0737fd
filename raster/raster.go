/*
Package raster reconstructs glyph bitmaps of D2 fonts as 8-bit alpha masks.

Glyph bitmaps are stored with 1, 2, 3, 4 or 8 bits per pixel, either bit-packed
or run-length compressed (see package rle). Whatever the source format, the
output has one byte per pixel: samples are scaled to 0…255 through an opacity
table sized for the bit depth.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package raster

import (
	"errors"
	"fmt"
	"image"

	"github.com/npillmayer/d2font/d2"
	"github.com/npillmayer/d2font/rle"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'd2font'
func tracer() tracing.Trace {
	return tracing.Select("d2font")
}

var (
	ErrShortBitmap = errors.New("raster: glyph bitmap truncated")
	ErrDestination = errors.New("raster: destination buffer too small")
	ErrUnsupported = errors.New("raster: unsupported bitmap depth")
)

var (
	opa1 = []uint8{0, 255}
	opa2 = []uint8{0, 85, 170, 255}
	opa3 = []uint8{0, 36, 73, 109, 146, 182, 218, 255}
	opa4 = []uint8{0, 17, 34, 51, 68, 85, 102, 119, 136, 153, 170, 187, 204, 221, 238, 255}
	opa8 = func() []uint8 {
		t := make([]uint8, 256)
		for i := range t {
			t[i] = uint8(i)
		}
		return t
	}()
)

// OpacityTable returns the table mapping bpp-wide samples to alpha values.
func OpacityTable(bpp uint8) ([]uint8, bool) {
	switch bpp {
	case 1:
		return opa1, true
	case 2:
		return opa2, true
	case 3:
		return opa3, true
	case 4:
		return opa4, true
	case 8:
		return opa8, true
	}
	return nil, false
}

// Glyph describes a glyph's source bitmap.
type Glyph struct {
	Data   []byte // raw bitmap bytes; may extend beyond the glyph's data
	W, H   int
	BPP    uint8
	Format d2.BitmapFormat
}

// Decode writes the glyph as 8-bit alpha into dst, starting each row stride
// bytes after the previous one.
func Decode(dst []byte, stride int, g Glyph) error {
	if g.W <= 0 || g.H <= 0 {
		return nil
	}
	if stride < g.W || len(dst) < (g.H-1)*stride+g.W {
		return ErrDestination
	}
	opa, ok := OpacityTable(g.BPP)
	if !ok {
		return fmt.Errorf("%w: %d bpp", ErrUnsupported, g.BPP)
	}
	switch g.Format {
	case d2.Plain:
		return decodePlain(dst, stride, g, opa)
	case d2.Compressed, d2.CompressedNoPrefilter:
		if g.BPP > 4 {
			return fmt.Errorf("%w: %d bpp compressed", ErrUnsupported, g.BPP)
		}
		return decompress(dst, stride, g, opa, g.Format == d2.Compressed)
	}
	return fmt.Errorf("%w: format %s", ErrUnsupported, g.Format)
}

// DecodeAlpha decodes the glyph into a new image.Alpha of size W×H.
func DecodeAlpha(g Glyph) (*image.Alpha, error) {
	img := image.NewAlpha(image.Rect(0, 0, g.W, g.H))
	if err := Decode(img.Pix, img.Stride, g); err != nil {
		return nil, err
	}
	return img, nil
}

// PlainSize is the number of bytes a bit-packed bitmap of w×h samples occupies.
func PlainSize(w, h int, bpp uint8) int {
	return (w*h*int(bpp) + 7) / 8
}

// decodePlain unpacks samples MSB first. Rows are not padded: the first
// sample of a row follows the last sample of the previous row immediately.
func decodePlain(dst []byte, stride int, g Glyph, opa []uint8) error {
	if len(g.Data) < PlainSize(g.W, g.H, g.BPP) {
		tracer().Debugf("plain bitmap needs %d bytes, has %d", PlainSize(g.W, g.H, g.BPP), len(g.Data))
		return ErrShortBitmap
	}
	if g.BPP == 8 {
		for y := 0; y < g.H; y++ {
			copy(dst[y*stride:y*stride+g.W], g.Data[y*g.W:(y+1)*g.W])
		}
		return nil
	}
	br := rle.NewBitReader(g.Data)
	for y := 0; y < g.H; y++ {
		row := dst[y*stride : y*stride+g.W]
		for x := range row {
			v, err := br.Read(g.BPP)
			if err != nil {
				return ErrShortBitmap
			}
			row[x] = opa[v]
		}
	}
	return nil
}

// decompress runs the RLE decoder row by row. With prefilter, every decoded
// row after the first is XORed with the previous (reconstructed) row.
func decompress(dst []byte, stride int, g Glyph, opa []uint8, prefilter bool) error {
	dec, err := rle.NewDecoder(g.Data, g.BPP)
	if err != nil {
		return err
	}
	line := make([]uint8, g.W)
	var delta []uint8
	if prefilter {
		delta = make([]uint8, g.W)
	}
	for y := 0; y < g.H; y++ {
		if y == 0 || !prefilter {
			err = dec.DecodeLine(line)
		} else {
			if err = dec.DecodeLine(delta); err == nil {
				for x := range line {
					line[x] ^= delta[x]
				}
			}
		}
		if err != nil {
			if errors.Is(err, rle.ErrShortStream) {
				return ErrShortBitmap
			}
			return err
		}
		row := dst[y*stride : y*stride+g.W]
		for x, v := range line {
			row[x] = opa[v]
		}
	}
	return nil
}
