/*
Package d2font reads D2 bitmap fonts.

A D2 font is a single binary container holding pre-rasterized glyphs of one
typeface at one pixel size, together with everything needed to lay out text:
line metrics, a character map from Unicode code points to glyph IDs, glyph
metrics and optional pair kerning. Fonts are loaded either from a byte slice
owned by the caller (Load) or from a labelled storage region which the font
takes ownership of (LoadOwned).

	f, err := d2font.Load(buf)
	if err != nil {
		...
	}
	m, ok := f.GlyphMetrics('A', 'V')   // advance of 'A', kerned against 'V'
	img, ok := f.GlyphBitmap('A')       // 8-bit alpha mask

Loading validates the container completely, including its integrity field.
After loading, all queries are read-only and bounds-checked; a glyph missing
from the font is reported by a false return value, never by an error.

A Font keeps a tiny cache of recently resolved code points. Queries therefore
mutate the font and a Font is not safe for concurrent use without external
synchronization (see package d2face for a synchronized adapter), unless the
cache is switched to read-only or disabled.

# Packages

Package d2 parses and validates the container format. Package rle holds the
run-length decoder for compressed glyph bitmaps, and package raster turns glyph
bitmaps into 8-bit alpha masks. Package storage maps fonts from partitions of
an image file.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package d2font

import (
	"errors"

	"github.com/npillmayer/d2font/d2"
	"github.com/npillmayer/d2font/storage"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'd2font'
func tracer() tracing.Trace {
	return tracing.Select("d2font")
}

// Errors returned by Load and LoadOwned. Format errors may be tested for
// with errors.Is and inspected further with errors.As and *d2.FormatError.
var (
	ErrInvalidArgument       = d2.ErrInvalidArgument
	ErrCorruptHeader         = d2.ErrCorruptHeader
	ErrCorruptDescriptor     = d2.ErrCorruptDescriptor
	ErrIntegrity             = d2.ErrIntegrity
	ErrInvalidTableReference = d2.ErrInvalidTableReference
	ErrNotFound              = storage.ErrNotFound
	ErrOutOfMemory           = storage.ErrOutOfMemory
)

// ErrUnloaded is returned when using a font after Unload.
var ErrUnloaded = errors.New("d2font: font has been unloaded")

// LoadOption modifies how a font is set up.
type LoadOption int

const (
	// NoGlyphCache disables the code point cache of the font, making queries
	// free of side effects.
	NoGlyphCache LoadOption = iota + 1
)
