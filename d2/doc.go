/*
Package d2 parses and validates D2 bitmap font containers.

A D2 font is a compact little-endian container carrying font-wide metrics,
a descriptor block and five tag-prefixed sub-tables:

	CMAP   character ranges, mapping Unicode code-points to glyph IDs
	KERN   kerning pairs (optional)
	GIDX   glyph index, mapping glyph IDs to descriptors and bitmap offsets
	GDSC   glyph descriptors (advance, bounding box)
	GBIT   glyph bitmaps, plain or run-length compressed

Sub-tables are referenced by 32-bit offsets relative to the descriptor block.
Package d2 never dereferences them blindly: Parse checks every reference and
the integrity field once, and every later access goes through a bounds-checked
read. Malformed but in-bounds data will at worst produce wrong answers, never
a read outside the buffer.

Package d2 is low-level. It resolves code-points and kerning pairs and locates
glyph data, but does not decode bitmaps (see package raster) and keeps no
mutable state. Caching and the client facing API live in package d2font.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package d2

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'd2font'
func tracer() tracing.Trace {
	return tracing.Select("d2font")
}
