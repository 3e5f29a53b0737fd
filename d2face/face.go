/*
Package d2face adapts D2 fonts to golang.org/x/image/font.Face, making them
usable with font.Drawer and friends.

D2 glyphs are pre-rasterized, so there is no scaling: one pixel of a glyph
bitmap is one pixel of output, and the dot is snapped to whole pixels.

A Face serializes access to its font, so it is safe for concurrent use.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package d2face

import (
	"image"
	"sync"

	"github.com/npillmayer/d2font"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Face is a font.Face for a D2 font.
type Face struct {
	mu    sync.Mutex
	f     *d2font.Font
	owned bool
}

var _ font.Face = (*Face)(nil)

// NewFace creates a face for f. Closing the face does not unload f.
func NewFace(f *d2font.Font) *Face {
	return &Face{f: f}
}

// NewOwningFace creates a face for f, which will be unloaded when the face is
// closed.
func NewOwningFace(f *d2font.Font) *Face {
	return &Face{f: f, owned: true}
}

// Close unloads the font if the face owns it.
func (face *Face) Close() error {
	face.mu.Lock()
	defer face.mu.Unlock()
	if !face.owned || face.f == nil {
		return nil
	}
	err := face.f.Unload()
	face.f = nil
	return err
}

// Metrics derives font metrics from the font's header. Ascent is the part of
// a line above the baseline, Descent the part below it.
func (face *Face) Metrics() font.Metrics {
	face.mu.Lock()
	defer face.mu.Unlock()
	if face.f == nil {
		return font.Metrics{}
	}
	lh, bl := face.f.LineHeight(), face.f.BaseLine()
	m := font.Metrics{
		Height:  fixed.I(lh),
		Ascent:  fixed.I(lh - bl),
		Descent: fixed.I(bl),
	}
	if x, ok := face.f.GlyphMetrics('x', 0); ok {
		m.XHeight = fixed.I(x.BoxH + x.OffsetY)
	}
	if h, ok := face.f.GlyphMetrics('H', 0); ok {
		m.CapHeight = fixed.I(h.BoxH + h.OffsetY)
	}
	m.CaretSlope = image.Point{X: 0, Y: 1}
	return m
}

// Glyph returns the mask of the glyph for r, positioned for a dot on the
// baseline. Glyphs without pixels, such as space, return an empty mask
// rectangle but are still ok.
func (face *Face) Glyph(dot fixed.Point26_6, r rune) (
	dr image.Rectangle, mask image.Image, maskp image.Point, advance fixed.Int26_6, ok bool) {
	//
	face.mu.Lock()
	defer face.mu.Unlock()
	if face.f == nil {
		return
	}
	gm, ok := face.f.GlyphMetrics(r, 0)
	if !ok {
		return
	}
	advance = fixed.I(gm.Advance)
	img, hasPixels := face.f.GlyphBitmap(r)
	if !hasPixels {
		return image.Rectangle{}, image.NewAlpha(image.Rectangle{}), image.Point{}, advance, true
	}
	origin := image.Point{X: dot.X.Round(), Y: dot.Y.Round()}
	dr = gm.Bounds().Add(origin)
	return dr, img, image.Point{}, advance, true
}

// GlyphBounds returns the bounding box of the glyph for r relative to a dot
// at the origin.
func (face *Face) GlyphBounds(r rune) (bounds fixed.Rectangle26_6, advance fixed.Int26_6, ok bool) {
	face.mu.Lock()
	defer face.mu.Unlock()
	if face.f == nil {
		return
	}
	gm, ok := face.f.GlyphMetrics(r, 0)
	if !ok {
		return
	}
	b := gm.Bounds()
	bounds = fixed.Rectangle26_6{
		Min: fixed.P(b.Min.X, b.Min.Y),
		Max: fixed.P(b.Max.X, b.Max.Y),
	}
	return bounds, fixed.I(gm.Advance), true
}

// GlyphAdvance returns the unkerned advance of the glyph for r.
func (face *Face) GlyphAdvance(r rune) (advance fixed.Int26_6, ok bool) {
	face.mu.Lock()
	defer face.mu.Unlock()
	if face.f == nil {
		return
	}
	gm, ok := face.f.GlyphMetrics(r, 0)
	if !ok {
		return 0, false
	}
	return fixed.I(gm.Advance), true
}

// Kern returns the kerning between r0 and r1. The font's kerning is in 12.4
// fixed point, which is converted to 26.6.
func (face *Face) Kern(r0, r1 rune) fixed.Int26_6 {
	face.mu.Lock()
	defer face.mu.Unlock()
	if face.f == nil {
		return 0
	}
	return fixed.Int26_6(face.f.Kern(r0, r1) << 2)
}
