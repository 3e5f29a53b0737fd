package d2font

import (
	"fmt"
	"os"

	"github.com/npillmayer/d2font/d2"
	"github.com/npillmayer/d2font/storage"
)

// Font is a loaded D2 font.
type Font struct {
	Name    string     // label or file name, if known
	tables  *d2.Tables // nil after Unload
	mapping storage.Mapping
	cache   glyphCache
	mode    CacheMode
}

// Storage maps labelled regions of storage, e.g. *storage.Image.
type Storage interface {
	Map(label string) (storage.Mapping, error)
}

// Load validates a font binary and sets up a font for it.
// The font references buf without copying it; the caller keeps ownership of
// buf and must neither modify nor release it while the font is in use.
//
// Load returns ErrInvalidArgument for an empty buffer and one of the format
// errors (ErrCorruptHeader, ErrCorruptDescriptor, ErrIntegrity,
// ErrInvalidTableReference) for a malformed container.
func Load(buf []byte, opts ...LoadOption) (*Font, error) {
	if len(buf) == 0 {
		tracer().Errorf("cannot load font from empty buffer")
		return nil, fmt.Errorf("%w: empty font buffer", ErrInvalidArgument)
	}
	tables, err := d2.Parse(buf)
	if err != nil {
		return nil, err
	}
	f := &Font{tables: tables, mode: CacheReadWrite}
	for _, opt := range opts {
		if opt == NoGlyphCache {
			f.mode = CacheDisabled
		}
	}
	for _, w := range tables.Warnings() {
		tracer().Infof("font: %s", w)
	}
	tracer().Debugf("loaded D2 font, version %d, %d glyphs, %d bpp %s",
		tables.Header.Version, tables.GlyphCount(), tables.Descriptor.BPP, tables.Descriptor.BitmapFormat)
	return f, nil
}

// LoadFile reads a font binary from a file and loads it.
func LoadFile(path string, opts ...LoadOption) (*Font, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Load(buf, opts...)
	if err != nil {
		return nil, err
	}
	f.Name = path
	return f, nil
}

// LoadOwned maps the storage region with the given label and loads the font
// it contains. The font takes ownership of the mapping and releases it on
// Unload. If the region's contents do not validate, the mapping is released
// before returning the error.
//
// LoadOwned returns ErrNotFound if no region carries label and ErrOutOfMemory
// if the region cannot be mapped.
func LoadOwned(st Storage, label string, opts ...LoadOption) (*Font, error) {
	if st == nil || label == "" {
		return nil, fmt.Errorf("%w: storage and label required", ErrInvalidArgument)
	}
	m, err := st.Map(label)
	if err != nil {
		return nil, err
	}
	f, err := Load(m.Bytes(), opts...)
	if err != nil {
		if cerr := m.Close(); cerr != nil {
			tracer().Errorf("releasing region %q: %v", label, cerr)
		}
		return nil, err
	}
	f.Name = label
	f.mapping = m
	return f, nil
}

// Unload releases the font. If the font owns its binary, the storage mapping
// is released. Queries on an unloaded font report every glyph as absent.
// Calling Unload again returns ErrUnloaded.
func (f *Font) Unload() error {
	if f.tables == nil {
		return ErrUnloaded
	}
	f.tables = nil
	f.cache.reset()
	if f.mapping == nil {
		return nil
	}
	m := f.mapping
	f.mapping = nil
	tracer().Debugf("unloading font %s", f.Name)
	return m.Close()
}

// Tables gives access to the parsed container, or nil after Unload.
func (f *Font) Tables() *d2.Tables {
	return f.tables
}

// Owned reports whether the font owns its binary.
func (f *Font) Owned() bool {
	return f.mapping != nil
}

// --- Font-wide metrics -----------------------------------------------------

// Header returns the font-wide metrics.
func (f *Font) Header() d2.Header {
	if f.tables == nil {
		return d2.Header{}
	}
	return f.tables.Header
}

// LineHeight is the distance between two baselines, in pixels.
func (f *Font) LineHeight() int {
	return int(f.Header().LineHeight)
}

// BaseLine is the distance of the baseline from the bottom of a line, in pixels.
func (f *Font) BaseLine() int {
	return int(f.Header().BaseLine)
}

// Subpx is the sub-pixel rendering mode the glyphs were rasterized for
// (0 = none, 1 = horizontal, 2 = vertical).
func (f *Font) Subpx() int {
	return int(f.Header().Subpx)
}

// Underline returns position and thickness of the underline.
func (f *Font) Underline() (position, thickness int) {
	h := f.Header()
	return int(h.UnderlinePosition), int(h.UnderlineThickness)
}

// BPP is the bit depth of the glyph bitmaps.
func (f *Font) BPP() uint8 {
	if f.tables == nil {
		return 0
	}
	return f.tables.Descriptor.BPP
}
