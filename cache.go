package d2font

import (
	"fmt"
	"sync/atomic"
)

// CacheMode controls the code point cache of a font.
type CacheMode uint8

const (
	// CacheReadWrite serves lookups from the cache and records new ones.
	CacheReadWrite CacheMode = iota
	// CacheReadOnly serves lookups from the cache but never changes it.
	// Queries only update the atomic hit and miss counters and are safe for
	// concurrent use.
	CacheReadOnly
	// CacheDisabled resolves every code point through the character map.
	// Queries are safe for concurrent use in this mode.
	CacheDisabled
)

func (m CacheMode) String() string {
	switch m {
	case CacheReadWrite:
		return "read-write"
	case CacheReadOnly:
		return "read-only"
	case CacheDisabled:
		return "disabled"
	}
	return fmt.Sprintf("CacheMode(%d)", uint8(m))
}

// SetCacheMode switches the cache mode. Disabling the cache empties it.
func (f *Font) SetCacheMode(mode CacheMode) {
	f.mode = mode
	if mode == CacheDisabled {
		f.cache.reset()
	}
}

// CacheMode returns the current cache mode.
func (f *Font) CacheMode() CacheMode {
	return f.mode
}

// CacheStats returns the number of cache hits and misses since loading.
func (f *Font) CacheStats() (hits, misses int) {
	return int(f.cache.hits.Load()), int(f.cache.misses.Load())
}

// resolution is a code point resolved to a glyph.
type resolution struct {
	cp         rune
	glyph      uint32
	rangeIndex int
}

// glyphCache remembers the last two resolutions, most recent first. Only
// successful resolutions are cached. Slots change only with promote or insert;
// the counters may be updated by concurrent readers.
type glyphCache struct {
	slots        [2]resolution
	used         int
	hits, misses atomic.Int64
}

// find looks up cp. With promote set, a hit in the second slot moves to the
// front.
func (c *glyphCache) find(cp rune, promote bool) (resolution, bool) {
	for i := 0; i < c.used; i++ {
		if c.slots[i].cp != cp {
			continue
		}
		r := c.slots[i]
		if i == 1 && promote {
			c.slots[0], c.slots[1] = c.slots[1], c.slots[0]
		}
		c.hits.Add(1)
		return r, true
	}
	c.misses.Add(1)
	return resolution{}, false
}

// insert puts r in front, evicting the older of two entries.
func (c *glyphCache) insert(r resolution) {
	c.slots[1] = c.slots[0]
	c.slots[0] = r
	if c.used < 2 {
		c.used++
	}
}

func (c *glyphCache) reset() {
	c.slots = [2]resolution{}
	c.used = 0
}

// resolve maps a code point to a glyph ID and the index of the character range
// containing it, going through the cache as the cache mode allows.
func (f *Font) resolve(cp rune) (resolution, bool) {
	if f.tables == nil || cp < 0 {
		return resolution{}, false
	}
	if f.mode != CacheDisabled {
		if r, ok := f.cache.find(cp, f.mode == CacheReadWrite); ok {
			return r, true
		}
	}
	gid, rinx, ok := f.tables.Lookup(uint32(cp))
	if !ok {
		return resolution{}, false
	}
	r := resolution{cp: cp, glyph: gid, rangeIndex: rinx}
	if f.mode == CacheReadWrite {
		f.cache.insert(r)
	}
	return r, true
}

// GlyphID returns the glyph ID of a code point.
func (f *Font) GlyphID(cp rune) (uint32, bool) {
	r, ok := f.resolve(cp)
	return r.glyph, ok
}
