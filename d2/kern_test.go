package d2_test

import (
	"errors"
	"testing"

	"github.com/npillmayer/d2font/d2"
	"github.com/npillmayer/d2font/internal/d2test"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func kernFont(width d2.KernIDWidth, pairs ...d2test.KernPair) *d2test.Font {
	return &d2test.Font{
		Header:      d2.Header{Version: d2.VersionCRC32},
		BPP:         1,
		KernScale:   16,
		KernIDWidth: width,
		Glyphs:      []d2test.Glyph{{}},
		Kern:        pairs,
	}
}

var kernPairs = []d2test.KernPair{
	{Left: 1, Right: 2, Value: -3},
	{Left: 1, Right: 5, Value: 4},
	{Left: 7, Right: 7, Value: 1},
}

func TestKernLookup(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	for _, width := range []d2.KernIDWidth{d2.KernIDs8, d2.KernIDs16} {
		tables := mustParse(t, kernFont(width, kernPairs...).Build())
		if n := tables.KernPairCount(); n != 3 {
			t.Errorf("expected 3 kerning pairs, have %d", n)
		}
		cases := []struct {
			left, right uint32
			kv          int8
		}{
			{1, 2, -3},
			{1, 5, 4},
			{7, 7, 1},
			{2, 1, 0},
			{1, 3, 0},
			{0, 0, 0},
			{8, 7, 0}, // beyond maximum glyph ID
			{1, 0x10002, 0},
		}
		for _, c := range cases {
			if kv := tables.Kern(c.left, c.right); kv != c.kv {
				t.Errorf("id width %d: expected kern(%d, %d) = %d, is %d", width, c.left, c.right, c.kv, kv)
			}
		}
	}
}

func TestKernWideIDs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	tables := mustParse(t, kernFont(d2.KernIDs16,
		d2test.KernPair{Left: 3, Right: 700, Value: -5},
		d2test.KernPair{Left: 300, Right: 4, Value: 6},
	).Build())
	if kv := tables.Kern(3, 700); kv != -5 {
		t.Errorf("expected kern(3, 700) = -5, is %d", kv)
	}
	if kv := tables.Kern(300, 4); kv != 6 {
		t.Errorf("expected kern(300, 4) = 6, is %d", kv)
	}
}

func TestKernClassesDisabled(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	f := kernFont(d2.KernIDs8, kernPairs...)
	f.KernClasses = true
	tables := mustParse(t, f.Build())
	if kv := tables.Kern(1, 5); kv != 0 {
		t.Errorf("expected class-based kerning to yield 0, is %d", kv)
	}
	if ws := tables.Warnings(); len(ws) != 1 || ws[0].Table != d2.TagKern {
		t.Errorf("expected a single KERN warning, have %v", ws)
	}
}

func TestKernInvalidIDWidth(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	good, lay := kernFont(d2.KernIDs8, kernPairs...).BuildLayout()
	b := append([]byte(nil), good...)
	at := lay.Tables[d2.TagKern]
	le.PutUint32(b[at:], 3|2<<30)
	tables := mustParse(t, d2test.Reseal(b))
	if kv := tables.Kern(1, 5); kv != 0 {
		t.Errorf("expected kerning with invalid ID width to yield 0, is %d", kv)
	}
	if len(tables.Warnings()) != 1 {
		t.Errorf("expected a warning, have %v", tables.Warnings())
	}
}

func TestKernPairsOutOfBounds(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	good, lay := kernFont(d2.KernIDs16, kernPairs...).BuildLayout()
	b := append([]byte(nil), good...)
	at := lay.Tables[d2.TagKern]
	le.PutUint32(b[at:], 1000|uint32(d2.KernIDs16)<<30)
	_, err := d2.Parse(d2test.Reseal(b))
	if !errors.Is(err, d2.ErrInvalidTableReference) {
		t.Errorf("expected ErrInvalidTableReference, got %v", err)
	}
}
