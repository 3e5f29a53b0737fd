package storage_test

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/d2font"
	"github.com/npillmayer/d2font/internal/d2test"
	"github.com/npillmayer/d2font/storage"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

const table = `# Name,   Type, SubType, Offset,  Size
nvs,      data, nvs,     0x9000,  0x6000
factory,  app,  factory, 0x10000, 1M
font_a,   data, fat,     ,        4K
font_b,   data, fat,     0x111010, 256
`

func TestParsePartitionTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	parts, err := storage.ParsePartitionTable(strings.NewReader(table))
	if err != nil {
		t.Fatal(err)
	}
	expected := []storage.Partition{
		{Label: "nvs", Type: storage.TypeData, SubType: "nvs", Offset: 0x9000, Size: 0x6000},
		{Label: "factory", Type: storage.TypeApp, SubType: "factory", Offset: 0x10000, Size: 1 << 20},
		{Label: "font_a", Type: storage.TypeData, SubType: "fat", Offset: 0x110000, Size: 4096},
		{Label: "font_b", Type: storage.TypeData, SubType: "fat", Offset: 0x111010, Size: 256},
	}
	if diff := cmp.Diff(expected, parts); diff != "" {
		t.Errorf("partition table mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePartitionTableErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	for _, bad := range []string{
		"font, data, fat, 0x1000\n",                     // missing size
		"font, data, fat, 0x1000, 0\n",                  // empty partition
		"font, data, fat, 0x1000, -4\n",                 // negative size
		"font, data, fat, zero, 4K\n",                   // bad offset
		", data, fat, 0x1000, 4K\n",                     // no label
		"font, data, fat, 0x1000, 4G\n",                 // unknown suffix
		"font, data, fat, 0x1000, 9000000000000M\n",     // size overflows
		"font, data, fat, 0x7fffffffffffff00, 0x1000\n", // end overflows
	} {
		if _, err := storage.ParsePartitionTable(strings.NewReader(bad)); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

// writeImage writes a partition table and an image holding the font binary
// fnt in partitions at a page-aligned and at an unaligned offset.
func writeImage(t *testing.T, fnt []byte) (tablePath, imagePath string) {
	dir := t.TempDir()
	tablePath = filepath.Join(dir, "partitions.csv")
	imagePath = filepath.Join(dir, "flash.bin")
	csv := "# Name, Type, SubType, Offset, Size\n" +
		"factory, app, factory, 0x0, 0x1000\n" +
		"aligned, data, fat, 0x1000, " + fmt.Sprintf("%#x", len(fnt)) + "\n" +
		"unaligned, data, fat, 0x3010, " + fmt.Sprintf("%#x", len(fnt)) + "\n" +
		"garbage, data, fat, 0x5000, 0x100\n"
	if err := os.WriteFile(tablePath, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	img := bytes.Repeat([]byte{0xff}, 0x5100)
	copy(img[0x1000:], fnt)
	copy(img[0x3010:], fnt)
	if err := os.WriteFile(imagePath, img, 0o644); err != nil {
		t.Fatal(err)
	}
	return
}

func TestMapPartitions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	fnt := d2test.ABC().Build()
	tablePath, imagePath := writeImage(t, fnt)
	img, err := storage.Open(tablePath, imagePath)
	if err != nil {
		t.Fatal(err)
	}
	for _, label := range []string{"aligned", "unaligned"} {
		m, err := img.Map(label)
		if err != nil {
			t.Fatalf("%s: %v", label, err)
		}
		if !bytes.Equal(m.Bytes(), fnt) {
			t.Errorf("%s: mapped bytes differ from font binary", label)
		}
		if err := m.Close(); err != nil {
			t.Errorf("%s: %v", label, err)
		}
		if err := m.Close(); err != nil {
			t.Errorf("%s: second close should do nothing, got %v", label, err)
		}
		if m.Bytes() != nil {
			t.Errorf("%s: expected bytes to be dropped after close", label)
		}
	}
	if _, err := img.Map("factory"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("app partitions must not be mappable, got %v", err)
	}
	if _, err := img.Map("missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadFromPartition(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	tablePath, imagePath := writeImage(t, d2test.ABC().Build())
	img, err := storage.Open(tablePath, imagePath)
	if err != nil {
		t.Fatal(err)
	}
	f, err := d2font.LoadOwned(img, "unaligned")
	if err != nil {
		t.Fatal(err)
	}
	if bm, ok := f.GlyphBitmap('B'); !ok || bm.Pix[0] != 128 {
		t.Errorf("expected glyph 'B' with alpha 128 from mapped font")
	}
	if err := f.Unload(); err != nil {
		t.Error(err)
	}
	if _, err := d2font.LoadOwned(img, "garbage"); !errors.Is(err, d2font.ErrCorruptHeader) {
		t.Errorf("expected ErrCorruptHeader for erased partition, got %v", err)
	}
}

func TestOpenRejectsOversizedPartition(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	dir := t.TempDir()
	tablePath := filepath.Join(dir, "partitions.csv")
	imagePath := filepath.Join(dir, "flash.bin")
	os.WriteFile(tablePath, []byte("font, data, fat, 0x100, 1K\n"), 0o644)
	os.WriteFile(imagePath, make([]byte, 1024), 0o644)
	if _, err := storage.Open(tablePath, imagePath); err == nil {
		t.Errorf("expected partition beyond image end to be rejected")
	}
}

func TestBytesMapping(t *testing.T) {
	b := []byte{1, 2, 3}
	m := storage.Bytes(b)
	if !bytes.Equal(m.Bytes(), b) {
		t.Errorf("expected wrapped bytes")
	}
	if err := m.Close(); err != nil {
		t.Error(err)
	}
}

func TestMapShrunkImage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	tablePath, imagePath := writeImage(t, d2test.ABC().Build())
	img, err := storage.Open(tablePath, imagePath)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Truncate(imagePath, 0x2000); err != nil {
		t.Fatal(err)
	}
	if _, err := img.Map("unaligned"); err == nil {
		t.Errorf("expected partition beyond the truncated image to be rejected")
	}
	m, err := img.Map("aligned")
	if err != nil {
		t.Fatalf("expected partition within the truncated image to map, got %v", err)
	}
	m.Close()
}

func TestMapHugeOffset(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	_, imagePath := writeImage(t, d2test.ABC().Build())
	img := &storage.Image{Path: imagePath, Partitions: []storage.Partition{
		{Label: "font", Type: storage.TypeData, Offset: math.MaxInt64 - 10, Size: 100},
	}}
	if _, err := img.Map("font"); err == nil {
		t.Errorf("expected partition with overflowing end to be rejected")
	}
}
