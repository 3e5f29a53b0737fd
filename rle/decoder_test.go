package rle

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/d2font/internal/d2test"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func decodeAll(t *testing.T, in []byte, bpp uint8, n int) []uint8 {
	t.Helper()
	dec, err := NewDecoder(in, bpp)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]uint8, n)
	if err := dec.DecodeLine(out); err != nil {
		t.Fatalf("decoding %d samples: %v", n, err)
	}
	return out
}

func repeat(v uint8, n int) []uint8 {
	s := make([]uint8, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func TestDecodeRunBelowThreshold(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	// 5 5 (then ten 1-bits) 0 3 3
	in := []byte{0x55, 0xff, 0xc6, 0x60}
	expect := append(repeat(5, 12), 3, 3)
	got := decodeAll(t, in, 4, len(expect))
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Errorf("decoded samples differ (-want +got):\n%s", diff)
	}
}

func TestDecodeCounter(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	// 5 5 (then eleven 1-bits) counter=4, 3
	in := []byte{0x55, 0xff, 0xe2, 0x18}
	dec, err := NewDecoder(in, 4)
	if err != nil {
		t.Fatal(err)
	}
	expect := append(repeat(5, 16), 3)
	states := []State{}
	got := make([]uint8, len(expect))
	for i := range got {
		if got[i], err = dec.Next(); err != nil {
			t.Fatalf("sample %d: %v", i, err)
		}
		states = append(states, dec.State())
	}
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Errorf("decoded samples differ (-want +got):\n%s", diff)
	}
	if states[12] != Counter {
		t.Errorf("expected decoder to switch to counting after 11 repetitions, is %s", states[12])
	}
	if states[len(states)-1] != Single {
		t.Errorf("expected decoder to return to single samples, is %s", states[len(states)-1])
	}
}

func TestDecodeZeroCounter(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	// bpp 1: 1 1 (eleven 1-bits) counter=0, fresh 1, 0
	// 1 1 11111111111 000000 1 0 => 11111111 11111000 00010xxx
	in := []byte{0xff, 0xf8, 0x10}
	expect := append(repeat(1, 13), 0)
	got := decodeAll(t, in, 1, len(expect))
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Errorf("decoded samples differ (-want +got):\n%s", diff)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	inputs := map[string][]uint8{
		"short run":  append(repeat(5, 12), 3, 3),
		"threshold":  append(repeat(2, 13), 1),
		"counter":    append(append(repeat(3, 40), 2), repeat(3, 3)...),
		"long run":   append(repeat(0, 100), 1, 1, 0),
		"max run":    repeat(3, 11+63+2),
		"beyond max": repeat(3, 11+63+3),
		"alternate":  {0, 1, 0, 1, 2, 3, 3, 2, 1, 0},
		"pairs":      {1, 1, 2, 2, 3, 3, 1, 1},
	}
	for name, input := range inputs {
		for bpp := uint8(1); bpp <= 4; bpp++ {
			samples := make([]uint8, len(input))
			for i, s := range input {
				samples[i] = s & (1<<bpp - 1)
			}
			enc := d2test.EncodeRLE(samples, bpp)
			got := decodeAll(t, enc, bpp, len(samples))
			if diff := cmp.Diff(samples, got); diff != "" {
				t.Errorf("%s at %d bpp: round trip differs (-want +got):\n%s", name, bpp, diff)
			}
		}
	}
}

func TestDecodeTruncated(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "d2font")
	defer teardown()
	//
	samples := append(repeat(6, 30), 1, 2, 3, 4)
	enc := d2test.EncodeRLE(samples, 4)
	for cut := 0; cut < len(enc); cut++ {
		dec, err := NewDecoder(enc[:cut], 4)
		if err != nil {
			t.Fatal(err)
		}
		out := make([]uint8, len(samples))
		if err := dec.DecodeLine(out); !errors.Is(err, ErrShortStream) {
			t.Errorf("stream cut to %d bytes: expected ErrShortStream, got %v", cut, err)
		}
	}
}

func TestDecoderRejectsSampleWidth(t *testing.T) {
	if _, err := NewDecoder([]byte{0}, 0); err == nil {
		t.Errorf("expected sample width 0 to be rejected")
	}
	if _, err := NewDecoder([]byte{0}, 9); err == nil {
		t.Errorf("expected sample width 9 to be rejected")
	}
}
