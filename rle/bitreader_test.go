package rle

import (
	"errors"
	"testing"
)

func TestBitReaderFields(t *testing.T) {
	br := NewBitReader([]byte{0b10110011, 0b01011100})
	widths := []uint8{1, 3, 2, 5, 4, 1}
	expect := []uint8{0b1, 0b011, 0b00, 0b11010, 0b1110, 0b0}
	for i, n := range widths {
		v, err := br.Read(n)
		if err != nil {
			t.Fatalf("read %d: unexpected error %v", i, err)
		}
		if v != expect[i] {
			t.Errorf("read %d of %d bits: expected %b, got %b", i, n, expect[i], v)
		}
	}
	if br.Pos() != 16 {
		t.Errorf("expected cursor at bit 16, is at %d", br.Pos())
	}
}

func TestBitReaderCrossesByteBoundary(t *testing.T) {
	br := NewBitReader([]byte{0x0f, 0xf0})
	if _, err := br.Read(4); err != nil {
		t.Fatal(err)
	}
	v, err := br.Read(8)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0xff {
		t.Errorf("expected 8 bits spanning two bytes to be 0xff, got %#x", v)
	}
}

func TestBitReaderExhausted(t *testing.T) {
	br := NewBitReader([]byte{0xaa})
	if _, err := br.Read(6); err != nil {
		t.Fatal(err)
	}
	if _, err := br.Read(3); !errors.Is(err, ErrShortStream) {
		t.Errorf("expected ErrShortStream reading beyond input, got %v", err)
	}
	if br.Pos() != 6 {
		t.Errorf("failed read must not move the cursor, is at %d", br.Pos())
	}
	if v, err := br.Read(2); err != nil || v != 0b10 {
		t.Errorf("expected last 2 bits to be 10, got %b (%v)", v, err)
	}
	if _, err := br.Read(9); err == nil {
		t.Errorf("expected reads wider than 8 bits to fail")
	}
}
