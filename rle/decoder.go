/*
Package rle decodes the run-length compressed glyph bitmaps of D2 fonts.

The bit stream is a sequence of bpp-wide samples (1 ≤ bpp ≤ 4 for glyph
bitmaps). A sample repeating its predecessor switches the decoder into a
run mode: each further repetition is announced by a single 1-bit, a 0-bit
ends the run and is followed by a fresh sample. After 11 single-bit
repetitions a 6-bit counter follows, which encodes the remaining length of
the run in one go (a counter of 0 ends the run instead).

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package rle

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'd2font'
func tracer() tracing.Trace {
	return tracing.Select("d2font")
}

// State is a state of the decoder.
type State uint8

const (
	Single   State = iota // reading individual samples
	Repeated              // in a run, each repetition announced by a 1-bit
	Counter               // in a run of counted length
)

func (s State) String() string {
	switch s {
	case Single:
		return "single"
	case Repeated:
		return "repeated"
	case Counter:
		return "counter"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// RepeatThreshold is the number of 1-bit announced repetitions after which a
// 6-bit run counter follows.
const RepeatThreshold = 11

// CounterBits is the width of the run counter.
const CounterBits = 6

// Decoder is the state machine decoding one glyph's bit stream.
// A Decoder is not safe for concurrent use.
type Decoder struct {
	br    *BitReader
	bpp   uint8
	prev  uint8
	count uint8
	state State
}

// NewDecoder creates a decoder for samples of bpp bits (1 ≤ bpp ≤ 8).
func NewDecoder(in []byte, bpp uint8) (*Decoder, error) {
	if bpp == 0 || bpp > 8 {
		return nil, fmt.Errorf("rle: unsupported sample width %d", bpp)
	}
	return &Decoder{br: NewBitReader(in), bpp: bpp, state: Single}, nil
}

// State returns the decoder's current state.
func (d *Decoder) State() State {
	return d.state
}

// Next decodes the next sample. Next is called once per pixel.
// It returns ErrShortStream if the input ends prematurely.
func (d *Decoder) Next() (uint8, error) {
	switch d.state {
	case Single:
		first := d.br.Pos() == 0
		v, err := d.br.Read(d.bpp)
		if err != nil {
			return 0, err
		}
		if !first && v == d.prev {
			d.count = 0
			d.state = Repeated
		}
		d.prev = v
		return v, nil
	case Repeated:
		flag, err := d.br.Read(1)
		if err != nil {
			return 0, err
		}
		d.count++
		if flag == 0 {
			return d.fresh()
		}
		if d.count == RepeatThreshold {
			if d.count, err = d.br.Read(CounterBits); err != nil {
				return 0, err
			}
			if d.count == 0 {
				return d.fresh()
			}
			d.state = Counter
		}
		return d.prev, nil
	case Counter:
		d.count--
		if d.count == 0 {
			return d.fresh()
		}
		return d.prev, nil
	}
	return 0, fmt.Errorf("rle: decoder in invalid state %d", d.state)
}

// fresh reads a new sample and returns to state Single.
func (d *Decoder) fresh() (uint8, error) {
	v, err := d.br.Read(d.bpp)
	if err != nil {
		return 0, err
	}
	d.prev = v
	d.state = Single
	return v, nil
}

// DecodeLine fills out with the next len(out) samples.
func (d *Decoder) DecodeLine(out []uint8) error {
	for i := range out {
		v, err := d.Next()
		if err != nil {
			tracer().Debugf("rle: stream ended at bit %d", d.br.Pos())
			return err
		}
		out[i] = v
	}
	return nil
}
