package d2test

// bitWriter appends fields MSB first.
type bitWriter struct {
	out  []byte
	nbit uint64
}

func (bw *bitWriter) write(v uint8, n uint8) {
	for i := int(n) - 1; i >= 0; i-- {
		if bw.nbit%8 == 0 {
			bw.out = append(bw.out, 0)
		}
		if v>>uint(i)&1 == 1 {
			bw.out[len(bw.out)-1] |= 0x80 >> (bw.nbit % 8)
		}
		bw.nbit++
	}
}

const (
	repeatThreshold = 11
	maxCounter      = 1<<6 - 1
)

// EncodeRLE compresses a sequence of bpp-wide samples into the bit stream
// format read by rle.Decoder.
func EncodeRLE(samples []uint8, bpp uint8) []byte {
	bw := &bitWriter{}
	const (
		single = iota
		repeated
	)
	state := single
	var prev uint8
	count := 0
	for i := 0; i < len(samples); i++ {
		s := samples[i]
		switch state {
		case single:
			bw.write(s, bpp)
			if i > 0 && s == prev {
				state, count = repeated, 0
			}
			prev = s
		case repeated:
			count++
			if s != prev {
				bw.write(0, 1)
				bw.write(s, bpp)
				prev, state = s, single
				continue
			}
			bw.write(1, 1)
			if count < repeatThreshold {
				continue
			}
			// remaining repetitions after this one
			r := 0
			for i+1+r < len(samples) && samples[i+1+r] == prev {
				r++
			}
			c := r + 1
			if c > maxCounter {
				c = maxCounter
			}
			bw.write(uint8(c), 6)
			// the decoder repeats c-1 times, then reads a fresh sample
			i += c - 1
			if j := i + 1; j < len(samples) {
				bw.write(samples[j], bpp)
				prev = samples[j]
				i = j
			}
			state = single
		}
	}
	return bw.out
}

// Prefilter XORs each row of a w×h sample grid with the row above it, which
// is what line prediction expects as encoder input.
func Prefilter(samples []uint8, w, h int) []uint8 {
	out := make([]uint8, len(samples))
	copy(out, samples[:w])
	for y := 1; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y*w+x] = samples[y*w+x] ^ samples[(y-1)*w+x]
		}
	}
	return out
}

// PackPlain packs samples MSB first into bytes, bpp bits each.
func PackPlain(samples []uint8, bpp uint8) []byte {
	bw := &bitWriter{}
	for _, s := range samples {
		bw.write(s, bpp)
	}
	return bw.out
}
