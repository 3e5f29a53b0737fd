package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/d2font"
	"github.com/pterm/pterm"
)

func headerOp(intp *Intp, op *Op) (error, bool) {
	h := intp.font.Header()
	t := intp.font.Tables()
	data := [][]string{
		{"Field", "Value"},
		{"version", fmt.Sprintf("%d (%s)", h.Version, t.Integrity)},
		{"line height", fmt.Sprintf("%d", h.LineHeight)},
		{"base line", fmt.Sprintf("%d", h.BaseLine)},
		{"subpx", fmt.Sprintf("%d", h.Subpx)},
		{"underline", fmt.Sprintf("pos=%d thickness=%d", h.UnderlinePosition, h.UnderlineThickness)},
		{"bpp", fmt.Sprintf("%d", t.Descriptor.BPP)},
		{"bitmap format", t.Descriptor.BitmapFormat.String()},
		{"kern scale", fmt.Sprintf("%d (%.4f)", t.Descriptor.KernScale, float64(t.Descriptor.KernScale)/16)},
		{"kern classes", fmt.Sprintf("%v", t.Descriptor.KernClasses)},
		{"glyphs", fmt.Sprintf("%d", t.GlyphCount())},
		{"descriptors", fmt.Sprintf("%d", t.DescriptorCount())},
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

func tablesOp(intp *Intp, op *Op) (error, bool) {
	t := intp.font.Tables()
	data := [][]string{
		{"Tag", "Offset", "Size"},
	}
	for _, tag := range t.TableTags() {
		offset, size, _ := t.TableExtent(tag)
		data = append(data, []string{tag.String(), fmt.Sprintf("%#x", offset), fmt.Sprintf("%d", size)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	pterm.Printf("integrity-covered region: %d bytes\n", t.CoveredSize())
	return nil, false
}

func cmapOp(intp *Intp, op *Op) (error, bool) {
	ranges := intp.font.Tables().CMapRanges()
	if arg, ok := op.hasArg(); ok {
		i, err := strconv.Atoi(arg)
		if err != nil || i < 0 || i >= len(ranges) {
			return fmt.Errorf("cmap index must be in [0, %d): %v", len(ranges), arg), false
		}
		r := ranges[i]
		pterm.Printf("range %d: %s, %U…%U, glyph IDs from %d, bitmap base %d, list of %d\n",
			i, r.Type, rune(r.RangeStart), rune(r.RangeStart+uint32(r.RangeLength)-1),
			r.GlyphIDStart, r.BitmapIndexBase, r.ListLength)
		return nil, false
	}
	data := [][]string{
		{"Index", "Type", "First", "Last", "Glyph IDs", "List"},
	}
	for i, r := range ranges {
		data = append(data, []string{
			fmt.Sprintf("%d", i),
			r.Type.String(),
			fmt.Sprintf("%U", rune(r.RangeStart)),
			fmt.Sprintf("%U", rune(r.RangeStart+uint32(r.RangeLength)-1)),
			fmt.Sprintf("%d…", r.GlyphIDStart),
			fmt.Sprintf("%d", r.ListLength),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

func kernOp(intp *Intp, op *Op) (error, bool) {
	t := intp.font.Tables()
	if !t.HasKerning() {
		pterm.Println("font has no kerning")
		return nil, false
	}
	arg, ok := op.hasArg()
	if !ok {
		pterm.Printf("font has %d kerning pairs\n", t.KernPairCount())
		return nil, false
	}
	left, right, err := parseRunePair(arg)
	if err != nil {
		return err, false
	}
	l, okl := intp.font.GlyphID(left)
	r, okr := intp.font.GlyphID(right)
	if !okl || !okr {
		return fmt.Errorf("pair %q not covered by font", arg), false
	}
	kv := t.Kern(l, r)
	pterm.Printf("kern(%d, %d) = %d => %.2f px\n", l, r, kv, float64(intp.font.Kern(left, right))/16)
	return nil, false
}

func cacheOp(intp *Intp, op *Op) (error, bool) {
	switch op.arg {
	case "":
	case "rw":
		intp.font.SetCacheMode(d2font.CacheReadWrite)
	case "ro":
		intp.font.SetCacheMode(d2font.CacheReadOnly)
	case "off":
		intp.font.SetCacheMode(d2font.CacheDisabled)
	default:
		return fmt.Errorf("cache mode must be one of rw, ro, off: %q", op.arg), false
	}
	hits, misses := intp.font.CacheStats()
	pterm.Printf("cache is %s, %d hits, %d misses\n", intp.font.CacheMode(), hits, misses)
	return nil, false
}

func warningsOp(intp *Intp, op *Op) (error, bool) {
	ws := intp.font.Tables().Warnings()
	if len(ws) == 0 {
		pterm.Println("no warnings")
	}
	for _, w := range ws {
		pterm.Warning.Println(w.String())
	}
	return nil, false
}

// parseRune accepts a single character, U+XXXX or 0xXX notation, or a
// decimal number.
func parseRune(s string) (rune, error) {
	if utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		return r, nil
	}
	var n uint64
	var err error
	switch {
	case strings.HasPrefix(s, "U+"), strings.HasPrefix(s, "u+"):
		n, err = strconv.ParseUint(s[2:], 16, 32)
	case s == "tab":
		return '\t', nil
	case s == "space":
		return ' ', nil
	default:
		n, err = strconv.ParseUint(s, 0, 32)
	}
	if err != nil {
		return 0, fmt.Errorf("not a code-point: %q", s)
	}
	return rune(n), nil
}

// parseRunePair accepts two characters, or two code-points separated by ','
// or '/'.
func parseRunePair(s string) (rune, rune, error) {
	if utf8.RuneCountInString(s) == 2 {
		l, n := utf8.DecodeRuneInString(s)
		r, _ := utf8.DecodeRuneInString(s[n:])
		return l, r, nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '/' })
	if len(parts) != 2 {
		return 0, 0, errors.New("expected a pair of code-points, e.g. AV or U+0041/U+0056")
	}
	l, err := parseRune(parts[0])
	if err != nil {
		return 0, 0, err
	}
	r, err := parseRune(parts[1])
	return l, r, err
}
