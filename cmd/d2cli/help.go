package main

import (
	"strings"

	"github.com/pterm/pterm"
)

func helpOp(intp *Intp, op *Op) (error, bool) {
	help(op.arg)
	return nil, false
}

func help(topic string) {
	tracer().Debugf("help %v", topic)
	t := strings.ToLower(topic)
	switch t {
	case "cmap", "cmaps", "charmap":
		pterm.Info.Println("CMAP / character ranges")
		pterm.Println(`
	A character range maps a run of code-points to glyph IDs.
	+--------------+----------------------------------------------+
	| format0-tiny | glyph ID = start ID + (cp - range start)      |
	| format0-full | glyph ID = start ID + offset[cp - start] (u8) |
	| sparse-tiny  | glyph ID = start ID + index in unicode list   |
	| sparse-full  | glyph ID = start ID + offset[index] (u16)     |
	+--------------+----------------------------------------------+
	Ranges are searched in stored order, the first hit wins.
	`)
	case "kern", "kerning":
		pterm.Info.Println("KERN")
		pterm.Println(`
	Kerning pairs (left glyph, right glyph) are sorted and searched
	binary. Values are scaled by the kern scale of the descriptor, in 12.4
	fixed point pixels.
	`)
	default:
		pterm.Info.Println("Commands")
		pterm.Println(`
	header            font-wide metrics
	tables            sub-tables and their extents
	cmap[:i]          character ranges, or details of range i
	glyph:c[:raw]     metrics and bitmap of code-point c (A, U+0041, 0x41, tab)
	kern[:cc]         number of kerning pairs, or kerning of a pair (AV, U+0041/U+0056)
	cache[:rw|ro|off] cache statistics, or switch the cache mode
	warnings          issues found while loading the font
	help[:topic]      help on cmap or kern
	quit              leave
	`)
	}
}
