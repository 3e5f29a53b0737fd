package main

import (
	"fmt"
	"strings"

	"github.com/thatisuday/commando"
	"golang.org/x/text/unicode/runenames"
)

func runGlyphCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	name := strings.TrimSpace(args["font"].Value)
	if name == "" {
		fatalf("font path is required")
	}
	input, err := readInput(args["text"], flags["codepoints"])
	if err != nil {
		fatalf("%v", err)
	}
	f := mustLoadFont(name, flags)
	defer f.Unload()
	showBitmap := mustFlagBool(flags["bitmap"], "bitmap")

	total := 0
	for i, r := range input {
		var next rune
		if i+1 < len(input) {
			next = input[i+1]
		}
		m, ok := f.GlyphMetrics(r, next)
		if !ok {
			fmt.Printf("%U %-24s missing\n", r, runenames.Name(r))
			continue
		}
		gid, _ := f.GlyphID(r)
		total += m.Advance
		fmt.Printf("%U %-24s gid=%-5d adv=%-3d box=%dx%d ofs=(%d,%d)\n",
			r, runenames.Name(r), gid, m.Advance, m.BoxW, m.BoxH, m.OffsetX, m.OffsetY)
		if !showBitmap {
			continue
		}
		if img, ok := f.GlyphBitmap(r); ok {
			b := img.Bounds()
			for y := b.Min.Y; y < b.Max.Y; y++ {
				var sb strings.Builder
				for x := b.Min.X; x < b.Max.X; x++ {
					sb.WriteByte(" .:+#"[int(img.AlphaAt(x, y).A)*4/255])
				}
				fmt.Println("    " + sb.String())
			}
		}
	}
	fmt.Printf("total advance: %d px\n", total)
}
