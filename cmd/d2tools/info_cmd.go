package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/npillmayer/d2font"
	"github.com/npillmayer/d2font/d2"
	"github.com/npillmayer/d2font/storage"
	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
)

func runInfoCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	name := strings.TrimSpace(args["font"].Value)
	if name == "" {
		fatalf("font path is required")
	}
	f := mustLoadFont(name, flags)
	defer f.Unload()
	t := f.Tables()
	h := t.Header

	fmt.Printf("Font: %s (owned=%v)\n", name, f.Owned())
	fmt.Printf("Version: %d, integrity %s\n", h.Version, t.Integrity)
	fmt.Printf("Line height: %d, base line: %d, subpx: %d\n", h.LineHeight, h.BaseLine, h.Subpx)
	fmt.Printf("Underline: position=%d thickness=%d\n", h.UnderlinePosition, h.UnderlineThickness)
	fmt.Printf("Bitmaps: %d bpp, %s\n", t.Descriptor.BPP, t.Descriptor.BitmapFormat)
	fmt.Printf("Glyphs: %d, descriptors: %d\n", t.GlyphCount(), t.DescriptorCount())
	if t.HasKerning() {
		fmt.Printf("Kerning: %d pairs, scale %d\n", t.KernPairCount(), t.Descriptor.KernScale)
	} else {
		fmt.Println("Kerning: none")
	}
	tables := [][]string{{"Tag", "Offset", "Size"}}
	for _, tag := range t.TableTags() {
		offset, size, _ := t.TableExtent(tag)
		tables = append(tables, []string{tag.String(), fmt.Sprintf("%#x", offset), fmt.Sprintf("%d", size)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(tables).Render()
	ranges := [][]string{{"Range", "Type", "First", "Last", "Glyph IDs from"}}
	for i, r := range t.CMapRanges() {
		ranges = append(ranges, []string{
			fmt.Sprintf("%d", i), r.Type.String(),
			fmt.Sprintf("%U", rune(r.RangeStart)),
			fmt.Sprintf("%U", rune(r.RangeStart+uint32(r.RangeLength)-1)),
			fmt.Sprintf("%d", r.GlyphIDStart),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(ranges).Render()
	if mustFlagBool(flags["warnings"], "warnings") {
		for _, w := range t.Warnings() {
			pterm.Warning.Println(w.String())
		}
	}
}

func runCheckCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	paths := splitCSVSpace(args["fonts"].Value)
	if len(paths) == 0 {
		fatalf("at least one font path is required")
	}
	failed := 0
	for _, path := range paths {
		f, err := d2font.LoadFile(path)
		if err != nil {
			failed++
			var ferr *d2.FormatError
			if errors.As(err, &ferr) {
				fmt.Printf("%s: %v (table %s, offset %d)\n", path, ferr.Kind, ferr.Table, ferr.Offset)
			} else {
				fmt.Printf("%s: %v\n", path, err)
			}
			continue
		}
		fmt.Printf("%s: ok, %d glyphs, %d warnings\n", path, f.Tables().GlyphCount(), len(f.Tables().Warnings()))
		_ = f.Unload()
	}
	if failed > 0 {
		os.Exit(2)
	}
}

func runPartitionsCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	path := strings.TrimSpace(args["table"].Value)
	in, err := os.Open(path)
	if err != nil {
		fatalf("cannot open partition table: %v", err)
	}
	defer in.Close()
	parts, err := storage.ParsePartitionTable(in)
	if err != nil {
		fatalf("%v", err)
	}
	data := [][]string{{"Label", "Type", "SubType", "Offset", "Size"}}
	for _, p := range parts {
		data = append(data, []string{p.Label, string(p.Type), p.SubType,
			fmt.Sprintf("%#08x", p.Offset), fmt.Sprintf("%d", p.Size)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
