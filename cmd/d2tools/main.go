// Command d2tools is a collection of diagnostics for D2 bitmap fonts.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/d2font"
	"github.com/npillmayer/d2font/storage"
	"github.com/thatisuday/commando"
)

func main() {
	commando.
		SetExecutableName("d2tools").
		SetVersion("v0.1.0").
		SetDescription("CLI for inspecting, checking and rendering D2 bitmap fonts.")

	commando.
		Register(nil).
		AddFlag("verbose,V", "display additional output", commando.Bool, nil)

	commando.
		Register("info").
		SetDescription("Print header, sub-tables and character ranges of a D2 font.").
		SetShortDescription("font diagnostics").
		AddArgument("font", "D2 font file path, or partition label with --partitions", "").
		AddFlag("partitions,P", "partition table (CSV) of a storage image", commando.String, "-").
		AddFlag("image,I", "storage image holding the partitions", commando.String, "-").
		AddFlag("warnings,w", "print warnings found while loading", commando.Bool, nil).
		SetAction(runInfoCommand)

	commando.
		Register("check").
		SetDescription("Validate D2 fonts, reporting the first error of each.").
		SetShortDescription("validate fonts").
		AddArgument("fonts...", "D2 font file paths", "").
		SetAction(runCheckCommand)

	commando.
		Register("glyph").
		SetDescription("Print glyph metrics for code-points, kerned against their successor.").
		SetShortDescription("glyph metrics").
		AddArgument("font", "D2 font file path, or partition label with --partitions", "").
		AddArgument("text...", "text to measure", "").
		AddFlag("codepoints,c", "codepoints instead of text (comma/space separated, e.g. U+0041,U+0056)", commando.String, "-").
		AddFlag("partitions,P", "partition table (CSV) of a storage image", commando.String, "-").
		AddFlag("image,I", "storage image holding the partitions", commando.String, "-").
		AddFlag("bitmap,b", "print glyph bitmaps as text", commando.Bool, nil).
		SetAction(runGlyphCommand)

	commando.
		Register("render").
		SetDescription("Render a line of text to a PNG image.").
		SetShortDescription("text to image").
		AddArgument("font", "D2 font file path, or partition label with --partitions", "").
		AddArgument("text...", "text to render", "").
		AddFlag("codepoints,c", "codepoints instead of text (comma/space separated, e.g. U+0041,U+0056)", commando.String, "-").
		AddFlag("partitions,P", "partition table (CSV) of a storage image", commando.String, "-").
		AddFlag("image,I", "storage image holding the partitions", commando.String, "-").
		AddFlag("output,o", "output PNG file", commando.String, "d2tools-render.png").
		AddFlag("show-bboxes,B", "draw red bounding-box outlines per rendered glyph", commando.Bool, nil).
		AddFlag("margin,m", "margin around the text in pixels", commando.Int, 4).
		SetAction(runRenderCommand)

	commando.
		Register("partitions").
		SetDescription("List the partitions of a partition table.").
		SetShortDescription("list partitions").
		AddArgument("table", "partition table (CSV)", "").
		SetAction(runPartitionsCommand)

	commando.Parse(nil)
}

// mustLoadFont loads a font from a file or, if a partition table is given,
// from the partition labelled name.
func mustLoadFont(name string, flags map[string]commando.FlagValue) *d2font.Font {
	ptable := flagString(flags["partitions"])
	if ptable == "" {
		f, err := d2font.LoadFile(name)
		if err != nil {
			fatalf("cannot load font %s: %v", name, err)
		}
		return f
	}
	imagePath := flagString(flags["image"])
	if imagePath == "" {
		fatalf("--image is required with --partitions")
	}
	img, err := storage.Open(ptable, imagePath)
	if err != nil {
		fatalf("cannot open storage image: %v", err)
	}
	f, err := d2font.LoadOwned(img, name)
	if err != nil {
		fatalf("cannot load font from partition %s: %v", name, err)
	}
	return f
}

func readInput(textArg commando.ArgValue, cpFlag commando.FlagValue) ([]rune, error) {
	if cps := flagString(cpFlag); cps != "" {
		return parseCodepoints(cps)
	}
	// commando joins variadic arguments with commas
	text := strings.ReplaceAll(textArg.Value, ",", " ")
	if text == "" {
		return nil, errors.New("no text given")
	}
	return []rune(text), nil
}

func parseCodepoints(list string) ([]rune, error) {
	parts := splitCSVSpace(list)
	out := make([]rune, 0, len(parts))
	for _, p := range parts {
		r, err := parseCodepointToken(p)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func parseCodepointToken(token string) (rune, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, errors.New("empty codepoint token")
	}
	hex := token
	switch {
	case strings.HasPrefix(hex, "U+"), strings.HasPrefix(hex, "u+"):
		hex = hex[2:]
	case strings.HasPrefix(hex, "0x"), strings.HasPrefix(hex, "0X"):
		hex = hex[2:]
	}
	u, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid codepoint %q: %w", token, err)
	}
	return rune(u), nil
}

func splitCSVSpace(list string) []string {
	return strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

// flagString returns a string flag's value, with "-" meaning unset.
func flagString(flag commando.FlagValue) string {
	s, err := flag.GetString()
	if err != nil || s == "-" {
		return ""
	}
	return strings.TrimSpace(s)
}

func mustFlagInt(flag commando.FlagValue, name string) int {
	n, err := flag.GetInt()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return n
}

func mustFlagBool(flag commando.FlagValue, name string) bool {
	b, err := flag.GetBool()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return b
}

func fatalf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stderr, "d2tools: "+format+"\n", args...)
	os.Exit(1)
}
