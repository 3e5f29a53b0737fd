/*
Command d2cli is an interactive explorer for D2 bitmap fonts.

	d2cli -font myfont.d2f
	d2cli -partitions partitions.csv -image flash.bin -label font_14

Commands are entered on a prompt, several of them separated by blanks.
Arguments follow a command, separated by colons:

	d2 > header tables
	d2 > glyph:A
	d2 > kern:AV cache:ro
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/d2font"
	"github.com/npillmayer/d2font/storage"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'd2font'
func tracer() tracing.Trace {
	return tracing.Select("d2font")
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": "go",
		"trace.d2font":    "Info",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Font file to load")
	ptable := flag.String("partitions", "", "Partition table (CSV) of a storage image")
	image := flag.String("image", "", "Storage image holding the partitions")
	label := flag.String("label", "", "Label of the font partition")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelError)       // will set the correct level later
	pterm.Info.Println("Welcome to the D2 font CLI") // colored welcome message
	//
	// set up REPL
	repl, err := readline.New("d2 > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &Intp{repl: repl}
	//
	// load font to use
	if *label != "" {
		err = intp.loadOwnedFont(*ptable, *image, *label)
	} else {
		err = intp.loadFont(*fontname)
	}
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(4)
	}
	defer intp.font.Unload()
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	switch *tlevel {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		tracer().Errorf("Invalid trace level: %s", *tlevel)
		os.Exit(5)
	}
	tracer().Infof("Trace level is %s", *tlevel)
	intp.REPL() // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	font *d2font.Font
	repl *readline.Instance
	last rune // last code-point inspected
}

func (intp *Intp) String() string {
	if intp == nil || intp.font == nil {
		return "()"
	}
	s := fmt.Sprintf("( font=%s cache=%s )", intp.font.Name, intp.font.CacheMode())
	if intp.last != 0 {
		s += fmt.Sprintf(" -> %s", describeRune(intp.last))
	}
	return s
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		pterm.Println(intp.String())
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd, err := intp.parseCommand(line)
		if err != nil {
			tracer().Errorf(err.Error())
			continue
		}
		err, quit := intp.execute(cmd)
		if err != nil {
			tracer().Errorf(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

type Op struct {
	code   int
	arg    string
	format string
}

type Command struct {
	count int
	op    [32]Op
}

const NOOP = -1
const (
	// op-code QUIT will not have arguments
	QUIT int = iota
	// op-codes below may have arguments
	HELP
	HEADER
	TABLES
	CMAP
	GLYPH
	KERN
	CACHE
	WARNINGS
)

var opMap = map[string]int{
	"quit":     QUIT,
	"help":     HELP,
	"header":   HEADER,
	"tables":   TABLES,
	"cmap":     CMAP,
	"glyph":    GLYPH,
	"kern":     KERN,
	"cache":    CACHE,
	"warnings": WARNINGS,
}

var opNames = []string{
	"quit",
	"help",
	"header",
	"tables",
	"cmap",
	"glyph",
	"kern",
	"cache",
	"warnings",
}

var command = Command{}

func resetCommand() {
	command.count = 0
	for i := range command.op {
		command.op[i].code = NOOP
		command.op[i].arg = ""
		command.op[i].format = ""
	}
}

func (intp *Intp) parseCommand(line string) (*Command, error) {
	resetCommand()
	steps := strings.Fields(line)
	if len(steps) > len(command.op) {
		return nil, fmt.Errorf("too many commands in one line: %d", len(steps))
	}
	command.count = len(steps)
	for i, step := range steps {
		c := strings.Split(step, ":") // e.g.  "glyph:A" or "cmap:0" or "glyph:U+00C4:raw"
		code, ok := opMap[strings.ToLower(c[0])]
		if !ok {
			code = HELP
		}
		command.op[i].code = code
		if code == QUIT {
			return &command, nil
		}
		command.op[i].arg = getOptArg(c, 1)
		command.op[i].format = getOptArg(c, 2)
		if command.op[i].arg == "" {
			tracer().Debugf("%s", opNames[code])
		} else {
			tracer().Debugf("%s: looking for '%s'", opNames[code], command.op[i].arg)
		}
	}
	return &command, nil
}

var commandFn = map[int]func(*Intp, *Op) (error, bool){
	QUIT:     quitOp,
	HELP:     helpOp,
	HEADER:   headerOp,
	TABLES:   tablesOp,
	CMAP:     cmapOp,
	GLYPH:    glyphOp,
	KERN:     kernOp,
	CACHE:    cacheOp,
	WARNINGS: warningsOp,
}

func (intp *Intp) execute(cmd *Command) (err error, stop bool) {
	tracer().Debugf("cmd = %v", cmd.op[:cmd.count])
	for _, c := range cmd.op {
		if c.code == NOOP {
			break
		}
		f, ok := commandFn[c.code]
		if !ok {
			pterm.Error.Printf("unknown command code: %d\n", c.code)
			return nil, false
		}
		err, stop = f(intp, &c)
		if err != nil {
			pterm.Error.Println(err)
			return
		}
		if stop {
			return
		}
	}
	return
}

func quitOp(intp *Intp, op *Op) (error, bool) {
	pterm.Println("Goodbye!")
	return nil, true
}

// --- Font Loading -----------------------------------------------------

func (intp *Intp) loadFont(fontname string) (err error) {
	if fontname == "" {
		return fmt.Errorf("no font given, use -font or -label")
	}
	if intp.font, err = d2font.LoadFile(fontname); err == nil {
		pterm.Printf("font tables: %v\n", intp.font.Tables().TableTags())
	}
	return
}

func (intp *Intp) loadOwnedFont(ptable, image, label string) error {
	img, err := storage.Open(ptable, image)
	if err != nil {
		return err
	}
	if intp.font, err = d2font.LoadOwned(img, label); err != nil {
		tracer().Errorf("cannot load font from partition %s: %s", label, err)
		return err
	}
	tracer().Infof("loaded font from partition %s", label)
	pterm.Printf("font tables: %v\n", intp.font.Tables().TableTags())
	return nil
}

// ----------------------------------------------------------------------

func getOptArg(s []string, inx int) string {
	if len(s) > inx {
		return s[inx]
	}
	return ""
}

func (op *Op) hasArg() (string, bool) {
	if op.arg == "" {
		return "", false
	}
	return op.arg, true
}
