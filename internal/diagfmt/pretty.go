package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"mirbuild/internal/diag"
	"mirbuild/internal/source"
)

type palette struct {
	sev      map[diag.Severity]*color.Color
	code     *color.Color
	location *color.Color
	gutter   *color.Color
	caret    *color.Color
	note     *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevWarning: mk(color.FgYellow, color.Bold),
			diag.SevError:   mk(color.FgRed, color.Bold),
		},
		code:     mk(color.Bold),
		location: mk(color.FgWhite, color.Bold),
		gutter:   mk(color.FgBlue),
		caret:    mk(color.FgRed, color.Bold),
		note:     mk(color.FgCyan),
	}
}

// Pretty renders bag.Items() for a terminal. Call bag.Sort() first.
// Each diagnostic is printed as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// followed by the source line with a ^~~~ underline of the span and, with
// ShowNotes, its notes in the same layout.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	p := prettyPrinter{w: w, fs: fs, opts: opts, pal: newPalette(opts.Color)}
	for _, d := range bag.Items() {
		p.diagnostic(&d)
	}
	if n := bag.Dropped(); n > 0 {
		p.printf("... %d more diagnostics not shown\n", n)
	}
	return p.err
}

type prettyPrinter struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
	pal  palette
	err  error
}

func (p *prettyPrinter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *prettyPrinter) location(sp source.Span) string {
	path := formatPath(p.fs, sp.File, p.opts.PathMode)
	if path == unknownPath {
		return path
	}
	start, _ := p.fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col)
}

func (p *prettyPrinter) diagnostic(d *diag.Diagnostic) {
	sev := p.pal.sev[d.Severity]
	if sev == nil {
		sev = p.pal.code
	}
	p.printf("%s: %s %s: %s\n",
		p.pal.location.Sprint(p.location(d.Primary)),
		sev.Sprint(d.Severity.String()),
		p.pal.code.Sprint(d.Code.ID()),
		d.Message)
	p.snippet(d.Primary)

	if !p.opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		p.printf("  %s %s: %s\n", p.pal.note.Sprint("note:"), p.location(n.Span), n.Msg)
	}
}

// snippet prints the context lines and the underlined primary line.
func (p *prettyPrinter) snippet(sp source.Span) {
	if !p.fs.Has(sp.File) {
		return
	}
	f := p.fs.Get(sp.File)
	start, end := p.fs.Resolve(sp)

	first := start.Line
	if p.opts.Context > 0 {
		if uint32(p.opts.Context) >= first {
			first = 1
		} else {
			first -= uint32(p.opts.Context)
		}
	}
	width := len(fmt.Sprint(start.Line))
	for ln := first; ln <= start.Line; ln++ {
		text := strings.ReplaceAll(f.GetLine(ln), "\t", "    ")
		p.printf("%s %s\n", p.pal.gutter.Sprintf("%*d |", width, ln), text)
	}

	line := f.GetLine(start.Line)
	col := int(start.Col) - 1
	col = min(col, len(line))
	lead := runewidth.StringWidth(strings.ReplaceAll(line[:col], "\t", "    "))

	// Multi-line spans underline to the end of the first line.
	stop := len(line)
	if end.Line == start.Line {
		stop = min(int(end.Col)-1, len(line))
	}
	span := 1
	if stop > col {
		span = max(runewidth.StringWidth(line[col:stop]), 1)
	}
	underline := "^" + strings.Repeat("~", span-1)
	p.printf("%s %s%s\n", p.pal.gutter.Sprint(strings.Repeat(" ", width)+" |"), strings.Repeat(" ", lead), p.pal.caret.Sprint(underline))
}
