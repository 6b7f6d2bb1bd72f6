// Package diagfmt renders diagnostics for humans and for tools. Callers sort
// and dedup the bag first; formatting never reorders.
package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"morph/internal/diag"
	"morph/internal/source"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Для каждой диагностики печатает:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// затем строку-контекст с подчёркиванием ^~~~ по Span, затем Notes в том же
// формате. Непозиционные диагностики печатаются без пути и контекста.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		writePretty(w, d, fs, opts)
	}
}

func writePretty(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	sev := severityLabel(d.Severity, opts.Color)

	if !d.Positioned || fs == nil {
		fmt.Fprintf(w, "%s %s: %s\n", sev, d.Code, d.Message)
		return
	}

	f := fs.Get(d.Span.File)
	start, end := fs.Resolve(d.Span)
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n", f.Path, start.Line, start.Col, sev, d.Code, d.Message)
	writeContext(w, f, d.Span, start, end)

	if opts.ShowNotes {
		for _, note := range d.Notes {
			ns, _ := fs.Resolve(note.Span)
			fmt.Fprintf(w, "  note: %s:%d:%d: %s\n", f.Path, ns.Line, ns.Col, note.Msg)
		}
	}
}

// writeContext prints the first line of the span with a caret underline.
// Width math goes through runewidth so the carets line up under wide runes.
func writeContext(w io.Writer, f *source.File, span source.Span, start, end source.LineCol) {
	line := f.GetLine(start.Line)
	if line == "" {
		return
	}
	fmt.Fprintf(w, "  %s\n", line)

	startCol := int(start.Col) - 1
	if startCol > len(line) {
		startCol = len(line)
	}
	pad := runewidth.StringWidth(line[:startCol])

	length := 1
	if end.Line == start.Line && end.Col > start.Col {
		endCol := int(end.Col) - 1
		if endCol > len(line) {
			endCol = len(line)
		}
		length = runewidth.StringWidth(line[startCol:endCol])
		if length < 1 {
			length = 1
		}
	}
	fmt.Fprintf(w, "  %s^%s\n", strings.Repeat(" ", pad), strings.Repeat("~", length-1))
}

func severityLabel(sev diag.Severity, colored bool) string {
	if !colored {
		return sev.String()
	}
	switch sev {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold).Sprint(sev.String())
	case diag.SevWarning:
		return color.New(color.FgYellow).Sprint(sev.String())
	default:
		return color.New(color.FgCyan).Sprint(sev.String())
	}
}
