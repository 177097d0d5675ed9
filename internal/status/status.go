// Package status writes the tool's status lines. Findings (drift,
// unsatisfied dependencies, matches) are normal program output and go
// to stdout; user and data errors go to stderr. Diagnostics that are
// not findings belong to the logger, not here.
package status

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-runewidth"

	"github.com/fulmenhq/fcman/pkg/reconcile"
)

// codeColumn aligns status tags so paths line up in terminal output.
const codeColumn = 14

// Writer emits aligned "CODE path detail" lines.
type Writer struct {
	Out io.Writer
	Err io.Writer
}

// NewWriter returns a writer bound to the process streams.
func NewWriter() *Writer {
	return &Writer{Out: os.Stdout, Err: os.Stderr}
}

// Event implements reconcile.Reporter.
func (w *Writer) Event(e reconcile.Event) {
	w.line(w.Out, string(e.Code), e.Path, e.Detail)
}

// Status implements meta.Reporter and reports general findings.
func (w *Writer) Status(path, code, detail string) {
	w.line(w.Out, code, path, detail)
}

// Error reports a user or data error for a path.
func (w *Writer) Error(path, code, detail string) {
	w.line(w.Err, code, path, detail)
}

func (w *Writer) line(dst io.Writer, code, path, detail string) {
	padded := runewidth.FillRight(code, codeColumn)
	if detail != "" {
		fmt.Fprintf(dst, "%s %s %s\n", padded, path, detail)
		return
	}
	fmt.Fprintf(dst, "%s %s\n", padded, path)
}
