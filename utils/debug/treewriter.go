// Package debug has helpers for human readable dumps of internal structures.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// TreeWriter renders indented tree, two spaces per level.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// TextBlock writes labeled text value, quoted so whitespace is visible.
func (tw TreeWriter) TextBlock(depth int, label, value string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// Fields writes name followed by key=value pairs, odd trailing key is
// written alone.
func (tw TreeWriter) Fields(depth int, name string, kv ...any) {
	tw.indent(depth)
	tw.w.WriteString(name)
	for i := 0; i < len(kv); i += 2 {
		tw.w.WriteByte(' ')
		fmt.Fprint(tw.w, kv[i])
		if i+1 < len(kv) {
			tw.w.WriteByte('=')
			fmt.Fprint(tw.w, kv[i+1])
		}
	}
	tw.w.WriteByte('\n')
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
