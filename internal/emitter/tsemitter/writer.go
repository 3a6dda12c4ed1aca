package tsemitter

import "strings"

// codeWriter accumulates indented source text. Rendering helpers push lines at
// the current indent level; Block wraps a body between an opening and closing
// line one level deeper.
type codeWriter struct {
	sb     strings.Builder
	level  int
	indent string
}

func newWriter() *codeWriter {
	return &codeWriter{indent: "  "}
}

func (w *codeWriter) String() string { return w.sb.String() }

func (w *codeWriter) Line(s string) {
	for i := 0; i < w.level; i++ {
		w.sb.WriteString(w.indent)
	}
	w.sb.WriteString(s)
	w.sb.WriteByte('\n')
}

func (w *codeWriter) Blank() { w.sb.WriteByte('\n') }

func (w *codeWriter) Indent() { w.level++ }

func (w *codeWriter) Dedent() {
	if w.level > 0 {
		w.level--
	}
}

func (w *codeWriter) Block(opening, closing string, body func(*codeWriter)) {
	w.Line(opening)
	w.Indent()
	body(w)
	w.Dedent()
	w.Line(closing)
}

func (w *codeWriter) BlockBlank(opening, closing string, body func(*codeWriter)) {
	w.Block(opening, closing, body)
	w.Blank()
}

// Raw appends pre-rendered text line by line so nested writers keep the outer
// indent level.
func (w *codeWriter) Raw(s string) {
	for _, line := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		if line == "" {
			w.Blank()
			continue
		}
		w.Line(line)
	}
}
