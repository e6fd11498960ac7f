package highlight

import (
	"github.com/dshills/parsedit/internal/syntax/parser"
)

// step is one entry of the pipeline.
type step struct {
	pass    Pass
	enabled func(s *lineState) bool
	run     func(s *lineState)
}

// pipeline lists the passes in the order they run. Paired comment spans
// found by the window scan are applied with the first two passes: spans
// continuing from an earlier row before strings, spans opening on this row
// after them.
var pipeline = []step{
	{
		pass: PassExclusions,
		enabled: func(s *lineState) bool {
			return len(s.def.Exclusions) > 0 || len(s.comments) > 0
		},
		run: func(s *lineState) {
			s.exclusions()
			s.applyComments(false)
		},
	},
	{
		pass: PassStrings,
		enabled: func(s *lineState) bool {
			return s.def.HasStrings() || len(s.comments) > 0
		},
		run: func(s *lineState) {
			s.strings()
			s.applyComments(true)
		},
	},
	{
		pass:    PassHeaders,
		enabled: func(s *lineState) bool { return len(s.def.Headers) > 0 },
		run:     (*lineState).headers,
	},
	{
		pass:    PassLineComments,
		enabled: func(s *lineState) bool { return len(s.def.LineComments) > 0 },
		run:     (*lineState).lineComments,
	},
	{
		pass: PassDelimiterLabels,
		enabled: func(s *lineState) bool {
			return s.def.Label.Kind == parser.LabelDelimiter && len(s.def.Label.Delim) > 0
		},
		run: (*lineState).delimiterLabels,
	},
	{
		pass: PassFunctions,
		enabled: func(s *lineState) bool {
			return s.def.Function != nil || (s.def.RexxCall && s.def.Identifier != nil)
		},
		run: (*lineState).functions,
	},
	{
		pass: PassMarkup,
		enabled: func(s *lineState) bool {
			return s.def.MarkupReference != nil || s.def.MarkupTag != nil
		},
		run: func(s *lineState) {
			s.markup(s.def.MarkupReference)
			s.markup(s.def.MarkupTag)
		},
	},
	{
		pass:    PassBrackets,
		enabled: func(s *lineState) bool { return s.def.BracketMatch() },
		run:     (*lineState).brackets,
	},
	{
		pass:    PassPreprocessor,
		enabled: func(s *lineState) bool { return s.def.Preprocessor != 0 && s.def.MinPreprocessorWord() > 0 },
		run:     (*lineState).preprocessor,
	},
	{
		pass: PassIdentifiers,
		enabled: func(s *lineState) bool {
			return s.def.Identifier != nil && (len(s.def.Keywords) > 0 || s.def.Number != nil)
		},
		run: (*lineState).identifiers,
	},
	{
		pass:    PassColumnLabels,
		enabled: func(s *lineState) bool { return s.def.Label.Kind == parser.LabelColumn },
		run:     (*lineState).columnLabels,
	},
	{
		pass: PassDirectory,
		enabled: func(s *lineState) bool {
			return s.line.DirectoryListing && s.def.Directory.Enabled()
		},
		run: (*lineState).directory,
	},
	{
		pass:    PassPostcompare,
		enabled: func(s *lineState) bool { return len(s.def.Postcompares) > 0 },
		run:     (*lineState).postcompare,
	},
}

// applyComments claims the tracker spans that open on this row or the ones
// that continue onto it.
func (s *lineState) applyComments(opening bool) {
	for _, sp := range s.comments {
		if sp.Opens == opening {
			s.claim(sp.Start, sp.End, Comment, s.color(Comment, 0))
		}
	}
}

// Stats are the counters of one or more pipeline runs.
type Stats struct {
	// Lines is the number of lines highlighted.
	Lines int
	// Passes is the number of passes run over all lines.
	Passes int
	// ShortCircuits counts lines that stopped before the last pass.
	ShortCircuits int
	// Classified is the number of bytes given a class.
	Classified int
	// LastPass is the last pass run on the most recent line.
	LastPass Pass
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Lines += o.Lines
	s.Passes += o.Passes
	s.ShortCircuits += o.ShortCircuits
	s.Classified += o.Classified
	s.LastPass = o.LastPass
}

// Highlighter runs the pipeline. A Highlighter holds no per-line state and
// may be used from several goroutines.
type Highlighter struct {
	colors ColorResolver

	trace func(row, pos int, class SyntaxClass)
}

// New creates a highlighter. A nil resolver leaves every byte in the
// terminal's default style.
func New(colors ColorResolver) *Highlighter {
	if colors == nil {
		colors = plainColors{}
	}
	return &Highlighter{colors: colors}
}

// HighlightLine classifies one line on its own. Paired comments are not
// considered; use HighlightWindow for that.
func (h *Highlighter) HighlightLine(line *DisplayLine, def *parser.Definition) Stats {
	return h.highlight(0, line, def, nil)
}

// HighlightWindow classifies the visible rows of a file, paired comments
// included.
func (h *Highlighter) HighlightWindow(lines []*DisplayLine, def *parser.Definition) Stats {
	var st Stats
	spans := CommentSpans(lines, def)
	for row, line := range lines {
		st.Add(h.highlight(row, line, def, spans[row]))
	}
	return st
}

func (h *Highlighter) highlight(row int, line *DisplayLine, def *parser.Definition, comments []CommentSpan) Stats {
	line.reset(h.colors.DefaultColor(line.BaseRole()))
	st := Stats{Lines: 1}
	if def == nil || len(line.Content) == 0 {
		return st
	}

	s := newLineState(line, def, h.colors)
	s.comments = comments
	if h.trace != nil {
		s.trace = func(pos int, class SyntaxClass) { h.trace(row, pos, class) }
	}

	for i, p := range pipeline {
		if !p.enabled(s) {
			continue
		}
		p.run(s)
		st.Passes++
		st.LastPass = p.pass
		if s.done() {
			if i < len(pipeline)-1 {
				st.ShortCircuits++
			}
			break
		}
	}
	st.Classified = s.classified
	return st
}

// Window is the result of highlighting a range of document rows.
type Window struct {
	// Top is the document row of Lines[0].
	Top   int
	Lines []*DisplayLine
}

// ClassAt returns the class of the byte at a document row and column. Bytes
// outside the window are None.
func (w *Window) ClassAt(row, col int) SyntaxClass {
	if w == nil {
		return None
	}
	r := row - w.Top
	if r < 0 || r >= len(w.Lines) {
		return None
	}
	l := w.Lines[r]
	if col < 0 || col >= len(l.Classes) {
		return None
	}
	return l.Classes[col]
}

// Contains reports whether the document row is inside the window.
func (w *Window) Contains(row int) bool {
	return w != nil && row >= w.Top && row < w.Top+len(w.Lines)
}
