package editor

import (
	"github.com/dshills/parsedit/internal/log"
	"github.com/dshills/parsedit/internal/syntax/highlight"
	"github.com/dshills/parsedit/internal/syntax/library"
	"github.com/dshills/parsedit/internal/syntax/parser"
)

// Resolver supplies parser definitions to a view. *library.Library
// implements it.
type Resolver interface {
	// Select picks a definition by file name and first line.
	Select(name, firstLine string) *parser.Definition
	// Definition returns the current definition of that name, or nil.
	Definition(name string) *parser.Definition
}

// ViewOption configures a View.
type ViewOption func(*View)

// WithCurrentLine enables the cursor line color.
func WithCurrentLine(on bool) ViewOption {
	return func(v *View) { v.currentLine = on }
}

// WithLogger sets the view's logger.
func WithLogger(l *log.Logger) ViewOption {
	return func(v *View) { v.logger = l.WithComponent("view") }
}

// View shows a document through the highlighter.
//
// The parser is selected the first time the view is rendered. It is selected
// again only when the first line was empty at the previous render and is not
// any more, so that typing a `#!` line into a new file picks a parser. A
// reloaded definition is picked up on the next render.
type View struct {
	doc         *Document
	resolver    Resolver
	highlighter *highlight.Highlighter
	logger      *log.Logger

	def        *parser.Definition
	pinned     bool
	selected   bool
	firstEmpty bool

	currentLine bool
	zoneFirst   int
	zoneLast    int

	window *highlight.Window
	stats  highlight.Stats
}

// NewView creates a view of doc.
func NewView(doc *Document, resolver Resolver, hl *highlight.Highlighter, opts ...ViewOption) *View {
	v := &View{
		doc:         doc,
		resolver:    resolver,
		highlighter: hl,
		logger:      log.Nop(),
		currentLine: true,
		zoneFirst:   -1,
		zoneLast:    -1,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Document returns the viewed document.
func (v *View) Document() *Document {
	return v.doc
}

// SetParser pins a definition, bypassing automatic selection. A nil def
// turns highlighting off.
func (v *View) SetParser(def *parser.Definition) {
	v.def = def
	v.pinned = true
	v.selected = true
}

// SetZone marks document rows first through last for the cursor zone
// color. A negative first clears the zone.
func (v *View) SetZone(first, last int) {
	v.zoneFirst, v.zoneLast = first, last
}

// Parser returns the definition used by the last render, resolving it if
// the view has not rendered yet.
func (v *View) Parser() *parser.Definition {
	v.resolve()
	return v.def
}

func (v *View) resolve() {
	first := v.doc.FirstLine()
	switch {
	case v.pinned:
	case !v.selected:
		v.def = v.selectParser(first)
		v.selected = true
	case v.firstEmpty && first != "":
		v.def = v.selectParser(first)
	}
	v.firstEmpty = first == ""

	if v.def != nil && v.resolver != nil {
		cur := v.resolver.Definition(v.def.Name)
		if cur != nil || !v.pinned {
			v.def = cur
		}
	}
}

func (v *View) selectParser(first string) *parser.Definition {
	if v.resolver == nil {
		return nil
	}
	if v.doc.DirectoryListing {
		return v.resolver.Definition(library.DirectoryParser)
	}
	def := v.resolver.Select(v.doc.Name, first)
	if def == nil {
		v.logger.Debug("no parser for %s", v.doc.Name)
	}
	return def
}

// Render highlights height rows starting at document row top. cursor is
// the document row holding the cursor, or -1.
func (v *View) Render(top, height, cursor int) *highlight.Window {
	v.resolve()

	count := v.doc.LineCount()
	if top < 0 {
		top = 0
	}
	if top > count {
		top = count
	}
	if height > count-top {
		height = count - top
	}
	if height < 0 {
		height = 0
	}

	lines := make([]*highlight.DisplayLine, height)
	for i := range lines {
		row := top + i
		l := highlight.NewDisplayLine(v.doc.Line(row))
		l.Current = v.currentLine && row == cursor
		l.CursorZone = v.zoneFirst >= 0 && row >= v.zoneFirst && row <= v.zoneLast
		l.DirectoryListing = v.doc.DirectoryListing
		lines[i] = l
	}

	v.stats = v.highlighter.HighlightWindow(lines, v.def)
	v.window = &highlight.Window{Top: top, Lines: lines}
	return v.window
}

// ClassAt returns the class of a byte in the last rendered window.
func (v *View) ClassAt(row, col int) highlight.SyntaxClass {
	return v.window.ClassAt(row, col)
}

// Window returns the last rendered window, or nil.
func (v *View) Window() *highlight.Window {
	return v.window
}

// Stats returns the pipeline counters of the last render.
func (v *View) Stats() highlight.Stats {
	return v.stats
}
