// Package parser holds compiled parser definitions and the compiler for the
// line-oriented definition language.
//
// A Definition is built once by Compile and never modified afterwards, so a
// single instance may be shared by every file of its type.
package parser

import (
	"bytes"

	"github.com/dshills/parsedit/internal/syntax/pattern"
)

// MaxDelimiterLength is the longest delimiter accepted by the compiler.
const MaxDelimiterLength = 10

// Alternate is an optional color override taken from an `alternate <c>`
// token. The zero value means "use the class default".
type Alternate byte

// IsSet reports whether an override was given.
func (a Alternate) IsSet() bool {
	return a != 0
}

// LocationKind selects where on a line a delimiter must appear.
type LocationKind uint8

const (
	// AnyColumn matches the leftmost occurrence.
	AnyColumn LocationKind = iota
	// FixedColumn matches only at Location.Column.
	FixedColumn
	// FirstNonBlank matches only at the first non-blank byte.
	FirstNonBlank
)

// String returns the DSL spelling of the kind.
func (k LocationKind) String() string {
	switch k {
	case AnyColumn:
		return "any"
	case FixedColumn:
		return "column"
	case FirstNonBlank:
		return "firstnonblank"
	default:
		return "unknown"
	}
}

// Location is a LocationRule. Column is 0-based and only meaningful for
// FixedColumn.
type Location struct {
	Kind   LocationKind
	Column int
}

// Keyword is an entry of the keyword table.
type Keyword struct {
	Text []byte
	Alt  Alternate
}

// Function is an entry of the function table.
type Function struct {
	Text []byte
	Alt  Alternate
}

// Header is a header rule; a match colors to end of line.
type Header struct {
	Delim []byte
	Loc   Location
	Alt   Alternate
}

// LineComment is a comment that runs to end of line.
type LineComment struct {
	Delim []byte
	Loc   Location
}

// PairedComment is a block comment that may span lines.
type PairedComment struct {
	Start  []byte
	End    []byte
	Nested bool
}

// StringRule describes which quotes open strings.
type StringRule struct {
	Single       bool
	SingleEscape bool
	Double       bool
	DoubleEscape bool
	// Delimiter is a custom quote byte; 0 when unused.
	Delimiter       byte
	DelimiterEscape bool
}

// Enabled reports whether any string quote is configured.
func (r StringRule) Enabled() bool {
	return r.Single || r.Double || r.Delimiter != 0
}

// Opens reports whether b opens a string and whether a backslash escapes the
// matching close quote.
func (r StringRule) Opens(b byte) (ok, escape bool) {
	switch {
	case r.Single && b == '\'':
		return true, r.SingleEscape
	case r.Double && b == '"':
		return true, r.DoubleEscape
	case r.Delimiter != 0 && b == r.Delimiter:
		return true, r.DelimiterEscape
	}
	return false, false
}

// DelimPair is a start/end delimiter pair used by the markup passes.
type DelimPair struct {
	Start []byte
	End   []byte
}

// LabelKind selects the label rule variant.
type LabelKind uint8

const (
	// LabelNone disables labels.
	LabelNone LabelKind = iota
	// LabelColumn colors from a fixed column to end of line.
	LabelColumn
	// LabelDelimiter colors a word ended by a delimiter.
	LabelDelimiter
)

// LabelRule is either ColumnRule(n) or (delimiter, Location).
type LabelRule struct {
	Kind   LabelKind
	Column int
	Delim  []byte
	Loc    Location
	Alt    Alternate
}

// Postcompare is a rule tried on whatever is left after every other pass.
type Postcompare struct {
	Source  string
	Literal bool
	Matcher pattern.Matcher
	Alt     Alternate
}

// ColumnExclusion recolors columns First..Last (0-based, inclusive).
type ColumnExclusion struct {
	First int
	Last  int
	Alt   Alternate
}

// Extension maps a filename suffix to a color in directory listings.
type Extension struct {
	Suffix []byte
	Alt    Alternate
}

// DirectoryRules apply only to the synthetic directory listing.
type DirectoryRules struct {
	Directory     bool
	DirectoryAlt  Alternate
	Link          bool
	LinkAlt       Alternate
	Executable    bool
	ExecutableAlt Alternate
	Extensions    []Extension
}

// Enabled reports whether any directory rule is configured.
func (d DirectoryRules) Enabled() bool {
	return d.Directory || d.Link || d.Executable || len(d.Extensions) > 0
}

// NumberGrammar selects one of the built-in numeric literal grammars.
type NumberGrammar uint8

const (
	// NumberNone disables number highlighting.
	NumberNone NumberGrammar = iota
	// NumberC accepts C literals: hex, octal, decimal, floats and suffixes.
	NumberC
	// NumberRexx accepts Rexx numbers with optional exponent.
	NumberRexx
	// NumberCobol accepts signed decimals.
	NumberCobol
)

// String returns the DSL spelling of the grammar.
func (g NumberGrammar) String() string {
	switch g {
	case NumberC:
		return "c"
	case NumberRexx:
		return "rexx"
	case NumberCobol:
		return "cobol"
	default:
		return "none"
	}
}

const identifierTail = `(?![A-Za-z0-9_])`

var numberPatterns = map[NumberGrammar]string{
	NumberC:     `(?:0[xX][0-9a-fA-F]+[uUlL]*|(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?[fFlLuU]*)` + identifierTail,
	NumberRexx:  `(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?` + identifierTail,
	NumberCobol: `[+-]?[0-9]+(?:\.[0-9]+)?` + identifierTail,
}

// Definition is a compiled, immutable parser definition.
type Definition struct {
	Name     string
	Filename string

	CaseSensitive bool

	Keywords []Keyword

	Functions          []Function
	FunctionMarker     byte
	FunctionBlank      bool
	RexxCall           bool
	UnknownFunction    bool
	UnknownFunctionAlt Alternate

	Headers        []Header
	Label          LabelRule
	LineComments   []LineComment
	PairedComments []PairedComment
	Strings        StringRule

	MarkupTag       *DelimPair
	MarkupReference *DelimPair

	// Brackets lists the bytes classified by the bracket pass.
	Brackets []byte

	// Preprocessor is the marker byte; 0 when unused.
	Preprocessor byte

	Postcompares []Postcompare
	Exclusions   []ColumnExclusion

	NumberGrammar NumberGrammar
	Identifier    pattern.Matcher
	Number        pattern.Matcher
	Function      pattern.Matcher

	Directory DirectoryRules

	minPreprocessor int
}

// BracketMatch reports whether the bracket pass is enabled.
func (d *Definition) BracketMatch() bool {
	return len(d.Brackets) > 0
}

func (d *Definition) equal(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	if d.CaseSensitive {
		return bytes.Equal(a, b)
	}
	return bytes.EqualFold(a, b)
}

// LookupKeyword finds word in the keyword table. Matching is by exact
// length, never by prefix.
func (d *Definition) LookupKeyword(word []byte) (Keyword, bool) {
	for _, k := range d.Keywords {
		if d.equal(k.Text, word) {
			return k, true
		}
	}
	return Keyword{}, false
}

// LookupFunction finds name in the function table by exact length.
func (d *Definition) LookupFunction(name []byte) (Function, bool) {
	for _, f := range d.Functions {
		if d.equal(f.Text, name) {
			return f, true
		}
	}
	return Function{}, false
}

// LookupPreprocessor finds a keyword made of the preprocessor marker
// followed by word.
func (d *Definition) LookupPreprocessor(word []byte) (Keyword, bool) {
	if d.Preprocessor == 0 {
		return Keyword{}, false
	}
	for _, k := range d.Keywords {
		if len(k.Text) != len(word)+1 || k.Text[0] != d.Preprocessor {
			continue
		}
		if d.equal(k.Text[1:], word) {
			return k, true
		}
	}
	return Keyword{}, false
}

// MinPreprocessorWord is the shortest word following the marker among the
// preprocessor keywords, or 0 if there are none.
func (d *Definition) MinPreprocessorWord() int {
	return d.minPreprocessor
}

// HasStrings reports whether the string pass has anything to do.
func (d *Definition) HasStrings() bool {
	return d.Strings.Enabled()
}
