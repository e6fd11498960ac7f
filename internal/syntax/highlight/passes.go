package highlight

import (
	"github.com/dshills/parsedit/internal/syntax/parser"
)

// Pass identifies one stage of the pipeline.
type Pass uint8

// Passes in execution order.
const (
	PassNone Pass = iota
	PassExclusions
	PassStrings
	PassHeaders
	PassLineComments
	PassDelimiterLabels
	PassFunctions
	PassMarkup
	PassBrackets
	PassPreprocessor
	PassIdentifiers
	PassColumnLabels
	PassDirectory
	PassPostcompare
)

var passNames = [...]string{
	PassNone:            "none",
	PassExclusions:      "exclusions",
	PassStrings:         "strings",
	PassHeaders:         "headers",
	PassLineComments:    "linecomments",
	PassDelimiterLabels: "labels",
	PassFunctions:       "functions",
	PassMarkup:          "markup",
	PassBrackets:        "brackets",
	PassPreprocessor:    "preprocessor",
	PassIdentifiers:     "identifiers",
	PassColumnLabels:    "columnlabels",
	PassDirectory:       "directory",
	PassPostcompare:     "postcompare",
}

// String returns the pass name.
func (p Pass) String() string {
	if int(p) < len(passNames) {
		return passNames[p]
	}
	return "unknown"
}

// exclusions recolors the configured column ranges.
func (s *lineState) exclusions() {
	for _, ex := range s.def.Exclusions {
		s.claim(ex.First, ex.Last+1, Excluded, s.color(Excluded, ex.Alt))
	}
}

// strings claims quoted spans. Bytes already claimed inside a string are
// skipped over but keep their class.
func (s *lineState) strings() {
	n := s.len()
	content := s.line.Content
	for i := 0; i < n; i++ {
		if s.claimed[i] {
			continue
		}
		quote := content[i]
		ok, escape := s.def.Strings.Opens(quote)
		if !ok {
			continue
		}
		start := i
		end := -1
		for j := i + 1; j < n; j++ {
			if s.claimed[j] {
				continue
			}
			if escape && content[j] == '\\' {
				j++
				continue
			}
			if content[j] == quote {
				end = j
				break
			}
		}
		if end < 0 {
			s.claim(start, n, IncompleteString, s.color(IncompleteString, 0))
			return
		}
		s.claim(start, end+1, String, s.color(String, 0))
		i = end
	}
}

// headers claims from the first matching header to end of line.
func (s *lineState) headers() {
	for _, h := range s.def.Headers {
		if pos := s.locate(h.Delim, h.Loc); pos >= 0 {
			s.claim(pos, s.len(), Header, s.color(Header, h.Alt))
			return
		}
	}
}

// lineComments claims from the first matching comment delimiter to end of
// line.
func (s *lineState) lineComments() {
	for _, lc := range s.def.LineComments {
		if pos := s.locate(lc.Delim, lc.Loc); pos >= 0 {
			s.claim(pos, s.len(), Comment, s.color(Comment, 0))
			return
		}
	}
}

// delimiterLabels claims a label ended by the label delimiter.
func (s *lineState) delimiterLabels() {
	l := s.def.Label
	var from int
	switch l.Loc.Kind {
	case parser.AnyColumn:
		pos := s.findDelim(0, l.Delim)
		if pos < 0 {
			return
		}
		s.claim(0, pos+len(l.Delim), Label, s.color(Label, l.Alt))
		return
	case parser.FixedColumn:
		from = l.Loc.Column
	case parser.FirstNonBlank:
		from = s.firstNonBlank()
	}
	if !s.free(from) {
		return
	}
	for i := from; i < s.len(); i++ {
		if s.matchDelim(i, l.Delim) {
			s.claim(from, i+len(l.Delim), Label, s.color(Label, l.Alt))
			return
		}
		if isBlank(s.work[i]) {
			return
		}
	}
}

// functions classifies names followed by the function marker and, with
// the Rexx convention, names following a `call` word.
func (s *lineState) functions() {
	d := s.def
	for i := 0; i < s.len(); {
		if !s.free(i) {
			i++
			continue
		}
		ident := 0
		if d.Identifier != nil {
			ident = d.Identifier.MatchAt(s.work, i)
		}
		name := 0
		if d.Function != nil {
			if m := d.Function.MatchAt(s.work, i); m > 0 {
				name = s.nameLength(i, m)
			}
		}
		if name == 0 && d.RexxCall && ident > 0 {
			if call := s.callWord(i); call >= 0 {
				kw, _ := d.LookupKeyword(s.line.Content[call : call+4])
				s.claim(call, call+4, Keyword, s.color(Keyword, kw.Alt))
				name = ident
			}
		}
		if name == 0 {
			if ident > 0 {
				i += ident
			} else {
				i++
			}
			continue
		}
		word := s.line.Content[i : i+name]
		if f, ok := d.LookupFunction(word); ok {
			s.claim(i, i+name, Function, s.color(Function, f.Alt))
		} else if _, isKeyword := d.LookupKeyword(word); d.UnknownFunction && !isKeyword {
			s.claim(i, i+name, Function, s.color(Function, d.UnknownFunctionAlt))
		}
		i += name
	}
}

// nameLength trims a function pattern match of length m at pos to the part
// before the marker or the first blank.
func (s *lineState) nameLength(pos, m int) int {
	for k := 0; k < m; k++ {
		b := s.work[pos+k]
		if isBlank(b) || byte(b) == s.def.FunctionMarker {
			return k
		}
	}
	return m
}

// callWord returns the start of a `call` word preceding pos, separated from
// it by blanks, or -1. Claimed bytes end the search.
func (s *lineState) callWord(pos int) int {
	row := s.line.Content
	j := pos - 1
	if !s.gap(j) {
		return -1
	}
	for s.gap(j) {
		j--
	}
	end := j + 1
	for j >= 0 && !s.claimed[j] && !isBlank(rune(row[j])) {
		j--
	}
	start := j + 1
	if end-start != 4 || (j >= 0 && !s.gap(j)) {
		return -1
	}
	if !matchBytes(row, start, []byte("call"), !s.def.CaseSensitive) {
		return -1
	}
	return start
}

// gap reports whether pos holds an unclaimed blank.
func (s *lineState) gap(pos int) bool {
	return pos >= 0 && !s.claimed[pos] && isBlank(rune(s.line.Content[pos]))
}

// markup claims spans delimited by pair.
func (s *lineState) markup(pair *parser.DelimPair) {
	for _, sp := range pairSpans(s.work, pair, !s.def.CaseSensitive) {
		s.claim(sp.Start, sp.End, Markup, s.color(Markup, 0))
	}
}

// brackets classifies every configured bracket byte. Nesting is not
// tracked.
func (s *lineState) brackets() {
	style := s.color(Match, 0)
	for i := 0; i < s.len(); i++ {
		if !s.free(i) {
			continue
		}
		for _, b := range s.def.Brackets {
			if byte(s.work[i]) == b {
				s.claim(i, i+1, Match, style)
				break
			}
		}
	}
}

// preprocessor classifies the marker and the word after it when the pair
// is a keyword.
func (s *lineState) preprocessor() {
	d := s.def
	shortest := d.MinPreprocessorWord()
	for i := 0; i < s.len(); i++ {
		if !s.free(i) || byte(s.work[i]) != d.Preprocessor {
			continue
		}
		j := i + 1
		for j < s.len() && isBlank(s.work[j]) && !s.claimed[j] {
			j++
		}
		if !s.free(j) || d.Identifier == nil {
			continue
		}
		m := d.Identifier.MatchAt(s.work, j)
		if m <= 0 || m < shortest {
			continue
		}
		kw, ok := d.LookupPreprocessor(s.line.Content[j : j+m])
		if !ok {
			continue
		}
		style := s.color(Keyword, kw.Alt)
		s.claim(i, i+1, Keyword, style)
		s.claim(j, j+m, Keyword, style)
		i = j + m - 1
	}
}

// identifiers classifies keywords and numbers. Identifiers that are neither
// are blanked so that postcompare rules cannot match inside them.
func (s *lineState) identifiers() {
	d := s.def
	for i := 0; i < s.len(); {
		if !s.free(i) {
			i++
			continue
		}
		m := d.Identifier.MatchAt(s.work, i)
		for m > 0 && isBlank(s.work[i+m-1]) {
			m--
		}
		if m <= 0 {
			if d.Number != nil {
				if nm := d.Number.MatchAt(s.work, i); nm > 0 {
					s.claim(i, i+nm, Number, s.color(Number, 0))
					i += nm
					continue
				}
			}
			i++
			continue
		}
		if kw, ok := d.LookupKeyword(s.line.Content[i : i+m]); ok {
			s.claim(i, i+m, Keyword, s.color(Keyword, kw.Alt))
		} else if nm := s.numberAt(i); nm > 0 {
			s.claim(i, i+nm, Number, s.color(Number, 0))
			if nm > m {
				m = nm
			}
		} else {
			s.blankOut(i, i+m)
		}
		i += m
	}
}

func (s *lineState) numberAt(pos int) int {
	if s.def.Number == nil {
		return -1
	}
	return s.def.Number.MatchAt(s.work, pos)
}

// columnLabels claims from the label column to end of line.
func (s *lineState) columnLabels() {
	l := s.def.Label
	if l.Column >= s.len() || s.claimed[l.Column] || isBlank(rune(s.line.Content[l.Column])) {
		return
	}
	s.claim(l.Column, s.len(), Label, s.color(Label, l.Alt))
}

// directory classifies a synthetic directory listing row by its mode
// string or its name's extension.
func (s *lineState) directory() {
	dir := s.def.Directory
	row := s.line.Content
	class, alt := None, parser.Alternate(0)
	switch {
	case dir.Directory && row[0] == 'd':
		class, alt = Directory, dir.DirectoryAlt
	case dir.Link && row[0] == 'l':
		class, alt = Link, dir.LinkAlt
	case dir.Executable && isExecutable(row):
		class, alt = Executable, dir.ExecutableAlt
	default:
		for _, ext := range dir.Extensions {
			if hasSuffix(row, ext.Suffix, !s.def.CaseSensitive) {
				class, alt = Extension, ext.Alt
				break
			}
		}
	}
	if class == None {
		return
	}
	s.claim(0, len(row), class, s.color(class, alt))
}

var executableOffsets = [...]int{3, 6, 9}

func isExecutable(row []byte) bool {
	for _, off := range executableOffsets {
		if off < len(row) && row[off] == 'x' {
			return true
		}
	}
	return false
}

func hasSuffix(row, suffix []byte, fold bool) bool {
	return matchBytes(row, len(row)-len(suffix), suffix, fold)
}

// postcompare tries every postcompare rule at each unclaimed byte.
func (s *lineState) postcompare() {
	for i := 0; i < s.len(); {
		if !s.free(i) {
			i++
			continue
		}
		m := 0
		for _, pc := range s.def.Postcompares {
			if pc.Matcher == nil {
				continue
			}
			if m = pc.Matcher.MatchAt(s.work, i); m > 0 {
				s.claim(i, i+m, PostCompare, s.color(PostCompare, pc.Alt))
				break
			}
		}
		if m > 0 {
			i += m
		} else {
			i++
		}
	}
}
