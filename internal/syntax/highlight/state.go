package highlight

import (
	"github.com/dshills/parsedit/internal/renderer/core"
	"github.com/dshills/parsedit/internal/syntax/parser"
	"github.com/dshills/parsedit/internal/syntax/pattern"
)

// lineState is the scratch state of one pipeline invocation. Claimed bytes
// are blanked in work and flagged in claimed.
type lineState struct {
	line   *DisplayLine
	def    *parser.Definition
	colors ColorResolver

	work    pattern.Text
	claimed []bool

	// comments are the paired comment spans on this row.
	comments []CommentSpan

	// remaining counts unclaimed bytes that are not blank in the line.
	// Hiding a byte with blankOut does not change it.
	remaining  int
	classified int

	trace func(pos int, class SyntaxClass)
}

func isBlank(b rune) bool {
	return b == ' ' || b == '\t'
}

func newLineState(line *DisplayLine, def *parser.Definition, colors ColorResolver) *lineState {
	s := &lineState{
		line:    line,
		def:     def,
		colors:  colors,
		work:    pattern.TextOf(line.Content),
		claimed: make([]bool, len(line.Content)),
	}
	for _, r := range s.work {
		if !isBlank(r) {
			s.remaining++
		}
	}
	return s
}

func (s *lineState) len() int {
	return len(s.work)
}

// done reports whether nothing is left to classify.
func (s *lineState) done() bool {
	return s.remaining == 0
}

// free reports whether pos is unclaimed and not blank.
func (s *lineState) free(pos int) bool {
	return pos >= 0 && pos < len(s.work) && !s.claimed[pos] && !isBlank(s.work[pos])
}

// color returns the style for a class, honoring an alternate override and
// the line's cursor role.
func (s *lineState) color(class SyntaxClass, alt parser.Alternate) core.Style {
	c := s.colors.DefaultColor(RoleOf(class))
	if alt.IsSet() {
		if a, ok := s.colors.AlternateColor(byte(alt)); ok {
			c = a
		}
	}
	if role := s.line.BaseRole(); role != RoleText {
		return s.colors.MergeCursorColor(s.colors.DefaultColor(role), c)
	}
	return c
}

// claim classifies every unclaimed byte in [from, to).
func (s *lineState) claim(from, to int, class SyntaxClass, style core.Style) {
	from, to = s.clip(from, to)
	for i := from; i < to; i++ {
		if s.claimed[i] {
			continue
		}
		s.take(i)
		s.line.Classes[i] = class
		s.line.Colors[i] = style
		s.classified++
		if s.trace != nil {
			s.trace(i, class)
		}
	}
}

// blankOut hides [from, to) from later pattern matches without classifying
// it. The bytes stay unclaimed, so a later range claim may still class them.
func (s *lineState) blankOut(from, to int) {
	from, to = s.clip(from, to)
	for i := from; i < to; i++ {
		s.blank(i)
	}
}

func (s *lineState) take(i int) {
	s.claimed[i] = true
	if !isBlank(rune(s.line.Content[i])) {
		s.remaining--
	}
	s.blank(i)
}

func (s *lineState) blank(i int) {
	if !isBlank(s.work[i]) {
		s.work.Set(i, ' ')
	}
}

func (s *lineState) clip(from, to int) (int, int) {
	if from < 0 {
		from = 0
	}
	if to > len(s.work) {
		to = len(s.work)
	}
	return from, to
}

// matchDelim reports whether delim occurs in work at pos.
func (s *lineState) matchDelim(pos int, delim []byte) bool {
	return matchText(s.work, pos, delim, !s.def.CaseSensitive)
}

// findDelim returns the leftmost position at or after from where delim
// occurs in work, or -1.
func (s *lineState) findDelim(from int, delim []byte) int {
	if len(delim) == 0 {
		return -1
	}
	for i := from; i+len(delim) <= len(s.work); i++ {
		if s.matchDelim(i, delim) {
			return i
		}
	}
	return -1
}

// firstNonBlank returns the first non-blank column of the original content,
// or -1.
func (s *lineState) firstNonBlank() int {
	for i, b := range s.line.Content {
		if b != ' ' && b != '\t' {
			return i
		}
	}
	return -1
}

// locate finds delim according to loc.
func (s *lineState) locate(delim []byte, loc parser.Location) int {
	switch loc.Kind {
	case parser.FixedColumn:
		if s.matchDelim(loc.Column, delim) {
			return loc.Column
		}
	case parser.FirstNonBlank:
		if pos := s.firstNonBlank(); pos >= 0 && s.matchDelim(pos, delim) {
			return pos
		}
	default:
		return s.findDelim(0, delim)
	}
	return -1
}

// matchText compares delim with t at pos.
func matchText(t pattern.Text, pos int, delim []byte, fold bool) bool {
	if len(delim) == 0 || pos < 0 || pos+len(delim) > len(t) {
		return false
	}
	for i, c := range delim {
		if !sameByte(byte(t[pos+i]), c, fold) {
			return false
		}
	}
	return true
}

// matchBytes compares delim with b at pos.
func matchBytes(b []byte, pos int, delim []byte, fold bool) bool {
	if len(delim) == 0 || pos < 0 || pos+len(delim) > len(b) {
		return false
	}
	for i, c := range delim {
		if !sameByte(b[pos+i], c, fold) {
			return false
		}
	}
	return true
}

func sameByte(a, b byte, fold bool) bool {
	return a == b || (fold && lower(a) == lower(b))
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
