// Package pattern provides the anchored pattern-match primitive used by the
// syntax highlighter.
//
// Lines are matched as a byte-per-rune Text so that match offsets and
// lengths are byte offsets into the displayed line, whatever encoding the
// line uses.
package pattern

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultTimeout bounds a single match attempt.
const DefaultTimeout = 100 * time.Millisecond

// ErrEmptyPattern is returned when compiling an empty expression.
var ErrEmptyPattern = errors.New("empty pattern")

// Text is a line viewed one rune per byte.
type Text []rune

// TextOf returns the Text view of b.
func TextOf(b []byte) Text {
	t := make(Text, len(b))
	for i, c := range b {
		t[i] = rune(c)
	}
	return t
}

// Set replaces the byte at i.
func (t Text) Set(i int, b byte) {
	t[i] = rune(b)
}

// Matcher is an anchored matcher. MatchAt returns the length of the match
// beginning exactly at pos, or -1.
type Matcher interface {
	MatchAt(t Text, pos int) int
}

// Pattern is a compiled regular expression anchored at the match position.
type Pattern struct {
	expr string
	re   *regexp2.Regexp
}

// Compile compiles expr. The expression is anchored so that it only matches
// at the position passed to MatchAt.
func Compile(expr string, ignoreCase bool) (*Pattern, error) {
	if expr == "" {
		return nil, ErrEmptyPattern
	}
	opts := regexp2.None
	if ignoreCase {
		opts |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(`\G(?:`+expr+`)`, opts)
	if err != nil {
		return nil, fmt.Errorf("compiling %q: %w", expr, err)
	}
	re.MatchTimeout = DefaultTimeout
	return &Pattern{expr: expr, re: re}, nil
}

// MustCompile is like Compile but panics on error. Used for built-in
// patterns only.
func MustCompile(expr string, ignoreCase bool) *Pattern {
	p, err := Compile(expr, ignoreCase)
	if err != nil {
		panic(err)
	}
	return p
}

// Quote escapes every metacharacter in s.
func Quote(s string) string {
	return regexp2.Escape(s)
}

// String returns the source expression.
func (p *Pattern) String() string {
	return p.expr
}

// MatchAt implements Matcher. Timeouts and engine errors count as no match.
func (p *Pattern) MatchAt(t Text, pos int) int {
	if p == nil || pos < 0 || pos >= len(t) {
		return -1
	}
	m, err := p.re.FindRunesMatchStartingAt(t, pos)
	if err != nil || m == nil || m.Index != pos {
		return -1
	}
	return m.Length
}

// Literal matches a fixed byte sequence.
type Literal struct {
	lit        []byte
	ignoreCase bool
}

// NewLiteral returns a Literal matcher for lit.
func NewLiteral(lit []byte, ignoreCase bool) *Literal {
	return &Literal{lit: bytes.Clone(lit), ignoreCase: ignoreCase}
}

// MatchAt implements Matcher.
func (l *Literal) MatchAt(t Text, pos int) int {
	if len(l.lit) == 0 || pos < 0 || pos+len(l.lit) > len(t) {
		return -1
	}
	for i, c := range l.lit {
		r := t[pos+i]
		if r == rune(c) {
			continue
		}
		if l.ignoreCase && r < 0x80 && lower(byte(r)) == lower(c) {
			continue
		}
		return -1
	}
	return len(l.lit)
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
