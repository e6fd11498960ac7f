package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dshills/parsedit/internal/syntax/pattern"
)

// Default identifier classes used when no :identifier section is given.
const (
	defaultIdentFirst = `[A-Za-z_]`
	defaultIdentRest  = `[A-Za-z0-9_]`
)

type sectionFunc func(c *compiler, toks []string) error

var sections = map[string]sectionFunc{
	"case":        (*compiler).parseCase,
	"option":      (*compiler).parseOption,
	"number":      (*compiler).parseNumber,
	"identifier":  (*compiler).parseIdentifier,
	"string":      (*compiler).parseString,
	"comment":     (*compiler).parseComment,
	"header":      (*compiler).parseHeader,
	"label":       (*compiler).parseLabel,
	"match":       (*compiler).parseMatch,
	"keyword":     (*compiler).parseKeyword,
	"function":    (*compiler).parseFunction,
	"postcompare": (*compiler).parsePostcompare,
	"column":      (*compiler).parseColumn,
	"markup":      (*compiler).parseMarkup,
	"directory":   (*compiler).parseDirectory,
}

// bracketPairs are the pairs accepted by :match.
var bracketPairs = map[string]bool{"()": true, "[]": true, "{}": true}

// pendingPattern is a postcompare class compiled once :case is known.
type pendingPattern struct {
	index  int
	line   int
	source string
}

type compiler struct {
	def     *Definition
	section string
	line    int

	identTokens []string
	identLine   int
	pending     []pendingPattern
}

// Compile reads a definition source and compiles it. name identifies the
// definition and filename is used in diagnostics only.
func Compile(name, filename string, r io.Reader) (*Definition, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading parser %s: %w", name, err)
	}
	return CompileLines(name, filename, lines)
}

// CompileLines compiles a definition from its source lines. Compilation
// stops at the first error; no partial definition is returned.
func CompileLines(name, filename string, lines []string) (*Definition, error) {
	c := &compiler{
		def: &Definition{
			Name:          name,
			Filename:      filename,
			CaseSensitive: true,
		},
	}
	for i, raw := range lines {
		c.line = i + 1
		if err := c.parseLine(raw); err != nil {
			return nil, c.wrap(err)
		}
	}
	if err := c.finish(); err != nil {
		return nil, err
	}
	return c.def, nil
}

func (c *compiler) wrap(err error) error {
	ce := &CompileError{Name: c.def.Name, File: c.def.Filename, Line: c.line, Err: err}
	var te *tokenError
	if errors.As(err, &te) {
		ce.Token = te.token
		ce.Err = te.err
	}
	return ce
}

func (c *compiler) parseLine(raw string) error {
	line := strings.TrimSpace(raw)
	if line == "" || line[0] == '*' {
		return nil
	}
	toks := strings.Fields(line)
	if line[0] == ':' {
		name := strings.ToLower(toks[0][1:])
		if _, ok := sections[name]; !ok {
			return errToken(ErrUnknownSection, toks[0])
		}
		if len(toks) > 1 {
			return errToken(ErrTokenCount, toks[1])
		}
		c.section = name
		return nil
	}
	if c.section == "" {
		return errToken(ErrNoSection, toks[0])
	}
	return sections[c.section](c, toks)
}

// finish compiles the patterns whose form depends on the whole source.
func (c *compiler) finish() error {
	d := c.def
	ignoreCase := !d.CaseSensitive

	first, rest, last := defaultIdentFirst, defaultIdentRest, ""
	if len(c.identTokens) > 0 {
		first, rest = c.identTokens[0], c.identTokens[1]
		if len(c.identTokens) == 3 {
			last = c.identTokens[2]
		}
	}
	ident := first + rest + "*"
	if last != "" {
		ident += last + "?"
	}
	p, err := pattern.Compile(ident, ignoreCase)
	if err != nil {
		return c.patternError(c.identLine, ident, err)
	}
	d.Identifier = p

	if d.FunctionMarker != 0 {
		fn := "(?:" + ident + ")"
		if d.FunctionBlank {
			fn += `[ \t]*`
		}
		fn += pattern.Quote(string(d.FunctionMarker))
		p, err := pattern.Compile(fn, ignoreCase)
		if err != nil {
			return c.patternError(c.identLine, fn, err)
		}
		d.Function = p
	}

	if d.NumberGrammar != NumberNone {
		d.Number = pattern.MustCompile(numberPatterns[d.NumberGrammar], false)
	}

	for i := range d.Postcompares {
		if pc := &d.Postcompares[i]; pc.Literal {
			pc.Matcher = pattern.NewLiteral([]byte(pc.Source), ignoreCase)
		}
	}
	for _, pp := range c.pending {
		p, err := pattern.Compile(pp.source, ignoreCase)
		if err != nil {
			return c.patternError(pp.line, pp.source, err)
		}
		d.Postcompares[pp.index].Matcher = p
	}

	if d.Preprocessor != 0 {
		for _, k := range d.Keywords {
			if len(k.Text) < 2 || k.Text[0] != d.Preprocessor {
				continue
			}
			if n := len(k.Text) - 1; d.minPreprocessor == 0 || n < d.minPreprocessor {
				d.minPreprocessor = n
			}
		}
	}
	return nil
}

func (c *compiler) patternError(line int, source string, err error) error {
	return &CompileError{
		Name:  c.def.Name,
		File:  c.def.Filename,
		Line:  line,
		Token: source,
		Err:   fmt.Errorf("%w: %v", ErrBadPattern, err),
	}
}

// splitAlternate removes a trailing `alternate <c>` pair.
func splitAlternate(toks []string) ([]string, Alternate, error) {
	n := len(toks)
	if n < 3 || !strings.EqualFold(toks[n-2], "alternate") {
		return toks, 0, nil
	}
	tok := toks[n-1]
	if len(tok) != 1 || !isAlnum(tok[0]) {
		return nil, 0, errToken(ErrUnknownOption, tok)
	}
	return toks[:n-2], Alternate(tok[0]), nil
}

func isAlnum(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func expectTokens(toks []string, lo, hi int) error {
	if len(toks) < lo {
		last := ""
		if len(toks) > 0 {
			last = toks[len(toks)-1]
		}
		return errToken(ErrTokenCount, last)
	}
	if len(toks) > hi {
		return errToken(ErrTokenCount, toks[hi])
	}
	return nil
}

func delimiter(tok string) ([]byte, error) {
	if len(tok) > MaxDelimiterLength {
		return nil, errToken(ErrDelimiterTooLong, tok)
	}
	return []byte(tok), nil
}

func singleChar(tok string) (byte, error) {
	if len(tok) != 1 {
		return 0, errToken(ErrUnknownOption, tok)
	}
	return tok[0], nil
}

// column parses a 1-based DSL column into a 0-based index.
func column(tok string) (int, error) {
	n, err := strconv.Atoi(tok)
	if err != nil || n < 1 {
		return 0, errToken(ErrInvalidInteger, tok)
	}
	return n - 1, nil
}

// parseLocation reads `any`, `firstnonblank` or `column <n>` and requires
// nothing to follow.
func parseLocation(toks []string) (Location, error) {
	if len(toks) == 0 {
		return Location{}, errToken(ErrTokenCount, "")
	}
	switch strings.ToLower(toks[0]) {
	case "any":
		if err := expectTokens(toks, 1, 1); err != nil {
			return Location{}, err
		}
		return Location{Kind: AnyColumn}, nil
	case "firstnonblank":
		if err := expectTokens(toks, 1, 1); err != nil {
			return Location{}, err
		}
		return Location{Kind: FirstNonBlank}, nil
	case "column":
		if err := expectTokens(toks, 2, 2); err != nil {
			return Location{}, err
		}
		col, err := column(toks[1])
		if err != nil {
			return Location{}, err
		}
		return Location{Kind: FixedColumn, Column: col}, nil
	}
	return Location{}, errToken(ErrUnknownOption, toks[0])
}

func (c *compiler) parseCase(toks []string) error {
	if err := expectTokens(toks, 1, 1); err != nil {
		return err
	}
	switch strings.ToLower(toks[0]) {
	case "respect":
		c.def.CaseSensitive = true
	case "ignore":
		c.def.CaseSensitive = false
	default:
		return errToken(ErrUnknownOption, toks[0])
	}
	return nil
}

func (c *compiler) parseOption(toks []string) error {
	d := c.def
	switch strings.ToLower(toks[0]) {
	case "rexx":
		if err := expectTokens(toks, 1, 1); err != nil {
			return err
		}
		d.RexxCall = true
	case "preprocessor":
		if err := expectTokens(toks, 2, 2); err != nil {
			return err
		}
		ch, err := singleChar(toks[1])
		if err != nil {
			return err
		}
		d.Preprocessor = ch
	case "function":
		if err := expectTokens(toks, 2, 3); err != nil {
			return err
		}
		ch, err := singleChar(toks[1])
		if err != nil {
			return err
		}
		d.FunctionMarker = ch
		if len(toks) == 3 {
			if !strings.EqualFold(toks[2], "blank") {
				return errToken(ErrUnknownOption, toks[2])
			}
			d.FunctionBlank = true
		}
	case "unknownfunction":
		toks, alt, err := splitAlternate(toks)
		if err != nil {
			return err
		}
		if err := expectTokens(toks, 1, 1); err != nil {
			return err
		}
		d.UnknownFunction = true
		d.UnknownFunctionAlt = alt
	default:
		return errToken(ErrUnknownOption, toks[0])
	}
	return nil
}

func (c *compiler) parseNumber(toks []string) error {
	if err := expectTokens(toks, 1, 1); err != nil {
		return err
	}
	switch strings.ToLower(toks[0]) {
	case "c":
		c.def.NumberGrammar = NumberC
	case "rexx":
		c.def.NumberGrammar = NumberRexx
	case "cobol":
		c.def.NumberGrammar = NumberCobol
	default:
		return errToken(ErrUnknownOption, toks[0])
	}
	return nil
}

func (c *compiler) parseIdentifier(toks []string) error {
	if err := expectTokens(toks, 2, 3); err != nil {
		return err
	}
	c.identTokens = toks
	c.identLine = c.line
	return nil
}

func (c *compiler) parseString(toks []string) error {
	s := &c.def.Strings
	escape := func(toks []string, at int) (bool, error) {
		if len(toks) <= at {
			return false, nil
		}
		if !strings.EqualFold(toks[at], "backslash") {
			return false, errToken(ErrUnknownOption, toks[at])
		}
		return true, nil
	}
	var err error
	switch strings.ToLower(toks[0]) {
	case "single":
		if err = expectTokens(toks, 1, 2); err != nil {
			return err
		}
		s.Single = true
		s.SingleEscape, err = escape(toks, 1)
	case "double":
		if err = expectTokens(toks, 1, 2); err != nil {
			return err
		}
		s.Double = true
		s.DoubleEscape, err = escape(toks, 1)
	case "delimiter":
		if err = expectTokens(toks, 2, 3); err != nil {
			return err
		}
		if s.Delimiter, err = singleChar(toks[1]); err != nil {
			return err
		}
		s.DelimiterEscape, err = escape(toks, 2)
	default:
		return errToken(ErrUnknownOption, toks[0])
	}
	return err
}

func (c *compiler) parseComment(toks []string) error {
	switch strings.ToLower(toks[0]) {
	case "line":
		if err := expectTokens(toks, 3, 4); err != nil {
			return err
		}
		delim, err := delimiter(toks[1])
		if err != nil {
			return err
		}
		loc, err := parseLocation(toks[2:])
		if err != nil {
			return err
		}
		c.def.LineComments = append(c.def.LineComments, LineComment{Delim: delim, Loc: loc})
	case "paired":
		if err := expectTokens(toks, 3, 4); err != nil {
			return err
		}
		start, err := delimiter(toks[1])
		if err != nil {
			return err
		}
		end, err := delimiter(toks[2])
		if err != nil {
			return err
		}
		pc := PairedComment{Start: start, End: end}
		if len(toks) == 4 {
			switch strings.ToLower(toks[3]) {
			case "nest":
				pc.Nested = true
			case "nonest":
			default:
				return errToken(ErrUnknownOption, toks[3])
			}
		}
		c.def.PairedComments = append(c.def.PairedComments, pc)
	default:
		return errToken(ErrUnknownOption, toks[0])
	}
	return nil
}

func (c *compiler) parseHeader(toks []string) error {
	toks, alt, err := splitAlternate(toks)
	if err != nil {
		return err
	}
	if err := expectTokens(toks, 3, 4); err != nil {
		return err
	}
	if !strings.EqualFold(toks[0], "line") {
		return errToken(ErrUnknownOption, toks[0])
	}
	delim, err := delimiter(toks[1])
	if err != nil {
		return err
	}
	loc, err := parseLocation(toks[2:])
	if err != nil {
		return err
	}
	c.def.Headers = append(c.def.Headers, Header{Delim: delim, Loc: loc, Alt: alt})
	return nil
}

func (c *compiler) parseLabel(toks []string) error {
	toks, alt, err := splitAlternate(toks)
	if err != nil {
		return err
	}
	if err := expectTokens(toks, 2, 4); err != nil {
		return err
	}
	switch strings.ToLower(toks[0]) {
	case "column":
		if err := expectTokens(toks, 2, 2); err != nil {
			return err
		}
		col, err := column(toks[1])
		if err != nil {
			return err
		}
		c.def.Label = LabelRule{Kind: LabelColumn, Column: col, Alt: alt}
	case "delimiter":
		if err := expectTokens(toks, 3, 4); err != nil {
			return err
		}
		delim, err := delimiter(toks[1])
		if err != nil {
			return err
		}
		loc, err := parseLocation(toks[2:])
		if err != nil {
			return err
		}
		c.def.Label = LabelRule{Kind: LabelDelimiter, Delim: delim, Loc: loc, Alt: alt}
	default:
		return errToken(ErrUnknownOption, toks[0])
	}
	return nil
}

func (c *compiler) parseMatch(toks []string) error {
	if err := expectTokens(toks, 2, 2); err != nil {
		return err
	}
	pair := toks[0] + toks[1]
	if !bracketPairs[pair] {
		return errToken(ErrUnknownOption, pair)
	}
	for i := 0; i < 2; i++ {
		if !containsByte(c.def.Brackets, pair[i]) {
			c.def.Brackets = append(c.def.Brackets, pair[i])
		}
	}
	return nil
}

func containsByte(b []byte, c byte) bool {
	for _, x := range b {
		if x == c {
			return true
		}
	}
	return false
}

func (c *compiler) parseKeyword(toks []string) error {
	toks, alt, err := splitAlternate(toks)
	if err != nil {
		return err
	}
	if err := expectTokens(toks, 1, 1); err != nil {
		return err
	}
	c.def.Keywords = append(c.def.Keywords, Keyword{Text: []byte(toks[0]), Alt: alt})
	return nil
}

func (c *compiler) parseFunction(toks []string) error {
	toks, alt, err := splitAlternate(toks)
	if err != nil {
		return err
	}
	if err := expectTokens(toks, 1, 1); err != nil {
		return err
	}
	c.def.Functions = append(c.def.Functions, Function{Text: []byte(toks[0]), Alt: alt})
	return nil
}

func (c *compiler) parsePostcompare(toks []string) error {
	toks, alt, err := splitAlternate(toks)
	if err != nil {
		return err
	}
	if err := expectTokens(toks, 2, 2); err != nil {
		return err
	}
	d := c.def
	switch strings.ToLower(toks[0]) {
	case "text":
		d.Postcompares = append(d.Postcompares, Postcompare{
			Source:  toks[1],
			Literal: true,
			Alt:     alt,
		})
	case "class":
		c.pending = append(c.pending, pendingPattern{index: len(d.Postcompares), line: c.line, source: toks[1]})
		d.Postcompares = append(d.Postcompares, Postcompare{Source: toks[1], Alt: alt})
	default:
		return errToken(ErrUnknownOption, toks[0])
	}
	return nil
}

func (c *compiler) parseColumn(toks []string) error {
	toks, alt, err := splitAlternate(toks)
	if err != nil {
		return err
	}
	if err := expectTokens(toks, 3, 3); err != nil {
		return err
	}
	if !strings.EqualFold(toks[0], "exclude") {
		return errToken(ErrUnknownOption, toks[0])
	}
	first, err := column(toks[1])
	if err != nil {
		return err
	}
	last, err := column(toks[2])
	if err != nil {
		return err
	}
	if last < first {
		return errToken(ErrInvalidInteger, toks[2])
	}
	c.def.Exclusions = append(c.def.Exclusions, ColumnExclusion{First: first, Last: last, Alt: alt})
	return nil
}

func (c *compiler) parseMarkup(toks []string) error {
	if err := expectTokens(toks, 3, 3); err != nil {
		return err
	}
	start, err := delimiter(toks[1])
	if err != nil {
		return err
	}
	end, err := delimiter(toks[2])
	if err != nil {
		return err
	}
	pair := &DelimPair{Start: start, End: end}
	switch strings.ToLower(toks[0]) {
	case "tag":
		c.def.MarkupTag = pair
	case "reference":
		c.def.MarkupReference = pair
	default:
		return errToken(ErrUnknownOption, toks[0])
	}
	return nil
}

func (c *compiler) parseDirectory(toks []string) error {
	toks, alt, err := splitAlternate(toks)
	if err != nil {
		return err
	}
	if err := expectTokens(toks, 1, 2); err != nil {
		return err
	}
	dir := &c.def.Directory
	kind := strings.ToLower(toks[0])
	if kind != "extension" {
		if err := expectTokens(toks, 1, 1); err != nil {
			return err
		}
	}
	switch kind {
	case "directory":
		dir.Directory, dir.DirectoryAlt = true, alt
	case "link":
		dir.Link, dir.LinkAlt = true, alt
	case "executable":
		dir.Executable, dir.ExecutableAlt = true, alt
	case "extension":
		if err := expectTokens(toks, 2, 2); err != nil {
			return err
		}
		dir.Extensions = append(dir.Extensions, Extension{Suffix: []byte(toks[1]), Alt: alt})
	default:
		return errToken(ErrUnknownOption, toks[0])
	}
	return nil
}
