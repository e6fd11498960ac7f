package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dshills/parsedit/internal/syntax/pattern"
)

const cSource = `
* C language
:case
respect

:option
preprocessor #
function ( blank

:number
c

:identifier
[a-zA-Z_] [a-zA-Z0-9_]

:string
single backslash
double backslash

:comment
line // any
paired /* */ nonest

:header
line #! column 1 alternate 3

:match
( )
[ ]

:keyword
if
else
while alternate 5
#define
#include
#if

:function
printf alternate 2
malloc

:postcompare
text := alternate 7
class [+\-*/] alternate 8

:column
exclude 73 80 alternate 1
`

func compileString(t *testing.T, src string) *Definition {
	t.Helper()
	def, err := Compile("c", "c.tld", strings.NewReader(src))
	require.NoError(t, err)
	return def
}

func TestCompileC(t *testing.T) {
	def := compileString(t, cSource)

	assert.Equal(t, "c", def.Name)
	assert.Equal(t, "c.tld", def.Filename)
	assert.True(t, def.CaseSensitive)
	assert.Equal(t, byte('#'), def.Preprocessor)
	assert.Equal(t, byte('('), def.FunctionMarker)
	assert.True(t, def.FunctionBlank)
	assert.Equal(t, NumberC, def.NumberGrammar)
	assert.True(t, def.Strings.Single && def.Strings.SingleEscape)
	assert.True(t, def.Strings.Double && def.Strings.DoubleEscape)

	require.Len(t, def.LineComments, 1)
	assert.Equal(t, []byte("//"), def.LineComments[0].Delim)
	assert.Equal(t, AnyColumn, def.LineComments[0].Loc.Kind)

	require.Len(t, def.PairedComments, 1)
	assert.Equal(t, PairedComment{Start: []byte("/*"), End: []byte("*/")}, def.PairedComments[0])

	require.Len(t, def.Headers, 1)
	assert.Equal(t, Location{Kind: FixedColumn, Column: 0}, def.Headers[0].Loc)
	assert.Equal(t, Alternate('3'), def.Headers[0].Alt)

	assert.Equal(t, []byte("()[]"), def.Brackets)
	assert.True(t, def.BracketMatch())

	require.Len(t, def.Keywords, 6)
	assert.Equal(t, Alternate('5'), def.Keywords[2].Alt)
	assert.Equal(t, 2, def.MinPreprocessorWord())

	require.Len(t, def.Functions, 2)
	require.Len(t, def.Postcompares, 2)
	assert.True(t, def.Postcompares[0].Literal)
	assert.NotNil(t, def.Postcompares[0].Matcher)
	assert.NotNil(t, def.Postcompares[1].Matcher)

	require.Len(t, def.Exclusions, 1)
	assert.Equal(t, ColumnExclusion{First: 72, Last: 79, Alt: '1'}, def.Exclusions[0])

	require.NotNil(t, def.Identifier)
	require.NotNil(t, def.Number)
	require.NotNil(t, def.Function)

	text := pattern.TextOf([]byte("x = printf (a)"))
	assert.Equal(t, 8, def.Function.MatchAt(text, 4))
	assert.Equal(t, 1, def.Identifier.MatchAt(text, 0))
}

func TestCompileDefaults(t *testing.T) {
	def, err := CompileLines("empty", "", nil)
	require.NoError(t, err)

	assert.True(t, def.CaseSensitive)
	assert.NotNil(t, def.Identifier)
	assert.Nil(t, def.Number)
	assert.Nil(t, def.Function)
	assert.False(t, def.HasStrings())
	assert.False(t, def.BracketMatch())
	assert.Equal(t, LabelNone, def.Label.Kind)
}

func TestCompileNumberLastWins(t *testing.T) {
	def, err := CompileLines("n", "", []string{":number", "c", ":number", "cobol"})
	require.NoError(t, err)
	assert.Equal(t, NumberCobol, def.NumberGrammar)
}

func TestCompileLabels(t *testing.T) {
	tests := []struct {
		name string
		line string
		want LabelRule
	}{
		{"column", "column 8", LabelRule{Kind: LabelColumn, Column: 7}},
		{"delimiter any", "delimiter : any", LabelRule{Kind: LabelDelimiter, Delim: []byte(":"), Loc: Location{Kind: AnyColumn}}},
		{"delimiter column", "delimiter : column 1 alternate c", LabelRule{Kind: LabelDelimiter, Delim: []byte(":"), Loc: Location{Kind: FixedColumn}, Alt: 'c'}},
		{"delimiter firstnonblank", "delimiter : firstnonblank", LabelRule{Kind: LabelDelimiter, Delim: []byte(":"), Loc: Location{Kind: FirstNonBlank}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := CompileLines("l", "", []string{":label", tt.line})
			require.NoError(t, err)
			assert.Equal(t, tt.want, def.Label)
		})
	}
}

func TestCompileOptions(t *testing.T) {
	def, err := CompileLines("rexx", "", []string{
		":case", "ignore",
		":option", "rexx", "function (", "unknownfunction alternate 9",
		":string", "delimiter ` backslash",
		":comment", "paired /* */ nest",
		":markup", "tag < >", "reference & ;",
		":directory", "directory alternate 4", "link", "executable", "extension .go alternate 6",
	})
	require.NoError(t, err)

	assert.False(t, def.CaseSensitive)
	assert.True(t, def.RexxCall)
	assert.True(t, def.UnknownFunction)
	assert.Equal(t, Alternate('9'), def.UnknownFunctionAlt)
	assert.False(t, def.FunctionBlank)
	assert.Equal(t, byte('`'), def.Strings.Delimiter)
	assert.True(t, def.Strings.DelimiterEscape)
	assert.True(t, def.PairedComments[0].Nested)
	assert.Equal(t, &DelimPair{Start: []byte("<"), End: []byte(">")}, def.MarkupTag)
	assert.Equal(t, &DelimPair{Start: []byte("&"), End: []byte(";")}, def.MarkupReference)
	assert.True(t, def.Directory.Enabled())
	assert.Equal(t, Alternate('4'), def.Directory.DirectoryAlt)
	require.Len(t, def.Directory.Extensions, 1)
	assert.Equal(t, Alternate('6'), def.Directory.Extensions[0].Alt)

	text := pattern.TextOf([]byte("SAY(x)"))
	assert.Equal(t, 4, def.Function.MatchAt(text, 0), "case-insensitive identifier")
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		err   error
		line  int
		token string
	}{
		{"no section", []string{"if"}, ErrNoSection, 1, "if"},
		{"unknown section", []string{"* c", ":bogus"}, ErrUnknownSection, 2, ":bogus"},
		{"section with args", []string{":keyword if"}, ErrTokenCount, 1, "if"},
		{"too many tokens", []string{":keyword", "if else"}, ErrTokenCount, 2, "else"},
		{"too few tokens", []string{":comment", "line //"}, ErrTokenCount, 2, "//"},
		{"bad case", []string{":case", "maybe"}, ErrUnknownOption, 2, "maybe"},
		{"bad number", []string{":number", "fortran"}, ErrUnknownOption, 2, "fortran"},
		{"bad column", []string{":column", "exclude x 5"}, ErrInvalidInteger, 2, "x"},
		{"zero column", []string{":label", "column 0"}, ErrInvalidInteger, 2, "0"},
		{"reversed range", []string{":column", "exclude 9 5"}, ErrInvalidInteger, 2, "5"},
		{"long delimiter", []string{":comment", "line 12345678901 any"}, ErrDelimiterTooLong, 2, "12345678901"},
		{"bad location", []string{":header", "line # middle"}, ErrUnknownOption, 2, "middle"},
		{"bad alternate", []string{":keyword", "if alternate !"}, ErrUnknownOption, 2, "!"},
		{"bad match", []string{":match", "< >"}, ErrUnknownOption, 2, "<>"},
		{"bad escape", []string{":string", "single slash"}, ErrUnknownOption, 2, "slash"},
		{"bad nest", []string{":comment", "paired /* */ deep"}, ErrUnknownOption, 2, "deep"},
		{"bad preprocessor", []string{":option", "preprocessor ##"}, ErrUnknownOption, 2, "##"},
		{"bad pattern", []string{":postcompare", "class [a-"}, ErrBadPattern, 2, "[a-"},
		{"bad identifier", []string{":identifier", "[a- [b"}, ErrBadPattern, 2, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := CompileLines("x", "x.tld", tt.lines)
			require.Error(t, err)
			assert.Nil(t, def)
			assert.True(t, errors.Is(err, tt.err), "got %v", err)

			var ce *CompileError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.line, ce.Line)
			assert.Equal(t, "x", ce.Name)
			assert.Equal(t, "x.tld", ce.File)
			if tt.token != "" {
				assert.Equal(t, tt.token, ce.Token)
			}
			assert.Contains(t, err.Error(), "x.tld")
		})
	}
}

func TestCompileStopsAtFirstError(t *testing.T) {
	_, err := CompileLines("x", "", []string{":keyword", "a b", ":bogus"})
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 2, ce.Line)
}

func TestLookupKeywordExactLength(t *testing.T) {
	def, err := CompileLines("k", "", []string{":keyword", "if"})
	require.NoError(t, err)

	_, ok := def.LookupKeyword([]byte("if"))
	assert.True(t, ok)
	for _, word := range []string{"ifx", "xif", "i", "IF"} {
		_, ok := def.LookupKeyword([]byte(word))
		assert.False(t, ok, word)
	}

	def, err = CompileLines("k", "", []string{":case", "ignore", ":keyword", "if"})
	require.NoError(t, err)
	_, ok = def.LookupKeyword([]byte("IF"))
	assert.True(t, ok)
}

func TestLookupKeywordProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		kw := rapid.StringMatching(`[a-z]{1,8}`).Draw(rt, "keyword")
		extra := rapid.StringMatching(`[a-z0-9_]{1,4}`).Draw(rt, "extra")

		def, err := CompileLines("k", "", []string{":keyword", kw})
		if err != nil {
			rt.Fatalf("compile: %v", err)
		}
		if _, ok := def.LookupKeyword([]byte(kw)); !ok {
			rt.Fatalf("keyword %q not found", kw)
		}
		if _, ok := def.LookupKeyword([]byte(kw + extra)); ok {
			rt.Fatalf("prefix match for %q", kw+extra)
		}
		if _, ok := def.LookupKeyword([]byte(extra + kw)); ok {
			rt.Fatalf("suffix match for %q", extra+kw)
		}
	})
}

func TestLookupPreprocessor(t *testing.T) {
	def := compileString(t, cSource)

	k, ok := def.LookupPreprocessor([]byte("define"))
	require.True(t, ok)
	assert.Equal(t, "#define", string(k.Text))

	_, ok = def.LookupPreprocessor([]byte("if"))
	assert.True(t, ok)
	_, ok = def.LookupPreprocessor([]byte("else"))
	assert.False(t, ok)
}

func TestLookupFunction(t *testing.T) {
	def := compileString(t, cSource)

	f, ok := def.LookupFunction([]byte("printf"))
	require.True(t, ok)
	assert.Equal(t, Alternate('2'), f.Alt)

	_, ok = def.LookupFunction([]byte("print"))
	assert.False(t, ok)
}

func TestCompileErrorMessage(t *testing.T) {
	err := &CompileError{Name: "c", Line: 3, Token: "x", Err: ErrTokenCount}
	assert.Equal(t, `parser c line 3: wrong number of tokens: "x"`, err.Error())
}
