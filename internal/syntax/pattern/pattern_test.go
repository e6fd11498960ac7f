package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileAnchorsAtPosition(t *testing.T) {
	p, err := Compile(`[a-z][a-z0-9]*`, false)
	require.NoError(t, err)

	text := TextOf([]byte("  abc1 xyz"))
	assert.Equal(t, -1, p.MatchAt(text, 0), "must not search forward")
	assert.Equal(t, 4, p.MatchAt(text, 2))
	assert.Equal(t, 3, p.MatchAt(text, 3))
	assert.Equal(t, 3, p.MatchAt(text, 7))
	assert.Equal(t, -1, p.MatchAt(text, 10), "out of range")
	assert.Equal(t, -1, p.MatchAt(text, -1))
}

func TestCompileIgnoreCase(t *testing.T) {
	p, err := Compile(`call`, true)
	require.NoError(t, err)
	assert.Equal(t, 4, p.MatchAt(TextOf([]byte("CALL x")), 0))

	p, err = Compile(`call`, false)
	require.NoError(t, err)
	assert.Equal(t, -1, p.MatchAt(TextOf([]byte("CALL x")), 0))
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile("", false)
	assert.ErrorIs(t, err, ErrEmptyPattern)

	_, err = Compile("[a-", false)
	assert.Error(t, err)
}

func TestTextHighBytes(t *testing.T) {
	text := TextOf([]byte{'a', 0xC3, 0xA9, 'b'})
	require.Len(t, text, 4)

	p := MustCompile(`b`, false)
	assert.Equal(t, 1, p.MatchAt(text, 3), "offsets are byte offsets")
}

func TestTextSet(t *testing.T) {
	text := TextOf([]byte("ab"))
	text.Set(0, ' ')
	assert.Equal(t, -1, MustCompile(`a`, false).MatchAt(text, 0))
}

func TestLiteral(t *testing.T) {
	text := TextOf([]byte("x := NULL"))

	assert.Equal(t, 2, NewLiteral([]byte(":="), false).MatchAt(text, 2))
	assert.Equal(t, -1, NewLiteral([]byte(":="), false).MatchAt(text, 1))
	assert.Equal(t, -1, NewLiteral([]byte("null"), false).MatchAt(text, 5))
	assert.Equal(t, 4, NewLiteral([]byte("null"), true).MatchAt(text, 5))
	assert.Equal(t, -1, NewLiteral([]byte("NULLS"), false).MatchAt(text, 5), "past end")
	assert.Equal(t, -1, NewLiteral(nil, false).MatchAt(text, 0))
}
