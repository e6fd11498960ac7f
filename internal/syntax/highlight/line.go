package highlight

import (
	"github.com/dshills/parsedit/internal/renderer/core"
)

// DisplayLine is one visible row. The highlighter only writes Classes and
// Colors; Content is never modified.
type DisplayLine struct {
	// Content is the raw bytes of the row.
	Content []byte

	// Classes holds one class per byte of Content.
	Classes []SyntaxClass

	// Colors holds one style per byte of Content.
	Colors []core.Style

	// Current is set on the row holding the cursor.
	Current bool

	// CursorZone is set on rows drawn in the cursor zone color.
	CursorZone bool

	// DirectoryListing is set on rows of the synthetic directory listing.
	DirectoryListing bool
}

// NewDisplayLine creates a line with class and color arrays sized to content.
func NewDisplayLine(content []byte) *DisplayLine {
	return &DisplayLine{
		Content: content,
		Classes: make([]SyntaxClass, len(content)),
		Colors:  make([]core.Style, len(content)),
	}
}

// Len returns the number of bytes in the line.
func (l *DisplayLine) Len() int {
	return len(l.Content)
}

// reset sizes the arrays to the content and clears every class.
func (l *DisplayLine) reset(base core.Style) {
	n := len(l.Content)
	if cap(l.Classes) < n {
		l.Classes = make([]SyntaxClass, n)
	}
	l.Classes = l.Classes[:n]
	if cap(l.Colors) < n {
		l.Colors = make([]core.Style, n)
	}
	l.Colors = l.Colors[:n]
	for i := 0; i < n; i++ {
		l.Classes[i] = None
		l.Colors[i] = base
	}
}

// BaseRole selects the line's background role.
func (l *DisplayLine) BaseRole() Role {
	switch {
	case l.Current:
		return RoleCurrentLine
	case l.CursorZone:
		return RoleCursorZone
	default:
		return RoleText
	}
}

// ColorResolver supplies the colors used by the highlighter.
type ColorResolver interface {
	// DefaultColor returns the color for a role.
	DefaultColor(role Role) core.Style

	// AlternateColor returns the color for an `alternate` override.
	AlternateColor(c byte) (core.Style, bool)

	// MergeCursorColor lays overlay on top of a cursor line color.
	MergeCursorColor(base, overlay core.Style) core.Style
}

// plainColors is used when no resolver is configured.
type plainColors struct{}

func (plainColors) DefaultColor(Role) core.Style { return core.DefaultStyle() }

func (plainColors) AlternateColor(byte) (core.Style, bool) { return core.Style{}, false }

func (plainColors) MergeCursorColor(base, overlay core.Style) core.Style {
	return base.Merge(overlay)
}
