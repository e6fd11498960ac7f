// Package ansi writes highlighted lines as text with terminal escape
// sequences.
package ansi

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/dshills/parsedit/internal/renderer/core"
	"github.com/dshills/parsedit/internal/renderer/layout"
	"github.com/dshills/parsedit/internal/syntax/highlight"
)

// ErrInvalidMode is returned by ParseMode for an unknown color mode.
var ErrInvalidMode = errors.New("invalid color mode")

// Mode selects when escape sequences are written.
type Mode int

const (
	// ModeAuto colors output only when it goes to a terminal.
	ModeAuto Mode = iota
	// ModeAlways forces true-color output.
	ModeAlways
	// ModeNever writes plain text.
	ModeNever
)

// ParseMode parses "auto", "always" or "never".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return ModeAuto, nil
	case "always":
		return ModeAlways, nil
	case "never":
		return ModeNever, nil
	default:
		return ModeAuto, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeAlways:
		return "always"
	case ModeNever:
		return "never"
	default:
		return "auto"
	}
}

// Writer renders highlighted lines to an io.Writer, one output line per
// DisplayLine.
type Writer struct {
	out      io.Writer
	renderer *lipgloss.Renderer
	layout   *layout.Engine
	plain    bool
	styles   map[core.Style]lipgloss.Style
}

// NewWriter creates a writer. tabWidth controls tab expansion.
func NewWriter(out io.Writer, mode Mode, tabWidth int) *Writer {
	r := lipgloss.NewRenderer(out)
	plain := false
	switch mode {
	case ModeAlways:
		r.SetColorProfile(termenv.TrueColor)
	case ModeNever:
		plain = true
	default:
		plain = r.ColorProfile() == termenv.Ascii
	}
	return &Writer{
		out:      out,
		renderer: r,
		layout:   layout.NewEngine(tabWidth),
		plain:    plain,
		styles:   make(map[core.Style]lipgloss.Style),
	}
}

// Colored reports whether escape sequences are written.
func (w *Writer) Colored() bool {
	return !w.plain
}

// WriteLine writes one line followed by a newline.
func (w *Writer) WriteLine(line *highlight.DisplayLine) error {
	var sb strings.Builder
	for _, run := range w.layout.Layout(line).Runs() {
		if w.plain {
			sb.WriteString(run.Text)
			continue
		}
		sb.WriteString(w.Style(run.Style).Render(run.Text))
	}
	sb.WriteByte('\n')
	_, err := io.WriteString(w.out, sb.String())
	return err
}

// WriteWindow writes every line of win.
func (w *Writer) WriteWindow(win *highlight.Window) error {
	for _, l := range win.Lines {
		if err := w.WriteLine(l); err != nil {
			return err
		}
	}
	return nil
}

// Style converts a display style to a lipgloss style bound to the writer's
// renderer. Results are cached.
func (w *Writer) Style(s core.Style) lipgloss.Style {
	if st, ok := w.styles[s]; ok {
		return st
	}
	st := w.renderer.NewStyle()
	if c, ok := termColor(s.Foreground); ok {
		st = st.Foreground(c)
	}
	if c, ok := termColor(s.Background); ok {
		st = st.Background(c)
	}
	a := s.Attributes
	if a.Has(core.AttrBold) {
		st = st.Bold(true)
	}
	if a.Has(core.AttrDim) {
		st = st.Faint(true)
	}
	if a.Has(core.AttrItalic) {
		st = st.Italic(true)
	}
	if a.Has(core.AttrUnderline) {
		st = st.Underline(true)
	}
	if a.Has(core.AttrBlink) {
		st = st.Blink(true)
	}
	if a.Has(core.AttrReverse) {
		st = st.Reverse(true)
	}
	if a.Has(core.AttrStrikethrough) {
		st = st.Strikethrough(true)
	}
	w.styles[s] = st
	return st
}

// termColor maps a color to lipgloss: palette colors by index, true colors
// by hex. The default color has no mapping.
func termColor(c core.Color) (lipgloss.Color, bool) {
	switch {
	case c.IsDefault():
		return "", false
	case c.Indexed:
		return lipgloss.Color(strconv.Itoa(int(c.R))), true
	default:
		return lipgloss.Color(c.ToHex()), true
	}
}
