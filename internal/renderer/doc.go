// Package renderer draws highlighted document windows to a character-cell
// backend.
//
// The layers are:
//
//	┌─────────────────────────────────────────┐
//	│   Renderer (gutter, rows, status line)  │
//	├─────────────────────────────────────────┤
//	│  layout (tabs, wide runes) │ statusline │
//	├─────────────────────────────────────────┤
//	│           backend.Backend               │
//	├─────────────────────────────────────────┤
//	│  Terminal (tcell) │ NullBackend (tests) │
//	└─────────────────────────────────────────┘
//
// The renderer never classifies text itself. It draws the per-byte colors
// the highlighter stored in each highlight.DisplayLine, and uses the color
// resolver only for row padding and the gutter.
//
// Usage:
//
//	term, _ := backend.NewTerminal()
//	r := renderer.New(term, scheme, renderer.DefaultOptions())
//	r.Render(view.Render(top, r.TextHeight(), cursor), doc.LineCount())
//
// The ansi subpackage writes the same colors as escape sequences for
// non-interactive output.
package renderer
