// Package statusline draws the viewer's bottom status line.
package statusline

import (
	"strconv"

	"github.com/dshills/parsedit/internal/renderer/backend"
	"github.com/dshills/parsedit/internal/renderer/core"
)

// NoParser is shown when no parser definition is bound.
const NoParser = "none"

// StatusLine renders the file name, active parser and position, or a
// message in their place.
type StatusLine struct {
	filename   string
	parser     string
	line       int // first visible line, 1-indexed
	totalLines int

	message     string
	messageType MessageType

	barStyle    core.Style
	parserStyle core.Style

	width int
}

// MessageType indicates the type of status message.
type MessageType int

const (
	MessageNone MessageType = iota
	MessageInfo
	MessageWarning
	MessageError
)

// New creates a status line.
func New() *StatusLine {
	return &StatusLine{
		parser:      NoParser,
		barStyle:    core.NewStyle(core.ColorFromIndex(15)).WithBackground(core.ColorFromIndex(8)),
		parserStyle: core.NewStyle(core.ColorFromIndex(15)).WithBackground(core.ColorFromIndex(4)).Bold(),
	}
}

// SetFilename updates the displayed filename.
func (s *StatusLine) SetFilename(filename string) {
	s.filename = filename
}

// SetParser updates the displayed parser name. An empty name shows NoParser.
func (s *StatusLine) SetParser(name string) {
	if name == "" {
		name = NoParser
	}
	s.parser = name
}

// SetPosition updates the first visible line (1-indexed) and line count.
func (s *StatusLine) SetPosition(line, total int) {
	s.line = line
	s.totalLines = total
}

// SetMessage displays a status message until ClearMessage.
func (s *StatusLine) SetMessage(msg string, msgType MessageType) {
	s.message = msg
	s.messageType = msgType
}

// ClearMessage clears the status message.
func (s *StatusLine) ClearMessage() {
	s.message = ""
	s.messageType = MessageNone
}

// Message returns the current message.
func (s *StatusLine) Message() string {
	return s.message
}

// Resize updates the status line width.
func (s *StatusLine) Resize(width int) {
	s.width = width
}

// Render draws the status line to the backend at the given row.
func (s *StatusLine) Render(b backend.Backend, row int) {
	if s.message != "" {
		s.renderMessage(b, row)
		return
	}
	s.renderStatusBar(b, row)
}

func (s *StatusLine) renderStatusBar(b backend.Backend, row int) {
	for x := 0; x < s.width; x++ {
		b.SetCell(x, row, core.Cell{Rune: ' ', Width: 1, Style: s.barStyle})
	}

	col := s.put(b, 0, row, " "+s.parser+" ", s.parserStyle, s.width)
	col = s.put(b, col, row, " ", s.barStyle, s.width)

	filename := s.filename
	if filename == "" {
		filename = "[No Name]"
	}
	pos := s.formatPosition()
	col = s.put(b, col, row, filename, s.barStyle, s.width-len(pos)-2)

	if start := s.width - len(pos) - 1; start > col {
		s.put(b, start, row, pos, s.barStyle, s.width)
	}
}

func (s *StatusLine) renderMessage(b backend.Backend, row int) {
	var style core.Style
	switch s.messageType {
	case MessageError:
		style = core.NewStyle(core.ColorFromIndex(1)).Bold()
	case MessageWarning:
		style = core.NewStyle(core.ColorFromIndex(3))
	default:
		style = core.DefaultStyle()
	}
	for x := 0; x < s.width; x++ {
		b.SetCell(x, row, core.Cell{Rune: ' ', Width: 1, Style: style})
	}
	s.put(b, 0, row, s.message, style, s.width)
}

// put writes text from col, stopping before limit, and returns the next
// column.
func (s *StatusLine) put(b backend.Backend, col, row int, text string, style core.Style, limit int) int {
	for _, r := range text {
		w := core.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col+w > limit {
			break
		}
		b.SetCell(col, row, core.NewStyledCell(r, style))
		col += w
	}
	return col
}

// formatPosition formats "Ln 12/340 | 3%", with Top and Bot at the ends.
func (s *StatusLine) formatPosition() string {
	line := max(s.line, 1)
	result := "Ln " + strconv.Itoa(line) + "/" + strconv.Itoa(s.totalLines)
	switch {
	case s.totalLines == 0:
	case line == 1:
		result += " | Top"
	case line >= s.totalLines:
		result += " | Bot"
	default:
		result += " | " + strconv.Itoa(line*100/s.totalLines) + "%"
	}
	return result
}
