package statusline

import (
	"strings"
	"testing"

	"github.com/dshills/parsedit/internal/renderer/backend"
)

func TestFormatPosition(t *testing.T) {
	tests := []struct {
		line, total int
		want        string
	}{
		{0, 0, "Ln 1/0"},
		{1, 200, "Ln 1/200 | Top"},
		{50, 200, "Ln 50/200 | 25%"},
		{200, 200, "Ln 200/200 | Bot"},
	}
	for _, tt := range tests {
		s := New()
		s.SetPosition(tt.line, tt.total)
		if got := s.formatPosition(); got != tt.want {
			t.Errorf("formatPosition(%d, %d) = %q, want %q", tt.line, tt.total, got, tt.want)
		}
	}
}

func TestRenderStatusBar(t *testing.T) {
	b := backend.NewNullBackend(40, 2)
	b.Init()

	s := New()
	s.Resize(40)
	s.SetFilename("main.c")
	s.SetParser("c")
	s.SetPosition(1, 10)
	s.Render(b, 1)

	row := b.Row(1)
	if !strings.HasPrefix(row, " c  main.c") {
		t.Errorf("status row = %q, want parser then filename", row)
	}
	if !strings.HasSuffix(row, "Ln 1/10 | Top ") {
		t.Errorf("status row = %q, want position on the right", row)
	}
}

func TestRenderNoParserAndNoName(t *testing.T) {
	b := backend.NewNullBackend(40, 1)
	b.Init()

	s := New()
	s.Resize(40)
	s.SetParser("")
	s.Render(b, 0)

	if row := b.Row(0); !strings.HasPrefix(row, " none  [No Name]") {
		t.Errorf("status row = %q", row)
	}
}

func TestRenderMessage(t *testing.T) {
	b := backend.NewNullBackend(12, 1)
	b.Init()

	s := New()
	s.Resize(12)
	s.SetMessage("reloaded c.tld", MessageInfo)
	s.Render(b, 0)
	if row := b.Row(0); row != "reloaded c.t" {
		t.Errorf("message row = %q, want truncated message", row)
	}

	s.ClearMessage()
	if s.Message() != "" {
		t.Error("ClearMessage should clear the message")
	}
}
