// Package colors resolves syntax roles and `alternate` overrides to display
// styles.
package colors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/parsedit/internal/renderer/core"
	"github.com/dshills/parsedit/internal/syntax/highlight"
)

// Errors returned when configuring a scheme.
var (
	ErrUnknownScheme    = errors.New("unknown color scheme")
	ErrUnknownRole      = errors.New("unknown color role")
	ErrInvalidAlternate = errors.New("alternate must be a single letter or digit")
	ErrInvalidStyle     = errors.New("invalid style")
)

// Scheme maps roles and alternates to styles. It implements
// highlight.ColorResolver.
type Scheme struct {
	// Name is the key the scheme is looked up by.
	Name string

	// Background is the editor background color.
	Background core.Color

	// Foreground is the default text color.
	Foreground core.Color

	roles      map[highlight.Role]core.Style
	alternates map[byte]core.Style
}

var _ highlight.ColorResolver = (*Scheme)(nil)

var schemes = map[string]func() *Scheme{
	"default": DefaultScheme,
	"monokai": MonokaiScheme,
	"mono":    MonoScheme,
}

// Lookup returns a fresh copy of the named scheme.
func Lookup(name string) (*Scheme, error) {
	if name == "" {
		return DefaultScheme(), nil
	}
	fn, ok := schemes[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
	return fn(), nil
}

// Names returns the built-in scheme names, sorted.
func Names() []string {
	names := make([]string, 0, len(schemes))
	for n := range schemes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func newScheme(name string, bg, fg core.Color) *Scheme {
	return &Scheme{
		Name:       name,
		Background: bg,
		Foreground: fg,
		roles:      make(map[highlight.Role]core.Style),
		alternates: defaultAlternates(),
	}
}

// DefaultScheme returns a sensible default dark scheme.
func DefaultScheme() *Scheme {
	s := newScheme("default", core.ColorFromRGB(30, 30, 30), core.ColorFromRGB(212, 212, 212))

	comment := core.ColorFromRGB(106, 153, 85)
	keyword := core.ColorFromRGB(86, 156, 214)
	str := core.ColorFromRGB(206, 145, 120)
	number := core.ColorFromRGB(181, 206, 168)
	function := core.ColorFromRGB(220, 220, 170)
	teal := core.ColorFromRGB(78, 201, 176)
	invalid := core.ColorFromRGB(244, 71, 71)

	s.roles[highlight.RoleText] = core.NewStyle(s.Foreground)
	s.roles[highlight.RoleCurrentLine] = core.NewStyle(s.Foreground).WithBackground(core.ColorFromRGB(40, 40, 40))
	s.roles[highlight.RoleCursorZone] = core.NewStyle(s.Foreground).WithBackground(core.ColorFromRGB(50, 50, 70))
	s.roles[highlight.RoleExcluded] = core.NewStyle(core.ColorFromRGB(110, 110, 110))
	s.roles[highlight.RoleString] = core.NewStyle(str)
	s.roles[highlight.RoleIncompleteString] = core.NewStyle(invalid)
	s.roles[highlight.RoleHeader] = core.NewStyle(keyword).Bold()
	s.roles[highlight.RoleComment] = core.NewStyle(comment).Italic()
	s.roles[highlight.RoleLabel] = core.NewStyle(teal)
	s.roles[highlight.RoleFunction] = core.NewStyle(function)
	s.roles[highlight.RoleMarkup] = core.NewStyle(teal)
	s.roles[highlight.RoleMatch] = core.NewStyle(core.ColorFromRGB(255, 215, 0))
	s.roles[highlight.RoleKeyword] = core.NewStyle(keyword)
	s.roles[highlight.RoleNumber] = core.NewStyle(number)
	s.roles[highlight.RoleDirectory] = core.NewStyle(keyword).Bold()
	s.roles[highlight.RoleLink] = core.NewStyle(teal).Underline()
	s.roles[highlight.RoleExecutable] = core.NewStyle(core.ColorFromRGB(152, 195, 121))
	s.roles[highlight.RoleExtension] = core.NewStyle(str)
	s.roles[highlight.RolePostCompare] = core.NewStyle(core.ColorFromRGB(197, 134, 192))
	return s
}

// MonokaiScheme returns a Monokai-inspired scheme.
func MonokaiScheme() *Scheme {
	s := newScheme("monokai", core.ColorFromRGB(39, 40, 34), core.ColorFromRGB(248, 248, 242))

	pink := core.ColorFromRGB(249, 38, 114)
	green := core.ColorFromRGB(166, 226, 46)
	orange := core.ColorFromRGB(253, 151, 31)
	yellow := core.ColorFromRGB(230, 219, 116)
	blue := core.ColorFromRGB(102, 217, 239)
	purple := core.ColorFromRGB(174, 129, 255)
	comment := core.ColorFromRGB(117, 113, 94)

	s.roles[highlight.RoleText] = core.NewStyle(s.Foreground)
	s.roles[highlight.RoleCurrentLine] = core.NewStyle(s.Foreground).WithBackground(core.ColorFromRGB(62, 61, 50))
	s.roles[highlight.RoleCursorZone] = core.NewStyle(s.Foreground).WithBackground(core.ColorFromRGB(73, 72, 62))
	s.roles[highlight.RoleExcluded] = core.NewStyle(comment)
	s.roles[highlight.RoleString] = core.NewStyle(yellow)
	s.roles[highlight.RoleIncompleteString] = core.NewStyle(yellow).Underline()
	s.roles[highlight.RoleHeader] = core.NewStyle(pink).Bold()
	s.roles[highlight.RoleComment] = core.NewStyle(comment)
	s.roles[highlight.RoleLabel] = core.NewStyle(orange)
	s.roles[highlight.RoleFunction] = core.NewStyle(green)
	s.roles[highlight.RoleMarkup] = core.NewStyle(pink)
	s.roles[highlight.RoleMatch] = core.NewStyle(orange).Bold()
	s.roles[highlight.RoleKeyword] = core.NewStyle(pink)
	s.roles[highlight.RoleNumber] = core.NewStyle(purple)
	s.roles[highlight.RoleDirectory] = core.NewStyle(blue).Bold()
	s.roles[highlight.RoleLink] = core.NewStyle(blue).Underline()
	s.roles[highlight.RoleExecutable] = core.NewStyle(green)
	s.roles[highlight.RoleExtension] = core.NewStyle(orange)
	s.roles[highlight.RolePostCompare] = core.NewStyle(blue)
	return s
}

// MonoScheme uses attributes only, for terminals without color.
func MonoScheme() *Scheme {
	s := newScheme("mono", core.ColorDefault, core.ColorDefault)
	s.alternates = make(map[byte]core.Style)

	s.roles[highlight.RoleCurrentLine] = core.DefaultStyle().Reverse()
	s.roles[highlight.RoleCursorZone] = core.DefaultStyle().Underline()
	s.roles[highlight.RoleComment] = core.DefaultStyle().Italic()
	s.roles[highlight.RoleKeyword] = core.DefaultStyle().Bold()
	s.roles[highlight.RoleHeader] = core.DefaultStyle().Bold()
	s.roles[highlight.RoleDirectory] = core.DefaultStyle().Bold()
	s.roles[highlight.RoleIncompleteString] = core.DefaultStyle().Underline()
	return s
}

// defaultAlternates maps the digits to palette colors and the letters to
// hues around the color wheel. An upper case letter is the bold, more
// saturated form of its lower case hue.
func defaultAlternates() map[byte]core.Style {
	alts := make(map[byte]core.Style, 62)
	for i := byte(1); i <= 9; i++ {
		alts['0'+i] = core.NewStyle(core.ColorFromIndex(i))
	}
	alts['0'] = core.NewStyle(core.ColorFromIndex(15))
	for k := byte(0); k < 26; k++ {
		hue := 360 * float64(k) / 26
		alts['a'+k] = core.NewStyle(hsv(hue, 0.55, 0.95))
		alts['A'+k] = core.NewStyle(hsv(hue, 0.8, 0.85)).Bold()
	}
	return alts
}

func hsv(h, s, v float64) core.Color {
	r, g, b := colorful.Hsv(h, s, v).RGB255()
	return core.ColorFromRGB(r, g, b)
}

// DefaultColor implements highlight.ColorResolver. Roles without an entry
// use the text style.
func (s *Scheme) DefaultColor(role highlight.Role) core.Style {
	if style, ok := s.roles[role]; ok {
		return style
	}
	if style, ok := s.roles[highlight.RoleText]; ok {
		return style
	}
	return core.NewStyle(s.Foreground)
}

// AlternateColor implements highlight.ColorResolver.
func (s *Scheme) AlternateColor(c byte) (core.Style, bool) {
	style, ok := s.alternates[c]
	return style, ok
}

// MergeCursorColor implements highlight.ColorResolver. The overlay's
// foreground and attributes are drawn on the cursor line's background.
func (s *Scheme) MergeCursorColor(base, overlay core.Style) core.Style {
	result := base
	if !overlay.Foreground.IsDefault() {
		result.Foreground = overlay.Foreground
	}
	result.Attributes |= overlay.Attributes
	return result
}

// SetRole overrides the style of a role.
func (s *Scheme) SetRole(role highlight.Role, style core.Style) {
	s.roles[role] = style
}

// SetAlternate overrides the style of an alternate character.
func (s *Scheme) SetAlternate(c byte, style core.Style) error {
	if !isAlnum(c) {
		return fmt.Errorf("%w: %q", ErrInvalidAlternate, c)
	}
	s.alternates[c] = style
	return nil
}

func isAlnum(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// Apply overrides roles and alternates from configuration. Keys of roles
// are role names; keys of alternates are single characters. Values use the
// ParseStyle syntax.
func (s *Scheme) Apply(roles, alternates map[string]string) error {
	for name, spec := range roles {
		role, ok := highlight.ParseRole(strings.ToLower(name))
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownRole, name)
		}
		style, err := ParseStyle(spec)
		if err != nil {
			return fmt.Errorf("role %s: %w", name, err)
		}
		s.SetRole(role, style)
	}
	for key, spec := range alternates {
		if len(key) != 1 {
			return fmt.Errorf("%w: %q", ErrInvalidAlternate, key)
		}
		style, err := ParseStyle(spec)
		if err != nil {
			return fmt.Errorf("alternate %s: %w", key, err)
		}
		if err := s.SetAlternate(key[0], style); err != nil {
			return err
		}
	}
	return nil
}

// ParseStyle parses "fg[:bg] [attribute...]". Colors are "#rrggbb", "#rgb",
// ANSI color names or "default"; attributes are bold, italic, underline,
// dim, blink, reverse and strikethrough. The color part may be omitted.
func ParseStyle(spec string) (core.Style, error) {
	style := core.DefaultStyle()
	fields := strings.Fields(spec)
	if len(fields) == 0 {
		return style, fmt.Errorf("%w: empty", ErrInvalidStyle)
	}
	if _, isAttr := core.ParseAttribute(fields[0]); !isAttr {
		fg, bg, hasBg := strings.Cut(fields[0], ":")
		c, err := core.ParseColor(fg)
		if err != nil {
			return style, fmt.Errorf("%w: %v", ErrInvalidStyle, err)
		}
		style.Foreground = c
		if hasBg {
			c, err := core.ParseColor(bg)
			if err != nil {
				return style, fmt.Errorf("%w: %v", ErrInvalidStyle, err)
			}
			style.Background = c
		}
		fields = fields[1:]
	}
	for _, f := range fields {
		attr, ok := core.ParseAttribute(f)
		if !ok {
			return style, fmt.Errorf("%w: unknown attribute %q", ErrInvalidStyle, f)
		}
		style.Attributes |= attr
	}
	return style, nil
}
