// Package highlight classifies the bytes of displayed lines using a compiled
// parser definition.
//
// Each visible line runs through a fixed sequence of passes. A byte claimed
// by one pass is never looked at again by a later one, so every byte ends up
// with at most one SyntaxClass. Block comments that cross line boundaries are
// located first by scanning the whole visible window.
package highlight

// SyntaxClass is the category assigned to a byte.
type SyntaxClass uint8

// Syntax classes.
const (
	None SyntaxClass = iota
	Excluded
	String
	IncompleteString
	Header
	Comment
	Label
	Function
	Markup
	Match
	Keyword
	Number
	Directory
	Link
	Executable
	Extension
	PostCompare
)

var classNames = [...]string{
	None:             "none",
	Excluded:         "excluded",
	String:           "string",
	IncompleteString: "incompletestring",
	Header:           "header",
	Comment:          "comment",
	Label:            "label",
	Function:         "function",
	Markup:           "markup",
	Match:            "match",
	Keyword:          "keyword",
	Number:           "number",
	Directory:        "directory",
	Link:             "link",
	Executable:       "executable",
	Extension:        "extension",
	PostCompare:      "postcompare",
}

// String returns the lowercase class name.
func (c SyntaxClass) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

// classCodes are the one-byte codes used by Codes.
var classCodes = [...]byte{
	None:             '.',
	Excluded:         'X',
	String:           's',
	IncompleteString: 'S',
	Header:           'H',
	Comment:          'c',
	Label:            'L',
	Function:         'f',
	Markup:           'm',
	Match:            'M',
	Keyword:          'k',
	Number:           'n',
	Directory:        'D',
	Link:             'l',
	Executable:       'x',
	Extension:        'e',
	PostCompare:      'p',
}

// Code returns a single byte identifying the class.
func (c SyntaxClass) Code() byte {
	if int(c) < len(classCodes) {
		return classCodes[c]
	}
	return '?'
}

// Codes renders a class slice as one code byte per class.
func Codes(classes []SyntaxClass) string {
	b := make([]byte, len(classes))
	for i, c := range classes {
		b[i] = c.Code()
	}
	return string(b)
}

// Role names a color the resolver knows about. The first three are line
// backgrounds; the rest are the default colors of each class.
type Role uint8

// Color roles.
const (
	RoleText Role = iota
	RoleCurrentLine
	RoleCursorZone
	RoleExcluded
	RoleString
	RoleIncompleteString
	RoleHeader
	RoleComment
	RoleLabel
	RoleFunction
	RoleMarkup
	RoleMatch
	RoleKeyword
	RoleNumber
	RoleDirectory
	RoleLink
	RoleExecutable
	RoleExtension
	RolePostCompare

	roleCount
)

var roleNames = [...]string{
	RoleText:             "text",
	RoleCurrentLine:      "currentline",
	RoleCursorZone:       "cursorzone",
	RoleExcluded:         "excluded",
	RoleString:           "string",
	RoleIncompleteString: "incompletestring",
	RoleHeader:           "header",
	RoleComment:          "comment",
	RoleLabel:            "label",
	RoleFunction:         "function",
	RoleMarkup:           "markup",
	RoleMatch:            "match",
	RoleKeyword:          "keyword",
	RoleNumber:           "number",
	RoleDirectory:        "directory",
	RoleLink:             "link",
	RoleExecutable:       "executable",
	RoleExtension:        "extension",
	RolePostCompare:      "postcompare",
}

// String returns the configuration name of the role.
func (r Role) String() string {
	if r < roleCount {
		return roleNames[r]
	}
	return "unknown"
}

// ParseRole returns the role with the given configuration name.
func ParseRole(name string) (Role, bool) {
	for r, n := range roleNames {
		if n == name {
			return Role(r), true
		}
	}
	return 0, false
}

// Roles returns every role in declaration order.
func Roles() []Role {
	out := make([]Role, roleCount)
	for i := range out {
		out[i] = Role(i)
	}
	return out
}

// RoleOf returns the default color role for a class.
func RoleOf(c SyntaxClass) Role {
	switch c {
	case Excluded:
		return RoleExcluded
	case String:
		return RoleString
	case IncompleteString:
		return RoleIncompleteString
	case Header:
		return RoleHeader
	case Comment:
		return RoleComment
	case Label:
		return RoleLabel
	case Function:
		return RoleFunction
	case Markup:
		return RoleMarkup
	case Match:
		return RoleMatch
	case Keyword:
		return RoleKeyword
	case Number:
		return RoleNumber
	case Directory:
		return RoleDirectory
	case Link:
		return RoleLink
	case Executable:
		return RoleExecutable
	case Extension:
		return RoleExtension
	case PostCompare:
		return RolePostCompare
	default:
		return RoleText
	}
}
