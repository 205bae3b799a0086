// Package keys is the boundary to the platform virtual-key-code table.
// It exposes the Code type carried by keyboard events, a validity check, and
// named constants for the handful of keys this module refers to directly.
// The full key enumeration lives with the platform, not here.
package keys

import "fmt"

// Code is a platform virtual key code. Values mirror the Windows virtual-key
// space (0x01–0xFE); alphanumeric codes match their ASCII uppercase form.
type Code uint8

// Named codes used by this module's own commands, examples and tests.
const (
	Backspace Code = 0x08
	Tab       Code = 0x09
	Enter     Code = 0x0D
	Shift     Code = 0x10
	Control   Code = 0x11
	Alt       Code = 0x12
	Escape    Code = 0x1B
	Space     Code = 0x20

	Digit0 Code = 0x30
	Digit9 Code = 0x39
	A      Code = 0x41
	Z      Code = 0x5A

	F1  Code = 0x70
	F12 Code = 0x7B
)

// Valid reports whether c falls inside the virtual-key space. Zero and 0xFF
// are reserved by the platform and never appear in captured events.
func (c Code) Valid() bool {
	return c != 0 && c != 0xFF
}

// String implements fmt.Stringer. Alphanumeric codes render as their
// character; everything else renders numerically.
func (c Code) String() string {
	switch {
	case c >= Digit0 && c <= Digit9, c >= A && c <= Z:
		return string(rune(c))
	case c == Escape:
		return "Escape"
	case c == Space:
		return "Space"
	case c == Enter:
		return "Enter"
	case c == Tab:
		return "Tab"
	case c == Backspace:
		return "Backspace"
	case c == Shift:
		return "Shift"
	case c == Control:
		return "Control"
	case c == Alt:
		return "Alt"
	default:
		return fmt.Sprintf("Code(0x%02X)", uint8(c))
	}
}
