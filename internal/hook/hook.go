// Package hook is the seam between the capture session and the platform's
// raw input delivery. A platform backend implements Installer; everything
// above this package deals only in RawEvent payloads and domain events.
//
// The callback contract is narrow: a backend invokes the emit function it
// was given with one RawEvent per platform callback, on a single dedicated
// thread, and touches no other shared state from callback context.
package hook

import "fmt"

// Kind selects which input device a hook captures.
type Kind uint8

const (
	// Keyboard captures key presses and releases.
	Keyboard Kind = iota
	// Mouse captures motion, buttons and wheel rotation.
	Mouse
)

// Kinds lists every hook kind a capture session installs.
var Kinds = []Kind{Keyboard, Mouse}

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Keyboard:
		return "keyboard"
	case Mouse:
		return "mouse"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Hook is an installed platform hook. Uninstall removes the platform
// registration; it must be called exactly once.
type Hook interface {
	Uninstall() error
}

// Installer registers interest in raw input with the platform.
//
// Install begins delivery of raw payloads of the given kind to emit and
// returns the uninstall handle. emit is invoked on the backend's dedicated
// callback thread and must not block; it only translates and enqueues.
// A failed Install leaves nothing registered for that kind.
type Installer interface {
	Install(kind Kind, emit func(RawEvent)) (Hook, error)
}

// RawEvent is the raw payload a backend delivers per platform callback,
// modeled on the platform raw-input record. Exactly one Kind's field group
// is meaningful.
type RawEvent struct {
	// Kind says which field group below is populated.
	Kind Kind

	// Keyboard fields.

	// VKey is the platform virtual key code.
	VKey uint16
	// ScanCode is the hardware make code.
	ScanCode uint16
	// KeyFlags carries the key transition bits (RawKeyBreak = release).
	KeyFlags uint16

	// Mouse fields.

	// MouseFlags carries the motion mode bits (MouseMoveAbsolute,
	// MouseVirtualDesktop). Relative motion is the zero mode.
	MouseFlags uint16
	// ButtonFlags carries the button and wheel transition bits.
	ButtonFlags uint16
	// ButtonData is the wheel rotation in hardware units when a wheel bit
	// is set in ButtonFlags.
	ButtonData int16
	// LastX and LastY are the motion delta (relative mode) or the
	// normalized device position (absolute mode).
	LastX int32
	LastY int32
}

// Mouse motion mode bits (MouseFlags).
const (
	// MouseMoveAbsolute marks LastX/LastY as normalized absolute device
	// coordinates; when clear, they are motion deltas.
	MouseMoveAbsolute uint16 = 0x0001
	// MouseVirtualDesktop marks absolute coordinates as spanning the whole
	// virtual desktop.
	MouseVirtualDesktop uint16 = 0x0002
)

// Keyboard transition bits (KeyFlags).
const (
	// RawKeyBreak is set on key release.
	RawKeyBreak uint16 = 0x0001
)

// Button and wheel transition bits (ButtonFlags). Values mirror the platform
// raw-input button flags.
const (
	ButtonLeftDown   uint16 = 0x0001
	ButtonLeftUp     uint16 = 0x0002
	ButtonRightDown  uint16 = 0x0004
	ButtonRightUp    uint16 = 0x0008
	ButtonMiddleDown uint16 = 0x0010
	ButtonMiddleUp   uint16 = 0x0020
	ButtonX1Down     uint16 = 0x0040
	ButtonX1Up       uint16 = 0x0080
	ButtonX2Down     uint16 = 0x0100
	ButtonX2Up       uint16 = 0x0200
	WheelVertical    uint16 = 0x0400
	WheelHorizontal  uint16 = 0x0800
)

// knownButtonFlags is the union of every bit Translate understands. Anything
// outside it is a defect in the backend, not input.
const knownButtonFlags = ButtonLeftDown | ButtonLeftUp |
	ButtonRightDown | ButtonRightUp |
	ButtonMiddleDown | ButtonMiddleUp |
	ButtonX1Down | ButtonX1Up |
	ButtonX2Down | ButtonX2Up |
	WheelVertical | WheelHorizontal

// WheelDetent is the hardware wheel unit per detent.
const WheelDetent = 120.0
