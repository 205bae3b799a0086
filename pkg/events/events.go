// Package events defines the domain event model produced by a capture
// session. Events are immutable value types created on the capture thread
// and fanned out to every subscribed handler.
//
// The set of variants is closed: Keyboard, MouseMoveRelative,
// MouseMoveAbsolute, MouseButton and MouseWheel. Consumers switch on the
// concrete type:
//
//	func (h *recorder) HandleEvent(e events.Event) {
//	    switch ev := e.(type) {
//	    case events.Keyboard:
//	        log.Printf("key %v %v", ev.Key, ev.Action)
//	    case events.MouseWheel:
//	        log.Printf("wheel %.1f", ev.Delta)
//	    }
//	}
package events

import (
	"fmt"

	"github.com/gymore-io/winput/pkg/keys"
)

// Event is the closed union of input events. Only the types declared in this
// package implement it. Event values are immutable once produced.
type Event interface {
	// Type returns the stable name of the event variant.
	Type() Type

	event()
}

// Type identifies an event variant.
type Type string

// Event variant names.
const (
	TypeKeyboard          Type = "keyboard"
	TypeMouseMoveRelative Type = "mouse_move_relative"
	TypeMouseMoveAbsolute Type = "mouse_move_absolute"
	TypeMouseButton       Type = "mouse_button"
	TypeMouseWheel        Type = "mouse_wheel"
)

// Action describes what happened to a key or mouse button.
type Action uint8

const (
	// Press indicates the key or button was pushed down.
	Press Action = iota
	// Release indicates the key or button was let go.
	Release
)

// ActionFromRelease converts the OS "is release" flag into an Action.
func ActionFromRelease(release bool) Action {
	if release {
		return Release
	}
	return Press
}

// String implements fmt.Stringer.
func (a Action) String() string {
	switch a {
	case Press:
		return "press"
	case Release:
		return "release"
	default:
		return fmt.Sprintf("Action(%d)", uint8(a))
	}
}

// Button identifies a mouse button.
type Button uint8

const (
	// Left is the left mouse button.
	Left Button = iota
	// Right is the right mouse button.
	Right
	// Middle is the middle mouse button (wheel click).
	Middle
	// X1 is the first extended mouse button.
	X1
	// X2 is the second extended mouse button.
	X2
)

// String implements fmt.Stringer.
func (b Button) String() string {
	switch b {
	case Left:
		return "left"
	case Right:
		return "right"
	case Middle:
		return "middle"
	case X1:
		return "x1"
	case X2:
		return "x2"
	default:
		return fmt.Sprintf("Button(%d)", uint8(b))
	}
}

// WheelDirection is the axis of a mouse wheel rotation.
type WheelDirection uint8

const (
	// Vertical is the common scroll wheel axis.
	Vertical WheelDirection = iota
	// Horizontal is the tilt-wheel axis.
	Horizontal
)

// String implements fmt.Stringer.
func (d WheelDirection) String() string {
	switch d {
	case Vertical:
		return "vertical"
	case Horizontal:
		return "horizontal"
	default:
		return fmt.Sprintf("WheelDirection(%d)", uint8(d))
	}
}

// Keyboard is produced when a key is pressed or released.
type Keyboard struct {
	// Key is the virtual key code of the key.
	Key keys.Code
	// ScanCode is the hardware scan code reported by the device.
	ScanCode uint32
	// Action is whether the key went down or up.
	Action Action
}

// MouseMoveRelative is produced when the mouse moves and the capture backend
// reports motion deltas.
type MouseMoveRelative struct {
	// DX is the horizontal motion since the last event, in device units.
	DX int32
	// DY is the vertical motion since the last event, in device units.
	DY int32
}

// MouseMoveAbsolute is produced when the mouse moves and the capture backend
// reports normalized absolute coordinates.
type MouseMoveAbsolute struct {
	// X is the horizontal position normalized to [0, 1].
	X float64
	// Y is the vertical position normalized to [0, 1].
	Y float64
	// VirtualDesktop reports whether X and Y map to the whole virtual
	// desktop rather than the primary monitor.
	VirtualDesktop bool
}

// MouseButton is produced when a mouse button is pressed or released.
type MouseButton struct {
	// X and Y are screen coordinates when the capture backend reports a
	// cursor position alongside the button change, and zero otherwise.
	X int32
	Y int32
	// Button is the button involved.
	Button Button
	// Action is whether the button went down or up.
	Action Action
}

// MouseWheel is produced when the mouse wheel rotates. Delta is measured in
// detents: positive values rotate away from the user (or to the right for
// the horizontal axis).
type MouseWheel struct {
	// X and Y are screen coordinates when the capture backend reports a
	// cursor position alongside the rotation, and zero otherwise.
	X int32
	Y int32
	// Delta is the rotation amount in wheel detents.
	Delta float64
	// Direction is the wheel axis.
	Direction WheelDirection
}

// Type implements Event.
func (Keyboard) Type() Type { return TypeKeyboard }

// Type implements Event.
func (MouseMoveRelative) Type() Type { return TypeMouseMoveRelative }

// Type implements Event.
func (MouseMoveAbsolute) Type() Type { return TypeMouseMoveAbsolute }

// Type implements Event.
func (MouseButton) Type() Type { return TypeMouseButton }

// Type implements Event.
func (MouseWheel) Type() Type { return TypeMouseWheel }

func (Keyboard) event()          {}
func (MouseMoveRelative) event() {}
func (MouseMoveAbsolute) event() {}
func (MouseButton) event()       {}
func (MouseWheel) event()        {}
