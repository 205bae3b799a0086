package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gymore-io/winput/pkg/keys"
)

func TestEventTypes(t *testing.T) {
	cases := []struct {
		event Event
		want  Type
	}{
		{Keyboard{}, TypeKeyboard},
		{MouseMoveRelative{}, TypeMouseMoveRelative},
		{MouseMoveAbsolute{}, TypeMouseMoveAbsolute},
		{MouseButton{}, TypeMouseButton},
		{MouseWheel{}, TypeMouseWheel},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.event.Type())
	}
}

func TestActionFromRelease(t *testing.T) {
	assert.Equal(t, Press, ActionFromRelease(false))
	assert.Equal(t, Release, ActionFromRelease(true))
}

func TestStringers(t *testing.T) {
	assert.Equal(t, "press", Press.String())
	assert.Equal(t, "release", Release.String())
	assert.Equal(t, "left", Left.String())
	assert.Equal(t, "x2", X2.String())
	assert.Equal(t, "vertical", Vertical.String())
	assert.Equal(t, "horizontal", Horizontal.String())
	assert.Equal(t, "Button(9)", Button(9).String())
}

func TestHandlerFunc(t *testing.T) {
	var got Event
	h := HandlerFunc(func(e Event) { got = e })

	h.HandleEvent(Keyboard{Key: keys.A})
	assert.Equal(t, Keyboard{Key: keys.A}, got)
}

func TestCallbacksRouteByVariant(t *testing.T) {
	var (
		keyboards int
		buttons   int
		wheels    int
	)
	c := Callbacks{
		OnKeyboard:    func(Keyboard) { keyboards++ },
		OnMouseButton: func(MouseButton) { buttons++ },
		OnMouseWheel:  func(MouseWheel) { wheels++ },
	}

	c.HandleEvent(Keyboard{})
	c.HandleEvent(MouseButton{})
	c.HandleEvent(MouseWheel{})

	// Variants without a callback are ignored, nil-safely.
	c.HandleEvent(MouseMoveRelative{})
	c.HandleEvent(MouseMoveAbsolute{})

	assert.Equal(t, 1, keyboards)
	assert.Equal(t, 1, buttons)
	assert.Equal(t, 1, wheels)
}
