package events

// Handler consumes captured events. Implementations are invoked synchronously
// on the dispatcher goroutine, one event at a time, in production order. A
// slow handler therefore delays delivery to every other handler and to all
// subsequent events; handlers are expected to return quickly or hand work off
// to their own goroutine.
type Handler interface {
	// HandleEvent is called once per captured event.
	HandleEvent(Event)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(Event)

// HandleEvent implements Handler.
func (f HandlerFunc) HandleEvent(e Event) { f(e) }

// Callbacks dispatches each event variant to an optional typed callback.
// Nil callbacks ignore their variant, so a consumer only fills in the events
// it cares about.
type Callbacks struct {
	// OnKeyboard is called for every Keyboard event.
	OnKeyboard func(Keyboard)
	// OnMouseMoveRelative is called for every MouseMoveRelative event.
	OnMouseMoveRelative func(MouseMoveRelative)
	// OnMouseMoveAbsolute is called for every MouseMoveAbsolute event.
	OnMouseMoveAbsolute func(MouseMoveAbsolute)
	// OnMouseButton is called for every MouseButton event.
	OnMouseButton func(MouseButton)
	// OnMouseWheel is called for every MouseWheel event.
	OnMouseWheel func(MouseWheel)
}

// HandleEvent implements Handler.
func (c Callbacks) HandleEvent(e Event) {
	switch ev := e.(type) {
	case Keyboard:
		if c.OnKeyboard != nil {
			c.OnKeyboard(ev)
		}
	case MouseMoveRelative:
		if c.OnMouseMoveRelative != nil {
			c.OnMouseMoveRelative(ev)
		}
	case MouseMoveAbsolute:
		if c.OnMouseMoveAbsolute != nil {
			c.OnMouseMoveAbsolute(ev)
		}
	case MouseButton:
		if c.OnMouseButton != nil {
			c.OnMouseButton(ev)
		}
	case MouseWheel:
		if c.OnMouseWheel != nil {
			c.OnMouseWheel(ev)
		}
	}
}
