package hook

import (
	"github.com/gymore-io/winput/pkg/errors"
	"github.com/gymore-io/winput/pkg/events"
	"github.com/gymore-io/winput/pkg/keys"
)

// absoluteRange is the span of normalized absolute device coordinates.
const absoluteRange = 65535.0

// Translator converts raw payloads into domain events. One raw mouse payload
// can expand into several events (motion plus button transitions plus wheel),
// so Translate returns a slice backed by an amortized internal buffer.
//
// A Translator is not safe for concurrent use; it belongs to the single
// capture callback thread, and the returned slice is valid until the next
// Translate call.
type Translator struct {
	buf []events.Event
}

// Translate converts one raw payload. The translation tables are exhaustive
// over the documented platform codes: any unrecognized bit or reserved key
// code yields a TranslationError rather than a silently dropped payload.
func (t *Translator) Translate(raw RawEvent) ([]events.Event, error) {
	t.buf = t.buf[:0]

	switch raw.Kind {
	case Keyboard:
		return t.keyboard(raw)
	case Mouse:
		return t.mouse(raw)
	default:
		return nil, errors.NewTranslationError("device", uint32(raw.Kind))
	}
}

func (t *Translator) keyboard(raw RawEvent) ([]events.Event, error) {
	code := keys.Code(raw.VKey)
	if raw.VKey > 0xFF || !code.Valid() {
		return nil, errors.NewTranslationError("keyboard", uint32(raw.VKey))
	}

	t.buf = append(t.buf, events.Keyboard{
		Key:      code,
		ScanCode: uint32(raw.ScanCode),
		Action:   events.ActionFromRelease(raw.KeyFlags&RawKeyBreak != 0),
	})
	return t.buf, nil
}

func (t *Translator) mouse(raw RawEvent) ([]events.Event, error) {
	if raw.ButtonFlags&^knownButtonFlags != 0 {
		return nil, errors.NewTranslationError("mouse", uint32(raw.ButtonFlags))
	}

	if raw.MouseFlags&MouseMoveAbsolute != 0 {
		t.buf = append(t.buf, events.MouseMoveAbsolute{
			X:              float64(raw.LastX) / absoluteRange,
			Y:              float64(raw.LastY) / absoluteRange,
			VirtualDesktop: raw.MouseFlags&MouseVirtualDesktop != 0,
		})
	} else if raw.LastX != 0 || raw.LastY != 0 {
		t.buf = append(t.buf, events.MouseMoveRelative{
			DX: raw.LastX,
			DY: raw.LastY,
		})
	}

	for _, m := range buttonTable {
		if raw.ButtonFlags&m.flag != 0 {
			t.buf = append(t.buf, events.MouseButton{
				Button: m.button,
				Action: m.action,
			})
		}
	}

	if raw.ButtonFlags&WheelVertical != 0 {
		t.buf = append(t.buf, events.MouseWheel{
			Delta:     float64(raw.ButtonData) / WheelDetent,
			Direction: events.Vertical,
		})
	}
	if raw.ButtonFlags&WheelHorizontal != 0 {
		t.buf = append(t.buf, events.MouseWheel{
			Delta:     float64(raw.ButtonData) / WheelDetent,
			Direction: events.Horizontal,
		})
	}

	return t.buf, nil
}

// buttonTable maps each button transition bit to its domain event. Down and
// up rows are symmetric for every button, left included.
var buttonTable = []struct {
	flag   uint16
	button events.Button
	action events.Action
}{
	{ButtonLeftDown, events.Left, events.Press},
	{ButtonLeftUp, events.Left, events.Release},
	{ButtonRightDown, events.Right, events.Press},
	{ButtonRightUp, events.Right, events.Release},
	{ButtonMiddleDown, events.Middle, events.Press},
	{ButtonMiddleUp, events.Middle, events.Release},
	{ButtonX1Down, events.X1, events.Press},
	{ButtonX1Up, events.X1, events.Release},
	{ButtonX2Down, events.X2, events.Press},
	{ButtonX2Up, events.X2, events.Release},
}
