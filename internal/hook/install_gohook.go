//go:build (linux || darwin) && cgo

package hook

import (
	"sync"

	gohook "github.com/robotn/gohook"

	"github.com/gymore-io/winput/pkg/errors"
)

// The Linux and macOS backend captures through gohook's global event tap and
// reshapes its events into RawEvent payloads. gohook owns one process-wide
// tap, so both hook kinds share a single pump goroutine that routes by kind.

// Default returns the platform capture backend.
func Default() Installer {
	return defaultInstaller
}

var defaultInstaller = &gohookInstaller{}

type gohookInstaller struct {
	mu       sync.Mutex
	emitters map[Kind]func(RawEvent)
	stop     chan struct{}
	done     chan struct{}

	// lastX/lastY reconstruct motion deltas from the absolute positions
	// gohook reports. Pump goroutine only.
	lastX, lastY int16
	tracked      bool
}

// Install implements Installer.
func (i *gohookInstaller) Install(kind Kind, emit func(RawEvent)) (Hook, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.emitters == nil {
		i.emitters = make(map[Kind]func(RawEvent))
	}
	if _, ok := i.emitters[kind]; ok {
		return nil, errors.NewHookInstallError(kind.String(), 0, "hook already installed")
	}

	if len(i.emitters) == 0 {
		i.stop = make(chan struct{})
		i.done = make(chan struct{})
		i.tracked = false
		go i.pump(gohook.Start(), i.stop, i.done)
	}

	i.emitters[kind] = emit
	return &gohookHook{installer: i, kind: kind}, nil
}

type gohookHook struct {
	installer *gohookInstaller
	kind      Kind
}

// Uninstall implements Hook.
func (h *gohookHook) Uninstall() error {
	i := h.installer
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.emitters[h.kind]; !ok {
		return errors.ErrNotActive
	}
	delete(i.emitters, h.kind)

	if len(i.emitters) == 0 {
		close(i.stop)
		gohook.End()
		<-i.done
	}
	return nil
}

// pump drains the gohook event stream until the tap is stopped.
func (i *gohookInstaller) pump(events <-chan gohook.Event, stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if raw, kind, ok := convert(ev, &i.lastX, &i.lastY, &i.tracked); ok {
				i.mu.Lock()
				emit := i.emitters[kind]
				i.mu.Unlock()
				if emit != nil {
					emit(raw)
				}
			}
		}
	}
}

// convert reshapes one gohook event. Unknown mouse buttons are mapped onto a
// bit outside the known table so the translation layer rejects them loudly
// instead of dropping input.
func convert(ev gohook.Event, lastX, lastY *int16, tracked *bool) (RawEvent, Kind, bool) {
	switch ev.Kind {
	case gohook.KeyDown, gohook.KeyHold:
		return RawEvent{Kind: Keyboard, VKey: ev.Rawcode}, Keyboard, true

	case gohook.KeyUp:
		return RawEvent{Kind: Keyboard, VKey: ev.Rawcode, KeyFlags: RawKeyBreak}, Keyboard, true

	case gohook.MouseDown:
		return RawEvent{Kind: Mouse, ButtonFlags: buttonFlag(ev.Button, true)}, Mouse, true

	case gohook.MouseUp:
		return RawEvent{Kind: Mouse, ButtonFlags: buttonFlag(ev.Button, false)}, Mouse, true

	case gohook.MouseMove, gohook.MouseDrag:
		if !*tracked {
			*tracked = true
			*lastX, *lastY = ev.X, ev.Y
			return RawEvent{}, Mouse, false
		}
		dx, dy := int32(ev.X-*lastX), int32(ev.Y-*lastY)
		*lastX, *lastY = ev.X, ev.Y
		if dx == 0 && dy == 0 {
			return RawEvent{}, Mouse, false
		}
		return RawEvent{Kind: Mouse, LastX: dx, LastY: dy}, Mouse, true

	case gohook.MouseWheel:
		flag := WheelVertical
		if ev.Direction == horizontalWheel {
			flag = WheelHorizontal
		}
		return RawEvent{
			Kind:        Mouse,
			ButtonFlags: flag,
			ButtonData:  int16(ev.Rotation * WheelDetent),
		}, Mouse, true

	default:
		return RawEvent{}, 0, false
	}
}

// horizontalWheel is libuiohook's horizontal wheel direction code.
const horizontalWheel = 4

// unknownButtonFlag sits outside knownButtonFlags so translation rejects it.
const unknownButtonFlag uint16 = 0x8000

func buttonFlag(button uint16, down bool) uint16 {
	var downFlag, upFlag uint16
	switch button {
	case 1:
		downFlag, upFlag = ButtonLeftDown, ButtonLeftUp
	case 2:
		downFlag, upFlag = ButtonRightDown, ButtonRightUp
	case 3:
		downFlag, upFlag = ButtonMiddleDown, ButtonMiddleUp
	case 4:
		downFlag, upFlag = ButtonX1Down, ButtonX1Up
	case 5:
		downFlag, upFlag = ButtonX2Down, ButtonX2Up
	default:
		return unknownButtonFlag
	}
	if down {
		return downFlag
	}
	return upFlag
}
