//go:build windows

package hook

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/gymore-io/winput/pkg/errors"
)

// The Windows backend registers raw input devices against a message-only
// window and pumps its queue on a dedicated OS thread. The window procedure
// is the only code that touches the emit functions, so the callback path
// stays single-threaded and lock-free.

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procRegisterClassExW        = user32.NewProc("RegisterClassExW")
	procUnregisterClassW        = user32.NewProc("UnregisterClassW")
	procCreateWindowExW         = user32.NewProc("CreateWindowExW")
	procDestroyWindow           = user32.NewProc("DestroyWindow")
	procDefWindowProcW          = user32.NewProc("DefWindowProcW")
	procGetMessageW             = user32.NewProc("GetMessageW")
	procTranslateMessage        = user32.NewProc("TranslateMessage")
	procDispatchMessageW        = user32.NewProc("DispatchMessageW")
	procPostMessageW            = user32.NewProc("PostMessageW")
	procPostQuitMessage         = user32.NewProc("PostQuitMessage")
	procRegisterRawInputDevices = user32.NewProc("RegisterRawInputDevices")
	procGetRawInputData         = user32.NewProc("GetRawInputData")
)

const (
	wmInput   = 0x00FF
	wmClose   = 0x0010
	wmDestroy = 0x0002

	// wmRequest asks the pump thread to drain its control queue.
	wmRequest = 0x0400 // WM_APP range start

	hwndMessage = ^uintptr(2) // HWND_MESSAGE

	ridevInputsink = 0x00000100
	ridevNoLegacy  = 0x00000030
	ridevRemove    = 0x00000001

	ridInput = 0x10000003

	rimTypeMouse    = 0
	rimTypeKeyboard = 1
	rimTypeHID      = 2

	hidUsagePageGeneric = 0x01
	hidUsageMouse       = 0x02
	hidUsageKeyboard    = 0x06
)

type wndClassExW struct {
	Size       uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   windows.Handle
	Icon       windows.Handle
	Cursor     windows.Handle
	Background windows.Handle
	MenuName   *uint16
	ClassName  *uint16
	IconSm     windows.Handle
}

type msg struct {
	HWND    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

type rawInputDevice struct {
	UsagePage uint16
	Usage     uint16
	Flags     uint32
	Target    uintptr
}

type rawInputHeader struct {
	Type   uint32
	Size   uint32
	Device windows.Handle
	WParam uintptr
}

type rawKeyboard struct {
	MakeCode         uint16
	Flags            uint16
	Reserved         uint16
	VKey             uint16
	Message          uint32
	ExtraInformation uint32
}

type rawMouse struct {
	Flags            uint16
	_                uint16
	ButtonFlags      uint16
	ButtonData       uint16
	RawButtons       uint32
	LastX            int32
	LastY            int32
	ExtraInformation uint32
}

// rawKeyBreakFlag is the RI_KEY_BREAK bit of rawKeyboard.Flags.
const rawKeyBreakFlag = 0x0001

// Default returns the platform capture backend.
func Default() Installer {
	return defaultInstaller
}

var defaultInstaller = &windowsInstaller{}

// windowsInstaller shares one message pump between the keyboard and mouse
// registrations and tears it down when the last one is removed.
type windowsInstaller struct {
	mu   sync.Mutex
	pump *messagePump
}

// Install implements Installer.
func (i *windowsInstaller) Install(kind Kind, emit func(RawEvent)) (Hook, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	started := false
	if i.pump == nil {
		pump, err := startPump()
		if err != nil {
			return nil, errors.WrapHookInstall(kind.String(), err)
		}
		i.pump = pump
		started = true
	}

	if err := i.pump.register(kind, emit); err != nil {
		if started {
			i.pump.stop()
			i.pump = nil
		}
		return nil, err
	}

	return &windowsHook{installer: i, kind: kind}, nil
}

type windowsHook struct {
	installer *windowsInstaller
	kind      Kind
}

// Uninstall implements Hook.
func (h *windowsHook) Uninstall() error {
	i := h.installer
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.pump == nil {
		return errors.ErrNotActive
	}

	err := i.pump.unregister(h.kind)
	if i.pump.registered == 0 {
		i.pump.stop()
		i.pump = nil
	}
	return err
}

// pumpRequest is a control operation executed on the pump thread, where the
// raw input device table and the emit map live.
type pumpRequest struct {
	kind   Kind
	emit   func(RawEvent) // nil means unregister
	result chan error
}

type messagePump struct {
	hwnd       uintptr
	className  *uint16
	requests   chan pumpRequest
	done       chan struct{}
	registered int

	// Pump-thread state. Only the window procedure touches these.
	emitters map[Kind]func(RawEvent)
	buffer   []byte
}

// pumpStartResult carries window creation success or failure back to the
// caller of startPump.
type pumpStartResult struct {
	hwnd uintptr
	err  error
}

// startPump spawns the pump thread, creates the message-only window on it
// and waits until the window exists (or creation failed).
func startPump() (*messagePump, error) {
	p := &messagePump{
		// Buffered so register can queue its request before the wake
		// message reaches the pump thread.
		requests: make(chan pumpRequest, 4),
		done:     make(chan struct{}),
		emitters: make(map[Kind]func(RawEvent)),
	}

	ready := make(chan pumpStartResult, 1)
	go p.run(ready)

	res := <-ready
	if res.err != nil {
		return nil, res.err
	}
	p.hwnd = res.hwnd
	return p, nil
}

// register installs the raw input device for kind on the pump thread.
func (p *messagePump) register(kind Kind, emit func(RawEvent)) error {
	req := pumpRequest{kind: kind, emit: emit, result: make(chan error, 1)}
	p.requests <- req
	p.post(wmRequest)
	if err := <-req.result; err != nil {
		return err
	}
	p.registered++
	return nil
}

// unregister removes the raw input device for kind.
func (p *messagePump) unregister(kind Kind) error {
	req := pumpRequest{kind: kind, result: make(chan error, 1)}
	p.requests <- req
	p.post(wmRequest)
	err := <-req.result
	p.registered--
	return err
}

// stop closes the window and joins the pump thread.
func (p *messagePump) stop() {
	p.post(wmClose)
	<-p.done
}

func (p *messagePump) post(message uintptr) {
	//nolint:errcheck // Posting to our own live window; the pump exits on failure paths anyway.
	procPostMessageW.Call(p.hwnd, message, 0, 0)
}

// run owns the pump thread: window creation, the message loop, and cleanup.
func (p *messagePump) run(ready chan<- pumpStartResult) {
	// Raw input is delivered to the thread that created the target window,
	// so the whole lifetime of the window stays on this locked thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(p.done)

	className, err := windows.UTF16PtrFromString("winput_capture")
	if err != nil {
		ready <- pumpStartResult{err: err}
		return
	}
	p.className = className

	instance, err := windows.GetModuleHandle(nil)
	if err != nil {
		ready <- pumpStartResult{err: err}
		return
	}

	wndProc := windows.NewCallback(p.wndProc)

	wc := wndClassExW{
		WndProc:   wndProc,
		Instance:  instance,
		ClassName: className,
	}
	wc.Size = uint32(unsafe.Sizeof(wc))

	atom, _, lastErr := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc)))
	if atom == 0 {
		ready <- pumpStartResult{err: fmt.Errorf("RegisterClassEx: %w", lastErr)}
		return
	}
	defer procUnregisterClassW.Call(uintptr(unsafe.Pointer(className)), uintptr(instance)) //nolint:errcheck

	hwnd, _, lastErr := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(className)),
		uintptr(unsafe.Pointer(className)),
		0,
		0, 0, 0, 0,
		hwndMessage,
		0,
		uintptr(instance),
		0,
	)
	if hwnd == 0 {
		ready <- pumpStartResult{err: fmt.Errorf("CreateWindowEx: %w", lastErr)}
		return
	}
	p.hwnd = hwnd

	ready <- pumpStartResult{hwnd: hwnd}

	var m msg
	for {
		r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if r == 0 || int32(r) == -1 {
			// WM_QUIT or a dead window; either way the pump is done.
			return
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m))) //nolint:errcheck
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m))) //nolint:errcheck
	}
}

// wndProc is the window procedure. It runs on the pump thread for every
// delivered message; wmInput is the hot path.
func (p *messagePump) wndProc(hwnd uintptr, message uint32, wparam, lparam uintptr) uintptr {
	switch message {
	case wmInput:
		p.handleRawInput(lparam)

	case wmRequest:
		p.drainRequests()

	case wmClose:
		procDestroyWindow.Call(hwnd) //nolint:errcheck
		return 0

	case wmDestroy:
		procPostQuitMessage.Call(0) //nolint:errcheck
		return 0
	}

	r, _, _ := procDefWindowProcW.Call(hwnd, uintptr(message), wparam, lparam)
	return r
}

// drainRequests executes queued register/unregister operations. Runs on the
// pump thread so the emit map never needs a lock.
func (p *messagePump) drainRequests() {
	for {
		select {
		case req := <-p.requests:
			if req.emit != nil {
				err := p.registerDevice(req.kind)
				if err == nil {
					p.emitters[req.kind] = req.emit
				}
				req.result <- err
			} else {
				err := p.unregisterDevice(req.kind)
				delete(p.emitters, req.kind)
				req.result <- err
			}
		default:
			return
		}
	}
}

func usageFor(kind Kind) uint16 {
	if kind == Keyboard {
		return hidUsageKeyboard
	}
	return hidUsageMouse
}

func (p *messagePump) registerDevice(kind Kind) error {
	rid := rawInputDevice{
		UsagePage: hidUsagePageGeneric,
		Usage:     usageFor(kind),
		Flags:     ridevNoLegacy | ridevInputsink,
		Target:    p.hwnd,
	}

	r, _, lastErr := procRegisterRawInputDevices.Call(
		uintptr(unsafe.Pointer(&rid)),
		1,
		unsafe.Sizeof(rid),
	)
	if r == 0 {
		code := uint32(0)
		if errno, ok := lastErr.(windows.Errno); ok {
			code = uint32(errno)
		}
		return errors.NewHookInstallError(kind.String(), code, lastErr.Error())
	}
	return nil
}

func (p *messagePump) unregisterDevice(kind Kind) error {
	rid := rawInputDevice{
		UsagePage: hidUsagePageGeneric,
		Usage:     usageFor(kind),
		Flags:     ridevRemove,
	}

	r, _, lastErr := procRegisterRawInputDevices.Call(
		uintptr(unsafe.Pointer(&rid)),
		1,
		unsafe.Sizeof(rid),
	)
	if r == 0 {
		return fmt.Errorf("removing %s raw input device: %w", kind, lastErr)
	}
	return nil
}

// handleRawInput reads one raw input record into the amortized buffer and
// forwards it as a RawEvent to the registered emitter.
func (p *messagePump) handleRawInput(lparam uintptr) {
	var size uint32
	headerSize := uint32(unsafe.Sizeof(rawInputHeader{}))

	r, _, _ := procGetRawInputData.Call(lparam, ridInput, 0, uintptr(unsafe.Pointer(&size)), uintptr(headerSize))
	if int32(r) == -1 || size == 0 {
		return
	}

	if uint32(cap(p.buffer)) < size {
		p.buffer = make([]byte, size)
	}
	p.buffer = p.buffer[:size]

	r, _, _ = procGetRawInputData.Call(
		lparam,
		ridInput,
		uintptr(unsafe.Pointer(&p.buffer[0])),
		uintptr(unsafe.Pointer(&size)),
		uintptr(headerSize),
	)
	if uint32(r) != size {
		return
	}

	header := (*rawInputHeader)(unsafe.Pointer(&p.buffer[0]))
	body := unsafe.Pointer(&p.buffer[headerSize])

	switch header.Type {
	case rimTypeKeyboard:
		emit, ok := p.emitters[Keyboard]
		if !ok {
			return
		}
		kb := (*rawKeyboard)(body)
		flags := uint16(0)
		if kb.Flags&rawKeyBreakFlag != 0 {
			flags = RawKeyBreak
		}
		emit(RawEvent{
			Kind:     Keyboard,
			VKey:     kb.VKey,
			ScanCode: kb.MakeCode,
			KeyFlags: flags,
		})

	case rimTypeMouse:
		emit, ok := p.emitters[Mouse]
		if !ok {
			return
		}
		ms := (*rawMouse)(body)
		emit(RawEvent{
			Kind:        Mouse,
			MouseFlags:  ms.Flags,
			ButtonFlags: ms.ButtonFlags,
			ButtonData:  int16(ms.ButtonData),
			LastX:       ms.LastX,
			LastY:       ms.LastY,
		})

	case rimTypeHID:
		// Other HID devices are not captured.
	}
}
