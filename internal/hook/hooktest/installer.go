// Package hooktest provides an in-memory hook.Installer for tests. It
// delivers injected raw payloads to whatever is currently installed and
// keeps install/uninstall accounting so lifecycle tests can assert on
// exactly-once installation and deterministic teardown.
package hooktest

import (
	"sync"

	"github.com/gymore-io/winput/internal/hook"
	"github.com/gymore-io/winput/pkg/errors"
)

// Installer is an in-memory capture backend.
type Installer struct {
	mu       sync.Mutex
	emitters map[hook.Kind]func(hook.RawEvent)
	failures map[hook.Kind]error

	installs   map[hook.Kind]int
	uninstalls map[hook.Kind]int
}

// New creates an Installer with no forced failures.
func New() *Installer {
	return &Installer{
		emitters:   make(map[hook.Kind]func(hook.RawEvent)),
		failures:   make(map[hook.Kind]error),
		installs:   make(map[hook.Kind]int),
		uninstalls: make(map[hook.Kind]int),
	}
}

// FailWith forces every subsequent Install of kind to fail with err.
func (i *Installer) FailWith(kind hook.Kind, err error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.failures[kind] = err
}

// Install implements hook.Installer.
func (i *Installer) Install(kind hook.Kind, emit func(hook.RawEvent)) (hook.Hook, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.failures[kind]; err != nil {
		return nil, err
	}
	if _, ok := i.emitters[kind]; ok {
		return nil, errors.NewHookInstallError(kind.String(), 0, "hook already installed")
	}

	i.emitters[kind] = emit
	i.installs[kind]++
	return &testHook{installer: i, kind: kind}, nil
}

type testHook struct {
	installer *Installer
	kind      hook.Kind
	once      sync.Once
}

// Uninstall implements hook.Hook.
func (h *testHook) Uninstall() error {
	err := errors.ErrNotActive
	h.once.Do(func() {
		i := h.installer
		i.mu.Lock()
		defer i.mu.Unlock()
		delete(i.emitters, h.kind)
		i.uninstalls[h.kind]++
		err = nil
	})
	return err
}

// Inject delivers a raw payload to the installed emitter of its kind.
// It reports whether anything was listening.
func (i *Installer) Inject(raw hook.RawEvent) bool {
	i.mu.Lock()
	emit := i.emitters[raw.Kind]
	i.mu.Unlock()

	if emit == nil {
		return false
	}
	emit(raw)
	return true
}

// InjectKey delivers a keyboard transition.
func (i *Installer) InjectKey(vkey uint16, scan uint16, release bool) bool {
	raw := hook.RawEvent{Kind: hook.Keyboard, VKey: vkey, ScanCode: scan}
	if release {
		raw.KeyFlags = hook.RawKeyBreak
	}
	return i.Inject(raw)
}

// InjectButton delivers a single button transition flag.
func (i *Installer) InjectButton(flag uint16) bool {
	return i.Inject(hook.RawEvent{Kind: hook.Mouse, ButtonFlags: flag})
}

// InjectWheel delivers a vertical wheel rotation of the given detents.
func (i *Installer) InjectWheel(detents float64) bool {
	return i.Inject(hook.RawEvent{
		Kind:        hook.Mouse,
		ButtonFlags: hook.WheelVertical,
		ButtonData:  int16(detents * hook.WheelDetent),
	})
}

// Installed reports whether a hook of kind is currently installed.
func (i *Installer) Installed(kind hook.Kind) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	_, ok := i.emitters[kind]
	return ok
}

// Installs returns how many times a hook of kind has been installed.
func (i *Installer) Installs(kind hook.Kind) int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.installs[kind]
}

// Uninstalls returns how many times a hook of kind has been uninstalled.
func (i *Installer) Uninstalls(kind hook.Kind) int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.uninstalls[kind]
}

// Active returns the number of currently installed hooks.
func (i *Installer) Active() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.emitters)
}
