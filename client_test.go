package winput

import (
	"sync"
	"testing"
	"time"

	"github.com/gymore-io/winput/internal/hook"
	"github.com/gymore-io/winput/internal/hook/hooktest"
	"github.com/gymore-io/winput/pkg/errors"
	"github.com/gymore-io/winput/pkg/events"
	"github.com/gymore-io/winput/pkg/keys"
	"github.com/gymore-io/winput/pkg/logging"
)

// newTestClient builds a client wired to an in-memory backend with a short
// poll interval so teardown assertions settle quickly.
func newTestClient(t *testing.T, installer hook.Installer) Client {
	t.Helper()

	c, err := New(
		WithInstaller(installer),
		WithLogger(&logging.Nop),
		WithPollInterval(time.Millisecond),
	)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}

// waitFor polls cond until it holds or the deadline expires.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

// collector records every event it is handed.
type collector struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *collector) HandleEvent(e events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (c *collector) snapshot() []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]events.Event, len(c.events))
	copy(out, c.events)
	return out
}

func TestSubscribeStartsAndStopsSession(t *testing.T) {
	installer := hooktest.New()
	c := newTestClient(t, installer)

	if c.IsActive() {
		t.Fatal("Client should be idle before any subscription")
	}

	var col collector
	handle, err := c.Subscribe(&col)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if !c.IsActive() {
		t.Error("Client should be active after first subscription")
	}
	for _, kind := range hook.Kinds {
		if got := installer.Installs(kind); got != 1 {
			t.Errorf("Expected one %s install, got %d", kind, got)
		}
		if !installer.Installed(kind) {
			t.Errorf("Expected %s hook to be installed", kind)
		}
	}

	installer.InjectKey(uint16(keys.A), 30, false)
	waitFor(t, "key event delivery", func() bool { return col.len() == 1 })

	kb, ok := col.snapshot()[0].(events.Keyboard)
	if !ok {
		t.Fatalf("Expected a keyboard event, got %T", col.snapshot()[0])
	}
	if kb.Key != keys.A || kb.ScanCode != 30 || kb.Action != events.Press {
		t.Errorf("Unexpected keyboard event: %+v", kb)
	}

	if err := handle.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Close blocks until teardown completes, so assertions need no waiting.
	if c.IsActive() {
		t.Error("Client should be idle after last unsubscribe")
	}
	if got := installer.Active(); got != 0 {
		t.Errorf("Expected no installed hooks after teardown, got %d", got)
	}
	for _, kind := range hook.Kinds {
		if got := installer.Uninstalls(kind); got != 1 {
			t.Errorf("Expected one %s uninstall, got %d", kind, got)
		}
	}
}

func TestConcurrentFirstSubscribersInstallOnce(t *testing.T) {
	installer := hooktest.New()
	c := newTestClient(t, installer)

	const n = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		handles []*Handle
	)
	start := make(chan struct{})

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			h, err := c.Subscribe(events.HandlerFunc(func(events.Event) {}))
			if err != nil {
				t.Errorf("Subscribe failed: %v", err)
				return
			}
			mu.Lock()
			handles = append(handles, h)
			mu.Unlock()
		}()
	}
	close(start)
	wg.Wait()

	if len(handles) != n {
		t.Fatalf("Expected %d handles, got %d", n, len(handles))
	}
	for _, kind := range hook.Kinds {
		if got := installer.Installs(kind); got != 1 {
			t.Errorf("Expected exactly one %s install across %d racers, got %d", kind, n, got)
		}
	}

	for _, h := range handles {
		if err := h.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	}
	if c.IsActive() {
		t.Error("Client should be idle once every handle is closed")
	}
	if got := installer.Active(); got != 0 {
		t.Errorf("Expected no installed hooks, got %d", got)
	}
}

func TestFailedInstallRollsBack(t *testing.T) {
	installer := hooktest.New()
	installer.FailWith(hook.Mouse, errors.NewHookInstallError("mouse", 5, "access denied"))
	c := newTestClient(t, installer)

	_, err := c.Subscribe(events.HandlerFunc(func(events.Event) {}))
	if err == nil {
		t.Fatal("Expected Subscribe to fail when a hook cannot install")
	}
	if !errors.IsHookInstall(err) {
		t.Errorf("Expected a hook install error, got %v", err)
	}

	if c.IsActive() {
		t.Error("Client should be idle after a failed start")
	}
	if got := installer.Active(); got != 0 {
		t.Errorf("Expected the keyboard hook to be rolled back, got %d active", got)
	}
	if got := installer.Uninstalls(hook.Keyboard); got != 1 {
		t.Errorf("Expected one keyboard rollback uninstall, got %d", got)
	}

	// The failure must not poison the client: a later attempt succeeds.
	installer.FailWith(hook.Mouse, nil)
	handle, err := c.Subscribe(events.HandlerFunc(func(events.Event) {}))
	if err != nil {
		t.Fatalf("Subscribe after recovery failed: %v", err)
	}
	if err := handle.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestStartWhileActiveFails(t *testing.T) {
	installer := hooktest.New()
	c := newTestClient(t, installer)

	handle, err := c.Subscribe(events.HandlerFunc(func(events.Event) {}))
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if _, err := c.Start(); !errors.IsAlreadyActive(err) {
		t.Errorf("Expected ErrAlreadyActive, got %v", err)
	}

	if err := handle.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	r, err := c.Start()
	if err != nil {
		t.Fatalf("Start after teardown failed: %v", err)
	}
	if err := r.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}

func TestFanOutDeliversToEveryHandlerInOrder(t *testing.T) {
	installer := hooktest.New()
	c := newTestClient(t, installer)

	const handlers = 4
	cols := make([]*collector, handlers)
	for i := range cols {
		cols[i] = &collector{}
		h, err := c.Subscribe(cols[i])
		if err != nil {
			t.Fatalf("Subscribe %d failed: %v", i, err)
		}
		defer h.Close()
	}

	// A press and release per key, delivered strictly in injection order.
	codes := []keys.Code{keys.A, keys.Escape, keys.F1}
	for _, code := range codes {
		installer.InjectKey(uint16(code), 0, false)
		installer.InjectKey(uint16(code), 0, true)
	}
	want := len(codes) * 2

	for i, col := range cols {
		waitFor(t, "fan-out delivery", func() bool { return col.len() == want })

		got := col.snapshot()
		for j, code := range codes {
			press := got[2*j].(events.Keyboard)
			release := got[2*j+1].(events.Keyboard)
			if press.Key != code || press.Action != events.Press {
				t.Errorf("Handler %d event %d: expected press of %s, got %+v", i, 2*j, code, press)
			}
			if release.Key != code || release.Action != events.Release {
				t.Errorf("Handler %d event %d: expected release of %s, got %+v", i, 2*j+1, release.Key, release)
			}
		}
	}
}

func TestSessionSurvivesUntilLastUnsubscribe(t *testing.T) {
	installer := hooktest.New()
	c := newTestClient(t, installer)

	var first, second collector
	h1, err := c.Subscribe(&first)
	if err != nil {
		t.Fatalf("First subscribe failed: %v", err)
	}
	h2, err := c.Subscribe(&second)
	if err != nil {
		t.Fatalf("Second subscribe failed: %v", err)
	}

	installer.InjectButton(hook.ButtonLeftDown)
	waitFor(t, "both handlers to see the press", func() bool {
		return first.len() == 1 && second.len() == 1
	})

	if err := h1.Close(); err != nil {
		t.Fatalf("Closing the first handle failed: %v", err)
	}
	if !c.IsActive() {
		t.Fatal("Session should survive while a subscriber remains")
	}
	if got := installer.Active(); got != len(hook.Kinds) {
		t.Fatalf("Hooks should stay installed, got %d active", got)
	}

	installer.InjectButton(hook.ButtonLeftUp)
	waitFor(t, "remaining handler to see the release", func() bool {
		return second.len() == 2
	})
	if first.len() != 1 {
		t.Errorf("Closed handler received %d events, expected 1", first.len())
	}

	if err := h2.Close(); err != nil {
		t.Fatalf("Closing the last handle failed: %v", err)
	}
	if c.IsActive() {
		t.Error("Client should be idle after the last unsubscribe")
	}
	if got := installer.Active(); got != 0 {
		t.Errorf("Expected full teardown, got %d active hooks", got)
	}
}

func TestStaggeredSubscribersSeeOnlyTheirSpan(t *testing.T) {
	installer := hooktest.New()
	c := newTestClient(t, installer)

	var h1Events, h2Events collector

	h1, err := c.Subscribe(&h1Events)
	if err != nil {
		t.Fatalf("Subscribing H1 failed: %v", err)
	}

	installer.InjectKey(uint16(keys.A), 0, false)
	waitFor(t, "H1 to see the key press", func() bool { return h1Events.len() == 1 })
	kb := h1Events.snapshot()[0].(events.Keyboard)
	if kb.Key != keys.A || kb.Action != events.Press {
		t.Errorf("Unexpected first event: %+v", kb)
	}

	h2, err := c.Subscribe(&h2Events)
	if err != nil {
		t.Fatalf("Subscribing H2 failed: %v", err)
	}

	installer.InjectWheel(1)
	waitFor(t, "both to see the wheel tick", func() bool {
		return h1Events.len() == 2 && h2Events.len() == 1
	})
	wheel := h2Events.snapshot()[0].(events.MouseWheel)
	if wheel.Delta != 1.0 || wheel.Direction != events.Vertical {
		t.Errorf("Unexpected wheel event: %+v", wheel)
	}

	if err := h1.Close(); err != nil {
		t.Fatalf("Closing H1 failed: %v", err)
	}

	installer.InjectButton(hook.ButtonLeftUp)
	waitFor(t, "H2 to see the button release", func() bool { return h2Events.len() == 2 })
	mb := h2Events.snapshot()[1].(events.MouseButton)
	if mb.Button != events.Left || mb.Action != events.Release {
		t.Errorf("Unexpected button event: %+v", mb)
	}
	if h1Events.len() != 2 {
		t.Errorf("H1 saw %d events after leaving, expected 2", h1Events.len())
	}

	if err := h2.Close(); err != nil {
		t.Fatalf("Closing H2 failed: %v", err)
	}
	if c.IsActive() {
		t.Error("Client should be idle after the last unsubscribe")
	}
}

func TestSessionRestartsAfterTeardown(t *testing.T) {
	installer := hooktest.New()
	c := newTestClient(t, installer)

	for episode := 1; episode <= 3; episode++ {
		handle, err := c.Subscribe(events.HandlerFunc(func(events.Event) {}))
		if err != nil {
			t.Fatalf("Episode %d subscribe failed: %v", episode, err)
		}
		if err := handle.Close(); err != nil {
			t.Fatalf("Episode %d close failed: %v", episode, err)
		}
		for _, kind := range hook.Kinds {
			if got := installer.Installs(kind); got != episode {
				t.Errorf("Episode %d: expected %d %s installs, got %d", episode, episode, kind, got)
			}
			if got := installer.Uninstalls(kind); got != episode {
				t.Errorf("Episode %d: expected %d %s uninstalls, got %d", episode, episode, kind, got)
			}
		}
	}
}

func TestHandleCloseIsSingleUse(t *testing.T) {
	installer := hooktest.New()
	c := newTestClient(t, installer)

	handle, err := c.Subscribe(events.HandlerFunc(func(events.Event) {}))
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := handle.Close(); err != nil {
		t.Fatalf("First close failed: %v", err)
	}
	if err := handle.Close(); !errors.IsHandleReleased(err) {
		t.Errorf("Expected ErrHandleReleased on second close, got %v", err)
	}
	if err := c.Unsubscribe(handle); !errors.IsHandleReleased(err) {
		t.Errorf("Expected ErrHandleReleased through Unsubscribe, got %v", err)
	}
}

func TestSubscribeNilHandler(t *testing.T) {
	c := newTestClient(t, hooktest.New())

	if _, err := c.Subscribe(nil); err == nil {
		t.Error("Expected an error for a nil handler")
	}
	if c.IsActive() {
		t.Error("A rejected subscription must not start a session")
	}
}

func TestOptionValidation(t *testing.T) {
	if _, err := New(WithInstaller(nil)); err == nil {
		t.Error("Expected an error for a nil installer")
	}
	if _, err := New(WithLogger(nil)); err == nil {
		t.Error("Expected an error for a nil logger")
	}
	if _, err := New(WithPollInterval(0)); err == nil {
		t.Error("Expected an error for a zero poll interval")
	}
}
