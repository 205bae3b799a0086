package equeue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymore-io/winput/pkg/events"
)

func TestFIFOOrder(t *testing.T) {
	q := New()

	q.Push(events.MouseMoveRelative{DX: 1})
	q.Push(events.MouseMoveRelative{DX: 2})
	q.Push(events.MouseMoveRelative{DX: 3})
	require.Equal(t, 3, q.Len())

	for want := int32(1); want <= 3; want++ {
		e, ok := q.TryPop()
		require.True(t, ok)
		assert.Equal(t, want, e.(events.MouseMoveRelative).DX)
	}

	_, ok := q.TryPop()
	assert.False(t, ok, "drained queue should have nothing to pop")
}

func TestPopBlocksUntilPush(t *testing.T) {
	q := New()

	var wg sync.WaitGroup
	wg.Add(1)
	var got events.Event
	go func() {
		defer wg.Done()
		e, ok := q.Pop()
		assert.True(t, ok)
		got = e
	}()

	// Give the consumer a moment to park before producing.
	time.Sleep(10 * time.Millisecond)
	q.Push(events.Keyboard{ScanCode: 42})
	wg.Wait()

	assert.Equal(t, uint32(42), got.(events.Keyboard).ScanCode)
}

func TestPopTimeout(t *testing.T) {
	q := New()

	start := time.Now()
	_, ok := q.PopTimeout(20 * time.Millisecond)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	q.Push(events.MouseWheel{Delta: 1})
	e, ok := q.PopTimeout(time.Second)
	require.True(t, ok)
	assert.Equal(t, float64(1), e.(events.MouseWheel).Delta)
}

func TestCloseKeepsBacklogReceivable(t *testing.T) {
	q := New()

	q.Push(events.MouseMoveRelative{DX: 1})
	q.Push(events.MouseMoveRelative{DX: 2})
	q.Close()
	require.True(t, q.Closed())

	// Pushes after close are dropped.
	q.Push(events.MouseMoveRelative{DX: 3})

	e, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, int32(1), e.(events.MouseMoveRelative).DX)
	e, ok = q.Pop()
	require.True(t, ok)
	assert.Equal(t, int32(2), e.(events.MouseMoveRelative).DX)

	// Backlog drained: Pop reports the closure instead of blocking.
	_, ok = q.Pop()
	assert.False(t, ok)

	// Idempotent.
	q.Close()
	require.True(t, q.Closed())
}

func TestCloseWakesBlockedConsumer(t *testing.T) {
	q := New()

	done := make(chan bool, 1)
	go func() {
		_, ok := q.Pop()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		assert.False(t, ok, "Pop on a closed empty queue should report false")
	case <-time.After(2 * time.Second):
		t.Fatal("Pop did not wake on close")
	}
}

func TestDrain(t *testing.T) {
	q := New()

	for i := 0; i < 5; i++ {
		q.Push(events.Keyboard{})
	}
	assert.Equal(t, 5, q.Drain())
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, q.Drain())
}

func TestConcurrentProducers(t *testing.T) {
	q := New()

	const producers = 8
	const perProducer = 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(events.MouseMoveRelative{DX: 1})
			}
		}()
	}

	received := 0
	donePush := make(chan struct{})
	go func() { wg.Wait(); close(donePush) }()

	deadline := time.After(5 * time.Second)
	for received < producers*perProducer {
		if _, ok := q.PopTimeout(10 * time.Millisecond); ok {
			received++
			continue
		}
		select {
		case <-deadline:
			t.Fatalf("Received %d of %d events before deadline", received, producers*perProducer)
		default:
		}
	}
	<-donePush

	assert.Equal(t, 0, q.Len())
}
