package notifier

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch chan uint64) uint64 {
	t.Helper()
	select {
	case gen := <-ch:
		return gen
	case <-time.After(100 * time.Millisecond):
		t.Fatal("listener did not receive broadcast")
		return 0
	}
}

func TestNotifier_SubscribeUnsubscribe(t *testing.T) {
	n := New()

	ch := n.Subscribe()
	require.NotNil(t, ch)
	assert.Equal(t, 1, n.Len())

	n.Unsubscribe(ch)
	assert.Equal(t, 0, n.Len())

	_, open := <-ch
	assert.False(t, open, "unsubscribed channel is closed")

	// A second unsubscribe is a no-op.
	n.Unsubscribe(ch)
}

func TestNotifier_Broadcast(t *testing.T) {
	n := New()

	ch1 := n.Subscribe()
	ch2 := n.Subscribe()
	defer n.Unsubscribe(ch1)
	defer n.Unsubscribe(ch2)

	n.Broadcast(3)

	assert.Equal(t, uint64(3), receive(t, ch1))
	assert.Equal(t, uint64(3), receive(t, ch2))
}

func TestNotifier_BroadcastKeepsNewestGeneration(t *testing.T) {
	n := New()

	ch := n.Subscribe()
	defer n.Unsubscribe(ch)

	done := make(chan struct{})
	go func() {
		n.Broadcast(1)
		n.Broadcast(2)
		n.Broadcast(5)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Broadcast blocked on a full channel")
	}

	assert.Equal(t, uint64(5), receive(t, ch))
	select {
	case gen := <-ch:
		t.Fatalf("unexpected extra generation %d", gen)
	default:
	}
}

func TestNotifier_Concurrent(t *testing.T) {
	n := New()

	var wg sync.WaitGroup
	const numGoroutines = 10

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(gen uint64) {
			defer wg.Done()
			ch := n.Subscribe()
			n.Broadcast(gen)
			n.Unsubscribe(ch)
		}(uint64(i))
	}

	wg.Wait()
	assert.Equal(t, 0, n.Len())
}
