// Package notifier fans out "the lineage tree was reloaded" events to
// connected browsers.
package notifier

import "sync"

// Notifier broadcasts tree generations to all subscribed listeners.
// A listener only ever needs the newest generation, so each channel holds
// at most one pending value and older values are replaced.
type Notifier struct {
	mu        sync.Mutex
	listeners map[chan uint64]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan uint64]struct{}),
	}
}

// Subscribe returns a channel that receives the generation of every reload.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe() chan uint64 {
	ch := make(chan uint64, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.listeners[ch]; !ok {
		return
	}
	delete(n.listeners, ch)
	close(ch)
}

// Broadcast sends generation to all listeners without blocking. A pending,
// unread generation is replaced by the newer one.
func (n *Notifier) Broadcast(generation uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for ch := range n.listeners {
		select {
		case <-ch:
		default:
		}
		ch <- generation
	}
}

// Len returns the number of subscribed listeners.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}
