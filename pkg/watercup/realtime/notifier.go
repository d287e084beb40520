package realtime

import (
	"context"
	"sync"
)

// Notifier is the change channel for group leaderboards. Publish emits a
// bare "something changed" signal for a group after a durable write;
// Subscribe returns a signal channel plus a release func the subscriber
// must call when it stops observing the group. Delivery is at-least-once
// and carries no payload: consumers recompute, they don't patch.
type Notifier interface {
	Publish(ctx context.Context, groupID string) error
	Subscribe(ctx context.Context, groupID string) (<-chan struct{}, func(), error)
}

// MemoryNotifier is an in-process Notifier for single-node deployments
// and tests. Signals are coalesced per subscriber: a slow consumer sees
// at least one signal for any burst of publishes.
type MemoryNotifier struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

// NewMemoryNotifier creates an in-process notifier
func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{subs: make(map[string]map[chan struct{}]struct{})}
}

// Publish signals every subscriber of the group
func (n *MemoryNotifier) Publish(ctx context.Context, groupID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.subs[groupID] {
		select {
		case ch <- struct{}{}:
		default:
			// subscriber already has a pending signal
		}
	}
	return nil
}

// Subscribe registers a signal channel for the group
func (n *MemoryNotifier) Subscribe(ctx context.Context, groupID string) (<-chan struct{}, func(), error) {
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	if n.subs[groupID] == nil {
		n.subs[groupID] = make(map[chan struct{}]struct{})
	}
	n.subs[groupID][ch] = struct{}{}
	n.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs[groupID], ch)
			if len(n.subs[groupID]) == 0 {
				delete(n.subs, groupID)
			}
			n.mu.Unlock()
		})
	}
	return ch, cancel, nil
}
