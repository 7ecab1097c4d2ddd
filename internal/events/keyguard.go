package events

import "sync"

// keyGuard serializes in-flight deliveries per (handler, idempotency key)
// pair. Without it, two publishes of the same business event in quick
// succession could both pass the idempotency check before either delivery
// marks completion.
type keyGuard struct {
	mu       sync.Mutex
	inflight map[string]chan struct{}
}

func newKeyGuard() *keyGuard {
	return &keyGuard{
		inflight: make(map[string]chan struct{}),
	}
}

// acquire claims the key. The second return is true when the caller now
// owns the delivery; otherwise the returned channel closes when the current
// owner releases, after which the caller should retry.
func (g *keyGuard) acquire(key string) (chan struct{}, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if ch, ok := g.inflight[key]; ok {
		return ch, false
	}
	ch := make(chan struct{})
	g.inflight[key] = ch
	return ch, true
}

// release gives up ownership and wakes every waiter.
func (g *keyGuard) release(key string, ch chan struct{}) {
	g.mu.Lock()
	delete(g.inflight, key)
	g.mu.Unlock()
	close(ch)
}
