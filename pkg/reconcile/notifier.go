package reconcile

import "sync"

// NonRouterChangeListener is notified when the native current entry changes
// without the router having initiated it (user typed a URL, used
// back/forward outside router control). It receives the new URL and the
// entry's restored state payload. Router-owned state is deliberately NOT
// resynced; that is the caller's decision.
type NonRouterChangeListener func(url string, state any)

// notifier is the listener registry for non-router entry changes.
type notifier struct {
	mu        sync.Mutex
	seq       uint64
	listeners map[uint64]NonRouterChangeListener
}

func newNotifier() *notifier {
	return &notifier{listeners: make(map[uint64]NonRouterChangeListener)}
}

// register adds a listener and returns its unsubscribe handle.
func (n *notifier) register(fn NonRouterChangeListener) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seq++
	id := n.seq
	n.listeners[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.listeners, id)
	}
}

// notify invokes every registered listener outside the lock.
func (n *notifier) notify(url string, state any) {
	n.mu.Lock()
	fns := make([]NonRouterChangeListener, 0, len(n.listeners))
	for _, fn := range n.listeners {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(url, state)
	}
}
