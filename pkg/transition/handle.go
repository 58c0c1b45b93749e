package transition

import (
	"errors"
	"sync"
)

// ErrAborted is the settlement error used when Abort is called with nil.
var ErrAborted = errors.New("transition: aborted")

// Handle is the deferred completion tying a transition to the native
// navigation waiting on it. It settles exactly once: Complete and Abort are
// the only mutators, and whichever runs first wins. Callbacks registered
// with OnSettle run synchronously at settlement (or immediately, if the
// handle has already settled).
type Handle struct {
	mu      sync.Mutex
	settled bool
	err     error
	fns     []func(error)
}

// NewHandle creates an unsettled handle.
func NewHandle() *Handle {
	return &Handle{}
}

// Complete settles the handle successfully, resolving the native handler.
func (h *Handle) Complete() {
	h.settle(nil)
}

// Abort settles the handle with an error, rejecting the native handler.
// A nil err is replaced with ErrAborted so the settlement is always
// distinguishable from success.
func (h *Handle) Abort(err error) {
	if err == nil {
		err = ErrAborted
	}
	h.settle(err)
}

// OnSettle registers fn to run when the handle settles. Implements
// history.Completion.
func (h *Handle) OnSettle(fn func(err error)) {
	h.mu.Lock()
	if h.settled {
		err := h.err
		h.mu.Unlock()
		fn(err)
		return
	}
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}

// Settled reports whether the handle has settled.
func (h *Handle) Settled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.settled
}

// Err returns the settlement error, or nil if unsettled or successful.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *Handle) settle(err error) {
	h.mu.Lock()
	if h.settled {
		h.mu.Unlock()
		return
	}
	h.settled = true
	h.err = err
	fns := h.fns
	h.fns = nil
	h.mu.Unlock()

	for _, fn := range fns {
		fn(err)
	}
}
