package history

import (
	"fmt"
	"sync"
)

// MemoryNavigation is an in-process implementation of the Navigation
// contract. It models the platform's documented behavior closely enough for
// the reconciler to be exercised against it:
//
//   - Navigate events fire synchronously before the entry changes, and
//     current-entry-change events fire synchronously after.
//   - Push assigns a fresh ID and Key; replace assigns a fresh ID but keeps
//     the slot's Key; traversal changes neither.
//   - An intercepted navigation stays pending until its Completion settles.
//     Deferred commit keeps the previous entry current until Commit().
//   - A rejected handler aborts the in-flight navigation: a not-yet-committed
//     prospective entry is discarded with no visible change, and an
//     already-committed one is undone (entries and position restored, with a
//     current-entry-change event announcing the reverted entry).
//   - A new navigation supersedes a still-pending one; the old completion's
//     settlement is then ignored.
//
// Methods are mutex-guarded for state access, but event handlers are invoked
// outside the lock so they may call back into the surface.
type MemoryNavigation struct {
	mu      sync.Mutex
	entries []Entry
	index   int
	idSeq   uint64
	keySeq  uint64

	navHandlers    []*subscription[func(NavigateEvent)]
	changeHandlers []*subscription[func(EntryChangeEvent)]

	// pending is the latest intercepted, unsettled navigation.
	pending *memNavigateEvent
}

type subscription[F any] struct {
	fn      F
	removed bool
}

// NewMemoryNavigation creates a surface with a single initial entry for the
// given URL and state payload.
func NewMemoryNavigation(url string, state any) *MemoryNavigation {
	n := &MemoryNavigation{}
	n.entries = []Entry{{
		ID:    n.nextID(),
		Key:   n.nextKey(),
		URL:   url,
		State: state,
	}}
	return n
}

func (n *MemoryNavigation) nextID() string {
	n.idSeq++
	return fmt.Sprintf("id-%d", n.idSeq)
}

func (n *MemoryNavigation) nextKey() string {
	n.keySeq++
	return fmt.Sprintf("key-%d", n.keySeq)
}

// CurrentEntry implements Navigation.
func (n *MemoryNavigation) CurrentEntry() Entry {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.entries[n.index]
}

// Entries implements Navigation.
func (n *MemoryNavigation) Entries() []Entry {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Entry, len(n.entries))
	copy(out, n.entries)
	return out
}

// Length returns the number of history entries.
func (n *MemoryNavigation) Length() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.entries)
}

// OnNavigate implements Navigation.
func (n *MemoryNavigation) OnNavigate(fn func(NavigateEvent)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	sub := &subscription[func(NavigateEvent)]{fn: fn}
	n.navHandlers = append(n.navHandlers, sub)
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		sub.removed = true
	}
}

// OnCurrentEntryChange implements Navigation.
func (n *MemoryNavigation) OnCurrentEntryChange(fn func(EntryChangeEvent)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	sub := &subscription[func(EntryChangeEvent)]{fn: fn}
	n.changeHandlers = append(n.changeHandlers, sub)
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		sub.removed = true
	}
}

// Navigate implements Navigation.
func (n *MemoryNavigation) Navigate(url string, opts NavigateOptions) error {
	n.supersedePending()

	ev := &memNavigateEvent{
		nav:     n,
		destURL: url,
		info:    opts.Info,
		mode:    opts.History,
		state:   opts.State,
	}
	n.dispatchNavigate(ev)

	if !ev.intercepted {
		ev.commit()
		ev.finished = true
		return nil
	}

	n.setPending(ev)
	if ev.opts.Commit == CommitImmediate {
		ev.commit()
	}
	if ev.opts.Handler == nil {
		ev.finish(nil)
	} else {
		ev.opts.Handler.OnSettle(ev.finish)
	}
	return nil
}

// TraverseTo implements Navigation.
func (n *MemoryNavigation) TraverseTo(key string, opts TraverseOptions) error {
	n.mu.Lock()
	target := -1
	for i, e := range n.entries {
		if e.Key == key {
			target = i
			break
		}
	}
	current := n.index
	var destURL string
	if target >= 0 {
		destURL = n.entries[target].URL
	}
	n.mu.Unlock()

	if target < 0 {
		return fmt.Errorf("traverse to %q: %w", key, ErrKeyNotFound)
	}
	if target == current {
		return nil
	}

	n.supersedePending()

	ev := &memNavigateEvent{
		nav:         n,
		destURL:     destURL,
		info:        opts.Info,
		traversal:   true,
		targetIndex: target,
	}
	n.dispatchNavigate(ev)

	// Traversals commit as soon as they proceed; deferred commit does not
	// apply to them.
	ev.commit()

	if !ev.intercepted || ev.opts.Handler == nil {
		ev.finished = true
		return nil
	}
	n.setPending(ev)
	ev.opts.Handler.OnSettle(ev.finish)
	return nil
}

// Back traverses to the previous entry, as a user pressing the back button
// would. The resulting navigate event carries no metadata.
func (n *MemoryNavigation) Back() error {
	n.mu.Lock()
	if n.index == 0 {
		n.mu.Unlock()
		return fmt.Errorf("back: %w", ErrKeyNotFound)
	}
	key := n.entries[n.index-1].Key
	n.mu.Unlock()
	return n.TraverseTo(key, TraverseOptions{})
}

// Forward traverses to the next entry.
func (n *MemoryNavigation) Forward() error {
	n.mu.Lock()
	if n.index >= len(n.entries)-1 {
		n.mu.Unlock()
		return fmt.Errorf("forward: %w", ErrKeyNotFound)
	}
	key := n.entries[n.index+1].Key
	n.mu.Unlock()
	return n.TraverseTo(key, TraverseOptions{})
}

func (n *MemoryNavigation) setPending(ev *memNavigateEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = ev
}

func (n *MemoryNavigation) supersedePending() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pending != nil {
		n.pending.superseded = true
		n.pending = nil
	}
}

func (n *MemoryNavigation) clearPending(ev *memNavigateEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pending == ev {
		n.pending = nil
	}
}

func (n *MemoryNavigation) dispatchNavigate(ev *memNavigateEvent) {
	n.mu.Lock()
	subs := make([]*subscription[func(NavigateEvent)], len(n.navHandlers))
	copy(subs, n.navHandlers)
	n.mu.Unlock()

	ev.dispatching = true
	for _, sub := range subs {
		if sub.removed {
			continue
		}
		sub.fn(ev)
	}
	ev.dispatching = false
}

func (n *MemoryNavigation) dispatchEntryChange(from, to Entry) {
	n.mu.Lock()
	subs := make([]*subscription[func(EntryChangeEvent)], len(n.changeHandlers))
	copy(subs, n.changeHandlers)
	n.mu.Unlock()

	ev := EntryChangeEvent{From: from, Entry: to}
	for _, sub := range subs {
		if sub.removed {
			continue
		}
		sub.fn(ev)
	}
}

// memNavigateEvent implements NavigateEvent for MemoryNavigation.
type memNavigateEvent struct {
	nav     *MemoryNavigation
	destURL string
	info    any
	mode    Mode
	state   any

	traversal   bool
	targetIndex int

	dispatching bool
	intercepted bool
	opts        InterceptOptions

	committed  bool
	finished   bool
	superseded bool

	// prevEntries/prevIndex snapshot the history state just before commit,
	// used to undo the navigation if its handler rejects.
	prevEntries []Entry
	prevIndex   int
}

// DestinationURL implements NavigateEvent.
func (ev *memNavigateEvent) DestinationURL() string { return ev.destURL }

// Info implements NavigateEvent.
func (ev *memNavigateEvent) Info() any { return ev.info }

// CanIntercept implements NavigateEvent.
func (ev *memNavigateEvent) CanIntercept() bool { return true }

// Intercept implements NavigateEvent.
func (ev *memNavigateEvent) Intercept(opts InterceptOptions) {
	if !ev.dispatching {
		panic("history: Intercept called outside navigate event dispatch")
	}
	ev.intercepted = true
	ev.opts = opts
}

// Commit implements NavigateEvent.
func (ev *memNavigateEvent) Commit() {
	if ev.superseded || ev.finished {
		return
	}
	ev.commit()
}

// commit applies the entry change and fires currententrychange.
func (ev *memNavigateEvent) commit() {
	if ev.committed {
		return
	}
	ev.committed = true

	n := ev.nav
	n.mu.Lock()
	ev.prevEntries = make([]Entry, len(n.entries))
	copy(ev.prevEntries, n.entries)
	ev.prevIndex = n.index
	from := n.entries[n.index]
	var to Entry
	switch {
	case ev.traversal:
		n.index = ev.targetIndex
		to = n.entries[n.index]
	case ev.mode == Replace:
		slot := n.entries[n.index]
		to = Entry{ID: n.nextID(), Key: slot.Key, URL: ev.destURL, State: ev.state}
		n.entries[n.index] = to
	default: // Push
		to = Entry{ID: n.nextID(), Key: n.nextKey(), URL: ev.destURL, State: ev.state}
		n.entries = append(n.entries[:n.index+1], to)
		n.index++
	}
	n.mu.Unlock()

	n.dispatchEntryChange(from, to)
}

// finish settles a pending intercepted navigation. A non-nil error aborts
// it: an uncommitted prospective entry is simply discarded, a committed one
// is undone.
func (ev *memNavigateEvent) finish(err error) {
	if ev.superseded || ev.finished {
		return
	}
	ev.finished = true
	ev.nav.clearPending(ev)

	if err == nil {
		if !ev.committed {
			ev.commit()
		}
		return
	}
	if ev.committed {
		ev.revert()
	}
}

// revert undoes a committed navigation, restoring the pre-commit entries
// and position.
func (ev *memNavigateEvent) revert() {
	n := ev.nav
	n.mu.Lock()
	from := n.entries[n.index]
	n.entries = ev.prevEntries
	n.index = ev.prevIndex
	to := n.entries[n.index]
	n.mu.Unlock()

	n.dispatchEntryChange(from, to)
}
