// Package history defines the contract of the platform's native
// navigation/history surface as the reconciler consumes it: an ordered list
// of entries, a current entry, navigate/traverse calls carrying opaque
// metadata, and interceptable navigation events.
//
// The package also ships MemoryNavigation, a complete in-process
// implementation of the contract used by tests, the simulator CLI, and
// embedders that have no real platform underneath.
package history

import "errors"

// Entry is one platform-managed point in navigation history.
type Entry struct {
	// ID identifies the entry's content. It changes every time the entry's
	// content changes (including replace-in-place updates).
	ID string

	// Key identifies the entry's slot in history. It is stable across
	// replace-in-place updates.
	Key string

	// URL is the entry's address in string form.
	URL string

	// State is the arbitrary serializable payload stored with the entry.
	State any
}

// Mode selects how a navigation affects the history list.
type Mode int

const (
	// Push appends a new entry after the current one, dropping any
	// forward entries.
	Push Mode = iota

	// Replace overwrites the current entry in place, keeping its key.
	Replace
)

// String returns a human-readable name for the mode.
func (m Mode) String() string {
	switch m {
	case Push:
		return "push"
	case Replace:
		return "replace"
	default:
		return "unknown"
	}
}

// CommitMode selects when an intercepted navigation becomes visible.
type CommitMode int

const (
	// CommitImmediate makes the URL and entry change visible as soon as the
	// navigation is claimed.
	CommitImmediate CommitMode = iota

	// CommitDeferred keeps the previous URL visible until Commit() is called
	// on the navigate event.
	CommitDeferred
)

// FocusReset controls whether the platform resets focus when the
// intercepted navigation finishes.
type FocusReset int

const (
	FocusAfterTransition FocusReset = iota
	FocusManual
)

// ScrollBehavior controls whether the platform restores/sets scroll
// position when the intercepted navigation finishes.
type ScrollBehavior int

const (
	ScrollAfterTransition ScrollBehavior = iota
	ScrollManual
)

// NavigateOptions configures a Navigate call.
type NavigateOptions struct {
	// State is the payload stored on the resulting entry.
	State any

	// History selects push or replace.
	History Mode

	// Info is opaque metadata delivered unchanged on the resulting navigate
	// event. The reconciler uses it as its correlation channel.
	Info any
}

// TraverseOptions configures a TraverseTo call.
type TraverseOptions struct {
	// Info is opaque metadata delivered unchanged on the resulting navigate
	// event.
	Info any
}

// Completion is a pending result an intercepted navigation waits on.
// OnSettle registers a callback invoked exactly once when the result is
// known; a nil error means success. If the completion has already settled,
// the callback runs immediately.
type Completion interface {
	OnSettle(fn func(err error))
}

// InterceptOptions configures how a navigate event is claimed.
type InterceptOptions struct {
	FocusReset FocusReset
	Scroll     ScrollBehavior

	// Commit selects immediate or deferred URL commit.
	Commit CommitMode

	// Handler is the pending completion the navigation waits on before
	// finishing. Nil means the interception completes immediately.
	Handler Completion
}

// NavigateEvent is fired for every navigation the surface performs,
// before the entry changes. Implementations deliver events synchronously
// and in platform order.
type NavigateEvent interface {
	// DestinationURL is the URL being navigated to.
	DestinationURL() string

	// Info returns the metadata attached to the originating call, or nil
	// for externally initiated navigations.
	Info() any

	// CanIntercept reports whether the event may be claimed.
	CanIntercept() bool

	// Intercept claims the navigation. Only valid while the event is being
	// dispatched and only when CanIntercept is true.
	Intercept(opts InterceptOptions)

	// Commit makes a deferred-commit navigation visible. No-op if the
	// navigation is already committed.
	Commit()
}

// EntryChangeEvent is fired after the current entry changes. It carries no
// metadata of its own; consumers correlate it with the navigate event that
// preceded it.
type EntryChangeEvent struct {
	// From is the entry that was current before the change.
	From Entry

	// Entry is the new current entry.
	Entry Entry
}

// Navigation is the native navigation surface contract.
type Navigation interface {
	// CurrentEntry returns the current history entry.
	CurrentEntry() Entry

	// Entries returns the history entries in order.
	Entries() []Entry

	// Navigate performs a push or replace navigation to the given URL.
	Navigate(url string, opts NavigateOptions) error

	// TraverseTo makes the entry with the given key current.
	TraverseTo(key string, opts TraverseOptions) error

	// OnNavigate subscribes to navigate events. The returned function
	// unsubscribes.
	OnNavigate(fn func(NavigateEvent)) func()

	// OnCurrentEntryChange subscribes to current-entry-change events. The
	// returned function unsubscribes.
	OnCurrentEntryChange(fn func(EntryChangeEvent)) func()
}

// ErrKeyNotFound is returned by TraverseTo when no entry has the key.
var ErrKeyNotFound = errors.New("history: entry key not found")
