// Package transition defines the navigation transition record exchanged
// between the route transition pipeline and the reconciler, the lifecycle
// events the pipeline emits, and the deferred completion handle that ties a
// transition to the native navigation waiting on it.
package transition

import (
	"sync/atomic"

	"github.com/vango-dev/navsync/pkg/urltree"
)

// Trigger describes what initiated a transition.
type Trigger int

const (
	// TriggerImperative is a programmatic navigation (a Navigate call).
	TriggerImperative Trigger = iota

	// TriggerTraversal is a navigation replaying a history traversal
	// (back/forward) through the router.
	TriggerTraversal
)

// String returns a human-readable name for the trigger.
func (tr Trigger) String() string {
	switch tr {
	case TriggerImperative:
		return "imperative"
	case TriggerTraversal:
		return "traversal"
	default:
		return "unknown"
	}
}

// Extras carry the caller-supplied navigation preferences.
type Extras struct {
	// State is an explicit payload to store on the resulting history entry.
	State any

	// ReplaceURL requests replacing the current history entry instead of
	// pushing a new one. Honored only when the serialized path is unchanged;
	// a path change always pushes.
	ReplaceURL bool

	// SkipLocationChange runs the transition without issuing any native
	// navigation; the visible URL stays as it was.
	SkipLocationChange bool
}

// StateNode is one activated route in a router state tree.
type StateNode struct {
	// Route is the matched route pattern for this level.
	Route string

	// Params are the extracted route parameters.
	Params map[string]string

	// Data is resolver-produced data for this level.
	Data map[string]any

	// Children are the activated child routes.
	Children []*StateNode
}

// RouterState is the tree of activated route data corresponding to a URL.
// It is replaced wholesale on commit or rollback, never mutated in place.
type RouterState struct {
	Root *StateNode
}

// transitionSeq numbers transitions for logging and tracing.
var transitionSeq atomic.Uint64

// Transition describes one in-flight navigation attempt. It is created by
// the transition pipeline, consumed by the reconciler across several
// lifecycle events, and discarded once finished, cancelled, or superseded.
type Transition struct {
	// ID is a process-unique sequence number.
	ID uint64

	// Trigger is what initiated the transition.
	Trigger Trigger

	// InitialURL is the URL the transition was asked to navigate to, before
	// redirects and route matching.
	InitialURL urltree.UrlTree

	// FinalURL is the target URL once route matching completes. Set by the
	// pipeline before it emits RoutesRecognized.
	FinalURL urltree.UrlTree

	// TargetState is the router state tree the transition activates. Set by
	// the pipeline before it emits PreActivation.
	TargetState RouterState

	// Extras are the caller-supplied preferences.
	Extras Extras

	// Handle is the transition's completion: Complete resolves the native
	// navigation handler waiting on this transition, Abort rejects it.
	Handle *Handle

	// commitURL triggers the native navigation's deferred URL commit. Bound
	// by the interception bridge when the commit strategy is deferred.
	commitURL func()
}

// New creates a transition for the given target URL.
func New(trigger Trigger, initialURL urltree.UrlTree, extras Extras) *Transition {
	return &Transition{
		ID:         transitionSeq.Add(1),
		Trigger:    trigger,
		InitialURL: initialURL,
		Extras:     extras,
		Handle:     NewHandle(),
	}
}

// BindCommitURL installs the hook that triggers the native navigation's
// deferred commit. Called by the interception bridge.
func (t *Transition) BindCommitURL(fn func()) {
	t.commitURL = fn
}

// CommitURL triggers the deferred URL commit, if one is bound.
func (t *Transition) CommitURL() {
	if t.commitURL != nil {
		t.commitURL()
	}
}
