package reconcile

import (
	"github.com/vango-dev/navsync/pkg/transition"
	"github.com/vango-dev/navsync/pkg/urltree"
)

// StateMemento is a point-in-time copy of the three router-owned state
// fields, captured at the start of every transition. Exactly one memento is
// current at any time: the one for the most recent transition start. It is
// discarded when that transition commits and consumed when it rolls back.
//
// Fields are held by reference: the live fields are only ever replaced,
// never mutated, so no deep copy is needed.
type StateMemento struct {
	RawURL     urltree.UrlTree
	CurrentURL urltree.UrlTree
	State      transition.RouterState
}

// capture snapshots the live fields. Caller holds r.mu.
func (r *Reconciler) capture() *StateMemento {
	return &StateMemento{
		RawURL:     r.rawURL,
		CurrentURL: r.currentURL,
		State:      r.state,
	}
}

// restore resets the live fields to the memento's values. Caller holds r.mu.
func (r *Reconciler) restore(m *StateMemento) {
	r.rawURL = m.RawURL
	r.currentURL = m.CurrentURL
	r.state = m.State
}
