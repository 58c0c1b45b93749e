package reconcile

import (
	"github.com/vango-dev/navsync/pkg/history"
	"github.com/vango-dev/navsync/pkg/transition"
)

// NavigationInfo is the out-of-band correlation metadata the reconciler
// attaches to every native navigation call it issues. The native surface
// passes it through opaquely and delivers it unchanged (same pointer) on the
// matching navigate event, which is how a native event is traced back to the
// router transition that caused it.
//
// A native navigation carrying no *NavigationInfo is necessarily external
// and must never mutate router-owned state.
type NavigationInfo struct {
	// Intercept asks the bridge to claim the native navigation. Always
	// true for reconciler-issued navigations.
	Intercept bool

	// FocusReset and Scroll are passed through to the interception claim.
	FocusReset history.FocusReset
	Scroll     history.ScrollBehavior

	// DeferredCommit asks the interception to hold the visible URL change
	// until the transition invokes its CommitURL hook.
	DeferredCommit bool

	// Transition is the in-flight transition that caused this navigation.
	// Nil only for rollback navigations of transitions already discarded.
	Transition *transition.Transition

	// Rollback marks synthetic navigations issued by the rollback
	// procedure, so the entry-change handler can recognize them and avoid
	// re-triggering router logic.
	Rollback bool
}

// navigationInfo builds the metadata for a navigate or rollback intent.
func (r *Reconciler) navigationInfo(t *transition.Transition, rollback bool) *NavigationInfo {
	return &NavigationInfo{
		Intercept:      true,
		FocusReset:     history.FocusAfterTransition,
		Scroll:         history.ScrollAfterTransition,
		DeferredCommit: !rollback && r.commitMode == history.CommitDeferred,
		Transition:     t,
		Rollback:       rollback,
	}
}
