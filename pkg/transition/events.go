package transition

// Event is one lifecycle event emitted by the transition pipeline. Every
// event carries the transition it belongs to. The set of event types is
// closed; the reconciler reacts to events and never emits them.
type Event interface {
	// Transition returns the in-flight transition this event belongs to.
	Transition() *Transition

	lifecycleEvent()
}

// Start is emitted when a transition begins, before any URL parsing or
// route matching has happened.
type Start struct {
	T *Transition
}

// Skipped is emitted when the pipeline decides the transition is a no-op
// (e.g. navigating to the URL already shown).
type Skipped struct {
	T *Transition
}

// RoutesRecognized is emitted once route matching has produced the
// transition's final target URL (T.FinalURL is set by this point).
type RoutesRecognized struct {
	T *Transition
}

// PreActivation is emitted after guards and resolvers have passed, just
// before component activation/rendering begins (T.TargetState is set by
// this point).
type PreActivation struct {
	T *Transition
}

// CancelCode describes why a transition was cancelled.
type CancelCode int

const (
	// CancelGuardRejected means a guard returned false.
	CancelGuardRejected CancelCode = iota

	// CancelNoDataFromResolver means a resolver completed without
	// producing data.
	CancelNoDataFromResolver

	// CancelSupersededByNewNavigation means a newer transition started
	// while this one was still in flight.
	CancelSupersededByNewNavigation

	// CancelAborted means the transition was aborted for another reason.
	CancelAborted
)

// String returns a human-readable name for the code.
func (c CancelCode) String() string {
	switch c {
	case CancelGuardRejected:
		return "guard_rejected"
	case CancelNoDataFromResolver:
		return "no_data_from_resolver"
	case CancelSupersededByNewNavigation:
		return "superseded"
	case CancelAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Cancel is emitted when the transition is cancelled before completing.
type Cancel struct {
	T    *Transition
	Code CancelCode
}

// Error is emitted when the transition fails with an error during the
// guard, resolve, or activation phases.
type Error struct {
	T   *Transition
	Err error
}

// End is emitted when the transition completes successfully.
type End struct {
	T *Transition
}

func (e Start) Transition() *Transition            { return e.T }
func (e Skipped) Transition() *Transition          { return e.T }
func (e RoutesRecognized) Transition() *Transition { return e.T }
func (e PreActivation) Transition() *Transition    { return e.T }
func (e Cancel) Transition() *Transition           { return e.T }
func (e Error) Transition() *Transition            { return e.T }
func (e End) Transition() *Transition              { return e.T }

func (Start) lifecycleEvent()            {}
func (Skipped) lifecycleEvent()          {}
func (RoutesRecognized) lifecycleEvent() {}
func (PreActivation) lifecycleEvent()    {}
func (Cancel) lifecycleEvent()           {}
func (Error) lifecycleEvent()            {}
func (End) lifecycleEvent()              {}
