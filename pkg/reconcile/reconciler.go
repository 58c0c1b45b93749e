// Package reconcile keeps an application router's navigation lifecycle and
// the platform's native navigation/history mechanism consistent with each
// other.
//
// The Reconciler consumes the lifecycle events of the route transition
// pipeline and the events of the native navigation surface. For every
// committed transition it drives one native navigate call tagged with
// correlation metadata; when a transition is cancelled or errors, it
// restores the prior history position and router state from a memento
// captured at transition start. Native entry changes that carry no
// correlation metadata are surfaced to non-router change listeners and
// never touch router-owned state.
package reconcile

import (
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/navsync/pkg/history"
	"github.com/vango-dev/navsync/pkg/transition"
	"github.com/vango-dev/navsync/pkg/urltree"
)

// CancellationResolution selects how cancelled navigations are resolved
// against native history.
type CancellationResolution string

const (
	// ResolutionReplace undoes a committed-but-cancelled navigation by
	// replacing the offending entry in place. This is the only mode the
	// reconciler supports.
	ResolutionReplace CancellationResolution = "replace"

	// ResolutionComputed would undo by computing a relative traversal
	// distance. Not supported; listed so configs can name it explicitly
	// and fail fast.
	ResolutionComputed CancellationResolution = "computed"
)

// Config configures a Reconciler.
type Config struct {
	// Navigation is the native navigation surface. Required.
	Navigation history.Navigation

	// Serializer converts between UrlTree and string URLs.
	// Default: urltree.DefaultSerializer.
	Serializer urltree.Serializer

	// Strategy merges router-computed URLs with externally-handled URL
	// portions. Default: urltree.PassThroughStrategy.
	Strategy urltree.HandlingStrategy

	// CancellationResolution must be ResolutionReplace (the default when
	// empty). Any other mode fails construction.
	CancellationResolution CancellationResolution

	// CommitMode selects when router navigations become visible: at the
	// interception claim (immediate) or when the transition reaches its
	// pre-activation phase (deferred). Default: immediate.
	CommitMode history.CommitMode

	// Logger receives diagnostics. Default: slog.Default().
	Logger *slog.Logger

	// Metrics, when set, records transition outcomes and rollbacks.
	Metrics *Metrics

	// TracerName enables OpenTelemetry tracing of transitions when
	// non-empty. The tracer is resolved from the global provider.
	TracerName string
}

// rollbackBranch is the rollback action computed once per cancellation by
// comparing the native current entry with the last committed entry.
type rollbackBranch int

const (
	// noNavigationOccurred: the native side is already fully reverted; only
	// router-owned state needs restoring.
	noNavigationOccurred rollbackBranch = iota

	// inPlaceReplaced: the display changed but the history slot is the
	// same; traverse back to the committed entry's key.
	inPlaceReplaced

	// slotChanged: router state advanced without a matching history
	// navigation; replace the current entry with the pre-transition URL.
	slotChanged
)

// String returns a human-readable name for the branch.
func (b rollbackBranch) String() string {
	switch b {
	case noNavigationOccurred:
		return "no_navigation"
	case inPlaceReplaced:
		return "in_place_replaced"
	case slotChanged:
		return "slot_changed"
	default:
		return "unknown"
	}
}

// classifyRollback computes which rollback branch applies by comparing
// native entry identity (ID, per content) and slot (Key).
func classifyRollback(current, active history.Entry) rollbackBranch {
	switch {
	case current.ID == active.ID:
		return noNavigationOccurred
	case current.Key == active.Key:
		return inPlaceReplaced
	default:
		return slotChanged
	}
}

// inflight is the reconciler's bookkeeping for one open transition.
type inflight struct {
	span      trace.Span
	startedAt time.Time
}

// Reconciler is the state machine reconciling router transitions with
// native navigation. Create one with New; drive it with HandleRouterEvent.
//
// All router lifecycle and native events are expected to arrive from a
// single goroutine and run to completion; the internal mutex exists so the
// synchronous read accessors may be called from elsewhere.
type Reconciler struct {
	nav        history.Navigation
	serializer urltree.Serializer
	strategy   urltree.HandlingStrategy
	commitMode history.CommitMode
	logger     *slog.Logger
	metrics    *Metrics
	tracer     trace.Tracer

	mu          sync.Mutex
	rawURL      urltree.UrlTree
	currentURL  urltree.UrlTree
	state       transition.RouterState
	activeEntry history.Entry
	memento     *StateMemento
	inflight    map[uint64]*inflight

	// lastInfo is the metadata recorded at the most recent native navigate
	// event, consumed by the following entry-change event. Nil marks an
	// externally initiated navigation.
	lastInfo *NavigationInfo

	notifier      *notifier
	offNavigate   func()
	offEntryChange func()
}

// New creates a Reconciler bound to the given native surface. It fails
// immediately and irrecoverably when the cancellation-resolution mode is not
// the replace variant; there is no fallback strategy for other modes.
func New(cfg Config) (*Reconciler, error) {
	if cfg.Navigation == nil {
		return nil, ErrNilNavigation
	}
	if cfg.CancellationResolution == "" {
		cfg.CancellationResolution = ResolutionReplace
	}
	if cfg.CancellationResolution != ResolutionReplace {
		return nil, ErrUnsupportedCancellationResolution
	}
	if cfg.Serializer == nil {
		cfg.Serializer = urltree.DefaultSerializer{}
	}
	if cfg.Strategy == nil {
		cfg.Strategy = urltree.PassThroughStrategy{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	r := &Reconciler{
		nav:        cfg.Navigation,
		serializer: cfg.Serializer,
		strategy:   cfg.Strategy,
		commitMode: cfg.CommitMode,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		tracer:     resolveTracer(cfg.TracerName),
		inflight:   make(map[uint64]*inflight),
		notifier:   newNotifier(),
	}

	entry := cfg.Navigation.CurrentEntry()
	initial, err := cfg.Serializer.Parse(entry.URL)
	if err != nil {
		return nil, err
	}
	r.rawURL = initial
	r.currentURL = initial
	r.activeEntry = entry

	r.offNavigate = cfg.Navigation.OnNavigate(r.onNavigate)
	r.offEntryChange = cfg.Navigation.OnCurrentEntryChange(r.onCurrentEntryChange)
	return r, nil
}

// Close detaches the reconciler from the native surface's events.
func (r *Reconciler) Close() {
	if r.offNavigate != nil {
		r.offNavigate()
	}
	if r.offEntryChange != nil {
		r.offEntryChange()
	}
}

// =============================================================================
// Synchronous reads
// =============================================================================

// CurrentUrlTree returns the URL the router believes is active.
func (r *Reconciler) CurrentUrlTree() urltree.UrlTree {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentURL
}

// RawUrlTree returns the full URL as merged with externally-handled
// portions.
func (r *Reconciler) RawUrlTree() urltree.UrlTree {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rawURL
}

// RouterState returns the activated route state tree.
func (r *Reconciler) RouterState() transition.RouterState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// RestoredState returns the state payload of the current native entry, for
// consumers that need to recover state across a refresh.
func (r *Reconciler) RestoredState() any {
	return r.nav.CurrentEntry().State
}

// ActiveHistoryEntry returns the native entry that was current the last
// time a transition completed successfully (the rollback target).
func (r *Reconciler) ActiveHistoryEntry() history.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeEntry
}

// RegisterNonRouterCurrentEntryChangeListener subscribes to native entry
// changes that did not originate from the router. Returns an unsubscribe
// handle.
func (r *Reconciler) RegisterNonRouterCurrentEntryChangeListener(fn NonRouterChangeListener) func() {
	return r.notifier.register(fn)
}

// =============================================================================
// Router lifecycle events
// =============================================================================

// HandleRouterEvent is the single entry point by which the transition
// pipeline drives the reconciler. The reconciler only reacts to events; it
// never initiates transitions.
func (r *Reconciler) HandleRouterEvent(ev transition.Event) {
	switch e := ev.(type) {
	case transition.Start:
		r.handleStart(e.T)
	case transition.Skipped:
		r.handleSkipped(e.T)
	case transition.RoutesRecognized:
		r.handleRoutesRecognized(e.T)
	case transition.PreActivation:
		r.handlePreActivation(e.T)
	case transition.Cancel:
		r.handleCancel(e.T, e.Code)
	case transition.Error:
		r.handleError(e.T, e.Err)
	case transition.End:
		r.handleEnd(e.T)
	default:
		r.logger.Warn("unknown router event", "event", ev)
	}
}

// handleStart captures the rollback point for the transition.
func (r *Reconciler) handleStart(t *transition.Transition) {
	span := r.startSpan(t)

	r.mu.Lock()
	r.memento = r.capture()
	r.inflight[t.ID] = &inflight{span: span, startedAt: time.Now()}
	r.mu.Unlock()

	r.logger.Debug("transition started",
		"transition", t.ID,
		"trigger", t.Trigger.String(),
		"url", r.serializer.Serialize(t.InitialURL))
}

// handleSkipped records the no-op transition: the raw URL is set to the
// transition's initial URL without touching the current URL or router
// state.
func (r *Reconciler) handleSkipped(t *transition.Transition) {
	r.mu.Lock()
	r.rawURL = t.InitialURL
	r.memento = nil
	r.mu.Unlock()

	t.Handle.Complete()
	r.finishTransition(t, "skipped", nil)
	r.logger.Debug("transition skipped", "transition", t.ID)
}

// handleRoutesRecognized issues the outward native navigate call for the
// transition, carrying correlation metadata. Skip-location transitions
// issue no native call.
func (r *Reconciler) handleRoutesRecognized(t *transition.Transition) {
	if t.Extras.SkipLocationChange {
		r.logger.Debug("skip location change, no native navigation", "transition", t.ID)
		return
	}

	r.mu.Lock()
	merged := r.strategy.Merge(t.FinalURL, r.rawURL)
	r.rawURL = merged
	r.mu.Unlock()

	path := r.serializer.Serialize(merged)

	// Replace only when the serialized path is unchanged AND the caller
	// asked for replace; a changed path always pushes, even under a
	// replace request.
	mode := history.Push
	if t.Extras.ReplaceURL && path == r.nav.CurrentEntry().URL {
		mode = history.Replace
	}

	r.logger.Debug("issuing native navigation",
		"transition", t.ID,
		"url", path,
		"history", mode.String())

	if err := r.nav.Navigate(path, history.NavigateOptions{
		State:   t.Extras.State,
		History: mode,
		Info:    r.navigationInfo(t, false),
	}); err != nil {
		r.logger.Error("native navigate failed", "transition", t.ID, "error", err)
	}
}

// handlePreActivation commits the router-owned snapshot: currentUrlTree and
// routerState are replaced together, never independently. When URL commit
// is deferred, this is also the moment the visible URL changes.
func (r *Reconciler) handlePreActivation(t *transition.Transition) {
	r.mu.Lock()
	r.currentURL = t.FinalURL
	r.state = t.TargetState
	r.mu.Unlock()

	if r.commitMode == history.CommitDeferred && !t.Extras.SkipLocationChange {
		t.CommitURL()
	}
}

// handleCancel rolls the transition back. Guard rejection and resolver
// no-data are expected, recoverable outcomes, not errors.
func (r *Reconciler) handleCancel(t *transition.Transition, code transition.CancelCode) {
	cause := &CancellationError{Code: code}
	r.rollback(t, cause, false)
	r.finishTransition(t, "cancelled", cause)
	r.logger.Debug("transition cancelled", "transition", t.ID, "code", code.String())
}

// handleError rolls the transition back, distinguished from cancellation
// only for diagnostics.
func (r *Reconciler) handleError(t *transition.Transition, err error) {
	cause := &TransitionError{Err: err}
	r.rollback(t, cause, true)
	r.finishTransition(t, "error", cause)
	r.logger.Warn("restoring state from caught error", "transition", t.ID, "error", err)
}

// handleEnd records the new rollback baseline for future transitions.
func (r *Reconciler) handleEnd(t *transition.Transition) {
	entry := r.nav.CurrentEntry()

	r.mu.Lock()
	r.activeEntry = entry
	r.memento = nil
	r.mu.Unlock()

	t.Handle.Complete()
	r.finishTransition(t, "success", nil)
	r.logger.Debug("transition ended",
		"transition", t.ID,
		"entry_id", entry.ID,
		"entry_key", entry.Key)
}

// finishTransition closes the transition's span and records metrics.
func (r *Reconciler) finishTransition(t *transition.Transition, outcome string, cause error) {
	r.mu.Lock()
	fl := r.inflight[t.ID]
	delete(r.inflight, t.ID)
	r.mu.Unlock()

	seconds := -1.0
	var span trace.Span
	if fl != nil {
		seconds = time.Since(fl.startedAt).Seconds()
		span = fl.span
	}
	r.metrics.recordOutcome(outcome, seconds)
	if cause != nil {
		endSpanErr(span, outcome, cause)
	} else {
		endSpanOK(span, outcome)
	}
}

// =============================================================================
// Rollback
// =============================================================================

// rollback reverts both native navigation and router-owned state to their
// pre-transition values. It first rejects the transition's pending
// completion, which makes the native layer abort its in-flight navigation,
// then repairs whatever residue the abort could not undo.
func (r *Reconciler) rollback(t *transition.Transition, cause error, fromError bool) {
	t.Handle.Abort(cause)

	r.mu.Lock()
	m := r.memento
	r.memento = nil
	active := r.activeEntry
	r.mu.Unlock()

	if m == nil {
		// Already committed or rolled back (e.g. a superseded transition's
		// late cancellation after its successor took over).
		r.logger.Debug("rollback with no memento, abort only", "transition", t.ID)
		return
	}

	current := r.nav.CurrentEntry()
	branch := classifyRollback(current, active)
	r.metrics.recordRollback(branch)
	r.logger.Debug("rolling back",
		"transition", t.ID,
		"branch", branch.String(),
		"from_error", fromError)

	r.mu.Lock()
	r.restore(m)
	r.mu.Unlock()

	switch branch {
	case noNavigationOccurred:
		// The abort fully reverted the native side.

	case inPlaceReplaced:
		// Same slot, changed content: traverse back to the committed
		// entry, tagged so the entry-change handler recognizes it.
		if err := r.nav.TraverseTo(active.Key, history.TraverseOptions{
			Info: r.navigationInfo(t, true),
		}); err != nil {
			r.logger.Error("rollback traversal failed", "transition", t.ID, "error", err)
		}
		r.mergeFinalURL(m)

	case slotChanged:
		// Router state advanced without a matching history navigation:
		// replace the current entry with the pre-transition URL, carrying
		// the committed entry's saved payload.
		if err := r.nav.Navigate(r.serializer.Serialize(m.RawURL), history.NavigateOptions{
			State:   active.State,
			History: history.Replace,
			Info:    r.navigationInfo(t, true),
		}); err != nil {
			r.logger.Error("rollback replace failed", "transition", t.ID, "error", err)
		}
		r.mergeFinalURL(m)
	}
}

// mergeFinalURL merges the native navigation's final URL back into the raw
// URL through the URL-handling strategy, so partially-externally-handled
// URL segments survive the rollback.
func (r *Reconciler) mergeFinalURL(m *StateMemento) {
	final, err := r.serializer.Parse(r.nav.CurrentEntry().URL)
	if err != nil {
		r.logger.Error("cannot parse final native URL after rollback", "error", err)
		return
	}
	r.mu.Lock()
	r.rawURL = r.strategy.Merge(m.CurrentURL, final)
	r.mu.Unlock()
}

// =============================================================================
// Interception bridge (native events)
// =============================================================================

// onNavigate handles every native navigate event: it records the attached
// metadata for the following entry-change event and claims the navigation
// when the metadata asks for interception.
func (r *Reconciler) onNavigate(ev history.NavigateEvent) {
	info, _ := ev.Info().(*NavigationInfo)

	r.mu.Lock()
	r.lastInfo = info
	r.mu.Unlock()

	if info == nil || !info.Intercept || !ev.CanIntercept() {
		// Externally initiated (or uninterceptable): native default
		// behavior proceeds.
		return
	}

	if info.Rollback {
		// Synthetic rollback navigations complete immediately; nothing is
		// pending on them.
		ev.Intercept(history.InterceptOptions{
			FocusReset: info.FocusReset,
			Scroll:     info.Scroll,
			Commit:     history.CommitImmediate,
		})
		return
	}

	opts := history.InterceptOptions{
		FocusReset: info.FocusReset,
		Scroll:     info.Scroll,
		Commit:     history.CommitImmediate,
		Handler:    info.Transition.Handle,
	}
	if info.DeferredCommit {
		opts.Commit = history.CommitDeferred
		info.Transition.BindCommitURL(ev.Commit)
	}
	ev.Intercept(opts)
}

// onCurrentEntryChange handles every native entry change. Without recorded
// metadata the change is externally initiated and only the non-router
// listeners fire; router-owned state is never resynced here. A rollback tag
// confirms the rollback landed and updates the rollback target.
func (r *Reconciler) onCurrentEntryChange(ev history.EntryChangeEvent) {
	r.mu.Lock()
	info := r.lastInfo
	r.mu.Unlock()

	if info == nil {
		r.metrics.recordNonRouterChange()
		r.logger.Debug("non-router entry change", "url", ev.Entry.URL)
		r.notifier.notify(ev.Entry.URL, ev.Entry.State)
		return
	}

	if info.Rollback {
		r.mu.Lock()
		r.activeEntry = ev.Entry
		r.mu.Unlock()
	}
}
