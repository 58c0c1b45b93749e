// Package navsync keeps a router's URL and state reconciled with the
// platform's native navigation/history surface.
//
// This is the recommended import for most embedders:
//
//	import "github.com/vango-dev/navsync"
//
// Usage:
//
//	nav := history.NewMemoryNavigation("/", nil)
//	r, err := navsync.New(nav,
//		navsync.WithCommitMode(navsync.CommitDeferred),
//		navsync.WithStrategy(urltree.PreserveQueryStrategy{Params: []string{"sid"}}),
//	)
//
// The router feeds its transition lifecycle into HandleRouterEvent; the
// reconciler issues the matching native navigations, intercepts their
// events, and rolls both sides back when a transition is cancelled or
// fails.
package navsync

import (
	"log/slog"

	"github.com/vango-dev/navsync/pkg/history"
	"github.com/vango-dev/navsync/pkg/reconcile"
	"github.com/vango-dev/navsync/pkg/transition"
	"github.com/vango-dev/navsync/pkg/urltree"
)

// =============================================================================
// Re-exports
// =============================================================================

// Reconciler is the core state machine. See package reconcile.
type Reconciler = reconcile.Reconciler

// NavigationInfo is the correlation metadata attached to core-issued
// native navigations.
type NavigationInfo = reconcile.NavigationInfo

// StateMemento is the pre-transition snapshot restored on rollback.
type StateMemento = reconcile.StateMemento

// Transition describes one router navigation attempt.
type Transition = transition.Transition

// UrlTree is the parsed form of a URL.
type UrlTree = urltree.UrlTree

// Entry is one native history entry.
type Entry = history.Entry

// Commit modes for the visible URL of intercepted navigations.
const (
	CommitImmediate = history.CommitImmediate
	CommitDeferred  = history.CommitDeferred
)

// =============================================================================
// Options
// =============================================================================

// Option configures a Reconciler.
type Option func(*reconcile.Config)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *reconcile.Config) { cfg.Logger = logger }
}

// WithSerializer sets the URL serializer. Default: urltree.DefaultSerializer.
func WithSerializer(s urltree.Serializer) Option {
	return func(cfg *reconcile.Config) { cfg.Serializer = s }
}

// WithStrategy sets the external URL-handling strategy used to merge
// native final URLs into the raw URL. Default: urltree.PassThroughStrategy.
func WithStrategy(s urltree.HandlingStrategy) Option {
	return func(cfg *reconcile.Config) { cfg.Strategy = s }
}

// WithCommitMode selects when intercepted navigations change the visible
// URL. Default: CommitImmediate.
func WithCommitMode(mode history.CommitMode) Option {
	return func(cfg *reconcile.Config) { cfg.CommitMode = mode }
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *reconcile.Metrics) Option {
	return func(cfg *reconcile.Config) { cfg.Metrics = m }
}

// WithTracerName enables OpenTelemetry tracing under the given tracer
// name. Empty disables tracing.
func WithTracerName(name string) Option {
	return func(cfg *reconcile.Config) { cfg.TracerName = name }
}

// New creates a Reconciler bound to the given native surface.
func New(nav history.Navigation, opts ...Option) (*Reconciler, error) {
	cfg := reconcile.Config{Navigation: nav}
	for _, opt := range opts {
		opt(&cfg)
	}
	return reconcile.New(cfg)
}
