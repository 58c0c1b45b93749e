package reconcile

import (
	"errors"
	"fmt"

	"github.com/vango-dev/navsync/pkg/transition"
)

// Sentinel errors for reconciler construction.
var (
	// ErrUnsupportedCancellationResolution is returned by New when the
	// configured cancellation-resolution mode is not the replace variant.
	// The reconciler has no fallback strategy for other modes.
	ErrUnsupportedCancellationResolution = errors.New("reconcile: unsupported cancellation resolution mode")

	// ErrNilNavigation is returned by New when no native navigation
	// surface is configured.
	ErrNilNavigation = errors.New("reconcile: config requires a navigation surface")
)

// CancellationError is the settlement error given to a transition's handle
// when the transition is cancelled. It records why.
type CancellationError struct {
	Code transition.CancelCode
}

// Error returns the error message.
func (e *CancellationError) Error() string {
	return fmt.Sprintf("reconcile: navigation cancelled: %s", e.Code)
}

// TransitionError is the settlement error given to a transition's handle
// when the transition failed with an error during its guard, resolve, or
// activation phases.
type TransitionError struct {
	Err error
}

// Error returns the error message.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("reconcile: navigation errored: %v", e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *TransitionError) Unwrap() error {
	return e.Err
}
