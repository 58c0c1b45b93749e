package urltree

import "net/url"

// HandlingStrategy combines a router-computed URL with externally-handled
// portions of the address. The reconciler calls Merge whenever it needs to
// turn a router target into the full URL the native surface should show,
// and again during rollback so externally-owned portions survive a revert.
type HandlingStrategy interface {
	// Merge combines the router's target tree with the source tree that
	// reflects the full current address. The result is what the native
	// surface should display.
	Merge(target, source UrlTree) UrlTree
}

// PassThroughStrategy hands the router full ownership of the URL: Merge
// returns the target unchanged. This is the default strategy.
type PassThroughStrategy struct{}

// Merge implements HandlingStrategy.
func (PassThroughStrategy) Merge(target, source UrlTree) UrlTree {
	return target
}

// PreserveQueryStrategy carries named query parameters from the source URL
// over to the target when the target does not set them itself. Useful when
// part of the address (e.g. tracking or embed parameters) is owned by
// something other than the router.
type PreserveQueryStrategy struct {
	// Params are the query parameter names to preserve. Empty means
	// preserve every source parameter the target does not override.
	Params []string
}

// Merge implements HandlingStrategy.
func (s PreserveQueryStrategy) Merge(target, source UrlTree) UrlTree {
	if len(source.Query) == 0 {
		return target
	}

	merged := make(url.Values, len(target.Query)+len(source.Query))
	for k, v := range target.Query {
		merged[k] = v
	}
	for k, v := range source.Query {
		if _, ok := merged[k]; ok {
			continue
		}
		if len(s.Params) > 0 && !contains(s.Params, k) {
			continue
		}
		merged[k] = v
	}
	return target.WithQuery(merged)
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
