// Package urltree defines the parsed URL representation shared by the
// reconciler and its collaborators, together with the serializer and
// URL-handling strategy contracts.
//
// A UrlTree is immutable by convention: once built it is only ever replaced,
// never mutated in place. This lets the reconciler hand trees around by value
// without defensive copying.
package urltree

import (
	"net/url"
	"slices"
)

// UrlTree is the parsed representation of a URL path, query, and fragment.
// Route matching and guard execution live elsewhere; this package only cares
// about the shape of the URL itself.
type UrlTree struct {
	// Segments are the non-empty path segments, in order. An empty slice
	// represents the root path "/".
	Segments []string

	// Query holds the query parameters.
	Query url.Values

	// Fragment is the URL fragment without the leading "#".
	Fragment string
}

// Root returns the tree for "/" with no query or fragment.
func Root() UrlTree {
	return UrlTree{}
}

// New builds a tree from path segments.
func New(segments ...string) UrlTree {
	return UrlTree{Segments: segments}
}

// WithQuery returns a copy of the tree with the given query values.
func (t UrlTree) WithQuery(q url.Values) UrlTree {
	t.Query = q
	return t
}

// WithFragment returns a copy of the tree with the given fragment.
func (t UrlTree) WithFragment(fragment string) UrlTree {
	t.Fragment = fragment
	return t
}

// Equal reports whether two trees describe the same URL.
func (t UrlTree) Equal(other UrlTree) bool {
	if !slices.Equal(t.Segments, other.Segments) {
		return false
	}
	if t.Fragment != other.Fragment {
		return false
	}
	return url.Values(t.Query).Encode() == url.Values(other.Query).Encode()
}

// IsRoot reports whether the tree has no path segments.
func (t UrlTree) IsRoot() bool {
	return len(t.Segments) == 0
}
