package urltree

import (
	"errors"
	"net/url"
	"strings"
)

// Serializer converts between the string form of a URL and its UrlTree form.
// The reconciler serializes trees when issuing native navigations and parses
// the native surface's final URL back during rollback.
type Serializer interface {
	// Parse converts a URL string (path, optional query, optional fragment)
	// into a UrlTree.
	Parse(raw string) (UrlTree, error)

	// Serialize converts a UrlTree back into its string form. The result
	// always starts with "/".
	Serialize(tree UrlTree) string
}

// Sentinel errors returned by DefaultSerializer.Parse.
var (
	// ErrBackslashInPath is returned when a path contains a backslash.
	ErrBackslashInPath = errors.New("urltree: path contains backslash")

	// ErrNullByteInPath is returned when a path contains a null byte.
	ErrNullByteInPath = errors.New("urltree: path contains null byte")
)

// DefaultSerializer is the standard Serializer implementation. Parsing
// canonicalizes the path: a leading "/" is ensured, duplicate slashes are
// collapsed, and a trailing slash (except on root) is dropped.
type DefaultSerializer struct{}

// Parse implements Serializer.
func (DefaultSerializer) Parse(raw string) (UrlTree, error) {
	if raw == "" {
		return Root(), nil
	}

	path, fragment, _ := strings.Cut(raw, "#")
	path, query, _ := strings.Cut(path, "?")

	// SECURITY: Reject backslash and null
	if strings.Contains(path, "\\") {
		return UrlTree{}, ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") {
		return UrlTree{}, ErrNullByteInPath
	}

	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		unescaped, err := url.PathUnescape(seg)
		if err != nil {
			return UrlTree{}, err
		}
		segments = append(segments, unescaped)
	}

	tree := UrlTree{Segments: segments, Fragment: fragment}
	if query != "" {
		values, err := url.ParseQuery(query)
		if err != nil {
			return UrlTree{}, err
		}
		tree.Query = values
	}
	return tree, nil
}

// Serialize implements Serializer.
func (DefaultSerializer) Serialize(tree UrlTree) string {
	var b strings.Builder
	if len(tree.Segments) == 0 {
		b.WriteString("/")
	} else {
		for _, seg := range tree.Segments {
			b.WriteString("/")
			b.WriteString(url.PathEscape(seg))
		}
	}
	if len(tree.Query) > 0 {
		b.WriteString("?")
		b.WriteString(url.Values(tree.Query).Encode())
	}
	if tree.Fragment != "" {
		b.WriteString("#")
		b.WriteString(tree.Fragment)
	}
	return b.String()
}
