package urltree

import (
	"errors"
	"testing"
)

func TestDefaultSerializerParse(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantPath     string // re-serialized form
		wantErr      error
		wantSegments int
	}{
		{
			name:     "empty input is root",
			input:    "",
			wantPath: "/",
		},
		{
			name:     "root path",
			input:    "/",
			wantPath: "/",
		},
		{
			name:         "simple path",
			input:        "/users/42",
			wantPath:     "/users/42",
			wantSegments: 2,
		},
		{
			name:         "multiple slashes collapsed",
			input:        "/users//42",
			wantPath:     "/users/42",
			wantSegments: 2,
		},
		{
			name:         "trailing slash dropped",
			input:        "/users/",
			wantPath:     "/users",
			wantSegments: 1,
		},
		{
			name:         "query preserved",
			input:        "/search?q=go&page=2",
			wantPath:     "/search?page=2&q=go",
			wantSegments: 1,
		},
		{
			name:         "fragment preserved",
			input:        "/docs#install",
			wantPath:     "/docs#install",
			wantSegments: 1,
		},
		{
			name:    "backslash rejected",
			input:   "/a\\b",
			wantErr: ErrBackslashInPath,
		},
		{
			name:    "null byte rejected",
			input:   "/a\x00b",
			wantErr: ErrNullByteInPath,
		},
	}

	s := DefaultSerializer{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := s.Parse(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if len(tree.Segments) != tt.wantSegments {
				t.Errorf("Parse(%q) segments = %d, want %d", tt.input, len(tree.Segments), tt.wantSegments)
			}
			if got := s.Serialize(tree); got != tt.wantPath {
				t.Errorf("Serialize(Parse(%q)) = %q, want %q", tt.input, got, tt.wantPath)
			}
		})
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	s := DefaultSerializer{}
	inputs := []string{"/", "/a", "/a/b/c", "/a?x=1", "/a?x=1&y=2#frag"}

	for _, in := range inputs {
		tree, err := s.Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		out := s.Serialize(tree)
		tree2, err := s.Parse(out)
		if err != nil {
			t.Fatalf("Parse(%q): %v", out, err)
		}
		if !tree.Equal(tree2) {
			t.Errorf("round trip changed tree for %q: %q", in, out)
		}
	}
}

func TestPreserveQueryStrategyMerge(t *testing.T) {
	s := DefaultSerializer{}
	mustParse := func(raw string) UrlTree {
		tree, err := s.Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q): %v", raw, err)
		}
		return tree
	}

	tests := []struct {
		name     string
		strategy PreserveQueryStrategy
		target   string
		source   string
		want     string
	}{
		{
			name:     "source params carried over",
			strategy: PreserveQueryStrategy{},
			target:   "/b",
			source:   "/a?embed=1",
			want:     "/b?embed=1",
		},
		{
			name:     "target wins on conflict",
			strategy: PreserveQueryStrategy{},
			target:   "/b?embed=2",
			source:   "/a?embed=1",
			want:     "/b?embed=2",
		},
		{
			name:     "named params filter",
			strategy: PreserveQueryStrategy{Params: []string{"embed"}},
			target:   "/b",
			source:   "/a?embed=1&drop=1",
			want:     "/b?embed=1",
		},
		{
			name:     "no source query",
			strategy: PreserveQueryStrategy{},
			target:   "/b",
			source:   "/a",
			want:     "/b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Serialize(tt.strategy.Merge(mustParse(tt.target), mustParse(tt.source)))
			if got != tt.want {
				t.Errorf("Merge() = %q, want %q", got, tt.want)
			}
		})
	}
}
