package urltree

import (
	"net/url"
	"testing"
)

func TestUrlTreeEqual(t *testing.T) {
	tests := []struct {
		name string
		a    UrlTree
		b    UrlTree
		want bool
	}{
		{
			name: "both root",
			a:    Root(),
			b:    Root(),
			want: true,
		},
		{
			name: "same segments",
			a:    New("users", "42"),
			b:    New("users", "42"),
			want: true,
		},
		{
			name: "different segments",
			a:    New("users", "42"),
			b:    New("users", "43"),
			want: false,
		},
		{
			name: "query order does not matter",
			a:    New("a").WithQuery(url.Values{"x": {"1"}, "y": {"2"}}),
			b:    New("a").WithQuery(url.Values{"y": {"2"}, "x": {"1"}}),
			want: true,
		},
		{
			name: "different query",
			a:    New("a").WithQuery(url.Values{"x": {"1"}}),
			b:    New("a"),
			want: false,
		},
		{
			name: "different fragment",
			a:    New("a").WithFragment("top"),
			b:    New("a"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithQueryDoesNotMutate(t *testing.T) {
	base := New("a")
	withQ := base.WithQuery(url.Values{"x": {"1"}})

	if base.Query != nil {
		t.Errorf("base tree mutated: query = %v", base.Query)
	}
	if withQ.Query.Get("x") != "1" {
		t.Errorf("derived tree missing query")
	}
}
