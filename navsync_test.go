package navsync

import (
	"io"
	"log/slog"
	"testing"

	"github.com/vango-dev/navsync/pkg/history"
	"github.com/vango-dev/navsync/pkg/transition"
	"github.com/vango-dev/navsync/pkg/urltree"
)

func TestNewAppliesOptions(t *testing.T) {
	nav := history.NewMemoryNavigation("/home", nil)

	r, err := New(nav,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithCommitMode(CommitDeferred),
		WithStrategy(urltree.PreserveQueryStrategy{}),
	)
	if err != nil {
		t.Fatalf("New(): %v", err)
	}
	defer r.Close()

	if got := (urltree.DefaultSerializer{}).Serialize(r.CurrentUrlTree()); got != "/home" {
		t.Errorf("initial currentUrlTree = %q, want /home", got)
	}
	if got := r.ActiveHistoryEntry().URL; got != "/home" {
		t.Errorf("initial active entry URL = %q, want /home", got)
	}
}

func TestNewRejectsNilNavigation(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("New(nil) must fail")
	}
}

func TestEndToEndTransitionThroughFacade(t *testing.T) {
	nav := history.NewMemoryNavigation("/", nil)
	r, err := New(nav, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("New(): %v", err)
	}
	defer r.Close()

	tr := transition.New(transition.TriggerImperative, urltree.New("docs"), transition.Extras{})
	r.HandleRouterEvent(transition.Start{T: tr})
	tr.FinalURL = urltree.New("docs")
	r.HandleRouterEvent(transition.RoutesRecognized{T: tr})
	tr.TargetState = transition.RouterState{Root: &transition.StateNode{Route: "/docs"}}
	r.HandleRouterEvent(transition.PreActivation{T: tr})
	r.HandleRouterEvent(transition.End{T: tr})

	if got := nav.CurrentEntry().URL; got != "/docs" {
		t.Errorf("native URL = %q, want /docs", got)
	}
	if !tr.Handle.Settled() {
		t.Error("transition handle must be settled after End")
	}
	if tr.Handle.Err() != nil {
		t.Errorf("transition handle error = %v, want nil", tr.Handle.Err())
	}
}
