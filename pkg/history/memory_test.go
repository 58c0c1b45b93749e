package history

import (
	"errors"
	"testing"
)

// settles is a manually controlled Completion for tests.
type settles struct {
	fns     []func(error)
	settled bool
	err     error
}

func (s *settles) OnSettle(fn func(error)) {
	if s.settled {
		fn(s.err)
		return
	}
	s.fns = append(s.fns, fn)
}

func (s *settles) settle(err error) {
	s.settled = true
	s.err = err
	for _, fn := range s.fns {
		fn(err)
	}
	s.fns = nil
}

func TestMemoryNavigationPushReplaceSemantics(t *testing.T) {
	nav := NewMemoryNavigation("/", nil)
	initial := nav.CurrentEntry()

	if err := nav.Navigate("/a", NavigateOptions{History: Push}); err != nil {
		t.Fatalf("push: %v", err)
	}
	pushed := nav.CurrentEntry()
	if pushed.ID == initial.ID || pushed.Key == initial.Key {
		t.Errorf("push must assign fresh ID and Key: %+v vs %+v", pushed, initial)
	}
	if pushed.URL != "/a" {
		t.Errorf("pushed URL = %q, want /a", pushed.URL)
	}
	if nav.Length() != 2 {
		t.Errorf("length = %d, want 2", nav.Length())
	}

	if err := nav.Navigate("/a2", NavigateOptions{History: Replace, State: "s"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	replaced := nav.CurrentEntry()
	if replaced.ID == pushed.ID {
		t.Errorf("replace must assign a fresh ID")
	}
	if replaced.Key != pushed.Key {
		t.Errorf("replace must keep the slot Key: %q vs %q", replaced.Key, pushed.Key)
	}
	if replaced.State != "s" {
		t.Errorf("replace state = %v, want s", replaced.State)
	}
	if nav.Length() != 2 {
		t.Errorf("replace must not grow history: length = %d", nav.Length())
	}
}

func TestMemoryNavigationPushDropsForwardEntries(t *testing.T) {
	nav := NewMemoryNavigation("/", nil)
	_ = nav.Navigate("/a", NavigateOptions{History: Push})
	_ = nav.Navigate("/b", NavigateOptions{History: Push})

	if err := nav.Back(); err != nil {
		t.Fatalf("back: %v", err)
	}
	if nav.CurrentEntry().URL != "/a" {
		t.Fatalf("after back, URL = %q", nav.CurrentEntry().URL)
	}

	_ = nav.Navigate("/c", NavigateOptions{History: Push})
	if nav.Length() != 3 {
		t.Errorf("push after back must drop forward entries: length = %d, want 3", nav.Length())
	}
	if err := nav.Forward(); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("forward past end: err = %v, want ErrKeyNotFound", err)
	}
}

func TestMemoryNavigationTraversalKeepsIdentity(t *testing.T) {
	nav := NewMemoryNavigation("/", nil)
	first := nav.CurrentEntry()
	_ = nav.Navigate("/a", NavigateOptions{History: Push})

	if err := nav.TraverseTo(first.Key, TraverseOptions{}); err != nil {
		t.Fatalf("traverse: %v", err)
	}
	got := nav.CurrentEntry()
	if got.ID != first.ID || got.Key != first.Key {
		t.Errorf("traversal changed identity: %+v vs %+v", got, first)
	}

	if err := nav.TraverseTo("key-missing", TraverseOptions{}); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("unknown key err = %v, want ErrKeyNotFound", err)
	}
}

func TestMemoryNavigationEventOrderAndInfo(t *testing.T) {
	nav := NewMemoryNavigation("/", nil)

	var order []string
	var gotInfo any
	nav.OnNavigate(func(ev NavigateEvent) {
		order = append(order, "navigate:"+ev.DestinationURL())
		gotInfo = ev.Info()
	})
	nav.OnCurrentEntryChange(func(ev EntryChangeEvent) {
		order = append(order, "change:"+ev.Entry.URL)
	})

	info := &struct{ tag string }{"t"}
	_ = nav.Navigate("/a", NavigateOptions{History: Push, Info: info})

	if len(order) != 2 || order[0] != "navigate:/a" || order[1] != "change:/a" {
		t.Fatalf("event order = %v", order)
	}
	if gotInfo != info {
		t.Errorf("info did not round-trip by identity")
	}
}

func TestMemoryNavigationDeferredCommit(t *testing.T) {
	nav := NewMemoryNavigation("/", nil)
	before := nav.CurrentEntry()
	done := &settles{}

	var captured NavigateEvent
	nav.OnNavigate(func(ev NavigateEvent) {
		captured = ev
		ev.Intercept(InterceptOptions{Commit: CommitDeferred, Handler: done})
	})

	_ = nav.Navigate("/a", NavigateOptions{History: Push})

	if nav.CurrentEntry().ID != before.ID {
		t.Fatalf("deferred commit must not change current entry yet")
	}

	captured.Commit()
	if nav.CurrentEntry().URL != "/a" {
		t.Fatalf("after Commit(), URL = %q, want /a", nav.CurrentEntry().URL)
	}

	done.settle(nil)
	if nav.CurrentEntry().URL != "/a" {
		t.Errorf("settle must not change committed entry")
	}
}

func TestMemoryNavigationAbort(t *testing.T) {
	t.Run("before commit discards prospective entry", func(t *testing.T) {
		nav := NewMemoryNavigation("/", nil)
		before := nav.CurrentEntry()
		done := &settles{}
		nav.OnNavigate(func(ev NavigateEvent) {
			ev.Intercept(InterceptOptions{Commit: CommitDeferred, Handler: done})
		})

		_ = nav.Navigate("/a", NavigateOptions{History: Push})
		done.settle(errors.New("guard rejected"))

		if got := nav.CurrentEntry(); got.ID != before.ID {
			t.Errorf("entry changed on pre-commit abort: %+v", got)
		}
		if nav.Length() != 1 {
			t.Errorf("length = %d, want 1", nav.Length())
		}
	})

	t.Run("after commit undoes the navigation", func(t *testing.T) {
		nav := NewMemoryNavigation("/", nil)
		before := nav.CurrentEntry()
		done := &settles{}
		nav.OnNavigate(func(ev NavigateEvent) {
			ev.Intercept(InterceptOptions{Commit: CommitImmediate, Handler: done})
		})

		var changes []string
		nav.OnCurrentEntryChange(func(ev EntryChangeEvent) {
			changes = append(changes, ev.Entry.URL)
		})

		_ = nav.Navigate("/a", NavigateOptions{History: Push})
		done.settle(errors.New("guard rejected"))

		if got := nav.CurrentEntry(); got.ID != before.ID {
			t.Errorf("abort must restore the pre-navigation entry, got %+v", got)
		}
		if nav.Length() != 1 {
			t.Errorf("length = %d, want 1", nav.Length())
		}
		if len(changes) != 2 || changes[0] != "/a" || changes[1] != "/" {
			t.Errorf("entry change sequence = %v, want [/a /]", changes)
		}
	})
}

func TestMemoryNavigationSupersede(t *testing.T) {
	nav := NewMemoryNavigation("/", nil)
	first := &settles{}
	second := &settles{}
	handlers := []*settles{first, second}
	i := 0
	nav.OnNavigate(func(ev NavigateEvent) {
		ev.Intercept(InterceptOptions{Commit: CommitDeferred, Handler: handlers[i]})
		i++
	})

	_ = nav.Navigate("/a", NavigateOptions{History: Push})
	_ = nav.Navigate("/b", NavigateOptions{History: Push})

	// The first navigation was superseded; its late settlement must be ignored.
	first.settle(nil)
	if url := nav.CurrentEntry().URL; url != "/" {
		t.Fatalf("superseded settle changed entry: URL = %q", url)
	}

	second.settle(nil)
	if url := nav.CurrentEntry().URL; url != "/b" {
		t.Errorf("URL = %q, want /b", url)
	}
}

func TestMemoryNavigationUnsubscribe(t *testing.T) {
	nav := NewMemoryNavigation("/", nil)
	calls := 0
	off := nav.OnNavigate(func(NavigateEvent) { calls++ })

	_ = nav.Navigate("/a", NavigateOptions{History: Push})
	off()
	_ = nav.Navigate("/b", NavigateOptions{History: Push})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
