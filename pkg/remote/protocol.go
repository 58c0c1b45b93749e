package remote

import "github.com/vango-dev/navsync/pkg/history"

// Message types sent from the server to the client surface.
const (
	// MsgNavigate asks the client to perform a push or replace navigation.
	MsgNavigate = "navigate"

	// MsgTraverse asks the client to traverse to an existing entry.
	MsgTraverse = "traverse"

	// MsgIntercept tells the client a dispatched navigate event was claimed.
	MsgIntercept = "intercept"

	// MsgProceed tells the client a dispatched navigate event was not
	// claimed and the navigation should run unmodified.
	MsgProceed = "proceed"

	// MsgCommit tells the client to make a deferred-commit navigation
	// visible.
	MsgCommit = "commit"

	// MsgSettled tells the client the interception's pending work finished.
	// An empty error means success.
	MsgSettled = "settled"
)

// Message types sent from the client surface to the server.
const (
	// MsgHello announces the client's current history snapshot after
	// connecting.
	MsgHello = "hello"

	// MsgNavigateEvent reports a navigate event fired on the client, both
	// for server-issued commands (echoing the command's info id) and for
	// externally initiated navigations (info id zero).
	MsgNavigateEvent = "navigate_event"

	// MsgEntryChange reports that the client's current entry changed.
	MsgEntryChange = "entry_change"
)

// EntryPayload is the wire form of a history entry.
type EntryPayload struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	URL   string `json:"url"`
	State any    `json:"state,omitempty"`
}

func entryToPayload(e history.Entry) EntryPayload {
	return EntryPayload{ID: e.ID, Key: e.Key, URL: e.URL, State: e.State}
}

func entryFromPayload(p EntryPayload) history.Entry {
	return history.Entry{ID: p.ID, Key: p.Key, URL: p.URL, State: p.State}
}

// ServerMessage is a command or reply sent to the client surface.
type ServerMessage struct {
	Type string `json:"type"`

	// Seq correlates replies (intercept, proceed, commit, settled) with the
	// client navigate event they answer, and numbers outgoing commands.
	Seq uint64 `json:"seq,omitempty"`

	// InfoID is the correlation id the client must echo on the navigate
	// event its execution of this command fires.
	InfoID uint64 `json:"info_id,omitempty"`

	URL     string `json:"url,omitempty"`
	State   any    `json:"state,omitempty"`
	History string `json:"history,omitempty"`
	Key     string `json:"key,omitempty"`

	// Interception detail, on MsgIntercept.
	Commit     string `json:"commit,omitempty"`
	FocusReset string `json:"focus_reset,omitempty"`
	Scroll     string `json:"scroll,omitempty"`

	// Error carries the failure on MsgSettled, empty for success.
	Error string `json:"error,omitempty"`
}

// ClientMessage is an event sent by the client surface.
type ClientMessage struct {
	Type string `json:"type"`

	// Seq numbers the client's navigate events so server replies can be
	// correlated.
	Seq uint64 `json:"seq,omitempty"`

	// InfoID echoes the correlation id of the server command this event
	// results from. Zero marks an externally initiated navigation.
	InfoID uint64 `json:"info_id,omitempty"`

	URL          string `json:"url,omitempty"`
	CanIntercept bool   `json:"can_intercept,omitempty"`

	From  *EntryPayload  `json:"from,omitempty"`
	Entry *EntryPayload  `json:"entry,omitempty"`

	// Current and Entries carry the full history snapshot on MsgHello and
	// MsgEntryChange.
	Current *EntryPayload  `json:"current,omitempty"`
	Entries []EntryPayload `json:"entries,omitempty"`
}

func commitModeLabel(m history.CommitMode) string {
	if m == history.CommitDeferred {
		return "deferred"
	}
	return "immediate"
}

func focusResetLabel(f history.FocusReset) string {
	if f == history.FocusManual {
		return "manual"
	}
	return "after-transition"
}

func scrollLabel(s history.ScrollBehavior) string {
	if s == history.ScrollManual {
		return "manual"
	}
	return "after-transition"
}
