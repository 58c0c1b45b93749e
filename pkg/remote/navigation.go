// Package remote implements the native navigation surface contract over a
// WebSocket connection: navigate and traverse calls are forwarded to a
// connected client as JSON messages, and the client's navigate and
// entry-change events are delivered back to in-process subscribers.
//
// Metadata attached to outgoing calls cannot cross the wire by reference,
// so each call is assigned a correlation id; when the client echoes the id
// on the resulting navigate event, the original value is restored from a
// server-side table, preserving identity for the consumer.
package remote

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/navsync/pkg/history"
)

// ErrNotConnected is returned by Navigate and TraverseTo when no client
// surface is attached.
var ErrNotConnected = errors.New("remote: no client connected")

// Config configures a remote Navigation.
type Config struct {
	// Logger for connection lifecycle and protocol errors.
	// Default: slog.Default().
	Logger *slog.Logger

	// WriteTimeout bounds each outgoing WebSocket write.
	WriteTimeout time.Duration

	// ReadTimeout bounds the wait for each incoming message. Zero means
	// no deadline.
	ReadTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		WriteTimeout: 10 * time.Second,
	}
}

// Navigation is a history.Navigation backed by a single connected client
// surface. A newly attached connection replaces the previous one.
type Navigation struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	writeTimeout time.Duration
	readTimeout  time.Duration

	mu      sync.Mutex
	conn    *websocket.Conn
	writeMu sync.Mutex

	current history.Entry
	entries []history.Entry

	cmdSeq  atomic.Uint64
	infoSeq atomic.Uint64
	infos   map[uint64]any

	handlerSeq     int
	navHandlers    map[int]func(history.NavigateEvent)
	changeHandlers map[int]func(history.EntryChangeEvent)
}

// New creates a remote Navigation. It reports an empty history until a
// client connects and sends its hello snapshot.
func New(cfg Config) *Navigation {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}
	return &Navigation{
		logger: cfg.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		writeTimeout:   cfg.WriteTimeout,
		readTimeout:    cfg.ReadTimeout,
		infos:          make(map[uint64]any),
		navHandlers:    make(map[int]func(history.NavigateEvent)),
		changeHandlers: make(map[int]func(history.EntryChangeEvent)),
	}
}

// Handler returns the http.Handler that upgrades the request and attaches
// the connection as the client surface.
func (n *Navigation) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := n.upgrader.Upgrade(w, r, nil)
		if err != nil {
			n.logger.Error("websocket upgrade failed", "error", err)
			return
		}
		n.attach(conn)
		n.readLoop(conn)
	})
}

// attach makes conn the active client surface, closing any previous one.
func (n *Navigation) attach(conn *websocket.Conn) {
	n.mu.Lock()
	old := n.conn
	n.conn = conn
	n.mu.Unlock()

	if old != nil {
		old.Close()
	}
	n.logger.Info("client surface attached", "remote", conn.RemoteAddr().String())
}

// Close closes the active connection, if any.
func (n *Navigation) Close() {
	n.mu.Lock()
	conn := n.conn
	n.conn = nil
	n.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// =============================================================================
// history.Navigation
// =============================================================================

// CurrentEntry returns the client's current entry as last reported.
func (n *Navigation) CurrentEntry() history.Entry {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Entries returns the client's history entries as last reported.
func (n *Navigation) Entries() []history.Entry {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]history.Entry, len(n.entries))
	copy(out, n.entries)
	return out
}

// Navigate forwards a push or replace navigation to the client. The
// metadata in opts.Info is registered under a fresh correlation id and
// restored when the client echoes the id back.
func (n *Navigation) Navigate(url string, opts history.NavigateOptions) error {
	return n.send(ServerMessage{
		Type:    MsgNavigate,
		Seq:     n.cmdSeq.Add(1),
		InfoID:  n.registerInfo(opts.Info),
		URL:     url,
		State:   opts.State,
		History: opts.History.String(),
	})
}

// TraverseTo forwards a traversal to the client.
func (n *Navigation) TraverseTo(key string, opts history.TraverseOptions) error {
	return n.send(ServerMessage{
		Type:   MsgTraverse,
		Seq:    n.cmdSeq.Add(1),
		InfoID: n.registerInfo(opts.Info),
		Key:    key,
	})
}

// OnNavigate subscribes to navigate events reported by the client.
func (n *Navigation) OnNavigate(fn func(history.NavigateEvent)) func() {
	n.mu.Lock()
	n.handlerSeq++
	id := n.handlerSeq
	n.navHandlers[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.navHandlers, id)
		n.mu.Unlock()
	}
}

// OnCurrentEntryChange subscribes to entry-change events reported by the
// client.
func (n *Navigation) OnCurrentEntryChange(fn func(history.EntryChangeEvent)) func() {
	n.mu.Lock()
	n.handlerSeq++
	id := n.handlerSeq
	n.changeHandlers[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.changeHandlers, id)
		n.mu.Unlock()
	}
}

// registerInfo stores metadata under a fresh correlation id. Nil metadata
// gets id zero, which the client never echoes as a known id.
func (n *Navigation) registerInfo(info any) uint64 {
	if info == nil {
		return 0
	}
	id := n.infoSeq.Add(1)
	n.mu.Lock()
	n.infos[id] = info
	n.mu.Unlock()
	return id
}

// lookupInfo returns the metadata registered under id, or nil.
func (n *Navigation) lookupInfo(id uint64) any {
	if id == 0 {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.infos[id]
}

// releaseInfo drops the metadata registered under id.
func (n *Navigation) releaseInfo(id uint64) {
	if id == 0 {
		return
	}
	n.mu.Lock()
	delete(n.infos, id)
	n.mu.Unlock()
}

// =============================================================================
// Wire I/O
// =============================================================================

// send writes a message to the active connection.
func (n *Navigation) send(msg ServerMessage) error {
	n.mu.Lock()
	conn := n.conn
	n.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	n.writeMu.Lock()
	defer n.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(n.writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		n.logger.Error("write error", "type", msg.Type, "error", err)
		return err
	}
	return nil
}

// readLoop reads messages from conn until it closes or is replaced.
func (n *Navigation) readLoop(conn *websocket.Conn) {
	defer func() {
		n.mu.Lock()
		if n.conn == conn {
			n.conn = nil
		}
		n.mu.Unlock()
		conn.Close()
	}()

	for {
		if n.readTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(n.readTimeout))
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				n.logger.Error("read error", "error", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			n.logger.Error("message decode error", "error", err)
			continue
		}
		n.handleMessage(msg)
	}
}

// handleMessage dispatches one client message.
func (n *Navigation) handleMessage(msg ClientMessage) {
	switch msg.Type {
	case MsgHello:
		n.handleHello(msg)

	case MsgNavigateEvent:
		n.handleNavigateEvent(msg)

	case MsgEntryChange:
		n.handleEntryChange(msg)

	default:
		n.logger.Warn("unknown message type", "type", msg.Type)
	}
}

// handleHello adopts the client's history snapshot.
func (n *Navigation) handleHello(msg ClientMessage) {
	n.mu.Lock()
	if msg.Current != nil {
		n.current = entryFromPayload(*msg.Current)
	}
	n.entries = n.entries[:0]
	for _, p := range msg.Entries {
		n.entries = append(n.entries, entryFromPayload(p))
	}
	url := n.current.URL
	n.mu.Unlock()

	n.logger.Info("client snapshot received",
		"url", url,
		"entries", len(msg.Entries))
}

// handleNavigateEvent restores the correlated metadata and dispatches the
// event to subscribers. After dispatch, the client is told whether the
// navigation was claimed.
func (n *Navigation) handleNavigateEvent(msg ClientMessage) {
	ev := &navigateEvent{
		n:            n,
		seq:          msg.Seq,
		url:          msg.URL,
		info:         n.lookupInfo(msg.InfoID),
		canIntercept: msg.CanIntercept,
	}

	n.mu.Lock()
	handlers := make([]func(history.NavigateEvent), 0, len(n.navHandlers))
	for _, fn := range n.navHandlers {
		handlers = append(handlers, fn)
	}
	n.mu.Unlock()

	ev.dispatching = true
	for _, fn := range handlers {
		fn(ev)
	}
	ev.dispatching = false

	if !ev.intercepted {
		if err := n.send(ServerMessage{Type: MsgProceed, Seq: msg.Seq}); err != nil {
			n.logger.Error("proceed reply failed", "seq", msg.Seq, "error", err)
		}
	}
}

// handleEntryChange updates the cached history snapshot, releases the
// consumed correlation id, and dispatches to subscribers.
func (n *Navigation) handleEntryChange(msg ClientMessage) {
	if msg.Entry == nil {
		n.logger.Error("entry_change without entry")
		return
	}

	ev := history.EntryChangeEvent{Entry: entryFromPayload(*msg.Entry)}
	if msg.From != nil {
		ev.From = entryFromPayload(*msg.From)
	}

	n.mu.Lock()
	n.current = ev.Entry
	if msg.Entries != nil {
		n.entries = n.entries[:0]
		for _, p := range msg.Entries {
			n.entries = append(n.entries, entryFromPayload(p))
		}
	}
	handlers := make([]func(history.EntryChangeEvent), 0, len(n.changeHandlers))
	for _, fn := range n.changeHandlers {
		handlers = append(handlers, fn)
	}
	n.mu.Unlock()

	n.releaseInfo(msg.InfoID)

	for _, fn := range handlers {
		fn(ev)
	}
}

// =============================================================================
// Navigate event
// =============================================================================

// navigateEvent adapts a client-reported navigate event to the
// history.NavigateEvent contract. Interception and commit are relayed back
// to the client as replies correlated by the event's sequence number.
type navigateEvent struct {
	n            *Navigation
	seq          uint64
	url          string
	info         any
	canIntercept bool

	dispatching bool
	intercepted bool
}

func (e *navigateEvent) DestinationURL() string { return e.url }
func (e *navigateEvent) Info() any              { return e.info }
func (e *navigateEvent) CanIntercept() bool     { return e.canIntercept }

func (e *navigateEvent) Intercept(opts history.InterceptOptions) {
	if !e.dispatching {
		panic("remote: Intercept outside event dispatch")
	}
	if !e.canIntercept {
		panic("remote: Intercept on non-interceptable event")
	}
	e.intercepted = true

	if err := e.n.send(ServerMessage{
		Type:       MsgIntercept,
		Seq:        e.seq,
		Commit:     commitModeLabel(opts.Commit),
		FocusReset: focusResetLabel(opts.FocusReset),
		Scroll:     scrollLabel(opts.Scroll),
	}); err != nil {
		e.n.logger.Error("intercept reply failed", "seq", e.seq, "error", err)
	}

	if opts.Handler == nil {
		e.sendSettled(nil)
		return
	}
	opts.Handler.OnSettle(e.sendSettled)
}

func (e *navigateEvent) Commit() {
	if err := e.n.send(ServerMessage{Type: MsgCommit, Seq: e.seq}); err != nil {
		e.n.logger.Error("commit reply failed", "seq", e.seq, "error", err)
	}
}

func (e *navigateEvent) sendSettled(cause error) {
	msg := ServerMessage{Type: MsgSettled, Seq: e.seq}
	if cause != nil {
		msg.Error = cause.Error()
	}
	if err := e.n.send(msg); err != nil {
		e.n.logger.Error("settled reply failed", "seq", e.seq, "error", err)
	}
}
