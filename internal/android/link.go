// Package android implements the bidirectional link to the remote control
// application over websocket. The orchestrator is the listening side; the
// app dials in and exactly one connection is active at a time.
package android

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"RoboPilot/internal/model"
)

// ErrNotConnected is returned when no app connection is active.
var ErrNotConnected = errors.New("app link not connected")

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Link accepts websocket connections from the control app and exposes them
// one at a time through Connect/Recv/Send/Disconnect. Binding failure is a
// startup fault and is returned from NewLink.
type Link struct {
	server *http.Server
	ln     net.Listener
	conns  chan *websocket.Conn

	mu   sync.Mutex
	wmu  sync.Mutex
	conn *websocket.Conn
}

// NewLink binds the websocket endpoint on addr and starts serving upgrades.
func NewLink(addr string) (*Link, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind app link %s: %w", addr, err)
	}
	l := &Link{
		ln:    ln,
		conns: make(chan *websocket.Conn, 1),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", l.handleWS)
	l.server = &http.Server{Handler: mux}
	go func() {
		if err := l.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("app link server: %v", err)
		}
	}()
	log.Printf("app link listening on %s", ln.Addr())
	return l, nil
}

// Addr returns the bound listen address.
func (l *Link) Addr() string { return l.ln.Addr().String() }

func (l *Link) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	id := uuid.NewString()[:8]
	select {
	case l.conns <- conn:
		log.Printf("app link: client %s connected from %s", id, conn.RemoteAddr())
	default:
		// a connection is already live or waiting to be picked up
		log.Printf("app link: rejecting extra client %s from %s", id, conn.RemoteAddr())
		_ = conn.Close()
	}
}

// Connect blocks until the app establishes a connection or ctx is done.
func (l *Link) Connect(ctx context.Context) error {
	select {
	case conn := <-l.conns:
		l.mu.Lock()
		l.conn = conn
		l.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Link) current() *websocket.Conn {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn
}

// Recv returns the next payload from the app, blocking until a frame
// arrives or the connection fails.
func (l *Link) Recv() ([]byte, error) {
	conn := l.current()
	if conn == nil {
		return nil, ErrNotConnected
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("app link read: %w", err)
	}
	return data, nil
}

// Send marshals msg and writes it as a single text frame.
func (l *Link) Send(msg model.AndroidMessage) error {
	conn := l.current()
	if conn == nil {
		return ErrNotConnected
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode android message: %w", err)
	}
	l.wmu.Lock()
	defer l.wmu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return fmt.Errorf("app link write: %w", err)
	}
	return nil
}

// Disconnect tears down the active connection, if any. The listener stays
// up so the app can reconnect.
func (l *Link) Disconnect() {
	l.mu.Lock()
	conn := l.conn
	l.conn = nil
	l.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

// Close disconnects the active client and shuts the listener down.
func (l *Link) Close() {
	l.Disconnect()
	_ = l.server.Close()
}
