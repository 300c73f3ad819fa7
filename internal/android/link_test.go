package android

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RoboPilot/internal/model"
)

func newTestLink(t *testing.T) *Link {
	t.Helper()
	l, err := NewLink("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(l.Close)
	return l
}

func dial(t *testing.T, l *Link) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+l.Addr()+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestLinkRoundTrip(t *testing.T) {
	l := newTestLink(t)
	client := dial(t, l)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, l.Connect(ctx))

	require.NoError(t, client.WriteMessage(websocket.TextMessage,
		[]byte(`{"cat":"control","value":"start"}`)))
	data, err := l.Recv()
	require.NoError(t, err)
	assert.JSONEq(t, `{"cat":"control","value":"start"}`, string(data))

	require.NoError(t, l.Send(model.Info("Robot is ready!")))
	_, raw, err := client.ReadMessage()
	require.NoError(t, err)
	var msg model.AndroidMessage
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, model.CatInfo, msg.Cat)
	assert.Equal(t, "Robot is ready!", msg.Value)
}

func TestLinkNotConnected(t *testing.T) {
	l := newTestLink(t)

	_, err := l.Recv()
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.ErrorIs(t, l.Send(model.Info("hello")), ErrNotConnected)
}

func TestLinkConnectTimeout(t *testing.T) {
	l := newTestLink(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Connect(ctx), context.DeadlineExceeded)
}

func TestLinkReconnect(t *testing.T) {
	l := newTestLink(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first := dial(t, l)
	require.NoError(t, l.Connect(ctx))

	l.Disconnect()
	_, err := l.Recv()
	assert.ErrorIs(t, err, ErrNotConnected)

	// the listener stays up, so a second client can attach
	second := dial(t, l)
	require.NoError(t, l.Connect(ctx))
	require.NoError(t, l.Send(model.Status("running")))

	_, raw, err := second.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"cat":"status","value":"running"}`, string(raw))

	// the dropped client saw its connection die
	_ = first.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = first.ReadMessage()
	assert.Error(t, err)
}

func TestLinkRejectsExtraClient(t *testing.T) {
	l := newTestLink(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	dial(t, l)
	require.NoError(t, l.Connect(ctx))

	// a second upgrade while a connection is live must be dropped
	extra := dial(t, l)
	_ = extra.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := extra.ReadMessage()
	assert.Error(t, err, "extra client must be closed by the server")
}
