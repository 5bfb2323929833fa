package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"group_chat_server/pkg/errorx"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	mu      sync.Mutex
	members map[string]map[string]bool
}

func (f *fakeChecker) CheckMember(ctx context.Context, groupID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.members[groupID]
	if !ok {
		return errorx.New(errorx.CodeNotFound, "群聊不存在")
	}
	if !g[userID] {
		return errorx.New(errorx.CodeForbidden, "不是群成员")
	}
	return nil
}

func dialGateway(t *testing.T, g *Gateway, userID string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.Serve(w, r, r.URL.Query().Get("uid"))
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?uid=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) PushEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev PushEvent
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func send(t *testing.T, conn *websocket.Conn, action, groupID string) {
	t.Helper()
	b, err := json.Marshal(ClientFrame{Action: action, GroupID: groupID})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, b))
}

func TestGatewaySubscribeAndReceive(t *testing.T) {
	hub := NewHub()
	checker := &fakeChecker{members: map[string]map[string]bool{
		"G1": {"A": true},
		"G2": {"B": true},
	}}
	g := NewGateway(hub, checker, fanoutCfg())
	conn := dialGateway(t, g, "A")

	send(t, conn, "subscribe", "G1")
	ev := readEvent(t, conn)
	require.Equal(t, EventSubscribed, ev.Event)
	require.Equal(t, "group:G1", ev.Channel)
	require.Equal(t, 1, hub.SubscriberCount("G1"))

	payload, err := EncodeGroupEvent("newGroupMessage", "G1", map[string]string{"text": "hi"})
	require.NoError(t, err)
	require.Equal(t, 1, hub.Deliver("G1", payload))
	ev = readEvent(t, conn)
	require.Equal(t, "newGroupMessage", ev.Event)
	require.Equal(t, "group:G1", ev.Channel)

	send(t, conn, "unsubscribe", "G1")
	require.Equal(t, EventUnsubscribed, readEvent(t, conn).Event)
	require.Zero(t, hub.SubscriberCount("G1"))
}

func TestGatewayRejectsNonMembers(t *testing.T) {
	hub := NewHub()
	checker := &fakeChecker{members: map[string]map[string]bool{"G2": {"B": true}}}
	g := NewGateway(hub, checker, fanoutCfg())
	conn := dialGateway(t, g, "A")

	send(t, conn, "subscribe", "G2")
	ev := readEvent(t, conn)
	require.Equal(t, EventError, ev.Event)
	data := ev.Data.(map[string]any)
	require.EqualValues(t, errorx.CodeForbidden, data["code"])

	send(t, conn, "subscribe", "missing")
	ev = readEvent(t, conn)
	require.EqualValues(t, errorx.CodeNotFound, ev.Data.(map[string]any)["code"])

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	ev = readEvent(t, conn)
	require.EqualValues(t, errorx.CodeInvalidParam, ev.Data.(map[string]any)["code"])

	require.Zero(t, hub.SubscriberCount("G2"))
}

func TestGatewayEvictionStopsPush(t *testing.T) {
	hub := NewHub()
	checker := &fakeChecker{members: map[string]map[string]bool{"G1": {"A": true}}}
	g := NewGateway(hub, checker, fanoutCfg())
	conn := dialGateway(t, g, "A")

	send(t, conn, "subscribe", "G1")
	require.Equal(t, EventSubscribed, readEvent(t, conn).Event)

	require.Equal(t, 1, hub.Evict("G1", "A"))
	require.Equal(t, EventRemovedFromGroup, readEvent(t, conn).Event)
	require.Zero(t, hub.Deliver("G1", []byte(`{"event":"newGroupMessage"}`)))
}

func TestGatewayCleansUpOnDisconnect(t *testing.T) {
	hub := NewHub()
	checker := &fakeChecker{members: map[string]map[string]bool{"G1": {"A": true}}}
	g := NewGateway(hub, checker, fanoutCfg())
	conn := dialGateway(t, g, "A")

	send(t, conn, "subscribe", "G1")
	require.Equal(t, EventSubscribed, readEvent(t, conn).Event)
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool { return hub.SubscriberCount("G1") == 0 }, 2*time.Second, 10*time.Millisecond)
}
