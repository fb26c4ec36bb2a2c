package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func setupHubTest(t *testing.T, current func() []Event) (*Hub, string) {
	hub := NewHub(current)
	go hub.Run()
	t.Cleanup(hub.Stop)

	upgrader := NewUpgrader([]string{"*"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(srv.Close)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestHub_SendsCurrentStateOnConnect(t *testing.T) {
	_, url := setupHubTest(t, func() []Event {
		return []Event{{Type: EventSession, Data: map[string]int{"total_results": 3}}}
	})

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	ev := readEvent(t, conn)
	assert.Equal(t, EventSession, ev["type"])
	assert.Equal(t, 3.0, ev["data"].(map[string]interface{})["total_results"])
}

func TestHub_PublishReachesClients(t *testing.T) {
	hub, url := setupHubTest(t, nil)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, hub.Publish(EventDetail, map[string]int{"selected_index": 2}))

	ev := readEvent(t, conn)
	assert.Equal(t, EventDetail, ev["type"])
}

func TestHub_RefreshResendsState(t *testing.T) {
	calls := make(chan struct{}, 4)
	hub, url := setupHubTest(t, func() []Event {
		calls <- struct{}{}
		return []Event{{Type: EventSession, Data: "state"}}
	})

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	readEvent(t, conn)
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "refresh"}))
	ev := readEvent(t, conn)
	assert.Equal(t, "state", ev["data"])
	assert.Len(t, calls, 2)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_RateLimitsClientMessages(t *testing.T) {
	hub := NewHub(func() []Event {
		return []Event{{Type: EventSession, Data: "state"}}
	})
	client := &Client{
		ID:      "c1",
		Hub:     hub,
		Send:    make(chan []byte, 8),
		Limiter: rate.NewLimiter(rate.Every(time.Hour), 2),
	}
	hub.clients[client.ID] = client

	refresh := []byte(`{"type":"refresh"}`)
	for i := 0; i < 5; i++ {
		hub.HandleClientMessage(client, refresh)
	}

	assert.Len(t, client.Send, 2)
}

func TestHub_IgnoresMalformedMessages(t *testing.T) {
	hub := NewHub(func() []Event {
		return []Event{{Type: EventSession, Data: "state"}}
	})
	client := &Client{ID: "c1", Hub: hub, Send: make(chan []byte, 8)}
	hub.clients[client.ID] = client

	hub.HandleClientMessage(client, []byte("not json"))
	hub.HandleClientMessage(client, []byte(`{"type":"unknown"}`))

	assert.Empty(t, client.Send)
}

func TestHub_PublishKeepsLatestPerType(t *testing.T) {
	hub := NewHub(nil)
	client := &Client{ID: "c1", Hub: hub, Send: make(chan []byte, 8)}
	hub.clients[client.ID] = client

	for i := 0; i < 500; i++ {
		require.NoError(t, hub.Publish(EventSession, map[string]int{"seq": i}))
	}
	require.NoError(t, hub.Publish(EventDetail, map[string]int{"seq": 1}))

	go hub.Run()
	t.Cleanup(hub.Stop)

	var got []Event
	for len(got) < 2 {
		select {
		case data := <-client.Send:
			var ev Event
			require.NoError(t, json.Unmarshal(data, &ev))
			got = append(got, ev)
		case <-time.After(2 * time.Second):
			t.Fatalf("received %d events, want 2", len(got))
		}
	}

	assert.Equal(t, EventDetail, got[0].Type)
	assert.Equal(t, EventSession, got[1].Type)
	assert.Equal(t, 499.0, got[1].Data.(map[string]interface{})["seq"], "only the newest session snapshot is sent")

	select {
	case extra := <-client.Send:
		t.Fatalf("unexpected extra event %s", extra)
	case <-time.After(50 * time.Millisecond):
	}
}
