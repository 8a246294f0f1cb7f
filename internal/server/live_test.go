package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/fingercursor/internal/gesture"
	"github.com/ayusman/fingercursor/internal/metrics"
	"github.com/ayusman/fingercursor/internal/tracking"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met within 2s")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLiveHub_Broadcast(t *testing.T) {
	m := metrics.New()
	hub := NewLiveHub(m)
	ts := httptest.NewServer(hub)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	waitFor(t, func() bool { return hub.Clients() == 1 })
	if got := m.LiveClients.Load(); got != 1 {
		t.Errorf("LiveClients = %d, want 1", got)
	}

	at := time.UnixMilli(1_700_000_000_000)
	err = hub.HandleFrame(tracking.Frame{
		At:        at,
		Status:    tracking.StatusTracking,
		Cursor:    r2.Vec{X: 100, Y: 50},
		HasCursor: true,
		Events:    []gesture.Event{gesture.SwipeEvent(gesture.Right)},
		Debug:     gesture.DebugState{FistClosed: true},
	})
	if err != nil {
		t.Fatalf("HandleFrame() error = %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg struct {
		Timestamp int64    `json:"timestamp"`
		Status    string   `json:"status"`
		Cursor    *point   `json:"cursor"`
		Events    []string `json:"events"`
		Debug     struct {
			FistClosed bool `json:"fist_closed"`
		} `json:"debug"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	if msg.Timestamp != at.UnixMilli() || msg.Status != "tracking" {
		t.Errorf("message = %s", data)
	}
	if msg.Cursor == nil || msg.Cursor.X != 100 || msg.Cursor.Y != 50 {
		t.Errorf("cursor = %+v", msg.Cursor)
	}
	if len(msg.Events) != 1 || msg.Events[0] != "swipe_right" || !msg.Debug.FistClosed {
		t.Errorf("events = %v, debug = %+v", msg.Events, msg.Debug)
	}

	conn.Close()
	waitFor(t, func() bool { return hub.Clients() == 0 })
	if got := m.LiveClients.Load(); got != 0 {
		t.Errorf("LiveClients after close = %d, want 0", got)
	}
}

func TestLiveHub_NoClients(t *testing.T) {
	hub := NewLiveHub(nil)
	if err := hub.HandleFrame(tracking.Frame{HasCursor: true}); err != nil {
		t.Errorf("HandleFrame() with no clients error = %v", err)
	}
}

func TestFrameMessage_OmitsCursorWithoutHand(t *testing.T) {
	data, err := json.Marshal(newFrameMessage(tracking.Frame{Status: tracking.StatusSearching, Lost: true}))
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if strings.Contains(s, `"cursor"`) {
		t.Errorf("message without cursor contains one: %s", s)
	}
	if !strings.Contains(s, `"lost":true`) || !strings.Contains(s, `"status":"searching"`) {
		t.Errorf("message = %s", s)
	}
}
