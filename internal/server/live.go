package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/fingercursor/internal/gesture"
	"github.com/ayusman/fingercursor/internal/metrics"
	"github.com/ayusman/fingercursor/internal/tracking"
)

// clientBuffer is how many frames may wait for a slow client before it
// starts missing frames.
const clientBuffer = 16

const writeTimeout = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// frameMessage is the JSON pushed to live clients for every frame.
type frameMessage struct {
	Timestamp int64              `json:"timestamp"`
	Status    tracking.Status    `json:"status"`
	Cursor    *point             `json:"cursor,omitempty"`
	Events    []gesture.Event    `json:"events,omitempty"`
	Debug     gesture.DebugState `json:"debug"`
	Readings  gesture.Readings   `json:"readings"`
	Withheld  bool               `json:"withheld,omitempty"`
	Lost      bool               `json:"lost,omitempty"`
}

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func newFrameMessage(f tracking.Frame) frameMessage {
	msg := frameMessage{
		Timestamp: f.At.UnixMilli(),
		Status:    f.Status,
		Events:    f.Events,
		Debug:     f.Debug,
		Readings:  f.Readings,
		Withheld:  f.Withheld,
		Lost:      f.Lost,
	}
	if f.HasCursor {
		msg.Cursor = &point{X: f.Cursor.X, Y: f.Cursor.Y}
	}
	return msg
}

// LiveHub pushes tracked frames to WebSocket clients. It is a
// tracking.Sink; frames are encoded once and fanned out to per-client
// queues so a slow client never stalls the tracker.
type LiveHub struct {
	metrics *metrics.Metrics
	mu      sync.RWMutex
	clients map[*websocket.Conn]chan []byte
}

// NewLiveHub creates a LiveHub. m may be nil.
func NewLiveHub(m *metrics.Metrics) *LiveHub {
	return &LiveHub{
		metrics: m,
		clients: make(map[*websocket.Conn]chan []byte),
	}
}

// Clients returns the number of connected clients.
func (h *LiveHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleFrame implements tracking.Sink.
func (h *LiveHub) HandleFrame(f tracking.Frame) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.clients) == 0 {
		return nil
	}

	msg, err := json.Marshal(newFrameMessage(f))
	if err != nil {
		return err
	}
	for _, ch := range h.clients {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

// ServeHTTP upgrades the request and streams frames until the client goes
// away.
func (h *LiveHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	out := make(chan []byte, clientBuffer)
	h.add(conn, out)
	defer h.remove(conn)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Reads only detect the close; clients send nothing.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case msg := <-out:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}

func (h *LiveHub) add(conn *websocket.Conn, out chan []byte) {
	h.mu.Lock()
	h.clients[conn] = out
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.LiveClients.Add(1)
	}
}

func (h *LiveHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
	if h.metrics != nil {
		h.metrics.LiveClients.Add(-1)
	}
}
