package websocket

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/ikkim/dietprefs-client/pkg/logger"
	"golang.org/x/time/rate"
)

const (
	EventSession = "session"
	EventDetail  = "detail"

	// client messages per second before further ones are ignored
	maxMessagesPerSecond = 10
)

// Event is the envelope pushed to every connected UI.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ClientMessage is what a UI may send: "refresh" asks for the current
// state to be resent.
type ClientMessage struct {
	Type string `json:"type"`
}

// Client is one connected UI.
type Client struct {
	ID      string
	Hub     *Hub
	Conn    *Conn
	Send    chan []byte
	Limiter *rate.Limiter
}

// Hub fans state events out to every connected client.
type Hub struct {
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	notify     chan struct{}
	stop       chan struct{}

	// latest unsent payload per event type; each event is a full snapshot
	// so older ones are superseded
	pending   map[string][]byte
	pendingMu sync.Mutex

	// current returns the events a client needs to catch up on connect
	current func() []Event

	mu sync.RWMutex
}

func NewHub(current func() []Event) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		notify:     make(chan struct{}, 1),
		pending:    make(map[string][]byte),
		stop:       make(chan struct{}),
		current:    current,
	}
}

// Run processes registrations and broadcasts until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"client_id": client.ID,
				"clients":   total,
			})
			h.sendCurrent(client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("WebSocket client unregistered", map[string]interface{}{
				"client_id": client.ID,
				"clients":   total,
			})

		case <-h.notify:
			for _, message := range h.takePending() {
				h.broadcast(message)
			}

		case <-h.stop:
			h.mu.Lock()
			for id, client := range h.clients {
				close(client.Send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop disconnects every client and ends Run.
func (h *Hub) Stop() {
	close(h.stop)
}

// Publish queues an event for all clients. An event not yet sent is
// replaced by a newer one of the same type, so clients always end on the
// latest state.
func (h *Hub) Publish(eventType string, data interface{}) error {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		logger.Error("Failed to marshal event", err, map[string]interface{}{"type": eventType})
		return err
	}

	h.pendingMu.Lock()
	h.pending[eventType] = payload
	h.pendingMu.Unlock()

	select {
	case h.notify <- struct{}{}:
	default:
	}
	return nil
}

// takePending empties the mailbox, returning payloads ordered by event type.
func (h *Hub) takePending() [][]byte {
	h.pendingMu.Lock()
	defer h.pendingMu.Unlock()

	types := make([]string, 0, len(h.pending))
	for t := range h.pending {
		types = append(types, t)
	}
	sort.Strings(types)

	out := make([][]byte, 0, len(types))
	for _, t := range types {
		out = append(out, h.pending[t])
		delete(h.pending, t)
	}
	return out
}

func (h *Hub) broadcast(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Send <- message:
		default:
			go h.Unregister(client)
			logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
				"client_id": client.ID,
			})
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) sendCurrent(client *Client) {
	if h.current == nil {
		return
	}
	for _, ev := range h.current() {
		payload, err := json.Marshal(ev)
		if err != nil {
			logger.Error("Failed to marshal event", err, map[string]interface{}{"type": ev.Type})
			continue
		}
		select {
		case client.Send <- payload:
		default:
			return
		}
	}
}

// HandleClientMessage applies per-client rate limiting and answers
// refresh requests.
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	if client.Limiter != nil && !client.Limiter.Allow() {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"client_id": client.ID,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"client_id": client.ID,
			"error":     err.Error(),
		})
		return
	}

	if msg.Type == "refresh" {
		h.mu.RLock()
		_, ok := h.clients[client.ID]
		if ok {
			h.sendCurrent(client)
		}
		h.mu.RUnlock()
	}
}
