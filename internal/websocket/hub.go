package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/welldanyogia/projecthub-backend/internal/metrics"
)

// Event names pushed to clients
const (
	EventMailReceived    = "mail:received"
	EventMailSent        = "mail:sent"
	EventMailReplied     = "mail:replied"
	EventMailRead        = "mail:read"
	EventMailUpdate      = "mail:update"
	EventNotificationNew = "notification:new"
	EventPong            = "pong"
	EventError           = "error"
)

// Envelope is the frame written to every client
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// frame is a marshalled envelope waiting to be fanned out
type frame struct {
	event   string
	userIDs []uint
	all     bool
	data    []byte
}

// Hub maintains the per-user channels. One user may hold several clients.
type Hub struct {
	// Registered clients keyed by user
	clients map[uint]map[*Client]struct{}

	// Outbound frames
	broadcast chan *frame

	done     chan struct{}
	stopOnce sync.Once
	closed   bool

	// Mutex for thread-safe operations
	mu sync.RWMutex

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		clients:   make(map[uint]map[*Client]struct{}),
		broadcast: make(chan *frame, 256),
		done:      make(chan struct{}),
		logger:    logger,
		metrics:   m,
	}
}

// Run fans queued frames out to clients until Shutdown
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			return
		case f := <-h.broadcast:
			h.deliver(f)
		}
	}
}

// Shutdown stops Run and closes every client. Safe to call more than once.
func (h *Hub) Shutdown() {
	h.stopOnce.Do(func() {
		close(h.done)

		h.mu.Lock()
		h.closed = true
		for userID, set := range h.clients {
			for client := range set {
				close(client.send)
				h.metrics.ConnectionClosed()
			}
			delete(h.clients, userID)
		}
		h.mu.Unlock()

		if h.logger != nil {
			h.logger.Info("websocket hub stopped")
		}
	})
}

// Register adds a client under its user's channel
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(client.send)
		return
	}
	set, ok := h.clients[client.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[client.userID] = set
	}
	set[client] = struct{}{}
	h.mu.Unlock()

	h.metrics.ConnectionOpened()
	if h.logger != nil {
		h.logger.Debug("client registered",
			slog.Uint64("user_id", uint64(client.userID)),
			slog.String("client_id", client.id))
	}
}

// Unregister removes a client. Unknown or already removed clients are ignored.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	set, ok := h.clients[client.userID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := set[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
	close(client.send)
	h.mu.Unlock()

	h.metrics.ConnectionClosed()
	if h.logger != nil {
		h.logger.Debug("client unregistered",
			slog.Uint64("user_id", uint64(client.userID)),
			slog.String("client_id", client.id))
	}
}

// IsOnline reports whether the user holds at least one connection
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// ConnectionCount returns the number of registered clients
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// PushToUser queues an event for every connection of one user
func (h *Hub) PushToUser(userID uint, event string, data interface{}) {
	h.enqueue(&frame{event: event, userIDs: []uint{userID}}, data)
}

// PushToUsers queues an event for every connection of each listed user
func (h *Hub) PushToUsers(userIDs []uint, event string, data interface{}) {
	if len(userIDs) == 0 {
		return
	}
	ids := make([]uint, len(userIDs))
	copy(ids, userIDs)
	h.enqueue(&frame{event: event, userIDs: ids}, data)
}

// PushToAll queues an event for every connected client
func (h *Hub) PushToAll(event string, data interface{}) {
	h.enqueue(&frame{event: event, all: true}, data)
}

// enqueue marshals the envelope and hands it to Run without blocking.
// Frames are dropped when the queue is full or the hub is stopped.
func (h *Hub) enqueue(f *frame, data interface{}) {
	payload, err := json.Marshal(Envelope{Event: f.event, Data: data})
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to marshal websocket event",
				slog.String("event", f.event),
				slog.Any("error", err))
		}
		return
	}
	f.data = payload

	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.broadcast <- f:
	default:
		h.metrics.PushDropped(f.event)
		if h.logger != nil {
			h.logger.Warn("websocket queue full, event dropped", slog.String("event", f.event))
		}
	}
}

// deliver writes a frame to the matching clients
func (h *Hub) deliver(f *frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if f.all {
		for _, set := range h.clients {
			h.sendAll(set, f)
		}
		return
	}
	for _, userID := range f.userIDs {
		h.sendAll(h.clients[userID], f)
	}
}

func (h *Hub) sendAll(set map[*Client]struct{}, f *frame) {
	for client := range set {
		select {
		case client.send <- f.data:
			h.metrics.PushDelivered(f.event)
		default:
			// Client buffer full, skip
			h.metrics.PushDropped(f.event)
		}
	}
}
