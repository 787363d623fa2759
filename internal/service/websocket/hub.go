package websocket

import (
	"context"
	"sync"

	"ecocare/internal/logger"
	"ecocare/internal/metrics"
)

const broadcastBuffer = 256

// HubService tracks connected subscribers and fans messages out to them.
type HubService struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *logger.Logger
}

func NewHubService(log *logger.Logger) *HubService {
	return &HubService{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     log,
	}
}

// Run processes registrations and broadcasts until ctx is cancelled, then
// disconnects every client.
func (h *HubService) Run(ctx context.Context) error {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				client.closeSend()
			}
			h.mutex.Unlock()
			metrics.WSConnections.Set(0)
			h.logger.Info().Msg("🛑 websocket hub stopped")
			return ctx.Err()

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			metrics.WSConnections.Set(float64(total))
			h.logger.Info().Uint64("client", client.id).Int("total", total).Msg("client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
			}
			total := len(h.clients)
			h.mutex.Unlock()
			metrics.WSConnections.Set(float64(total))
			h.logger.Info().Uint64("client", client.id).Int("total", total).Msg("client disconnected")

		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

func (h *HubService) deliver(message Message) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// Slow subscriber.
			delete(h.clients, client)
			client.closeSend()
			metrics.WSClientsDropped.Inc()
			h.logger.Warn().Uint64("client", client.id).Msg("⚠️ client send queue full, disconnecting")
		}
	}
	metrics.WSConnections.Set(float64(len(h.clients)))
}

// Register adds a client. It is a no-op once the hub has stopped.
func (h *HubService) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.closeSend()
	}
}

// Unregister removes a client. It is a no-op once the hub has stopped.
func (h *HubService) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues a message for every client without blocking. It reports
// whether the message was accepted.
func (h *HubService) Broadcast(message Message) bool {
	select {
	case h.broadcast <- message:
		return true
	default:
		h.logger.Warn().Str("type", message.Type).Msg("⚠️ broadcast queue full, message dropped")
		return false
	}
}

// GetClientCount returns the number of connected clients.
func (h *HubService) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Serve runs the hub under a supervisor.
func (h *HubService) Serve(ctx context.Context) error {
	return h.Run(ctx)
}

func (h *HubService) String() string {
	return "websocket-hub"
}
