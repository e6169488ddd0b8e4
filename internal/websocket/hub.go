package websocket

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/vijay-1103/transmittal-craft/internal/observability"
	"github.com/vijay-1103/transmittal-craft/internal/transmittal"
)

const broadcastBuffer = 256

// Hub fans lifecycle events out to every connected dashboard
type Hub struct {
	// Registered clients: ClientID -> Client
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	identify   chan identifyRequest
	broadcast  chan []byte
	done       chan struct{}

	log *zap.SugaredLogger
}

// NewHub creates a new Hub instance
func NewHub(log *zap.SugaredLogger) *Hub {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		identify:   make(chan identifyRequest),
		broadcast:  make(chan []byte, broadcastBuffer),
		done:       make(chan struct{}),
		log:        log,
	}
}

// identifyRequest renames a connected client. Only Run touches Client.ID and
// closes send, so renames go through the hub as well.
type identifyRequest struct {
	client *Client
	id     string
	msgID  string
}

// Run owns the client set until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for id, c := range h.clients {
				close(c.send)
				delete(h.clients, id)
			}
			observability.SetWebsocketClients(0)
			return

		case client := <-h.register:
			// A client re-identifying under a taken id replaces the old connection
			if old, ok := h.clients[client.ID]; ok && old != client {
				close(old.send)
			}
			h.clients[client.ID] = client
			observability.SetWebsocketClients(len(h.clients))
			h.log.Infof("🖥️ Dashboard connected: %s", client.ID)

		case client := <-h.unregister:
			if cur, ok := h.clients[client.ID]; ok && cur == client {
				delete(h.clients, client.ID)
				close(client.send)
				observability.SetWebsocketClients(len(h.clients))
				h.log.Infof("📴 Dashboard disconnected: %s", client.ID)
			}

		case req := <-h.identify:
			h.rename(req)
			observability.SetWebsocketClients(len(h.clients))

		case message := <-h.broadcast:
			for id, c := range h.clients {
				select {
				case c.send <- message:
				default:
					// Slow consumer
					close(c.send)
					delete(h.clients, id)
					h.log.Warnf("⚠️ Dropping slow dashboard %s", id)
				}
			}
			observability.SetWebsocketClients(len(h.clients))
		}
	}
}

func (h *Hub) rename(req identifyRequest) {
	c := req.client
	if cur, ok := h.clients[c.ID]; !ok || cur != c {
		// Already dropped or replaced; its send channel is closed
		return
	}
	if req.id != c.ID {
		if old, ok := h.clients[req.id]; ok {
			close(old.send)
			h.log.Infof("🔁 Dashboard %s replaced by a new connection", req.id)
		}
		delete(h.clients, c.ID)
		h.log.Infof("🖥️ Dashboard %s identified as %s", c.ID, req.id)
		c.ID = req.id
		h.clients[c.ID] = c
	}

	ack, err := json.Marshal(map[string]string{"type": "ACK", "msgId": req.msgID, "status": "connected"})
	if err != nil {
		return
	}
	select {
	case c.send <- ack:
	default:
	}
}

func (h *Hub) requestIdentify(c *Client, id, msgID string) bool {
	select {
	case h.identify <- identifyRequest{client: c, id: id, msgID: msgID}:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) enqueue(ch chan *Client, c *Client) bool {
	select {
	case ch <- c:
		return true
	case <-h.done:
		return false
	}
}

// Publish queues a lifecycle event for every client. It never blocks; events
// are dropped when the queue is full.
func (h *Hub) Publish(ev transmittal.Event) {
	msg, err := json.Marshal(struct {
		transmittal.Event
		Kind string `json:"kind"`
	}{ev, "event"})
	if err != nil {
		h.log.Errorf("Error marshaling event %s: %v", ev.Type, err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warnf("⚠️ Event queue full, dropped %s for %s", ev.Type, ev.TransmittalID)
	}
}
