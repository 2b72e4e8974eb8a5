package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"

	"luni-triage-be/internal/pkg/logger"
)

// Hub routes assessment notifications to live connections. Connections
// are keyed by scope key ("user:<id>" or "guest:<id>") so guests and
// authenticated users share one delivery path.
type Hub struct {
	// scope key -> connections (multi-tab)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Optional cross-instance relay. Nil when guest state is in-process.
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ScopeKey] = append(h.clients[client.ScopeKey], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"scope": client.ScopeKey})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.ScopeKey]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.ScopeKey] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.ScopeKey]) == 0 {
					delete(h.clients, client.ScopeKey)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send pushes an event to every live connection for a scope, and relays
// it across instances when a shared backend is configured.
func (h *Hub) Send(scopeKey string, eventType string, payload interface{}) {
	data, err := json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": payload,
	})
	if err != nil {
		return
	}

	h.deliverLocal(scopeKey, data)

	if h.rdb != nil {
		relay, _ := json.Marshal(map[string]interface{}{
			"target_scope": scopeKey,
			"message":      json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), "triage_ws_events", relay)
	}
}

func (h *Hub) deliverLocal(scopeKey string, data []byte) {
	h.mu.RLock()
	clients := h.clients[scopeKey]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client buffer full, dropping connection", map[string]interface{}{"scope": scopeKey})
			close(client.Send)
			h.unregister <- client
		}
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "triage_ws_events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			TargetScope string          `json:"target_scope"`
			Message     json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}
		h.deliverLocal(payload.TargetScope, payload.Message)
	}
}
