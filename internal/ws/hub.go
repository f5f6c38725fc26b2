package ws

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

// Event is the envelope pushed to subscribed clients whenever an order
// changes. Payload is the full order response body.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

const (
	EventOrderCreated   = "order.created"
	EventOrderUpdated   = "order.updated"
	EventOrderAdvanced  = "order.advanced"
	EventOrderCancelled = "order.cancelled"
	EventOrderSettled   = "order.settled"
)

type message struct {
	topic string
	data  []byte
}

// Hub fans events out to all clients subscribed to a topic. All maps are
// owned by the Run goroutine, so no locking is needed.
type Hub struct {
	topics     map[string]map[*Client]bool
	broadcast  chan message
	register   chan *Client
	unregister chan *Client
	logger     zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		topics:     make(map[string]map[*Client]bool),
		broadcast:  make(chan message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run processes registrations and broadcasts until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			clients, ok := h.topics[client.topic]
			if !ok {
				clients = make(map[*Client]bool)
				h.topics[client.topic] = clients
			}
			clients[client] = true
			h.logger.Debug().Str("topic", client.topic).Int("clients", len(clients)).Msg("ws client registered")

		case client := <-h.unregister:
			if clients, ok := h.topics[client.topic]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.topics, client.topic)
					}
				}
			}

		case msg := <-h.broadcast:
			for client := range h.topics[msg.topic] {
				select {
				case client.send <- msg.data:
				default:
					// Slow consumer, drop it.
					delete(h.topics[msg.topic], client)
					close(client.send)
				}
			}
		}
	}
}

// Broadcast publishes an event to every client on the topic. Marshal errors
// are logged and swallowed; a push failure must never fail the request that
// triggered it.
func (h *Hub) Broadcast(topic string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("topic", topic).Msg("marshal ws event")
		return
	}
	h.broadcast <- message{topic: topic, data: data}
}
