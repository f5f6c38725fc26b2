package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	client := &Client{hub: hub, topic: TopicOrders, send: make(chan []byte, 1)}
	hub.register <- client

	hub.Broadcast(TopicOrders, Event{Type: EventOrderCreated, Payload: json.RawMessage(`{"id":"x"}`)})

	select {
	case data := <-client.send:
		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if event.Type != EventOrderCreated {
			t.Errorf("Type = %s, want %s", event.Type, EventOrderCreated)
		}
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
}

func TestHubIgnoresOtherTopics(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	client := &Client{hub: hub, topic: TopicOrders, send: make(chan []byte, 1)}
	hub.register <- client

	hub.Broadcast("somewhere-else", Event{Type: EventOrderCreated})

	select {
	case <-client.send:
		t.Fatal("received message for a different topic")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	client := &Client{hub: hub, topic: TopicOrders, send: make(chan []byte, 1)}
	hub.register <- client
	hub.unregister <- client

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}
