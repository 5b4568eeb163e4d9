package broadcast

import (
	"encoding/json"
	"log"
	"sync"
)

// Envelope is what subscribed clients receive on the wire.
type Envelope struct {
	Channel string      `json:"channel"`
	Event   string      `json:"event"`
	Data    interface{} `json:"data"`
}

// Subscriber is one websocket connection as the hub sees it: a socket id
// and an outbound byte channel. The websocket package owns the connection
// and its pumps.
type Subscriber struct {
	SocketID string
	Send     chan []byte
}

// Hub tracks which subscribers are attached to which channel names and
// fans events out to them. It implements the dispatcher's Broadcaster
// interface for single-process deployments; with the valkey backend it is
// fed by the relay instead.
type Hub struct {
	mu            sync.RWMutex
	channels      map[string]map[*Subscriber]bool
	subscriptions map[*Subscriber]map[string]bool

	register   chan *Subscriber
	unregister chan *Subscriber
}

func NewHub() *Hub {
	return &Hub{
		channels:      make(map[string]map[*Subscriber]bool),
		subscriptions: make(map[*Subscriber]map[string]bool),
		register:      make(chan *Subscriber),
		unregister:    make(chan *Subscriber),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.register:
			h.mu.Lock()
			if h.subscriptions[sub] == nil {
				h.subscriptions[sub] = make(map[string]bool)
			}
			h.mu.Unlock()

		case sub := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.subscriptions[sub]; ok {
				for channel := range h.subscriptions[sub] {
					h.detach(sub, channel)
				}
				delete(h.subscriptions, sub)
				close(sub.Send)
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) Register(sub *Subscriber) {
	h.register <- sub
}

func (h *Hub) Unregister(sub *Subscriber) {
	h.unregister <- sub
}

// Subscribe attaches an authorized subscriber to a channel name.
// Authorization happens in the websocket layer before this is called.
func (h *Hub) Subscribe(sub *Subscriber, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subscriptions[sub] == nil {
		h.subscriptions[sub] = make(map[string]bool)
	}
	h.subscriptions[sub][channel] = true

	if h.channels[channel] == nil {
		h.channels[channel] = make(map[*Subscriber]bool)
	}
	h.channels[channel][sub] = true
}

func (h *Hub) Unsubscribe(sub *Subscriber, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subscriptions[sub] != nil {
		delete(h.subscriptions[sub], channel)
	}
	h.detach(sub, channel)
}

// detach removes a subscriber from a channel set. Callers hold h.mu.
func (h *Hub) detach(sub *Subscriber, channel string) {
	if subs, ok := h.channels[channel]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.channels, channel)
		}
	}
}

// Broadcast implements the dispatcher's transport contract locally.
// Delivery to subscribers is asynchronous; a slow client is skipped rather
// than blocking the send.
func (h *Hub) Broadcast(channels []string, event string, payload interface{}, exceptSocket string) error {
	for _, channel := range channels {
		h.Deliver(channel, event, payload, exceptSocket)
	}
	return nil
}

// Deliver fans one event out to every subscriber of one channel, skipping
// the excluded socket.
func (h *Hub) Deliver(channel, event string, payload interface{}, exceptSocket string) {
	data, err := json.Marshal(Envelope{Channel: channel, Event: event, Data: payload})
	if err != nil {
		log.Printf("broadcast marshal error on %s: %v", channel, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.channels[channel] {
		if sub.SocketID == exceptSocket {
			continue
		}
		select {
		case sub.Send <- data:
		default:
		}
	}
}
