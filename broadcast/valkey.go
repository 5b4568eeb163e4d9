package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/valkey-io/valkey-go"
)

// wireEnvelope is the message published to valkey. The channel itself is
// the valkey channel name, so only event, data and the excluded socket ride
// in the payload.
type wireEnvelope struct {
	Event        string          `json:"event"`
	Data         json.RawMessage `json:"data"`
	ExceptSocket string          `json:"except_socket,omitempty"`
}

// ValkeyBroadcaster publishes events to valkey pub/sub so that every server
// process, not just the one handling the request, can deliver to its local
// websocket subscribers.
type ValkeyBroadcaster struct {
	client valkey.Client
}

func NewValkeyBroadcaster(addr string) (*ValkeyBroadcaster, error) {
	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &ValkeyBroadcaster{client: client}, nil
}

// Broadcast publishes the event to each channel. A publish failure
// propagates so a message send surfaces as a failed request.
func (b *ValkeyBroadcaster) Broadcast(channels []string, event string, payload interface{}, exceptSocket string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	env, err := json.Marshal(wireEnvelope{Event: event, Data: data, ExceptSocket: exceptSocket})
	if err != nil {
		return err
	}

	ctx := context.Background()
	for _, channel := range channels {
		cmd := b.client.B().Publish().Channel(channel).Message(string(env)).Build()
		if err := b.client.Do(ctx, cmd).Error(); err != nil {
			return fmt.Errorf("publish to %s: %w", channel, err)
		}
	}
	return nil
}

// Relay subscribes to all chat and group channels and feeds received events
// into the local hub. It blocks until the subscription is torn down.
func (b *ValkeyBroadcaster) Relay(ctx context.Context, hub *Hub) error {
	cmd := b.client.B().Psubscribe().Pattern("chat.*", "group.*").Build()

	return b.client.Receive(ctx, cmd, func(msg valkey.PubSubMessage) {
		var env wireEnvelope
		if err := json.Unmarshal([]byte(msg.Message), &env); err != nil {
			log.Printf("relay: bad envelope on %s: %v", msg.Channel, err)
			return
		}
		hub.Deliver(msg.Channel, env.Event, env.Data, env.ExceptSocket)
	})
}

func (b *ValkeyBroadcaster) Close() {
	b.client.Close()
}
