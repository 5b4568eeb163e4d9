package broadcast

import (
	"encoding/json"
	"testing"
	"time"
)

func newTestSubscriber(id string) *Subscriber {
	return &Subscriber{SocketID: id, Send: make(chan []byte, 4)}
}

func receiveEnvelope(t *testing.T, sub *Subscriber) Envelope {
	t.Helper()

	select {
	case data := <-sub.Send:
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("bad envelope: %v", err)
		}
		return env
	case <-time.After(time.Second):
		t.Fatal("no envelope received")
		return Envelope{}
	}
}

func TestHubDeliversToChannelSubscribers(t *testing.T) {
	hub := NewHub()

	sub := newTestSubscriber("sock-a")
	hub.Subscribe(sub, "chat.1.2")

	if err := hub.Broadcast([]string{"chat.1.2"}, "message.sent", map[string]string{"content": "hi"}, ""); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}

	env := receiveEnvelope(t, sub)
	if env.Channel != "chat.1.2" || env.Event != "message.sent" {
		t.Errorf("envelope = %+v", env)
	}
}

func TestHubSkipsExcludedSocket(t *testing.T) {
	hub := NewHub()

	sender := newTestSubscriber("sock-sender")
	other := newTestSubscriber("sock-other")
	hub.Subscribe(sender, "chat.1.2")
	hub.Subscribe(other, "chat.1.2")

	hub.Broadcast([]string{"chat.1.2"}, "message.sent", "payload", "sock-sender")

	receiveEnvelope(t, other)

	select {
	case data := <-sender.Send:
		t.Errorf("excluded socket received %s", data)
	default:
	}
}

func TestHubDeliversOnlyToSubscribedChannel(t *testing.T) {
	hub := NewHub()

	sub := newTestSubscriber("sock-a")
	hub.Subscribe(sub, "group.7")

	hub.Broadcast([]string{"chat.1.2", "chat.2.1"}, "message.sent", "payload", "")

	select {
	case data := <-sub.Send:
		t.Errorf("unsubscribed channel received %s", data)
	default:
	}
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()

	sub := newTestSubscriber("sock-a")
	hub.Subscribe(sub, "chat.1.2")
	hub.Unsubscribe(sub, "chat.1.2")

	hub.Broadcast([]string{"chat.1.2"}, "message.sent", "payload", "")

	select {
	case data := <-sub.Send:
		t.Errorf("unsubscribed socket received %s", data)
	default:
	}
}

func TestHubUnregisterClosesSendAndDetaches(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	sub := newTestSubscriber("sock-a")
	hub.Register(sub)
	hub.Subscribe(sub, "chat.1.2")
	hub.Unregister(sub)

	select {
	case _, ok := <-sub.Send:
		if ok {
			t.Error("expected closed Send channel")
		}
	case <-time.After(time.Second):
		t.Fatal("Send channel not closed after unregister")
	}

	hub.Broadcast([]string{"chat.1.2"}, "message.sent", "payload", "")
}
