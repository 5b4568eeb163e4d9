package realtime

import (
	"errors"
	"reflect"
	"testing"

	"chatline/models"
)

type recordedBroadcast struct {
	channels []string
	event    string
	payload  interface{}
	except   string
}

type fakeBroadcaster struct {
	calls []recordedBroadcast
	err   error
}

func (f *fakeBroadcaster) Broadcast(channels []string, event string, payload interface{}, exceptSocket string) error {
	f.calls = append(f.calls, recordedBroadcast{channels, event, payload, exceptSocket})
	return f.err
}

func int64ptr(v int64) *int64 { return &v }

func TestMessageSentDirect(t *testing.T) {
	transport := &fakeBroadcaster{}
	d := NewDispatcher(transport)

	msg := &models.Message{ID: 10, SenderID: 1, ReceiverID: int64ptr(2), Content: "hi"}
	if err := d.MessageSent(msg, "sock-1"); err != nil {
		t.Fatalf("MessageSent error: %v", err)
	}

	if len(transport.calls) != 1 {
		t.Fatalf("got %d broadcasts, want 1", len(transport.calls))
	}
	call := transport.calls[0]

	want := []string{"chat.1.2", "chat.2.1"}
	if !reflect.DeepEqual(call.channels, want) {
		t.Errorf("channels = %v, want %v", call.channels, want)
	}
	if call.event != EventMessageSent {
		t.Errorf("event = %q, want %q", call.event, EventMessageSent)
	}
	if call.except != "sock-1" {
		t.Errorf("except = %q, want sock-1", call.except)
	}
	if call.payload != msg {
		t.Error("payload is not the persisted message")
	}
}

func TestMessageSentGroup(t *testing.T) {
	transport := &fakeBroadcaster{}
	d := NewDispatcher(transport)

	msg := &models.Message{ID: 11, SenderID: 1, GroupID: int64ptr(7), Content: "hi all"}
	if err := d.MessageSent(msg, ""); err != nil {
		t.Fatalf("MessageSent error: %v", err)
	}

	want := []string{"group.7"}
	if !reflect.DeepEqual(transport.calls[0].channels, want) {
		t.Errorf("channels = %v, want %v", transport.calls[0].channels, want)
	}
}

func TestMessageSentRejectsBadAddressing(t *testing.T) {
	transport := &fakeBroadcaster{}
	d := NewDispatcher(transport)

	for _, msg := range []*models.Message{
		{SenderID: 1, Content: "neither"},
		{SenderID: 1, ReceiverID: int64ptr(2), GroupID: int64ptr(7), Content: "both"},
	} {
		if err := d.MessageSent(msg, ""); !errors.Is(err, ErrUnaddressed) {
			t.Errorf("MessageSent(%+v) error = %v, want ErrUnaddressed", msg, err)
		}
	}
	if len(transport.calls) != 0 {
		t.Errorf("got %d broadcasts for unaddressed messages, want 0", len(transport.calls))
	}
}

func TestMessageSentPropagatesTransportFailure(t *testing.T) {
	transport := &fakeBroadcaster{err: errors.New("transport down")}
	d := NewDispatcher(transport)

	msg := &models.Message{SenderID: 1, ReceiverID: int64ptr(2), Content: "hi"}
	if err := d.MessageSent(msg, ""); err == nil {
		t.Error("MessageSent with failing transport returned nil error")
	}
}

func TestUserTyping(t *testing.T) {
	transport := &fakeBroadcaster{}
	d := NewDispatcher(transport)

	d.UserTyping(1, 2, "sock-9")

	if len(transport.calls) != 1 {
		t.Fatalf("got %d broadcasts, want 1", len(transport.calls))
	}
	call := transport.calls[0]

	want := []string{"chat.2.1"}
	if !reflect.DeepEqual(call.channels, want) {
		t.Errorf("channels = %v, want %v", call.channels, want)
	}
	if call.event != EventUserTyping {
		t.Errorf("event = %q, want %q", call.event, EventUserTyping)
	}
	payload, ok := call.payload.(TypingPayload)
	if !ok || payload.SenderID != 1 || payload.ReceiverID != 2 {
		t.Errorf("payload = %#v", call.payload)
	}
}

// Typing is best-effort: a failing transport must not panic or surface.
func TestUserTypingSwallowsTransportFailure(t *testing.T) {
	transport := &fakeBroadcaster{err: errors.New("transport down")}
	d := NewDispatcher(transport)

	d.UserTyping(1, 2, "")
}
