package realtime

import (
	"errors"
	"log"

	"chatline/models"
)

// Event type tags carried alongside every broadcast payload.
const (
	EventMessageSent = "message.sent"
	EventUserTyping  = "user.typing"
)

// ErrUnaddressed reports a message that reached the dispatcher without a
// valid addressing discriminant. The persistence contract rejects such
// messages at creation, so seeing this means a broken caller.
var ErrUnaddressed = errors.New("message has no valid addressing")

// Broadcaster is the external transport contract: deliver payload under the
// given event tag to every authorized subscriber of the named channels,
// skipping the connection identified by exceptSocket.
type Broadcaster interface {
	Broadcast(channels []string, event string, payload interface{}, exceptSocket string) error
}

// Dispatcher turns persisted messages and transient signals into transport
// events. It holds no state beyond the injected transport.
type Dispatcher struct {
	transport Broadcaster
}

func NewDispatcher(transport Broadcaster) *Dispatcher {
	return &Dispatcher{transport: transport}
}

// MessageSent broadcasts a freshly persisted message. Direct messages go to
// both symmetric chat channels so either subscription name receives it;
// group messages go to the single group channel. Transport failures
// propagate to the caller and fail the send.
func (d *Dispatcher) MessageSent(msg *models.Message, exceptSocket string) error {
	channels, err := MessageChannels(msg)
	if err != nil {
		return err
	}
	return d.transport.Broadcast(channels, EventMessageSent, msg, exceptSocket)
}

// TypingPayload is the transient typing-indicator event. It has no
// persisted backing row.
type TypingPayload struct {
	SenderID   int64 `json:"sender_id"`
	ReceiverID int64 `json:"receiver_id"`
}

// UserTyping signals the receiver's direct channel. It is best-effort:
// delivery failures are logged and discarded, and no ordering is guaranteed
// relative to real messages.
func (d *Dispatcher) UserTyping(senderID, receiverID int64, exceptSocket string) {
	payload := TypingPayload{SenderID: senderID, ReceiverID: receiverID}
	channel := DirectChannel(receiverID, senderID)

	if err := d.transport.Broadcast([]string{channel}, EventUserTyping, payload, exceptSocket); err != nil {
		log.Printf("typing event to %s dropped: %v", channel, err)
	}
}

// MessageChannels derives the target channel names from a message's
// addressing.
func MessageChannels(msg *models.Message) ([]string, error) {
	switch {
	case msg.ReceiverID != nil && msg.GroupID == nil:
		return []string{
			DirectChannel(msg.SenderID, *msg.ReceiverID),
			DirectChannel(*msg.ReceiverID, msg.SenderID),
		}, nil
	case msg.GroupID != nil && msg.ReceiverID == nil:
		return []string{GroupChannel(*msg.GroupID)}, nil
	}
	return nil, ErrUnaddressed
}
