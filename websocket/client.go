package websocket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"chatline/broadcast"
	"chatline/realtime"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Client is one websocket connection. It forwards subscribe/unsubscribe
// requests to the hub after running the channel authorization predicate,
// and drains its subscriber's Send channel onto the wire.
type Client struct {
	UserID int64
	Sub    *broadcast.Subscriber
	Hub    *broadcast.Hub
	Auth   *realtime.Authorizer
	Conn   *websocket.Conn
}

// clientAction is what clients send: subscribe, unsubscribe or ping.
type clientAction struct {
	Action  string `json:"action"`
	Channel string `json:"channel,omitempty"`
}

type controlMessage struct {
	Event   string      `json:"event"`
	Channel string      `json:"channel,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c.Sub)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error: %v", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Sub.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(message []byte) {
	var action clientAction
	if err := json.Unmarshal(message, &action); err != nil {
		return
	}

	switch action.Action {
	case "ping":
		c.sendControl(controlMessage{Event: "pong"})
	case "subscribe":
		c.handleSubscribe(action.Channel)
	case "unsubscribe":
		c.Hub.Unsubscribe(c.Sub, action.Channel)
	}
}

// handleSubscribe runs the authorization predicate once for the attempt and
// attaches the client on success. Any predicate error, including a
// nonexistent group, denies the subscription.
func (c *Client) handleSubscribe(name string) {
	channel, err := realtime.ParseChannel(name)
	if err != nil {
		c.sendControl(controlMessage{Event: "subscription.denied", Channel: name})
		return
	}

	ok, err := c.Auth.Authorize(c.UserID, channel)
	if err != nil {
		log.Printf("subscription to %s by user %d denied: %v", name, c.UserID, err)
	}
	if err != nil || !ok {
		c.sendControl(controlMessage{Event: "subscription.denied", Channel: name})
		return
	}

	c.Hub.Subscribe(c.Sub, channel.String())
	c.sendControl(controlMessage{Event: "subscription.succeeded", Channel: channel.String()})
}

func (c *Client) sendControl(msg controlMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.Sub.Send <- data:
	default:
	}
}
