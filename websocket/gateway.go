package websocket

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chatline/broadcast"
	"chatline/realtime"
	"chatline/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Gateway upgrades authenticated requests into hub subscribers. Each
// connection gets a socket id which clients echo back in the X-Socket-ID
// header so their own sends are not delivered back to them.
type Gateway struct {
	Hub  *broadcast.Hub
	Auth *realtime.Authorizer
}

func (g *Gateway) Handle(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	claims, err := utils.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	client := &Client{
		UserID: claims.UserID,
		Sub: &broadcast.Subscriber{
			SocketID: uuid.New().String(),
			Send:     make(chan []byte, 256),
		},
		Hub:  g.Hub,
		Auth: g.Auth,
		Conn: conn,
	}

	g.Hub.Register(client.Sub)

	go client.WritePump()
	go client.ReadPump()

	client.sendControl(controlMessage{
		Event: "connection.established",
		Data:  gin.H{"socket_id": client.Sub.SocketID},
	})
}
