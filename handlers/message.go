package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"chatline/middleware"
	"chatline/models"
	"chatline/realtime"
	"chatline/store"
	"chatline/utils"
)

type MessageHandler struct {
	Store      *store.Store
	Dispatcher *realtime.Dispatcher
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// socketID is the sender's own websocket connection, echoed from the
// connection.established frame so broadcasts skip it.
func socketID(c *gin.Context) string {
	return c.GetHeader("X-Socket-ID")
}

// GetConversation returns the direct conversation with another user and
// marks the unread messages from them as read.
func (h *MessageHandler) GetConversation(c *gin.Context) {
	userID := middleware.GetUserID(c)

	otherID, ok := h.conversationPartner(c, userID)
	if !ok {
		return
	}

	messages, err := h.Store.DirectConversation(userID, otherID)
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}

	utils.Success(c, messages)
}

func (h *MessageHandler) Send(c *gin.Context) {
	userID := middleware.GetUserID(c)

	otherID, ok := h.conversationPartner(c, userID)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	msg := &models.Message{
		SenderID:   userID,
		ReceiverID: &otherID,
		Content:    req.Content,
	}

	if err := h.Store.CreateMessage(msg); err != nil {
		utils.InternalError(c, "failed to send message")
		return
	}

	if err := h.Dispatcher.MessageSent(msg, socketID(c)); err != nil {
		utils.InternalError(c, "failed to broadcast message")
		return
	}

	utils.Success(c, msg)
}

// Typing emits a transient typing indicator. It is best-effort: the
// dispatcher discards transport failures and no row is written.
func (h *MessageHandler) Typing(c *gin.Context) {
	userID := middleware.GetUserID(c)

	otherID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		utils.BadRequest(c, "invalid user id")
		return
	}

	h.Dispatcher.UserTyping(userID, otherID, socketID(c))

	utils.Success(c, gin.H{"status": "ok"})
}

// conversationPartner resolves the :user_id param and enforces the
// friends-only rule for direct conversations. On failure it writes the
// response and returns ok=false.
func (h *MessageHandler) conversationPartner(c *gin.Context, userID int64) (int64, bool) {
	otherID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		utils.BadRequest(c, "invalid user id")
		return 0, false
	}

	exists, err := h.Store.UserExists(otherID)
	if err != nil {
		utils.InternalError(c, "database error")
		return 0, false
	}
	if !exists {
		utils.NotFound(c, "user not found")
		return 0, false
	}

	friends, err := h.Store.AreFriends(userID, otherID)
	if err != nil {
		utils.InternalError(c, "database error")
		return 0, false
	}
	if !friends {
		utils.Forbidden(c, "users are not friends")
		return 0, false
	}

	return otherID, true
}
