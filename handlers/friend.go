package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"chatline/middleware"
	"chatline/models"
	"chatline/store"
	"chatline/utils"
)

type FriendHandler struct {
	Store *store.Store
}

type FriendRequestRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Index returns accepted friendships plus pending requests in both
// directions, matching what the client's friends screen renders.
func (h *FriendHandler) Index(c *gin.Context) {
	userID := middleware.GetUserID(c)

	friends, err := h.Store.Friends(userID)
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}

	sent, err := h.Store.SentRequests(userID)
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}

	received, err := h.Store.ReceivedRequests(userID)
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}

	utils.Success(c, gin.H{
		"friends":           friends,
		"sent_requests":     sent,
		"received_requests": received,
	})
}

func (h *FriendHandler) SendRequest(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req FriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	friend, err := h.Store.GetUserByEmail(req.Email)
	if err == store.ErrNotFound {
		utils.NotFound(c, "user not found")
		return
	}
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}

	if friend.ID == userID {
		utils.Forbidden(c, "cannot send a friend request to yourself")
		return
	}

	friendship, err := h.Store.CreateFriendship(userID, friend.ID)
	if err == store.ErrConflict {
		utils.Conflict(c, "a friendship or request already exists")
		return
	}
	if err != nil {
		utils.InternalError(c, "failed to send friend request")
		return
	}

	utils.Success(c, friendship)
}

// Accept resolves a pending request sent to the current user. Only the
// recipient may accept.
func (h *FriendHandler) Accept(c *gin.Context) {
	h.resolveRequest(c, models.FriendshipAccepted)
}

// Reject declines a pending request. The edge stays as a terminal rejected
// record; the pair cannot re-request.
func (h *FriendHandler) Reject(c *gin.Context) {
	h.resolveRequest(c, models.FriendshipRejected)
}

func (h *FriendHandler) resolveRequest(c *gin.Context, status string) {
	userID := middleware.GetUserID(c)

	requesterID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		utils.BadRequest(c, "invalid user id")
		return
	}

	friendship, err := h.Store.SetFriendshipStatus(requesterID, userID, status)
	if err == store.ErrNotFound {
		utils.NotFound(c, "friend request not found")
		return
	}
	if err != nil {
		utils.InternalError(c, "failed to update friend request")
		return
	}

	utils.Success(c, friendship)
}
