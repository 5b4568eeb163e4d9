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

type GroupHandler struct {
	Store      *store.Store
	Dispatcher *realtime.Dispatcher
}

type CreateGroupRequest struct {
	Name    string  `json:"name" binding:"required,max=120"`
	Members []int64 `json:"members" binding:"required"`
}

type AddMemberRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

func (h *GroupHandler) Index(c *gin.Context) {
	userID := middleware.GetUserID(c)

	groups, err := h.Store.GroupsForUser(userID)
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}

	utils.Success(c, groups)
}

// Create makes a group with the creator attached, then attaches every
// listed member who is a friend of the creator. Non-friends are silently
// skipped.
func (h *GroupHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	group, err := h.Store.CreateGroup(req.Name, userID)
	if err != nil {
		utils.InternalError(c, "failed to create group")
		return
	}

	for _, memberID := range req.Members {
		if memberID == userID {
			continue
		}
		friends, err := h.Store.AreFriends(userID, memberID)
		if err != nil || !friends {
			continue
		}
		if err := h.Store.AddMember(group.ID, memberID); err != nil && err != store.ErrConflict {
			utils.InternalError(c, "failed to add member")
			return
		}
	}

	members, err := h.Store.GroupMembers(group.ID)
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}

	utils.Success(c, models.GroupWithMembers{Group: *group, Members: members})
}

func (h *GroupHandler) Show(c *gin.Context) {
	userID := middleware.GetUserID(c)

	group, ok := h.memberGroup(c, userID)
	if !ok {
		return
	}

	members, err := h.Store.GroupMembers(group.ID)
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}

	utils.Success(c, models.GroupWithMembers{Group: *group, Members: members})
}

// AddMember attaches a friend of the requester to the group. The requester
// must already be a member.
func (h *GroupHandler) AddMember(c *gin.Context) {
	userID := middleware.GetUserID(c)

	group, ok := h.memberGroup(c, userID)
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	exists, err := h.Store.UserExists(req.UserID)
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}
	if !exists {
		utils.NotFound(c, "user not found")
		return
	}

	friends, err := h.Store.AreFriends(userID, req.UserID)
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}
	if !friends {
		utils.Forbidden(c, "can only add friends to a group")
		return
	}

	if err := h.Store.AddMember(group.ID, req.UserID); err == store.ErrConflict {
		utils.Conflict(c, "user is already a member")
		return
	} else if err != nil {
		utils.InternalError(c, "failed to add member")
		return
	}

	members, err := h.Store.GroupMembers(group.ID)
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}

	utils.Success(c, models.GroupWithMembers{Group: *group, Members: members})
}

func (h *GroupHandler) Messages(c *gin.Context) {
	userID := middleware.GetUserID(c)

	group, ok := h.memberGroup(c, userID)
	if !ok {
		return
	}

	messages, err := h.Store.GroupMessages(group.ID)
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}

	utils.Success(c, messages)
}

func (h *GroupHandler) SendMessage(c *gin.Context) {
	userID := middleware.GetUserID(c)

	group, ok := h.memberGroup(c, userID)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	msg := &models.Message{
		SenderID: userID,
		GroupID:  &group.ID,
		Content:  req.Content,
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

// memberGroup resolves the :id param and enforces membership. On failure it
// writes the response and returns ok=false.
func (h *GroupHandler) memberGroup(c *gin.Context, userID int64) (*models.Group, bool) {
	groupID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequest(c, "invalid group id")
		return nil, false
	}

	group, err := h.Store.GetGroup(groupID)
	if err == store.ErrNotFound {
		utils.NotFound(c, "group not found")
		return nil, false
	}
	if err != nil {
		utils.InternalError(c, "database error")
		return nil, false
	}

	member, err := h.Store.IsMember(groupID, userID)
	if err != nil {
		utils.InternalError(c, "database error")
		return nil, false
	}
	if !member {
		utils.Forbidden(c, "not a member of this group")
		return nil, false
	}

	return group, true
}
