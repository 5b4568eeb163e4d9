package handlers

import (
	"github.com/gin-gonic/gin"

	"chatline/middleware"
	"chatline/store"
	"chatline/utils"
)

type UserHandler struct {
	Store *store.Store
}

func (h *UserHandler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)

	user, err := h.Store.GetUserByID(userID)
	if err == store.ErrNotFound {
		utils.NotFound(c, "user not found")
		return
	}
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}

	utils.Success(c, user.ToResponse())
}
