package handler

import (
	"digo_messenger/middleware"
	"digo_messenger/model"
	"digo_messenger/service"
	"digo_messenger/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userSvc *service.UserService
}

func NewAuthHandler(userSvc *service.UserService) *AuthHandler {
	return &AuthHandler{userSvc: userSvc}
}

type authRequest struct {
	Action   string `json:"action"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Handle POST /api/v1/auth，action: register | login
func (h *AuthHandler) Handle(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid request body")
		return
	}

	var (
		user *model.User
		err  error
	)
	switch req.Action {
	case "register":
		user, err = h.userSvc.Register(c.Request.Context(), req.Username, req.Password)
	case "login":
		user, err = h.userSvc.Login(c.Request.Context(), req.Username, req.Password)
	default:
		utils.MethodNotAllowed(c)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := middleware.GenerateToken(user.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"user_id":  user.UserID,
		"username": user.Username,
		"is_admin": user.IsAdmin,
		"token":    token,
	})
}
