package handler

import (
	"errors"

	"digo_messenger/middleware"
	"digo_messenger/service"
	"digo_messenger/utils"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	userSvc *service.UserService
	sysSvc  *service.SystemSettingsService
}

func NewAdminHandler(userSvc *service.UserService, sysSvc *service.SystemSettingsService) *AdminHandler {
	return &AdminHandler{
		userSvc: userSvc,
		sysSvc:  sysSvc,
	}
}

type adminCommand struct {
	Action string `json:"action"`
	UserID string `json:"user_id"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// AdminAuthMiddleware 管理员鉴权：必须在 AuthMiddleware 之后
// 没有身份返回 401，身份存在但不是管理员（或已被封禁）返回 403
func AdminAuthMiddleware(userSvc *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := middleware.GetUserID(c)
		if !exists {
			utils.Unauthorized(c, "Unauthorized")
			c.Abort()
			return
		}

		user, err := userSvc.GetUser(c.Request.Context(), userID)
		if err != nil && !errors.Is(err, service.ErrUserNotFound) {
			respondError(c, err)
			c.Abort()
			return
		}
		if user == nil || !user.IsAdmin || user.IsBlocked {
			utils.Forbidden(c, "Admin access required")
			c.Abort()
			return
		}

		c.Next()
	}
}

// HandleQuery GET /api/v1/admin?action=users|search|settings
func (h *AdminHandler) HandleQuery(c *gin.Context) {
	ctx := c.Request.Context()

	switch c.Query("action") {
	case "users":
		users, err := h.userSvc.ListUsers(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		utils.SuccessResponse(c, users)

	case "search":
		targetID := c.Query("user_id")
		if targetID == "" {
			utils.BadRequest(c, "user_id required")
			return
		}
		user, err := h.userSvc.GetUser(ctx, targetID)
		if err != nil {
			respondError(c, err)
			return
		}
		utils.SuccessResponse(c, user)

	case "settings":
		utils.SuccessResponse(c, gin.H{"settings": h.sysSvc.GetAllSettings()})

	default:
		utils.MethodNotAllowed(c)
	}
}

// HandleCommand POST /api/v1/admin
// action: block | unblock | grant_admin | revoke_admin | delete | update_setting
func (h *AdminHandler) HandleCommand(c *gin.Context) {
	var cmd adminCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		utils.BadRequest(c, "invalid request body")
		return
	}

	actorID, _ := middleware.GetUserID(c)
	ctx := c.Request.Context()

	if cmd.Action == "update_setting" {
		if cmd.Key == "" {
			utils.BadRequest(c, "key required")
			return
		}
		if err := h.sysSvc.UpdateSetting(ctx, cmd.Key, cmd.Value); err != nil {
			respondError(c, err)
			return
		}
		utils.StatusResponse(c, "updated", gin.H{"key": cmd.Key, "value": cmd.Value})
		return
	}

	var (
		apply  func() error
		status string
	)
	switch cmd.Action {
	case "block":
		apply = func() error { return h.userSvc.SetBlocked(ctx, actorID, cmd.UserID, true) }
		status = "blocked"
	case "unblock":
		apply = func() error { return h.userSvc.SetBlocked(ctx, actorID, cmd.UserID, false) }
		status = "unblocked"
	case "grant_admin":
		apply = func() error { return h.userSvc.SetAdmin(ctx, actorID, cmd.UserID, true) }
		status = "admin_granted"
	case "revoke_admin":
		apply = func() error { return h.userSvc.SetAdmin(ctx, actorID, cmd.UserID, false) }
		status = "admin_revoked"
	case "delete":
		apply = func() error { return h.userSvc.DeleteUser(ctx, actorID, cmd.UserID) }
		status = "deleted"
	default:
		utils.MethodNotAllowed(c)
		return
	}

	if cmd.UserID == "" {
		utils.BadRequest(c, "user_id required")
		return
	}
	if err := apply(); err != nil {
		respondError(c, err)
		return
	}

	utils.StatusResponse(c, status, gin.H{"user_id": cmd.UserID})
}
