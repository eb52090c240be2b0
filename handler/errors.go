package handler

import (
	"errors"

	"digo_messenger/service"
	"digo_messenger/utils"

	"github.com/gin-gonic/gin"
)

// respondError 业务错误映射为 HTTP 响应
// 未知错误挂到 c.Errors，由 ErrorHandlerMiddleware 记录日志并返回 500
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMissingCredentials):
		utils.BadRequest(c, "Username and password required")
	case errors.Is(err, service.ErrUsernameTaken):
		utils.BadRequest(c, "Username already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		utils.Unauthorized(c, "Invalid credentials")
	case errors.Is(err, service.ErrAccountBlocked):
		utils.Forbidden(c, "Account is blocked")
	case errors.Is(err, service.ErrAlreadyFriends):
		utils.BadRequest(c, "Already friends")
	case errors.Is(err, service.ErrDuplicateRequest):
		utils.BadRequest(c, "Request already sent")
	case errors.Is(err, service.ErrSelfRequest):
		utils.BadRequest(c, "Cannot add yourself as a friend")
	case errors.Is(err, service.ErrRequestNotFound):
		utils.NotFound(c, "Request not found")
	case errors.Is(err, service.ErrUserNotFound):
		utils.NotFound(c, "User not found")
	case errors.Is(err, service.ErrEmptyMessage):
		utils.BadRequest(c, "Message is required")
	case errors.Is(err, service.ErrCannotModifySelf):
		utils.BadRequest(c, "Cannot apply this action to yourself")
	case errors.Is(err, service.ErrSettingNotFound):
		utils.NotFound(c, "Setting not found")
	case errors.Is(err, service.ErrInvalidSettingValue):
		utils.BadRequest(c, "Value must be 'true' or 'false'")
	default:
		_ = c.Error(err)
	}
}
