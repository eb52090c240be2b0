package handler

import (
	"errors"

	"digo_messenger/middleware"
	"digo_messenger/service"
	"digo_messenger/utils"

	"github.com/gin-gonic/gin"
)

// ActiveUserMiddleware 校验 Token 对应的账号仍然有效：必须在 AuthMiddleware 之后
// 账号已删除返回 401，已封禁返回 403
func ActiveUserMiddleware(userSvc *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := middleware.GetUserID(c)
		if !exists {
			utils.Unauthorized(c, "Unauthorized")
			c.Abort()
			return
		}

		user, err := userSvc.GetUser(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				utils.Unauthorized(c, "Unauthorized")
			} else {
				respondError(c, err)
			}
			c.Abort()
			return
		}
		if user.IsBlocked {
			utils.Forbidden(c, "Account is blocked")
			c.Abort()
			return
		}

		c.Next()
	}
}
